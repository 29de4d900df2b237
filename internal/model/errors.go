package model

import (
	"errors"
	"fmt"
)

// Common errors used across the application
var (
	// Registration errors
	ErrInvalidNickname   = errors.New("invalid nickname")
	ErrUnknownConnection = errors.New("unknown connection")

	// Challenge errors
	ErrUnknownTarget = errors.New("unknown target")
	ErrAlreadyBusy   = errors.New("already busy")
	ErrSelfChallenge = errors.New("cannot challenge yourself")
	ErrNotInMatch    = errors.New("not in a match")

	// Protocol errors
	ErrMalformedCommand = errors.New("malformed command")

	// Transport errors
	ErrTransportFailure = errors.New("transport failure")

	// History errors
	ErrMatchNotFound = errors.New("match not found")
)

// ErrReservedNickname rejects names that would let chat lines pose as control messages
var ErrReservedNickname = fmt.Errorf("%w: reserved prefix", ErrInvalidNickname)

// Busy errors distinguish which side of a challenge is occupied; both match ErrAlreadyBusy
var (
	ErrSenderBusy = fmt.Errorf("%w: sender is in a game", ErrAlreadyBusy)
	ErrTargetBusy = fmt.Errorf("%w: target is in a game", ErrAlreadyBusy)
)
