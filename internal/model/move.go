package model

import (
	"fmt"
	"strings"
)

// Move is one rock-paper-scissors throw
type Move string

const (
	MoveRock     Move = "rock"
	MovePaper    Move = "paper"
	MoveScissors Move = "scissors"
)

// Moves returns all valid moves
func Moves() []Move {
	return []Move{MoveRock, MovePaper, MoveScissors}
}

// ParseMove converts user input to a Move, ignoring case and surrounding space
func ParseMove(s string) (Move, error) {
	switch Move(strings.ToLower(strings.TrimSpace(s))) {
	case MoveRock:
		return MoveRock, nil
	case MovePaper:
		return MovePaper, nil
	case MoveScissors:
		return MoveScissors, nil
	default:
		return "", fmt.Errorf("%w: unknown move %q", ErrMalformedCommand, s)
	}
}

// Beats reports whether m defeats other
func (m Move) Beats(other Move) bool {
	switch m {
	case MoveRock:
		return other == MoveScissors
	case MoveScissors:
		return other == MovePaper
	case MovePaper:
		return other == MoveRock
	}
	return false
}

// Outcome is the result of resolving two moves, relative to the first mover
type Outcome int

const (
	OutcomeDraw Outcome = iota
	OutcomeFirstWins
	OutcomeSecondWins
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDraw:
		return "draw"
	case OutcomeFirstWins:
		return "first_wins"
	case OutcomeSecondWins:
		return "second_wins"
	default:
		return "unknown"
	}
}

// Mirror returns the outcome seen from the other side
func (o Outcome) Mirror() Outcome {
	switch o {
	case OutcomeFirstWins:
		return OutcomeSecondWins
	case OutcomeSecondWins:
		return OutcomeFirstWins
	default:
		return o
	}
}
