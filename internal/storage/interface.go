package storage

import (
	"context"

	"github.com/mcoot/rpschat/internal/model"
)

// Storage defines persistence for the current instance's match history
type Storage interface {
	// SaveMatch stores a completed match and makes it the most recent
	SaveMatch(ctx context.Context, record *model.MatchRecord) error
	// GetMatch returns ErrMatchNotFound for unknown or expired matches
	GetMatch(ctx context.Context, id model.MatchID) (*model.MatchRecord, error)
	// RecentMatches returns up to limit matches, newest first
	RecentMatches(ctx context.Context, limit int) ([]*model.MatchRecord, error)

	Close() error
}
