package history

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mcoot/rpschat/internal/model"
	"github.com/mcoot/rpschat/internal/storage"
)

const (
	// DefaultLimit is used when a caller does not ask for a specific number of matches
	DefaultLimit = 20
	// MaxLimit caps how many matches one query returns
	MaxLimit = 100
)

// ErrInvalidLimit is returned for a limit outside 1..MaxLimit
var ErrInvalidLimit = fmt.Errorf("limit must be between 1 and %d", MaxLimit)

// Service records and reads completed matches
type Service struct {
	storage storage.Storage
	logger  *slog.Logger
}

// New creates a new history Service
func New(storage storage.Storage, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger.With(slog.String("component", "history")),
	}
}

// Record stores a completed match
func (s *Service) Record(ctx context.Context, record *model.MatchRecord) error {
	if err := s.storage.SaveMatch(ctx, record); err != nil {
		s.logger.Error("failed to save match",
			slog.String("match_id", string(record.ID)),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("save match %s: %w", record.ID, err)
	}
	return nil
}

// Get returns one match by ID
func (s *Service) Get(ctx context.Context, id model.MatchID) (*model.MatchRecord, error) {
	return s.storage.GetMatch(ctx, id)
}

// Recent returns up to limit matches, newest first. Zero means DefaultLimit.
func (s *Service) Recent(ctx context.Context, limit int) ([]*model.MatchRecord, error) {
	if limit == 0 {
		limit = DefaultLimit
	}
	if limit < 0 || limit > MaxLimit {
		return nil, ErrInvalidLimit
	}
	return s.storage.RecentMatches(ctx, limit)
}
