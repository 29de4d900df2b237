package memory

import (
	"context"
	"sync"

	"github.com/mcoot/rpschat/internal/model"
	"github.com/mcoot/rpschat/internal/storage"
)

// DefaultMaxMatches bounds how many matches are retained
const DefaultMaxMatches = 1000

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	matches    map[model.MatchID]*model.MatchRecord
	order      []model.MatchID // oldest first
	maxMatches int
}

// New creates a new in-memory storage instance retaining up to maxMatches records.
// A non-positive maxMatches uses DefaultMaxMatches.
func New(maxMatches int) *Storage {
	if maxMatches <= 0 {
		maxMatches = DefaultMaxMatches
	}
	return &Storage{
		matches:    make(map[model.MatchID]*model.MatchRecord),
		maxMatches: maxMatches,
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) SaveMatch(ctx context.Context, record *model.MatchRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := *record
	if _, exists := s.matches[record.ID]; !exists {
		s.order = append(s.order, record.ID)
	}
	s.matches[record.ID] = &c

	for len(s.order) > s.maxMatches {
		delete(s.matches, s.order[0])
		s.order = s.order[1:]
	}
	return nil
}

func (s *Storage) GetMatch(ctx context.Context, id model.MatchID) (*model.MatchRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.matches[id]
	if !ok {
		return nil, model.ErrMatchNotFound
	}
	c := *record
	return &c, nil
}

func (s *Storage) RecentMatches(ctx context.Context, limit int) ([]*model.MatchRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		return []*model.MatchRecord{}, nil
	}
	records := make([]*model.MatchRecord, 0, min(limit, len(s.order)))
	for i := len(s.order) - 1; i >= 0 && len(records) < limit; i-- {
		c := *s.matches[s.order[i]]
		records = append(records, &c)
	}
	return records, nil
}

func (s *Storage) Close() error {
	return nil
}
