package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/rpschat/internal/model"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage = New(3)
	s.ctx = context.Background()
}

func record(id string) *model.MatchRecord {
	return &model.MatchRecord{
		ID:          model.MatchID(id),
		Challenger:  "A",
		Target:      "B",
		Result:      model.MatchResultDraw,
		CompletedAt: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (s *StorageSuite) TestSaveAndGetMatch() {
	err := s.storage.SaveMatch(s.ctx, record("m1"))
	s.Require().NoError(err)

	got, err := s.storage.GetMatch(s.ctx, "m1")
	s.Require().NoError(err)
	s.Equal(model.MatchID("m1"), got.ID)
	s.Equal(model.MatchResultDraw, got.Result)
}

func (s *StorageSuite) TestGetMatchNotFound() {
	_, err := s.storage.GetMatch(s.ctx, "nope")
	s.ErrorIs(err, model.ErrMatchNotFound)
}

func (s *StorageSuite) TestStoredRecordIsCopied() {
	rec := record("m1")
	_ = s.storage.SaveMatch(s.ctx, rec)
	rec.Winner = "mutated"

	got, _ := s.storage.GetMatch(s.ctx, "m1")
	s.Empty(got.Winner)
}

func (s *StorageSuite) TestRecentMatchesNewestFirst() {
	for i := 1; i <= 3; i++ {
		s.Require().NoError(s.storage.SaveMatch(s.ctx, record(fmt.Sprintf("m%d", i))))
	}

	recent, err := s.storage.RecentMatches(s.ctx, 2)
	s.Require().NoError(err)
	s.Require().Len(recent, 2)
	s.Equal(model.MatchID("m3"), recent[0].ID)
	s.Equal(model.MatchID("m2"), recent[1].ID)
}

func (s *StorageSuite) TestRetentionDropsOldest() {
	for i := 1; i <= 5; i++ {
		s.Require().NoError(s.storage.SaveMatch(s.ctx, record(fmt.Sprintf("m%d", i))))
	}

	recent, err := s.storage.RecentMatches(s.ctx, 10)
	s.Require().NoError(err)
	s.Len(recent, 3)
	_, err = s.storage.GetMatch(s.ctx, "m1")
	s.ErrorIs(err, model.ErrMatchNotFound)
}

func (s *StorageSuite) TestRecentMatchesEmpty() {
	recent, err := s.storage.RecentMatches(s.ctx, 5)
	s.Require().NoError(err)
	s.Empty(recent)
}
