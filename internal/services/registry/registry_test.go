package registry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/rpschat/internal/dependencies/mocks"
	"github.com/mcoot/rpschat/internal/model"
	"github.com/mcoot/rpschat/internal/testutil"
)

type RegistrySuite struct {
	suite.Suite
	clock    *mocks.MockClock
	registry *Registry
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.registry = New(s.clock, testutil.NopLogger())
}

func (s *RegistrySuite) TestRegisterCreatesPlayer() {
	p, err := s.registry.Register("c1", "  Alice  ")
	s.Require().NoError(err)

	s.Equal("Alice", p.Name)
	s.Equal(uint(0), p.GamesPlayed)
	s.Equal(s.clock.Now(), p.JoinedAt)
	s.True(s.registry.IsRegistered("c1"))
}

func (s *RegistrySuite) TestRegisterCollapsesWhitespace() {
	p, err := s.registry.Register("c1", "Big \t  Al")
	s.Require().NoError(err)
	s.Equal("Big Al", p.Name)
}

func (s *RegistrySuite) TestRegisterRejectsEmptyNickname() {
	for _, nick := range []string{"", "   ", "\t"} {
		_, err := s.registry.Register("c1", nick)
		s.ErrorIs(err, model.ErrInvalidNickname)
	}
	s.False(s.registry.IsRegistered("c1"))
	s.Equal(0, s.registry.Len())
}

func (s *RegistrySuite) TestRegisterRejectsControlPrefixNicknames() {
	for _, nick := range []string{"Players", "Game Result", "Challenge Received", "Players:Mallory"} {
		_, err := s.registry.Register("c1", nick)
		s.ErrorIs(err, model.ErrReservedNickname, nick)
		s.ErrorIs(err, model.ErrInvalidNickname, nick)
	}
	s.False(s.registry.IsRegistered("c1"))

	_, err := s.registry.Register("c1", "Player One")
	s.NoError(err)
}

func (s *RegistrySuite) TestRegisterIsIdempotent() {
	first, err := s.registry.Register("c1", "Alice")
	s.Require().NoError(err)
	first.GamesPlayed = 4

	second, err := s.registry.Register("c1", "Someone Else")
	s.Require().NoError(err)

	s.Same(first, second)
	s.Equal("Alice", second.Name)
	s.Equal(uint(4), second.GamesPlayed)
	s.Equal(1, s.registry.Len())
}

func (s *RegistrySuite) TestUnregisterTwiceFails() {
	_, _ = s.registry.Register("c1", "Alice")

	p, err := s.registry.Unregister("c1")
	s.Require().NoError(err)
	s.Equal("Alice", p.Name)

	_, err = s.registry.Unregister("c1")
	s.ErrorIs(err, model.ErrUnknownConnection)
	s.Equal(0, s.registry.Len())
}

func (s *RegistrySuite) TestRosterKeepsJoinOrderAndCopies() {
	_, _ = s.registry.Register("c2", "Bob")
	_, _ = s.registry.Register("c1", "Alice")
	_, _ = s.registry.Register("c3", "Cy")
	_, _ = s.registry.Unregister("c1")

	roster := s.registry.Roster()
	s.Require().Len(roster, 2)
	s.Equal("Bob", roster[0].Name)
	s.Equal("Cy", roster[1].Name)
	s.Equal([]model.ConnID{"c2", "c3"}, s.registry.Connections())

	roster[0].GamesWon = 10
	live, _ := s.registry.Lookup("c2")
	s.Equal(uint(0), live.GamesWon)
}

func (s *RegistrySuite) TestRosterCountAfterJoinsAndLeaves() {
	for i, conn := range []model.ConnID{"a", "b", "c", "d", "e"} {
		_, err := s.registry.Register(conn, string(rune('A'+i)))
		s.Require().NoError(err)
	}
	_, _ = s.registry.Unregister("b")
	_, _ = s.registry.Unregister("d")

	s.Len(s.registry.Roster(), 3)
}

func (s *RegistrySuite) TestFindByNamePrefersEarliestJoined() {
	_, _ = s.registry.Register("c1", "Alice")
	_, _ = s.registry.Register("c2", "Bob")
	_, _ = s.registry.Register("c3", "Bob")

	conn, found, self := s.registry.FindByName("Bob", "c1")
	s.True(found)
	s.False(self)
	s.Equal(model.ConnID("c2"), conn)
}

func (s *RegistrySuite) TestFindByNameSkipsExcluded() {
	_, _ = s.registry.Register("c1", "Bob")
	_, _ = s.registry.Register("c2", "Bob")

	conn, found, self := s.registry.FindByName("Bob", "c1")
	s.True(found)
	s.True(self)
	s.Equal(model.ConnID("c2"), conn)
}

func (s *RegistrySuite) TestFindByNameOnlySelf() {
	_, _ = s.registry.Register("c1", "Alice")

	_, found, self := s.registry.FindByName("Alice", "c1")
	s.False(found)
	s.True(self)
}

func (s *RegistrySuite) TestFindByNameUnknown() {
	_, _ = s.registry.Register("c1", "Alice")

	_, found, self := s.registry.FindByName("Zed", "c1")
	s.False(found)
	s.False(self)
}
