package factory

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/rpschat/internal/model"
	"github.com/mcoot/rpschat/internal/testutil"
)

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
}

func (s *IntegrationSuite) join(conn model.ConnID, name string) *testutil.RecordingSink {
	sink := testutil.NewRecordingSink(conn)
	s.app.Session.Attach(sink)
	s.app.Session.HandleLine(conn, name)
	return sink
}

// drain waits for every emitted event to reach history
func (s *IntegrationSuite) drain() {
	ctx, cancel := context.WithTimeout(s.ctx, 2*time.Second)
	defer cancel()
	s.Require().NoError(s.app.Dispatcher.Close(ctx))
}

// Test: a resolved match lands in history with the mocked id and time
func (s *IntegrationSuite) TestMatchIsRecorded() {
	s.app.MockRandom.QueueString("MATCH0000001")
	go s.app.Dispatcher.Run()

	a := s.join("a", "Alice")
	s.join("b", "Bob")
	s.app.Session.HandleLine("a", "challenge Bob rock")
	s.app.Session.HandleLine("b", "choice scissors")
	s.True(a.Contains("Game Result: Alice wins! Alice chose rock, Bob chose scissors."))

	s.drain()

	record, err := s.app.History.Get(s.ctx, "MATCH0000001")
	s.Require().NoError(err)
	s.Equal("Alice", record.Challenger)
	s.Equal("Bob", record.Target)
	s.Equal(model.MoveRock, record.ChallengerMove)
	s.Equal(model.MoveScissors, record.TargetMove)
	s.Equal(model.MatchResultChallengerWin, record.Result)
	s.Equal("Alice", record.Winner)
	s.Equal(s.app.MockClock.Now(), record.CompletedAt)
}

// Test: forfeits and normal results are listed newest first
func (s *IntegrationSuite) TestRecentMatchesAfterForfeit() {
	s.app.MockRandom.QueueString("FIRST0000001", "SECOND000001")
	go s.app.Dispatcher.Run()

	s.join("a", "Alice")
	s.join("b", "Bob")
	s.app.Session.HandleLine("a", "challenge Bob paper")
	s.app.Session.HandleLine("b", "choice paper")

	s.app.MockClock.Advance(time.Minute)
	s.app.Session.HandleLine("b", "challenge Alice rock")
	s.Require().NoError(s.app.Session.Disconnect("b"))

	s.drain()

	recent, err := s.app.History.Recent(s.ctx, 0)
	s.Require().NoError(err)
	s.Require().Len(recent, 2)
	s.Equal(model.MatchID("SECOND000001"), recent[0].ID)
	s.Equal(model.MatchResultForfeit, recent[0].Result)
	s.Equal("Alice", recent[0].Winner)
	s.Equal(model.ForfeitReasonDisconnect, recent[0].Reason)
	s.Equal(model.MatchID("FIRST0000001"), recent[1].ID)
	s.Equal(model.MatchResultDraw, recent[1].Result)
}

// Test: a real TCP client is visible over the HTTP API
func (s *IntegrationSuite) TestTCPClientVisibleOverHTTP() {
	errCh, err := s.app.Start()
	s.Require().NoError(err)
	defer func() {
		ctx, cancel := context.WithTimeout(s.ctx, 5*time.Second)
		defer cancel()
		s.NoError(s.app.Shutdown(ctx))
	}()

	conn, err := net.Dial("tcp", s.app.TCPServer.Addr())
	s.Require().NoError(err)
	defer conn.Close()
	reader := bufio.NewReader(conn)

	_, err = conn.Write([]byte("Alice\n"))
	s.Require().NoError(err)
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	line, err := reader.ReadString('\n')
	s.Require().NoError(err)
	s.Equal("Players:\n", line)

	resp, err := http.Get("http://" + s.app.HTTPServer.Addr() + "/api/v1/players")
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	var body struct {
		Players []struct {
			Name string `json:"name"`
		} `json:"players"`
	}
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&body))
	s.Require().Len(body.Players, 1)
	s.Equal("Alice", body.Players[0].Name)

	select {
	case err := <-errCh:
		s.FailNow("server stopped", err.Error())
	default:
	}
}

// Test: shutdown closes connected clients
func (s *IntegrationSuite) TestShutdownClosesClients() {
	_, err := s.app.Start()
	s.Require().NoError(err)

	conn, err := net.Dial("tcp", s.app.TCPServer.Addr())
	s.Require().NoError(err)
	defer conn.Close()
	_, err = conn.Write([]byte("Alice\n"))
	s.Require().NoError(err)
	s.Eventually(func() bool { return len(s.app.Session.Roster()) == 1 }, 2*time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(s.ctx, 5*time.Second)
	defer cancel()
	s.Require().NoError(s.app.Shutdown(ctx))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, err = io.ReadAll(conn)
	s.NoError(err, "server should close the connection")
	s.Empty(s.app.Session.Roster())
}
