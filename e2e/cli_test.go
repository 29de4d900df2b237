package e2e_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/rpschat/internal/cli"
	"github.com/mcoot/rpschat/internal/factory"
)

// testServer runs a full app on loopback ports
type testServer struct {
	app     *factory.TestApp
	httpURL string
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	app := factory.NewTestApp()
	_, err := app.Start()
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = app.Shutdown(ctx)
	})

	return &testServer{app: app, httpURL: "http://" + app.HTTPServer.Addr()}
}

// player is a raw TCP client
type player struct {
	conn   net.Conn
	reader *bufio.Reader
}

func (ts *testServer) connect(t *testing.T, name string) *player {
	t.Helper()
	conn, err := net.Dial("tcp", ts.app.TCPServer.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	p := &player{conn: conn, reader: bufio.NewReader(conn)}
	p.send(t, name)
	p.waitFor(t, "Players:")
	return p
}

func (p *player) send(t *testing.T, line string) {
	t.Helper()
	_, err := p.conn.Write([]byte(line + "\n"))
	require.NoError(t, err)
}

// waitFor reads lines until one starts with prefix
func (p *player) waitFor(t *testing.T, prefix string) string {
	t.Helper()
	require.NoError(t, p.conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		line, err := p.reader.ReadString('\n')
		require.NoError(t, err, "waiting for %q", prefix)
		line = strings.TrimSuffix(line, "\n")
		if strings.HasPrefix(line, prefix) {
			return line
		}
	}
}

// run executes the CLI in-process with JSON output
func (ts *testServer) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := cli.NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--server", ts.httpURL, "--output", "json"}, args...))
	err := cmd.Execute()
	return stdout.String(), err
}

func unmarshal[T any](t *testing.T, out string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(out), &v), out)
	return v
}

func TestHealth(t *testing.T) {
	ts := startTestServer(t)

	out, err := ts.run(t, "health")
	require.NoError(t, err)

	health := unmarshal[cli.HealthResult](t, out)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, factory.TestInstanceID, health.Instance)
}

func TestPlayersAfterTCPJoin(t *testing.T) {
	ts := startTestServer(t)
	ts.connect(t, "Alice")
	ts.connect(t, "Bob")

	out, err := ts.run(t, "players")
	require.NoError(t, err)

	players := unmarshal[cli.PlayersResult](t, out).Players
	require.Len(t, players, 2)
	assert.Equal(t, "Alice", players[0].Name)
	assert.Equal(t, "Bob", players[1].Name)
}

func TestMatchShowsUpInHistory(t *testing.T) {
	ts := startTestServer(t)
	ts.app.MockRandom.QueueString("E2EMATCH0001")
	alice := ts.connect(t, "Alice")
	bob := ts.connect(t, "Bob")

	alice.send(t, "challenge Bob scissors")
	assert.Equal(t, "Challenge Received: Alice", bob.waitFor(t, "Challenge Received:"))
	bob.send(t, "choice rock")
	assert.Equal(t, "Game Result: Bob wins! Alice chose scissors, Bob chose rock.", alice.waitFor(t, "Game Result:"))

	var matches []cli.Match
	require.Eventually(t, func() bool {
		out, err := ts.run(t, "matches", "list")
		if err != nil {
			return false
		}
		var result cli.MatchesResult
		if json.Unmarshal([]byte(out), &result) != nil {
			return false
		}
		matches = result.Matches
		return len(matches) == 1
	}, 2*time.Second, 20*time.Millisecond)
	assert.Equal(t, "E2EMATCH0001", matches[0].ID)
	require.NotNil(t, matches[0].Winner)
	assert.Equal(t, "Bob", *matches[0].Winner)

	out, err := ts.run(t, "matches", "get", "E2EMATCH0001")
	require.NoError(t, err)
	match := unmarshal[cli.Match](t, out)
	assert.Equal(t, "scissors", match.ChallengerMove)
	assert.Equal(t, "rock", match.TargetMove)
}

func TestMatchNotFound(t *testing.T) {
	ts := startTestServer(t)

	_, err := ts.run(t, "matches", "get", "MISSING")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "MATCH_NOT_FOUND")
}

func TestInvalidLimit(t *testing.T) {
	ts := startTestServer(t)

	_, err := ts.run(t, "matches", "list", "--limit", "500")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "INVALID_REQUEST")
}

func TestTextOutput(t *testing.T) {
	ts := startTestServer(t)
	ts.connect(t, "Alice")

	var stdout bytes.Buffer
	cmd := cli.NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetArgs([]string{"--server", ts.httpURL, "--output", "text", "players"})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, "Players (1):\n  - Alice: 0 played, 0 won (0.00)\n", stdout.String())
}

func TestEventsStream(t *testing.T) {
	ts := startTestServer(t)

	type result struct {
		out string
		err error
	}
	resCh := make(chan result, 1)
	go func() {
		var stdout bytes.Buffer
		cmd := cli.NewRootCmd()
		cmd.SetOut(&stdout)
		cmd.SetArgs([]string{"--server", ts.httpURL, "--output", "json", "events", "--count", "1"})
		err := cmd.Execute()
		resCh <- result{stdout.String(), err}
	}()

	require.Eventually(t, func() bool { return ts.app.Stream.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)
	ts.connect(t, "Alice")

	select {
	case res := <-resCh:
		require.NoError(t, res.err)
		event := unmarshal[cli.StreamEvent](t, strings.TrimSpace(res.out))
		assert.Equal(t, "player_joined", event.Event)
		assert.Contains(t, string(event.Data), `"player":"Alice"`)
	case <-time.After(3 * time.Second):
		t.Fatal("events command did not exit")
	}
}
