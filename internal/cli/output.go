package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case HealthResult:
		o.printHealthResult(v)
	case PlayersResult:
		o.printPlayers(v)
	case MatchesResult:
		o.printMatches(v)
	case Match:
		o.printMatch(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// HealthResult response type (matches API)
type HealthResult struct {
	Status        string `json:"status"`
	Instance      string `json:"instance"`
	Players       int    `json:"players"`
	ActiveMatches int    `json:"active_matches"`
}

// Player response type
type Player struct {
	Name        string    `json:"name"`
	GamesPlayed uint      `json:"games_played"`
	GamesWon    uint      `json:"games_won"`
	WinRatio    float64   `json:"win_ratio"`
	JoinedAt    time.Time `json:"joined_at"`
}

// PlayersResult response type
type PlayersResult struct {
	Players []Player `json:"players"`
}

// Match response type
type Match struct {
	ID             string    `json:"id"`
	Challenger     string    `json:"challenger"`
	Target         string    `json:"target"`
	ChallengerMove string    `json:"challenger_move,omitempty"`
	TargetMove     string    `json:"target_move,omitempty"`
	Result         string    `json:"result"`
	Winner         *string   `json:"winner"`
	Reason         string    `json:"reason,omitempty"`
	CompletedAt    time.Time `json:"completed_at"`
}

// MatchesResult response type
type MatchesResult struct {
	Matches []Match `json:"matches"`
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Fprintf(o.w, "Status: %s\n", h.Status)
	fmt.Fprintf(o.w, "Instance: %s\n", h.Instance)
	fmt.Fprintf(o.w, "Players: %d\n", h.Players)
	fmt.Fprintf(o.w, "Active matches: %d\n", h.ActiveMatches)
}

func (o *Output) printPlayers(p PlayersResult) {
	if len(p.Players) == 0 {
		fmt.Fprintln(o.w, "No players connected")
		return
	}
	fmt.Fprintf(o.w, "Players (%d):\n", len(p.Players))
	for _, pl := range p.Players {
		fmt.Fprintf(o.w, "  - %s: %d played, %d won (%.2f)\n", pl.Name, pl.GamesPlayed, pl.GamesWon, pl.WinRatio)
	}
}

func (o *Output) printMatches(m MatchesResult) {
	if len(m.Matches) == 0 {
		fmt.Fprintln(o.w, "No matches yet")
		return
	}
	for _, match := range m.Matches {
		fmt.Fprintf(o.w, "%s  %s  %s vs %s: %s\n",
			match.CompletedAt.Format(time.RFC3339), match.ID, match.Challenger, match.Target, summary(match))
	}
}

func (o *Output) printMatch(m Match) {
	fmt.Fprintf(o.w, "Match: %s\n", m.ID)
	fmt.Fprintf(o.w, "Completed: %s\n", m.CompletedAt.Format(time.RFC3339))
	fmt.Fprintf(o.w, "Challenger: %s (%s)\n", m.Challenger, moveOrDash(m.ChallengerMove))
	fmt.Fprintf(o.w, "Target: %s (%s)\n", m.Target, moveOrDash(m.TargetMove))
	fmt.Fprintf(o.w, "Result: %s\n", summary(m))
}

func summary(m Match) string {
	switch {
	case m.Winner == nil:
		return "draw"
	case m.Reason != "":
		return fmt.Sprintf("%s wins by forfeit (%s)", *m.Winner, m.Reason)
	default:
		return *m.Winner + " wins"
	}
}

func moveOrDash(move string) string {
	if move == "" {
		return "-"
	}
	return move
}
