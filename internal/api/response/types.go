package response

import (
	"time"

	"github.com/mcoot/rpschat/internal/model"
)

// Health is the response for the health endpoint
type Health struct {
	Status        string `json:"status"`
	Instance      string `json:"instance"`
	Players       int    `json:"players"`
	ActiveMatches int    `json:"active_matches"`
}

// Player represents a connected player in API responses
type Player struct {
	Name        string    `json:"name"`
	GamesPlayed uint      `json:"games_played"`
	GamesWon    uint      `json:"games_won"`
	WinRatio    float64   `json:"win_ratio"`
	JoinedAt    time.Time `json:"joined_at"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p *model.Player) Player {
	return Player{
		Name:        p.Name,
		GamesPlayed: p.GamesPlayed,
		GamesWon:    p.GamesWon,
		WinRatio:    p.WinRatio(),
		JoinedAt:    p.JoinedAt,
	}
}

// Players is the response for the roster endpoint
type Players struct {
	Players []Player `json:"players"`
}

// PlayersFromModel converts a roster snapshot, keeping join order
func PlayersFromModel(roster []*model.Player) Players {
	players := make([]Player, len(roster))
	for i, p := range roster {
		players[i] = PlayerFromModel(p)
	}
	return Players{Players: players}
}

// Match represents a completed match in API responses
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

// MatchFromModel converts a model.MatchRecord
func MatchFromModel(m *model.MatchRecord) Match {
	var winner *string
	if m.Winner != "" {
		w := m.Winner
		winner = &w
	}
	return Match{
		ID:             string(m.ID),
		Challenger:     m.Challenger,
		Target:         m.Target,
		ChallengerMove: string(m.ChallengerMove),
		TargetMove:     string(m.TargetMove),
		Result:         string(m.Result),
		Winner:         winner,
		Reason:         m.Reason,
		CompletedAt:    m.CompletedAt,
	}
}

// Matches is the response for the match history endpoint
type Matches struct {
	Matches []Match `json:"matches"`
}

// MatchesFromModel converts match records, keeping their order
func MatchesFromModel(records []*model.MatchRecord) Matches {
	matches := make([]Match, len(records))
	for i, m := range records {
		matches[i] = MatchFromModel(m)
	}
	return Matches{Matches: matches}
}
