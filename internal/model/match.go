package model

import "time"

// MatchID uniquely identifies a completed match within one server instance
type MatchID string

// MatchResult describes how a match ended
type MatchResult string

const (
	MatchResultChallengerWin MatchResult = "challenger_win"
	MatchResultTargetWin     MatchResult = "target_win"
	MatchResultDraw          MatchResult = "draw"
	MatchResultForfeit       MatchResult = "forfeit"
)

// Forfeit reasons
const (
	ForfeitReasonTimeout    = "timeout"
	ForfeitReasonDisconnect = "disconnect"
)

// MatchRecord is a lightweight record of a resolved match
type MatchRecord struct {
	ID             MatchID     `json:"id"`
	Challenger     string      `json:"challenger"`
	Target         string      `json:"target"`
	ChallengerMove Move        `json:"challenger_move,omitempty"`
	TargetMove     Move        `json:"target_move,omitempty"`
	Result         MatchResult `json:"result"`
	Winner         string      `json:"winner,omitempty"` // Empty on draw
	Reason         string      `json:"reason,omitempty"` // Set on forfeit
	CompletedAt    time.Time   `json:"completed_at"`
}
