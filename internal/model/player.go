package model

import "time"

// ConnID identifies one live client connection
type ConnID string

// Player is the session identity and game counters bound to a connection
type Player struct {
	Name        string
	GamesPlayed uint
	GamesWon    uint
	JoinedAt    time.Time
}

// WinRatio returns GamesWon/GamesPlayed, or 0 before the first game
func (p *Player) WinRatio() float64 {
	if p.GamesPlayed == 0 {
		return 0
	}
	return float64(p.GamesWon) / float64(p.GamesPlayed)
}

// Clone returns a copy safe to hand out of the session lock
func (p *Player) Clone() *Player {
	c := *p
	return &c
}
