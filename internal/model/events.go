package model

import "time"

// EventType identifies the type of event
type EventType string

const (
	EventPlayerJoined   EventType = "player_joined"
	EventPlayerLeft     EventType = "player_left"
	EventMatchResolved  EventType = "match_resolved"
	EventMatchForfeited EventType = "match_forfeited"
)

// Event is emitted by the session engine for consumers outside the lock
type Event struct {
	Type      EventType    `json:"type"`
	Timestamp time.Time    `json:"timestamp"`
	Player    string       `json:"player,omitempty"` // Join/leave events
	Match     *MatchRecord `json:"match,omitempty"`  // Match events
}
