package handler

import (
	"net/http"

	"github.com/mcoot/rpschat/internal/api/response"
	"github.com/mcoot/rpschat/internal/model"
)

// SessionView is the read-only view of the live session the API serves
type SessionView interface {
	Roster() []*model.Player
	ActiveMatches() int
}

// StatusHandler serves health and roster endpoints
type StatusHandler struct {
	session    SessionView
	instanceID string
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(session SessionView, instanceID string) *StatusHandler {
	return &StatusHandler{
		session:    session,
		instanceID: instanceID,
	}
}

// Health handles GET /api/v1/health
func (h *StatusHandler) Health(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.Health{
		Status:        "ok",
		Instance:      h.instanceID,
		Players:       len(h.session.Roster()),
		ActiveMatches: h.session.ActiveMatches(),
	})
}

// Players handles GET /api/v1/players
func (h *StatusHandler) Players(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.PlayersFromModel(h.session.Roster()))
}
