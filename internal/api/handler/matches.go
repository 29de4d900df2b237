package handler

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/rpschat/internal/api/apierr"
	"github.com/mcoot/rpschat/internal/api/request"
	"github.com/mcoot/rpschat/internal/api/response"
	"github.com/mcoot/rpschat/internal/model"
	"github.com/mcoot/rpschat/internal/services/history"
)

// MatchHistory reads completed matches
type MatchHistory interface {
	Recent(ctx context.Context, limit int) ([]*model.MatchRecord, error)
	Get(ctx context.Context, id model.MatchID) (*model.MatchRecord, error)
}

// MatchHandler serves match history endpoints
type MatchHandler struct {
	history MatchHistory
}

// NewMatchHandler creates a new match handler
func NewMatchHandler(history MatchHistory) *MatchHandler {
	return &MatchHandler{history: history}
}

// List handles GET /api/v1/matches
func (h *MatchHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := request.IntQuery(r, "limit", history.DefaultLimit)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	if limit < 1 || limit > history.MaxLimit {
		apierr.WriteError(w, history.ErrInvalidLimit)
		return
	}

	records, err := h.history.Recent(r.Context(), limit)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.MatchesFromModel(records))
}

// Get handles GET /api/v1/matches/{id}
func (h *MatchHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := model.MatchID(mux.Vars(r)["id"])

	record, err := h.history.Get(r.Context(), id)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.MatchFromModel(record))
}
