package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/rpschat/internal/api/apierr"
	"github.com/mcoot/rpschat/internal/api/handler"
	"github.com/mcoot/rpschat/internal/api/middleware"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger     *slog.Logger
	InstanceID string
	Session    handler.SessionView
	History    handler.MatchHistory

	// Optional
	Metrics   http.Handler
	WebSocket http.Handler
	Events    http.Handler
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		apierr.WriteError(w, apierr.NewNotFoundError())
	})

	// Create handlers
	statusHandler := handler.NewStatusHandler(cfg.Session, cfg.InstanceID)
	matchHandler := handler.NewMatchHandler(cfg.History)

	// Create middleware
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	api.HandleFunc("/health", statusHandler.Health).Methods(http.MethodGet)
	api.HandleFunc("/players", statusHandler.Players).Methods(http.MethodGet)
	api.HandleFunc("/matches", matchHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/matches/{id}", matchHandler.Get).Methods(http.MethodGet)

	if cfg.Events != nil {
		api.Handle("/events", cfg.Events).Methods(http.MethodGet)
	}

	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics).Methods(http.MethodGet)
	}

	// Websocket connections are long-lived; only log the upgrade
	if cfg.WebSocket != nil {
		r.Handle("/ws", loggingMiddleware(cfg.WebSocket)).Methods(http.MethodGet)
	}

	return r
}
