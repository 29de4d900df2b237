package router

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mcoot/rpschat/internal/metrics"
	"github.com/mcoot/rpschat/internal/model"
	"github.com/mcoot/rpschat/internal/protocol"
	"github.com/mcoot/rpschat/internal/services/broadcast"
	"github.com/mcoot/rpschat/internal/services/match"
	"github.com/mcoot/rpschat/internal/services/registry"
)

// JoinListener is told about every newly registered player
type JoinListener interface {
	PlayerJoined(conn model.ConnID, player *model.Player)
}

// Router dispatches inbound lines to registration, the match coordinator or chat.
// It is not safe for concurrent use; the session server serializes access.
type Router struct {
	registry    *registry.Registry
	coordinator *match.Coordinator
	gateway     *broadcast.Gateway
	joins       JoinListener
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

// New creates a Router
func New(
	registry *registry.Registry,
	coordinator *match.Coordinator,
	gateway *broadcast.Gateway,
	joins JoinListener,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Router {
	return &Router{
		registry:    registry,
		coordinator: coordinator,
		gateway:     gateway,
		joins:       joins,
		metrics:     m,
		logger:      logger.With(slog.String("component", "router")),
	}
}

// Handle processes one inbound line from a connection
func (r *Router) Handle(conn model.ConnID, line string) {
	r.metrics.LineReceived()

	player, ok := r.registry.Lookup(conn)
	if !ok {
		r.register(conn, line)
		return
	}

	cmd, err := protocol.Parse(line)
	if err != nil {
		r.reject(conn, err, "")
		return
	}

	switch cmd := cmd.(type) {
	case protocol.Challenge:
		err := r.coordinator.Challenge(conn, cmd.Target, cmd.Move)
		r.metrics.Challenge(challengeOutcome(err))
		if err != nil {
			r.reject(conn, err, protocol.NormalizeName(cmd.Target))
		}
	case protocol.Choice:
		if err := r.coordinator.Choice(conn, cmd.Move); err != nil {
			r.reject(conn, err, "")
		}
	case protocol.Loss:
		if err := r.coordinator.Forfeit(conn); err != nil {
			r.reject(conn, err, "")
		}
	case protocol.Chat:
		if cmd.Text == "" {
			return
		}
		r.gateway.BroadcastExcept(protocol.ChatMessage(player.Name, cmd.Text), conn)
	}
}

func (r *Router) register(conn model.ConnID, nickname string) {
	player, err := r.registry.Register(conn, nickname)
	if err != nil {
		r.reject(conn, err, "")
		return
	}
	r.gateway.BroadcastRoster()
	if r.joins != nil {
		r.joins.PlayerJoined(conn, player)
	}
}

func (r *Router) reject(conn model.ConnID, err error, target string) {
	text := ErrorText(err, target)
	if text == "" {
		r.logger.Debug("ignored command", slog.String("conn", string(conn)), slog.String("error", err.Error()))
		return
	}
	r.logger.Debug("rejected command", slog.String("conn", string(conn)), slog.String("error", err.Error()))
	r.gateway.Send(conn, text)
}

// ErrorText renders a recoverable error as the line sent back to the client.
// target names the challenged player where relevant. An empty result means say nothing.
func ErrorText(err error, target string) string {
	switch {
	case errors.Is(err, model.ErrNotInMatch):
		return ""
	case errors.Is(err, model.ErrReservedNickname):
		return "That nickname is reserved. Please choose another."
	case errors.Is(err, model.ErrInvalidNickname):
		return "Please enter a non-empty nickname."
	case errors.Is(err, model.ErrMalformedCommand):
		detail := strings.TrimPrefix(err.Error(), model.ErrMalformedCommand.Error())
		detail = strings.TrimPrefix(detail, ": ")
		if detail == "" {
			return "Invalid command."
		}
		return fmt.Sprintf("Invalid command: %s", detail)
	case errors.Is(err, model.ErrSenderBusy):
		return "You're currently in a game and cannot challenge another player."
	case errors.Is(err, model.ErrTargetBusy):
		return fmt.Sprintf("%s is currently busy in another game.", target)
	case errors.Is(err, model.ErrSelfChallenge):
		return "You cannot challenge yourself."
	case errors.Is(err, model.ErrUnknownTarget):
		return fmt.Sprintf("%s is not connected.", target)
	case errors.Is(err, model.ErrUnknownConnection):
		return "Please enter a nickname first."
	default:
		return "Something went wrong."
	}
}

func challengeOutcome(err error) string {
	switch {
	case err == nil:
		return "accepted"
	case errors.Is(err, model.ErrAlreadyBusy):
		return "busy"
	case errors.Is(err, model.ErrUnknownTarget):
		return "unknown_target"
	case errors.Is(err, model.ErrSelfChallenge):
		return "self"
	default:
		return "error"
	}
}
