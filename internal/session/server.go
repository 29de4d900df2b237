package session

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/mcoot/rpschat/internal/dependencies/clock"
	"github.com/mcoot/rpschat/internal/dependencies/random"
	"github.com/mcoot/rpschat/internal/metrics"
	"github.com/mcoot/rpschat/internal/model"
	"github.com/mcoot/rpschat/internal/services/broadcast"
	"github.com/mcoot/rpschat/internal/services/match"
	"github.com/mcoot/rpschat/internal/services/registry"
	"github.com/mcoot/rpschat/internal/services/router"
)

// Emitter receives events produced by state transitions. Emit must not block.
type Emitter interface {
	Emit(event model.Event)
}

// Server owns all session state behind one mutex.
// Transports reach the session only through Attach, HandleLine and Disconnect.
type Server struct {
	mu sync.Mutex

	registry    *registry.Registry
	gateway     *broadcast.Gateway
	coordinator *match.Coordinator
	router      *router.Router

	emitter Emitter
	clock   clock.Clock
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New creates a Server with no connections. emitter and m may be nil.
func New(emitter Emitter, clock clock.Clock, random random.Random, m *metrics.Metrics, logger *slog.Logger) *Server {
	s := &Server{
		emitter: emitter,
		clock:   clock,
		metrics: m,
		logger:  logger.With(slog.String("component", "session")),
	}
	s.registry = registry.New(clock, logger)
	s.gateway = broadcast.New(s.registry, m, logger)
	s.coordinator = match.NewCoordinator(s.registry, s.gateway, s, clock, random, logger)
	s.router = router.New(s.registry, s.coordinator, s.gateway, s, m, logger)
	return s
}

// Attach makes a new connection reachable. Its first line registers a nickname.
func (s *Server) Attach(sink broadcast.Sink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gateway.Attach(sink)
	s.logger.Debug("connection attached", slog.String("conn", string(sink.ID())))
}

// HandleLine processes one inbound line from an attached connection
func (s *Server) HandleLine(conn model.ConnID, line string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.gateway.Attached(conn) {
		s.logger.Debug("line from detached connection dropped", slog.String("conn", string(conn)))
		return
	}
	s.router.Handle(conn, line)
	s.evictFailed()
}

// Disconnect removes a connection, forfeiting any match it is in.
// Returns ErrUnknownConnection if the connection is already gone.
func (s *Server) Disconnect(conn model.ConnID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.remove(conn)
	s.evictFailed()
	return err
}

// Roster returns a snapshot of registered players in join order
func (s *Server) Roster() []*model.Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.Roster()
}

// ActiveMatches returns the number of matches in progress
func (s *Server) ActiveMatches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.coordinator.ActiveMatches()
}

// Invariant checks the consistency of the whole session state
func (s *Server) Invariant() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.coordinator.Invariant(); err != nil {
		return err
	}
	for _, conn := range s.registry.Connections() {
		if !s.gateway.Attached(conn) {
			return fmt.Errorf("%s is registered without a sink", conn)
		}
	}
	for _, conn := range s.registry.Connections() {
		if opponent, ok := s.coordinator.Opponent(conn); ok && !s.registry.IsRegistered(opponent) {
			return fmt.Errorf("%s is paired with unregistered %s", conn, opponent)
		}
	}
	return nil
}

// CloseAll closes every attached sink. Transports then report each disconnect.
func (s *Server) CloseAll() {
	s.mu.Lock()
	sinks := s.gateway.Sinks()
	s.mu.Unlock()

	for _, sink := range sinks {
		_ = sink.Close()
	}
}

// PlayerJoined is called by the router under the lock
func (s *Server) PlayerJoined(conn model.ConnID, player *model.Player) {
	s.metrics.SetPlayers(s.registry.Len())
	s.emit(model.Event{Type: model.EventPlayerJoined, Player: player.Name})
}

// MatchCompleted is called by the coordinator under the lock
func (s *Server) MatchCompleted(record *model.MatchRecord) {
	s.metrics.MatchCompleted(string(record.Result))
	eventType := model.EventMatchResolved
	if record.Result == model.MatchResultForfeit {
		eventType = model.EventMatchForfeited
	}
	s.emit(model.Event{Type: eventType, Match: record})
}

// remove runs the full departure path: forfeit, unregister, roster, detach
func (s *Server) remove(conn model.ConnID) error {
	s.coordinator.Disconnect(conn)

	player, err := s.registry.Unregister(conn)
	if err == nil {
		s.gateway.BroadcastRoster()
		s.metrics.SetPlayers(s.registry.Len())
		s.emit(model.Event{Type: model.EventPlayerLeft, Player: player.Name})
	}

	sink, attached := s.gateway.Detach(conn)
	if attached {
		if cerr := sink.Close(); cerr != nil {
			s.logger.Debug("closing sink", slog.String("conn", string(conn)), slog.String("error", cerr.Error()))
		}
	}

	if err != nil && !attached {
		return err
	}
	return nil
}

// evictFailed removes every connection whose delivery failed, including any
// that fail while earlier evictions broadcast their departure
func (s *Server) evictFailed() {
	for {
		failed := s.gateway.TakeFailed()
		if len(failed) == 0 {
			return
		}
		for _, conn := range failed {
			s.logger.Info("evicting connection", slog.String("conn", string(conn)))
			s.metrics.Evicted()
			_ = s.remove(conn)
		}
	}
}

func (s *Server) emit(event model.Event) {
	if s.emitter == nil {
		return
	}
	event.Timestamp = s.clock.Now()
	s.emitter.Emit(event)
}
