package broadcast

import (
	"log/slog"

	"github.com/mcoot/rpschat/internal/metrics"
	"github.com/mcoot/rpschat/internal/model"
	"github.com/mcoot/rpschat/internal/protocol"
	"github.com/mcoot/rpschat/internal/services/stats"
)

// Sink accepts outbound lines for one connection.
// Deliver must not block; a full or closed sink returns ErrTransportFailure.
type Sink interface {
	ID() model.ConnID
	Deliver(line string) error
	Close() error
}

// Directory is the view of registered players the gateway fans out over
type Directory interface {
	Connections() []model.ConnID
	Roster() []*model.Player
}

// Gateway fans text out to connections and collects the ones that failed.
// It is not safe for concurrent use; the session server serializes access.
type Gateway struct {
	sinks     map[model.ConnID]Sink
	directory Directory
	failed    []model.ConnID
	failedSet map[model.ConnID]struct{}
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// New creates a Gateway over the given directory
func New(directory Directory, m *metrics.Metrics, logger *slog.Logger) *Gateway {
	return &Gateway{
		sinks:     make(map[model.ConnID]Sink),
		directory: directory,
		failedSet: make(map[model.ConnID]struct{}),
		metrics:   m,
		logger:    logger.With(slog.String("component", "broadcast")),
	}
}

// Attach makes a connection's sink reachable
func (g *Gateway) Attach(sink Sink) {
	g.sinks[sink.ID()] = sink
}

// Detach forgets a connection's sink and returns it so the caller can close it
func (g *Gateway) Detach(conn model.ConnID) (Sink, bool) {
	sink, ok := g.sinks[conn]
	delete(g.sinks, conn)
	return sink, ok
}

// Attached reports whether a connection still has a sink
func (g *Gateway) Attached(conn model.ConnID) bool {
	_, ok := g.sinks[conn]
	return ok
}

// Sinks returns every attached sink, registered or not
func (g *Gateway) Sinks() []Sink {
	sinks := make([]Sink, 0, len(g.sinks))
	for _, sink := range g.sinks {
		sinks = append(sinks, sink)
	}
	return sinks
}

// Send delivers one message to one connection.
// Failures are logged and queued for eviction, never returned.
func (g *Gateway) Send(conn model.ConnID, text string) {
	if _, failed := g.failedSet[conn]; failed {
		return
	}
	sink, ok := g.sinks[conn]
	if !ok {
		g.logger.Debug("send to detached connection dropped", slog.String("conn", string(conn)))
		return
	}

	if err := sink.Deliver(text + protocol.RecordSeparator); err != nil {
		g.logger.Warn("delivery failed",
			slog.String("conn", string(conn)),
			slog.String("error", err.Error()),
		)
		g.metrics.DeliveryFailed()
		g.failedSet[conn] = struct{}{}
		g.failed = append(g.failed, conn)
	}
}

// BroadcastAll sends text to every registered connection
func (g *Gateway) BroadcastAll(text string) {
	for _, conn := range g.directory.Connections() {
		g.Send(conn, text)
	}
}

// BroadcastExcept sends text to every registered connection but one
func (g *Gateway) BroadcastExcept(text string, excluded model.ConnID) {
	for _, conn := range g.directory.Connections() {
		if conn == excluded {
			continue
		}
		g.Send(conn, text)
	}
}

// BroadcastRoster sends the current roster to every registered connection
func (g *Gateway) BroadcastRoster() {
	g.BroadcastAll(protocol.RosterMessage(stats.FormatRoster(g.directory.Roster())))
}

// TakeFailed returns and clears the connections that failed since the last call
func (g *Gateway) TakeFailed() []model.ConnID {
	failed := g.failed
	g.failed = nil
	g.failedSet = make(map[model.ConnID]struct{})
	return failed
}
