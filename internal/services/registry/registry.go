package registry

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/mcoot/rpschat/internal/dependencies/clock"
	"github.com/mcoot/rpschat/internal/model"
	"github.com/mcoot/rpschat/internal/protocol"
)

// Registry binds live connections to their players.
// It is not safe for concurrent use; the session server serializes access.
type Registry struct {
	players map[model.ConnID]*model.Player
	order   []model.ConnID // join order
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates an empty Registry
func New(clock clock.Clock, logger *slog.Logger) *Registry {
	return &Registry{
		players: make(map[model.ConnID]*model.Player),
		clock:   clock,
		logger:  logger.With(slog.String("component", "registry")),
	}
}

// Register creates the player for a connection.
// Registering an already-registered connection returns the existing player unchanged.
func (r *Registry) Register(conn model.ConnID, nickname string) (*model.Player, error) {
	if p, ok := r.players[conn]; ok {
		return p, nil
	}

	name := protocol.NormalizeName(nickname)
	if name == "" {
		return nil, fmt.Errorf("%w: nickname must not be empty", model.ErrInvalidNickname)
	}
	if protocol.ReservedName(name) {
		return nil, fmt.Errorf("%w: %q", model.ErrReservedNickname, name)
	}

	p := &model.Player{
		Name:     name,
		JoinedAt: r.clock.Now(),
	}
	r.players[conn] = p
	r.order = append(r.order, conn)

	r.logger.Info("player registered",
		slog.String("conn", string(conn)),
		slog.String("name", name),
	)
	return p, nil
}

// Unregister removes and returns the player for a connection
func (r *Registry) Unregister(conn model.ConnID) (*model.Player, error) {
	p, ok := r.players[conn]
	if !ok {
		return nil, fmt.Errorf("%w: %s", model.ErrUnknownConnection, conn)
	}

	delete(r.players, conn)
	if i := slices.Index(r.order, conn); i >= 0 {
		r.order = slices.Delete(r.order, i, i+1)
	}

	r.logger.Info("player unregistered",
		slog.String("conn", string(conn)),
		slog.String("name", p.Name),
	)
	return p, nil
}

// Lookup returns the live player for a connection
func (r *Registry) Lookup(conn model.ConnID) (*model.Player, bool) {
	p, ok := r.players[conn]
	return p, ok
}

// IsRegistered reports whether a connection has bound a nickname
func (r *Registry) IsRegistered(conn model.ConnID) bool {
	_, ok := r.players[conn]
	return ok
}

// Connections returns registered connections in join order
func (r *Registry) Connections() []model.ConnID {
	return slices.Clone(r.order)
}

// Roster returns copies of every player in join order
func (r *Registry) Roster() []*model.Player {
	roster := make([]*model.Player, 0, len(r.order))
	for _, conn := range r.order {
		roster = append(roster, r.players[conn].Clone())
	}
	return roster
}

// Len returns the number of registered players
func (r *Registry) Len() int {
	return len(r.order)
}

// FindByName returns the earliest-joined connection other than exclude whose player is called name.
// self reports whether exclude itself carries that name.
func (r *Registry) FindByName(name string, exclude model.ConnID) (conn model.ConnID, found bool, self bool) {
	name = protocol.NormalizeName(name)
	for _, c := range r.order {
		if r.players[c].Name != name {
			continue
		}
		if c == exclude {
			self = true
			continue
		}
		if !found {
			conn, found = c, true
		}
	}
	return conn, found, self
}
