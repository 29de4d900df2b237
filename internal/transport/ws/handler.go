package ws

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/rpschat/internal/dependencies/random"
	"github.com/mcoot/rpschat/internal/metrics"
	"github.com/mcoot/rpschat/internal/model"
	"github.com/mcoot/rpschat/internal/transport"
)

const (
	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096
)

// Config holds websocket transport settings
type Config struct {
	SendBuffer     int
	WriteTimeout   time.Duration
	AllowedOrigins []string // empty allows any origin
}

// DefaultConfig returns sensible defaults for the websocket transport
func DefaultConfig() Config {
	return Config{
		SendBuffer:   transport.DefaultSendBuffer,
		WriteTimeout: transport.WriteWait,
	}
}

// Handler upgrades HTTP requests to websocket connections carrying chat lines
type Handler struct {
	config   Config
	session  transport.Session
	random   random.Random
	metrics  *metrics.Metrics
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// NewHandler creates a websocket Handler over the session
func NewHandler(config Config, session transport.Session, random random.Random, m *metrics.Metrics, logger *slog.Logger) *Handler {
	h := &Handler{
		config:  config,
		session: session,
		random:  random,
		metrics: m,
		logger:  logger.With(slog.String("component", "ws")),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	if len(h.config.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	for _, allowed := range h.config.AllowedOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}

// ServeHTTP upgrades the connection and runs it until either side closes
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error
		h.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	id := model.ConnID(h.random.UUID())
	logger := h.logger.With(slog.String("conn", string(id)), slog.String("remote", r.RemoteAddr))
	logger.Info("connection opened")
	h.metrics.ConnectionOpened("ws")

	peer := transport.NewPeer(id, h.config.SendBuffer, conn)
	h.session.Attach(peer)
	go h.writeLoop(conn, peer, logger)

	h.readLoop(conn, id, logger)

	_ = h.session.Disconnect(id)
	_ = peer.Close()
	logger.Info("connection closed")
}

func (h *Handler) readLoop(conn *websocket.Conn, id model.ConnID, logger *slog.Logger) {
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				logger.Warn("unexpected close", slog.String("error", err.Error()))
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}
		for _, line := range SplitLines(string(data)) {
			h.session.HandleLine(id, line)
		}
	}
}

func (h *Handler) writeLoop(conn *websocket.Conn, peer *transport.Peer, logger *slog.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case line := <-peer.Outbound():
			_ = conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
				logger.Warn("write failed", slog.String("error", err.Error()))
				_ = peer.Close()
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = peer.Close()
				return
			}
		case <-peer.Done():
			return
		}
	}
}

// SplitLines breaks one frame into inbound lines, dropping the empty tail
// left by a trailing newline
func SplitLines(data string) []string {
	data = strings.TrimSuffix(data, "\n")
	lines := strings.Split(data, "\n")
	for i := range lines {
		lines[i] = strings.TrimSuffix(lines[i], "\r")
	}
	return lines
}
