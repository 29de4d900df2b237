package tcp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/mcoot/rpschat/internal/dependencies/random"
	"github.com/mcoot/rpschat/internal/metrics"
	"github.com/mcoot/rpschat/internal/model"
	"github.com/mcoot/rpschat/internal/transport"
)

// Config holds settings for the line listener
type Config struct {
	Addr         string
	MaxLineBytes int
	SendBuffer   int
	WriteTimeout time.Duration
}

// DefaultConfig returns sensible defaults for the line listener
func DefaultConfig() Config {
	return Config{
		Addr:         "127.0.0.1:7640",
		MaxLineBytes: 4096,
		SendBuffer:   transport.DefaultSendBuffer,
		WriteTimeout: transport.WriteWait,
	}
}

// Server accepts newline-delimited text connections
type Server struct {
	config   Config
	session  transport.Session
	random   random.Random
	metrics  *metrics.Metrics
	logger   *slog.Logger
	listener net.Listener
	wg       sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewServer creates a TCP line server over the session
func NewServer(config Config, session transport.Session, random random.Random, m *metrics.Metrics, logger *slog.Logger) *Server {
	return &Server{
		config:  config,
		session: session,
		random:  random,
		metrics: m,
		logger:  logger.With(slog.String("component", "tcp")),
	}
}

// Listen binds the configured address
func (s *Server) Listen() error {
	l, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.config.Addr, err)
	}
	s.listener = l
	return nil
}

// Serve accepts connections until Shutdown. Listen must be called first.
func (s *Server) Serve() error {
	s.logger.Info("starting TCP server", slog.String("addr", s.Addr()))
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.isClosed() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				s.logger.Warn("accept timeout", slog.String("error", err.Error()))
				continue
			}
			return fmt.Errorf("accept: %w", err)
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handle(conn)
		}()
	}
}

// Start listens and serves until Shutdown
func (s *Server) Start() error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve()
}

// Addr returns the bound address, or the configured one before Listen
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.config.Addr
	}
	return s.listener.Addr().String()
}

// StopAccepting closes the listener so no new connection can attach.
// Safe to call more than once.
func (s *Server) StopAccepting() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.listener != nil {
		_ = s.listener.Close()
	}
}

// Shutdown stops accepting and waits for connection handlers to finish.
// Open connections must be closed by the session after StopAccepting and
// before this is called, or the wait blocks until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down TCP server")
	s.StopAccepting()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("TCP server stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("shutdown error: %w", ctx.Err())
	}
}

func (s *Server) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Server) handle(conn net.Conn) {
	id := model.ConnID(s.random.UUID())
	logger := s.logger.With(slog.String("conn", string(id)), slog.String("remote", conn.RemoteAddr().String()))
	logger.Info("connection opened")
	s.metrics.ConnectionOpened("tcp")

	peer := transport.NewPeer(id, s.config.SendBuffer, conn)
	s.session.Attach(peer)
	go s.writeLoop(conn, peer, logger)

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 1024), s.config.MaxLineBytes)
	for scanner.Scan() {
		s.session.HandleLine(id, scanner.Text())
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, net.ErrClosed) {
		logger.Warn("read failed", slog.String("error", err.Error()))
	}

	_ = s.session.Disconnect(id)
	_ = peer.Close()
	logger.Info("connection closed")
}

func (s *Server) writeLoop(conn net.Conn, peer *transport.Peer, logger *slog.Logger) {
	w := bufio.NewWriter(conn)
	for {
		select {
		case line := <-peer.Outbound():
			_ = conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
			if _, err := w.WriteString(line); err != nil {
				logger.Warn("write failed", slog.String("error", err.Error()))
				_ = peer.Close()
				return
			}
			// Coalesce whatever is already queued into one flush
			for pending := len(peer.Outbound()); pending > 0; pending-- {
				if _, err := w.WriteString(<-peer.Outbound()); err != nil {
					_ = peer.Close()
					return
				}
			}
			if err := w.Flush(); err != nil {
				logger.Warn("write failed", slog.String("error", err.Error()))
				_ = peer.Close()
				return
			}
		case <-peer.Done():
			return
		}
	}
}
