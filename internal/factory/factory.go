package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mcoot/rpschat/internal/api"
	"github.com/mcoot/rpschat/internal/dependencies/clock"
	"github.com/mcoot/rpschat/internal/dependencies/random"
	"github.com/mcoot/rpschat/internal/events"
	"github.com/mcoot/rpschat/internal/metrics"
	"github.com/mcoot/rpschat/internal/services/history"
	"github.com/mcoot/rpschat/internal/session"
	"github.com/mcoot/rpschat/internal/storage"
	"github.com/mcoot/rpschat/internal/storage/memory"
	redisstorage "github.com/mcoot/rpschat/internal/storage/redis"
	"github.com/mcoot/rpschat/internal/stream"
	"github.com/mcoot/rpschat/internal/transport/tcp"
	"github.com/mcoot/rpschat/internal/transport/ws"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// InstanceID is generated fresh on every start
	InstanceID string

	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	Metrics    *metrics.Metrics
	History    *history.Service
	Dispatcher *events.Dispatcher
	Session    *session.Server
	Stream     *stream.Hub

	// Transports
	TCPServer  *tcp.Server
	WebSocket  *ws.Handler
	Router     http.Handler
	HTTPServer *api.Server

	logger *slog.Logger
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// MaxMatches bounds the in-memory history (optional)
	MaxMatches int
	// NATSURL enables publishing session events to NATS when set
	NATSURL string
	// TCP and HTTP listener settings; zero values use the package defaults
	TCP  tcp.Config
	HTTP api.ServerConfig
	// SendBuffer is the per-connection outbound queue length for both transports
	SendBuffer int
	// EventQueueSize bounds the event dispatch queue
	EventQueueSize int
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()
	instanceID := rnd.UUID()

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New(cfg.MaxMatches)
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisCfg := *cfg.RedisConfig
		redisCfg.InstanceID = instanceID
		redisStore, err := redisstorage.New(redisCfg)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.NATSURL != "" {
		natsPublisher, err := events.NewNATSPublisher(cfg.NATSURL, logger)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		publisher = natsPublisher
	}

	return newWithDependencies(cfg, instanceID, store, publisher, clk, rnd, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(cfg Config, instanceID string, store storage.Storage, publisher events.Publisher, clk clock.Clock, rnd random.Random, logger *slog.Logger) *App {
	tcpCfg := cfg.TCP
	if tcpCfg.Addr == "" {
		tcpCfg = tcp.DefaultConfig()
	}
	httpCfg := cfg.HTTP
	if httpCfg.Addr == "" {
		httpCfg = api.DefaultServerConfig()
	}
	wsCfg := ws.DefaultConfig()
	if cfg.SendBuffer > 0 {
		tcpCfg.SendBuffer = cfg.SendBuffer
		wsCfg.SendBuffer = cfg.SendBuffer
	}

	logger = logger.With(slog.String("instance", instanceID))

	// Create services
	m := metrics.New()
	historyService := history.New(store, logger)
	hub := stream.NewHub(logger)
	dispatcher := events.NewDispatcher(historyService, events.MultiPublisher{hub, publisher}, cfg.EventQueueSize, m, logger)
	sessionServer := session.New(dispatcher, clk, rnd, m, logger)

	// Create transports
	tcpServer := tcp.NewServer(tcpCfg, sessionServer, rnd, m, logger)
	wsHandler := ws.NewHandler(wsCfg, sessionServer, rnd, m, logger)
	router := api.NewRouter(api.RouterConfig{
		Logger:     logger,
		InstanceID: instanceID,
		Session:    sessionServer,
		History:    historyService,
		Metrics:    m.Handler(),
		WebSocket:  wsHandler,
		Events:     hub,
	})
	httpServer := api.NewServer(router, httpCfg, logger)

	return &App{
		InstanceID: instanceID,
		Storage:    store,
		Clock:      clk,
		Random:     rnd,
		Metrics:    m,
		History:    historyService,
		Dispatcher: dispatcher,
		Session:    sessionServer,
		Stream:     hub,
		TCPServer:  tcpServer,
		WebSocket:  wsHandler,
		Router:     router,
		HTTPServer: httpServer,
		logger:     logger,
	}
}

// Start binds both listeners and serves them in the background.
// Serve errors are delivered on the returned channel.
func (a *App) Start() (<-chan error, error) {
	if err := a.TCPServer.Listen(); err != nil {
		return nil, err
	}
	if err := a.HTTPServer.Listen(); err != nil {
		_ = a.TCPServer.Shutdown(context.Background())
		return nil, err
	}

	go a.Stream.Run()
	go a.Dispatcher.Run()

	errCh := make(chan error, 2)
	go func() {
		if err := a.TCPServer.Serve(); err != nil {
			errCh <- fmt.Errorf("tcp: %w", err)
		}
	}()
	go func() {
		if err := a.HTTPServer.Start(); err != nil {
			errCh <- fmt.Errorf("http: %w", err)
		}
	}()
	return errCh, nil
}

// Shutdown stops the HTTP server and the TCP listener, closes every live
// client, waits for TCP handlers, then drains pending events and closes storage
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error

	// Event streams hold requests open; end them before the HTTP server drains
	_ = a.Stream.Close()
	if err := a.HTTPServer.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	// Nothing may attach between CloseAll and the handler wait
	a.TCPServer.StopAccepting()
	a.Session.CloseAll()
	if err := a.TCPServer.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}

	drainCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := a.Dispatcher.Close(drainCtx); err != nil {
		errs = append(errs, fmt.Errorf("drain events: %w", err))
	}
	if err := a.Storage.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close storage: %w", err))
	}

	a.logger.Info("application stopped")
	return errors.Join(errs...)
}
