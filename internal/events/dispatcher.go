package events

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/rpschat/internal/metrics"
	"github.com/mcoot/rpschat/internal/model"
)

// DefaultQueueSize is the dispatch queue capacity used when none is given
const DefaultQueueSize = 256

// handleTimeout bounds the work done for one event
const handleTimeout = 5 * time.Second

// MatchRecorder persists completed matches
type MatchRecorder interface {
	Record(ctx context.Context, record *model.MatchRecord) error
}

// Dispatcher hands events off the session lock to the history service and a publisher.
// Emit never blocks; events are dropped when the queue is full.
type Dispatcher struct {
	queue     chan model.Event
	history   MatchRecorder
	publisher Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger

	mu      sync.RWMutex
	closed  bool
	done    chan struct{}
	started sync.Once
}

// NewDispatcher creates a Dispatcher; call Run to start draining it
func NewDispatcher(history MatchRecorder, publisher Publisher, queueSize int, m *metrics.Metrics, logger *slog.Logger) *Dispatcher {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	if publisher == nil {
		publisher = NopPublisher{}
	}
	return &Dispatcher{
		queue:     make(chan model.Event, queueSize),
		history:   history,
		publisher: publisher,
		metrics:   m,
		logger:    logger.With(slog.String("component", "events")),
		done:      make(chan struct{}),
	}
}

// Emit enqueues an event without blocking
func (d *Dispatcher) Emit(event model.Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}

	select {
	case d.queue <- event:
	default:
		d.metrics.EventDropped()
		d.logger.Warn("event queue full, dropping event", slog.String("type", string(event.Type)))
	}
}

// Run drains the queue until Close is called. It returns once every queued event is handled.
func (d *Dispatcher) Run() {
	d.started.Do(func() {
		defer close(d.done)
		for event := range d.queue {
			d.handle(event)
		}
	})
}

// Close stops accepting events and waits for the queue to drain or ctx to end
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return d.publisher.Close()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) handle(event model.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	if event.Match != nil && d.history != nil {
		if err := d.history.Record(ctx, event.Match); err != nil {
			d.logger.Error("failed to record match", slog.String("error", err.Error()))
		}
	}
	if err := d.publisher.Publish(ctx, event); err != nil {
		d.logger.Warn("failed to publish event",
			slog.String("type", string(event.Type)),
			slog.String("error", err.Error()),
		)
	}
}
