package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "rpschat"

// Metrics holds the server's Prometheus collectors on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	connections      *prometheus.CounterVec
	players          prometheus.Gauge
	linesReceived    prometheus.Counter
	challenges       *prometheus.CounterVec
	matches          *prometheus.CounterVec
	deliveryFailures prometheus.Counter
	evictions        prometheus.Counter
	eventsDropped    prometheus.Counter
}

// New creates and registers all collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		connections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_total",
			Help:      "Connections accepted, by transport",
		}, []string{"transport"}),
		players: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "players",
			Help:      "Currently registered players",
		}),
		linesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lines_received_total",
			Help:      "Inbound lines handled",
		}),
		challenges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "challenges_total",
			Help:      "Challenge attempts, by outcome",
		}, []string{"outcome"}),
		matches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_total",
			Help:      "Completed matches, by result",
		}, []string{"result"}),
		deliveryFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "delivery_failures_total",
			Help:      "Outbound messages that could not be enqueued",
		}),
		evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evictions_total",
			Help:      "Connections removed after a delivery failure",
		}),
		eventsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_dropped_total",
			Help:      "Events dropped because the dispatch queue was full",
		}),
	}

	m.registry.MustRegister(
		m.connections,
		m.players,
		m.linesReceived,
		m.challenges,
		m.matches,
		m.deliveryFailures,
		m.evictions,
		m.eventsDropped,
		prometheus.NewGoCollector(),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ConnectionOpened(transport string) {
	if m == nil {
		return
	}
	m.connections.WithLabelValues(transport).Inc()
}

func (m *Metrics) SetPlayers(n int) {
	if m == nil {
		return
	}
	m.players.Set(float64(n))
}

func (m *Metrics) LineReceived() {
	if m == nil {
		return
	}
	m.linesReceived.Inc()
}

// Challenge counts a challenge attempt; outcome is "accepted" or an error label
func (m *Metrics) Challenge(outcome string) {
	if m == nil {
		return
	}
	m.challenges.WithLabelValues(outcome).Inc()
}

func (m *Metrics) MatchCompleted(result string) {
	if m == nil {
		return
	}
	m.matches.WithLabelValues(result).Inc()
}

func (m *Metrics) DeliveryFailed() {
	if m == nil {
		return
	}
	m.deliveryFailures.Inc()
}

func (m *Metrics) Evicted() {
	if m == nil {
		return
	}
	m.evictions.Inc()
}

func (m *Metrics) EventDropped() {
	if m == nil {
		return
	}
	m.eventsDropped.Inc()
}
