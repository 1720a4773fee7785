package pokedex

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Resolution outcomes recorded by the sync metrics
const (
	OutcomeHit       = "hit"
	OutcomeCreated   = "created"
	OutcomeRefreshed = "refreshed"
	OutcomeNotFound  = "not_found"
	OutcomeFailed    = "failed"
)

// Metrics holds the Prometheus collectors of the catalog. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	resolutions     *prometheus.CounterVec
	resolveDuration *prometheus.HistogramVec
	upstreamFetches *prometheus.CounterVec
	conflicts       *prometheus.CounterVec
	favorites       *prometheus.CounterVec
	treeBuilds      *prometheus.CounterVec

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		resolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pokedex",
				Subsystem: "sync",
				Name:      "resolutions_total",
				Help:      "Total number of entity resolutions by outcome.",
			},
			[]string{"kind", "outcome"},
		),
		resolveDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "pokedex",
				Subsystem: "sync",
				Name:      "resolve_duration_seconds",
				Help:      "Duration of a single entity resolution, cascade excluded.",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
			},
			[]string{"kind"},
		),
		upstreamFetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pokedex",
				Subsystem: "sync",
				Name:      "upstream_fetches_total",
				Help:      "Total number of upstream fetches issued by the sync layer.",
			},
			[]string{"kind"},
		),
		conflicts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pokedex",
				Subsystem: "sync",
				Name:      "conflicts_total",
				Help:      "Concurrent creates resolved last-writer-wins.",
			},
			[]string{"kind"},
		),
		favorites: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pokedex",
				Subsystem: "favorites",
				Name:      "operations_total",
				Help:      "Favorite ledger operations.",
			},
			[]string{"operation"},
		),
		treeBuilds: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pokedex",
				Subsystem: "tree",
				Name:      "builds_total",
				Help:      "Evolution tree builds by result.",
			},
			[]string{"result"},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pokedex",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests handled.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "pokedex",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests.",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
			},
			[]string{"method", "path"},
		),
	}

	if reg != nil {
		reg.MustRegister(
			m.resolutions,
			m.resolveDuration,
			m.upstreamFetches,
			m.conflicts,
			m.favorites,
			m.treeBuilds,
			m.HTTPRequests,
			m.HTTPDuration,
		)
	}

	return m
}

// ObserveResolution records one resolution
func (m *Metrics) ObserveResolution(kind Kind, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.resolutions.WithLabelValues(kind.String(), outcome).Inc()
	m.resolveDuration.WithLabelValues(kind.String()).Observe(duration.Seconds())
}

// IncUpstreamFetch counts one upstream fetch
func (m *Metrics) IncUpstreamFetch(kind Kind) {
	if m == nil {
		return
	}
	m.upstreamFetches.WithLabelValues(kind.String()).Inc()
}

// IncConflict counts one create race
func (m *Metrics) IncConflict(kind Kind) {
	if m == nil {
		return
	}
	m.conflicts.WithLabelValues(kind.String()).Inc()
}

// IncFavorite counts a favorites operation
func (m *Metrics) IncFavorite(operation string) {
	if m == nil {
		return
	}
	m.favorites.WithLabelValues(operation).Inc()
}

// IncTreeBuild counts a tree build
func (m *Metrics) IncTreeBuild(result string) {
	if m == nil {
		return
	}
	m.treeBuilds.WithLabelValues(result).Inc()
}

// ObserveHTTP records one handled HTTP request
func (m *Metrics) ObserveHTTP(method, path, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, path, status).Inc()
	m.HTTPDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}
