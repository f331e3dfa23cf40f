package metrics

import "github.com/prometheus/client_golang/prometheus"

// StorageMetrics covers the Redis and PostgreSQL clients.
type StorageMetrics struct {
	RedisOps                   *prometheus.CounterVec
	RedisOpDuration            *prometheus.HistogramVec
	RedisConnectionErrors      prometheus.Counter
	DBQueryDuration            *prometheus.HistogramVec
	DBErrors                   *prometheus.CounterVec
	CircuitBreakerState        *prometheus.GaugeVec
	CircuitBreakerStateChanges *prometheus.CounterVec
}

func NewStorageMetrics(reg prometheus.Registerer) *StorageMetrics {
	m := &StorageMetrics{
		RedisOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "redis",
			Name:      "operations_total",
			Help:      "Total Redis operations by operation and status.",
		}, []string{"operation", "status"}),
		RedisOpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "redis",
			Name:      "operation_duration_seconds",
			Help:      "Redis operation duration in seconds.",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),
		RedisConnectionErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "redis",
			Name:      "connection_errors_total",
			Help:      "Total Redis connection errors.",
		}),
		DBQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "query_duration_seconds",
			Help:      "PostgreSQL query duration in seconds, by statement kind.",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"query"}),
		DBErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "errors_total",
			Help:      "PostgreSQL query errors, by statement kind.",
		}, []string{"query"}),
		CircuitBreakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help:      "Current circuit breaker state (0=closed, 1=half-open, 2=open).",
		}, []string{"component"}),
		CircuitBreakerStateChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state_changes_total",
			Help:      "Circuit breaker state transitions by component and new state.",
		}, []string{"component", "state"}),
	}

	reg.MustRegister(
		m.RedisOps, m.RedisOpDuration, m.RedisConnectionErrors,
		m.DBQueryDuration, m.DBErrors,
		m.CircuitBreakerState, m.CircuitBreakerStateChanges,
	)
	return m
}
