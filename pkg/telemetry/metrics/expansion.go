package metrics

import (
	"time"

	"github.com/orbit-ml/specfile/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// ExpansionMetrics tracks group expansion.
//
// Metrics:
//   - specfile_expansions_total: Expansions by strategy and status
//   - specfile_expansion_duration_seconds: Wall time of an expansion
//   - specfile_experiments_total: Experiments produced by strategy
//   - specfile_search_space_cardinality: Size of each project's search space, -1 when unbounded
type ExpansionMetrics struct {
	expansionsTotal   *prometheus.CounterVec
	expansionDuration *prometheus.HistogramVec
	experimentsTotal  *prometheus.CounterVec
	cardinality       *prometheus.GaugeVec
}

// NewExpansionMetrics creates and registers expansion metrics.
func NewExpansionMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ExpansionMetrics {
	em := &ExpansionMetrics{
		expansionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "expansions_total",
				Help:      "Total number of group expansions",
			},
			[]string{"strategy", "status"},
		),

		expansionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "expansion_duration_seconds",
				Help:      "Duration of group expansions in seconds",
				Buckets:   cfg.ExpansionDurationBuckets,
			},
			[]string{"strategy"},
		),

		experimentsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "experiments_total",
				Help:      "Total number of experiments produced by expansion",
			},
			[]string{"strategy"},
		),

		cardinality: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "search_space_cardinality",
				Help:      "Number of points of a project's search space, -1 when unbounded",
			},
			[]string{"project"},
		),
	}

	registry.MustRegister(
		em.expansionsTotal,
		em.expansionDuration,
		em.experimentsTotal,
		em.cardinality,
	)

	return em
}

// RecordExpansion records one expansion and the experiments it produced.
func (em *ExpansionMetrics) RecordExpansion(strategy, status string, experiments int, duration time.Duration) {
	em.expansionsTotal.WithLabelValues(strategy, status).Inc()
	em.expansionDuration.WithLabelValues(strategy).Observe(duration.Seconds())
	if experiments > 0 {
		em.experimentsTotal.WithLabelValues(strategy).Add(float64(experiments))
	}
}

// SetCardinality sets the search space size of a project.
func (em *ExpansionMetrics) SetCardinality(project string, cardinality float64) {
	em.cardinality.WithLabelValues(project).Set(cardinality)
}
