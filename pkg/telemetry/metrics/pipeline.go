package metrics

import (
	"time"

	"github.com/orbit-ml/specfile/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// PipelineMetrics tracks specification builds.
//
// Metrics:
//   - specfile_specifications_total: Builds by kind and final status
//   - specfile_stage_duration_seconds: Duration of each pipeline stage
//   - specfile_errors_total: Failed builds by kind and error type
//   - specfile_matrix_warnings_total: Search space warnings by kind
type PipelineMetrics struct {
	specificationsTotal *prometheus.CounterVec
	stageDuration       *prometheus.HistogramVec
	errorsTotal         *prometheus.CounterVec
	warningsTotal       *prometheus.CounterVec
}

// NewPipelineMetrics creates and registers pipeline metrics.
func NewPipelineMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *PipelineMetrics {
	pm := &PipelineMetrics{
		specificationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "specifications_total",
				Help:      "Total number of specification builds",
			},
			[]string{"kind", "status"},
		),

		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "stage_duration_seconds",
				Help:      "Duration of specification pipeline stages in seconds",
				Buckets:   cfg.StageDurationBuckets,
			},
			[]string{"kind", "stage"},
		),

		errorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "errors_total",
				Help:      "Total number of failed specification builds by error type",
			},
			[]string{"kind", "type"},
		),

		warningsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "matrix_warnings_total",
				Help:      "Total number of search space warnings",
			},
			[]string{"kind"},
		),
	}

	registry.MustRegister(
		pm.specificationsTotal,
		pm.stageDuration,
		pm.errorsTotal,
		pm.warningsTotal,
	)

	return pm
}

// RecordSpecification counts a finished build.
func (pm *PipelineMetrics) RecordSpecification(kind, status string) {
	pm.specificationsTotal.WithLabelValues(kind, status).Inc()
}

// RecordStage observes the duration of one pipeline stage.
func (pm *PipelineMetrics) RecordStage(kind, stage string, duration time.Duration) {
	pm.stageDuration.WithLabelValues(kind, stage).Observe(duration.Seconds())
}

// RecordError counts a failed build by error type.
func (pm *PipelineMetrics) RecordError(kind, errorType string) {
	pm.errorsTotal.WithLabelValues(kind, errorType).Inc()
}

// RecordWarning counts a search space warning.
func (pm *PipelineMetrics) RecordWarning(kind string) {
	pm.warningsTotal.WithLabelValues(kind).Inc()
}
