package metrics

import (
	"sync"
	"time"

	"github.com/orbit-ml/specfile/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// overflowLabel replaces label values past the cardinality limit.
const overflowLabel = "other"

// Collector owns every Prometheus metric of the specfile packages. A nil
// *Collector, or one built from a disabled config, records nothing, so
// callers never need to check before recording.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	pipelineMetrics  *PipelineMetrics
	expansionMetrics *ExpansionMetrics

	// Bounds the number of project labels.
	cardinalityLimiter *CardinalityLimiter
}

// NewCollector creates a collector registering into registry. A nil
// registry gets a fresh one.
//
// Example:
//
//	cfg := &config.MetricsConfig{Enabled: true}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if len(cfg.StageDurationBuckets) == 0 {
		cfg.StageDurationBuckets = config.DefaultStageDurationBuckets
	}
	if len(cfg.ExpansionDurationBuckets) == 0 {
		cfg.ExpansionDurationBuckets = config.DefaultExpansionDurationBuckets
	}
	maxCardinality := cfg.MaxCardinality
	if maxCardinality <= 0 {
		maxCardinality = config.DefaultMaxCardinality
	}

	return &Collector{
		config:             cfg,
		registry:           registry,
		pipelineMetrics:    NewPipelineMetrics(cfg, registry),
		expansionMetrics:   NewExpansionMetrics(cfg, registry),
		cardinalityLimiter: NewCardinalityLimiter(maxCardinality),
	}
}

func (c *Collector) enabled() bool {
	return c != nil && c.config.Enabled
}

// RecordSpecification counts a finished specification build.
//
// Parameters:
//   - kind: Specification kind ("experiment", "group", "job", "plugin")
//   - status: "validated" or "failed"
func (c *Collector) RecordSpecification(kind, status string) {
	if !c.enabled() {
		return
	}
	c.pipelineMetrics.RecordSpecification(kind, status)
}

// RecordStage observes the duration of one pipeline stage.
func (c *Collector) RecordStage(kind, stage string, duration time.Duration) {
	if !c.enabled() {
		return
	}
	c.pipelineMetrics.RecordStage(kind, stage, duration)
}

// RecordError counts a failed build by its error type, such as
// "structural" or "undeclared_variable".
func (c *Collector) RecordError(kind, errorType string) {
	if !c.enabled() {
		return
	}
	if errorType == "" {
		errorType = "unknown"
	}
	c.pipelineMetrics.RecordError(kind, errorType)
}

// RecordWarning counts a search space warning such as a normalized
// pvalues distribution.
func (c *Collector) RecordWarning(kind string) {
	if !c.enabled() {
		return
	}
	c.pipelineMetrics.RecordWarning(kind)
}

// RecordExpansion records a group expansion.
//
// Parameters:
//   - strategy: "grid", "random" or "hyperband"
//   - status: "success" or "failed"
//   - experiments: Number of experiments produced
//   - duration: Wall time of the expansion
func (c *Collector) RecordExpansion(strategy, status string, experiments int, duration time.Duration) {
	if !c.enabled() {
		return
	}
	c.expansionMetrics.RecordExpansion(strategy, status, experiments, duration)
}

// SetCardinality sets the search space size of a project. Projects past
// the cardinality limit share the "other" label.
func (c *Collector) SetCardinality(project string, cardinality float64) {
	if !c.enabled() {
		return
	}
	if !c.cardinalityLimiter.Allow(project) {
		project = overflowLabel
	}
	c.expansionMetrics.SetCardinality(project, cardinality)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter prevents metric cardinality explosion by limiting
// the number of distinct label values.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a limiter accepting up to maxCardinality
// distinct values.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow reports whether value is already tracked or still fits under the
// limit, tracking it in the latter case.
func (cl *CardinalityLimiter) Allow(value string) bool {
	cl.mu.RLock()
	_, exists := cl.current[value]
	cl.mu.RUnlock()
	if exists {
		return true
	}

	cl.mu.Lock()
	defer cl.mu.Unlock()

	if _, exists := cl.current[value]; exists {
		return true
	}
	if len(cl.current) >= cl.maxCardinality {
		return false
	}
	cl.current[value] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
