package config

import "time"

// Default configuration values.
const (
	// Specification defaults
	DefaultMaxFileSize   int64 = 10 * 1024 * 1024
	DefaultMaxDepth            = 64
	DefaultMaxIterations       = 100_000

	// Expansion defaults
	DefaultExpansionFormat = "yaml"

	// Watch defaults
	DefaultWatchDebounce = 200 * time.Millisecond

	// Telemetry defaults
	DefaultLoggingLevel     = "info"
	DefaultLoggingFormat    = "text"
	DefaultMetricsEnabled   = true
	DefaultMetricsPath      = "/metrics"
	DefaultMetricsNamespace = "specfile"
	DefaultMaxCardinality   = 1000
	DefaultTracingEnabled   = false
	DefaultTracingSampler   = "always"
	DefaultTracingRatio     = 1.0
	DefaultServiceName      = "specfile"
	DefaultTracingTimeout   = 10 * time.Second
	DefaultHealthEnabled    = true
	DefaultLivenessPath     = "/health"
	DefaultReadinessPath    = "/ready"
)

// DefaultStageDurationBuckets span 100µs to about 1.6s; pipeline stages
// are CPU bound and usually fast.
var DefaultStageDurationBuckets = []float64{
	0.0001, 0.0002, 0.0004, 0.0008, 0.0016, 0.0032, 0.0064,
	0.0128, 0.0256, 0.0512, 0.1024, 0.2048, 0.4096, 0.8192, 1.6384,
}

// DefaultExpansionDurationBuckets cover small grids up to large sweeps.
var DefaultExpansionDurationBuckets = []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60}

// Default returns a configuration with every default applied. Booleans
// that default to true are only set here, since ApplyDefaults cannot tell
// an explicit false from an absent value.
func Default() *Config {
	cfg := &Config{}
	cfg.Telemetry.Metrics.Enabled = DefaultMetricsEnabled
	cfg.Telemetry.Tracing.Enabled = DefaultTracingEnabled
	cfg.Telemetry.Health.Enabled = DefaultHealthEnabled
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults sets defaults for any fields that have zero values.
// It is idempotent.
func ApplyDefaults(cfg *Config) {
	// Specification defaults
	if cfg.Specification.MaxFileSize == 0 {
		cfg.Specification.MaxFileSize = DefaultMaxFileSize
	}
	if cfg.Specification.MaxDepth == 0 {
		cfg.Specification.MaxDepth = DefaultMaxDepth
	}
	if cfg.Specification.MaxIterations == 0 {
		cfg.Specification.MaxIterations = DefaultMaxIterations
	}

	// Expansion defaults
	if cfg.Expansion.Format == "" {
		cfg.Expansion.Format = DefaultExpansionFormat
	}

	// Watch defaults
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = DefaultWatchDebounce
	}

	applyTelemetryDefaults(&cfg.Telemetry)
}

func applyTelemetryDefaults(t *TelemetryConfig) {
	if t.Logging.Level == "" {
		t.Logging.Level = DefaultLoggingLevel
	}
	if t.Logging.Format == "" {
		t.Logging.Format = DefaultLoggingFormat
	}

	if t.Metrics.Path == "" {
		t.Metrics.Path = DefaultMetricsPath
	}
	if t.Metrics.Namespace == "" {
		t.Metrics.Namespace = DefaultMetricsNamespace
	}
	if len(t.Metrics.StageDurationBuckets) == 0 {
		t.Metrics.StageDurationBuckets = append([]float64(nil), DefaultStageDurationBuckets...)
	}
	if len(t.Metrics.ExpansionDurationBuckets) == 0 {
		t.Metrics.ExpansionDurationBuckets = append([]float64(nil), DefaultExpansionDurationBuckets...)
	}
	if t.Metrics.MaxCardinality == 0 {
		t.Metrics.MaxCardinality = DefaultMaxCardinality
	}

	if t.Tracing.Sampler == "" {
		t.Tracing.Sampler = DefaultTracingSampler
	}
	if t.Tracing.SampleRatio == 0 {
		t.Tracing.SampleRatio = DefaultTracingRatio
	}
	if t.Tracing.ServiceName == "" {
		t.Tracing.ServiceName = DefaultServiceName
	}
	if t.Tracing.Timeout == 0 {
		t.Tracing.Timeout = DefaultTracingTimeout
	}

	if t.Health.LivenessPath == "" {
		t.Health.LivenessPath = DefaultLivenessPath
	}
	if t.Health.ReadinessPath == "" {
		t.Health.ReadinessPath = DefaultReadinessPath
	}
}
