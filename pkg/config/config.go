package config

import "time"

// Config is the root configuration of the specfile tool. It controls how
// specification files are read, how groups are expanded, how the watcher
// reacts to changes and where telemetry goes.
type Config struct {
	// Specification contains reader and resolver limits.
	Specification SpecificationConfig `yaml:"specification"`

	// Expansion contains group expansion defaults.
	Expansion ExpansionConfig `yaml:"expansion"`

	// Watch contains file watcher settings.
	Watch WatchConfig `yaml:"watch"`

	// Telemetry contains logging, metrics, tracing and health settings.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// SpecificationConfig controls how specification files are read and
// resolved.
type SpecificationConfig struct {
	// Files are the default specification files, merged in order, used when
	// a command is given none.
	Files []string `yaml:"files"`

	// MaxFileSize is the largest accepted file in bytes.
	// Default: 10MB
	MaxFileSize int64 `yaml:"max_file_size"`

	// MaxDepth bounds the nesting of a document.
	// Default: 64
	MaxDepth int `yaml:"max_depth"`

	// MaxIterations bounds the number of for-loop iterations per document.
	// Default: 100000
	MaxIterations int `yaml:"max_iterations"`
}

// ExpansionConfig controls group expansion.
type ExpansionConfig struct {
	// Workers is the number of experiments built in parallel.
	// 0 uses GOMAXPROCS.
	Workers int `yaml:"workers"`

	// Seed is used for random points when a group declares no seed.
	// Unset falls back to the document fingerprint.
	Seed *uint64 `yaml:"seed"`

	// Format is the output encoding of expanded experiments.
	// Options: "yaml", "json"
	// Default: "yaml"
	Format string `yaml:"format"`
}

// WatchConfig controls the specification watcher.
type WatchConfig struct {
	// Debounce coalesces bursts of file events into one reload.
	// Default: 200ms
	Debounce time.Duration `yaml:"debounce"`

	// ListenAddress serves metrics and health endpoints while watching.
	// Empty disables the HTTP listener.
	ListenAddress string `yaml:"listen_address"`
}

// TelemetryConfig contains observability settings.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	Tracing TracingConfig `yaml:"tracing"`
	Health  HealthConfig  `yaml:"health"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text", "console"
	// Default: "text"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	AddSource bool `yaml:"add_source"`

	// Redact masks values of secret-looking attributes such as tokens and
	// passwords found in declarations.
	// Default: true
	Redact *bool `yaml:"redact"`

	// RedactPatterns adds patterns to the built-in redaction rules.
	RedactPatterns []RedactPattern `yaml:"redact_patterns"`
}

// RedactEnabled reports whether redaction is on. It defaults to true.
func (c LoggingConfig) RedactEnabled() bool {
	return c.Redact == nil || *c.Redact
}

// RedactPattern defines a custom redaction rule.
type RedactPattern struct {
	// Name is a descriptive name for the pattern.
	Name string `yaml:"name"`

	// Pattern is the regular expression to match.
	Pattern string `yaml:"pattern"`

	// Replacement is the string to replace matches with.
	Replacement string `yaml:"replacement"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics are recorded.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path of the Prometheus endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "specfile"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	Subsystem string `yaml:"subsystem"`

	// StageDurationBuckets defines histogram buckets for pipeline stages
	// in seconds.
	// Default: 100µs to 1.6s, exponential
	StageDurationBuckets []float64 `yaml:"stage_duration_buckets"`

	// ExpansionDurationBuckets defines histogram buckets for whole group
	// expansions in seconds.
	// Default: [0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60]
	ExpansionDurationBuckets []float64 `yaml:"expansion_duration_buckets"`

	// MaxCardinality bounds the number of distinct project labels.
	// Default: 1000
	MaxCardinality int `yaml:"max_cardinality"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether spans are exported.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "always"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces to sample when Sampler is
	// "ratio".
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// Endpoint is the OTLP gRPC collector endpoint, e.g. "localhost:4317".
	Endpoint string `yaml:"endpoint"`

	// ServiceName is the service name in traces.
	// Default: "specfile"
	ServiceName string `yaml:"service_name"`

	// Insecure disables TLS for the OTLP connection.
	Insecure bool `yaml:"insecure"`

	// Timeout bounds each export.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}

// HealthConfig contains the health endpoints served while watching.
type HealthConfig struct {
	// Enabled controls whether health endpoints are served.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// LivenessPath is the path of the liveness probe.
	// Default: "/health"
	LivenessPath string `yaml:"liveness_path"`

	// ReadinessPath is the path of the readiness probe. It reports ready
	// while the watched specification is valid.
	// Default: "/ready"
	ReadinessPath string `yaml:"readiness_path"`
}
