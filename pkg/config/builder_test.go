package config

import "time"

// ConfigBuilder provides a fluent API for building Config instances in tests.
// It starts from the defaults.
type ConfigBuilder struct {
	cfg Config
}

// NewTestConfig returns a builder holding a valid default configuration.
func NewTestConfig() *ConfigBuilder {
	return &ConfigBuilder{cfg: *Default()}
}

// Build returns the built Config instance.
func (b *ConfigBuilder) Build() *Config {
	return &b.cfg
}

// WithWorkers sets the expansion worker count.
func (b *ConfigBuilder) WithWorkers(n int) *ConfigBuilder {
	b.cfg.Expansion.Workers = n
	return b
}

// WithFormat sets the expansion output format.
func (b *ConfigBuilder) WithFormat(format string) *ConfigBuilder {
	b.cfg.Expansion.Format = format
	return b
}

// WithDebounce sets the watch debounce.
func (b *ConfigBuilder) WithDebounce(d time.Duration) *ConfigBuilder {
	b.cfg.Watch.Debounce = d
	return b
}

// WithLogging sets the logging level and format.
func (b *ConfigBuilder) WithLogging(level, format string) *ConfigBuilder {
	b.cfg.Telemetry.Logging.Level = level
	b.cfg.Telemetry.Logging.Format = format
	return b
}

// WithTracing enables tracing towards endpoint.
func (b *ConfigBuilder) WithTracing(endpoint string) *ConfigBuilder {
	b.cfg.Telemetry.Tracing.Enabled = true
	b.cfg.Telemetry.Tracing.Endpoint = endpoint
	return b
}

// MinimalConfig returns a valid configuration for tests.
func MinimalConfig() *Config {
	return NewTestConfig().Build()
}
