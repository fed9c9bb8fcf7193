package telemetry

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/orbit-ml/specfile/pkg/config"
	"github.com/orbit-ml/specfile/pkg/telemetry/health"
	"github.com/orbit-ml/specfile/pkg/telemetry/logging"
	"github.com/orbit-ml/specfile/pkg/telemetry/metrics"
	"github.com/orbit-ml/specfile/pkg/telemetry/tracing"
)

// Telemetry bundles the logger, metrics collector, tracer and health
// checker built from one telemetry configuration.
type Telemetry struct {
	config  *config.TelemetryConfig
	logger  *logging.Logger
	metrics *metrics.Collector
	tracer  *tracing.Tracer
	health  *health.Checker
	version string
	commit  string
}

// Option configures New.
type Option func(*options)

type options struct {
	logWriter io.Writer
	version   string
	commit    string
	tracing   []tracing.Option
}

// WithLogWriter sends logs to w instead of stderr.
func WithLogWriter(w io.Writer) Option {
	return func(o *options) { o.logWriter = w }
}

// WithBuildInfo sets the version reported by /version and the tracer
// resource.
func WithBuildInfo(version, commit string) Option {
	return func(o *options) {
		o.version = version
		o.commit = commit
	}
}

// WithTracingOptions passes options through to tracing.New.
func WithTracingOptions(opts ...tracing.Option) Option {
	return func(o *options) { o.tracing = append(o.tracing, opts...) }
}

// New builds every telemetry component. The tracer provider is installed
// globally when tracing is enabled; call Shutdown to flush it.
func New(cfg *config.TelemetryConfig, opts ...Option) (*Telemetry, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	logCfg := logging.FromConfig(cfg.Logging)
	logCfg.Writer = o.logWriter
	logger, err := logging.New(logCfg)
	if err != nil {
		return nil, err
	}

	tracingOpts := o.tracing
	if o.version != "" {
		tracingOpts = append([]tracing.Option{tracing.WithServiceVersion(o.version)}, tracingOpts...)
	}
	tracer, err := tracing.New(&cfg.Tracing, tracingOpts...)
	if err != nil {
		return nil, err
	}

	return &Telemetry{
		config:  cfg,
		logger:  logger,
		metrics: metrics.NewCollector(&cfg.Metrics, nil),
		tracer:  tracer,
		health:  health.New(5 * time.Second),
		version: o.version,
		commit:  o.commit,
	}, nil
}

// Logger returns the structured logger.
func (t *Telemetry) Logger() *logging.Logger { return t.logger }

// Metrics returns the metrics collector.
func (t *Telemetry) Metrics() *metrics.Collector { return t.metrics }

// Tracer returns the tracer.
func (t *Telemetry) Tracer() *tracing.Tracer { return t.tracer }

// Health returns the health checker.
func (t *Telemetry) Health() *health.Checker { return t.health }

// Handler serves the metrics endpoint and the health probes that are
// enabled.
func (t *Telemetry) Handler() http.Handler {
	mux := http.NewServeMux()
	if t.config.Metrics.Enabled {
		path := t.config.Metrics.Path
		if path == "" {
			path = config.DefaultMetricsPath
		}
		mux.Handle(path, t.metrics.Handler())
	}
	health.Register(mux, t.health, &t.config.Health, t.version, t.commit)
	return mux
}

// Shutdown flushes pending spans.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	return t.tracer.Shutdown(ctx)
}
