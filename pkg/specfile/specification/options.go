package specification

import (
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/orbit-ml/specfile/pkg/specfile/resolver"
	"github.com/orbit-ml/specfile/pkg/specfile/validator"
	"github.com/orbit-ml/specfile/pkg/telemetry/metrics"
)

const instrumentationName = "github.com/orbit-ml/specfile/pkg/specfile/specification"

// Option configures how a specification is built.
type Option func(*options)

type options struct {
	logger    *slog.Logger
	metrics   *metrics.Collector
	tracer    trace.Tracer
	resolver  *resolver.Resolver
	validator *validator.Validator
}

func newOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.tracer == nil {
		o.tracer = otel.Tracer(instrumentationName)
	}
	if o.resolver == nil {
		o.resolver = resolver.New()
	}
	if o.validator == nil {
		o.validator = validator.NewValidator()
	}
	return o
}

// WithLogger sets the logger used for pipeline events.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithMetrics records pipeline stage durations and outcomes.
func WithMetrics(c *metrics.Collector) Option {
	return func(o *options) { o.metrics = c }
}

// WithTracer sets the tracer used for pipeline spans. The global otel tracer
// is used by default.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) { o.tracer = t }
}

// WithResolver sets the directive resolver, e.g. one with a lower
// iteration budget.
func WithResolver(r *resolver.Resolver) Option {
	return func(o *options) { o.resolver = r }
}

// WithValidator sets the document validator.
func WithValidator(v *validator.Validator) Option {
	return func(o *options) { o.validator = v }
}
