package specfile

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/orbit-ml/specfile/pkg/config"
	"github.com/orbit-ml/specfile/pkg/specfile/group"
	"github.com/orbit-ml/specfile/pkg/specfile/parser"
	"github.com/orbit-ml/specfile/pkg/specfile/resolver"
	"github.com/orbit-ml/specfile/pkg/specfile/specification"
	"github.com/orbit-ml/specfile/pkg/telemetry"
	"github.com/orbit-ml/specfile/pkg/telemetry/logging"
	"github.com/orbit-ml/specfile/pkg/telemetry/metrics"
	"github.com/orbit-ml/specfile/pkg/telemetry/tracing"
)

const instrumentationName = "github.com/orbit-ml/specfile/pkg/specfile"

// Loader reads specification files and builds them with one shared
// configuration.
type Loader struct {
	reader   *parser.Parser
	logger   *slog.Logger
	tracer   trace.Tracer
	metrics  *metrics.Collector
	specOpts []specification.Option
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger of the loader and of every build.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
		l.specOpts = append(l.specOpts, specification.WithLogger(logger))
	}
}

// WithTelemetry routes logs, metrics and spans to tel.
func WithTelemetry(tel *telemetry.Telemetry) Option {
	return func(l *Loader) {
		l.logger = tel.Logger().Logger
		l.tracer = tel.Tracer().Tracer()
		l.metrics = tel.Metrics()
		l.specOpts = append(l.specOpts,
			specification.WithLogger(l.logger),
			specification.WithMetrics(tel.Metrics()),
			specification.WithTracer(l.tracer))
	}
}

// WithSpecificationOptions appends options passed to every build.
func WithSpecificationOptions(opts ...specification.Option) Option {
	return func(l *Loader) { l.specOpts = append(l.specOpts, opts...) }
}

// NewLoader creates a loader applying the read and resolution limits of
// cfg. A nil cfg uses the defaults.
func NewLoader(cfg *config.SpecificationConfig, opts ...Option) *Loader {
	if cfg == nil {
		cfg = &config.Default().Specification
	}
	l := &Loader{
		reader: parser.NewParser().
			WithMaxFileSize(cfg.MaxFileSize).
			WithMaxDepth(cfg.MaxDepth),
		logger: slog.Default(),
		tracer: otel.Tracer(instrumentationName),
		specOpts: []specification.Option{
			specification.WithResolver(resolver.New(resolver.WithMaxIterations(cfg.MaxIterations))),
		},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load merges sources in order and builds the specification of the kind
// they declare.
func (l *Loader) Load(ctx context.Context, sources ...string) (*specification.Specification, error) {
	ctx = logging.WithSources(ctx, sources)
	ctx, span := l.tracer.Start(ctx, "specfile.load",
		trace.WithAttributes(tracing.SourceAttributes(sources)...))
	defer span.End()

	raw, err := l.reader.Read(sources...)
	if err != nil {
		tracing.SetStatus(span, err)
		l.logger.DebugContext(ctx, "cannot read specification", "error", err)
		return nil, err
	}

	spec, err := specification.Load(ctx, raw, l.specOpts...)
	tracing.SetStatus(span, err)
	if err != nil {
		return nil, err
	}
	header, _ := spec.Header()
	l.logger.DebugContext(ctx, "loaded specification",
		"kind", string(spec.Descriptor().Kind()),
		"project", header.Project.Name)
	return spec, nil
}

// Expander creates the expander of a group loaded by l. Its experiments
// are built with the loader's options.
func (l *Loader) Expander(spec *specification.Specification, opts ...group.Option) (*group.Expander, error) {
	base := []group.Option{
		group.WithLogger(l.logger),
		group.WithTracer(l.tracer),
		group.WithMetrics(l.metrics),
		group.WithSpecificationOptions(l.specOpts...),
	}
	return group.NewExpander(spec, append(base, opts...)...)
}

// Load reads sources with the current configuration and builds the
// specification they declare.
func Load(ctx context.Context, sources ...string) (*specification.Specification, error) {
	return NewLoader(&config.Current().Specification).Load(ctx, sources...)
}
