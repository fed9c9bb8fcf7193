package group

import (
	"context"
	stderrors "errors"
	"fmt"
	"iter"
	"log/slog"
	"runtime"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/orbit-ml/specfile/pkg/specfile/ast"
	specErrors "github.com/orbit-ml/specfile/pkg/specfile/errors"
	"github.com/orbit-ml/specfile/pkg/specfile/matrix"
	"github.com/orbit-ml/specfile/pkg/specfile/schema"
	"github.com/orbit-ml/specfile/pkg/specfile/specification"
	"github.com/orbit-ml/specfile/pkg/telemetry/logging"
	"github.com/orbit-ml/specfile/pkg/telemetry/metrics"
	"github.com/orbit-ml/specfile/pkg/telemetry/tracing"
)

const instrumentationName = "github.com/orbit-ml/specfile/pkg/specfile/group"

// idNamespace scopes experiment IDs to this module.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/orbit-ml/specfile/experiments"))

// Experiment is one concrete point of a group's search space, built and
// validated as an experiment specification.
type Experiment struct {
	Index  int
	Params matrix.Point
	ID     uuid.UUID
	Spec   *specification.Specification
}

// Sampler returns the parameter assignment of the point with the given
// index. The same index always yields the same point.
type Sampler func(index int) (matrix.Point, error)

// Expander materializes the experiments of a validated group specification.
// It is safe for concurrent use.
type Expander struct {
	spec     *specification.Specification
	settings *schema.Settings
	space    *matrix.SearchSpace
	raw      *ast.Node
	project  string

	fingerprint uint64
	seed        uint64
	hasSeed     bool
	workers     int

	logger   *slog.Logger
	metrics  *metrics.Collector
	tracer   trace.Tracer
	specOpts []specification.Option
}

// Option configures an Expander.
type Option func(*Expander)

// WithSeed sets the sampling seed used when the group settings declare none.
func WithSeed(seed uint64) Option {
	return func(e *Expander) {
		e.seed = seed
		e.hasSeed = true
	}
}

// WithWorkers bounds the number of experiments built in parallel.
func WithWorkers(n int) Option {
	return func(e *Expander) { e.workers = n }
}

// WithLogger sets the logger used for expansion events.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Expander) { e.logger = logger }
}

// WithMetrics records expansion outcomes.
func WithMetrics(c *metrics.Collector) Option {
	return func(e *Expander) { e.metrics = c }
}

// WithTracer sets the tracer used for expansion spans.
func WithTracer(t trace.Tracer) Option {
	return func(e *Expander) { e.tracer = t }
}

// WithSpecificationOptions sets the options every experiment specification
// is built with.
func WithSpecificationOptions(opts ...specification.Option) Option {
	return func(e *Expander) { e.specOpts = append(e.specOpts, opts...) }
}

// NewExpander returns an expander for a validated group specification.
func NewExpander(spec *specification.Specification, opts ...Option) (*Expander, error) {
	kind, err := spec.Kind()
	if err != nil {
		return nil, err
	}
	if kind != schema.KindGroup {
		return nil, specErrors.New(specErrors.ErrorTypeConfiguration, string(schema.SectionKind),
			"only group specifications can be expanded, got %s", kind)
	}
	space, err := spec.Matrix()
	if err != nil {
		return nil, err
	}
	settings, _ := spec.Settings()
	raw, _ := spec.Raw()
	project, _ := spec.Project()
	fp, _ := spec.Fingerprint()

	e := &Expander{
		spec:        spec,
		settings:    settings,
		space:       space,
		raw:         raw,
		project:     project.Name,
		fingerprint: fp,
		workers:     runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.tracer == nil {
		e.tracer = otel.Tracer(instrumentationName)
	}
	if e.workers < 1 {
		e.workers = 1
	}

	switch {
	case settings.Seed != nil:
		e.seed = uint64(*settings.Seed)
	case !e.hasSeed:
		e.seed = fp
	}

	if card, err := space.Cardinality(); err == nil {
		e.metrics.SetCardinality(e.project, float64(card))
	} else if stderrors.Is(err, matrix.ErrUnbounded) {
		e.metrics.SetCardinality(e.project, -1)
	}
	return e, nil
}

// SearchSpace returns the group's matrix.
func (e *Expander) SearchSpace() (*matrix.SearchSpace, error) {
	return e.spec.Matrix()
}

// Cardinality returns the number of points of the search space, or
// matrix.ErrUnbounded when a parameter is continuous.
func (e *Expander) Cardinality() (int, error) {
	return e.space.Cardinality()
}

// Strategy returns the search algorithm declared by the settings. Without
// one, grid is used when the search space is finite.
func (e *Expander) Strategy() (Strategy, error) {
	switch {
	case e.settings.RandomSearch != nil:
		return StrategyRandom, nil
	case e.settings.Hyperband != nil:
		return StrategyHyperband, nil
	}
	if _, err := e.space.Cardinality(); err != nil {
		return "", specErrors.New(specErrors.ErrorTypeConfiguration, "settings",
			"grid search needs a finite search space").
			Wrap(err).
			WithSuggestion("Declare 'random_search' or 'hyperband' under settings")
	}
	return StrategyGrid, nil
}

// Concurrency returns the group's concurrency hint, 1 when unset.
func (e *Expander) Concurrency() int {
	return e.settings.ConcurrencyOrDefault()
}

// Seed returns the seed random points are derived from.
func (e *Expander) Seed() uint64 {
	return e.seed
}

// Plan returns the strategy and hints a scheduler needs.
func (e *Expander) Plan() (Plan, error) {
	strategy, err := e.Strategy()
	if err != nil {
		return Plan{}, err
	}
	card, err := e.space.Cardinality()
	if err != nil {
		card = -1
	}
	return Plan{Strategy: strategy, Concurrency: e.Concurrency(), Cardinality: card}, nil
}

// Sampler returns the per-index parameter sampler. Point i is drawn from
// its own generator seeded with (seed, i), so points do not depend on the
// order or parallelism they are drawn in.
func (e *Expander) Sampler() Sampler {
	return func(index int) (matrix.Point, error) {
		if index < 0 {
			return nil, specErrors.New(specErrors.ErrorTypeConfiguration, "",
				"sample index must not be negative, got %d", index)
		}
		return e.space.SamplePoint(matrix.NewRand(e.seed, uint64(index)))
	}
}

// Point returns the parameter assignment of point index under the group's
// strategy.
func (e *Expander) Point(index int) (matrix.Point, error) {
	strategy, err := e.Strategy()
	if err != nil {
		return nil, err
	}
	if strategy == StrategyGrid {
		return e.space.GridPoint(index)
	}
	return e.Sampler()(index)
}

// Count returns how many experiments Expand(n) produces.
func (e *Expander) Count(n int) (int, error) {
	if n < 0 {
		return 0, specErrors.New(specErrors.ErrorTypeConfiguration, "",
			"number of experiments must not be negative, got %d", n)
	}
	strategy, err := e.Strategy()
	if err != nil {
		return 0, err
	}

	switch strategy {
	case StrategyGrid:
		card, err := e.space.Cardinality()
		if err != nil {
			return 0, err
		}
		if n > 0 && n < card {
			return 0, specErrors.New(specErrors.ErrorTypeConfiguration, "",
				"grid search expands all %d points, cannot truncate to %d", card, n).
				WithSuggestion("Use random_search to run a subset of the search space")
		}
		return card, nil
	case StrategyRandom:
		if n == 0 {
			n = e.settings.RandomSearch.NExperiments
		}
		if n == 0 {
			return 0, specErrors.New(specErrors.ErrorTypeConfiguration, "settings.random_search.n_experiments",
				"random search needs a number of experiments").
				WithSuggestion("Set 'n_experiments' under random_search")
		}
		return n, nil
	default:
		if n == 0 {
			return 0, specErrors.New(specErrors.ErrorTypeConfiguration, "settings.hyperband",
				"hyperband allocates experiments itself; pass the number of points to materialize")
		}
		return n, nil
	}
}

// Experiment builds the experiment at index.
func (e *Expander) Experiment(ctx context.Context, index int) (*Experiment, error) {
	point, err := e.Point(index)
	if err != nil {
		return nil, err
	}
	return e.build(ctx, index, point)
}

// Expand builds the experiments of the group in index order. For grid
// search n must be 0 or at least the cardinality; random search draws n
// points, falling back to random_search.n_experiments when n is 0;
// hyperband materializes the first n sampled points.
func (e *Expander) Expand(ctx context.Context, n int) ([]*Experiment, error) {
	count, err := e.Count(n)
	if err != nil {
		return nil, err
	}
	strategy, _ := e.Strategy()

	ctx, span := e.tracer.Start(ctx, "group.expand", trace.WithAttributes(
		tracing.ExpansionAttributes(e.project, string(strategy), count, e.workers)...))
	defer span.End()

	start := time.Now()
	results := make([]*Experiment, count)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i := 0; i < count; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			exp, err := e.Experiment(gctx, i)
			if err != nil {
				return fmt.Errorf("experiment %d: %w", i, err)
			}
			results[i] = exp
			return nil
		})
	}
	err = g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	tracing.SetStatus(span, err)
	if err != nil {
		e.metrics.RecordExpansion(string(strategy), "failed", 0, time.Since(start))
		return nil, err
	}

	e.metrics.RecordExpansion(string(strategy), "success", count, time.Since(start))
	e.logger.Info("expanded search space",
		"project", e.project,
		"strategy", string(strategy),
		"experiments", count,
		"workers", e.workers,
		"duration", time.Since(start))
	return results, nil
}

// All yields the same experiments as Expand, built one at a time on
// demand. Iteration stops after the first error, which is yielded with a
// nil experiment.
func (e *Expander) All(ctx context.Context, n int) iter.Seq2[*Experiment, error] {
	return func(yield func(*Experiment, error) bool) {
		count, err := e.Count(n)
		if err != nil {
			yield(nil, err)
			return
		}
		for i := 0; i < count; i++ {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			exp, err := e.Experiment(ctx, i)
			if err != nil {
				yield(nil, fmt.Errorf("experiment %d: %w", i, err))
				return
			}
			if !yield(exp, nil) {
				return
			}
		}
	}
}

// build turns a point into a validated experiment specification.
func (e *Expander) build(ctx context.Context, index int, point matrix.Point) (*Experiment, error) {
	doc, err := e.document(point)
	if err != nil {
		return nil, err
	}
	ctx = logging.WithExperiment(logging.WithProject(ctx, e.project), index)
	spec, err := specification.New(ctx, specification.Experiment, doc, e.specOpts...)
	if err != nil {
		return nil, err
	}
	return &Experiment{
		Index:  index,
		Params: point,
		ID:     e.experimentID(index),
		Spec:   spec,
	}, nil
}

// document derives the raw experiment document of a point: the group
// document with the point added to its declarations, the group-only
// settings removed and the kind set to experiment.
func (e *Expander) document(point matrix.Point) (*ast.Node, error) {
	doc := e.raw

	decls, ok := doc.Get(string(schema.SectionDeclarations))
	switch {
	case !ok || decls.IsNull():
		decls = ast.Mapping()
	case !decls.IsMapping():
		resolved, _ := e.spec.Declarations()
		decls = resolved.Node()
	}
	for _, param := range point {
		value, err := ast.FromInterface(param.Value)
		if err != nil {
			return nil, specErrors.New(specErrors.ErrorTypeConfiguration, ast.JoinPath("settings.matrix", param.Name),
				"cannot use value of parameter %s", param.Name).Wrap(err)
		}
		decls = decls.With(param.Name, value)
	}
	doc = doc.With(string(schema.SectionDeclarations), decls)

	settings, ok := doc.Get(string(schema.SectionSettings))
	if ok && !settings.IsMapping() {
		// Settings built by a directive: strip the resolved form instead.
		settings, _ = e.spec.Section(schema.SectionSettings)
	}
	if stripped := schema.ExperimentSettings(settings); stripped != nil {
		doc = doc.With(string(schema.SectionSettings), stripped)
	} else {
		doc = doc.Without(string(schema.SectionSettings))
	}

	return doc.With(string(schema.SectionKind), ast.Scalar(string(schema.KindExperiment))), nil
}

// experimentID derives a stable ID from the group document and the index.
func (e *Expander) experimentID(index int) uuid.UUID {
	return uuid.NewSHA1(idNamespace, []byte(fmt.Sprintf("%016x/%d", e.fingerprint, index)))
}
