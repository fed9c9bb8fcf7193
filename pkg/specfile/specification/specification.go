package specification

import (
	"context"
	"hash/fnv"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/orbit-ml/specfile/pkg/specfile/ast"
	specErrors "github.com/orbit-ml/specfile/pkg/specfile/errors"
	"github.com/orbit-ml/specfile/pkg/specfile/parser"
	"github.com/orbit-ml/specfile/pkg/specfile/resolver"
	"github.com/orbit-ml/specfile/pkg/specfile/schema"
	"github.com/orbit-ml/specfile/pkg/telemetry/tracing"
)

// Specification is a specification document taken through the pipeline
// Loaded, HeaderValidated, Resolved, Validated. Constructors only return
// validated specifications; every field is computed once during
// construction and never changes afterwards.
type Specification struct {
	descriptor Descriptor
	state      State

	raw          *ast.Node
	header       *schema.Header
	settings     *schema.Settings
	declarations *resolver.Declarations
	document     *ast.Node
	fingerprint  uint64
}

// pipeline carries the per-build collaborators.
type pipeline struct {
	*options
	spec   *Specification
	logger *slog.Logger
}

// New takes a merged raw document through the pipeline of the given
// descriptor. It returns either a validated specification or an error; a
// partially built specification is never returned.
func New(ctx context.Context, d Descriptor, raw *ast.Node, opts ...Option) (*Specification, error) {
	o := newOptions(opts)
	kind := string(d.Kind())

	ctx, span := o.tracer.Start(ctx, "specification.build",
		trace.WithAttributes(tracing.SpecificationAttributes(kind)...))
	defer span.End()

	p := &pipeline{
		options: o,
		spec:    &Specification{descriptor: d, state: StateLoaded, raw: raw},
		logger:  o.logger.With("kind", kind),
	}

	err := p.run(ctx)
	tracing.SetStatus(span, err)
	if err != nil {
		errType := string(specErrors.TypeOf(err))
		span.SetAttributes(tracing.AttrErrorType.String(errType))
		o.metrics.RecordSpecification(kind, "failed")
		o.metrics.RecordError(kind, errType)
		p.logger.DebugContext(ctx, "specification rejected", "state", p.spec.state.String(), "error", err)
		return nil, err
	}
	o.metrics.RecordSpecification(kind, "validated")
	return p.spec, nil
}

// Load builds a specification using the descriptor of the kind the
// document declares.
func Load(ctx context.Context, raw *ast.Node, opts ...Option) (*Specification, error) {
	kind, err := schema.KindOf(raw)
	if err != nil {
		return nil, err
	}
	d, ok := DescriptorFor(kind)
	if !ok {
		return nil, specErrors.New(specErrors.ErrorTypeStructural, string(schema.SectionKind),
			"unsupported kind %q", kind)
	}
	return New(ctx, d, raw, opts...)
}

func (p *pipeline) run(ctx context.Context) error {
	if !p.spec.raw.IsMapping() {
		return specErrors.New(specErrors.ErrorTypeStructural, "",
			"specification must be a mapping of sections")
	}
	fp, err := fingerprint(p.spec.raw)
	if err != nil {
		return err
	}
	p.spec.fingerprint = fp

	stages := []struct {
		to State
		fn func(context.Context) error
	}{
		{StateHeaderValidated, p.validateHeader},
		{StateResolved, p.resolve},
		{StateValidated, p.validate},
	}
	for _, stage := range stages {
		if err := p.stage(ctx, stage.to, stage.fn); err != nil {
			return err
		}
	}
	return nil
}

// stage runs one transition inside its own span and records its duration.
func (p *pipeline) stage(ctx context.Context, to State, fn func(context.Context) error) error {
	ctx, span := p.tracer.Start(ctx, "specification."+to.String(),
		trace.WithAttributes(tracing.AttrStage.String(to.String())))
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	p.metrics.RecordStage(string(p.spec.descriptor.Kind()), to.String(), time.Since(start))
	tracing.SetStatus(span, err)
	if err != nil {
		return err
	}
	p.logger.DebugContext(ctx, "specification transition", "from", p.spec.state.String(), "to", to.String())
	p.spec.state = to
	return nil
}

// validateHeader checks the section layout of the raw document, then
// resolves the header sections against the declarations and checks the
// header values.
func (p *pipeline) validateHeader(ctx context.Context) error {
	raw := p.spec.raw
	layout := p.spec.descriptor.Layout

	if err := p.validator.ValidateLayout(raw, layout); err != nil {
		return err
	}

	declNode, _ := raw.Get(string(schema.SectionDeclarations))
	decls, err := p.resolver.Declare(declNode, resolver.Empty())
	if err != nil {
		return err
	}
	p.spec.declarations = decls

	headerDoc := raw
	for _, section := range schema.HeaderSections {
		node, ok := raw.Get(string(section))
		if !ok {
			continue
		}
		resolved, err := p.resolver.ResolveAt(node, decls, string(section))
		if err != nil {
			return err
		}
		headerDoc = headerDoc.With(string(section), resolved)
	}

	if err := p.validator.ValidateHeader(headerDoc, layout); err != nil {
		return err
	}

	header, err := schema.DecodeHeader(headerDoc)
	if err != nil {
		return err
	}
	settingsNode, _ := headerDoc.Get(string(schema.SectionSettings))
	settings, err := schema.DecodeSettings(settingsNode, layout.Kind)
	if err != nil {
		return err
	}
	p.spec.header = header
	p.spec.settings = settings

	if settings.HasMatrix() {
		for _, w := range settings.Matrix.Warnings() {
			p.metrics.RecordWarning(string(layout.Kind))
			p.logger.WarnContext(ctx, "matrix warning", "project", header.Project.Name, "warning", w)
		}
	}
	return nil
}

// resolve expands every directive of the document. Groups resolve with the
// first value of each matrix parameter bound, which checks the document is
// resolvable without expanding the whole search space.
func (p *pipeline) resolve(context.Context) error {
	decls := p.spec.declarations
	if p.spec.settings.HasMatrix() {
		decls = decls.WithAll(p.spec.settings.Matrix.FirstPoint().Node())
	}
	doc, err := p.resolver.Resolve(p.spec.raw, decls)
	if err != nil {
		return err
	}
	p.spec.document = doc
	return nil
}

// validate runs both validation passes on the resolved document, then the
// kind hook, and memoizes the decoded sections.
func (p *pipeline) validate(context.Context) error {
	layout := p.spec.descriptor.Layout
	doc := p.spec.document

	if err := p.validator.Validate(doc, layout); err != nil {
		return err
	}

	header, err := schema.DecodeHeader(doc)
	if err != nil {
		return err
	}
	settingsNode, _ := doc.Get(string(schema.SectionSettings))
	settings, err := schema.DecodeSettings(settingsNode, layout.Kind)
	if err != nil {
		return err
	}

	if hook := p.spec.descriptor.Hook; hook != nil {
		if err := hook(doc, settings); err != nil {
			return err
		}
	}

	p.spec.header = header
	p.spec.settings = settings
	return nil
}

// fingerprint hashes the canonical YAML form of a document, which also
// represents non-finite floats.
func fingerprint(n *ast.Node) (uint64, error) {
	data, err := parser.Encode(n)
	if err != nil {
		return 0, specErrors.New(specErrors.ErrorTypeStructural, "",
			"cannot fingerprint specification: %v", err).Wrap(err)
	}
	h := fnv.New64a()
	_, _ = h.Write(data)
	return h.Sum64(), nil
}
