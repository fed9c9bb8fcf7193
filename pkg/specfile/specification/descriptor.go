package specification

import (
	"github.com/orbit-ml/specfile/pkg/specfile/ast"
	specErrors "github.com/orbit-ml/specfile/pkg/specfile/errors"
	"github.com/orbit-ml/specfile/pkg/specfile/schema"
)

// Hook is an extra validation step run on the resolved document and its
// decoded settings before the specification is marked validated.
type Hook func(doc *ast.Node, settings *schema.Settings) error

// Descriptor parameterizes the pipeline for one kind: its section layout
// and an optional extra validation hook.
type Descriptor struct {
	Layout schema.Layout
	Hook   Hook
}

// Kind returns the kind the descriptor builds.
func (d Descriptor) Kind() schema.Kind {
	return d.Layout.Kind
}

func mustLayout(kind schema.Kind) schema.Layout {
	l, ok := schema.LayoutFor(kind)
	if !ok {
		panic("specification: no layout for kind " + string(kind))
	}
	return l
}

// Predefined descriptors.
var (
	Experiment = Descriptor{Layout: mustLayout(schema.KindExperiment), Hook: requireRunOrModel}
	Group      = Descriptor{Layout: mustLayout(schema.KindGroup), Hook: requireMatrix}
	Job        = Descriptor{Layout: mustLayout(schema.KindJob)}
	Plugin     = Descriptor{Layout: mustLayout(schema.KindPlugin)}
)

// DescriptorFor returns the predefined descriptor of kind.
func DescriptorFor(kind schema.Kind) (Descriptor, bool) {
	switch kind {
	case schema.KindExperiment:
		return Experiment, true
	case schema.KindGroup:
		return Group, true
	case schema.KindJob:
		return Job, true
	case schema.KindPlugin:
		return Plugin, true
	}
	return Descriptor{}, false
}

// requireRunOrModel rejects experiments with nothing to execute.
func requireRunOrModel(doc *ast.Node, _ *schema.Settings) error {
	if doc.Has(string(schema.SectionRun)) || doc.Has(string(schema.SectionModel)) {
		return nil
	}
	return specErrors.New(specErrors.ErrorTypeConfiguration, "",
		"an experiment requires a 'run' or a 'model' section").
		WithSuggestion(specErrors.SuggestMissingSection(string(schema.SectionRun), "{cmd: python train.py}"))
}

// requireMatrix rejects groups without a search space.
func requireMatrix(_ *ast.Node, settings *schema.Settings) error {
	if settings.HasMatrix() {
		return nil
	}
	return specErrors.New(specErrors.ErrorTypeConfiguration, "settings.matrix",
		"a matrix definition is required for group specifications").
		WithSuggestion("Add 'matrix: {lr: {values: [0.1, 0.01]}}' under settings")
}
