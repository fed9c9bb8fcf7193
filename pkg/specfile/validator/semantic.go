package validator

import (
	"github.com/orbit-ml/specfile/pkg/specfile/ast"
	specErrors "github.com/orbit-ml/specfile/pkg/specfile/errors"
	"github.com/orbit-ml/specfile/pkg/specfile/schema"
)

// mappingSections must hold a mapping when present.
var mappingSections = []schema.Section{
	schema.SectionEnvironment,
	schema.SectionDeclarations,
	schema.SectionSettings,
	schema.SectionRun,
	schema.SectionModel,
	schema.SectionTrain,
	schema.SectionEval,
}

// SemanticValidator checks the content of a resolved document: the project,
// section shapes, the run command and the settings, including the matrix of
// a group.
type SemanticValidator struct{}

// NewSemanticValidator creates a new semantic validator.
func NewSemanticValidator() *SemanticValidator {
	return &SemanticValidator{}
}

// Validate performs semantic validation on a resolved document.
func (v *SemanticValidator) Validate(doc *ast.Node, layout schema.Layout) error {
	errs := specErrors.NewErrorList()

	v.validateResolved(errs, doc)

	if node, ok := doc.Get(string(schema.SectionProject)); ok {
		if _, err := schema.DecodeProject(node); err != nil {
			errs.Merge(err)
		}
	}

	for _, s := range mappingSections {
		node, ok := doc.Get(string(s))
		if !ok || node.IsNull() || node.IsMapping() {
			continue
		}
		errs.Add(specErrors.New(specErrors.ErrorTypeSemantic, string(s),
			"section '%s' must be a mapping, got %s", s, node.Kind).At(node.Location))
	}

	if node, ok := doc.Get(string(schema.SectionRun)); ok && node.IsMapping() {
		v.validateRun(errs, node)
	}

	if node, ok := doc.Get(string(schema.SectionSettings)); ok && !node.IsNull() && node.IsMapping() {
		if _, err := schema.DecodeSettings(node, layout.Kind); err != nil {
			errs.Merge(err)
		}
	}

	return errs.ToError()
}

// validateResolved reports directives left in the document.
func (v *SemanticValidator) validateResolved(errs *specErrors.ErrorList, doc *ast.Node) {
	_ = ast.Walk(doc, ast.VisitorFunc(func(path string, n *ast.Node) error {
		if n.IsDirective() {
			errs.Add(specErrors.New(specErrors.ErrorTypeSemantic, path,
				"unresolved '%s' directive", n.Directive.Type).At(n.Location))
			return ast.SkipChildren
		}
		return nil
	}))
}

// validateRun requires a command, either a string or a list of strings.
func (v *SemanticValidator) validateRun(errs *specErrors.ErrorList, run *ast.Node) {
	path := ast.JoinPath(string(schema.SectionRun), "cmd")
	cmd, ok := run.Get("cmd")
	if !ok || cmd.IsNull() {
		errs.Add(specErrors.New(specErrors.ErrorTypeSemantic, path,
			"run section requires a 'cmd'").
			At(run.Location).
			WithSuggestion("Example: 'cmd: python train.py'"))
		return
	}
	if _, ok := cmd.AsString(); ok {
		return
	}
	if cmd.IsSequence() {
		for i, item := range cmd.Items {
			if _, ok := item.AsString(); !ok {
				errs.Add(specErrors.New(specErrors.ErrorTypeSemantic, ast.IndexPath(path, i),
					"command arguments must be strings").At(item.Location))
			}
		}
		return
	}
	errs.Add(specErrors.New(specErrors.ErrorTypeSemantic, path,
		"cmd must be a string or a list of strings, got %s", cmd.Kind).At(cmd.Location))
}
