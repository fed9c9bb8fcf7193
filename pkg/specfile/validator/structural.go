package validator

import (
	"fmt"
	"strings"

	"github.com/orbit-ml/specfile/pkg/specfile/ast"
	specErrors "github.com/orbit-ml/specfile/pkg/specfile/errors"
	"github.com/orbit-ml/specfile/pkg/specfile/schema"
)

// StructuralValidator checks the section layout of a document: known
// sections only, required sections present, the declared kind and the
// supported version range.
type StructuralValidator struct{}

// NewStructuralValidator creates a new structural validator.
func NewStructuralValidator() *StructuralValidator {
	return &StructuralValidator{}
}

// Validate performs the structural pass over a whole document.
func (v *StructuralValidator) Validate(doc *ast.Node, layout schema.Layout) error {
	return v.validate(doc, layout, layout.Required)
}

// ValidateHeader performs the structural pass with only the header sections
// treated as required. Unknown and disallowed sections are still reported.
func (v *StructuralValidator) ValidateHeader(doc *ast.Node, layout schema.Layout) error {
	var required []schema.Section
	for _, s := range layout.Required {
		if s.IsHeader() {
			required = append(required, s)
		}
	}
	return v.validate(doc, layout, required)
}

// ValidateLayout checks an unresolved document: unknown and disallowed
// sections, missing header sections, and the kind and version whenever
// they are literal values. It needs no declarations.
func (v *StructuralValidator) ValidateLayout(doc *ast.Node, layout schema.Layout) error {
	errs := specErrors.NewErrorList()
	if !doc.IsMapping() {
		return v.validate(doc, layout, nil)
	}

	var required []schema.Section
	for _, s := range layout.Required {
		if s.IsHeader() {
			required = append(required, s)
		}
	}
	v.validateSections(errs, doc, layout)
	v.validateRequired(errs, doc, layout, required)
	if node, ok := doc.Get(string(schema.SectionKind)); ok && !isTemplated(node) {
		v.validateKind(errs, doc, layout)
	}
	if node, ok := doc.Get(string(schema.SectionVersion)); ok && !isTemplated(node) {
		v.validateVersion(errs, doc)
	}
	return errs.ToError()
}

// isTemplated reports whether a raw value still holds a directive or a
// reference that only resolution can settle.
func isTemplated(n *ast.Node) bool {
	if n.IsDirective() {
		return true
	}
	s, ok := n.AsString()
	return ok && strings.Contains(s, "{{")
}

func (v *StructuralValidator) validate(doc *ast.Node, layout schema.Layout, required []schema.Section) error {
	errs := specErrors.NewErrorList()

	if !doc.IsMapping() {
		kind := "null"
		if doc != nil {
			kind = doc.Kind.String()
		}
		errs.Add(specErrors.New(specErrors.ErrorTypeStructural, "",
			"specification must be a mapping of sections, got %s", kind))
		return errs.ToError()
	}

	v.validateSections(errs, doc, layout)
	v.validateRequired(errs, doc, layout, required)
	v.validateKind(errs, doc, layout)
	v.validateVersion(errs, doc)

	return errs.ToError()
}

// validateSections reports unknown sections and sections the kind does not allow.
func (v *StructuralValidator) validateSections(errs *specErrors.ErrorList, doc *ast.Node, layout schema.Layout) {
	for _, e := range doc.Entries {
		if !schema.IsSection(e.Key) {
			errs.Add(specErrors.New(specErrors.ErrorTypeStructural, e.Key,
				"unknown section '%s'", e.Key).
				At(e.Value.Location).
				WithSuggestion(specErrors.SuggestFieldName(e.Key, schema.SectionNames())))
			continue
		}
		if !layout.Allows(schema.Section(e.Key)) {
			errs.Add(specErrors.New(specErrors.ErrorTypeStructural, e.Key,
				"section '%s' is not allowed for kind %s", e.Key, layout.Kind).
				At(e.Value.Location).
				WithSuggestion(fmt.Sprintf("Allowed sections: %v", layout.AllowedNames())))
		}
	}
}

func (v *StructuralValidator) validateRequired(errs *specErrors.ErrorList, doc *ast.Node, layout schema.Layout, required []schema.Section) {
	for _, s := range required {
		if doc.Has(string(s)) {
			continue
		}
		errs.Add(specErrors.New(specErrors.ErrorTypeStructural, string(s),
			"missing required section '%s' for kind %s", s, layout.Kind).
			At(doc.Location).
			WithSuggestion(specErrors.SuggestMissingSection(string(s), "")))
	}
}

// validateKind checks that the declared kind is the kind being built.
func (v *StructuralValidator) validateKind(errs *specErrors.ErrorList, doc *ast.Node, layout schema.Layout) {
	node, ok := doc.Get(string(schema.SectionKind))
	if !ok {
		return
	}
	kind, err := schema.ParseKind(node)
	if err != nil {
		errs.Merge(err)
		return
	}
	if kind != layout.Kind {
		errs.Add(specErrors.New(specErrors.ErrorTypeStructural, string(schema.SectionKind),
			"kind mismatch: document declares %s, expected %s", kind, layout.Kind).
			At(node.Location))
	}
}

func (v *StructuralValidator) validateVersion(errs *specErrors.ErrorList, doc *ast.Node) {
	node, ok := doc.Get(string(schema.SectionVersion))
	if !ok {
		return
	}
	if _, err := schema.ValidateVersion(node); err != nil {
		errs.Merge(err)
	}
}
