package validator

import (
	"github.com/orbit-ml/specfile/pkg/specfile/ast"
	specErrors "github.com/orbit-ml/specfile/pkg/specfile/errors"
	"github.com/orbit-ml/specfile/pkg/specfile/schema"
)

// Validator is the main validator that orchestrates the validation passes.
// It holds no per-document state, so one Validator may be shared between
// goroutines.
type Validator struct {
	structural *StructuralValidator
	semantic   *SemanticValidator
}

// NewValidator creates a new validator with all validation passes.
func NewValidator() *Validator {
	return &Validator{
		structural: NewStructuralValidator(),
		semantic:   NewSemanticValidator(),
	}
}

// Validate runs the structural pass and, when it succeeds, the semantic pass.
// Semantic checks are skipped after structural errors to avoid cascades.
func (v *Validator) Validate(doc *ast.Node, layout schema.Layout) error {
	errors := specErrors.NewErrorList()

	errors.Merge(v.structural.Validate(doc, layout))

	if !errors.HasErrorType(specErrors.ErrorTypeStructural) {
		errors.Merge(v.semantic.Validate(doc, layout))
	}

	return errors.ToError()
}

// ValidateStructural runs only structural validation.
func (v *Validator) ValidateStructural(doc *ast.Node, layout schema.Layout) error {
	return v.structural.Validate(doc, layout)
}

// ValidateHeader runs structural validation restricted to header sections.
func (v *Validator) ValidateHeader(doc *ast.Node, layout schema.Layout) error {
	return v.structural.ValidateHeader(doc, layout)
}

// ValidateLayout runs the structural checks that hold before resolution.
func (v *Validator) ValidateLayout(doc *ast.Node, layout schema.Layout) error {
	return v.structural.ValidateLayout(doc, layout)
}

// ValidateSemantic runs only semantic validation.
func (v *Validator) ValidateSemantic(doc *ast.Node, layout schema.Layout) error {
	return v.semantic.Validate(doc, layout)
}
