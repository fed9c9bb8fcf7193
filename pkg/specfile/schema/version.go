package schema

import (
	"fmt"
	"strconv"

	"github.com/Masterminds/semver/v3"

	"github.com/orbit-ml/specfile/pkg/specfile/ast"
	specErrors "github.com/orbit-ml/specfile/pkg/specfile/errors"
)

// Supported specification versions, inclusive.
const (
	MinVersion = "1.0"
	MaxVersion = "1.0"
)

// supported is the constraint every declared version must satisfy.
var supported = mustConstraint(fmt.Sprintf(">= %s, <= %s", MinVersion, MaxVersion))

func mustConstraint(c string) *semver.Constraints {
	constraint, err := semver.NewConstraint(c)
	if err != nil {
		panic(fmt.Sprintf("schema: invalid version constraint %q: %v", c, err))
	}
	return constraint
}

// ParseVersion reads the numeric `version` section.
func ParseVersion(node *ast.Node) (float64, error) {
	if node.IsNull() {
		return 0, specErrors.New(specErrors.ErrorTypeStructural, string(SectionVersion),
			"missing required section 'version'").
			WithSuggestion(specErrors.SuggestMissingSection(string(SectionVersion), MinVersion))
	}
	v, ok := node.AsFloat()
	if !ok {
		return 0, specErrors.New(specErrors.ErrorTypeStructural, string(SectionVersion),
			"version must be a number, got %v", node.Interface()).
			At(node.Location).
			WithSuggestion(fmt.Sprintf("Example: 'version: %s'", MinVersion))
	}
	return v, nil
}

// CheckVersion reports whether v lies within [MinVersion, MaxVersion].
func CheckVersion(v float64) error {
	text := strconv.FormatFloat(v, 'f', -1, 64)
	parsed, err := semver.NewVersion(text)
	if err != nil || v < 0 {
		return specErrors.New(specErrors.ErrorTypeStructural, string(SectionVersion),
			"invalid version %s", text)
	}
	if !supported.Check(parsed) {
		return specErrors.New(specErrors.ErrorTypeStructural, string(SectionVersion),
			"unsupported version %s", text).
			WithSuggestion(fmt.Sprintf("Supported versions: %s to %s", MinVersion, MaxVersion))
	}
	return nil
}

// ValidateVersion parses and checks the `version` section in one step.
func ValidateVersion(node *ast.Node) (float64, error) {
	v, err := ParseVersion(node)
	if err != nil {
		return 0, err
	}
	if err := CheckVersion(v); err != nil {
		if e, ok := err.(*specErrors.Error); ok {
			e.At(node.Location)
		}
		return 0, err
	}
	return v, nil
}
