package schema

import (
	"slices"

	"github.com/orbit-ml/specfile/pkg/specfile/ast"
	specErrors "github.com/orbit-ml/specfile/pkg/specfile/errors"
)

// checkFields reports every key of node that is not in valid.
func checkFields(errs *specErrors.ErrorList, node *ast.Node, path string, valid []string) {
	for _, e := range node.Entries {
		if slices.Contains(valid, e.Key) {
			continue
		}
		errs.Add(specErrors.New(specErrors.ErrorTypeSemantic, ast.JoinPath(path, e.Key),
			"unknown field '%s'", e.Key).
			At(e.Value.Location).
			WithSuggestion(specErrors.SuggestFieldName(e.Key, valid)))
	}
}

// mappingField requires node to be a mapping.
func mappingField(errs *specErrors.ErrorList, node *ast.Node, path string) bool {
	if node.IsMapping() {
		return true
	}
	errs.Add(typeError(node, path, "a mapping"))
	return false
}

func stringField(errs *specErrors.ErrorList, node *ast.Node, path string) string {
	s, ok := node.AsString()
	if !ok {
		errs.Add(typeError(node, path, "a string"))
	}
	return s
}

func boolField(errs *specErrors.ErrorList, node *ast.Node, path string) bool {
	b, ok := node.AsBool()
	if !ok {
		errs.Add(typeError(node, path, "a bool"))
	}
	return b
}

func floatField(errs *specErrors.ErrorList, node *ast.Node, path string) float64 {
	f, ok := node.AsFloat()
	if !ok {
		errs.Add(typeError(node, path, "a number"))
	}
	return f
}

// positiveInt reads an integer greater than zero.
func positiveInt(errs *specErrors.ErrorList, node *ast.Node, path string) int {
	n, ok := node.AsInt()
	if !ok {
		errs.Add(typeError(node, path, "an integer"))
		return 0
	}
	if n <= 0 {
		errs.Add(specErrors.New(specErrors.ErrorTypeSemantic, path,
			"must be greater than 0, got %d", n).At(node.Location))
		return 0
	}
	return n
}

// oneOf reads a string restricted to choices.
func oneOf(errs *specErrors.ErrorList, node *ast.Node, path string, choices []string) string {
	s, ok := node.AsString()
	if !ok {
		errs.Add(typeError(node, path, "a string"))
		return ""
	}
	if !slices.Contains(choices, s) {
		errs.Add(specErrors.New(specErrors.ErrorTypeSemantic, path,
			"invalid value %q", s).
			At(node.Location).
			WithSuggestion(specErrors.SuggestFieldName(s, choices)))
		return ""
	}
	return s
}

func typeError(node *ast.Node, path, want string) *specErrors.Error {
	got := "null"
	if node != nil {
		got = node.Kind.String()
		if node.IsScalar() {
			got = describeScalar(node.Value)
		}
	}
	loc := ast.Location{}
	if node != nil {
		loc = node.Location
	}
	return specErrors.New(specErrors.ErrorTypeSemantic, path, "must be %s, got %s", want, got).At(loc)
}

func describeScalar(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case bool:
		return "bool"
	case int:
		return "integer"
	case float64:
		return "number"
	}
	return "scalar"
}
