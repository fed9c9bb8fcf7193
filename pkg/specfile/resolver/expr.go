package resolver

import (
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"

	"github.com/orbit-ml/specfile/pkg/specfile/ast"
	specErrors "github.com/orbit-ml/specfile/pkg/specfile/errors"
)

// functions is the fixed set callable from directive expressions.
var functions = map[string]function.Function{
	"range":    stdlib.RangeFunc,
	"length":   stdlib.LengthFunc,
	"contains": stdlib.ContainsFunc,
	"min":      stdlib.MinFunc,
	"max":      stdlib.MaxFunc,
}

// FunctionNames returns the names callable from expressions, sorted.
func FunctionNames() []string {
	names := make([]string, 0, len(functions))
	for name := range functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// evaluate parses src as an expression and evaluates it against the
// declarations. Only declared names and the fixed function set may be
// used.
func evaluate(src string, decls *Declarations, path string, loc ast.Location) (*ast.Node, error) {
	expr, diags := hclsyntax.ParseExpression([]byte(src), path, hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return nil, specErrors.New(specErrors.ErrorTypeSemantic, path,
			"invalid expression %q: %s", src, diags.Error()).At(loc)
	}

	if err := checkFunctions(expr, path, loc); err != nil {
		return nil, err
	}

	vars := make(map[string]cty.Value)
	for _, traversal := range expr.Variables() {
		name := traversal.RootName()
		if _, done := vars[name]; done {
			continue
		}
		value, ok := decls.Lookup(name)
		if !ok {
			return nil, undeclared(name, decls, path, loc)
		}
		v, err := toCty(value)
		if err != nil {
			return nil, specErrors.New(specErrors.ErrorTypeSemantic, path, "variable '%s': %v", name, err).At(loc)
		}
		vars[name] = v
	}

	result, diags := expr.Value(&hcl.EvalContext{Variables: vars, Functions: functions})
	if diags.HasErrors() {
		return nil, specErrors.New(specErrors.ErrorTypeSemantic, path,
			"evaluating %q: %s", src, diags.Error()).At(loc)
	}
	out, err := fromCty(result)
	if err != nil {
		return nil, specErrors.New(specErrors.ErrorTypeSemantic, path, "evaluating %q: %v", src, err).At(loc)
	}
	out.Location = loc
	return out, nil
}

// checkFunctions rejects calls outside the fixed function set.
func checkFunctions(expr hclsyntax.Expression, path string, loc ast.Location) error {
	var unknown string
	hclsyntax.VisitAll(expr, func(node hclsyntax.Node) hcl.Diagnostics {
		if call, ok := node.(*hclsyntax.FunctionCallExpr); ok && unknown == "" {
			if _, known := functions[call.Name]; !known {
				unknown = call.Name
			}
		}
		return nil
	})
	if unknown == "" {
		return nil
	}
	return specErrors.New(specErrors.ErrorTypeSemantic, path,
		"function '%s' is not available in expressions", unknown).
		At(loc).
		WithSuggestion(fmt.Sprintf("Available functions: %v", FunctionNames()))
}
