package resolver

import (
	"fmt"
	"math/big"
	"regexp"
	"strconv"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"

	"github.com/orbit-ml/specfile/pkg/specfile/ast"
	specErrors "github.com/orbit-ml/specfile/pkg/specfile/errors"
)

var (
	// templatePattern matches one {{ ref }} placeholder.
	templatePattern = regexp.MustCompile(`\{\{\s*([^{}]*?)\s*\}\}`)

	// wholePattern matches a string made of exactly one placeholder.
	wholePattern = regexp.MustCompile(`^\s*\{\{\s*([^{}]*?)\s*\}\}\s*$`)
)

// hasTemplate reports whether s contains a placeholder.
func hasTemplate(s string) bool {
	return strings.Contains(s, "{{") && templatePattern.MatchString(s)
}

// wholeReference returns the reference when s is exactly one placeholder.
func wholeReference(s string) (string, bool) {
	m := wholePattern.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// parseReference parses name(.attr|[index])* into an HCL traversal.
func parseReference(ref string) (hcl.Traversal, error) {
	traversal, diags := hclsyntax.ParseTraversalAbs([]byte(ref), "reference", hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid reference %q: %s", ref, diags.Error())
	}
	return traversal, nil
}

// lookup resolves a reference against the declarations and returns the
// referenced value. The result is shared with the declarations; callers
// clone before embedding it.
func lookup(ref string, decls *Declarations, path string, loc ast.Location) (*ast.Node, error) {
	traversal, err := parseReference(ref)
	if err != nil {
		return nil, specErrors.New(specErrors.ErrorTypeSemantic, path, "%v", err).At(loc)
	}

	root := traversal.RootName()
	cur, ok := decls.Lookup(root)
	if !ok {
		return nil, undeclared(root, decls, path, loc)
	}

	walked := root
	for _, step := range traversal[1:] {
		switch s := step.(type) {
		case hcl.TraverseAttr:
			next, ok := cur.Get(s.Name)
			if !ok {
				return nil, specErrors.New(specErrors.ErrorTypeSemantic, path,
					"'%s' has no attribute '%s'", walked, s.Name).
					At(loc).
					WithSuggestion(specErrors.SuggestFieldName(s.Name, cur.Keys()))
			}
			cur = next
			walked += "." + s.Name
		case hcl.TraverseIndex:
			next, err := index(cur, s.Key)
			if err != nil {
				return nil, specErrors.New(specErrors.ErrorTypeSemantic, path, "'%s': %v", walked, err).At(loc)
			}
			cur = next
			walked += fmt.Sprintf("[%s]", indexKey(s.Key))
		default:
			return nil, specErrors.New(specErrors.ErrorTypeSemantic, path, "unsupported reference step in %q", ref).At(loc)
		}
	}
	return cur, nil
}

// index applies a [key] step to a sequence or mapping.
func index(n *ast.Node, key cty.Value) (*ast.Node, error) {
	switch {
	case n.IsSequence() && key.Type() == cty.Number:
		bf := key.AsBigFloat()
		i, acc := bf.Int64()
		if acc != big.Exact || i < 0 || int(i) >= len(n.Items) {
			return nil, fmt.Errorf("index %s out of range for %d items", bf.String(), len(n.Items))
		}
		return n.Items[i], nil
	case n.IsMapping() && key.Type() == cty.String:
		v, ok := n.Get(key.AsString())
		if !ok {
			return nil, fmt.Errorf("no key %q", key.AsString())
		}
		return v, nil
	}
	return nil, fmt.Errorf("cannot index %s with %s", n.Kind, key.Type().FriendlyName())
}

func indexKey(key cty.Value) string {
	if key.Type() == cty.String {
		return strconv.Quote(key.AsString())
	}
	return key.AsBigFloat().String()
}

// interpolate replaces every placeholder of s with the text of the
// referenced scalar.
func interpolate(s string, decls *Declarations, path string, loc ast.Location) (string, error) {
	var firstErr error
	out := templatePattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}
		ref := templatePattern.FindStringSubmatch(match)[1]
		v, err := lookup(ref, decls, path, loc)
		if err != nil {
			firstErr = err
			return match
		}
		text, err := scalarText(v)
		if err != nil {
			firstErr = specErrors.New(specErrors.ErrorTypeSemantic, path,
				"cannot interpolate '%s' into a string: %v", ref, err).At(loc)
			return match
		}
		return text
	})
	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}

// scalarText formats a scalar for string interpolation.
func scalarText(n *ast.Node) (string, error) {
	if n.IsNull() {
		return "null", nil
	}
	if !n.IsScalar() {
		return "", fmt.Errorf("value is a %s", n.Kind)
	}
	switch v := n.Value.(type) {
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case int:
		return strconv.Itoa(v), nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	}
	return fmt.Sprint(n.Value), nil
}

func undeclared(name string, decls *Declarations, path string, loc ast.Location) *specErrors.Error {
	return specErrors.New(specErrors.ErrorTypeUndeclaredVariable, path,
		"undeclared variable '%s'", name).
		At(loc).
		WithSuggestion(specErrors.SuggestDeclaration(name, decls.Names()))
}
