package resolver

import (
	"github.com/orbit-ml/specfile/pkg/specfile/ast"
	specErrors "github.com/orbit-ml/specfile/pkg/specfile/errors"
)

// resolution carries the per-call iteration budget.
type resolution struct {
	maxIterations int
	iterations    int
}

// value resolves a node in value position. present is false when the node
// was removed by a directive.
func (r *resolution) value(n *ast.Node, decls *Declarations, path string) (*ast.Node, bool, error) {
	if n.IsNull() {
		out := ast.Null()
		if n != nil {
			out.Location = n.Location
		}
		return out, true, nil
	}

	switch n.Kind {
	case ast.KindScalar:
		out, err := r.scalar(n, decls, path)
		return out, err == nil, err
	case ast.KindSequence:
		out, err := r.sequence(n, decls, path)
		return out, err == nil, err
	case ast.KindMapping:
		out, err := r.mapping(n, decls, path)
		return out, err == nil, err
	case ast.KindDirective:
		results, err := r.directive(n, decls, path)
		if err != nil {
			return nil, false, err
		}
		return combine(n, results)
	}
	return nil, false, specErrors.New(specErrors.ErrorTypeSyntax, path, "unsupported node kind %s", n.Kind).At(n.Location)
}

// scalar substitutes placeholders in a string scalar. A string that is
// exactly one placeholder is replaced by a copy of the referenced value.
func (r *resolution) scalar(n *ast.Node, decls *Declarations, path string) (*ast.Node, error) {
	s, ok := n.AsString()
	if !ok || !hasTemplate(s) {
		return n.Clone(), nil
	}

	if ref, whole := wholeReference(s); whole {
		v, err := lookup(ref, decls, path, n.Location)
		if err != nil {
			return nil, err
		}
		out := v.Clone()
		out.Location = n.Location
		return out, nil
	}

	text, err := interpolate(s, decls, path, n.Location)
	if err != nil {
		return nil, err
	}
	out := ast.Scalar(text)
	out.Location = n.Location
	return out, nil
}

// sequence resolves every item. Directive results are spliced in place:
// sequence results contribute their items, others a single item.
func (r *resolution) sequence(n *ast.Node, decls *Declarations, path string) (*ast.Node, error) {
	items := make([]*ast.Node, 0, len(n.Items))
	for i, item := range n.Items {
		itemPath := ast.IndexPath(path, i)
		if item.IsDirective() {
			results, err := r.directive(item, decls, itemPath)
			if err != nil {
				return nil, err
			}
			for _, res := range results {
				if res.IsSequence() {
					items = append(items, res.Items...)
					continue
				}
				items = append(items, res)
			}
			continue
		}

		v, present, err := r.value(item, decls, itemPath)
		if err != nil {
			return nil, err
		}
		if present {
			items = append(items, v)
		}
	}
	out := ast.Sequence(items...)
	out.Location = n.Location
	return out, nil
}

// mapping resolves keys and values in order. Entries whose value is
// removed by a directive disappear.
func (r *resolution) mapping(n *ast.Node, decls *Declarations, path string) (*ast.Node, error) {
	out := ast.Mapping()
	out.Location = n.Location
	seen := make(map[string]bool, len(n.Entries))
	for _, e := range n.Entries {
		key, err := r.key(e.Key, decls, path, e.Value.Location)
		if err != nil {
			return nil, err
		}
		entryPath := ast.JoinPath(path, key)
		if seen[key] {
			return nil, specErrors.New(specErrors.ErrorTypeSemantic, entryPath,
				"duplicate key '%s' after substitution", key).At(e.Value.Location)
		}

		v, present, err := r.value(e.Value, decls, entryPath)
		if err != nil {
			return nil, err
		}
		if !present {
			continue
		}
		seen[key] = true
		out.Entries = append(out.Entries, ast.E(key, v))
	}
	return out, nil
}

// key interpolates placeholders in a mapping key.
func (r *resolution) key(key string, decls *Declarations, path string, loc ast.Location) (string, error) {
	if !hasTemplate(key) {
		return key, nil
	}
	keyPath := ast.JoinPath(path, key)
	if ref, whole := wholeReference(key); whole {
		v, err := lookup(ref, decls, keyPath, loc)
		if err != nil {
			return "", err
		}
		text, err := scalarText(v)
		if err != nil {
			return "", specErrors.New(specErrors.ErrorTypeSemantic, keyPath,
				"mapping key '%s' must reference a scalar: %v", ref, err).At(loc)
		}
		return text, nil
	}
	return interpolate(key, decls, keyPath, loc)
}

// directive expands a for or if node into its resolved results, in order.
// An empty result removes the node.
func (r *resolution) directive(n *ast.Node, decls *Declarations, path string) ([]*ast.Node, error) {
	d := n.Directive
	switch d.Type {
	case ast.DirectiveIf:
		ok, err := r.condition(d, decls, path)
		if err != nil || !ok {
			return nil, err
		}
		v, present, err := r.value(d.Body, decls, path)
		if err != nil || !present {
			return nil, err
		}
		return []*ast.Node{v}, nil

	case ast.DirectiveFor:
		elements, err := r.iterable(d, decls, path)
		if err != nil {
			return nil, err
		}
		results := make([]*ast.Node, 0, len(elements))
		for _, element := range elements {
			r.iterations++
			if r.maxIterations > 0 && r.iterations > r.maxIterations {
				return nil, specErrors.New(specErrors.ErrorTypeSemantic, path,
					"for directives exceed %d iterations", r.maxIterations).At(d.Location)
			}
			v, present, err := r.value(d.Body, decls.With(d.Each, element), path)
			if err != nil {
				return nil, err
			}
			if present {
				results = append(results, v)
			}
		}
		return results, nil
	}
	return nil, specErrors.New(specErrors.ErrorTypeSyntax, path, "unknown directive '%s'", d.Type).At(d.Location)
}

// condition evaluates the cond of an if directive to a bool.
func (r *resolution) condition(d *ast.Directive, decls *Declarations, path string) (bool, error) {
	condPath := ast.JoinPath(path, ast.KeywordCond)
	v, err := r.expression(d.Cond, decls, condPath, d.Location)
	if err != nil {
		return false, err
	}
	b, ok := v.AsBool()
	if !ok {
		return false, specErrors.New(specErrors.ErrorTypeSemantic, condPath,
			"condition must evaluate to a bool, got %s", describe(v)).At(d.Location)
	}
	return b, nil
}

// iterable evaluates the in of a for directive to its elements.
func (r *resolution) iterable(d *ast.Directive, decls *Declarations, path string) ([]*ast.Node, error) {
	inPath := ast.JoinPath(path, ast.KeywordIn)
	if d.In.IsSequence() {
		resolved, err := r.sequence(d.In, decls, inPath)
		if err != nil {
			return nil, err
		}
		return resolved.Items, nil
	}

	v, err := r.expression(d.In, decls, inPath, d.Location)
	if err != nil {
		return nil, err
	}
	if !v.IsSequence() {
		return nil, specErrors.New(specErrors.ErrorTypeSemantic, inPath,
			"for directive must iterate over a list, got %s", describe(v)).At(d.Location)
	}
	return v.Items, nil
}

// expression evaluates a directive operand: literal scalars stand for
// themselves, a string that is exactly one placeholder is looked up
// directly, and any other string is an expression evaluated after
// placeholder interpolation.
func (r *resolution) expression(n *ast.Node, decls *Declarations, path string, loc ast.Location) (*ast.Node, error) {
	if n.IsNull() {
		return nil, specErrors.New(specErrors.ErrorTypeSemantic, path, "missing expression").At(loc)
	}
	if n.Location.Line > 0 {
		loc = n.Location
	}
	s, ok := n.AsString()
	if !ok {
		return r.operand(n, decls, path)
	}
	if ref, whole := wholeReference(s); whole {
		return lookup(ref, decls, path, loc)
	}
	if hasTemplate(s) {
		text, err := interpolate(s, decls, path, loc)
		if err != nil {
			return nil, err
		}
		s = text
	}
	return evaluate(s, decls, path, loc)
}

// operand resolves a non-string directive operand, which must not be removed.
func (r *resolution) operand(n *ast.Node, decls *Declarations, path string) (*ast.Node, error) {
	v, present, err := r.value(n, decls, path)
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, specErrors.New(specErrors.ErrorTypeSemantic, path, "expression resolved to nothing").At(n.Location)
	}
	return v, nil
}

// combine merges directive results in value position. No result removes
// the node; a single if result stands for itself; for results that are
// all mappings are merged in order, anything else becomes a sequence with
// sequence results spliced.
func combine(n *ast.Node, results []*ast.Node) (*ast.Node, bool, error) {
	if len(results) == 0 {
		return nil, false, nil
	}
	if n.Directive.Type == ast.DirectiveIf {
		return results[0], true, nil
	}

	allMappings := true
	for _, res := range results {
		if !res.IsMapping() {
			allMappings = false
			break
		}
	}
	if allMappings {
		out := ast.Merge(results...)
		out.Location = n.Location
		return out, true, nil
	}

	var items []*ast.Node
	for _, res := range results {
		if res.IsSequence() {
			items = append(items, res.Items...)
			continue
		}
		items = append(items, res)
	}
	out := ast.Sequence(items...)
	out.Location = n.Location
	return out, true, nil
}

func describe(n *ast.Node) string {
	if n.IsScalar() {
		switch n.Value.(type) {
		case string:
			return "string"
		case bool:
			return "bool"
		default:
			return "number"
		}
	}
	if n == nil {
		return "null"
	}
	return n.Kind.String()
}
