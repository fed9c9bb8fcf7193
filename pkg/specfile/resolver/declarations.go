package resolver

import (
	"github.com/orbit-ml/specfile/pkg/specfile/ast"
)

// Declarations is an immutable ordered mapping from variable name to
// value. With returns a child scope that shadows a single name, leaving the
// parent untouched, so one base can be shared by parallel resolutions.
type Declarations struct {
	parent *Declarations
	names  []string
	values map[string]*ast.Node
}

// NewDeclarations returns declarations holding the entries of a mapping
// node, in order. Values are used as given; see Resolver.Declare to
// resolve references between declarations.
func NewDeclarations(node *ast.Node) *Declarations {
	d := &Declarations{values: make(map[string]*ast.Node)}
	if !node.IsMapping() {
		return d
	}
	for _, e := range node.Entries {
		if _, ok := d.values[e.Key]; !ok {
			d.names = append(d.names, e.Key)
		}
		d.values[e.Key] = e.Value
	}
	return d
}

// Empty returns declarations with no names.
func Empty() *Declarations {
	return &Declarations{values: map[string]*ast.Node{}}
}

// With returns a child scope binding name to value.
func (d *Declarations) With(name string, value *ast.Node) *Declarations {
	return &Declarations{
		parent: d,
		names:  []string{name},
		values: map[string]*ast.Node{name: value},
	}
}

// WithAll returns a child scope binding every entry of a mapping node.
func (d *Declarations) WithAll(node *ast.Node) *Declarations {
	child := NewDeclarations(node)
	child.parent = d
	return child
}

// Lookup returns the innermost value bound to name.
func (d *Declarations) Lookup(name string) (*ast.Node, bool) {
	for scope := d; scope != nil; scope = scope.parent {
		if v, ok := scope.values[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Has reports whether name is bound.
func (d *Declarations) Has(name string) bool {
	_, ok := d.Lookup(name)
	return ok
}

// Names returns every visible name. Outer names come first in declaration
// order; a shadowed name keeps its outer position.
func (d *Declarations) Names() []string {
	if d == nil {
		return nil
	}
	out := d.parent.Names()
	seen := make(map[string]bool, len(out))
	for _, n := range out {
		seen[n] = true
	}
	for _, n := range d.names {
		if !seen[n] {
			out = append(out, n)
			seen[n] = true
		}
	}
	return out
}

// Len returns the number of visible names.
func (d *Declarations) Len() int {
	return len(d.Names())
}

// Node returns every visible binding as a mapping node, in Names order.
func (d *Declarations) Node() *ast.Node {
	names := d.Names()
	entries := make([]*ast.Entry, len(names))
	for i, name := range names {
		v, _ := d.Lookup(name)
		entries[i] = ast.E(name, v)
	}
	return ast.Mapping(entries...)
}
