package resolver

import (
	"github.com/orbit-ml/specfile/pkg/specfile/ast"
	specErrors "github.com/orbit-ml/specfile/pkg/specfile/errors"
)

// DefaultMaxIterations bounds the total number of for iterations of a
// single resolution.
const DefaultMaxIterations = 100_000

// Resolver expands for/if directives and {{ ref }} placeholders.
// It holds no per-call state and is safe for concurrent use.
type Resolver struct {
	maxIterations int
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithMaxIterations sets the iteration budget of one resolution.
func WithMaxIterations(n int) Option {
	return func(r *Resolver) {
		r.maxIterations = n
	}
}

// New creates a resolver.
func New(opts ...Option) *Resolver {
	r := &Resolver{maxIterations: DefaultMaxIterations}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns a directive-free copy of node using the default
// resolver.
func Resolve(node *ast.Node, decls *Declarations) (*ast.Node, error) {
	return New().Resolve(node, decls)
}

// Resolve returns a new tree with every directive expanded and every
// placeholder substituted. The input is never modified. A node removed at
// the root yields an empty mapping.
func (r *Resolver) Resolve(node *ast.Node, decls *Declarations) (*ast.Node, error) {
	return r.ResolveAt(node, decls, "")
}

// ResolveAt is Resolve for a subtree located at path, used in error
// messages.
func (r *Resolver) ResolveAt(node *ast.Node, decls *Declarations, path string) (*ast.Node, error) {
	if decls == nil {
		decls = Empty()
	}
	run := &resolution{maxIterations: r.maxIterations}
	out, present, err := run.value(node, decls, path)
	if err != nil {
		return nil, err
	}
	if !present {
		out = ast.Mapping()
		out.Location = node.Location
	}
	return out, nil
}

// Declare resolves the entries of a declarations mapping in order, each
// entry seeing base plus the entries before it, and returns base extended
// with them.
func (r *Resolver) Declare(node *ast.Node, base *Declarations) (*Declarations, error) {
	if base == nil {
		base = Empty()
	}
	if node.IsNull() {
		return base, nil
	}
	if !node.IsMapping() {
		return nil, specErrors.New(specErrors.ErrorTypeSemantic, "declarations",
			"declarations must be a mapping").At(node.Location)
	}

	decls := base
	run := &resolution{maxIterations: r.maxIterations}
	entries := ast.Mapping()
	for _, e := range node.Entries {
		key, err := run.key(e.Key, decls, "declarations", e.Value.Location)
		if err != nil {
			return nil, err
		}
		path := ast.JoinPath("declarations", key)
		v, present, err := run.value(e.Value, decls, path)
		if err != nil {
			return nil, err
		}
		if !present {
			continue
		}
		entries = entries.With(key, v)
		decls = decls.With(key, v)
	}
	return base.WithAll(entries), nil
}
