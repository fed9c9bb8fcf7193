package ast

import "errors"

// Visitor is called for every node of a tree during Walk. The path is the
// dotted field path of the node relative to the walk root.
type Visitor interface {
	Visit(path string, n *Node) error
}

// VisitorFunc adapts a function to the Visitor interface.
type VisitorFunc func(path string, n *Node) error

// Visit calls f(path, n).
func (f VisitorFunc) Visit(path string, n *Node) error {
	return f(path, n)
}

// SkipChildren may be returned by a Visitor to prune the walk below the
// current node. Walk itself never returns it.
var SkipChildren = skipChildren{}

type skipChildren struct{}

func (skipChildren) Error() string { return "skip children" }

// Walk traverses the tree depth-first in document order and calls the
// visitor for each node. Directive payloads (in, cond, do) are visited under
// the directive's own path. It returns the first error encountered.
func Walk(root *Node, v Visitor) error {
	err := walk("", root, v)
	if err == SkipChildren {
		return nil
	}
	return err
}

func walk(path string, n *Node, v Visitor) error {
	if n == nil {
		return nil
	}
	if err := v.Visit(path, n); err != nil {
		if err == SkipChildren {
			return nil
		}
		return err
	}

	switch n.Kind {
	case KindSequence:
		for i, item := range n.Items {
			if err := walk(IndexPath(path, i), item, v); err != nil {
				return err
			}
		}
	case KindMapping:
		for _, e := range n.Entries {
			if err := walk(JoinPath(path, e.Key), e.Value, v); err != nil {
				return err
			}
		}
	case KindDirective:
		d := n.Directive
		for _, child := range []*Node{d.In, d.Cond, d.Body} {
			if err := walk(path, child, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// HasDirectives reports whether any for/if directive remains in the tree.
func HasDirectives(root *Node) bool {
	found := false
	_ = Walk(root, VisitorFunc(func(_ string, n *Node) error {
		if n.IsDirective() {
			found = true
			return errFound
		}
		return nil
	}))
	return found
}

var errFound = errors.New("directive found")
