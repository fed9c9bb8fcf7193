// Package ast defines the document tree shared by every stage of specfile.
//
// A specification document is an ordered mapping of sections (version,
// project, kind, settings, ...) holding arbitrarily nested mappings,
// sequences and scalars. Before resolution the tree may also contain
// directive nodes, the parsed form of embedded for/if constructs.
//
// # Core Types
//
// Node: tagged variant (null, scalar, sequence, mapping, directive)
//
// Entry: one key/value pair of a mapping, kept in document order
//
// Directive: a for or if construct with its body template
//
// Location: source position (file, line, column) for error reporting
//
// # Basic Usage
//
//	doc := ast.Mapping(
//	    ast.E("version", ast.Scalar(1.0)),
//	    ast.E("kind", ast.Scalar("experiment")),
//	)
//	kind, _ := doc.Get("kind")
//	name, _ := kind.AsString()
//
// Walk visits every node together with its dotted field path:
//
//	ast.Walk(doc, ast.VisitorFunc(func(path string, n *ast.Node) error {
//	    fmt.Println(path, n.Kind)
//	    return nil
//	}))
//
// # Immutability
//
// Nodes are not modified after construction. With, Without, Merge and the
// resolver all return new trees; Clone gives a deep copy when a caller
// needs one it can own.
package ast
