package parser

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/orbit-ml/specfile/pkg/specfile/ast"
)

// Encode renders a document tree as YAML, keeping mapping key order.
// Unresolved directives are written back in their document form.
func Encode(n *ast.Node) ([]byte, error) {
	node, err := toYAML(n)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return nil, fmt.Errorf("failed to encode YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode YAML: %w", err)
	}
	return buf.Bytes(), nil
}

func toYAML(n *ast.Node) (*yaml.Node, error) {
	if n.IsNull() {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	}
	switch n.Kind {
	case ast.KindScalar:
		out := &yaml.Node{}
		if err := out.Encode(n.Value); err != nil {
			return nil, err
		}
		return out, nil
	case ast.KindSequence:
		out := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range n.Items {
			child, err := toYAML(item)
			if err != nil {
				return nil, err
			}
			out.Content = append(out.Content, child)
		}
		return out, nil
	case ast.KindMapping:
		out := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, e := range n.Entries {
			value, err := toYAML(e.Value)
			if err != nil {
				return nil, err
			}
			key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Key}
			out.Content = append(out.Content, key, value)
		}
		return out, nil
	case ast.KindDirective:
		return toYAML(n.Directive.ToMapping())
	}
	return nil, fmt.Errorf("unsupported node kind %s", n.Kind)
}
