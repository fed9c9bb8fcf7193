package parser

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/orbit-ml/specfile/pkg/specfile/ast"
	specErrors "github.com/orbit-ml/specfile/pkg/specfile/errors"
)

// identifierPattern restricts for-loop variable names.
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// builder constructs document trees from yaml.v3 nodes.
// It keeps source locations and collects every error it finds.
type builder struct {
	sourcePath string
	maxDepth   int
	errors     *specErrors.ErrorList
}

// newBuilder creates a new tree builder for the given source file.
func newBuilder(sourcePath string, maxDepth int) *builder {
	return &builder{
		sourcePath: sourcePath,
		maxDepth:   maxDepth,
		errors:     specErrors.NewErrorList(),
	}
}

// buildDocument converts one YAML document. The root must be a mapping;
// an empty document yields nil.
func (b *builder) buildDocument(root *yaml.Node) *ast.Node {
	node := root
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return nil
		}
		node = node.Content[0]
	}
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		b.addError(specErrors.ErrorTypeSyntax, "", node,
			fmt.Sprintf("Specification root must be a mapping, got %s", yamlKind(node)))
		return nil
	}
	return b.build(node, "", 0)
}

// build converts a YAML node at the given field path.
func (b *builder) build(node *yaml.Node, path string, depth int) *ast.Node {
	if depth > b.maxDepth {
		b.addError(specErrors.ErrorTypeSyntax, path, node,
			fmt.Sprintf("Nesting depth exceeds maximum of %d", b.maxDepth))
		return ast.Null()
	}

	var out *ast.Node
	switch node.Kind {
	case yaml.AliasNode:
		return b.build(node.Alias, path, depth)
	case yaml.ScalarNode:
		out = ast.Scalar(b.scalarValue(node, path))
	case yaml.SequenceNode:
		items := make([]*ast.Node, 0, len(node.Content))
		for i, child := range node.Content {
			items = append(items, b.build(child, ast.IndexPath(path, i), depth+1))
		}
		out = ast.Sequence(items...)
	case yaml.MappingNode:
		out = b.buildMapping(node, path, depth)
	default:
		b.addError(specErrors.ErrorTypeSyntax, path, node, fmt.Sprintf("Unsupported YAML node %s", yamlKind(node)))
		out = ast.Null()
	}
	out.Location = b.location(node)
	return out
}

// buildMapping converts a mapping, recognizing directives and merge keys.
func (b *builder) buildMapping(node *yaml.Node, path string, depth int) *ast.Node {
	if len(node.Content) == 2 {
		key := node.Content[0]
		value := node.Content[1]
		if ast.IsDirectiveKey(key.Value) && value.Kind == yaml.MappingNode {
			return b.buildDirective(ast.DirectiveType(key.Value), value, path, depth)
		}
	}

	out := ast.Mapping()
	seen := make(map[string]int)
	merged := make(map[string]int)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valueNode := node.Content[i], node.Content[i+1]
		if keyNode.Kind != yaml.ScalarNode {
			b.addError(specErrors.ErrorTypeSyntax, path, keyNode, "Mapping keys must be scalars")
			continue
		}

		if keyNode.Tag == "!!merge" {
			b.mergeInto(out, seen, merged, valueNode, path, depth)
			continue
		}

		key := keyNode.Value
		child := b.build(valueNode, ast.JoinPath(path, key), depth+1)
		if idx, dup := seen[key]; dup {
			b.addError(specErrors.ErrorTypeSyntax, ast.JoinPath(path, key), keyNode,
				fmt.Sprintf("Duplicate key '%s'", key))
			out.Entries[idx].Value = child
			continue
		}
		if idx, ok := merged[key]; ok {
			delete(merged, key)
			seen[key] = idx
			out.Entries[idx] = ast.E(key, child)
			continue
		}
		seen[key] = len(out.Entries)
		out.Entries = append(out.Entries, ast.E(key, child))
	}
	return out
}

// mergeInto applies a YAML "<<" merge key. Explicit keys win over merged
// ones wherever they appear, and earlier merge sources win over later ones.
func (b *builder) mergeInto(out *ast.Node, seen, merged map[string]int, value *yaml.Node, path string, depth int) {
	sources := []*yaml.Node{value}
	if value.Kind == yaml.SequenceNode {
		sources = value.Content
	}
	for _, src := range sources {
		m := b.build(src, path, depth)
		if !m.IsMapping() {
			b.addError(specErrors.ErrorTypeSyntax, path, src, "Merge key value must be a mapping")
			continue
		}
		for _, e := range m.Entries {
			if _, ok := seen[e.Key]; ok {
				continue
			}
			if _, ok := merged[e.Key]; ok {
				continue
			}
			merged[e.Key] = len(out.Entries)
			out.Entries = append(out.Entries, e)
		}
	}
}

// buildDirective converts the body of a for/if directive.
func (b *builder) buildDirective(typ ast.DirectiveType, body *yaml.Node, path string, depth int) *ast.Node {
	d := &ast.Directive{Type: typ, Location: b.location(body)}
	allowed := []string{ast.KeywordCond, ast.KeywordDo}
	if typ == ast.DirectiveFor {
		allowed = []string{ast.KeywordEach, ast.KeywordIn, ast.KeywordDo}
	}

	present := make(map[string]bool)
	for i := 0; i+1 < len(body.Content); i += 2 {
		keyNode, valueNode := body.Content[i], body.Content[i+1]
		key := keyNode.Value
		fieldPath := ast.JoinPath(ast.JoinPath(path, string(typ)), key)
		present[key] = true

		switch {
		case key == ast.KeywordEach && typ == ast.DirectiveFor:
			name := valueNode.Value
			if valueNode.Kind != yaml.ScalarNode || !identifierPattern.MatchString(name) {
				b.addError(specErrors.ErrorTypeSyntax, fieldPath, valueNode,
					fmt.Sprintf("Loop variable must be an identifier, got %q", name))
			}
			d.Each = name
		case key == ast.KeywordIn && typ == ast.DirectiveFor:
			d.In = b.build(valueNode, fieldPath, depth+1)
		case key == ast.KeywordCond && typ == ast.DirectiveIf:
			d.Cond = b.build(valueNode, fieldPath, depth+1)
		case key == ast.KeywordDo:
			d.Body = b.build(valueNode, path, depth+1)
		default:
			b.addErrorWithSuggestion(specErrors.ErrorTypeSyntax, fieldPath, keyNode,
				fmt.Sprintf("Unknown key '%s' in %s directive", key, typ),
				specErrors.SuggestFieldName(key, allowed))
		}
	}

	for _, key := range allowed {
		if !present[key] {
			b.addErrorWithSuggestion(specErrors.ErrorTypeSyntax, ast.JoinPath(path, string(typ)), body,
				fmt.Sprintf("Missing '%s' in %s directive", key, typ),
				fmt.Sprintf("Add '%s' to the %s directive", key, typ))
		}
	}

	return &ast.Node{Kind: ast.KindDirective, Directive: d}
}

// scalarValue decodes a scalar into string, int, float64, bool or nil.
// Integers that do not fit an int are rejected.
func (b *builder) scalarValue(node *yaml.Node, path string) any {
	switch node.Tag {
	case "!!str", "!!binary", "!!timestamp":
		return node.Value
	}
	var v any
	if err := node.Decode(&v); err != nil {
		b.addError(specErrors.ErrorTypeSyntax, path, node, fmt.Sprintf("Invalid scalar %q: %v", node.Value, err))
		return nil
	}
	switch x := v.(type) {
	case int64:
		if x < math.MinInt || x > math.MaxInt {
			b.addError(specErrors.ErrorTypeSyntax, path, node, fmt.Sprintf("Integer %s is out of range", node.Value))
			return nil
		}
		return int(x)
	case uint64:
		if x > math.MaxInt {
			b.addError(specErrors.ErrorTypeSyntax, path, node, fmt.Sprintf("Integer %s is out of range", node.Value))
			return nil
		}
		return int(x)
	case nil, string, bool, int, float64:
		return v
	default:
		return node.Value
	}
}

// location extracts the source location from a YAML node.
func (b *builder) location(node *yaml.Node) ast.Location {
	if node == nil {
		return ast.Location{File: b.sourcePath}
	}
	return ast.Location{File: b.sourcePath, Line: node.Line, Column: node.Column}
}

func (b *builder) addError(errType specErrors.ErrorType, path string, node *yaml.Node, message string) {
	b.errors.AddError(errType, path, message, b.location(node))
}

func (b *builder) addErrorWithSuggestion(errType specErrors.ErrorType, path string, node *yaml.Node, message, suggestion string) {
	b.errors.AddErrorWithSuggestion(errType, path, message, b.location(node), suggestion)
}

// yamlKind names a YAML node kind for error messages.
func yamlKind(node *yaml.Node) string {
	switch node.Kind {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return strings.TrimPrefix(node.Tag, "!!")
	case yaml.AliasNode:
		return "alias"
	default:
		return "unknown"
	}
}
