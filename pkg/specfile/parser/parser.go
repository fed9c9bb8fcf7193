package parser

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/orbit-ml/specfile/pkg/specfile/ast"
	specErrors "github.com/orbit-ml/specfile/pkg/specfile/errors"
)

const (
	// DefaultMaxFileSize is the largest specification file accepted.
	DefaultMaxFileSize int64 = 10 * 1024 * 1024 // 10MB

	// DefaultMaxDepth bounds the nesting of mappings and sequences.
	DefaultMaxDepth = 64
)

// Reader yields one raw document for a list of sources. Implementations
// must preserve section key order and pass directive nodes through
// untouched.
type Reader interface {
	Read(sources ...string) (*ast.Node, error)
}

// Parser reads YAML specification files into document trees.
// It keeps source locations and recognizes for/if directives.
type Parser struct {
	maxFileSize int64 // Maximum file size in bytes
	maxDepth    int   // Maximum nesting depth
}

var _ Reader = (*Parser)(nil)

// NewParser creates a new parser with default configuration.
func NewParser() *Parser {
	return &Parser{
		maxFileSize: DefaultMaxFileSize,
		maxDepth:    DefaultMaxDepth,
	}
}

// WithMaxFileSize sets the maximum file size limit.
func (p *Parser) WithMaxFileSize(size int64) *Parser {
	p.maxFileSize = size
	return p
}

// WithMaxDepth sets the maximum nesting depth.
func (p *Parser) WithMaxDepth(depth int) *Parser {
	p.maxDepth = depth
	return p
}

// Read parses every source file and shallow-merges them in order, later
// top-level keys overriding earlier ones.
func (p *Parser) Read(sources ...string) (*ast.Node, error) {
	if len(sources) == 0 {
		return nil, &specErrors.Error{
			Type:    specErrors.ErrorTypeIO,
			Message: "No specification files provided",
		}
	}

	docs := make([]*ast.Node, 0, len(sources))
	for _, source := range sources {
		doc, err := p.ParseFile(source)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return ast.Merge(docs...), nil
}

// ParseFile parses the specification file at path. A file holding several
// YAML documents separated by "---" yields their merge.
func (p *Parser) ParseFile(path string) (*ast.Node, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &specErrors.Error{
			Type:     specErrors.ErrorTypeIO,
			Message:  "Failed to access file",
			Location: ast.Location{File: path},
			Err:      err,
		}
	}
	if info.Size() > p.maxFileSize {
		return nil, &specErrors.Error{
			Type:     specErrors.ErrorTypeIO,
			Message:  fmt.Sprintf("File size %d exceeds maximum %d bytes", info.Size(), p.maxFileSize),
			Location: ast.Location{File: path},
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &specErrors.Error{
			Type:     specErrors.ErrorTypeIO,
			Message:  "Failed to read file",
			Location: ast.Location{File: path},
			Err:      err,
		}
	}
	return p.ParseBytes(data, path)
}

// ParseBytes parses specification YAML from a byte slice. sourcePath is
// only used for locations in errors.
func (p *Parser) ParseBytes(data []byte, sourcePath string) (*ast.Node, error) {
	if int64(len(data)) > p.maxFileSize {
		return nil, &specErrors.Error{
			Type:     specErrors.ErrorTypeIO,
			Message:  fmt.Sprintf("Data size %d exceeds maximum %d bytes", len(data), p.maxFileSize),
			Location: ast.Location{File: sourcePath},
		}
	}

	roots, err := decodeAll(data)
	if err != nil {
		return nil, &specErrors.Error{
			Type:       specErrors.ErrorTypeSyntax,
			Message:    "YAML parsing failed",
			Location:   ast.Location{File: sourcePath, Line: yamlErrorLine(err), Column: 1},
			Suggestion: "Check YAML syntax (indentation, colons, quotes)",
			Err:        err,
		}
	}

	b := newBuilder(sourcePath, p.maxDepth)
	docs := make([]*ast.Node, 0, len(roots))
	for _, root := range roots {
		doc := b.buildDocument(root)
		if doc != nil {
			docs = append(docs, doc)
		}
	}
	if b.errors.HasErrors() {
		for _, e := range b.errors.Errors {
			if e.Context == "" {
				e.Context = specErrors.Excerpt(data, e.Location, specErrors.DefaultContextLines)
			}
		}
		return nil, b.errors
	}

	if len(docs) == 0 {
		doc := ast.Mapping()
		doc.Location = ast.Location{File: sourcePath, Line: 1, Column: 1}
		return doc, nil
	}
	return ast.Merge(docs...), nil
}

// decodeAll decodes every document of a YAML stream.
func decodeAll(data []byte) ([]*yaml.Node, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var roots []*yaml.Node
	for {
		var node yaml.Node
		err := dec.Decode(&node)
		if errors.Is(err, io.EOF) {
			return roots, nil
		}
		if err != nil {
			return nil, err
		}
		roots = append(roots, &node)
	}
}

// yamlErrorLine extracts the line number reported by yaml.v3, defaulting
// to the first line.
func yamlErrorLine(err error) int {
	var line int
	var te *yaml.TypeError
	if errors.As(err, &te) {
		return 1
	}
	if _, scanErr := fmt.Sscanf(err.Error(), "yaml: line %d:", &line); scanErr == nil && line > 0 {
		return line
	}
	return 1
}
