package schema

import (
	"github.com/orbit-ml/specfile/pkg/specfile/ast"
	specErrors "github.com/orbit-ml/specfile/pkg/specfile/errors"
)

// Header holds the decoded header sections of a specification.
type Header struct {
	Version float64
	Kind    Kind
	Project *Project
}

// ParseKind reads the `kind` section.
func ParseKind(node *ast.Node) (Kind, error) {
	path := string(SectionKind)
	if node.IsNull() {
		return "", specErrors.New(specErrors.ErrorTypeStructural, path,
			"missing required section 'kind'").
			WithSuggestion(specErrors.SuggestMissingSection(path, string(KindExperiment)))
	}
	s, ok := node.AsString()
	if !ok {
		return "", specErrors.New(specErrors.ErrorTypeStructural, path,
			"kind must be a string, got %s", node.Kind).At(node.Location)
	}
	kind := Kind(s)
	if !kind.IsValid() {
		return "", specErrors.New(specErrors.ErrorTypeStructural, path,
			"unsupported kind %q", s).
			At(node.Location).
			WithSuggestion(specErrors.SuggestFieldName(s, KindNames()))
	}
	return kind, nil
}

// KindOf returns the kind declared by a raw document.
func KindOf(doc *ast.Node) (Kind, error) {
	if !doc.IsMapping() {
		return "", specErrors.New(specErrors.ErrorTypeStructural, "",
			"specification must be a mapping, got %s", docKind(doc))
	}
	node, _ := doc.Get(string(SectionKind))
	return ParseKind(node)
}

// DecodeHeader reads version, kind and project from a document. The
// document must already be directive free in those sections.
func DecodeHeader(doc *ast.Node) (*Header, error) {
	errs := specErrors.NewErrorList()
	h := &Header{}

	versionNode, _ := doc.Get(string(SectionVersion))
	if v, err := ValidateVersion(versionNode); err != nil {
		errs.Merge(err)
	} else {
		h.Version = v
	}

	kindNode, _ := doc.Get(string(SectionKind))
	if k, err := ParseKind(kindNode); err != nil {
		errs.Merge(err)
	} else {
		h.Kind = k
	}

	projectNode, _ := doc.Get(string(SectionProject))
	if p, err := DecodeProject(projectNode); err != nil {
		errs.Merge(err)
	} else {
		h.Project = p
	}

	if err := errs.ToError(); err != nil {
		return nil, err
	}
	return h, nil
}

func docKind(n *ast.Node) string {
	if n == nil {
		return "null"
	}
	return n.Kind.String()
}
