package schema

import (
	"regexp"

	"github.com/orbit-ml/specfile/pkg/specfile/ast"
	specErrors "github.com/orbit-ml/specfile/pkg/specfile/errors"
)

var projectNamePattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

var projectFields = []string{"name", "description"}

// Project is the decoded `project` section.
type Project struct {
	Name        string
	Description string
}

// DecodeProject reads the `project` section, which is either a bare name or
// a mapping with a name and an optional description.
func DecodeProject(node *ast.Node) (*Project, error) {
	path := string(SectionProject)
	if node.IsNull() {
		return nil, specErrors.New(specErrors.ErrorTypeStructural, path,
			"missing required section 'project'").
			WithSuggestion(specErrors.SuggestMissingSection(path, "{name: my-project}"))
	}

	if name, ok := node.AsString(); ok {
		p := &Project{Name: name}
		return p, checkProjectName(p.Name, path, node.Location)
	}

	if !node.IsMapping() {
		return nil, specErrors.New(specErrors.ErrorTypeSemantic, path,
			"project must be a name or a mapping, got %s", node.Kind).At(node.Location)
	}

	errs := specErrors.NewErrorList()
	checkFields(errs, node, path, projectFields)

	p := &Project{}
	nameNode, ok := node.Get("name")
	switch {
	case !ok:
		errs.Add(specErrors.New(specErrors.ErrorTypeSemantic, ast.JoinPath(path, "name"),
			"missing project name").At(node.Location))
	default:
		p.Name = stringField(errs, nameNode, ast.JoinPath(path, "name"))
		if p.Name != "" {
			if err := checkProjectName(p.Name, ast.JoinPath(path, "name"), nameNode.Location); err != nil {
				errs.Merge(err)
			}
		}
	}
	if desc, ok := node.Get("description"); ok && !desc.IsNull() {
		p.Description = stringField(errs, desc, ast.JoinPath(path, "description"))
	}

	if err := errs.ToError(); err != nil {
		return nil, err
	}
	return p, nil
}

func checkProjectName(name, path string, loc ast.Location) error {
	if projectNamePattern.MatchString(name) {
		return nil
	}
	return specErrors.New(specErrors.ErrorTypeSemantic, path,
		"invalid project name %q", name).
		At(loc).
		WithSuggestion("Use letters, digits, '-' and '_' only")
}
