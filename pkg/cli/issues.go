package cli

import (
	"errors"

	specErrors "github.com/orbit-ml/specfile/pkg/specfile/errors"
)

// Issue is one problem found in a specification, flattened for output.
type Issue struct {
	File       string `json:"file,omitempty" yaml:"file,omitempty"`
	Line       int    `json:"line,omitempty" yaml:"line,omitempty"`
	Column     int    `json:"column,omitempty" yaml:"column,omitempty"`
	Path       string `json:"path,omitempty" yaml:"path,omitempty"`
	Type       string `json:"type,omitempty" yaml:"type,omitempty"`
	Message    string `json:"message" yaml:"message"`
	Suggestion string `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
}

// Issues flattens err into one issue per specification error. Errors that
// carry no specification error become a single issue with the error text.
func Issues(err error) []Issue {
	if err == nil {
		return nil
	}

	var list *specErrors.ErrorList
	if errors.As(err, &list) && list.HasErrors() {
		issues := make([]Issue, 0, len(list.Errors))
		for _, e := range list.Errors {
			issues = append(issues, issueOf(e))
		}
		return issues
	}

	var e *specErrors.Error
	if errors.As(err, &e) {
		return []Issue{issueOf(e)}
	}
	return []Issue{{Message: err.Error()}}
}

func issueOf(e *specErrors.Error) Issue {
	return Issue{
		File:       e.Location.File,
		Line:       e.Location.Line,
		Column:     e.Location.Column,
		Path:       e.Path,
		Type:       string(e.Type),
		Message:    e.Message,
		Suggestion: e.Suggestion,
	}
}
