package cli

import (
	"errors"
	"fmt"
	"testing"

	"github.com/orbit-ml/specfile/pkg/specfile/ast"
	specErrors "github.com/orbit-ml/specfile/pkg/specfile/errors"
)

func TestIssues(t *testing.T) {
	loc := ast.Location{File: "polyaxonfile.yaml", Line: 7, Column: 3}

	single := specErrors.New(specErrors.ErrorTypeUndeclaredVariable, "run.cmd",
		"reference to undeclared name %q", "lr").
		At(loc).
		WithSuggestion("Did you mean 'lrs'?")

	list := specErrors.NewErrorList()
	list.Add(specErrors.New(specErrors.ErrorTypeStructural, "kind", "unknown kind %q", "experimnt"))
	list.Add(single)

	t.Run("nil", func(t *testing.T) {
		if got := Issues(nil); got != nil {
			t.Errorf("Issues(nil) = %v, want nil", got)
		}
	})

	t.Run("single error", func(t *testing.T) {
		issues := Issues(fmt.Errorf("load: %w", single))
		if len(issues) != 1 {
			t.Fatalf("expected 1 issue, got %d", len(issues))
		}
		got := issues[0]
		if got.File != "polyaxonfile.yaml" || got.Line != 7 || got.Column != 3 {
			t.Errorf("location = %s:%d:%d", got.File, got.Line, got.Column)
		}
		if got.Path != "run.cmd" {
			t.Errorf("Path = %q, want run.cmd", got.Path)
		}
		if got.Type != string(specErrors.ErrorTypeUndeclaredVariable) {
			t.Errorf("Type = %q", got.Type)
		}
		if got.Suggestion != "Did you mean 'lrs'?" {
			t.Errorf("Suggestion = %q", got.Suggestion)
		}
	})

	t.Run("error list", func(t *testing.T) {
		issues := Issues(list)
		if len(issues) != 2 {
			t.Fatalf("expected 2 issues, got %d", len(issues))
		}
		if issues[0].Path != "kind" || issues[1].Path != "run.cmd" {
			t.Errorf("issues out of order: %+v", issues)
		}
	})

	t.Run("plain error", func(t *testing.T) {
		issues := Issues(errors.New("open polyaxonfile.yaml: no such file"))
		if len(issues) != 1 || issues[0].Message != "open polyaxonfile.yaml: no such file" {
			t.Errorf("Issues() = %+v", issues)
		}
	})
}
