package validator

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/orbit-ml/specfile/pkg/specfile/ast"
	specErrors "github.com/orbit-ml/specfile/pkg/specfile/errors"
	"github.com/orbit-ml/specfile/pkg/specfile/parser"
	"github.com/orbit-ml/specfile/pkg/specfile/schema"
)

func mustParse(t *testing.T, src string) *ast.Node {
	t.Helper()
	doc, err := parser.NewParser().ParseBytes([]byte(src), "memory://test")
	if err != nil {
		t.Fatalf("ParseBytes() failed: %v", err)
	}
	return doc
}

func layout(t *testing.T, kind schema.Kind) schema.Layout {
	t.Helper()
	l, ok := schema.LayoutFor(kind)
	if !ok {
		t.Fatalf("no layout for %q", kind)
	}
	return l
}

const validGroup = `
version: 1.0
project: {name: mnist}
kind: group
declarations: {batch: 32}
settings:
  concurrency: 2
  matrix:
    lr: {values: [0.1, 0.01]}
run:
  cmd: python train.py --batch 32
model:
  units: 64
`

func TestValidator_Validate_Valid(t *testing.T) {
	v := NewValidator()
	doc := mustParse(t, validGroup)
	if err := v.Validate(doc, layout(t, schema.KindGroup)); err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}
}

func TestValidator_Idempotent(t *testing.T) {
	v := NewValidator()
	doc := mustParse(t, validGroup)
	before := doc.Clone()
	for i := 0; i < 3; i++ {
		if err := v.ValidateStructural(doc, layout(t, schema.KindGroup)); err != nil {
			t.Fatalf("ValidateStructural() run %d failed: %v", i, err)
		}
	}
	if !ast.Equal(doc, before) {
		t.Error("ValidateStructural() modified the document")
	}
}

func TestStructuralValidator(t *testing.T) {
	tests := []struct {
		name     string
		kind     schema.Kind
		src      string
		wantPath string
		wantMsg  string
	}{
		{
			name:     "unknown section",
			kind:     schema.KindExperiment,
			src:      "version: 1\nproject: p\nkind: experiment\nrun: {cmd: x}\nfoo: 1\n",
			wantPath: "foo",
			wantMsg:  "unknown section 'foo'",
		},
		{
			name:     "misspelled section",
			kind:     schema.KindExperiment,
			src:      "version: 1\nproject: p\nkind: experiment\nmodle: {}\n",
			wantPath: "modle",
			wantMsg:  "Did you mean 'model'?",
		},
		{
			name:     "unsupported version",
			kind:     schema.KindExperiment,
			src:      "version: 2.0\nproject: p\nkind: experiment\nrun: {cmd: x}\n",
			wantPath: "version",
			wantMsg:  "unsupported version 2",
		},
		{
			name:     "missing required",
			kind:     schema.KindGroup,
			src:      "version: 1\nproject: p\nkind: group\n",
			wantPath: "settings",
			wantMsg:  "missing required section 'settings'",
		},
		{
			name:     "kind mismatch",
			kind:     schema.KindJob,
			src:      "version: 1\nproject: p\nkind: experiment\nrun: {cmd: x}\n",
			wantPath: "kind",
			wantMsg:  "kind mismatch",
		},
		{
			name:     "disallowed section",
			kind:     schema.KindPlugin,
			src:      "version: 1\nproject: p\nkind: plugin\nrun: {cmd: x}\ndeclarations: {a: 1}\n",
			wantPath: "declarations",
			wantMsg:  "not allowed for kind plugin",
		},
		{
			name:     "unknown kind",
			kind:     schema.KindJob,
			src:      "version: 1\nproject: p\nkind: jbo\nrun: {cmd: x}\n",
			wantPath: "kind",
			wantMsg:  "Did you mean 'job'?",
		},
	}

	v := NewStructuralValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(mustParse(t, tt.src), layout(t, tt.kind))
			if err == nil {
				t.Fatal("Validate() should fail")
			}
			if !stderrors.Is(err, specErrors.ErrStructural) {
				t.Errorf("error does not match ErrStructural: %v", err)
			}
			assertError(t, err, tt.wantPath, tt.wantMsg)
		})
	}
}

func TestStructuralValidator_NotMapping(t *testing.T) {
	err := NewStructuralValidator().Validate(ast.Sequence(), layout(t, schema.KindJob))
	if !stderrors.Is(err, specErrors.ErrStructural) {
		t.Errorf("Validate(sequence) error = %v, want structural", err)
	}
}

func TestStructuralValidator_ValidateHeader(t *testing.T) {
	v := NewStructuralValidator()
	doc := mustParse(t, "version: 1\nproject: p\nkind: job\n")

	if err := v.ValidateHeader(doc, layout(t, schema.KindJob)); err != nil {
		t.Errorf("ValidateHeader() failed: %v", err)
	}
	err := v.Validate(doc, layout(t, schema.KindJob))
	if err == nil {
		t.Fatal("Validate() should require the run section")
	}
	assertError(t, err, "run", "missing required section 'run'")
}

func TestStructuralValidator_ValidateLayout(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		wantPath string
		wantMsg  string
	}{
		{
			name: "templated header values",
			src:  "version: '{{ v }}'\nproject: p\nkind: '{{ k }}'\ndeclarations: {a: '{{ missing }}'}\n",
		},
		{
			name:     "literal version",
			src:      "version: 2.0\nproject: p\nkind: job\ndeclarations: {a: '{{ missing }}'}\n",
			wantPath: "version",
			wantMsg:  "unsupported version",
		},
		{
			name:     "unknown section",
			src:      "version: 1\nproject: p\nkind: job\nfoo: 1\n",
			wantPath: "foo",
			wantMsg:  "unknown section 'foo'",
		},
		{
			name:     "missing header section",
			src:      "version: 1\nkind: job\n",
			wantPath: "project",
			wantMsg:  "missing required section 'project'",
		},
	}

	v := NewStructuralValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateLayout(mustParse(t, tt.src), layout(t, schema.KindJob))
			if tt.wantMsg == "" {
				if err != nil {
					t.Errorf("ValidateLayout() failed: %v", err)
				}
				return
			}
			if !stderrors.Is(err, specErrors.ErrStructural) {
				t.Fatalf("ValidateLayout() error = %v, want structural", err)
			}
			assertError(t, err, tt.wantPath, tt.wantMsg)
		})
	}
}

func TestSemanticValidator(t *testing.T) {
	tests := []struct {
		name     string
		kind     schema.Kind
		src      string
		wantPath string
		wantMsg  string
	}{
		{
			name:     "bad project name",
			kind:     schema.KindExperiment,
			src:      "version: 1\nproject: 'a b'\nkind: experiment\n",
			wantPath: "project",
			wantMsg:  "invalid project name",
		},
		{
			name:     "section shape",
			kind:     schema.KindExperiment,
			src:      "version: 1\nproject: p\nkind: experiment\nmodel: [1, 2]\n",
			wantPath: "model",
			wantMsg:  "must be a mapping",
		},
		{
			name:     "run without cmd",
			kind:     schema.KindJob,
			src:      "version: 1\nproject: p\nkind: job\nrun: {image: python}\n",
			wantPath: "run.cmd",
			wantMsg:  "requires a 'cmd'",
		},
		{
			name:     "cmd argument type",
			kind:     schema.KindJob,
			src:      "version: 1\nproject: p\nkind: job\nrun: {cmd: [python, {a: 1}]}\n",
			wantPath: "run.cmd[1]",
			wantMsg:  "must be strings",
		},
		{
			name:     "matrix outside group",
			kind:     schema.KindExperiment,
			src:      "version: 1\nproject: p\nkind: experiment\nsettings: {matrix: {a: {values: [1]}}}\n",
			wantPath: "settings.matrix",
			wantMsg:  "only valid for group",
		},
		{
			name:     "invalid distribution",
			kind:     schema.KindGroup,
			src:      "version: 1\nproject: p\nkind: group\nsettings: {matrix: {lr: {range: {start: 0, stop: 1, step: 0}}}}\n",
			wantPath: "settings.matrix.lr.range",
			wantMsg:  "",
		},
		{
			name:     "unresolved directive",
			kind:     schema.KindExperiment,
			src:      "version: 1\nproject: p\nkind: experiment\nmodel:\n  if: {cond: true, do: {a: 1}}\n",
			wantPath: "model",
			wantMsg:  "unresolved 'if' directive",
		},
	}

	v := NewSemanticValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(mustParse(t, tt.src), layout(t, tt.kind))
			if err == nil {
				t.Fatal("Validate() should fail")
			}
			if !stderrors.Is(err, specErrors.ErrSpecification) {
				t.Errorf("error does not match ErrSpecification: %v", err)
			}
			assertError(t, err, tt.wantPath, tt.wantMsg)
		})
	}
}

func TestValidator_SkipsSemanticAfterStructural(t *testing.T) {
	doc := mustParse(t, "version: 9\nproject: 'a b'\nkind: experiment\n")
	err := NewValidator().Validate(doc, layout(t, schema.KindExperiment))

	var list *specErrors.ErrorList
	if !stderrors.As(err, &list) {
		t.Fatalf("Validate() error = %T, want *ErrorList", err)
	}
	if list.HasErrorType(specErrors.ErrorTypeSemantic) {
		t.Errorf("semantic errors reported after structural failure: %v", err)
	}
}

func assertError(t *testing.T, err error, path, msg string) {
	t.Helper()
	var list *specErrors.ErrorList
	if !stderrors.As(err, &list) {
		t.Fatalf("error = %T, want *ErrorList", err)
	}
	for _, e := range list.Errors {
		if e.Path == path && strings.Contains(e.Error(), msg) {
			return
		}
	}
	t.Errorf("no error at %q containing %q in:\n%v", path, msg, err)
}
