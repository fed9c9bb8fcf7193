package schema

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/orbit-ml/specfile/pkg/specfile/ast"
	specErrors "github.com/orbit-ml/specfile/pkg/specfile/errors"
	"github.com/orbit-ml/specfile/pkg/specfile/parser"
)

func mustParse(t *testing.T, src string) *ast.Node {
	t.Helper()
	doc, err := parser.NewParser().ParseBytes([]byte(src), "memory://test")
	if err != nil {
		t.Fatalf("ParseBytes() failed: %v", err)
	}
	return doc
}

func TestLayoutFor(t *testing.T) {
	tests := []struct {
		kind        Kind
		required    Section
		notAllowed  Section
		hasRequired bool
	}{
		{KindExperiment, SectionProject, "", true},
		{KindGroup, SectionSettings, "", true},
		{KindJob, SectionRun, SectionModel, true},
		{KindPlugin, SectionRun, SectionDeclarations, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			l, ok := LayoutFor(tt.kind)
			if !ok {
				t.Fatalf("LayoutFor(%q) not found", tt.kind)
			}
			if l.Requires(tt.required) != tt.hasRequired {
				t.Errorf("Requires(%q) = %v, want %v", tt.required, !tt.hasRequired, tt.hasRequired)
			}
			if tt.notAllowed != "" && l.Allows(tt.notAllowed) {
				t.Errorf("Allows(%q) = true, want false", tt.notAllowed)
			}
			for _, s := range l.Required {
				if !l.Allows(s) {
					t.Errorf("required section %q is not allowed", s)
				}
			}
		})
	}

	if _, ok := LayoutFor("pipeline"); ok {
		t.Error("LayoutFor(pipeline) should not exist")
	}
}

func TestSections(t *testing.T) {
	if got := len(Sections()); got != 10 {
		t.Errorf("len(Sections()) = %d, want 10", got)
	}
	if !IsSection("eval") || IsSection("foo") {
		t.Error("IsSection() misclassifies sections")
	}
	if !SectionSettings.IsHeader() || SectionRun.IsHeader() {
		t.Error("IsHeader() misclassifies sections")
	}
}

func TestCheckVersion(t *testing.T) {
	tests := []struct {
		version float64
		wantErr bool
	}{
		{1.0, false},
		{1, false},
		{1.1, true},
		{2.0, true},
		{0.9, true},
		{-1, true},
	}

	for _, tt := range tests {
		err := CheckVersion(tt.version)
		if (err != nil) != tt.wantErr {
			t.Errorf("CheckVersion(%v) error = %v, wantErr %v", tt.version, err, tt.wantErr)
		}
		if err != nil && !stderrors.Is(err, specErrors.ErrStructural) {
			t.Errorf("CheckVersion(%v) error is not structural: %v", tt.version, err)
		}
	}
}

func TestValidateVersion(t *testing.T) {
	if _, err := ValidateVersion(ast.Scalar("1.0")); !stderrors.Is(err, specErrors.ErrStructural) {
		t.Errorf("string version error = %v, want structural", err)
	}
	if _, err := ValidateVersion(nil); !stderrors.Is(err, specErrors.ErrStructural) {
		t.Errorf("missing version error = %v, want structural", err)
	}
	err := func() error { _, err := ValidateVersion(ast.Scalar(2.0)); return err }()
	if err == nil || !strings.Contains(err.Error(), "unsupported version 2") {
		t.Errorf("ValidateVersion(2.0) error = %v, want unsupported version", err)
	}
	if v, err := ValidateVersion(ast.Scalar(1)); err != nil || v != 1 {
		t.Errorf("ValidateVersion(1) = %v, %v", v, err)
	}
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind(ast.Scalar("group"))
	if err != nil || k != KindGroup {
		t.Fatalf("ParseKind(group) = %q, %v", k, err)
	}

	_, err = ParseKind(ast.Scalar("gruop"))
	var e *specErrors.Error
	if !stderrors.As(err, &e) {
		t.Fatalf("ParseKind(gruop) error = %v, want *Error", err)
	}
	if e.Type != specErrors.ErrorTypeStructural {
		t.Errorf("Type = %q, want structural", e.Type)
	}
	if e.Suggestion != "Did you mean 'group'?" {
		t.Errorf("Suggestion = %q", e.Suggestion)
	}
}

func TestDecodeProject(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		want    Project
		wantErr string
	}{
		{name: "bare name", src: "project: mnist\n", want: Project{Name: "mnist"}},
		{
			name: "mapping",
			src:  "project: {name: my_project-1, description: test}\n",
			want: Project{Name: "my_project-1", Description: "test"},
		},
		{name: "invalid name", src: "project: 'my project'\n", wantErr: "invalid project name"},
		{name: "missing name", src: "project: {description: x}\n", wantErr: "missing project name"},
		{name: "unknown field", src: "project: {name: a, nmae: b}\n", wantErr: "unknown field 'nmae'"},
		{name: "wrong type", src: "project: [a]\n", wantErr: "must be a name or a mapping"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, _ := mustParse(t, tt.src).Get("project")
			p, err := DecodeProject(node)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("DecodeProject() error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeProject() failed: %v", err)
			}
			if *p != tt.want {
				t.Errorf("DecodeProject() = %+v, want %+v", *p, tt.want)
			}
		})
	}
}

func TestDecodeHeader(t *testing.T) {
	doc := mustParse(t, "version: 1\nkind: job\nproject: {name: p}\nrun: {cmd: x}\n")
	h, err := DecodeHeader(doc)
	if err != nil {
		t.Fatalf("DecodeHeader() failed: %v", err)
	}
	if h.Version != 1 || h.Kind != KindJob || h.Project.Name != "p" {
		t.Errorf("DecodeHeader() = %+v", h)
	}

	_, err = DecodeHeader(mustParse(t, "version: 3\nkind: nope\n"))
	var list *specErrors.ErrorList
	if !stderrors.As(err, &list) {
		t.Fatalf("DecodeHeader() error = %v, want *ErrorList", err)
	}
	if list.Count() != 3 {
		t.Errorf("Count() = %d, want 3 (version, kind, project): %v", list.Count(), err)
	}
}

func TestKindOf(t *testing.T) {
	if k, err := KindOf(mustParse(t, "kind: plugin\n")); err != nil || k != KindPlugin {
		t.Errorf("KindOf() = %q, %v", k, err)
	}
	if _, err := KindOf(ast.Sequence()); !stderrors.Is(err, specErrors.ErrStructural) {
		t.Errorf("KindOf(sequence) error = %v, want structural", err)
	}
}
