package specification

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/orbit-ml/specfile/pkg/specfile/ast"
	specErrors "github.com/orbit-ml/specfile/pkg/specfile/errors"
	"github.com/orbit-ml/specfile/pkg/specfile/parser"
	"github.com/orbit-ml/specfile/pkg/specfile/schema"
	"github.com/orbit-ml/specfile/pkg/specfile/validator"
)

func mustParse(t *testing.T, src string) *ast.Node {
	t.Helper()
	doc, err := parser.NewParser().ParseBytes([]byte(src), "memory://test")
	if err != nil {
		t.Fatalf("ParseBytes() failed: %v", err)
	}
	return doc
}

const experimentDoc = `
version: 1
project: {name: mnist, description: digits}
kind: experiment
environment: {resources: {gpu: 1}}
run: {cmd: python train.py}
model:
  layers: [{dense: 32}, {dense: 10}]
`

const groupDoc = `
version: 1.0
project: {name: '{{ project }}'}
kind: group
declarations:
  project: mnist
  batch: 32
settings:
  concurrency: 2
  matrix:
    lr: {values: [0.1, 0.01, 0.001]}
    units: {range: [16, 64, 16]}
run:
  cmd: 'python train.py --lr={{ lr }} --batch={{ batch }}'
model:
  layers:
    - for:
        each: i
        in: 'range(2)'
        do: {dense: '{{ units }}'}
`

func TestNew_Experiment_RoundTrip(t *testing.T) {
	raw := mustParse(t, experimentDoc)
	spec, err := New(context.Background(), Experiment, raw)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if spec.State() != StateValidated {
		t.Errorf("State() = %v, want validated", spec.State())
	}
	doc, err := spec.Document()
	if err != nil {
		t.Fatalf("Document() failed: %v", err)
	}
	if !ast.Equal(doc, raw) {
		t.Errorf("Document() differs from a directive-free input")
	}

	// Re-validating a validated document never fails.
	v := validator.NewValidator()
	for i := 0; i < 2; i++ {
		if err := v.ValidateStructural(doc, Experiment.Layout); err != nil {
			t.Errorf("ValidateStructural() run %d failed: %v", i, err)
		}
	}
}

func TestNew_Group(t *testing.T) {
	spec, err := New(context.Background(), Group, mustParse(t, groupDoc))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	project, err := spec.Project()
	if err != nil {
		t.Fatalf("Project() failed: %v", err)
	}
	if project.Name != "mnist" {
		t.Errorf("Project().Name = %q, want mnist", project.Name)
	}

	space, err := spec.Matrix()
	if err != nil {
		t.Fatalf("Matrix() failed: %v", err)
	}
	if n, err := space.Cardinality(); err != nil || n != 9 {
		t.Errorf("Cardinality() = %d, %v, want 9", n, err)
	}

	settings, _ := spec.Settings()
	if settings.ConcurrencyOrDefault() != 2 {
		t.Errorf("Concurrency = %d, want 2", settings.ConcurrencyOrDefault())
	}

	// The document is resolved with the first value of each parameter.
	run, _ := spec.Section(schema.SectionRun)
	cmd, _ := run.Get("cmd")
	if got, _ := cmd.AsString(); got != "python train.py --lr=0.1 --batch=32" {
		t.Errorf("run.cmd = %q", got)
	}
	model, _ := spec.Section(schema.SectionModel)
	layers, _ := model.Get("layers")
	if !layers.IsSequence() || layers.Len() != 2 {
		t.Fatalf("model.layers = %v, want 2 layers", model.Interface())
	}
	dense, _ := layers.Items[0].Get("dense")
	if n, _ := dense.AsInt(); n != 16 {
		t.Errorf("model[0].dense = %v, want 16", dense.Value)
	}

	decls, _ := spec.Declarations()
	if decls.Has("lr") {
		t.Error("Declarations() should not include matrix parameters")
	}
}

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name       string
		descriptor Descriptor
		src        string
		target     error
		wantMsg    string
	}{
		{
			name:       "version gate",
			descriptor: Experiment,
			src:        "version: 2.0\nproject: p\nkind: experiment\nrun: {cmd: x}\n",
			target:     specErrors.ErrStructural,
			wantMsg:    "unsupported version 2",
		},
		{
			name:       "unknown section",
			descriptor: Experiment,
			src:        "version: 1\nproject: p\nkind: experiment\nrun: {cmd: x}\nfoo: 1\n",
			target:     specErrors.ErrStructural,
			wantMsg:    "unknown section 'foo'",
		},
		{
			name:       "version gate before declarations",
			descriptor: Experiment,
			src:        "version: 2.0\nproject: p\nkind: experiment\ndeclarations: {a: '{{ missing }}'}\nrun: {cmd: x}\n",
			target:     specErrors.ErrStructural,
			wantMsg:    "unsupported version 2",
		},
		{
			name:       "unknown section before declarations",
			descriptor: Experiment,
			src:        "version: 1\nproject: p\nkind: experiment\ndeclarations: {a: '{{ missing }}'}\nrun: {cmd: x}\nfoo: 1\n",
			target:     specErrors.ErrStructural,
			wantMsg:    "unknown section 'foo'",
		},
		{
			name:       "kind mismatch",
			descriptor: Job,
			src:        "version: 1\nproject: p\nkind: experiment\nrun: {cmd: x}\n",
			target:     specErrors.ErrStructural,
			wantMsg:    "kind mismatch",
		},
		{
			name:       "group without matrix",
			descriptor: Group,
			src:        "version: 1\nproject: p\nkind: group\nsettings: {concurrency: 2}\nrun: {cmd: x}\n",
			target:     specErrors.ErrConfiguration,
			wantMsg:    "matrix definition is required",
		},
		{
			name:       "experiment without run or model",
			descriptor: Experiment,
			src:        "version: 1\nproject: p\nkind: experiment\ntrain: {epochs: 1}\n",
			target:     specErrors.ErrConfiguration,
			wantMsg:    "requires a 'run' or a 'model'",
		},
		{
			name:       "undeclared variable",
			descriptor: Experiment,
			src:        "version: 1\nproject: p\nkind: experiment\nrun: {cmd: '{{ missing }}'}\n",
			target:     specErrors.ErrUndeclaredVariable,
			wantMsg:    "missing",
		},
		{
			name:       "ambiguous distribution",
			descriptor: Group,
			src:        "version: 1\nproject: p\nkind: group\nsettings: {matrix: {lr: {values: [1], range: [0, 2]}}}\nrun: {cmd: x}\n",
			target:     specErrors.ErrAmbiguousDistribution,
			wantMsg:    "exactly one",
		},
		{
			name:       "missing required run",
			descriptor: Plugin,
			src:        "version: 1\nproject: p\nkind: plugin\n",
			target:     specErrors.ErrStructural,
			wantMsg:    "missing required section 'run'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := New(context.Background(), tt.descriptor, mustParse(t, tt.src))
			if err == nil {
				t.Fatal("New() should fail")
			}
			if spec != nil {
				t.Error("New() returned a specification together with an error")
			}
			if !stderrors.Is(err, tt.target) {
				t.Errorf("error = %v, want %v", err, tt.target)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %v, want it to contain %q", err, tt.wantMsg)
			}
		})
	}
}

func TestNew_NotMapping(t *testing.T) {
	_, err := New(context.Background(), Experiment, ast.Sequence())
	if !stderrors.Is(err, specErrors.ErrStructural) {
		t.Errorf("New(sequence) error = %v, want structural", err)
	}
}

func TestAccessors_NotReady(t *testing.T) {
	var zero Specification
	var nilSpec *Specification

	for name, s := range map[string]*Specification{"zero": &zero, "nil": nilSpec} {
		t.Run(name, func(t *testing.T) {
			checks := map[string]error{}
			_, checks["Header"] = s.Header()
			_, checks["Settings"] = s.Settings()
			_, checks["Document"] = s.Document()
			_, checks["Declarations"] = s.Declarations()
			_, checks["Matrix"] = s.Matrix()
			_, checks["Kind"] = s.Kind()
			_, checks["Fingerprint"] = s.Fingerprint()
			for accessor, err := range checks {
				if !stderrors.Is(err, specErrors.ErrNotReady) {
					t.Errorf("%s() error = %v, want not ready", accessor, err)
				}
			}
		})
	}
}

func TestMatrix_NotGroup(t *testing.T) {
	spec, err := New(context.Background(), Experiment, mustParse(t, experimentDoc))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if _, err := spec.Matrix(); !stderrors.Is(err, specErrors.ErrConfiguration) {
		t.Errorf("Matrix() error = %v, want configuration", err)
	}
}

func TestLoad_DispatchesOnKind(t *testing.T) {
	tests := []struct {
		src  string
		want schema.Kind
	}{
		{experimentDoc, schema.KindExperiment},
		{groupDoc, schema.KindGroup},
		{"version: 1\nproject: p\nkind: job\nrun: {cmd: x}\n", schema.KindJob},
		{"version: 1\nproject: p\nkind: plugin\nrun: {cmd: [tensorboard, --logdir, /out]}\n", schema.KindPlugin},
	}

	for _, tt := range tests {
		t.Run(string(tt.want), func(t *testing.T) {
			spec, err := Load(context.Background(), mustParse(t, tt.src))
			if err != nil {
				t.Fatalf("Load() failed: %v", err)
			}
			if got, _ := spec.Kind(); got != tt.want {
				t.Errorf("Kind() = %q, want %q", got, tt.want)
			}
			if spec.Descriptor().Kind() != tt.want {
				t.Errorf("Descriptor().Kind() = %q, want %q", spec.Descriptor().Kind(), tt.want)
			}
		})
	}

	if _, err := Load(context.Background(), mustParse(t, "version: 1\nkind: pipeline\n")); !stderrors.Is(err, specErrors.ErrStructural) {
		t.Errorf("Load(unknown kind) error = %v, want structural", err)
	}
}

func TestNew_LogsMatrixWarnings(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	src := "version: 1\nproject: p\nkind: group\nsettings: {matrix: {opt: {pvalues: [[adam, 2], [sgd, 2]]}}}\nrun: {cmd: x}\n"
	if _, err := New(context.Background(), Group, mustParse(t, src), WithLogger(logger)); err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "matrix warning") {
		t.Errorf("log output missing matrix warning:\n%s", out)
	}
	if !strings.Contains(out, "to=validated") {
		t.Errorf("log output missing validated transition:\n%s", out)
	}
}

func TestFingerprint(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, Experiment, mustParse(t, experimentDoc))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	b, _ := New(ctx, Experiment, mustParse(t, experimentDoc))
	c, err := New(ctx, Experiment, mustParse(t, strings.Replace(experimentDoc, "dense: 10", "dense: 12", 1)))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	fa, _ := a.Fingerprint()
	fb, _ := b.Fingerprint()
	fc, _ := c.Fingerprint()
	if fa != fb {
		t.Errorf("equal documents have fingerprints %x and %x", fa, fb)
	}
	if fa == fc {
		t.Error("different documents share a fingerprint")
	}

	nonFinite := "version: 1\nproject: p\nkind: experiment\ndeclarations: {x: %s}\nrun: {cmd: train}\n"
	nan, err := New(ctx, Experiment, mustParse(t, fmt.Sprintf(nonFinite, ".nan")))
	if err != nil {
		t.Fatalf("New() with a NaN declaration failed: %v", err)
	}
	inf, err := New(ctx, Experiment, mustParse(t, fmt.Sprintf(nonFinite, ".inf")))
	if err != nil {
		t.Fatalf("New() with an Inf declaration failed: %v", err)
	}
	fn, _ := nan.Fingerprint()
	fi, _ := inf.Fingerprint()
	if fn == 0 || fi == 0 || fn == fi {
		t.Errorf("non-finite documents have fingerprints %x and %x", fn, fi)
	}
}

func TestNew_DoesNotMutateInput(t *testing.T) {
	raw := mustParse(t, groupDoc)
	before := raw.Clone()
	if _, err := New(context.Background(), Group, raw); err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if !ast.Equal(raw, before) {
		t.Error("New() modified its input document")
	}
}
