package schema

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/orbit-ml/specfile/pkg/specfile/ast"
	specErrors "github.com/orbit-ml/specfile/pkg/specfile/errors"
)

func settingsNode(t *testing.T, src string) *ast.Node {
	t.Helper()
	node, ok := mustParse(t, src).Get("settings")
	if !ok {
		t.Fatal("document has no settings section")
	}
	return node
}

func TestDecodeSettings_Group(t *testing.T) {
	node := settingsNode(t, `
settings:
  logging: {level: debug}
  concurrency: 4
  seed: 42
  matrix:
    lr: {values: [0.1, 0.01]}
    units: {range: [16, 64, 16]}
  random_search: {n_experiments: 5}
  early_stopping:
    - {metric: loss, value: 0.1, optimization: minimize}
`)

	s, err := DecodeSettings(node, KindGroup)
	if err != nil {
		t.Fatalf("DecodeSettings() failed: %v", err)
	}
	if s.LogLevel != "DEBUG" {
		t.Errorf("LogLevel = %q, want DEBUG", s.LogLevel)
	}
	if s.ConcurrencyOrDefault() != 4 {
		t.Errorf("Concurrency = %d, want 4", s.ConcurrencyOrDefault())
	}
	if s.Seed == nil || *s.Seed != 42 {
		t.Errorf("Seed = %v, want 42", s.Seed)
	}
	if !s.HasMatrix() || s.Matrix.Len() != 2 {
		t.Fatalf("Matrix = %v, want 2 parameters", s.Matrix)
	}
	if n, err := s.Matrix.Cardinality(); err != nil || n != 6 {
		t.Errorf("Cardinality() = %d, %v, want 6", n, err)
	}
	if s.RandomSearch == nil || s.RandomSearch.NExperiments != 5 {
		t.Errorf("RandomSearch = %+v", s.RandomSearch)
	}
	if len(s.EarlyStopping) != 1 || s.EarlyStopping[0] != (EarlyStopping{Metric: "loss", Value: 0.1, Optimization: "minimize"}) {
		t.Errorf("EarlyStopping = %+v", s.EarlyStopping)
	}
}

func TestDecodeSettings_Defaults(t *testing.T) {
	s, err := DecodeSettings(nil, KindExperiment)
	if err != nil {
		t.Fatalf("DecodeSettings(nil) failed: %v", err)
	}
	if s.LogLevel != DefaultLogLevel {
		t.Errorf("LogLevel = %q, want %q", s.LogLevel, DefaultLogLevel)
	}
	if s.ConcurrencyOrDefault() != 1 {
		t.Errorf("ConcurrencyOrDefault() = %d, want 1", s.ConcurrencyOrDefault())
	}
	if s.HasMatrix() {
		t.Error("HasMatrix() = true, want false")
	}
}

func TestDecodeSettings_Hyperband(t *testing.T) {
	node := settingsNode(t, `
settings:
  matrix:
    lr: {uniform: [0.001, 0.1]}
  hyperband:
    max_iter: 81
    eta: 3
    resource: {name: num_steps, type: int}
    metric: {name: loss, optimization: minimize}
    resume: true
`)
	s, err := DecodeSettings(node, KindGroup)
	if err != nil {
		t.Fatalf("DecodeSettings() failed: %v", err)
	}
	want := Hyperband{
		MaxIter:  81,
		Eta:      3,
		Resource: Resource{Name: "num_steps", Type: "int"},
		Metric:   Metric{Name: "loss", Optimization: "minimize"},
		Resume:   true,
	}
	if *s.Hyperband != want {
		t.Errorf("Hyperband = %+v, want %+v", *s.Hyperband, want)
	}
}

func TestDecodeSettings_Errors(t *testing.T) {
	tests := []struct {
		name     string
		kind     Kind
		src      string
		wantPath string
		wantMsg  string
	}{
		{
			name:     "unknown key",
			kind:     KindGroup,
			src:      "settings: {concurency: 2}\n",
			wantPath: "settings.concurency",
			wantMsg:  "Did you mean 'concurrency'?",
		},
		{
			name:     "matrix outside group",
			kind:     KindExperiment,
			src:      "settings: {matrix: {lr: {values: [1]}}}\n",
			wantPath: "settings.matrix",
			wantMsg:  "only valid for group",
		},
		{
			name:     "mutually exclusive",
			kind:     KindGroup,
			src:      "settings: {random_search: {n_experiments: 2}, hyperband: {max_iter: 9, resource: {name: s}, metric: {name: m}}}\n",
			wantPath: "settings",
			wantMsg:  "mutually exclusive",
		},
		{
			name:     "eta too small",
			kind:     KindGroup,
			src:      "settings: {hyperband: {max_iter: 9, eta: 1, resource: {name: s}, metric: {name: m}}}\n",
			wantPath: "settings.hyperband.eta",
			wantMsg:  "greater than 1",
		},
		{
			name:     "bad concurrency",
			kind:     KindGroup,
			src:      "settings: {concurrency: 0}\n",
			wantPath: "settings.concurrency",
			wantMsg:  "greater than 0",
		},
		{
			name:     "bad log level",
			kind:     KindJob,
			src:      "settings: {logging: {level: verbose}}\n",
			wantPath: "settings.logging.level",
			wantMsg:  "invalid log level",
		},
		{
			name:     "bad optimization",
			kind:     KindGroup,
			src:      "settings: {early_stopping: [{metric: acc, value: 1, optimization: up}]}\n",
			wantPath: "settings.early_stopping[0].optimization",
			wantMsg:  "invalid value",
		},
		{
			name:     "invalid matrix entry",
			kind:     KindGroup,
			src:      "settings: {matrix: {lr: {values: [1], uniform: [0, 1]}}}\n",
			wantPath: "settings.matrix.lr",
			wantMsg:  "",
		},
		{
			name:     "not a mapping",
			kind:     KindGroup,
			src:      "settings: [1]\n",
			wantPath: "settings",
			wantMsg:  "must be a mapping",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeSettings(settingsNode(t, tt.src), tt.kind)
			if err == nil {
				t.Fatal("DecodeSettings() should fail")
			}
			if !stderrors.Is(err, specErrors.ErrSpecification) {
				t.Errorf("error %v does not match ErrSpecification", err)
			}
			var list *specErrors.ErrorList
			if !stderrors.As(err, &list) {
				t.Fatalf("error = %T, want *ErrorList", err)
			}
			found := false
			for _, e := range list.Errors {
				if e.Path == tt.wantPath && strings.Contains(e.Error(), tt.wantMsg) {
					found = true
				}
			}
			if !found {
				t.Errorf("no error at %q containing %q in:\n%v", tt.wantPath, tt.wantMsg, err)
			}
		})
	}
}

func TestDecodeSettings_AmbiguousMatrix(t *testing.T) {
	node := settingsNode(t, "settings: {matrix: {lr: {}}}\n")
	_, err := DecodeSettings(node, KindGroup)
	if !stderrors.Is(err, specErrors.ErrAmbiguousDistribution) {
		t.Errorf("error = %v, want ambiguous distribution", err)
	}
}

func TestExperimentSettings(t *testing.T) {
	node := settingsNode(t, "settings: {logging: {level: INFO}, concurrency: 2, matrix: {a: {values: [1]}}, seed: 1}\n")
	got := ExperimentSettings(node)
	if got == nil || strings.Join(got.Keys(), ",") != "logging" {
		t.Errorf("ExperimentSettings() keys = %v, want [logging]", got.Keys())
	}
	if !node.Has("matrix") {
		t.Error("ExperimentSettings() modified its input")
	}

	only := settingsNode(t, "settings: {matrix: {a: {values: [1]}}}\n")
	if got := ExperimentSettings(only); got != nil {
		t.Errorf("ExperimentSettings() = %v, want nil", got.Keys())
	}
}
