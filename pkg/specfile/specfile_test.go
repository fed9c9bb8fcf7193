package specfile

import (
	"bytes"
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/orbit-ml/specfile/pkg/config"
	specErrors "github.com/orbit-ml/specfile/pkg/specfile/errors"
	"github.com/orbit-ml/specfile/pkg/specfile/schema"
	"github.com/orbit-ml/specfile/pkg/telemetry"
)

const baseDoc = `
version: 1
project: {name: mnist}
kind: experiment
declarations:
  lr: 0.1
run:
  cmd: 'python train.py --lr={{ lr }}'
`

const groupOverlay = `
kind: group
settings:
  matrix:
    lr: {values: [0.1, 0.01]}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestLoader_Load(t *testing.T) {
	dir := t.TempDir()
	base := writeFile(t, dir, "polyaxonfile.yaml", baseDoc)
	overlay := writeFile(t, dir, "group.yaml", groupOverlay)

	tests := []struct {
		name     string
		sources  []string
		wantKind schema.Kind
	}{
		{"single file", []string{base}, schema.KindExperiment},
		{"merged files", []string{base, overlay}, schema.KindGroup},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := NewLoader(nil).Load(context.Background(), tt.sources...)
			if err != nil {
				t.Fatalf("Load() failed: %v", err)
			}
			kind, err := spec.Kind()
			if err != nil {
				t.Fatalf("Kind() failed: %v", err)
			}
			if kind != tt.wantKind {
				t.Errorf("Kind() = %v, want %v", kind, tt.wantKind)
			}
		})
	}
}

func TestLoader_Errors(t *testing.T) {
	dir := t.TempDir()
	invalid := writeFile(t, dir, "invalid.yaml", "version: 1\nkind: experiment\nrun: {cmd: x}\n")
	tooLarge := writeFile(t, dir, "large.yaml", baseDoc)

	tests := []struct {
		name    string
		cfg     *config.SpecificationConfig
		sources []string
		wantIs  error
	}{
		{
			name:    "missing file",
			sources: []string{filepath.Join(dir, "missing.yaml")},
		},
		{
			name:    "missing project",
			sources: []string{invalid},
			wantIs:  specErrors.ErrStructural,
		},
		{
			name:    "file size limit",
			cfg:     &config.SpecificationConfig{MaxFileSize: 16, MaxDepth: 64, MaxIterations: 10},
			sources: []string{tooLarge},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLoader(tt.cfg).Load(context.Background(), tt.sources...)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantIs != nil && !stderrors.Is(err, tt.wantIs) {
				t.Errorf("error %v is not %v", err, tt.wantIs)
			}
		})
	}
}

func TestLoader_Expander(t *testing.T) {
	dir := t.TempDir()
	base := writeFile(t, dir, "polyaxonfile.yaml", baseDoc)
	overlay := writeFile(t, dir, "group.yaml", groupOverlay)

	cfg := config.Default()
	var logs bytes.Buffer
	cfg.Telemetry.Logging.Level = "debug"
	cfg.Telemetry.Logging.Format = "json"
	tel, err := telemetry.New(&cfg.Telemetry, telemetry.WithLogWriter(&logs))
	if err != nil {
		t.Fatalf("telemetry.New() failed: %v", err)
	}

	loader := NewLoader(&cfg.Specification, WithTelemetry(tel))
	spec, err := loader.Load(context.Background(), base, overlay)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	expander, err := loader.Expander(spec)
	if err != nil {
		t.Fatalf("Expander() failed: %v", err)
	}
	experiments, err := expander.Expand(context.Background(), 0)
	if err != nil {
		t.Fatalf("Expand() failed: %v", err)
	}
	if len(experiments) != 2 {
		t.Fatalf("expected 2 experiments, got %d", len(experiments))
	}

	if !strings.Contains(logs.String(), `"sources":[`) {
		t.Errorf("load logs should carry the sources:\n%s", logs.String())
	}
	if !strings.Contains(logs.String(), "expanded search space") {
		t.Errorf("expansion summary not logged:\n%s", logs.String())
	}
}

func TestLoad_UsesCurrentConfig(t *testing.T) {
	dir := t.TempDir()
	base := writeFile(t, dir, "polyaxonfile.yaml", baseDoc)

	if _, err := Load(context.Background(), base); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
}
