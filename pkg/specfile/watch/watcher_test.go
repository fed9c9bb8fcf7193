package watch

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/orbit-ml/specfile/pkg/specfile"
	"github.com/orbit-ml/specfile/pkg/specfile/specification"
)

const validDoc = `
version: 1
project: mnist
kind: experiment
run: {cmd: python train.py}
`

const invalidDoc = `
version: 1
project: mnist
kind: experiment
run: {cmd: '{{ missing }}'}
`

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func nextResult(t *testing.T, results <-chan Result) Result {
	t.Helper()
	select {
	case r := <-results:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a reload")
		return Result{}
	}
}

func TestWatcher_ReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "polyaxonfile.yaml")
	writeFile(t, path, validDoc)

	loader := specfile.NewLoader(nil, specfile.WithLogger(quietLogger()))
	load := func(ctx context.Context) (*specification.Specification, error) {
		return loader.Load(ctx, path)
	}

	w, err := New([]string{path}, load, WithDebounce(50*time.Millisecond), WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer w.Stop()

	if err := w.Check(context.Background()); err != ErrNotLoaded {
		t.Errorf("Check() before the first load = %v, want ErrNotLoaded", err)
	}

	results := make(chan Result, 8)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Watch(ctx, func(r Result) { results <- r }) }()

	first := nextResult(t, results)
	if first.Err != nil || first.Spec == nil || first.Generation != 1 || first.Trigger != "" {
		t.Fatalf("initial load = %+v", first)
	}

	writeFile(t, path, invalidDoc)
	broken := nextResult(t, results)
	if broken.Err == nil {
		t.Fatal("expected a load error after writing an invalid document")
	}
	if broken.Trigger != path {
		t.Errorf("Trigger = %q, want %q", broken.Trigger, path)
	}
	if err := w.Check(context.Background()); err == nil {
		t.Error("Check() should report the failed load")
	}

	writeFile(t, path, validDoc)
	fixed := nextResult(t, results)
	if fixed.Err != nil {
		t.Fatalf("load after fix failed: %v", fixed.Err)
	}
	if fixed.Generation <= broken.Generation {
		t.Errorf("Generation did not increase: %d after %d", fixed.Generation, broken.Generation)
	}
	if err := w.Check(context.Background()); err != nil {
		t.Errorf("Check() after fix = %v", err)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch() returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Watch() did not return after cancel")
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "polyaxonfile.yaml")
	writeFile(t, path, validDoc)

	var loads atomic.Int32
	load := func(context.Context) (*specification.Specification, error) {
		loads.Add(1)
		return nil, nil
	}

	w, err := New([]string{path}, load, WithDebounce(10*time.Millisecond), WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Watch(ctx, nil) }()

	deadline := time.Now().Add(2 * time.Second)
	for loads.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	writeFile(t, filepath.Join(dir, "notes.yaml"), "a: 1")
	time.Sleep(100 * time.Millisecond)

	if got := loads.Load(); got != 1 {
		t.Errorf("expected only the initial load, got %d", got)
	}

	if err := w.Stop(); err != nil {
		t.Errorf("Stop() failed: %v", err)
	}
	cancel()
	if err := <-done; err != nil {
		t.Errorf("Watch() returned %v", err)
	}
}

func TestNew_NoFiles(t *testing.T) {
	if _, err := New(nil, nil); err == nil {
		t.Error("expected error for an empty file list")
	}
}

func TestDebouncer(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)

	var calls atomic.Int32
	var last atomic.Int32
	for i := 1; i <= 5; i++ {
		d.Trigger(func() {
			calls.Add(1)
			last.Store(int32(i))
		})
	}
	time.Sleep(100 * time.Millisecond)

	if calls.Load() != 1 {
		t.Errorf("expected 1 call, got %d", calls.Load())
	}
	if last.Load() != 5 {
		t.Errorf("expected the last callback to run, got %d", last.Load())
	}

	d.Stop()
	d.Trigger(func() { calls.Add(1) })
	time.Sleep(50 * time.Millisecond)
	if calls.Load() != 1 {
		t.Error("Trigger() after Stop() should be ignored")
	}
}
