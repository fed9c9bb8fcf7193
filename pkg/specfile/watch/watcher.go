package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/orbit-ml/specfile/pkg/specfile/specification"
)

// DefaultDebounce is the quiet period after the last change before a
// reload.
const DefaultDebounce = 200 * time.Millisecond

// ErrNotLoaded is reported by Check before the first load finished.
var ErrNotLoaded = errors.New("specification not loaded yet")

// LoadFunc reads and builds the watched files.
type LoadFunc func(ctx context.Context) (*specification.Specification, error)

// Result is the outcome of one load.
type Result struct {
	// Spec is the built specification, nil when Err is set
	Spec *specification.Specification

	// Err is the read or build error
	Err error

	// Generation counts loads, starting at 1
	Generation int

	// Trigger is the file whose change caused the load, empty for the
	// initial load
	Trigger string

	// Time is when the load finished
	Time time.Time
}

// Watcher rebuilds a specification whenever one of its files changes.
// Directories are watched rather than files so that editors replacing a
// file through a rename keep being followed.
type Watcher struct {
	fsw      *fsnotify.Watcher
	files    map[string]bool
	dirs     []string
	load     LoadFunc
	logger   *slog.Logger
	interval time.Duration
	debounce *Debouncer

	loadMu sync.Mutex
	mu     sync.RWMutex
	last   Result
	gen    int

	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a reload.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithLogger sets the logger. It defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) { w.logger = logger }
}

// New creates a watcher for files, rebuilt with load.
func New(files []string, load LoadFunc, opts ...Option) (*Watcher, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no files to watch")
	}

	w := &Watcher{
		files:    make(map[string]bool, len(files)),
		load:     load,
		logger:   slog.Default(),
		interval: DefaultDebounce,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	seen := map[string]bool{}
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %q: %w", f, err)
		}
		w.files[abs] = true
		if dir := filepath.Dir(abs); !seen[dir] {
			seen[dir] = true
			w.dirs = append(w.dirs, dir)
		}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	w.fsw = fsw
	w.debounce = NewDebouncer(w.interval)
	return w, nil
}

// Watch loads the files once, then again after every change, passing each
// result to onLoad. It blocks until ctx is cancelled or Stop is called.
// Load failures are reported through onLoad and do not stop watching.
func (w *Watcher) Watch(ctx context.Context, onLoad func(Result)) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.debounce.Stop()
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		close(w.doneCh)
	}()

	for _, dir := range w.dirs {
		if err := w.fsw.Add(dir); err != nil {
			return fmt.Errorf("failed to watch directory %q: %w", dir, err)
		}
	}

	w.logger.Info("watching specification files",
		"files", len(w.files),
		"debounce_ms", w.interval.Milliseconds())

	w.reload(ctx, "", onLoad)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("file watcher stopped (context cancelled)")
			return nil

		case <-w.stopCh:
			w.logger.Info("file watcher stopped")
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !w.shouldProcessEvent(event) {
				continue
			}
			w.logger.Debug("file event detected", "path", event.Name, "op", event.Op.String())

			name := event.Name
			w.debounce.Trigger(func() {
				w.reload(ctx, name, onLoad)
			})

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("file watcher error", "error", err)
		}
	}
}

// reload runs one load and publishes its result. Loads never overlap.
func (w *Watcher) reload(ctx context.Context, trigger string, onLoad func(Result)) {
	w.loadMu.Lock()
	defer w.loadMu.Unlock()

	if ctx.Err() != nil {
		return
	}

	start := time.Now()
	spec, err := w.load(ctx)

	w.mu.Lock()
	w.gen++
	result := Result{Spec: spec, Err: err, Generation: w.gen, Trigger: trigger, Time: time.Now()}
	w.last = result
	w.mu.Unlock()

	if err != nil {
		w.logger.Warn("specification reload failed",
			"trigger", trigger, "generation", result.Generation, "error", err)
	} else {
		w.logger.Info("specification reloaded",
			"trigger", trigger, "generation", result.Generation,
			"duration", time.Since(start))
	}
	if onLoad != nil {
		onLoad(result)
	}
}

// Last returns the most recent load result.
func (w *Watcher) Last() Result {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.last
}

// Check reports the error of the most recent load. It fits
// health.CheckFunc.
func (w *Watcher) Check(context.Context) error {
	last := w.Last()
	if last.Generation == 0 {
		return ErrNotLoaded
	}
	return last.Err
}

// Stop stops a running watcher and releases the fsnotify watcher.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	running := w.running
	w.mu.Unlock()

	if running {
		close(w.stopCh)
		<-w.doneCh
	}
	if err := w.fsw.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	return nil
}

// shouldProcessEvent keeps content changes of the watched files.
func (w *Watcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	return w.files[abs]
}

// Debouncer collects rapid events and runs the last callback once the
// interval passed without a new one.
type Debouncer struct {
	interval time.Duration
	timer    *time.Timer
	mu       sync.Mutex
	callback func()
	stopped  bool
}

// NewDebouncer creates a new debouncer.
func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{interval: interval}
}

// Trigger schedules callback, replacing any callback still pending.
func (d *Debouncer) Trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.callback = callback
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, func() {
		d.mu.Lock()
		cb := d.callback
		d.callback = nil
		stopped := d.stopped
		d.mu.Unlock()

		if cb != nil && !stopped {
			cb()
		}
	})
}

// Stop cancels any pending callback. Later triggers are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.callback = nil
}
