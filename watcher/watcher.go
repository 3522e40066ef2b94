// Package watcher reports changes to the faculty source directory so the
// index can be rebuilt while the tool keeps running.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce collapses bursts of events, such as an editor's
// write-rename-chmod sequence, into one callback.
const DefaultDebounce = 500 * time.Millisecond

// ErrCallbackRequired is returned when New is given no callback.
var ErrCallbackRequired = errors.New("change callback is required")

// Watcher calls onChange after JSON source files in a directory are
// created, written, removed or renamed. Callbacks never overlap.
type Watcher struct {
	dir      string
	onChange func()
	debounce time.Duration
	logger   *slog.Logger
	fsw      *fsnotify.Watcher

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
	timer   *time.Timer

	runMu sync.Mutex
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before onChange fires.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// New creates a watcher for dir. The directory must exist.
func New(dir string, onChange func(), opts ...Option) (*Watcher, error) {
	if onChange == nil {
		return nil, ErrCallbackRequired
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("stat source directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	w := &Watcher{
		dir:      filepath.Clean(dir),
		onChange: onChange,
		debounce: DefaultDebounce,
		logger:   slog.Default().With("component", "watcher"),
		fsw:      fsw,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start begins watching. It returns once the watch is established; events
// are handled until ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}
	if err := w.fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}

	ctx, w.cancel = context.WithCancel(ctx)
	w.done = make(chan struct{})
	w.running = true

	go w.watchLoop(ctx, w.done)
	w.logger.Info("watching sources", "dir", w.dir, "debounce", w.debounce)
	return nil
}

// Stop ends watching and waits for the event loop and any running callback
// to exit. A stopped watcher cannot be restarted.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	w.cancel()
	if w.timer != nil {
		w.timer.Stop()
	}
	done := w.done
	w.mu.Unlock()

	err := w.fsw.Close()
	<-done
	w.runMu.Lock()
	defer w.runMu.Unlock()
	return err
}

func (w *Watcher) watchLoop(ctx context.Context, done chan struct{}) {
	defer close(done)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("source changed", "file", filepath.Base(event.Name), "op", event.Op.String())
			w.schedule()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", "err", err)
		}
	}
}

// relevant reports whether event touches a source file in the watched dir.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	if filepath.Dir(filepath.Clean(event.Name)) != w.dir {
		return false
	}
	return IsSourceFile(event.Name)
}

// schedule restarts the debounce timer.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.fire)
}

func (w *Watcher) fire() {
	w.runMu.Lock()
	defer w.runMu.Unlock()

	w.mu.Lock()
	running := w.running
	w.mu.Unlock()
	if !running {
		return
	}

	w.logger.Info("sources changed, running update", "dir", w.dir)
	w.onChange()
}

// IsSourceFile reports whether name is a file the loader would read.
func IsSourceFile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".json")
}
