package fs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"runtime/debug"
	"sync"
	"time"

	"github.com/aretw0/lifecycle/pkg/core/worker"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet window applied to bursts of store file events.
const DefaultDebounce = 50 * time.Millisecond

// StoreWatcher reports writes to a SQLite store file made by other processes.
// It watches the file's directory and reacts to the database file and its
// -wal and -journal companions. Bursts are collapsed into one onChange call.
type StoreWatcher struct {
	*worker.BaseWorker

	path     string
	onChange func()
	logger   *slog.Logger
	delay    time.Duration

	watcher   *fsnotify.Watcher
	debouncer *debouncer
	cancel    context.CancelFunc

	mu         sync.RWMutex
	active     bool
	changes    int
	lastChange *time.Time
}

// WatcherOption configures a StoreWatcher.
type WatcherOption func(*StoreWatcher)

// WithWatchLogger sets the watcher logger.
func WithWatchLogger(logger *slog.Logger) WatcherOption {
	return func(w *StoreWatcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *StoreWatcher) {
		if d > 0 {
			w.delay = d
		}
	}
}

// NewStoreWatcher creates a watcher for the store file at path.
func NewStoreWatcher(path string, onChange func(), opts ...WatcherOption) *StoreWatcher {
	w := &StoreWatcher{
		BaseWorker: worker.NewBaseWorker("store-watcher"),
		path:       path,
		onChange:   onChange,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		delay:      DefaultDebounce,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *StoreWatcher) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	status := w.State().Status
	if status != worker.StatusCreated && status != worker.StatusPending {
		return fmt.Errorf("watcher already started (status: %s)", status)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(w.path), err)
	}

	w.watcher = watcher
	w.debouncer = newDebouncer(w.delay)
	w.setActive(true)

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.SetStatus(worker.StatusRunning)
	return w.StartFunc(runCtx, w.run)
}

func (w *StoreWatcher) Stop(ctx context.Context) error {
	if w.cancel != nil {
		w.StopRequested = true
		w.cancel()
	}
	return w.BaseWorker.Stop(ctx)
}

func (w *StoreWatcher) State() worker.State {
	return w.ExportState(func(s *worker.State) {
		s.Metadata = map[string]string{
			worker.MetadataType: string(worker.TypeGoroutine),
			"path":              w.path,
		}
	})
}

// relevant reports whether an event touches the store file or its journals.
func (w *StoreWatcher) relevant(event fsnotify.Event) bool {
	base := filepath.Base(w.path)
	switch filepath.Base(event.Name) {
	case base, base + "-wal", base + "-journal":
	default:
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}

func (w *StoreWatcher) handleEvent(event fsnotify.Event) {
	if !w.relevant(event) {
		return
	}
	w.logger.Debug("store file event", "name", event.Name, "op", event.Op.String())
	w.debouncer.add(func() {
		w.recordChange()
		if w.onChange != nil {
			w.onChange()
		}
	})
}

func (w *StoreWatcher) run(ctx context.Context) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("watcher panic: %v", recovered)
			if w.logger.Enabled(ctx, slog.LevelDebug) {
				w.logger.Error("watcher panic", "error", err, "stack", string(debug.Stack()))
			} else {
				w.logger.Error("watcher panic", "error", err)
			}
		}
	}()
	defer w.setActive(false)
	defer w.watcher.Close()

	err = w.loop(ctx)

	// Pending callbacks must not fire after the worker is gone.
	w.debouncer.stopAndWait(5 * time.Second)
	return err
}

func (w *StoreWatcher) loop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			w.handleEvent(event)

		case wErr, ok := <-w.watcher.Errors:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("fsnotify error", "error", wErr)
		}
	}
}
