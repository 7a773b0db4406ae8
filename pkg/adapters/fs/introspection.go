package fs

import (
	"time"
)

// WatcherState exposes internal state for observability.
type WatcherState struct {
	Path       string     `json:"path"`
	Active     bool       `json:"active"`
	Changes    int        `json:"changes"`
	LastChange *time.Time `json:"last_change,omitempty"`
}

// Snapshot reports the watcher's activity. State is taken by the worker contract.
func (w *StoreWatcher) Snapshot() WatcherState {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return WatcherState{
		Path:       w.path,
		Active:     w.active,
		Changes:    w.changes,
		LastChange: w.lastChange,
	}
}

func (w *StoreWatcher) setActive(active bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.active = active
}

func (w *StoreWatcher) recordChange() {
	w.mu.Lock()
	defer w.mu.Unlock()
	now := time.Now()
	w.lastChange = &now
	w.changes++
}
