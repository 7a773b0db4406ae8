package core

import "errors"

// Common errors.
var (
	// ErrStoreUnavailable means the durable store could not be opened. Persistence is
	// lost for the session; callers fall back to a memory-only store.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrSchemaTooNew means the on-disk schema is newer than this build understands.
	ErrSchemaTooNew = errors.New("store schema is newer than supported")

	// ErrNotFound is returned by intent operations addressed at an unknown list.
	// Plain lookups report absence with an ok flag instead.
	ErrNotFound = errors.New("record not found")

	// ErrTransientWrite wraps a single failed put or delete.
	ErrTransientWrite = errors.New("write failed")

	// ErrInvalidBundle is returned when an import bundle cannot be applied.
	ErrInvalidBundle = errors.New("invalid bundle")

	// ErrClosed is returned by stores used after Close.
	ErrClosed = errors.New("store is closed")

	// ErrStopped is returned when starting a poll loop that was already stopped.
	ErrStopped = errors.New("poller stopped")
)
