package core

import "context"

// Store name and schema version written into export bundles.
const (
	StoreName     = "Checklist"
	SchemaVersion = 1
)

// Store defines the contract of the durable storage layer.
// Every call is its own transaction and every write is durable before it returns.
// Records are replaced whole, so concurrent writers resolve as last-write-wins.
type Store interface {
	// Init opens (creating if absent) and upgrades the underlying storage.
	// It fails with ErrStoreUnavailable when persistence cannot be provided.
	Init(ctx context.Context) error

	// All returns the complete MarkedMap.
	All(ctx context.Context) (MarkedMap, error)

	// Marked reads a single mark. ok is false when the object was never marked.
	Marked(ctx context.Context, hashID string) (value bool, ok bool, err error)

	// SetMarked writes a single mark.
	SetMarked(ctx context.Context, hashID string, value bool) error

	// SetMarkedBatch writes many marks in one transaction.
	SetMarkedBatch(ctx context.Context, values MarkedMap) error

	// ListAdd inserts a list. When list.ID is zero the store assigns one;
	// otherwise the supplied key is kept (and an existing record replaced).
	// The assigned ID is written back into list and returned.
	ListAdd(ctx context.Context, list *List) (int64, error)

	// ListUpdate replaces an existing list record.
	ListUpdate(ctx context.Context, list *List) error

	// ListGet returns the list with the given ID, ok is false if absent.
	ListGet(ctx context.Context, id int64) (List, bool, error)

	// ListGetByName looks a list up through the name index.
	// Names are not unique; the lowest ID wins.
	ListGetByName(ctx context.Context, name string) (List, bool, error)

	// ListGetAll returns every list in primary-key order.
	ListGetAll(ctx context.Context) ([]List, error)

	// ListRemove deletes a list. Removing an absent ID is not an error.
	ListRemove(ctx context.Context, id int64) error

	// ListRemoveAll deletes every list.
	ListRemoveAll(ctx context.Context) error

	// Clear empties both collections.
	Clear(ctx context.Context) error

	// Close releases the underlying resources.
	Close() error
}
