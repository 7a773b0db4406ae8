package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
)

// Checklists is the in-process authority over the projection of store state.
// Every mutation writes through to the Store and then updates the projection.
type Checklists struct {
	mu       sync.RWMutex
	store    Store
	logger   *slog.Logger
	marked   MarkedMap
	lists    []*List
	broker   *broker
	degraded bool
	loaded   bool
}

// Option configures a Checklists instance.
type Option func(*Checklists)

// WithLogger sets the logger used by the domain model.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Checklists) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithDegraded flags the instance as running on a memory-only fallback store.
func WithDegraded(degraded bool) Option {
	return func(c *Checklists) {
		c.degraded = degraded
	}
}

// NewChecklists creates a domain model on top of store.
func NewChecklists(store Store, opts ...Option) *Checklists {
	c := &Checklists{
		store:  store,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		marked: make(MarkedMap),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.broker = newBroker(c.logger)
	return c
}

// Store returns the underlying store.
func (c *Checklists) Store() Store {
	return c.store
}

// Degraded reports whether the model runs without durable persistence.
func (c *Checklists) Degraded() bool {
	return c.degraded
}

// Subscribe registers an observer for domain events.
// The returned function unsubscribes and closes the channel.
func (c *Checklists) Subscribe(buffer int) (<-chan Event, func()) {
	return c.broker.subscribe(buffer)
}

// Init opens the store and loads the projection.
func (c *Checklists) Init(ctx context.Context) error {
	if err := c.store.Init(ctx); err != nil {
		return err
	}
	return c.Reload(ctx)
}

// Reload repopulates the projection from the store and runs order normalization.
// Lists repaired during normalization are persisted; a failure there is reported
// but the freshly loaded projection is kept.
func (c *Checklists) Reload(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reloadLocked(ctx)
}

// reloadLocked reads the store under c.mu so no mutation can commit between the
// read and the swap.
func (c *Checklists) reloadLocked(ctx context.Context) error {
	p, healed, err := Load(ctx, c.store)
	if err != nil {
		return err
	}

	c.marked = p.Marked
	c.lists = make([]*List, len(p.Lists))
	for i := range p.Lists {
		l := p.Lists[i]
		c.lists[i] = &l
	}
	c.loaded = true

	var errs []error
	for _, id := range healed {
		l := c.find(id)
		if l == nil {
			continue
		}
		if err := c.store.ListUpdate(ctx, l); err != nil {
			errs = append(errs, fmt.Errorf("persist normalized list %d: %w", id, err))
		}
	}
	if len(healed) > 0 {
		c.logger.Debug("normalized lists on load", "count", len(healed))
	}
	c.broker.publish(newEvent(EventListsChanged))

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrTransientWrite, errors.Join(errs...))
	}
	return nil
}

// Create adds an empty list named DefaultListName at the end of the sequence.
func (c *Checklists) Create(ctx context.Context) (List, error) {
	return c.createList(ctx, DefaultListName, "")
}

// CreateFromSearch saves a live search as a list. An empty label falls back to
// DefaultListName.
func (c *Checklists) CreateFromSearch(ctx context.Context, label, query string) (List, error) {
	if label == "" {
		label = DefaultListName
	}
	return c.createList(ctx, label, query)
}

func (c *Checklists) createList(ctx context.Context, name, query string) (List, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	l := &List{Name: name, Query: query, Items: make(map[string]ListItem)}
	l.SetOrder(c.nextOrder())

	id, err := c.store.ListAdd(ctx, l)
	if err != nil {
		return List{}, fmt.Errorf("%w: add list: %w", ErrTransientWrite, err)
	}
	stored, ok, err := c.store.ListGet(ctx, id)
	if err == nil && ok {
		l = &stored
	}
	if l.Items == nil {
		l.Items = make(map[string]ListItem)
	}

	c.lists = append(c.lists, l)
	c.logger.Debug("list created", "list_id", id, "name", name)

	e := newEvent(EventListCreated)
	e.ListID = id
	c.broker.publish(e)
	return l.Clone(), nil
}

func (c *Checklists) nextOrder() int {
	if len(c.lists) == 0 {
		return 0
	}
	max := c.lists[0].OrderValue()
	for _, l := range c.lists[1:] {
		if o := l.OrderValue(); o > max {
			max = o
		}
	}
	return max + 1
}

// Reorder places the lists named by ids first, in that order, followed by every
// other list in its current relative position. Orders are reassigned densely and
// every list is persisted, so repeating a call yields the same result.
func (c *Checklists) Reorder(ctx context.Context, ids []int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	byID := make(map[int64]*List, len(c.lists))
	for _, l := range c.lists {
		byID[l.ID] = l
	}

	ordered := make([]*List, 0, len(c.lists))
	placed := make(map[int64]bool, len(c.lists))
	for _, id := range ids {
		l, ok := byID[id]
		if !ok || placed[id] {
			continue
		}
		placed[id] = true
		ordered = append(ordered, l)
	}
	for _, l := range c.lists {
		if !placed[l.ID] {
			placed[l.ID] = true
			ordered = append(ordered, l)
		}
	}

	var errs []error
	for idx, l := range ordered {
		l.SetOrder(idx)
		if err := c.store.ListUpdate(ctx, l); err != nil {
			errs = append(errs, fmt.Errorf("list %d: %w", l.ID, err))
		}
	}
	c.lists = ordered
	c.broker.publish(newEvent(EventListsChanged))

	if len(errs) > 0 {
		return fmt.Errorf("%w: reorder: %w", ErrTransientWrite, errors.Join(errs...))
	}
	return nil
}

// Delete removes a list from the store and the projection. Marks are untouched.
// Deleting an unknown list is not an error.
func (c *Checklists) Delete(ctx context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.ListRemove(ctx, id); err != nil {
		return fmt.Errorf("%w: remove list %d: %w", ErrTransientWrite, id, err)
	}

	kept := c.lists[:0]
	for _, l := range c.lists {
		if l.ID != id {
			kept = append(kept, l)
		}
	}
	c.lists = kept
	c.broker.publish(newEvent(EventListsChanged))
	return nil
}

// Read returns a copy of the in-memory list. It is meant for display lookups.
func (c *Checklists) Read(id int64) (List, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	l := c.find(id)
	if l == nil {
		return List{}, false
	}
	return l.Clone(), true
}

// Update persists an edited copy of a list and replaces it in the projection.
func (c *Checklists) Update(ctx context.Context, list List) error {
	return c.mutate(ctx, list.ID, func(l *List) {
		*l = list.Clone()
		if l.Items == nil {
			l.Items = make(map[string]ListItem)
		}
	})
}

// Rename changes a list's name.
func (c *Checklists) Rename(ctx context.Context, id int64, name string) error {
	return c.mutate(ctx, id, func(l *List) {
		l.Name = name
	})
}

// Requery changes the query a list was built from. Items are left as they are;
// callers re-run the search and pass the result to SetItems.
func (c *Checklists) Requery(ctx context.Context, id int64, query string) error {
	return c.mutate(ctx, id, func(l *List) {
		l.Query = query
	})
}

// SetItems replaces the items of a list. Cached marks are taken from the MarkedMap.
func (c *Checklists) SetItems(ctx context.Context, id int64, items []ListItem) error {
	return c.mutate(ctx, id, func(l *List) {
		l.Items = make(map[string]ListItem, len(items))
		for _, item := range items {
			item.Marked = c.marked[item.HashID]
			l.Items[item.HashID] = item
		}
	})
}

// mutate applies fn to a copy of the list, persists the copy and only then swaps
// it into the projection, so a failed write leaves memory as it was.
func (c *Checklists) mutate(ctx context.Context, id int64, fn func(*List)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	cur := c.find(id)
	if cur == nil {
		return fmt.Errorf("list %d: %w", id, ErrNotFound)
	}
	next := cur.Clone()
	fn(&next)
	next.ID = id
	if next.Order == nil {
		next.Order = cur.Order
	}

	if err := c.store.ListUpdate(ctx, &next); err != nil {
		return fmt.Errorf("%w: update list %d: %w", ErrTransientWrite, id, err)
	}
	*cur = next
	c.sortLocked()
	c.broker.publish(newEvent(EventListsChanged))
	return nil
}

// IsMarked reports whether an object is marked. Unknown objects are not marked.
func (c *Checklists) IsMarked(hashID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.marked[hashID]
}

// SetMarked records the found state of an object, then refreshes the cached flag
// in every list holding it. The mark write completes before any list write starts.
// List writes are all attempted; failures are joined and earlier writes are kept.
func (c *Checklists) SetMarked(ctx context.Context, hashID string, value bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.SetMarked(ctx, hashID, value); err != nil {
		return fmt.Errorf("%w: set mark %s: %w", ErrTransientWrite, hashID, err)
	}
	c.marked[hashID] = value

	e := newEvent(EventMarkChanged)
	e.HashID = hashID
	e.Marked = value
	c.broker.publish(e)

	var errs []error
	for _, l := range c.lists {
		item, ok := l.Items[hashID]
		if !ok {
			continue
		}
		item.Marked = value
		l.Items[hashID] = item
		if err := c.store.ListUpdate(ctx, l); err != nil {
			c.logger.Warn("mark propagation failed", "list_id", l.ID, "hash_id", hashID, "error", err)
			errs = append(errs, fmt.Errorf("list %d: %w", l.ID, err))
		}
	}

	t := newEvent(EventTotalsChanged)
	t.Totals = c.totalsLocked()
	c.broker.publish(t)

	if len(errs) > 0 {
		return fmt.Errorf("%w: propagate mark %s: %w", ErrTransientWrite, hashID, errors.Join(errs...))
	}
	return nil
}

// Clear discards every list and mark, in memory and in the store.
func (c *Checklists) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.Clear(ctx); err != nil {
		return fmt.Errorf("%w: clear: %w", ErrTransientWrite, err)
	}
	c.marked = make(MarkedMap)
	c.lists = nil
	c.broker.publish(newEvent(EventListsChanged))
	return nil
}

// Lists returns copies of all lists sorted by (order, id).
func (c *Checklists) Lists() []List {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]List, len(c.lists))
	for i, l := range c.lists {
		out[i] = l.Clone()
	}
	return out
}

// Match returns the lists whose name matches a glob pattern.
func (c *Checklists) Match(pattern string) ([]List, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, doublestar.ErrBadPattern)
	}
	var out []List
	for _, l := range c.Lists() {
		ok, err := doublestar.Match(pattern, l.Name)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, l)
		}
	}
	return out, nil
}

// Marked returns a copy of the MarkedMap.
func (c *Checklists) Marked() MarkedMap {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.marked.Clone()
}

// Totals counts marked items over all lists.
func (c *Checklists) Totals() Totals {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.totalsLocked()
}

// ListTotals counts marked items of one list.
func (c *Checklists) ListTotals(id int64) (Totals, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	l := c.find(id)
	if l == nil {
		return Totals{}, false
	}
	return ListTotalsOf(l, c.marked), true
}

// Export snapshots the store.
func (c *Checklists) Export(ctx context.Context) (Bundle, error) {
	return ExportBundle(ctx, c.store)
}

// Import writes a bundle into the store and reloads the projection.
// Mutations wait until both steps are done.
func (c *Checklists) Import(ctx context.Context, b Bundle, replace bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := ImportBundle(ctx, c.store, b, replace); err != nil {
		return err
	}
	return c.reloadLocked(ctx)
}

func (c *Checklists) find(id int64) *List {
	for _, l := range c.lists {
		if l.ID == id {
			return l
		}
	}
	return nil
}

func (c *Checklists) sortLocked() {
	sort.SliceStable(c.lists, func(i, j int) bool {
		return lessList(c.lists[i], c.lists[j])
	})
}

func (c *Checklists) totalsLocked() Totals {
	var t Totals
	for _, l := range c.lists {
		lt := ListTotalsOf(l, c.marked)
		t.Marked += lt.Marked
		t.Total += lt.Total
	}
	return t
}
