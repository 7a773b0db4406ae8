// Package memory provides an in-memory core.Store used when durable storage is
// unavailable and as a test double.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/introspection"

	"github.com/aretw0/tracker/pkg/core"
)

var _ core.Store = (*Store)(nil)

// Store keeps marks and lists in process memory. Records are copied on the way
// in and out, so callers never share maps with the store.
type Store struct {
	mu     sync.RWMutex
	marks  core.MarkedMap
	lists  map[int64]core.List
	nextID int64
	closed bool
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		marks:  make(core.MarkedMap),
		lists:  make(map[int64]core.List),
		nextID: 1,
	}
}

func (s *Store) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = false
	return nil
}

func (s *Store) All(ctx context.Context) (core.MarkedMap, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, core.ErrClosed
	}
	return s.marks.Clone(), nil
}

func (s *Store) Marked(ctx context.Context, hashID string) (bool, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return false, false, core.ErrClosed
	}
	v, ok := s.marks[hashID]
	return v, ok, nil
}

func (s *Store) SetMarked(ctx context.Context, hashID string, value bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return core.ErrClosed
	}
	s.marks[hashID] = value
	return nil
}

func (s *Store) SetMarkedBatch(ctx context.Context, values core.MarkedMap) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return core.ErrClosed
	}
	for k, v := range values {
		s.marks[k] = v
	}
	return nil
}

func (s *Store) ListAdd(ctx context.Context, list *core.List) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, core.ErrClosed
	}
	if list.ID == 0 {
		list.ID = s.nextID
	}
	if list.ID >= s.nextID {
		s.nextID = list.ID + 1
	}
	s.lists[list.ID] = list.Clone()
	return list.ID, nil
}

func (s *Store) ListUpdate(ctx context.Context, list *core.List) error {
	if list.ID == 0 {
		return core.ErrNotFound
	}
	_, err := s.ListAdd(ctx, list)
	return err
}

func (s *Store) ListGet(ctx context.Context, id int64) (core.List, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return core.List{}, false, core.ErrClosed
	}
	l, ok := s.lists[id]
	if !ok {
		return core.List{}, false, nil
	}
	return l.Clone(), true, nil
}

func (s *Store) ListGetByName(ctx context.Context, name string) (core.List, bool, error) {
	lists, err := s.ListGetAll(ctx)
	if err != nil {
		return core.List{}, false, err
	}
	for _, l := range lists {
		if l.Name == name {
			return l, true, nil
		}
	}
	return core.List{}, false, nil
}

func (s *Store) ListGetAll(ctx context.Context) ([]core.List, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, core.ErrClosed
	}
	out := make([]core.List, 0, len(s.lists))
	for _, l := range s.lists {
		out = append(out, l.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) ListRemove(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return core.ErrClosed
	}
	delete(s.lists, id)
	return nil
}

func (s *Store) ListRemoveAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return core.ErrClosed
	}
	s.lists = make(map[int64]core.List)
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return core.ErrClosed
	}
	s.marks = make(core.MarkedMap)
	s.lists = make(map[int64]core.List)
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// StoreState exposes internal state for observability.
type StoreState struct {
	Marks  int   `json:"marks"`
	Lists  int   `json:"lists"`
	NextID int64 `json:"next_id"`
	Closed bool  `json:"closed"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return StoreState{
		Marks:  len(s.marks),
		Lists:  len(s.lists),
		NextID: s.nextID,
		Closed: s.closed,
	}
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "memory"
}

var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)
