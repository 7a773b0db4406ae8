package core_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/tracker/pkg/adapters/memory"
	"github.com/aretw0/tracker/pkg/core"
)

var errDisk = errors.New("disk full")

// flakyStore fails list writes for selected IDs.
type flakyStore struct {
	*memory.Store
	mu         sync.Mutex
	failUpdate map[int64]bool
	failMarks  bool
	failClear  bool
	updates    int
}

func newFlakyStore() *flakyStore {
	return &flakyStore{Store: memory.NewStore(), failUpdate: make(map[int64]bool)}
}

func (f *flakyStore) ListUpdate(ctx context.Context, list *core.List) error {
	f.mu.Lock()
	f.updates++
	fail := f.failUpdate[list.ID]
	f.mu.Unlock()
	if fail {
		return errDisk
	}
	return f.Store.ListUpdate(ctx, list)
}

func (f *flakyStore) SetMarked(ctx context.Context, hashID string, value bool) error {
	if f.failMarks {
		return errDisk
	}
	return f.Store.SetMarked(ctx, hashID, value)
}

func (f *flakyStore) Clear(ctx context.Context) error {
	if f.failClear {
		return errDisk
	}
	return f.Store.Clear(ctx)
}

// stallingStore parks ListGetAll after it has read, once armed.
type stallingStore struct {
	*memory.Store
	armed   atomic.Bool
	entered chan struct{}
	release chan struct{}
}

func (s *stallingStore) ListGetAll(ctx context.Context) ([]core.List, error) {
	lists, err := s.Store.ListGetAll(ctx)
	if s.armed.CompareAndSwap(true, false) {
		close(s.entered)
		<-s.release
	}
	return lists, err
}

func newChecklists(t *testing.T, store core.Store) *core.Checklists {
	t.Helper()
	c := core.NewChecklists(store)
	require.NoError(t, c.Init(context.Background()))
	return c
}

func ids(lists []core.List) []int64 {
	out := make([]int64, len(lists))
	for i, l := range lists {
		out[i] = l.ID
	}
	return out
}

func TestChecklists_CreateAndReorder(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	c := newChecklists(t, store)

	var created []core.List
	for i := 0; i < 3; i++ {
		l, err := c.Create(ctx)
		require.NoError(t, err)
		assert.Equal(t, core.DefaultListName, l.Name)
		assert.Equal(t, i, l.OrderValue())
		created = append(created, l)
	}
	id0, id1, id2 := created[0].ID, created[1].ID, created[2].ID

	require.NoError(t, c.Reorder(ctx, []int64{id2, id0, id1}))
	assert.Equal(t, []int64{id2, id0, id1}, ids(c.Lists()))

	want := map[int64]int{id2: 0, id0: 1, id1: 2}
	for id, order := range want {
		stored, ok, err := store.ListGet(ctx, id)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, order, stored.OrderValue(), "list %d", id)
	}

	t.Run("Idempotent", func(t *testing.T) {
		require.NoError(t, c.Reorder(ctx, []int64{id2, id0, id1}))
		assert.Equal(t, []int64{id2, id0, id1}, ids(c.Lists()))
	})

	t.Run("Partial Keeps Every List", func(t *testing.T) {
		require.NoError(t, c.Reorder(ctx, []int64{id1, 999, id1}))
		got := c.Lists()
		assert.Equal(t, []int64{id1, id2, id0}, ids(got))
		for i, l := range got {
			assert.Equal(t, i, l.OrderValue())
		}
	})

	t.Run("Empty Keeps Sequence", func(t *testing.T) {
		before := ids(c.Lists())
		require.NoError(t, c.Reorder(ctx, nil))
		assert.Equal(t, before, ids(c.Lists()))
	})

	t.Run("New List Goes Last", func(t *testing.T) {
		l, err := c.Create(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, l.OrderValue())
		lists := c.Lists()
		assert.Equal(t, l.ID, lists[len(lists)-1].ID)
	})
}

func TestChecklists_CreateFromSearch(t *testing.T) {
	ctx := context.Background()
	c := newChecklists(t, memory.NewStore())

	l, err := c.CreateFromSearch(ctx, "Shrines", `map_type == "shrine"`)
	require.NoError(t, err)
	assert.Equal(t, "Shrines", l.Name)
	assert.Equal(t, `map_type == "shrine"`, l.Query)
	assert.NotNil(t, l.Items)

	unnamed, err := c.CreateFromSearch(ctx, "", "true")
	require.NoError(t, err)
	assert.Equal(t, core.DefaultListName, unnamed.Name)
}

func TestChecklists_SetMarkedPropagates(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	c := newChecklists(t, store)

	shrines, err := c.CreateFromSearch(ctx, "Shrines", "")
	require.NoError(t, err)
	all, err := c.CreateFromSearch(ctx, "All Objects", "")
	require.NoError(t, err)
	chests, err := c.CreateFromSearch(ctx, "Chests", "")
	require.NoError(t, err)

	require.NoError(t, c.SetItems(ctx, shrines.ID, []core.ListItem{{HashID: "obj_42"}}))
	require.NoError(t, c.SetItems(ctx, all.ID, []core.ListItem{{HashID: "obj_42"}, {HashID: "obj_7"}}))
	require.NoError(t, c.SetItems(ctx, chests.ID, []core.ListItem{{HashID: "obj_7"}}))

	assert.False(t, c.IsMarked("obj_42"), "unknown objects default to unmarked")
	require.NoError(t, c.SetMarked(ctx, "obj_42", true))
	assert.True(t, c.IsMarked("obj_42"))

	for _, id := range []int64{shrines.ID, all.ID} {
		l, ok := c.Read(id)
		require.True(t, ok)
		assert.True(t, l.Items["obj_42"].Marked, "memory list %d", id)

		stored, _, err := store.ListGet(ctx, id)
		require.NoError(t, err)
		assert.True(t, stored.Items["obj_42"].Marked, "stored list %d", id)
	}
	untouched, _ := c.Read(chests.ID)
	assert.False(t, untouched.Items["obj_7"].Marked)

	v, ok, err := store.Marked(ctx, "obj_42")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, v)

	assert.Equal(t, core.Totals{Marked: 2, Total: 4}, c.Totals())
	lt, ok := c.ListTotals(all.ID)
	require.True(t, ok)
	assert.Equal(t, core.Totals{Marked: 1, Total: 2}, lt)

	require.NoError(t, c.SetMarked(ctx, "obj_42", false))
	assert.False(t, c.IsMarked("obj_42"), "last write wins")
	assert.Equal(t, core.Totals{Marked: 0, Total: 4}, c.Totals())
}

func TestChecklists_SetMarkedPartialFailure(t *testing.T) {
	ctx := context.Background()
	store := newFlakyStore()
	c := newChecklists(t, store)

	a, err := c.Create(ctx)
	require.NoError(t, err)
	b, err := c.Create(ctx)
	require.NoError(t, err)
	require.NoError(t, c.SetItems(ctx, a.ID, []core.ListItem{{HashID: "x"}}))
	require.NoError(t, c.SetItems(ctx, b.ID, []core.ListItem{{HashID: "x"}}))

	store.failUpdate[a.ID] = true
	err = c.SetMarked(ctx, "x", true)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrTransientWrite)
	assert.ErrorIs(t, err, errDisk)

	// The mark and the healthy list are kept.
	assert.True(t, c.IsMarked("x"))
	stored, _, err := store.Store.ListGet(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, stored.Items["x"].Marked)
}

func TestChecklists_SetMarkedStoreFailure(t *testing.T) {
	ctx := context.Background()
	store := newFlakyStore()
	c := newChecklists(t, store)

	store.failMarks = true
	err := c.SetMarked(ctx, "x", true)
	assert.ErrorIs(t, err, core.ErrTransientWrite)
	assert.False(t, c.IsMarked("x"), "memory follows the store")
}

func TestChecklists_Mutations(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	c := newChecklists(t, store)

	l, err := c.Create(ctx)
	require.NoError(t, err)

	t.Run("Rename", func(t *testing.T) {
		require.NoError(t, c.Rename(ctx, l.ID, "Koroks"))
		got, _ := c.Read(l.ID)
		assert.Equal(t, "Koroks", got.Name)
		stored, _, _ := store.ListGet(ctx, l.ID)
		assert.Equal(t, "Koroks", stored.Name)
	})

	t.Run("Requery", func(t *testing.T) {
		require.NoError(t, c.Requery(ctx, l.ID, `map_name == "Valley"`))
		got, _ := c.Read(l.ID)
		assert.Equal(t, `map_name == "Valley"`, got.Query)
	})

	t.Run("SetItems Uses Marks", func(t *testing.T) {
		require.NoError(t, c.SetMarked(ctx, "k1", true))
		require.NoError(t, c.SetItems(ctx, l.ID, []core.ListItem{{HashID: "k1"}, {HashID: "k2", Marked: true}}))
		got, _ := c.Read(l.ID)
		assert.True(t, got.Items["k1"].Marked)
		assert.False(t, got.Items["k2"].Marked)
	})

	t.Run("Update Keeps Order", func(t *testing.T) {
		got, _ := c.Read(l.ID)
		got.Name = "Renamed"
		got.Order = nil
		require.NoError(t, c.Update(ctx, got))
		after, _ := c.Read(l.ID)
		assert.Equal(t, "Renamed", after.Name)
		assert.Equal(t, l.OrderValue(), after.OrderValue())
	})

	t.Run("Unknown List", func(t *testing.T) {
		assert.ErrorIs(t, c.Rename(ctx, 999, "x"), core.ErrNotFound)
		assert.ErrorIs(t, c.Requery(ctx, 999, "x"), core.ErrNotFound)
		assert.ErrorIs(t, c.SetItems(ctx, 999, nil), core.ErrNotFound)
		assert.ErrorIs(t, c.Update(ctx, core.List{ID: 999}), core.ErrNotFound)
	})

	t.Run("Read Returns Copy", func(t *testing.T) {
		got, _ := c.Read(l.ID)
		got.Items["intruder"] = core.ListItem{HashID: "intruder"}
		again, _ := c.Read(l.ID)
		assert.NotContains(t, again.Items, "intruder")
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, c.Delete(ctx, l.ID))
		_, ok := c.Read(l.ID)
		assert.False(t, ok)
		_, ok, _ = store.ListGet(ctx, l.ID)
		assert.False(t, ok)
		assert.True(t, c.IsMarked("k1"), "marks survive list deletion")

		assert.NoError(t, c.Delete(ctx, 12345))
	})
}

func TestChecklists_FailedWriteLeavesMemory(t *testing.T) {
	ctx := context.Background()
	store := newFlakyStore()
	c := newChecklists(t, store)

	l, err := c.Create(ctx)
	require.NoError(t, err)
	store.failUpdate[l.ID] = true

	err = c.Rename(ctx, l.ID, "Broken")
	assert.ErrorIs(t, err, core.ErrTransientWrite)
	got, _ := c.Read(l.ID)
	assert.Equal(t, core.DefaultListName, got.Name)

	t.Run("Clear", func(t *testing.T) {
		store.failUpdate[l.ID] = false
		require.NoError(t, c.SetItems(ctx, l.ID, []core.ListItem{{HashID: "a"}}))
		require.NoError(t, c.SetMarked(ctx, "a", true))
		store.failClear = true

		err := c.Clear(ctx)
		assert.ErrorIs(t, err, core.ErrTransientWrite)
		assert.ErrorIs(t, err, errDisk)
		assert.Len(t, c.Lists(), 1)
		assert.True(t, c.IsMarked("a"))

		all, err := store.ListGetAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})
}

func TestChecklists_ReloadBlocksMutations(t *testing.T) {
	ctx := context.Background()
	store := &stallingStore{
		Store:   memory.NewStore(),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	c := newChecklists(t, store)
	store.armed.Store(true)

	reloaded := make(chan error, 1)
	go func() { reloaded <- c.Reload(ctx) }()
	<-store.entered

	type result struct {
		list core.List
		err  error
	}
	created := make(chan result, 1)
	go func() {
		l, err := c.Create(ctx)
		created <- result{l, err}
	}()

	time.Sleep(20 * time.Millisecond)
	close(store.release)

	require.NoError(t, <-reloaded)
	res := <-created
	require.NoError(t, res.err)

	got, ok := c.Read(res.list.ID)
	require.True(t, ok)
	assert.Equal(t, res.list.ID, got.ID)

	all, err := store.Store.ListGetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, c.Lists(), len(all))
}

func TestChecklists_NormalizeOnLoad(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	// Records written before ordering existed, one with a stale cached mark.
	legacy := []core.List{
		{Name: "first", Items: map[string]core.ListItem{"a": {HashID: "a", Marked: true}}},
		{Name: "second"},
		{Name: "third"},
	}
	for i := range legacy {
		_, err := store.ListAdd(ctx, &legacy[i])
		require.NoError(t, err)
	}

	c := newChecklists(t, store)
	lists := c.Lists()
	require.Len(t, lists, 3)
	for i, l := range lists {
		assert.Equal(t, i, l.OrderValue())
		assert.NotNil(t, l.Items)
	}
	assert.False(t, lists[0].Items["a"].Marked, "cache follows the mark map")

	stored, err := store.ListGetAll(ctx)
	require.NoError(t, err)
	for i, l := range stored {
		require.NotNil(t, l.Order, "list %d persisted", l.ID)
		assert.Equal(t, i, *l.Order)
	}
}

func TestLoad_ReadOnly(t *testing.T) {
	ctx := context.Background()
	store := newFlakyStore()
	_, err := store.ListAdd(ctx, &core.List{Name: "legacy"})
	require.NoError(t, err)

	p, healed, err := core.Load(ctx, store)
	require.NoError(t, err)
	assert.Len(t, healed, 1)
	assert.Equal(t, 0, p.Lists[0].OrderValue())
	assert.Zero(t, store.updates)

	raw, _, err := store.ListGet(ctx, p.Lists[0].ID)
	require.NoError(t, err)
	assert.Nil(t, raw.Order)
}

func TestChecklists_InitHealFailure(t *testing.T) {
	ctx := context.Background()
	store := newFlakyStore()
	l := core.List{Name: "legacy"}
	id, err := store.ListAdd(ctx, &l)
	require.NoError(t, err)
	store.failUpdate[id] = true

	c := core.NewChecklists(store)
	err = c.Init(ctx)
	assert.ErrorIs(t, err, core.ErrTransientWrite)
	assert.Len(t, c.Lists(), 1, "projection is loaded even when write-back fails")
}

func TestChecklists_Clear(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	c := newChecklists(t, store)

	l, err := c.Create(ctx)
	require.NoError(t, err)
	require.NoError(t, c.SetItems(ctx, l.ID, []core.ListItem{{HashID: "a"}}))
	require.NoError(t, c.SetMarked(ctx, "a", true))

	require.NoError(t, c.Clear(ctx))
	assert.Empty(t, c.Lists())
	assert.False(t, c.IsMarked("a"))

	all, err := store.ListGetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
	marks, err := store.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, marks)
}

func TestChecklists_Match(t *testing.T) {
	ctx := context.Background()
	c := newChecklists(t, memory.NewStore())

	for _, name := range []string{"Shrines/East", "Shrines/West", "Koroks"} {
		_, err := c.CreateFromSearch(ctx, name, "")
		require.NoError(t, err)
	}

	got, err := c.Match("Shrines/*")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Shrines/East", got[0].Name)

	_, err = c.Match("[")
	assert.Error(t, err)
}

func TestChecklists_Events(t *testing.T) {
	ctx := context.Background()
	c := newChecklists(t, memory.NewStore())

	events, unsubscribe := c.Subscribe(10)
	defer unsubscribe()

	l, err := c.Create(ctx)
	require.NoError(t, err)
	require.NoError(t, c.SetItems(ctx, l.ID, []core.ListItem{{HashID: "a"}}))
	require.NoError(t, c.SetMarked(ctx, "a", true))

	var got []core.EventType
	for len(got) < 4 {
		e := <-events
		got = append(got, e.Type)
		if e.Type == core.EventTotalsChanged {
			assert.Equal(t, core.Totals{Marked: 1, Total: 1}, e.Totals)
		}
		if e.Type == core.EventMarkChanged {
			assert.Equal(t, "a", e.HashID)
			assert.True(t, e.Marked)
		}
	}
	assert.Equal(t, []core.EventType{
		core.EventListCreated,
		core.EventListsChanged,
		core.EventMarkChanged,
		core.EventTotalsChanged,
	}, got)

	unsubscribe()
	_, open := <-events
	assert.False(t, open)
	unsubscribe()
}

func TestChecklists_SlowSubscriberDoesNotBlock(t *testing.T) {
	ctx := context.Background()
	c := newChecklists(t, memory.NewStore())

	_, unsubscribe := c.Subscribe(1)
	defer unsubscribe()

	for i := 0; i < 5; i++ {
		_, err := c.Create(ctx)
		require.NoError(t, err)
	}
	assert.Len(t, c.Lists(), 5)
}

func TestChecklists_State(t *testing.T) {
	ctx := context.Background()
	c := core.NewChecklists(memory.NewStore(), core.WithDegraded(true))
	require.NoError(t, c.Init(ctx))
	_, err := c.Create(ctx)
	require.NoError(t, err)

	s, ok := c.State().(core.ChecklistsState)
	require.True(t, ok)
	assert.Equal(t, 1, s.Lists)
	assert.True(t, s.Loaded)
	assert.True(t, s.Degraded)
	assert.Equal(t, "memory", s.StoreType)
	assert.Equal(t, "checklists", c.ComponentType())
}
