package core

import (
	"context"
	"fmt"
	"sort"
)

// Projection is a point-in-time view of the store.
type Projection struct {
	Marked MarkedMap
	Lists  []List
}

// Load reads marks and lists from the store and normalizes them.
// It never writes: healed holds the IDs of lists whose order or cached marks were
// repaired in memory, so a writer can persist them.
func Load(ctx context.Context, store Store) (p *Projection, healed []int64, err error) {
	marked, err := store.All(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("read marks: %w", err)
	}
	if marked == nil {
		marked = make(MarkedMap)
	}
	lists, err := store.ListGetAll(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("read lists: %w", err)
	}
	healed = Normalize(lists, marked)
	return &Projection{Marked: marked, Lists: lists}, healed, nil
}

// Normalize assigns a positional order to lists that lack one, reconciles cached
// item marks against marked, and sorts lists by (order, id).
// It returns the IDs of the lists it changed.
func Normalize(lists []List, marked MarkedMap) []int64 {
	var healed []int64
	for idx := range lists {
		l := &lists[idx]
		changed := false
		if l.Order == nil {
			l.SetOrder(idx)
			changed = true
		}
		if l.Items == nil {
			l.Items = make(map[string]ListItem)
		}
		for hashID, item := range l.Items {
			if want := marked[hashID]; item.Marked != want {
				item.Marked = want
				l.Items[hashID] = item
				changed = true
			}
		}
		if changed {
			healed = append(healed, l.ID)
		}
	}
	SortLists(lists)
	return healed
}

// SortLists orders lists by (order, id) ascending.
func SortLists(lists []List) {
	sort.SliceStable(lists, func(i, j int) bool {
		return lessList(&lists[i], &lists[j])
	})
}

func lessList(a, b *List) bool {
	ao, bo := a.OrderValue(), b.OrderValue()
	if ao != bo {
		return ao < bo
	}
	return a.ID < b.ID
}
