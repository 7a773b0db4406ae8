// Package core holds the checklist domain: marked-object state, checklists and the
// in-memory projection that writes through to a Store.
package core

import (
	"fmt"
	"time"
)

// MarkedMap maps an object identifier (hash_id) to its "found" state.
// A missing key means the object is not marked.
type MarkedMap map[string]bool

// Clone returns a shallow copy of the map.
func (m MarkedMap) Clone() MarkedMap {
	out := make(MarkedMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// ListItem is one tracked object inside a checklist.
// Marked is a cached copy of the MarkedMap entry and only a display hint.
type ListItem struct {
	HashID  string     `json:"hash_id" yaml:"hash_id"`
	Name    string     `json:"name" yaml:"name"`
	MapName string     `json:"map_name" yaml:"map_name"`
	MapType string     `json:"map_type" yaml:"map_type"`
	Pos     [3]float64 `json:"pos" yaml:"pos,flow"`
	Marked  bool       `json:"marked" yaml:"marked"`
}

// List is a named, ordered, query-defined checklist.
// ID is zero until the store assigns one. Order is nil for records written
// before ordering existed; normalization fills it on load.
type List struct {
	ID    int64               `json:"id,omitempty" yaml:"id,omitempty"`
	Name  string              `json:"name" yaml:"name"`
	Query string              `json:"query" yaml:"query"`
	Items map[string]ListItem `json:"items" yaml:"items"`
	Order *int                `json:"order,omitempty" yaml:"order,omitempty"`
}

// DefaultListName is the name given to lists created without a label.
const DefaultListName = "New List"

// OrderValue returns the display order, treating an unset order as 0.
func (l *List) OrderValue() int {
	if l.Order == nil {
		return 0
	}
	return *l.Order
}

// SetOrder assigns the display order.
func (l *List) SetOrder(order int) {
	v := order
	l.Order = &v
}

// Contains reports whether the list tracks the given object.
func (l *List) Contains(hashID string) bool {
	_, ok := l.Items[hashID]
	return ok
}

// Clone returns a deep copy so callers can mutate without touching the projection.
func (l List) Clone() List {
	out := l
	if l.Order != nil {
		out.SetOrder(*l.Order)
	}
	out.Items = make(map[string]ListItem, len(l.Items))
	for k, v := range l.Items {
		out.Items[k] = v
	}
	return out
}

// Bundle is a full snapshot of the store used for backup and restore.
type Bundle struct {
	Values  MarkedMap `json:"values" yaml:"values"`
	Lists   []List    `json:"lists" yaml:"lists"`
	Version int       `json:"version" yaml:"version"`
	Name    string    `json:"name" yaml:"name"`
}

// Totals counts marked objects against all tracked items.
// An object that appears in several lists is counted once per list.
type Totals struct {
	Marked int `json:"marked"`
	Total  int `json:"total"`
}

// EventType represents the kind of change published by the domain model.
type EventType string

const (
	EventListCreated   EventType = "LIST_CREATED"
	EventListsChanged  EventType = "LISTS_CHANGED"
	EventMarkChanged   EventType = "MARK_CHANGED"
	EventTotalsChanged EventType = "TOTALS_CHANGED"
)

// Event is a notification toward the presentation layer.
type Event struct {
	Type      EventType
	ListID    int64
	HashID    string
	Marked    bool
	Totals    Totals
	Timestamp int64 // Unix timestamp
}

// String implements lifecycle.Event.
func (e Event) String() string {
	switch e.Type {
	case EventListCreated:
		return fmt.Sprintf("%s list=%d", e.Type, e.ListID)
	case EventMarkChanged:
		return fmt.Sprintf("%s hash_id=%s marked=%t", e.Type, e.HashID, e.Marked)
	case EventTotalsChanged:
		return fmt.Sprintf("%s %d/%d", e.Type, e.Totals.Marked, e.Totals.Total)
	default:
		return string(e.Type)
	}
}

func newEvent(t EventType) Event {
	return Event{Type: t, Timestamp: time.Now().Unix()}
}
