package core

import (
	"github.com/aretw0/introspection"
)

// ChecklistsState exposes internal state for observability.
type ChecklistsState struct {
	Lists       int    `json:"lists"`
	Marked      int    `json:"marked"`
	Totals      Totals `json:"totals"`
	Loaded      bool   `json:"loaded"`
	Degraded    bool   `json:"degraded"`
	Subscribers int    `json:"subscribers"`
	StoreType   string `json:"store_type"`
}

// State implements introspection.Introspectable.
func (c *Checklists) State() any {
	c.mu.RLock()
	defer c.mu.RUnlock()

	storeType := "unknown"
	if c.store != nil {
		storeType = "store"
		if comp, ok := c.store.(introspection.Component); ok {
			storeType = comp.ComponentType()
		}
	}

	marked := 0
	for _, v := range c.marked {
		if v {
			marked++
		}
	}

	return ChecklistsState{
		Lists:       len(c.lists),
		Marked:      marked,
		Totals:      c.totalsLocked(),
		Loaded:      c.loaded,
		Degraded:    c.degraded,
		Subscribers: c.broker.len(),
		StoreType:   storeType,
	}
}

// ComponentType implements introspection.Component.
func (c *Checklists) ComponentType() string {
	return "checklists"
}

var _ introspection.Introspectable = (*Checklists)(nil)
var _ introspection.Component = (*Checklists)(nil)
