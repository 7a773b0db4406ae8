// Package lifecycle bridges checklist domain events into the lifecycle event model.
package lifecycle

import (
	"context"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/tracker/pkg/core"
)

type checklistSource struct {
	events <-chan core.Event
	out    chan lifecycle.Event
}

// NewSource creates a lifecycle.Source that emits checklist events.
// The returned source closes its channel when events is closed or ctx ends.
func NewSource(events <-chan core.Event) lifecycle.Source {
	return &checklistSource{
		events: events,
		out:    make(chan lifecycle.Event),
	}
}

func (s *checklistSource) Events() <-chan lifecycle.Event {
	return s.out
}

func (s *checklistSource) Start(ctx context.Context) error {
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-s.events:
				if !ok {
					return nil
				}
				select {
				case s.out <- e:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	return nil
}
