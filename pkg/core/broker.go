package core

import (
	"log/slog"
	"sync"
)

// broker fans domain events out to subscribers without blocking the publisher.
// A subscriber whose buffer is full misses the event.
type broker struct {
	mu     sync.Mutex
	subs   map[int]chan Event
	next   int
	logger *slog.Logger
}

func newBroker(logger *slog.Logger) *broker {
	return &broker{subs: make(map[int]chan Event), logger: logger}
}

func (b *broker) subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 100
	}
	ch := make(chan Event, buffer)

	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs, id)
			close(ch)
		})
	}
}

func (b *broker) publish(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.subs {
		select {
		case ch <- e:
		default:
			b.logger.Debug("subscriber buffer full, event dropped", "subscriber", id, "event", e.String())
		}
	}
}

func (b *broker) len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
