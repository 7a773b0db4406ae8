package overlay

import "time"

// DefaultSchedule is the list of base poll intervals. The last entry repeats.
var DefaultSchedule = []time.Duration{
	5 * time.Second,
	10 * time.Second,
	20 * time.Second,
	40 * time.Second,
	80 * time.Second,
	160 * time.Second,
	320 * time.Second,
	640 * time.Second,
	900 * time.Second,
}

// Ceiling is the upper bound of any jittered delay.
const Ceiling = 900 * time.Second

// missesPerStep is how many unchanged cycles in a row advance the schedule by one.
const missesPerStep = 2

// Backoff tracks the position in a poll schedule.
// A change resets to the fastest interval; every second consecutive miss slows down
// by one step until the last entry.
type Backoff struct {
	schedule []time.Duration
	index    int
	streak   int
}

// NewBackoff creates a Backoff over schedule, or DefaultSchedule when empty.
func NewBackoff(schedule []time.Duration) *Backoff {
	if len(schedule) == 0 {
		schedule = DefaultSchedule
	}
	s := make([]time.Duration, len(schedule))
	copy(s, schedule)
	return &Backoff{schedule: s}
}

// Observe records the outcome of a cycle and returns the new index.
func (b *Backoff) Observe(changed bool) int {
	if changed {
		b.index = 0
		b.streak = 0
		return b.index
	}
	b.streak++
	if b.streak >= missesPerStep {
		b.streak = 0
		if b.index < len(b.schedule)-1 {
			b.index++
		}
	}
	return b.index
}

// Base returns the un-jittered interval at the current index.
func (b *Backoff) Base() time.Duration {
	return b.schedule[b.index]
}

// Index returns the current schedule position.
func (b *Backoff) Index() int {
	return b.index
}

// Streak returns the number of consecutive misses since the last step.
func (b *Backoff) Streak() int {
	return b.streak
}
