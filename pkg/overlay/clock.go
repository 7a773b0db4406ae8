package overlay

import "time"

// Timer is a cancellable pending call.
type Timer interface {
	Stop() bool
}

// Clock abstracts time so the poll loop can be driven by tests.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
