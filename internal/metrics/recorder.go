// Package metrics records poll-loop activity. The default NoopRecorder keeps
// metrics optional; PrometheusRecorder is wired by the CLI's watch command.
package metrics

import "time"

// OutcomeLabel enumerates refresh outcomes for counters.
type OutcomeLabel string

const (
	OutcomeChanged   OutcomeLabel = "changed"
	OutcomeUnchanged OutcomeLabel = "unchanged"
	OutcomeFailed    OutcomeLabel = "failed"
)

// Recorder defines observability hooks for the poll loop.
type Recorder interface {
	ObserveRefreshDuration(d time.Duration)
	IncRefresh(outcome OutcomeLabel)
	SetBackoffIndex(i int)
	SetNextDelay(d time.Duration)
	SetTotals(marked, total int)
	IncNudge()
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveRefreshDuration(time.Duration) {}
func (NoopRecorder) IncRefresh(OutcomeLabel)              {}
func (NoopRecorder) SetBackoffIndex(int)                  {}
func (NoopRecorder) SetNextDelay(time.Duration)           {}
func (NoopRecorder) SetTotals(int, int)                   {}
func (NoopRecorder) IncNudge()                            {}
