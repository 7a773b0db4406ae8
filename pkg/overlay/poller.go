// Package overlay keeps a read-only progress dashboard eventually consistent with
// a store that other processes write to.
//
// The Poller re-reads the store on a single self-rescheduling timer. After a
// visible change it polls every few seconds; while nothing changes it slows down
// step by step to a 15 minute ceiling. Change is detected by comparing the
// (marked, total) pair with the previous cycle, so edits that keep both counts
// equal are only picked up together with a later counted change.
package overlay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/aretw0/introspection"
	"github.com/aretw0/lifecycle"
	"github.com/google/uuid"

	"github.com/aretw0/tracker/internal/logfields"
	"github.com/aretw0/tracker/internal/metrics"
	"github.com/aretw0/tracker/pkg/core"
)

// State is the lifecycle position of a Poller.
type State int

const (
	StateIdle State = iota
	StateScheduled
	StateRefreshing
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScheduled:
		return "scheduled"
	case StateRefreshing:
		return "refreshing"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Poller is the adaptive sync loop behind the dashboard.
type Poller struct {
	store    core.Store
	clock    Clock
	logger   *slog.Logger
	recorder metrics.Recorder
	jitter   func() float64
	schedule []time.Duration
	ceiling  time.Duration
	id       string
	onUpdate func(Dashboard)
	events   chan<- core.Event
	done     chan struct{}

	mu        sync.Mutex
	ctx       context.Context
	state     State
	backoff   *Backoff
	timer     Timer
	gen       uint64
	prev      core.Totals
	hasPrev   bool
	dash      Dashboard
	nextDelay time.Duration
	cycles    int
	lastErr   error
}

// Option configures a Poller.
type Option func(*Poller)

// WithSchedule replaces DefaultSchedule.
func WithSchedule(schedule []time.Duration) Option {
	return func(p *Poller) {
		if len(schedule) > 0 {
			p.schedule = schedule
		}
	}
}

// WithCeiling replaces Ceiling.
func WithCeiling(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.ceiling = d
		}
	}
}

// WithJitter sets the source of the delay multiplier. Values are clamped to [0.9, 1.1].
func WithJitter(fn func() float64) Option {
	return func(p *Poller) {
		if fn != nil {
			p.jitter = fn
		}
	}
}

// WithClock sets the clock used for timers.
func WithClock(c Clock) Option {
	return func(p *Poller) {
		if c != nil {
			p.clock = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Poller) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(p *Poller) {
		if r != nil {
			p.recorder = r
		}
	}
}

// WithInstanceID overrides the generated instance id.
func WithInstanceID(id string) Option {
	return func(p *Poller) {
		if id != "" {
			p.id = id
		}
	}
}

// WithOnUpdate registers a callback invoked after every successful refresh.
// It runs outside the poller lock and must not block for long.
func WithOnUpdate(fn func(Dashboard)) Option {
	return func(p *Poller) {
		p.onUpdate = fn
	}
}

// WithEvents makes the poller send a TOTALS_CHANGED event on ch after every
// detected change. Sends never block; a full channel misses the event.
func WithEvents(ch chan<- core.Event) Option {
	return func(p *Poller) {
		p.events = ch
	}
}

func defaultJitter() float64 {
	return 0.9 + rand.Float64()*0.2
}

// NewPoller creates an idle poller over store.
func NewPoller(store core.Store, opts ...Option) *Poller {
	p := &Poller{
		store:    store,
		clock:    realClock{},
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		recorder: metrics.NoopRecorder{},
		jitter:   defaultJitter,
		schedule: DefaultSchedule,
		ceiling:  Ceiling,
		id:       uuid.NewString(),
		ctx:      context.Background(),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.backoff = NewBackoff(p.schedule)
	p.logger = p.logger.With(logfields.InstanceID(p.id))
	return p
}

// ID returns the instance id.
func (p *Poller) ID() string {
	return p.id
}

// Start runs the first refresh synchronously, then arms the timer. The first
// refresh always counts as a change. Cancelling ctx stops the poller.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	switch p.state {
	case StateStopped:
		p.mu.Unlock()
		return core.ErrStopped
	case StateIdle:
	default:
		p.mu.Unlock()
		return errors.New("poller already started")
	}
	p.ctx = ctx
	p.state = StateRefreshing
	p.mu.Unlock()

	if ctx.Done() != nil {
		lifecycle.Go(ctx, func(ctx context.Context) error {
			select {
			case <-ctx.Done():
				p.Stop()
			case <-p.done:
			}
			return nil
		})
	}

	p.logger.Debug("poller started")
	p.refresh()
	return nil
}

// Stop cancels the pending timer. An in-flight refresh finishes but does not re-arm.
// Stop is idempotent.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == StateStopped {
		return
	}
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.state = StateStopped
	close(p.done)
	p.logger.Debug("poller stopped")
}

// Nudge refreshes now instead of waiting for the timer, for instance after the
// store file changed on disk. It does nothing unless a refresh is scheduled.
// The backoff is updated by the refresh as usual.
func (p *Poller) Nudge() {
	p.mu.Lock()
	if p.state != StateScheduled || p.timer == nil {
		p.mu.Unlock()
		return
	}
	if !p.timer.Stop() {
		// Already firing.
		p.mu.Unlock()
		return
	}
	p.timer = nil
	p.state = StateRefreshing
	ctx := p.ctx
	p.mu.Unlock()

	p.recorder.IncNudge()
	lifecycle.Go(ctx, func(context.Context) error {
		p.refresh()
		return nil
	}, lifecycle.WithErrorHandler(func(err error) {
		p.logger.Error("nudged refresh panic", logfields.Error(err))
	}))
}

func (p *Poller) fire(gen uint64) {
	p.mu.Lock()
	if p.state != StateScheduled || p.gen != gen {
		p.mu.Unlock()
		return
	}
	p.timer = nil
	p.state = StateRefreshing
	p.mu.Unlock()

	p.refresh()
}

// refresh runs one cycle. Failures count as "no change" and are never returned.
func (p *Poller) refresh() {
	p.mu.Lock()
	ctx := p.ctx
	p.mu.Unlock()

	start := p.clock.Now()
	proj, err := p.load(ctx)
	p.recorder.ObserveRefreshDuration(p.clock.Now().Sub(start))

	p.mu.Lock()
	if p.state == StateStopped {
		p.mu.Unlock()
		return
	}

	p.cycles++
	changed := false
	var dash Dashboard
	if err != nil {
		p.lastErr = err
		p.recorder.IncRefresh(metrics.OutcomeFailed)
		p.logger.Warn("refresh failed", logfields.Error(err))
	} else {
		p.lastErr = nil
		totals := core.ComputeTotals(proj.Lists, proj.Marked)
		changed = !p.hasPrev || totals != p.prev
		if changed {
			p.prev = totals
			p.hasPrev = true
			p.recorder.IncRefresh(metrics.OutcomeChanged)
		} else {
			p.recorder.IncRefresh(metrics.OutcomeUnchanged)
		}
		p.recorder.SetTotals(totals.Marked, totals.Total)
		p.dash = newDashboard(proj, changed, p.clock.Now())
		dash = p.dash.Clone()
	}

	idx := p.backoff.Observe(changed)
	delay := p.delayLocked()
	p.scheduleLocked(delay)
	p.recorder.SetBackoffIndex(idx)
	p.recorder.SetNextDelay(delay)
	p.logger.Debug("refresh done",
		slog.Bool("changed", changed),
		logfields.BackoffIndex(idx),
		logfields.Delay(delay),
	)
	p.mu.Unlock()

	if err != nil {
		return
	}
	if p.onUpdate != nil {
		p.onUpdate(dash)
	}
	if changed && p.events != nil {
		select {
		case p.events <- core.Event{Type: core.EventTotalsChanged, Totals: dash.Totals, Timestamp: dash.UpdatedAt.Unix()}:
		default:
		}
	}
}

func (p *Poller) load(ctx context.Context) (*core.Projection, error) {
	if err := p.store.Init(ctx); err != nil {
		return nil, err
	}
	proj, _, err := core.Load(ctx, p.store)
	return proj, err
}

func (p *Poller) delayLocked() time.Duration {
	j := p.jitter()
	j = math.Max(0.9, math.Min(1.1, j))
	d := time.Duration(math.Round(float64(p.backoff.Base()) * j))
	if d > p.ceiling {
		d = p.ceiling
	}
	return d
}

func (p *Poller) scheduleLocked(delay time.Duration) {
	p.gen++
	gen := p.gen
	p.nextDelay = delay
	p.state = StateScheduled
	p.timer = p.clock.AfterFunc(delay, func() { p.fire(gen) })
}

// Dashboard returns the view of the last successful refresh.
func (p *Poller) Dashboard() Dashboard {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dash.Clone()
}

// Status describes the loop for diagnostics.
type Status struct {
	InstanceID   string      `json:"instance_id"`
	State        string      `json:"state"`
	BackoffIndex int         `json:"backoff_index"`
	Streak       int         `json:"streak"`
	NextDelay    string      `json:"next_delay"`
	Cycles       int         `json:"cycles"`
	Totals       core.Totals `json:"totals"`
	LastError    string      `json:"last_error,omitempty"`
}

// Status returns a snapshot of the loop.
func (p *Poller) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := Status{
		InstanceID:   p.id,
		State:        p.state.String(),
		BackoffIndex: p.backoff.Index(),
		Streak:       p.backoff.Streak(),
		NextDelay:    p.nextDelay.String(),
		Cycles:       p.cycles,
		Totals:       p.prev,
	}
	if p.lastErr != nil {
		s.LastError = p.lastErr.Error()
	}
	return s
}

// State implements introspection.Introspectable.
func (p *Poller) State() any {
	return p.Status()
}

// ComponentType implements introspection.Component.
func (p *Poller) ComponentType() string {
	return "poller"
}

var _ introspection.Introspectable = (*Poller)(nil)
var _ introspection.Component = (*Poller)(nil)
