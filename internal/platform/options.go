package platform

import (
	"log/slog"

	"github.com/aretw0/tracker/internal/metrics"
	"github.com/aretw0/tracker/pkg/core"
	"github.com/aretw0/tracker/pkg/overlay"
)

// options holds the internal configuration for the tracker.
type options struct {
	store    core.Store
	logger   *slog.Logger
	adapter  string
	config   map[string]interface{}
	poll     []overlay.Option
	recorder metrics.Recorder
}

// Option defines a functional option for configuring the tracker.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		adapter: "sqlite",
		config:  make(map[string]interface{}),
	}
}

func (o *options) flag(key string, def bool) bool {
	if v, ok := o.config[key].(bool); ok {
		return v
	}
	return def
}

// WithLogger sets the logger for every component.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithStore injects a custom Store (e.g. a test double).
// If provided, the adapter and path are ignored.
func WithStore(store core.Store) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithAdapter selects the storage adapter by name: "sqlite" (default) or "memory".
func WithAdapter(name string) Option {
	return func(o *options) {
		o.adapter = name
	}
}

// WithForceTemp forces the store into a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return func(o *options) {
		o.config["temp_dir"] = force
	}
}

// WithMustExist refuses to create a new store file.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.config["must_exist"] = must
	}
}

// WithFallback controls degraded mode. When enabled (the default) an unavailable
// durable store is replaced by an in-memory one and the session keeps working
// without persistence.
func WithFallback(enabled bool) Option {
	return func(o *options) {
		o.config["fallback"] = enabled
	}
}

// WithDevSafety controls the sandbox used when running via `go run` or `go test`.
// By default (true) the store file is re-rooted under the temp directory so a dev
// run never touches real progress.
//
// CAUTION: Only disable this if you are sure your code is safe.
func WithDevSafety(enabled bool) Option {
	return func(o *options) {
		o.config["dev_safety"] = enabled
	}
}

// WithPollOptions passes options to pollers built by NewOverlay.
func WithPollOptions(opts ...overlay.Option) Option {
	return func(o *options) {
		o.poll = append(o.poll, opts...)
	}
}

// WithRecorder sets the metrics recorder of pollers built by NewOverlay.
func WithRecorder(r metrics.Recorder) Option {
	return func(o *options) {
		o.recorder = r
	}
}
