package tracker

import (
	"context"
	"log/slog"

	"github.com/aretw0/tracker/internal/metrics"
	"github.com/aretw0/tracker/internal/platform"
	"github.com/aretw0/tracker/pkg/core"
	"github.com/aretw0/tracker/pkg/overlay"
)

// --- Types ---

// Checklists is the domain model returned by New.
type Checklists = core.Checklists

// Store is the persistence port.
type Store = core.Store

// Poller is the dashboard refresh loop returned by NewOverlay.
type Poller = overlay.Poller

// Config is the content of tracker.yaml.
type Config = platform.Config

// --- Configuration ---

// Option defines a functional option for configuring the tracker.
type Option = platform.Option

// WithLogger sets the logger for every component.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithStore allows injecting a custom storage adapter.
func WithStore(store core.Store) Option {
	return platform.WithStore(store)
}

// WithAdapter selects the storage adapter by name ("sqlite" or "memory").
func WithAdapter(name string) Option {
	return platform.WithAdapter(name)
}

// WithForceTemp forces the store into a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return platform.WithForceTemp(force)
}

// WithMustExist refuses to create a new store file.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithFallback controls the in-memory fallback used when the durable store is unavailable.
func WithFallback(enabled bool) Option {
	return platform.WithFallback(enabled)
}

// WithDevSafety controls the sandbox used when running via `go run` or `go test`.
func WithDevSafety(enabled bool) Option {
	return platform.WithDevSafety(enabled)
}

// WithPollOptions passes options to pollers built by NewOverlay.
func WithPollOptions(opts ...overlay.Option) Option {
	return platform.WithPollOptions(opts...)
}

// WithRecorder sets the metrics recorder of pollers built by NewOverlay.
func WithRecorder(r metrics.Recorder) Option {
	return platform.WithRecorder(r)
}

// --- Factory ---

// New opens the store at path and loads the checklists.
func New(ctx context.Context, path string, opts ...Option) (*core.Checklists, error) {
	return platform.New(ctx, path, opts...)
}

// Init opens a store explicitly. degraded reports an in-memory fallback.
func Init(ctx context.Context, path string, opts ...Option) (store core.Store, degraded bool, err error) {
	return platform.Init(ctx, path, opts...)
}

// NewOverlay opens the store at path and returns an idle dashboard poller.
// The caller closes the store after stopping the poller.
func NewOverlay(ctx context.Context, path string, opts ...Option) (*overlay.Poller, core.Store, error) {
	return platform.NewOverlay(ctx, path, opts...)
}

// --- Operations ---

// ExportFile writes a backup of the store to path (.json, .yaml or .yml).
func ExportFile(ctx context.Context, c *core.Checklists, path string) (core.Bundle, error) {
	return platform.ExportFile(ctx, c, path)
}

// ImportFile restores a backup from path.
func ImportFile(ctx context.Context, c *core.Checklists, path string, replace bool) (core.Bundle, error) {
	return platform.ImportFile(ctx, c, path, replace)
}

// LoadConfig reads a tracker.yaml file. A missing file yields an empty config.
func LoadConfig(path string) (*Config, error) {
	return platform.LoadConfig(path)
}

// --- Safety & Utils ---

// ResolveStorePath determines the actual store file based on safety rules.
func ResolveStorePath(userPath string, forceTemp bool) string {
	return platform.ResolveStorePath(userPath, forceTemp)
}

// IsDevRun checks if the current process is running via `go run` or `go test`.
func IsDevRun() bool {
	return platform.IsDevRun()
}

// FindRoot looks upwards from startDir for a tracker root.
func FindRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}

// DefaultStorePath returns the store file of a tracker root.
func DefaultStorePath(root string) string {
	return platform.DefaultStorePath(root)
}
