package platform

import (
	"context"
	"errors"

	"github.com/aretw0/tracker/pkg/core"
	"github.com/aretw0/tracker/pkg/overlay"
)

// New opens the store and loads the domain model.
//
//	c, err := tracker.New(".tracker/tracker.db", tracker.WithLogger(logger))
func New(ctx context.Context, uri string, opts ...Option) (*core.Checklists, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	store, degraded, err := initStore(ctx, uri, o)
	if err != nil {
		return nil, err
	}

	var copts []core.Option
	if o.logger != nil {
		copts = append(copts, core.WithLogger(o.logger))
	}
	copts = append(copts, core.WithDegraded(degraded))

	c := core.NewChecklists(store, copts...)
	if err := c.Init(ctx); err != nil {
		// Normalization write-backs are best effort; the projection is loaded.
		if !errors.Is(err, core.ErrTransientWrite) {
			_ = store.Close()
			return nil, err
		}
		if o.logger != nil {
			o.logger.Warn("could not persist normalized lists", "error", err)
		}
	}
	return c, nil
}

// NewOverlay opens the store read-side and builds an idle poller over it.
// There is no memory fallback: a dashboard over an empty store shows nothing useful.
func NewOverlay(ctx context.Context, uri string, opts ...Option) (*overlay.Poller, core.Store, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	o.config["fallback"] = false

	store, _, err := initStore(ctx, uri, o)
	if err != nil {
		return nil, nil, err
	}

	var popts []overlay.Option
	if o.logger != nil {
		popts = append(popts, overlay.WithLogger(o.logger))
	}
	if o.recorder != nil {
		popts = append(popts, overlay.WithRecorder(o.recorder))
	}
	popts = append(popts, o.poll...)
	return overlay.NewPoller(store, popts...), store, nil
}
