package platform

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/aretw0/tracker/pkg/adapters/fs"
	"github.com/aretw0/tracker/pkg/adapters/memory"
	"github.com/aretw0/tracker/pkg/adapters/sqlite"
	"github.com/aretw0/tracker/pkg/core"
)

// Init opens the store selected by the options. The uri argument is
// adapter-specific (a file path for "sqlite", ignored for "memory").
//
// degraded is true when the durable store was unavailable and an in-memory store
// was returned in its place.
func Init(ctx context.Context, uri string, opts ...Option) (store core.Store, degraded bool, err error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return initStore(ctx, uri, o)
}

func initStore(ctx context.Context, uri string, o *options) (core.Store, bool, error) {
	if o.store != nil {
		if err := o.store.Init(ctx); err != nil {
			return nil, false, err
		}
		return o.store, false, nil
	}

	switch o.adapter {
	case "memory":
		s := memory.NewStore()
		return s, false, s.Init(ctx)
	case "sqlite", "":
	default:
		return nil, false, fmt.Errorf("unknown adapter: %s", o.adapter)
	}

	s, err := initSQLite(ctx, uri, o)
	if err == nil {
		return s, false, nil
	}
	if !errors.Is(err, core.ErrStoreUnavailable) || !o.flag("fallback", true) {
		return nil, false, err
	}

	if o.logger != nil {
		o.logger.Warn("durable store unavailable, progress will not be saved", "error", err)
	}
	mem := memory.NewStore()
	if err := mem.Init(ctx); err != nil {
		return nil, false, err
	}
	return mem, true, nil
}

// initSQLite handles path resolution and opening for the SQLite adapter.
func initSQLite(ctx context.Context, uri string, o *options) (*sqlite.Store, error) {
	path := resolvePath(uri, o)

	if o.flag("must_exist", false) {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("%w: %w", core.ErrStoreUnavailable, err)
		}
	}

	s := sqlite.NewStore(path, sqlite.WithLogger(o.logger))
	if err := s.Init(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func resolvePath(uri string, o *options) string {
	devSafety := o.flag("dev_safety", true)
	useTemp := o.flag("temp_dir", false) || (IsDevRun() && devSafety)
	path := ResolveStorePath(uri, useTemp)

	if o.logger != nil && IsDevRun() {
		if devSafety {
			o.logger.Debug("running in SAFE mode (dev sandbox enabled)", "path", path)
		} else {
			o.logger.Warn("running in UNSAFE mode (bypassing dev sandbox)", "path", path)
		}
	}
	return path
}

// ExportFile writes a snapshot of the store to path. The format follows the
// file extension (.json, .yaml, .yml).
func ExportFile(ctx context.Context, c *core.Checklists, path string) (core.Bundle, error) {
	b, err := c.Export(ctx)
	if err != nil {
		return core.Bundle{}, err
	}
	if err := fs.WriteBundle(path, b); err != nil {
		return core.Bundle{}, err
	}
	return b, nil
}

// ImportFile reads a bundle from path and applies it. With replace the store is
// wiped first; otherwise marks are merged and lists are added.
func ImportFile(ctx context.Context, c *core.Checklists, path string, replace bool) (core.Bundle, error) {
	b, err := fs.ReadBundle(path)
	if err != nil {
		return core.Bundle{}, err
	}
	if err := c.Import(ctx, b, replace); err != nil {
		return core.Bundle{}, err
	}
	return b, nil
}
