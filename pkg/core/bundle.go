package core

import (
	"context"
	"fmt"
)

// ExportBundle snapshots marks and lists from the store.
func ExportBundle(ctx context.Context, store Store) (Bundle, error) {
	values, err := store.All(ctx)
	if err != nil {
		return Bundle{}, fmt.Errorf("export marks: %w", err)
	}
	lists, err := store.ListGetAll(ctx)
	if err != nil {
		return Bundle{}, fmt.Errorf("export lists: %w", err)
	}
	if values == nil {
		values = make(MarkedMap)
	}
	if lists == nil {
		lists = []List{}
	}
	return Bundle{
		Values:  values,
		Lists:   lists,
		Version: SchemaVersion,
		Name:    StoreName,
	}, nil
}

// Validate checks that a bundle can be imported by this build.
func (b Bundle) Validate() error {
	if b.Version > SchemaVersion {
		return fmt.Errorf("%w: version %d is newer than %d", ErrInvalidBundle, b.Version, SchemaVersion)
	}
	if b.Name != "" && b.Name != StoreName {
		return fmt.Errorf("%w: bundle of store %q", ErrInvalidBundle, b.Name)
	}
	for i, l := range b.Lists {
		for key, item := range l.Items {
			if item.HashID != "" && item.HashID != key {
				return fmt.Errorf("%w: list %d item key %q holds %q", ErrInvalidBundle, i, key, item.HashID)
			}
		}
	}
	return nil
}

// ImportBundle writes a bundle into the store.
// With replace, both collections are wiped first and list IDs from the bundle are
// kept. Without it, marks are merged and lists are added under fresh IDs so they
// never overwrite existing ones.
func ImportBundle(ctx context.Context, store Store, b Bundle, replace bool) error {
	if err := b.Validate(); err != nil {
		return err
	}
	if replace {
		if err := store.Clear(ctx); err != nil {
			return fmt.Errorf("import clear: %w", err)
		}
	}
	if len(b.Values) > 0 {
		if err := store.SetMarkedBatch(ctx, b.Values); err != nil {
			return fmt.Errorf("import marks: %w", err)
		}
	}
	for _, l := range b.Lists {
		rec := l.Clone()
		if !replace {
			rec.ID = 0
		}
		if rec.Items == nil {
			rec.Items = make(map[string]ListItem)
		}
		for key, item := range rec.Items {
			if item.HashID == "" {
				item.HashID = key
				rec.Items[key] = item
			}
		}
		if _, err := store.ListAdd(ctx, &rec); err != nil {
			return fmt.Errorf("import list %q: %w", l.Name, err)
		}
	}
	return nil
}
