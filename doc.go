// Package tracker is the composition root of the checklist tracker.
//
// It connects the checklist domain (pkg/core) with a storage adapter
// (pkg/adapters/sqlite by default, pkg/adapters/memory as a fallback) and the
// dashboard poll loop (pkg/overlay).
//
// Progress is a set of marked object identifiers plus any number of named,
// ordered checklists built from catalog searches. Every mutation writes through
// to the store before the in-memory projection changes. When the store cannot be
// opened the tracker degrades to memory and keeps working without persistence.
//
// Usage:
//
//	c, err := tracker.New(ctx, ".tracker/tracker.db", tracker.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	list, _ := c.CreateFromSearch(ctx, "Shrines", `map_type == "shrine"`)
//	_ = c.SetMarked(ctx, "obj_42", true)
//	fmt.Println(core.FormatMeta(c.Totals()))
//
// A read-only dashboard polls the same file with an adaptive backoff:
//
//	p, store, err := tracker.NewOverlay(ctx, path)
//	defer store.Close()
//	_ = p.Start(ctx)
package tracker
