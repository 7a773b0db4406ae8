package tracker_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/aretw0/tracker"
	"github.com/aretw0/tracker/pkg/core"
)

// Example_basic demonstrates how to open a store, build a checklist and mark an object.
func Example_basic() {
	tmpDir, err := os.MkdirTemp("", "tracker-example-*")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	ctx := context.Background()
	c, err := tracker.New(ctx, filepath.Join(tmpDir, "tracker.db"))
	if err != nil {
		log.Fatal(err)
	}
	defer c.Store().Close()

	list, err := c.CreateFromSearch(ctx, "Shrines", `map_type == "shrine"`)
	if err != nil {
		log.Fatal(err)
	}
	err = c.SetItems(ctx, list.ID, []core.ListItem{
		{HashID: "obj_1", Name: "Shrine of Dawn"},
		{HashID: "obj_2", Name: "Shrine of Dusk"},
	})
	if err != nil {
		log.Fatal(err)
	}

	if err := c.SetMarked(ctx, "obj_1", true); err != nil {
		log.Fatal(err)
	}

	fmt.Println(core.FormatMeta(c.Totals()))
	// Output:
	// 1 / 2 (50.00%)
}

// ExampleNewOverlay demonstrates a read-only dashboard over a store written elsewhere.
func ExampleNewOverlay() {
	tmpDir, err := os.MkdirTemp("", "tracker-overlay-example-*")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	ctx := context.Background()
	path := filepath.Join(tmpDir, "tracker.db")

	c, err := tracker.New(ctx, path)
	if err != nil {
		log.Fatal(err)
	}
	list, err := c.Create(ctx)
	if err != nil {
		log.Fatal(err)
	}
	err = c.SetItems(ctx, list.ID, []core.ListItem{{HashID: "obj_1"}, {HashID: "obj_2"}, {HashID: "obj_3"}})
	if err != nil {
		log.Fatal(err)
	}
	if err := c.SetMarked(ctx, "obj_3", true); err != nil {
		log.Fatal(err)
	}
	if err := c.Store().Close(); err != nil {
		log.Fatal(err)
	}

	p, store, err := tracker.NewOverlay(ctx, path)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()
	defer p.Stop()

	if err := p.Start(ctx); err != nil {
		log.Fatal(err)
	}
	d := p.Dashboard()
	fmt.Println(d.Counts(), d.Percent())
	// Output:
	// (1 / 3) 33.33%
}
