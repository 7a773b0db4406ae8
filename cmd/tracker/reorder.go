package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var reorderCmd = &cobra.Command{
	Use:   "reorder [id...]",
	Short: "Move checklists to the front of the display order",
	Long: `Place the given lists first, in the order given. Every other list keeps its
relative position after them.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ids := make([]int64, 0, len(args))
		for _, a := range args {
			ids = append(ids, parseID(a))
		}

		ctx := context.Background()
		c := openChecklists(ctx, true)
		defer c.Store().Close()

		if err := c.Reorder(ctx, ids); err != nil {
			fatal("Error reordering lists", err)
		}
		for _, l := range c.Lists() {
			fmt.Printf("%d\t%d\t%s\n", l.OrderValue(), l.ID, l.Name)
		}
	},
}

func init() {
	rootCmd.AddCommand(reorderCmd)
}
