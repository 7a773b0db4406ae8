package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a checklist",
	Long:  `Delete removes a checklist. Marks are kept, so the objects stay found in other lists.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id := parseID(args[0])
		ctx := context.Background()
		c := openChecklists(ctx, true)
		defer c.Store().Close()

		if err := c.Delete(ctx, id); err != nil {
			fatal("Error deleting list", err)
		}
		fmt.Printf("List deleted: %d\n", id)
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
