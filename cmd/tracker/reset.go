package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var resetYes bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete every checklist and mark",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if !resetYes {
			fatal("Refusing to reset", fmt.Errorf("pass --yes to delete all progress"))
		}
		ctx := context.Background()
		c := openChecklists(ctx, true)
		defer c.Store().Close()

		if err := c.Clear(ctx); err != nil {
			fatal("Error resetting store", err)
		}
		fmt.Println("All progress deleted")
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)
	resetCmd.Flags().BoolVar(&resetYes, "yes", false, "Confirm the reset")
}
