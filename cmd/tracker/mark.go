package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/tracker/pkg/core"
)

var unmark bool

var markCmd = &cobra.Command{
	Use:   "mark [hash_id...]",
	Short: "Mark objects as found",
	Long:  `Mark objects as found (or not found with --unmark) in every list that holds them.`,
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		c := openChecklists(ctx, false)
		defer c.Store().Close()

		for _, hashID := range args {
			if err := c.SetMarked(ctx, hashID, !unmark); err != nil {
				fatal("Error marking "+hashID, err)
			}
		}
		fmt.Println(core.FormatMeta(c.Totals()))
	},
}

func init() {
	rootCmd.AddCommand(markCmd)
	markCmd.Flags().BoolVar(&unmark, "unmark", false, "Clear the found state instead")
}
