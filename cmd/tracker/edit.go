package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var requeryCatalog string

var renameCmd = &cobra.Command{
	Use:   "rename [id] [name]",
	Short: "Rename a checklist",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		id := parseID(args[0])
		ctx := context.Background()
		c := openChecklists(ctx, true)
		defer c.Store().Close()

		if err := c.Rename(ctx, id, args[1]); err != nil {
			fatal("Error renaming list", err)
		}
		fmt.Printf("List renamed: %d %s\n", id, args[1])
	},
}

var requeryCmd = &cobra.Command{
	Use:   "requery [id] [query]",
	Short: "Change the query of a checklist",
	Long: `Change the search expression a checklist is built from. With --catalog the
items are replaced by the new matches; marks are kept.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		id := parseID(args[0])
		query := args[1]
		ctx := context.Background()
		c := openChecklists(ctx, true)
		defer c.Store().Close()

		if err := c.Requery(ctx, id, query); err != nil {
			fatal("Error updating query", err)
		}
		if requeryCatalog != "" {
			if err := c.SetItems(ctx, id, searchCatalog(requeryCatalog, query)); err != nil {
				fatal("Error saving items", err)
			}
		}
		fmt.Printf("List updated: %d\n", id)
	},
}

func init() {
	rootCmd.AddCommand(renameCmd)
	rootCmd.AddCommand(requeryCmd)
	requeryCmd.Flags().StringVar(&requeryCatalog, "catalog", "", "Object catalog to rebuild the items from")
}
