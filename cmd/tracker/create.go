package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/tracker/pkg/core"
)

var (
	createName    string
	createQuery   string
	createCatalog string
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a checklist",
	Long: `Create a checklist at the end of the display order. With --catalog the query
is run against a YAML or JSON object catalog and the matches become its items.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		c := openChecklists(ctx, false)
		defer c.Store().Close()

		if createCatalog != "" && createQuery == "" {
			fatal("Error creating list", fmt.Errorf("--catalog needs --query"))
		}

		l, err := c.CreateFromSearch(ctx, createName, createQuery)
		if err != nil {
			fatal("Error creating list", err)
		}

		if createCatalog != "" {
			items := searchCatalog(createCatalog, createQuery)
			if err := c.SetItems(ctx, l.ID, items); err != nil {
				fatal("Error saving items", err)
			}
		}

		t, _ := c.ListTotals(l.ID)
		fmt.Printf("List created: %d %s %s\n", l.ID, l.Name, core.FormatCounts(t))
	},
}

func init() {
	rootCmd.AddCommand(createCmd)
	createCmd.Flags().StringVar(&createName, "name", "", "List name (default \"New List\")")
	createCmd.Flags().StringVar(&createQuery, "query", "", "Search expression the list is built from")
	createCmd.Flags().StringVar(&createCatalog, "catalog", "", "Object catalog to run the query against")
}
