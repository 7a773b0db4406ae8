package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/aretw0/tracker/pkg/core"
)

var showJSON bool

var showCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show the items of a checklist",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id := parseID(args[0])
		c := openChecklists(context.Background(), true)
		defer c.Store().Close()

		l, ok := c.Read(id)
		if !ok {
			fatal("Error reading list", fmt.Errorf("list %d: %w", id, core.ErrNotFound))
		}

		if showJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(l); err != nil {
				fatal("Error encoding JSON", err)
			}
			return
		}

		t, _ := c.ListTotals(id)
		fmt.Printf("%s %s\n", l.Name, core.FormatMeta(t))
		if l.Query != "" {
			fmt.Printf("query: %s\n", l.Query)
		}

		ids := make([]string, 0, len(l.Items))
		for hashID := range l.Items {
			ids = append(ids, hashID)
		}
		sort.Strings(ids)
		for _, hashID := range ids {
			item := l.Items[hashID]
			box := " "
			if c.IsMarked(hashID) {
				box = "x"
			}
			fmt.Printf("[%s] %s\t%s\t%s\n", box, hashID, item.Name, item.MapName)
		}
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().BoolVar(&showJSON, "json", false, "Output in JSON format")
}
