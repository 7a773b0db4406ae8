package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/tracker/pkg/core"
)

var (
	listsJSON  bool
	listsMatch string
)

type listSummary struct {
	ID     int64       `json:"id"`
	Name   string      `json:"name"`
	Query  string      `json:"query"`
	Order  int         `json:"order"`
	Totals core.Totals `json:"totals"`
}

var listsCmd = &cobra.Command{
	Use:   "lists",
	Short: "List checklists in display order",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		c := openChecklists(context.Background(), true)
		defer c.Store().Close()

		lists := c.Lists()
		if listsMatch != "" {
			var err error
			lists, err = c.Match(listsMatch)
			if err != nil {
				fatal("Error matching lists", err)
			}
		}

		summaries := make([]listSummary, 0, len(lists))
		for _, l := range lists {
			t, _ := c.ListTotals(l.ID)
			summaries = append(summaries, listSummary{
				ID:     l.ID,
				Name:   l.Name,
				Query:  l.Query,
				Order:  l.OrderValue(),
				Totals: t,
			})
		}

		if listsJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(summaries); err != nil {
				fatal("Error encoding JSON", err)
			}
			return
		}

		for _, s := range summaries {
			fmt.Printf("%d\t%s\t%s\n", s.ID, s.Name, core.FormatMeta(s.Totals))
		}
		fmt.Printf("total\t%s\n", core.FormatMeta(c.Totals()))
	},
}

func init() {
	rootCmd.AddCommand(listsCmd)
	listsCmd.Flags().BoolVar(&listsJSON, "json", false, "Output in JSON format")
	listsCmd.Flags().StringVar(&listsMatch, "match", "", "Only lists whose name matches a glob pattern")
}
