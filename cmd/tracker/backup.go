package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/tracker"
)

var importReplace bool

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write a backup of all progress",
	Long:  `Write marks and lists to a JSON or YAML file, chosen by extension.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		c := openChecklists(ctx, true)
		defer c.Store().Close()

		b, err := tracker.ExportFile(ctx, c, args[0])
		if err != nil {
			fatal("Error exporting", err)
		}
		fmt.Printf("Exported %d lists and %d marks to %s\n", len(b.Lists), len(b.Values), args[0])
	},
}

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Restore a backup",
	Long: `Restore a backup written by export. By default marks are merged and lists
are added alongside existing ones; --replace wipes the store first.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		c := openChecklists(ctx, false)
		defer c.Store().Close()

		b, err := tracker.ImportFile(ctx, c, args[0], importReplace)
		if err != nil {
			fatal("Error importing", err)
		}
		fmt.Printf("Imported %d lists and %d marks from %s\n", len(b.Lists), len(b.Values), args[0])
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().BoolVar(&importReplace, "replace", false, "Wipe the store before importing")
}
