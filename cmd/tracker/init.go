package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the store file",
	Long:  `Create (or upgrade) the SQLite store at the tracker root. Running it twice is harmless.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		c := openChecklists(context.Background(), false)
		defer c.Store().Close()

		if c.Degraded() {
			fatal("Failed to initialize store", fmt.Errorf("%s is not writable", storePath()))
		}
		fmt.Println("Initialized tracker store in", storePath())
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
