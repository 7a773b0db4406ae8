package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/tracker"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of tracker",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tracker version %s\n", strings.TrimSpace(tracker.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
