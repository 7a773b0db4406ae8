package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/aretw0/tracker"
	"github.com/aretw0/tracker/internal/platform"
	"github.com/aretw0/tracker/pkg/core"
)

var (
	verbose    bool
	storeFlag  string
	configFlag string

	cfg     *platform.Config
	rootDir string
	logger  *slog.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tracker",
	Short: "Track found objects across named checklists",
	Long: `Tracker records which game objects you have found and groups them into
ordered checklists built from catalog searches. Progress lives in a local SQLite
file; "tracker watch" shows live totals while another process edits it.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A missing .env is the common case.
		_ = godotenv.Load()

		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("get working directory: %w", err)
		}
		rootDir, err = tracker.FindRoot(wd)
		if err != nil {
			rootDir = wd
		}

		path := configFlag
		if path == "" {
			path = filepath.Join(rootDir, platform.ConfigFile)
		}
		cfg, err = platform.LoadConfig(path)
		if err != nil {
			return err
		}
		cfg.ApplyEnv()

		level := cfg.Level()
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)
		return nil
	},
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&storeFlag, "store", "", "Path to the store file (default .tracker/tracker.db at the root)")
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Path to tracker.yaml (default: found at the root)")
}

// storePath picks the store file: flag, then config or environment, then the root default.
// Relative config paths are taken from the root.
func storePath() string {
	if storeFlag != "" {
		return storeFlag
	}
	if cfg != nil && cfg.Store != "" {
		if filepath.IsAbs(cfg.Store) {
			return cfg.Store
		}
		return filepath.Join(rootDir, cfg.Store)
	}
	return tracker.DefaultStorePath(rootDir)
}

// openChecklists opens the store and loads the checklists. With mustExist a
// missing store is an error rather than a fresh file or a memory fallback.
func openChecklists(ctx context.Context, mustExist bool) *core.Checklists {
	c, err := tracker.New(ctx, storePath(),
		tracker.WithLogger(logger),
		tracker.WithMustExist(mustExist),
		tracker.WithFallback(!mustExist),
	)
	if err != nil {
		fatal("Error opening store", err)
	}
	if c.Degraded() {
		fmt.Fprintln(os.Stderr, "Warning: store unavailable, changes will not be saved")
	}
	return c
}
