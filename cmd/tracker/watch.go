package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/lifecycle"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/aretw0/tracker"
	"github.com/aretw0/tracker/internal/logfields"
	"github.com/aretw0/tracker/internal/metrics"
	"github.com/aretw0/tracker/pkg/adapters/fs"
	lcsource "github.com/aretw0/tracker/pkg/adapters/lifecycle"
	"github.com/aretw0/tracker/pkg/adapters/sqlite"
	"github.com/aretw0/tracker/pkg/core"
	"github.com/aretw0/tracker/pkg/overlay"
)

var (
	metricsAddr string
	noFileWatch bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Show live totals while another process edits the store",
	Long: `Watch polls the store read-only and prints totals whenever they change.
Polling backs off while nothing changes; a write to the store file triggers an
immediate refresh. With --metrics-addr the poll loop is exported to Prometheus.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		pollOpts, err := cfg.PollOptions()
		if err != nil {
			fatal("Invalid poll config", err)
		}

		reg := prom.NewRegistry()
		events := make(chan core.Event, 16)
		pollOpts = append(pollOpts, overlay.WithEvents(events))

		p, store, err := tracker.NewOverlay(ctx, storePath(),
			tracker.WithLogger(logger),
			tracker.WithMustExist(true),
			tracker.WithRecorder(metrics.NewPrometheusRecorder(reg)),
			tracker.WithPollOptions(pollOpts...),
		)
		if err != nil {
			fatal("Error opening store", err)
		}
		defer store.Close()

		if metricsAddr != "" {
			srv := &http.Server{Addr: metricsAddr, Handler: metrics.HTTPHandler(reg)}
			lifecycle.Go(ctx, func(ctx context.Context) error {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			}, lifecycle.WithErrorHandler(func(err error) {
				logger.Error("metrics server failed", logfields.Error(err))
			}))
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}()
			logger.Info("serving metrics", "addr", metricsAddr)
		}

		if s, ok := store.(*sqlite.Store); ok && !noFileWatch && cfg.WatchStoreEnabled() {
			w := fs.NewStoreWatcher(s.Path(), p.Nudge, fs.WithWatchLogger(logger))
			if err := w.Start(ctx); err != nil {
				logger.Warn("file watch disabled", logfields.Path(s.Path()), logfields.Error(err))
			} else {
				defer w.Stop(context.Background())
			}
		}

		source := lcsource.NewSource(events)
		if err := source.Start(ctx); err != nil {
			fatal("Error starting event source", err)
		}
		if err := p.Start(ctx); err != nil {
			fatal("Error starting poller", err)
		}
		defer p.Stop()

		for e := range source.Events() {
			if _, ok := e.(core.Event); !ok {
				continue
			}
			printDashboard(p.Dashboard())
		}
	},
}

func printDashboard(d overlay.Dashboard) {
	fmt.Printf("%s total %s\n", d.UpdatedAt.Format(time.TimeOnly), d.Meta())
	for _, l := range d.Lists {
		fmt.Printf("  %d\t%s\t%s\n", l.ID, l.Name, d.ListMeta(l.ID))
	}
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")
	watchCmd.Flags().BoolVar(&noFileWatch, "no-file-watch", false, "Rely on polling only")
}
