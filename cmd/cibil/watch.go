package main

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/cibil-aggregator/internal/common"
	"github.com/joseph-ayodele/cibil-aggregator/internal/core/async"
	"github.com/joseph-ayodele/cibil-aggregator/internal/ingest"
	"github.com/joseph-ayodele/cibil-aggregator/internal/repository"
	"github.com/joseph-ayodele/cibil-aggregator/internal/server"
)

func newWatchCmd(a *app) *cobra.Command {
	var (
		store   bool
		noScan  bool
		outDir  string
		workers int
	)
	cmd := &cobra.Command{
		Use:   "watch DIR...",
		Short: "Watch directories and aggregate every report file that appears",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wc := a.cfg.Watch
			wc.Roots = args
			if noScan {
				wc.InitialScan = false
			}
			if outDir != "" {
				wc.OutputDir = outDir
			}
			if workers > 0 {
				wc.Workers = workers
			}
			return a.runWatch(cmd, wc.Roots, wc.InitialScan, wc.OutputDir, wc.Workers, store)
		},
	}
	f := cmd.Flags()
	f.BoolVar(&store, "store", false, "persist results in the configured report store")
	f.BoolVar(&noScan, "no-initial-scan", false, "only process files created after start")
	f.StringVarP(&outDir, "out", "o", "", "directory for result files (default: next to each source)")
	f.IntVar(&workers, "jobs", 0, "concurrent files")
	return cmd
}

func (a *app) runWatch(cmd *cobra.Command, roots []string, initialScan bool, outDir string, workers int, store bool) error {
	ctx := cmd.Context()
	opts := []async.Option{
		async.WithWorkers(workers),
		async.WithQueueSize(a.cfg.Watch.QueueSize),
		async.WithProcessTimeout(a.cfg.Watch.ProcessTimeout),
		async.WithOutputDir(outDir),
		async.WithOnDone(printOutcome(cmd.OutOrStdout())),
	}
	if store {
		if a.cfg.Database.Driver == "" {
			return fmt.Errorf("--store needs a report store (set --db or database.dsn)")
		}
		db, err := server.ConnectDB(ctx, a.cfg.Database, a.logger)
		if err != nil {
			return err
		}
		defer db.Close(a.logger)
		opts = append(opts, async.WithStore(repository.NewReportRepository(db, a.logger)))
	}

	queue := async.NewProcessorQueue(server.NewPipeline(a.cfg, a.logger), a.logger, opts...)
	defer func() {
		shutdownCtx, cancel := common.WithTimeout(context.Background(), a.cfg.Watch.ProcessTimeout)
		defer cancel()
		queue.Shutdown(shutdownCtx)
	}()

	paths, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:       roots,
		InitialScan: initialScan,
		Debounce:    a.cfg.Watch.Debounce,
		SkipHidden:  true,
		Logger:      a.logger,
	})
	if err != nil {
		return err
	}
	async.Pump(ctx, queue, paths, errs, a.logger)
	return nil
}

func printOutcome(w io.Writer) func(async.Outcome) {
	var mu sync.Mutex
	return func(o async.Outcome) {
		mu.Lock()
		defer mu.Unlock()
		if o.Err != nil {
			_, _ = fmt.Fprintf(w, "FAIL %s: %v\n", o.Job.Path, o.Err)
			return
		}
		_, _ = fmt.Fprintf(w, "ok   %s -> %s\n", o.Job.Path, o.Output)
	}
}
