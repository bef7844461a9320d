package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/joseph-ayodele/cibil-aggregator/internal/common"
	"github.com/joseph-ayodele/cibil-aggregator/internal/core/async"
	"github.com/joseph-ayodele/cibil-aggregator/internal/ingest"
	"github.com/joseph-ayodele/cibil-aggregator/internal/repository"
	"github.com/joseph-ayodele/cibil-aggregator/internal/server"
)

func main() {
	configPath := flag.String("config", "", "YAML config file")
	flag.Parse()

	cfg, err := common.LoadConfig(*configPath)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	logger := common.NewLogger(cfg.Log, os.Stdout)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("cibild exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *common.Config, logger *slog.Logger) error {
	// Report store (optional)
	var repo repository.ReportRepository
	db, err := server.ConnectDB(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close(logger)
		repo = repository.NewReportRepository(db, logger)
	}

	proc := server.NewPipeline(cfg, logger)

	// Background queue for Submit and watched directories
	qopts := []async.Option{
		async.WithWorkers(cfg.Watch.Workers),
		async.WithQueueSize(cfg.Watch.QueueSize),
		async.WithProcessTimeout(cfg.Watch.ProcessTimeout),
		async.WithOutputDir(cfg.Watch.OutputDir),
	}
	if repo != nil {
		qopts = append(qopts, async.WithStore(repo))
	}
	queue := async.NewProcessorQueue(proc, logger, qopts...)
	defer func() {
		shutdownCtx, cancel := common.WithTimeout(context.Background(), cfg.Watch.ProcessTimeout)
		defer cancel()
		queue.Shutdown(shutdownCtx)
	}()

	if len(cfg.Watch.Roots) > 0 {
		paths, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
			Roots:       cfg.Watch.Roots,
			InitialScan: cfg.Watch.InitialScan,
			Debounce:    cfg.Watch.Debounce,
			SkipHidden:  true,
			Logger:      logger,
		})
		if err != nil {
			return err
		}
		go async.Pump(ctx, queue, paths, errs, logger)
	}

	grpcServer, hs := server.NewGRPCServer(server.NewAggregatorService(proc, repo, queue, logger), logger)
	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	logger.Info("grpc serving", "addr", lis.Addr().String(), "store", cfg.Database.Driver, "watch_roots", cfg.Watch.Roots)

	serveErr := make(chan error, 1)
	go func() { serveErr <- grpcServer.Serve(lis) }()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-serveErr:
		return fmt.Errorf("grpc serve: %w", err)
	}
	hs.Shutdown()
	grpcServer.GracefulStop()
	logger.Info("grpc stopped")
	return nil
}
