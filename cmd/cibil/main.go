package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/cibil-aggregator/internal/common"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	configPath string
	logLevel   string
	dsn        string
	workers    int
	ocr        string

	cfg    *common.Config
	logger *slog.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if _, werr := fmt.Fprintf(os.Stderr, "Error: %v\n", err); werr != nil {
			fmt.Printf("Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "cibil",
		Short:         "Aggregate multi-page CIBIL credit reports into structured JSON",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	pf := root.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "YAML config file")
	pf.StringVar(&a.logLevel, "log-level", "", "log level override (debug|info|warn|error)")
	pf.StringVar(&a.dsn, "db", "", "report store DSN (sqlite file or postgres:// URL)")
	pf.IntVar(&a.workers, "workers", 0, "per-page parallelism override")
	pf.StringVar(&a.ocr, "ocr", "", "OCR mode override (auto|on|off)")

	root.AddCommand(
		newAggregateCmd(a),
		newWatchCmd(a),
		newReportsCmd(a),
		newSchemaCmd(),
	)
	return root
}

// setup loads configuration, applies flag overrides and builds the logger.
// Logs go to stderr so stdout stays clean for reports.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := common.LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.dsn != "" {
		cfg.Database.DSN = a.dsn
		cfg.Database.Driver = common.GuessDriver(a.dsn)
	}
	if a.workers > 0 {
		cfg.Pipeline.Workers = a.workers
	}
	if a.ocr != "" {
		cfg.Pipeline.OCR = a.ocr
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = common.NewLogger(cfg.Log, cmd.ErrOrStderr())
	slog.SetDefault(a.logger)
	return nil
}
