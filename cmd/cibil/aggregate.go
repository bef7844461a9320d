package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/cibil-aggregator/constants"
	"github.com/joseph-ayodele/cibil-aggregator/internal/entity"
	"github.com/joseph-ayodele/cibil-aggregator/internal/export"
	"github.com/joseph-ayodele/cibil-aggregator/internal/ingest"
	"github.com/joseph-ayodele/cibil-aggregator/internal/repository"
	"github.com/joseph-ayodele/cibil-aggregator/internal/server"
)

// Output formats.
const (
	formatJSON  = "json"
	formatTable = "table"
	formatXLSX  = "xlsx"
)

type aggregateOptions struct {
	format string
	out    string
	full   bool
	store  bool
}

func newAggregateCmd(a *app) *cobra.Command {
	opts := &aggregateOptions{}
	cmd := &cobra.Command{
		Use:   "aggregate FILE|DIR",
		Short: "Aggregate a report file (.json pages, .txt, .pdf) or every report in a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runAggregate(cmd, args[0], opts)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.format, "format", "f", formatJSON, "output format (json|table|xlsx)")
	f.StringVarP(&opts.out, "out", "o", "", "output file; for a directory, the output directory")
	f.BoolVar(&opts.full, "full", false, "emit the full processing result instead of the aggregated report")
	f.BoolVar(&opts.store, "store", false, "persist results in the configured report store")
	return cmd
}

func (a *app) runAggregate(cmd *cobra.Command, target string, opts *aggregateOptions) error {
	switch opts.format {
	case formatJSON, formatTable, formatXLSX:
	default:
		return fmt.Errorf("unknown format %q (want json, table or xlsx)", opts.format)
	}
	ctx := cmd.Context()

	info, err := os.Stat(target)
	if err != nil {
		return err
	}
	files := []string{target}
	if info.IsDir() {
		var stats ingest.DirStats
		files, stats, err = ingest.Discover(target, true)
		if err != nil {
			return err
		}
		a.logger.Info("ingest.discover.ok", "root", target, "scanned", stats.Scanned, "matched", stats.Matched, "skipped", stats.Skipped)
		if len(files) == 0 {
			return fmt.Errorf("no report files under %s", target)
		}
	}

	var repo repository.ReportRepository
	if opts.store {
		if a.cfg.Database.Driver == "" {
			return fmt.Errorf("--store needs a report store (set --db or database.dsn)")
		}
		db, err := server.ConnectDB(ctx, a.cfg.Database, a.logger)
		if err != nil {
			return err
		}
		defer db.Close(a.logger)
		repo = repository.NewReportRepository(db, a.logger)
	}

	proc := server.NewPipeline(a.cfg, a.logger)
	failures := 0
	for _, path := range files {
		res, err := proc.Process(ctx, path)
		if err != nil {
			if !info.IsDir() {
				return err
			}
			a.logger.Error("aggregate.file.failed", "path", path, "error", err)
			failures++
			continue
		}
		if repo != nil {
			id, err := repo.Save(ctx, path, res)
			if err != nil {
				return err
			}
			a.logger.Info("report.saved", "path", path, "report_id", id)
		}
		if err := a.emit(cmd, path, res, opts, info.IsDir()); err != nil {
			return err
		}
	}
	if failures > 0 {
		return fmt.Errorf("%d of %d files failed", failures, len(files))
	}
	return nil
}

// emit writes one result. Single files go to --out or stdout; directory runs write a file per
// source (into --out when set) except for tables, which always print.
func (a *app) emit(cmd *cobra.Command, source string, res *entity.ProcessingResult, opts *aggregateOptions, batch bool) error {
	stdout := cmd.OutOrStdout()
	switch opts.format {
	case formatTable:
		if batch {
			if _, err := fmt.Fprintf(stdout, "== %s\n", source); err != nil {
				return err
			}
		}
		return export.RenderTable(stdout, res.AggregatedData)

	case formatXLSX:
		data, err := export.NewService(a.logger).XLSX(res)
		if err != nil {
			return err
		}
		path := opts.out
		if batch || path == "" {
			path = xlsxPath(source, opts.out, batch)
		}
		if err := writeFile(path, func(w io.Writer) error {
			_, err := w.Write(data)
			return err
		}); err != nil {
			return err
		}
		_, err = fmt.Fprintf(stdout, "wrote %s\n", path)
		return err

	default:
		var v any = res.AggregatedData
		if opts.full {
			v = res
		}
		if !batch && opts.out == "" {
			return export.WriteJSON(stdout, v)
		}
		path := opts.out
		if batch {
			path = constants.OutputPath(source, opts.out)
		}
		if err := writeFile(path, func(w io.Writer) error { return export.WriteJSON(w, v) }); err != nil {
			return err
		}
		_, err := fmt.Fprintf(stdout, "wrote %s\n", path)
		return err
	}
}

func xlsxPath(source, out string, batch bool) string {
	name := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source)) + ".xlsx"
	if batch && out != "" {
		return filepath.Join(out, name)
	}
	return filepath.Join(filepath.Dir(source), name)
}

func writeFile(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	return f.Close()
}
