package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/cibil-aggregator/internal/entity"
	"github.com/joseph-ayodele/cibil-aggregator/internal/export"
	"github.com/joseph-ayodele/cibil-aggregator/internal/repository"
	"github.com/joseph-ayodele/cibil-aggregator/internal/server"
)

func newReportsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "Inspect reports in the report store",
	}

	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List stored reports, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withRepo(cmd, func(repo repository.ReportRepository) error {
				reps, err := repo.List(cmd.Context(), limit)
				if err != nil {
					return err
				}
				renderReports(cmd.OutOrStdout(), reps)
				return nil
			})
		},
	}
	list.Flags().IntVarP(&limit, "limit", "n", 20, "maximum reports to list (0 = all)")

	var format string
	show := &cobra.Command{
		Use:   "show ID",
		Short: "Print a stored processing result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid report id %q: %w", args[0], err)
			}
			return a.withRepo(cmd, func(repo repository.ReportRepository) error {
				rep, err := repo.Get(cmd.Context(), id)
				if err != nil {
					return err
				}
				if format == formatTable {
					return export.RenderTable(cmd.OutOrStdout(), rep.Result.AggregatedData)
				}
				return export.WriteJSON(cmd.OutOrStdout(), rep.Result)
			})
		},
	}
	show.Flags().StringVarP(&format, "format", "f", formatJSON, "output format (json|table)")

	find := &cobra.Command{
		Use:   "find-account NUMBER",
		Short: "Find stored reports that list an account number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withRepo(cmd, func(repo repository.ReportRepository) error {
				refs, err := repo.FindAccount(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if len(refs) == 0 {
					_, err := fmt.Fprintf(cmd.OutOrStdout(), "account %s not found\n", args[0])
					return err
				}
				renderAccountRefs(cmd.OutOrStdout(), refs)
				return nil
			})
		},
	}

	cmd.AddCommand(list, show, find)
	return cmd
}

func (a *app) withRepo(cmd *cobra.Command, fn func(repository.ReportRepository) error) error {
	if a.cfg.Database.Driver == "" {
		return fmt.Errorf("no report store configured (set --db or database.dsn)")
	}
	db, err := server.ConnectDB(cmd.Context(), a.cfg.Database, a.logger)
	if err != nil {
		return err
	}
	defer db.Close(a.logger)
	return fn(repository.NewReportRepository(db, a.logger))
}

func renderReports(w io.Writer, reps []*entity.StoredReport) {
	t := tablewriter.NewWriter(w)
	t.SetHeader([]string{"ID", "Source", "Created", "Score", "Accounts", "Quality"})
	t.SetAutoWrapText(false)
	for _, r := range reps {
		score := "-"
		if r.CibilScore != nil {
			score = strconv.Itoa(*r.CibilScore)
		}
		t.Append([]string{
			r.ID.String(),
			r.Source,
			humanize.Time(r.CreatedAt),
			score,
			strconv.Itoa(r.TotalAccounts),
			strconv.FormatFloat(r.OverallQuality, 'f', 2, 64),
		})
	}
	t.Render()
}

func renderAccountRefs(w io.Writer, refs []entity.AccountRef) {
	t := tablewriter.NewWriter(w)
	t.SetHeader([]string{"Report", "Source", "Created", "Bank", "Status", "Page"})
	t.SetAutoWrapText(false)
	for _, r := range refs {
		t.Append([]string{
			r.ReportID.String(),
			r.Source,
			humanize.Time(r.CreatedAt),
			r.BankName,
			r.AccountStatus,
			strconv.Itoa(r.PageNumber),
		})
	}
	t.Render()
}
