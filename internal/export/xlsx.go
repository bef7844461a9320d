// Package export renders processing results as XLSX workbooks, console tables and JSON.
package export

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/cibil-aggregator/internal/entity"
)

// Sheet names of the XLSX workbook.
const (
	SheetSummary  = "Summary"
	SheetAccounts = "Accounts"
	SheetPages    = "Pages"
)

var accountHeaders = []string{
	"Account Number",
	"Bank",
	"Loan Type",
	"Sanctioned",
	"Current Balance",
	"Overdue",
	"Status",
	"Opened",
	"Last Payment",
	"Payment History",
	"Page",
}

var pageHeaders = []string{
	"Page",
	"Method",
	"Text Length",
	"Confidence",
	"Indicators",
	"Account Numbers",
	"Amounts",
}

// Service renders results. It holds no state besides its logger.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// XLSX returns a workbook (as bytes) with a summary sheet, one row per account and,
// when the result carries them, one row per page.
func (s *Service) XLSX(result *entity.ProcessingResult) ([]byte, error) {
	if result == nil || result.AggregatedData == nil {
		return nil, fmt.Errorf("xlsx: result has no aggregated report")
	}
	start := time.Now()
	report := result.AggregatedData

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, err
	}
	for _, name := range []string{SheetAccounts, SheetPages} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}
	}

	for i, kv := range summaryRows(result) {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(SheetSummary, cell, &[]any{kv.key, kv.value}); err != nil {
			return nil, err
		}
	}
	_ = f.SetColWidth(SheetSummary, "A", "A", 32)
	_ = f.SetColWidth(SheetSummary, "B", "B", 48)

	if err := writeHeader(f, SheetAccounts, accountHeaders); err != nil {
		return nil, err
	}
	for i, a := range report.AllAccounts {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []any{
			a.AccountNumber,
			a.BankName,
			a.LoanType,
			entity.Deref(a.SanctionedAmount),
			entity.Deref(a.CurrentBalance),
			entity.Deref(a.OverdueAmount),
			entity.Deref(a.AccountStatus),
			entity.Deref(a.OpeningDate),
			entity.Deref(a.LastPaymentDate),
			strings.Join(a.PaymentHistory, " "),
			a.PageNumber,
		}
		if err := f.SetSheetRow(SheetAccounts, cell, &row); err != nil {
			return nil, err
		}
	}
	_ = f.SetColWidth(SheetAccounts, "A", "A", 24) // account number
	_ = f.SetColWidth(SheetAccounts, "B", "C", 28) // bank, loan type
	_ = f.SetColWidth(SheetAccounts, "D", "F", 16) // amounts
	_ = f.SetColWidth(SheetAccounts, "J", "J", 48) // history

	if err := writeHeader(f, SheetPages, pageHeaders); err != nil {
		return nil, err
	}
	for i, p := range result.PagesData {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []any{
			p.PageNumber,
			p.ExtractionMethod,
			p.TextLength,
			p.Confidence,
			strings.Join(p.Indicators, ", "),
			strings.Join(p.AccountData.AccountNumbers, ", "),
			strings.Join(p.FinancialData.Amounts, ", "),
		}
		if err := f.SetSheetRow(SheetPages, cell, &row); err != nil {
			return nil, err
		}
	}

	idx, _ := f.GetSheetIndex(SheetSummary)
	f.SetActiveSheet(idx)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	s.logger.Info("export.xlsx.ok",
		"accounts", len(report.AllAccounts),
		"pages", len(result.PagesData),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func writeHeader(f *excelize.File, sheet string, headers []string) error {
	row := make([]any, len(headers))
	for i, h := range headers {
		row[i] = h
	}
	return f.SetSheetRow(sheet, "A1", &row)
}

type keyValue struct {
	key   string
	value any
}

func summaryRows(result *entity.ProcessingResult) []keyValue {
	r := result.AggregatedData
	sum := r.ReportSummary
	score := "n/a"
	if sum.CibilScore != nil {
		score = strconv.Itoa(*sum.CibilScore)
	}
	rows := []keyValue{
		{"CIBIL Score", score},
		{"Total Accounts", sum.TotalAccounts},
		{"Active Accounts", sum.TotalActiveAccounts},
		{"Closed Accounts", sum.TotalClosedAccounts},
		{"Settled Accounts", sum.TotalSettledAccounts},
		{"Accounts With Overdue", sum.AccountsWithOverdue},
		{"Unique Banks", sum.UniqueBanks},
		{"Loan Types", strings.Join(sum.LoanTypes, ", ")},
		{"Payment Delay Instances", sum.PaymentDelayInstances},
		{"Payment Behavior Score", sum.PaymentBehaviorScore},
		{"Total Enquiries", sum.TotalEnquiries},
		{"Enquiring Institutions", strings.Join(r.EnquirySummary.EnquiringInstitutions, ", ")},
		{"Data Completeness %", sum.DataCompletenessPercentage},
		{"Overall Aggregation Quality", r.DataQualityMetrics.OverallAggregationQuality},
		{"Pages Processed", r.ProcessingMetadata.TotalPagesProcessed},
		{"Sections Found", strings.Join(r.ProcessingMetadata.SectionTypesFound, ", ")},
		{"Processed At", r.ProcessingMetadata.ProcessingTimestamp},
	}
	if result.ReportType != "" {
		rows = append(rows,
			keyValue{"Report Type", result.ReportStructure.ReportType},
			keyValue{"Applicant", result.ReportStructure.ApplicantInfo.Name},
			keyValue{"Extraction Quality", result.ExtractionQuality.QualityLevel},
		)
	}
	return rows
}
