package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/joseph-ayodele/cibil-aggregator/internal/entity"
)

// RenderTable prints the report summary followed by one row per account.
func RenderTable(w io.Writer, report *entity.AggregatedReport) error {
	if report == nil {
		return fmt.Errorf("render: report is nil")
	}
	sum := report.ReportSummary
	score := "n/a"
	if sum.CibilScore != nil {
		score = strconv.Itoa(*sum.CibilScore)
	}

	st := tablewriter.NewWriter(w)
	st.SetHeader([]string{"Metric", "Value"})
	st.SetAutoWrapText(false)
	st.SetAlignment(tablewriter.ALIGN_LEFT)
	st.AppendBulk([][]string{
		{"CIBIL score", score},
		{"Accounts", strconv.Itoa(sum.TotalAccounts)},
		{"Active / closed / settled", fmt.Sprintf("%d / %d / %d", sum.TotalActiveAccounts, sum.TotalClosedAccounts, sum.TotalSettledAccounts)},
		{"With overdue", strconv.Itoa(sum.AccountsWithOverdue)},
		{"Payment behavior", fmt.Sprintf("%d (%d delays)", sum.PaymentBehaviorScore, sum.PaymentDelayInstances)},
		{"Enquiries", strconv.Itoa(sum.TotalEnquiries)},
		{"Completeness", strconv.Itoa(sum.DataCompletenessPercentage) + "%"},
		{"Quality", strconv.FormatFloat(report.DataQualityMetrics.OverallAggregationQuality, 'f', 2, 64)},
	})
	st.Render()

	if len(report.AllAccounts) == 0 {
		_, err := fmt.Fprintln(w, "no accounts found")
		return err
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	at := tablewriter.NewWriter(w)
	at.SetHeader([]string{"Account", "Bank", "Loan Type", "Balance", "Overdue", "Status", "Page"})
	at.SetAutoWrapText(false)
	for _, a := range report.AllAccounts {
		at.Append([]string{
			a.AccountNumber,
			a.BankName,
			a.LoanType,
			dash(entity.Deref(a.CurrentBalance)),
			dash(entity.Deref(a.OverdueAmount)),
			dash(entity.Deref(a.AccountStatus)),
			strconv.Itoa(a.PageNumber),
		})
	}
	at.Render()
	return nil
}

func dash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
