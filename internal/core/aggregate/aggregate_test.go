package aggregate

import (
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/joseph-ayodele/cibil-aggregator/constants"
	"github.com/joseph-ayodele/cibil-aggregator/internal/entity"
)

func pages(texts ...string) []entity.PageRecord {
	out := make([]entity.PageRecord, len(texts))
	for i, t := range texts {
		out[i] = entity.PageRecord{PageNumber: i + 1, Text: t, HasText: t != ""}
	}
	return out
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestPaymentFromSections(t *testing.T) {
	sections := []entity.Section{{
		SectionType: constants.SectionPaymentHistory,
		PageNumber:  1,
		Content:     "Payment History\n0 0 30 0 60 XXX",
	}}
	got := Payment(sections, pages("ignored 90 90"))
	want := entity.PaymentSummary{
		DelayCategories:      map[string]int{"0": 3, "30": 1, "60": 1, "90": 0, "120+": 1},
		TotalDelayInstances:  3,
		PaymentBehaviorScore: 50,
		RecentPaymentTrend:   "stable",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("payment summary mismatch (-want +got):\n%s", diff)
	}
}

func TestPaymentFallsBackToDocument(t *testing.T) {
	got := Payment(nil, pages("0 30", "STD"))
	if got.DelayCategories["0"] != 1 || got.DelayCategories["30"] != 1 || got.DelayCategories["120+"] != 1 {
		t.Errorf("got %v", got.DelayCategories)
	}
	if got.PaymentBehaviorScore != 33 {
		t.Errorf("score = %d, want 33", got.PaymentBehaviorScore)
	}
}

func TestPaymentWithoutTokens(t *testing.T) {
	got := Payment(nil, pages("nothing to see"))
	if got.PaymentBehaviorScore != 0 || got.TotalDelayInstances != 0 {
		t.Errorf("got %+v", got)
	}
}

func TestBucketSums(t *testing.T) {
	inputs := [][]string{
		nil,
		{"0"},
		{"30", "60", "90", "120", "150", "180"},
		{"XXX", "STD", "SMA", "SUB", "DBT", "LSS", "0", "0"},
	}
	for _, tokens := range inputs {
		got := BucketTokens(tokens)
		total := 0
		for _, n := range got.DelayCategories {
			total += n
		}
		if total != len(tokens) {
			t.Errorf("%v: buckets sum to %d, want %d", tokens, total, len(tokens))
		}
		if got.TotalDelayInstances != total-got.DelayCategories["0"] {
			t.Errorf("%v: delay instances %d, want %d", tokens, got.TotalDelayInstances, total-got.DelayCategories["0"])
		}
		if got.PaymentBehaviorScore < 0 || got.PaymentBehaviorScore > 100 {
			t.Errorf("%v: score %d out of range", tokens, got.PaymentBehaviorScore)
		}
	}
}

func TestFinancial(t *testing.T) {
	tests := []struct {
		name  string
		texts []string
		score *int
		total int
	}{
		{"valid score", []string{"CIBIL Score: 742"}, intPtr(742), 0},
		{"out of range score", []string{"Score: 999"}, nil, 0},
		{"total accounts across pages", []string{"Report", "Total Accounts: 7"}, nil, 7},
		{"count beyond int range is absent", []string{"Total Accounts: 99999999999999999999"}, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Financial(pages(tt.texts...))
			if diff := cmp.Diff(tt.score, got.CibilScore); diff != "" {
				t.Errorf("score mismatch (-want +got):\n%s", diff)
			}
			if got.TotalAccounts != tt.total {
				t.Errorf("total accounts = %d, want %d", got.TotalAccounts, tt.total)
			}
			if got.TotalSanctionedAmount != 0 || len(got.BankWiseSummary) != 0 {
				t.Errorf("reserved fields populated: %+v", got)
			}
		})
	}
}

func intPtr(n int) *int { return &n }

func TestEnquiry(t *testing.T) {
	sections := []entity.Section{
		{SectionType: constants.SectionEnquirySummary, PageNumber: 1, Content: "Enquiry Summary\nInstitution: HDFC Bank\nTotal Enquiries: 3"},
		{SectionType: constants.SectionAccountDetails, PageNumber: 1, Content: "Total Enquiries: 9 Bank: OTHER BANK"},
		{SectionType: constants.SectionEnquirySummary, PageNumber: 2, Content: "Total Enquiries: 5\nInstitution: HDFC  Bank\nDate 01/02/2023\nNBFC: AXIS FINANCE LTD"},
	}
	got := Enquiry(sections)
	if got.TotalEnquiries != 3 {
		t.Errorf("total = %d, want 3", got.TotalEnquiries)
	}
	if diff := cmp.Diff([]string{"HDFC Bank", "AXIS FINANCE LTD"}, got.EnquiringInstitutions); diff != "" {
		t.Errorf("institutions mismatch (-want +got):\n%s", diff)
	}
}

func TestQuality(t *testing.T) {
	accounts := []entity.AccountRecord{
		{AccountNumber: "AB1234567890", BankName: "ABC BANK", LoanType: "home loan", PageNumber: 1},
		{AccountNumber: "CD1234567890", BankName: "ABC BANK", PageNumber: 1},
	}
	score := 742
	got := Quality(pages("a", "b"), accounts, entity.FinancialSummary{CibilScore: &score, TotalAccounts: 4})
	want := entity.QualityMetrics{
		AggregationCompleteness:     1,
		DataConsistencyScore:        0.5,
		CrossPageValidationScore:    0.5,
		AccountConsolidationQuality: 0.5,
		OverallAggregationQuality:   0.7,
	}
	if diff := cmp.Diff(want, got, cmp.Comparer(approx)); diff != "" {
		t.Errorf("quality mismatch (-want +got):\n%s", diff)
	}

	empty := Quality(nil, nil, entity.FinancialSummary{})
	if diff := cmp.Diff(entity.QualityMetrics{}, empty); diff != "" {
		t.Errorf("empty quality mismatch (-want +got):\n%s", diff)
	}
}

func TestSummary(t *testing.T) {
	accounts := []entity.AccountRecord{
		{AccountNumber: "A1", BankName: "ABC BANK", LoanType: "home loan", AccountStatus: entity.Str("Active - Revolving"), OverdueAmount: entity.Str("0")},
		{AccountNumber: "A2", BankName: "ABC BANK", LoanType: "credit card", AccountStatus: entity.Str("closed"), OverdueAmount: entity.Str("1,000")},
		{AccountNumber: "A3", BankName: "XYZ BANK", LoanType: "home loan", AccountStatus: entity.Str("SETTLED"), OverdueAmount: entity.Str("0.00")},
		{AccountNumber: "A4"},
	}
	score := 700
	fin := entity.FinancialSummary{CibilScore: &score, TotalAccounts: 3}
	pay := entity.PaymentSummary{TotalDelayInstances: 2, PaymentBehaviorScore: 80}
	enq := entity.EnquirySummary{TotalEnquiries: 5}

	got := Summary(accounts, fin, pay, enq)
	want := entity.ReportSummary{
		CibilScore:                 &score,
		TotalAccounts:              4,
		TotalActiveAccounts:        1,
		TotalClosedAccounts:        1,
		TotalSettledAccounts:       1,
		PaymentDelayInstances:      2,
		PaymentBehaviorScore:       80,
		TotalEnquiries:             5,
		UniqueBanks:                2,
		LoanTypes:                  []string{"home loan", "credit card"},
		AccountsWithOverdue:        1,
		DataCompletenessPercentage: 75,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
}

func TestSummaryCompletenessIsUnclamped(t *testing.T) {
	got := Summary(nil, entity.FinancialSummary{TotalAccounts: 9}, entity.PaymentSummary{}, entity.EnquirySummary{})
	if got.DataCompletenessPercentage != 900 {
		t.Errorf("completeness = %d, want 900", got.DataCompletenessPercentage)
	}
}

func TestSummaryCompletenessSaturates(t *testing.T) {
	fin := Financial(pages("Total Accounts: 999999999999999999"))
	if fin.TotalAccounts != 999999999999999999 {
		t.Fatalf("total accounts = %d", fin.TotalAccounts)
	}
	got := Summary(nil, fin, entity.PaymentSummary{}, entity.EnquirySummary{})
	if got.DataCompletenessPercentage != math.MaxInt {
		t.Errorf("completeness = %d, want %d", got.DataCompletenessPercentage, math.MaxInt)
	}
}

func TestEnquiryIgnoresOutOfRangeTotal(t *testing.T) {
	sections := []entity.Section{
		{SectionType: constants.SectionEnquirySummary, PageNumber: 1, Content: "Enquiry Summary\nTotal Enquiries: 99999999999999999999"},
		{SectionType: constants.SectionEnquirySummary, PageNumber: 2, Content: "Enquiry Summary\nTotal Enquiries: 4"},
	}
	if got := Enquiry(sections).TotalEnquiries; got != 4 {
		t.Errorf("total enquiries = %d, want 4", got)
	}
}

func TestMetadata(t *testing.T) {
	now := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	sections := []entity.Section{
		{SectionType: constants.SectionEnquirySummary, PageNumber: 2},
		{SectionType: constants.SectionSummary, PageNumber: 1},
	}
	got := Metadata(pages("a", "b"), sections, now)
	want := entity.ProcessingMetadata{
		TotalPagesProcessed: 2,
		SectionsIdentified:  2,
		SectionTypesFound:   []string{"summary", "enquiry_summary"},
		ProcessingTimestamp: "2024-05-06T07:08:09Z",
		AggregationMethod:   "multi_page_comprehensive",
		DataSources:         []string{"page_1", "page_2"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("metadata mismatch (-want +got):\n%s", diff)
	}
}
