package section

import (
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/joseph-ayodele/cibil-aggregator/constants"
	"github.com/joseph-ayodele/cibil-aggregator/internal/entity"
)

func TestClassifyPage(t *testing.T) {
	text := "Account Details\nAccount No: AB1234567890 Bank: ABC BANK LTD Loan Type: personal loan Status: active"
	got := ClassifyPage(entity.PageRecord{PageNumber: 1, Text: text})
	want := []entity.Section{{
		SectionType: constants.SectionAccountDetails,
		PageNumber:  1,
		Content:     text,
		Confidence:  0.6,
	}}
	opt := cmp.Comparer(func(a, b float64) bool { return math.Abs(a-b) < 1e-9 })
	if diff := cmp.Diff(want, got, opt); diff != "" {
		t.Errorf("sections mismatch (-want +got):\n%s", diff)
	}
}

func TestClassifyEmptyPage(t *testing.T) {
	if got := Classify([]entity.PageRecord{{PageNumber: 1}}); len(got) != 0 {
		t.Errorf("got %d sections for an empty page", len(got))
	}
}

func TestClassifyOneSectionPerTypePerPage(t *testing.T) {
	text := "Payment History\n0 0 30\nRepayment History\n60 90"
	got := ClassifyPage(entity.PageRecord{PageNumber: 2, Text: text})
	if len(got) != 1 || got[0].SectionType != constants.SectionPaymentHistory {
		t.Fatalf("got %+v", got)
	}
}

func TestSpanStopsAtNextSectionKeyword(t *testing.T) {
	body := "Payment History " + strings.Repeat("x ", 60)
	text := body + "Enquiry Summary follows"
	if got, want := Span(text, 0), strings.TrimSpace(body); got != want {
		t.Errorf("Span = %q, want %q", got, want)
	}
}

func TestSpanFallsBackToPageMarker(t *testing.T) {
	body := "Account Details " + strings.Repeat("y ", 60)
	text := body + "Page 2 more"
	if got, want := Span(text, 0), strings.TrimSpace(body); got != want {
		t.Errorf("Span = %q, want %q", got, want)
	}
}

func TestSpanShortTextRunsToEnd(t *testing.T) {
	text := "Enquiry Summary\nTotal Enquiries: 3"
	if got := Span(text, 0); got != text {
		t.Errorf("Span = %q, want whole text", got)
	}
}

func TestConfidence(t *testing.T) {
	tests := []struct {
		name    string
		content string
		st      constants.SectionType
		want    float64
	}{
		{"empty", "", constants.SectionSummary, 0},
		{"base only", "nothing relevant", constants.SectionSummary, 0.3},
		{"long with every keyword", "score total summary overview " + strings.Repeat("z", 200), constants.SectionSummary, 0.9},
		{"medium with two keywords", "payment history " + strings.Repeat("z", 90), constants.SectionPaymentHistory, 0.6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Confidence(tt.content, tt.st); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Confidence = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTypesFoundCanonicalOrder(t *testing.T) {
	sections := []entity.Section{
		{SectionType: constants.SectionPaymentHistory},
		{SectionType: constants.SectionSummary},
		{SectionType: constants.SectionPaymentHistory},
	}
	want := []string{"summary", "payment_history"}
	if diff := cmp.Diff(want, TypesFound(sections)); diff != "" {
		t.Errorf("types mismatch (-want +got):\n%s", diff)
	}
}
