// Package structure describes a processed report as a whole: its layout, how well its
// text was extracted and what a reviewer should look at.
package structure

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/cibil-aggregator/constants"
	"github.com/joseph-ayodele/cibil-aggregator/internal/core/catalog"
	"github.com/joseph-ayodele/cibil-aggregator/internal/entity"
)

// detailedIndicatorCount is the indicator total above which a report counts as detailed.
const detailedIndicatorCount = 5

// Analyze reads the report layout. Date and applicant come from the first page.
func Analyze(pages []entity.PageRecord) entity.ReportStructure {
	rs := entity.ReportStructure{
		TotalPages: len(pages),
		ReportType: string(constants.ReportTypeSummary),
	}
	indicators := 0
	for _, p := range pages {
		if p.HasText {
			rs.PagesWithText++
		}
		indicators += len(p.Indicators)
	}
	if indicators > detailedIndicatorCount {
		rs.ReportType = string(constants.ReportTypeDetailed)
	}
	if len(pages) == 0 {
		return rs
	}

	first := pages[0]
	if dates := first.FinancialData.Dates; len(dates) > 0 {
		rs.ReportDate = entity.Str(dates[0])
	}
	if m := catalog.ApplicantName.FindStringSubmatch(first.Text); m != nil {
		rs.ApplicantInfo.Name = strings.TrimSpace(m[1])
	}
	if m := catalog.PAN.FindStringSubmatch(first.Text); m != nil {
		rs.ApplicantInfo.PAN = m[1]
	}
	return rs
}

// Legacy builds the flat lists kept for older consumers.
func Legacy(report *entity.AggregatedReport) entity.LegacyFields {
	lf := entity.LegacyFields{
		AllAccountNumbers: []string{},
		AllBankNames:      []string{},
		AllLoanTypes:      []string{},
		AllCibilScores:    []string{},
	}
	if report == nil {
		return lf
	}
	banks := map[string]bool{}
	loans := map[string]bool{}
	for _, a := range report.AllAccounts {
		if a.AccountNumber != "" {
			lf.AllAccountNumbers = append(lf.AllAccountNumbers, a.AccountNumber)
		}
		if a.BankName != "" && !banks[a.BankName] {
			banks[a.BankName] = true
			lf.AllBankNames = append(lf.AllBankNames, a.BankName)
		}
		if a.LoanType != "" && !loans[a.LoanType] {
			loans[a.LoanType] = true
			lf.AllLoanTypes = append(lf.AllLoanTypes, a.LoanType)
		}
	}
	if s := report.ConsolidatedFinancialData.CibilScore; s != nil {
		lf.AllCibilScores = append(lf.AllCibilScores, strconv.Itoa(*s))
	}
	return lf
}

// Quality scores the extraction: 60% average page confidence and 40% completeness over
// {score, account numbers, bank names, amounts}, on a 0..100 scale.
func Quality(pages []entity.PageRecord, legacy entity.LegacyFields) entity.ExtractionQuality {
	q := entity.ExtractionQuality{PagesProcessed: len(pages)}
	var confSum float64
	hasAmounts := false
	for _, p := range pages {
		confSum += p.Confidence
		if p.HasText {
			q.PagesWithText++
		}
		if len(p.FinancialData.Amounts) > 0 {
			hasAmounts = true
		}
	}
	var avg float64
	if len(pages) > 0 {
		avg = confSum / float64(len(pages))
		q.TextCoverage = round(float64(q.PagesWithText)/float64(len(pages)), 3)
	}

	found := 0
	for _, ok := range []bool{
		len(legacy.AllCibilScores) > 0,
		len(legacy.AllAccountNumbers) > 0,
		len(legacy.AllBankNames) > 0,
		hasAmounts,
	} {
		if ok {
			found++
		}
	}
	completeness := float64(found) / 4

	overall := (avg*0.6 + completeness*0.4) * 100
	q.OverallScore = round(overall, 2)
	q.AverageConfidence = round(avg, 3)
	q.DataCompleteness = round(completeness, 3)
	q.QualityLevel = string(constants.QualityLevelFor(overall))
	return q
}

// Recommendations lists follow-ups for a reviewer, most general first.
func Recommendations(pages []entity.PageRecord, q entity.ExtractionQuality) []string {
	out := []string{}
	if q.OverallScore < 70 {
		out = append(out, "Consider using OCR enhancement for better text recognition")
	}
	if q.TextCoverage < 0.8 {
		out = append(out, "Some pages may be image-based. OCR processing recommended")
	}
	if q.DataCompleteness < 0.7 {
		out = append(out, "Manual review recommended for missing data fields")
	}
	var low []string
	anyIndicators := false
	for _, p := range pages {
		if p.Confidence < 0.6 {
			low = append(low, strconv.Itoa(p.PageNumber))
		}
		if len(p.Indicators) > 0 {
			anyIndicators = true
		}
	}
	if len(low) > 0 {
		out = append(out, fmt.Sprintf("Review pages [%s] for potential extraction issues", strings.Join(low, ", ")))
	}
	if !anyIndicators {
		out = append(out, "Document may not be a standard CIBIL report format")
	}
	return out
}

func round(f float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(f*p) / p
}
