// Package aggregate folds consolidated accounts and classified sections into the
// document-wide summaries of a report.
package aggregate

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/joseph-ayodele/cibil-aggregator/constants"
	"github.com/joseph-ayodele/cibil-aggregator/internal/core/catalog"
	"github.com/joseph-ayodele/cibil-aggregator/internal/core/page"
	"github.com/joseph-ayodele/cibil-aggregator/internal/core/section"
	"github.com/joseph-ayodele/cibil-aggregator/internal/entity"
)

// DocumentText joins the text of every page with single spaces.
func DocumentText(pages []entity.PageRecord) string {
	parts := make([]string, len(pages))
	for i, p := range pages {
		parts[i] = p.Text
	}
	return strings.Join(parts, " ")
}

// Financial extracts the bureau score and the reported account count from the whole
// document. Amount totals and breakdowns stay at their zero values.
func Financial(pages []entity.PageRecord) entity.FinancialSummary {
	all := DocumentText(pages)
	fin := entity.FinancialSummary{
		AccountStatusSummary: map[string]int{},
		LoanTypeSummary:      map[string]int{},
		BankWiseSummary:      map[string]int{},
	}
	if m, ok := catalog.CibilScore.LookupValid(all, page.ValidScore); ok {
		score, _ := strconv.Atoi(m.Value)
		fin.CibilScore = &score
	}
	if v, ok := catalog.TotalAccounts.First(all); ok {
		if n, ok := parseCount(v); ok {
			fin.TotalAccounts = n
		}
	}
	return fin
}

// parseCount reads a stated count. Values that do not fit an int are treated as absent.
func parseCount(v string) (int, bool) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Payment buckets the delinquency tokens of all payment_history sections, or of the whole
// document when those sections hold none.
func Payment(sections []entity.Section, pages []entity.PageRecord) entity.PaymentSummary {
	var tokens []string
	for _, s := range section.OfType(sections, constants.SectionPaymentHistory) {
		tokens = append(tokens, catalog.FindAllValues(catalog.DelinquencyToken, s.Content)...)
	}
	if len(tokens) == 0 {
		tokens = catalog.FindAllValues(catalog.DelinquencyToken, DocumentText(pages))
	}
	return BucketTokens(tokens)
}

// BucketTokens counts tokens per delay bucket and scores the on-time share.
func BucketTokens(tokens []string) entity.PaymentSummary {
	sum := entity.PaymentSummary{
		DelayCategories:    make(map[string]int, len(entity.DelayBuckets)),
		RecentPaymentTrend: constants.RecentTrendDefault,
	}
	for _, b := range entity.DelayBuckets {
		sum.DelayCategories[b] = 0
	}
	for _, tok := range tokens {
		b := Bucket(tok)
		sum.DelayCategories[b]++
		if b != entity.BucketOnTime {
			sum.TotalDelayInstances++
		}
	}
	if len(tokens) > 0 {
		sum.PaymentBehaviorScore = int(math.Round(100 * float64(sum.DelayCategories[entity.BucketOnTime]) / float64(len(tokens))))
	}
	return sum
}

// Bucket maps a delinquency token to its delay bucket.
func Bucket(token string) string {
	switch token {
	case "0":
		return entity.BucketOnTime
	case "30":
		return entity.Bucket30
	case "60":
		return entity.Bucket60
	case "90":
		return entity.Bucket90
	default:
		return entity.Bucket120
	}
}

// Enquiry takes the enquiry total from the first enquiry section that states one and
// collects institution names across all of them.
func Enquiry(sections []entity.Section) entity.EnquirySummary {
	enq := entity.EnquirySummary{
		EnquiryTypes:          map[string]int{},
		EnquiringInstitutions: []string{},
	}
	found := false
	seen := map[string]bool{}
	for _, s := range section.OfType(sections, constants.SectionEnquirySummary) {
		if !found {
			if v, ok := catalog.TotalEnquiries.First(s.Content); ok {
				if n, ok := parseCount(v); ok {
					enq.TotalEnquiries = n
					found = true
				}
			}
		}
		for _, name := range catalog.FindAllValues(catalog.Institution, s.Content) {
			name = strings.Join(strings.Fields(name), " ")
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			enq.EnquiringInstitutions = append(enq.EnquiringInstitutions, name)
		}
	}
	return enq
}

// Quality computes the aggregation ratios. Every field is in [0,1].
func Quality(pages []entity.PageRecord, accounts []entity.AccountRecord, fin entity.FinancialSummary) entity.QualityMetrics {
	var q entity.QualityMetrics

	found := 0
	if fin.CibilScore != nil {
		found++
	}
	if len(accounts) > 0 {
		found++
	}
	if fin.TotalAccounts > 0 {
		found++
	}
	q.AggregationCompleteness = float64(found) / 3

	if n := len(accounts); n > 0 {
		complete := 0
		for _, a := range accounts {
			if a.Complete() {
				complete++
			}
		}
		q.AccountConsolidationQuality = float64(complete) / float64(n)
	}

	if a, b := fin.TotalAccounts, len(accounts); a > 0 && b > 0 {
		q.DataConsistencyScore = float64(min(a, b)) / float64(max(a, b))
	}

	if len(pages) > 0 {
		contributing := map[int]bool{}
		for _, a := range accounts {
			contributing[a.PageNumber] = true
		}
		hits := 0
		for _, p := range pages {
			if contributing[p.PageNumber] {
				hits++
			}
		}
		q.CrossPageValidationScore = float64(hits) / float64(len(pages))
	}

	q.OverallAggregationQuality = 0.4*q.AggregationCompleteness + 0.6*q.AccountConsolidationQuality
	return q
}

// Summary composes the top-level report summary.
func Summary(accounts []entity.AccountRecord, fin entity.FinancialSummary, pay entity.PaymentSummary, enq entity.EnquirySummary) entity.ReportSummary {
	sum := entity.ReportSummary{
		CibilScore:            fin.CibilScore,
		TotalAccounts:         len(accounts),
		PaymentDelayInstances: pay.TotalDelayInstances,
		PaymentBehaviorScore:  pay.PaymentBehaviorScore,
		TotalEnquiries:        enq.TotalEnquiries,
		LoanTypes:             []string{},
	}
	banks := map[string]bool{}
	loanTypes := map[string]bool{}
	for _, a := range accounts {
		status := strings.ToLower(entity.Deref(a.AccountStatus))
		if strings.Contains(status, "active") {
			sum.TotalActiveAccounts++
		}
		if strings.Contains(status, "closed") {
			sum.TotalClosedAccounts++
		}
		if strings.Contains(status, "settled") {
			sum.TotalSettledAccounts++
		}
		if a.BankName != "" {
			banks[a.BankName] = true
		}
		if a.LoanType != "" && !loanTypes[a.LoanType] {
			loanTypes[a.LoanType] = true
			sum.LoanTypes = append(sum.LoanTypes, a.LoanType)
		}
		if NonZeroAmount(entity.Deref(a.OverdueAmount)) {
			sum.AccountsWithOverdue++
		}
	}
	sum.UniqueBanks = len(banks)
	sum.DataCompletenessPercentage = percent(fin.TotalAccounts, max(len(accounts), 1))
	return sum
}

// percent rounds 100*num/den, saturating at math.MaxInt instead of overflowing.
func percent(num, den int) int {
	p := math.Round(100 * float64(num) / float64(den))
	if p >= math.MaxInt {
		return math.MaxInt
	}
	return int(p)
}

// NonZeroAmount reports whether an extracted amount literal holds a nonzero digit.
func NonZeroAmount(v string) bool {
	return strings.ContainsAny(v, "123456789")
}

// Metadata describes one aggregation run.
func Metadata(pages []entity.PageRecord, sections []entity.Section, now time.Time) entity.ProcessingMetadata {
	sources := make([]string, len(pages))
	for i, p := range pages {
		sources[i] = "page_" + strconv.Itoa(p.PageNumber)
	}
	return entity.ProcessingMetadata{
		TotalPagesProcessed: len(pages),
		SectionsIdentified:  len(sections),
		SectionTypesFound:   section.TypesFound(sections),
		ProcessingTimestamp: now.Format(time.RFC3339),
		AggregationMethod:   constants.AggregationMethod,
		DataSources:         sources,
	}
}

// Report assembles the aggregated report from already consolidated accounts.
func Report(pages []entity.PageRecord, sections []entity.Section, accounts []entity.AccountRecord, now time.Time) *entity.AggregatedReport {
	if accounts == nil {
		accounts = []entity.AccountRecord{}
	}
	fin := Financial(pages)
	pay := Payment(sections, pages)
	enq := Enquiry(sections)
	return &entity.AggregatedReport{
		ReportSummary:             Summary(accounts, fin, pay, enq),
		AllAccounts:               accounts,
		ConsolidatedFinancialData: fin,
		PaymentHistorySummary:     pay,
		EnquirySummary:            enq,
		DataQualityMetrics:        Quality(pages, accounts, fin),
		ProcessingMetadata:        Metadata(pages, sections, now),
	}
}
