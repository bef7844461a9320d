package page

import (
	"strconv"
	"strings"

	"github.com/joseph-ayodele/cibil-aggregator/internal/core/catalog"
	"github.com/joseph-ayodele/cibil-aggregator/internal/entity"
)

// AccountFacts collects account hints anywhere on a page.
func AccountFacts(text string) entity.PageAccountData {
	facts := entity.PageAccountData{
		AccountNumbers:  []string{},
		BankNames:       []string{},
		LoanTypes:       []string{},
		AccountStatuses: []string{},
	}
	for _, tok := range catalog.PageAccountToken.FindAllString(text, -1) {
		if strings.ContainsAny(tok, "0123456789") {
			facts.AccountNumbers = append(facts.AccountNumbers, tok)
		}
	}
	facts.BankNames = unique(trimAll(catalog.FindAllValues(catalog.PageBankName, text)))

	lower := strings.ToLower(text)
	for _, lt := range catalog.LoanTypeKeywords {
		if strings.Contains(lower, lt) {
			facts.LoanTypes = append(facts.LoanTypes, lt)
		}
	}
	for _, st := range catalog.StatusKeywords {
		if strings.Contains(lower, st) {
			facts.AccountStatuses = append(facts.AccountStatuses, st)
		}
	}
	return facts
}

// FinancialFacts collects amounts, plausible scores, dates and delinquency codes on a page.
func FinancialFacts(text string) entity.PageFinancialData {
	facts := entity.PageFinancialData{
		Amounts:        catalog.PageAmounts.FindAll(text),
		CibilScores:    []string{},
		Dates:          catalog.PageDates.FindAll(text),
		PaymentHistory: []string{},
	}
	if facts.Amounts == nil {
		facts.Amounts = []string{}
	}
	if facts.Dates == nil {
		facts.Dates = []string{}
	}
	for _, s := range unique(catalog.PageScores.FindAll(text)) {
		if ValidScore(s) {
			facts.CibilScores = append(facts.CibilScores, s)
		}
	}
	seen := map[string]bool{}
	for _, tok := range catalog.FindAllValues(catalog.DelinquencyToken, text) {
		if !seen[tok] {
			seen[tok] = true
			facts.PaymentHistory = append(facts.PaymentHistory, tok)
		}
	}
	return facts
}

// ValidScore reports whether s is a bureau score in [300,900].
func ValidScore(s string) bool {
	n, err := strconv.Atoi(s)
	return err == nil && n >= 300 && n <= 900
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, strings.Join(strings.Fields(s), " "))
	}
	return out
}

func unique(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok || s == "" {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
