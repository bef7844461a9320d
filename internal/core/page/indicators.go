package page

import (
	"strings"
	"unicode/utf8"

	"github.com/joseph-ayodele/cibil-aggregator/internal/core/catalog"
	"github.com/joseph-ayodele/cibil-aggregator/internal/entity"
)

// DetectIndicators returns the identifiers of every bureau phrase and table header found in text.
func DetectIndicators(text string) []string {
	lower := strings.ToLower(text)
	out := []string{}
	for _, n := range catalog.Indicators {
		if n.Re.MatchString(lower) {
			out = append(out, n.Name)
		}
	}
	for _, n := range catalog.TableHeaders {
		if n.Re.MatchString(lower) {
			out = append(out, n.Name)
		}
	}
	return out
}

// Confidence scores a normalized page in [0,1]: a length tier, up to 0.4 for indicators,
// and flat bonuses for account numbers, bank names and loan types seen on the page.
func Confidence(text string, indicators []string, facts entity.PageAccountData) float64 {
	var c float64
	switch n := utf8.RuneCountInString(text); {
	case n > 100:
		c += 0.3
	case n > 50:
		c += 0.2
	case n > 10:
		c += 0.1
	}
	c += min(0.1*float64(len(indicators)), 0.4)
	if len(facts.AccountNumbers) > 0 {
		c += 0.2
	}
	if len(facts.BankNames) > 0 {
		c += 0.1
	}
	if len(facts.LoanTypes) > 0 {
		c += 0.1
	}
	return clamp01(c)
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
