package constants

import (
	"strings"
)

type SectionType string

const (
	SectionSummary        SectionType = "summary"
	SectionAccountDetails SectionType = "account_details"
	SectionEnquirySummary SectionType = "enquiry_summary"
	SectionPaymentHistory SectionType = "payment_history"
)

// allSectionTypes is also the classification order.
var allSectionTypes = []SectionType{
	SectionSummary,
	SectionAccountDetails,
	SectionEnquirySummary,
	SectionPaymentHistory,
}

// SectionTypes returns the section types in classification order.
func SectionTypes() []SectionType {
	out := make([]SectionType, len(allSectionTypes))
	copy(out, allSectionTypes)
	return out
}

func AsStringSlice() []string {
	result := make([]string, len(allSectionTypes))
	for i, st := range allSectionTypes {
		result[i] = string(st)
	}
	return result
}

// Canonicalize maps loose spellings ("Account Details", "enquiries") onto a section type.
func Canonicalize(input string) (SectionType, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return "", false
	}
	normalized = strings.NewReplacer(" ", "_", "-", "_").Replace(normalized)

	synonyms := map[string]SectionType{
		"accounts":          SectionAccountDetails,
		"account_summary":   SectionAccountDetails,
		"enquiries":         SectionEnquirySummary,
		"inquiries":         SectionEnquirySummary,
		"inquiry_summary":   SectionEnquirySummary,
		"payments":          SectionPaymentHistory,
		"repayment_history": SectionPaymentHistory,
		"credit_summary":    SectionSummary,
	}
	if st, ok := synonyms[normalized]; ok {
		return st, true
	}
	for _, st := range allSectionTypes {
		if normalized == string(st) {
			return st, true
		}
	}
	return "", false
}

// SectionKeywords is the per-type vocabulary used for section confidence.
var SectionKeywords = map[SectionType][]string{
	SectionSummary:        {"score", "total", "summary", "overview"},
	SectionAccountDetails: {"account", "loan", "bank", "amount"},
	SectionEnquirySummary: {"enquiry", "inquiry", "recent", "last"},
	SectionPaymentHistory: {"payment", "history", "months", "delay"},
}
