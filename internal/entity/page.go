package entity

import "github.com/joseph-ayodele/cibil-aggregator/constants"

// PageInput is one page of already-extracted text as supplied by a page source.
type PageInput struct {
	PageNumber       int    `json:"page_number"`
	Text             string `json:"text"`
	ExtractionMethod string `json:"extraction_method,omitempty"`
}

// PageRecord is a normalized page. It is not mutated after analysis.
type PageRecord struct {
	PageNumber       int               `json:"page_number"`
	Text             string            `json:"text"`
	HasText          bool              `json:"has_text"`
	Indicators       []string          `json:"indicators"`
	Confidence       float64           `json:"confidence"`
	ExtractionMethod string            `json:"extraction_method"`
	AccountData      PageAccountData   `json:"account_data"`
	FinancialData    PageFinancialData `json:"financial_data"`
}

// PageAccountData holds account hints found anywhere on a page.
type PageAccountData struct {
	AccountNumbers  []string `json:"account_numbers"`
	BankNames       []string `json:"bank_names"`
	LoanTypes       []string `json:"loan_types"`
	AccountStatuses []string `json:"account_statuses"`
}

// PageFinancialData holds financial hints found anywhere on a page.
type PageFinancialData struct {
	Amounts        []string `json:"amounts"`
	CibilScores    []string `json:"cibil_scores"`
	Dates          []string `json:"dates"`
	PaymentHistory []string `json:"payment_history"`
}

// Section is a classified span of one page.
type Section struct {
	SectionType constants.SectionType `json:"section_type"`
	PageNumber  int                   `json:"page_number"`
	Content     string                `json:"content"`
	Confidence  float64               `json:"confidence"`
}
