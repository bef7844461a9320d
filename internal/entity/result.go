package entity

import (
	"time"

	"github.com/google/uuid"
)

// ProcessingResult wraps an aggregated report with page-level diagnostics.
type ProcessingResult struct {
	ReportType        string            `json:"report_type"`
	ProcessingMethod  string            `json:"processing_method"`
	PagesData         []PageSummary     `json:"pages_data"`
	ReportStructure   ReportStructure   `json:"report_structure"`
	AggregatedData    *AggregatedReport `json:"aggregated_data"`
	ExtractionQuality ExtractionQuality `json:"extraction_quality"`
	Recommendations   []string          `json:"recommendations"`
	Legacy            LegacyFields      `json:"legacy"`
}

// PageSummary is a PageRecord without its text.
type PageSummary struct {
	PageNumber       int               `json:"page_number"`
	TextLength       int               `json:"text_length"`
	HasText          bool              `json:"has_text"`
	ExtractionMethod string            `json:"extraction_method"`
	Confidence       float64           `json:"confidence"`
	Indicators       []string          `json:"cibil_indicators"`
	AccountData      PageAccountData   `json:"account_data"`
	FinancialData    PageFinancialData `json:"financial_data"`
}

type ReportStructure struct {
	TotalPages    int           `json:"total_pages"`
	PagesWithText int           `json:"pages_with_text"`
	ReportType    string        `json:"report_type"`
	ReportDate    *string       `json:"report_date"`
	ApplicantInfo ApplicantInfo `json:"applicant_info"`
}

type ApplicantInfo struct {
	Name string `json:"name,omitempty"`
	PAN  string `json:"pan,omitempty"`
}

type ExtractionQuality struct {
	OverallScore      float64 `json:"overall_score"`
	AverageConfidence float64 `json:"average_confidence"`
	DataCompleteness  float64 `json:"data_completeness"`
	PagesProcessed    int     `json:"pages_processed"`
	PagesWithText     int     `json:"pages_with_text"`
	TextCoverage      float64 `json:"text_coverage"`
	QualityLevel      string  `json:"quality_level"`
}

// LegacyFields keeps the flat lists older consumers read.
type LegacyFields struct {
	AllAccountNumbers []string `json:"all_account_numbers"`
	AllBankNames      []string `json:"all_bank_names"`
	AllLoanTypes      []string `json:"all_loan_types"`
	AllCibilScores    []string `json:"all_cibil_scores"`
}

// StoredReport is a persisted processing result.
type StoredReport struct {
	ID             uuid.UUID         `json:"id"`
	Source         string            `json:"source"`
	CreatedAt      time.Time         `json:"created_at"`
	CibilScore     *int              `json:"cibil_score"`
	TotalAccounts  int               `json:"total_accounts"`
	OverallQuality float64           `json:"overall_quality"`
	Result         *ProcessingResult `json:"result,omitempty"`
}

// AccountRef points at one account row of a stored report.
type AccountRef struct {
	ReportID      uuid.UUID `json:"report_id"`
	Source        string    `json:"source"`
	CreatedAt     time.Time `json:"created_at"`
	AccountNumber string    `json:"account_number"`
	BankName      string    `json:"bank_name"`
	AccountStatus string    `json:"account_status"`
	PageNumber    int       `json:"page_number"`
}
