package entity

// FinancialSummary holds document-wide scalars.
// The amount totals and breakdown maps are reserved and not populated from account data.
type FinancialSummary struct {
	CibilScore            *int           `json:"cibil_score"`
	TotalAccounts         int            `json:"total_accounts"`
	TotalSanctionedAmount float64        `json:"total_sanctioned_amount"`
	TotalCurrentBalance   float64        `json:"total_current_balance"`
	TotalOverdueAmount    float64        `json:"total_overdue_amount"`
	AccountStatusSummary  map[string]int `json:"account_status_summary"`
	LoanTypeSummary       map[string]int `json:"loan_type_summary"`
	BankWiseSummary       map[string]int `json:"bank_wise_summary"`
}

// Delay bucket names.
const (
	BucketOnTime = "0"
	Bucket30     = "30"
	Bucket60     = "60"
	Bucket90     = "90"
	Bucket120    = "120+"
)

// DelayBuckets lists the bucket names in severity order.
var DelayBuckets = []string{BucketOnTime, Bucket30, Bucket60, Bucket90, Bucket120}

type PaymentSummary struct {
	DelayCategories      map[string]int `json:"delay_categories"`
	TotalDelayInstances  int            `json:"total_delay_instances"`
	PaymentBehaviorScore int            `json:"payment_behavior_score"`
	RecentPaymentTrend   string         `json:"recent_payment_trend"`
}

type EnquirySummary struct {
	TotalEnquiries        int            `json:"total_enquiries"`
	RecentEnquiries6M     int            `json:"recent_enquiries_6m"`
	RecentEnquiries12M    int            `json:"recent_enquiries_12m"`
	EnquiryTypes          map[string]int `json:"enquiry_types"`
	EnquiringInstitutions []string       `json:"enquiring_institutions"`
}

type QualityMetrics struct {
	AggregationCompleteness     float64 `json:"aggregation_completeness"`
	DataConsistencyScore        float64 `json:"data_consistency_score"`
	CrossPageValidationScore    float64 `json:"cross_page_validation_score"`
	AccountConsolidationQuality float64 `json:"account_consolidation_quality"`
	OverallAggregationQuality   float64 `json:"overall_aggregation_quality"`
}

type ReportSummary struct {
	CibilScore                 *int     `json:"cibil_score"`
	TotalAccounts              int      `json:"total_accounts"`
	TotalActiveAccounts        int      `json:"total_active_accounts"`
	TotalClosedAccounts        int      `json:"total_closed_accounts"`
	TotalSettledAccounts       int      `json:"total_settled_accounts"`
	PaymentDelayInstances      int      `json:"payment_delay_instances"`
	PaymentBehaviorScore       int      `json:"payment_behavior_score"`
	TotalEnquiries             int      `json:"total_enquiries"`
	UniqueBanks                int      `json:"unique_banks"`
	LoanTypes                  []string `json:"loan_types"`
	AccountsWithOverdue        int      `json:"accounts_with_overdue"`
	DataCompletenessPercentage int      `json:"data_completeness_percentage"`
}

type ProcessingMetadata struct {
	TotalPagesProcessed int      `json:"total_pages_processed"`
	SectionsIdentified  int      `json:"sections_identified"`
	SectionTypesFound   []string `json:"section_types_found"`
	ProcessingTimestamp string   `json:"processing_timestamp"`
	AggregationMethod   string   `json:"aggregation_method"`
	DataSources         []string `json:"data_sources"`
}

// AggregatedReport is the serialization boundary of one aggregation run.
type AggregatedReport struct {
	ReportSummary             ReportSummary      `json:"report_summary"`
	AllAccounts               []AccountRecord    `json:"all_accounts"`
	ConsolidatedFinancialData FinancialSummary   `json:"consolidated_financial_data"`
	PaymentHistorySummary     PaymentSummary     `json:"payment_history_summary"`
	EnquirySummary            EnquirySummary     `json:"enquiry_summary"`
	DataQualityMetrics        QualityMetrics     `json:"data_quality_metrics"`
	ProcessingMetadata        ProcessingMetadata `json:"processing_metadata"`
}
