package constants

// ReportType classifies a report by how many bureau indicators were seen.
type ReportType string

const (
	ReportTypeDetailed ReportType = "CIBIL_DETAILED"
	ReportTypeSummary  ReportType = "CIBIL_SUMMARY"
)

// QualityLevel buckets the overall extraction score.
type QualityLevel string

const (
	QualityHigh   QualityLevel = "HIGH"   // score >= 80
	QualityMedium QualityLevel = "MEDIUM" // score >= 60
	QualityLow    QualityLevel = "LOW"
)

// QualityLevelFor maps an overall score (0..100) to its level.
func QualityLevelFor(score float64) QualityLevel {
	switch {
	case score >= 80:
		return QualityHigh
	case score >= 60:
		return QualityMedium
	default:
		return QualityLow
	}
}

// Extraction methods reported per page.
const (
	MethodPdftotext = "pdftotext"
	MethodNative    = "pdf-native"
	MethodOCR       = "pdf-ocr"
	MethodImageOnly = "image-only"
	MethodText      = "text"
	MethodPages     = "pages-json"
)

const (
	AggregationMethod  = "multi_page_comprehensive"
	ProcessingMethod   = "Enhanced CIBIL Processor"
	ReportKind         = "CIBIL"
	RecentTrendDefault = "stable"
)
