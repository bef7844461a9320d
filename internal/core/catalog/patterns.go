package catalog

import (
	"regexp"

	"github.com/joseph-ayodele/cibil-aggregator/constants"
)

const (
	amountTail = `\s*(?:amount)?\s*:?\s*(?:rs\.?\s*|₹\s*)?([₹\d,]+(?:\.\d{2})?)`
	dateValue  = `(\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4})`
	bankTail   = `([A-Z][A-Za-z\s&]+(?:bank|financial|nbfc|ltd|limited))`
)

// Indicators are the bureau keyword phrases looked for on every page (lowercased text).
var Indicators = []Named{
	{"cibil", regexp.MustCompile(`cibil\s*(?:trans\s*union)?`)},
	{"credit_information_bureau", regexp.MustCompile(`credit\s*information\s*bureau`)},
	{"consumer_credit_report", regexp.MustCompile(`consumer\s*credit\s*report`)},
	{"credit_score", regexp.MustCompile(`credit\s*score`)},
	{"account_summary", regexp.MustCompile(`account\s*summary`)},
	{"enquiry_summary", regexp.MustCompile(`enquiry\s*summary`)},
	{"payment_history", regexp.MustCompile(`payment\s*history`)},
}

// TableHeaders are header rows of the bureau's tabular layouts (lowercased text).
var TableHeaders = []Named{
	{"table:account_number|bank_name", regexp.MustCompile(`account\s*number\s*\|\s*bank\s*name`)},
	{"table:loan_type|sanctioned_amount", regexp.MustCompile(`loan\s*type\s*\|\s*sanctioned\s*amount`)},
	{"table:current_balance|overdue_amount", regexp.MustCompile(`current\s*balance\s*\|\s*overdue\s*amount`)},
	{"table:payment_status|last_payment", regexp.MustCompile(`payment\s*status\s*\|\s*last\s*payment`)},
}

// Sections maps each section type to its marker patterns.
var Sections = map[constants.SectionType]Catalog{
	constants.SectionSummary: New(
		`(?i)(?:cibil\s*)?(?:credit\s*)?(?:report\s*)?summary`,
		`(?i)consumer\s*credit\s*report`,
		`(?i)credit\s*profile\s*summary`,
	),
	constants.SectionAccountDetails: New(
		`(?i)account\s*(?:details|information|summary)`,
		`(?i)credit\s*(?:accounts|facilities)`,
		`(?i)loan\s*(?:details|accounts)`,
	),
	constants.SectionEnquirySummary: New(
		`(?i)enquir(?:y|ies)\s*summary`,
		`(?i)credit\s*enquir(?:y|ies)`,
		`(?i)recent\s*enquir(?:y|ies)`,
	),
	constants.SectionPaymentHistory: New(
		`(?i)payment\s*history`,
		`(?i)repayment\s*(?:history|track\s*record)`,
		`(?i)account\s*payment\s*history`,
	),
}

// SectionEnd ends a section span: the next major section keyword, else a page marker.
var SectionEnd = New(
	`(?i)(?:summary|details|history|enquir(?:y|ies))`,
	`(?i)(?:page\s*\d+|end\s*of\s*report)`,
)

// BlockSeparators start a new account block when they appear on a line.
var BlockSeparators = New(
	`(?i)account\s*(?:no|number)`,
	`(?i)loan\s*(?:no|number)`,
	`(?i)member\s*name`,
	`(?i)bank\s*name`,
)

// Account field catalogs.
var (
	AccountNumber = New(
		`(?i)(?:account\s*(?:no|number)|a/c\s*no)\s*:?\s*([A-Z0-9]{8,25})`,
		`(?i)loan\s*(?:no|number)\s*:?\s*([A-Z0-9]{8,25})`,
		`(?i)card\s*(?:no|number)\s*:?\s*([A-Z0-9]{8,25})`,
	)
	BankName = New(
		`(?i)(?:bank|lender|institution)\s*name\s*:?\s*`+bankTail,
		`(?i)(?:bank|lender|institution)\s*:?\s*`+bankTail,
		`(?i)member\s*name\s*:?\s*`+bankTail,
	)
	// The second loan type pattern has no group; its whole match is the value.
	LoanType = New(
		`(?i)(?:loan\s*type|account\s*type|facility\s*type)\s*:?\s*([A-Za-z\s]+)`,
		`(?i)(?:personal|home|car|auto|education|business|credit\s*card|overdraft)\s*(?:loan|account|facility)`,
	)
	SanctionedAmount = New(
		`(?i)(?:sanctioned|approved|credit\s*limit)`+amountTail,
		`(?i)(?:limit|principal)`+amountTail,
	)
	CurrentBalance = New(
		`(?i)(?:current\s*balance|outstanding)`+amountTail,
		`(?i)(?:balance|dues)`+amountTail,
	)
	OverdueAmount = New(
		`(?i)(?:overdue|past\s*due)`+amountTail,
		`(?i)(?:arrears|default)`+amountTail,
	)
	AccountStatus = New(
		`(?i)(?:account\s*status|status)\s*:?\s*(active|closed|settled|written\s*off|suit\s*filed|default)`,
		`(?i)(active|closed|settled|written\s*off|suit\s*filed|default)\s*account`,
	)
)

// Date catalogs used when enriching an account from its surrounding text.
var (
	OpeningDate = New(
		`(?i)(?:opened|opening|start)\s*(?:date)?\s*:?\s*`+dateValue,
		`(?i)(?:from|since)\s*`+dateValue,
	)
	LastPaymentDate = New(
		`(?i)(?:last\s*payment|recent\s*payment)\s*(?:date)?\s*:?\s*`+dateValue,
		`(?i)(?:paid\s*on|payment\s*on)\s*`+dateValue,
	)
)

// DelinquencyToken matches one month of payment status. Case sensitive.
var DelinquencyToken = regexp.MustCompile(`\b(0|30|60|90|120|150|180|XXX|STD|SMA|SUB|DBT|LSS)\b`)

// MaxPaymentHistory caps the tokens kept per account.
const MaxPaymentHistory = 24

// Document-wide catalogs.
var (
	CibilScore = New(
		`(?i)(?:cibil\s*)?(?:credit\s*)?score\s*:?\s*(\d{3})`,
		`(?i)(\d{3})\s*(?:cibil|credit|score)`,
		`(?i)your\s*(?:cibil\s*)?score\s*(?:is\s*)?:?\s*(\d{3})`,
	)
	TotalAccounts = New(
		`(?i)(?:total\s*)?(?:number\s*of\s*)?(?:active\s*)?(?:accounts|loans)\s*:?\s*(\d+)`,
		`(?i)(\d+)\s*(?:active\s*)?(?:accounts|loans)\s*(?:found|reported)`,
	)
	TotalEnquiries = New(
		`(?i)(?:total\s*)?(?:number\s*of\s*)?enquir(?:y|ies)\s*:?\s*(\d+)`,
		`(?i)(\d+)\s*enquir(?:y|ies)\s*(?:in|during)`,
	)
	Institution = regexp.MustCompile(`(?i)(?:bank|financial|nbfc|institution)\s*:?\s*` + bankTail)
)

// Page fact patterns.
var (
	PageAccountToken = regexp.MustCompile(`(?i)\b[A-Z0-9]{10,20}\b`)
	PageBankName     = regexp.MustCompile(`(?i)(?:bank|financial|nbfc)\s*:?\s*` + bankTail)
	PageAmounts      = New(
		`(?i)(?:rs\.?\s*|₹\s*)?(\d{1,3}(?:,\d{3})*(?:\.\d{2})?)\s*(?:cr|crore|crores)\b`,
		`(?i)(?:rs\.?\s*|₹\s*)?(\d{1,3}(?:,\d{3})*(?:\.\d{2})?)\s*(?:l|lakh|lakhs)\b`,
		`(?i)(?:rs\.?\s*|₹\s*)?(\d{1,3}(?:,\d{3})*(?:\.\d{2})?)\s*(?:k|thousand)\b`,
		`(?i)(?:rs\.?\s*|₹\s*)(\d{1,3}(?:,\d{3})*(?:\.\d{2})?)`,
	)
	PageScores = New(
		`(?i)(?:cibil\s*)?(?:credit\s*)?score\s*:?\s*(\d{3})`,
		`(?i)(\d{3})\s*(?:cibil|credit|score)`,
		`(?i)score\s*(?:is\s*)?:?\s*(\d{3})`,
	)
	PageDates = New(
		`\b\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4}\b`,
		`\b\d{4}[/\-.]\d{1,2}[/\-.]\d{1,2}\b`,
		`(?i)\b(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\s+\d{1,2},?\s+\d{4}\b`,
	)
	ApplicantName = regexp.MustCompile(`(?i)(?:name\s*:?\s*)([A-Z][A-Za-z ]+)`)
	PAN           = regexp.MustCompile(`(?i)(?:pan\s*:?\s*)([A-Z]{5}\d{4}[A-Z])`)
)

// LoanTypeKeywords and StatusKeywords are looked for verbatim on each page.
var (
	LoanTypeKeywords = []string{"personal loan", "home loan", "car loan", "credit card", "business loan", "education loan"}
	StatusKeywords   = []string{"active", "closed", "settled", "written off", "suit filed", "default"}
)
