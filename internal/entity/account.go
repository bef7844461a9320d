package entity

// AccountRecord is one consolidated credit account.
// Optional fields are nil when no pattern matched.
type AccountRecord struct {
	AccountNumber    string   `json:"account_number"`
	BankName         string   `json:"bank_name"`
	LoanType         string   `json:"loan_type"`
	SanctionedAmount *string  `json:"sanctioned_amount"`
	CurrentBalance   *string  `json:"current_balance"`
	OverdueAmount    *string  `json:"overdue_amount"`
	AccountStatus    *string  `json:"account_status"`
	OpeningDate      *string  `json:"opening_date"`
	LastPaymentDate  *string  `json:"last_payment_date"`
	PaymentHistory   []string `json:"payment_history"`
	PageNumber       int      `json:"page_number"`
}

// Complete reports whether the identity fields are all populated.
func (a AccountRecord) Complete() bool {
	return a.AccountNumber != "" && a.BankName != "" && a.LoanType != ""
}

// Str returns a pointer to s.
func Str(s string) *string { return &s }

// Deref returns the pointed-to string or "".
func Deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
