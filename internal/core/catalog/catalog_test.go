package catalog

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/joseph-ayodele/cibil-aggregator/constants"
)

func TestLookupFirstPatternWins(t *testing.T) {
	c := New(`alpha (\d+)`, `(\d+)`)
	m, ok := c.Lookup("x 12 alpha 34")
	if !ok {
		t.Fatal("expected a match")
	}
	if m.Pattern != 0 || m.Value != "34" {
		t.Errorf("got pattern %d value %q, want pattern 0 value 34", m.Pattern, m.Value)
	}
}

func TestLookupWithoutGroupUsesWholeMatch(t *testing.T) {
	m, ok := LoanType.Lookup("this is a home loan facility")
	if !ok {
		t.Fatal("expected a match")
	}
	if m.Pattern != 1 || m.Value != "home loan" {
		t.Errorf("got pattern %d value %q", m.Pattern, m.Value)
	}
}

func TestLookupValidFallsThrough(t *testing.T) {
	in := func(s string) bool { return s != "999" }
	m, ok := CibilScore.LookupValid("Score: 999 and your score is 745", in)
	// pattern 0 yields 999 (rejected); pattern 1 needs digits before a keyword and finds none;
	// pattern 2 yields 745.
	if !ok || m.Value != "745" || m.Pattern != 2 {
		t.Fatalf("got %+v ok=%v", m, ok)
	}
}

// Priority regression: each case pins which pattern of a catalog wins on overlapping input.
func TestCatalogPriority(t *testing.T) {
	tests := []struct {
		name    string
		catalog Catalog
		text    string
		pattern int
		value   string
	}{
		{"account label before loan label", AccountNumber, "Loan No: LN99887766 Account No: AC11223344", 0, "AC11223344"},
		{"loan number when no account label", AccountNumber, "Loan Number: LN99887766", 1, "LN99887766"},
		{"card number last", AccountNumber, "Card No: 4111111111111111", 2, "4111111111111111"},
		{"bank name label first", BankName, "Bank Name: HDFC Bank", 0, "HDFC Bank"},
		{"lender name label before member name", BankName, "Member Name: ICICI Bank Lender Name: Axis Finance Limited", 0, "Axis Finance Limited"},
		{"institution name label", BankName, "Institution Name: Bajaj Financial", 0, "Bajaj Financial"},
		{"plain bank label", BankName, "Bank: ABC BANK LTD Loan Type: personal", 1, "ABC BANK LTD"},
		{"member name", BankName, "Member Name: Axis Finance Limited", 2, "Axis Finance Limited"},
		{"explicit loan type", LoanType, "Loan Type: Home Loan", 0, "Home Loan"},
		{"sanctioned before limit", SanctionedAmount, "Limit: 5,000 Sanctioned Amount: ₹10,000", 0, "10,000"},
		{"limit fallback", SanctionedAmount, "High Credit Limit ₹75,000.00", 0, "75,000.00"},
		{"principal fallback", SanctionedAmount, "Principal: 1,20,000", 1, "1,20,000"},
		{"current balance before dues", CurrentBalance, "Dues: 10 Current Balance: 2,500", 0, "2,500"},
		{"dues fallback", CurrentBalance, "Dues: 1,000", 1, "1,000"},
		{"overdue before arrears", OverdueAmount, "Arrears: 5 Overdue: 0", 0, "0"},
		{"arrears fallback", OverdueAmount, "Arrears: 3,000", 1, "3,000"},
		{"status label", AccountStatus, "Status: Closed", 0, "Closed"},
		{"status suffix", AccountStatus, "a settled account", 1, "settled"},
		{"opened wins over earlier since", OpeningDate, "since 03/04/2020 Opened: 01-02-2019", 0, "01-02-2019"},
		{"since fallback", OpeningDate, "customer since 03/04/2020", 1, "03/04/2020"},
		{"last payment label", LastPaymentDate, "Paid on 05.06.2021 Last Payment Date: 07/08/2021", 0, "07/08/2021"},
		{"paid on fallback", LastPaymentDate, "paid on 05.06.2021", 1, "05.06.2021"},
		{"score label", CibilScore, "CIBIL Score: 742", 0, "742"},
		{"total accounts label", TotalAccounts, "Total Accounts: 7", 0, "7"},
		{"accounts found", TotalAccounts, "7 accounts found", 1, "7"},
		{"enquiries label", TotalEnquiries, "Total Enquiries: 3", 0, "3"},
		{"enquiries during", TotalEnquiries, "3 enquiries during the last year", 1, "3"},
		{"section summary", Sections[constants.SectionSummary], "Consumer Credit Report Summary", 0, "Credit Report Summary"},
		{"section accounts", Sections[constants.SectionAccountDetails], "CREDIT FACILITIES", 1, "CREDIT FACILITIES"},
		{"section payment", Sections[constants.SectionPaymentHistory], "Repayment Track Record", 1, "Repayment Track Record"},
		{"section end keyword before page", SectionEnd, "... page 2 ... enquiry summary", 0, "enquiry"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := tt.catalog.Lookup(tt.text)
			if !ok {
				t.Fatalf("no match for %q", tt.text)
			}
			if m.Pattern != tt.pattern || m.Value != tt.value {
				t.Errorf("got pattern %d value %q, want pattern %d value %q", m.Pattern, m.Value, tt.pattern, tt.value)
			}
		})
	}
}

func TestDelinquencyTokensInOrder(t *testing.T) {
	got := FindAllValues(DelinquencyToken, "0 0 30 STD 100 xxx XXX 120")
	want := []string{"0", "0", "30", "STD", "XXX", "120"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tokens mismatch (-want +got):\n%s", diff)
	}
}

func TestFindAllKeepsPatternOrder(t *testing.T) {
	got := PageDates.FindAll("on 2021-03-04 and 01/02/2020 and March 5, 2022")
	want := []string{"01/02/2020", "2021-03-04", "March 5, 2022"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("dates mismatch (-want +got):\n%s", diff)
	}
}
