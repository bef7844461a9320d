package account

import (
	"strings"

	"github.com/joseph-ayodele/cibil-aggregator/constants"
	"github.com/joseph-ayodele/cibil-aggregator/internal/core/catalog"
	"github.com/joseph-ayodele/cibil-aggregator/internal/entity"
)

// windowRunes is how far around an account number enrichment looks, in each direction.
const windowRunes = 500

// UseSections reports whether accounts come from account_details sections. With none in
// the whole document, every page's raw text is scanned instead.
func UseSections(sections []entity.Section) bool {
	for _, s := range sections {
		if s.SectionType == constants.SectionAccountDetails {
			return true
		}
	}
	return false
}

// Candidates returns the accounts one page contributes before deduplication.
// pageSections must be the sections classified on that page.
func Candidates(p entity.PageRecord, pageSections []entity.Section, fromSections bool) []entity.AccountRecord {
	if !fromSections {
		return Extract(p.Text, p.PageNumber)
	}
	var out []entity.AccountRecord
	for _, s := range pageSections {
		if s.SectionType == constants.SectionAccountDetails {
			out = append(out, Extract(s.Content, s.PageNumber)...)
		}
	}
	return out
}

// Merge deduplicates candidates in order; the first sighting of a key wins.
// The key is the account number, or the bank name for accounts without one.
func Merge(candidates ...[]entity.AccountRecord) []entity.AccountRecord {
	out := []entity.AccountRecord{}
	seen := make(map[string]struct{})
	for _, group := range candidates {
		for _, rec := range group {
			k := key(rec)
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, rec)
		}
	}
	return out
}

func key(rec entity.AccountRecord) string {
	if rec.AccountNumber != "" {
		return "number:" + rec.AccountNumber
	}
	return "bank:" + strings.ToLower(rec.BankName)
}

// Consolidate extracts and deduplicates the accounts of a document in page order.
func Consolidate(sections []entity.Section, pages []entity.PageRecord) []entity.AccountRecord {
	var groups [][]entity.AccountRecord
	if UseSections(sections) {
		for _, s := range sections {
			if s.SectionType == constants.SectionAccountDetails {
				groups = append(groups, Extract(s.Content, s.PageNumber))
			}
		}
	} else {
		for _, p := range pages {
			groups = append(groups, Extract(p.Text, p.PageNumber))
		}
	}
	return Merge(groups...)
}

// Enrich returns copies of accounts with payment history taken from the first
// payment_history section that mentions the account, and opening and last payment dates
// taken from the first page that mentions it. Accounts without a number are returned as is.
func Enrich(accounts []entity.AccountRecord, sections []entity.Section, pages []entity.PageRecord) []entity.AccountRecord {
	out := make([]entity.AccountRecord, len(accounts))
	for i, acc := range accounts {
		out[i] = acc
		if acc.AccountNumber == "" {
			continue
		}
		for _, s := range sections {
			if s.SectionType != constants.SectionPaymentHistory {
				continue
			}
			if hist := PaymentHistory(s.Content, acc.AccountNumber); len(hist) > 0 {
				out[i].PaymentHistory = hist
				break
			}
		}
		for _, p := range pages {
			w, ok := Window(p.Text, acc.AccountNumber)
			if !ok {
				continue
			}
			if d, ok := catalog.OpeningDate.First(w); ok {
				out[i].OpeningDate = entity.Str(d)
			}
			if d, ok := catalog.LastPaymentDate.First(w); ok {
				out[i].LastPaymentDate = entity.Str(d)
			}
			break
		}
	}
	return out
}

// PaymentHistory returns up to catalog.MaxPaymentHistory delinquency tokens around the
// first occurrence of accountNumber in text.
func PaymentHistory(text, accountNumber string) []string {
	w, ok := Window(text, accountNumber)
	if !ok {
		return nil
	}
	tokens := catalog.FindAllValues(catalog.DelinquencyToken, w)
	if len(tokens) > catalog.MaxPaymentHistory {
		tokens = tokens[:catalog.MaxPaymentHistory]
	}
	return tokens
}

// Window returns the text from windowRunes runes before the first occurrence of needle to
// windowRunes runes after it.
func Window(text, needle string) (string, bool) {
	if needle == "" {
		return "", false
	}
	pos := strings.Index(text, needle)
	if pos < 0 {
		return "", false
	}
	before := []rune(text[:pos])
	after := []rune(text[pos+len(needle):])
	start := max(0, len(before)-windowRunes)
	end := min(len(after), windowRunes)
	return string(before[start:]) + needle + string(after[:end]), true
}
