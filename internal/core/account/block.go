// Package account splits text into per-account blocks, extracts their fields and
// consolidates them across pages.
package account

import (
	"strings"

	"github.com/joseph-ayodele/cibil-aggregator/internal/core/catalog"
	"github.com/joseph-ayodele/cibil-aggregator/internal/entity"
)

// SplitBlocks cuts text into blocks, each starting at a separator line. Text with fewer than
// two blocks is returned whole.
func SplitBlocks(text string) []string {
	var (
		blocks  []string
		current strings.Builder
	)
	flush := func() {
		if b := strings.TrimSpace(current.String()); b != "" {
			blocks = append(blocks, b)
		}
		current.Reset()
	}
	for _, line := range strings.Split(text, "\n") {
		if catalog.BlockSeparators.MatchString(line) && strings.TrimSpace(current.String()) != "" {
			flush()
			current.WriteString(line)
			continue
		}
		current.WriteString("\n")
		current.WriteString(line)
	}
	flush()
	if len(blocks) <= 1 {
		return []string{text}
	}
	return blocks
}

// ExtractBlock applies the field catalogs to one block. ok is false when the block has
// neither an account number nor a bank name.
func ExtractBlock(block string, pageNumber int) (entity.AccountRecord, bool) {
	rec := entity.AccountRecord{
		PageNumber:     pageNumber,
		PaymentHistory: []string{},
	}
	if m, ok := catalog.AccountNumber.Lookup(block); ok {
		rec.AccountNumber = strings.TrimSpace(m.Value)
	}
	if m, ok := catalog.BankName.Lookup(block); ok {
		rec.BankName = collapse(m.Value)
	}
	if m, ok := catalog.LoanType.Lookup(block); ok {
		rec.LoanType = loanType(block, m)
	}
	rec.SanctionedAmount = optional(catalog.SanctionedAmount, block, hasDigit)
	rec.CurrentBalance = optional(catalog.CurrentBalance, block, hasDigit)
	rec.OverdueAmount = optional(catalog.OverdueAmount, block, hasDigit)
	rec.AccountStatus = optional(catalog.AccountStatus, block, nil)
	if rec.AccountNumber == "" && rec.BankName == "" {
		return entity.AccountRecord{}, false
	}
	return rec, true
}

// Extract returns the accounts of every block of text, in block order.
func Extract(text string, pageNumber int) []entity.AccountRecord {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	var out []entity.AccountRecord
	for _, b := range SplitBlocks(text) {
		if rec, ok := ExtractBlock(b, pageNumber); ok {
			out = append(out, rec)
		}
	}
	return out
}

// loanType keeps the first line of a labelled capture and drops a trailing label word
// the capture ran into ("personal loan Status:" -> "personal loan").
func loanType(block string, m catalog.Match) string {
	v := m.Value
	if i := strings.IndexByte(v, '\n'); i >= 0 {
		v = v[:i]
	} else if strings.HasPrefix(strings.TrimLeft(block[m.ValueEnd:], " \t"), ":") {
		if fields := strings.Fields(v); len(fields) > 1 {
			v = strings.Join(fields[:len(fields)-1], " ")
		}
	}
	return collapse(v)
}

func optional(c catalog.Catalog, block string, accept func(string) bool) *string {
	m, ok := c.LookupValid(block, accept)
	if !ok {
		return nil
	}
	v := strings.TrimSpace(m.Value)
	if v == "" {
		return nil
	}
	return &v
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func hasDigit(s string) bool {
	return strings.ContainsAny(s, "0123456789")
}
