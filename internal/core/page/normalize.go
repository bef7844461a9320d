package page

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	reCRLF       = regexp.MustCompile(`\r\n?`)
	reHorizontal = regexp.MustCompile(`[ \t\f\v]+`)
	rePipe       = regexp.MustCompile(`[ \t\f\v]*\|[ \t\f\v]*`)
	reColon      = regexp.MustCompile(`[ \t\f\v]*:[ \t\f\v]*`)
	reRupees     = regexp.MustCompile(`\bRs\.?[ \t\f\v]*(\d)`)
	reINR        = regexp.MustCompile(`\bINR[ \t\f\v]*(\d)`)
)

// ocrFixes repairs visually confusable spellings of the words the catalogs key on.
// Correct spellings keep their original case.
var ocrFixes = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`(?i)c[il1]b[il1]l`), "CIBIL"},
	{regexp.MustCompile(`(?i)cr[e3]d[il1]t`), "credit"},
	{regexp.MustCompile(`(?i)acc[o0]unt`), "account"},
}

// Normalize cleans one page of extracted text. Line breaks survive; everything else is
// collapsed, OCR garbling is fixed, currency markers and delimiter spacing are unified,
// and blank lines are dropped. Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	if s == "" {
		return s
	}
	s = norm.NFKC.String(s)
	s = reCRLF.ReplaceAllString(s, "\n")
	for _, f := range ocrFixes {
		s = f.re.ReplaceAllStringFunc(s, func(m string) string {
			if strings.EqualFold(m, f.repl) {
				return m
			}
			return f.repl
		})
	}
	s = reRupees.ReplaceAllString(s, "₹$1")
	s = reINR.ReplaceAllString(s, "₹$1")
	s = rePipe.ReplaceAllString(s, " | ")
	s = reColon.ReplaceAllString(s, ": ")
	s = reHorizontal.ReplaceAllString(s, " ")

	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, ln := range lines {
		if ln = strings.TrimSpace(ln); ln != "" {
			kept = append(kept, ln)
		}
	}
	return strings.Join(kept, "\n")
}
