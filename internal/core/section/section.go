// Package section classifies page text into report sections.
package section

import (
	"strings"
	"unicode/utf8"

	"github.com/joseph-ayodele/cibil-aggregator/constants"
	"github.com/joseph-ayodele/cibil-aggregator/internal/core/catalog"
	"github.com/joseph-ayodele/cibil-aggregator/internal/entity"
)

// endSearchOffset is how many runes past a section marker the end search starts.
const endSearchOffset = 100

// Classify returns at most one section per type per page, pages in input order and types in
// canonical order.
func Classify(pages []entity.PageRecord) []entity.Section {
	var out []entity.Section
	for _, p := range pages {
		out = append(out, ClassifyPage(p)...)
	}
	return out
}

// ClassifyPage returns the sections found on one page.
func ClassifyPage(p entity.PageRecord) []entity.Section {
	if p.Text == "" {
		return nil
	}
	var out []entity.Section
	for _, st := range constants.SectionTypes() {
		m, ok := catalog.Sections[st].Lookup(p.Text)
		if !ok {
			continue
		}
		content := Span(p.Text, m.Start)
		out = append(out, entity.Section{
			SectionType: st,
			PageNumber:  p.PageNumber,
			Content:     content,
			Confidence:  Confidence(content, st),
		})
	}
	return out
}

// Span returns the trimmed text from byte offset start up to the next section end marker,
// searched from endSearchOffset runes past start, or to the end of text.
func Span(text string, start int) string {
	from := start
	for i := 0; i < endSearchOffset && from < len(text); i++ {
		_, size := utf8.DecodeRuneInString(text[from:])
		from += size
	}
	end := len(text)
	if m, ok := catalog.SectionEnd.Lookup(text[from:]); ok {
		end = from + m.Start
	}
	return strings.TrimSpace(text[start:end])
}

// Confidence scores a section span: 0.3 base, a length bonus over 100 and 200 runes,
// and 0.1 per vocabulary word present up to 0.4.
func Confidence(content string, st constants.SectionType) float64 {
	if content == "" {
		return 0
	}
	c := 0.3
	switch n := utf8.RuneCountInString(content); {
	case n > 200:
		c += 0.2
	case n > 100:
		c += 0.1
	}
	lower := strings.ToLower(content)
	hits := 0
	for _, kw := range constants.SectionKeywords[st] {
		if strings.Contains(lower, kw) {
			hits++
		}
	}
	c += min(0.1*float64(hits), 0.4)
	return min(c, 1)
}

// OfType filters sections by type, keeping order.
func OfType(sections []entity.Section, st constants.SectionType) []entity.Section {
	var out []entity.Section
	for _, s := range sections {
		if s.SectionType == st {
			out = append(out, s)
		}
	}
	return out
}

// TypesFound lists the distinct section types present, in canonical order.
func TypesFound(sections []entity.Section) []string {
	present := make(map[constants.SectionType]bool, len(sections))
	for _, s := range sections {
		present[s.SectionType] = true
	}
	out := []string{}
	for _, st := range constants.SectionTypes() {
		if present[st] {
			out = append(out, string(st))
		}
	}
	return out
}
