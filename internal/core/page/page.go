// Package page turns raw page text into normalized, scored page records.
package page

import (
	"unicode/utf8"

	"github.com/joseph-ayodele/cibil-aggregator/internal/entity"
)

// Analyze normalizes one input page and computes its indicators, facts and confidence.
func Analyze(in entity.PageInput) entity.PageRecord {
	text := Normalize(in.Text)
	rec := entity.PageRecord{
		PageNumber:       in.PageNumber,
		Text:             text,
		HasText:          text != "",
		ExtractionMethod: in.ExtractionMethod,
		Indicators:       DetectIndicators(text),
		AccountData:      AccountFacts(text),
		FinancialData:    FinancialFacts(text),
	}
	rec.Confidence = Confidence(text, rec.Indicators, rec.AccountData)
	return rec
}

// Enhanced returns rec with text replaced by a longer OCR rendition and its confidence
// raised by 0.2. Indicators and facts are recomputed from the new text.
func Enhanced(rec entity.PageRecord, ocrText, method string) (entity.PageRecord, bool) {
	text := Normalize(ocrText)
	if utf8.RuneCountInString(text) <= utf8.RuneCountInString(rec.Text) {
		return rec, false
	}
	out := rec
	out.Text = text
	out.HasText = true
	out.ExtractionMethod = method
	out.Indicators = DetectIndicators(text)
	out.AccountData = AccountFacts(text)
	out.FinancialData = FinancialFacts(text)
	out.Confidence = clamp01(rec.Confidence + 0.2)
	return out, true
}

// Summary drops the text of a page record.
func Summary(rec entity.PageRecord) entity.PageSummary {
	return entity.PageSummary{
		PageNumber:       rec.PageNumber,
		TextLength:       utf8.RuneCountInString(rec.Text),
		HasText:          rec.HasText,
		ExtractionMethod: rec.ExtractionMethod,
		Confidence:       rec.Confidence,
		Indicators:       rec.Indicators,
		AccountData:      rec.AccountData,
		FinancialData:    rec.FinancialData,
	}
}
