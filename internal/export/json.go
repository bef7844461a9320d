package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/joseph-ayodele/cibil-aggregator/internal/contract"
	"github.com/joseph-ayodele/cibil-aggregator/internal/entity"
)

// WriteJSON writes v as indented JSON. Aggregated reports, bare or inside a processing
// result, are checked against the report schema first.
func WriteJSON(w io.Writer, v any) error {
	var report *entity.AggregatedReport
	switch t := v.(type) {
	case *entity.AggregatedReport:
		report = t
	case *entity.ProcessingResult:
		if t != nil {
			report = t.AggregatedData
		}
	}
	if report != nil {
		if err := contract.ValidateReport(report); err != nil {
			return fmt.Errorf("write json: %w", err)
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
