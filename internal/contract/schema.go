// Package contract holds the JSON Schema of the aggregated report and validates reports
// against it before they leave the process.
package contract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/cibil-aggregator/constants"
	"github.com/joseph-ayodele/cibil-aggregator/internal/entity"
)

const schemaURL = "aggregated_report.json"

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

// BuildReportJSONSchema returns the AggregatedReport schema as a generic map.
func BuildReportJSONSchema() map[string]any {
	bucketProps := map[string]any{}
	for _, b := range entity.DelayBuckets {
		bucketProps[b] = countProp()
	}
	sectionTypes := constants.AsStringSlice()

	summary := object(map[string]any{
		"cibil_score":                  scoreProp(),
		"total_accounts":               countProp(),
		"total_active_accounts":        countProp(),
		"total_closed_accounts":        countProp(),
		"total_settled_accounts":       countProp(),
		"payment_delay_instances":      countProp(),
		"payment_behavior_score":       map[string]any{"type": "integer", "minimum": 0, "maximum": 100},
		"total_enquiries":              countProp(),
		"unique_banks":                 countProp(),
		"loan_types":                   stringsProp(),
		"accounts_with_overdue":        countProp(),
		"data_completeness_percentage": countProp(),
	})

	account := object(map[string]any{
		"account_number":    map[string]any{"type": "string"},
		"bank_name":         map[string]any{"type": "string"},
		"loan_type":         map[string]any{"type": "string"},
		"sanctioned_amount": nullableString(),
		"current_balance":   nullableString(),
		"overdue_amount":    nullableString(),
		"account_status":    nullableString(),
		"opening_date":      nullableString(),
		"last_payment_date": nullableString(),
		"payment_history": map[string]any{
			"type":     "array",
			"maxItems": 24,
			"items": map[string]any{
				"type": "string",
				"enum": []string{"0", "30", "60", "90", "120", "150", "180", "XXX", "STD", "SMA", "SUB", "DBT", "LSS"},
			},
		},
		"page_number": map[string]any{"type": "integer", "minimum": 1},
	})

	financial := object(map[string]any{
		"cibil_score":             scoreProp(),
		"total_accounts":          countProp(),
		"total_sanctioned_amount": map[string]any{"type": "number"},
		"total_current_balance":   map[string]any{"type": "number"},
		"total_overdue_amount":    map[string]any{"type": "number"},
		"account_status_summary":  countMap(),
		"loan_type_summary":       countMap(),
		"bank_wise_summary":       countMap(),
	})

	payment := object(map[string]any{
		"delay_categories":       object(bucketProps),
		"total_delay_instances":  countProp(),
		"payment_behavior_score": map[string]any{"type": "integer", "minimum": 0, "maximum": 100},
		"recent_payment_trend":   map[string]any{"type": "string"},
	})

	enquiry := object(map[string]any{
		"total_enquiries":        countProp(),
		"recent_enquiries_6m":    countProp(),
		"recent_enquiries_12m":   countProp(),
		"enquiry_types":          countMap(),
		"enquiring_institutions": stringsProp(),
	})

	quality := object(map[string]any{
		"aggregation_completeness":      ratioProp(),
		"data_consistency_score":        ratioProp(),
		"cross_page_validation_score":   ratioProp(),
		"account_consolidation_quality": ratioProp(),
		"overall_aggregation_quality":   ratioProp(),
	})

	metadata := object(map[string]any{
		"total_pages_processed": countProp(),
		"sections_identified":   countProp(),
		"section_types_found": map[string]any{
			"type":        "array",
			"uniqueItems": true,
			"items":       map[string]any{"type": "string", "enum": sectionTypes},
		},
		"processing_timestamp": map[string]any{"type": "string", "minLength": 1},
		"aggregation_method":   map[string]any{"type": "string", "const": constants.AggregationMethod},
		"data_sources":         stringsProp(),
	})

	return object(map[string]any{
		"report_summary":              summary,
		"all_accounts":                map[string]any{"type": "array", "items": account},
		"consolidated_financial_data": financial,
		"payment_history_summary":     payment,
		"enquiry_summary":             enquiry,
		"data_quality_metrics":        quality,
		"processing_metadata":         metadata,
	})
}

// object requires every listed property and forbids others.
func object(props map[string]any) map[string]any {
	required := make([]string, 0, len(props))
	for k := range props {
		required = append(required, k)
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             required,
	}
}

func countProp() map[string]any {
	return map[string]any{"type": "integer", "minimum": 0}
}

func ratioProp() map[string]any {
	return map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0}
}

func scoreProp() map[string]any {
	return map[string]any{"type": []string{"integer", "null"}, "minimum": 300, "maximum": 900}
}

func nullableString() map[string]any {
	return map[string]any{"type": []string{"string", "null"}}
}

func stringsProp() map[string]any {
	return map[string]any{"type": "array", "items": map[string]any{"type": "string"}}
}

func countMap() map[string]any {
	return map[string]any{"type": "object", "additionalProperties": countProp()}
}

func reportSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		b, err := json.Marshal(BuildReportJSONSchema())
		if err != nil {
			compileErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(schemaURL, bytes.NewReader(b)); err != nil {
			compileErr = fmt.Errorf("add schema: %w", err)
			return
		}
		compiled, compileErr = compiler.Compile(schemaURL)
		if compileErr != nil {
			compileErr = fmt.Errorf("compile schema: %w", compileErr)
		}
	})
	return compiled, compileErr
}

// ValidateJSON checks serialized report bytes against the schema.
func ValidateJSON(data []byte) error {
	schema, err := reportSchema()
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal report: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("report does not match schema: %w", err)
	}
	return nil
}

// ValidateReport serializes report and checks it against the schema.
func ValidateReport(report *entity.AggregatedReport) error {
	if report == nil {
		return fmt.Errorf("report is nil")
	}
	b, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return ValidateJSON(b)
}
