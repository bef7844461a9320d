package core

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/joseph-ayodele/cibil-aggregator/internal/common"
	"github.com/joseph-ayodele/cibil-aggregator/internal/entity"
)

// DecodePages parses page records from JSON: either an array of records or an object
// with a "pages" array. Each record needs an integer page_number >= 1 and a string text;
// other fields are ignored.
func DecodePages(data []byte) ([]entity.PageInput, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, decodeError(-1, 0, fmt.Errorf("%w: %v", common.ErrInvalidInput, err))
	}

	var records []any
	switch v := doc.(type) {
	case []any:
		records = v
	case map[string]any:
		list, ok := v["pages"].([]any)
		if !ok {
			return nil, decodeError(-1, 0, fmt.Errorf("%w: object input needs a \"pages\" array", common.ErrInvalidInput))
		}
		records = list
	default:
		return nil, decodeError(-1, 0, fmt.Errorf("%w: expected an array of page records", common.ErrInvalidInput))
	}

	pages := make([]entity.PageInput, 0, len(records))
	for i, r := range records {
		in, err := decodeRecord(i, r)
		if err != nil {
			return nil, err
		}
		pages = append(pages, in)
	}
	return pages, nil
}

func decodeRecord(i int, r any) (entity.PageInput, error) {
	m, ok := r.(map[string]any)
	if !ok {
		return entity.PageInput{}, decodeError(i, 0, fmt.Errorf("%w: record is not an object", common.ErrInvalidInput))
	}

	v := common.NewValidator()
	var in entity.PageInput
	switch n := m["page_number"].(type) {
	case json.Number:
		pn, err := n.Int64()
		if err != nil {
			v.Add("page_number", n, "must be an integer")
			break
		}
		in.PageNumber = int(pn)
		v.Field("page_number", in.PageNumber, common.MinInt(1))
	default:
		v.Add("page_number", n, "must be an integer")
	}
	switch t := m["text"].(type) {
	case string:
		in.Text = t
	default:
		v.Add("text", t, "must be a string")
	}
	if method, ok := m["extraction_method"].(string); ok {
		in.ExtractionMethod = method
	}
	if v.HasErrors() {
		return entity.PageInput{}, decodeError(i, in.PageNumber, fmt.Errorf("%w: %s", common.ErrInvalidInput, v.ErrorMessage()))
	}
	return in, nil
}

// ValidatePages checks records built in code against the same contract as DecodePages.
func ValidatePages(pages []entity.PageInput) error {
	for i, p := range pages {
		v := common.NewValidator().Field("page_number", p.PageNumber, common.MinInt(1))
		if v.HasErrors() {
			return decodeError(i, p.PageNumber, fmt.Errorf("%w: %s", common.ErrInvalidInput, v.ErrorMessage()))
		}
	}
	return nil
}

func decodeError(index, pageNumber int, err error) error {
	return &StageError{Stage: StageDecode, Index: index, PageNumber: pageNumber, Err: err}
}
