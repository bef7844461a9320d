package core

import "fmt"

// Stages named in a StageError.
const (
	StageDecode    = "decode"
	StageAnalyze   = "analyze"
	StageExtract   = "extract"
	StageEnrich    = "enrich"
	StageAggregate = "aggregate"
)

// StageError locates a failed aggregation run: the stage and, when known, the input
// index and page number.
type StageError struct {
	Stage      string
	Index      int // -1 when the failure is not tied to one input record
	PageNumber int
	Err        error
}

func (e *StageError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s: record %d (page %d): %v", e.Stage, e.Index, e.PageNumber, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
