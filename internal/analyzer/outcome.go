package analyzer

import (
	"encoding/json"
	"fmt"

	"github.com/danielolaszy/opsintel/internal/logging"
	"github.com/danielolaszy/opsintel/pkg/models"
)

// Outcome is the boundary form of an analysis. It encodes as the report on
// success and as {"error": "..."} on failure.
type Outcome struct {
	Report models.Report
	Err    error
}

// Evaluate runs Analyze and folds any failure, including a panic while
// reading the input, into the Outcome.
func Evaluate(in Input) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error("analyzer panicked", "panic", r)
			out = Outcome{Err: fmt.Errorf("%w: %v", ErrInvalidInput, r)}
		}
	}()

	report, err := Analyze(in)
	if err != nil {
		logging.Warn("analysis failed", "error", err)
		return Outcome{Err: err}
	}
	return Outcome{Report: report}
}

// OK reports whether the analysis succeeded.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// MarshalJSON implements json.Marshaler.
func (o Outcome) MarshalJSON() ([]byte, error) {
	if o.Err != nil {
		return json.Marshal(struct {
			Error string `json:"error"`
		}{Error: o.Err.Error()})
	}
	return json.Marshal(o.Report)
}
