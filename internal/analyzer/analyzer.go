// Package analyzer computes the ops summary of a Dataset: how much pull
// request work cannot be traced to a ticket and how many tickets churned.
package analyzer

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"

	"github.com/danielolaszy/opsintel/internal/logging"
	"github.com/danielolaszy/opsintel/pkg/models"
)

// ticketKeyPattern finds a ticket reference anywhere in a PR title.
var ticketKeyPattern = regexp.MustCompile(`[A-Z]+-\d+`)

type ticketFields struct {
	ChurnEvents float64 `json:"churn_events"`
}

type prFields struct {
	Title string `json:"title"`
}

// IsGhost reports whether a PR title references no ticket. Any key-shaped
// substring counts as a reference, whether or not such a ticket exists.
func IsGhost(title string) bool {
	return !ticketKeyPattern.MatchString(title)
}

// IsHighChurn reports whether a ticket saw more than one requirement change.
func IsHighChurn(churnEvents float64) bool {
	return churnEvents > 1
}

// Analyze computes the Report for in. Records are echoed unchanged in the
// report. Any parse failure returns an error wrapping ErrInvalidInput and
// no partial report.
func Analyze(in Input) (models.Report, error) {
	recs, err := in.records()
	if err != nil {
		return models.Report{}, err
	}

	highChurn := 0
	for i, raw := range recs.tickets {
		if !isJSONObject(raw) {
			return models.Report{}, fmt.Errorf("%w: ticket %d is not an object", ErrInvalidInput, i)
		}
		var t ticketFields
		if err := json.Unmarshal(raw, &t); err != nil {
			return models.Report{}, fmt.Errorf("%w: ticket %d: %v", ErrInvalidInput, i, err)
		}
		if IsHighChurn(t.ChurnEvents) {
			highChurn++
		}
	}

	ghosts := 0
	for i, raw := range recs.prs {
		if !isJSONObject(raw) {
			return models.Report{}, fmt.Errorf("%w: pr %d is not an object", ErrInvalidInput, i)
		}
		var pr prFields
		if err := json.Unmarshal(raw, &pr); err != nil {
			return models.Report{}, fmt.Errorf("%w: pr %d: %v", ErrInvalidInput, i, err)
		}
		if IsGhost(pr.Title) {
			ghosts++
		}
	}

	report := models.Report{
		Summary: models.Summary{
			GhostWorkPct:   ghostWorkPct(ghosts, len(recs.prs)),
			HighChurnCount: highChurn,
			TotalTickets:   len(recs.tickets),
			TotalPRs:       len(recs.prs),
		},
		RawTickets: nonNil(recs.tickets),
		RawPRs:     nonNil(recs.prs),
	}

	logging.Debug("analyzed dataset",
		"tickets", report.Summary.TotalTickets,
		"prs", report.Summary.TotalPRs,
		"ghosts", ghosts,
		"high_churn", highChurn)

	return report, nil
}

// ghostWorkPct is ghosts/total as a percentage rounded half-to-even to one
// decimal place, and 0 when there are no PRs.
func ghostWorkPct(ghosts, total int) models.Percent {
	if total == 0 {
		return 0
	}
	pct := float64(ghosts) / float64(total) * 100
	return models.Percent(math.RoundToEven(pct*10) / 10)
}

func nonNil(raws []json.RawMessage) []json.RawMessage {
	if raws == nil {
		return []json.RawMessage{}
	}
	return raws
}
