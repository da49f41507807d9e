package reconcile

import (
	"time"

	"github.com/shopspring/decimal"
)

// Summary aggregates outcome counts. The counts always sum to len(Outcomes).
type Summary struct {
	// UpdatedCount is the number of remote prices written
	UpdatedCount int `json:"updated_count"`

	// NotFoundCount is the number of items with no remote match
	NotFoundCount int `json:"not_found_count"`

	// FailedCount is the number of per-item failures
	FailedCount int `json:"failed_count"`

	// SkippedCount is the number of items intentionally not attempted
	SkippedCount int `json:"skipped_count"`
}

// Total returns the number of outcomes summarized
func (s Summary) Total() int {
	return s.UpdatedCount + s.NotFoundCount + s.FailedCount + s.SkippedCount
}

// Summarize aggregates outcomes into counts. Pure, no I/O.
func Summarize(outcomes []Outcome) Summary {
	var s Summary
	for _, o := range outcomes {
		switch o.Status {
		case StatusUpdated:
			s.UpdatedCount++
		case StatusNotFound:
			s.NotFoundCount++
		case StatusFailed:
			s.FailedCount++
		case StatusSkipped:
			s.SkippedCount++
		}
	}
	return s
}

// Report is the aggregate result of one reconciliation run
type Report struct {
	// RunID uniquely identifies the run
	RunID string `json:"run_id"`

	// StartedAt is when the run began
	StartedAt time.Time `json:"started_at"`

	// Duration is how long the run took
	Duration time.Duration `json:"duration"`

	// MarginPercent is the margin rule the run was priced under
	MarginPercent decimal.Decimal `json:"margin_percent"`

	// Summary aggregates the outcome counts
	Summary Summary `json:"summary"`

	// Outcomes is one record per input item, in input order
	Outcomes []Outcome `json:"outcomes"`
}
