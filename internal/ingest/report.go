package ingest

import (
	"time"

	"github.com/spigell/job-scout/internal/scoring"
)

// Outcome is what happened to one raw listing.
type Outcome string

const (
	OutcomeInserted   Outcome = "inserted"
	OutcomeReplaced   Outcome = "replaced"
	OutcomeRejected   Outcome = "rejected"
	OutcomeSkipped    Outcome = "skipped"
	OutcomeSuperseded Outcome = "superseded"
)

// Result describes one raw listing of the batch, in input order.
type Result struct {
	Index     int
	ID        string
	Title     string
	Company   string
	Score     int
	Breakdown scoring.Breakdown
	Outcome   Outcome
	Reason    string
}

// Report summarises an ingestion run.
type Report struct {
	RunID     string
	StartedAt time.Time

	Received int
	Accepted int
	Rejected int
	Skipped  int
	Inserted int
	Replaced int
	// Total is the size of the stored collection after the run.
	Total int

	Results []Result
}

// ByOutcome returns the results with the given outcome.
func (r *Report) ByOutcome(o Outcome) []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Outcome == o {
			out = append(out, res)
		}
	}
	return out
}
