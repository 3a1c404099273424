package models

import (
	"time"

	"github.com/google/uuid"
)

// Load run outcomes.
const (
	LoadRunRunning   = "running"
	LoadRunSucceeded = "succeeded" // every row inserted or updated
	LoadRunPartial   = "partial"   // finished with skipped rows
	LoadRunAborted   = "aborted"   // rolled back, no inventory changes
)

// RowError describes why a single input row was skipped. Row is the
// 1-based position in the source file, excluding the header.
type RowError struct {
	Row    int    `json:"row"`
	Field  string `json:"field,omitempty"`
	Reason string `json:"reason"`
}

// LoadReport summarizes one bulk load run. For runs that finish,
// Total = Inserted + Updated + Skipped. Errors carries per-row detail for
// skipped rows, capped so a pathological file cannot bloat the report.
type LoadReport struct {
	Total    int        `json:"total"`
	Inserted int        `json:"inserted"`
	Updated  int        `json:"updated"`
	Skipped  int        `json:"skipped"`
	Errors   []RowError `json:"errors,omitempty"`
}

// Outcome maps the report to a load run status.
func (r *LoadReport) Outcome() string {
	if r.Skipped > 0 {
		return LoadRunPartial
	}
	return LoadRunSucceeded
}

// LoadRun is the persisted history record of one bulk load invocation.
type LoadRun struct {
	RunID      uuid.UUID  `json:"run_id"`
	Source     string     `json:"source"`
	Status     string     `json:"status"`
	TotalRows  int        `json:"total_rows"`
	Inserted   int        `json:"inserted"`
	Updated    int        `json:"updated"`
	Skipped    int        `json:"skipped"`
	RowErrors  []RowError `json:"row_errors,omitempty"`
	Error      *string    `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}
