// internal/domain/execution.go
package domain

import (
	"context"
	"fmt"
	"time"
)

// PassStatus defines the terminal status of a distribution pass.
type PassStatus string

const (
	PassStatusSuccess PassStatus = "success"
	PassStatusFailed  PassStatus = "failed"
)

// Outcome is the terminal state of one item within a pass.
type Outcome string

const (
	OutcomeAssigned     Outcome = "assigned"
	OutcomeRejected     Outcome = "rejected"
	OutcomeUnassignable Outcome = "unassignable"
	OutcomeFailed       Outcome = "failed"
)

// Assignment records an item moved into a worker's folder.
type Assignment struct {
	Item   string `json:"item"`
	Worker string `json:"worker"`
	Target string `json:"target"`
}

// ItemFailure records an item whose relocation failed. The item stays where it was.
type ItemFailure struct {
	Item  string `json:"item"`
	Error string `json:"error"`
}

// PassReport aggregates the outcome of every item enumerated in one pass.
type PassReport struct {
	ID           string        `json:"id"`
	StartedAt    time.Time     `json:"started_at"`
	FinishedAt   time.Time     `json:"finished_at"`
	BusinessDay  string        `json:"business_day"`
	Status       PassStatus    `json:"status"`
	Error        string        `json:"error,omitempty"` // Pass-level error, if the pass aborted
	Assigned     []Assignment  `json:"assigned"`
	Rejected     []string      `json:"rejected"`
	Unassignable []string      `json:"unassignable"`
	Failed       []ItemFailure `json:"failed"`
}

// NewPassReport creates an empty report for a pass that starts now.
func NewPassReport(id string, startedAt time.Time) *PassReport {
	return &PassReport{
		ID:           id,
		StartedAt:    startedAt,
		Status:       PassStatusSuccess,
		Assigned:     []Assignment{},
		Rejected:     []string{},
		Unassignable: []string{},
		Failed:       []ItemFailure{},
	}
}

// Total returns the number of items resolved by the pass.
func (r *PassReport) Total() int {
	return len(r.Assigned) + len(r.Rejected) + len(r.Unassignable) + len(r.Failed)
}

// Counts returns the number of items per outcome.
func (r *PassReport) Counts() map[Outcome]int {
	return map[Outcome]int{
		OutcomeAssigned:     len(r.Assigned),
		OutcomeRejected:     len(r.Rejected),
		OutcomeUnassignable: len(r.Unassignable),
		OutcomeFailed:       len(r.Failed),
	}
}

// Validate checks if the pass report is valid.
func (r *PassReport) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("pass report ID cannot be empty")
	}
	if r.StartedAt.IsZero() {
		return fmt.Errorf("pass report start time cannot be zero")
	}
	if r.Status == "" {
		return fmt.Errorf("pass report status cannot be empty")
	}
	return nil
}

// PassRepository defines the interface for persisting and retrieving pass reports.
type PassRepository interface {
	// Save persists a single pass report.
	Save(ctx context.Context, report *PassReport) error
	// List returns at most limit reports, newest first.
	List(ctx context.Context, limit int) ([]*PassReport, error)
	// Get retrieves a single report by ID. Returns ErrPassNotFound if absent.
	Get(ctx context.Context, id string) (*PassReport, error)
}
