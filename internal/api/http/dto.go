package http

import (
	"time"

	"holter-distributor/internal/domain"
)

const (
	schedulerRunning    = "Job is running"
	schedulerNotRunning = "Job is not running"
)

// StatusResponse reports whether periodic passes are enabled.
type StatusResponse struct {
	Status string `json:"status"`
}

func newStatusResponse(enabled bool) StatusResponse {
	if enabled {
		return StatusResponse{Status: schedulerRunning}
	}
	return StatusResponse{Status: schedulerNotRunning}
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// ListPassesQuery is the query of GET /passes.
type ListPassesQuery struct {
	Limit int `validate:"gte=1,lte=500"`
}

// MonthRequest addresses one month of statistics.
type MonthRequest struct {
	Year  int `validate:"gte=2000,lte=2100"`
	Month int `validate:"gte=1,lte=12"`
}

// DayRequest addresses one day of statistics, optionally for one doctor folder.
type DayRequest struct {
	MonthRequest
	Day    int    `validate:"gte=1,lte=31"`
	Doctor string `validate:"omitempty,excludesall=/\\,ne=.,ne=.."`
}

// PassSummary is the list view of a pass report.
type PassSummary struct {
	ID           string            `json:"id"`
	StartedAt    time.Time         `json:"started_at"`
	FinishedAt   time.Time         `json:"finished_at"`
	BusinessDay  string            `json:"business_day"`
	Status       domain.PassStatus `json:"status"`
	Error        string            `json:"error,omitempty"`
	Assigned     int               `json:"assigned"`
	Rejected     int               `json:"rejected"`
	Unassignable int               `json:"unassignable"`
	Failed       int               `json:"failed"`
}

// ToPassSummary converts a domain.PassReport to its list view.
func ToPassSummary(r *domain.PassReport) PassSummary {
	return PassSummary{
		ID:           r.ID,
		StartedAt:    r.StartedAt,
		FinishedAt:   r.FinishedAt,
		BusinessDay:  r.BusinessDay,
		Status:       r.Status,
		Error:        r.Error,
		Assigned:     len(r.Assigned),
		Rejected:     len(r.Rejected),
		Unassignable: len(r.Unassignable),
		Failed:       len(r.Failed),
	}
}
