package memory

import (
	"context"
	"sync"

	"holter-distributor/internal/domain"
)

// passRepository keeps the most recent pass reports in memory.
type passRepository struct {
	mu      sync.RWMutex
	max     int
	reports []*domain.PassReport // oldest first
}

// NewPassRepository creates a repository retaining at most max reports.
func NewPassRepository(max int) domain.PassRepository {
	if max < 1 {
		max = 1
	}
	return &passRepository{max: max}
}

func (r *passRepository) Save(_ context.Context, report *domain.PassReport) error {
	if err := report.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, report)
	if over := len(r.reports) - r.max; over > 0 {
		r.reports = append([]*domain.PassReport(nil), r.reports[over:]...)
	}
	return nil
}

func (r *passRepository) List(_ context.Context, limit int) ([]*domain.PassReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 || limit > len(r.reports) {
		limit = len(r.reports)
	}
	out := make([]*domain.PassReport, 0, limit)
	for i := len(r.reports) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.reports[i])
	}
	return out, nil
}

func (r *passRepository) Get(_ context.Context, id string) (*domain.PassReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rep := range r.reports {
		if rep.ID == id {
			return rep, nil
		}
	}
	return nil, domain.ErrPassNotFound
}
