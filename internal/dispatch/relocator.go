package dispatch

import (
	"fmt"
	"log/slog"

	"holter-distributor/internal/domain"
)

// Relocation is the observable result of one move.
type Relocation struct {
	Item   domain.WorkItem
	Target string
	Err    error // wraps domain.ErrRelocation on failure
}

// OK reports whether the move succeeded.
func (r Relocation) OK() bool {
	return r.Err == nil
}

// Relocator moves items into target directories. A failed move is reported
// in the Relocation and never aborts the caller's batch.
type Relocator struct {
	dir    Directory
	logger *slog.Logger
}

// NewRelocator creates a relocator.
func NewRelocator(dir Directory, logger *slog.Logger) *Relocator {
	return &Relocator{dir: dir, logger: logger}
}

// Relocate moves item into targetDir, creating it on demand.
func (r *Relocator) Relocate(item domain.WorkItem, targetDir string) Relocation {
	target, err := r.dir.Move(item.Path, targetDir)
	if err != nil {
		r.logger.Error("failed to move item", "item", item.Name, "target", target, "error", err)
		return Relocation{Item: item, Target: target, Err: fmt.Errorf("%w: %v", domain.ErrRelocation, err)}
	}
	r.logger.Info("moved item", "item", item.Name, "source", item.Path, "target", target)
	return Relocation{Item: item, Target: target}
}
