// internal/dispatch/roster.go
package dispatch

import (
	"path/filepath"

	"holter-distributor/internal/config"
	"holter-distributor/internal/domain"
)

// Directory is the directory snapshot the dispatcher reads and mutates.
// storage.Store is the filesystem implementation.
type Directory interface {
	ListItems(dir string) ([]domain.WorkItem, error)
	ItemNames(dir string) ([]string, error)
	WalkItemNames(root string) ([]string, error)
	Move(src, dstDir string) (string, error)
}

// Roster is the set of workers for one pass, rebuilt from the policy at the
// start of every pass. Nothing in it outlives the pass.
type Roster struct {
	policy  *config.Policy
	workers []*domain.Worker
}

// NewRoster builds the roster from a policy snapshot.
func NewRoster(policy *config.Policy) *Roster {
	return &Roster{policy: policy, workers: policy.Workers()}
}

// Workers returns the workers in configuration order.
func (r *Roster) Workers() []*domain.Worker {
	return r.workers
}

// Folder returns the worker's partition directory for the formatted day.
func (r *Roster) Folder(w *domain.Worker, day string) string {
	return filepath.Join(r.policy.OutputPath, w.FolderName, day)
}
