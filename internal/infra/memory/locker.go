// internal/infra/memory/locker.go
package memory

import (
	"context"
	"sync"

	"holter-distributor/internal/domain"
)

// locker is an in-process domain.Locker for a single dispatcher instance.
type locker struct {
	mu   sync.Mutex
	held map[string]bool
}

// NewLocker creates a new in-process locker.
func NewLocker() domain.Locker {
	return &locker{held: make(map[string]bool)}
}

type lock struct {
	owner *locker
	name  string
	once  sync.Once
}

// Lock acquires name without blocking.
func (l *locker) Lock(_ context.Context, name string) (domain.Lock, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.held[name] {
		return nil, domain.ErrLockNotAcquired
	}
	l.held[name] = true
	return &lock{owner: l, name: name}, nil
}

// Unlock releases the lock. Calling it twice is a no-op.
func (k *lock) Unlock(_ context.Context) error {
	k.once.Do(func() {
		k.owner.mu.Lock()
		delete(k.owner.held, k.name)
		k.owner.mu.Unlock()
	})
	return nil
}
