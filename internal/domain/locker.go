// internal/domain/locker.go
package domain

import (
	"context"
	"errors"
)

// ErrLockNotAcquired is returned when a lock cannot be acquired, for example,
// if another pass is still in flight.
var ErrLockNotAcquired = errors.New("lock not acquired")

// PassLockName is the lock every distribution pass runs under.
const PassLockName = "distribution-pass"

// Lock represents an acquired lock.
type Lock interface {
	// Unlock releases the lock.
	Unlock(ctx context.Context) error
}

// Locker guarantees at most one distribution pass in flight.
type Locker interface {
	// Lock attempts to acquire a lock for the given name.
	// It must not block. If the lock is already held,
	// it must return ErrLockNotAcquired.
	Lock(ctx context.Context, name string) (Lock, error)
}
