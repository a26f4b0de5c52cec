// internal/infra/etcd/etcd_locker.go
package etcd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"holter-distributor/internal/domain"

	clientv3 "go.etcd.io/etcd/client/v3"
	"go.etcd.io/etcd/client/v3/concurrency"
)

const (
	// LockPrefix is the etcd root of pass locks.
	LockPrefix = "/holter-distributor/locks/"
	// LockSessionTTL is the lease TTL of a lock session, in seconds.
	LockSessionTTL = 30
	// lockAttemptTimeout bounds a single non-blocking lock attempt.
	lockAttemptTimeout = 100 * time.Millisecond
)

// etcdLock implements domain.Lock.
type etcdLock struct {
	mutex   *concurrency.Mutex
	session *concurrency.Session
	name    string
}

// Unlock releases the lock and closes its session, revoking the lease.
func (l *etcdLock) Unlock(ctx context.Context) error {
	defer func() {
		if l.session != nil {
			_ = l.session.Close()
		}
	}()

	if err := l.mutex.Unlock(ctx); err != nil {
		return fmt.Errorf("failed to unlock %s: %w", l.name, err)
	}
	return nil
}

// etcdLocker implements domain.Locker on etcd, so dispatchers sharing a
// network-mounted inbound directory never run passes at the same time.
type etcdLocker struct {
	client *clientv3.Client
}

// NewEtcdLocker creates a new etcd backed locker.
func NewEtcdLocker(client *clientv3.Client) domain.Locker {
	return &etcdLocker{client: client}
}

// Lock tries to acquire name once. A lock held elsewhere yields
// domain.ErrLockNotAcquired.
func (l *etcdLocker) Lock(ctx context.Context, name string) (domain.Lock, error) {
	// A fresh session per attempt: if the holder dies its lease expires and
	// the lock is released.
	session, err := concurrency.NewSession(l.client, concurrency.WithTTL(LockSessionTTL))
	if err != nil {
		return nil, fmt.Errorf("failed to create etcd session for lock %s: %w", name, err)
	}

	mutex := concurrency.NewMutex(session, LockPrefix+name)

	tryCtx, cancel := context.WithTimeout(ctx, lockAttemptTimeout)
	defer cancel()

	if err := mutex.TryLock(tryCtx); err != nil {
		_ = session.Close()
		if errors.Is(err, concurrency.ErrLocked) || errors.Is(err, context.DeadlineExceeded) {
			return nil, domain.ErrLockNotAcquired
		}
		return nil, fmt.Errorf("failed to try acquiring etcd lock %s: %w", name, err)
	}

	return &etcdLock{
		mutex:   mutex,
		session: session,
		name:    name,
	}, nil
}
