// Package lock serializes writers per key with a bounded wait.
package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

// Locker grants exclusive ownership of a key. TryAcquire never blocks; it
// reports whether the key was free.
type Locker interface {
	TryAcquire(ctx context.Context, key, owner string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key, owner string) error
}

type RetryPolicy struct {
	Attempts int
	Interval time.Duration
	TTL      time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: 3, Interval: 100 * time.Millisecond, TTL: 5 * time.Second}
}

// Acquire retries TryAcquire until the policy is exhausted and then fails
// with model.ErrBusy. The returned func releases the lock.
func Acquire(ctx context.Context, l Locker, key, owner string, p RetryPolicy) (func(), error) {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		ok, err := l.TryAcquire(ctx, key, owner, p.TTL)
		if err != nil {
			lastErr = err
		}
		if ok {
			return func() {
				// release must run even when the request context is done
				_ = l.Release(context.WithoutCancel(ctx), key, owner)
			}, nil
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for lock %s: %w", key, ctx.Err())
		case <-time.After(p.Interval):
		}
	}

	if lastErr != nil {
		return nil, fmt.Errorf("lock %s: %v: %w", key, lastErr, model.ErrBusy)
	}
	return nil, fmt.Errorf("lock %s: %w", key, model.ErrBusy)
}

func ProductKey(productID string) string {
	return "lock:inventory:product:" + productID
}
