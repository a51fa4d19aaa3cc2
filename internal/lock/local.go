package lock

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	owner   string
	expires time.Time
}

// LocalLocker is an in-process Locker. Expired entries are reclaimed by the
// next acquirer, like a Redis key with a TTL.
type LocalLocker struct {
	mu   sync.Mutex
	held map[string]entry
	now  func() time.Time
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: make(map[string]entry), now: time.Now}
}

func (l *LocalLocker) TryAcquire(_ context.Context, key, owner string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if e, ok := l.held[key]; ok && (e.expires.IsZero() || now.Before(e.expires)) {
		return false, nil
	}
	var expires time.Time
	if ttl > 0 {
		expires = now.Add(ttl)
	}
	l.held[key] = entry{owner: owner, expires: expires}
	return true, nil
}

func (l *LocalLocker) Release(_ context.Context, key, owner string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if e, ok := l.held[key]; ok && e.owner == owner {
		delete(l.held, key)
	}
	return nil
}
