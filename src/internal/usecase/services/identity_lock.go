package services

import (
	"sort"
	"sync"

	"github.com/api-sage/business-credits/src/internal/domain"
)

// IdentityLocks serialises workflows that mutate the same ledger identity.
// Locks are taken in sorted order so workflows touching several identities
// cannot deadlock each other.
type IdentityLocks struct {
	mu    sync.Mutex
	locks map[domain.Identity]*identityLock
}

type identityLock struct {
	mu   sync.Mutex
	refs int
}

func NewIdentityLocks() *IdentityLocks {
	return &IdentityLocks{locks: make(map[domain.Identity]*identityLock)}
}

// Lock blocks until every identity is held and returns the matching unlock.
func (l *IdentityLocks) Lock(identities ...domain.Identity) func() {
	ordered := uniqueSorted(identities)

	held := make([]*identityLock, 0, len(ordered))
	for _, id := range ordered {
		lock := l.acquire(id)
		lock.mu.Lock()
		held = append(held, lock)
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].mu.Unlock()
			l.release(ordered[i])
		}
	}
}

func (l *IdentityLocks) acquire(id domain.Identity) *identityLock {
	l.mu.Lock()
	defer l.mu.Unlock()

	lock, ok := l.locks[id]
	if !ok {
		lock = &identityLock{}
		l.locks[id] = lock
	}
	lock.refs++
	return lock
}

func (l *IdentityLocks) release(id domain.Identity) {
	l.mu.Lock()
	defer l.mu.Unlock()

	lock, ok := l.locks[id]
	if !ok {
		return
	}
	lock.refs--
	if lock.refs == 0 {
		delete(l.locks, id)
	}
}

func (l *IdentityLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

func uniqueSorted(identities []domain.Identity) []domain.Identity {
	seen := make(map[domain.Identity]struct{}, len(identities))
	out := make([]domain.Identity, 0, len(identities))
	for _, id := range identities {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
