package cart

import "sync"

// userLocks serializes cart mutations per user. The store has no optimistic
// concurrency token, so two concurrent read-modify-write requests from the
// same user would otherwise race with last-write-wins semantics.
type userLocks struct {
	mu      sync.Mutex
	entries map[string]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

func newUserLocks() *userLocks {
	return &userLocks{entries: make(map[string]*userLock)}
}

// lock acquires the per-user lock and returns the release function. Entries
// are reference-counted and removed once the last holder releases, so the
// table stays bounded by the number of in-flight requests.
func (l *userLocks) lock(userID string) (release func()) {
	l.mu.Lock()
	e, ok := l.entries[userID]
	if !ok {
		e = &userLock{}
		l.entries[userID] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()

	return func() {
		e.mu.Unlock()

		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.entries, userID)
		}
		l.mu.Unlock()
	}
}
