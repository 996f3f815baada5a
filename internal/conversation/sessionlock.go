package conversation

import "sync"

// sessionLocks serializes turns that target the same session so that two
// concurrent requests cannot interleave a read-merge-write cycle and drop
// each other's slot updates. Entries are refcounted and removed once the
// last holder releases.
type sessionLocks struct {
	mu    sync.Mutex
	entry map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{entry: make(map[string]*lockEntry)}
}

// acquire blocks until the caller holds the lock for sessionID and returns
// the matching release func.
func (l *sessionLocks) acquire(sessionID string) func() {
	l.mu.Lock()
	e, ok := l.entry[sessionID]
	if !ok {
		e = &lockEntry{}
		l.entry[sessionID] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.entry, sessionID)
		}
		l.mu.Unlock()
	}
}
