package engine

import "sync"

// senderLocks provides a mutual-exclusion scope per normalized sender
// address. Two concurrent emails from the same sender serialize here, so
// they cannot both observe "no thread exists" and both create one.
type senderLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newSenderLocks() *senderLocks {
	return &senderLocks{locks: make(map[string]*sync.Mutex)}
}

// acquire returns the mutex for a sender key, creating it on first use.
// Lock entries are never reclaimed; the population is bounded by the number
// of distinct correspondents.
func (l *senderLocks) acquire(key string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	return m
}
