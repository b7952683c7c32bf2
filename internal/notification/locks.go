package notification

import "sync"

// keyedLocks hands out one mutex per key. Entries are never evicted; the
// key space is the set of interruptions touched in this process.
type keyedLocks[K comparable] struct {
	mu    sync.RWMutex
	locks map[K]*sync.Mutex
}

func newKeyedLocks[K comparable]() *keyedLocks[K] {
	return &keyedLocks[K]{locks: make(map[K]*sync.Mutex)}
}

// lock acquires the mutex for key and returns its unlock func.
func (k *keyedLocks[K]) lock(key K) func() {
	m := k.get(key)
	m.Lock()
	return m.Unlock
}

func (k *keyedLocks[K]) get(key K) *sync.Mutex {
	k.mu.RLock()
	m, ok := k.locks[key]
	k.mu.RUnlock()
	if ok {
		return m
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	// Check again in case another goroutine stored one in between.
	if m, ok := k.locks[key]; ok {
		return m
	}
	m = &sync.Mutex{}
	k.locks[key] = m
	return m
}
