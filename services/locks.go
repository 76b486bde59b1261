package services

import "sync"

// keyedMutex serializes operations per string key. The underlying store
// gives the read-modify-write of a blog record no atomicity, so
// concurrent saves of the same identity would silently lose updates;
// callers lock the identity for the duration of the operation.
//
// Mutexes are kept for the lifetime of the process. The key space is
// bounded by the number of live blogs and gallery images, which is small
// enough that no eviction is needed.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for key and returns its unlock function.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
