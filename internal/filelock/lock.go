// Package filelock serializes writes to individual artifact files so two
// concurrent conversions targeting the same path never interleave.
package filelock

import "sync"

// pathLock is one path's mutex plus a count of callers currently holding a
// reference to it, so the registry can drop the entry once nobody needs it.
type pathLock struct {
	mu       sync.Mutex
	refCount int
}

// Registry hands out one mutex per path, created lazily on first use and
// removed once its last holder releases it.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*pathLock
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{entries: make(map[string]*pathLock)}
}

func (r *Registry) acquire(path string) *pathLock {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.entries[path]
	if !ok {
		l = &pathLock{}
		r.entries[path] = l
	}
	l.refCount++
	return l
}

func (r *Registry) release(path string, l *pathLock) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l.refCount--
	if l.refCount == 0 {
		delete(r.entries, path)
	}
}

// WithLock runs fn while holding the mutex associated with path, serializing
// it against any other WithLock call on the same path from this Registry.
// Different paths proceed concurrently.
func (r *Registry) WithLock(path string, fn func() error) error {
	l := r.acquire(path)
	l.mu.Lock()
	defer func() {
		l.mu.Unlock()
		r.release(path, l)
	}()

	return fn()
}

// Len reports how many paths currently have an active or held lock entry.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
