// Package lockset provides per-path advisory locks so that two operations
// never mutate the same container at once.
package lockset

import (
	"path/filepath"
	"sync"

	"github.com/arthur-debert/fnassist/pkg/errors"
)

// Registry tracks held locks keyed by cleaned path
type Registry struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// New creates an empty registry
func New() *Registry {
	return &Registry{held: make(map[string]struct{})}
}

var defaultRegistry = New()

// Default returns the process-wide registry
func Default() *Registry {
	return defaultRegistry
}

// TryLock acquires the lock for path without waiting. It returns a BUSY
// error when the lock is already held. The returned unlock func is safe to
// call more than once.
func (r *Registry) TryLock(path string) (func(), error) {
	key := filepath.Clean(path)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, busy := r.held[key]; busy {
		return nil, errors.Newf(errors.ErrBusy, "another operation is in progress on %s", key).
			WithDetail("path", key)
	}
	r.held[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.held, key)
			r.mu.Unlock()
		})
	}, nil
}

// Held reports whether path is currently locked
func (r *Registry) Held(path string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.held[filepath.Clean(path)]
	return ok
}
