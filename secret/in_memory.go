package secret

import (
	"context"
	"sync"
)

// InMemory is a process-local SecretResolver fed from explicit configuration.
// It holds a shared secret map plus per-project overrides, guarded by an
// RWMutex. Maps are copied on resolve so callers cannot mutate internal
// state. It is the documented fallback when no external secret service is
// configured, and is also useful for tests.
type InMemory struct {
	mu       sync.RWMutex
	shared   map[string]string
	projects map[string]map[string]string
}

// NewInMemory builds a resolver from a shared secret map applied to every
// project. A nil map is treated as empty.
func NewInMemory(shared map[string]string) *InMemory {
	r := &InMemory{
		shared:   make(map[string]string, len(shared)),
		projects: make(map[string]map[string]string),
	}
	for k, v := range shared {
		r.shared[k] = v
	}
	return r
}

// Set stores (or overwrites) a secret scoped to the given project. Project
// scoped values win over shared values during Resolve.
func (r *InMemory) Set(project, key, value string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.projects[project]
	if !ok {
		m = make(map[string]string)
		r.projects[project] = m
	}
	m[key] = value
}

// SetShared stores (or overwrites) a secret visible to every project.
func (r *InMemory) SetShared(key, value string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shared[key] = value
}

// Resolve returns the merged shared and project scoped secrets. The returned
// map is a copy safe for caller mutation.
func (r *InMemory) Resolve(_ context.Context, project string) (map[string]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]string, len(r.shared))
	for k, v := range r.shared {
		out[k] = v
	}
	for k, v := range r.projects[project] {
		out[k] = v
	}
	return out, nil
}

// Get returns a single secret for the project or ErrNotFound.
func (r *InMemory) Get(ctx context.Context, project, key string) (string, error) {
	secrets, err := r.Resolve(ctx, project)
	if err != nil {
		return "", err
	}
	v, ok := secrets[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}
