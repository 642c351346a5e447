// Package fixtures provides a small registry for test fixtures with
// dependency resolution and caching, so expensive fixtures are built once
// and shared across test cases.
package fixtures

import (
	"fmt"
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultCacheSize = 128

// Builder constructs a fixture value. deps holds the already-built values of
// the fixture's declared dependencies, keyed by name.
type Builder func(deps map[string]interface{}) (interface{}, error)

type definition struct {
	name    string
	deps    []string
	builder Builder
}

// Stats counts registry activity since creation.
type Stats struct {
	Hits   int64
	Misses int64
	Builds int64
}

// Registry holds fixture definitions and a cache of built values. The
// counters are atomics because hits are recorded under the read lock.
type Registry struct {
	mu     sync.RWMutex
	defs   map[string]definition
	cache  *lru.Cache[string, interface{}]
	hits   atomic.Int64
	misses atomic.Int64
	builds atomic.Int64
}

func NewRegistry() *Registry {
	cache, _ := lru.New[string, interface{}](defaultCacheSize)
	return &Registry{
		defs:  make(map[string]definition),
		cache: cache,
	}
}

// Register adds a fixture definition. Registering the same name twice
// replaces the previous definition and drops its cached value.
func (r *Registry) Register(name string, deps []string, builder Builder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defs[name] = definition{name: name, deps: deps, builder: builder}
	r.cache.Remove(name)
}

// Get returns the named fixture, building it and its dependencies in
// dependency order first if needed.
func (r *Registry) Get(name string) (interface{}, error) {
	r.mu.RLock()
	if value, ok := r.cache.Get(name); ok {
		r.hits.Add(1)
		r.mu.RUnlock()
		return value, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	// Re-check under the write lock.
	if value, ok := r.cache.Get(name); ok {
		r.hits.Add(1)
		return value, nil
	}
	r.misses.Add(1)

	return r.build(name, make(map[string]bool))
}

// Invalidate drops the cached value for name. Dependents are not tracked;
// callers invalidate those explicitly if needed.
func (r *Registry) Invalidate(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache.Remove(name)
}

// Reset drops every cached value but keeps the definitions.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache.Purge()
}

func (r *Registry) Stats() Stats {
	return Stats{
		Hits:   r.hits.Load(),
		Misses: r.misses.Load(),
		Builds: r.builds.Load(),
	}
}

// build resolves name depth-first. building marks the path from the root to
// detect cycles.
func (r *Registry) build(name string, building map[string]bool) (interface{}, error) {
	if building[name] {
		return nil, fmt.Errorf("fixture dependency cycle detected at %q", name)
	}

	def, ok := r.defs[name]
	if !ok {
		return nil, fmt.Errorf("fixture %q is not registered", name)
	}

	if value, ok := r.cache.Get(name); ok {
		return value, nil
	}

	building[name] = true
	defer delete(building, name)

	deps := make(map[string]interface{}, len(def.deps))
	for _, dep := range def.deps {
		value, err := r.build(dep, building)
		if err != nil {
			return nil, fmt.Errorf("fixture %q: %w", name, err)
		}
		deps[dep] = value
	}

	value, err := def.builder(deps)
	if err != nil {
		return nil, fmt.Errorf("fixture %q build failed: %w", name, err)
	}
	r.builds.Add(1)
	r.cache.Add(name, value)
	return value, nil
}
