// Package registry holds the process-lifetime binding between presentation
// surfaces and the display identities computed for them at surface-open
// time. Bindings are write-once-per-key and never evicted; the registry is
// sized by the physical display count.
package registry

import (
	"sort"
	"sync"

	"github.com/lumenwall/kioskd/internal/display"
)

// SurfaceID identifies one presentation surface for its lifetime. The
// presentation host assigns ids when it opens surfaces; the registry treats
// them as opaque.
type SurfaceID int

// Registry maps surfaces to identities. The zero value is not usable; call
// New. Safe for concurrent use: bindings happen at a handful of surface-open
// events, reads come from query dispatch and may be concurrent.
type Registry struct {
	mu       sync.RWMutex
	bindings map[SurfaceID]display.Identity
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{bindings: make(map[SurfaceID]display.Identity)}
}

// Bind records the identity for a surface. Called exactly once per opened
// surface; rebinding an already-bound surface is a caller bug and the first
// binding is kept.
func (r *Registry) Bind(surface SurfaceID, id display.Identity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.bindings[surface]; exists {
		return
	}
	r.bindings[surface] = id
}

// Lookup returns the identity bound to a surface. ok is false for a surface
// that was never bound, which callers must expect when a query races surface
// creation at startup.
func (r *Registry) Lookup(surface SurfaceID) (display.Identity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.bindings[surface]
	return id, ok
}

// Surfaces returns all bound surface ids in ascending order.
func (r *Registry) Surfaces() []SurfaceID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]SurfaceID, 0, len(r.bindings))
	for s := range r.bindings {
		ids = append(ids, s)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Len returns the number of bound surfaces.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bindings)
}

// NextID returns the lowest surface id not yet bound, starting at 1. The
// daemon uses it when the topology watcher attaches a surface for a newly
// plugged-in display.
func (r *Registry) NextID() SurfaceID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	next := SurfaceID(1)
	for {
		if _, ok := r.bindings[next]; !ok {
			return next
		}
		next++
	}
}
