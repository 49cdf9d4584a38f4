// Package views holds the live chat views of the web front end, one per browser
package views

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethanbaker/mitra/pkg/chat"
	"github.com/google/uuid"
)

// Factory builds the view for an id seen for the first time
type Factory func(ctx context.Context, id uuid.UUID) *chat.View

// entry is a live view and the last time a request used it
type entry struct {
	view     *chat.View
	lastSeen atomic.Int64 // unix nanoseconds
}

func (e *entry) touch(at time.Time) {
	e.lastSeen.Store(at.UnixNano())
}

// Registry is an in-memory map of view ids to views
type Registry struct {
	views   map[uuid.UUID]*entry
	factory Factory
	now     func() time.Time
	mutex   sync.RWMutex
}

// NewRegistry creates an empty registry that builds views with factory
func NewRegistry(factory Factory) *Registry {
	return &Registry{
		views:   make(map[uuid.UUID]*entry),
		factory: factory,
		now:     time.Now,
	}
}

// Get returns the view for id if it exists. It does not count as a use of the view
func (r *Registry) Get(id uuid.UUID) (*chat.View, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	e, exists := r.views[id]
	if !exists {
		return nil, false
	}
	return e.view, true
}

// IsCurrent reports whether view is the one registered under id
func (r *Registry) IsCurrent(id uuid.UUID, view *chat.View) bool {
	current, exists := r.Get(id)
	return exists && current == view
}

// GetOrCreate returns the view for id, building it on first use, and marks it used
func (r *Registry) GetOrCreate(ctx context.Context, id uuid.UUID) *chat.View {
	r.mutex.RLock()
	e, exists := r.views[id]
	r.mutex.RUnlock()

	if exists {
		e.touch(r.now())
		return e.view
	}

	// Build outside the lock, the factory may hit the archive
	created := r.factory(ctx, id)

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if e, exists := r.views[id]; exists {
		e.touch(r.now())
		return e.view
	}

	e = &entry{view: created}
	e.touch(r.now())
	r.views[id] = e
	return created
}

// Delete forgets the view for id
func (r *Registry) Delete(id uuid.UUID) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	delete(r.views, id)
}

// Evict forgets every view unused for longer than maxIdle. Views with a pending
// flow are kept so their reply is not lost. It returns the number of views removed
func (r *Registry) Evict(maxIdle time.Duration) int {
	cutoff := r.now().Add(-maxIdle).UnixNano()

	r.mutex.Lock()
	defer r.mutex.Unlock()

	evicted := 0
	for id, e := range r.views {
		if e.lastSeen.Load() >= cutoff || e.view.Busy() {
			continue
		}
		delete(r.views, id)
		evicted++
	}

	return evicted
}

// Len returns the number of live views
func (r *Registry) Len() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.views)
}
