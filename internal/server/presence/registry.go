package presence

import (
	"slices"
	"sync"
)

// Identity is who holds a connection.
type Identity struct {
	UserID   string
	FullName string
}

type conn struct {
	Identity
	outbox Outbox
}

// Registry maps connection ids to identities for this process only.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]*conn
	order []string
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]*conn)}
}

// Add registers connID. It returns false if the id is already taken.
func (r *Registry) Add(connID string, id Identity, out Outbox) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conns[connID]; ok {
		return false
	}
	r.conns[connID] = &conn{Identity: id, outbox: out}
	r.order = append(r.order, connID)
	return true
}

// Remove drops connID and reports whether it was present.
func (r *Registry) Remove(connID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conns[connID]; !ok {
		return false
	}
	delete(r.conns, connID)
	if i := slices.Index(r.order, connID); i >= 0 {
		r.order = slices.Delete(r.order, i, i+1)
	}
	return true
}

// Identities lists display names in join order. A user with several
// connections appears once per connection.
func (r *Registry) Identities() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.order))
	for _, id := range r.order {
		names = append(names, r.conns[id].FullName)
	}
	return names
}

func (r *Registry) DisplayNameOf(connID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.conns[connID]
	if !ok {
		return "", false
	}
	return c.FullName, true
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// Broadcast offers e to every connection and returns how many accepted it.
func (r *Registry) Broadcast(e Event) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	delivered := 0
	for _, id := range r.order {
		if r.conns[id].outbox.Deliver(e) {
			delivered++
		}
	}
	return delivered
}
