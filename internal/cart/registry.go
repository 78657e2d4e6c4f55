package cart

import "sync"

// Registry hands out per-session carts. The lock guards only the map;
// each cart belongs to a single session and sees sequential requests.
type Registry struct {
	mu    sync.RWMutex
	carts map[string]*Cart
}

func NewRegistry() *Registry {
	return &Registry{carts: make(map[string]*Cart)}
}

// Cart returns the session's cart, creating it on first use.
func (r *Registry) Cart(sessionID string) *Cart {
	r.mu.RLock()
	c, ok := r.carts[sessionID]
	r.mu.RUnlock()
	if ok {
		return c
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.carts[sessionID]; ok {
		return c
	}
	c = New()
	r.carts[sessionID] = c
	return c
}

// Drop forgets a session's cart entirely.
func (r *Registry) Drop(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, sessionID)
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.carts)
}
