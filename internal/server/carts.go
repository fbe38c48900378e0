package server

import (
	"sync"

	"github.com/prasetyadew/kasirpos/internal/cart"
)

// CartRegistry holds the open cart for each terminal. A cart belongs
// to exactly one terminal; callers mutate it through With so access is
// serialized and never escapes the lock.
type CartRegistry struct {
	mu    sync.Mutex
	carts map[string]*cart.Cart
}

func NewCartRegistry() *CartRegistry {
	return &CartRegistry{carts: make(map[string]*cart.Cart)}
}

// With runs fn against the terminal's cart, creating an empty one on
// first use.
func (r *CartRegistry) With(terminalID string, fn func(c *cart.Cart)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.carts[terminalID]
	if !ok {
		c = cart.New()
		r.carts[terminalID] = c
	}
	fn(c)
}

// Snapshot returns an independent copy of the terminal's cart for use
// outside the lock (checkout reads a snapshot, then clears on success).
func (r *CartRegistry) Snapshot(terminalID string) *cart.Cart {
	var snap *cart.Cart
	r.With(terminalID, func(c *cart.Cart) {
		snap = c.Clone()
	})
	return snap
}

// Drop discards the terminal's cart entirely.
func (r *CartRegistry) Drop(terminalID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, terminalID)
}
