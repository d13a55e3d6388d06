package memory

import (
	"context"
	"sync"

	"github.com/merchantkit/brickgate/ports"
)

// CartStore is an in-memory implementation of ports.Cart. The gateway only
// ever empties carts; contents are tracked so tests can assert clearing.
type CartStore struct {
	mu    sync.Mutex
	items map[string][]string // user ID -> item IDs
}

// NewCartStore creates a new in-memory cart store.
func NewCartStore() *CartStore {
	return &CartStore{items: make(map[string][]string)}
}

// Ensure interface compliance.
var _ ports.Cart = (*CartStore)(nil)

// Add puts an item in a user's cart.
func (s *CartStore) Add(userID, itemID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[userID] = append(s.items[userID], itemID)
}

// Items returns a user's cart contents.
func (s *CartStore) Items(userID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.items[userID]...)
}

// Empty clears a user's cart.
func (s *CartStore) Empty(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, userID)
	return nil
}
