// Package memory provides in-memory implementations of the platform store
// ports, for tests and ephemeral deployments.
package memory

import (
	"context"
	"sync"

	"github.com/merchantkit/brickgate/domain/order"
	"github.com/merchantkit/brickgate/ports"
)

// OrderStore is an in-memory implementation of ports.OrderStore.
type OrderStore struct {
	mu     sync.RWMutex
	orders map[string]order.Order
	clock  ports.Clock
	idGen  ports.IDGenerator
}

// NewOrderStore creates a new in-memory order store.
func NewOrderStore(clock ports.Clock, idGen ports.IDGenerator) *OrderStore {
	return &OrderStore{
		orders: make(map[string]order.Order),
		clock:  clock,
		idGen:  idGen,
	}
}

// Ensure interface compliance.
var _ ports.OrderStore = (*OrderStore)(nil)

// Get retrieves an order by ID.
func (s *OrderStore) Get(ctx context.Context, id string) (order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return order.Order{}, ports.ErrNotFound
	}
	return cloneOrder(o), nil
}

// Create stores a new order.
func (s *OrderStore) Create(ctx context.Context, o order.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.orders[o.ID]; exists {
		return ports.ErrDuplicate
	}
	now := s.clock.Now().UTC()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = now
	if o.Status == "" {
		o.Status = order.StatusPending
	}
	s.orders[o.ID] = cloneOrder(o)
	return nil
}

// Update replaces order state.
func (s *OrderStore) Update(ctx context.Context, o order.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.orders[o.ID]
	if !ok {
		return ports.ErrNotFound
	}
	// Notes are append-only via AddNote.
	o.Notes = existing.Notes
	if o.UpdatedAt.IsZero() {
		o.UpdatedAt = s.clock.Now().UTC()
	}
	s.orders[o.ID] = cloneOrder(o)
	return nil
}

// AddNote appends a note to the order log.
func (s *OrderStore) AddNote(ctx context.Context, orderID, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	if !ok {
		return ports.ErrNotFound
	}
	o.Notes = append(o.Notes, order.Note{
		ID:        s.idGen.New(),
		Text:      text,
		CreatedAt: s.clock.Now().UTC(),
	})
	s.orders[orderID] = o
	return nil
}

// GetMeta reads a single metadata value.
func (s *OrderStore) GetMeta(ctx context.Context, orderID, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[orderID]
	if !ok {
		return "", ports.ErrNotFound
	}
	v, ok := o.Meta[key]
	if !ok {
		return "", ports.ErrNotFound
	}
	return v, nil
}

// Delete removes an order.
func (s *OrderStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[id]; !ok {
		return ports.ErrNotFound
	}
	delete(s.orders, id)
	return nil
}

func cloneOrder(o order.Order) order.Order {
	if o.Meta != nil {
		meta := make(map[string]string, len(o.Meta))
		for k, v := range o.Meta {
			meta[k] = v
		}
		o.Meta = meta
	}
	if o.Notes != nil {
		notes := make([]order.Note, len(o.Notes))
		copy(notes, o.Notes)
		o.Notes = notes
	}
	return o
}
