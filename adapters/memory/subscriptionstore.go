package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/merchantkit/brickgate/domain/subscription"
	"github.com/merchantkit/brickgate/ports"
)

// SubscriptionStore is an in-memory implementation of ports.SubscriptionStore.
type SubscriptionStore struct {
	mu    sync.RWMutex
	subs  map[string]subscription.Subscription
	clock ports.Clock
}

// NewSubscriptionStore creates a new in-memory subscription store.
func NewSubscriptionStore(clock ports.Clock) *SubscriptionStore {
	return &SubscriptionStore{
		subs:  make(map[string]subscription.Subscription),
		clock: clock,
	}
}

// Ensure interface compliance.
var _ ports.SubscriptionStore = (*SubscriptionStore)(nil)

// Get retrieves a subscription by ID.
func (s *SubscriptionStore) Get(ctx context.Context, id string) (subscription.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, ok := s.subs[id]
	if !ok {
		return subscription.Subscription{}, ports.ErrNotFound
	}
	return sub, nil
}

// Create stores a new subscription.
func (s *SubscriptionStore) Create(ctx context.Context, sub subscription.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.subs[sub.ID]; exists {
		return ports.ErrDuplicate
	}
	now := s.clock.Now().UTC()
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = now
	}
	sub.UpdatedAt = now
	if sub.Status == "" {
		sub.Status = subscription.StatusActive
	}
	s.subs[sub.ID] = sub
	return nil
}

// Update replaces subscription state.
func (s *SubscriptionStore) Update(ctx context.Context, sub subscription.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.subs[sub.ID]; !ok {
		return ports.ErrNotFound
	}
	sub.UpdatedAt = s.clock.Now().UTC()
	s.subs[sub.ID] = sub
	return nil
}

// ForOrder lists subscriptions attached to an order. Retrieval order is
// stable: creation time, then ID.
func (s *SubscriptionStore) ForOrder(ctx context.Context, orderID string) ([]subscription.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []subscription.Subscription
	for _, sub := range s.subs {
		if sub.OrderID == orderID {
			out = append(out, sub)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
