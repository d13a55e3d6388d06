package memory

import (
	"context"
	"sync"

	"github.com/merchantkit/brickgate/ports"
)

// NoticeStore is an in-memory implementation of ports.Notices.
type NoticeStore struct {
	mu      sync.Mutex
	notices map[string][]string // order ID -> messages, oldest first
}

// NewNoticeStore creates a new in-memory notice queue.
func NewNoticeStore() *NoticeStore {
	return &NoticeStore{notices: make(map[string][]string)}
}

// Ensure interface compliance.
var _ ports.Notices = (*NoticeStore)(nil)

// Error queues an error notice for the order's customer.
func (s *NoticeStore) Error(ctx context.Context, orderID, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices[orderID] = append(s.notices[orderID], message)
	return nil
}

// List returns queued notices for an order, oldest first.
func (s *NoticeStore) List(ctx context.Context, orderID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.notices[orderID]...), nil
}
