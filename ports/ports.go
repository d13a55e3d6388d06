// Package ports defines interfaces (contracts) between layers.
// These interfaces enable dependency injection and testability.
// Implementations live in adapters/.
package ports

import (
	"context"
	"errors"
	"time"

	"github.com/merchantkit/brickgate/domain/brick"
	"github.com/merchantkit/brickgate/domain/order"
	"github.com/merchantkit/brickgate/domain/subscription"
)

// ErrNotFound is returned by stores when the requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned by stores on unique-constraint violations.
var ErrDuplicate = errors.New("duplicate")

// -----------------------------------------------------------------------------
// Infrastructure Ports
// -----------------------------------------------------------------------------

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

// IDGenerator generates unique identifiers.
type IDGenerator interface {
	New() string
}

// Hasher hashes and verifies secrets (API keys).
type Hasher interface {
	// Hash generates a hash from plaintext.
	Hash(plaintext string) ([]byte, error)
	// Compare checks if plaintext matches hash.
	Compare(hash []byte, plaintext string) bool
}

// -----------------------------------------------------------------------------
// Platform Ports
//
// The commerce platform owns all durable order/subscription state. The
// gateway mutates it only through these operations, never directly.
// -----------------------------------------------------------------------------

// OrderStore persists platform orders.
type OrderStore interface {
	// Get retrieves an order by ID.
	Get(ctx context.Context, id string) (order.Order, error)

	// Create stores a new order.
	Create(ctx context.Context, o order.Order) error

	// Update replaces order state (status transitions, metadata writes).
	Update(ctx context.Context, o order.Order) error

	// AddNote appends a human-readable note to the order log.
	AddNote(ctx context.Context, orderID, text string) error

	// GetMeta reads a single order metadata value. Returns ErrNotFound
	// when the key is absent.
	GetMeta(ctx context.Context, orderID, key string) (string, error)

	// Delete removes an order with its metadata and notes. Used to
	// unwind a partial registration.
	Delete(ctx context.Context, id string) error
}

// SubscriptionStore persists platform subscriptions.
type SubscriptionStore interface {
	// Get retrieves a subscription by ID.
	Get(ctx context.Context, id string) (subscription.Subscription, error)

	// Create stores a new subscription.
	Create(ctx context.Context, s subscription.Subscription) error

	// Update replaces subscription state.
	Update(ctx context.Context, s subscription.Subscription) error

	// ForOrder lists subscriptions attached to an order, in stable
	// retrieval order. Multi-subscription orders are unsupported by the
	// gateway; callers process only the first.
	ForOrder(ctx context.Context, orderID string) ([]subscription.Subscription, error)
}

// Cart clears a customer's shopping cart after a successful payment.
type Cart interface {
	Empty(ctx context.Context, userID string) error
}

// Notices queues user-facing messages surfaced by the storefront.
type Notices interface {
	// Error queues an error notice for the order's customer.
	Error(ctx context.Context, orderID, message string) error

	// List returns queued notices for an order, oldest first.
	List(ctx context.Context, orderID string) ([]string, error)
}

// -----------------------------------------------------------------------------
// Provider Ports
// -----------------------------------------------------------------------------

// PaymentProvider interfaces with the Brick payment API.
type PaymentProvider interface {
	// Name returns the provider name (e.g. "brick").
	Name() string

	// CreateSubscription creates a recurring billing subscription from a
	// tokenized card. Blocking network round-trip; no retries.
	CreateSubscription(ctx context.Context, req brick.SubscriptionRequest) (brick.Response, error)

	// Charge performs a one-time tokenized card charge.
	Charge(ctx context.Context, req brick.ChargeRequest) (brick.Response, error)

	// CancelSubscription cancels the provider subscription resource.
	CancelSubscription(ctx context.Context, subscriptionID string) error
}

// -----------------------------------------------------------------------------
// Event Ports
//
// The platform's event system invokes these instead of the gateway
// registering callbacks into ambient dispatch state.
// -----------------------------------------------------------------------------

// SubscriptionEvents receives platform subscription events and capability
// queries. Implemented by the payment service.
type SubscriptionEvents interface {
	// OnSubscriptionCancelled propagates a platform-side cancellation to
	// the provider. No-op when the subscription never successfully
	// charged through this gateway.
	OnSubscriptionCancelled(ctx context.Context, sub subscription.Subscription) error

	// QueryFeatureSupport answers a platform capability query. current is
	// the caller's existing default, returned unchanged when the gateway
	// has no opinion.
	QueryFeatureSupport(current bool, feature subscription.Feature, sub subscription.Subscription) bool
}
