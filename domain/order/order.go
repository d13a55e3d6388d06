// Package order provides order value types and pure state-transition helpers.
package order

import "time"

// Status represents the order lifecycle state.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusOnHold     Status = "on-hold"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
	StatusRefunded   Status = "refunded"
)

// MetaTransactionID is the metadata key linking an order to the provider
// resource created for it. Written once on successful payment, read back
// at cancellation time.
const MetaTransactionID = "_transaction_id"

// Customer holds the billing profile attached to an order.
type Customer struct {
	FirstName    string
	LastName     string
	Address      string
	City         string
	State        string
	Zip          string
	Country      string
	RegisteredAt *time.Time // account registration date, nil for guests
}

// Note is a human-readable log entry on an order.
type Note struct {
	ID        string
	Text      string
	CreatedAt time.Time
}

// Order represents a platform order (value type).
type Order struct {
	ID        string
	Number    string // display number, may differ from ID
	UserID    string // empty for guest checkout
	Email     string
	Currency  string
	Total     int64 // minor units (cents)
	Status    Status
	Customer  Customer
	Notes     []Note
	Meta      map[string]string
	PaidAt    *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsPaid returns true once payment has been taken for the order.
func (o Order) IsPaid() bool {
	return o.Status == StatusProcessing || o.Status == StatusCompleted
}

// IsFinal returns true if the order can no longer transition.
func (o Order) IsFinal() bool {
	return o.Status == StatusCompleted || o.Status == StatusCancelled || o.Status == StatusRefunded
}

// PaymentComplete marks the order paid, recording the provider transaction
// reference and payment time.
func (o Order) PaymentComplete(transactionID string, at time.Time) Order {
	o.Status = StatusCompleted
	o.PaidAt = &at
	if o.Meta == nil {
		o.Meta = map[string]string{}
	}
	o.Meta[MetaTransactionID] = transactionID
	o.UpdatedAt = at
	return o
}

// Hold places the order on-hold: payment accepted but not yet finalized
// (e.g. pending bank confirmation).
func (o Order) Hold(at time.Time) Order {
	o.Status = StatusOnHold
	o.UpdatedAt = at
	return o
}

// TransactionID returns the provider transaction reference, if any.
func (o Order) TransactionID() string {
	return o.Meta[MetaTransactionID]
}

// ValidStatus reports whether s is a known order status.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusProcessing, StatusOnHold, StatusCompleted,
		StatusFailed, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}
