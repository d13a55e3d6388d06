// Package subscription provides subscription value types and the gateway
// capability vocabulary.
package subscription

import "time"

// Period is a billing period unit.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// ValidPeriod reports whether p is a known billing period unit.
func ValidPeriod(p Period) bool {
	switch p {
	case PeriodDay, PeriodWeek, PeriodMonth, PeriodYear:
		return true
	}
	return false
}

// Status represents subscription state on the platform side.
type Status string

const (
	StatusActive    Status = "active"
	StatusOnHold    Status = "on-hold"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
)

// Subscription represents a platform subscription (value type).
// One order references at most one subscription in the supported flow.
type Subscription struct {
	ID             string
	OrderID        string // originating order
	PaymentMethod  string // gateway identifier configured for renewals
	Period         Period
	Interval       int   // billing interval multiplier, e.g. every 2 months
	RecurringTotal int64 // minor units (cents)
	TrialPeriod    Period
	TrialEnd       *time.Time
	Status         Status
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// HasTrial returns true when an explicit trial end is set.
func (s Subscription) HasTrial() bool {
	return s.TrialEnd != nil && !s.TrialEnd.IsZero()
}

// Feature is a gateway capability the platform can query for.
type Feature string

const (
	FeatureProducts      Feature = "products"
	FeatureSubscriptions Feature = "subscriptions"

	// FeatureScheduledPayments asks whether the platform may trigger
	// scheduled charges itself. Brick charges are provider-initiated,
	// so the gateway never supports this.
	FeatureScheduledPayments Feature = "gateway_scheduled_payments"

	FeatureCancellation                Feature = "subscription_cancellation"
	FeaturePaymentMethodChange         Feature = "subscription_payment_method_change"
	FeaturePaymentMethodChangeCustomer Feature = "subscription_payment_method_change_customer"
	FeaturePaymentMethodChangeAdmin    Feature = "subscription_payment_method_change_admin"
	FeatureAmountChanges               Feature = "subscription_amount_changes"
	FeatureDateChanges                 Feature = "subscription_date_changes"
)

// CoreFeatures are the capabilities every configured gateway advertises.
var CoreFeatures = []Feature{
	FeatureProducts,
	FeatureSubscriptions,
}

// ReferenceTransactionFeatures are capabilities backed by the stored
// provider transaction reference.
var ReferenceTransactionFeatures = []Feature{
	FeatureCancellation,
	FeaturePaymentMethodChange,
	FeaturePaymentMethodChangeCustomer,
	FeaturePaymentMethodChangeAdmin,
	FeatureAmountChanges,
	FeatureDateChanges,
}
