package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/merchantkit/brickgate/domain/subscription"
	"github.com/merchantkit/brickgate/ports"
)

// SubscriptionStore implements ports.SubscriptionStore using SQLite.
type SubscriptionStore struct {
	db *DB
}

// NewSubscriptionStore creates a new SQLite subscription store.
func NewSubscriptionStore(db *DB) *SubscriptionStore {
	return &SubscriptionStore{db: db}
}

// Ensure interface compliance.
var _ ports.SubscriptionStore = (*SubscriptionStore)(nil)

const subscriptionColumns = `
	id, order_id, payment_method, period, interval, recurring_total,
	trial_period, trial_end, status, created_at, updated_at
`

// Get retrieves a subscription by ID.
func (s *SubscriptionStore) Get(ctx context.Context, id string) (subscription.Subscription, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+subscriptionColumns+`
		FROM subscriptions
		WHERE id = ?
	`, id)
	return scanSubscription(row.Scan)
}

// Create stores a new subscription.
func (s *SubscriptionStore) Create(ctx context.Context, sub subscription.Subscription) error {
	now := time.Now().UTC()
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = now
	}
	if sub.UpdatedAt.IsZero() {
		sub.UpdatedAt = now
	}
	if sub.Status == "" {
		sub.Status = subscription.StatusActive
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO subscriptions (
			id, order_id, payment_method, period, interval, recurring_total,
			trial_period, trial_end, status, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		sub.ID, sub.OrderID, sub.PaymentMethod, string(sub.Period), sub.Interval,
		sub.RecurringTotal, string(sub.TrialPeriod), nullTime(sub.TrialEnd),
		string(sub.Status), sub.CreatedAt, sub.UpdatedAt,
	)
	if err != nil && isUniqueConstraintError(err) {
		return ports.ErrDuplicate
	}
	return err
}

// Update replaces subscription state.
func (s *SubscriptionStore) Update(ctx context.Context, sub subscription.Subscription) error {
	sub.UpdatedAt = time.Now().UTC()

	res, err := s.db.ExecContext(ctx, `
		UPDATE subscriptions
		SET order_id = ?, payment_method = ?, period = ?, interval = ?,
		    recurring_total = ?, trial_period = ?, trial_end = ?,
		    status = ?, updated_at = ?
		WHERE id = ?
	`,
		sub.OrderID, sub.PaymentMethod, string(sub.Period), sub.Interval,
		sub.RecurringTotal, string(sub.TrialPeriod), nullTime(sub.TrialEnd),
		string(sub.Status), sub.UpdatedAt,
		sub.ID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ports.ErrNotFound
	}
	return nil
}

// ForOrder lists subscriptions attached to an order, oldest first.
func (s *SubscriptionStore) ForOrder(ctx context.Context, orderID string) ([]subscription.Subscription, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+subscriptionColumns+`
		FROM subscriptions
		WHERE order_id = ?
		ORDER BY created_at, id
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []subscription.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows.Scan)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

func scanSubscription(scan func(...any) error) (subscription.Subscription, error) {
	var sub subscription.Subscription
	var period, trialPeriod, status string
	var trialEnd sql.NullTime

	err := scan(
		&sub.ID, &sub.OrderID, &sub.PaymentMethod, &period, &sub.Interval,
		&sub.RecurringTotal, &trialPeriod, &trialEnd, &status,
		&sub.CreatedAt, &sub.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return subscription.Subscription{}, ports.ErrNotFound
	}
	if err != nil {
		return subscription.Subscription{}, err
	}

	sub.Period = subscription.Period(period)
	sub.TrialPeriod = subscription.Period(trialPeriod)
	sub.Status = subscription.Status(status)
	if trialEnd.Valid {
		t := trialEnd.Time
		sub.TrialEnd = &t
	}
	return sub, nil
}
