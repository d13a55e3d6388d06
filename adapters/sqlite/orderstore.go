package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/merchantkit/brickgate/domain/order"
	"github.com/merchantkit/brickgate/ports"
)

// OrderStore implements ports.OrderStore using SQLite.
type OrderStore struct {
	db    *DB
	idGen ports.IDGenerator
}

// NewOrderStore creates a new SQLite order store.
func NewOrderStore(db *DB, idGen ports.IDGenerator) *OrderStore {
	return &OrderStore{db: db, idGen: idGen}
}

// Ensure interface compliance.
var _ ports.OrderStore = (*OrderStore)(nil)

// Get retrieves an order by ID, including metadata and notes.
func (s *OrderStore) Get(ctx context.Context, id string) (order.Order, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, number, user_id, email, currency, total, status,
		       first_name, last_name, address, city, state, zip, country,
		       registered_at, paid_at, created_at, updated_at
		FROM orders
		WHERE id = ?
	`, id)

	o, err := scanOrder(row)
	if err != nil {
		return order.Order{}, err
	}

	if o.Meta, err = s.loadMeta(ctx, id); err != nil {
		return order.Order{}, err
	}
	if o.Notes, err = s.loadNotes(ctx, id); err != nil {
		return order.Order{}, err
	}
	return o, nil
}

// Create stores a new order with its metadata.
func (s *OrderStore) Create(ctx context.Context, o order.Order) error {
	now := time.Now().UTC()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	if o.UpdatedAt.IsZero() {
		o.UpdatedAt = now
	}
	if o.Status == "" {
		o.Status = order.StatusPending
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO orders (
			id, number, user_id, email, currency, total, status,
			first_name, last_name, address, city, state, zip, country,
			registered_at, paid_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		o.ID, o.Number, o.UserID, o.Email, o.Currency, o.Total, string(o.Status),
		o.Customer.FirstName, o.Customer.LastName, o.Customer.Address,
		o.Customer.City, o.Customer.State, o.Customer.Zip, o.Customer.Country,
		nullTime(o.Customer.RegisteredAt), nullTime(o.PaidAt), o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ports.ErrDuplicate
		}
		return err
	}
	return s.saveMeta(ctx, o.ID, o.Meta)
}

// Update replaces order state and metadata. Notes are append-only via
// AddNote.
func (s *OrderStore) Update(ctx context.Context, o order.Order) error {
	if o.UpdatedAt.IsZero() {
		o.UpdatedAt = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE orders
		SET number = ?, user_id = ?, email = ?, currency = ?, total = ?,
		    status = ?, first_name = ?, last_name = ?, address = ?,
		    city = ?, state = ?, zip = ?, country = ?, registered_at = ?,
		    paid_at = ?, updated_at = ?
		WHERE id = ?
	`,
		o.Number, o.UserID, o.Email, o.Currency, o.Total, string(o.Status),
		o.Customer.FirstName, o.Customer.LastName, o.Customer.Address,
		o.Customer.City, o.Customer.State, o.Customer.Zip, o.Customer.Country,
		nullTime(o.Customer.RegisteredAt), nullTime(o.PaidAt), o.UpdatedAt,
		o.ID,
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
	return s.saveMeta(ctx, o.ID, o.Meta)
}

// AddNote appends a note to the order log.
func (s *OrderStore) AddNote(ctx context.Context, orderID, text string) error {
	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM orders WHERE id = ?", orderID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return ports.ErrNotFound
	}
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO order_notes (id, order_id, note, created_at)
		VALUES (?, ?, ?, ?)
	`, s.idGen.New(), orderID, text, time.Now().UTC())
	return err
}

// GetMeta reads a single metadata value.
func (s *OrderStore) GetMeta(ctx context.Context, orderID, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `
		SELECT value FROM order_meta WHERE order_id = ? AND key = ?
	`, orderID, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ports.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// Delete removes an order. Metadata and notes cascade.
func (s *OrderStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM orders WHERE id = ?", id)
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

func (s *OrderStore) saveMeta(ctx context.Context, orderID string, meta map[string]string) error {
	for key, value := range meta {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO order_meta (order_id, key, value) VALUES (?, ?, ?)
			ON CONFLICT(order_id, key) DO UPDATE SET value = excluded.value
		`, orderID, key, value)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *OrderStore) loadMeta(ctx context.Context, orderID string) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT key, value FROM order_meta WHERE order_id = ?
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var meta map[string]string
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		if meta == nil {
			meta = make(map[string]string)
		}
		meta[key] = value
	}
	return meta, rows.Err()
}

func (s *OrderStore) loadNotes(ctx context.Context, orderID string) ([]order.Note, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, note, created_at FROM order_notes
		WHERE order_id = ?
		ORDER BY created_at, id
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []order.Note
	for rows.Next() {
		var n order.Note
		if err := rows.Scan(&n.ID, &n.Text, &n.CreatedAt); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func scanOrder(row *sql.Row) (order.Order, error) {
	var o order.Order
	var status string
	var registeredAt, paidAt sql.NullTime

	err := row.Scan(
		&o.ID, &o.Number, &o.UserID, &o.Email, &o.Currency, &o.Total, &status,
		&o.Customer.FirstName, &o.Customer.LastName, &o.Customer.Address,
		&o.Customer.City, &o.Customer.State, &o.Customer.Zip, &o.Customer.Country,
		&registeredAt, &paidAt, &o.CreatedAt, &o.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return order.Order{}, ports.ErrNotFound
	}
	if err != nil {
		return order.Order{}, err
	}

	o.Status = order.Status(status)
	if registeredAt.Valid {
		t := registeredAt.Time
		o.Customer.RegisteredAt = &t
	}
	if paidAt.Valid {
		t := paidAt.Time
		o.PaidAt = &t
	}
	return o, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil || t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
