package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/merchantkit/brickgate/adapters/idgen"
	"github.com/merchantkit/brickgate/adapters/sqlite"
	"github.com/merchantkit/brickgate/domain/order"
	"github.com/merchantkit/brickgate/domain/subscription"
	"github.com/merchantkit/brickgate/ports"
)

func testDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestMigrate_Idempotent(t *testing.T) {
	db := testDB(t)
	if err := db.Migrate(); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

func TestOrderStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	s := sqlite.NewOrderStore(db, idgen.NewSequential("n-"))

	reg := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	o := order.Order{
		ID:       "o1",
		Number:   "1001",
		UserID:   "u1",
		Email:    "buyer@example.com",
		Currency: "USD",
		Total:    2999,
		Status:   order.StatusPending,
		Customer: order.Customer{
			FirstName:    "Ada",
			LastName:     "Lovelace",
			Country:      "GB",
			RegisteredAt: &reg,
		},
		Meta: map[string]string{"channel": "web"},
	}
	if err := s.Create(ctx, o); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := s.Get(ctx, "o1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Number != "1001" || got.Total != 2999 || got.Currency != "USD" {
		t.Errorf("order = %+v", got)
	}
	if got.Customer.RegisteredAt == nil || !got.Customer.RegisteredAt.Equal(reg) {
		t.Errorf("registered at = %v", got.Customer.RegisteredAt)
	}
	if got.Meta["channel"] != "web" {
		t.Errorf("meta = %v", got.Meta)
	}

	if err := s.Create(ctx, o); !errors.Is(err, ports.ErrDuplicate) {
		t.Errorf("duplicate create: %v", err)
	}
	if _, err := s.Get(ctx, "missing"); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("missing get: %v", err)
	}
}

func TestOrderStore_PaymentFlow(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	s := sqlite.NewOrderStore(db, idgen.NewSequential("n-"))

	s.Create(ctx, order.Order{ID: "o1", Currency: "USD", Total: 100, Status: order.StatusPending})

	o, _ := s.Get(ctx, "o1")
	paidAt := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	if err := s.Update(ctx, o.PaymentComplete("txn_1", paidAt)); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := s.AddNote(ctx, "o1", "Brick payment approved (ID: txn_1)"); err != nil {
		t.Fatalf("add note: %v", err)
	}

	got, _ := s.Get(ctx, "o1")
	if got.Status != order.StatusCompleted {
		t.Errorf("status = %s", got.Status)
	}
	if got.PaidAt == nil || !got.PaidAt.Equal(paidAt) {
		t.Errorf("paid at = %v", got.PaidAt)
	}
	if len(got.Notes) != 1 || got.Notes[0].Text != "Brick payment approved (ID: txn_1)" {
		t.Errorf("notes = %+v", got.Notes)
	}

	v, err := s.GetMeta(ctx, "o1", order.MetaTransactionID)
	if err != nil {
		t.Fatalf("get meta: %v", err)
	}
	if v != "txn_1" {
		t.Errorf("meta = %q", v)
	}
}

func TestOrderStore_GetMeta_Absent(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	s := sqlite.NewOrderStore(db, idgen.NewSequential("n-"))
	s.Create(ctx, order.Order{ID: "o1", Currency: "USD", Total: 100})

	if _, err := s.GetMeta(ctx, "o1", order.MetaTransactionID); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("absent meta: %v", err)
	}
}

func TestOrderStore_AddNote_UnknownOrder(t *testing.T) {
	db := testDB(t)
	s := sqlite.NewOrderStore(db, idgen.NewSequential("n-"))

	if err := s.AddNote(context.Background(), "missing", "text"); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("add note: %v", err)
	}
}

func TestOrderStore_Update_UnknownOrder(t *testing.T) {
	db := testDB(t)
	s := sqlite.NewOrderStore(db, idgen.NewSequential("n-"))

	err := s.Update(context.Background(), order.Order{ID: "missing", Status: order.StatusCompleted})
	if !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("update: %v", err)
	}
}

func TestOrderStore_Delete_Cascades(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	s := sqlite.NewOrderStore(db, idgen.NewSequential("n-"))

	err := s.Create(ctx, order.Order{
		ID: "o1", Currency: "USD", Total: 100,
		Meta: map[string]string{"_transaction_id": "txn_1"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.AddNote(ctx, "o1", "registered"); err != nil {
		t.Fatal(err)
	}

	if err := s.Delete(ctx, "o1"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(ctx, "o1"); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("get after delete: %v, want ErrNotFound", err)
	}
	if _, err := s.GetMeta(ctx, "o1", "_transaction_id"); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("meta survived delete: %v, want ErrNotFound", err)
	}

	if err := s.Delete(ctx, "o1"); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("delete missing: %v, want ErrNotFound", err)
	}
}

func TestSubscriptionStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	orders := sqlite.NewOrderStore(db, idgen.NewSequential("n-"))
	s := sqlite.NewSubscriptionStore(db)

	orders.Create(ctx, order.Order{ID: "o1", Currency: "USD", Total: 100})

	trialEnd := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	sub := subscription.Subscription{
		ID:             "sub-1",
		OrderID:        "o1",
		PaymentMethod:  "brick",
		Period:         subscription.PeriodMonth,
		Interval:       1,
		RecurringTotal: 2999,
		TrialPeriod:    subscription.PeriodDay,
		TrialEnd:       &trialEnd,
	}
	if err := s.Create(ctx, sub); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := s.Get(ctx, "sub-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != subscription.StatusActive {
		t.Errorf("status defaulted to %s, want active", got.Status)
	}
	if got.TrialEnd == nil || !got.TrialEnd.Equal(trialEnd) {
		t.Errorf("trial end = %v", got.TrialEnd)
	}
	if got.Period != subscription.PeriodMonth || got.Interval != 1 {
		t.Errorf("cadence = %s/%d", got.Period, got.Interval)
	}

	got.Status = subscription.StatusCancelled
	if err := s.Update(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}
	again, _ := s.Get(ctx, "sub-1")
	if again.Status != subscription.StatusCancelled {
		t.Errorf("status = %s", again.Status)
	}
}

func TestSubscriptionStore_ForOrder(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	orders := sqlite.NewOrderStore(db, idgen.NewSequential("n-"))
	s := sqlite.NewSubscriptionStore(db)

	orders.Create(ctx, order.Order{ID: "o1", Currency: "USD", Total: 100})
	orders.Create(ctx, order.Order{ID: "o2", Currency: "USD", Total: 100})

	early := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	s.Create(ctx, subscription.Subscription{ID: "sub-b", OrderID: "o1", Period: subscription.PeriodMonth, Interval: 1, CreatedAt: early})
	s.Create(ctx, subscription.Subscription{ID: "sub-a", OrderID: "o1", Period: subscription.PeriodMonth, Interval: 1, CreatedAt: late})
	s.Create(ctx, subscription.Subscription{ID: "sub-x", OrderID: "o2", Period: subscription.PeriodMonth, Interval: 1})

	subs, err := s.ForOrder(ctx, "o1")
	if err != nil {
		t.Fatalf("for order: %v", err)
	}
	if len(subs) != 2 {
		t.Fatalf("len = %d, want 2", len(subs))
	}
	if subs[0].ID != "sub-b" || subs[1].ID != "sub-a" {
		t.Errorf("order = [%s %s], want creation order", subs[0].ID, subs[1].ID)
	}

	none, _ := s.ForOrder(ctx, "no-such-order")
	if len(none) != 0 {
		t.Errorf("unexpected subscriptions: %v", none)
	}
}
