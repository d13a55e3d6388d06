package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/merchantkit/brickgate/adapters/clock"
	"github.com/merchantkit/brickgate/adapters/idgen"
	"github.com/merchantkit/brickgate/adapters/memory"
	"github.com/merchantkit/brickgate/app"
	"github.com/merchantkit/brickgate/domain/brick"
	"github.com/merchantkit/brickgate/domain/order"
	"github.com/merchantkit/brickgate/domain/subscription"
)

var baseTime = time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

// fakeProvider records outbound calls and replays canned responses.
type fakeProvider struct {
	subResp    brick.Response
	subErr     error
	chargeResp brick.Response
	chargeErr  error
	cancelErr  error

	subReqs    []brick.SubscriptionRequest
	chargeReqs []brick.ChargeRequest
	cancelled  []string
}

func (p *fakeProvider) Name() string { return "brick" }

func (p *fakeProvider) CreateSubscription(ctx context.Context, req brick.SubscriptionRequest) (brick.Response, error) {
	p.subReqs = append(p.subReqs, req)
	return p.subResp, p.subErr
}

func (p *fakeProvider) Charge(ctx context.Context, req brick.ChargeRequest) (brick.Response, error) {
	p.chargeReqs = append(p.chargeReqs, req)
	return p.chargeResp, p.chargeErr
}

func (p *fakeProvider) CancelSubscription(ctx context.Context, subscriptionID string) error {
	p.cancelled = append(p.cancelled, subscriptionID)
	return p.cancelErr
}

type testStores struct {
	orders   *memory.OrderStore
	subs     *memory.SubscriptionStore
	cart     *memory.CartStore
	notices  *memory.NoticeStore
	provider *fakeProvider
	clock    *clock.Frozen
}

func newTestService(t *testing.T) (*app.PaymentService, *testStores) {
	t.Helper()

	st := &testStores{
		orders:   memory.NewOrderStore(clock.NewFrozen(baseTime), idgen.NewSequential("note-")),
		subs:     memory.NewSubscriptionStore(clock.NewFrozen(baseTime)),
		cart:     memory.NewCartStore(),
		notices:  memory.NewNoticeStore(),
		provider: &fakeProvider{},
		clock:    clock.NewFrozen(baseTime),
	}

	svc := app.NewPaymentService(app.PaymentDeps{
		Orders:   st.orders,
		Subs:     st.subs,
		Cart:     st.cart,
		Notices:  st.notices,
		Provider: st.provider,
		Clock:    st.clock,
	}, app.PaymentConfig{
		SiteName:  "Acme Shop",
		ReturnURL: "https://shop.example/thanks?order=%s",
	}, zerolog.Nop())

	return svc, st
}

func seedOrder(t *testing.T, st *testStores, o order.Order) {
	t.Helper()
	if err := st.orders.Create(context.Background(), o); err != nil {
		t.Fatalf("seed order: %v", err)
	}
}

func seedSubscription(t *testing.T, st *testStores, sub subscription.Subscription) {
	t.Helper()
	if err := st.subs.Create(context.Background(), sub); err != nil {
		t.Fatalf("seed subscription: %v", err)
	}
}

func standardOrder() order.Order {
	return order.Order{
		ID:       "order-1",
		Number:   "1001",
		UserID:   "user-1",
		Email:    "buyer@example.com",
		Currency: "USD",
		Total:    2999,
		Customer: order.Customer{
			FirstName: "Ada",
			LastName:  "Lovelace",
			Country:   "GB",
		},
		CreatedAt: baseTime,
	}
}

func standardSubscription() subscription.Subscription {
	return subscription.Subscription{
		ID:             "sub-1",
		OrderID:        "order-1",
		PaymentMethod:  app.GatewayID,
		Period:         subscription.PeriodMonth,
		Interval:       1,
		RecurringTotal: 2999,
		TrialPeriod:    subscription.PeriodMonth,
	}
}

func validBundle() app.TokenBundle {
	return app.TokenBundle{Token: "tok_abc", Fingerprint: "fp_xyz", RemoteAddr: "203.0.113.9"}
}

func TestProcessPayment_SubscriptionActive_CompletesOrder(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(t)
	seedOrder(t, st, standardOrder())
	seedSubscription(t, st, standardSubscription())
	st.cart.Add("user-1", "item-1")
	st.provider.subResp = brick.Response{
		Object: brick.ObjectSubscription, ID: "bsub_42", Success: true, Active: true,
	}

	res := svc.ProcessPayment(ctx, "order-1", validBundle())

	if res.Outcome != app.OutcomeSuccess {
		t.Fatalf("outcome = %s, want success", res.Outcome)
	}
	if res.Redirect != "https://shop.example/thanks?order=order-1" {
		t.Errorf("redirect = %q", res.Redirect)
	}

	o, err := st.orders.Get(ctx, "order-1")
	if err != nil {
		t.Fatal(err)
	}
	if o.Status != order.StatusCompleted {
		t.Errorf("status = %s, want completed", o.Status)
	}
	if got := o.TransactionID(); got != "bsub_42" {
		t.Errorf("transaction id = %q, want bsub_42", got)
	}
	if len(o.Notes) != 1 || o.Notes[0].Text != "Brick subscription payment approved (ID: bsub_42)" {
		t.Errorf("notes = %+v", o.Notes)
	}
	if len(st.cart.Items("user-1")) != 0 {
		t.Error("cart not emptied")
	}
}

func TestProcessPayment_SubscriptionNotActive_HoldsOrder(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(t)
	seedOrder(t, st, standardOrder())
	seedSubscription(t, st, standardSubscription())
	st.provider.subResp = brick.Response{
		Object: brick.ObjectSubscription, ID: "bsub_42", Success: true, Active: false,
	}

	res := svc.ProcessPayment(ctx, "order-1", validBundle())

	if res.Outcome != app.OutcomeSuccess {
		t.Fatalf("outcome = %s, want success", res.Outcome)
	}

	o, _ := st.orders.Get(ctx, "order-1")
	if o.Status != order.StatusOnHold {
		t.Errorf("status = %s, want on-hold", o.Status)
	}
	if got := o.TransactionID(); got != "" {
		t.Errorf("transaction id set on held order: %q", got)
	}
	if len(o.Notes) != 0 {
		t.Errorf("no note expected on held order, got %+v", o.Notes)
	}
}

func TestProcessPayment_ProviderRejection_QueuesProviderMessage(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(t)
	seedOrder(t, st, standardOrder())
	seedSubscription(t, st, standardSubscription())
	st.provider.subResp = brick.Response{
		Object: "Error", Error: "Card declined", Code: 3002,
	}

	res := svc.ProcessPayment(ctx, "order-1", validBundle())

	if res.Outcome != app.OutcomeFail {
		t.Fatalf("outcome = %s, want fail", res.Outcome)
	}
	if res.Redirect != "" {
		t.Errorf("redirect = %q, want empty", res.Redirect)
	}

	notices, _ := st.notices.List(ctx, "order-1")
	if len(notices) != 1 || notices[0] != "Card declined" {
		t.Errorf("notices = %v", notices)
	}

	// Order untouched.
	o, _ := st.orders.Get(ctx, "order-1")
	if o.Status != order.StatusPending {
		t.Errorf("status = %s, want pending", o.Status)
	}
}

func TestProcessPayment_RejectionWithoutMessage_UsesFallback(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(t)
	seedOrder(t, st, standardOrder())
	seedSubscription(t, st, standardSubscription())
	st.provider.subResp = brick.Response{Object: "Error"}

	svc.ProcessPayment(ctx, "order-1", validBundle())

	notices, _ := st.notices.List(ctx, "order-1")
	if len(notices) != 1 || notices[0] != "payment was declined by the provider" {
		t.Errorf("notices = %v", notices)
	}
}

func TestProcessPayment_MissingToken_FailsWithoutProviderCall(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(t)
	seedOrder(t, st, standardOrder())
	seedSubscription(t, st, standardSubscription())

	res := svc.ProcessPayment(ctx, "order-1", app.TokenBundle{Fingerprint: "fp_only"})

	if res.Outcome != app.OutcomeFail {
		t.Fatalf("outcome = %s, want fail", res.Outcome)
	}
	if len(st.provider.subReqs) != 0 {
		t.Error("provider called despite missing token")
	}

	notices, _ := st.notices.List(ctx, "order-1")
	if len(notices) != 1 || notices[0] != "Payment invalid, please check your card details and try again." {
		t.Errorf("notices = %v", notices)
	}
}

func TestProcessPayment_NetworkFailure_Fails(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(t)
	seedOrder(t, st, standardOrder())
	seedSubscription(t, st, standardSubscription())
	st.provider.subErr = errors.New("connection reset")

	res := svc.ProcessPayment(ctx, "order-1", validBundle())

	if res.Outcome != app.OutcomeFail {
		t.Fatalf("outcome = %s, want fail", res.Outcome)
	}
	notices, _ := st.notices.List(ctx, "order-1")
	if len(notices) != 1 || notices[0] != "Payment could not be processed, please try again." {
		t.Errorf("notices = %v", notices)
	}
}

func TestProcessPayment_UnknownOrder_Fails(t *testing.T) {
	svc, _ := newTestService(t)

	res := svc.ProcessPayment(context.Background(), "missing", validBundle())

	if res.Outcome != app.OutcomeFail {
		t.Fatalf("outcome = %s, want fail", res.Outcome)
	}
}

func TestProcessPayment_ChargePath_CapturedCompletesOrder(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(t)
	seedOrder(t, st, standardOrder()) // no subscription attached
	st.provider.chargeResp = brick.Response{
		Object: brick.ObjectCharge, ID: "chg_7", Success: true, Captured: true,
	}

	res := svc.ProcessPayment(ctx, "order-1", validBundle())

	if res.Outcome != app.OutcomeSuccess {
		t.Fatalf("outcome = %s, want success", res.Outcome)
	}
	if len(st.provider.subReqs) != 0 {
		t.Error("subscription call made for plain order")
	}
	if len(st.provider.chargeReqs) != 1 {
		t.Fatalf("charge calls = %d, want 1", len(st.provider.chargeReqs))
	}
	if got := st.provider.chargeReqs[0].Amount; got != 2999 {
		t.Errorf("charge amount = %d, want 2999", got)
	}

	o, _ := st.orders.Get(ctx, "order-1")
	if o.Status != order.StatusCompleted {
		t.Errorf("status = %s, want completed", o.Status)
	}
	if len(o.Notes) != 1 || o.Notes[0].Text != "Brick payment approved (ID: chg_7)" {
		t.Errorf("notes = %+v", o.Notes)
	}
}

func TestProcessPayment_ChargeNotCaptured_HoldsOrder(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(t)
	seedOrder(t, st, standardOrder())
	st.provider.chargeResp = brick.Response{
		Object: brick.ObjectCharge, ID: "chg_7", Success: true, Captured: false,
	}

	res := svc.ProcessPayment(ctx, "order-1", validBundle())

	if res.Outcome != app.OutcomeSuccess {
		t.Fatalf("outcome = %s, want success", res.Outcome)
	}
	o, _ := st.orders.Get(ctx, "order-1")
	if o.Status != order.StatusOnHold {
		t.Errorf("status = %s, want on-hold", o.Status)
	}
}

func TestProcessPayment_SubscriptionPayload(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(t)

	reg := baseTime.AddDate(-1, 0, 0)
	o := standardOrder()
	o.Customer.RegisteredAt = &reg
	seedOrder(t, st, o)

	sub := standardSubscription()
	sub.Period = subscription.PeriodWeek
	sub.Interval = 2
	seedSubscription(t, st, sub)

	st.provider.subResp = brick.Response{
		Object: brick.ObjectSubscription, ID: "bsub_1", Success: true, Active: true,
	}

	svc.ProcessPayment(ctx, "order-1", validBundle())

	if len(st.provider.subReqs) != 1 {
		t.Fatalf("subscription calls = %d, want 1", len(st.provider.subReqs))
	}
	req := st.provider.subReqs[0]
	if req.Token != "tok_abc" || req.Fingerprint != "fp_xyz" {
		t.Errorf("token bundle = %q/%q", req.Token, req.Fingerprint)
	}
	if req.Amount != 2999 || req.Currency != "USD" {
		t.Errorf("amount = %d %s", req.Amount, req.Currency)
	}
	if req.Plan != "order-1" {
		t.Errorf("plan = %q, want order ID", req.Plan)
	}
	if req.Description != "Acme Shop - Order #1001" {
		t.Errorf("description = %q", req.Description)
	}
	if req.Period != "week" || req.PeriodDuration != 2 {
		t.Errorf("period = %s/%d", req.Period, req.PeriodDuration)
	}
	if req.UID != "user-1" {
		t.Errorf("uid = %q, want user-1", req.UID)
	}
	if req.Profile.RegisteredAt == nil || !req.Profile.RegisteredAt.Equal(reg) {
		t.Errorf("registered at = %v", req.Profile.RegisteredAt)
	}
}

func TestProcessPayment_GuestOrder_UIDFallsBackToRemoteAddr(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(t)

	o := standardOrder()
	o.UserID = ""
	seedOrder(t, st, o)
	seedSubscription(t, st, standardSubscription())
	st.provider.subResp = brick.Response{
		Object: brick.ObjectSubscription, ID: "bsub_1", Success: true, Active: true,
	}

	svc.ProcessPayment(ctx, "order-1", validBundle())

	if got := st.provider.subReqs[0].UID; got != "203.0.113.9" {
		t.Errorf("uid = %q, want remote addr", got)
	}
}

func TestProcessPayment_OrderWithoutNumber_UsesIDInDescription(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(t)

	o := standardOrder()
	o.Number = ""
	seedOrder(t, st, o)
	seedSubscription(t, st, standardSubscription())
	st.provider.subResp = brick.Response{
		Object: brick.ObjectSubscription, ID: "bsub_1", Success: true, Active: true,
	}

	svc.ProcessPayment(ctx, "order-1", validBundle())

	if got := st.provider.subReqs[0].Description; got != "Acme Shop - Order #order-1" {
		t.Errorf("description = %q", got)
	}
}

func TestProcessPayment_StaticReturnURL(t *testing.T) {
	ctx := context.Background()
	st := &testStores{
		orders:   memory.NewOrderStore(clock.NewFrozen(baseTime), idgen.NewSequential("note-")),
		subs:     memory.NewSubscriptionStore(clock.NewFrozen(baseTime)),
		cart:     memory.NewCartStore(),
		notices:  memory.NewNoticeStore(),
		provider: &fakeProvider{},
		clock:    clock.NewFrozen(baseTime),
	}
	svc := app.NewPaymentService(app.PaymentDeps{
		Orders: st.orders, Subs: st.subs, Cart: st.cart,
		Notices: st.notices, Provider: st.provider, Clock: st.clock,
	}, app.PaymentConfig{SiteName: "Acme Shop", ReturnURL: "https://shop.example/thanks"}, zerolog.Nop())

	seedOrder(t, st, standardOrder())
	st.provider.chargeResp = brick.Response{
		Object: brick.ObjectCharge, ID: "chg_1", Success: true, Captured: true,
	}

	res := svc.ProcessPayment(ctx, "order-1", validBundle())

	if res.Redirect != "https://shop.example/thanks" {
		t.Errorf("redirect = %q", res.Redirect)
	}
}

func TestProcessPayment_MultiSubscriptionOrder_OnlyFirstProcessed(t *testing.T) {
	svc, st := newTestService(t)
	seedOrder(t, st, standardOrder())
	seedSubscription(t, st, standardSubscription())
	seedSubscription(t, st, subscription.Subscription{
		ID:             "sub-2",
		OrderID:        "order-1",
		PaymentMethod:  app.GatewayID,
		Period:         subscription.PeriodYear,
		Interval:       1,
		RecurringTotal: 9999,
		TrialPeriod:    subscription.PeriodYear,
		CreatedAt:      baseTime.Add(time.Hour),
	})

	st.provider.subResp = brick.Response{
		Object: brick.ObjectSubscription, ID: "bsub_1", Success: true, Active: true,
	}
	res := svc.ProcessPayment(context.Background(), "order-1", validBundle())

	if res.Outcome != app.OutcomeSuccess {
		t.Fatalf("outcome = %q", res.Outcome)
	}
	if len(st.provider.subReqs) != 1 {
		t.Fatalf("provider subscription calls = %d, want 1", len(st.provider.subReqs))
	}
	req := st.provider.subReqs[0]
	if req.Period != string(subscription.PeriodMonth) || req.PeriodDuration != 1 {
		t.Errorf("period = %s/%d, want month/1", req.Period, req.PeriodDuration)
	}
	if req.Amount != 2999 {
		t.Errorf("amount = %d, want 2999", req.Amount)
	}
	if len(st.provider.chargeReqs) != 0 {
		t.Errorf("charge calls = %d, want 0", len(st.provider.chargeReqs))
	}
}

func TestPaymentService_UpdateConfig(t *testing.T) {
	svc, st := newTestService(t)
	seedOrder(t, st, standardOrder())
	st.provider.chargeResp = brick.Response{
		Object: brick.ObjectCharge, ID: "chg_1", Success: true, Captured: true,
	}

	svc.UpdateConfig(app.PaymentConfig{
		SiteName:  "Acme Shop EU",
		ReturnURL: "https://eu.shop.example/thanks?order=%s",
	})

	res := svc.ProcessPayment(context.Background(), "order-1", validBundle())

	if res.Redirect != "https://eu.shop.example/thanks?order=order-1" {
		t.Errorf("redirect = %q", res.Redirect)
	}
	if got := st.provider.chargeReqs[0].Description; got != "Acme Shop EU - Order #1001" {
		t.Errorf("description = %q", got)
	}
}
