// Package app provides application services that orchestrate domain logic.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/merchantkit/brickgate/domain/order"
	"github.com/merchantkit/brickgate/domain/subscription"
	"github.com/merchantkit/brickgate/ports"
	"github.com/rs/zerolog"
)

// GatewayID identifies this gateway on platform subscriptions.
const GatewayID = "brick"

// Outcome is the disposition of a payment attempt.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFail    Outcome = "fail"
)

// Result is the record returned for every payment attempt. Redirect is only
// set on success.
type Result struct {
	Outcome  Outcome `json:"outcome"`
	Redirect string  `json:"redirect"`
}

// TokenBundle is the request-scoped card token bundle submitted by the
// client-side payment form. Never persisted.
type TokenBundle struct {
	Token       string
	Fingerprint string
	RemoteAddr  string // caller network address, provider uid fallback
}

// PaymentService is the gateway core: it translates platform orders into
// provider calls and maps responses back into order-state transitions.
// It also implements ports.SubscriptionEvents.
type PaymentService struct {
	orders   ports.OrderStore
	subs     ports.SubscriptionStore
	cart     ports.Cart
	notices  ports.Notices
	provider ports.PaymentProvider
	clock    ports.Clock
	logger   zerolog.Logger

	mu        sync.RWMutex
	siteName  string
	returnURL string
}

// PaymentDeps contains dependencies for PaymentService.
type PaymentDeps struct {
	Orders   ports.OrderStore
	Subs     ports.SubscriptionStore
	Cart     ports.Cart
	Notices  ports.Notices
	Provider ports.PaymentProvider
	Clock    ports.Clock
}

// PaymentConfig contains static configuration for PaymentService.
type PaymentConfig struct {
	// SiteName appears in the payment description shown on the
	// customer's statement.
	SiteName string
	// ReturnURL is where the customer lands after a successful payment.
	// A %s verb, when present, receives the order ID.
	ReturnURL string
}

// NewPaymentService creates the gateway payment service.
func NewPaymentService(deps PaymentDeps, cfg PaymentConfig, logger zerolog.Logger) *PaymentService {
	return &PaymentService{
		orders:    deps.Orders,
		subs:      deps.Subs,
		cart:      deps.Cart,
		notices:   deps.Notices,
		provider:  deps.Provider,
		clock:     deps.Clock,
		logger:    logger.With().Str("component", "payments").Logger(),
		siteName:  cfg.SiteName,
		returnURL: cfg.ReturnURL,
	}
}

// Ensure interface compliance.
var _ ports.SubscriptionEvents = (*PaymentService)(nil)

// UpdateConfig swaps the site settings at runtime, for config hot reload.
func (s *PaymentService) UpdateConfig(cfg PaymentConfig) {
	s.mu.Lock()
	s.siteName = cfg.SiteName
	s.returnURL = cfg.ReturnURL
	s.mu.Unlock()
}

func (s *PaymentService) site() PaymentConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return PaymentConfig{SiteName: s.siteName, ReturnURL: s.returnURL}
}

// ProcessPayment handles one inbound payment submission for an order.
// It always returns a result record; every failure is resolved here and
// surfaced as a queued user notice, never as a fault to the caller.
func (s *PaymentService) ProcessPayment(ctx context.Context, orderID string, bundle TokenBundle) (res Result) {
	res = Result{Outcome: OutcomeFail}

	// The contract never raises past the dispatcher boundary.
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Interface("panic", r).Str("order_id", orderID).
				Msg("payment attempt panicked")
			s.notify(ctx, orderID, msgPaymentFailed)
			res = Result{Outcome: OutcomeFail}
		}
	}()

	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID).Msg("load order")
		s.notify(ctx, orderID, msgPaymentFailed)
		return res
	}

	subs, err := s.subs.ForOrder(ctx, orderID)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID).Msg("load subscriptions")
		s.notify(ctx, orderID, msgPaymentFailed)
		return res
	}

	if len(subs) > 0 {
		// Multi-subscription orders are unsupported; only the first
		// subscription is processed.
		return s.processSubscriptionPayment(ctx, o, subs[0], bundle)
	}
	return s.processChargePayment(ctx, o, bundle)
}

// processSubscriptionPayment creates a provider subscription resource for
// the order and applies the resulting order transition.
func (s *PaymentService) processSubscriptionPayment(ctx context.Context, o order.Order, sub subscription.Subscription, bundle TokenBundle) Result {
	fail := Result{Outcome: OutcomeFail}

	req, err := s.subscriptionRequest(o, sub, bundle)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			s.notify(ctx, o.ID, msgPaymentInvalid)
		} else {
			s.logger.Error().Err(err).Str("order_id", o.ID).Msg("build subscription payload")
			s.notify(ctx, o.ID, msgPaymentFailed)
		}
		return fail
	}

	resp, err := s.provider.CreateSubscription(ctx, req)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", o.ID).Msg("provider subscription call failed")
		s.notify(ctx, o.ID, msgPaymentFailed)
		return fail
	}

	if !resp.IsSubscription() {
		s.logger.Info().Str("order_id", o.ID).Str("object", resp.Object).
			Str("provider_error", resp.Error).Msg("provider rejected subscription")
		s.notify(ctx, o.ID, resp.ErrorMessage())
		return fail
	}

	s.settleOrder(ctx, o, resp.ID, resp.Active.Bool(),
		fmt.Sprintf("Brick subscription payment approved (ID: %s)", resp.ID))
	return Result{Outcome: OutcomeSuccess, Redirect: s.redirectFor(o)}
}

// processChargePayment performs a one-time tokenized charge for an order
// without a subscription.
func (s *PaymentService) processChargePayment(ctx context.Context, o order.Order, bundle TokenBundle) Result {
	fail := Result{Outcome: OutcomeFail}

	req, err := s.chargeRequest(o, bundle)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			s.notify(ctx, o.ID, msgPaymentInvalid)
		} else {
			s.logger.Error().Err(err).Str("order_id", o.ID).Msg("build charge payload")
			s.notify(ctx, o.ID, msgPaymentFailed)
		}
		return fail
	}

	resp, err := s.provider.Charge(ctx, req)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", o.ID).Msg("provider charge call failed")
		s.notify(ctx, o.ID, msgPaymentFailed)
		return fail
	}

	if !resp.IsCharge() {
		s.logger.Info().Str("order_id", o.ID).Str("object", resp.Object).
			Str("provider_error", resp.Error).Msg("provider rejected charge")
		s.notify(ctx, o.ID, resp.ErrorMessage())
		return fail
	}

	s.settleOrder(ctx, o, resp.ID, resp.Captured.Bool(),
		fmt.Sprintf("Brick payment approved (ID: %s)", resp.ID))
	return Result{Outcome: OutcomeSuccess, Redirect: s.redirectFor(o)}
}

// settleOrder applies the order transition for an accepted payment:
// completed when the provider resource is already active/captured, on-hold
// when acceptance is still pending external confirmation. The cart is
// cleared either way.
func (s *PaymentService) settleOrder(ctx context.Context, o order.Order, transactionID string, finalized bool, note string) {
	now := s.clock.Now().UTC()

	if finalized {
		s.addNote(ctx, o.ID, note)
		if err := s.orders.Update(ctx, o.PaymentComplete(transactionID, now)); err != nil {
			s.logger.Error().Err(err).Str("order_id", o.ID).
				Str("transaction_id", transactionID).Msg("mark order paid")
		}
	} else {
		if err := s.orders.Update(ctx, o.Hold(now)); err != nil {
			s.logger.Error().Err(err).Str("order_id", o.ID).Msg("hold order")
		}
	}

	if err := s.cart.Empty(ctx, o.UserID); err != nil {
		s.logger.Warn().Err(err).Str("order_id", o.ID).Msg("empty cart")
	}

	s.logger.Info().Str("order_id", o.ID).Str("transaction_id", transactionID).
		Bool("finalized", finalized).Msg("payment accepted")
}

func (s *PaymentService) notify(ctx context.Context, orderID, message string) {
	if err := s.notices.Error(ctx, orderID, message); err != nil {
		s.logger.Warn().Err(err).Str("order_id", orderID).Msg("queue notice")
	}
}

func (s *PaymentService) addNote(ctx context.Context, orderID, text string) {
	if err := s.orders.AddNote(ctx, orderID, text); err != nil {
		s.logger.Warn().Err(err).Str("order_id", orderID).Msg("add order note")
	}
}

// redirectFor builds the post-payment redirect URL for an order.
func (s *PaymentService) redirectFor(o order.Order) string {
	returnURL := s.site().ReturnURL
	if strings.Contains(returnURL, "%s") {
		return fmt.Sprintf(returnURL, o.ID)
	}
	return returnURL
}

// numberFor returns the customer-facing order number.
func numberFor(o order.Order) string {
	if o.Number != "" {
		return o.Number
	}
	return o.ID
}
