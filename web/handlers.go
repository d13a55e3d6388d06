package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/merchantkit/brickgate/app"
	"github.com/merchantkit/brickgate/domain/order"
	"github.com/merchantkit/brickgate/domain/subscription"
	"github.com/merchantkit/brickgate/ports"
)

// CustomerRequest is the billing profile on an order registration.
type CustomerRequest struct {
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Address      string     `json:"address"`
	City         string     `json:"city"`
	State        string     `json:"state"`
	Zip          string     `json:"zip"`
	Country      string     `json:"country"`
	RegisteredAt *time.Time `json:"registered_at,omitempty"`
}

// SubscriptionRequest is an optional subscription attached to an order
// registration.
type SubscriptionRequest struct {
	ID             string     `json:"id"`
	Period         string     `json:"period"`
	Interval       int        `json:"interval"`
	RecurringTotal int64      `json:"recurring_total"`
	TrialPeriod    string     `json:"trial_period,omitempty"`
	TrialEnd       *time.Time `json:"trial_end,omitempty"`
	PaymentMethod  string     `json:"payment_method,omitempty"`
}

// CreateOrderRequest registers a platform order ahead of payment.
type CreateOrderRequest struct {
	ID           string               `json:"id"`
	Number       string               `json:"number,omitempty"`
	UserID       string               `json:"user_id,omitempty"`
	Email        string               `json:"email"`
	Currency     string               `json:"currency"`
	Total        int64                `json:"total"`
	Customer     CustomerRequest      `json:"customer"`
	CreatedAt    *time.Time           `json:"created_at,omitempty"`
	Subscription *SubscriptionRequest `json:"subscription,omitempty"`
}

// PayRequest is the inbound payment submission: the token bundle from the
// client-side payment form.
type PayRequest struct {
	Token       string `json:"token"`
	Fingerprint string `json:"fingerprint"`
}

// FeatureSupportResponse answers a capability query.
type FeatureSupportResponse struct {
	Feature   string `json:"feature"`
	Supported bool   `json:"supported"`
}

// NoticesResponse lists queued user notices for an order.
type NoticesResponse struct {
	Notices []string `json:"notices"`
}

// CreateOrder registers an order (and optional subscription) for later
// payment.
//
//	@Summary	Register an order
//	@Accept		json
//	@Produce	json
//	@Param		order	body	CreateOrderRequest	true	"order"
//	@Success	201	{object}	CreateOrderRequest
//	@Failure	400	{object}	errorResponse
//	@Failure	409	{object}	errorResponse
//	@Security	ApiKeyAuth
//	@Router		/api/orders [post]
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ID == "" || req.Currency == "" || req.Total <= 0 {
		writeError(w, http.StatusBadRequest, "id, currency and a positive total are required")
		return
	}
	if req.Subscription != nil {
		if req.Subscription.ID == "" || req.Subscription.Interval <= 0 {
			writeError(w, http.StatusBadRequest, "subscription id and a positive interval are required")
			return
		}
		if !subscription.ValidPeriod(subscription.Period(req.Subscription.Period)) {
			writeError(w, http.StatusBadRequest, "unknown billing period")
			return
		}
	}

	o := order.Order{
		ID:       req.ID,
		Number:   req.Number,
		UserID:   req.UserID,
		Email:    req.Email,
		Currency: req.Currency,
		Total:    req.Total,
		Status:   order.StatusPending,
		Customer: order.Customer{
			FirstName:    req.Customer.FirstName,
			LastName:     req.Customer.LastName,
			Address:      req.Customer.Address,
			City:         req.Customer.City,
			State:        req.Customer.State,
			Zip:          req.Customer.Zip,
			Country:      req.Customer.Country,
			RegisteredAt: req.Customer.RegisteredAt,
		},
	}
	if req.CreatedAt != nil {
		o.CreatedAt = *req.CreatedAt
	}

	if err := h.orders.Create(r.Context(), o); err != nil {
		if errors.Is(err, ports.ErrDuplicate) {
			writeError(w, http.StatusConflict, "order already exists")
			return
		}
		h.logger.Error().Err(err).Str("order_id", req.ID).Msg("create order")
		writeError(w, http.StatusInternalServerError, "could not store order")
		return
	}

	if req.Subscription != nil {
		sub := subscription.Subscription{
			ID:             req.Subscription.ID,
			OrderID:        req.ID,
			PaymentMethod:  req.Subscription.PaymentMethod,
			Period:         subscription.Period(req.Subscription.Period),
			Interval:       req.Subscription.Interval,
			RecurringTotal: req.Subscription.RecurringTotal,
			TrialPeriod:    subscription.Period(req.Subscription.TrialPeriod),
			TrialEnd:       req.Subscription.TrialEnd,
		}
		if sub.PaymentMethod == "" {
			sub.PaymentMethod = app.GatewayID
		}
		if sub.TrialPeriod == "" {
			sub.TrialPeriod = sub.Period
		}
		if err := h.subs.Create(r.Context(), sub); err != nil {
			h.logger.Error().Err(err).Str("order_id", req.ID).
				Str("subscription_id", sub.ID).Msg("create subscription")
			// Unwind the order so the client can retry the whole
			// registration instead of hitting a duplicate conflict.
			if derr := h.orders.Delete(r.Context(), req.ID); derr != nil {
				h.logger.Error().Err(derr).Str("order_id", req.ID).
					Msg("unwind order after subscription failure")
			}
			writeError(w, http.StatusInternalServerError, "could not store subscription")
			return
		}
	}

	writeJSON(w, http.StatusCreated, req)
}

// Pay processes a payment submission for a registered order.
//
//	@Summary	Submit a tokenized card payment
//	@Accept		json
//	@Produce	json
//	@Param		id	path	string	true	"order ID"
//	@Param		bundle	body	PayRequest	true	"token bundle"
//	@Success	200	{object}	app.Result
//	@Failure	400	{object}	errorResponse
//	@Security	ApiKeyAuth
//	@Router		/api/orders/{id}/pay [post]
func (h *Handler) Pay(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	var req PayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result := h.payments.ProcessPayment(r.Context(), orderID, app.TokenBundle{
		Token:       req.Token,
		Fingerprint: req.Fingerprint,
		RemoteAddr:  r.RemoteAddr,
	})
	h.recordPayment(r.Context(), orderID, result)

	// The attempt always resolves to a result record; failures surface to
	// the customer through the notice queue, not HTTP errors.
	writeJSON(w, http.StatusOK, result)
}

// Notices returns queued user notices for an order.
//
//	@Summary	List user notices for an order
//	@Produce	json
//	@Param		id	path	string	true	"order ID"
//	@Success	200	{object}	NoticesResponse
//	@Security	ApiKeyAuth
//	@Router		/api/orders/{id}/notices [get]
func (h *Handler) Notices(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	notices, err := h.notices.List(r.Context(), orderID)
	if err != nil {
		h.logger.Error().Err(err).Str("order_id", orderID).Msg("list notices")
		writeError(w, http.StatusInternalServerError, "could not load notices")
		return
	}
	writeJSON(w, http.StatusOK, NoticesResponse{Notices: notices})
}

// SubscriptionCancelled handles the platform's subscription-cancelled
// event.
//
//	@Summary	Propagate a subscription cancellation
//	@Produce	json
//	@Param		id	path	string	true	"subscription ID"
//	@Success	204
//	@Failure	404	{object}	errorResponse
//	@Security	ApiKeyAuth
//	@Router		/api/subscriptions/{id}/cancelled [post]
func (h *Handler) SubscriptionCancelled(w http.ResponseWriter, r *http.Request) {
	subID := chi.URLParam(r, "id")

	sub, err := h.subs.Get(r.Context(), subID)
	if errors.Is(err, ports.ErrNotFound) {
		writeError(w, http.StatusNotFound, "subscription not found")
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Str("subscription_id", subID).Msg("load subscription")
		writeError(w, http.StatusInternalServerError, "could not load subscription")
		return
	}

	if err := h.events.OnSubscriptionCancelled(r.Context(), sub); err != nil {
		h.logger.Error().Err(err).Str("subscription_id", subID).Msg("cancellation propagation")
		writeError(w, http.StatusBadGateway, "provider cancellation failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// FeatureSupport answers a capability query for a subscription.
//
//	@Summary	Query gateway feature support
//	@Produce	json
//	@Param		feature	path	string	true	"capability name"
//	@Param		subscription_id	query	string	true	"subscription ID"
//	@Param		default	query	bool	false	"caller's existing answer"
//	@Success	200	{object}	FeatureSupportResponse
//	@Failure	404	{object}	errorResponse
//	@Security	ApiKeyAuth
//	@Router		/api/features/{feature} [get]
func (h *Handler) FeatureSupport(w http.ResponseWriter, r *http.Request) {
	feature := chi.URLParam(r, "feature")
	subID := r.URL.Query().Get("subscription_id")
	current := r.URL.Query().Get("default") == "true"

	sub, err := h.subs.Get(r.Context(), subID)
	if errors.Is(err, ports.ErrNotFound) {
		writeError(w, http.StatusNotFound, "subscription not found")
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Str("subscription_id", subID).Msg("load subscription")
		writeError(w, http.StatusInternalServerError, "could not load subscription")
		return
	}

	supported := h.events.QueryFeatureSupport(current, subscription.Feature(feature), sub)
	writeJSON(w, http.StatusOK, FeatureSupportResponse{Feature: feature, Supported: supported})
}

func (h *Handler) recordPayment(ctx context.Context, orderID string, result app.Result) {
	if h.metrics == nil {
		return
	}
	kind := "charge"
	if subs, err := h.subs.ForOrder(ctx, orderID); err == nil && len(subs) > 0 {
		kind = "subscription"
	}
	h.metrics.RecordPayment(kind, string(result.Outcome))
}
