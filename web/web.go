// Package web provides the platform-facing HTTP API.
package web

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/merchantkit/brickgate/adapters/metrics"
	"github.com/merchantkit/brickgate/app"
	_ "github.com/merchantkit/brickgate/docs/swagger" // swagger docs
	"github.com/merchantkit/brickgate/ports"
)

// Payments processes inbound payment submissions.
type Payments interface {
	ProcessPayment(ctx context.Context, orderID string, bundle app.TokenBundle) app.Result
}

// Handler serves the gateway API.
type Handler struct {
	payments Payments
	events   ports.SubscriptionEvents
	orders   ports.OrderStore
	subs     ports.SubscriptionStore
	notices  ports.Notices
	hasher   ports.Hasher
	keyHash  func() string
	logger   zerolog.Logger
	metrics  *metrics.Collector
}

// Deps contains dependencies for the API handler.
type Deps struct {
	Payments Payments
	Events   ports.SubscriptionEvents
	Orders   ports.OrderStore
	Subs     ports.SubscriptionStore
	Notices  ports.Notices
	Hasher   ports.Hasher

	// KeyHash returns the current bcrypt hash of the platform API key.
	// Empty disables authentication. A func so hot reload takes effect
	// without rebuilding the router.
	KeyHash func() string

	Logger  zerolog.Logger
	Metrics *metrics.Collector
}

// NewHandler creates the API handler.
func NewHandler(deps Deps) *Handler {
	keyHash := deps.KeyHash
	if keyHash == nil {
		keyHash = func() string { return "" }
	}
	return &Handler{
		payments: deps.Payments,
		events:   deps.Events,
		orders:   deps.Orders,
		subs:     deps.Subs,
		notices:  deps.Notices,
		hasher:   deps.Hasher,
		keyHash:  keyHash,
		logger:   deps.Logger.With().Str("component", "web").Logger(),
		metrics:  deps.Metrics,
	}
}

// Routes returns the root router.
func (h *Handler) Routes(metricsEnabled bool, metricsPath string) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(h.measure)

	r.Get("/healthz", h.Health)
	if metricsEnabled {
		r.Method(http.MethodGet, metricsPath, promhttp.Handler())
	}
	r.Get("/swagger/*", httpSwagger.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(h.requireAPIKey)

		r.Post("/orders", h.CreateOrder)
		r.Post("/orders/{id}/pay", h.Pay)
		r.Get("/orders/{id}/notices", h.Notices)
		r.Post("/subscriptions/{id}/cancelled", h.SubscriptionCancelled)
		r.Get("/features/{feature}", h.FeatureSupport)
	})

	return r
}

// Health returns liveness status.
//
//	@Summary	Health check
//	@Produce	json
//	@Success	200	{object}	map[string]string
//	@Router		/healthz [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// requireAPIKey authenticates the platform via X-API-Key when a key hash is
// configured.
func (h *Handler) requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hash := h.keyHash()
		if hash == "" {
			next.ServeHTTP(w, r)
			return
		}

		key := r.Header.Get("X-API-Key")
		if key == "" || !h.hasher.Compare([]byte(hash), key) {
			h.logger.Warn().Str("path", r.URL.Path).Msg("rejected api key")
			writeError(w, http.StatusUnauthorized, "invalid api key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// measure records request metrics.
func (h *Handler) measure(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.metrics == nil {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		pattern := chi.RouteContext(r.Context()).RoutePattern()
		if pattern == "" {
			pattern = "unmatched"
		}
		status := statusLabel(ww.Status())
		h.metrics.RequestsTotal.WithLabelValues(r.Method, pattern, status).Inc()
		h.metrics.RequestDuration.WithLabelValues(r.Method, pattern, status).
			Observe(time.Since(start).Seconds())
	})
}

func statusLabel(code int) string {
	if code == 0 {
		code = http.StatusOK
	}
	return strconv.Itoa(code)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
