// Package brick provides the HTTP client for the Brick payment API,
// implementing ports.PaymentProvider.
package brick

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/merchantkit/brickgate/adapters/metrics"
	wire "github.com/merchantkit/brickgate/domain/brick"
	"github.com/merchantkit/brickgate/ports"
	"github.com/rs/zerolog"
)

// DefaultBaseURL is the production Brick API endpoint.
const DefaultBaseURL = "https://api.paymentwall.com"

const maxResponseBytes = 1 << 20

// Config holds Brick API credentials and endpoints.
type Config struct {
	PublicKey string
	SecretKey string
	BaseURL   string
	Timeout   time.Duration
}

// Client calls the Brick API. One blocking round-trip per operation, no
// retries; a failed attempt surfaces immediately. Credentials and endpoint
// may rotate at runtime via UpdateConfig.
type Client struct {
	mu      sync.RWMutex
	cfg     Config
	http    *http.Client
	logger  zerolog.Logger
	metrics *metrics.Collector
}

// New creates a Brick API client.
func New(cfg Config, logger zerolog.Logger, m *metrics.Collector) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		cfg: cfg,
		http: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger:  logger.With().Str("component", "brick").Logger(),
		metrics: m,
	}
}

// Ensure interface compliance.
var _ ports.PaymentProvider = (*Client)(nil)

// UpdateConfig swaps credentials and endpoint at runtime, for config hot
// reload. The HTTP timeout is fixed at construction.
func (c *Client) UpdateConfig(cfg Config) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	c.mu.Lock()
	c.cfg.PublicKey = cfg.PublicKey
	c.cfg.SecretKey = cfg.SecretKey
	c.cfg.BaseURL = cfg.BaseURL
	c.mu.Unlock()
	c.logger.Info().Msg("provider configuration updated")
}

func (c *Client) config() Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cfg
}

// Name returns the provider name.
func (c *Client) Name() string {
	return "brick"
}

// CreateSubscription creates a provider subscription resource.
func (c *Client) CreateSubscription(ctx context.Context, req wire.SubscriptionRequest) (wire.Response, error) {
	return c.create(ctx, "subscription", "/api/subscription", req.Values())
}

// Charge performs a one-time tokenized card charge.
func (c *Client) Charge(ctx context.Context, req wire.ChargeRequest) (wire.Response, error) {
	return c.create(ctx, "charge", "/api/charge", req.Values())
}

// CancelSubscription cancels the provider subscription resource.
func (c *Client) CancelSubscription(ctx context.Context, subscriptionID string) error {
	start := time.Now()
	_, err := c.post(ctx, "/api/subscription/"+url.PathEscape(subscriptionID)+"/cancel", url.Values{})
	c.metrics.RecordProviderCall("cancel", time.Since(start).Seconds(), err)
	if err != nil {
		return fmt.Errorf("cancel subscription %s: %w", subscriptionID, err)
	}
	return nil
}

func (c *Client) create(ctx context.Context, operation, path string, values url.Values) (wire.Response, error) {
	start := time.Now()
	raw, err := c.post(ctx, path, values)
	c.metrics.RecordProviderCall(operation, time.Since(start).Seconds(), err)
	if err != nil {
		return wire.Response{}, fmt.Errorf("create %s: %w", operation, err)
	}

	resp, err := wire.ParseResponse(raw)
	if err != nil {
		return wire.Response{}, fmt.Errorf("decode %s response: %w", operation, err)
	}

	c.logger.Debug().Str("operation", operation).Str("object", resp.Object).
		Str("id", resp.ID).Bool("success", resp.Success.Bool()).Msg("provider call completed")
	return resp, nil
}

// post signs and submits a form-encoded request, returning the raw body.
func (c *Client) post(ctx context.Context, path string, values url.Values) ([]byte, error) {
	cfg := c.config()
	values.Set("public_key", cfg.PublicKey)
	values.Set("sign_version", "2")
	values.Set("sign", signature(values, cfg.SecretKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(cfg.BaseURL, "/")+path, strings.NewReader(values.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-ApiKey", cfg.SecretKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	// The API reports call-level failures inside a 200 body; other
	// statuses indicate transport or auth problems.
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, snippet(body))
	}
	return body, nil
}

// signature computes the version 2 request signature: parameters sorted by
// key, concatenated as key=value, secret appended, SHA-256 hex.
func signature(values url.Values, secret string) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		if k == "sign" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(values.Get(k))
	}
	b.WriteString(secret)

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

func snippet(body []byte) string {
	const max = 200
	s := strings.TrimSpace(string(body))
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
