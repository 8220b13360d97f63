package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"storefront-checkout/models"
)

// ErrCheckoutAPI is returned when the checkout API cannot create a session
var ErrCheckoutAPI = errors.New("checkout API error")

// CheckoutSessionCreator defines the contract of the external order/checkout API
type CheckoutSessionCreator interface {
	CreateSession(ctx context.Context, payload models.CheckoutPayload, idempotencyKey string) (*models.CheckoutSessionResponse, error)
}

// CheckoutClient posts checkout payloads to the order API over HTTP
type CheckoutClient struct {
	url        string
	httpClient *http.Client
}

// Ensure CheckoutClient implements CheckoutSessionCreator
var _ CheckoutSessionCreator = (*CheckoutClient)(nil)

// NewCheckoutClient creates a client for the endpoint at url
func NewCheckoutClient(url string, timeout time.Duration) *CheckoutClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &CheckoutClient{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// CreateSession submits the payload under the given idempotency key.
// An empty key gets a random one, so the request is never deduplicated.
func (c *CheckoutClient) CreateSession(ctx context.Context, payload models.CheckoutPayload, idempotencyKey string) (*models.CheckoutSessionResponse, error) {
	if c.url == "" {
		return nil, fmt.Errorf("%w: CHECKOUT_API_URL is not configured", ErrCheckoutAPI)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal checkout payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build checkout request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if idempotencyKey == "" {
		idempotencyKey = uuid.NewString()
	}
	req.Header.Set("Idempotency-Key", idempotencyKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCheckoutAPI, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", ErrCheckoutAPI, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d: %s", ErrCheckoutAPI, resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var session models.CheckoutSessionResponse
	if err := json.Unmarshal(respBody, &session); err != nil {
		return nil, fmt.Errorf("%w: invalid response body: %v", ErrCheckoutAPI, err)
	}
	if session.SessionID == "" || session.URL == "" {
		return nil, fmt.Errorf("%w: response is missing sessionId or url", ErrCheckoutAPI)
	}
	return &session, nil
}
