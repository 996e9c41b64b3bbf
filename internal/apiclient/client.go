// Package apiclient is the single outbound gateway to the storefront backend.
// It attaches the session credential, normalizes transport and HTTP failures
// into one error shape, and reacts to authorization failures by invalidating
// the session through a hook, so it carries no compile-time dependency on the
// session store.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout bounds every request unless the embedder configures
// otherwise.
const DefaultTimeout = 15 * time.Second

// Client calls the storefront backend over HTTP.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	tokenSource    func() string
	onUnauthorized func()
}

// NewClient constructs a backend client. A non-positive timeout falls back
// to DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SetTokenSource installs the provider of the current session token. An
// empty return value means the request goes out unauthenticated.
func (c *Client) SetTokenSource(fn func() string) {
	c.tokenSource = fn
}

// SetUnauthorizedHook installs the reaction to a 401 response. The hook is
// expected to drop the persisted session and broadcast the change; the error
// is still surfaced to the caller afterwards.
func (c *Client) SetUnauthorizedHook(fn func()) {
	c.onUnauthorized = fn
}

// errorEnvelope is the backend's error body shape.
type errorEnvelope struct {
	Message string          `json:"message"`
	Details json.RawMessage `json:"details,omitempty"`
}

// Do performs one request and decodes a 2xx response body into out (skipped
// when out is nil). Failures are classified into ErrNetworkUnavailable,
// ErrTimeout, or *APIError. No retries: callers decide whether an idempotent
// read is worth repeating.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokenSource != nil {
		if token := c.tokenSource(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.handleErrorResponse(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response body: %w", err)
	}
	return nil
}

// handleErrorResponse normalizes a failure status into an APIError. A 401
// additionally invalidates the session via the hook before the error is
// returned; redirecting the user is left to the UI.
func (c *Client) handleErrorResponse(resp *http.Response) error {
	var envelope errorEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		envelope.Message = resp.Status
	}
	if envelope.Message == "" {
		envelope.Message = resp.Status
	}

	if resp.StatusCode == http.StatusUnauthorized && c.onUnauthorized != nil {
		log.Printf("[API] Unauthorized response from %s, invalidating session", resp.Request.URL.Path)
		c.onUnauthorized()
	}

	return &APIError{
		Status:  resp.StatusCode,
		Message: envelope.Message,
		Details: envelope.Details,
	}
}

// classifyTransportError maps errors where no response was received.
func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrNetworkUnavailable, err)
}
