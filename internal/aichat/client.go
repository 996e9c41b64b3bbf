// Package aichat is the client for the product recommendation chat endpoint.
// One request, one reply; there is no conversation state on this side.
package aichat

import (
	"context"
	"fmt"
	"net/http"

	"github.com/example/storefront-session/internal/apiclient"
)

// DefaultContext is the prompt context the backend expects for product
// recommendations.
const DefaultContext = "health_product_recommendation"

// Client calls the chat endpoint.
type Client struct {
	api *apiclient.Client
}

// NewClient constructs a chat client on top of the shared API client.
func NewClient(api *apiclient.Client) *Client {
	return &Client{api: api}
}

type chatResponse struct {
	Reply string `json:"reply"`
}

// Send submits a message and returns the assistant reply. An empty
// chatContext falls back to DefaultContext.
func (c *Client) Send(ctx context.Context, message, chatContext string) (string, error) {
	if chatContext == "" {
		chatContext = DefaultContext
	}
	payload := map[string]string{"message": message, "context": chatContext}

	var resp chatResponse
	if err := c.api.Do(ctx, http.MethodPost, "/api/external/ai/chat", nil, payload, &resp); err != nil {
		return "", err
	}
	return resp.Reply, nil
}

// Recommend asks for product recommendations for a free-form query.
func (c *Client) Recommend(ctx context.Context, query string) (string, error) {
	return c.Send(ctx, fmt.Sprintf("Recommend products for: %s", query), DefaultContext)
}
