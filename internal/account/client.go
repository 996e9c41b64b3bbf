// Package account is the typed client for the auth endpoints. It is pure
// transport: callers feed the returned user and token into the session
// store, which owns the actual state.
package account

import (
	"context"
	"net/http"

	"github.com/example/storefront-session/internal/apiclient"
	"github.com/example/storefront-session/internal/session"
)

// Client calls the auth endpoints.
type Client struct {
	api *apiclient.Client
}

// NewClient constructs an account client on top of the shared API client.
func NewClient(api *apiclient.Client) *Client {
	return &Client{api: api}
}

type credentialsResponse struct {
	Token string       `json:"token"`
	User  session.User `json:"user"`
}

type profileResponse struct {
	User session.User `json:"user"`
}

// Login exchanges credentials for a user record and a session token.
func (c *Client) Login(ctx context.Context, email, password string) (session.User, string, error) {
	payload := map[string]string{"email": email, "password": password}
	var resp credentialsResponse
	if err := c.api.Do(ctx, http.MethodPost, "/api/auth/login", nil, payload, &resp); err != nil {
		return session.User{}, "", err
	}
	return resp.User, resp.Token, nil
}

// Register creates an account and returns the new user with a session token.
func (c *Client) Register(ctx context.Context, name, email, password string) (session.User, string, error) {
	payload := map[string]string{"name": name, "email": email, "password": password}
	var resp credentialsResponse
	if err := c.api.Do(ctx, http.MethodPost, "/api/auth/register", nil, payload, &resp); err != nil {
		return session.User{}, "", err
	}
	return resp.User, resp.Token, nil
}

// Profile fetches the authenticated user's record.
func (c *Client) Profile(ctx context.Context) (session.User, error) {
	var resp profileResponse
	if err := c.api.Do(ctx, http.MethodGet, "/api/auth/profile", nil, nil, &resp); err != nil {
		return session.User{}, err
	}
	return resp.User, nil
}
