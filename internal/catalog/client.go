// Package catalog is the typed client for the remote product API. It is a
// pure read surface: product state lives on the backend, the client only
// shapes requests and responses.
package catalog

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/example/storefront-session/internal/apiclient"
)

// Product is a catalog entry as the backend returns it. Price is in minor
// currency units.
type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	Stock       int    `json:"stock"`
	Category    string `json:"category"`
	ImageURL    string `json:"imageUrl"`
}

// ListParams are the supported product listing filters.
type ListParams struct {
	Category string
	Search   string
	Page     int
	Limit    int
	Sort     string
}

// Page is one page of listing results.
type Page struct {
	Products   []Product
	Total      int
	TotalPages int
}

// Client calls the product endpoints.
type Client struct {
	api *apiclient.Client
}

// NewClient constructs a catalog client on top of the shared API client.
func NewClient(api *apiclient.Client) *Client {
	return &Client{api: api}
}

type listResponse struct {
	Data       []Product `json:"data"`
	Total      int       `json:"total"`
	TotalPages int       `json:"totalPages"`
}

type detailResponse struct {
	Data Product `json:"data"`
}

// List fetches one page of products.
func (c *Client) List(ctx context.Context, params ListParams) (Page, error) {
	query := url.Values{}
	if params.Category != "" {
		query.Set("category", params.Category)
	}
	if params.Search != "" {
		query.Set("search", params.Search)
	}
	if params.Page > 0 {
		query.Set("page", strconv.Itoa(params.Page))
	}
	if params.Limit > 0 {
		query.Set("limit", strconv.Itoa(params.Limit))
	}
	if params.Sort != "" {
		query.Set("sort", params.Sort)
	}

	var resp listResponse
	if err := c.api.Do(ctx, http.MethodGet, "/api/products", query, nil, &resp); err != nil {
		return Page{}, err
	}
	return Page{Products: resp.Data, Total: resp.Total, TotalPages: resp.TotalPages}, nil
}

// Get fetches a single product by ID.
func (c *Client) Get(ctx context.Context, id string) (Product, error) {
	var resp detailResponse
	if err := c.api.Do(ctx, http.MethodGet, "/api/products/"+id, nil, nil, &resp); err != nil {
		return Product{}, err
	}
	return resp.Data, nil
}
