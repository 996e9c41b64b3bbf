package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/storefront-session/internal/apiclient"
)

func TestClient_List(t *testing.T) {
	var gotPath string
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"id": "p1", "name": "Vitamin C", "price": 10000, "stock": 5, "category": "health"},
				{"id": "p2", "name": "Zinc", "price": 5000, "stock": 3, "category": "health"},
			},
			"total":      12,
			"totalPages": 2,
		})
	}))
	defer srv.Close()

	client := NewClient(apiclient.NewClient(srv.URL, 0))

	page, err := client.List(context.Background(), ListParams{
		Category: "health",
		Search:   "vitamin",
		Page:     2,
		Limit:    10,
		Sort:     "price",
	})
	require.NoError(t, err)

	assert.Equal(t, "/api/products", gotPath)
	assert.Equal(t, "health", gotQuery.Get("category"))
	assert.Equal(t, "vitamin", gotQuery.Get("search"))
	assert.Equal(t, "2", gotQuery.Get("page"))
	assert.Equal(t, "10", gotQuery.Get("limit"))
	assert.Equal(t, "price", gotQuery.Get("sort"))

	require.Len(t, page.Products, 2)
	assert.Equal(t, "p1", page.Products[0].ID)
	assert.Equal(t, int64(10000), page.Products[0].Price)
	assert.Equal(t, 12, page.Total)
	assert.Equal(t, 2, page.TotalPages)
}

func TestClient_List_OmitsUnsetParams(t *testing.T) {
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []any{}})
	}))
	defer srv.Close()

	client := NewClient(apiclient.NewClient(srv.URL, 0))

	_, err := client.List(context.Background(), ListParams{})
	require.NoError(t, err)
	assert.Empty(t, gotQuery)
}

func TestClient_Get(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"id": "p1", "name": "Vitamin C", "price": 10000, "stock": 5},
		})
	}))
	defer srv.Close()

	client := NewClient(apiclient.NewClient(srv.URL, 0))

	product, err := client.Get(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "/api/products/p1", gotPath)
	assert.Equal(t, "Vitamin C", product.Name)
	assert.Equal(t, 5, product.Stock)
}

func TestClient_Get_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "product not found"})
	}))
	defer srv.Close()

	client := NewClient(apiclient.NewClient(srv.URL, 0))

	_, err := client.Get(context.Background(), "missing")
	assert.True(t, apiclient.IsStatus(err, http.StatusNotFound))
}
