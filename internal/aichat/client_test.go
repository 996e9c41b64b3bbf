package aichat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/storefront-session/internal/apiclient"
)

func TestClient_Send(t *testing.T) {
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/external/ai/chat", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]string{"reply": "try vitamin D"})
	}))
	defer srv.Close()

	client := NewClient(apiclient.NewClient(srv.URL, 0))

	reply, err := client.Send(context.Background(), "what helps with fatigue?", "")
	require.NoError(t, err)
	assert.Equal(t, "try vitamin D", reply)
	assert.Equal(t, "what helps with fatigue?", gotBody["message"])
	assert.Equal(t, DefaultContext, gotBody["context"], "empty context falls back to the default")
}

func TestClient_Send_CustomContext(t *testing.T) {
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]string{"reply": "ok"})
	}))
	defer srv.Close()

	client := NewClient(apiclient.NewClient(srv.URL, 0))

	_, err := client.Send(context.Background(), "hi", "support")
	require.NoError(t, err)
	assert.Equal(t, "support", gotBody["context"])
}

func TestClient_Recommend(t *testing.T) {
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]string{"reply": "zinc"})
	}))
	defer srv.Close()

	client := NewClient(apiclient.NewClient(srv.URL, 0))

	reply, err := client.Recommend(context.Background(), "immune support")
	require.NoError(t, err)
	assert.Equal(t, "zinc", reply)
	assert.Contains(t, gotBody["message"], "immune support")
}
