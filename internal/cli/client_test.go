package cli

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientDecodesResponses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/v1/health":
			_, _ = w.Write([]byte(`{"status":"ok","flags":3}`))
		case "/api/v1/players/guest":
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			_, _ = w.Write([]byte(`{"display_name":"` + body["display_name"] + `","token":"t"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"code":"FLAG_NOT_FOUND","message":"Flag not found"}}`))
		}
	}))
	defer server.Close()

	c := NewClient(server.URL + "/")
	ctx := context.Background()

	var health struct {
		Status string `json:"status"`
		Flags  int    `json:"flags"`
	}
	require.NoError(t, c.Get(ctx, "/api/v1/health", &health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, 3, health.Flags)

	var guest struct {
		DisplayName string `json:"display_name"`
	}
	require.NoError(t, c.Post(ctx, "/api/v1/players/guest", map[string]string{"display_name": "Alice"}, &guest))
	assert.Equal(t, "Alice", guest.DisplayName)

	err := c.Get(ctx, "/api/v1/flags/atlantis", nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "FLAG_NOT_FOUND", apiErr.Code)
	assert.Equal(t, "Flag not found (FLAG_NOT_FOUND)", err.Error())
}

func TestClientNonJSONError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer server.Close()

	err := NewClient(server.URL).Get(context.Background(), "/api/v1/health", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 502")
}
