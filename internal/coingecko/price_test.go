package coingecko

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokenchecker/internal/fetcher"
)

func TestClient_SimplePrice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/simple/price", r.URL.Path)
		assert.Equal(t, "solana", r.URL.Query().Get("ids"))
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currencies"))
		assert.Equal(t, "demo-key", r.Header.Get(demoKeyHeader))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"solana": {"usd": 142.5}}`))
	}))
	defer server.Close()

	price, err := NewClient(server.URL, "demo-key", 0, nil).SimplePrice(context.Background(), "solana", "usd")
	require.NoError(t, err)
	assert.Equal(t, 142.5, price)
}

func TestClient_SimplePrice_Missing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL, "", 0, nil).SimplePrice(context.Background(), "solana", "usd")
	require.Error(t, err)
	assert.Equal(t, fetcher.ErrorTypeValidation, fetcher.ErrorTypeOf(err))
}

func TestClient_SimplePrice_ClientError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get(demoKeyHeader))
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := NewClient(server.URL, "", 0, nil).SimplePrice(context.Background(), "solana", "usd")
	require.Error(t, err)
	assert.Equal(t, fetcher.ErrorTypeClient, fetcher.ErrorTypeOf(err))
}
