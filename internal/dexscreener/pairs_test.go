package dexscreener

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokenchecker/internal/fetcher"
)

const bonkMint = "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263"

func TestClient_TokenPairs_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/latest/dex/tokens/"+bonkMint, r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{
			"schemaVersion": "1.0.0",
			"pairs": [{
				"chainId": "solana",
				"dexId": "raydium",
				"pairAddress": "pair1",
				"baseToken": {"address": "` + bonkMint + `", "name": "Bonk", "symbol": "Bonk"},
				"quoteToken": {"address": "So11111111111111111111111111111111111111112", "name": "Wrapped SOL", "symbol": "SOL"},
				"priceNative": "0.0000001",
				"priceUsd": "0.00002345"
			}]
		}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, 0, nil)
	pairs, err := c.TokenPairs(context.Background(), bonkMint)
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, "Bonk", pairs[0].BaseToken.Symbol)
	assert.Equal(t, "0.00002345", pairs[0].PriceUSD)
}

func TestClient_TokenPairs_NullPairs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"schemaVersion": "1.0.0", "pairs": null}`))
	}))
	defer server.Close()

	pairs, err := NewClient(server.URL, 0, nil).TokenPairs(context.Background(), bonkMint)
	require.NoError(t, err)
	assert.Empty(t, pairs)
}

func TestClient_TokenPairs_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := NewClient(server.URL, 0, nil).TokenPairs(context.Background(), bonkMint)
	require.Error(t, err)
	assert.Equal(t, fetcher.ErrorTypeServer, fetcher.ErrorTypeOf(err))
}

func TestClient_TokenPairs_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := NewClient(url, 0, nil).TokenPairs(context.Background(), bonkMint)
	require.Error(t, err)
	assert.Equal(t, fetcher.ErrorTypeNetwork, fetcher.ErrorTypeOf(err))
}
