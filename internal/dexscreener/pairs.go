package dexscreener

import (
	"context"
	"fmt"

	"resty.dev/v3"

	"tokenchecker/internal/fetcher"
	"tokenchecker/internal/ratelimit"
)

const source = "dexscreener"

// Token is one side of a trading pair.
type Token struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
}

// Pair is a trading pair as reported by DexScreener. Prices are
// stringified decimals and may be empty.
type Pair struct {
	ChainID     string `json:"chainId"`
	DexID       string `json:"dexId"`
	URL         string `json:"url"`
	PairAddress string `json:"pairAddress"`
	BaseToken   Token  `json:"baseToken"`
	QuoteToken  Token  `json:"quoteToken"`
	PriceNative string `json:"priceNative"`
	PriceUSD    string `json:"priceUsd"`
}

// TokenPairsResponse is the body of /latest/dex/tokens/{address}.
// Pairs is null when the token is unknown.
type TokenPairsResponse struct {
	SchemaVersion string `json:"schemaVersion"`
	Pairs         []Pair `json:"pairs"`
}

// Client queries the DexScreener market-pair API.
type Client struct {
	client  *resty.Client
	limiter *ratelimit.Limiter
}

// NewClient creates a DexScreener client rooted at baseURL.
func NewClient(baseURL string, retries int, limiter *ratelimit.Limiter) *Client {
	return &Client{
		client:  fetcher.NewHTTPClient(baseURL, retries),
		limiter: limiter,
	}
}

// TokenPairs returns every trading pair that has address as one of its tokens.
// An unknown token yields an empty slice, not an error.
func (c *Client) TokenPairs(ctx context.Context, address string) ([]Pair, error) {
	if err := c.limiter.Wait(ctx, ratelimit.APIDexScreener); err != nil {
		return nil, fetcher.FromTransport(source, err)
	}

	var result TokenPairsResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("address", address).
		SetResult(&result).
		Get("/latest/dex/tokens/{address}")

	if err != nil {
		return nil, fmt.Errorf("fetch pairs for %s: %w", address, fetcher.FromTransport(source, err))
	}

	if !resp.IsSuccess() {
		return nil, fetcher.ClassifyHTTPError(source, resp.StatusCode())
	}

	return result.Pairs, nil
}
