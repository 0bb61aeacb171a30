package coingecko

import (
	"context"
	"fmt"

	"github.com/google/go-querystring/query"
	"resty.dev/v3"

	"tokenchecker/internal/fetcher"
	"tokenchecker/internal/ratelimit"
)

const (
	source = "coingecko"

	// demoKeyHeader carries an optional CoinGecko demo API key.
	demoKeyHeader = "x-cg-demo-api-key"
)

// SimplePriceParams are the query parameters of /simple/price.
type SimplePriceParams struct {
	IDs          string `url:"ids"`
	VsCurrencies string `url:"vs_currencies"`
}

// SimplePriceResponse maps coin id -> currency -> price,
// e.g. {"solana": {"usd": 142.18}}.
type SimplePriceResponse map[string]map[string]float64

// Client queries the CoinGecko simple price API.
type Client struct {
	client  *resty.Client
	limiter *ratelimit.Limiter
}

// NewClient creates a CoinGecko client. apiKey may be empty.
func NewClient(baseURL, apiKey string, retries int, limiter *ratelimit.Limiter) *Client {
	client := fetcher.NewHTTPClient(baseURL, retries)
	if apiKey != "" {
		client.SetHeader(demoKeyHeader, apiKey)
	}

	return &Client{
		client:  client,
		limiter: limiter,
	}
}

// SimplePrice returns the price of coin id in currency vs.
func (c *Client) SimplePrice(ctx context.Context, id, vs string) (float64, error) {
	values, err := query.Values(SimplePriceParams{IDs: id, VsCurrencies: vs})
	if err != nil {
		return 0, fmt.Errorf("encode price params: %w", err)
	}

	if err := c.limiter.Wait(ctx, ratelimit.APICoinGecko); err != nil {
		return 0, fetcher.FromTransport(source, err)
	}

	var result SimplePriceResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParamsFromValues(values).
		SetResult(&result).
		Get("/simple/price")

	if err != nil {
		return 0, fmt.Errorf("fetch %s price: %w", id, fetcher.FromTransport(source, err))
	}

	if !resp.IsSuccess() {
		return 0, fetcher.ClassifyHTTPError(source, resp.StatusCode())
	}

	price, ok := result[id][vs]
	if !ok {
		return 0, fetcher.NewValidationError(source, fmt.Sprintf("%s/%s price not found in response", id, vs))
	}
	if price < 0 {
		return 0, fetcher.NewValidationError(source, fmt.Sprintf("negative %s price %v", id, price))
	}

	return price, nil
}
