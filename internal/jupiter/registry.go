package jupiter

import (
	"context"
	"fmt"

	"resty.dev/v3"

	"tokenchecker/internal/fetcher"
	"tokenchecker/internal/ratelimit"
)

const source = "jupiter"

// Token is one entry of the Jupiter token list.
type Token struct {
	Address  string   `json:"address"`
	ChainID  int      `json:"chainId"`
	Decimals int      `json:"decimals"`
	Name     string   `json:"name"`
	Symbol   string   `json:"symbol"`
	LogoURI  string   `json:"logoURI"`
	Tags     []string `json:"tags"`
}

// Client fetches the bulk token registry.
type Client struct {
	client  *resty.Client
	limiter *ratelimit.Limiter
}

// NewClient creates a registry client rooted at baseURL.
func NewClient(baseURL string, retries int, limiter *ratelimit.Limiter) *Client {
	return &Client{
		client:  fetcher.NewHTTPClient(baseURL, retries),
		limiter: limiter,
	}
}

// Tokens downloads the full registry. Nothing is cached.
func (c *Client) Tokens(ctx context.Context) ([]Token, error) {
	if err := c.limiter.Wait(ctx, ratelimit.APIJupiter); err != nil {
		return nil, fetcher.FromTransport(source, err)
	}

	var tokens []Token
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&tokens).
		Get("/all")

	if err != nil {
		return nil, fmt.Errorf("fetch token list: %w", fetcher.FromTransport(source, err))
	}

	if !resp.IsSuccess() {
		return nil, fetcher.ClassifyHTTPError(source, resp.StatusCode())
	}

	return tokens, nil
}

// Lookup returns the entry whose address equals address exactly.
func Lookup(tokens []Token, address string) (Token, bool) {
	for _, t := range tokens {
		if t.Address == address {
			return t, true
		}
	}
	return Token{}, false
}
