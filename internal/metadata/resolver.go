package metadata

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"tokenchecker/internal/dexscreener"
	"tokenchecker/internal/domain/model"
	"tokenchecker/internal/fetcher"
	"tokenchecker/internal/jupiter"
	"tokenchecker/internal/metrics"
)

// PairSource returns the trading pairs of a token.
type PairSource interface {
	TokenPairs(ctx context.Context, address string) ([]dexscreener.Pair, error)
}

// Registry returns the bulk list of known tokens.
type Registry interface {
	Tokens(ctx context.Context) ([]jupiter.Token, error)
}

// Resolver turns a token mint into symbol, name and USD unit price.
// It tries the price-bearing pair source first and falls back to the
// name-only registry. Failures are absorbed: the result is simply nil.
type Resolver struct {
	pairs    PairSource
	registry Registry
}

// NewResolver creates a resolver over the two metadata sources.
func NewResolver(pairs PairSource, registry Registry) *Resolver {
	return &Resolver{pairs: pairs, registry: registry}
}

// Resolve returns the token's metadata, or nil when neither source knows it.
func (r *Resolver) Resolve(ctx context.Context, token string) *model.TokenMetadata {
	if meta := r.fromPairs(ctx, token); meta != nil {
		return meta
	}
	return r.fromRegistry(ctx, token)
}

func (r *Resolver) fromPairs(ctx context.Context, token string) *model.TokenMetadata {
	pairs, err := r.pairs.TokenPairs(ctx, token)
	if err != nil {
		slog.Debug("pair lookup failed, falling back to registry",
			"token", token,
			"error_type", fetcher.ErrorTypeOf(err),
			"error", err)
		metrics.EnrichmentLookups.WithLabelValues(model.SourceDexScreener, "error").Inc()
		return nil
	}
	if len(pairs) == 0 {
		slog.Debug("no trading pairs for token, falling back to registry", "token", token)
		metrics.EnrichmentLookups.WithLabelValues(model.SourceDexScreener, "miss").Inc()
		return nil
	}

	metrics.EnrichmentLookups.WithLabelValues(model.SourceDexScreener, "hit").Inc()
	pair := pairs[0]
	return &model.TokenMetadata{
		Symbol:       pair.BaseToken.Symbol,
		Name:         pair.BaseToken.Name,
		UnitPriceUSD: ParsePrice(pair.PriceUSD),
		Source:       model.SourceDexScreener,
	}
}

func (r *Resolver) fromRegistry(ctx context.Context, token string) *model.TokenMetadata {
	tokens, err := r.registry.Tokens(ctx)
	if err != nil {
		slog.Debug("token registry unavailable",
			"token", token,
			"error_type", fetcher.ErrorTypeOf(err),
			"error", err)
		metrics.EnrichmentLookups.WithLabelValues(model.SourceJupiter, "error").Inc()
		return nil
	}

	entry, ok := jupiter.Lookup(tokens, token)
	if !ok {
		slog.Debug("token not in registry", "token", token, "registry_size", len(tokens))
		metrics.EnrichmentLookups.WithLabelValues(model.SourceJupiter, "miss").Inc()
		return nil
	}

	metrics.EnrichmentLookups.WithLabelValues(model.SourceJupiter, "hit").Inc()
	return &model.TokenMetadata{
		Symbol: entry.Symbol,
		Name:   entry.Name,
		Source: model.SourceJupiter,
	}
}

// ParsePrice parses a stringified decimal price. Empty, malformed or
// negative input yields 0.
func ParsePrice(s string) float64 {
	if s == "" {
		return 0
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		slog.Debug("unparseable price, treating as zero", "price", s, "error", err)
		return 0
	}
	if d.IsNegative() {
		return 0
	}
	f, _ := d.Float64()
	return f
}
