package oracle

import (
	"context"
	"log/slog"

	"tokenchecker/internal/fetcher"
	"tokenchecker/internal/metrics"
)

const (
	// NativeCoinID is the CoinGecko id of SOL.
	NativeCoinID = "solana"
	// Currency is the valuation currency.
	Currency = "usd"

	lookupSource = "coingecko"
)

// PriceSource returns the price of a coin in a currency.
type PriceSource interface {
	SimplePrice(ctx context.Context, id, vs string) (float64, error)
}

// Oracle reports the USD price of the native currency. An unknown price
// is reported as 0 rather than as an error.
type Oracle struct {
	source PriceSource
	coinID string
}

// New creates an oracle for SOL/USD.
func New(source PriceSource) *Oracle {
	return &Oracle{source: source, coinID: NativeCoinID}
}

// NativePriceUSD returns the current price, or 0 on any failure.
func (o *Oracle) NativePriceUSD(ctx context.Context) float64 {
	price, err := o.source.SimplePrice(ctx, o.coinID, Currency)
	if err != nil {
		slog.Debug("native price unavailable, valuing at zero",
			"coin", o.coinID,
			"error_type", fetcher.ErrorTypeOf(err),
			"error", err)
		metrics.EnrichmentLookups.WithLabelValues(lookupSource, "error").Inc()
		return 0
	}
	if price < 0 {
		metrics.EnrichmentLookups.WithLabelValues(lookupSource, "miss").Inc()
		return 0
	}

	metrics.EnrichmentLookups.WithLabelValues(lookupSource, "hit").Inc()
	return price
}
