package verifier

import (
	"context"
	"log/slog"

	"github.com/gagliardetto/solana-go"

	"tokenchecker/internal/chain"
	"tokenchecker/internal/domain/model"
	"tokenchecker/internal/fetcher"
	"tokenchecker/internal/metrics"
)

// BalanceFetcher reads a wallet balance for a query mode. chain.Client
// implements it; one instance is the connection handle shared by a run.
type BalanceFetcher interface {
	FetchBalance(ctx context.Context, owner solana.PublicKey, mode model.Mode) (float64, error)
}

// MetadataResolver returns token metadata, or nil when nothing is known.
type MetadataResolver interface {
	Resolve(ctx context.Context, token string) *model.TokenMetadata
}

// PriceOracle returns the native currency's USD price, 0 when unknown.
type PriceOracle interface {
	NativePriceUSD(ctx context.Context) float64
}

// Verifier produces one Result per wallet by combining a balance read with
// price enrichment.
type Verifier struct {
	resolver MetadataResolver
	oracle   PriceOracle
}

// New creates a verifier over the two enrichment sources.
func New(resolver MetadataResolver, oracle PriceOracle) *Verifier {
	return &Verifier{resolver: resolver, oracle: oracle}
}

// Verify checks one wallet. It never fails: every error while parsing the
// address or reading the balance collapses into model.Failure.
func (v *Verifier) Verify(ctx context.Context, conn BalanceFetcher, wallet string, mode model.Mode) model.Result {
	result, err := v.verify(ctx, conn, wallet, mode)
	if err != nil {
		slog.Debug("wallet verification failed",
			"wallet", wallet,
			"mode", mode.String(),
			"error_type", fetcher.ErrorTypeOf(err),
			"error", err)
		metrics.VerificationsTotal.WithLabelValues(mode.Label(), string(model.StatusFailure)).Inc()
		return model.Failure(wallet)
	}

	metrics.VerificationsTotal.WithLabelValues(mode.Label(), string(model.StatusSuccess)).Inc()
	return result
}

func (v *Verifier) verify(ctx context.Context, conn BalanceFetcher, wallet string, mode model.Mode) (model.Result, error) {
	owner, err := chain.ParseAddress(wallet)
	if err != nil {
		return model.Result{}, err
	}

	balance, err := conn.FetchBalance(ctx, owner, mode)
	if err != nil {
		return model.Result{}, err
	}

	if mode.IsNative() {
		price := v.oracle.NativePriceUSD(ctx)
		return model.Success(wallet, balance, model.NativeSymbol, balance*price, nil), nil
	}

	meta := v.resolver.Resolve(ctx, mode.Token)
	var price float64
	if meta != nil {
		price = meta.UnitPriceUSD
	}
	return model.Success(wallet, balance, Classifier(mode, meta), balance*price, meta), nil
}

// Classifier is the display label of a successful result: the native symbol,
// the resolved token symbol, or a shortened mint when the symbol is unknown.
func Classifier(mode model.Mode, meta *model.TokenMetadata) string {
	if mode.IsNative() {
		return model.NativeSymbol
	}
	if meta != nil && meta.Symbol != "" {
		return meta.Symbol
	}
	return ShortToken(mode.Token)
}

// ShortToken returns the first four characters of a mint followed by "...".
func ShortToken(token string) string {
	if len(token) > 4 {
		token = token[:4]
	}
	return token + "..."
}
