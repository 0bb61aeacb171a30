package testutil

import (
	"context"

	"github.com/gagliardetto/solana-go"

	"tokenchecker/internal/domain/model"
)

// MockBalanceFetcher is a mock balance fetcher with a pluggable function
type MockBalanceFetcher struct {
	FetchFunc func(ctx context.Context, owner solana.PublicKey, mode model.Mode) (float64, error)
}

// FetchBalance implements verifier.BalanceFetcher
func (m *MockBalanceFetcher) FetchBalance(ctx context.Context, owner solana.PublicKey, mode model.Mode) (float64, error) {
	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, owner, mode)
	}
	return 0, nil
}

// NewBalances returns a fetcher that answers from a fixed wallet -> balance
// table. Wallets listed in errs fail with the given error; unknown wallets
// hold 0.
func NewBalances(balances map[string]float64, errs map[string]error) *MockBalanceFetcher {
	return &MockBalanceFetcher{
		FetchFunc: func(_ context.Context, owner solana.PublicKey, _ model.Mode) (float64, error) {
			if err, ok := errs[owner.String()]; ok {
				return 0, err
			}
			return balances[owner.String()], nil
		},
	}
}

// MockResolver is a mock metadata resolver
type MockResolver struct {
	ResolveFunc func(ctx context.Context, token string) *model.TokenMetadata
	Calls       int
}

// Resolve implements verifier.MetadataResolver
func (m *MockResolver) Resolve(ctx context.Context, token string) *model.TokenMetadata {
	m.Calls++
	if m.ResolveFunc != nil {
		return m.ResolveFunc(ctx, token)
	}
	return nil
}

// NewResolver returns a resolver that always yields meta (which may be nil).
func NewResolver(meta *model.TokenMetadata) *MockResolver {
	return &MockResolver{
		ResolveFunc: func(context.Context, string) *model.TokenMetadata {
			if meta == nil {
				return nil
			}
			cp := *meta
			return &cp
		},
	}
}

// MockOracle is a mock native price oracle
type MockOracle struct {
	Price float64
	Calls int
}

// NativePriceUSD implements verifier.PriceOracle
func (m *MockOracle) NativePriceUSD(context.Context) float64 {
	m.Calls++
	return m.Price
}
