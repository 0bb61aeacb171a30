package verifier

import (
	"context"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokenchecker/internal/domain/model"
	"tokenchecker/internal/testutil"
)

func TestVerify_Native(t *testing.T) {
	conn := testutil.NewBalances(map[string]float64{
		testutil.WalletA: 2,
		testutil.WalletB: 0.5,
	}, nil)
	oracle := &testutil.MockOracle{Price: 150}
	resolver := testutil.NewResolver(nil)
	v := New(resolver, oracle)

	for _, tc := range []struct {
		wallet  string
		balance float64
		usd     float64
	}{
		{testutil.WalletA, 2, 300},
		{testutil.WalletB, 0.5, 75},
	} {
		r := v.Verify(context.Background(), conn, tc.wallet, model.NativeMode())
		require.False(t, r.HasError(), "wallet %s", tc.wallet)
		assert.Equal(t, tc.wallet, r.Wallet)
		assert.Equal(t, tc.balance, r.Balance)
		assert.Equal(t, tc.usd, r.USDValue)
		assert.Equal(t, model.NativeSymbol, r.Classifier)
		assert.Nil(t, r.Metadata)
	}

	assert.Equal(t, 2, oracle.Calls)
	assert.Zero(t, resolver.Calls, "native mode never resolves token metadata")
}

func TestVerify_NativeUnknownPrice(t *testing.T) {
	conn := testutil.NewBalances(map[string]float64{testutil.WalletA: 4}, nil)
	v := New(testutil.NewResolver(nil), &testutil.MockOracle{})

	r := v.Verify(context.Background(), conn, testutil.WalletA, model.NativeMode())
	require.False(t, r.HasError())
	assert.Equal(t, 4.0, r.Balance)
	assert.Zero(t, r.USDValue)
}

func TestVerify_TokenNoHolding(t *testing.T) {
	conn := testutil.NewBalances(nil, nil)
	meta := &model.TokenMetadata{Symbol: "USDC", Name: "USD Coin", UnitPriceUSD: 1, Source: model.SourceDexScreener}
	v := New(testutil.NewResolver(meta), &testutil.MockOracle{Price: 150})

	r := v.Verify(context.Background(), conn, testutil.WalletA, model.TokenMode(testutil.USDCMint))
	require.False(t, r.HasError())
	assert.Zero(t, r.Balance)
	assert.Zero(t, r.USDValue)
	assert.Equal(t, "USDC", r.Classifier)
}

func TestVerify_TokenPriced(t *testing.T) {
	conn := testutil.NewBalances(map[string]float64{testutil.WalletA: 1000}, nil)
	meta := &model.TokenMetadata{Symbol: "BONK", Name: "Bonk", UnitPriceUSD: 0.00002, Source: model.SourceDexScreener}
	oracle := &testutil.MockOracle{Price: 150}
	v := New(testutil.NewResolver(meta), oracle)

	r := v.Verify(context.Background(), conn, testutil.WalletA, model.TokenMode(testutil.BonkMint))
	require.False(t, r.HasError())
	assert.Equal(t, 1000.0, r.Balance)
	assert.InDelta(t, 0.02, r.USDValue, 1e-12)
	assert.Equal(t, "BONK", r.Classifier)
	require.NotNil(t, r.Metadata)
	assert.Equal(t, "Bonk", r.Metadata.Name)
	assert.Zero(t, oracle.Calls, "token mode never asks the native oracle")
}

func TestVerify_TokenRegistryOnly(t *testing.T) {
	conn := testutil.NewBalances(map[string]float64{testutil.WalletA: 42}, nil)
	meta := &model.TokenMetadata{Symbol: "BONK", Name: "Bonk", Source: model.SourceJupiter}
	v := New(testutil.NewResolver(meta), &testutil.MockOracle{Price: 150})

	r := v.Verify(context.Background(), conn, testutil.WalletA, model.TokenMode(testutil.BonkMint))
	require.False(t, r.HasError())
	assert.Equal(t, 42.0, r.Balance)
	assert.Zero(t, r.USDValue)
	require.NotNil(t, r.Metadata)
	assert.Zero(t, r.Metadata.UnitPriceUSD)
	assert.Equal(t, model.SourceJupiter, r.Metadata.Source)
}

func TestVerify_TokenNoMetadata(t *testing.T) {
	conn := testutil.NewBalances(map[string]float64{testutil.WalletA: 7}, nil)
	v := New(testutil.NewResolver(nil), &testutil.MockOracle{})

	r := v.Verify(context.Background(), conn, testutil.WalletA, model.TokenMode(testutil.BonkMint))
	require.False(t, r.HasError())
	assert.Equal(t, "DezX...", r.Classifier)
	assert.Zero(t, r.USDValue)
	assert.Nil(t, r.Metadata)
}

func TestVerify_InvalidAddress(t *testing.T) {
	called := false
	conn := &testutil.MockBalanceFetcher{
		FetchFunc: func(context.Context, solana.PublicKey, model.Mode) (float64, error) {
			called = true
			return 1, nil
		},
	}
	v := New(testutil.NewResolver(nil), &testutil.MockOracle{Price: 1})

	r := v.Verify(context.Background(), conn, testutil.InvalidWallet, model.NativeMode())
	require.True(t, r.HasError())
	assert.Equal(t, testutil.InvalidWallet, r.Wallet)
	assert.Equal(t, model.FailureMessage, r.Message)
	assert.Zero(t, r.Balance)
	assert.Zero(t, r.USDValue)
	assert.Empty(t, r.Classifier)
	assert.False(t, called, "balance must not be read for an unparseable address")
}

func TestVerify_FetchErrorCollapses(t *testing.T) {
	conn := testutil.NewBalances(nil, map[string]error{
		testutil.WalletB: errors.New("rpc: connection reset"),
	})
	resolver := testutil.NewResolver(&model.TokenMetadata{Symbol: "USDC", UnitPriceUSD: 1})
	v := New(resolver, &testutil.MockOracle{Price: 1})

	r := v.Verify(context.Background(), conn, testutil.WalletB, model.TokenMode(testutil.USDCMint))
	require.True(t, r.HasError())
	assert.Equal(t, model.FailureMessage, r.Message)
	assert.Nil(t, r.Metadata)
	assert.Zero(t, resolver.Calls, "enrichment is skipped once the balance read failed")
}

func TestClassifier(t *testing.T) {
	tests := []struct {
		name string
		mode model.Mode
		meta *model.TokenMetadata
		want string
	}{
		{"native", model.NativeMode(), nil, "SOL"},
		{"native ignores metadata", model.NativeMode(), &model.TokenMetadata{Symbol: "X"}, "SOL"},
		{"token symbol", model.TokenMode(testutil.USDCMint), &model.TokenMetadata{Symbol: "USDC"}, "USDC"},
		{"token without metadata", model.TokenMode(testutil.USDCMint), nil, "EPjF..."},
		{"token with empty symbol", model.TokenMode(testutil.USDCMint), &model.TokenMetadata{Name: "USD Coin"}, "EPjF..."},
		{"short token", model.TokenMode("abc"), nil, "abc..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classifier(tt.mode, tt.meta))
		})
	}
}
