package chain

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokenchecker/internal/domain/model"
	"tokenchecker/internal/testutil"
)

func mustParse(t *testing.T, address string) solana.PublicKey {
	t.Helper()
	pk, err := ParseAddress(address)
	require.NoError(t, err)
	return pk
}

func TestParseAddress(t *testing.T) {
	_, err := ParseAddress(testutil.WalletA)
	require.NoError(t, err)

	for _, bad := range []string{"", testutil.InvalidWallet, "abc", testutil.WalletA + "x"} {
		_, err := ParseAddress(bad)
		assert.Error(t, err, "address %q", bad)
	}
}

func TestLamportsToSOL(t *testing.T) {
	assert.Equal(t, 0.0, LamportsToSOL(0))
	assert.Equal(t, 1.0, LamportsToSOL(1_000_000_000))
	assert.Equal(t, 2.5, LamportsToSOL(2_500_000_000))
	assert.Equal(t, 0.000000001, LamportsToSOL(1))
}

func TestNewClient_DefaultEndpoint(t *testing.T) {
	c := NewClient("", "", nil)
	defer c.Close()
	assert.Equal(t, DefaultEndpoint, c.Endpoint())
}

func TestFetchBalance_Native(t *testing.T) {
	node := testutil.NewRPCServer(t)
	node.Handle("getBalance", func(params []json.RawMessage) (any, *testutil.RPCError) {
		assert.Equal(t, testutil.WalletA, testutil.OwnerOf(params))
		return testutil.BalanceResult(3_250_000_000), nil
	})

	c := NewClient(node.URL, "", nil)
	defer c.Close()

	balance, err := c.FetchBalance(context.Background(), mustParse(t, testutil.WalletA), model.NativeMode())
	require.NoError(t, err)
	assert.Equal(t, 3.25, balance)
}

func TestFetchBalance_NativeRPCError(t *testing.T) {
	node := testutil.NewRPCServer(t)
	node.Handle("getBalance", func([]json.RawMessage) (any, *testutil.RPCError) {
		return nil, &testutil.RPCError{Code: -32005, Message: "node is behind"}
	})

	c := NewClient(node.URL, "", nil)
	defer c.Close()

	_, err := c.FetchBalance(context.Background(), mustParse(t, testutil.WalletA), model.NativeMode())
	assert.Error(t, err)
}

func TestFetchBalance_TokenNoAccounts(t *testing.T) {
	node := testutil.NewRPCServer(t)
	node.Handle("getTokenAccountsByOwner", func([]json.RawMessage) (any, *testutil.RPCError) {
		return testutil.TokenAccountsResult(), nil
	})

	c := NewClient(node.URL, "", nil)
	defer c.Close()

	balance, err := c.FetchBalance(context.Background(), mustParse(t, testutil.WalletA), model.TokenMode(testutil.USDCMint))
	require.NoError(t, err)
	assert.Zero(t, balance)
	assert.Zero(t, node.Calls("getTokenAccountBalance"), "no balance read without an account")
}

func TestFetchBalance_TokenFirstAccount(t *testing.T) {
	node := testutil.NewRPCServer(t)
	node.Handle("getTokenAccountsByOwner", func(params []json.RawMessage) (any, *testutil.RPCError) {
		require.GreaterOrEqual(t, len(params), 2)
		var filter map[string]string
		require.NoError(t, json.Unmarshal(params[1], &filter))
		assert.Equal(t, testutil.USDCMint, filter["mint"])
		return testutil.TokenAccountsResult(testutil.TokenAccount, testutil.WalletC), nil
	})
	node.Handle("getTokenAccountBalance", func(params []json.RawMessage) (any, *testutil.RPCError) {
		assert.Equal(t, testutil.TokenAccount, testutil.OwnerOf(params))
		return testutil.TokenBalanceResult("12500000", 6, testutil.Float(12.5)), nil
	})

	c := NewClient(node.URL, "", nil)
	defer c.Close()

	balance, err := c.FetchBalance(context.Background(), mustParse(t, testutil.WalletA), model.TokenMode(testutil.USDCMint))
	require.NoError(t, err)
	assert.Equal(t, 12.5, balance)
	assert.Equal(t, 1, node.Calls("getTokenAccountBalance"))
}

func TestFetchBalance_TokenMissingUIAmount(t *testing.T) {
	node := testutil.NewRPCServer(t)
	node.Handle("getTokenAccountsByOwner", func([]json.RawMessage) (any, *testutil.RPCError) {
		return testutil.TokenAccountsResult(testutil.TokenAccount), nil
	})
	node.Handle("getTokenAccountBalance", func([]json.RawMessage) (any, *testutil.RPCError) {
		return testutil.TokenBalanceResult("0", 6, nil), nil
	})

	c := NewClient(node.URL, "", nil)
	defer c.Close()

	balance, err := c.FetchBalance(context.Background(), mustParse(t, testutil.WalletA), model.TokenMode(testutil.USDCMint))
	require.NoError(t, err)
	assert.Zero(t, balance)
}

func TestFetchBalance_InvalidMint(t *testing.T) {
	node := testutil.NewRPCServer(t)

	c := NewClient(node.URL, "", nil)
	defer c.Close()

	_, err := c.FetchBalance(context.Background(), mustParse(t, testutil.WalletA), model.TokenMode("bad-mint"))
	require.Error(t, err)
	assert.Zero(t, node.Calls("getTokenAccountsByOwner"))
}
