package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/shopspring/decimal"

	"tokenchecker/internal/domain/model"
	"tokenchecker/internal/ratelimit"
)

const (
	// DefaultEndpoint is the public mainnet-beta RPC endpoint.
	DefaultEndpoint = "https://api.mainnet-beta.solana.com"

	// lamportsPerSOLExp: 1 SOL = 10^9 lamports.
	lamportsPerSOLExp = 9
)

// Client reads balances from one Solana JSON-RPC endpoint.
type Client struct {
	rpc        *rpc.Client
	endpoint   string
	commitment rpc.CommitmentType
	limiter    *ratelimit.Limiter
}

// NewClient creates a client for endpoint. An empty endpoint selects
// DefaultEndpoint; an empty commitment uses the node's default.
func NewClient(endpoint string, commitment rpc.CommitmentType, limiter *ratelimit.Limiter) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		rpc:        rpc.New(endpoint),
		endpoint:   endpoint,
		commitment: commitment,
		limiter:    limiter,
	}
}

// Endpoint returns the RPC URL this client talks to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Close releases the underlying HTTP transport.
func (c *Client) Close() error {
	return c.rpc.Close()
}

// ParseAddress validates a base58 account address.
func ParseAddress(address string) (solana.PublicKey, error) {
	pk, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("invalid address %q: %w", address, err)
	}
	return pk, nil
}

// FetchBalance returns owner's display balance for mode: SOL in native mode,
// the UI amount of the first token account for the mint in token mode.
// Every failure is returned as-is; callers do not distinguish causes.
func (c *Client) FetchBalance(ctx context.Context, owner solana.PublicKey, mode model.Mode) (float64, error) {
	if mode.IsNative() {
		return c.nativeBalance(ctx, owner)
	}

	mint, err := ParseAddress(mode.Token)
	if err != nil {
		return 0, fmt.Errorf("token mint: %w", err)
	}
	return c.tokenBalance(ctx, owner, mint)
}

func (c *Client) nativeBalance(ctx context.Context, owner solana.PublicKey) (float64, error) {
	if err := c.limiter.Wait(ctx, ratelimit.APIRPC); err != nil {
		return 0, err
	}

	out, err := c.rpc.GetBalance(ctx, owner, c.commitment)
	if err != nil {
		return 0, fmt.Errorf("getBalance(%s): %w", owner, err)
	}

	return LamportsToSOL(out.Value), nil
}

func (c *Client) tokenBalance(ctx context.Context, owner, mint solana.PublicKey) (float64, error) {
	if err := c.limiter.Wait(ctx, ratelimit.APIRPC); err != nil {
		return 0, err
	}

	accounts, err := c.rpc.GetTokenAccountsByOwner(ctx, owner,
		&rpc.GetTokenAccountsConfig{Mint: &mint},
		&rpc.GetTokenAccountsOpts{Commitment: c.commitment},
	)
	if err != nil {
		return 0, fmt.Errorf("getTokenAccountsByOwner(%s, %s): %w", owner, mint, err)
	}

	// Holding none of the token is a valid zero balance. Only the first
	// account is read.
	if accounts == nil || len(accounts.Value) == 0 || accounts.Value[0] == nil {
		return 0, nil
	}

	if err := c.limiter.Wait(ctx, ratelimit.APIRPC); err != nil {
		return 0, err
	}

	account := accounts.Value[0].Pubkey
	balance, err := c.rpc.GetTokenAccountBalance(ctx, account, c.commitment)
	if err != nil {
		return 0, fmt.Errorf("getTokenAccountBalance(%s): %w", account, err)
	}

	if balance == nil || balance.Value == nil || balance.Value.UiAmount == nil {
		return 0, nil
	}
	return *balance.Value.UiAmount, nil
}

// LamportsToSOL converts smallest units to a display amount.
func LamportsToSOL(lamports uint64) float64 {
	sol, _ := decimal.NewFromBigInt(new(big.Int).SetUint64(lamports), -lamportsPerSOLExp).Float64()
	return sol
}
