package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// Well-formed mainnet addresses for tests.
const (
	WalletA  = "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM"
	WalletB  = "83astBRguLMdt2h5U1Tpdq5tjFoJ6noeGwaY3mDLVcri"
	WalletC  = "4Nd1mBQtrMJVYVfKf2PJy9NZUZdTAsp7D4xWLs4gDB4T"
	USDCMint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	BonkMint = "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263"
	// TokenAccount is returned as the owner's first token account.
	TokenAccount = "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB"
	// InvalidWallet is not valid base58.
	InvalidWallet = "not-a-wallet"
)

const tokenProgram = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"

// RPCError is a JSON-RPC error object.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// RPCHandler answers one JSON-RPC call. Return a non-nil *RPCError to fail.
type RPCHandler func(params []json.RawMessage) (any, *RPCError)

type rpcRequest struct {
	JSONRPC string            `json:"jsonrpc"`
	ID      json.RawMessage   `json:"id"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCServer is a fake Solana JSON-RPC node.
type RPCServer struct {
	*httptest.Server

	mu       sync.Mutex
	handlers map[string]RPCHandler
	calls    map[string]int
}

// NewRPCServer starts a fake node; it is closed when the test ends.
func NewRPCServer(t *testing.T) *RPCServer {
	t.Helper()

	s := &RPCServer{
		handlers: make(map[string]RPCHandler),
		calls:    make(map[string]int),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

// Handle registers the handler for method.
func (s *RPCServer) Handle(method string, h RPCHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[method] = h
}

// Calls returns how many times method was invoked.
func (s *RPCServer) Calls(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method]
}

func (s *RPCServer) serve(w http.ResponseWriter, r *http.Request) {
	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.calls[req.Method]++
	h, ok := s.handlers[req.Method]
	s.mu.Unlock()

	resp := rpcResponse{JSONRPC: "2.0", ID: req.ID}
	if !ok {
		resp.Error = &RPCError{Code: -32601, Message: "Method not found"}
	} else {
		resp.Result, resp.Error = h(req.Params)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

// OwnerOf decodes the first positional parameter as an address.
func OwnerOf(params []json.RawMessage) string {
	if len(params) == 0 {
		return ""
	}
	var owner string
	_ = json.Unmarshal(params[0], &owner)
	return owner
}

// BalanceResult is a getBalance result.
func BalanceResult(lamports uint64) any {
	return map[string]any{
		"context": map[string]any{"slot": 1},
		"value":   lamports,
	}
}

// TokenAccountsResult is a getTokenAccountsByOwner result listing pubkeys.
func TokenAccountsResult(pubkeys ...string) any {
	value := make([]any, 0, len(pubkeys))
	for _, pk := range pubkeys {
		value = append(value, map[string]any{
			"pubkey": pk,
			"account": map[string]any{
				"data":       []string{"", "base64"},
				"executable": false,
				"lamports":   2039280,
				"owner":      tokenProgram,
				"rentEpoch":  0,
			},
		})
	}
	return map[string]any{
		"context": map[string]any{"slot": 1},
		"value":   value,
	}
}

// TokenBalanceResult is a getTokenAccountBalance result. A nil uiAmount is
// encoded as JSON null.
func TokenBalanceResult(amount string, decimals int, uiAmount *float64) any {
	return map[string]any{
		"context": map[string]any{"slot": 1},
		"value": map[string]any{
			"amount":         amount,
			"decimals":       decimals,
			"uiAmount":       uiAmount,
			"uiAmountString": amount,
		},
	}
}

// Float returns a pointer to f.
func Float(f float64) *float64 {
	return &f
}
