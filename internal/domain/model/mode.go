package model

import "fmt"

// NativeSymbol is the display label of the chain's native currency.
const NativeSymbol = "SOL"

// ModeKind distinguishes the two query modes of a run.
type ModeKind int

const (
	// ModeNative checks the wallet's native SOL balance.
	ModeNative ModeKind = iota
	// ModeToken checks the wallet's balance of one specific token mint.
	ModeToken
)

// Mode is selected once per run; every wallet in a run shares it.
type Mode struct {
	Kind ModeKind
	// Token is the mint address. Empty in native mode.
	Token string
}

// NativeMode returns the native-currency query mode.
func NativeMode() Mode {
	return Mode{Kind: ModeNative}
}

// TokenMode returns a query mode for the given token mint.
func TokenMode(token string) Mode {
	return Mode{Kind: ModeToken, Token: token}
}

// IsNative reports whether the mode checks native balances.
func (m Mode) IsNative() bool {
	return m.Kind == ModeNative
}

// Label is a short metrics/logging label for the mode.
func (m Mode) Label() string {
	if m.IsNative() {
		return "native"
	}
	return "token"
}

func (m Mode) String() string {
	if m.IsNative() {
		return "native(" + NativeSymbol + ")"
	}
	return fmt.Sprintf("token(%s)", m.Token)
}
