package model

// Metadata sources.
const (
	SourceDexScreener = "dexscreener"
	SourceJupiter     = "jupiter"
)

// TokenMetadata is the display and pricing information resolved for a token.
// UnitPriceUSD is 0 when no source had a price (registry-only match).
type TokenMetadata struct {
	Symbol       string  `json:"symbol" yaml:"symbol"`
	Name         string  `json:"name" yaml:"name"`
	UnitPriceUSD float64 `json:"unitPriceUsd" yaml:"unitPriceUsd"`
	// Source names where the metadata came from, so a registry match with
	// no price can be told apart from a priced pair.
	Source string `json:"source" yaml:"source"`
}
