package config

import "strings"

// Preset is a well-known token selectable by symbol.
type Preset struct {
	Symbol  string
	Name    string
	Address string
}

// Presets is the built-in token catalogue.
var Presets = []Preset{
	{Symbol: "M3M3", Name: "M3M3", Address: "M3M3pSFptfpZYnWNUgAbyWzKKgPo5d1eWmX6tbiSF2K"},
	{Symbol: "PumpAI", Name: "PumpAI", Address: "7vsKatZ8BAKXXb16ZZMJyg9X3iLn8Zpq4yBPg8mWBLMd"},
	{Symbol: "AIAI", Name: "AIAI", Address: "Goatm5cqggssKRUwbMnPhHXKtN5SDGEP57qjwTSHD1Xf"},
	{Symbol: "LGTB", Name: "LGTB", Address: "2vFYpCh2yJhHphft1Z4XHdafEhj6XksyhFyH9tvTdKqf"},
}

// LookupPreset finds a preset by symbol, ignoring case.
func LookupPreset(symbol string) (Preset, bool) {
	for _, p := range Presets {
		if strings.EqualFold(p.Symbol, symbol) {
			return p, true
		}
	}
	return Preset{}, false
}

// PresetSymbols lists the preset symbols in catalogue order.
func PresetSymbols() []string {
	symbols := make([]string, len(Presets))
	for i, p := range Presets {
		symbols[i] = p.Symbol
	}
	return symbols
}
