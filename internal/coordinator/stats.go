package coordinator

import (
	"tokenchecker/internal/domain/model"
	"tokenchecker/internal/verifier"
)

// Stats summarises a result list. Failures count toward Total and Failed
// only; they add nothing to the sums.
type Stats struct {
	Total       int     `json:"total" yaml:"total"`
	NonZero     int     `json:"nonZero" yaml:"nonZero"`
	Failed      int     `json:"failed" yaml:"failed"`
	TotalTokens float64 `json:"totalTokens" yaml:"totalTokens"`
	TotalUSD    float64 `json:"totalUsd" yaml:"totalUsd"`
	// Label names the unit of TotalTokens: SOL, or the first result's classifier.
	Label string `json:"label" yaml:"label"`
}

// ComputeStats aggregates results produced in mode.
func ComputeStats(results []model.Result, mode model.Mode) Stats {
	s := Stats{Total: len(results), Label: statsLabel(results, mode)}
	for _, r := range results {
		if r.HasError() {
			s.Failed++
			continue
		}
		if r.Balance > 0 {
			s.NonZero++
		}
		s.TotalTokens += r.Balance
		s.TotalUSD += r.USDValue
	}
	return s
}

func statsLabel(results []model.Result, mode model.Mode) string {
	if mode.IsNative() {
		return model.NativeSymbol
	}
	if len(results) > 0 && results[0].Classifier != "" {
		return results[0].Classifier
	}
	return verifier.ShortToken(mode.Token)
}

// FilterResults keeps every failure and every success whose metric on unit
// is at least threshold. Order is preserved.
func FilterResults(results []model.Result, threshold float64, unit model.Unit) []model.Result {
	filtered := make([]model.Result, 0, len(results))
	for _, r := range results {
		if r.HasError() || r.Metric(unit) >= threshold {
			filtered = append(filtered, r)
		}
	}
	return filtered
}
