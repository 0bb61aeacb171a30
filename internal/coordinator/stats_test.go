package coordinator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tokenchecker/internal/domain/model"
)

func sampleResults() []model.Result {
	return []model.Result{
		model.Success("a", 10, "BONK", 0.5, nil),
		model.Failure("b"),
		model.Success("c", 0, "BONK", 0, nil),
		model.Success("d", 250, "BONK", 12.5, nil),
		model.Success("e", 1, "BONK", 0.05, nil),
	}
}

func TestComputeStats(t *testing.T) {
	s := ComputeStats(sampleResults(), model.TokenMode("DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263"))

	assert.Equal(t, 5, s.Total)
	assert.Equal(t, 3, s.NonZero)
	assert.Equal(t, 1, s.Failed)
	assert.InDelta(t, 261, s.TotalTokens, 1e-9)
	assert.InDelta(t, 13.05, s.TotalUSD, 1e-9)
	assert.Equal(t, "BONK", s.Label)
}

func TestComputeStats_Label(t *testing.T) {
	const mint = "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263"

	assert.Equal(t, "SOL", ComputeStats(nil, model.NativeMode()).Label)
	assert.Equal(t, "DezX...", ComputeStats(nil, model.TokenMode(mint)).Label)
	assert.Equal(t, "DezX...", ComputeStats([]model.Result{model.Failure("x")}, model.TokenMode(mint)).Label)
}

func TestComputeStats_Empty(t *testing.T) {
	s := ComputeStats(nil, model.NativeMode())
	assert.Zero(t, s.Total)
	assert.Zero(t, s.NonZero)
	assert.Zero(t, s.TotalTokens)
	assert.Zero(t, s.TotalUSD)
}

func TestFilterResults(t *testing.T) {
	tests := []struct {
		name      string
		threshold float64
		unit      model.Unit
		want      []string
	}{
		{"zero keeps everything", 0, model.UnitUSD, []string{"a", "b", "c", "d", "e"}},
		{"usd threshold", 0.5, model.UnitUSD, []string{"a", "b", "d"}},
		{"token threshold", 5, model.UnitToken, []string{"a", "b", "d"}},
		{"above all keeps errors", 1000, model.UnitToken, []string{"b"}},
		{"inclusive bound", 250, model.UnitToken, []string{"b", "d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, r := range FilterResults(sampleResults(), tt.threshold, tt.unit) {
				got = append(got, r.Wallet)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilterResults_Partition(t *testing.T) {
	results := sampleResults()

	for _, unit := range []model.Unit{model.UnitUSD, model.UnitToken} {
		for _, threshold := range []float64{-1, 0, 0.05, 0.1, 1, 10, 12.5, 100, 1e6} {
			kept := map[string]bool{}
			for _, r := range FilterResults(results, threshold, unit) {
				kept[r.Wallet] = true
				assert.True(t, r.HasError() || r.Metric(unit) >= threshold,
					"%s kept at %v %s", r.Wallet, threshold, unit)
			}
			for _, r := range results {
				if !kept[r.Wallet] {
					assert.False(t, r.HasError(), "error %s filtered out", r.Wallet)
					assert.Less(t, r.Metric(unit), threshold)
				}
			}
		}
	}
}
