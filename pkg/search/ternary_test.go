package search

import (
	"testing"

	"github.com/solarb/arbengine/pkg/dex"
	"github.com/stretchr/testify/require"
)

// TestTernarySearchConvergence is spec.md §8 scenario 7: a synthetic
// unimodal profit curve peaking at 500_000_000 with a peak profit of
// 5_000_000. Profit is positive only within about 70_000_000 of the peak
// and falls off quadratically on both sides (the quote errors where the
// output would go negative, near LeftBound, which this search never
// probes) — ternary search requires a strictly unimodal curve, and a
// curve that clamps to zero over a wide flat region breaks that assumption.
func TestTernarySearchConvergence(t *testing.T) {
	const center = 500_000_000
	const curveScale = 1_000_000_000
	const peakProfit = 5_000_000

	quote := func(amountIn uint64) (uint64, error) {
		x := int64(amountIn) - center
		profit := int64(peakProfit) - (x*x)/curveScale
		out := int64(amountIn) + profit
		if out < 0 {
			return 0, dex.QuoteErr("search: negative output", nil)
		}
		return uint64(out), nil
	}

	result, err := TernarySearch(quote, 1_000_000_000)
	require.NoError(t, err)
	require.InDelta(t, center, result.AmountIn, float64(2*LinearRefineStep))
	require.Greater(t, result.Profit, int64(4_900_000))
}

func TestNormalQuoteEvaluatesSingleProbe(t *testing.T) {
	quote := func(amountIn uint64) (uint64, error) {
		return amountIn + 5, nil
	}
	r, err := NormalQuote(quote, 1_000_000)
	require.NoError(t, err)
	require.Equal(t, int64(5), r.Profit)
}
