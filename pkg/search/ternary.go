// Package search implements the profit-maximising quote search of
// spec.md §4.10, grounded on
// original_source/bin/arb/src/quoter.rs::find_maximize_quote_with_ternary_search
// (bounds and iteration counts ported verbatim) and
// ::find_best_hop_path (the parallel-branch, max-by-profit reduction).
// nick199910-SolRoute/pkg/router/simple_router.go shows the Go idiom for
// the fan-out (one goroutine per candidate feeding a channel) but its own
// reduction is a hardcoded pool-id stub rather than a real max — not
// reproduced here; this package restores the correct reduction that the
// Rust original already had.
package search

import "github.com/solarb/arbengine/pkg/dex"

// Bounds are the ternary-search tuning constants, ported verbatim from
// quoter.rs so boundary behaviour matches bit-for-bit.
const (
	LeftBound           uint64 = 100_000_000 // 0.1 SOL in lamports
	MaxIterations               = 50
	LinearRefineStep    uint64 = 10_000_000
	PrecisionThreshold  uint64 = 100_000_000
)

// Quote evaluates a full round-trip cycle at a given input amount,
// returning the output amount in the same unit/mint as the input.
type Quote func(amountIn uint64) (uint64, error)

// Result is one evaluated candidate: the input that produced it and its
// profit (output minus input; negative means a loss).
type Result struct {
	AmountIn uint64
	AmountOut uint64
	Profit   int64
}

func profitOf(amountIn, amountOut uint64) int64 {
	return int64(amountOut) - int64(amountIn)
}

// TernarySearch maximises profit over amount_in in [LeftBound,
// maxAmountIn] for a quote function whose profit curve is not assumed
// unimodal in practice (tick/bin liquidity steps) — hence the ternary
// phase narrows the bracket and a linear refine pass over the final
// bracket catches any local optimum the ternary steps skipped past,
// exactly mirroring quoter.rs.
func TernarySearch(q Quote, maxAmountIn uint64) (Result, error) {
	if maxAmountIn <= LeftBound {
		return evaluate(q, LeftBound)
	}
	left, right := LeftBound, maxAmountIn

	for i := 0; i < MaxIterations && right-left > PrecisionThreshold; i++ {
		mid1 := left + (right-left)/3
		mid2 := right - (right-left)/3

		r1, err1 := evaluate(q, mid1)
		r2, err2 := evaluate(q, mid2)
		switch {
		case err1 != nil && err2 != nil:
			return Result{}, dex.QuoteErr("search: ternary search failed at both midpoints", err1)
		case err1 != nil:
			left = mid1
		case err2 != nil:
			right = mid2
		case r1.Profit < r2.Profit:
			left = mid1
		default:
			right = mid2
		}
	}

	best := Result{Profit: -1 << 62}
	for amt := left; amt <= right; amt += LinearRefineStep {
		r, err := evaluate(q, amt)
		if err != nil {
			continue
		}
		if r.Profit > best.Profit {
			best = r
		}
	}
	if best.Profit == -1<<62 {
		return Result{}, dex.QuoteErr("search: no viable amount in refine range", nil)
	}
	return best, nil
}

// NormalQuote evaluates a single fixed probe amount — used for paths
// that contain a tick- or bin-stepped kernel (CLMM/DLMM), whose profit
// curve steps with liquidity and is not searched (spec.md §4.10's
// normal-quoted partition); paths made only of constant-product/
// bonding-curve kernels go to TernarySearch instead.
func NormalQuote(q Quote, probeAmount uint64) (Result, error) {
	return evaluate(q, probeAmount)
}

func evaluate(q Quote, amountIn uint64) (Result, error) {
	out, err := q(amountIn)
	if err != nil {
		return Result{}, err
	}
	return Result{AmountIn: amountIn, AmountOut: out, Profit: profitOf(amountIn, out)}, nil
}
