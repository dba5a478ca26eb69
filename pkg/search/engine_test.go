package search

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/solarb/arbengine/pkg/dex"
	"github.com/solarb/arbengine/pkg/dex/cpamm"
	"github.com/solarb/arbengine/pkg/graph"
	"github.com/stretchr/testify/require"
)

// isMonotonicKernel mirrors cmd/arbd's spec.md §4.10 normal/ternary
// partition: constant-product and bonding-curve kernels get ternary
// search, everything else gets the fixed-probe path.
func isMonotonicKernel(k dex.DexKind) bool {
	return k == dex.ConstantProductAMM || k == dex.BondingCurveAMM
}

func cpammQuoteFn(p cpamm.Pool, dir dex.SwapDirection) Quote {
	return func(amountIn uint64) (uint64, error) {
		return cpamm.Quote(p, amountIn, dir)
	}
}

// TestFindBestPathSelectsProfitableCycle is spec.md §8 scenario 6: two
// cpamm pools sharing a base and a quote mint, priced so that routing
// base->quote through pool 0 then quote->base through pool 1 loses money,
// while the reverse pairing (pool 1 then pool 0) turns a profit. It wires
// a real graph.Builder, real cpamm.Quote kernels, and the same
// isMonotonicKernel ternary/normal partition cmd/arbd uses, so an
// inverted partition (ternary and normal swapped) changes which amount
// gets quoted and trips the exact profit assertion below.
func TestFindBestPathSelectsProfitableCycle(t *testing.T) {
	pool0 := cpamm.Pool{
		FeeNumerator:   0,
		FeeDenominator: 1,
		VaultAAmount:   1_000_000_000_000,
		VaultBAmount:   1_000_000_000_000,
	}
	pool1 := cpamm.Pool{
		FeeNumerator:   0,
		FeeDenominator: 1,
		VaultAAmount:   1_000_000_000_000,
		VaultBAmount:   1_000_300_000_000,
	}
	pools := map[int]cpamm.Pool{0: pool0, 1: pool1}

	const baseMint, quoteMint = 0, 1

	b := graph.NewBuilder(baseMint)
	e0fwd := b.AddEdge(graph.Edge{DexKind: dex.ConstantProductAMM, PoolIndex: 0, InMintIdx: baseMint, OutMintIdx: quoteMint, Direction: dex.ZeroForOne})
	e0rev := b.AddEdge(graph.Edge{DexKind: dex.ConstantProductAMM, PoolIndex: 0, InMintIdx: quoteMint, OutMintIdx: baseMint, Direction: dex.OneForZero})
	e1fwd := b.AddEdge(graph.Edge{DexKind: dex.ConstantProductAMM, PoolIndex: 1, InMintIdx: baseMint, OutMintIdx: quoteMint, Direction: dex.ZeroForOne})
	e1rev := b.AddEdge(graph.Edge{DexKind: dex.ConstantProductAMM, PoolIndex: 1, InMintIdx: quoteMint, OutMintIdx: baseMint, Direction: dex.OneForZero})
	g := b.Build()

	candidates := make([]Candidate, 0, 2)
	for _, p := range g.PathsFor(0) {
		e0, e1 := g.Edge0Of(p), g.Edge1Of(p)
		hop0 := cpammQuoteFn(pools[e0.PoolIndex], e0.Direction)
		hop1 := cpammQuoteFn(pools[e1.PoolIndex], e1.Direction)
		cycle := func(amountIn uint64) (uint64, error) {
			mid, err := hop0(amountIn)
			if err != nil {
				return 0, err
			}
			return hop1(mid)
		}
		candidates = append(candidates, Candidate{
			Path:       p,
			Quote:      cycle,
			UseTernary: isMonotonicKernel(e0.DexKind) && isMonotonicKernel(e1.DexKind),
		})
	}
	require.Len(t, candidates, 2, "pool0<->pool1 should yield exactly two opposing cycles")

	const probeAmount = 50_000_000   // deliberately distinct from LeftBound
	const maxAmountIn = LeftBound    // forces TernarySearch's direct-evaluate shortcut at LeftBound

	winner, ok := FindBestPath(context.Background(), zap.NewNop(), candidates, probeAmount, maxAmountIn)
	require.True(t, ok)
	require.Equal(t, int64(9995), winner.Result.Profit)
	require.Equal(t, uint64(100_009_995), winner.Result.AmountOut)
	require.Equal(t, uint64(LeftBound), winner.Result.AmountIn, "ternary branch must evaluate at LeftBound, not the normal-quote probe amount")

	e0 := g.Edge0Of(winner.Path)
	require.Equal(t, 1, e0.PoolIndex, "the winning cycle must start at pool 1 (base->quote), not pool 0")
	require.Contains(t, []int{e0fwd, e0rev, e1fwd, e1rev}, winner.Path.Edge0)
}
