package graph

import (
	"testing"

	"github.com/solarb/arbengine/pkg/dex"
	"github.com/stretchr/testify/require"
)

func TestBuildFindsTwoHopCycleBetweenDistinctPools(t *testing.T) {
	b := NewBuilder(0)
	e0 := b.AddEdge(Edge{DexKind: dex.ConstantProductAMM, PoolIndex: 0, InMintIdx: 0, OutMintIdx: 1, Direction: dex.ZeroForOne})
	e1 := b.AddEdge(Edge{DexKind: dex.ConcentratedLiquidityMM, PoolIndex: 1, InMintIdx: 1, OutMintIdx: 0, Direction: dex.OneForZero})
	g := b.Build()

	paths := g.PathsFor(0)
	require.Len(t, paths, 1)
	require.Equal(t, Path{Edge0: e0, Edge1: e1}, paths[0])

	require.Equal(t, paths, g.PathsFor(1))
}

func TestBuildExcludesSamePoolSelfCycle(t *testing.T) {
	b := NewBuilder(0)
	b.AddEdge(Edge{DexKind: dex.ConstantProductAMM, PoolIndex: 0, InMintIdx: 0, OutMintIdx: 1, Direction: dex.ZeroForOne})
	b.AddEdge(Edge{DexKind: dex.ConstantProductAMM, PoolIndex: 0, InMintIdx: 1, OutMintIdx: 0, Direction: dex.OneForZero})
	g := b.Build()

	require.Empty(t, g.PathsFor(0))
}

func TestBuildExcludesMismatchedMints(t *testing.T) {
	b := NewBuilder(0, 2)
	b.AddEdge(Edge{DexKind: dex.ConstantProductAMM, PoolIndex: 0, InMintIdx: 0, OutMintIdx: 1, Direction: dex.ZeroForOne})
	b.AddEdge(Edge{DexKind: dex.ConcentratedLiquidityMM, PoolIndex: 1, InMintIdx: 2, OutMintIdx: 3, Direction: dex.ZeroForOne})
	g := b.Build()

	require.Empty(t, g.PathsFor(0))
	require.Empty(t, g.PathsFor(1))
}

// TestBuildExcludesCyclesNotClosingOnFollowedMint is spec.md §4.9's
// build-time filter: a structurally valid two-hop cycle between mints 1
// and 2 is still dropped when neither is in the followed-mints list —
// only cycles that start and end in a configured base asset survive.
func TestBuildExcludesCyclesNotClosingOnFollowedMint(t *testing.T) {
	b := NewBuilder(0)
	b.AddEdge(Edge{DexKind: dex.ConstantProductAMM, PoolIndex: 0, InMintIdx: 1, OutMintIdx: 2, Direction: dex.ZeroForOne})
	b.AddEdge(Edge{DexKind: dex.ConcentratedLiquidityMM, PoolIndex: 1, InMintIdx: 2, OutMintIdx: 1, Direction: dex.OneForZero})
	g := b.Build()

	require.Empty(t, g.PathsFor(0))
	require.Empty(t, g.PathsFor(1))
}

func TestEdge0OfAndEdge1OfResolveByIndex(t *testing.T) {
	b := NewBuilder(0)
	b.AddEdge(Edge{DexKind: dex.ConstantProductAMM, PoolIndex: 0, InMintIdx: 0, OutMintIdx: 1})
	b.AddEdge(Edge{DexKind: dex.ConcentratedLiquidityMM, PoolIndex: 1, InMintIdx: 1, OutMintIdx: 0})
	g := b.Build()

	p := g.PathsFor(0)[0]
	require.Equal(t, dex.ConstantProductAMM, g.Edge0Of(p).DexKind)
	require.Equal(t, dex.ConcentratedLiquidityMM, g.Edge1Of(p).DexKind)
}
