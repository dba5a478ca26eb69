// Package graph builds the two-hop cyclic path index of spec.md §4.9,
// keyed by pool identity. Go has no owning-pointer cycles problem the
// way a borrow-checked language does, but the design note in spec.md §9
// still asks for an arena-of-indices layout, so this package follows it:
// edges live in one flat slice and every path is a pair of indices into
// that slice plus their shared pool-index domain — grounded on the same
// indices-over-pointers discipline nick199910-SolRoute/pkg/router uses
// for its pool slice (simple_router.go's Pools []Pool, addressed by
// position rather than by pointer chains).
package graph

import "github.com/solarb/arbengine/pkg/dex"

// Edge is a canonical directed traversal of one pool: in_mint -> out_mint
// via dex_kind at pool_index, in the given direction.
type Edge struct {
	DexKind    dex.DexKind
	PoolIndex  int
	InMintIdx  int
	OutMintIdx int
	Direction  dex.SwapDirection
}

// Path is a two-hop cycle: edges[Edge0] then edges[Edge1], with
// edges[Edge0].OutMintIdx == edges[Edge1].InMintIdx and vice versa,
// and the two pools distinct (spec.md §4.9, §8's path-graph invariant).
type Path struct {
	Edge0 int
	Edge1 int
}

// Graph is the frozen-after-build path index: a flat edge arena plus,
// for each pool index, every path touching that pool.
type Graph struct {
	Edges     []Edge
	byPool    map[int][]Path
}

// Builder accumulates edges before Build freezes the graph.
type Builder struct {
	edges         []Edge
	followedMints map[int]struct{}
}

// NewBuilder takes the "followed mints" list of spec.md §4.9's build-time
// filter (the base-asset mint indices, e.g. the interned index of
// Config.BaseMint) — at least one must be given, since every cycle's
// loop-closing mint (the mint flowing in at edge_1 and back out at
// edge_2) must be one of them for the cycle to be retained.
func NewBuilder(followedMints ...int) *Builder {
	fm := make(map[int]struct{}, len(followedMints))
	for _, m := range followedMints {
		fm[m] = struct{}{}
	}
	return &Builder{followedMints: fm}
}

// AddEdge appends an edge to the arena and returns its index.
func (b *Builder) AddEdge(e Edge) int {
	b.edges = append(b.edges, e)
	return len(b.edges) - 1
}

// Build enumerates every valid two-hop cycle among the accumulated edges
// whose loop-closing mint is in the followed-mints list, and indexes it
// by both pools it touches (spec.md §4.9's build-time filter).
func (b *Builder) Build() *Graph {
	g := &Graph{Edges: b.edges, byPool: make(map[int][]Path)}
	for i, e1 := range b.edges {
		if _, ok := b.followedMints[e1.InMintIdx]; !ok {
			continue
		}
		for j, e2 := range b.edges {
			if i == j {
				continue
			}
			if e1.PoolIndex == e2.PoolIndex {
				continue
			}
			if e1.OutMintIdx != e2.InMintIdx || e2.OutMintIdx != e1.InMintIdx {
				continue
			}
			p := Path{Edge0: i, Edge1: j}
			g.byPool[e1.PoolIndex] = append(g.byPool[e1.PoolIndex], p)
			g.byPool[e2.PoolIndex] = append(g.byPool[e2.PoolIndex], p)
		}
	}
	return g
}

// PathsFor returns every path touching poolIndex; nil if none. The slice
// is shared with the graph's internal index and must not be mutated.
func (g *Graph) PathsFor(poolIndex int) []Path {
	return g.byPool[poolIndex]
}

// Edge0Of and Edge1Of resolve a path's two edges by index.
func (g *Graph) Edge0Of(p Path) Edge { return g.Edges[p.Edge0] }
func (g *Graph) Edge1Of(p Path) Edge { return g.Edges[p.Edge1] }
