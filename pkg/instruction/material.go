// Package instruction defines the output contract of spec.md §6: the
// per-hop instruction material the engine hands off for signing and
// submission, one step short of account-layout assembly. The full
// account-metas-in-protocol-order build (meteora/swap.go's
// BuildSwapInstructions, raydium's equivalent) is out of this engine's
// scope per spec.md §1 — only the dex_kind/direction/accounts/lookup
// tables contract itself is modeled here, grounded on that same file's
// output shape.
package instruction

import (
	"github.com/gagliardetto/solana-go"
	"github.com/solarb/arbengine/pkg/dex"
)

// Material is one hop's worth of instruction-building input: which DEX
// kernel it targets, which direction to swap, the account metas in that
// DEX's published order, and any address lookup tables to resolve them
// against.
type Material struct {
	DexKind      dex.DexKind
	Direction    dex.SwapDirection
	AccountMetas []*solana.AccountMeta
	LookupTables []solana.PublicKey
}

// Set is the ordered, one-per-hop output of a resolved arbitrage path
// (spec.md §6's InstructionMaterial set).
type Set []Material
