// Package dex holds the enums, error taxonomy, and wire types shared by
// every DEX-specific quote kernel and by the cache/graph/search layers.
package dex

import "github.com/gagliardetto/solana-go"

// DexKind is the closed set of AMM variants this engine prices.
type DexKind uint8

const (
	ConstantProductAMM DexKind = iota
	ConcentratedLiquidityMM
	BinMM
	BondingCurveAMM
	AdaptiveConcentratedMM
)

func (k DexKind) String() string {
	switch k {
	case ConstantProductAMM:
		return "constant_product_amm"
	case ConcentratedLiquidityMM:
		return "clmm"
	case BinMM:
		return "dlmm"
	case BondingCurveAMM:
		return "bonding_curve_amm"
	case AdaptiveConcentratedMM:
		return "adaptive_clmm"
	default:
		return "unknown_dex_kind"
	}
}

// AccountKind is the closed set of account shapes the registry and
// decoders know how to slice/parse.
type AccountKind uint8

const (
	Pool AccountKind = iota
	MintVault
	BinArray
	BinArrayBitmap
	TickArray
	TickArrayBitmapExtension
	AmmConfig
	GlobalConfig
	MintExtension
	Clock
	AddressLookupTable
)

// SubscriptionClass distinguishes fields that mutate on every swap
// (Subscribed) from ones fixed for the pool's life (Unsubscribed).
type SubscriptionClass uint8

const (
	Subscribed SubscriptionClass = iota
	Unsubscribed
)

// SwapDirection names which mint of a pool is being sold.
type SwapDirection uint8

const (
	ZeroForOne SwapDirection = iota
	OneForZero
)

// DexJSON is the manifest entry format of spec.md §6.1.
type DexJSON struct {
	Pool                      solana.PublicKey  `json:"pool"`
	Owner                     solana.PublicKey  `json:"owner"`
	VaultA                    solana.PublicKey  `json:"vaultA"`
	VaultB                    solana.PublicKey  `json:"vaultB"`
	MintA                     solana.PublicKey  `json:"mintA"`
	MintB                     solana.PublicKey  `json:"mintB"`
	AddressLookupTableAddress *solana.PublicKey `json:"addressLookupTableAddress,omitempty"`
}

// Valid reports whether the manifest entry carries everything the
// snapshot loader needs. A missing ALT address drops the pool per
// spec.md §6.1.
func (j DexJSON) Valid() bool {
	return j.AddressLookupTableAddress != nil
}
