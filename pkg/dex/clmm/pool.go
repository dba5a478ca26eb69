// Package clmm implements the concentrated-liquidity MM (tick-array)
// quote kernel of spec.md §4.8, grounded on
// nick199910-SolRoute/pkg/pool/raydium/clmmPool.go (pool struct layout,
// swapCompute's loop-cap-100 walk) and
// nick199910-SolRoute/pkg/pool/raydium/clmm_tickerarray.go (the one-step
// swap kernel, the Q64.64 sqrt-price<->tick bit-ladder, and the
// primary+extension bitmap search). The Q64.64 magic constants in
// tickmath.go are protocol-defined, not teacher style, and are ported
// verbatim so boundary inputs match bit-for-bit per spec.md §4.8/§8.
package clmm

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
	"github.com/solarb/arbengine/pkg/dex"
	"lukechampine.com/uint128"
)

// MinTick/MaxTick bound the discretised log-price index (spec.md glossary).
const (
	MinTick = -443636
	MaxTick = 443636
)

// TickArraySize is the fixed tick count per TickArray account (spec.md §3).
const TickArraySize = 60

// U64Resolution is the Q64.64 fractional-bit width shared by every
// sqrt-price computation in this package.
const U64Resolution = 64

// FeeRateDenominator is the fixed-point base for a CLMM pool's fee_rate,
// matching spec.md §8 scenario 3's fee_rate=500 meaning 5bps (500/1e6).
var FeeRateDenominator = cmNewInt(1_000_000)

// Static layout after discriminator: ammConfig(32) mint0Vault(32)
// mint1Vault(32) observationKey(32) tickSpacing(2) feeRate(4) = 134.
const StaticLen = 32 + 32 + 32 + 32 + 2 + 4

// Dynamic layout: liquidity(16) sqrtPriceX64(16) currentTick(4)
// tickArrayBitmap(16*8=128) = 164.
const DynamicLen = 16 + 16 + 4 + 128

// Pool is the decoded CLMM view.
type Pool struct {
	AmmConfigKey    solana.PublicKey
	Mint0Vault      solana.PublicKey
	Mint1Vault      solana.PublicKey
	ObservationKey  solana.PublicKey
	TickSpacing     uint16
	FeeRate         uint32 // parts-per-million, e.g. 500 = 5bps
	Liquidity       uint128.Uint128
	SqrtPriceX64    uint128.Uint128
	CurrentTick     int32
	TickArrayBitmap [16]uint64
}

func Decode(static, dynamic []byte) (Pool, error) {
	if len(static) != StaticLen {
		return Pool{}, dex.DecodeErr("clmm: bad static slice length", nil)
	}
	if len(dynamic) != DynamicLen {
		return Pool{}, dex.DecodeErr("clmm: bad dynamic slice length", nil)
	}
	var p Pool
	o := 0
	p.AmmConfigKey = solana.PublicKeyFromBytes(static[o : o+32])
	o += 32
	p.Mint0Vault = solana.PublicKeyFromBytes(static[o : o+32])
	o += 32
	p.Mint1Vault = solana.PublicKeyFromBytes(static[o : o+32])
	o += 32
	p.ObservationKey = solana.PublicKeyFromBytes(static[o : o+32])
	o += 32
	p.TickSpacing = binary.LittleEndian.Uint16(static[o:])
	o += 2
	p.FeeRate = binary.LittleEndian.Uint32(static[o:])

	o = 0
	p.Liquidity = uint128.Uint128{Lo: binary.LittleEndian.Uint64(dynamic[o:]), Hi: binary.LittleEndian.Uint64(dynamic[o+8:])}
	o += 16
	p.SqrtPriceX64 = uint128.Uint128{Lo: binary.LittleEndian.Uint64(dynamic[o:]), Hi: binary.LittleEndian.Uint64(dynamic[o+8:])}
	o += 16
	p.CurrentTick = int32(binary.LittleEndian.Uint32(dynamic[o:]))
	o += 4
	for i := 0; i < 16; i++ {
		p.TickArrayBitmap[i] = binary.LittleEndian.Uint64(dynamic[o:])
		o += 8
	}

	if p.TickSpacing == 0 || p.TickSpacing > 32768 {
		return Pool{}, dex.DecodeErr("clmm: tick_spacing out of range", nil)
	}
	if p.CurrentTick < MinTick || p.CurrentTick > MaxTick {
		return Pool{}, dex.DecodeErr("clmm: current_tick out of range", nil)
	}
	return p, nil
}
