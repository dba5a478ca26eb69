package clmm

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
	"github.com/solarb/arbengine/pkg/dex"
	"lukechampine.com/uint128"
)

// TickState is one initialised-or-not tick slot inside a TickArray,
// grounded on nick199910-SolRoute's TickState (LiquidityNet/Gross layout).
type TickState struct {
	TickIndex      int32
	LiquidityNet   int64
	LiquidityGross uint128.Uint128
}

// TickArray carries TickArraySize ticks aligned to tick_spacing*60
// (spec.md §3/glossary).
type TickArray struct {
	PoolID         solana.PublicKey
	StartTickIndex int32
	Ticks          [TickArraySize]TickState
}

// TickArrayLen is the no-discriminator on-wire size of one TickArray:
// poolId(32) startTickIndex(4) + 60*(tick(4)+liquidityNet(8)+liquidityGross(16)).
const TickArrayLen = 32 + 4 + TickArraySize*(4+8+16)

func DecodeTickArray(raw []byte) (TickArray, error) {
	if len(raw) != TickArrayLen {
		return TickArray{}, dex.DecodeErr("clmm: bad tick array length", nil)
	}
	var ta TickArray
	o := 0
	ta.PoolID = solana.PublicKeyFromBytes(raw[o : o+32])
	o += 32
	ta.StartTickIndex = int32(binary.LittleEndian.Uint32(raw[o:]))
	o += 4
	for i := 0; i < TickArraySize; i++ {
		ta.Ticks[i].TickIndex = int32(binary.LittleEndian.Uint32(raw[o:]))
		o += 4
		ta.Ticks[i].LiquidityNet = int64(binary.LittleEndian.Uint64(raw[o:]))
		o += 8
		ta.Ticks[i].LiquidityGross = uint128.Uint128{Lo: binary.LittleEndian.Uint64(raw[o:]), Hi: binary.LittleEndian.Uint64(raw[o+8:])}
		o += 16
	}
	return ta, nil
}

// nextInitializedTick walks the array's ticks in swap direction from
// fromTick (or from the boundary if fromTick is outside the array),
// returning the first tick with nonzero liquidity_gross. Zero-for-one
// includes fromTick itself; one-for-zero starts strictly above it.
func (ta TickArray) nextInitializedTick(fromTick int32, zeroForOne bool) (TickState, bool) {
	if zeroForOne {
		for i := TickArraySize - 1; i >= 0; i-- {
			t := ta.Ticks[i]
			if t.TickIndex <= fromTick && !t.LiquidityGross.IsZero() {
				return t, true
			}
		}
	} else {
		for i := 0; i < TickArraySize; i++ {
			t := ta.Ticks[i]
			if t.TickIndex > fromTick && !t.LiquidityGross.IsZero() {
				return t, true
			}
		}
	}
	return TickState{}, false
}
