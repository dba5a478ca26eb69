// Package dlmm implements the bin-based dynamic-fee MM quote kernel of
// spec.md §4.8 (DLMM), grounded on
// nick199910-SolRoute/pkg/pool/meteora/dlmm.go (pool field layout and
// manual offset decode) and
// nick199910-SolRoute/pkg/pool/meteora/price.go (the swap/fee/volatility
// algorithm). The corpus's meteora package never defines a Bin type, the
// GetBinArrayLowerUpperBinID helper, or the basis-point/fee-precision
// constants it calls — this package supplies working equivalents,
// documented in DESIGN.md, rather than leaving those call sites dangling.
package dlmm

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
	"github.com/solarb/arbengine/pkg/dex"
)

// BasisPointMax is the scale of bin-step percentages (1 bin step = 1/10000).
const BasisPointMax = 10_000

// FeePrecision is the fixed-point base shared by base-fee and
// variable-fee rate calculations, matching spec.md §8 scenario 5's hard
// fee limit of 1_000_000 "in 1e6 denominator".
const FeePrecision = 1_000_000

// MaxFeeRate caps total_fee_rate at the full FeePrecision (100%), the
// hard fee limit spec.md §8 scenario 5 names explicitly.
const MaxFeeRate = FeePrecision

// BinsPerArray is the fixed bin count per BinArray account.
const BinsPerArray = 70

const (
	pairStatusEnabled      = 0
	pairTypePermission     = 1
	activationTypeSlot     = 0
	activationTypeTimestamp = 1
)

// Pool is the decoded DLMM view: parameters, volatility state, and the
// active bin pointer, but not the bin contents themselves (those arrive
// as separate BinArray accounts, per spec.md's subscribed/unsubscribed split).
type Pool struct {
	BaseFactor               uint16
	FilterPeriod             uint16
	DecayPeriod              uint16
	ReductionFactor          uint16
	VariableFeeControl       uint32
	MaxVolatilityAccumulator uint32
	MinBinID                 int32
	MaxBinID                 int32
	ProtocolShare            uint16
	BaseFeePowerFactor       uint8

	VolatilityAccumulator uint32
	VolatilityReference   uint32
	IndexReference        int32
	LastUpdateTimestamp   int64

	PairType        uint8
	ActiveID        int32
	BinStep         uint16
	Status          uint8
	ActivationType  uint8
	ActivationPoint uint64

	TokenXMint solana.PublicKey
	TokenYMint solana.PublicKey
	ReserveX   solana.PublicKey
	ReserveY   solana.PublicKey

	BinArrayBitmap [16]uint64
}

// StaticLen covers every field that does not change on a swap: fee/decay
// parameters, bin range, mints, reserves.
const StaticLen = 2 + 2 + 2 + 2 + 4 + 4 + 4 + 4 + 2 + 1 +
	1 + 1 + 2 + 1 + 8 + 32 + 32 + 32 + 32

// DynamicLen covers the mutable swap-affecting state: volatility
// reference/accumulator, active bin, and the bin-array bitmap.
const DynamicLen = 4 + 4 + 4 + 8 + 4 + 16*8

func Decode(static, dynamic []byte) (Pool, error) {
	if len(static) != StaticLen {
		return Pool{}, dex.DecodeErr("dlmm: bad static slice length", nil)
	}
	if len(dynamic) != DynamicLen {
		return Pool{}, dex.DecodeErr("dlmm: bad dynamic slice length", nil)
	}
	var p Pool
	o := 0
	p.BaseFactor = binary.LittleEndian.Uint16(static[o:])
	o += 2
	p.FilterPeriod = binary.LittleEndian.Uint16(static[o:])
	o += 2
	p.DecayPeriod = binary.LittleEndian.Uint16(static[o:])
	o += 2
	p.ReductionFactor = binary.LittleEndian.Uint16(static[o:])
	o += 2
	p.VariableFeeControl = binary.LittleEndian.Uint32(static[o:])
	o += 4
	p.MaxVolatilityAccumulator = binary.LittleEndian.Uint32(static[o:])
	o += 4
	p.MinBinID = int32(binary.LittleEndian.Uint32(static[o:]))
	o += 4
	p.MaxBinID = int32(binary.LittleEndian.Uint32(static[o:]))
	o += 4
	p.ProtocolShare = binary.LittleEndian.Uint16(static[o:])
	o += 2
	p.BaseFeePowerFactor = static[o]
	o++
	p.PairType = static[o]
	o++
	p.Status = static[o]
	o++
	p.BinStep = binary.LittleEndian.Uint16(static[o:])
	o += 2
	p.ActivationType = static[o]
	o++
	p.ActivationPoint = binary.LittleEndian.Uint64(static[o:])
	o += 8
	p.TokenXMint = solana.PublicKeyFromBytes(static[o : o+32])
	o += 32
	p.TokenYMint = solana.PublicKeyFromBytes(static[o : o+32])
	o += 32
	p.ReserveX = solana.PublicKeyFromBytes(static[o : o+32])
	o += 32
	p.ReserveY = solana.PublicKeyFromBytes(static[o : o+32])

	o = 0
	p.VolatilityAccumulator = binary.LittleEndian.Uint32(dynamic[o:])
	o += 4
	p.VolatilityReference = binary.LittleEndian.Uint32(dynamic[o:])
	o += 4
	p.IndexReference = int32(binary.LittleEndian.Uint32(dynamic[o:]))
	o += 4
	p.LastUpdateTimestamp = int64(binary.LittleEndian.Uint64(dynamic[o:]))
	o += 8
	p.ActiveID = int32(binary.LittleEndian.Uint32(dynamic[o:]))
	o += 4
	for i := 0; i < 16; i++ {
		p.BinArrayBitmap[i] = binary.LittleEndian.Uint64(dynamic[o:])
		o += 8
	}

	if p.BinStep == 0 {
		return Pool{}, dex.DecodeErr("dlmm: zero bin_step", nil)
	}
	if p.ActiveID < p.MinBinID || p.ActiveID > p.MaxBinID {
		return Pool{}, dex.DecodeErr("dlmm: active_id out of bin range", nil)
	}
	return p, nil
}

// Active returns whether the pair accepts swaps right now, per
// price.go's validateSwapActivation (enabled status, and activation
// point reached for permissioned pairs).
func (p Pool) Active(unixTimestamp int64, slot uint64) bool {
	if p.Status != pairStatusEnabled {
		return false
	}
	if p.PairType != pairTypePermission {
		return true
	}
	var point uint64
	switch p.ActivationType {
	case activationTypeSlot:
		point = slot
	case activationTypeTimestamp:
		point = uint64(unixTimestamp)
	default:
		return false
	}
	return point >= p.ActivationPoint
}
