package clmm

import (
	"math/big"

	cosmath "cosmossdk.io/math"
	"github.com/solarb/arbengine/pkg/dex"
)

func cmNewInt(v int64) cosmath.Int { return cosmath.NewInt(v) }

func mustInt(s string) cosmath.Int {
	v, ok := cosmath.NewIntFromString(s)
	if !ok {
		panic("clmm: bad constant literal " + s)
	}
	return v
}

// Q64.64 sqrt-price bounds and the log-base-b constants used by the
// price<->tick inverse, ported verbatim from
// nick199910-SolRoute/pkg/pool/raydium/clmm_tickerarray.go since these
// are protocol-defined magic numbers, not teacher style.
var (
	maxUint128     = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))
	maxUint128Int  = cosmath.NewIntFromBigInt(maxUint128)
	pow64          = mustInt("18446744073709551616")
	MaxSqrtPriceX64 = mustInt("79226673515401279992447579055")
	MinSqrtPriceX64 = mustInt("4295048016")
	bitPrecision    = 14

	logB2X32               = mustInt("59543866431248")
	logBPErrMarginLowerX64 = mustInt("184467440737095516")
	logBPErrMarginUpperX64 = mustInt("15793534762490258745")
)

func mulRightShift64(val, mulBy cosmath.Int) cosmath.Int {
	return val.Mul(mulBy).Quo(pow64)
}

// SqrtPriceX64FromTick computes the Q64.64 sqrt-price for a tick index
// using the reference bit-ladder: each set bit of |tick| multiplies the
// running ratio by a precomputed per-bit factor, then the ratio is
// inverted for positive ticks.
func SqrtPriceX64FromTick(tick int32) (cosmath.Int, error) {
	if tick < MinTick || tick > MaxTick {
		return cosmath.Int{}, dex.QuoteErr("clmm: tick out of range", nil)
	}
	tickAbs := int64(tick)
	if tick < 0 {
		tickAbs = -tickAbs
	}

	var ratio cosmath.Int
	if tickAbs&0x1 != 0 {
		ratio = mustInt("18445821805675395072")
	} else {
		ratio = mustInt("18446744073709551616")
	}
	bits := []struct {
		mask int64
		mul  string
	}{
		{0x2, "18444899583751176192"},
		{0x4, "18443055278223355904"},
		{0x8, "18439367220385607680"},
		{0x10, "18431993317065453568"},
		{0x20, "18417254355718170624"},
		{0x40, "18387811781193609216"},
		{0x80, "18329067761203558400"},
		{0x100, "18212142134806163456"},
		{0x200, "17980523815641700352"},
		{0x400, "17526086738831433728"},
		{0x800, "16651378430235570176"},
		{0x1000, "15030750278694412288"},
		{0x2000, "12247334978884435968"},
		{0x4000, "8131365268886854656"},
		{0x8000, "3584323654725218816"},
		{0x10000, "696457651848324352"},
		{0x20000, "26294789957507116"},
		{0x40000, "37481735321082"},
	}
	for _, b := range bits {
		if tickAbs&b.mask != 0 {
			ratio = mulRightShift64(ratio, mustInt(b.mul))
		}
	}

	if tick > 0 {
		ratio = maxUint128Int.Quo(ratio)
	}
	return ratio, nil
}

// signedLeftShiftMasked left-shifts n by shiftBy bits within a bitWidth window.
func signedLeftShiftMasked(n *big.Int, shiftBy, bitWidth int) *big.Int {
	result := new(big.Int).Lsh(n, uint(shiftBy))
	mask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(bitWidth)), big.NewInt(1))
	return result.And(result, mask)
}

// TickFromSqrtPriceX64 is the inverse of SqrtPriceX64FromTick, via an MSB
// estimate plus a log2 bisection refined against the forward function —
// ported from the same teacher file's getTickFromSqrtPriceX64.
func TickFromSqrtPriceX64(sqrtPriceX64 cosmath.Int) (int32, error) {
	if sqrtPriceX64.GT(MaxSqrtPriceX64) || sqrtPriceX64.LT(MinSqrtPriceX64) {
		return 0, dex.QuoteErr("clmm: sqrt_price out of supported range", nil)
	}
	big64 := sqrtPriceX64.BigInt()
	msb := big64.BitLen() - 1
	adjustedMsb := big.NewInt(int64(msb - 64))
	log2IntegerX32 := signedLeftShiftMasked(adjustedMsb, 32, 128)

	bit, _ := new(big.Int).SetString("8000000000000000", 16)
	precision := 0
	log2FractionX64 := big.NewInt(0)

	var r *big.Int
	if msb >= 64 {
		r = new(big.Int).Rsh(big64, uint(msb-63))
	} else {
		r = new(big.Int).Lsh(big64, uint(63-msb))
	}

	zero := big.NewInt(0)
	for bit.Cmp(zero) > 0 && precision < bitPrecision {
		r = new(big.Int).Mul(r, r)
		moreThanTwo := new(big.Int).Rsh(r, 127)
		r = new(big.Int).Rsh(r, uint(63+moreThanTwo.Int64()))
		log2FractionX64 = new(big.Int).Add(log2FractionX64, new(big.Int).Mul(bit, moreThanTwo))
		bit = new(big.Int).Rsh(bit, 1)
		precision++
	}

	log2FractionX32 := new(big.Int).Rsh(log2FractionX64, 32)
	log2X32 := new(big.Int).Add(log2IntegerX32, log2FractionX32)
	logbpX64 := new(big.Int).Mul(log2X32, logB2X32.BigInt())

	tickLow := new(big.Int).Rsh(new(big.Int).Sub(logbpX64, logBPErrMarginLowerX64.BigInt()), 64)
	tickHigh := new(big.Int).Rsh(new(big.Int).Add(logbpX64, logBPErrMarginUpperX64.BigInt()), 64)

	if tickLow.Cmp(tickHigh) == 0 {
		return int32(tickLow.Int64()), nil
	}
	derivedHigh, err := SqrtPriceX64FromTick(int32(tickHigh.Int64()))
	if err != nil {
		return 0, err
	}
	if derivedHigh.LTE(sqrtPriceX64) {
		return int32(tickHigh.Int64()), nil
	}
	return int32(tickLow.Int64()), nil
}
