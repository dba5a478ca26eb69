package clmm

import (
	cosmath "cosmossdk.io/math"
	"github.com/solarb/arbengine/pkg/dex"
	"lukechampine.com/uint128"
)

// MaxSwapIterations is the hard loop cap of spec.md §4.8; exceeding it is
// a QuoteError rather than an infinite loop.
const MaxSwapIterations = 100

func toCosInt(u uint128.Uint128) cosmath.Int {
	return cosmath.NewIntFromBigInt(u.Big())
}

func mulDivFloor(a, b, denom cosmath.Int) cosmath.Int {
	return a.Mul(b).Quo(denom)
}

func mulDivCeil(a, b, denom cosmath.Int) cosmath.Int {
	num := a.Mul(b)
	q := num.Quo(denom)
	if num.Mod(denom).IsPositive() {
		q = q.AddRaw(1)
	}
	return q
}

// tokenAmountAFromLiquidity computes delta-x given sqrt prices pA<pB and
// liquidity L: L*(pB-pA)/(pA*pB) in Q64.64, rounded per roundUp.
func tokenAmountAFromLiquidity(sqrtA, sqrtB, liquidity cosmath.Int, roundUp bool) cosmath.Int {
	if sqrtA.GT(sqrtB) {
		sqrtA, sqrtB = sqrtB, sqrtA
	}
	numerator1 := liquidity.Mul(pow64)
	numerator2 := sqrtB.Sub(sqrtA)
	if roundUp {
		return mulDivCeil(mulDivCeil(numerator1, numerator2, sqrtB), cmNewInt(1), sqrtA)
	}
	return mulDivFloor(numerator1, numerator2, sqrtB).Quo(sqrtA)
}

// tokenAmountBFromLiquidity computes delta-y = L*(pB-pA) in Q64.64.
func tokenAmountBFromLiquidity(sqrtA, sqrtB, liquidity cosmath.Int, roundUp bool) cosmath.Int {
	if sqrtA.GT(sqrtB) {
		sqrtA, sqrtB = sqrtB, sqrtA
	}
	diff := sqrtB.Sub(sqrtA)
	if roundUp {
		return mulDivCeil(liquidity, diff, pow64)
	}
	return mulDivFloor(liquidity, diff, pow64)
}

func nextSqrtPriceFromAmountARoundingUp(sqrtPrice, liquidity, amount cosmath.Int) cosmath.Int {
	if amount.IsZero() {
		return sqrtPrice
	}
	liquidityShifted := liquidity.Mul(pow64)
	denom := liquidityShifted.Add(amount.Mul(sqrtPrice))
	if denom.GTE(liquidityShifted) {
		return mulDivCeil(liquidityShifted, sqrtPrice, denom)
	}
	temp := liquidityShifted.Quo(sqrtPrice).Add(amount)
	return mulDivCeil(liquidityShifted, cmNewInt(1), temp)
}

func nextSqrtPriceFromAmountBRoundingDown(sqrtPrice, liquidity, amount cosmath.Int) cosmath.Int {
	deltaY := amount.Mul(pow64)
	return sqrtPrice.Add(deltaY.Quo(liquidity))
}

// swapStep is the one-step swap kernel of spec.md §4.8(c), restricted to
// exact-in (the only mode the search engine's quote(amount_in, ...) needs).
func swapStep(sqrtCurrent, sqrtTarget, liquidity, amountRemaining cosmath.Int, feeRate uint32, zeroForOne bool) (nextSqrt, amountIn, amountOut, feeAmount cosmath.Int) {
	feeRateInt := cmNewInt(int64(feeRate))
	amountAfterFee := mulDivFloor(amountRemaining, FeeRateDenominator.Sub(feeRateInt), FeeRateDenominator)

	if zeroForOne {
		amountIn = tokenAmountAFromLiquidity(sqrtTarget, sqrtCurrent, liquidity, true)
	} else {
		amountIn = tokenAmountBFromLiquidity(sqrtCurrent, sqrtTarget, liquidity, true)
	}

	if amountAfterFee.GTE(amountIn) {
		nextSqrt = sqrtTarget
	} else if zeroForOne {
		nextSqrt = nextSqrtPriceFromAmountARoundingUp(sqrtCurrent, liquidity, amountAfterFee)
	} else {
		nextSqrt = nextSqrtPriceFromAmountBRoundingDown(sqrtCurrent, liquidity, amountAfterFee)
	}

	reachedTarget := nextSqrt.Equal(sqrtTarget)
	if zeroForOne {
		if !reachedTarget {
			amountIn = tokenAmountAFromLiquidity(nextSqrt, sqrtCurrent, liquidity, true)
		}
		amountOut = tokenAmountBFromLiquidity(nextSqrt, sqrtCurrent, liquidity, false)
	} else {
		if !reachedTarget {
			amountIn = tokenAmountBFromLiquidity(sqrtCurrent, nextSqrt, liquidity, true)
		}
		amountOut = tokenAmountAFromLiquidity(sqrtCurrent, nextSqrt, liquidity, false)
	}

	if !reachedTarget {
		feeAmount = amountRemaining.Sub(amountIn)
	} else {
		feeAmount = mulDivCeil(amountIn, feeRateInt, FeeRateDenominator.Sub(feeRateInt))
	}
	return
}

// QuoteResult is Quote's output: the trader-facing amount_out plus the
// legacy fee split of spec.md §9 — protocol_fee and fund_fee are netted
// out of the total fee collected before the remainder is credited to LPs,
// matching the on-chain accounting even though this kernel never mutates
// pool state itself.
type QuoteResult struct {
	AmountOut   uint64
	LPFee       uint64
	ProtocolFee uint64
	FundFee     uint64

	// EndingTick and EndingLiquidity are the post-walk state the pool
	// would observe after this trade actually landed, exposed for
	// testing the tick-cross bookkeeping in isolation from amount_out.
	EndingTick      int32
	EndingLiquidity uint128.Uint128
}

// Quote walks tick arrays in the swap direction accumulating output,
// matching the loop invariant of spec.md §4.8(CLMM): while remaining != 0,
// sqrt_price != limit, and tick stays in range, advance one step at a
// time, crossing ticks (and, when exhausted, tick arrays) as needed.
// arrays must be supplied in walk order (nearest first) for the swap
// direction; ext is the sibling bitmap extension, or nil if the pool has
// none loaded; cfg is the pool's sibling amm-config account, which
// supplies the protocol/fund fee split.
func Quote(p Pool, arrays []TickArray, ext *TickArrayBitmapExtension, cfg AmmConfig, amountIn uint64, dir dex.SwapDirection) (QuoteResult, error) {
	if amountIn == 0 {
		return QuoteResult{}, dex.QuoteErr("clmm: zero tradable amount", nil)
	}
	if p.Liquidity.IsZero() {
		return QuoteResult{}, dex.QuoteErr("clmm: no liquidity", nil)
	}
	zeroForOne := dir == dex.ZeroForOne

	sqrtPriceLimit := MaxSqrtPriceX64.SubRaw(1)
	if zeroForOne {
		sqrtPriceLimit = MinSqrtPriceX64.AddRaw(1)
	}

	byStart := make(map[int32]TickArray, len(arrays))
	for _, a := range arrays {
		byStart[a.StartTickIndex] = a
	}

	remaining := cosmath.NewIntFromUint64(amountIn)
	calculated := cosmath.ZeroInt()
	totalFee := cosmath.ZeroInt()
	sqrtPrice := toCosInt(p.SqrtPriceX64)
	liquidity := toCosInt(p.Liquidity)
	tick := p.CurrentTick
	curStart := tickArrayStartIndex(tick, p.TickSpacing)

	for i := 0; i < MaxSwapIterations; i++ {
		if remaining.IsZero() || sqrtPrice.Equal(sqrtPriceLimit) || tick <= MinTick || tick >= MaxTick {
			break
		}
		arr, ok := byStart[curStart]
		if !ok {
			return QuoteResult{}, dex.CacheMissErr("clmm: tick array not loaded for current range")
		}
		next, found := arr.nextInitializedTick(tick, zeroForOne)
		if !found {
			nextStart, ok := nextInitializedTickArrayStart(p, ext, curStart, zeroForOne)
			if !ok {
				break
			}
			curStart = nextStart
			continue
		}

		targetSqrt, err := SqrtPriceX64FromTick(next.TickIndex)
		if err != nil {
			return QuoteResult{}, err
		}
		if zeroForOne {
			if targetSqrt.LT(sqrtPriceLimit) {
				targetSqrt = sqrtPriceLimit
			}
		} else if targetSqrt.GT(sqrtPriceLimit) {
			targetSqrt = sqrtPriceLimit
		}

		nextSqrt, amtIn, amtOut, fee := swapStep(sqrtPrice, targetSqrt, liquidity, remaining, p.FeeRate, zeroForOne)
		remaining = remaining.Sub(amtIn).Sub(fee)
		calculated = calculated.Add(amtOut)
		totalFee = totalFee.Add(fee)
		sqrtPrice = nextSqrt

		if nextSqrt.Equal(targetSqrt) {
			liquidityNet := next.LiquidityNet
			if zeroForOne {
				liquidityNet = -liquidityNet
			}
			if liquidityNet >= 0 {
				liquidity = liquidity.AddRaw(liquidityNet)
			} else {
				liquidity = liquidity.SubRaw(-liquidityNet)
			}
			if zeroForOne {
				tick = next.TickIndex - 1
			} else {
				tick = next.TickIndex
			}
			curStart = tickArrayStartIndex(tick, p.TickSpacing)
		} else {
			t, err := TickFromSqrtPriceX64(sqrtPrice)
			if err != nil {
				return QuoteResult{}, err
			}
			tick = t
			curStart = tickArrayStartIndex(tick, p.TickSpacing)
		}

		if i == MaxSwapIterations-1 && !remaining.IsZero() && !sqrtPrice.Equal(sqrtPriceLimit) {
			return QuoteResult{}, dex.QuoteErr("clmm: swap computation exceeded maximum iterations", nil)
		}
	}

	if !calculated.IsInt64() || calculated.IsNegative() {
		return QuoteResult{}, dex.QuoteErr("clmm: output overflow", nil)
	}
	lpFee, protocolFee, fundFee := cfg.SplitFee(totalFee.Int64())
	return QuoteResult{
		AmountOut:       calculated.Uint64(),
		LPFee:           uint64(lpFee),
		ProtocolFee:     uint64(protocolFee),
		FundFee:         uint64(fundFee),
		EndingTick:      tick,
		EndingLiquidity: uint128.FromBig(liquidity.BigInt()),
	}, nil
}
