package clmm

import (
	"errors"
	"testing"

	cosmath "cosmossdk.io/math"
	"github.com/solarb/arbengine/pkg/dex"
	"github.com/stretchr/testify/require"
	"lukechampine.com/uint128"
)

func toU128(v cosmath.Int) uint128.Uint128 {
	return uint128.FromBig(v.BigInt())
}

// TestSwapStepReachesTargetExactly exercises the one-step kernel directly
// with round numbers chosen so every intermediate division is exact,
// isolating the fee/amount split from tick-walk bookkeeping.
func TestSwapStepReachesTargetExactly(t *testing.T) {
	sqrtCurrent := pow64
	sqrtTarget := pow64.MulRaw(2)
	liquidity := cmNewInt(100_000_000)
	amountRemaining := cmNewInt(200_000_000)

	nextSqrt, amountIn, amountOut, feeAmount := swapStep(sqrtCurrent, sqrtTarget, liquidity, amountRemaining, 5_000, false)

	require.True(t, nextSqrt.Equal(sqrtTarget))
	require.Equal(t, int64(100_000_000), amountIn.Int64())
	require.Equal(t, int64(50_000_000), amountOut.Int64())
	require.Equal(t, int64(502_513), feeAmount.Int64()) // ceil(1e8*5000/995000)
}

func TestQuoteRejectsZeroLiquidity(t *testing.T) {
	p := Pool{
		TickSpacing:  60,
		FeeRate:      500,
		Liquidity:    toU128(cosmath.ZeroInt()),
		SqrtPriceX64: toU128(pow64),
		CurrentTick:  0,
	}
	_, err := Quote(p, nil, nil, AmmConfig{}, 1_000_000, dex.ZeroForOne)
	require.Error(t, err)
}

func TestQuoteRejectsZeroAmount(t *testing.T) {
	p := Pool{
		TickSpacing:  60,
		FeeRate:      500,
		Liquidity:    toU128(cmNewInt(1_000)),
		SqrtPriceX64: toU128(pow64),
		CurrentTick:  0,
	}
	_, err := Quote(p, nil, nil, AmmConfig{}, 0, dex.ZeroForOne)
	require.Error(t, err)
}

func TestQuoteErrorsOnMissingTickArray(t *testing.T) {
	p := Pool{
		TickSpacing:  60,
		FeeRate:      500,
		Liquidity:    toU128(cmNewInt(1_000_000)),
		SqrtPriceX64: toU128(pow64),
		CurrentTick:  0,
	}
	_, err := Quote(p, nil, nil, AmmConfig{}, 1_000_000, dex.ZeroForOne)
	require.Error(t, err)
	require.True(t, errors.Is(err, dex.KindCacheMiss))
}

// TestQuoteSingleArraySwapNoTickCross is the exact scenario 3 setup:
// tick_spacing=10, current_tick=0, one initialised tick at -10 with
// liquidity_net=-5e9, held in the single initialised tick array (start
// -600, marked in the bitmap); the current tick's own array (start 0) is
// supplied empty. A small amount_in (1e6) moves the price to tick -4
// without reaching -10.
func TestQuoteSingleArraySwapNoTickCross(t *testing.T) {
	p := Pool{
		TickSpacing:     10,
		FeeRate:         500,
		Liquidity:       toU128(cmNewInt(5_000_000_000)),
		SqrtPriceX64:    toU128(pow64),
		CurrentTick:     0,
		TickArrayBitmap: scenarioBitmap(),
	}
	arr := scenarioTickArray(t, p.TickSpacing)

	res, err := Quote(p, []TickArray{{StartTickIndex: 0}, arr}, nil, AmmConfig{}, 1_000_000, dex.ZeroForOne)
	require.NoError(t, err)
	require.Greater(t, res.AmountOut, uint64(0))
	require.Equal(t, int32(-4), res.EndingTick, "amount_in=1e6 must not be enough to cross tick -10")
	require.Equal(t, uint64(5_000_000_000), res.EndingLiquidity.Lo)
}

// TestQuoteCrossesTickAndUpdatesLiquidity is scenario 4: the same pool,
// but amount_in=1e11 is large enough to walk through tick -10, so the
// tick's liquidity_net (-5e9) is applied (added, since zero_for_one
// negates it) and current_tick becomes -11 (one below the crossed tick).
func TestQuoteCrossesTickAndUpdatesLiquidity(t *testing.T) {
	p := Pool{
		TickSpacing:     10,
		FeeRate:         500,
		Liquidity:       toU128(cmNewInt(5_000_000_000)),
		SqrtPriceX64:    toU128(pow64),
		CurrentTick:     0,
		TickArrayBitmap: scenarioBitmap(),
	}
	arr := scenarioTickArray(t, p.TickSpacing)

	res, err := Quote(p, []TickArray{{StartTickIndex: 0}, arr}, nil, AmmConfig{}, 100_000_000_000, dex.ZeroForOne)
	require.NoError(t, err)
	require.Greater(t, res.AmountOut, uint64(0))
	require.Equal(t, int32(-11), res.EndingTick)
	require.Equal(t, uint64(10_000_000_000), res.EndingLiquidity.Lo)
}

// scenarioTickArray builds the single tick array spec.md §8 scenarios 3/4
// share: one initialised tick at -10 with liquidity_net=-5e9.
func scenarioTickArray(t *testing.T, tickSpacing uint16) TickArray {
	t.Helper()
	arr := TickArray{StartTickIndex: tickArrayStartIndex(-10, tickSpacing)}
	arr.Ticks[0] = TickState{
		TickIndex:      -10,
		LiquidityNet:   -5_000_000_000,
		LiquidityGross: toU128(cmNewInt(5_000_000_000)),
	}
	return arr
}

// scenarioBitmap marks array index -1 (start -600 at tick_spacing=10) as
// initialised: primary bit 511, i.e. word 7, bit 63.
func scenarioBitmap() [16]uint64 {
	var bm [16]uint64
	bm[7] = 1 << 63
	return bm
}
