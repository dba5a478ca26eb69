package dlmm

import (
	cosmath "cosmossdk.io/math"
	"github.com/solarb/arbengine/pkg/dex"
	"lukechampine.com/uint128"
)

// Q64 is the Q64.64 fixed-point unit (2^64) shared by bin prices.
var Q64 = mustQ64Int("18446744073709551616")

func mustQ64Int(s string) cosmath.Int {
	v, ok := cosmath.NewIntFromString(s)
	if !ok {
		panic("dlmm: bad Q64 constant")
	}
	return v
}

// Bin is one discrete price slot's liquidity, grounded on
// nick199910-SolRoute/pkg/pool/meteora/bin_array.go's ParseBinArray field
// order; the corpus never defines the Bin type itself, so its method set
// here (GetOrStoreBinPrice, GetAmountOut, ...) is newly authored against
// the call sites in price.go.
type Bin struct {
	AmountX                  uint64
	AmountY                  uint64
	Price                    uint128.Uint128
	LiquiditySupply          uint128.Uint128
	RewardPerTokenStored     [2]uint128.Uint128
	FeeAmountXPerTokenStored uint128.Uint128
	FeeAmountYPerTokenStored uint128.Uint128
	AmountXIn                uint128.Uint128
	AmountYIn                uint128.Uint128
}

// IsEmpty reports whether the bin holds none of the token being asked
// for (Y when swapping X->Y, X when swapping Y->X).
func (b *Bin) IsEmpty(forY bool) bool {
	if forY {
		return b.AmountY == 0
	}
	return b.AmountX == 0
}

// priceForBin computes (1 + binStep/10000)^binID in Q64.64 by repeated
// squaring, the standard DLMM bin-pricing formula.
func priceForBin(binID int32, binStep uint16) cosmath.Int {
	base := Q64.MulRaw(int64(BasisPointMax) + int64(binStep)).QuoRaw(BasisPointMax)
	neg := binID < 0
	exp := int64(binID)
	if neg {
		exp = -exp
	}
	result := Q64
	b := base
	e := exp
	for e > 0 {
		if e&1 == 1 {
			result = result.Mul(b).Quo(Q64)
		}
		b = b.Mul(b).Quo(Q64)
		e >>= 1
	}
	if neg {
		return Q64.Mul(Q64).Quo(result)
	}
	return result
}

// GetOrStoreBinPrice returns the bin's Q64.64 price, computing and
// caching it on first use (price.go's GetOrStoreBinPrice).
func (b *Bin) GetOrStoreBinPrice(activeID int32, binStep uint16) (cosmath.Int, error) {
	if !b.Price.IsZero() {
		return cosmath.NewIntFromBigInt(b.Price.Big()), nil
	}
	price := priceForBin(activeID, binStep)
	u, ok := uint128.FromBig(price.BigInt())
	if !ok {
		return cosmath.Int{}, dex.QuoteErr("dlmm: bin price overflow", nil)
	}
	b.Price = u
	return price, nil
}

// GetMaxAmountOut returns the full balance of the token being bought.
func (b *Bin) GetMaxAmountOut(swapForY bool) uint64 {
	if swapForY {
		return b.AmountY
	}
	return b.AmountX
}

// GetMaxAmountIn returns the exact input (pre-fee) needed to drain
// GetMaxAmountOut, the inverse of GetAmountOut, rounded up.
func (b *Bin) GetMaxAmountIn(price cosmath.Int, swapForY bool) (cosmath.Int, error) {
	maxOut := cosmath.NewIntFromUint64(b.GetMaxAmountOut(swapForY))
	if price.IsZero() {
		return cosmath.Int{}, dex.QuoteErr("dlmm: zero bin price", nil)
	}
	if swapForY {
		// amountOut = floor(amountIn*price/Q64) => amountIn = ceil(amountOut*Q64/price)
		return ceilDiv(maxOut.Mul(Q64), price), nil
	}
	// amountOut = floor(amountIn*Q64/price) => amountIn = ceil(amountOut*price/Q64)
	return ceilDiv(maxOut.Mul(price), Q64), nil
}

// GetAmountOut converts a post-fee input amount to an output amount at
// the bin's price: X->Y multiplies by price, Y->X divides by it.
func (b *Bin) GetAmountOut(amountIn uint64, price cosmath.Int, swapForY bool) (cosmath.Int, error) {
	in := cosmath.NewIntFromUint64(amountIn)
	if swapForY {
		return in.Mul(price).Quo(Q64), nil
	}
	if price.IsZero() {
		return cosmath.Int{}, dex.QuoteErr("dlmm: zero bin price", nil)
	}
	return in.Mul(Q64).Quo(price), nil
}

func ceilDiv(a, b cosmath.Int) cosmath.Int {
	q := a.Quo(b)
	if a.Mod(b).IsPositive() {
		q = q.AddRaw(1)
	}
	return q
}
