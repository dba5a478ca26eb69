package dlmm

import (
	"math/big"

	cosmath "cosmossdk.io/math"
	"github.com/solarb/arbengine/pkg/dex"
	"github.com/solarb/arbengine/pkg/dex/mintext"
)

// UpdateReferences applies the volatility-reference decay rule of
// price.go's UpdateReferences: no change inside the filter period, a
// reduction-factor-scaled carry-forward inside the decay period, and a
// hard reset to zero beyond it.
func (p *Pool) UpdateReferences(unixTimestamp int64) {
	elapsed := unixTimestamp - p.LastUpdateTimestamp
	if elapsed < int64(p.FilterPeriod) {
		return
	}
	p.IndexReference = p.ActiveID
	if elapsed < int64(p.DecayPeriod) {
		p.VolatilityReference = (p.VolatilityAccumulator * uint32(p.ReductionFactor)) / BasisPointMax
	} else {
		p.VolatilityReference = 0
	}
}

// UpdateVolatilityAccumulator recomputes the accumulator from the
// current bin's distance to the reference index, capped at
// MaxVolatilityAccumulator (price.go's UpdateVolatilityAccumulator).
func (p *Pool) UpdateVolatilityAccumulator() {
	deltaID := int64(p.IndexReference) - int64(p.ActiveID)
	if deltaID < 0 {
		deltaID = -deltaID
	}
	accumulator := uint64(p.VolatilityReference) + uint64(deltaID)*BasisPointMax
	if accumulator > uint64(p.MaxVolatilityAccumulator) {
		accumulator = uint64(p.MaxVolatilityAccumulator)
	}
	p.VolatilityAccumulator = uint32(accumulator)
}

// ComputeVariableFee is price.go's ComputeVariableFee: a quadratic
// control term over (volatility_accumulator*bin_step), ceiling-divided
// by 1e11.
func (p Pool) ComputeVariableFee() cosmath.Int {
	if p.VariableFeeControl == 0 {
		return cosmath.ZeroInt()
	}
	vab := cosmath.NewInt(int64(p.VolatilityAccumulator)).MulRaw(int64(p.BinStep))
	squared := vab.Mul(vab)
	vFee := cosmath.NewInt(int64(p.VariableFeeControl)).Mul(squared)
	return ceilDiv(vFee, cosmath.NewInt(100_000_000_000))
}

// baseFee is price.go's GetBaseFee: base_factor*bin_step*10*10^power_factor.
func (p Pool) baseFee() cosmath.Int {
	result := cosmath.NewInt(int64(p.BaseFactor)).MulRaw(int64(p.BinStep)).MulRaw(10)
	pow := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(p.BaseFeePowerFactor)), nil)
	return result.Mul(cosmath.NewIntFromBigInt(pow))
}

// totalFeeRate sums base and variable fee, capped at MaxFeeRate.
func (p Pool) totalFeeRate() cosmath.Int {
	total := p.baseFee().Add(p.ComputeVariableFee())
	max := cosmath.NewInt(MaxFeeRate)
	if total.GT(max) {
		return max
	}
	return total
}

// feeFromAmount ceiling-divides an amount-with-fees by FeePrecision at
// the current total fee rate (price.go's ComputeFeeFromAmount).
func (p Pool) feeFromAmount(amountWithFees uint64) uint64 {
	fee := cosmath.NewIntFromUint64(amountWithFees).Mul(p.totalFeeRate())
	fee = ceilDiv(fee, cosmath.NewInt(FeePrecision))
	return fee.Uint64()
}

func (p Pool) protocolFeeFromFee(fee uint64) uint64 {
	return cosmath.NewIntFromUint64(fee).MulRaw(int64(p.ProtocolShare)).QuoRaw(BasisPointMax).Uint64()
}

// stepSwap executes one bin's worth of a swap in place, mirroring
// price.go's Swap: caps the trade at the bin's max tradable amount,
// takes the fee out of the input, and debits/credits bin reserves.
func (p *Pool) stepSwap(bin *Bin, amountIn uint64, swapForY bool) (amountInWithFees, amountOut uint64, err error) {
	price, err := bin.GetOrStoreBinPrice(p.ActiveID, p.BinStep)
	if err != nil {
		return 0, 0, err
	}
	maxOut := bin.GetMaxAmountOut(swapForY)
	maxIn, err := bin.GetMaxAmountIn(price, swapForY)
	if err != nil {
		return 0, 0, err
	}
	maxFee := p.feeFromAmount(maxIn.Uint64())
	maxInWithFee := maxIn.AddRaw(int64(maxFee))

	var fee uint64
	if cosmath.NewIntFromUint64(amountIn).GT(maxInWithFee) {
		amountInWithFees = maxInWithFee.Uint64()
		amountOut = maxOut
		fee = maxFee
	} else {
		fee = p.feeFromAmount(amountIn)
		afterFee := amountIn - fee
		out, err := bin.GetAmountOut(afterFee, price, swapForY)
		if err != nil {
			return 0, 0, err
		}
		amountOut = out.Uint64()
		if amountOut > maxOut {
			amountOut = maxOut
		}
		amountInWithFees = amountIn
	}

	intoBin := amountInWithFees - fee
	if swapForY {
		bin.AmountX += intoBin
		if bin.AmountY < amountOut {
			return 0, 0, dex.QuoteErr("dlmm: bin has insufficient Y", nil)
		}
		bin.AmountY -= amountOut
	} else {
		bin.AmountY += intoBin
		if bin.AmountX < amountOut {
			return 0, 0, dex.QuoteErr("dlmm: bin has insufficient X", nil)
		}
		bin.AmountX -= amountOut
	}
	return amountInWithFees, amountOut, nil
}

// advanceActiveBin moves the active bin one slot in the swap direction,
// failing if the pool's bin range is exhausted (price.go's AdvanceActiveBin).
func (p *Pool) advanceActiveBin(swapForY bool) error {
	next := p.ActiveID + 1
	if swapForY {
		next = p.ActiveID - 1
	}
	if next < p.MinBinID || next > p.MaxBinID {
		return dex.QuoteErr("dlmm: bin range exhausted", nil)
	}
	p.ActiveID = next
	return nil
}

// MaxSwapBins bounds how many bins a single quote will cross, guarding
// against pathological all-empty-bin ranges.
const MaxSwapBins = 256

// BoundaryFees carries the token-2022 transfer-fee extensions of the two
// mints a swap crosses, so Quote can apply spec.md §4.8's "standard
// two-sided apply_transfer_fee rule" at the outer boundaries only: the
// input mint's fee on the way in, the output mint's fee on the way out.
// Either side may be nil if that mint is plain SPL Token (no extension).
type BoundaryFees struct {
	In  *mintext.TransferFeeConfig
	Out *mintext.TransferFeeConfig
}

// Quote walks active bins in the swap direction, accumulating output,
// mirroring price.go's top-level Quote loop. arrays must cover every bin
// array the walk could reach; a missing one surfaces as a cache-miss
// error rather than silently truncating the route. fees applies any
// token-2022 boundary transfer fees; pass BoundaryFees{} for plain mints.
func Quote(p Pool, arrays map[int64]*BinArray, amountIn uint64, swapForY bool, unixTimestamp int64, epoch uint64, fees BoundaryFees) (uint64, error) {
	if amountIn == 0 {
		return 0, dex.QuoteErr("dlmm: zero tradable amount", nil)
	}
	if fees.In != nil {
		amountIn -= fees.In.Fee(amountIn, epoch)
		if amountIn == 0 {
			return 0, dex.QuoteErr("dlmm: input fully consumed by transfer fee", nil)
		}
	}
	p.UpdateReferences(unixTimestamp)

	remaining := amountIn
	var totalOut uint64
	steps := 0
	for remaining > 0 {
		steps++
		if steps > MaxSwapBins {
			return 0, dex.QuoteErr("dlmm: swap computation exceeded maximum bin crossings", nil)
		}
		arrIdx := BinIDToBinArrayIndex(p.ActiveID)
		arr, ok := arrays[arrIdx]
		if !ok {
			return 0, dex.CacheMissErr("dlmm: bin array not loaded for active bin")
		}
		within, err := arr.IsBinIDWithinRange(p.ActiveID)
		if err != nil {
			return 0, err
		}
		if !within {
			if err := p.advanceActiveBin(swapForY); err != nil {
				return 0, err
			}
			continue
		}

		p.UpdateVolatilityAccumulator()
		bin, err := arr.GetBinMut(p.ActiveID)
		if err != nil {
			return 0, err
		}
		if !bin.IsEmpty(swapForY) {
			usedIn, out, err := p.stepSwap(bin, remaining, swapForY)
			if err != nil {
				return 0, err
			}
			remaining -= usedIn
			totalOut += out
		}
		if remaining == 0 {
			break
		}
		if err := p.advanceActiveBin(swapForY); err != nil {
			return 0, err
		}
	}
	if fees.Out != nil {
		totalOut -= fees.Out.Fee(totalOut, epoch)
	}
	return totalOut, nil
}
