package dlmm

import (
	"testing"

	cosmath "cosmossdk.io/math"
	"github.com/solarb/arbengine/pkg/dex/mintext"
	"github.com/stretchr/testify/require"
)

func TestComputeVariableFeeScenario(t *testing.T) {
	p := Pool{
		BinStep:                  25,
		VariableFeeControl:       20_000,
		VolatilityAccumulator:    100,
		MaxVolatilityAccumulator: 1_000_000,
	}
	fee := p.ComputeVariableFee()
	require.Equal(t, int64(2), fee.Int64())
}

func TestTotalFeeRateCappedAtFeePrecision(t *testing.T) {
	p := Pool{
		BaseFactor:         60_000,
		BinStep:            10_000,
		BaseFeePowerFactor: 2,
	}
	total := p.totalFeeRate()
	require.True(t, total.LTE(cosmath.NewInt(MaxFeeRate)))
}

func TestUpdateReferencesDecayRule(t *testing.T) {
	p := Pool{
		FilterPeriod:        10,
		DecayPeriod:         60,
		ReductionFactor:     5_000,
		LastUpdateTimestamp: 1_000,
		ActiveID:            42,
		VolatilityAccumulator: 800,
	}
	p.UpdateReferences(1_005) // inside filter period: no change
	require.Equal(t, int32(0), p.IndexReference)

	p.UpdateReferences(1_030) // inside decay period: scaled carry-forward
	require.Equal(t, int32(42), p.IndexReference)
	require.Equal(t, uint32(400), p.VolatilityReference)

	p.LastUpdateTimestamp = 1_030
	p.UpdateReferences(1_200) // beyond decay period: hard reset
	require.Equal(t, uint32(0), p.VolatilityReference)
}

func dlmmQuotePool() (Pool, map[int64]*BinArray) {
	p := Pool{
		BinStep:                  10,
		MinBinID:                 -100,
		MaxBinID:                 100,
		ActiveID:                 0,
		MaxVolatilityAccumulator: 1_000_000,
	}
	ba := &BinArray{Index: 0}
	ba.Bins[0] = Bin{AmountX: 1_000_000_000, AmountY: 1_000_000_000}
	return p, map[int64]*BinArray{0: ba}
}

// TestQuoteAppliesBoundaryTransferFeesOnly exercises spec.md §4.8's DLMM
// transfer-fee rule: the input mint's fee is deducted before the swap
// ever sees the amount, and the output mint's fee is deducted from the
// final total, not from any intermediate per-bin step.
func TestQuoteAppliesBoundaryTransferFeesOnly(t *testing.T) {
	p, arrays := dlmmQuotePool()
	baseline, err := Quote(p, arrays, 1_000_000, true, 0, 0, BoundaryFees{})
	require.NoError(t, err)
	require.Greater(t, baseline, uint64(0))

	p2, arrays2 := dlmmQuotePool()
	fees := BoundaryFees{
		In:  &mintext.TransferFeeConfig{NewerTransferFeeBasisPoints: 100, NewerMaximumFee: ^uint64(0)},
		Out: &mintext.TransferFeeConfig{NewerTransferFeeBasisPoints: 100, NewerMaximumFee: ^uint64(0)},
	}
	withFees, err := Quote(p2, arrays2, 1_000_000, true, 0, 0, fees)
	require.NoError(t, err)
	require.Less(t, withFees, baseline, "boundary transfer fees must reduce the realized output")
}
