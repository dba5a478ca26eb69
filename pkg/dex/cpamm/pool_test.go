package cpamm

import (
	"testing"

	"github.com/solarb/arbengine/pkg/dex"
	"github.com/stretchr/testify/require"
)

func TestQuoteForwardExactFeeMaths(t *testing.T) {
	p := Pool{
		FeeNumerator:    25,
		FeeDenominator:  10_000,
		VaultAAmount:    1_744_849_814_023,
		VaultBAmount:    11_752_484_441_015,
	}
	out, err := Quote(p, 1_000_000_000, dex.ZeroForOne)
	require.NoError(t, err)
	require.Equal(t, uint64(6_714_850_225), out)
}

func TestQuoteOppositeDirectionIsAsymmetric(t *testing.T) {
	p := Pool{
		FeeNumerator:   25,
		FeeDenominator: 10_000,
		VaultAAmount:   1_744_849_814_023,
		VaultBAmount:   11_752_484_441_015,
	}
	forward, err := Quote(p, 1_000_000_000, dex.ZeroForOne)
	require.NoError(t, err)
	backward, err := Quote(p, 1_000_000_000, dex.OneForZero)
	require.NoError(t, err)
	require.Equal(t, uint64(148_082_729), backward)
	require.Less(t, backward, forward)
}

func TestQuoteRejectsZeroAmount(t *testing.T) {
	p := Pool{FeeNumerator: 25, FeeDenominator: 10_000, VaultAAmount: 100, VaultBAmount: 100}
	_, err := Quote(p, 0, dex.ZeroForOne)
	require.Error(t, err)
}

func TestQuoteSubtractsPnlFromReserves(t *testing.T) {
	p := Pool{
		FeeNumerator:   25,
		FeeDenominator: 10_000,
		VaultAAmount:   1_744_849_814_023,
		VaultBAmount:   11_752_484_441_015,
		PnlOwedA:       744_849_814_023,
		PnlOwedB:       752_484_441_015,
	}
	withPnl, err := Quote(p, 1_000_000_000, dex.ZeroForOne)
	require.NoError(t, err)

	noPnl := Pool{
		FeeNumerator:   25,
		FeeDenominator: 10_000,
		VaultAAmount:   1_000_000_000_000,
		VaultBAmount:   11_000_000_000_000,
	}
	withoutPnl, err := Quote(noPnl, 1_000_000_000, dex.ZeroForOne)
	require.NoError(t, err)
	require.NotEqual(t, withPnl, withoutPnl)
}
