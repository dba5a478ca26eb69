package slice

import (
	"testing"

	"github.com/solarb/arbengine/pkg/dex"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndSliceConcatenatesIntervals(t *testing.T) {
	r := NewRegistry()
	err := r.Register(dex.ConstantProductAMM, dex.Pool, dex.Subscribed, []Interval{
		{Offset: 0, Length: 4},
		{Offset: 8, Length: 4},
	})
	require.NoError(t, err)

	payload := []byte{1, 2, 3, 4, 0xAA, 0xBB, 0xCC, 0xDD, 5, 6, 7, 8}
	got, err := r.Slice(payload, dex.ConstantProductAMM, dex.Pool, dex.Subscribed)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8}, got)
}

func TestRegisterRejectsOverlappingIntervals(t *testing.T) {
	r := NewRegistry()
	err := r.Register(dex.ConstantProductAMM, dex.Pool, dex.Subscribed, []Interval{
		{Offset: 0, Length: 8},
		{Offset: 4, Length: 4},
	})
	require.Error(t, err)
}

func TestSliceErrorsOnUnknownTuple(t *testing.T) {
	r := NewRegistry()
	_, err := r.Slice([]byte{1, 2, 3}, dex.ConstantProductAMM, dex.Pool, dex.Subscribed)
	require.Error(t, err)
}

func TestSliceErrorsWhenPayloadTooShort(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(dex.ConcentratedLiquidityMM, dex.Pool, dex.Unsubscribed, []Interval{
		{Offset: 0, Length: 16},
	}))
	_, err := r.Slice([]byte{1, 2, 3}, dex.ConcentratedLiquidityMM, dex.Pool, dex.Unsubscribed)
	require.Error(t, err)
}

func TestSizeReturnsRegisteredTotalLength(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(dex.BinMM, dex.BinArray, dex.Subscribed, []Interval{
		{Offset: 0, Length: 10},
		{Offset: 20, Length: 6},
	}))
	n, err := r.Size(dex.BinMM, dex.BinArray, dex.Subscribed)
	require.NoError(t, err)
	require.Equal(t, 16, n)
}
