package dex

import (
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
)

func TestErrorsIsMatchesByKind(t *testing.T) {
	err := QuoteErr("clmm: boom", nil)
	require.True(t, errors.Is(err, KindQuote))
	require.False(t, errors.Is(err, KindDecode))
}

func TestErrorsIsMatchesWrappedCause(t *testing.T) {
	cause := errors.New("rpc timeout")
	err := SnapshotErr("snapshot load failed", cause)
	require.True(t, errors.Is(err, KindSnapshot))
	require.True(t, errors.Is(err, cause))
}

func TestCacheMissErrHasNoCause(t *testing.T) {
	err := CacheMissErr("tick array missing")
	require.True(t, errors.Is(err, KindCacheMiss))
	require.Nil(t, errors.Unwrap(err))
}

func TestDexJSONValidRequiresALT(t *testing.T) {
	j := DexJSON{}
	require.False(t, j.Valid())

	var alt solana.PublicKey
	j.AddressLookupTableAddress = &alt
	require.True(t, j.Valid())
}
