package mintext

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func buildMintWithTransferFeeConfig(t *testing.T) []byte {
	t.Helper()
	payload := make([]byte, 0, 106)
	payload = append(payload, make([]byte, 32)...) // authority
	payload = append(payload, make([]byte, 32)...) // withdraw authority
	appendU64 := func(v uint64) {
		b := make([]byte, 8)
		binary.LittleEndian.PutUint64(b, v)
		payload = append(payload, b...)
	}
	appendU16 := func(v uint16) {
		b := make([]byte, 2)
		binary.LittleEndian.PutUint16(b, v)
		payload = append(payload, b...)
	}
	appendU64(111)   // withheld_amount
	appendU64(5)     // older.epoch
	appendU64(1_000) // older.maximum_fee
	appendU16(50)    // older.transfer_fee_basis_points
	appendU64(10)    // newer.epoch
	appendU64(2_000) // newer.maximum_fee
	appendU16(100)   // newer.transfer_fee_basis_points

	raw := make([]byte, baseMintLen)
	raw = append(raw, 1) // account-type discriminator
	extHeader := make([]byte, 4)
	binary.LittleEndian.PutUint16(extHeader[0:], transferFeeConfigExtension)
	binary.LittleEndian.PutUint16(extHeader[2:], uint16(len(payload)))
	raw = append(raw, extHeader...)
	raw = append(raw, payload...)
	return raw
}

func TestDecodeFindsTransferFeeConfigExtension(t *testing.T) {
	raw := buildMintWithTransferFeeConfig(t)

	cfg, ok, err := Decode(raw)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(111), cfg.WithheldAmount)
	require.Equal(t, uint16(50), cfg.OlderTransferFeeBasisPoints)
	require.Equal(t, uint16(100), cfg.NewerTransferFeeBasisPoints)
}

func TestDecodeReturnsFalseForPlainMint(t *testing.T) {
	raw := make([]byte, baseMintLen)
	_, ok, err := Decode(raw)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestActiveBasisPointsSwitchesAtNewerEpoch(t *testing.T) {
	cfg := TransferFeeConfig{
		OlderEpoch: 5, OlderTransferFeeBasisPoints: 50, OlderMaximumFee: 1_000,
		NewerEpoch: 10, NewerTransferFeeBasisPoints: 100, NewerMaximumFee: 2_000,
	}
	require.Equal(t, uint16(50), cfg.ActiveBasisPoints(7))
	require.Equal(t, uint16(100), cfg.ActiveBasisPoints(10))
}

func TestFeeIsCeilRoundedAndCappedAtMaximum(t *testing.T) {
	cfg := TransferFeeConfig{
		OlderEpoch: 0, OlderTransferFeeBasisPoints: 100, OlderMaximumFee: 50,
		NewerEpoch: 1_000_000, NewerTransferFeeBasisPoints: 0,
	}
	require.Equal(t, uint64(10), cfg.Fee(999, 0))  // ceil(999*100/10000)=10
	require.Equal(t, uint64(50), cfg.Fee(100_000, 0)) // capped at maximum_fee
	require.Equal(t, uint64(0), cfg.Fee(0, 0))
}
