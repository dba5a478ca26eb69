// Package mintext decodes the token-2022 TransferFeeConfig mint
// extension, supplementing spec.md's base quote kernels per its data
// model note on mint decoration. Grounded on
// original_source/bin/arb/src/account_cache.rs::get_token2022_data,
// which locates the extension via spl_token_2022's
// StateWithExtensions::<Mint>::unpack + get_extension::<TransferFeeConfig>;
// this package reproduces that TLV scan by hand since Go has no
// spl-token-2022 binding in the retrieved pack.
package mintext

import (
	"encoding/binary"

	"github.com/solarb/arbengine/pkg/dex"
)

// baseMintLen is the fixed-size SPL Mint account layout (before any
// token-2022 extension TLV data).
const baseMintLen = 82

// transferFeeConfigExtension is spl_token_2022's ExtensionType discriminant
// for TransferFeeConfig.
const transferFeeConfigExtension = 1

// TransferFeeConfig mirrors spl_token_2022::extension::transfer_fee::
// TransferFeeConfig's two-generation fee schedule.
type TransferFeeConfig struct {
	TransferFeeConfigAuthority [32]byte
	WithdrawWithheldAuthority  [32]byte
	WithheldAmount             uint64
	OlderEpoch                 uint64
	OlderMaximumFee            uint64
	OlderTransferFeeBasisPoints uint16
	NewerEpoch                 uint64
	NewerMaximumFee            uint64
	NewerTransferFeeBasisPoints uint16
}

// ActiveBasisPoints returns whichever fee generation applies at epoch:
// the newer schedule once its epoch has arrived, otherwise the older one.
func (c TransferFeeConfig) ActiveBasisPoints(epoch uint64) uint16 {
	if epoch >= c.NewerEpoch {
		return c.NewerTransferFeeBasisPoints
	}
	return c.OlderTransferFeeBasisPoints
}

// ActiveMaximumFee mirrors ActiveBasisPoints for the paired cap.
func (c TransferFeeConfig) ActiveMaximumFee(epoch uint64) uint64 {
	if epoch >= c.NewerEpoch {
		return c.NewerMaximumFee
	}
	return c.OlderMaximumFee
}

// Fee computes the ceil-rounded transfer fee for amount at the given
// epoch, capped at the active maximum_fee — spl-token-2022's own
// calculate_epoch_fee semantics.
func (c TransferFeeConfig) Fee(amount, epoch uint64) uint64 {
	bps := uint64(c.ActiveBasisPoints(epoch))
	if bps == 0 || amount == 0 {
		return 0
	}
	fee := (amount*bps + 9999) / 10000
	if max := c.ActiveMaximumFee(epoch); fee > max {
		fee = max
	}
	return fee
}

// Decode scans a token-2022 mint account's extension TLV region (raw[82:])
// for TransferFeeConfig, returning ok=false if the mint carries no such
// extension (a plain SPL Token mint, or token-2022 without this extension).
func Decode(raw []byte) (TransferFeeConfig, bool, error) {
	if len(raw) <= baseMintLen {
		return TransferFeeConfig{}, false, nil
	}
	o := baseMintLen + 1 // +1 skips the account-type discriminator byte
	for o+4 <= len(raw) {
		extType := binary.LittleEndian.Uint16(raw[o:])
		extLen := int(binary.LittleEndian.Uint16(raw[o+2:]))
		o += 4
		if o+extLen > len(raw) {
			return TransferFeeConfig{}, false, dex.DecodeErr("mintext: truncated extension TLV", nil)
		}
		if extType == transferFeeConfigExtension {
			cfg, err := decodeTransferFeeConfig(raw[o : o+extLen])
			return cfg, err == nil, err
		}
		o += extLen
	}
	return TransferFeeConfig{}, false, nil
}

func decodeTransferFeeConfig(b []byte) (TransferFeeConfig, error) {
	const want = 32 + 32 + 8 + 8 + 8 + 2 + 8 + 8 + 2
	if len(b) != want {
		return TransferFeeConfig{}, dex.DecodeErr("mintext: bad transfer_fee_config length", nil)
	}
	var c TransferFeeConfig
	o := 0
	copy(c.TransferFeeConfigAuthority[:], b[o:o+32])
	o += 32
	copy(c.WithdrawWithheldAuthority[:], b[o:o+32])
	o += 32
	c.WithheldAmount = binary.LittleEndian.Uint64(b[o:])
	o += 8
	c.OlderEpoch = binary.LittleEndian.Uint64(b[o:])
	o += 8
	c.OlderMaximumFee = binary.LittleEndian.Uint64(b[o:])
	o += 8
	c.OlderTransferFeeBasisPoints = binary.LittleEndian.Uint16(b[o:])
	o += 2
	c.NewerEpoch = binary.LittleEndian.Uint64(b[o:])
	o += 8
	c.NewerMaximumFee = binary.LittleEndian.Uint64(b[o:])
	o += 8
	c.NewerTransferFeeBasisPoints = binary.LittleEndian.Uint16(b[o:])
	return c, nil
}
