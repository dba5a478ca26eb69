package clmm

import (
	"encoding/binary"

	"github.com/solarb/arbengine/pkg/dex"
)

// FeeRateDenominatorU32 is the parts-per-million base protocol_fee_rate
// and fund_fee_rate are expressed against, matching FeeRateDenominator's
// value but kept as a plain uint32 for the netting arithmetic below.
const FeeRateDenominatorU32 = 1_000_000

// AmmConfigLen is the sibling config account's decoded length after its
// 8-byte discriminator: bump(1) index(2) owner(32) protocolFeeRate(4)
// tradeFeeRate(4) tickSpacing(2) fundFeeRate(4) paddingU32(4) fundOwner(32)
// padding(24), grounded on
// nick199910-SolRoute/pkg/protocol/raydium_clmm.go's AmmConfig layout.
const AmmConfigLen = 1 + 2 + 32 + 4 + 4 + 2 + 4 + 4 + 32 + 24

// AmmConfig carries the pool-independent fee split spec.md §9 requires:
// protocol_fee_rate and fund_fee_rate are netted out of the trader-facing
// fee_amount before it is credited to the pool's LP fee growth.
type AmmConfig struct {
	ProtocolFeeRate uint32
	FundFeeRate     uint32
}

func DecodeAmmConfig(raw []byte) (AmmConfig, error) {
	if len(raw) != AmmConfigLen {
		return AmmConfig{}, dex.DecodeErr("clmm: bad amm config length", nil)
	}
	o := 1 + 2 + 32 // skip bump, index, owner
	var c AmmConfig
	c.ProtocolFeeRate = binary.LittleEndian.Uint32(raw[o:])
	o += 4 + 4 + 2 // skip protocolFeeRate (read above), tradeFeeRate, tickSpacing
	c.FundFeeRate = binary.LittleEndian.Uint32(raw[o:])
	return c, nil
}

// SplitFee nets the protocol and fund sub-fees out of a step's total
// fee_amount, returning the remainder credited to LPs. Matches Raydium's
// floor(fee_amount * rate / 1e6) split (spec.md §9's CLMM legacy
// fee-split resolution): protocol and fund are computed independently
// off the same total so rounding never pulls the LP share negative.
func (c AmmConfig) SplitFee(feeAmount int64) (lpFee, protocolFee, fundFee int64) {
	protocolFee = feeAmount * int64(c.ProtocolFeeRate) / FeeRateDenominatorU32
	fundFee = feeAmount * int64(c.FundFeeRate) / FeeRateDenominatorU32
	lpFee = feeAmount - protocolFee - fundFee
	return lpFee, protocolFee, fundFee
}
