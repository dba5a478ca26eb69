// Package bonding implements the bonding-curve AMM quote kernel of
// spec.md §4.8, grounded on nick199910-SolRoute's pkg/pool/pump/amm.go
// (reserve-based x*y=k Quote shape, SPL-token vault-balance fetch), but
// adapted from that package's single folded fee multiplier to two
// separately ceiling-rounded fees (lp_fee, proto_fee).
package bonding

import (
	"encoding/binary"

	"cosmossdk.io/math"
	"github.com/gagliardetto/solana-go"
	"github.com/solarb/arbengine/pkg/dex"
)

// Static layout after discriminator: baseMint(32) quoteMint(32)
// baseVault(32) quoteVault(32) coinCreator(32) lpFeeBps(2) protoFeeBps(2) = 164.
const StaticLen = 32 + 32 + 32 + 32 + 32 + 2 + 2

// Dynamic layout: baseVaultAmount(8) quoteVaultAmount(8) = 16.
const DynamicLen = 8 + 8

type Pool struct {
	BaseMint    solana.PublicKey
	QuoteMint   solana.PublicKey
	BaseVault   solana.PublicKey
	QuoteVault  solana.PublicKey
	CoinCreator solana.PublicKey
	LPFeeBps    uint16
	ProtoFeeBps uint16

	BaseVaultAmount  uint64
	QuoteVaultAmount uint64
}

func Decode(static, dynamic []byte) (Pool, error) {
	if len(static) != StaticLen {
		return Pool{}, dex.DecodeErr("bonding: bad static slice length", nil)
	}
	if len(dynamic) != DynamicLen {
		return Pool{}, dex.DecodeErr("bonding: bad dynamic slice length", nil)
	}
	var p Pool
	o := 0
	p.BaseMint = solana.PublicKeyFromBytes(static[o : o+32])
	o += 32
	p.QuoteMint = solana.PublicKeyFromBytes(static[o : o+32])
	o += 32
	p.BaseVault = solana.PublicKeyFromBytes(static[o : o+32])
	o += 32
	p.QuoteVault = solana.PublicKeyFromBytes(static[o : o+32])
	o += 32
	p.CoinCreator = solana.PublicKeyFromBytes(static[o : o+32])
	o += 32
	p.LPFeeBps = binary.LittleEndian.Uint16(static[o:])
	o += 2
	p.ProtoFeeBps = binary.LittleEndian.Uint16(static[o:])

	p.BaseVaultAmount = binary.LittleEndian.Uint64(dynamic[0:])
	p.QuoteVaultAmount = binary.LittleEndian.Uint64(dynamic[8:])
	return p, nil
}

const bpsDenom = 10_000

// Quote implements spec.md §4.8's bonding-curve algorithm:
//
//	lp_fee = ceil(amount_in * lp_bps / 10000)
//	proto_fee = ceil(amount_in * proto_bps / 10000)
//	net = amount_in - lp_fee - proto_fee
//	amount_out = floor(reserve_out * net / (reserve_in + net))
func Quote(p Pool, amountIn uint64, dir dex.SwapDirection) (uint64, error) {
	if amountIn == 0 {
		return 0, dex.QuoteErr("bonding: zero tradable amount", nil)
	}
	reserveIn, reserveOut := math.NewIntFromUint64(p.BaseVaultAmount), math.NewIntFromUint64(p.QuoteVaultAmount)
	if dir == dex.OneForZero {
		reserveIn, reserveOut = reserveOut, reserveIn
	}

	in := math.NewIntFromUint64(amountIn)
	lpFee := ceilDivBps(in, uint64(p.LPFeeBps))
	protoFee := ceilDivBps(in, uint64(p.ProtoFeeBps))
	net := in.Sub(lpFee).Sub(protoFee)
	if net.IsNegative() {
		return 0, dex.QuoteErr("bonding: fees exceed input", nil)
	}

	denom := reserveIn.Add(net)
	if !denom.IsPositive() {
		return 0, dex.QuoteErr("bonding: degenerate reserves", nil)
	}
	amountOut := reserveOut.Mul(net).Quo(denom)
	if amountOut.IsNegative() || !amountOut.IsInt64() {
		return 0, dex.QuoteErr("bonding: output overflow", nil)
	}
	return amountOut.Uint64(), nil
}

func ceilDivBps(amountIn math.Int, bps uint64) math.Int {
	num := amountIn.MulRaw(int64(bps))
	den := math.NewInt(bpsDenom)
	q := num.Quo(den)
	if num.Mod(den).IsPositive() {
		q = q.AddRaw(1)
	}
	return q
}
