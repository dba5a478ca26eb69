// Package cpamm implements the constant-product AMM quote kernel and its
// decoded pool view, grounded on nick199910-SolRoute's
// pkg/pool/raydium/ammPool.go (struct layout and the Quote reserve/PnL/fee
// shape), adapted to ceiling-round the fee and floor the output per
// spec.md §4.8 and §8 scenario 1.
package cpamm

import (
	"encoding/binary"

	"cosmossdk.io/math"
	"github.com/gagliardetto/solana-go"
	"github.com/solarb/arbengine/pkg/dex"
)

// Unsubscribed (static) fields: pool's life-immutable configuration.
// Raw layout, after the 8-byte discriminator: feeNum(8) feeDen(8)
// vaultA(32) vaultB(32) mintA(32) mintB(32) openTime(8) = 152 bytes.
const StaticLen = 8 + 8 + 32 + 32 + 32 + 32 + 8

// Subscribed (dynamic) fields: mutate on every swap/vault transfer.
// vaultAAmount(8) vaultBAmount(8) pnlOwedA(8) pnlOwedB(8) status(1) = 33 bytes.
const DynamicLen = 8 + 8 + 8 + 8 + 1

// Pool is the decoded constant-product AMM view.
type Pool struct {
	FeeNumerator   uint64
	FeeDenominator uint64
	VaultA         solana.PublicKey
	VaultB         solana.PublicKey
	MintA          solana.PublicKey
	MintB          solana.PublicKey
	OpenTime       uint64

	VaultAAmount uint64
	VaultBAmount uint64
	PnlOwedA     uint64
	PnlOwedB     uint64
	Status       uint8
}

// Decode projects the sliced static/dynamic buffers into a Pool. Any read
// past the slice length is a fatal decode error (spec.md §4.2).
func Decode(static, dynamic []byte) (Pool, error) {
	if len(static) != StaticLen {
		return Pool{}, dex.DecodeErr("cpamm: bad static slice length", nil)
	}
	if len(dynamic) != DynamicLen {
		return Pool{}, dex.DecodeErr("cpamm: bad dynamic slice length", nil)
	}
	var p Pool
	o := 0
	p.FeeNumerator = binary.LittleEndian.Uint64(static[o:])
	o += 8
	p.FeeDenominator = binary.LittleEndian.Uint64(static[o:])
	o += 8
	p.VaultA = solana.PublicKeyFromBytes(static[o : o+32])
	o += 32
	p.VaultB = solana.PublicKeyFromBytes(static[o : o+32])
	o += 32
	p.MintA = solana.PublicKeyFromBytes(static[o : o+32])
	o += 32
	p.MintB = solana.PublicKeyFromBytes(static[o : o+32])
	o += 32
	p.OpenTime = binary.LittleEndian.Uint64(static[o:])

	o = 0
	p.VaultAAmount = binary.LittleEndian.Uint64(dynamic[o:])
	o += 8
	p.VaultBAmount = binary.LittleEndian.Uint64(dynamic[o:])
	o += 8
	p.PnlOwedA = binary.LittleEndian.Uint64(dynamic[o:])
	o += 8
	p.PnlOwedB = binary.LittleEndian.Uint64(dynamic[o:])
	o += 8
	p.Status = dynamic[o]

	if p.FeeDenominator == 0 {
		return Pool{}, dex.DecodeErr("cpamm: fee denominator is zero", nil)
	}
	return p, nil
}

// reserveAmounts returns (reserveIn, reserveOut) for the given direction.
func (p Pool) reserveAmounts(dir dex.SwapDirection) (reserveIn, reserveOut math.Int) {
	a := math.NewIntFromUint64(p.VaultAAmount).Sub(math.NewIntFromUint64(p.PnlOwedA))
	b := math.NewIntFromUint64(p.VaultBAmount).Sub(math.NewIntFromUint64(p.PnlOwedB))
	if dir == dex.ZeroForOne {
		return a, b
	}
	return b, a
}

// Quote implements spec.md §4.8's constant-product algorithm:
//
//	fee = ceil(amount_in * fee_num / fee_den)
//	net = amount_in - fee
//	amount_out = floor(reserve_out * net / (reserve_in + net))
//
// ceiling on the fee, floor on the output, 128-bit intermediates via
// cosmossdk.io/math.
func Quote(p Pool, amountIn uint64, dir dex.SwapDirection) (uint64, error) {
	if amountIn == 0 {
		return 0, dex.QuoteErr("cpamm: zero tradable amount", nil)
	}
	reserveIn, reserveOut := p.reserveAmounts(dir)
	if reserveIn.IsNegative() || reserveOut.IsNegative() {
		return 0, dex.QuoteErr("cpamm: vault amount below pnl owed", nil)
	}

	in := math.NewIntFromUint64(amountIn)
	num := math.NewIntFromUint64(p.FeeNumerator)
	den := math.NewIntFromUint64(p.FeeDenominator)

	fee := ceilDiv(in.Mul(num), den)
	if fee.GT(in) {
		return 0, dex.QuoteErr("cpamm: fee exceeds input", nil)
	}
	net := in.Sub(fee)

	denom := reserveIn.Add(net)
	if !denom.IsPositive() {
		return 0, dex.QuoteErr("cpamm: degenerate reserves", nil)
	}
	amountOut := reserveOut.Mul(net).Quo(denom)
	if amountOut.IsNegative() || !amountOut.IsInt64() {
		return 0, dex.QuoteErr("cpamm: output overflow", nil)
	}
	return amountOut.Uint64(), nil
}

func ceilDiv(a, b math.Int) math.Int {
	if b.IsZero() {
		return math.ZeroInt()
	}
	q := a.Quo(b)
	r := a.Mod(b)
	if r.IsPositive() {
		q = q.AddRaw(1)
	}
	return q
}
