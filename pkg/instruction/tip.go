package instruction

import (
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
)

// TipSelector names which pubkey a bundle's tip transfer should pay,
// grounded on nick199910-SolRoute/pkg/sol.JitoClient's random tip account
// selection — kept here rather than in pkg/sol since picking a tip
// destination is instruction material, not transaction assembly.
type TipSelector interface {
	TipAccount() solana.PublicKey
}

// TipMaterial builds the account-metas for a bundle's tip transfer: a
// System Program transfer from payer to the selected tip account, for
// tipLamports computed from a winning path's profit and the configured
// tip rate (spec.md §6's TIP_RATE option). It returns Material, not a
// built solana.Instruction — actual instruction assembly is the
// executor's job.
func TipMaterial(sel TipSelector, payer solana.PublicKey, tipLamports uint64) Material {
	ix := system.NewTransferInstruction(tipLamports, payer, sel.TipAccount()).Build()
	metas, err := ix.Accounts()
	if err != nil {
		metas = nil
	}
	return Material{
		AccountMetas: metas,
	}
}

// TipLamports applies the configured tip rate (numerator/denominator,
// e.g. 1/1000) to a winning path's profit, floor-rounded.
func TipLamports(profit int64, tipRateNum, tipRateDen uint64) uint64 {
	if profit <= 0 || tipRateDen == 0 {
		return 0
	}
	return uint64(profit) * tipRateNum / tipRateDen
}
