package instruction

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
)

type fakeTipSelector struct{ account solana.PublicKey }

func (f fakeTipSelector) TipAccount() solana.PublicKey { return f.account }

func TestTipMaterialTargetsSelectedAccount(t *testing.T) {
	payer := solana.NewWallet().PublicKey()
	tipAccount := solana.NewWallet().PublicKey()
	sel := fakeTipSelector{account: tipAccount}

	m := TipMaterial(sel, payer, 5_000)
	require.NotEmpty(t, m.AccountMetas)

	var sawPayer, sawTip bool
	for _, am := range m.AccountMetas {
		if am.PublicKey.Equals(payer) {
			sawPayer = true
		}
		if am.PublicKey.Equals(tipAccount) {
			sawTip = true
		}
	}
	require.True(t, sawPayer)
	require.True(t, sawTip)
}

func TestTipLamportsAppliesRateAndFloors(t *testing.T) {
	require.Equal(t, uint64(9), TipLamports(9_999, 1, 1_000))
	require.Equal(t, uint64(0), TipLamports(-100, 1, 1_000))
	require.Equal(t, uint64(0), TipLamports(1_000, 1, 0))
}
