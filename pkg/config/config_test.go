package config

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
)

func setValidEnv(t *testing.T, mint string) {
	t.Helper()
	t.Setenv("BASE_MINT", mint)
	t.Setenv("PROBE_AMOUNT", "1000000")
	t.Setenv("MAX_PROBE_AMOUNT", "100000000")
	t.Setenv("MIN_PROFIT_LAMPORTS", "5000")
	t.Setenv("TIP_RATE", "1/1000")
	t.Setenv("RELAY_ENDPOINTS", "https://relay-a,https://relay-b")
	t.Setenv("RPC_ENDPOINT", "https://rpc.example")
	t.Setenv("SUBSCRIPTION_ENDPOINT", "wss://sub.example")
	t.Setenv("DEX_JSON_PATH", "./dex.json")
}

func TestLoadParsesAllRecognisedOptions(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	setValidEnv(t, mint.String())

	c, err := Load("")
	require.NoError(t, err)
	require.Equal(t, mint, c.BaseMint)
	require.Equal(t, uint64(1_000_000), c.ProbeAmount)
	require.Equal(t, uint64(100_000_000), c.MaxProbeAmount)
	require.Equal(t, uint64(5_000), c.MinProfitLamports)
	require.Equal(t, uint64(1), c.TipRateNum)
	require.Equal(t, uint64(1_000), c.TipRateDen)
	require.Equal(t, []string{"https://relay-a", "https://relay-b"}, c.RelayEndpoints)
}

func TestLoadRejectsMaxProbeBelowProbe(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	setValidEnv(t, mint.String())
	t.Setenv("MAX_PROBE_AMOUNT", "100")
	t.Setenv("PROBE_AMOUNT", "1000000")

	_, err := Load("")
	require.Error(t, err)
}

func TestLoadRejectsMissingRelayEndpoints(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	setValidEnv(t, mint.String())
	t.Setenv("RELAY_ENDPOINTS", "")

	_, err := Load("")
	require.Error(t, err)
}

func TestLoadRejectsInvalidPubkey(t *testing.T) {
	setValidEnv(t, "not-a-valid-pubkey")
	_, err := Load("")
	require.Error(t, err)
}

func TestLoadRejectsMalformedTipRate(t *testing.T) {
	mint := solana.NewWallet().PublicKey()
	setValidEnv(t, mint.String())
	t.Setenv("TIP_RATE", "one-thousandth")

	_, err := Load("")
	require.Error(t, err)
}
