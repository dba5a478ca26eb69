package snapshot

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
)

func TestChunkSplitsIntoFixedSizeGroups(t *testing.T) {
	keys := make([]solana.PublicKey, 250)
	for i := range keys {
		keys[i] = solana.NewWallet().PublicKey()
	}

	chunks := chunk(keys, ChunkSize)
	require.Len(t, chunks, 3)
	require.Len(t, chunks[0], 100)
	require.Len(t, chunks[1], 100)
	require.Len(t, chunks[2], 50)
}

func TestChunkHandlesEmptyInput(t *testing.T) {
	require.Empty(t, chunk(nil, ChunkSize))
}

func TestPresentFiltersMissingAccounts(t *testing.T) {
	k1, k2, k3 := solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey()
	accounts := []RawAccount{
		{Key: k1, Payload: []byte{1}},
		{Key: k2, Missing: true},
		{Key: k3, Payload: []byte{3}},
	}

	present := Present(accounts)
	require.Len(t, present, 2)
	require.Equal(t, k1, present[0].Key)
	require.Equal(t, k3, present[1].Key)
}
