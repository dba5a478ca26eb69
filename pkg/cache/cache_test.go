package cache

import (
	"sync"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
)

func TestDynamicSetGetDelete(t *testing.T) {
	d := NewDynamic[uint64]()
	key := solana.NewWallet().PublicKey()

	_, ok := d.Get(key)
	require.False(t, ok)

	d.Set(key, 42)
	v, ok := d.Get(key)
	require.True(t, ok)
	require.Equal(t, uint64(42), v)
	require.Equal(t, 1, d.Len())

	d.Delete(key)
	_, ok = d.Get(key)
	require.False(t, ok)
	require.Equal(t, 0, d.Len())
}

func TestDynamicConcurrentWritesAcrossShards(t *testing.T) {
	d := NewDynamic[int]()
	keys := make([]solana.PublicKey, 256)
	for i := range keys {
		keys[i] = solana.NewWallet().PublicKey()
	}

	var wg sync.WaitGroup
	for i, k := range keys {
		wg.Add(1)
		go func(i int, k solana.PublicKey) {
			defer wg.Done()
			d.Set(k, i)
		}(i, k)
	}
	wg.Wait()

	require.Equal(t, len(keys), d.Len())
	for i, k := range keys {
		v, ok := d.Get(k)
		require.True(t, ok)
		require.Equal(t, i, v)
	}
}

func TestStaticSetGet(t *testing.T) {
	s := NewStatic[string]()
	key := solana.NewWallet().PublicKey()

	_, ok := s.Get(key)
	require.False(t, ok)

	s.Set(key, "hello")
	v, ok := s.Get(key)
	require.True(t, ok)
	require.Equal(t, "hello", v)
	require.Equal(t, 1, s.Len())
}

func TestAltStoresLookupTableEntries(t *testing.T) {
	a := NewAlt()
	altKey := solana.NewWallet().PublicKey()
	entries := []solana.PublicKey{solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey()}

	a.Set(altKey, entries)
	got, ok := a.Get(altKey)
	require.True(t, ok)
	require.Equal(t, entries, got)
}
