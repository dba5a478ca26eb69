package dispatch

import (
	"context"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/solarb/arbengine/pkg/cache"
	"github.com/solarb/arbengine/pkg/dex"
	"github.com/solarb/arbengine/pkg/slice"
	"github.com/stretchr/testify/require"
)

func newTestDispatcher(t *testing.T, poolKey solana.PublicKey) *Dispatcher {
	t.Helper()
	reg := slice.NewRegistry()
	require.NoError(t, reg.Register(dex.ConstantProductAMM, dex.Pool, dex.Subscribed, []slice.Interval{{Offset: 0, Length: 4}}))
	dyn := cache.NewDynamic[[]byte]()
	poolOf := func(k solana.PublicKey) (int, bool) {
		if k == poolKey {
			return 0, true
		}
		return 0, false
	}
	return New(reg, dyn, poolOf)
}

func TestDispatcherUpsertsCacheAndEmitsTrigger(t *testing.T) {
	poolKey := solana.NewWallet().PublicKey()
	d := newTestDispatcher(t, poolKey)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err := d.handle(ctx, Update{
		Key:     poolKey,
		Payload: []byte{1, 2, 3, 4, 5, 6},
		Dex:     dex.ConstantProductAMM,
		Kind:    dex.Pool,
		Class:   dex.Subscribed,
	})
	require.NoError(t, err)

	got, ok := d.Dynamic.Get(poolKey)
	require.True(t, ok)
	require.Equal(t, []byte{1, 2, 3, 4}, got)

	select {
	case trig := <-d.Triggers():
		require.Equal(t, 0, trig.PoolIndex)
	case <-time.After(time.Second):
		t.Fatal("expected a trigger")
	}
}

func TestDispatcherSkipsUnknownPool(t *testing.T) {
	poolKey := solana.NewWallet().PublicKey()
	unknownKey := solana.NewWallet().PublicKey()
	d := newTestDispatcher(t, poolKey)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err := d.handle(ctx, Update{
		Key:     unknownKey,
		Payload: []byte{9, 9, 9, 9},
		Dex:     dex.ConstantProductAMM,
		Kind:    dex.Pool,
		Class:   dex.Subscribed,
	})
	require.NoError(t, err)

	select {
	case <-d.Triggers():
		t.Fatal("unexpected trigger for unrecognized pool")
	default:
	}
}

// TestDispatcherConcurrentBurstNeverDropsThePool fires a burst of
// concurrent updates to the same pool and asserts at least one trigger
// survives — the coalescing path in enqueue must never reduce that to
// zero, even when several goroutines race the queued-bit check.
func TestDispatcherConcurrentBurstNeverDropsThePool(t *testing.T) {
	poolKey := solana.NewWallet().PublicKey()
	d := newTestDispatcher(t, poolKey)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	done := make(chan struct{})
	for i := 0; i < 20; i++ {
		go func(i int) {
			_ = d.handle(ctx, Update{
				Key:     poolKey,
				Payload: []byte{byte(i), 0, 0, 0},
				Dex:     dex.ConstantProductAMM,
				Kind:    dex.Pool,
				Class:   dex.Subscribed,
			})
			done <- struct{}{}
		}(i)
	}
	for i := 0; i < 20; i++ {
		<-done
	}

	select {
	case trig := <-d.Triggers():
		require.Equal(t, 0, trig.PoolIndex)
	case <-time.After(time.Second):
		t.Fatal("burst of concurrent updates produced no trigger at all")
	}
}
