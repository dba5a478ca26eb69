// Package dispatch implements the subscription-update consumer of
// spec.md §4.6: classify -> slice -> upsert -> trigger, grounded on
// account_cache.rs's update_cache (the classify-then-upsert shape) and
// generalized to the search-trigger fan-out nick199910-SolRoute's own
// router queries pools for, adapted to a push rather than a poll model.
package dispatch

import (
	"context"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/solarb/arbengine/pkg/cache"
	"github.com/solarb/arbengine/pkg/dex"
	"github.com/solarb/arbengine/pkg/slice"
)

// Update is one account change delivered by the subscription stream,
// mirroring spec.md §6's gRPC update shape.
type Update struct {
	Slot    uint64
	Key     solana.PublicKey
	Owner   solana.PublicKey
	Payload []byte
	Dex     dex.DexKind
	Kind    dex.AccountKind
	Class   dex.SubscriptionClass
}

// Trigger is enqueued for a pool index whose dynamic state just changed.
// Each handled update for a known pool enqueues its own Trigger on a
// buffered channel; triggers already waiting in that channel are not
// merged, so a burst of updates to one pool yields one trigger per
// update. A consumer may see a slightly stale sibling field (spec.md §9's
// "cross-field atomicity is relaxed" note), but a pool is never dropped
// entirely.
type Trigger struct {
	PoolIndex int
}

// Dispatcher consumes Updates, upserts the dynamic cache, and emits a
// Trigger stream carrying the pool index of each update to a known pool.
type Dispatcher struct {
	Registry *slice.Registry
	Dynamic  *cache.Dynamic[[]byte]
	PoolOf   func(key solana.PublicKey) (poolIndex int, ok bool)

	mu     sync.Mutex
	queued map[int]struct{}
	out    chan Trigger
}

func New(reg *slice.Registry, dyn *cache.Dynamic[[]byte], poolOf func(solana.PublicKey) (int, bool)) *Dispatcher {
	return &Dispatcher{
		Registry: reg,
		Dynamic:  dyn,
		PoolOf:   poolOf,
		queued:   make(map[int]struct{}),
		out:      make(chan Trigger, 1024),
	}
}

// Triggers exposes the trigger stream for the search engine to consume.
func (d *Dispatcher) Triggers() <-chan Trigger { return d.out }

// Run drains updates until ctx is cancelled or the channel closes.
func (d *Dispatcher) Run(ctx context.Context, updates <-chan Update) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case u, ok := <-updates:
			if !ok {
				return nil
			}
			if err := d.handle(ctx, u); err != nil {
				continue
			}
		}
	}
}

func (d *Dispatcher) handle(ctx context.Context, u Update) error {
	sliced, err := d.Registry.Slice(u.Payload, u.Dex, u.Kind, u.Class)
	if err != nil {
		return err
	}
	d.Dynamic.Set(u.Key, sliced)

	poolIdx, ok := d.PoolOf(u.Key)
	if !ok {
		return nil
	}
	d.enqueue(ctx, poolIdx)
	return nil
}

// enqueue sends one trigger for poolIndex. While a send for the same pool
// is still in progress, a concurrent call returns immediately, since the
// cache entry that pending trigger will cause the consumer to read is
// already the latest (Set happened above, before this call); once the
// send returns, the next call sends a fresh trigger. The send
// blocks on either delivery or ctx cancellation rather than dropping on
// a full channel, and the queued bit is only cleared once that send
// returns — so a pool can never get silently skipped behind a consumer
// that is momentarily slow; worst case is a harmless duplicate trigger,
// never a dropped one.
func (d *Dispatcher) enqueue(ctx context.Context, poolIndex int) {
	d.mu.Lock()
	if _, already := d.queued[poolIndex]; already {
		d.mu.Unlock()
		return
	}
	d.queued[poolIndex] = struct{}{}
	d.mu.Unlock()

	select {
	case d.out <- Trigger{PoolIndex: poolIndex}:
	case <-ctx.Done():
	}

	d.mu.Lock()
	delete(d.queued, poolIndex)
	d.mu.Unlock()
}
