// Package cache implements the three account stores of spec.md §4.3-4.5,
// grounded on original_source/bin/arb/src/account_cache.rs: a sharded
// concurrent map for frequently-mutated subscribed accounts (DynamicCache,
// there backed by DashMap with 128 shards), and two single-RWMutex maps
// for the rarely-mutated static pool fields and address lookup tables
// (StaticCache/AltCache, there backed by a single parking_lot::RwLock
// around an AHashMap). Go has no DashMap; Dynamic reproduces the same
// sharding discipline by hand with a slice of sync.RWMutex-guarded maps.
package cache

import (
	"hash/maphash"
	"sync"

	"github.com/gagliardetto/solana-go"
)

// ShardCount mirrors account_cache.rs's DashMap shard_amount, rounded
// down to a power of two the way DashMap itself requires; spec.md §4.3
// only requires "at least 64".
const ShardCount = 128

type shard[V any] struct {
	mu sync.RWMutex
	m  map[solana.PublicKey]V
}

// Dynamic is a fixed-shard-count concurrent map keyed by account, used
// for the subscribed accounts that change every slot (pool dynamic
// fields, tick/bin arrays).
type Dynamic[V any] struct {
	seed   maphash.Seed
	shards [ShardCount]*shard[V]
}

func NewDynamic[V any]() *Dynamic[V] {
	d := &Dynamic[V]{seed: maphash.MakeSeed()}
	for i := range d.shards {
		d.shards[i] = &shard[V]{m: make(map[solana.PublicKey]V)}
	}
	return d
}

func (d *Dynamic[V]) shardFor(key solana.PublicKey) *shard[V] {
	var h maphash.Hash
	h.SetSeed(d.seed)
	h.Write(key[:])
	return d.shards[h.Sum64()%ShardCount]
}

func (d *Dynamic[V]) Get(key solana.PublicKey) (V, bool) {
	s := d.shardFor(key)
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[key]
	return v, ok
}

func (d *Dynamic[V]) Set(key solana.PublicKey, v V) {
	s := d.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = v
}

func (d *Dynamic[V]) Delete(key solana.PublicKey) {
	s := d.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
}

func (d *Dynamic[V]) Len() int {
	n := 0
	for _, s := range d.shards {
		s.mu.RLock()
		n += len(s.m)
		s.mu.RUnlock()
	}
	return n
}

// Static is a single-RWMutex map for the unsubscribed, effectively
// immutable-once-loaded pool fields (fee rates, mints, vault keys).
type Static[V any] struct {
	mu sync.RWMutex
	m  map[solana.PublicKey]V
}

func NewStatic[V any]() *Static[V] {
	return &Static[V]{m: make(map[solana.PublicKey]V)}
}

func (s *Static[V]) Get(key solana.PublicKey) (V, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[key]
	return v, ok
}

func (s *Static[V]) Set(key solana.PublicKey, v V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = v
}

func (s *Static[V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}

// Alt is the address-lookup-table cache, same single-RWMutex discipline
// as Static, keyed by the pool account key and holding that pool's
// lookup-table addresses, per account_cache.rs's AltCache/get_alt.
type Alt = Static[[]solana.PublicKey]

func NewAlt() *Alt { return NewStatic[[]solana.PublicKey]() }
