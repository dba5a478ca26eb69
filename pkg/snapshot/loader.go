// Package snapshot implements the startup full-refresh loader of
// spec.md §4.2, grounded on
// original_source/bin/arb/src/account_cache.rs::init_snapshot (the
// chunked get_multiple_accounts pass, drop-on-missing semantics, and the
// clock/token-2022 follow-up passes) and
// nick199910-SolRoute/pkg/sol/rpc_wrapper.go's rate-limited RPC wrapper,
// which this package calls directly rather than re-implementing.
package snapshot

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/solarb/arbengine/pkg/cache"
	"github.com/solarb/arbengine/pkg/dex"
	"github.com/solarb/arbengine/pkg/sol"
	"golang.org/x/sync/errgroup"
)

// ChunkSize is the batch size for get_multiple_accounts, matching
// account_cache.rs's accounts.chunks(100).
const ChunkSize = 100

// RawAccount is one fetched account's payload, or Missing=true if the
// account did not exist at snapshot time (dropped rather than retried,
// per account_cache.rs's init_snapshot).
type RawAccount struct {
	Key     solana.PublicKey
	Owner   solana.PublicKey
	Payload []byte
	Missing bool
}

// Loader fetches the full account set for the manifest's pools in one
// pass at startup.
type Loader interface {
	LoadAccounts(ctx context.Context, keys []solana.PublicKey) ([]RawAccount, error)
	LoadClock(ctx context.Context) (sol.Clock, error)
}

// RPCLoader is the production Loader: chunked get_multiple_accounts
// calls fanned out one goroutine per chunk via golang.org/x/sync/errgroup
// (the client's rate limiter paces the RPC calls themselves), a
// cancellation-aware join in place of an ungrouped per-pool goroutine loop.
type RPCLoader struct {
	Client *sol.Client
}

func NewRPCLoader(client *sol.Client) *RPCLoader {
	return &RPCLoader{Client: client}
}

func (l *RPCLoader) LoadAccounts(ctx context.Context, keys []solana.PublicKey) ([]RawAccount, error) {
	chunks := chunk(keys, ChunkSize)
	results := make([][]RawAccount, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	for i, c := range chunks {
		i, c := i, c
		g.Go(func() error {
			res, err := l.Client.GetMultipleAccountsWithOpts(gctx, c)
			if err != nil {
				return dex.SnapshotErr("snapshot: get_multiple_accounts failed", err)
			}
			out := make([]RawAccount, len(c))
			for j, key := range c {
				if j >= len(res.Value) || res.Value[j] == nil {
					out[j] = RawAccount{Key: key, Missing: true}
					continue
				}
				acct := res.Value[j]
				out[j] = RawAccount{
					Key:     key,
					Owner:   acct.Owner,
					Payload: acct.Data.GetBinary(),
				}
			}
			results[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []RawAccount
	for _, r := range results {
		all = append(all, r...)
	}
	return all, nil
}

func (l *RPCLoader) LoadClock(ctx context.Context) (sol.Clock, error) {
	c, err := l.Client.GetClock(ctx)
	if err != nil {
		return sol.Clock{}, dex.SnapshotErr("snapshot: failed to load clock", err)
	}
	return *c, nil
}

func chunk(keys []solana.PublicKey, size int) [][]solana.PublicKey {
	var out [][]solana.PublicKey
	for i := 0; i < len(keys); i += size {
		end := i + size
		if end > len(keys) {
			end = len(keys)
		}
		out = append(out, keys[i:end])
	}
	return out
}

// Present filters raw results down to only the successfully loaded ones,
// logging nothing itself — callers decide how to surface drops.
func Present(accounts []RawAccount) []RawAccount {
	out := make([]RawAccount, 0, len(accounts))
	for _, a := range accounts {
		if !a.Missing {
			out = append(out, a)
		}
	}
	return out
}

// StaticStore and DynamicStore name the two cache shapes a snapshot pass
// populates, so callers can write a decode-and-upsert loop without
// importing cache directly for these common element types.
type StaticStore = cache.Static[[]byte]
type DynamicStore = cache.Dynamic[[]byte]
