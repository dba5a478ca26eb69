// Command arbd is the arbitrage engine's orchestration entrypoint: load
// config, snapshot the manifest's pools, build the path graph, then drive
// the dispatch -> search loop until interrupted. This replaces the
// teacher's single-shot demo trade in main.go with the long-running
// engine spec.md describes; transaction assembly, signing, and bundle
// submission remain an external collaborator's job (spec.md §1) — this
// process stops at logging the winning path's instruction material.
package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/solarb/arbengine/pkg/cache"
	"github.com/solarb/arbengine/pkg/config"
	"github.com/solarb/arbengine/pkg/dex"
	"github.com/solarb/arbengine/pkg/dex/bonding"
	"github.com/solarb/arbengine/pkg/dex/clmm"
	"github.com/solarb/arbengine/pkg/dex/cpamm"
	"github.com/solarb/arbengine/pkg/dex/dlmm"
	"github.com/solarb/arbengine/pkg/dex/mintext"
	"github.com/solarb/arbengine/pkg/dispatch"
	"github.com/solarb/arbengine/pkg/graph"
	"github.com/solarb/arbengine/pkg/instruction"
	"github.com/solarb/arbengine/pkg/search"
	"github.com/solarb/arbengine/pkg/slice"
	"github.com/solarb/arbengine/pkg/snapshot"
	"github.com/solarb/arbengine/pkg/sol"
	"github.com/solarb/arbengine/pkg/telemetry"
)

// ownerToDexKind resolves a manifest entry's owner program to the kernel
// that prices it. The manifest (spec.md §6) carries only the owner
// program key, not a dex_kind field, so the engine infers the kind the
// way any Solana indexer does: by program id.
var ownerToDexKind = map[solana.PublicKey]dex.DexKind{
	solana.MustPublicKeyFromBase58("CAMMCzo5YL8w4VFF8KVHrK22GGUsp5VTaW7grrKgrWqK"): dex.ConcentratedLiquidityMM,
	solana.MustPublicKeyFromBase58("LBUZKhRxPF3XUpBCjp4YzTKgLccjZhTSDM9YuVaPwxo"):  dex.BinMM,
	solana.MustPublicKeyFromBase58("CPMMoo8L3F4NbTegBCKVNunggL7H1ZpdTHKxQB5qKP1C"): dex.ConstantProductAMM,
	solana.MustPublicKeyFromBase58("pAMMBay6oceH9fJKBRHGP5D4bD4sWpmSwMn52FMfXEA"):  dex.BondingCurveAMM,
}

// dexProgramID reverses ownerToDexKind for the one program id each kind
// maps to, used by the snapshot loader's sibling-account PDA derivation.
func dexProgramID(kind dex.DexKind) solana.PublicKey {
	for owner, k := range ownerToDexKind {
		if k == kind {
			return owner
		}
	}
	return solana.PublicKey{}
}

func main() {
	development := os.Getenv("ARBD_DEV") != ""
	logger, err := telemetry.New(development)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger); err != nil {
		logger.Error("arbd exited with error", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *zap.Logger) error {
	cfg, err := config.Load(".env")
	if err != nil {
		return err
	}

	client, err := sol.NewClient(ctx, cfg.RPCEndpoint, 50)
	if err != nil {
		return err
	}

	manifest, err := loadManifest(cfg.DexJSONPath)
	if err != nil {
		return err
	}
	logger.Info("manifest loaded", zap.Int("entries", len(manifest)))

	reg := buildRegistry()
	dyn := cache.NewDynamic[[]byte]()
	static := cache.NewStatic[[]byte]()
	alt := cache.NewAlt()

	entries, g, mints := buildGraph(manifest, cfg.BaseMint)
	if len(entries) == 0 {
		return dex.SnapshotErr("arbd: no pools survived manifest validation", nil)
	}
	logger.Info("path graph built", zap.Int("pools", len(entries)), zap.Int("distinct_mints", len(mints)))

	loader := snapshot.NewRPCLoader(client)
	if err := loadSnapshot(ctx, loader, reg, entries, static, dyn, alt, logger); err != nil {
		return err
	}

	poolOf := func(key solana.PublicKey) (int, bool) {
		for i, e := range entries {
			if e.Pool.Equals(key) {
				return i, true
			}
		}
		return 0, false
	}
	d := dispatch.New(reg, dyn, poolOf)

	siblings, err := loadSiblings(ctx, loader, entries, static, dyn, logger)
	if err != nil {
		return err
	}

	quoters := map[dex.DexKind]quoter{
		dex.ConstantProductAMM:      cpammQuoter{static, dyn},
		dex.ConcentratedLiquidityMM: clmmQuoter{siblings.clmm},
		dex.BinMM:                   dlmmQuoter{siblings.dlmm, siblings.mintExt, siblings.clock},
	}
	if siblings.bondingReady {
		quoters[dex.BondingCurveAMM] = bondingQuoter{static, dyn}
	} else {
		logger.Warn("bonding-curve global config unavailable; bonding-curve pools disabled this run")
	}

	logger.Info("engine ready, waiting on triggers", zap.Uint64("probe_amount", cfg.ProbeAmount))
	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			return nil
		case trig := <-d.Triggers():
			handleTrigger(ctx, logger, cfg, g, entries, quoters, trig)
		}
	}
}

// manifestEntry pairs a validated DexJson row with the kernel it resolves
// to, so the rest of the pipeline never has to re-derive it.
type manifestEntry struct {
	dex.DexJSON
	Kind dex.DexKind
}

func loadManifest(path string) ([]dex.DexJSON, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, dex.ConfigErr("arbd: failed to read manifest", err)
	}
	var all []dex.DexJSON
	if err := json.Unmarshal(raw, &all); err != nil {
		return nil, dex.ConfigErr("arbd: failed to parse manifest", err)
	}
	return all, nil
}

// buildGraph interns every mint the manifest references and builds the
// path graph, restricted to cycles that start and end in baseMint
// (spec.md §4.9's "followed mints" build-time filter — here a single
// configured base asset, per spec.md §6's "base asset mint" option).
func buildGraph(manifest []dex.DexJSON, baseMint solana.PublicKey) ([]manifestEntry, *graph.Graph, map[solana.PublicKey]int) {
	mintIdx := map[solana.PublicKey]int{}
	internMint := func(k solana.PublicKey) int {
		if i, ok := mintIdx[k]; ok {
			return i
		}
		i := len(mintIdx)
		mintIdx[k] = i
		return i
	}
	baseIdx := internMint(baseMint)

	var entries []manifestEntry
	b := graph.NewBuilder(baseIdx)
	for _, m := range manifest {
		if !m.Valid() {
			continue
		}
		kind, ok := ownerToDexKind[m.Owner]
		if !ok {
			continue
		}
		poolIndex := len(entries)
		entries = append(entries, manifestEntry{DexJSON: m, Kind: kind})

		a, bIdx := internMint(m.MintA), internMint(m.MintB)
		b.AddEdge(graph.Edge{DexKind: kind, PoolIndex: poolIndex, InMintIdx: a, OutMintIdx: bIdx, Direction: dex.ZeroForOne})
		b.AddEdge(graph.Edge{DexKind: kind, PoolIndex: poolIndex, InMintIdx: bIdx, OutMintIdx: a, Direction: dex.OneForZero})
	}
	return entries, b.Build(), mintIdx
}

// buildRegistry wires every DexKind's (static, dynamic) slice intervals,
// matching each kernel package's own StaticLen/DynamicLen layout
// constants rather than re-deriving offsets here.
func buildRegistry() *slice.Registry {
	reg := slice.NewRegistry()
	register := func(k dex.DexKind, staticLen, dynamicLen int) {
		_ = reg.Register(k, dex.Pool, dex.Unsubscribed, []slice.Interval{{Offset: 8, Length: staticLen}})
		_ = reg.Register(k, dex.Pool, dex.Subscribed, []slice.Interval{{Offset: 8 + staticLen, Length: dynamicLen}})
	}
	register(dex.ConstantProductAMM, cpamm.StaticLen, cpamm.DynamicLen)
	register(dex.BondingCurveAMM, bonding.StaticLen, bonding.DynamicLen)
	register(dex.ConcentratedLiquidityMM, clmm.StaticLen, clmm.DynamicLen)
	register(dex.BinMM, dlmm.StaticLen, dlmm.DynamicLen)
	return reg
}

func loadSnapshot(ctx context.Context, loader snapshot.Loader, reg *slice.Registry, entries []manifestEntry, static *cache.Static[[]byte], dyn *cache.Dynamic[[]byte], alt *cache.Alt, logger *zap.Logger) error {
	keys := make([]solana.PublicKey, len(entries))
	for i, e := range entries {
		keys[i] = e.Pool
	}
	raw, err := loader.LoadAccounts(ctx, keys)
	if err != nil {
		return err
	}
	present := snapshot.Present(raw)
	logger.Info("snapshot loaded", zap.Int("requested", len(keys)), zap.Int("present", len(present)))

	byKey := make(map[solana.PublicKey][]byte, len(present))
	for _, a := range present {
		byKey[a.Key] = a.Payload
	}

	for _, e := range entries {
		payload, ok := byKey[e.Pool]
		if !ok {
			continue
		}
		s, err := reg.Slice(payload, e.Kind, dex.Pool, dex.Unsubscribed)
		if err == nil {
			static.Set(e.Pool, s)
		}
		d, err := reg.Slice(payload, e.Kind, dex.Pool, dex.Subscribed)
		if err == nil {
			dyn.Set(e.Pool, d)
		}
		if e.AddressLookupTableAddress != nil {
			alt.Set(e.Pool, []solana.PublicKey{*e.AddressLookupTableAddress})
		}
	}
	return nil
}

// clmmState and dlmmState pair a kernel's decoded pool view with the
// sibling accounts its Quote needs, so the quoters below don't have to
// re-decode or re-join them per call.
type clmmState struct {
	Pool     clmm.Pool
	Siblings snapshot.CLMMSiblings
}

type dlmmState struct {
	Pool   dlmm.Pool
	Arrays map[int64]*dlmm.BinArray
}

// siblingData is everything the snapshot's second-phase sibling fetch
// (spec.md §4.6) produces: per-pool CLMM/DLMM state, the clock snapshot
// DLMM's volatility decay and token-2022 fee math need, the token-2022
// transfer-fee table, and whether pump.fun's global config resolved (if
// not, every bonding-curve pool is left unusable for this run).
type siblingData struct {
	clmm         map[solana.PublicKey]clmmState
	dlmm         map[solana.PublicKey]dlmmState
	mintExt      map[solana.PublicKey]mintext.TransferFeeConfig
	clock        sol.Clock
	bondingReady bool
}

// loadSiblings runs the per-DEX secondary-account fetch of spec.md §4.6
// after the primary pool accounts are already cached: it decodes each
// CLMM/DLMM pool's own (now-cached) static+dynamic slices, derives and
// fetches that pool's sibling accounts, and drops (by simply omitting
// from the returned maps) any pool whose siblings didn't fully resolve —
// such a pool's quoter then reports a cache miss rather than guessing.
// It also performs account_cache.rs's follow-up passes: a single Clock
// fetch, and a token-2022 mint-extension decode pass over every distinct
// mint the manifest references.
func loadSiblings(ctx context.Context, loader snapshot.Loader, entries []manifestEntry, static *cache.Static[[]byte], dyn *cache.Dynamic[[]byte], logger *zap.Logger) (siblingData, error) {
	clmmPools := map[solana.PublicKey]clmm.Pool{}
	dlmmPools := map[solana.PublicKey]dlmm.Pool{}
	mints := map[solana.PublicKey]struct{}{}
	for _, e := range entries {
		mints[e.MintA] = struct{}{}
		mints[e.MintB] = struct{}{}

		s, sok := static.Get(e.Pool)
		d, dok := dyn.Get(e.Pool)
		if !sok || !dok {
			continue
		}
		switch e.Kind {
		case dex.ConcentratedLiquidityMM:
			if p, err := clmm.Decode(s, d); err == nil {
				clmmPools[e.Pool] = p
			}
		case dex.BinMM:
			if p, err := dlmm.Decode(s, d); err == nil {
				dlmmPools[e.Pool] = p
			}
		}
	}

	clmmSibs, err := snapshot.LoadCLMMSiblings(ctx, loader, dexProgramID(dex.ConcentratedLiquidityMM), clmmPools, logger)
	if err != nil {
		return siblingData{}, err
	}
	dlmmArrays, err := snapshot.LoadDLMMSiblings(ctx, loader, dexProgramID(dex.BinMM), dlmmPools, logger)
	if err != nil {
		return siblingData{}, err
	}
	_, bondingReady, err := snapshot.LoadBondingGlobalConfig(ctx, loader, dexProgramID(dex.BondingCurveAMM))
	if err != nil {
		return siblingData{}, err
	}

	mintKeys := make([]solana.PublicKey, 0, len(mints))
	for m := range mints {
		mintKeys = append(mintKeys, m)
	}
	mintExt, err := snapshot.LoadMintExtensions(ctx, loader, mintKeys, logger)
	if err != nil {
		return siblingData{}, err
	}

	clock, err := loader.LoadClock(ctx)
	if err != nil {
		return siblingData{}, err
	}
	logger.Info("snapshot siblings loaded",
		zap.Int("clmm_pools", len(clmmSibs)), zap.Int("dlmm_pools", len(dlmmArrays)),
		zap.Bool("bonding_ready", bondingReady), zap.Int("mints_with_transfer_fee", len(mintExt)),
		zap.Uint64("clock_epoch", clock.Epoch))

	clmmByPool := make(map[solana.PublicKey]clmmState, len(clmmSibs))
	for pool, sib := range clmmSibs {
		clmmByPool[pool] = clmmState{Pool: clmmPools[pool], Siblings: sib}
	}
	dlmmByPool := make(map[solana.PublicKey]dlmmState, len(dlmmArrays))
	for pool, arrays := range dlmmArrays {
		dlmmByPool[pool] = dlmmState{Pool: dlmmPools[pool], Arrays: arrays}
	}

	return siblingData{
		clmm:         clmmByPool,
		dlmm:         dlmmByPool,
		mintExt:      mintExt,
		clock:        clock,
		bondingReady: bondingReady,
	}, nil
}

// quoter evaluates a pool's quote curve at a given direction; it closes
// over whatever cache it needs so the search loop can stay DexKind-agnostic.
type quoter interface {
	quote(entry manifestEntry, dir dex.SwapDirection) search.Quote
}

type cpammQuoter struct {
	static *cache.Static[[]byte]
	dyn    *cache.Dynamic[[]byte]
}

func (q cpammQuoter) quote(entry manifestEntry, dir dex.SwapDirection) search.Quote {
	return func(amountIn uint64) (uint64, error) {
		s, ok := q.static.Get(entry.Pool)
		if !ok {
			return 0, dex.CacheMissErr("arbd: cpamm static slice missing")
		}
		d, ok := q.dyn.Get(entry.Pool)
		if !ok {
			return 0, dex.CacheMissErr("arbd: cpamm dynamic slice missing")
		}
		p, err := cpamm.Decode(s, d)
		if err != nil {
			return 0, err
		}
		return cpamm.Quote(p, amountIn, dir)
	}
}

type bondingQuoter struct {
	static *cache.Static[[]byte]
	dyn    *cache.Dynamic[[]byte]
}

func (q bondingQuoter) quote(entry manifestEntry, dir dex.SwapDirection) search.Quote {
	return func(amountIn uint64) (uint64, error) {
		s, ok := q.static.Get(entry.Pool)
		if !ok {
			return 0, dex.CacheMissErr("arbd: bonding static slice missing")
		}
		d, ok := q.dyn.Get(entry.Pool)
		if !ok {
			return 0, dex.CacheMissErr("arbd: bonding dynamic slice missing")
		}
		p, err := bonding.Decode(s, d)
		if err != nil {
			return 0, err
		}
		return bonding.Quote(p, amountIn, dir)
	}
}

// clmmQuoter prices against the pool's own decoded state plus the
// amm-config/bitmap-extension/tick-arrays the snapshot's sibling fetch
// resolved (spec.md §4.6/§9); a pool that didn't survive that fetch is
// simply absent from pools, surfacing as a cache miss here.
type clmmQuoter struct {
	pools map[solana.PublicKey]clmmState
}

func (q clmmQuoter) quote(entry manifestEntry, dir dex.SwapDirection) search.Quote {
	return func(amountIn uint64) (uint64, error) {
		st, ok := q.pools[entry.Pool]
		if !ok {
			return 0, dex.CacheMissErr("arbd: clmm pool or siblings not loaded")
		}
		res, err := clmm.Quote(st.Pool, st.Siblings.TickArrays, &st.Siblings.Extension, st.Siblings.Config, amountIn, dir)
		if err != nil {
			return 0, err
		}
		return res.AmountOut, nil
	}
}

// dlmmQuoter prices against the pool's own decoded state plus its
// surrounding bin arrays, applying any token-2022 boundary transfer fee
// on the two mints it crosses (spec.md §9) using the snapshot's single
// Clock fetch for both fee epoch and volatility-decay timestamp.
type dlmmQuoter struct {
	pools   map[solana.PublicKey]dlmmState
	mintExt map[solana.PublicKey]mintext.TransferFeeConfig
	clock   sol.Clock
}

func (q dlmmQuoter) quote(entry manifestEntry, dir dex.SwapDirection) search.Quote {
	return func(amountIn uint64) (uint64, error) {
		st, ok := q.pools[entry.Pool]
		if !ok {
			return 0, dex.CacheMissErr("arbd: dlmm pool or bin arrays not loaded")
		}
		inMint, outMint := entry.MintA, entry.MintB
		if dir == dex.OneForZero {
			inMint, outMint = entry.MintB, entry.MintA
		}
		var fees dlmm.BoundaryFees
		if cfg, ok := q.mintExt[inMint]; ok {
			fees.In = &cfg
		}
		if cfg, ok := q.mintExt[outMint]; ok {
			fees.Out = &cfg
		}
		swapForY := dir == dex.ZeroForOne
		return dlmm.Quote(st.Pool, st.Arrays, amountIn, swapForY, int64(q.clock.UnixTimestamp), q.clock.Epoch, fees)
	}
}

// isMonotonicKernel mirrors spec.md §4.10's normal/ternary partition:
// cpamm and bonding-curve pools have a profit curve that's unimodal in
// amount_in, so ternary search is valid against them. A tick/bin-stepped
// kernel (CLMM/DLMM/adaptive) steps liquidity as it crosses boundaries,
// so its curve isn't assumed monotonic and gets the fixed-probe search
// instead.
func isMonotonicKernel(k dex.DexKind) bool {
	return k == dex.ConstantProductAMM || k == dex.BondingCurveAMM
}

func handleTrigger(ctx context.Context, logger *zap.Logger, cfg config.Config, g *graph.Graph, entries []manifestEntry, quoters map[dex.DexKind]quoter, trig dispatch.Trigger) {
	paths := g.PathsFor(trig.PoolIndex)
	candidates := make([]search.Candidate, 0, len(paths))
	for _, p := range paths {
		e0, e1 := g.Edge0Of(p), g.Edge1Of(p)
		q0, q1 := quoters[e0.DexKind], quoters[e1.DexKind]
		if q0 == nil || q1 == nil {
			continue
		}
		hop0 := q0.quote(entries[e0.PoolIndex], e0.Direction)
		hop1 := q1.quote(entries[e1.PoolIndex], e1.Direction)
		cycle := func(amountIn uint64) (uint64, error) {
			mid, err := hop0(amountIn)
			if err != nil {
				return 0, err
			}
			return hop1(mid)
		}
		candidates = append(candidates, search.Candidate{
			Path:       p,
			Quote:      cycle,
			UseTernary: isMonotonicKernel(e0.DexKind) && isMonotonicKernel(e1.DexKind),
		})
	}
	if len(candidates) == 0 {
		return
	}

	winner, ok := search.FindBestPath(ctx, logger, candidates, cfg.ProbeAmount, cfg.MaxProbeAmount)
	if !ok || winner.Result.Profit <= int64(cfg.MinProfitLamports) {
		return
	}

	e0, e1 := g.Edge0Of(winner.Path), g.Edge1Of(winner.Path)
	tip := instruction.TipLamports(winner.Result.Profit, cfg.TipRateNum, cfg.TipRateDen)
	set := instruction.Set{
		{DexKind: e0.DexKind, Direction: e0.Direction},
		{DexKind: e1.DexKind, Direction: e1.Direction},
	}
	logger.Info("profitable path found",
		zap.Int("pool_0", e0.PoolIndex), zap.Int("pool_1", e1.PoolIndex),
		zap.Uint64("amount_in", winner.Result.AmountIn), zap.Int64("profit_lamports", winner.Result.Profit),
		zap.Uint64("tip_lamports", tip), zap.Int("hops", len(set)))
}
