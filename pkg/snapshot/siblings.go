// siblings.go fetches the per-DEX secondary accounts spec.md §4.6 requires
// alongside a pool's own account: CLMM needs its amm-config, bitmap
// extension, and surrounding tick arrays; BondingCurve needs the program's
// global config; DLMM needs its bitmap extension and surrounding bin
// arrays. A pool whose config or bitmap extension can't be fetched, or for
// which no tick/bin array resolves, is dropped; a pool with only some of
// its arrays resolved is kept with those. This is the same drop-on-missing
// discipline account_cache.rs applies to the primary pool fetch.
//
// The CLMM PDA seeds ("tick_array", "pool_tick_array_bitmap_extension")
// are grounded on nick199910-SolRoute/pkg/pool/raydium/clmm_tickerarray.go's
// getPdaTickArrayAddress/GetPdaExBitmapAccount (also confirmed against
// original_source/bin/router/src/dex/raydium_clmm/state.rs's
// TICK_ARRAY_SEED/POOL_TICK_ARRAY_BITMAP_SEED constants). The DLMM bitmap
// and bin-array seeds, and pump.fun's global-config seed, are NOT present
// anywhere in the retrieved corpus (grep across every example repo and
// original_source turns up call sites that reference them but never a
// definition) — those three derivations below are reconstructed from
// public Meteora/pump.fun protocol convention rather than a corpus file,
// and are flagged as such in DESIGN.md.
package snapshot

import (
	"context"
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/solarb/arbengine/pkg/dex/clmm"
	"github.com/solarb/arbengine/pkg/dex/dlmm"
	"github.com/solarb/arbengine/pkg/dex/mintext"
)

// TickArraysPerSide is spec.md §4.6's "10 tick arrays each direction".
const TickArraysPerSide = 10

// BinArraysPerSide is spec.md §4.6's "10 bin arrays each direction".
const BinArraysPerSide = 10

func deriveCLMMBitmapExtension(programID, pool solana.PublicKey) (solana.PublicKey, error) {
	pk, _, err := solana.FindProgramAddress([][]byte{[]byte("pool_tick_array_bitmap_extension"), pool.Bytes()}, programID)
	return pk, err
}

func deriveCLMMTickArray(programID, pool solana.PublicKey, startIndex int32) (solana.PublicKey, error) {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, uint32(startIndex))
	pk, _, err := solana.FindProgramAddress([][]byte{[]byte("tick_array"), pool.Bytes(), buf}, programID)
	return pk, err
}

// deriveDLMMBitmapExtension and deriveDLMMBinArray are NOT grounded in any
// retrieved corpus file (see package doc); "bitmap"/"bin_array" are the
// seeds Meteora's public SDKs use for these PDAs.
func deriveDLMMBitmapExtension(programID, lbPair solana.PublicKey) (solana.PublicKey, error) {
	pk, _, err := solana.FindProgramAddress([][]byte{[]byte("bitmap"), lbPair.Bytes()}, programID)
	return pk, err
}

func deriveDLMMBinArray(programID, lbPair solana.PublicKey, index int64) (solana.PublicKey, error) {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, uint64(index))
	pk, _, err := solana.FindProgramAddress([][]byte{[]byte("bin_array"), lbPair.Bytes(), buf}, programID)
	return pk, err
}

// deriveBondingGlobalConfig is likewise not grounded in the corpus: the
// pump.fun AMM package (pkg/pool/pump) references a PumpGlobalConfig
// account in its instruction builders but never defines its key or
// derivation anywhere in the retrieved tree.
func deriveBondingGlobalConfig(programID solana.PublicKey) (solana.PublicKey, error) {
	pk, _, err := solana.FindProgramAddress([][]byte{[]byte("global_config")}, programID)
	return pk, err
}

// CLMMSiblings is the decoded secondary-account set for one CLMM pool.
type CLMMSiblings struct {
	Config     clmm.AmmConfig
	Extension  clmm.TickArrayBitmapExtension
	TickArrays []clmm.TickArray
}

// LoadCLMMSiblings fetches and decodes, for every pool in pools, its
// amm-config, bitmap extension, and up to TickArraysPerSide tick arrays
// in each swap direction (spec.md §4.6). A pool whose amm-config or
// bitmap extension is missing or fails to decode, or none of whose tick
// arrays resolve, is dropped from the returned map; a pool with some of
// its tick arrays resolved keeps just those.
func LoadCLMMSiblings(ctx context.Context, loader Loader, programID solana.PublicKey, pools map[solana.PublicKey]clmm.Pool, logger *zap.Logger) (map[solana.PublicKey]CLMMSiblings, error) {
	if len(pools) == 0 {
		return nil, nil
	}

	// Pass 1: amm-config + bitmap extension, one fetch each per pool.
	type pending struct {
		pool      solana.PublicKey
		cfgKey    solana.PublicKey
		extKey    solana.PublicKey
	}
	var pendings []pending
	var keys []solana.PublicKey
	for poolKey, p := range pools {
		extKey, err := deriveCLMMBitmapExtension(programID, poolKey)
		if err != nil {
			continue
		}
		pendings = append(pendings, pending{pool: poolKey, cfgKey: p.AmmConfigKey, extKey: extKey})
		keys = append(keys, p.AmmConfigKey, extKey)
	}
	raw, err := loader.LoadAccounts(ctx, keys)
	if err != nil {
		return nil, err
	}
	byKey := indexRaw(raw)

	out := make(map[solana.PublicKey]CLMMSiblings, len(pools))
	var tickArrayKeys []solana.PublicKey
	type arrayWant struct {
		pool solana.PublicKey
		key  solana.PublicKey
	}
	var wants []arrayWant

	for _, pend := range pendings {
		cfgPayload, ok := byKey[pend.cfgKey]
		if !ok {
			logger.Warn("dropping clmm pool: amm-config missing", zap.String("pool", pend.pool.String()))
			continue
		}
		cfg, err := clmm.DecodeAmmConfig(cfgPayload)
		if err != nil {
			logger.Warn("dropping clmm pool: amm-config decode failed", zap.String("pool", pend.pool.String()), zap.Error(err))
			continue
		}
		extPayload, ok := byKey[pend.extKey]
		if !ok {
			logger.Warn("dropping clmm pool: bitmap extension missing", zap.String("pool", pend.pool.String()))
			continue
		}
		ext, err := clmm.DecodeBitmapExtension(extPayload)
		if err != nil {
			logger.Warn("dropping clmm pool: bitmap extension decode failed", zap.String("pool", pend.pool.String()), zap.Error(err))
			continue
		}

		out[pend.pool] = CLMMSiblings{Config: cfg, Extension: ext}

		p := pools[pend.pool]
		seen := map[int32]bool{}
		for _, zeroForOne := range []bool{true, false} {
			for _, start := range p.WalkTickArrayStarts(&ext, zeroForOne, TickArraysPerSide) {
				if seen[start] {
					continue
				}
				seen[start] = true
				key, err := deriveCLMMTickArray(programID, pend.pool, start)
				if err != nil {
					continue
				}
				wants = append(wants, arrayWant{pool: pend.pool, key: key})
				tickArrayKeys = append(tickArrayKeys, key)
			}
		}
	}

	if len(tickArrayKeys) == 0 {
		return map[solana.PublicKey]CLMMSiblings{}, nil
	}
	arrRaw, err := loader.LoadAccounts(ctx, tickArrayKeys)
	if err != nil {
		return nil, err
	}
	arrByKey := indexRaw(arrRaw)

	byPool := map[solana.PublicKey][]clmm.TickArray{}
	for _, w := range wants {
		payload, ok := arrByKey[w.key]
		if !ok {
			continue
		}
		ta, err := clmm.DecodeTickArray(payload)
		if err != nil {
			continue
		}
		byPool[w.pool] = append(byPool[w.pool], ta)
	}

	final := make(map[solana.PublicKey]CLMMSiblings, len(out))
	for pool, sib := range out {
		arrays := byPool[pool]
		if len(arrays) == 0 {
			logger.Warn("dropping clmm pool: no tick arrays resolved", zap.String("pool", pool.String()))
			continue
		}
		sib.TickArrays = arrays
		final[pool] = sib
	}
	return final, nil
}

// LoadDLMMSiblings fetches and decodes, for every pool in pools, its
// bitmap extension and up to BinArraysPerSide bin arrays in each
// direction around the active bin (spec.md §4.6).
func LoadDLMMSiblings(ctx context.Context, loader Loader, programID solana.PublicKey, pools map[solana.PublicKey]dlmm.Pool, logger *zap.Logger) (map[solana.PublicKey]map[int64]*dlmm.BinArray, error) {
	if len(pools) == 0 {
		return nil, nil
	}

	type pending struct {
		pool   solana.PublicKey
		extKey solana.PublicKey
	}
	var pendings []pending
	var extKeys []solana.PublicKey
	for poolKey := range pools {
		extKey, err := deriveDLMMBitmapExtension(programID, poolKey)
		if err != nil {
			continue
		}
		pendings = append(pendings, pending{pool: poolKey, extKey: extKey})
		extKeys = append(extKeys, extKey)
	}
	extRaw, err := loader.LoadAccounts(ctx, extKeys)
	if err != nil {
		return nil, err
	}
	extByKey := indexRaw(extRaw)

	type arrayWant struct {
		pool solana.PublicKey
		idx  int64
		key  solana.PublicKey
	}
	var wants []arrayWant
	var arrayKeys []solana.PublicKey

	for _, pend := range pendings {
		if _, ok := extByKey[pend.extKey]; !ok {
			logger.Warn("dropping dlmm pool: bitmap extension missing", zap.String("pool", pend.pool.String()))
			continue
		}

		p := pools[pend.pool]
		center := dlmm.BinIDToBinArrayIndex(p.ActiveID)
		indices := []int64{center}
		for i := int64(1); i < BinArraysPerSide; i++ {
			indices = append(indices, center+i, center-i)
		}
		for _, idx := range indices {
			key, err := deriveDLMMBinArray(programID, pend.pool, idx)
			if err != nil {
				continue
			}
			wants = append(wants, arrayWant{pool: pend.pool, idx: idx, key: key})
			arrayKeys = append(arrayKeys, key)
		}
	}

	if len(arrayKeys) == 0 {
		return map[solana.PublicKey]map[int64]*dlmm.BinArray{}, nil
	}
	arrRaw, err := loader.LoadAccounts(ctx, arrayKeys)
	if err != nil {
		return nil, err
	}
	arrByKey := indexRaw(arrRaw)

	out := make(map[solana.PublicKey]map[int64]*dlmm.BinArray, len(pendings))
	for _, w := range wants {
		payload, ok := arrByKey[w.key]
		if !ok {
			continue
		}
		ba, err := dlmm.DecodeBinArray(payload)
		if err != nil {
			continue
		}
		if out[w.pool] == nil {
			out[w.pool] = map[int64]*dlmm.BinArray{}
		}
		baCopy := ba
		out[w.pool][w.idx] = &baCopy
	}

	final := make(map[solana.PublicKey]map[int64]*dlmm.BinArray, len(out))
	for pool, arrays := range out {
		if len(arrays) == 0 {
			logger.Warn("dropping dlmm pool: no bin arrays resolved", zap.String("pool", pool.String()))
			continue
		}
		final[pool] = arrays
	}
	return final, nil
}

// LoadBondingGlobalConfig fetches the pump.fun program's single global
// config account, shared across every bonding-curve pool on that program
// (spec.md §4.6's BondingCurve sibling fetch). Returns ok=false if the
// account could not be loaded, meaning every bonding-curve pool for this
// program must be dropped.
func LoadBondingGlobalConfig(ctx context.Context, loader Loader, programID solana.PublicKey) ([]byte, bool, error) {
	key, err := deriveBondingGlobalConfig(programID)
	if err != nil {
		return nil, false, err
	}
	raw, err := loader.LoadAccounts(ctx, []solana.PublicKey{key})
	if err != nil {
		return nil, false, err
	}
	present := Present(raw)
	if len(present) == 0 {
		return nil, false, nil
	}
	return present[0].Payload, true, nil
}

// LoadMintExtensions fetches every distinct mint in mints and decodes its
// token-2022 TransferFeeConfig extension if present, matching
// account_cache.rs's init_token_2022 pass: mints without the extension
// (plain SPL Token, or token-2022 without it) are simply absent from the
// returned map rather than an error.
func LoadMintExtensions(ctx context.Context, loader Loader, mints []solana.PublicKey, logger *zap.Logger) (map[solana.PublicKey]mintext.TransferFeeConfig, error) {
	if len(mints) == 0 {
		return nil, nil
	}
	raw, err := loader.LoadAccounts(ctx, mints)
	if err != nil {
		return nil, err
	}
	out := map[solana.PublicKey]mintext.TransferFeeConfig{}
	for _, a := range Present(raw) {
		cfg, ok, err := mintext.Decode(a.Payload)
		if err != nil {
			logger.Warn("skipping mint extension decode", zap.String("mint", a.Key.String()), zap.Error(err))
			continue
		}
		if ok {
			out[a.Key] = cfg
		}
	}
	return out, nil
}

func indexRaw(raw []RawAccount) map[solana.PublicKey][]byte {
	out := make(map[solana.PublicKey][]byte, len(raw))
	for _, a := range Present(raw) {
		out[a.Key] = a.Payload
	}
	return out
}
