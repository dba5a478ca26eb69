package clmm

import (
	"encoding/binary"
	"math/big"

	"github.com/gagliardetto/solana-go"
	"github.com/solarb/arbengine/pkg/dex"
)

// BitmapExtensionSize is the per-side word-group count of the sibling
// extension account: 14 groups of 8 u64 words each (spec.md §3).
const BitmapExtensionSize = 14

// TickArrayBitmapExtension holds the positive/negative bitmap groups
// that extend reachable tick-array start indices beyond the pool's
// in-line 1024-bit primary bitmap, grounded on
// nick199910-SolRoute/pkg/pool/raydium/clmm_tickerarray.go's
// TickArrayBitmapExtensionType/ParseExBitmapInfo.
type TickArrayBitmapExtension struct {
	PoolID   solana.PublicKey
	Positive [BitmapExtensionSize][8]uint64
	Negative [BitmapExtensionSize][8]uint64
}

const bitmapExtLen = 32 + BitmapExtensionSize*8*8*2

func DecodeBitmapExtension(raw []byte) (TickArrayBitmapExtension, error) {
	if len(raw) != bitmapExtLen {
		return TickArrayBitmapExtension{}, dex.DecodeErr("clmm: bad bitmap extension length", nil)
	}
	var ext TickArrayBitmapExtension
	o := 0
	ext.PoolID = solana.PublicKeyFromBytes(raw[o : o+32])
	o += 32
	for g := 0; g < BitmapExtensionSize; g++ {
		for w := 0; w < 8; w++ {
			ext.Positive[g][w] = binary.LittleEndian.Uint64(raw[o:])
			o += 8
		}
	}
	for g := 0; g < BitmapExtensionSize; g++ {
		for w := 0; w < 8; w++ {
			ext.Negative[g][w] = binary.LittleEndian.Uint64(raw[o:])
			o += 8
		}
	}
	return ext, nil
}

// maxInBoundsTickArrayStart is the largest/smallest tick-array start
// index the primary (in-pool) 1024-bit bitmap reaches: 512 arrays either
// side of tick 0, each spanning tick_spacing*60 ticks.
func maxInBoundsTickArrayStart(tickSpacing uint16) int32 {
	return 512 * int32(tickSpacing) * TickArraySize
}

// tickArrayStartIndex floors tick to the start of its containing array.
func tickArrayStartIndex(tick int32, tickSpacing uint16) int32 {
	span := int32(tickSpacing) * TickArraySize
	quotient := tick / span
	if tick < 0 && tick%span != 0 {
		quotient--
	}
	return quotient * span
}

// mergedBitmap flattens the primary bitmap's 16 u64 words and the
// matching extension side into a single big.Int for bit-scanning,
// mirroring clmm_tickerarray.go's SearchLowBitFromStart/SearchHighBitFromStart
// merge of primary+extension words.
func mergedBitmap(primary [16]uint64, extSide [BitmapExtensionSize][8]uint64) *big.Int {
	acc := new(big.Int)
	for i := 15; i >= 0; i-- {
		acc.Lsh(acc, 64)
		acc.Or(acc, new(big.Int).SetUint64(primary[i]))
	}
	for g := BitmapExtensionSize - 1; g >= 0; g-- {
		for w := 7; w >= 0; w-- {
			acc.Lsh(acc, 64)
			acc.Or(acc, new(big.Int).SetUint64(extSide[g][w]))
		}
	}
	return acc
}

// TickArrayStartIndex exposes tickArrayStartIndex to callers outside this
// package (the snapshot loader's sibling-account fetch needs to resolve a
// pool's current array before walking outward from it).
func TickArrayStartIndex(tick int32, tickSpacing uint16) int32 {
	return tickArrayStartIndex(tick, tickSpacing)
}

// WalkTickArrayStarts returns up to count tick-array start indices walking
// away from the pool's current tick in the given direction, starting with
// the pool's own current array, mirroring snapshot_init.rs's
// load_cur_and_next_specify_count_tick_array_key (spec.md §4.6's "10 tick
// arrays each direction" sibling fetch).
func (p Pool) WalkTickArrayStarts(ext *TickArrayBitmapExtension, zeroForOne bool, count int) []int32 {
	if count <= 0 {
		return nil
	}
	starts := make([]int32, 0, count)
	cur := tickArrayStartIndex(p.CurrentTick, p.TickSpacing)
	starts = append(starts, cur)
	from := cur
	for len(starts) < count {
		next, ok := nextInitializedTickArrayStart(p, ext, from, zeroForOne)
		if !ok {
			break
		}
		starts = append(starts, next)
		from = next
	}
	return starts
}

// nextInitializedTickArrayStart finds the closest tick-array start index
// in the swap direction, relative to fromStart, that has at least one bit
// set in the merged primary+extension bitmap. Returns ok=false if none is
// found within the representable range.
func nextInitializedTickArrayStart(pool Pool, ext *TickArrayBitmapExtension, fromStart int32, zeroForOne bool) (int32, bool) {
	span := int32(pool.TickSpacing) * TickArraySize
	bound := maxInBoundsTickArrayStart(pool.TickSpacing) * 16 // generous outer bound across extension range too

	start := fromStart
	for {
		if zeroForOne {
			start -= span
		} else {
			start += span
		}
		if start < -bound || start > bound {
			return 0, false
		}
		idx := start / span
		bit := bitForArrayIndex(idx)
		var merged *big.Int
		if ext != nil {
			if idx >= 0 {
				merged = mergedBitmap(pool.TickArrayBitmap, ext.Positive)
			} else {
				merged = mergedBitmap(pool.TickArrayBitmap, ext.Negative)
			}
		} else {
			merged = mergedBitmap(pool.TickArrayBitmap, [BitmapExtensionSize][8]uint64{})
		}
		if bit >= 0 && merged.Bit(bit) == 1 {
			return start, true
		}
	}
}

// bitForArrayIndex maps a tick-array index (start/span, may be negative)
// to a bit position in the merged bitmap, offset so index 0 sits mid-range
// of the primary bitmap: mergedBitmap puts the extension words in the low
// bits and the primary 1024 bits on top, where primary bit k covers index
// k-512. Indices outside [-512, 511] map into the extension side, 512
// arrays per word group. Returns -1 beyond the extension's reach.
func bitForArrayIndex(idx int32) int {
	if idx >= -512 && idx < 512 {
		return BitmapExtensionSize*8*64 + int(idx) + 512
	}
	abs := int(idx)
	if abs < 0 {
		abs = -abs
	}
	group, bit := abs/512-1, abs%512
	if idx < 0 && bit != 0 {
		bit = 512 - bit
	} else if idx < 0 {
		group--
	}
	if group >= BitmapExtensionSize {
		return -1
	}
	return group*512 + bit
}
