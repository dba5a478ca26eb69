package dlmm

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
	"github.com/solarb/arbengine/pkg/dex"
	"lukechampine.com/uint128"
)

// BinArray mirrors nick199910-SolRoute/pkg/pool/meteora/bin_array.go's
// BinArray, minus the unexported fields that package never exposes past
// its own package boundary.
type BinArray struct {
	Index   int64
	LbPair  solana.PublicKey
	Bins    [BinsPerArray]Bin
}

const binArrayLen = 8 + 1 + 7 + 32 + BinsPerArray*(8+8+16+16+16*2+16+16+16+16)

func DecodeBinArray(raw []byte) (BinArray, error) {
	if len(raw) != binArrayLen {
		return BinArray{}, dex.DecodeErr("dlmm: bad bin array length", nil)
	}
	var ba BinArray
	o := 0
	ba.Index = int64(binary.LittleEndian.Uint64(raw[o:]))
	o += 8 + 1 + 7 // version + padding, unused
	ba.LbPair = solana.PublicKeyFromBytes(raw[o : o+32])
	o += 32
	for i := 0; i < BinsPerArray; i++ {
		ba.Bins[i].AmountX = binary.LittleEndian.Uint64(raw[o:])
		o += 8
		ba.Bins[i].AmountY = binary.LittleEndian.Uint64(raw[o:])
		o += 8
		ba.Bins[i].Price = readU128(raw, &o)
		ba.Bins[i].LiquiditySupply = readU128(raw, &o)
		ba.Bins[i].RewardPerTokenStored[0] = readU128(raw, &o)
		ba.Bins[i].RewardPerTokenStored[1] = readU128(raw, &o)
		ba.Bins[i].FeeAmountXPerTokenStored = readU128(raw, &o)
		ba.Bins[i].FeeAmountYPerTokenStored = readU128(raw, &o)
		ba.Bins[i].AmountXIn = readU128(raw, &o)
		ba.Bins[i].AmountYIn = readU128(raw, &o)
	}
	return ba, nil
}

// GetBinArrayLowerUpperBinID computes the [lower, upper] bin-ID range
// covered by array index idx. bin_array.go calls a function of this name
// that is never defined anywhere in the retrieved corpus; 70 bins per
// array laid out contiguously from index*70 is the natural reading of
// its own ParseBinArray/IsBinIDWithinRange usage, so that is what this
// implements.
func GetBinArrayLowerUpperBinID(idx int32) (int32, int32, error) {
	lower := idx * BinsPerArray
	return lower, lower + BinsPerArray - 1, nil
}

func (ba *BinArray) IsBinIDWithinRange(activeID int32) (bool, error) {
	lower, upper, err := GetBinArrayLowerUpperBinID(int32(ba.Index))
	if err != nil {
		return false, err
	}
	return activeID >= lower && activeID <= upper, nil
}

func (ba *BinArray) GetBinIndexInArray(activeID int32) (int, error) {
	within, err := ba.IsBinIDWithinRange(activeID)
	if err != nil {
		return 0, err
	}
	if !within {
		return 0, dex.QuoteErr("dlmm: bin id out of array range", nil)
	}
	lower, _, _ := GetBinArrayLowerUpperBinID(int32(ba.Index))
	return int(activeID - lower), nil
}

func (ba *BinArray) GetBinMut(activeID int32) (*Bin, error) {
	idx, err := ba.GetBinIndexInArray(activeID)
	if err != nil {
		return nil, err
	}
	return &ba.Bins[idx], nil
}

// BinIDToBinArrayIndex returns which array index owns a bin ID.
func BinIDToBinArrayIndex(binID int32) int64 {
	if binID < 0 {
		return int64((binID+1)/BinsPerArray) - 1
	}
	return int64(binID / BinsPerArray)
}

func readU128(raw []byte, o *int) uint128.Uint128 {
	u := uint128.Uint128{
		Lo: binary.LittleEndian.Uint64(raw[*o:]),
		Hi: binary.LittleEndian.Uint64(raw[*o+8:]),
	}
	*o += 16
	return u
}
