// Package slice implements the data-slice registry of spec.md §4.1: for
// each (DexKind, AccountKind, SubscriptionClass) tuple it holds the
// ordered byte intervals the wire protocol delivers, and projects a raw
// account payload down to the dense buffer the decoders read from.
package slice

import (
	"fmt"

	"github.com/solarb/arbengine/pkg/dex"
)

// Interval is a single (offset, length) span within a raw account payload.
type Interval struct {
	Offset int
	Length int
}

// Spec is the registry entry for one tuple: its ordered intervals and
// their combined length (the length the decoders expect after slicing).
type Spec struct {
	Intervals   []Interval
	TotalLength int
}

type tupleKey struct {
	dex   dex.DexKind
	kind  dex.AccountKind
	class dex.SubscriptionClass
}

// Registry is built once at startup and is read-only afterwards.
type Registry struct {
	entries map[tupleKey]Spec
}

// NewRegistry builds an empty registry; callers populate it via Register.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[tupleKey]Spec)}
}

// Register records the interval list for one tuple. Intervals must be
// non-overlapping and strictly ascending; an empty list is allowed (for
// account kinds with no static component, e.g. a vault's static slice).
func (r *Registry) Register(dk dex.DexKind, ak dex.AccountKind, sc dex.SubscriptionClass, intervals []Interval) error {
	total := 0
	prevEnd := -1
	for _, iv := range intervals {
		if iv.Offset < prevEnd {
			return fmt.Errorf("slice: interval at offset %d overlaps/precedes previous end %d", iv.Offset, prevEnd)
		}
		if iv.Length < 0 {
			return fmt.Errorf("slice: negative interval length at offset %d", iv.Offset)
		}
		total += iv.Length
		prevEnd = iv.Offset + iv.Length
	}
	r.entries[tupleKey{dk, ak, sc}] = Spec{Intervals: append([]Interval(nil), intervals...), TotalLength: total}
	return nil
}

// Slice projects payload down to the dense buffer for the given tuple,
// reading each registered interval in order and concatenating them.
func (r *Registry) Slice(payload []byte, dk dex.DexKind, ak dex.AccountKind, sc dex.SubscriptionClass) ([]byte, error) {
	spec, ok := r.entries[tupleKey{dk, ak, sc}]
	if !ok {
		return nil, dex.DecodeErr(fmt.Sprintf("no slice spec for (%v,%v,%v)", dk, ak, sc), nil)
	}
	out := make([]byte, 0, spec.TotalLength)
	for _, iv := range spec.Intervals {
		if iv.Offset+iv.Length > len(payload) {
			return nil, dex.DecodeErr(fmt.Sprintf("interval [%d,%d) exceeds payload length %d", iv.Offset, iv.Offset+iv.Length, len(payload)), nil)
		}
		out = append(out, payload[iv.Offset:iv.Offset+iv.Length]...)
	}
	return out, nil
}

// Size returns the registered total length for the tuple, or an error if
// the tuple is unknown.
func (r *Registry) Size(dk dex.DexKind, ak dex.AccountKind, sc dex.SubscriptionClass) (int, error) {
	spec, ok := r.entries[tupleKey{dk, ak, sc}]
	if !ok {
		return 0, dex.DecodeErr(fmt.Sprintf("no slice spec for (%v,%v,%v)", dk, ak, sc), nil)
	}
	return spec.TotalLength, nil
}
