package sfzkit

import (
	"cmp"
	"slices"
)

// canonicalOrder lists well-known opcode names in musically conventional
// order: key/velocity mapping first, then sample and loop settings, then
// envelope, LFO, filter, and effect-routing opcodes. Names absent from the
// list sort after every listed one, keeping their relative input order.
var canonicalOrder = []string{
	"lokey",
	"hikey",
	"lovel",
	"hivel",
	"lochan",
	"hichan",
	"sample",
	"pitch_keycenter",
	"loop_mode",
	"loop_start",
	"loop_end",
	"offset",
	"group",
	"off_by",
	"ampeg_attack",
	"ampeg_decay",
	"ampeg_delay",
	"ampeg_hold",
	"ampeg_release",
	"ampeg_sustain",
	"amplfo_delay",
	"amplfo_depth",
	"amplfo_freq",
	"volume",
	"pan",
	"cutoff",
	"resonance",
	"transpose",
	"tune",
	"pitch_keytrack",
	"pitch_veltrack",
	"fileg_delay",
	"fileg_attack",
	"fileg_decay",
	"fileg_depth",
	"fileg_sustain",
	"fileg_release",
	"fileg_hold",
	"fil_type",
	"fil_veltrack",
	"fillfo_delay",
	"fillfo_depth",
	"fillfo_freq",
	"effect1",
	"effect2",
	"pitcheg_delay",
	"pitcheg_attack",
	"pitcheg_decay",
	"pitcheg_depth",
	"pitcheg_sustain",
	"pitcheg_release",
	"pitcheg_hold",
	"pitchlfo_delay",
	"pitchlfo_depth",
	"pitchlfo_freq",
}

var canonicalRank = func() map[string]int {
	ranks := make(map[string]int, len(canonicalOrder))
	for i, name := range canonicalOrder {
		ranks[name] = i
	}
	return ranks
}()

func rankOf(name string) int {
	if rank, ok := canonicalRank[name]; ok {
		return rank
	}
	return len(canonicalOrder)
}

// OrderedOpcodes returns the opcodes sorted into canonical order. The
// input is not modified; unranked names keep their relative input order
// after all ranked ones.
func OrderedOpcodes(opcodes []*Opcode) []*Opcode {
	out := make([]*Opcode, len(opcodes))
	copy(out, opcodes)
	stableSortByRank(out, func(op *Opcode) int { return rankOf(op.name) })
	return out
}

// OrderedNames returns the opcode names sorted into canonical order,
// without modifying the input.
func OrderedNames(names []string) []string {
	out := make([]string, len(names))
	copy(out, names)
	stableSortByRank(out, rankOf)
	return out
}

// RegionSortKey orders regions by their effective MIDI key range: lokey
// then hikey, with the key opcode standing in for both when present.
// Non-numeric or absent bounds fall back to the full range.
func RegionSortKey(region *Header) int {
	if key := region.Opcode("key"); key != nil {
		if v, ok := key.Num(); ok {
			return int(v)*128 + int(v)
		}
	}
	lo, hi := 0, 127
	if op := region.Opcode("lokey"); op != nil {
		if v, ok := op.Num(); ok {
			lo = int(v)
		}
	}
	if op := region.Opcode("hikey"); op != nil {
		if v, ok := op.Num(); ok {
			hi = int(v)
		}
	}
	return lo*128 + hi
}

func stableSortByRank[T any](items []T, rank func(T) int) {
	slices.SortStableFunc(items, func(a, b T) int {
		return cmp.Compare(rank(a), rank(b))
	})
}
