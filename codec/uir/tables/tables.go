/*
NAME
  tables.go

DESCRIPTION
  tables.go holds the process-wide, immutable constants and precomputed
  lookup tables shared by the codebook decoder and all format translators:
  the ETC1 intensity modifier table, selector linearization, the endpoint
  color-delta range thresholds, the canonical selector ranges, and the
  per-format canonical selector-to-target mapping permutations.

  Heavier tables -- the exhaustive-search endpoint match tables --
  live in match.go and are built lazily by Init, following the "static
  global populated once" pattern of the source transcoder
  (basisu_transcoder_init), re-architected here as explicit, idempotent,
  lazily-constructed immutable state rather than mutable package globals.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package tables holds the process-wide precomputed state shared by the UIR
// codebook decoder and format translators: the ETC1 intensity table,
// selector linearization, endpoint delta-range thresholds, canonical
// selector ranges, per-format mapping permutations, and the lazily built
// exhaustive-search endpoint match tables used by BC1/BC7/PVRTC1.
package tables

import "sync"

// IntenTable is the standard 8x4 ETC1 intensity modifier table: 8 intensity
// table indices (m_inten5, 3 bits) each giving 4 signed luminance deltas
// indexed by linearized selector 0..3.
var IntenTable = [8][4]int32{
	{-8, -2, 2, 8},
	{-17, -5, 5, 17},
	{-29, -9, 9, 29},
	{-42, -13, 13, 42},
	{-60, -18, 18, 60},
	{-80, -24, 24, 80},
	{-106, -33, 33, 106},
	{-183, -47, 47, 183},
}

// linearize maps a raw 2-bit ETC1 selector code to its linearized,
// luminance-ordered form (0 = darkest, 3 = brightest).
var linearize = [4]uint8{2, 3, 1, 0}

// delinearize is the inverse of linearize, recovering a raw selector code
// from its linearized form.
var delinearize = [4]uint8{3, 2, 0, 1}

// Linearize converts a raw 2-bit ETC1 selector code into its linearized
// form.
func Linearize(raw uint8) uint8 { return linearize[raw&3] }

// Delinearize converts a linearized selector back into its raw 2-bit ETC1
// code.
func Delinearize(lin uint8) uint8 { return delinearize[lin&3] }

// Endpoint color-delta range thresholds (see spec §4.D / §GLOSSARY): the
// previous channel value partitions [0,31] into three zones, each using a
// distinct Huffman model for the next delta.
const (
	Pal0PrevHi = 9  // zone 0: prev value in [0, Pal0PrevHi]
	Pal1PrevHi = 21 // zone 1: prev value in (Pal0PrevHi, Pal1PrevHi]
	// zone 2: prev value in (Pal1PrevHi, 31]
)

// ColorDeltaZone returns 0, 1 or 2 for the endpoint color-delta model to use
// given the previous channel value (0..31).
func ColorDeltaZone(prev uint8) int {
	switch {
	case prev <= Pal0PrevHi:
		return 0
	case prev <= Pal1PrevHi:
		return 1
	default:
		return 2
	}
}

// Expand5To8 expands a 5-bit channel value to 8 bits by bit replication,
// matching ETC1's standard endpoint expansion.
func Expand5To8(v uint8) uint8 {
	v &= 0x1f
	return (v << 3) | (v >> 2)
}

// SelectorRange is one of the six canonical (lo, hi) linearized-selector
// ranges used to key the format translation search.
type SelectorRange struct {
	Lo, Hi uint8
}

// SelectorRanges enumerates the six canonical ranges in the fixed order
// used to index translation tables.
var SelectorRanges = [6]SelectorRange{
	{0, 3}, {1, 3}, {0, 2}, {1, 2}, {2, 3}, {0, 1},
}

// RangeIndex returns the index into SelectorRanges for a given (lo, hi)
// pair of linearized selectors, or -1 if no canonical range matches
// exactly (callers widen lo/hi to the nearest containing canonical range
// before calling this in practice; see RangeIndexContaining).
func RangeIndex(lo, hi uint8) int {
	for i, r := range SelectorRanges {
		if r.Lo == lo && r.Hi == hi {
			return i
		}
	}
	return -1
}

// RangeIndexContaining returns the index of the narrowest canonical range
// that contains [lo, hi]. Since SelectorRanges includes {0,3}, a match
// always exists.
func RangeIndexContaining(lo, hi uint8) int {
	best := -1
	bestSpan := 255
	for i, r := range SelectorRanges {
		if r.Lo <= lo && r.Hi >= hi {
			span := int(r.Hi) - int(r.Lo)
			if span < bestSpan {
				bestSpan = span
				best = i
			}
		}
	}
	return best
}

// genMonotonic returns the first n non-decreasing length-4 sequences over
// [0, levels) in lexicographic order, used to generate the canonical
// selector-to-target mapping permutations for each format. Every such
// sequence is order-preserving: a brighter linearized source selector
// never maps to a dimmer target index than a darker one, which is the
// property the translators rely on when picking endpoints from a block's
// two extreme colors.
func genMonotonic(levels, n int) [][4]uint8 {
	out := make([][4]uint8, 0, n)
	var seq [4]int
	var rec func(pos, minVal int)
	rec = func(pos, minVal int) {
		if len(out) >= n {
			return
		}
		if pos == 4 {
			out = append(out, [4]uint8{uint8(seq[0]), uint8(seq[1]), uint8(seq[2]), uint8(seq[3])})
			return
		}
		for v := minVal; v < levels; v++ {
			seq[pos] = v
			rec(pos+1, v)
			if len(out) >= n {
				return
			}
		}
	}
	rec(0, 0)
	return out
}

var (
	bc1MappingsOnce sync.Once
	bc1Mappings     [][4]uint8

	eacMappingsOnce sync.Once
	eacMappings     [][4]uint8

	bc7MappingsOnce sync.Once
	bc7Mappings     [][4]uint8

	bc4MappingsOnce sync.Once
	bc4Mappings     [][4]uint8
)

// BC1Mappings returns the 10 canonical permutations mapping a block's 4
// linearized ETC1S selectors onto BC1's 4 ordered selector codes.
func BC1Mappings() [][4]uint8 {
	bc1MappingsOnce.Do(func() { bc1Mappings = genMonotonic(4, 10) })
	return bc1Mappings
}

// EACA8Mappings returns the 4 canonical permutations used by the ETC2 EAC
// A8 translator.
func EACA8Mappings() [][4]uint8 {
	eacMappingsOnce.Do(func() { eacMappings = genMonotonic(4, 4) })
	return eacMappings
}

// BC7M6Mappings returns the 46 canonical permutations used by the BC7 mode
// 6 translator, mapping a block's 4 linearized selectors onto a reduced
// set of representative 4-bit target indices.
func BC7M6Mappings() [][4]uint8 {
	bc7MappingsOnce.Do(func() { bc7Mappings = genMonotonic(8, 46) })
	return bc7Mappings
}

// BC4Mappings returns the 28 canonical permutations mapping a block's 4
// linearized selectors onto BC4's 8-level (alpha_0 > alpha_1) target code
// space.
func BC4Mappings() [][4]uint8 {
	bc4MappingsOnce.Do(func() { bc4Mappings = genMonotonic(8, 28) })
	return bc4Mappings
}
