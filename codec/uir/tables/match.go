/*
NAME
  match.go

DESCRIPTION
  match.go builds the process-wide endpoint match tables used by the BC1
  translator, PVRTC1's RGB555 endpoint packing and the BC7 mode 6
  translator: for every possible 8-bit target color, the 5-bit (6-bit for
  BC1's green channel, 7-bit plus p-bit for BC7 mode 6) endpoint value
  whose expansion back to 8 bits comes closest.

  These are computed once, lazily, by exhaustive search over the small
  (32-, 64- or 128-entry) quantized value space -- the "build-time code
  generation" alternative from the design notes, performed at process
  start instead of checked in as a generated literal, since the search
  space is cheap enough to not warrant it.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package tables

import "sync"

// MatchEntry is one entry of a constant-color endpoint match table: the
// quantized value whose 8-bit expansion best approximates the target, and
// the resulting absolute error.
type MatchEntry struct {
	Val uint8
	Err int32
}

var (
	initOnce sync.Once

	match5Tbl [256]MatchEntry // 5-bit channels (R, B of BC1; PVRTC1 RGB555)
	match6Tbl [256]MatchEntry // 6-bit channel (G of BC1)
	match7Tbl [2][256]MatchEntry // 7-bit-plus-shared-p-bit channels (BC7 mode 6)
)

// Expand6To8 expands a 6-bit channel value to 8 bits by bit replication.
func Expand6To8(v uint8) uint8 {
	v &= 0x3f
	return (v << 2) | (v >> 4)
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

func buildMatch5() {
	for target := 0; target < 256; target++ {
		best := MatchEntry{Err: 1 << 30}
		for v := 0; v < 32; v++ {
			e := abs32(int32(target) - int32(Expand5To8(uint8(v))))
			if e < best.Err {
				best = MatchEntry{Val: uint8(v), Err: e}
			}
		}
		match5Tbl[target] = best
	}
}

func buildMatch6() {
	for target := 0; target < 256; target++ {
		best := MatchEntry{Err: 1 << 30}
		for v := 0; v < 64; v++ {
			e := abs32(int32(target) - int32(Expand6To8(uint8(v))))
			if e < best.Err {
				best = MatchEntry{Val: uint8(v), Err: e}
			}
		}
		match6Tbl[target] = best
	}
}

// Expand7To8 expands a 7-bit channel value plus its shared endpoint p-bit
// into an 8-bit value, BC7 mode 6's component precision (7 data bits + 1
// p-bit, exact, no further bit replication).
func Expand7To8(v7, p uint8) uint8 { return (v7&0x7f)<<1 | (p & 1) }

func buildMatch7() {
	for p := 0; p < 2; p++ {
		for target := 0; target < 256; target++ {
			best := MatchEntry{Err: 1 << 30}
			for v := 0; v < 128; v++ {
				e := abs32(int32(target) - int32(Expand7To8(uint8(v), uint8(p))))
				if e < best.Err {
					best = MatchEntry{Val: uint8(v), Err: e}
				}
			}
			match7Tbl[p][target] = best
		}
	}
}

// Init idempotently builds all process-wide precomputed tables. It mirrors
// the source's basisu_transcoder_init: callers invoke it before first use;
// subsequent calls are no-ops. The build runs under a sync.Once, so
// concurrent first calls are also safe.
func Init() {
	initOnce.Do(func() {
		buildMatch5()
		buildMatch6()
		buildMatch7()
	})
}

// Match5 returns the best 5-bit quantization of an 8-bit target color,
// serving both the MATCH5_EQ1 (constant-color) and MATCH5_EQ0 (extreme
// two-selector) roles described in the spec: in both regimes a single
// target 8-bit color is quantized to minimize absolute round-trip error,
// independent of which selector index is held constant. Init must have
// been called first.
func Match5(target uint8) MatchEntry { return match5Tbl[target] }

// Match6 is Match5's 6-bit counterpart, used for BC1's green channel.
func Match6(target uint8) MatchEntry { return match6Tbl[target] }

// Match7 returns the best 7-bit quantization of an 8-bit target color for
// a given shared endpoint p-bit, used by the BC7 mode 6 translator. Init
// must have been called first.
func Match7(target uint8, p uint8) MatchEntry { return match7Tbl[p&1][target] }
