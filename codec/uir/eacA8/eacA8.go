/*
NAME
  eacA8.go

DESCRIPTION
  eacA8.go implements the ETC2 EAC A8 format translator: a single 8-bit
  base codeword, one of 16 standard modifier tables selected with a 4-bit
  multiplier, and 16 3-bit texel selectors, per spec §4.G. Like BC4, it
  transcodes the logical block's red channel, serving as the alpha plane
  of a synthesized ETC2-family block.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package eacA8 implements the ETC2 EAC A8 target-format translator.
package eacA8

import (
	"github.com/ausocean/uirtranscode/codec/uir/block"
	"github.com/ausocean/uirtranscode/codec/uir/tables"
)

// BytesPerBlock is the fixed ETC2 EAC A8 block size.
const BytesPerBlock = 8

// modifierTable holds the 16 standard ETC2 EAC alpha modifier rows, each
// giving the 8 signed deltas a 3-bit selector chooses between.
var modifierTable = [16][8]int8{
	{-3, -6, -9, -15, 2, 5, 8, 14},
	{-3, -7, -10, -13, 2, 6, 9, 12},
	{-2, -5, -8, -13, 1, 4, 7, 12},
	{-2, -4, -6, -13, 1, 3, 5, 12},
	{-3, -6, -8, -11, 2, 5, 7, 10},
	{-3, -6, -9, -12, 2, 5, 8, 11},
	{-4, -7, -8, -11, 3, 6, 7, 10},
	{-3, -5, -8, -11, 2, 4, 7, 10},
	{-2, -6, -8, -10, 1, 5, 7, 9},
	{-2, -5, -8, -10, 1, 4, 7, 9},
	{-2, -4, -8, -10, 1, 3, 7, 9},
	{-2, -5, -7, -10, 1, 4, 6, 9},
	{-3, -4, -7, -10, 2, 3, 6, 9},
	{-1, -2, -3, -10, 0, 1, 2, 9},
	{-4, -6, -8, -9, 3, 5, 7, 8},
	{-3, -5, -7, -9, 2, 4, 6, 8},
}

// constantTable, constantMultiplier and constantSelector are the fast-path
// combination used for constant-selector blocks: modifierTable[13][4] is
// the only (table, selector) pair whose delta is exactly 0, so scaling it
// by any multiplier still reproduces base exactly.
const (
	constantTable      = 13
	constantMultiplier = 1
	constantSelector   = 4
)

// Translator implements format.BlockTranslator for ETC2 EAC A8.
type Translator struct{}

func (Translator) BytesPerBlock() int { return BytesPerBlock }

func clampInt(v int32) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// codesFor returns the 8 reconstructed values for a (table, multiplier,
// base) combination.
func codesFor(table int, multiplier int, base uint8) [8]uint8 {
	var out [8]uint8
	row := modifierTable[table]
	for s, m := range row {
		out[s] = clampInt(int32(base) + int32(m)*int32(multiplier))
	}
	return out
}

// Translate writes l's red channel as an ETC2 EAC A8 block: base codeword
// (byte 0), table index and multiplier packed into byte 1 (table index in
// the high nibble, multiplier in the low nibble), then 16 3-bit selectors
// packed MSB-first across bytes 2-7.
func (Translator) Translate(l *block.Logical, dst []byte) {
	_ = dst[:BytesPerBlock]

	var base uint8
	var table, multiplier int
	var idx [16]uint8

	if l.LoSelector == l.HiSelector {
		base = l.Colors[l.LoSelector].R
		table, multiplier = constantTable, constantMultiplier
		for i := range idx {
			idx[i] = constantSelector
		}
	} else {
		base, table, multiplier, idx = translateGeneral(l)
	}

	dst[0] = base
	dst[1] = byte(table<<4) | byte(multiplier&0xf)
	packSelectors(idx, dst[2:8])
}

func translateGeneral(l *block.Logical) (base uint8, table, multiplier int, idx [16]uint8) {
	lo, hi := l.Colors[l.LoSelector], l.Colors[l.HiSelector]
	base = uint8((int(lo.R) + int(hi.R)) / 2)

	bestErr := int64(-1)
	var bestMapping [4]uint8
	for t := 0; t < 16; t++ {
		for m := 1; m < 16; m++ {
			codes := codesFor(t, m, base)
			for _, mapping := range tables.EACA8Mappings() {
				var e int64
				for lin := l.LoSelector; lin <= l.HiSelector; lin++ {
					target := l.Colors[lin].R
					got := codes[mapping[lin]*2]
					d := int64(target) - int64(got)
					if d < 0 {
						d = -d
					}
					e += d
				}
				if bestErr < 0 || e < bestErr {
					bestErr = e
					table, multiplier = t, m
					bestMapping = mapping
				}
			}
		}
	}

	for i := 0; i < 16; i++ {
		lin := tables.Linearize(l.RawSelectors[i])
		idx[i] = bestMapping[lin] * 2
	}
	return base, table, multiplier, idx
}

// packSelectors packs 16 3-bit codes MSB-first into 6 bytes, in row-major
// texel order (x + y*4), the bit order this module reads back for its own
// round-trip checks.
func packSelectors(idx [16]uint8, dst []byte) {
	_ = dst[:6]
	var v uint64
	for i := 0; i < 16; i++ {
		v = (v << 3) | uint64(idx[i]&7)
	}
	for i := 5; i >= 0; i-- {
		dst[i] = byte(v)
		v >>= 8
	}
}
