/*
NAME
  block.go

DESCRIPTION
  block.go synthesizes the four 8-bit RGB "block colors" of a reconstructed
  ETC1S-style logical block from its endpoint and intensity table, per
  spec §4.F.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package block synthesizes logical ETC1S blocks -- the four 8-bit RGB
// "block colors" derived from an endpoint codebook entry -- consumed
// immediately by the format translators in codec/uir/{etc1,bc1,...}.
package block

import "github.com/ausocean/uirtranscode/codec/uir/tables"

// RGB8 is an 8-bit-per-channel color.
type RGB8 struct{ R, G, B uint8 }

func clamp(v int32) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// Colors computes the four block colors for a given endpoint, indexed by
// linearized selector 0..3.
func Colors(color5 [3]uint8, inten5 uint8) [4]RGB8 {
	base := [3]uint8{
		tables.Expand5To8(color5[0]),
		tables.Expand5To8(color5[1]),
		tables.Expand5To8(color5[2]),
	}
	deltas := tables.IntenTable[inten5&7]

	var out [4]RGB8
	for s := 0; s < 4; s++ {
		d := deltas[s]
		out[s] = RGB8{
			R: clamp(int32(base[0]) + d),
			G: clamp(int32(base[1]) + d),
			B: clamp(int32(base[2]) + d),
		}
	}
	return out
}

// Logical is a fully reconstructed block: the four block colors plus the
// 4x4 grid of raw 2-bit selector choices, ready for format translation.
type Logical struct {
	Colors        [4]RGB8  // indexed by linearized selector
	RawSelectors  [16]uint8 // row-major, x + y*4
	LoSelector    uint8
	HiSelector    uint8
	NumUnique     uint8
	Color5        [3]uint8
	Inten5        uint8
}

// PixelColor returns the reconstructed RGB8 color for texel (x, y).
func (l *Logical) PixelColor(x, y int) RGB8 {
	raw := l.RawSelectors[x+y*4]
	return l.Colors[tables.Linearize(raw)]
}
