/*
NAME
  bc4.go

DESCRIPTION
  bc4.go implements the BC4 format translator: a single-channel (red)
  8-bit-endpoint block with 16 3-bit texel indices, in the "alpha_0 >
  alpha_1" 8-level interpolation mode, per spec §4.G.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package bc4 implements the BC4 target-format translator.
package bc4

import (
	"github.com/ausocean/uirtranscode/codec/uir/block"
	"github.com/ausocean/uirtranscode/codec/uir/tables"
)

// BytesPerBlock is the fixed BC4 block size.
const BytesPerBlock = 8

// Translator implements format.BlockTranslator for BC4. It transcodes the
// logical block's red channel only, matching its use as the single-channel
// component of BC5 or the alpha plane of a synthesized BC3 block.
type Translator struct{}

func (Translator) BytesPerBlock() int { return BytesPerBlock }

// Translate writes l's red channel as a BC4 block: two 8-bit endpoints
// (bytes 0-1) followed by 16 3-bit indices packed LSB-first across two
// 24-bit little-endian halves (bytes 2-4, 5-7), per spec §4.G.
func (Translator) Translate(l *block.Logical, dst []byte) {
	_ = dst[:BytesPerBlock]

	e0, e1 := l.Colors[l.HiSelector].R, l.Colors[l.LoSelector].R

	var codes [8]uint8
	var idx [16]uint8

	switch {
	case e0 == e1:
		// Constant-selector (or degenerate) block: a single reconstructed
		// value, every texel assigned index 0.
		codes[0] = e0
		dst[0], dst[1] = e0, e0

	default:
		codes = interp8(e0, e1)
		dst[0], dst[1] = e0, e1
		best := bestMapping(l, codes)
		// BC4 numbers its levels e0, e1, then the six blends from e0
		// toward e1; levelCode maps interp8's level order onto those codes.
		levelCode := [8]uint8{0, 2, 3, 4, 5, 6, 7, 1}
		for i := 0; i < 16; i++ {
			lin := tables.Linearize(l.RawSelectors[i])
			idx[i] = levelCode[best[lin]]
		}
	}

	packIndices(idx, dst[2:8])
}

// interp8 returns the 8 BC4 reconstruction levels for endpoints e0 > e1 in
// monotonic order: level 0 = e0, level 7 = e1, levels 1-6 the 6 linearly
// interpolated values. On the wire, level 7 is BC4 code 1 and level k
// (1..6) is code k+1; Translate applies that mapping.
func interp8(e0, e1 uint8) [8]uint8 {
	var out [8]uint8
	out[0] = e0
	out[7] = e1
	for k := 1; k < 7; k++ {
		v := (int32(7-k)*int32(e0) + int32(k)*int32(e1) + 3) / 7
		out[k] = uint8(v)
	}
	return out
}

// bestMapping searches BC4Mappings for the permutation minimizing total
// absolute error between l's 4 linearized block colors and their mapped
// interpolated code, restricted to the selector range actually used by
// the block.
func bestMapping(l *block.Logical, codes [8]uint8) [4]uint8 {
	bestErr := int64(-1)
	var best [4]uint8
	for _, m := range tables.BC4Mappings() {
		var e int64
		for lin := l.LoSelector; lin <= l.HiSelector; lin++ {
			target := l.Colors[lin].R
			got := codes[m[lin]]
			d := int64(target) - int64(got)
			if d < 0 {
				d = -d
			}
			e += d
		}
		if bestErr < 0 || e < bestErr {
			bestErr = e
			best = m
		}
	}
	return best
}

// packIndices packs 16 3-bit codes into 6 bytes, LSB-first, as two 24-bit
// little-endian halves (texels 0-7, then 8-15), matching BC4/DXT5-alpha's
// wire layout.
func packIndices(idx [16]uint8, dst []byte) {
	_ = dst[:6]
	var lo, hi uint32
	for i := 0; i < 8; i++ {
		lo |= uint32(idx[i]&7) << (3 * i)
	}
	for i := 0; i < 8; i++ {
		hi |= uint32(idx[8+i]&7) << (3 * i)
	}
	dst[0] = byte(lo)
	dst[1] = byte(lo >> 8)
	dst[2] = byte(lo >> 16)
	dst[3] = byte(hi)
	dst[4] = byte(hi >> 8)
	dst[5] = byte(hi >> 16)
}
