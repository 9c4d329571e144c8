/*
NAME
  etc1.go

DESCRIPTION
  etc1.go implements the ETC1 format translator: an identity repack of the
  source logical block into an 8-byte ETC1 block (flip bit and diff bit
  forced to 1, the decoded color5/inten5 duplicated into both subblocks,
  raw 2-bit selectors packed into ETC1's non-trivial bit layout). It also
  provides DecodeToRGB, an independent ETC1 block decoder used to satisfy
  the cross-decoder equality property (spec §8 property 5).

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package etc1 implements the ETC1 target-format translator.
package etc1

import (
	"github.com/ausocean/uirtranscode/codec/uir/block"
	"github.com/ausocean/uirtranscode/codec/uir/tables"
)

// BytesPerBlock is the fixed ETC1 block size.
const BytesPerBlock = 8

// Translator implements format.BlockTranslator for ETC1.
type Translator struct{}

func (Translator) BytesPerBlock() int { return BytesPerBlock }

// isePosition returns the within-plane byte offset (0 or 1) and bit shift
// for texel (x, y)'s selector bit, within ETC1's two 16-bit selector
// planes (MSB plane at bytes [4:6), LSB plane at bytes [6:8)), per spec
// §9's function-over-table guidance for g_etc1_x_selector_unpack.
func isePosition(x, y int) (planeByteOfs, shift int) {
	bit := x*4 + y
	return bit / 8, bit % 8
}

// Translate writes l as a flip=1, diff=1 ETC1 block: subblock 1 occupies
// bits [39:63] (base color + intensity table) and selector data occupies
// bytes [4:8), matching the standard ETC1 wire layout with flip forcing
// both 4x4 subblocks to be treated as a single logical 4x4 block.
func (Translator) Translate(l *block.Logical, dst []byte) {
	_ = dst[:BytesPerBlock] // bounds check hint

	// Bytes 0-2 (bits 63-40): one byte per channel in ETC1's
	// differential-color layout, the subblock 1 5-bit base in bits 7-3 and
	// the subblock 2 3-bit delta in bits 2-0; since both subblocks share
	// one endpoint, the deltas are all 0.
	r5, g5, b5 := l.Color5[0]&0x1f, l.Color5[1]&0x1f, l.Color5[2]&0x1f
	dst[0] = r5 << 3 // base R5 (subblock 1) | 0 delta bits
	dst[1] = g5 << 3
	dst[2] = b5 << 3

	// Byte 3: intensity tables (3 bits each subblock), flip bit, diff bit.
	inten := l.Inten5 & 7
	dst[3] = (inten << 5) | (inten << 2) | (1 << 1) /*flip*/ | 1 /*diff*/

	dst[4] = 0
	dst[5] = 0
	dst[6] = 0
	dst[7] = 0

	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			raw := l.RawSelectors[x+y*4]
			planeByteOfs, shift := isePosition(x, y)
			lsb := raw & 1
			msb := (raw >> 1) & 1
			dst[4+planeByteOfs] |= msb << shift
			dst[6+planeByteOfs] |= lsb << shift
		}
	}
}

// DecodeToRGB independently decodes an ETC1 block produced by Translate
// back to 16 RGB8 pixels, used only to cross-check the transcoder's own
// internal ETC1S synthesis (spec §8 property 5); it does not participate
// in the transcode path.
func DecodeToRGB(src []byte) [16]block.RGB8 {
	_ = src[:BytesPerBlock]

	r5 := src[0] >> 3
	g5 := src[1] >> 3
	b5 := src[2] >> 3
	inten := (src[3] >> 5) & 7

	colors := block.Colors([3]uint8{r5, g5, b5}, inten)

	var out [16]block.RGB8
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			planeByteOfs, shift := isePosition(x, y)
			msb := (src[4+planeByteOfs] >> shift) & 1
			lsb := (src[6+planeByteOfs] >> shift) & 1
			raw := lsb | (msb << 1)
			out[x+y*4] = colors[tables.Linearize(raw)]
		}
	}
	return out
}
