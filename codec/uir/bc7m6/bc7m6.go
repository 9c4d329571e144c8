/*
NAME
  bc7m6.go

DESCRIPTION
  bc7m6.go implements the BC7 mode 6 format translator: a single-subset,
  7-bit-plus-shared-p-bit RGBA endpoint pair with 16 4-bit texel indices
  (the first index bit-starved to 3 bits per BC7's anchor-index
  convention), alpha forced opaque, per spec §4.G.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package bc7m6 implements the BC7 mode 6 target-format translator.
package bc7m6

import (
	"github.com/ausocean/uirtranscode/codec/uir/block"
	"github.com/ausocean/uirtranscode/codec/uir/tables"
)

// BytesPerBlock is the fixed BC7 block size.
const BytesPerBlock = 16

// opaqueRaw7 is the 7-bit alpha endpoint value spec §4.G forces both
// endpoints to, leaving only the shared p-bit to decide between 8-bit
// alpha 254 and 255.
const opaqueRaw7 = 127

// weights16 are BC7's standard 16-level index interpolation weights (out
// of 64), shared across all BC7 modes' index decoding.
var weights16 = [16]int32{0, 4, 9, 13, 17, 21, 26, 30, 34, 38, 43, 47, 51, 55, 60, 64}

// Translator implements format.BlockTranslator for BC7 mode 6.
type Translator struct{}

func (Translator) BytesPerBlock() int { return BytesPerBlock }

// endpoint7 is one BC7 mode 6 endpoint: 7-bit R, G, B plus the shared
// p-bit that, appended as the component LSB, brings each channel to 8
// bits exactly.
type endpoint7 struct {
	r, g, b, p uint8
}

func (e endpoint7) expand() block.RGB8 {
	return block.RGB8{
		R: tables.Expand7To8(e.r, e.p),
		G: tables.Expand7To8(e.g, e.p),
		B: tables.Expand7To8(e.b, e.p),
	}
}

// Translate writes l as a BC7 mode 6 block.
func (Translator) Translate(l *block.Logical, dst []byte) {
	_ = dst[:BytesPerBlock]

	var e0, e1 endpoint7
	var idx [16]uint8

	if l.NumUnique <= 2 {
		// Two-unique-selectors fast path: assign the block's two extreme
		// colors directly to the two endpoints (index 0 and index 15),
		// reproducing them exactly with no interpolation error.
		e0, e1 = quantizeEndpoints(l.Colors[l.LoSelector], l.Colors[l.HiSelector])
		for i := 0; i < 16; i++ {
			lin := tables.Linearize(l.RawSelectors[i])
			if lin == l.HiSelector {
				idx[i] = 15
			} else {
				idx[i] = 0
			}
		}
	} else {
		e0, e1, idx = translateGeneral(l)
	}

	// BC7 requires the subset's anchor (texel 0) index to have its MSB
	// clear (stored in only 3 bits); swap endpoint orientation and invert
	// every index if that is not already the case.
	if idx[0] >= 8 {
		e0, e1 = e1, e0
		for i := range idx {
			idx[i] = 15 - idx[i]
		}
	}

	w := bitWriter{buf: dst}
	w.put(1<<6, 7) // mode 6: six 0 bits then a 1 bit, LSB-first.
	w.put(uint32(e0.r), 7)
	w.put(uint32(e1.r), 7)
	w.put(uint32(e0.g), 7)
	w.put(uint32(e1.g), 7)
	w.put(uint32(e0.b), 7)
	w.put(uint32(e1.b), 7)
	w.put(opaqueRaw7, 7)
	w.put(opaqueRaw7, 7)
	w.put(uint32(e0.p), 1)
	w.put(uint32(e1.p), 1)
	w.put(uint32(idx[0]), 3)
	for i := 1; i < 16; i++ {
		w.put(uint32(idx[i]), 4)
	}
}

// quantizeEndpoints picks the shared-p-bit combination for (lo, hi)
// minimizing total RGB quantization error, searching all 4 orientations
// per spec §4.G's "two quantized endpoint orientations".
func quantizeEndpoints(lo, hi block.RGB8) (e0, e1 endpoint7) {
	bestErr := int64(-1)
	for p0 := uint8(0); p0 < 2; p0++ {
		for p1 := uint8(0); p1 < 2; p1++ {
			mr0, mg0, mb0 := tables.Match7(lo.R, p0), tables.Match7(lo.G, p0), tables.Match7(lo.B, p0)
			mr1, mg1, mb1 := tables.Match7(hi.R, p1), tables.Match7(hi.G, p1), tables.Match7(hi.B, p1)
			e := int64(mr0.Err) + int64(mg0.Err) + int64(mb0.Err) + int64(mr1.Err) + int64(mg1.Err) + int64(mb1.Err)
			if bestErr < 0 || e < bestErr {
				bestErr = e
				e0 = endpoint7{r: mr0.Val, g: mg0.Val, b: mb0.Val, p: p0}
				e1 = endpoint7{r: mr1.Val, g: mg1.Val, b: mb1.Val, p: p1}
			}
		}
	}
	return
}

// translateGeneral handles blocks using more than 2 unique selectors: it
// searches all four (p0, p1) combinations and, per combination, the canonical
// monotonic mapping permutations (doubled onto the 16-level index space,
// per spec §9's representative-subset simplification) for the
// combination minimizing total RGB error over the texels actually used.
func translateGeneral(l *block.Logical) (e0, e1 endpoint7, idx [16]uint8) {
	lo, hi := l.Colors[l.LoSelector], l.Colors[l.HiSelector]

	bestErr := int64(-1)
	var bestE0, bestE1 endpoint7
	var bestMapping [4]uint8

	for p0 := uint8(0); p0 < 2; p0++ {
		for p1 := uint8(0); p1 < 2; p1++ {
			mr0, mg0, mb0 := tables.Match7(lo.R, p0), tables.Match7(lo.G, p0), tables.Match7(lo.B, p0)
			mr1, mg1, mb1 := tables.Match7(hi.R, p1), tables.Match7(hi.G, p1), tables.Match7(hi.B, p1)
			cand0 := endpoint7{r: mr0.Val, g: mg0.Val, b: mb0.Val, p: p0}
			cand1 := endpoint7{r: mr1.Val, g: mg1.Val, b: mb1.Val, p: p1}
			codesR := interp16(tables.Expand7To8(cand0.r, p0), tables.Expand7To8(cand1.r, p1))
			codesG := interp16(tables.Expand7To8(cand0.g, p0), tables.Expand7To8(cand1.g, p1))
			codesB := interp16(tables.Expand7To8(cand0.b, p0), tables.Expand7To8(cand1.b, p1))

			for _, m := range tables.BC7M6Mappings() {
				var e int64
				for lin := l.LoSelector; lin <= l.HiSelector; lin++ {
					code := m[lin] * 2
					target := l.Colors[lin]
					e += chErr(target.R, codesR[code]) + chErr(target.G, codesG[code]) + chErr(target.B, codesB[code])
				}
				if bestErr < 0 || e < bestErr {
					bestErr = e
					bestE0, bestE1 = cand0, cand1
					bestMapping = m
				}
			}
		}
	}

	for i := 0; i < 16; i++ {
		lin := tables.Linearize(l.RawSelectors[i])
		idx[i] = bestMapping[lin] * 2
	}
	return bestE0, bestE1, idx
}

func chErr(a, b uint8) int64 {
	d := int64(a) - int64(b)
	if d < 0 {
		d = -d
	}
	return d
}

// interp16 returns the 16 BC7-decoded channel values for endpoints e0
// (weight 0) and e1 (weight 64), using BC7's standard weight table.
func interp16(e0, e1 uint8) [16]uint8 {
	var out [16]uint8
	for i, w := range weights16 {
		out[i] = uint8((int32(64-w)*int32(e0) + int32(w)*int32(e1) + 32) >> 6)
	}
	return out
}

// bitWriter packs values into dst LSB-first, matching the bitstream
// convention used throughout this module's readers.
type bitWriter struct {
	buf []byte
	pos int
}

func (w *bitWriter) put(v uint32, n int) {
	for i := 0; i < n; i++ {
		bit := byte((v >> uint(i)) & 1)
		byteIdx := w.pos / 8
		shift := uint(w.pos % 8)
		w.buf[byteIdx] |= bit << shift
		w.pos++
	}
}
