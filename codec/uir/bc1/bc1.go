/*
NAME
  bc1.go

DESCRIPTION
  bc1.go implements the BC1 format translator: two RGB565 endpoints plus a
  2-bit-per-texel selector, handling the constant-selector, extreme
  two-selector and general-case regimes described in spec §4.G.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package bc1 implements the BC1 target-format translator.
package bc1

import (
	"encoding/binary"

	"github.com/ausocean/uirtranscode/codec/uir/block"
	"github.com/ausocean/uirtranscode/codec/uir/tables"
)

// BytesPerBlock is the fixed BC1 block size.
const BytesPerBlock = 8

// Translator implements format.BlockTranslator for BC1.
type Translator struct {
	// ForbidThreeColorBlocks forces every output block into 4-color mode
	// (low > high), as required for the color half of a BC3 block (spec
	// §8 property 6, cDecodeFlagsBC1ForbidThreeColorBlocks).
	ForbidThreeColorBlocks bool
}

func (Translator) BytesPerBlock() int { return BytesPerBlock }

func pack565(r5, g6, b5 uint8) uint16 {
	return uint16(r5&0x1f)<<11 | uint16(g6&0x3f)<<5 | uint16(b5&0x1f)
}

// Translate implements the three regimes from spec §4.G.
func (t Translator) Translate(l *block.Logical, dst []byte) {
	_ = dst[:BytesPerBlock]

	var low, high uint16
	var selBits uint32

	switch {
	case l.LoSelector == l.HiSelector:
		// Constant-selector block: one reconstructed color, matched via
		// the exhaustive-search endpoint tables, emitted with a solid
		// selector pattern (0xAA: every texel code 2, which with equal
		// endpoints decodes to that same color).
		c := l.Colors[l.LoSelector]
		mr := tables.Match5(c.R)
		mg := tables.Match6(c.G)
		mb := tables.Match5(c.B)
		low = pack565(mr.Val, mg.Val, mb.Val)
		high = low
		selBits = 0xAAAAAAAA

	case l.Inten5 >= 7 && isExtremeTwoSelector(l):
		low, high, selBits = translateExtremeTwoSelector(l)

	default:
		low, high, selBits = translateGeneral(l)
	}

	if t.ForbidThreeColorBlocks && low == high {
		if low == 0xFFFF {
			low--
		} else {
			low++
		}
	}
	if t.ForbidThreeColorBlocks && low <= high {
		low, high = swapForFourColor(low, high)
		selBits = invertSelectors(selBits)
	}

	binary.LittleEndian.PutUint16(dst[0:2], low)
	binary.LittleEndian.PutUint16(dst[2:4], high)
	binary.LittleEndian.PutUint32(dst[4:8], selBits)
}

// isExtremeTwoSelector reports whether the block uses only linearized
// selectors {0,3} (uniqueness 2), the regime spec §4.G calls out for the
// MATCH*_EQ0 tuned tables.
func isExtremeTwoSelector(l *block.Logical) bool {
	if l.NumUnique != 2 {
		return false
	}
	return l.LoSelector == 0 && l.HiSelector == 3
}

// swapForFourColor swaps endpoints so the packed low value exceeds high,
// which BC1 decoders interpret as 4-color (non-punch-through) mode.
func swapForFourColor(low, high uint16) (uint16, uint16) {
	return high, low
}

// invertSelectors swaps selector codes 0<->1 and 2<->3 per texel, the
// correction needed after an endpoint swap so the decoded colors are
// unchanged (BC1_MAP2, the inverse mapping named in spec §4.G).
func invertSelectors(sel uint32) uint32 {
	var out uint32
	for i := 0; i < 16; i++ {
		v := (sel >> (2 * i)) & 3
		var nv uint32
		switch v {
		case 0:
			nv = 1
		case 1:
			nv = 0
		case 2:
			nv = 3
		case 3:
			nv = 2
		}
		out |= nv << (2 * i)
	}
	return out
}

// candidateEndpoints returns the block's two extreme reconstructed colors
// (at LoSelector and HiSelector), the endpoints every BC1 translation
// regime quantizes and then searches mappings for.
func candidateEndpoints(l *block.Logical) (lo, hi block.RGB8) {
	return l.Colors[l.LoSelector], l.Colors[l.HiSelector]
}

func translateExtremeTwoSelector(l *block.Logical) (low, high uint16, sel uint32) {
	lo, hi := candidateEndpoints(l)
	mlr, mhr := tables.Match5(lo.R), tables.Match5(hi.R)
	mlg, mhg := tables.Match6(lo.G), tables.Match6(hi.G)
	mlb, mhb := tables.Match5(lo.B), tables.Match5(hi.B)
	low = pack565(mlr.Val, mlg.Val, mlb.Val)
	high = pack565(mhr.Val, mhg.Val, mhb.Val)
	for i := 0; i < 16; i++ {
		raw := l.RawSelectors[i]
		lin := tables.Linearize(raw)
		var code uint32
		if lin == l.HiSelector {
			code = 1
		}
		sel |= code << (2 * i)
	}
	return
}

// translateGeneral implements the general case: quantize the block's two
// extreme colors, then search the canonical mapping permutations for the
// one that minimizes total per-channel quantization error across the
// texels actually used, per spec §4.G.
func translateGeneral(l *block.Logical) (low, high uint16, sel uint32) {
	lo, hi := candidateEndpoints(l)
	mlr, mhr := tables.Match5(lo.R), tables.Match5(hi.R)
	mlg, mhg := tables.Match6(lo.G), tables.Match6(hi.G)
	mlb, mhb := tables.Match5(lo.B), tables.Match5(hi.B)

	// Evaluate every canonical mapping by interpolating the 4 BC1 codes
	// from the chosen endpoints and comparing against this block's 4
	// possible reconstructed colors, restricted to [LoSelector,HiSelector]
	// (the only linearized values that actually occur in the block).
	interp := bc1Interp(mlr.Val, mhr.Val, mlg.Val, mhg.Val, mlb.Val, mhb.Val)
	bestErr := int64(-1)
	var bestMapping [4]uint8
	for _, m := range tables.BC1Mappings() {
		var e int64
		for lin := uint8(0); lin < 4; lin++ {
			if lin < l.LoSelector || lin > l.HiSelector {
				continue
			}
			target := l.Colors[lin]
			got := interp[m[lin]]
			e += chErr(target.R, got.R) + chErr(target.G, got.G) + chErr(target.B, got.B)
		}
		if bestErr < 0 || e < bestErr {
			bestErr = e
			bestMapping = m
		}
	}

	low = pack565(mlr.Val, mlg.Val, mlb.Val)
	high = pack565(mhr.Val, mhg.Val, mhb.Val)
	for i := 0; i < 16; i++ {
		raw := l.RawSelectors[i]
		lin := tables.Linearize(raw)
		sel |= uint32(bestMapping[lin]) << (2 * i)
	}
	return
}

func chErr(a, b uint8) int64 {
	d := int64(a) - int64(b)
	if d < 0 {
		d = -d
	}
	return d
}

// bc1Interp returns the 4 BC1-decoded colors for endpoints (lr,lg,lb) and
// (hr,hg,hb), in BC1 code order 0..3 (code 0 = low endpoint, 1 = high
// endpoint, 2/3 = the 2:1/1:2 blends), computed in 4-color mode.
func bc1Interp(lr, hr, lg, hg, lb, hb uint8) [4]block.RGB8 {
	c0 := block.RGB8{R: tables.Expand5To8(lr), G: tables.Expand6To8(lg), B: tables.Expand5To8(lb)}
	c1 := block.RGB8{R: tables.Expand5To8(hr), G: tables.Expand6To8(hg), B: tables.Expand5To8(hb)}
	third := func(a, b uint8, num, den int32) uint8 {
		return uint8((int32(a)*num + int32(b)*(den-num) + den/2) / den)
	}
	c2 := block.RGB8{
		R: third(c0.R, c1.R, 2, 3),
		G: third(c0.G, c1.G, 2, 3),
		B: third(c0.B, c1.B, 2, 3),
	}
	c3 := block.RGB8{
		R: third(c0.R, c1.R, 1, 3),
		G: third(c0.G, c1.G, 1, 3),
		B: third(c0.B, c1.B, 1, 3),
	}
	return [4]block.RGB8{c0, c1, c2, c3}
}
