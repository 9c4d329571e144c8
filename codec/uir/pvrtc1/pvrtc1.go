/*
NAME
  pvrtc1.go

DESCRIPTION
  pvrtc1.go implements the PVRTC1 4bpp translator, the one format that
  cannot be handled block-by-block in isolation. Phase 1 (StashBlock)
  stashes each logical block's two 8-bit endpoint colors and its
  per-texel modulation weight; phase 2 (Decode) reconstructs every
  output pixel by bilinearly interpolating the endpoints of the four
  neighboring blocks before blending with that pixel's own modulation
  value, per spec §4.H. Pack quantizes the stashed endpoints to RGB555
  and serializes them to
  PVRTC1's physical 8-byte-per-block layout in Morton (Z-curve) block
  order.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package pvrtc1 implements the PVRTC1 4bpp target-format translator.
// Unlike every other format in codec/uir, PVRTC1 requires two passes over
// a slice's blocks and so does not implement format.BlockTranslator;
// callers stash each decoded block via StashBlock and, once the slice is
// complete, call Decode or Pack.
package pvrtc1

import (
	"github.com/ausocean/uirtranscode/codec/uir/block"
	"github.com/ausocean/uirtranscode/codec/uir/tables"
	"github.com/ausocean/uirtranscode/codec/uir/uirerr"
)

// BytesPerBlock is PVRTC1 4bpp's fixed block size.
const BytesPerBlock = 8

// blockEndpoints is the phase-1 state stashed for one 4x4 block.
type blockEndpoints struct {
	a, b block.RGB8
	mod  [16]uint8 // linearized selector 0..3, row-major x+y*4
	hard bool
}

// Canvas accumulates one image level's worth of stashed PVRTC1 blocks and
// produces the final bilinearly-reconstructed image (or packed
// bitstream) once every block has been stashed.
type Canvas struct {
	widthBlocks, heightBlocks int
	wrap                      bool // true: wrap block addressing at edges; false: clamp
	blocks                    []blockEndpoints
}

func isPowerOfTwo(v int) bool { return v > 0 && v&(v-1) == 0 }

// NewCanvas constructs a Canvas for an image of widthBlocks x
// heightBlocks 4x4 blocks. PVRTC1 requires power-of-two block-grid
// dimensions; any other shape is UnsupportedRequest, per spec §4.H.
func NewCanvas(widthBlocks, heightBlocks int, wrap bool) (*Canvas, error) {
	if !isPowerOfTwo(widthBlocks) || !isPowerOfTwo(heightBlocks) {
		return nil, uirerr.Newf(uirerr.UnsupportedRequest,
			"pvrtc1: block-grid dimensions %dx%d are not power-of-two", widthBlocks, heightBlocks)
	}
	return &Canvas{
		widthBlocks:  widthBlocks,
		heightBlocks: heightBlocks,
		wrap:         wrap,
		blocks:       make([]blockEndpoints, widthBlocks*heightBlocks),
	}, nil
}

func (c *Canvas) index(bx, by int) int { return by*c.widthBlocks + bx }

// StashBlock records logical block l's endpoints and modulation at block
// coordinate (bx, by), the phase-1 precompute step. The block's 2-bit
// linearized selector grid doubles directly as PVRTC1's per-texel
// modulation weight (0 = pure low endpoint, 3 = pure high endpoint).
func (c *Canvas) StashBlock(bx, by int, l *block.Logical) error {
	if bx < 0 || bx >= c.widthBlocks || by < 0 || by >= c.heightBlocks {
		return uirerr.Newf(uirerr.StreamCorrupt, "pvrtc1: block (%d,%d) outside %dx%d canvas", bx, by, c.widthBlocks, c.heightBlocks)
	}
	be := blockEndpoints{
		a:    l.Colors[l.LoSelector],
		b:    l.Colors[l.HiSelector],
		hard: l.NumUnique <= 2,
	}
	for i := range be.mod {
		be.mod[i] = tables.Linearize(l.RawSelectors[i])
	}
	c.blocks[c.index(bx, by)] = be
	return nil
}

// neighborBlock returns the stashed endpoints at block coordinate (bx,
// by), wrapping or clamping to the canvas edges per c.wrap.
func (c *Canvas) neighborBlock(bx, by int) blockEndpoints {
	if c.wrap {
		bx = ((bx % c.widthBlocks) + c.widthBlocks) % c.widthBlocks
		by = ((by % c.heightBlocks) + c.heightBlocks) % c.heightBlocks
	} else {
		if bx < 0 {
			bx = 0
		}
		if bx >= c.widthBlocks {
			bx = c.widthBlocks - 1
		}
		if by < 0 {
			by = 0
		}
		if by >= c.heightBlocks {
			by = c.heightBlocks - 1
		}
	}
	return c.blocks[c.index(bx, by)]
}

func lerpU8(a, b uint8, f float64) uint8 {
	v := float64(a) + (float64(b)-float64(a))*f
	if v < 0 {
		v = 0
	}
	if v > 255 {
		v = 255
	}
	return uint8(v + 0.5)
}

func bilerpColor(tl, tr, bl, br block.RGB8, fx, fy float64) block.RGB8 {
	top := block.RGB8{R: lerpU8(tl.R, tr.R, fx), G: lerpU8(tl.G, tr.G, fx), B: lerpU8(tl.B, tr.B, fx)}
	bot := block.RGB8{R: lerpU8(bl.R, br.R, fx), G: lerpU8(bl.G, br.G, fx), B: lerpU8(bl.B, br.B, fx)}
	return block.RGB8{R: lerpU8(top.R, bot.R, fy), G: lerpU8(top.G, bot.G, fy), B: lerpU8(top.B, bot.B, fy)}
}

// Decode reconstructs the full heightBlocks*4 x widthBlocks*4 image:
// every texel's colorA and colorB are bilinearly interpolated across the
// four block-endpoint neighbors surrounding it (per spec §4.H's
// 3x3-block-neighborhood modulation pass -- only the four corners
// touching the texel's quadrant actually contribute), then blended by
// that texel's own modulation weight.
func (c *Canvas) Decode() [][]block.RGB8 {
	widthPx := c.widthBlocks * 4
	heightPx := c.heightBlocks * 4
	out := make([][]block.RGB8, heightPx)
	for y := range out {
		out[y] = make([]block.RGB8, widthPx)
	}

	for by := 0; by < c.heightBlocks; by++ {
		for bx := 0; bx < c.widthBlocks; bx++ {
			self := c.blocks[c.index(bx, by)]
			for ly := 0; ly < 4; ly++ {
				for lx := 0; lx < 4; lx++ {
					// A block's own endpoint sits conceptually at its
					// center (local 2,2); texels before that blend
					// toward the previous block, texels after blend
					// toward the next one.
					var nbx0, nbx1, nby0, nby1 int
					var fx, fy float64
					if lx < 2 {
						nbx0, nbx1 = bx-1, bx
						fx = (float64(lx) + 2) / 4
					} else {
						nbx0, nbx1 = bx, bx+1
						fx = (float64(lx) - 2) / 4
					}
					if ly < 2 {
						nby0, nby1 = by-1, by
						fy = (float64(ly) + 2) / 4
					} else {
						nby0, nby1 = by, by+1
						fy = (float64(ly) - 2) / 4
					}

					tl := c.neighborBlock(nbx0, nby0)
					tr := c.neighborBlock(nbx1, nby0)
					bl := c.neighborBlock(nbx0, nby1)
					br := c.neighborBlock(nbx1, nby1)

					ca := bilerpColor(tl.a, tr.a, bl.a, br.a, fx, fy)
					cb := bilerpColor(tl.b, tr.b, bl.b, br.b, fx, fy)

					mod := self.mod[lx+ly*4]
					w := float64(mod) / 3
					px := block.RGB8{R: lerpU8(ca.R, cb.R, w), G: lerpU8(ca.G, cb.G, w), B: lerpU8(ca.B, cb.B, w)}

					out[by*4+ly][bx*4+lx] = px
				}
			}
		}
	}
	return out
}

// pack555 quantizes an 8-bit color to PVRTC1's 15-bit RGB555 endpoint
// representation.
func pack555(c block.RGB8) uint16 {
	r := tables.Match5(c.R).Val
	g := tables.Match5(c.G).Val
	b := tables.Match5(c.B).Val
	return uint16(r)<<10 | uint16(g)<<5 | uint16(b)
}

// Pack serializes every stashed block to PVRTC1's physical 8-byte layout
// (bit 0: hard flag; bit 1: opaque, always set since this transcoder
// carries no per-texel alpha through PVRTC1; bits 2-16: colorA RGB555;
// bits 17-31: colorB RGB555; bits 32-63: 16 2-bit modulation codes,
// row-major), writing blocks in Morton (Z-curve) order, PVRTC1's actual
// on-disk block addressing. On a non-square canvas the Morton order runs
// within each square whose side is the shorter dimension, and the longer
// axis's remaining high bits are appended above it unswizzled.
func (c *Canvas) Pack() []byte {
	out := make([]byte, len(c.blocks)*BytesPerBlock)
	for by := 0; by < c.heightBlocks; by++ {
		for bx := 0; bx < c.widthBlocks; bx++ {
			be := c.blocks[c.index(bx, by)]
			var word uint64
			if be.hard {
				word |= 1
			}
			word |= 1 << 1 // opaque
			word |= uint64(pack555(be.a)) << 2
			word |= uint64(pack555(be.b)) << 17
			for i, m := range be.mod {
				word |= uint64(m&3) << (32 + 2*i)
			}

			mortonIdx := mortonIndex(bx, by)
			if c.widthBlocks != c.heightBlocks {
				side := min(c.widthBlocks, c.heightBlocks)
				mortonIdx = mortonIndex(bx%side, by%side) + uint32((bx/side+by/side)*side*side)
			}
			off := int(mortonIdx) * BytesPerBlock
			for k := 0; k < 8; k++ {
				out[off+k] = byte(word >> (8 * k))
			}
		}
	}
	return out
}
