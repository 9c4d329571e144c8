/*
NAME
  selector.go

DESCRIPTION
  selector.go decodes the selector codebook under any of its three wire
  encodings (global-codebook, hybrid, raw/delta-raw) and computes each
  entry's derived linearized-selector flags.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package codebook

import (
	"fmt"

	"github.com/ausocean/uirtranscode/bits"
	"github.com/ausocean/uirtranscode/codec/uir/huffman"
	"github.com/ausocean/uirtranscode/codec/uir/tables"
)

// Selector is an immutable 4x4 grid of raw 2-bit ETC1-style selector
// codes, plus derived flags computed over the grid's linearized values.
type Selector struct {
	Raw          [16]uint8 // row-major, x + y*4, raw 2-bit codes
	LoSelector   uint8     // min linearized value over the grid, in [0,3]
	HiSelector   uint8     // max linearized value over the grid, in [0,3]
	NumUnique    uint8     // count of distinct linearized values present
}

func (s *Selector) initFlags() {
	lo, hi := uint8(3), uint8(0)
	seen := [4]bool{}
	for _, raw := range s.Raw {
		lin := tables.Linearize(raw)
		if lin < lo {
			lo = lin
		}
		if lin > hi {
			hi = lin
		}
		seen[lin] = true
	}
	s.LoSelector = lo
	s.HiSelector = hi
	var n uint8
	for _, b := range seen {
		if b {
			n++
		}
	}
	s.NumUnique = n
}

func (s *Selector) set(x, y int, v uint8) { s.Raw[x+y*4] = v & 3 }

func setByteRow(s *Selector, y int, b uint32) {
	for k := 0; k < 4; k++ {
		s.set(k, y, uint8((b>>(k*2))&3))
	}
}

// GlobalCodebook is an externally provided, immutable table of 4x4
// selector grids agreed between encoder and decoder, referenced by index
// from global-codebook and hybrid mode selector entries. The decoder
// never owns or mutates it; see spec §9's "injectable read-only
// reference" design note.
type GlobalCodebook [][16]uint8

// applyModifier returns grid transformed by one of the combinatorial
// rotation/flip/inversion modifiers named in spec §4.D. Bit 0 flips the
// grid horizontally, bit 1 flips it vertically, bit 2 inverts every
// linearized value (raw code substituted for its complement); higher
// bits of a wider modifier field are ignored, which is sufficient since
// there are only 8 distinct combinations of these three flags.
func applyModifier(grid [16]uint8, modifier uint32) [16]uint8 {
	var out [16]uint8
	flipH := modifier&1 != 0
	flipV := modifier&2 != 0
	invert := modifier&4 != 0
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			sx, sy := x, y
			if flipH {
				sx = 3 - x
			}
			if flipV {
				sy = 3 - y
			}
			v := grid[sx+sy*4]
			if invert {
				v = tables.Delinearize(3 - tables.Linearize(v))
			}
			out[x+y*4] = v
		}
	}
	return out
}

// DecodeSelectors reads the selector codebook stream and returns
// numSelectors entries in stream order. global may be nil if the stream
// does not use global-codebook or hybrid mode; if it does and global is
// nil, or a palette index falls outside it, decoding fails.
func DecodeSelectors(r *bits.Reader, numSelectors int, global GlobalCodebook) ([]Selector, error) {
	if numSelectors < 0 || numSelectors > MaxCodebookLen {
		return nil, fmt.Errorf("codebook: invalid selector count %d", numSelectors)
	}

	if Log != nil {
		Log.Debug("decoding selector codebook", "numSelectors", numSelectors)
	}

	out := make([]Selector, numSelectors)

	usedGlobal, err := r.GetBits(1)
	if err != nil {
		return nil, fmt.Errorf("codebook: used-global-selector-cb flag: %w", err)
	}

	if usedGlobal != 0 {
		if err := decodeGlobalMode(r, out, global); err != nil {
			return nil, err
		}
		r.Stop()
		return out, nil
	}

	usedHybrid, err := r.GetBits(1)
	if err != nil {
		return nil, fmt.Errorf("codebook: used-hybrid flag: %w", err)
	}
	if usedHybrid != 0 {
		if err := decodeHybridMode(r, out, global); err != nil {
			return nil, err
		}
		r.Stop()
		return out, nil
	}

	usedRaw, err := r.GetBits(1)
	if err != nil {
		return nil, fmt.Errorf("codebook: used-raw flag: %w", err)
	}
	if usedRaw != 0 {
		if err := decodeRawMode(r, out); err != nil {
			return nil, err
		}
	} else {
		if err := decodeDeltaRawMode(r, out); err != nil {
			return nil, err
		}
	}
	r.Stop()
	return out, nil
}

func lookupGlobal(global GlobalCodebook, palIndex, modIndex uint32) ([16]uint8, error) {
	if int(palIndex) >= len(global) {
		return [16]uint8{}, fmt.Errorf("codebook: global selector palette index %d out of range (size %d)", palIndex, len(global))
	}
	return applyModifier(global[palIndex], modIndex), nil
}

func decodeGlobalMode(r *bits.Reader, out []Selector, global GlobalCodebook) error {
	palBits, err := r.GetBits(4)
	if err != nil {
		return fmt.Errorf("codebook: global pal_bits: %w", err)
	}
	modBits, err := r.GetBits(4)
	if err != nil {
		return fmt.Errorf("codebook: global mod_bits: %w", err)
	}
	var modModel *huffman.Table
	if modBits != 0 {
		modModel, err = huffman.ReadTable(r)
		if err != nil {
			return fmt.Errorf("codebook: global mod model: %w", err)
		}
	}
	for i := range out {
		var palIndex uint32
		if palBits != 0 {
			palIndex, err = r.GetBits(int(palBits))
			if err != nil {
				return fmt.Errorf("codebook: global pal index at %d: %w", i, err)
			}
		}
		var modIndex uint32
		if modBits != 0 {
			modIndex, err = r.DecodeHuffman(modModel)
			if err != nil {
				return fmt.Errorf("codebook: global mod index at %d: %w", i, err)
			}
		}
		grid, err := lookupGlobal(global, palIndex, modIndex)
		if err != nil {
			return err
		}
		out[i].Raw = grid
		out[i].initFlags()
	}
	return nil
}

func decodeHybridMode(r *bits.Reader, out []Selector, global GlobalCodebook) error {
	palBits, err := r.GetBits(4)
	if err != nil {
		return fmt.Errorf("codebook: hybrid pal_bits: %w", err)
	}
	modBits, err := r.GetBits(4)
	if err != nil {
		return fmt.Errorf("codebook: hybrid mod_bits: %w", err)
	}
	flagsModel, err := huffman.ReadTable(r)
	if err != nil {
		return fmt.Errorf("codebook: hybrid use-global-flags model: %w", err)
	}
	if !flagsModel.IsValid() {
		return fmt.Errorf("codebook: hybrid use-global-flags model invalid")
	}
	var modModel *huffman.Table
	if modBits != 0 {
		modModel, err = huffman.ReadTable(r)
		if err != nil {
			return fmt.Errorf("codebook: hybrid mod model: %w", err)
		}
		if !modModel.IsValid() {
			return fmt.Errorf("codebook: hybrid mod model invalid")
		}
	}

	var curFlags uint32
	var remaining int
	for i := range out {
		if remaining == 0 {
			curFlags, err = r.DecodeHuffman(flagsModel)
			if err != nil {
				return fmt.Errorf("codebook: hybrid flags packet at %d: %w", i, err)
			}
			remaining = 8
		}
		remaining--
		useGlobal := curFlags&1 != 0
		curFlags >>= 1

		if useGlobal {
			var palIndex uint32
			if palBits != 0 {
				palIndex, err = r.GetBits(int(palBits))
				if err != nil {
					return fmt.Errorf("codebook: hybrid pal index at %d: %w", i, err)
				}
			}
			var modIndex uint32
			if modBits != 0 {
				modIndex, err = r.DecodeHuffman(modModel)
				if err != nil {
					return fmt.Errorf("codebook: hybrid mod index at %d: %w", i, err)
				}
			}
			grid, err := lookupGlobal(global, palIndex, modIndex)
			if err != nil {
				return err
			}
			out[i].Raw = grid
		} else {
			for j := 0; j < 4; j++ {
				b, err := r.GetBits(8)
				if err != nil {
					return fmt.Errorf("codebook: hybrid raw row %d at entry %d: %w", j, i, err)
				}
				setByteRow(&out[i], j, b)
			}
		}
		out[i].initFlags()
	}
	return nil
}

func decodeRawMode(r *bits.Reader, out []Selector) error {
	for i := range out {
		for j := 0; j < 4; j++ {
			b, err := r.GetBits(8)
			if err != nil {
				return fmt.Errorf("codebook: raw row %d at entry %d: %w", j, i, err)
			}
			setByteRow(&out[i], j, b)
		}
		out[i].initFlags()
	}
	return nil
}

func decodeDeltaRawMode(r *bits.Reader, out []Selector) error {
	model, err := huffman.ReadTable(r)
	if err != nil {
		return fmt.Errorf("codebook: delta-raw model: %w", err)
	}
	if len(out) > 1 && !model.IsValid() {
		return fmt.Errorf("codebook: delta-raw model invalid for %d entries", len(out))
	}

	var prevBytes [4]uint8
	for i := range out {
		if i == 0 {
			for j := 0; j < 4; j++ {
				b, err := r.GetBits(8)
				if err != nil {
					return fmt.Errorf("codebook: delta-raw first entry row %d: %w", j, err)
				}
				prevBytes[j] = uint8(b)
				setByteRow(&out[i], j, b)
			}
			out[i].initFlags()
			continue
		}
		for j := 0; j < 4; j++ {
			d, err := r.DecodeHuffman(model)
			if err != nil {
				return fmt.Errorf("codebook: delta-raw delta at entry %d row %d: %w", i, j, err)
			}
			cur := uint8(d) ^ prevBytes[j]
			prevBytes[j] = cur
			setByteRow(&out[i], j, uint32(cur))
		}
		out[i].initFlags()
	}
	return nil
}
