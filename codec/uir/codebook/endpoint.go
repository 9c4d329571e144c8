/*
NAME
  endpoint.go

DESCRIPTION
  endpoint.go decodes the endpoint codebook: a Huffman/delta-coded stream
  of (color5, inten5) entries, predicted from the previous entry's values
  with a three-zone color-delta model selected by the previous channel
  value.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package codebook decodes the UIR endpoint and selector codebooks
// (component D): two independently Huffman-coded streams that are fully
// built once, at StartTranscoding time, and read-only thereafter.
package codebook

import (
	"fmt"

	"github.com/ausocean/uirtranscode/bits"
	"github.com/ausocean/uirtranscode/codec/uir/huffman"
	"github.com/ausocean/uirtranscode/codec/uir/tables"
)

// Endpoint is an immutable (color5, inten5) pair. Color5 components and
// Inten5 are always in range after a successful decode.
type Endpoint struct {
	Color5 [3]uint8 // R, G, B, each in [0,31]
	Inten5 uint8    // in [0,7]
}

// MaxCodebookLen is the header-bounded maximum length of either codebook
// (2^17), per spec §3.
const MaxCodebookLen = 1 << 17

// DecodeEndpoints reads the endpoint codebook stream and returns
// numEndpoints entries in stream order.
func DecodeEndpoints(r *bits.Reader, numEndpoints int) ([]Endpoint, error) {
	if numEndpoints < 0 || numEndpoints > MaxCodebookLen {
		return nil, fmt.Errorf("codebook: invalid endpoint count %d", numEndpoints)
	}

	dm0, err := huffman.ReadTable(r)
	if err != nil {
		return nil, fmt.Errorf("codebook: color delta model 0: %w", err)
	}
	dm1, err := huffman.ReadTable(r)
	if err != nil {
		return nil, fmt.Errorf("codebook: color delta model 1: %w", err)
	}
	dm2, err := huffman.ReadTable(r)
	if err != nil {
		return nil, fmt.Errorf("codebook: color delta model 2: %w", err)
	}
	im, err := huffman.ReadTable(r)
	if err != nil {
		return nil, fmt.Errorf("codebook: intensity delta model: %w", err)
	}
	if numEndpoints > 1 && (!dm0.IsValid() || !dm1.IsValid() || !dm2.IsValid() || !im.IsValid()) {
		return nil, fmt.Errorf("codebook: endpoint delta model invalid for %d entries", numEndpoints)
	}

	grayscale, err := r.GetBits(1)
	if err != nil {
		return nil, fmt.Errorf("codebook: grayscale flag: %w", err)
	}

	if Log != nil {
		Log.Debug("decoding endpoint codebook", "numEndpoints", numEndpoints)
	}

	out := make([]Endpoint, numEndpoints)
	prevColor := [3]uint8{16, 16, 16}
	var prevInten uint8

	numChannels := 3
	if grayscale != 0 {
		numChannels = 1
	}

	for i := 0; i < numEndpoints; i++ {
		delta, err := r.DecodeHuffman(im)
		if err != nil {
			return nil, fmt.Errorf("codebook: intensity delta at entry %d: %w", i, err)
		}
		inten := uint8((uint32(prevInten) + delta) & 7)
		prevInten = inten

		var color [3]uint8
		for c := 0; c < numChannels; c++ {
			var model *huffman.Table
			switch tables.ColorDeltaZone(prevColor[c]) {
			case 0:
				model = dm0
			case 1:
				model = dm1
			default:
				model = dm2
			}
			d, err := r.DecodeHuffman(model)
			if err != nil {
				return nil, fmt.Errorf("codebook: color delta at entry %d channel %d: %w", i, c, err)
			}
			v := uint8((uint32(prevColor[c]) + d) & 31)
			color[c] = v
			prevColor[c] = v
		}
		if grayscale != 0 {
			color[1] = color[0]
			color[2] = color[0]
			prevColor[1] = color[0]
			prevColor[2] = color[0]
		}

		out[i] = Endpoint{Color5: color, Inten5: inten}
	}

	r.Stop()
	return out, nil
}
