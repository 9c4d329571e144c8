/*
NAME
  read.go

DESCRIPTION
  read.go reads a canonical Huffman table's code-length vector from a
  bits.Reader and constructs the resulting Table. The on-disk encoding is
  a VLC-coded symbol count followed by a 5-bit code length per symbol (0
  meaning the symbol is unused); this keeps table transmission simple and
  uniform across every Huffman model the codebook and slice decoders use
  (endpoint/intensity deltas, selector index, endpoint predictor, RLE
  counts, and selector-history modifiers).

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package huffman

import (
	"fmt"

	"github.com/ausocean/uirtranscode/bits"
)

// tableCountChunkBits is the VLC chunk width used to transmit a table's
// symbol count, matching the 7-bit chunk width used elsewhere in the
// format for open-ended counts (codebook entry counts, selector RLE run
// extensions); endpoint predictor repeat counts use 4-bit chunks instead.
const tableCountChunkBits = 7

// codeLenBits is the fixed field width used to transmit each symbol's
// code length (0..16 fits in 5 bits).
const codeLenBits = 5

// ReadTable reads one canonical Huffman table from r: a symbol count
// followed by one 5-bit code length per symbol, then builds the
// corresponding decoding Table.
func ReadTable(r *bits.Reader) (*Table, error) {
	numSyms, err := r.DecodeVLC(tableCountChunkBits)
	if err != nil {
		return nil, fmt.Errorf("huffman: reading table symbol count: %w", err)
	}
	if numSyms == 0 {
		return &Table{}, nil
	}
	lengths := make([]uint8, numSyms)
	for i := range lengths {
		v, err := r.GetBits(codeLenBits)
		if err != nil {
			return nil, fmt.Errorf("huffman: reading code length %d/%d: %w", i, numSyms, err)
		}
		lengths[i] = uint8(v)
	}
	t, err := NewTable(lengths)
	if err != nil {
		return nil, fmt.Errorf("huffman: constructing table: %w", err)
	}
	return t, nil
}
