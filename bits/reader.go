/*
NAME
  reader.go

DESCRIPTION
  reader.go provides a little-endian, LSB-first bit reader used by the UIR
  codebook and slice decoders for fixed-width fields, variable length codes,
  and canonical Huffman symbols.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package bits provides a little-endian, least-significant-bit-first bit
// reader over an in-memory byte slice, as used by the UIR codebook and slice
// bitstreams.
package bits

import (
	"errors"
	"fmt"
)

// ErrUnexpectedEOF is returned when a read would consume more bits than
// remain in the underlying buffer.
var ErrUnexpectedEOF = errors.New("bits: unexpected end of buffer")

// HuffmanDecoder is satisfied by codec/uir/huffman.Table. Kept as an
// interface here so this package has no dependency on the huffman package.
type HuffmanDecoder interface {
	// Decode consumes a variable number of bits from r and returns the
	// decoded symbol.
	Decode(r *Reader) (uint32, error)
}

// Reader reads bits from buf least-significant-bit first within each byte,
// with bytes consumed in stream order (little-endian).
type Reader struct {
	buf     []byte
	bytePos int
	bitBuf  uint64
	bitCnt  uint
}

// NewReader returns a Reader over buf. buf is not copied and must not be
// mutated while the Reader is in use.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// fill ensures at least n bits (n <= 32) are available in the internal bit
// buffer, pulling whole bytes from buf LSB-first.
func (r *Reader) fill(n uint) error {
	for r.bitCnt < n {
		if r.bytePos >= len(r.buf) {
			return ErrUnexpectedEOF
		}
		r.bitBuf |= uint64(r.buf[r.bytePos]) << r.bitCnt
		r.bytePos++
		r.bitCnt += 8
	}
	return nil
}

// GetBits reads n bits (0 <= n <= 32) and returns them right-justified in
// the result.
func (r *Reader) GetBits(n int) (uint32, error) {
	if n < 0 || n > 32 {
		return 0, fmt.Errorf("bits: invalid bit count %d", n)
	}
	if n == 0 {
		return 0, nil
	}
	if err := r.fill(uint(n)); err != nil {
		return 0, err
	}
	v := uint32(r.bitBuf & ((uint64(1) << uint(n)) - 1))
	r.bitBuf >>= uint(n)
	r.bitCnt -= uint(n)
	return v, nil
}

// DecodeVLC reads a variable length quantity encoded as successive
// chunkBits-sized chunks, each chunk carrying a trailing continuation bit
// (1 = more chunks follow). Chunk payloads are assembled little-endian: the
// first chunk read supplies the least-significant payload bits.
func (r *Reader) DecodeVLC(chunkBits int) (uint32, error) {
	if chunkBits <= 0 || chunkBits > 31 {
		return 0, fmt.Errorf("bits: invalid VLC chunk size %d", chunkBits)
	}
	var result uint32
	var shift uint
	for {
		v, err := r.GetBits(chunkBits + 1)
		if err != nil {
			return 0, err
		}
		payload := v & ((1 << uint(chunkBits)) - 1)
		cont := (v >> uint(chunkBits)) & 1

		result |= payload << shift
		shift += uint(chunkBits)

		if cont == 0 {
			return result, nil
		}
		if shift >= 32 {
			return 0, fmt.Errorf("bits: VLC value exceeds 32 bits")
		}
	}
}

// DecodeHuffman decodes a single symbol using table.
func (r *Reader) DecodeHuffman(table HuffmanDecoder) (uint32, error) {
	return table.Decode(r)
}

// Stop asserts that decoding is finished; it performs no validation of
// trailing buffer bytes, matching the source format's framing (slice/table
// sizes are taken from the container, not inferred from stream content).
func (r *Reader) Stop() {}

// BitsRemaining reports the number of whole bits not yet consumed,
// including any buffered in the internal bit accumulator. Used by tests
// and by diagnostics; not required for correct decoding.
func (r *Reader) BitsRemaining() int {
	return (len(r.buf)-r.bytePos)*8 + int(r.bitCnt)
}
