/*
NAME
  table.go

DESCRIPTION
  table.go constructs canonical Huffman prefix-code decoding tables from a
  vector of code lengths, and decodes symbols from a bits.Reader using a
  direct-indexed fast table with a sorted-code fallback for longer codes.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package huffman provides canonical-prefix-code Huffman table construction
// and decoding for the UIR codebook and slice bitstreams.
package huffman

import (
	"fmt"
	"sort"

	"github.com/ausocean/uirtranscode/bits"
)

// MaxCodeLen is the maximum permitted code length, matching the bitstream's
// 5-bit code length field (codeLenBits; present codes have length in [1,16]).
const MaxCodeLen = 16

// fastBits is the number of bits the direct-indexed fast table covers.
// Codes no longer than fastBits decode in O(1); longer codes fall back to
// a sorted linear scan, bounded by MaxCodeLen.
const fastBits = 10

// code is one canonical code: the symbol it represents, its length, and
// its bit pattern (MSB-first canonical value).
type code struct {
	sym uint32
	len uint8
	val uint16 // code value, MSB-first within len bits, for canonical ordering
}

// Table is a canonical Huffman decoding table.
type Table struct {
	maxCodeLen int
	// fast[v] gives (sym<<8 | len) for any code of length <= fastBits whose
	// low fastBits bits (LSB-first from the stream) equal v. Entries for
	// values not reachable by a short code are zero (len field 0).
	fast []uint32
	// long holds codes with len > fastBits, sorted by (len, canonical val),
	// used for fallback decode by peeling one bit at a time.
	long []code
	// singleSymbol is set when the table has exactly one symbol (length-0
	// codes in the canonical scheme): every decode returns it without
	// consuming bits.
	singleSymbol    uint32
	hasSingleSymbol bool
}

// NewTable builds a canonical Huffman table from codeLengths, where
// codeLengths[sym] is the bit length assigned to symbol sym (0 meaning the
// symbol is unused). Construction fails if the lengths do not form a valid
// complete (or empty/single-symbol) prefix code.
func NewTable(codeLengths []uint8) (*Table, error) {
	t := &Table{}

	type entry struct {
		sym uint32
		len uint8
	}
	var used []entry
	for sym, l := range codeLengths {
		if l == 0 {
			continue
		}
		if int(l) > MaxCodeLen {
			return nil, fmt.Errorf("huffman: code length %d exceeds max %d", l, MaxCodeLen)
		}
		used = append(used, entry{uint32(sym), l})
	}

	if len(used) == 0 {
		return t, nil
	}
	if len(used) == 1 {
		t.singleSymbol = used[0].sym
		t.hasSingleSymbol = true
		return t, nil
	}

	// Canonical assignment: ascending (length, symbol).
	sort.Slice(used, func(i, j int) bool {
		if used[i].len != used[j].len {
			return used[i].len < used[j].len
		}
		return used[i].sym < used[j].sym
	})

	var sum uint64 // in units of 2^-16, to check sum(2^-len) == 1 exactly
	var canonical uint16
	var lastLen uint8
	codes := make([]code, 0, len(used))
	for _, e := range used {
		if e.len > lastLen {
			canonical <<= (e.len - lastLen)
			lastLen = e.len
		}
		codes = append(codes, code{sym: e.sym, len: e.len, val: canonical})
		sum += uint64(1) << uint(MaxCodeLen-int(e.len))
		canonical++
	}
	if sum != uint64(1)<<uint(MaxCodeLen) {
		return nil, fmt.Errorf("huffman: code lengths do not form a complete prefix code (sum=%d want %d)", sum, uint64(1)<<uint(MaxCodeLen))
	}

	maxLen := 0
	for _, c := range codes {
		if int(c.len) > maxLen {
			maxLen = int(c.len)
		}
	}
	t.maxCodeLen = maxLen

	t.fast = make([]uint32, 1<<fastBits)
	for _, c := range codes {
		if int(c.len) > fastBits {
			t.long = append(t.long, c)
			continue
		}
		// Reverse the MSB-first canonical bit pattern into the LSB-first
		// order the stream is consumed in, then replicate across all
		// don't-care high bits of the fastBits-wide index.
		rev := reverseBits(c.val, int(c.len))
		step := 1 << uint(c.len)
		for idx := int(rev); idx < len(t.fast); idx += step {
			t.fast[idx] = (c.sym << 8) | uint32(c.len)
		}
	}
	sort.Slice(t.long, func(i, j int) bool {
		if t.long[i].len != t.long[j].len {
			return t.long[i].len < t.long[j].len
		}
		return t.long[i].val < t.long[j].val
	})

	return t, nil
}

func reverseBits(v uint16, n int) uint16 {
	var r uint16
	for i := 0; i < n; i++ {
		r = (r << 1) | (v & 1)
		v >>= 1
	}
	return r
}

// IsValid reports whether the table was constructed successfully and is
// ready to decode (mirrors the source's huffman_decoding_table::is_valid).
func (t *Table) IsValid() bool {
	return t.hasSingleSymbol || len(t.fast) > 0
}

// Decode reads one symbol from r. Worst case cost is O(maxCodeLen) bits
// peeked one at a time in the fallback path; the common case is a single
// fastBits-wide table lookup.
func (t *Table) Decode(r *bits.Reader) (uint32, error) {
	if t.hasSingleSymbol {
		return t.singleSymbol, nil
	}
	if len(t.fast) == 0 {
		return 0, fmt.Errorf("huffman: decode from empty table")
	}

	peek, n, err := peekBits(r, fastBits)
	if err != nil && n == 0 {
		return 0, err
	}
	idx := peek
	if e := t.fast[idx]; e&0xff != 0 {
		length := int(e & 0xff)
		if _, err := r.GetBits(length); err != nil {
			return 0, err
		}
		return e >> 8, nil
	}

	// Fallback: peel bits one at a time (LSB-first) until a long code
	// matches. This is O(maxCodeLen) and only hit for codes > fastBits.
	var acc uint16
	var accLen int
	for accLen < t.maxCodeLen {
		b, err := r.GetBits(1)
		if err != nil {
			return 0, err
		}
		acc |= uint16(b) << uint(accLen)
		accLen++
		for _, c := range t.long {
			if int(c.len) != accLen {
				continue
			}
			if reverseBits(c.val, int(c.len)) == acc {
				return c.sym, nil
			}
		}
	}
	return 0, fmt.Errorf("huffman: no matching code after %d bits", accLen)
}

// peekBits peeks up to n bits without consuming them, returning however
// many bits are actually available (n2) when fewer than n remain rather
// than failing outright -- the fast table only needs the low n2 bits to
// be accurate because codes longer than what remains in the buffer cannot
// legally occur in a well-formed stream.
func peekBits(r *bits.Reader, n int) (uint32, int, error) {
	// bits.Reader does not expose a non-consuming peek, so decode a
	// throwaway reader-local copy is not possible without copying state;
	// instead we read-then-unread by tracking consumed bits. Since Reader
	// has no native peek, emulate it via a cheap clone.
	clone := *r
	v, err := (&clone).GetBits(n)
	if err != nil {
		// Fewer than n bits remain. Shrink n until it fits, or fail.
		for n > 0 {
			n--
			clone = *r
			v, err = (&clone).GetBits(n)
			if err == nil {
				return v, n, nil
			}
		}
		return 0, 0, err
	}
	return v, n, nil
}
