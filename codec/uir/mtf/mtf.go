/*
NAME
  mtf.go

DESCRIPTION
  mtf.go implements the approximate move-to-front recency buffer used to
  track recently used selector codebook indices during slice decode.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package mtf implements an approximate move-to-front circular buffer, as
// used for the UIR selector history during slice decode. It is approximate
// in the sense that Use only halves an entry's distance from the front
// rather than moving it all the way there; this must be preserved
// bit-exactly for interoperability with the rest of the codebook/slice
// decode pipeline.
package mtf

// Buffer is a circular, capacity-bounded approximate MTF buffer of
// selector-codebook indices.
type Buffer struct {
	vals []uint32
	cap  int
	// front is the logical index (into vals) of the most-recently-added
	// element; elements are stored contiguously starting at front and
	// wrapping around vals.
	front int
	size  int
}

// NewBuffer returns an empty Buffer with the given capacity. capacity must
// be in [0, 8191] per the UIR tables-section encoding of this value as a
// 13-bit field.
func NewBuffer(capacity int) *Buffer {
	b := &Buffer{cap: capacity}
	if capacity > 0 {
		b.vals = make([]uint32, capacity)
	}
	return b
}

// Len returns the number of currently populated entries (<= capacity).
func (b *Buffer) Len() int {
	return b.size
}

// Cap returns the buffer's capacity.
func (b *Buffer) Cap() int {
	return b.cap
}

// slot maps a logical distance-from-front k to a physical index in vals.
func (b *Buffer) slot(k int) int {
	idx := b.front - k
	if idx < 0 {
		idx += b.cap
	}
	return idx
}

// Add inserts x at the front of the buffer, evicting the oldest entry if
// the buffer is full.
func (b *Buffer) Add(x uint32) {
	if b.cap == 0 {
		return
	}
	b.front = (b.front + 1) % b.cap
	b.vals[b.front] = x
	if b.size < b.cap {
		b.size++
	}
}

// At returns the element currently at distance k from the front (k=0 is
// the most recently added/used element).
func (b *Buffer) At(k int) uint32 {
	return b.vals[b.slot(k)]
}

// Use moves the element at distance k toward the front by roughly half:
// it is swapped with the element currently at distance k/2. Use(0) is a
// no-op. This is the "approximate" part of approximate MTF -- full MTF
// (moving the element all the way to the front) is intentionally not
// implemented.
func (b *Buffer) Use(k int) uint32 {
	if k <= 0 {
		return b.At(0)
	}
	half := k / 2
	a, c := b.slot(k), b.slot(half)
	b.vals[a], b.vals[c] = b.vals[c], b.vals[a]
	return b.vals[c]
}
