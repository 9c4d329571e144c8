/*
NAME
  slice.go

DESCRIPTION
  slice.go decodes a slice's block stream (component E): 2D spatial
  endpoint-index prediction (left/up/up-left/delta) over 8-bit packets
  covering a 2x2 group of blocks, with a Huffman-coded repeat-count
  escape for runs of identical packets, and a separate selector decode
  combining a direct index, an approximate-MTF history buffer, and an
  RLE escape for runs of repeated selectors. Each resulting block is
  synthesized via block.Colors and handed to the caller-supplied
  format.BlockTranslator (or, for PVRTC1, stashed via the pvrtc1.Canvas
  two-phase interface).

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package slice decodes one UIR slice's block stream into logical blocks,
// driving whichever format.BlockTranslator (or pvrtc1.Canvas) the caller
// supplies.
package slice

import (
	"github.com/ausocean/utils/logging"
	"github.com/pkg/errors"

	"github.com/ausocean/uirtranscode/bits"
	"github.com/ausocean/uirtranscode/codec/uir/block"
	"github.com/ausocean/uirtranscode/codec/uir/codebook"
	"github.com/ausocean/uirtranscode/codec/uir/format"
	"github.com/ausocean/uirtranscode/codec/uir/huffman"
	"github.com/ausocean/uirtranscode/codec/uir/mtf"
	"github.com/ausocean/uirtranscode/codec/uir/uirerr"
)

// Log is the package-level logger. It is assigned by the caller (see
// transcoder's wiring) before any Decode call that should log; a nil Log
// is checked at each call site and disables this package's logging.
var Log logging.Logger

// Dims describes a slice's block grid.
type Dims struct {
	BlocksX, BlocksY int
}

// Endpoint predictor constants. The endpoint-predictor Huffman alphabet
// is the 256 possible 8-bit packets plus one reserved "repeat previous
// packet" sentinel, one past the packet value range.
const (
	endpointPredRepeatSentinel = 256
	endpointPredCountVLCBits   = 4
)

// Selector RLE constants. The run-length Huffman alphabet has
// selectorHistoryRLECountTotal symbols; the last one escapes to a
// 7-bit VLC extension on top of the base threshold, matching S4's
// "escape 127" scenario (127 = selectorHistoryRLECountTotal-1).
const (
	selectorHistoryRLECountTotal       = 128
	selectorHistoryRLELongRunSymbol    = selectorHistoryRLECountTotal - 1
	selectorHistoryRLECountThresh      = 3
	selectorHistoryRLEExtensionVLCBits = 7
)

// maxHistoryBufSize bounds the selector history buffer's capacity to the
// tables section's 13-bit encoding of it (spec.md §3).
const maxHistoryBufSize = (1 << 13) - 1

// Tables holds a slice decoder's three per-instance Huffman tables plus
// the selector-history-RLE run-length table, and the selector history
// buffer's capacity -- all read once per file from the "tables" section
// (spec.md §3/§5) and shared read-only across every slice in the file.
type Tables struct {
	EndpointPred       *huffman.Table
	DeltaEndpoint      *huffman.Table
	Selector           *huffman.Table
	SelectorHistoryRLE *huffman.Table
	HistoryBufSize     int
}

// DecodeTables reads the per-file tables section: the endpoint
// predictor, delta-endpoint, selector and selector-history-RLE Huffman
// tables, followed by the 13-bit selector history_buf_size field.
func DecodeTables(r *bits.Reader) (Tables, error) {
	var t Tables
	var err error

	if t.EndpointPred, err = huffman.ReadTable(r); err != nil {
		return Tables{}, errors.Wrap(err, "slice: endpoint predictor table")
	}
	if t.DeltaEndpoint, err = huffman.ReadTable(r); err != nil {
		return Tables{}, errors.Wrap(err, "slice: delta endpoint table")
	}
	if t.Selector, err = huffman.ReadTable(r); err != nil {
		return Tables{}, errors.Wrap(err, "slice: selector table")
	}
	if t.SelectorHistoryRLE, err = huffman.ReadTable(r); err != nil {
		return Tables{}, errors.Wrap(err, "slice: selector history RLE table")
	}

	n, err := r.GetBits(13)
	if err != nil {
		return Tables{}, errors.Wrap(err, "slice: history_buf_size")
	}
	if int(n) > maxHistoryBufSize {
		return Tables{}, errors.Wrap(uirerr.Newf(uirerr.CodebookCorrupt, "slice: history_buf_size %d exceeds max %d", n, maxHistoryBufSize), "slice: decode tables")
	}
	t.HistoryBufSize = int(n)

	r.Stop()
	return t, nil
}

// predPos is one column's rolling endpoint-predictor state: the
// remaining unconsumed 2-bit prediction fields from the current 2x2
// packet, and the endpoint index this column last resolved to. Two
// rows of these are kept, addressed by row parity, matching the
// original's double-buffered row arrays.
type predPos struct {
	predBits      uint32
	endpointIndex uint32
}

// Decode reads dims.BlocksX * dims.BlocksY blocks from r, synthesizing
// each one's logical block via endpoints/selectors and writing it to dst
// through tr, a translator producing tr.BytesPerBlock() bytes per block,
// packed in row-major block order with dstStride bytes between block
// rows. endpoints and selectors are the slice's already-decoded
// codebooks (component D); tabs is the per-file set of Huffman tables
// and selector history buffer capacity (component §5). The selector
// history buffer is always freshly allocated and reset at the start of
// this call, per spec.md §3.
func Decode(r *bits.Reader, dims Dims, endpoints []codebook.Endpoint, selectors []codebook.Selector, tabs Tables, tr format.BlockTranslator, dst []byte, dstStride int) error {
	if dims.BlocksX <= 0 || dims.BlocksY <= 0 {
		return errors.Wrap(uirerr.Newf(uirerr.StreamCorrupt, "slice: invalid dims %+v", dims), "slice decode")
	}
	totalBlocks := dims.BlocksX * dims.BlocksY

	if Log != nil {
		Log.Debug("decoding slice", "blocksX", dims.BlocksX, "blocksY", dims.BlocksY, "historyBufSize", tabs.HistoryBufSize)
	}

	history := mtf.NewBuffer(tabs.HistoryBufSize)
	selectorFirstSymbol := uint32(len(selectors))
	selectorRLESymbol := selectorFirstSymbol + uint32(tabs.HistoryBufSize)

	predRows := [2][]predPos{
		make([]predPos, dims.BlocksX),
		make([]predPos, dims.BlocksX),
	}

	var (
		curPredBits             uint32
		prevEndpointPredSym     uint32
		endpointPredRepeatCount uint32
		prevEndpointIndex       uint32
		prevSelectorIndex       uint32
		curSelectorRLECount     uint32
	)

	for by := 0; by < dims.BlocksY; by++ {
		curRow := by & 1
		for bx := 0; bx < dims.BlocksX; bx++ {
			if bx&1 == 0 {
				if by&1 == 0 {
					if endpointPredRepeatCount > 0 {
						endpointPredRepeatCount--
						curPredBits = prevEndpointPredSym
					} else {
						sym, err := r.DecodeHuffman(tabs.EndpointPred)
						if err != nil {
							return errors.Wrapf(err, "slice: predictor symbol at block (%d,%d)", bx, by)
						}
						curPredBits = sym
						if curPredBits == endpointPredRepeatSentinel {
							n, err := r.DecodeVLC(endpointPredCountVLCBits)
							if err != nil {
								return errors.Wrapf(err, "slice: repeat count at block (%d,%d)", bx, by)
							}
							endpointPredRepeatCount = n
							curPredBits = prevEndpointPredSym
						} else {
							prevEndpointPredSym = curPredBits
						}
					}
					predRows[curRow^1][bx].predBits = curPredBits >> 4
				} else {
					curPredBits = predRows[curRow][bx].predBits
				}
			}

			pred := curPredBits & 3
			curPredBits >>= 2

			var endpointIndex uint32
			switch pred {
			case 0: // left
				if bx == 0 {
					return errors.Wrap(uirerr.Newf(uirerr.StreamCorrupt, "slice: left predictor with no left neighbor at (%d,%d)", bx, by), "slice decode")
				}
				endpointIndex = prevEndpointIndex
			case 1: // up
				if by == 0 {
					return errors.Wrap(uirerr.Newf(uirerr.StreamCorrupt, "slice: up predictor on first row at (%d,%d)", bx, by), "slice decode")
				}
				endpointIndex = predRows[curRow^1][bx].endpointIndex
			case 2: // up-left
				if bx == 0 || by == 0 {
					return errors.Wrap(uirerr.Newf(uirerr.StreamCorrupt, "slice: up-left predictor at grid edge (%d,%d)", bx, by), "slice decode")
				}
				endpointIndex = predRows[curRow^1][bx-1].endpointIndex
			default: // delta
				d, err := r.DecodeHuffman(tabs.DeltaEndpoint)
				if err != nil {
					return errors.Wrapf(err, "slice: delta endpoint symbol at block (%d,%d)", bx, by)
				}
				if len(endpoints) == 0 {
					return errors.Wrap(uirerr.Newf(uirerr.StreamCorrupt, "slice: delta endpoint with empty codebook at (%d,%d)", bx, by), "slice decode")
				}
				endpointIndex = (prevEndpointIndex + d) % uint32(len(endpoints))
			}

			predRows[curRow][bx].endpointIndex = endpointIndex
			prevEndpointIndex = endpointIndex

			var selectorIndex uint32
			if curSelectorRLECount > 0 {
				curSelectorRLECount--
				selectorIndex = prevSelectorIndex
			} else {
				sym, err := r.DecodeHuffman(tabs.Selector)
				if err != nil {
					return errors.Wrapf(err, "slice: selector symbol at block (%d,%d)", bx, by)
				}
				switch {
				case sym == selectorRLESymbol:
					runSym, err := r.DecodeHuffman(tabs.SelectorHistoryRLE)
					if err != nil {
						return errors.Wrapf(err, "slice: selector RLE run symbol at block (%d,%d)", bx, by)
					}
					var run uint32
					if runSym == selectorHistoryRLELongRunSymbol {
						ext, err := r.DecodeVLC(selectorHistoryRLEExtensionVLCBits)
						if err != nil {
							return errors.Wrapf(err, "slice: selector RLE long-run extension at block (%d,%d)", bx, by)
						}
						run = ext + selectorHistoryRLECountThresh
					} else {
						run = runSym + selectorHistoryRLECountThresh
					}
					if int(run) > totalBlocks {
						return errors.Wrap(uirerr.Newf(uirerr.StreamCorrupt, "slice: selector RLE run %d exceeds total blocks %d", run, totalBlocks), "slice decode")
					}
					selectorIndex = prevSelectorIndex
					curSelectorRLECount = run - 1
				case sym < selectorFirstSymbol:
					selectorIndex = sym
					if tabs.HistoryBufSize > 0 {
						history.Add(selectorIndex)
					}
				default:
					historyIdx := int(sym - selectorFirstSymbol)
					if historyIdx >= history.Len() {
						return errors.Wrap(uirerr.Newf(uirerr.StreamCorrupt, "slice: selector history index %d exceeds populated length %d", historyIdx, history.Len()), "slice decode")
					}
					selectorIndex = history.At(historyIdx)
					if historyIdx != 0 {
						history.Use(historyIdx)
					}
				}
			}
			prevSelectorIndex = selectorIndex

			if int(endpointIndex) >= len(endpoints) {
				return errors.Wrap(uirerr.Newf(uirerr.StreamCorrupt, "slice: endpoint index %d out of range (%d)", endpointIndex, len(endpoints)), "slice decode")
			}
			if int(selectorIndex) >= len(selectors) {
				return errors.Wrap(uirerr.Newf(uirerr.StreamCorrupt, "slice: selector index %d out of range (%d)", selectorIndex, len(selectors)), "slice decode")
			}

			ep := endpoints[endpointIndex]
			sel := selectors[selectorIndex]
			logical := &block.Logical{
				Colors:       block.Colors(ep.Color5, ep.Inten5),
				RawSelectors: sel.Raw,
				LoSelector:   sel.LoSelector,
				HiSelector:   sel.HiSelector,
				NumUnique:    sel.NumUnique,
				Color5:       ep.Color5,
				Inten5:       ep.Inten5,
			}

			bpb := tr.BytesPerBlock()
			off := by*dstStride + bx*bpb
			if off+bpb > len(dst) {
				return errors.Wrap(uirerr.New(uirerr.BufferTooSmall, errDstTooSmall), "slice decode")
			}
			tr.Translate(logical, dst[off:off+bpb])
		}
	}

	if endpointPredRepeatCount > 0 {
		return errors.Wrap(uirerr.Newf(uirerr.StreamCorrupt, "slice: dangling endpoint predictor repeat count %d at end of stream", endpointPredRepeatCount), "slice decode")
	}

	r.Stop()
	return nil
}

var errDstTooSmall = errDstTooSmallErr{}

type errDstTooSmallErr struct{}

func (errDstTooSmallErr) Error() string { return "slice: destination buffer too small for block" }
