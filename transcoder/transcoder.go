/*
NAME
  transcoder.go

DESCRIPTION
  transcoder.go is the top-level orchestrator: StartTranscoding decodes a
  file's endpoint and selector codebooks once; TranscodeImageLevel then
  decodes one (image, level) pair's color (and, if present, alpha) slice
  into the caller's chosen target format, dispatching to the matching
  codec/uir/* translator and, for PVRTC1, running its two-phase decode.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package transcoder ties together the UIR container parser, codebook
// decoder, slice decoder and format translators into the two-call
// public API: StartTranscoding once per file, then TranscodeImageLevel
// per (image, level) pair.
package transcoder

import (
	"github.com/ausocean/utils/logging"
	"github.com/pkg/errors"

	"github.com/ausocean/uirtranscode/bits"
	"github.com/ausocean/uirtranscode/codec/uir/bc1"
	"github.com/ausocean/uirtranscode/codec/uir/bc4"
	"github.com/ausocean/uirtranscode/codec/uir/bc7m6"
	"github.com/ausocean/uirtranscode/codec/uir/block"
	"github.com/ausocean/uirtranscode/codec/uir/codebook"
	"github.com/ausocean/uirtranscode/codec/uir/eacA8"
	"github.com/ausocean/uirtranscode/codec/uir/etc1"
	"github.com/ausocean/uirtranscode/codec/uir/format"
	"github.com/ausocean/uirtranscode/codec/uir/pvrtc1"
	"github.com/ausocean/uirtranscode/codec/uir/slice"
	"github.com/ausocean/uirtranscode/codec/uir/tables"
	"github.com/ausocean/uirtranscode/codec/uir/uirerr"
	"github.com/ausocean/uirtranscode/container/uir"
	"github.com/ausocean/uirtranscode/transcoder/config"
)

// Log is the package-level logger. SetLogger wires it (and every
// dependent package's own Log) in one call, matching revid/pipeline's
// single point of logger assignment.
var Log logging.Logger

// SetLogger assigns l as the logger for the transcoder package and every
// codec/uir/* package that logs, following codec/jpeg's Log convention.
func SetLogger(l logging.Logger) {
	Log = l
	codebook.Log = l
	slice.Log = l
}

// CodebookSource supplies an optional externally-shared global selector
// codebook (component D's "global-codebook" and "hybrid" selector
// modes); pass nil if the source file never uses those modes.
type CodebookSource interface {
	GlobalSelectorCodebook() codebook.GlobalCodebook
}

// Transcoder holds one file's decoded codebooks, built once by
// StartTranscoding and read thereafter by any number of
// TranscodeImageLevel calls.
type Transcoder struct {
	global codebook.GlobalCodebook

	endpoints []codebook.Endpoint
	selectors []codebook.Selector
	tables    slice.Tables
	ready     bool
}

// NewTranscoder returns a Transcoder. cb may be nil if the source never
// uses the global/hybrid selector modes.
func NewTranscoder(cb CodebookSource) *Transcoder {
	tables.Init()
	t := &Transcoder{}
	if cb != nil {
		t.global = cb.GlobalSelectorCodebook()
	}
	return t
}

// StartTranscoding decodes f's endpoint and selector codebooks. It must
// be called once before any TranscodeImageLevel call on the same file.
func (t *Transcoder) StartTranscoding(f *uir.File) error {
	epBits := bits.NewReader(f.EndpointCodebookBytes())
	selBits := bits.NewReader(f.SelectorCodebookBytes())

	// The number of entries in each codebook is itself implied by
	// iterating every slice descriptor's (color and alpha) block grids
	// is not required: codebook length is carried directly in the
	// codebook stream's own leading VLC-coded count, per spec §3.
	numEndpoints, err := epBits.DecodeVLC(7)
	if err != nil {
		return errors.Wrap(uirerr.New(uirerr.CodebookCorrupt, err), "transcoder: endpoint codebook count")
	}
	endpoints, err := codebook.DecodeEndpoints(epBits, int(numEndpoints))
	if err != nil {
		return errors.Wrap(uirerr.New(uirerr.CodebookCorrupt, err), "transcoder: decode endpoint codebook")
	}

	numSelectors, err := selBits.DecodeVLC(7)
	if err != nil {
		return errors.Wrap(uirerr.New(uirerr.CodebookCorrupt, err), "transcoder: selector codebook count")
	}
	selectors, err := codebook.DecodeSelectors(selBits, int(numSelectors), t.global)
	if err != nil {
		return errors.Wrap(uirerr.New(uirerr.CodebookCorrupt, err), "transcoder: decode selector codebook")
	}

	tablesBits := bits.NewReader(f.TablesBytes())
	tabs, err := slice.DecodeTables(tablesBits)
	if err != nil {
		return errors.Wrap(uirerr.New(uirerr.CodebookCorrupt, err), "transcoder: decode tables section")
	}

	if Log != nil {
		Log.Debug("codebooks decoded", "numEndpoints", numEndpoints, "numSelectors", numSelectors, "historyBufSize", tabs.HistoryBufSize)
	}

	t.endpoints = endpoints
	t.selectors = selectors
	t.tables = tabs
	t.ready = true
	return nil
}

// translatorFor returns the format.BlockTranslator for every target
// except PVRTC1, which is handled separately by decodePVRTC1.
func translatorFor(target config.Format, flags config.DecodeFlags) (format.BlockTranslator, error) {
	switch target {
	case config.FormatETC1:
		return etc1.Translator{}, nil
	case config.FormatBC1:
		return bc1.Translator{ForbidThreeColorBlocks: flags&config.FlagBC1ForbidThreeColorBlocks != 0}, nil
	case config.FormatBC4:
		return bc4.Translator{}, nil
	case config.FormatBC7M6:
		return bc7m6.Translator{}, nil
	case config.FormatETC2EACA8:
		return eacA8.Translator{}, nil
	default:
		return nil, uirerr.Newf(uirerr.UnsupportedRequest, "transcoder: %s has no single-pass translator", target)
	}
}

// TranscodeImageLevel decodes the (imageIndex, levelIndex) pair's color
// slice (and, for BC3/BC5, its paired alpha slice) from f into dst,
// target-encoded, with dstStride bytes between output block rows.
func (t *Transcoder) TranscodeImageLevel(f *uir.File, imageIndex uint16, levelIndex uint8, target config.Format, flags config.DecodeFlags, dst []byte, dstStride int) error {
	if !t.ready {
		return errors.Wrap(uirerr.New(uirerr.NotReady, errNotStarted), "transcoder: TranscodeImageLevel")
	}

	cfg := config.Config{Target: target, Flags: flags}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(uirerr.New(uirerr.UnsupportedRequest, err), "transcoder: TranscodeImageLevel")
	}

	groups := f.ImageLevelSlices()
	g, ok := groups[uir.ImageLevelKey{ImageIndex: imageIndex, LevelIndex: levelIndex}]
	if !ok || g.Color < 0 {
		return errors.Wrap(uirerr.Newf(uirerr.StreamCorrupt, "transcoder: no color slice for image %d level %d", imageIndex, levelIndex), "transcoder: TranscodeImageLevel")
	}
	colorDesc := f.Slices[g.Color]
	dims := slice.Dims{BlocksX: int(colorDesc.BlocksX), BlocksY: int(colorDesc.BlocksY)}

	if target.RequiresPowerOfTwo() {
		if _, err := pvrtc1.NewCanvas(dims.BlocksX, dims.BlocksY, false); err != nil {
			return errors.Wrap(err, "transcoder: TranscodeImageLevel")
		}
	}

	switch target {
	case config.FormatBC3:
		return t.decodeBC3(f, colorDesc, g.Alpha, dims, flags, dst, dstStride)
	case config.FormatBC5:
		return t.decodeBC5(f, colorDesc, g.Alpha, dims, flags, dst, dstStride)
	case config.FormatPVRTC1:
		return t.decodePVRTC1(f, colorDesc, dims, flags, dst, dstStride)
	default:
		tr, err := translatorFor(target, flags)
		if err != nil {
			return errors.Wrap(err, "transcoder: TranscodeImageLevel")
		}
		return t.decodeOne(f, colorDesc, tr, dst, dstStride)
	}
}

var errNotStarted = notStartedErr{}

type notStartedErr struct{}

func (notStartedErr) Error() string { return "transcoder: StartTranscoding has not been called" }

func (t *Transcoder) decodeOne(f *uir.File, desc uir.SliceDesc, tr format.BlockTranslator, dst []byte, dstStride int) error {
	r := bits.NewReader(f.SliceBytes(findSliceIndex(f, desc)))
	dims := slice.Dims{BlocksX: int(desc.BlocksX), BlocksY: int(desc.BlocksY)}
	if err := slice.Decode(r, dims, t.endpoints, t.selectors, t.tables, tr, dst, dstStride); err != nil {
		return errors.Wrap(err, "transcoder: decode slice")
	}
	return nil
}

// findSliceIndex recovers desc's index in f.Slices by byte offset
// identity; slice descriptors don't carry their own table index.
func findSliceIndex(f *uir.File, desc uir.SliceDesc) int {
	for i, d := range f.Slices {
		if d.DataOffset == desc.DataOffset {
			return i
		}
	}
	return -1
}

// decodeBC3 decodes the color slice to BC1 (color half) and the alpha
// slice to BC4 (alpha half), interleaving them into BC3's 16-byte
// block layout (8 bytes alpha, then 8 bytes color).
func (t *Transcoder) decodeBC3(f *uir.File, colorDesc uir.SliceDesc, alphaIdx int, dims slice.Dims, flags config.DecodeFlags, dst []byte, dstStride int) error {
	if alphaIdx < 0 {
		return errors.Wrap(uirerr.New(uirerr.StreamCorrupt, errNoAlpha), "transcoder: decodeBC3")
	}
	alphaDesc := f.Slices[alphaIdx]

	colorBuf := make([]byte, dims.BlocksX*dims.BlocksY*bc1.BytesPerBlock)
	alphaBuf := make([]byte, dims.BlocksX*dims.BlocksY*bc4.BytesPerBlock)

	bc1tr := bc1.Translator{ForbidThreeColorBlocks: flags&config.FlagBC1ForbidThreeColorBlocks != 0}
	if err := t.decodeOne(f, colorDesc, bc1tr, colorBuf, dims.BlocksX*bc1.BytesPerBlock); err != nil {
		return err
	}
	if err := t.decodeOne(f, alphaDesc, bc4.Translator{}, alphaBuf, dims.BlocksX*bc4.BytesPerBlock); err != nil {
		return err
	}

	const bpb = bc1.BytesPerBlock + bc4.BytesPerBlock
	for by := 0; by < dims.BlocksY; by++ {
		for bx := 0; bx < dims.BlocksX; bx++ {
			cOff := by*dims.BlocksX*bc1.BytesPerBlock + bx*bc1.BytesPerBlock
			aOff := by*dims.BlocksX*bc4.BytesPerBlock + bx*bc4.BytesPerBlock
			dOff := by*dstStride + bx*bpb
			copy(dst[dOff:dOff+bc4.BytesPerBlock], alphaBuf[aOff:aOff+bc4.BytesPerBlock])
			copy(dst[dOff+bc4.BytesPerBlock:dOff+bpb], colorBuf[cOff:cOff+bc1.BytesPerBlock])
		}
	}
	return nil
}

// decodeBC5 decodes the color slice's red channel to one BC4 block and
// the alpha slice's red channel to a second, concatenating them into
// BC5's 16-byte two-channel block layout.
func (t *Transcoder) decodeBC5(f *uir.File, colorDesc uir.SliceDesc, alphaIdx int, dims slice.Dims, flags config.DecodeFlags, dst []byte, dstStride int) error {
	if alphaIdx < 0 {
		return errors.Wrap(uirerr.New(uirerr.StreamCorrupt, errNoAlpha), "transcoder: decodeBC5")
	}
	alphaDesc := f.Slices[alphaIdx]

	chanA := make([]byte, dims.BlocksX*dims.BlocksY*bc4.BytesPerBlock)
	chanB := make([]byte, dims.BlocksX*dims.BlocksY*bc4.BytesPerBlock)

	if err := t.decodeOne(f, colorDesc, bc4.Translator{}, chanA, dims.BlocksX*bc4.BytesPerBlock); err != nil {
		return err
	}
	if err := t.decodeOne(f, alphaDesc, bc4.Translator{}, chanB, dims.BlocksX*bc4.BytesPerBlock); err != nil {
		return err
	}

	const bpb = 2 * bc4.BytesPerBlock
	for by := 0; by < dims.BlocksY; by++ {
		for bx := 0; bx < dims.BlocksX; bx++ {
			off := by*dims.BlocksX*bc4.BytesPerBlock + bx*bc4.BytesPerBlock
			dOff := by*dstStride + bx*bpb
			copy(dst[dOff:dOff+bc4.BytesPerBlock], chanA[off:off+bc4.BytesPerBlock])
			copy(dst[dOff+bc4.BytesPerBlock:dOff+bpb], chanB[off:off+bc4.BytesPerBlock])
		}
	}
	return nil
}

var errNoAlpha = noAlphaErr{}

type noAlphaErr struct{}

func (noAlphaErr) Error() string { return "transcoder: target requires a paired alpha slice that this image level does not have" }

// decodePVRTC1 runs PVRTC1's two-phase decode: every block is stashed
// into a Canvas (phase 1), then Pack serializes the bilinearly
// reconstructed, Morton-ordered bitstream (phase 2) directly into dst.
func (t *Transcoder) decodePVRTC1(f *uir.File, colorDesc uir.SliceDesc, dims slice.Dims, flags config.DecodeFlags, dst []byte, dstStride int) error {
	wrap := flags&config.FlagPVRTC1WrapAddressing != 0
	canvas, err := pvrtc1.NewCanvas(dims.BlocksX, dims.BlocksY, wrap)
	if err != nil {
		return errors.Wrap(err, "transcoder: decodePVRTC1")
	}

	r := bits.NewReader(f.SliceBytes(findSliceIndex(f, colorDesc)))
	stasher := &pvrtc1Stasher{canvas: canvas, widthBlocks: dims.BlocksX}
	scratch := make([]byte, dims.BlocksX*dims.BlocksY*pvrtc1.BytesPerBlock)
	if err := slice.Decode(r, dims, t.endpoints, t.selectors, t.tables, stasher, scratch, dims.BlocksX*pvrtc1.BytesPerBlock); err != nil {
		return errors.Wrap(err, "transcoder: decodePVRTC1 stash pass")
	}

	packed := canvas.Pack()
	if len(dst) < len(packed) {
		return errors.Wrap(uirerr.New(uirerr.BufferTooSmall, errDstTooSmall), "transcoder: decodePVRTC1")
	}
	copy(dst, packed)
	return nil
}

var errDstTooSmall = dstTooSmallErr{}

type dstTooSmallErr struct{}

func (dstTooSmallErr) Error() string {
	return "transcoder: destination buffer too small for packed PVRTC1 data"
}

// pvrtc1Stasher adapts pvrtc1.Canvas's phase-1 StashBlock call to the
// format.BlockTranslator interface slice.Decode drives: it tracks the
// row-major block position implied by Decode's own fixed iteration
// order (by, then bx) and stashes into canvas instead of writing a
// translated block to dst.
type pvrtc1Stasher struct {
	canvas      *pvrtc1.Canvas
	widthBlocks int
	next        int
}

func (s *pvrtc1Stasher) BytesPerBlock() int { return pvrtc1.BytesPerBlock }

func (s *pvrtc1Stasher) Translate(l *block.Logical, dst []byte) {
	bx := s.next % s.widthBlocks
	by := s.next / s.widthBlocks
	s.next++
	// Bounds always match: canvas was constructed from the same dims
	// slice.Decode iterates over.
	_ = s.canvas.StashBlock(bx, by, l)
}
