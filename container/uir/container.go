/*
NAME
  container.go

DESCRIPTION
  container.go parses the UIR container format (component §6): a fixed
  44-byte little-endian file header, followed by a slice descriptor
  table, the endpoint codebook stream, the selector codebook stream, the
  tables section, and each slice's block bitstream. Below is the header
  layout; it is the only header layout this parser reads.

  ============================================================================
  | offset | field                   | size | notes                        |
  ============================================================================
  | 0      | Signature               | 4    | must equal "UIR1"            |
  | 4      | Version                 | 2    | currently must be 1          |
  | 6      | Flags                   | 2    | reserved, must round-trip    |
  | 8      | TextureType             | 1    | passthrough, never branched  |
  | 9      | reserved                | 1    |                               |
  | 10     | TotalSlices             | 2    |                               |
  | 12     | SliceDescTableOffset    | 4    |                               |
  | 16     | EndpointCodebookOffset  | 4    |                               |
  | 20     | EndpointCodebookSize    | 4    | bytes                         |
  | 24     | SelectorCodebookOffset  | 4    |                               |
  | 28     | SelectorCodebookSize    | 4    | bytes                         |
  | 32     | TablesOffset            | 4    | per-file Huffman tables + the |
  |        |                         |      | selector history_buf_size    |
  | 36     | TablesSize              | 4    | bytes                         |
  | 40     | HeaderCRC16             | 2    | over bytes [0,40)             |
  | 42     | reserved                | 2    |                               |
  ============================================================================

  Each 16-byte slice descriptor:

  ============================================================================
  | offset | field        | size | notes                                   |
  ============================================================================
  | 0      | ImageIndex   | 2    |                                         |
  | 2      | LevelIndex   | 1    |                                         |
  | 3      | Flags        | 1    | bit 0: alpha slice (vs. color slice)    |
  | 4      | BlocksX      | 2    |                                         |
  | 6      | BlocksY      | 2    |                                         |
  | 8      | DataOffset   | 4    | absolute, from start of file            |
  | 12     | DataSize     | 4    | bytes                                   |
  ============================================================================

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package uir parses the UIR container format: a fixed file header, a
// slice descriptor table, and the endpoint/selector codebook streams
// each slice's block data references.
package uir

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/ausocean/uirtranscode/codec/uir/uirerr"
)

// HeaderSize is the fixed size of the UIR file header.
const HeaderSize = 44

// SliceDescSize is the fixed size of one slice descriptor table entry.
const SliceDescSize = 16

// signature is the required magic at the start of every UIR file.
var signature = [4]byte{'U', 'I', 'R', '1'}

// SliceFlagAlpha marks a slice descriptor as carrying an alpha-plane
// block stream rather than a color one.
const SliceFlagAlpha = 1 << 0

// SliceDesc is one entry of the slice descriptor table.
type SliceDesc struct {
	ImageIndex uint16
	LevelIndex uint8
	Flags      uint8
	BlocksX    uint16
	BlocksY    uint16
	DataOffset uint32
	DataSize   uint32
}

// IsAlpha reports whether this descriptor's block stream is an alpha
// plane rather than a color plane.
func (d SliceDesc) IsAlpha() bool { return d.Flags&SliceFlagAlpha != 0 }

// File is a parsed UIR container: the validated header, its slice
// descriptor table, and accessors locating the codebook and per-slice
// byte ranges within the original buffer.
type File struct {
	buf []byte

	Version                uint16
	Flags                  uint16
	textureType            uint8
	TotalSlices            uint16
	SliceDescTableOffset   uint32
	EndpointCodebookOffset uint32
	EndpointCodebookSize   uint32
	SelectorCodebookOffset uint32
	SelectorCodebookSize   uint32
	TablesOffset           uint32
	TablesSize             uint32
	HeaderCRC16            uint16

	Slices []SliceDesc
}

// ParseFile validates and parses buf's header and slice descriptor
// table. It does not validate slice or codebook data payloads; call
// ValidateDataCRC16 for that.
func ParseFile(buf []byte) (*File, error) {
	if len(buf) < HeaderSize {
		return nil, errors.Wrap(uirerr.Newf(uirerr.BufferTooSmall, "uir: buffer shorter than header (%d < %d)", len(buf), HeaderSize), "container: parse header")
	}

	var sig [4]byte
	copy(sig[:], buf[0:4])
	if sig != signature {
		return nil, errors.Wrap(uirerr.Newf(uirerr.MalformedHeader, "uir: bad signature %q", sig), "container: parse header")
	}

	f := &File{buf: buf}
	f.Version = binary.LittleEndian.Uint16(buf[4:6])
	if f.Version != 1 {
		return nil, errors.Wrap(uirerr.Newf(uirerr.MalformedHeader, "uir: unsupported version %d", f.Version), "container: parse header")
	}
	f.Flags = binary.LittleEndian.Uint16(buf[6:8])
	f.textureType = buf[8]
	f.TotalSlices = binary.LittleEndian.Uint16(buf[10:12])
	f.SliceDescTableOffset = binary.LittleEndian.Uint32(buf[12:16])
	f.EndpointCodebookOffset = binary.LittleEndian.Uint32(buf[16:20])
	f.EndpointCodebookSize = binary.LittleEndian.Uint32(buf[20:24])
	f.SelectorCodebookOffset = binary.LittleEndian.Uint32(buf[24:28])
	f.SelectorCodebookSize = binary.LittleEndian.Uint32(buf[28:32])
	f.TablesOffset = binary.LittleEndian.Uint32(buf[32:36])
	f.TablesSize = binary.LittleEndian.Uint32(buf[36:40])
	f.HeaderCRC16 = binary.LittleEndian.Uint16(buf[40:42])

	if got := crc16(buf[0:40], 0); got != f.HeaderCRC16 {
		return nil, errors.Wrap(uirerr.Newf(uirerr.MalformedHeader, "uir: header CRC16 mismatch: got %#04x, want %#04x", got, f.HeaderCRC16), "container: parse header")
	}

	if err := f.parseSliceDescs(); err != nil {
		return nil, errors.Wrap(err, "container: parse slice descriptor table")
	}

	return f, nil
}

func (f *File) parseSliceDescs() error {
	start := int(f.SliceDescTableOffset)
	n := int(f.TotalSlices)
	end := start + n*SliceDescSize
	if start < 0 || end < start || end > len(f.buf) {
		return uirerr.Newf(uirerr.BufferTooSmall, "uir: slice descriptor table [%d,%d) exceeds buffer of length %d", start, end, len(f.buf))
	}

	f.Slices = make([]SliceDesc, n)
	for i := 0; i < n; i++ {
		b := f.buf[start+i*SliceDescSize:]
		d := SliceDesc{
			ImageIndex: binary.LittleEndian.Uint16(b[0:2]),
			LevelIndex: b[2],
			Flags:      b[3],
			BlocksX:    binary.LittleEndian.Uint16(b[4:6]),
			BlocksY:    binary.LittleEndian.Uint16(b[6:8]),
			DataOffset: binary.LittleEndian.Uint32(b[8:12]),
			DataSize:   binary.LittleEndian.Uint32(b[12:16]),
		}
		if d.BlocksX == 0 || d.BlocksY == 0 {
			return uirerr.Newf(uirerr.MalformedHeader, "uir: slice %d has zero block dimension (%d,%d)", i, d.BlocksX, d.BlocksY)
		}
		dEnd := int(d.DataOffset) + int(d.DataSize)
		if dEnd < int(d.DataOffset) || dEnd > len(f.buf) {
			return uirerr.Newf(uirerr.BufferTooSmall, "uir: slice %d data range [%d,%d) exceeds buffer of length %d", i, d.DataOffset, dEnd, len(f.buf))
		}
		f.Slices[i] = d
	}
	return nil
}

// TextureType returns the header's raw texture-type field, passed
// through unchanged; this transcoder never branches on it (see
// SPEC_FULL.md's supplemented-features note).
func (f *File) TextureType() uint8 { return f.textureType }

// EndpointCodebookBytes returns the endpoint codebook's raw byte range.
func (f *File) EndpointCodebookBytes() []byte {
	return f.buf[f.EndpointCodebookOffset : f.EndpointCodebookOffset+f.EndpointCodebookSize]
}

// SelectorCodebookBytes returns the selector codebook's raw byte range.
func (f *File) SelectorCodebookBytes() []byte {
	return f.buf[f.SelectorCodebookOffset : f.SelectorCodebookOffset+f.SelectorCodebookSize]
}

// TablesBytes returns the per-file tables section's raw byte range: the
// four per-instance Huffman tables (endpoint predictor, delta endpoint,
// selector, selector history RLE) and the 13-bit selector history_buf_size
// field, per spec.md §3/§5.
func (f *File) TablesBytes() []byte {
	return f.buf[f.TablesOffset : f.TablesOffset+f.TablesSize]
}

// SliceBytes returns slice i's raw block-stream byte range.
func (f *File) SliceBytes(i int) []byte {
	d := f.Slices[i]
	return f.buf[d.DataOffset : d.DataOffset+d.DataSize]
}

// ValidateDataCRC16 performs the optional, caller-triggered full-data
// integrity check: every codebook and slice byte range is checksummed
// and compared against a CRC16 trailer immediately following it. This is
// never performed implicitly by ParseFile; callers opt in when they want
// the stronger (and slower) guarantee.
func (f *File) ValidateDataCRC16() error {
	check := func(name string, data []byte, trailer []byte) error {
		if len(trailer) < 2 {
			return uirerr.Newf(uirerr.BufferTooSmall, "uir: %s CRC16 trailer truncated", name)
		}
		want := binary.LittleEndian.Uint16(trailer[0:2])
		got := crc16(data, 0)
		if got != want {
			return uirerr.Newf(uirerr.MalformedHeader, "uir: %s CRC16 mismatch: got %#04x, want %#04x", name, got, want)
		}
		return nil
	}

	epEnd := int(f.EndpointCodebookOffset) + int(f.EndpointCodebookSize)
	if err := check("endpoint codebook", f.EndpointCodebookBytes(), f.buf[epEnd:]); err != nil {
		return err
	}
	selEnd := int(f.SelectorCodebookOffset) + int(f.SelectorCodebookSize)
	if err := check("selector codebook", f.SelectorCodebookBytes(), f.buf[selEnd:]); err != nil {
		return err
	}
	tablesEnd := int(f.TablesOffset) + int(f.TablesSize)
	if err := check("tables section", f.TablesBytes(), f.buf[tablesEnd:]); err != nil {
		return err
	}
	for i, d := range f.Slices {
		end := int(d.DataOffset) + int(d.DataSize)
		if err := check("slice data", f.SliceBytes(i), f.buf[end:]); err != nil {
			return err
		}
	}
	return nil
}

// ImageLevelKey identifies a (image, mip level) pair, the grouping unit
// spec.md's slice-descriptor invariant is defined over: at most one
// color and one alpha slice per key.
type ImageLevelKey struct {
	ImageIndex uint16
	LevelIndex uint8
}

// ImageLevelSlices groups the slice descriptor table by (image_index,
// level_index), returning each group's color slice index and, if
// present, alpha slice index (-1 if absent).
func (f *File) ImageLevelSlices() map[ImageLevelKey]struct{ Color, Alpha int } {
	out := make(map[ImageLevelKey]struct{ Color, Alpha int })
	for i, d := range f.Slices {
		key := ImageLevelKey{ImageIndex: d.ImageIndex, LevelIndex: d.LevelIndex}
		g, ok := out[key]
		if !ok {
			g = struct{ Color, Alpha int }{Color: -1, Alpha: -1}
		}
		if d.IsAlpha() {
			g.Alpha = i
		} else {
			g.Color = i
		}
		out[key] = g
	}
	return out
}

// GetTotalImages returns the count of distinct image indices present
// across the slice descriptor table.
func (f *File) GetTotalImages() int {
	seen := make(map[uint16]struct{})
	for _, d := range f.Slices {
		seen[d.ImageIndex] = struct{}{}
	}
	return len(seen)
}

// ImageLevelInfo describes one (image, level) pair's block-grid shape.
type ImageLevelInfo struct {
	BlocksX, BlocksY int
	HasAlpha         bool
}

// GetImageLevelInfo returns block-grid info for imageIndex/levelIndex,
// and false if no color slice exists for that pair.
func (f *File) GetImageLevelInfo(imageIndex uint16, levelIndex uint8) (ImageLevelInfo, bool) {
	groups := f.ImageLevelSlices()
	g, ok := groups[ImageLevelKey{ImageIndex: imageIndex, LevelIndex: levelIndex}]
	if !ok || g.Color < 0 {
		return ImageLevelInfo{}, false
	}
	d := f.Slices[g.Color]
	return ImageLevelInfo{BlocksX: int(d.BlocksX), BlocksY: int(d.BlocksY), HasAlpha: g.Alpha >= 0}, true
}
