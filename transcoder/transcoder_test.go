/*
NAME
  transcoder_test.go

DESCRIPTION
  transcoder_test.go provides testing for functionality in transcoder.go.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package transcoder

import (
	"encoding/binary"
	"testing"

	"github.com/ausocean/uirtranscode/codec/uir/block"
	"github.com/ausocean/uirtranscode/codec/uir/tables"
	"github.com/ausocean/uirtranscode/codec/uir/uirerr"
	"github.com/ausocean/uirtranscode/container/uir"
	"github.com/ausocean/uirtranscode/transcoder/config"

	"github.com/ausocean/uirtranscode/codec/uir/etc1"
)

// crc16 mirrors container/uir's unexported checksum so this package's
// tests can assemble a valid container header without reaching across
// the package boundary.
func crc16(buf []byte, crcIn uint16) uint16 {
	crc := ^crcIn
	for _, b := range buf {
		q := uint16(b) ^ (crc >> 8)
		k := (q >> 4) ^ q
		crc = (crc << 8) ^ k ^ (k << 5) ^ (k << 12)
	}
	return ^crc
}

// bitStream hand-assembles a little-endian, LSB-first bit sequence
// matching bits.Reader's own framing.
type bitStream struct {
	buf    []byte
	bitBuf uint64
	bitCnt uint
}

func (s *bitStream) writeBits(v uint32, n int) {
	mask := uint64(1)<<uint(n) - 1
	s.bitBuf |= (uint64(v) & mask) << s.bitCnt
	s.bitCnt += uint(n)
	for s.bitCnt >= 8 {
		s.buf = append(s.buf, byte(s.bitBuf))
		s.bitBuf >>= 8
		s.bitCnt -= 8
	}
}

func (s *bitStream) writeVLC(chunkBits int, v uint32) {
	for {
		payload := v & (uint32(1)<<uint(chunkBits) - 1)
		v >>= uint(chunkBits)
		cont := uint32(0)
		if v != 0 {
			cont = 1
		}
		s.writeBits(payload, chunkBits)
		s.writeBits(cont, 1)
		if v == 0 {
			break
		}
	}
}

func (s *bitStream) writeTable(lengths ...uint8) {
	s.writeVLC(7, uint32(len(lengths)))
	for _, l := range lengths {
		s.writeBits(uint32(l), 5)
	}
}

func (s *bitStream) bytes() []byte {
	out := append([]byte{}, s.buf...)
	if s.bitCnt > 0 {
		out = append(out, byte(s.bitBuf))
	}
	return out
}

// oneBlockFile builds a minimal single-slice UIR file with one endpoint
// (color5=16,16,16, inten5=0) and one selector (all raw codes zero), on a
// 1x1 block grid. Its endpoint predictor always decodes packet 3, whose
// first field is "delta" (d=0) and whose other three fields are "left",
// and it always selects directly, so any single-row grid decodes; a grid
// with a second row fails at (0,1), so callers that rewrite
// blocksX/blocksY to such a shape only reach checks made before decoding.
func oneBlockFile(t *testing.T) []byte {
	t.Helper()

	var ep bitStream
	ep.writeVLC(7, 1) // numEndpoints = 1
	ep.writeTable(1)  // dm0
	ep.writeTable(1)  // dm1
	ep.writeTable(1)  // dm2
	ep.writeTable(1)  // im
	ep.writeBits(0, 1) // grayscale = false
	epBytes := ep.bytes()

	var sel bitStream
	sel.writeVLC(7, 1) // numSelectors = 1
	sel.writeBits(0, 1) // used-global = false
	sel.writeBits(0, 1) // used-hybrid = false
	sel.writeBits(1, 1) // used-raw = true
	for i := 0; i < 4; i++ {
		sel.writeBits(0, 8) // row byte: all four 2-bit codes zero
	}
	selBytes := sel.bytes()

	var tbl bitStream
	tbl.writeTable(0, 0, 0, 1) // endpoint predictor: single symbol 3 -> all "delta"
	tbl.writeTable(1)          // delta endpoint: single symbol 0 -> d=0
	tbl.writeTable(1)          // selector: single symbol 0 -> direct index 0
	tbl.writeTable(1)          // selector history RLE: unused, single symbol 0
	tbl.writeBits(0, 13)       // history_buf_size = 0
	tblBytes := tbl.bytes()

	var blk bitStream // every decode above is a degenerate zero-bit table
	blkBytes := blk.bytes()

	const descTableOff = uir.HeaderSize
	epOff := descTableOff + 1*uir.SliceDescSize
	selOff := epOff + len(epBytes)
	tblOff := selOff + len(selBytes)
	dataOff := tblOff + len(tblBytes)
	total := dataOff + len(blkBytes)

	buf := make([]byte, total)
	copy(buf[0:4], []byte("UIR1"))
	binary.LittleEndian.PutUint16(buf[4:6], 1) // version
	binary.LittleEndian.PutUint16(buf[10:12], 1) // totalSlices
	binary.LittleEndian.PutUint32(buf[12:16], uint32(descTableOff))
	binary.LittleEndian.PutUint32(buf[16:20], uint32(epOff))
	binary.LittleEndian.PutUint32(buf[20:24], uint32(len(epBytes)))
	binary.LittleEndian.PutUint32(buf[24:28], uint32(selOff))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(len(selBytes)))
	binary.LittleEndian.PutUint32(buf[32:36], uint32(tblOff))
	binary.LittleEndian.PutUint32(buf[36:40], uint32(len(tblBytes)))
	binary.LittleEndian.PutUint16(buf[40:42], crc16(buf[0:40], 0))

	d := buf[descTableOff:]
	binary.LittleEndian.PutUint16(d[4:6], 1) // blocksX
	binary.LittleEndian.PutUint16(d[6:8], 1) // blocksY
	binary.LittleEndian.PutUint32(d[8:12], uint32(dataOff))
	binary.LittleEndian.PutUint32(d[12:16], uint32(len(blkBytes)))

	copy(buf[epOff:], epBytes)
	copy(buf[selOff:], selBytes)
	copy(buf[tblOff:], tblBytes)
	copy(buf[dataOff:], blkBytes)

	return buf
}

func TestTranscodeImageLevelETC1(t *testing.T) {
	f, err := uir.ParseFile(oneBlockFile(t))
	if err != nil {
		t.Fatalf("ParseFile: unexpected error: %v", err)
	}
	tc := NewTranscoder(nil)
	if err := tc.StartTranscoding(f); err != nil {
		t.Fatalf("StartTranscoding: unexpected error: %v", err)
	}

	dst := make([]byte, etc1.BytesPerBlock)
	if err := tc.TranscodeImageLevel(f, 0, 0, config.FormatETC1, 0, dst, etc1.BytesPerBlock); err != nil {
		t.Fatalf("TranscodeImageLevel: unexpected error: %v", err)
	}

	pixels := etc1.DecodeToRGB(dst)
	tables.Init()
	want := block.Colors([3]uint8{16, 16, 16}, 0)[tables.Linearize(0)]
	for i, p := range pixels {
		if p != want {
			t.Errorf("pixel %d = %+v, want %+v", i, p, want)
		}
	}
}

func TestTranscodeImageLevelBeforeStartTranscoding(t *testing.T) {
	f, err := uir.ParseFile(oneBlockFile(t))
	if err != nil {
		t.Fatalf("ParseFile: unexpected error: %v", err)
	}
	tc := NewTranscoder(nil)
	dst := make([]byte, etc1.BytesPerBlock)
	err = tc.TranscodeImageLevel(f, 0, 0, config.FormatETC1, 0, dst, etc1.BytesPerBlock)
	if !uirerr.Is(err, uirerr.NotReady) {
		t.Errorf("got %v, want a NotReady error", err)
	}
}

func TestTranscodeImageLevelMissingSlice(t *testing.T) {
	f, err := uir.ParseFile(oneBlockFile(t))
	if err != nil {
		t.Fatalf("ParseFile: unexpected error: %v", err)
	}
	tc := NewTranscoder(nil)
	if err := tc.StartTranscoding(f); err != nil {
		t.Fatalf("StartTranscoding: unexpected error: %v", err)
	}
	dst := make([]byte, etc1.BytesPerBlock)
	err = tc.TranscodeImageLevel(f, 9, 9, config.FormatETC1, 0, dst, etc1.BytesPerBlock)
	if err == nil {
		t.Fatal("expected error for missing image/level")
	}
}

func TestTranscodeImageLevelRejectsNonPowerOfTwoPVRTC1(t *testing.T) {
	buf := oneBlockFile(t)
	d := buf[uir.HeaderSize:]
	binary.LittleEndian.PutUint16(d[4:6], 3) // blocksX = 3, not a power of two
	binary.LittleEndian.PutUint16(d[6:8], 3) // blocksY = 3

	f, err := uir.ParseFile(buf)
	if err != nil {
		t.Fatalf("ParseFile: unexpected error: %v", err)
	}
	tc := NewTranscoder(nil)
	if err := tc.StartTranscoding(f); err != nil {
		t.Fatalf("StartTranscoding: unexpected error: %v", err)
	}
	dst := make([]byte, 9*9*4)
	err = tc.TranscodeImageLevel(f, 0, 0, config.FormatPVRTC1, 0, dst, 0)
	if !uirerr.Is(err, uirerr.UnsupportedRequest) {
		t.Errorf("got %v, want an UnsupportedRequest error", err)
	}
}

func TestTranscodeImageLevelBC3RequiresAlphaSlice(t *testing.T) {
	f, err := uir.ParseFile(oneBlockFile(t))
	if err != nil {
		t.Fatalf("ParseFile: unexpected error: %v", err)
	}
	tc := NewTranscoder(nil)
	if err := tc.StartTranscoding(f); err != nil {
		t.Fatalf("StartTranscoding: unexpected error: %v", err)
	}
	dst := make([]byte, 16)
	err = tc.TranscodeImageLevel(f, 0, 0, config.FormatBC3, 0, dst, 16)
	if err == nil {
		t.Fatal("expected error for BC3 target with no paired alpha slice")
	}
}
