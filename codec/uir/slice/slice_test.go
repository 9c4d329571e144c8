/*
NAME
  slice_test.go

DESCRIPTION
  slice_test.go provides testing for functionality in slice.go.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package slice

import (
	"testing"

	"github.com/ausocean/uirtranscode/bits"
	"github.com/ausocean/uirtranscode/codec/uir/block"
	"github.com/ausocean/uirtranscode/codec/uir/codebook"
	"github.com/ausocean/uirtranscode/codec/uir/huffman"
)

// bitStream hand-assembles a little-endian, LSB-first bit sequence
// matching bits.Reader's own framing, for constructing minimal valid
// slice streams.
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

// writeTable emits a huffman.ReadTable-compatible header for a table
// whose code lengths are given in lengths, one 5-bit field per symbol
// after a VLC-coded symbol count. A single non-zero length collapses to
// a degenerate zero-bit table always decoding that symbol's index.
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

// readTable decodes the huffman.Table whose wire form is s's entire
// contents, using a reader private to s -- every Tables field is parsed
// from its own independent bitstream, just as the per-file tables
// section parses its four tables back to back before any slice body is
// read.
func readTable(t *testing.T, s *bitStream) *huffman.Table {
	t.Helper()
	tbl, err := huffman.ReadTable(bits.NewReader(s.bytes()))
	if err != nil {
		t.Fatalf("building test table: %v", err)
	}
	return tbl
}

// singleSymbolTable returns a bitStream encoding a degenerate table that
// always decodes to sym, consuming zero bits, for tests that only care
// about the control-flow path a given predictor/selector value takes.
func singleSymbolTable(sym int) *bitStream {
	var s bitStream
	lengths := make([]uint8, sym+1)
	lengths[sym] = 1
	s.writeTable(lengths...)
	return &s
}

// markerTranslator records the Color5[0] of each logical block it
// translates into a single output byte, letting tests confirm which
// endpoint a block resolved to without exercising a real format codec.
type markerTranslator struct{}

func (markerTranslator) BytesPerBlock() int { return 1 }
func (markerTranslator) Translate(l *block.Logical, dst []byte) {
	dst[0] = l.Color5[0]
}

func TestDecodeTablesReadsHistoryBufSize(t *testing.T) {
	var s bitStream
	s.writeTable(1)     // endpoint predictor
	s.writeTable(1)     // delta endpoint
	s.writeTable(1)     // selector
	s.writeTable(1)     // selector history RLE
	s.writeBits(42, 13) // history_buf_size

	r := bits.NewReader(s.bytes())
	tabs, err := DecodeTables(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tabs.HistoryBufSize != 42 {
		t.Errorf("HistoryBufSize = %d, want 42", tabs.HistoryBufSize)
	}
	if tabs.EndpointPred == nil || tabs.DeltaEndpoint == nil || tabs.Selector == nil || tabs.SelectorHistoryRLE == nil {
		t.Error("expected all four tables to be populated")
	}
}

func TestDecodeTablesRejectsOversizedHistoryBuf(t *testing.T) {
	var s bitStream
	s.writeTable(1)
	s.writeTable(1)
	s.writeTable(1)
	s.writeTable(1)
	s.writeBits(maxHistoryBufSize+1, 13)

	r := bits.NewReader(s.bytes())
	if _, err := DecodeTables(r); err == nil {
		t.Fatal("expected error for history_buf_size exceeding max")
	}
}

func TestDecodeRejectsInvalidDims(t *testing.T) {
	r := bits.NewReader(nil)
	err := Decode(r, Dims{0, 1}, nil, nil, Tables{}, markerTranslator{}, nil, 0)
	if err == nil {
		t.Fatal("expected error for zero-sized dims")
	}
}

// TestDecodeRejectsLeftPredictorAllLeft reproduces the spec's S3
// scenario: a predictor packet of 0b00000000 (every 2-bit field
// "left") at (0,0) must fail, since there is no left neighbor.
func TestDecodeRejectsLeftPredictorAllLeft(t *testing.T) {
	tabs := Tables{EndpointPred: readTable(t, singleSymbolTable(0))} // packet 0 -> all fields "left"

	r := bits.NewReader(nil)
	dst := make([]byte, 2)
	err := Decode(r, Dims{2, 1}, nil, nil, tabs, markerTranslator{}, dst, 2)
	if err == nil {
		t.Fatal("expected StreamCorrupt for all-left packet at (0,0)")
	}
}

func TestDecodeRejectsUpPredictorOnFirstRow(t *testing.T) {
	tabs := Tables{EndpointPred: readTable(t, singleSymbolTable(1))} // packet 1 -> "up"
	r := bits.NewReader(nil)
	dst := make([]byte, 1)
	err := Decode(r, Dims{1, 1}, nil, nil, tabs, markerTranslator{}, dst, 1)
	if err == nil {
		t.Fatal("expected error for up predictor on first row")
	}
}

func TestDecodeRejectsUpLeftPredictorAtGridEdge(t *testing.T) {
	tabs := Tables{EndpointPred: readTable(t, singleSymbolTable(2))} // packet 2 -> "up-left"
	r := bits.NewReader(nil)
	dst := make([]byte, 1)
	err := Decode(r, Dims{1, 1}, nil, nil, tabs, markerTranslator{}, dst, 1)
	if err == nil {
		t.Fatal("expected error for up-left predictor at grid edge")
	}
}

func TestDecodeRejectsDeltaWithEmptyCodebook(t *testing.T) {
	tabs := Tables{
		EndpointPred:  readTable(t, singleSymbolTable(3)), // packet 3 -> "delta"
		DeltaEndpoint: readTable(t, singleSymbolTable(0)),
	}
	r := bits.NewReader(nil)
	dst := make([]byte, 1)
	err := Decode(r, Dims{1, 1}, nil, nil, tabs, markerTranslator{}, dst, 1)
	if err == nil {
		t.Fatal("expected error for delta prediction against an empty endpoint codebook")
	}
}

// TestDecodeFourModeGrid decodes a 2x2-block slice exercising all four
// endpoint-predictor modes from a single packet: (0,0) delta, (1,0)
// left, (0,1) up, (1,1) up-left. All four resolve to endpoint index 0,
// since the delta symbol is 0 and prevEndpointIndex starts at 0.
func TestDecodeFourModeGrid(t *testing.T) {
	// Packet bit layout (2 bits per field, field i at bits [2i:2i+2)):
	//   field0=(0,0)=delta(3), field1=(1,0)=left(0),
	//   field2=(0,1)=up(1),    field3=(1,1)=up-left(2).
	const packet = 3 | 0<<2 | 1<<4 | 2<<6

	tabs := Tables{
		EndpointPred:  readTable(t, singleSymbolTable(packet)),
		DeltaEndpoint: readTable(t, singleSymbolTable(0)), // d = 0 always
		Selector:      readTable(t, singleSymbolTable(0)), // direct selector index 0
	}

	endpoints := []codebook.Endpoint{
		{Color5: [3]uint8{10, 0, 0}},
		{Color5: [3]uint8{20, 0, 0}},
	}
	selectors := []codebook.Selector{{}}

	dst := make([]byte, 4)
	r := bits.NewReader(nil)
	if err := Decode(r, Dims{2, 2}, endpoints, selectors, tabs, markerTranslator{}, dst, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []byte{10, 10, 10, 10}
	for i, b := range want {
		if dst[i] != b {
			t.Errorf("dst[%d] = %d, want %d", i, dst[i], b)
		}
	}
}

// TestDecodeDeltaAccumulates confirms successive delta predictions
// accumulate modulo the endpoint codebook size, rather than always
// resolving back to the same index.
func TestDecodeDeltaAccumulates(t *testing.T) {
	const packet = 3 | 3<<2 // both fields in the only row are delta

	tabs := Tables{
		EndpointPred:  readTable(t, singleSymbolTable(packet)),
		DeltaEndpoint: readTable(t, singleSymbolTable(1)), // d = 1 always
		Selector:      readTable(t, singleSymbolTable(0)),
	}

	endpoints := []codebook.Endpoint{
		{Color5: [3]uint8{1, 0, 0}},
		{Color5: [3]uint8{2, 0, 0}},
		{Color5: [3]uint8{3, 0, 0}},
	}
	selectors := []codebook.Selector{{}}

	dst := make([]byte, 2)
	r := bits.NewReader(nil)
	if err := Decode(r, Dims{2, 1}, endpoints, selectors, tabs, markerTranslator{}, dst, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// (0,0): prev=0, d=1 -> idx 1 -> Color5[0]=2.
	// (1,0): prev=1, d=1 -> idx 2 -> Color5[0]=3.
	want := []byte{2, 3}
	for i, b := range want {
		if dst[i] != b {
			t.Errorf("dst[%d] = %d, want %d", i, dst[i], b)
		}
	}
}

func TestDecodeRejectsOutOfRangeEndpointIndex(t *testing.T) {
	tabs := Tables{
		EndpointPred:  readTable(t, singleSymbolTable(3)), // delta
		DeltaEndpoint: readTable(t, singleSymbolTable(0)),
		Selector:      readTable(t, singleSymbolTable(0)),
	}

	endpoints := []codebook.Endpoint{} // empty: any index is out of range
	r := bits.NewReader(nil)
	dst := make([]byte, 1)
	err := Decode(r, Dims{1, 1}, endpoints, []codebook.Selector{{}}, tabs, markerTranslator{}, dst, 1)
	if err == nil {
		t.Fatal("expected error for out-of-range endpoint index")
	}
}

// TestDecodeSelectorDirectThenHistory exercises both non-RLE selector
// branches in sequence: block 0 decodes symbol 0, a direct index below
// selectorFirstSymbol, which is pushed onto the history buffer; block 1
// decodes symbol 1 (selectorFirstSymbol+historyIdx 0), replaying that
// same pushed index back out of the history buffer.
func TestDecodeSelectorDirectThenHistory(t *testing.T) {
	tabs := Tables{
		EndpointPred:   readTable(t, singleSymbolTable(3|3<<2)), // both blocks delta
		DeltaEndpoint:  readTable(t, singleSymbolTable(0)),      // d = 0 -> endpoint stays index 0
		HistoryBufSize: 1,                                       // symbol 1 = history index 0, RLE symbol = 2
	}

	var selTable bitStream
	selTable.writeTable(1, 1) // two symbols, both length 1: codes "0" and "1"
	tabs.Selector = readTable(t, &selTable)

	var s bitStream
	s.writeBits(0, 1) // block 0: symbol 0 -> direct index 0, pushed to history
	s.writeBits(1, 1) // block 1: symbol 1 -> history index 0, replaying it

	endpoints := []codebook.Endpoint{{Color5: [3]uint8{7, 0, 0}}}
	selectors := []codebook.Selector{{Raw: [16]uint8{1, 1, 1, 1}}}

	dst := make([]byte, 2)
	r := bits.NewReader(s.bytes())
	if err := Decode(r, Dims{2, 1}, endpoints, selectors, tabs, markerTranslator{}, dst, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// TestDecodeSelectorRLELongRunEscape reproduces the spec's S4 scenario:
// a selector RLE symbol followed by the reserved long-run escape
// (selectorHistoryRLELongRunSymbol) extends the run length by a 7-bit
// VLC on top of selectorHistoryRLECountThresh, and every covered block
// reuses prevSelectorIndex.
func TestDecodeSelectorRLELongRunEscape(t *testing.T) {
	const allDelta = 3 | 3<<2 | 3<<4 | 3<<6

	const numSelectors = 2
	const historyBufSize = 4
	const selectorRLESymbol = numSelectors + historyBufSize // = 6

	rleLengths := make([]uint8, selectorHistoryRLECountTotal)
	rleLengths[selectorHistoryRLELongRunSymbol] = 1
	var rleTable bitStream
	rleTable.writeTable(rleLengths...)

	tabs := Tables{
		EndpointPred:       readTable(t, singleSymbolTable(allDelta)),
		DeltaEndpoint:      readTable(t, singleSymbolTable(0)), // d=0 always
		Selector:           readTable(t, singleSymbolTable(selectorRLESymbol)),
		SelectorHistoryRLE: readTable(t, &rleTable),
		HistoryBufSize:     historyBufSize,
	}

	const ext = 5
	var s bitStream
	s.writeVLC(selectorHistoryRLEExtensionVLCBits, ext)

	endpoints := []codebook.Endpoint{{Color5: [3]uint8{42, 0, 0}}}
	selectors := []codebook.Selector{{}, {}}

	const totalBlocks = ext + selectorHistoryRLECountThresh // run == totalBlocks, must not exceed
	dst := make([]byte, totalBlocks)
	r := bits.NewReader(s.bytes())
	if err := Decode(r, Dims{totalBlocks, 1}, endpoints, selectors, tabs, markerTranslator{}, dst, totalBlocks); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, b := range dst {
		if b != 42 {
			t.Errorf("dst[%d] = %d, want 42", i, b)
		}
	}
}

func TestDecodeRejectsSelectorRLERunExceedingTotalBlocks(t *testing.T) {
	const allDelta = 3 | 3<<2 | 3<<4 | 3<<6
	const numSelectors = 2
	const historyBufSize = 4
	const selectorRLESymbol = numSelectors + historyBufSize

	rleLengths := make([]uint8, selectorHistoryRLECountTotal)
	rleLengths[selectorHistoryRLELongRunSymbol] = 1
	var rleTable bitStream
	rleTable.writeTable(rleLengths...)

	tabs := Tables{
		EndpointPred:       readTable(t, singleSymbolTable(allDelta)),
		DeltaEndpoint:      readTable(t, singleSymbolTable(0)),
		Selector:           readTable(t, singleSymbolTable(selectorRLESymbol)),
		SelectorHistoryRLE: readTable(t, &rleTable),
		HistoryBufSize:     historyBufSize,
	}

	const ext = 100 // run = 103, far larger than the 2-block slice below
	var s bitStream
	s.writeVLC(selectorHistoryRLEExtensionVLCBits, ext)

	endpoints := []codebook.Endpoint{{Color5: [3]uint8{1, 0, 0}}}
	selectors := []codebook.Selector{{}, {}}

	dst := make([]byte, 2)
	r := bits.NewReader(s.bytes())
	err := Decode(r, Dims{2, 1}, endpoints, selectors, tabs, markerTranslator{}, dst, 2)
	if err == nil {
		t.Fatal("expected error for RLE run exceeding total blocks")
	}
}

// twoSymbolPredTable builds a real (non-degenerate) two-symbol
// endpoint-predictor table assigning packet value a to raw code "0" and
// packet value b to raw code "1", for tests that need the predictor to
// decode two different real values across successive reload points.
func twoSymbolPredTable(t *testing.T, a, b int) *huffman.Table {
	t.Helper()
	n := a
	if b > n {
		n = b
	}
	lengths := make([]uint8, n+1)
	lengths[a] = 1
	lengths[b] = 1
	var s bitStream
	s.writeTable(lengths...)
	return readTable(t, &s)
}

// TestDecodeEndpointPredictorRepeatReuse confirms the repeat-count
// escape reloads the previous real packet for the configured number of
// further 2x2 groups, rather than decoding a new predictor symbol.
func TestDecodeEndpointPredictorRepeatReuse(t *testing.T) {
	const allDelta = 255 // 3|3<<2|3<<4|3<<6: every field "delta"
	predTable := twoSymbolPredTable(t, allDelta, endpointPredRepeatSentinel)

	tabs := Tables{
		EndpointPred:  predTable,
		DeltaEndpoint: readTable(t, singleSymbolTable(0)), // d=0 always
		Selector:      readTable(t, singleSymbolTable(0)),
	}

	var s bitStream
	s.writeBits(0, 1)              // reload at bx=0: code "0" -> allDelta (real packet)
	s.writeBits(1, 1)              // reload at bx=2: code "1" -> sentinel
	s.writeVLC(endpointPredCountVLCBits, 1) // repeat count = 1, consumed by the bx=4 reload

	endpoints := []codebook.Endpoint{{Color5: [3]uint8{9, 0, 0}}}
	selectors := []codebook.Selector{{}}

	dst := make([]byte, 6)
	r := bits.NewReader(s.bytes())
	if err := Decode(r, Dims{6, 1}, endpoints, selectors, tabs, markerTranslator{}, dst, 6); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, b := range dst {
		if b != 9 {
			t.Errorf("dst[%d] = %d, want 9", i, b)
		}
	}
}

// TestDecodeRejectsDanglingRepeatCount confirms a repeat count left
// unconsumed at end of stream is fatal.
func TestDecodeRejectsDanglingRepeatCount(t *testing.T) {
	const allDelta = 255
	predTable := twoSymbolPredTable(t, allDelta, endpointPredRepeatSentinel)

	tabs := Tables{
		EndpointPred:  predTable,
		DeltaEndpoint: readTable(t, singleSymbolTable(0)),
		Selector:      readTable(t, singleSymbolTable(0)),
	}

	var s bitStream
	s.writeBits(0, 1)                       // reload at bx=0: allDelta
	s.writeBits(1, 1)                       // reload at bx=2: sentinel
	s.writeVLC(endpointPredCountVLCBits, 5) // repeat count = 5, never fully consumed

	endpoints := []codebook.Endpoint{{Color5: [3]uint8{1, 0, 0}}}
	selectors := []codebook.Selector{{}}

	dst := make([]byte, 4)
	r := bits.NewReader(s.bytes())
	err := Decode(r, Dims{4, 1}, endpoints, selectors, tabs, markerTranslator{}, dst, 4)
	if err == nil {
		t.Fatal("expected error for dangling repeat count at end of stream")
	}
}
