/*
NAME
  reader_test.go

DESCRIPTION
  reader_test.go provides testing for functionality in reader.go.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package bits

import (
	"testing"
)

func TestGetBits(t *testing.T) {
	tests := []struct {
		buf  []byte
		n    []int
		want []uint32
	}{
		{
			// 0b1011_0010, 0b0000_0001
			buf:  []byte{0xb2, 0x01},
			n:    []int{4, 4, 8},
			want: []uint32{0x2, 0xb, 0x01},
		},
		{
			buf:  []byte{0xff},
			n:    []int{1, 1, 1, 1, 1, 1, 1, 1},
			want: []uint32{1, 1, 1, 1, 1, 1, 1, 1},
		},
		{
			buf:  []byte{0x00},
			n:    []int{8},
			want: []uint32{0},
		},
	}

	for i, test := range tests {
		r := NewReader(test.buf)
		for j, n := range test.n {
			got, err := r.GetBits(n)
			if err != nil {
				t.Fatalf("test %d chunk %d: unexpected error: %v", i, j, err)
			}
			if got != test.want[j] {
				t.Errorf("test %d chunk %d: got %d, want %d", i, j, got, test.want[j])
			}
		}
	}
}

func TestGetBitsEOF(t *testing.T) {
	r := NewReader([]byte{0x01})
	if _, err := r.GetBits(9); err != ErrUnexpectedEOF {
		t.Errorf("got %v, want ErrUnexpectedEOF", err)
	}
}

func TestGetBitsInvalidCount(t *testing.T) {
	r := NewReader([]byte{0x00})
	if _, err := r.GetBits(33); err == nil {
		t.Error("expected error for n > 32, got nil")
	}
	if _, err := r.GetBits(-1); err == nil {
		t.Error("expected error for n < 0, got nil")
	}
}

func TestDecodeVLCRoundTrip(t *testing.T) {
	// Encode values as chunkBits-sized little-endian chunks with a
	// continuation bit, mirroring DecodeVLC's own framing, then confirm
	// DecodeVLC recovers the original value.
	const chunkBits = 4
	tests := []uint32{0, 1, 15, 16, 255, 4095, 1 << 20}

	for _, want := range tests {
		var buf []byte
		var bitBuf uint64
		var bitCnt uint
		v := want
		for {
			payload := v & ((1 << chunkBits) - 1)
			v >>= chunkBits
			cont := uint64(0)
			if v != 0 {
				cont = 1
			}
			bitBuf |= (uint64(payload) | (cont << chunkBits)) << bitCnt
			bitCnt += chunkBits + 1
			for bitCnt >= 8 {
				buf = append(buf, byte(bitBuf))
				bitBuf >>= 8
				bitCnt -= 8
			}
			if v == 0 {
				break
			}
		}
		if bitCnt > 0 {
			buf = append(buf, byte(bitBuf))
		}

		r := NewReader(buf)
		got, err := r.DecodeVLC(chunkBits)
		if err != nil {
			t.Fatalf("value %d: unexpected error: %v", want, err)
		}
		if got != want {
			t.Errorf("value %d: got %d", want, got)
		}
	}
}

func TestBitsRemaining(t *testing.T) {
	r := NewReader([]byte{0x01, 0x02, 0x03})
	if got, want := r.BitsRemaining(), 24; got != want {
		t.Fatalf("got %d bits remaining, want %d", got, want)
	}
	if _, err := r.GetBits(4); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := r.BitsRemaining(), 20; got != want {
		t.Errorf("got %d bits remaining, want %d", got, want)
	}
}
