/*
NAME
  etc1_test.go

DESCRIPTION
  etc1_test.go provides testing for functionality in etc1.go.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package etc1

import (
	"testing"

	"github.com/ausocean/uirtranscode/codec/uir/block"
)

func TestTranslateRoundTripsThroughDecodeToRGB(t *testing.T) {
	colors := block.Colors([3]uint8{7, 20, 31}, 4)
	l := &block.Logical{
		Colors: colors,
		Color5: [3]uint8{7, 20, 31},
		Inten5: 4,
		RawSelectors: [16]uint8{
			0, 1, 2, 3,
			1, 2, 3, 0,
			2, 3, 0, 1,
			3, 0, 1, 2,
		},
	}

	dst := make([]byte, BytesPerBlock)
	Translator{}.Translate(l, dst)

	got := DecodeToRGB(dst)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			want := l.PixelColor(x, y)
			if got[x+y*4] != want {
				t.Errorf("pixel (%d,%d): got %+v, want %+v", x, y, got[x+y*4], want)
			}
		}
	}
}

func TestTranslateSetsFlipAndDiffBits(t *testing.T) {
	l := &block.Logical{Colors: block.Colors([3]uint8{1, 2, 3}, 0)}
	dst := make([]byte, BytesPerBlock)
	Translator{}.Translate(l, dst)
	if dst[3]&0x3 != 0x3 {
		t.Errorf("byte 3 = %#x, want flip and diff bits set", dst[3])
	}
}

func TestBytesPerBlock(t *testing.T) {
	if got := (Translator{}).BytesPerBlock(); got != 8 {
		t.Errorf("BytesPerBlock() = %d, want 8", got)
	}
}
