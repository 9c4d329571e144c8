/*
NAME
  morton.go

DESCRIPTION
  morton.go interleaves 2D block coordinates into a Morton (Z-curve)
  index, the addressing order PVRTC1's physical bitstream stores blocks
  in, per spec §4.H.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package pvrtc1

// mortonInterleave spreads the low 16 bits of v so each occupies every
// other bit, the building block of a 2D Morton index.
func mortonInterleave(v uint32) uint32 {
	v &= 0x0000ffff
	v = (v | (v << 8)) & 0x00ff00ff
	v = (v | (v << 4)) & 0x0f0f0f0f
	v = (v | (v << 2)) & 0x33333333
	v = (v | (v << 1)) & 0x55555555
	return v
}

// mortonIndex returns the Z-order index for block coordinate (bx, by).
func mortonIndex(bx, by int) uint32 {
	return mortonInterleave(uint32(bx)) | (mortonInterleave(uint32(by)) << 1)
}
