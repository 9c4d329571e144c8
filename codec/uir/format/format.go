/*
NAME
  format.go

DESCRIPTION
  format.go defines the shared interface implemented by each per-block
  format translator (component G): ETC1, BC1, BC4, BC7 mode 6 and ETC2 EAC
  A8 all translate one reconstructed logical block into a fixed-size
  target-format block in isolation. PVRTC1 is the exception -- its
  per-block phase only stashes endpoints, with the real work (component H)
  happening once per slice -- and so does not implement this interface;
  it is driven through the pvrtc1.Canvas type (StashBlock, then Decode
  or Pack) in codec/uir/pvrtc1.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package format defines the translator interface implemented by each
// target-format block translator.
package format

import "github.com/ausocean/uirtranscode/codec/uir/block"

// BlockTranslator converts one reconstructed logical block into a
// target-format block and writes it to dst, which is exactly
// BytesPerBlock() bytes long.
type BlockTranslator interface {
	// BytesPerBlock returns the fixed size of one target-format block.
	BytesPerBlock() int
	// Translate writes the translated block to dst.
	Translate(l *block.Logical, dst []byte)
}
