/*
NAME
  config.go

DESCRIPTION
  config.go defines the target-format registry and decode flags
  consumed by transcoder.TranscodeImageLevel, modeled on revid/config's
  enum-constants-plus-Config-struct-plus-Validate shape.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package config defines the transcoder's target-format registry and
// decode flags.
package config

import "fmt"

// Format identifies a transcode target.
type Format int

const (
	// NothingDefined indicates no target format has been set.
	NothingDefined Format = iota
	FormatETC1
	FormatBC1
	FormatBC3 // BC1 color half + BC4 alpha half, synthesized together.
	FormatBC4
	FormatBC5 // two independent BC4 channel blocks.
	FormatBC7M6
	FormatETC2EACA8
	FormatPVRTC1
)

func (f Format) String() string {
	switch f {
	case FormatETC1:
		return "ETC1"
	case FormatBC1:
		return "BC1"
	case FormatBC3:
		return "BC3"
	case FormatBC4:
		return "BC4"
	case FormatBC5:
		return "BC5"
	case FormatBC7M6:
		return "BC7M6"
	case FormatETC2EACA8:
		return "ETC2_EAC_A8"
	case FormatPVRTC1:
		return "PVRTC1"
	default:
		return "NothingDefined"
	}
}

// BytesPerBlock returns the fixed block size for f, or 0 for
// NothingDefined.
func (f Format) BytesPerBlock() int {
	switch f {
	case FormatETC1, FormatBC1, FormatBC4, FormatETC2EACA8, FormatPVRTC1:
		return 8
	case FormatBC3, FormatBC5, FormatBC7M6:
		return 16
	default:
		return 0
	}
}

// RequiresPowerOfTwo reports whether f can only target power-of-two
// block-grid dimensions.
func (f Format) RequiresPowerOfTwo() bool { return f == FormatPVRTC1 }

// DecodeFlags are per-transcode behavioral switches.
type DecodeFlags uint32

const (
	// FlagBC1ForbidThreeColorBlocks forces every BC1 block (including the
	// color half of a synthesized BC3 block) into 4-color mode.
	FlagBC1ForbidThreeColorBlocks DecodeFlags = 1 << iota
	// FlagPVRTC1DecodeToNextPow2 is reserved and always unsupported: this
	// transcoder never pads a non-power-of-two source up to the next
	// power of two on the caller's behalf.
	FlagPVRTC1DecodeToNextPow2
	// FlagPVRTC1WrapAddressing selects wrap (vs. clamp) addressing at the
	// modulation pass's canvas edges.
	FlagPVRTC1WrapAddressing
)

// Config bundles a transcode request: the target format and its decode
// flags (which carry the wrap-or-clamp choice for PVRTC1 block-grid
// edges).
type Config struct {
	Target Format
	Flags  DecodeFlags
}

// Validate checks for configuration errors, mirroring revid/config's
// Validate contract (a Config is usable only after this returns nil).
func (c *Config) Validate() error {
	if c.Target == NothingDefined {
		return fmt.Errorf("config: target format not set")
	}
	if c.Flags&FlagPVRTC1DecodeToNextPow2 != 0 {
		return fmt.Errorf("config: FlagPVRTC1DecodeToNextPow2 is reserved and unsupported")
	}
	if c.Target != FormatPVRTC1 && c.Flags&FlagPVRTC1WrapAddressing != 0 {
		return fmt.Errorf("config: FlagPVRTC1WrapAddressing set for non-PVRTC1 target %s", c.Target)
	}
	return nil
}
