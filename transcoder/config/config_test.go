/*
NAME
  config_test.go

DESCRIPTION
  config_test.go provides testing for functionality in config.go.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package config

import "testing"

func TestFormatString(t *testing.T) {
	tests := []struct {
		f    Format
		want string
	}{
		{NothingDefined, "NothingDefined"},
		{FormatETC1, "ETC1"},
		{FormatBC1, "BC1"},
		{FormatBC3, "BC3"},
		{FormatBC4, "BC4"},
		{FormatBC5, "BC5"},
		{FormatBC7M6, "BC7M6"},
		{FormatETC2EACA8, "ETC2_EAC_A8"},
		{FormatPVRTC1, "PVRTC1"},
	}
	for _, test := range tests {
		if got := test.f.String(); got != test.want {
			t.Errorf("%v.String() = %q, want %q", int(test.f), got, test.want)
		}
	}
}

func TestFormatBytesPerBlock(t *testing.T) {
	tests := []struct {
		f    Format
		want int
	}{
		{FormatETC1, 8},
		{FormatBC1, 8},
		{FormatBC4, 8},
		{FormatETC2EACA8, 8},
		{FormatPVRTC1, 8},
		{FormatBC3, 16},
		{FormatBC5, 16},
		{FormatBC7M6, 16},
		{NothingDefined, 0},
	}
	for _, test := range tests {
		if got := test.f.BytesPerBlock(); got != test.want {
			t.Errorf("%s.BytesPerBlock() = %d, want %d", test.f, got, test.want)
		}
	}
}

func TestFormatRequiresPowerOfTwo(t *testing.T) {
	if !FormatPVRTC1.RequiresPowerOfTwo() {
		t.Error("PVRTC1.RequiresPowerOfTwo() = false, want true")
	}
	if FormatBC1.RequiresPowerOfTwo() {
		t.Error("BC1.RequiresPowerOfTwo() = true, want false")
	}
}

func TestValidateRejectsNothingDefined(t *testing.T) {
	c := Config{Target: NothingDefined}
	if err := c.Validate(); err == nil {
		t.Error("expected error for NothingDefined target")
	}
}

func TestValidateRejectsReservedFlag(t *testing.T) {
	c := Config{Target: FormatBC1, Flags: FlagPVRTC1DecodeToNextPow2}
	if err := c.Validate(); err == nil {
		t.Error("expected error for reserved FlagPVRTC1DecodeToNextPow2")
	}
}

func TestValidateRejectsWrapAddressingOnNonPVRTC1(t *testing.T) {
	c := Config{Target: FormatBC1, Flags: FlagPVRTC1WrapAddressing}
	if err := c.Validate(); err == nil {
		t.Error("expected error for FlagPVRTC1WrapAddressing on non-PVRTC1 target")
	}
}

func TestValidateAcceptsWrapAddressingOnPVRTC1(t *testing.T) {
	c := Config{Target: FormatPVRTC1, Flags: FlagPVRTC1WrapAddressing}
	if err := c.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateAcceptsPlainBC1(t *testing.T) {
	c := Config{Target: FormatBC1, Flags: FlagBC1ForbidThreeColorBlocks}
	if err := c.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
