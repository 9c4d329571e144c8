/*
NAME
  uirerr_test.go

DESCRIPTION
  uirerr_test.go provides testing for functionality in uirerr.go.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package uirerr

import (
	"errors"
	"testing"
)

func TestIsMatchesKind(t *testing.T) {
	err := Newf(StreamCorrupt, "bad run length %d", 5)
	if !Is(err, StreamCorrupt) {
		t.Error("Is(err, StreamCorrupt) = false, want true")
	}
	if Is(err, CodebookCorrupt) {
		t.Error("Is(err, CodebookCorrupt) = true, want false")
	}
}

func TestUnwrapExposesCause(t *testing.T) {
	cause := errors.New("underlying failure")
	err := New(BufferTooSmall, cause)
	if got := errors.Unwrap(err); got != cause {
		t.Errorf("Unwrap() = %v, want %v", got, cause)
	}
}

func TestErrorStringIncludesKind(t *testing.T) {
	err := Newf(MalformedHeader, "bad signature")
	if got, want := err.Error(), "MalformedHeader: bad signature"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestIsFalseForNonUIRError(t *testing.T) {
	if Is(errors.New("plain error"), NotReady) {
		t.Error("Is() matched a plain error, want false")
	}
	if Is(nil, NotReady) {
		t.Error("Is(nil, ...) = true, want false")
	}
}
