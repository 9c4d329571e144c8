/*
NAME
  uirerr.go

DESCRIPTION
  uirerr.go defines the discriminated error taxonomy shared by the UIR
  container parser, codebook decoder, slice decoder, and top-level
  transcoder: MalformedHeader, BufferTooSmall, CodebookCorrupt,
  StreamCorrupt, UnsupportedRequest and NotReady, each wrapping an
  underlying cause while remaining distinguishable via errors.Is/As.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package uirerr defines the UIR transcoder's error taxonomy: a small set
// of discriminated outcomes (not exception types) that every top-level
// entry point (container validation, StartTranscoding,
// TranscodeImageLevel) surfaces as a failed return.
package uirerr

import "fmt"

// Kind discriminates the taxonomy of a Error.
type Kind int

const (
	// MalformedHeader: bad signature/version/size/CRC. Reported at
	// container parse / StartTranscoding.
	MalformedHeader Kind = iota
	// BufferTooSmall: an offset or size extends beyond the provided
	// buffer. Reported at entry points.
	BufferTooSmall
	// CodebookCorrupt: invalid prefix code, out-of-range palette index, or
	// derived selector flags inconsistent. Reported at StartTranscoding.
	CodebookCorrupt
	// StreamCorrupt: RLE run exceeds total blocks, predictor references a
	// non-existent neighbor, end of stream before all blocks decoded, or a
	// dangling repeat count. Reported during block decode.
	StreamCorrupt
	// UnsupportedRequest: format disabled at build time, non-power-of-two
	// dimensions for PVRTC1, or a reserved decode flag is set. Reported at
	// entry.
	UnsupportedRequest
	// NotReady: transcode called before StartTranscoding.
	NotReady
)

func (k Kind) String() string {
	switch k {
	case MalformedHeader:
		return "MalformedHeader"
	case BufferTooSmall:
		return "BufferTooSmall"
	case CodebookCorrupt:
		return "CodebookCorrupt"
	case StreamCorrupt:
		return "StreamCorrupt"
	case UnsupportedRequest:
		return "UnsupportedRequest"
	case NotReady:
		return "NotReady"
	default:
		return "Unknown"
	}
}

// Error is the concrete error type returned across the transcoder's
// public entry points. The developer-only diagnostic message is carried
// in Err; callers that only need the boolean outcome can ignore it.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New constructs an Error of the given kind wrapping err.
func New(k Kind, err error) *Error { return &Error{Kind: k, Err: err} }

// Newf constructs an Error of the given kind from a format string.
func Newf(k Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: k, Err: fmt.Errorf(format, args...)}
}

// Is reports whether err is a *Error of kind k, unwrapping as needed.
func Is(err error, k Kind) bool {
	var e *Error
	for err != nil {
		if ae, ok := err.(*Error); ok {
			e = ae
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return e != nil && e.Kind == k
}
