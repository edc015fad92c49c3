// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package brotli

import "runtime"

// Error is the wrapper type for errors specific to this library.
type Error string

func (e Error) Error() string { return "brotli: " + string(e) }

// A failed decode is reported as exactly one of these errors. Mid-stream
// truncation is reported as io.ErrUnexpectedEOF.
var (
	// ErrCorrupt is the generic error for malformed streams that do not
	// fall under one of the more specific errors below.
	ErrCorrupt error = Error("stream is corrupted")

	// ErrInvalidPrefixCode indicates that a transmitted prefix code is
	// under or over subscribed, or that a decoded symbol has no code.
	ErrInvalidPrefixCode error = Error("invalid prefix code")

	// ErrInvalidDistance indicates that a backward distance is zero,
	// beyond the sliding window, or beyond the produced output. Streams
	// referencing the static dictionary fail with this error since
	// dictionary support is not implemented.
	ErrInvalidDistance error = Error("invalid backward distance")

	// ErrInvalidContextMap indicates that a context map run-length
	// overflows the map being filled.
	ErrInvalidContextMap error = Error("invalid context map")

	// ErrReservedBit indicates that a reserved bit in a meta-block header
	// is set.
	ErrReservedBit error = Error("reserved bit set")
)

func errRecover(err *error) {
	switch ex := recover().(type) {
	case nil:
		// Do nothing.
	case runtime.Error:
		panic(ex)
	case error:
		*err = ex
	default:
		panic(ex)
	}
}
