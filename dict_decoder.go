// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package brotli

// The dictDecoder implements the LZ77 sliding dictionary that backward
// distances resolve against. It is used as a ring buffer: writes go to an
// internal history buffer and the data is read back out through ReadFlush
// before the buffer wraps around.

type dictDecoder struct {
	size int    // Sliding window size
	hist []byte // Sliding window history, dynamically grown to match size

	wrPos int  // Current output position in buffer
	rdPos int  // Have emitted hist[:rdPos] already
	full  bool // Has a full window length been written yet?
}

func (dd *dictDecoder) Init(size int) {
	*dd = dictDecoder{hist: dd.hist}

	// Regardless of what size claims, start with a small dictionary to
	// avoid denial-of-service attacks with large memory allocation.
	dd.size = size
	if dd.hist == nil {
		dd.hist = make([]byte, 1024)
	}
	dd.hist = dd.hist[:cap(dd.hist)]
	if len(dd.hist) > dd.size {
		dd.hist = dd.hist[:dd.size]
	}
	for i := range dd.hist {
		dd.hist[i] = 0
	}
}

// HistSize reports the total amount of historical data in the dictionary.
func (dd *dictDecoder) HistSize() int {
	if dd.full {
		return dd.size
	}
	return dd.wrPos
}

// AvailSize reports the available amount of output buffer space.
func (dd *dictDecoder) AvailSize() int {
	return len(dd.hist) - dd.wrPos
}

// WriteSlice returns a slice of the available buffer to write data to.
// This invariant will be kept: len(s) <= AvailSize()
func (dd *dictDecoder) WriteSlice() []byte {
	return dd.hist[dd.wrPos:]
}

// WriteMark advances the writer pointer by cnt.
// This invariant must be kept: 0 <= cnt <= AvailSize()
func (dd *dictDecoder) WriteMark(cnt int) {
	dd.wrPos += cnt
}

// WriteByte writes a single byte to the dictionary.
// This invariant must be kept: 0 < AvailSize()
func (dd *dictDecoder) WriteByte(c byte) {
	dd.hist[dd.wrPos] = c
	dd.wrPos++
}

// WriteCopy copies a string at a given (distance, length) to the output.
// This returns the number of bytes copied and may be less than the requested
// length if the available space in the output buffer is too small.
// This invariant must be kept: 0 < dist <= HistSize()
func (dd *dictDecoder) WriteCopy(dist, length int) int {
	dstBase := dd.wrPos
	dstPos := dstBase
	srcPos := dstPos - dist
	endPos := dstPos + length
	if endPos > len(dd.hist) {
		endPos = len(dd.hist)
	}

	// Copy non-overlapping section after destination position.
	if srcPos < 0 {
		srcPos += len(dd.hist)
		dstPos += copy(dd.hist[dstPos:endPos], dd.hist[srcPos:])
		srcPos = 0
	}

	// Copy possibly overlapping section before destination position.
	for dstPos < endPos {
		dstPos += copy(dd.hist[dstPos:endPos], dd.hist[srcPos:dstPos])
	}

	dd.wrPos = dstPos
	return dstPos - dstBase
}

// LastBytes reports the last two bytes in the dictionary.
func (dd *dictDecoder) LastBytes() (p1, p2 byte) {
	switch {
	case dd.wrPos > 1:
		return dd.hist[dd.wrPos-1], dd.hist[dd.wrPos-2]
	case dd.wrPos > 0:
		p2 = 0
		if dd.full {
			p2 = dd.hist[len(dd.hist)-1]
		}
		return dd.hist[0], p2
	case dd.full:
		return dd.hist[len(dd.hist)-1], dd.hist[len(dd.hist)-2]
	default:
		return 0, 0
	}
}

// ReadFlush returns a slice of the historical buffer that is ready to be
// emitted to the user. The data returned by ReadFlush must be fully consumed
// before calling any other method.
func (dd *dictDecoder) ReadFlush() []byte {
	toRead := dd.hist[dd.rdPos:dd.wrPos]
	dd.rdPos = dd.wrPos
	if dd.wrPos == len(dd.hist) {
		if len(dd.hist) < dd.size {
			// Grow the history buffer before any wraparound occurs.
			size := 2 * len(dd.hist)
			if size > dd.size {
				size = dd.size
			}
			hist := make([]byte, size)
			copy(hist, dd.hist)
			dd.hist = hist
		} else {
			dd.wrPos, dd.rdPos = 0, 0
			dd.full = true
		}
	}
	return toRead
}
