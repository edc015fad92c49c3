// Copyright 2016, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package brotli

// RFC section 4.
// Backward distances may be encoded relative to the last four distances
// used, kept in a small ring buffer. The first 16 distance symbols address
// the ring buffer directly or with a small offset applied; all later
// symbols encode the distance explicitly, shaped by the NPOSTFIX and
// NDIRECT parameters of the meta-block.

const numDistShortCodes = 16

var (
	// LUTs to convert a short distance code to an index into the distance
	// ring buffer and an offset to apply to the distance found there.
	distShortIdxLUT = [numDistShortCodes]uint8{
		0, 1, 2, 3, 0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 1, 1,
	}
	distShortOffLUT = [numDistShortCodes]int8{
		0, 0, 0, 0, -1, +1, -2, +2, -3, +3, -1, +1, -2, +2, -3, +3,
	}
)

// distRing holds the last four distances, newest first.
type distRing [4]int

func (dr *distRing) Init() {
	*dr = distRing{4, 11, 15, 16}
}

// Push inserts a distance as the most recent one, discarding the oldest.
// Distance code zero never pushes; every other distance code does.
func (dr *distRing) Push(dist int) {
	*dr = distRing{dist, dr[0], dr[1], dr[2]}
}

// Decode resolves a short distance code against the ring buffer.
// The result may be non-positive, which the caller must reject.
func (dr *distRing) Decode(code uint) int {
	return dr[distShortIdxLUT[code]] + int(distShortOffLUT[code])
}

// Encode finds the short distance code that resolves to dist, if any.
func (dr *distRing) Encode(dist int) (code uint, ok bool) {
	for code := uint(0); code < numDistShortCodes; code++ {
		if dr.Decode(code) == dist {
			return code, true
		}
	}
	return 0, false
}

// encodeDistance computes the distance symbol for a distance that has no
// short code, along with the value and width of its extra bits.
// This inverts the distance computation of RFC section 4.
func encodeDistance(dist, npostfix, ndirect uint) (sym, extra, nbits uint) {
	if dist <= ndirect {
		return 16 + dist - 1, 0, 0
	}

	v := dist - ndirect - 1
	postfix := v & (1<<npostfix - 1)
	for x := (v >> npostfix) + 4; x >= 4; x >>= 1 {
		nbits++
	}
	hcode := (v>>npostfix+4)>>nbits - 2 // Half-open interval selector: 0 or 1
	extra = (v >> npostfix) + 4 - (2+hcode)<<nbits
	sym = 16 + ndirect + ((nbits-1)<<1|hcode)<<npostfix + postfix
	return sym, extra, nbits
}
