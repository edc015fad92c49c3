// Copyright 2016, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package brotli

// The matchFinder is a greedy LZ77 parser over the uncompressed input.
// It hashes four bytes at every position and remembers a single candidate
// per hash bucket. Matches shorter than the minimum Brotli copy length of
// four bytes are emitted as literals instead.

const (
	hashBits = 15
	hashMul  = 0x1e35a7bd

	minMatchLen = 4
)

// A command covers a contiguous span of the input: insLen literal bytes
// followed by cpyLen bytes copied from dist bytes backwards. The final
// command of a meta-block may be a bare literal run with a zero cpyLen.
type command struct {
	insLen int // Number of literal bytes preceding the copy
	cpyLen int // Number of bytes copied from earlier in the stream
	dist   int // Backward distance of the copy
}

type matchFinder struct {
	table []int32 // Most recent position+1 of each hash bucket
	wsize int     // Maximum backward distance
}

func (mf *matchFinder) Init(wsize int) {
	if mf.table == nil {
		mf.table = make([]int32, 1<<hashBits)
	} else {
		for i := range mf.table {
			mf.table[i] = 0
		}
	}
	mf.wsize = wsize
}

func hash4(x uint32) uint32 {
	return (x * hashMul) >> (32 - hashBits)
}

func loadUint32LE(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

// FindMatches parses src[pos:end] into commands, appending them to cmds.
// Matches may reach backwards beyond pos into previously parsed input, but
// never beyond the sliding window, and copies never extend past end.
func (mf *matchFinder) FindMatches(cmds []command, src []byte, pos, end int) []command {
	litStart := pos
	for pos < end {
		if pos+minMatchLen <= len(src) {
			h := hash4(loadUint32LE(src[pos:]))
			cand := int(mf.table[h]) - 1
			mf.table[h] = int32(pos + 1)
			if cand >= 0 && pos-cand <= mf.wsize {
				if n := matchLen(src[cand:], src[pos:end]); n >= minMatchLen {
					cmds = append(cmds, command{
						insLen: pos - litStart,
						cpyLen: n,
						dist:   pos - cand,
					})
					for i := pos + 1; i < pos+n && i+minMatchLen <= len(src); i++ {
						mf.table[hash4(loadUint32LE(src[i:]))] = int32(i + 1)
					}
					pos += n
					litStart = pos
					continue
				}
			}
		}
		pos++
	}
	if litStart < end {
		cmds = append(cmds, command{insLen: end - litStart})
	}
	return cmds
}

// matchLen reports the length of the common prefix of a and b.
// The caller limits the match by slicing b accordingly.
func matchLen(a, b []byte) (n int) {
	for n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}
