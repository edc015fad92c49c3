// Copyright 2016, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package brotli

import "sort"

type prefixEncoder struct {
	codes prefixCodes // Dense lookup table indexed by symbol
}

// Init initializes prefixEncoder according to the codes provided.
// The symbols provided must be unique and in ascending order.
//
// If assignCodes is true, then generate a canonical prefix tree using the
// prefixCode.len field and assign the generated value to prefixCode.val.
// The assignment matches the one performed by prefixDecoder.Init so that
// written symbols decode back to themselves.
func (pe *prefixEncoder) Init(codes []prefixCode, assignCodes bool) {
	// Handle special case trees.
	if len(codes) <= 1 {
		switch {
		case len(codes) == 0: // Empty tree
			pe.codes = pe.codes[:0]
		case len(codes) == 1: // Single code tree (bit-width of zero)
			pe.codes = extendCodes(pe.codes, int(codes[0].sym)+1)
			pe.codes[codes[0].sym] = prefixCode{sym: codes[0].sym}
		}
		return
	}

	// Compute the next code for a symbol of a given bit length.
	var bitCnts [maxPrefixBits + 1]uint
	var minBits, maxBits uint8 = maxPrefixBits + 1, 0
	for _, c := range codes {
		if minBits > c.len {
			minBits = c.len
		}
		if maxBits < c.len {
			maxBits = c.len
		}
		bitCnts[c.len]++
	}
	var nextCodes [maxPrefixBits + 1]uint
	var code uint
	for i := minBits; i <= maxBits; i++ {
		code <<= 1
		nextCodes[i] = code
		code += bitCnts[i]
	}
	if code != 1<<maxBits {
		panic(ErrInvalidPrefixCode) // Tree is under or over subscribed
	}

	pe.codes = extendCodes(pe.codes, int(codes[len(codes)-1].sym)+1)
	for i := range pe.codes {
		pe.codes[i] = prefixCode{}
	}
	for _, c := range codes {
		if assignCodes {
			c.val = reverseBits(uint16(nextCodes[c.len]), uint(c.len))
			nextCodes[c.len]++
		}
		pe.codes[c.sym] = c
	}
}

// extendCodes returns a slice with length n, reusing s if possible.
func extendCodes(s prefixCodes, n int) prefixCodes {
	if cap(s) >= n {
		return s[:n]
	}
	return append(s[:cap(s)], make(prefixCodes, n-cap(s))...)
}

// buildPrefixCodes computes code lengths for the symbols with non-zero
// frequencies, returning codes sorted by ascending symbol value. Alphabets
// with at most four used symbols get the implied lengths of the simple
// prefix definition; all others get optimal length-limited lengths.
func buildPrefixCodes(freqs []uint32) prefixCodes {
	var codes prefixCodes
	for sym, f := range freqs {
		if f > 0 {
			codes = append(codes, prefixCode{sym: uint16(sym)})
		}
	}

	var lens []uint
	switch len(codes) {
	case 0:
		// A prefix code is transmitted even if no symbol is ever coded.
		return prefixCodes{{sym: 0, len: 1}}
	case 1:
		lens = simpleLens1[:]
	case 2:
		lens = simpleLens2[:]
	case 3:
		lens = simpleLens3[:]
	case 4:
		lens = simpleLens4a[:]
	default:
		return buildPrefixLengths(freqs, maxPrefixBits)
	}
	for i := range codes {
		codes[i].len = uint8(lens[i])
	}
	return codes
}

// buildPrefixLengths computes optimal code lengths for the symbols with
// non-zero frequencies using Huffman's algorithm, then adjusts them so that
// no length exceeds maxBits and the Kraft sum is exactly restored.
func buildPrefixLengths(freqs []uint32, maxBits uint) prefixCodes {
	var codes prefixCodes
	for sym, f := range freqs {
		if f > 0 {
			codes = append(codes, prefixCode{sym: uint16(sym)})
		}
	}
	switch len(codes) {
	case 0:
		return codes
	case 1:
		codes[0].len = 1
		return codes
	}

	// Build the Huffman tree using the two-queue method: the leaves are
	// sorted by frequency and the merged nodes are generated in
	// non-decreasing frequency order, so no heap is needed.
	type huffNode struct {
		freq   uint64
		parent int32
	}
	n := len(codes)
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	sort.Slice(perm, func(i, j int) bool {
		fi, fj := freqs[codes[perm[i]].sym], freqs[codes[perm[j]].sym]
		if fi != fj {
			return fi < fj
		}
		return codes[perm[i]].sym < codes[perm[j]].sym
	})
	nodes := make([]huffNode, 0, 2*n-1)
	for _, p := range perm {
		nodes = append(nodes, huffNode{freq: uint64(freqs[codes[p].sym]), parent: -1})
	}
	leafPos, nodePos := 0, n
	var pick = func() int {
		if leafPos < n && (nodePos >= len(nodes) || nodes[leafPos].freq <= nodes[nodePos].freq) {
			leafPos++
			return leafPos - 1
		}
		nodePos++
		return nodePos - 1
	}
	for len(nodes) < cap(nodes) {
		i, j := pick(), pick()
		nodes = append(nodes, huffNode{freq: nodes[i].freq + nodes[j].freq, parent: -1})
		nodes[i].parent = int32(len(nodes) - 1)
		nodes[j].parent = int32(len(nodes) - 1)
	}
	depths := make([]uint16, len(nodes))
	for i := len(nodes) - 2; i >= 0; i-- {
		depths[i] = depths[nodes[i].parent] + 1
	}
	for k, p := range perm {
		codes[p].len = uint8(min(int(depths[k]), int(maxBits)))
	}

	// The truncation to maxBits may leave the tree over subscribed.
	// Demote the rarest symbols until the Kraft sum fits the budget again,
	// then promote the longest codes while equality is not yet restored.
	var kraft uint
	for i := range codes {
		kraft += 1 << (maxBits - uint(codes[i].len))
	}
	for kraft > 1<<maxBits {
		best := -1
		for i := range codes {
			if uint(codes[i].len) < maxBits && (best < 0 || freqs[codes[i].sym] < freqs[codes[best].sym]) {
				best = i
			}
		}
		codes[best].len++
		kraft -= 1 << (maxBits - uint(codes[best].len))
	}
	for kraft < 1<<maxBits {
		best := -1
		for i := range codes {
			if codes[i].len > 1 && kraft+1<<(maxBits-uint(codes[i].len)) <= 1<<maxBits &&
				(best < 0 || codes[i].len > codes[best].len) {
				best = i
			}
		}
		kraft += 1 << (maxBits - uint(codes[best].len))
		codes[best].len--
	}
	return codes
}
