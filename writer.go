// Copyright 2016, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package brotli

import "io"

// The Writer produces a Brotli stream with a fixed window size and a single
// block type per category, no context maps, and the default distance
// parameters. Input is buffered and the stream is emitted when Close is
// called. If the greedy match finder cannot find a single backward match in
// the input, the stream falls back to a sequence of uncompressed
// meta-blocks instead.

const (
	// The window size used for all encoded streams.
	defaultWinBits = 22

	// Maximum number of uncompressed bytes covered by a single compressed
	// meta-block. The format allows up to 1<<24.
	maxCompressedSize = 1 << 22

	// Maximum number of uncompressed bytes covered by a single raw
	// meta-block in the fallback stream layout.
	maxUncompressedSize = 1 << 16

	// The distance alphabet size for NPOSTFIX and NDIRECT of zero.
	numEncDistSyms = 16 + 48
)

type Writer struct {
	InputOffset  int64 // Total number of bytes issued to Write
	OutputOffset int64 // Total number of bytes written to underlying io.Writer

	bw  bitWriter // Output destination
	err error     // Persistent error
	buf []byte    // Buffered input, encoded upon Close

	ring distRing    // Last four explicit backward distances
	mf   matchFinder // LZ77 match finder, shared across meta-blocks
	cmds []command   // Scratch command buffer
	toks []cmdToken  // Scratch resolved-command buffer

	litFreqs  [numLitSyms]uint32
	iacFreqs  [numIaCSyms]uint32
	distFreqs [numEncDistSyms]uint32
	litEnc    prefixEncoder
	iacEnc    prefixEncoder
	distEnc   prefixEncoder
}

// A cmdToken is a command with its entropy symbols resolved: the distance
// has been matched against the ring buffer and the insert-and-copy symbol
// chosen accordingly.
type cmdToken struct {
	iacSym    uint16 // Insert-and-copy symbol
	insSym    uint8  // Insert length code
	cpySym    uint8  // Copy length code
	distSym   uint16 // Distance symbol, if hasDist
	distBits  uint8  // Width of the distance extra bits
	distExtra uint32 // Value of the distance extra bits
	hasDist   bool   // A distance symbol is present in the stream
}

func NewWriter(w io.Writer) *Writer {
	zw := new(Writer)
	zw.Reset(w)
	return zw
}

func (zw *Writer) Write(buf []byte) (int, error) {
	if zw.err != nil {
		return 0, zw.err
	}
	zw.buf = append(zw.buf, buf...)
	zw.InputOffset += int64(len(buf))
	return len(buf), nil
}

func (zw *Writer) Close() error {
	if zw.err == io.ErrClosedPipe {
		return nil
	}
	if zw.err != nil {
		return zw.err
	}

	func() {
		defer errRecover(&zw.err)
		zw.encodeStream(zw.buf)
	}()
	if zw.err == nil {
		zw.OutputOffset, zw.err = zw.bw.Flush()
	}
	if zw.err != nil {
		return zw.err
	}
	zw.err = io.ErrClosedPipe
	return nil
}

func (zw *Writer) Reset(w io.Writer) error {
	*zw = Writer{
		bw:   zw.bw,
		buf:  zw.buf[:0],
		mf:   zw.mf,
		cmds: zw.cmds[:0],
		toks: zw.toks[:0],

		litEnc:  zw.litEnc,
		iacEnc:  zw.iacEnc,
		distEnc: zw.distEnc,
	}
	zw.bw.Init(w)
	zw.mf.Init(1<<defaultWinBits - 16)
	zw.ring.Init()
	return nil
}

// encodeStream writes the entire stream for src: the window size, a run of
// content meta-blocks, and an empty last meta-block.
func (zw *Writer) encodeStream(src []byte) {
	zw.bw.WriteSymbol(defaultWinBits, &encWinBits)

	// Parse the whole input upfront so that the fallback decision can be
	// made before the first meta-block is emitted.
	cmds := zw.cmds[:0]
	var bounds []int // cmds[bounds[i]:bounds[i+1]] covers each meta-block
	var numCopies int
	for base := 0; base < len(src); base += maxCompressedSize {
		end := base + maxCompressedSize
		if end > len(src) {
			end = len(src)
		}
		bounds = append(bounds, len(cmds))
		cmds = zw.mf.FindMatches(cmds, src, base, end)
	}
	bounds = append(bounds, len(cmds))
	zw.cmds = cmds
	for _, c := range cmds {
		if c.cpyLen > 0 {
			numCopies++
		}
	}

	if numCopies == 0 {
		// Nothing in the input is worth a backward reference.
		for base := 0; base < len(src); base += maxUncompressedSize {
			end := base + maxUncompressedSize
			if end > len(src) {
				end = len(src)
			}
			zw.encodeRawBlock(src[base:end])
		}
	} else {
		for i := 0; i+1 < len(bounds); i++ {
			base := i * maxCompressedSize
			end := base + maxCompressedSize
			if end > len(src) {
				end = len(src)
			}
			zw.encodeBlock(src, base, end, cmds[bounds[i]:bounds[i+1]])
		}
	}

	// The last meta-block is always an empty one.
	zw.bw.WriteBits(1, 1) // ISLAST
	zw.bw.WriteBits(1, 1) // ISLASTEMPTY
	zw.bw.WritePads()
}

// encodeRawBlock writes a single uncompressed meta-block holding buf.
// This invariant must be kept: 0 < len(buf) <= 1<<16
func (zw *Writer) encodeRawBlock(buf []byte) {
	zw.bw.WriteBits(0, 1)                 // ISLAST
	zw.bw.WriteBits(0, 2)                 // MNIBBLES of four
	zw.bw.WriteBits(uint(len(buf)-1), 16) // MLEN
	zw.bw.WriteBits(1, 1)                 // ISUNCOMPRESSED
	zw.bw.WritePads()
	zw.bw.WriteBytes(buf)
}

// encodeBlock writes a single compressed meta-block covering src[base:end]
// using the given commands. Commands may reference distances before base,
// but never more than the window size backwards.
func (zw *Writer) encodeBlock(src []byte, base, end int, cmds []command) {
	mlen := end - base

	// Resolve the distance codes against the ring buffer and collect the
	// symbol frequencies of the meta-block.
	for i := range zw.litFreqs {
		zw.litFreqs[i] = 0
	}
	for i := range zw.iacFreqs {
		zw.iacFreqs[i] = 0
	}
	for i := range zw.distFreqs {
		zw.distFreqs[i] = 0
	}
	toks := zw.toks[:0]
	pos := base
	for _, c := range cmds {
		for _, b := range src[pos : pos+c.insLen] {
			zw.litFreqs[b]++
		}
		pos += c.insLen + c.cpyLen

		var t cmdToken
		t.insSym = uint8(insLenRanges.Encode(uint(c.insLen)))
		if c.cpyLen == 0 {
			// Bare literal run terminating the meta-block. The copy length
			// is ignored by the decoder, and no distance is present.
			t.cpySym = 0
			t.iacSym = uint16(encodeInsertAndCopy(uint(t.insSym), 0, t.insSym < 8))
		} else {
			t.cpySym = uint8(cpyLenRanges.Encode(uint(c.cpyLen)))
			code, ok := zw.ring.Encode(c.dist)
			if ok && code == 0 && t.insSym < 8 && t.cpySym < 16 {
				// Implicit distance code zero; the ring is not updated.
				t.iacSym = uint16(encodeInsertAndCopy(uint(t.insSym), uint(t.cpySym), true))
			} else {
				t.iacSym = uint16(encodeInsertAndCopy(uint(t.insSym), uint(t.cpySym), false))
				t.hasDist = true
				if ok {
					t.distSym = uint16(code)
				} else {
					sym, extra, nbits := encodeDistance(uint(c.dist), 0, 0)
					t.distSym = uint16(sym)
					t.distExtra = uint32(extra)
					t.distBits = uint8(nbits)
				}
				zw.distFreqs[t.distSym]++
				if t.distSym != 0 {
					zw.ring.Push(c.dist)
				}
			}
		}
		zw.iacFreqs[t.iacSym]++
		toks = append(toks, t)
	}
	zw.toks = toks

	// Write the meta-block header: a single block type per category, the
	// default distance parameters, and no context maps.
	zw.bw.WriteBits(0, 1) // ISLAST
	var nibbles uint
	switch {
	case mlen-1 < 1<<16:
		nibbles = 4
	case mlen-1 < 1<<20:
		nibbles = 5
	default:
		nibbles = 6
	}
	zw.bw.WriteBits(nibbles-4, 2)
	zw.bw.WriteBits(uint(mlen-1), nibbles*4)
	zw.bw.WriteBits(0, 1)               // ISUNCOMPRESSED
	zw.bw.WriteSymbol(1, &encCounts)    // NBLTYPESL
	zw.bw.WriteSymbol(1, &encCounts)    // NBLTYPESI
	zw.bw.WriteSymbol(1, &encCounts)    // NBLTYPESD
	zw.bw.WriteBits(0, 2)               // NPOSTFIX
	zw.bw.WriteBits(0, 4)               // NDIRECT
	zw.bw.WriteBits(contextLSB6, 2)     // Literal context mode
	zw.bw.WriteSymbol(1, &encCounts)    // NTREESL
	zw.bw.WriteSymbol(1, &encCounts)    // NTREESD

	// Write the prefix code definitions.
	litCodes := buildPrefixCodes(zw.litFreqs[:])
	zw.litEnc.Init(litCodes, true)
	zw.bw.WritePrefixCode(litCodes, numLitSyms)
	iacCodes := buildPrefixCodes(zw.iacFreqs[:])
	zw.iacEnc.Init(iacCodes, true)
	zw.bw.WritePrefixCode(iacCodes, numIaCSyms)
	distCodes := buildPrefixCodes(zw.distFreqs[:])
	zw.distEnc.Init(distCodes, true)
	zw.bw.WritePrefixCode(distCodes, numEncDistSyms)

	// Write the commands.
	pos = base
	for i, c := range cmds {
		t := toks[i]
		zw.bw.WriteSymbol(uint(t.iacSym), &zw.iacEnc)
		zw.bw.WriteOffset(uint(c.insLen), uint(t.insSym), insLenRanges)
		if c.cpyLen > 0 {
			zw.bw.WriteOffset(uint(c.cpyLen), uint(t.cpySym), cpyLenRanges)
		} else {
			zw.bw.WriteOffset(2, uint(t.cpySym), cpyLenRanges)
		}
		for _, b := range src[pos : pos+c.insLen] {
			zw.bw.WriteSymbol(uint(b), &zw.litEnc)
		}
		pos += c.insLen + c.cpyLen
		if t.hasDist {
			zw.bw.WriteSymbol(uint(t.distSym), &zw.distEnc)
			if t.distBits > 0 {
				zw.bw.WriteBits(uint(t.distExtra), uint(t.distBits))
			}
		}
	}
}
