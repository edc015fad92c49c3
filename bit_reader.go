// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package brotli

import (
	"bufio"
	"io"
)

// The bitReader preserves the property that it will never read more bytes
// than is necessary to make progress. All fields of the Brotli format are
// packed starting from the least-significant bits of each byte.

type byteReader interface {
	io.Reader
	io.ByteReader
}

type bitReader struct {
	rd      byteReader
	bufBits uint64 // Buffer to hold some bits
	numBits uint   // Number of valid bits in bufBits
	offset  int64  // Number of bytes read from the underlying io.Reader

	// Local copy of decoder to reduce memory allocations.
	prefix prefixDecoder
}

func (br *bitReader) Init(r io.Reader) {
	*br = bitReader{prefix: br.prefix}
	if rr, ok := r.(byteReader); ok {
		br.rd = rr
	} else {
		br.rd = bufio.NewReader(r)
	}
}

// FeedBits ensures that at least nb bits exist in the bit buffer.
// If an IO error occurs, then it panics.
func (br *bitReader) FeedBits(nb uint) {
	for br.numBits < nb {
		c, err := br.rd.ReadByte()
		if err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			panic(err)
		}
		br.bufBits |= uint64(c) << br.numBits
		br.numBits += 8
		br.offset++
	}
}

// ReadBits reads nb bits in LSB order from the underlying reader.
func (br *bitReader) ReadBits(nb uint) uint {
	br.FeedBits(nb)
	val := uint(br.bufBits & uint64(1<<nb-1))
	br.bufBits >>= nb
	br.numBits -= nb
	return val
}

// ReadPads reads 0-7 bits from the bit buffer to achieve byte-alignment.
func (br *bitReader) ReadPads() uint {
	nb := br.numBits % 8
	val := uint(br.bufBits & uint64(1<<nb-1))
	br.bufBits >>= nb
	br.numBits -= nb
	return val
}

// Read reads up to len(buf) bytes into buf. The bit buffer must be aligned.
func (br *bitReader) Read(buf []byte) (cnt int, err error) {
	if br.numBits%8 != 0 {
		return 0, Error("non-aligned bit buffer")
	}
	if br.numBits > 0 {
		for cnt = 0; len(buf) > cnt && br.numBits > 0; cnt++ {
			buf[cnt] = byte(br.bufBits)
			br.bufBits >>= 8
			br.numBits -= 8
		}
	} else {
		cnt, err = br.rd.Read(buf)
		br.offset += int64(cnt)
	}
	return cnt, err
}

// ReadSymbol reads the next prefix symbol using the provided prefixDecoder.
func (br *bitReader) ReadSymbol(pd *prefixDecoder) uint {
	if len(pd.chunks) == 0 {
		panic(ErrInvalidPrefixCode) // Decode with empty tree
	}

	nb := uint(pd.minBits)
	for {
		br.FeedBits(nb)
		chunk := pd.chunks[uint16(br.bufBits)&pd.chunkMask]
		nb = uint(chunk & prefixCountMask)
		if nb > uint(pd.chunkBits) {
			linkIdx := chunk >> prefixCountBits
			chunk = pd.links[linkIdx][uint16(br.bufBits>>pd.chunkBits)&pd.linkMask]
			nb = uint(chunk & prefixCountMask)
		}
		if nb <= br.numBits {
			br.bufBits >>= nb
			br.numBits -= nb
			return uint(chunk >> prefixCountBits)
		}
	}
}

// ReadOffset reads an offset value using the provided rangeCodes indexed by
// the given symbol.
func (br *bitReader) ReadOffset(sym uint, rcs rangeCodes) uint {
	rc := rcs[sym]
	return uint(rc.base) + br.ReadBits(uint(rc.bits))
}

// ReadPrefixCode reads the prefix definition of a single prefix code
// according to RFC section 3.4 and section 3.5 and initializes pd with it.
// The code is either in a simple form listing up to four symbols, or in a
// complex form where the code lengths are themselves prefix encoded.
func (br *bitReader) ReadPrefixCode(pd *prefixDecoder, maxSyms uint) {
	hskip := br.ReadBits(2)
	if hskip == 1 {
		br.readSimplePrefixCode(pd, maxSyms)
	} else {
		br.readComplexPrefixCode(pd, maxSyms, hskip)
	}
}

// readSimplePrefixCode reads a simple prefix code according to RFC
// section 3.4.
func (br *bitReader) readSimplePrefixCode(pd *prefixDecoder, maxSyms uint) {
	var codes [4]prefixCode
	nsym := int(br.ReadBits(2)) + 1
	clen := neededBits(maxSyms)
	for i := 0; i < nsym; i++ {
		codes[i].sym = uint16(br.ReadBits(clen))
	}

	var copyLens = func(lens []uint) {
		for i := 0; i < nsym; i++ {
			codes[i].len = uint8(lens[i])
		}
	}
	var compareSwap = func(i, j int) {
		if codes[i].sym > codes[j].sym {
			codes[i], codes[j] = codes[j], codes[i]
		}
	}

	switch nsym {
	case 1:
		copyLens(simpleLens1[:])
	case 2:
		copyLens(simpleLens2[:])
		compareSwap(0, 1)
	case 3:
		copyLens(simpleLens3[:])
		compareSwap(0, 1)
		compareSwap(0, 2)
		compareSwap(1, 2)
	case 4:
		if tsel := br.ReadBits(1) == 1; !tsel {
			copyLens(simpleLens4a[:])
		} else {
			copyLens(simpleLens4b[:])
		}
		compareSwap(0, 1)
		compareSwap(2, 3)
		compareSwap(0, 2)
		compareSwap(1, 3)
		compareSwap(1, 2)
	}
	if uint(codes[nsym-1].sym) >= maxSyms {
		panic(ErrCorrupt) // Symbol goes beyond range of alphabet
	}
	for i := 1; i < nsym; i++ {
		if codes[i-1].sym == codes[i].sym {
			panic(ErrCorrupt) // Duplicate symbols are not allowed
		}
	}
	pd.Init(codes[:nsym], true) // Must have 1..4 symbols
}

// readComplexPrefixCode reads a complex prefix code according to RFC
// section 3.5.
func (br *bitReader) readComplexPrefixCode(pd *prefixDecoder, maxSyms, hskip uint) {
	// Read the code-lengths prefix table.
	var codeCLensArr [len(complexLens)]prefixCode // Sorted, but may have holes
	sum := 32
	numCodes := 0
	for _, sym := range complexLens[hskip:] {
		if clen := br.ReadSymbol(&decCLens); clen > 0 {
			codeCLensArr[sym] = prefixCode{sym: uint16(sym), len: uint8(clen)}
			numCodes++
			if sum -= 32 >> clen; sum <= 0 {
				break
			}
		}
	}
	if numCodes != 1 && sum != 0 {
		panic(ErrInvalidPrefixCode) // Code lengths form incomplete code
	}
	codeCLens := codeCLensArr[:0] // Compact the array to have no holes
	for _, c := range codeCLensArr {
		if c.len > 0 {
			codeCLens = append(codeCLens, c)
		}
	}
	br.prefix.Init(codeCLens, true)

	// Use the code-lengths table to decode the symbol lengths, processing
	// the repeat symbols 16 and 17 according to RFC section 3.5. Consecutive
	// repeat symbols of the same kind compose to form larger repeat counts.
	var codes prefixCodes
	var sym, repSym, repCnt uint
	lastLen := uint(8) // Default code length
	space := 32768
	for sym < maxSyms && space > 0 {
		clen := br.ReadSymbol(&br.prefix)
		if clen < 16 {
			repCnt = 0
			if clen > 0 {
				codes = append(codes, prefixCode{sym: uint16(sym), len: uint8(clen)})
				lastLen = clen
				space -= 32768 >> clen
			}
			sym++
			continue
		}

		extra := clen - 14 // Symbol 16 has 2 extra bits, symbol 17 has 3
		repLen := uint(0)
		if clen == 16 {
			repLen = lastLen
		}
		if repSym != clen {
			repSym, repCnt = clen, 0
		}
		oldCnt := repCnt
		if repCnt > 0 {
			repCnt = (repCnt - 2) << extra
		}
		repCnt += br.ReadBits(extra) + 3
		if sym+(repCnt-oldCnt) > maxSyms {
			panic(ErrInvalidPrefixCode) // Repeat run goes beyond alphabet
		}
		for i := oldCnt; i < repCnt; i++ {
			if repLen > 0 {
				codes = append(codes, prefixCode{sym: uint16(sym), len: uint8(repLen)})
			}
			sym++
		}
		if repLen > 0 {
			space -= int(repCnt-oldCnt) << (15 - repLen)
		}
	}
	if space != 0 {
		panic(ErrInvalidPrefixCode) // Symbol lengths form incomplete code
	}
	pd.Init(codes, true)
}

// ReadContextMap reads the context map according to RFC section 7.3.
// Zero values may be run-length encoded, and the entire map may optionally
// be passed through an inverse move-to-front transform.
func (br *bitReader) ReadContextMap(cm []uint8, numTrees uint) {
	// The context map alphabet is the tree indexes, preceded by a number of
	// symbols used for run-length encoding of zeros.
	maxRLE := uint(br.ReadSymbol(&decMaxRLE))
	br.ReadPrefixCode(&br.prefix, numTrees+maxRLE)
	for i := 0; i < len(cm); {
		sym := br.ReadSymbol(&br.prefix)
		switch {
		case sym == 0:
			cm[i] = 0
			i++
		case sym <= maxRLE:
			n := int(br.ReadOffset(sym-1, maxRLERanges))
			if i+n > len(cm) {
				panic(ErrInvalidContextMap) // Run of zeros overflows the map
			}
			for j := i; j < i+n; j++ {
				cm[j] = 0
			}
			i += n
		default:
			cm[i] = uint8(sym - maxRLE)
			i++
		}
	}
	if imtf := br.ReadBits(1) == 1; imtf {
		inverseMoveToFront(cm)
	}
}
