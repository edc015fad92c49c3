// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package brotli

import "io"

type Reader struct {
	InputOffset  int64 // Total number of bytes read from underlying io.Reader
	OutputOffset int64 // Total number of bytes emitted from Read

	rd        bitReader     // Input source
	step      func(*Reader) // Single step of decompression work (can panic)
	stepState int           // The sub-step state for certain steps
	dict      dictDecoder   // Sliding window history and output ring buffer
	toRead    []byte        // Uncompressed data ready to be emitted from Read
	blkLen    int           // Uncompressed bytes left to read in meta-block
	insLen    int           // Bytes left to insert in current command
	cpyLen    int           // Bytes left to backward dictionary copy
	dist      int           // The current backward distance
	distZero  bool          // Distance code of current command is implicit zero
	last      bool          // Last block bit detected
	err       error         // Persistent error

	// State that persists across meta-blocks.
	ring distRing // Last four explicit backward distances
	p1   byte     // Last emitted byte, input to literal contexts
	p2   byte     // Second-to-last emitted byte

	// Entropy state of the current meta-block.
	blks      [3]blockDecoder // Block splits: literal, insert-and-copy, distance
	npostfix  uint            // Postfix bits of the distance alphabet
	ndirect   uint            // Number of direct distance codes
	cmodes    []uint8         // Literal context modes, one per literal block type
	cmapL     []uint8         // Literal context map
	cmapD     []uint8         // Distance context map
	litTrees  []prefixDecoder // Literal prefix trees, one per literal tree
	iacTrees  []prefixDecoder // Insert-and-copy trees, one per command block type
	distTrees []prefixDecoder // Distance prefix trees, one per distance tree
}

// A blockDecoder tracks the block splitting state of one block category
// according to RFC section 6.
type blockDecoder struct {
	numTypes uint
	typeTree prefixDecoder // Prefix tree for block types, if numTypes >= 2
	lenTree  prefixDecoder // Prefix tree for block counts, if numTypes >= 2
	types    [2]uint       // Second-to-last and last block type
	blkLen   int           // Number of symbols left in the current block
}

func NewReader(r io.Reader) *Reader {
	br := new(Reader)
	br.Reset(r)
	return br
}

func (br *Reader) Read(buf []byte) (int, error) {
	for {
		if len(br.toRead) > 0 {
			cnt := copy(buf, br.toRead)
			br.toRead = br.toRead[cnt:]
			br.OutputOffset += int64(cnt)
			return cnt, nil
		}
		if br.err != nil {
			return 0, br.err
		}

		// Perform next step in decompression process.
		func() {
			defer errRecover(&br.err)
			br.step(br)
		}()
		br.InputOffset = br.rd.offset
		if br.err != nil {
			br.toRead = br.dict.ReadFlush() // Flush what's left in case of error
		}
	}
}

func (br *Reader) Close() error {
	if br.err == io.EOF || br.err == io.ErrClosedPipe {
		br.toRead = nil // Make sure future reads fail
		br.err = io.ErrClosedPipe
		return nil
	}
	return br.err // Return the persistent error
}

func (br *Reader) Reset(r io.Reader) error {
	*br = Reader{
		step: (*Reader).readStreamHeader,

		rd:   br.rd,
		dict: br.dict,

		cmodes:    br.cmodes[:0],
		cmapL:     br.cmapL[:0],
		cmapD:     br.cmapD[:0],
		litTrees:  br.litTrees[:0],
		iacTrees:  br.iacTrees[:0],
		distTrees: br.distTrees[:0],
	}
	br.rd.Init(r)
	br.ring.Init()
	return nil
}

// readStreamHeader reads the Brotli stream header according to RFC
// section 9.1.
func (br *Reader) readStreamHeader() {
	wbits := br.rd.ReadSymbol(&decWinBits)
	if wbits == 0 {
		panic(ErrCorrupt) // Reserved window size code
	}
	br.dict.Init(1<<wbits - 16)
	br.step = (*Reader).readBlockHeader
}

// readBlockHeader reads a meta-block header according to RFC section 9.2.
func (br *Reader) readBlockHeader() {
	if br.last {
		if br.rd.ReadPads() > 0 {
			panic(ErrCorrupt)
		}
		panic(io.EOF)
	}

	// Read ISLAST and ISLASTEMPTY.
	if br.last = br.rd.ReadBits(1) == 1; br.last {
		if empty := br.rd.ReadBits(1) == 1; empty {
			br.step = (*Reader).readBlockHeader // Next call will terminate stream
			return
		}
	}

	// Read MLEN and MNIBBLES and process meta data.
	var blkLen int // Valid values are [1..1<<24]
	if nibbles := br.rd.ReadBits(2) + 4; nibbles == 7 {
		if reserved := br.rd.ReadBits(1) == 1; reserved {
			panic(ErrReservedBit)
		}

		var skipLen int // Valid values are [0..1<<24]
		if skipBytes := br.rd.ReadBits(2); skipBytes > 0 {
			skipLen = int(br.rd.ReadBits(skipBytes * 8))
			if skipBytes > 1 && skipLen>>((skipBytes-1)*8) == 0 {
				panic(ErrCorrupt) // Shortest representation not used
			}
			skipLen++
		}

		if br.rd.ReadPads() > 0 {
			panic(ErrCorrupt)
		}
		if _, err := io.ReadFull(&br.rd, make([]byte, skipLen)); err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			panic(err)
		}
		br.step = (*Reader).readBlockHeader
		return
	} else {
		blkLen = int(br.rd.ReadBits(nibbles * 4))
		if nibbles > 4 && blkLen>>((nibbles-1)*4) == 0 {
			panic(ErrCorrupt) // Shortest representation not used
		}
		blkLen++
	}
	br.blkLen = blkLen

	// Read ISUNCOMPRESSED and process uncompressed data.
	if !br.last {
		if uncompressed := br.rd.ReadBits(1) == 1; uncompressed {
			if br.rd.ReadPads() > 0 {
				panic(ErrCorrupt)
			}
			br.step = (*Reader).readRawData
			return
		}
	}
	br.readMetaBlockHeader()
}

// readRawData reads raw data according to RFC section 9.2.
// The bytes pass through the sliding window so that following meta-blocks
// may still reference them.
func (br *Reader) readRawData() {
	buf := br.dict.WriteSlice()
	if len(buf) > br.blkLen {
		buf = buf[:br.blkLen]
	}

	cnt, err := br.rd.Read(buf)
	br.blkLen -= cnt
	br.dict.WriteMark(cnt)
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		panic(err)
	}

	if br.blkLen > 0 {
		br.toRead = br.dict.ReadFlush()
		br.step = (*Reader).readRawData // We need to continue this work
		return
	}
	br.p1, br.p2 = br.dict.LastBytes()
	br.step = (*Reader).readBlockHeader
}

// readMetaBlockHeader reads the entropy state of a compressed meta-block
// according to RFC section 9.2: the block splits for the three categories,
// the distance parameters, the context modes and maps, and the prefix trees
// for literals, insert-and-copy commands, and distances.
func (br *Reader) readMetaBlockHeader() {
	// Read block splits for the three block categories.
	for i := range br.blks {
		bd := &br.blks[i]
		bd.numTypes = br.rd.ReadSymbol(&decCounts)
		bd.types = [2]uint{1, 0}
		if bd.numTypes >= 2 {
			br.rd.ReadPrefixCode(&bd.typeTree, bd.numTypes+2)
			br.rd.ReadPrefixCode(&bd.lenTree, numBlkCntSyms)
			bd.blkLen = int(br.rd.ReadOffset(br.rd.ReadSymbol(&bd.lenTree), blkLenRanges))
		} else {
			bd.blkLen = 1 << 28 // Block type is always zero
		}
	}

	// Read NPOSTFIX and NDIRECT.
	br.npostfix = br.rd.ReadBits(2)
	br.ndirect = br.rd.ReadBits(4) << br.npostfix

	// Read context modes for the literal block types.
	br.cmodes = allocUint8s(br.cmodes, int(br.blks[0].numTypes))
	for i := range br.cmodes {
		br.cmodes[i] = uint8(br.rd.ReadBits(2))
	}

	// Read the literal and distance context maps.
	numTreesL := br.rd.ReadSymbol(&decCounts)
	br.cmapL = allocUint8s(br.cmapL, 64*int(br.blks[0].numTypes))
	if numTreesL >= 2 {
		br.rd.ReadContextMap(br.cmapL, numTreesL)
	} else {
		for i := range br.cmapL {
			br.cmapL[i] = 0
		}
	}
	numTreesD := br.rd.ReadSymbol(&decCounts)
	br.cmapD = allocUint8s(br.cmapD, 4*int(br.blks[2].numTypes))
	if numTreesD >= 2 {
		br.rd.ReadContextMap(br.cmapD, numTreesD)
	} else {
		for i := range br.cmapD {
			br.cmapD[i] = 0
		}
	}

	// Read the prefix trees.
	numDistSyms := 16 + br.ndirect + 48<<br.npostfix
	br.litTrees = extendDecoders(br.litTrees, int(numTreesL))
	for i := range br.litTrees {
		br.rd.ReadPrefixCode(&br.litTrees[i], numLitSyms)
	}
	br.iacTrees = extendDecoders(br.iacTrees, int(br.blks[1].numTypes))
	for i := range br.iacTrees {
		br.rd.ReadPrefixCode(&br.iacTrees[i], numIaCSyms)
	}
	br.distTrees = extendDecoders(br.distTrees, int(numTreesD))
	for i := range br.distTrees {
		br.rd.ReadPrefixCode(&br.distTrees[i], numDistSyms)
	}

	br.step = (*Reader).readBlockData
	br.stepState = stateInit
}

// readBlockSwitch reads a single block switch command according to RFC
// section 6, updating the current block type and count of the category.
func (br *Reader) readBlockSwitch(bd *blockDecoder) {
	sym := br.rd.ReadSymbol(&bd.typeTree)
	var btype uint
	switch sym {
	case 0:
		btype = bd.types[0]
	case 1:
		btype = bd.types[1] + 1
		if btype >= bd.numTypes {
			btype -= bd.numTypes
		}
	default:
		btype = sym - 2
	}
	bd.types = [2]uint{bd.types[1], btype}
	bd.blkLen = int(br.rd.ReadOffset(br.rd.ReadSymbol(&bd.lenTree), blkLenRanges))
}

const (
	stateInit = iota // Zero value must be stateInit
	stateLiterals
	stateCopy
)

// readBlockData decodes the body of a compressed meta-block according to
// RFC section 9.3: a sequence of insert-and-copy commands, each carrying a
// run of literals followed by a backward copy.
func (br *Reader) readBlockData() {
	switch br.stepState {
	case stateInit:
		goto readCommand
	case stateLiterals:
		goto readLiterals
	case stateCopy:
		goto copyDistance
	}

readCommand:
	// Read the insert-and-copy command according to RFC section 5.
	{
		if br.blkLen == 0 {
			br.step = (*Reader).readBlockHeader
			br.stepState = stateInit
			return
		}

		bd := &br.blks[1]
		if bd.blkLen == 0 {
			br.readBlockSwitch(bd)
		}
		bd.blkLen--

		sym := br.rd.ReadSymbol(&br.iacTrees[bd.types[1]])
		insSym, cpySym, distZero := decodeInsertAndCopy(sym)
		br.insLen = int(br.rd.ReadOffset(insSym, insLenRanges))
		br.cpyLen = int(br.rd.ReadOffset(cpySym, cpyLenRanges))
		br.distZero = distZero
		goto readLiterals
	}

readLiterals:
	// Read insLen literals, consulting the literal block switches and the
	// context map for the tree to decode each one with.
	{
		bd := &br.blks[0]
		for br.insLen > 0 {
			if br.dict.AvailSize() == 0 {
				br.toRead = br.dict.ReadFlush()
				br.step = (*Reader).readBlockData
				br.stepState = stateLiterals // Need to continue work here
				return
			}
			if br.blkLen == 0 {
				panic(ErrCorrupt) // Insert run exceeds meta-block length
			}
			if bd.blkLen == 0 {
				br.readBlockSwitch(bd)
			}
			bd.blkLen--

			mode := uint(br.cmodes[bd.types[1]])
			ctx := uint(contextP1LUT[uint(br.p1)+256*mode] | contextP2LUT[uint(br.p2)+256*mode])
			tree := br.cmapL[64*bd.types[1]+ctx]
			c := byte(br.rd.ReadSymbol(&br.litTrees[tree]))
			br.dict.WriteByte(c)
			br.p1, br.p2 = c, br.p1
			br.blkLen--
			br.insLen--
		}
		if br.blkLen == 0 {
			// The meta-block ends after the insert phase; the copy length
			// is ignored and no distance is present.
			br.step = (*Reader).readBlockHeader
			br.stepState = stateInit
			return
		}
		goto readDistance
	}

readDistance:
	// Resolve the backward distance according to RFC section 4, either
	// implicitly from the distance ring buffer or from a distance symbol
	// with its extra bits.
	{
		var sym uint
		if br.distZero {
			br.dist = br.ring[0]
		} else {
			bd := &br.blks[2]
			if bd.blkLen == 0 {
				br.readBlockSwitch(bd)
			}
			bd.blkLen--

			ctx := uint(br.cpyLen - 2)
			if ctx > 3 {
				ctx = 3
			}
			tree := br.cmapD[4*bd.types[1]+ctx]
			sym = br.rd.ReadSymbol(&br.distTrees[tree])
			switch {
			case sym < numDistShortCodes:
				br.dist = br.ring.Decode(sym)
			case sym < 16+br.ndirect:
				br.dist = int(sym - 16 + 1)
			default:
				v := sym - 16 - br.ndirect
				hcode := v >> br.npostfix
				lcode := v & (1<<br.npostfix - 1)
				nbits := hcode>>1 + 1
				extra := br.rd.ReadBits(nbits)
				offset := (2+hcode&1)<<nbits - 4
				br.dist = int((offset+extra)<<br.npostfix + lcode + br.ndirect + 1)
			}
		}
		if br.dist <= 0 || br.dist > br.dict.HistSize() {
			panic(ErrInvalidDistance) // Would reference the static dictionary
		}
		if !br.distZero && sym != 0 {
			br.ring.Push(br.dist)
		}
		if br.cpyLen > br.blkLen {
			panic(ErrCorrupt) // Copy length exceeds meta-block length
		}
		goto copyDistance
	}

copyDistance:
	// Copy cpyLen bytes from dist bytes backwards in the sliding window.
	{
		cnt := br.dict.WriteCopy(br.dist, br.cpyLen)
		br.blkLen -= cnt
		br.cpyLen -= cnt
		if br.cpyLen > 0 {
			br.toRead = br.dict.ReadFlush()
			br.step = (*Reader).readBlockData
			br.stepState = stateCopy // Need to continue work here
			return
		}
		br.p1, br.p2 = br.dict.LastBytes()
		goto readCommand
	}
}

// extendDecoders returns a slice with length n, reusing s if possible.
func extendDecoders(s []prefixDecoder, n int) []prefixDecoder {
	if cap(s) >= n {
		return s[:n]
	}
	return append(s[:cap(s)], make([]prefixDecoder, n-cap(s))...)
}
