// Copyright 2016, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package brotli

import (
	"bytes"
	"testing"

	"github.com/dsnet/brotli/internal/testutil"
)

// TestPrefixLengths tests that buildPrefixLengths produces length-limited
// codes satisfying the Kraft equality even for pathological distributions.
func TestPrefixLengths(t *testing.T) {
	makeFreqs := func(fs ...uint32) []uint32 { return fs }

	rand := testutil.NewRand(0)
	randFreqs := make([]uint32, numIaCSyms)
	for i := range randFreqs {
		randFreqs[i] = uint32(rand.Intn(1 << uint(i%30)))
	}
	fibFreqs := make([]uint32, 40)
	a, b := uint32(1), uint32(1)
	for i := range fibFreqs {
		fibFreqs[i] = a
		a, b = b, a+b
	}
	equalFreqs := make([]uint32, 300)
	for i := range equalFreqs {
		equalFreqs[i] = 1000
	}

	var vectors = []struct {
		desc    string   // Description of the test
		freqs   []uint32 // Symbol frequencies
		maxBits uint     // Maximum code length
	}{{
		desc:    "single symbol",
		freqs:   makeFreqs(0, 0, 5),
		maxBits: maxPrefixBits,
	}, {
		desc:    "two symbols with extreme skew",
		freqs:   makeFreqs(1, 1 << 30),
		maxBits: maxPrefixBits,
	}, {
		desc:    "300 equal symbols",
		freqs:   equalFreqs,
		maxBits: maxPrefixBits,
	}, {
		desc:    "fibonacci frequencies",
		freqs:   fibFreqs,
		maxBits: maxPrefixBits,
	}, {
		desc:    "fibonacci frequencies with tight limit",
		freqs:   fibFreqs[:18],
		maxBits: maxCLenBits,
	}, {
		desc:    "random frequencies",
		freqs:   randFreqs,
		maxBits: maxPrefixBits,
	}}

	for i, v := range vectors {
		codes := buildPrefixLengths(v.freqs, v.maxBits)
		var kraft uint
		for _, c := range codes {
			if uint(c.len) > v.maxBits {
				t.Errorf("test %d (%q): code length %d exceeds %d", i, v.desc, c.len, v.maxBits)
			}
			if c.len == 0 {
				t.Errorf("test %d (%q): used symbol %d has no code", i, v.desc, c.sym)
			}
			kraft += 1 << (v.maxBits - uint(c.len))
		}
		if len(codes) > 1 && kraft != 1<<v.maxBits {
			t.Errorf("test %d (%q): Kraft sum got %d, want %d", i, v.desc, kraft, 1<<v.maxBits)
		}
	}
}

// TestPrefixCodeRoundTrip tests that prefix code definitions written with
// WritePrefixCode are reconstructed by ReadPrefixCode such that every
// encoded symbol decodes back to itself.
func TestPrefixCodeRoundTrip(t *testing.T) {
	rand := testutil.NewRand(1)

	sparse := make([]uint32, numIaCSyms)
	sparse[0], sparse[130], sparse[131], sparse[700] = 5, 10, 1, 3
	sparse[640] = 1 << 20
	dense := make([]uint32, numLitSyms)
	for i := range dense {
		dense[i] = 1 + uint32(rand.Intn(1000))
	}
	skewed := make([]uint32, numLitSyms)
	for i := range skewed {
		skewed[i] = 1 << uint(i%28)
	}
	runs := make([]uint32, numLitSyms)
	for i := 64; i < 192; i++ {
		runs[i] = 8 // Large block of equal lengths to exercise repeat codes
	}

	var vectors = []struct {
		desc    string   // Description of the test
		freqs   []uint32 // Symbol frequencies
		maxSyms uint     // Size of the alphabet
	}{
		{"no symbols", make([]uint32, numLitSyms), numLitSyms},
		{"one symbol", sparse[:1], numIaCSyms},
		{"four symbols", []uint32{0, 44, 0, 13, 12, 0, 0, 5}, 26},
		{"sparse alphabet", sparse, numIaCSyms},
		{"dense alphabet", dense, numLitSyms},
		{"skewed alphabet", skewed, numLitSyms},
		{"equal length runs", runs, numLitSyms},
	}

	for i, v := range vectors {
		codes := buildPrefixCodes(v.freqs)
		var pe prefixEncoder
		pe.Init(codes, true)

		buf := new(bytes.Buffer)
		var bw bitWriter
		bw.Init(buf)
		bw.WritePrefixCode(codes, v.maxSyms)
		for _, c := range codes {
			bw.WriteSymbol(uint(c.sym), &pe)
		}
		bw.WritePads()
		if _, err := bw.Flush(); err != nil {
			t.Fatalf("test %d (%q): unexpected Flush error: %v", i, v.desc, err)
		}

		var pd prefixDecoder
		var br bitReader
		br.Init(bytes.NewReader(buf.Bytes()))
		var err error
		func() {
			defer errRecover(&err)
			br.ReadPrefixCode(&pd, v.maxSyms)
			for _, c := range codes {
				if got := br.ReadSymbol(&pd); got != uint(c.sym) {
					t.Errorf("test %d (%q): symbol got %d, want %d", i, v.desc, got, c.sym)
				}
			}
		}()
		if err != nil {
			t.Errorf("test %d (%q): unexpected error: %v", i, v.desc, err)
		}
	}
}

// TestStaticCodes tests that the static prefix codecs are consistent between
// their encoder and decoder forms.
func TestStaticCodes(t *testing.T) {
	var vectors = []struct {
		desc string
		enc  *prefixEncoder
		dec  *prefixDecoder
		syms []uint
	}{
		{"code lengths", &encCLens, &decCLens, []uint{0, 1, 2, 3, 4, 5}},
		{"max RLE", &encMaxRLE, &decMaxRLE, []uint{0, 1, 7, 16}},
		{"window bits", &encWinBits, &decWinBits, []uint{10, 16, 17, 18, 22, 24}},
		{"counts", &encCounts, &decCounts, []uint{1, 2, 3, 4, 128, 255, 256}},
	}

	for i, v := range vectors {
		buf := new(bytes.Buffer)
		var bw bitWriter
		bw.Init(buf)
		for _, sym := range v.syms {
			bw.WriteSymbol(sym, v.enc)
		}
		bw.WritePads()
		if _, err := bw.Flush(); err != nil {
			t.Fatalf("test %d (%q): unexpected Flush error: %v", i, v.desc, err)
		}

		var br bitReader
		br.Init(bytes.NewReader(buf.Bytes()))
		for _, sym := range v.syms {
			if got := br.ReadSymbol(v.dec); got != sym {
				t.Errorf("test %d (%q): symbol got %d, want %d", i, v.desc, got, sym)
			}
		}
	}
}
