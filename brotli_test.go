// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package brotli

import (
	"bytes"
	"testing"

	"github.com/dsnet/brotli/internal/testutil"
	"github.com/google/go-cmp/cmp"
)

// repeatData generates data that heavily favors LZ77 based compression
// since a large bulk of it is a copy from some distance ago.
func repeatData(seed, n int) []byte {
	rand := testutil.NewRand(seed)
	buf := make([]byte, 0, n)
	for len(buf) < n {
		length := 4 + rand.Intn(252)
		dist := 1 + rand.Intn(1<<16)
		if dist > len(buf) || rand.Intn(8) == 0 {
			buf = append(buf, rand.Bytes(length)...)
			continue
		}
		for i := 0; i < length && len(buf) < n; i++ {
			buf = append(buf, buf[len(buf)-dist])
		}
	}
	return buf[:n]
}

// byteRange returns the sequence of all 256 byte values.
func byteRange() []byte {
	buf := make([]byte, 256)
	for i := range buf {
		buf[i] = byte(i)
	}
	return buf
}

func TestRoundTrip(t *testing.T) {
	rand := testutil.NewRand(0)

	var vectors = []struct {
		desc  string // Description of the test
		input []byte // Test input
	}{
		{"empty", nil},
		{"single byte", []byte("a")},
		{"two distinct bytes", []byte("ab")},
		{"short text", []byte("Hello, World!")},
		{"byte range", byteRange()},
		{"repeated byte", bytes.Repeat([]byte("A"), 100)},
		{"repeated phrase", bytes.Repeat([]byte("Hello, World! "), 1000)},
		{"zeros", make([]byte, 1e5)},
		{"small random", rand.Bytes(333)},
		{"large random", rand.Bytes(1 << 18)},
		{"small repeats", repeatData(1, 1<<10)},
		{"large repeats", repeatData(2, 1<<20)},
		{"repeats beyond one meta-block", repeatData(3, 1<<22+1<<10)},
	}

	for i, v := range vectors {
		stream, err := Compress(v.input)
		if err != nil {
			t.Errorf("test %d (%q): unexpected Compress error: %v", i, v.desc, err)
			continue
		}
		output, err := Decompress(stream)
		if err != nil {
			t.Errorf("test %d (%q): unexpected Decompress error: %v", i, v.desc, err)
			continue
		}
		if !bytes.Equal(output, v.input) {
			t.Errorf("test %d (%q): mismatching bytes", i, v.desc)
		}
	}
}

// TestRoundTripSizes tests the boundary conditions of the meta-block
// framing by round tripping inputs near the chunking limits.
func TestRoundTripSizes(t *testing.T) {
	sizes := []int{
		1, 2, 3, 4, 5, 7, 8, 9,
		1<<16 - 1, 1 << 16, 1<<16 + 1,
		1<<18 + 3,
	}
	for _, n := range sizes {
		input := repeatData(n, n)
		stream, err := Compress(input)
		if err != nil {
			t.Errorf("size %d: unexpected Compress error: %v", n, err)
			continue
		}
		output, err := Decompress(stream)
		if err != nil {
			t.Errorf("size %d: unexpected Decompress error: %v", n, err)
			continue
		}
		if diff := cmp.Diff(len(input), len(output)); diff != "" {
			t.Errorf("size %d: mismatching lengths (-want +got):\n%s", n, diff)
			continue
		}
		if !bytes.Equal(output, input) {
			t.Errorf("size %d: mismatching bytes", n)
		}
	}
}

func BenchmarkEncode(b *testing.B) {
	input := repeatData(0, 1<<18)
	b.SetBytes(int64(len(input)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Compress(input); err != nil {
			b.Fatalf("unexpected error: %v", err)
		}
	}
}

func BenchmarkDecode(b *testing.B) {
	stream, err := Compress(repeatData(0, 1<<18))
	if err != nil {
		b.Fatalf("unexpected error: %v", err)
	}
	b.SetBytes(1 << 18)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Decompress(stream); err != nil {
			b.Fatalf("unexpected error: %v", err)
		}
	}
}
