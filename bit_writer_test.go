// Copyright 2016, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package brotli

import (
	"bytes"
	"testing"

	"github.com/dsnet/brotli/internal/testutil"
	"github.com/dsnet/golib/bits"
)

// TestBitRoundTrip tests that a sequence of variable width fields written
// with bitWriter reads back identically with bitReader, and that the packed
// bytes agree with an independent little-endian bit buffer implementation.
func TestBitRoundTrip(t *testing.T) {
	type field struct {
		val uint
		nb  uint
	}

	rand := testutil.NewRand(0)
	var fields []field
	bb := bits.NewBuffer(nil)
	buf := new(bytes.Buffer)

	var bw bitWriter
	bw.Init(buf)
	for i := 0; i < 1000; i++ {
		nb := uint(1 + rand.Intn(24))
		val := uint(rand.Int()) & (1<<nb - 1)
		fields = append(fields, field{val, nb})
		bw.WriteBits(val, nb)
		if _, err := bb.WriteBits(val, int(nb)); err != nil {
			t.Fatalf("unexpected WriteBits error: %v", err)
		}
	}
	bw.WritePads()
	if _, err := bw.Flush(); err != nil {
		t.Fatalf("unexpected Flush error: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), bb.Bytes()) {
		t.Errorf("mismatching packed bytes:\ngot  %x\nwant %x", buf.Bytes(), bb.Bytes())
	}

	var br bitReader
	br.Init(bytes.NewReader(buf.Bytes()))
	for i, f := range fields {
		if got := br.ReadBits(f.nb); got != f.val {
			t.Fatalf("field %d: ReadBits(%d) got %d, want %d", i, f.nb, got, f.val)
		}
	}
}

// TestBitAlignment tests the byte-alignment operations of both sides.
func TestBitAlignment(t *testing.T) {
	buf := new(bytes.Buffer)
	var bw bitWriter
	bw.Init(buf)
	bw.WriteBits(0x5, 3)
	bw.WritePads()
	bw.WriteBytes([]byte("ab"))
	bw.WriteBits(1, 1)
	bw.WritePads()
	if _, err := bw.Flush(); err != nil {
		t.Fatalf("unexpected Flush error: %v", err)
	}
	if got, want := buf.Bytes(), []byte{0x05, 'a', 'b', 0x01}; !bytes.Equal(got, want) {
		t.Fatalf("mismatching bytes: got %x, want %x", got, want)
	}

	var br bitReader
	br.Init(bytes.NewReader(buf.Bytes()))
	if got := br.ReadBits(3); got != 0x5 {
		t.Fatalf("ReadBits(3) got %d, want %d", got, 0x5)
	}
	if got := br.ReadPads(); got != 0 {
		t.Fatalf("ReadPads() got %d, want 0", got)
	}
	raw := make([]byte, 2)
	if _, err := br.Read(raw); err != nil || !bytes.Equal(raw, []byte("ab")) {
		t.Fatalf("Read() got %q (%v), want %q", raw, err, "ab")
	}
	if got := br.ReadBits(1); got != 1 {
		t.Fatalf("ReadBits(1) got %d, want 1", got)
	}
}
