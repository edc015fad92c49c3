// Copyright 2016, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

//go:build cgo
// +build cgo

package brotli

import (
	"bytes"
	"io"
	"io/ioutil"
	"testing"

	gbrotli "github.com/dsnet/brotli"
	"github.com/dsnet/brotli/internal/testutil"
)

func testInputs() map[string][]byte {
	rand := testutil.NewRand(0)
	abc := make([]byte, 1e5)
	for i := range abc {
		abc[i] = "abcdefghijklmnopqrstuvwxyz .,\n"[i%30]
	}
	return map[string][]byte{
		"empty":  nil,
		"binary": testutil.MustDecodeHex("000102030405060708090a0bff00ff80"),
		"zeros":  make([]byte, 1e5),
		"random": rand.Bytes(1e5),
		"text":   abc,
	}
}

// TestDecodeInterop checks that streams produced by the C encoder at various
// quality levels are decoded by the Go implementation.
func TestDecodeInterop(t *testing.T) {
	for name, input := range testInputs() {
		for _, level := range []int{1, 6, 9} {
			buf := new(bytes.Buffer)
			cw := NewWriter(buf, level)
			if _, err := cw.Write(input); err != nil {
				t.Fatalf("test %s:%d, unexpected Write error: %v", name, level, err)
			}
			if err := cw.Close(); err != nil {
				t.Fatalf("test %s:%d, unexpected Close error: %v", name, level, err)
			}

			output, err := gbrotli.Decompress(buf.Bytes())
			if err != nil {
				t.Errorf("test %s:%d, unexpected Decompress error: %v", name, level, err)
				continue
			}
			if !bytes.Equal(output, input) {
				t.Errorf("test %s:%d, mismatching bytes", name, level)
			}
		}
	}
}

// TestEncodeInterop checks that streams produced by the Go implementation
// are accepted by the C decoder.
func TestEncodeInterop(t *testing.T) {
	for name, input := range testInputs() {
		stream, err := gbrotli.Compress(input)
		if err != nil {
			t.Fatalf("test %s, unexpected Compress error: %v", name, err)
		}

		cr := NewReader(bytes.NewReader(stream))
		output, err := ioutil.ReadAll(cr)
		if err != nil && err != io.EOF {
			t.Errorf("test %s, unexpected Read error: %v", name, err)
			continue
		}
		if err := cr.Close(); err != nil {
			t.Errorf("test %s, unexpected Close error: %v", name, err)
			continue
		}
		if !bytes.Equal(output, input) {
			t.Errorf("test %s, mismatching bytes", name)
		}
	}
}
