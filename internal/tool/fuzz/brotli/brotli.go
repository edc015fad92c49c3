// Copyright 2016, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

//go:build gofuzz
// +build gofuzz

package brotli

import (
	"bytes"
	"io/ioutil"

	gbrotli "github.com/dsnet/brotli"
	cbrotli "github.com/dsnet/brotli/internal/cgo/brotli"
)

func Fuzz(data []byte) int {
	data, ok := testDecoders(data)
	testGoEncoder(data)
	if ok {
		return 1 // Favor valid inputs
	}
	return 0
}

// testDecoders tests that the input can be handled by both Go and C decoders.
// This test does not panic if both decoders run into an error, since it
// means that they both agree that the input is bad.
func testDecoders(data []byte) ([]byte, bool) {
	gr := gbrotli.NewReader(bytes.NewReader(data))
	defer gr.Close()
	cr := cbrotli.NewReader(bytes.NewReader(data))
	defer cr.Close()

	gb, gerr := ioutil.ReadAll(gr)
	cb, cerr := ioutil.ReadAll(cr)

	switch {
	case gerr == nil && cerr == nil:
		if !bytes.Equal(gb, cb) {
			panic("mismatching bytes")
		}
		return gb, true
	case gerr != nil && cerr == nil:
		// The Go implementation rejects streams that reference the static
		// dictionary, which the C implementation accepts.
		if gerr == gbrotli.ErrInvalidDistance {
			return cb, false
		}
		panic(gerr)
	default:
		return nil, false
	}
}

// testGoEncoder encodes the input data with the Go encoder and then checks
// that both the Go and C decoders can properly decompress the output.
func testGoEncoder(data []byte) {
	stream, err := gbrotli.Compress(data)
	if err != nil {
		panic(err)
	}
	b, ok := testDecoders(stream)
	if !ok {
		panic("decoder error")
	}
	if !bytes.Equal(b, data) {
		panic("mismatching bytes")
	}
}
