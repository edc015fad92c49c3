// Copyright 2016, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

//go:build cgo
// +build cgo

// Package brotli implements the Brotli compressed data format using the
// canonical C implementation via cgo. It exists to verify interoperability
// of the pure Go implementation in tests and benchmarks.
package brotli

import (
	"io"

	"gopkg.in/kothar/brotli-go.v0/dec"
	"gopkg.in/kothar/brotli-go.v0/enc"
)

func NewReader(r io.Reader) io.ReadCloser {
	return dec.NewBrotliReaderSize(r, 4096)
}

func NewWriter(w io.Writer, level int) io.WriteCloser {
	c := enc.NewBrotliParams()
	c.SetQuality(level)
	return enc.NewBrotliWriter(c, w)
}
