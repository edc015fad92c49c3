// Copyright 2016, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package brotli

import (
	"bytes"
	"io/ioutil"
)

// Compress returns the input encoded as a single Brotli stream.
// Compression of valid input cannot fail, but an IO error is still reported
// for API symmetry with Decompress.
func Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decompress returns the original form of a Brotli encoded stream.
func Decompress(data []byte) ([]byte, error) {
	zr := NewReader(bytes.NewReader(data))
	buf, err := ioutil.ReadAll(zr)
	if err != nil {
		return nil, err
	}
	if err := zr.Close(); err != nil {
		return nil, err
	}
	return buf, nil
}
