// Copyright 2016, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package brotli

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestContextLUTs(t *testing.T) {
	ctx := func(mode uint, p1, p2 byte) uint8 {
		return contextP1LUT[uint(p1)+256*mode] | contextP2LUT[uint(p2)+256*mode]
	}

	var vectors = []struct {
		desc   string
		mode   uint
		p1, p2 byte
		want   uint8
	}{
		{"LSB6 masks the low bits", contextLSB6, 0xff, 0xff, 0x3f},
		{"LSB6 ignores p2", contextLSB6, 0x41, 0xff, 0x01},
		{"MSB6 shifts the high bits", contextMSB6, 0xff, 0x00, 0x3f},
		{"MSB6 of letter A", contextMSB6, 0x41, 0x00, 0x10},
		{"UTF8 lowercase after space", contextUTF8, 'e', ' ', 56 | 0},
		{"UTF8 space after lowercase", contextUTF8, ' ', 'e', 8 | 3},
		{"UTF8 period after lowercase", contextUTF8, '.', 'e', 36 | 3},
		{"UTF8 digit after uppercase", contextUTF8, '7', 'A', 44 | 2},
		{"UTF8 control bytes", contextUTF8, 0x00, 0x00, 0},
		{"UTF8 whitespace controls", contextUTF8, '\n', 0x00, 4},
		{"UTF8 continuation after lead", contextUTF8, 0x85, 0xc3, 1 | 2},
		{"UTF8 lead byte", contextUTF8, 0xc3, ' ', 3 | 0},
		{"Signed zero bytes", contextSigned, 0x00, 0x00, 0},
		{"Signed small magnitudes", contextSigned, 0x01, 0x0f, 1<<3 | 1},
		{"Signed negative one", contextSigned, 0xff, 0xff, 7<<3 | 7},
		{"Signed mixed magnitudes", contextSigned, 0x40, 0xc0, 3<<3 | 5},
	}

	for i, v := range vectors {
		if got := ctx(v.mode, v.p1, v.p2); got != v.want {
			t.Errorf("test %d (%q): context got %d, want %d", i, v.desc, got, v.want)
		}
	}
}

func TestInverseMoveToFront(t *testing.T) {
	var vectors = []struct {
		input  []uint8
		output []uint8
	}{
		{[]uint8{}, []uint8{}},
		{[]uint8{0, 0, 0}, []uint8{0, 0, 0}},
		{[]uint8{1, 1, 2, 0}, []uint8{1, 0, 2, 2}},
		{[]uint8{3, 3, 3, 3}, []uint8{3, 2, 1, 0}},
		{[]uint8{1, 0, 2, 3, 1}, []uint8{1, 1, 2, 3, 2}},
	}

	for i, v := range vectors {
		vals := append([]uint8{}, v.input...)
		inverseMoveToFront(vals)
		if diff := cmp.Diff(v.output, vals); diff != "" {
			t.Errorf("test %d: mismatching output (-want +got):\n%s", i, diff)
		}
	}
}
