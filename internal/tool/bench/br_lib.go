// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bench

import (
	"io"

	"github.com/dsnet/brotli"
)

func init() {
	RegisterEncoder(FormatBrotli, "ds",
		func(w io.Writer, lvl int) io.WriteCloser {
			return brotli.NewWriter(w)
		})
	RegisterDecoder(FormatBrotli, "ds",
		func(r io.Reader) io.ReadCloser {
			return brotli.NewReader(r)
		})
}
