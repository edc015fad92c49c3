// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

//go:build ignore
// +build ignore

// Benchmark tool to compare performance between multiple compression
// implementations. Individual implementations are referred to as codecs.
//
// Example usage:
//	$ go run main.go \
//		-formats br              \
//		-tests   encRate,decRate \
//		-codecs  ds,cgo          \
//		-files   repeats.bin     \
//		-levels  6               \
//		-sizes   1e4,1e5,1e6
package main

import (
	"flag"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/dsnet/brotli/internal/tool/bench"
	"github.com/dsnet/golib/unitconv"
)

const (
	defaultLevels = "6"
	defaultSizes  = "1e4,1e5,1e6"
)

// The decompression speed benchmark works by decompressing some
// pre-compressed data. In order for the benchmarks to be consistent, the
// same encoder should be used to generate the pre-compressed data for all
// the trials.
//
// encRefs defines the priority order for which encoders to choose first as
// the reference compressor.
var encRefs = []string{"std", "cgo", "ds"}

var (
	fmtToEnum = map[string]int{
		"br": bench.FormatBrotli,
		"fl": bench.FormatFlate,
		"gz": bench.FormatGzip,
		"xz": bench.FormatXZ,
	}
	enumToFmt = map[int]string{
		bench.FormatBrotli: "br",
		bench.FormatFlate:  "fl",
		bench.FormatGzip:   "gz",
		bench.FormatXZ:     "xz",
	}
	testToEnum = map[string]int{
		"encRate": bench.TestEncodeRate,
		"decRate": bench.TestDecodeRate,
		"ratio":   bench.TestCompressRatio,
	}
	enumToTest = map[int]string{
		bench.TestEncodeRate:    "encRate",
		bench.TestDecodeRate:    "decRate",
		bench.TestCompressRatio: "ratio",
	}
)

func defaultFormats() string {
	m := make(map[int]bool)
	for k := range bench.Encoders {
		m[k] = true
	}
	for k := range bench.Decoders {
		m[k] = true
	}
	var s []string
	for k := range m {
		s = append(s, enumToFmt[k])
	}
	sort.Strings(s)
	return strings.Join(s, ",")
}

func defaultCodecs() string {
	m := make(map[string]bool)
	for _, v := range bench.Encoders {
		for k := range v {
			m[k] = true
		}
	}
	for _, v := range bench.Decoders {
		for k := range v {
			m[k] = true
		}
	}
	var s []string
	for k := range m {
		s = append(s, k)
	}
	sort.Strings(s)
	return strings.Join(s, ",")
}

func main() {
	formats := flag.String("formats", defaultFormats(), "List of formats to benchmark")
	tests := flag.String("tests", "encRate,decRate,ratio", "List of tests to run")
	codecs := flag.String("codecs", defaultCodecs(), "List of codecs to benchmark")
	files := flag.String("files", strings.Join(bench.Datasets, ","), "List of datasets to benchmark with")
	levels := flag.String("levels", defaultLevels, "List of compression levels to benchmark with")
	sizes := flag.String("sizes", defaultSizes, "List of input sizes to benchmark with")
	flag.Parse()

	var levelInts, sizeInts []int
	for _, s := range strings.Split(*levels, ",") {
		lvl, err := unitconv.ParsePrefix(s, unitconv.AutoParse)
		if err != nil {
			panic(err)
		}
		levelInts = append(levelInts, int(lvl))
	}
	for _, s := range strings.Split(*sizes, ",") {
		n, err := unitconv.ParsePrefix(s, unitconv.AutoParse)
		if err != nil {
			panic(err)
		}
		sizeInts = append(sizeInts, int(n))
	}
	fileList := strings.Split(*files, ",")
	codecList := strings.Split(*codecs, ",")

	start := time.Now()
	for _, fs := range strings.Split(*formats, ",") {
		format, ok := fmtToEnum[fs]
		if !ok {
			panic(fmt.Sprintf("unknown format: %q", fs))
		}
		for _, ts := range strings.Split(*tests, ",") {
			test, ok := testToEnum[ts]
			if !ok {
				panic(fmt.Sprintf("unknown test: %q", ts))
			}
			runBenchmark(format, test, codecList, fileList, levelInts, sizeInts)
		}
	}
	fmt.Printf("\nRUNTIME: %v\n", time.Since(start))
}

func runBenchmark(format, test int, codecs, files []string, levels, sizes []int) {
	// Filter the codec list to those registered for the format.
	var encs, decs []string
	for _, c := range codecs {
		if _, ok := bench.Encoders[format][c]; ok {
			encs = append(encs, c)
		}
		if _, ok := bench.Decoders[format][c]; ok {
			decs = append(decs, c)
		}
	}

	var results [][]bench.Result
	var names, cols []string
	tick := func() { fmt.Print(".") }
	switch test {
	case bench.TestEncodeRate:
		results, names = bench.BenchmarkEncoderSuite(format, encs, files, levels, sizes, tick)
		cols = encs
	case bench.TestDecodeRate:
		var ref bench.Encoder
		for _, c := range encRefs {
			if enc, ok := bench.Encoders[format][c]; ok {
				ref = enc
				break
			}
		}
		if ref == nil {
			for _, enc := range bench.Encoders[format] {
				ref = enc
				break
			}
		}
		results, names = bench.BenchmarkDecoderSuite(format, decs, files, levels, sizes, ref, tick)
		cols = decs
	case bench.TestCompressRatio:
		results, names = bench.BenchmarkRatioSuite(format, encs, files, levels, sizes, tick)
		cols = encs
	}

	fmt.Printf("\n\nBENCHMARK: %s:%s\n", enumToFmt[format], enumToTest[test])
	unit := " MB/s"
	if test == bench.TestCompressRatio {
		unit = "x"
	}
	fmt.Printf("\t%-24s", "benchmark")
	for _, c := range cols {
		fmt.Printf("%12s%s  %-6s", c, unit, "delta")
	}
	fmt.Println()
	for i, name := range names {
		fmt.Printf("\t%-24s", name)
		for _, r := range results[i] {
			if math.IsNaN(r.D) || math.IsInf(r.D, 0) {
				r.D = 0
			}
			fmt.Printf("%12.2f  %-6s", r.R, fmt.Sprintf("%0.2fx", r.D))
		}
		fmt.Println()
	}
}
