// Copyright 2025 go-fuzz project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package bmp

import (
	"encoding/binary"
	"image"
	"testing"

	"github.com/SuperOptimizer/fuzzers/harness"
	"github.com/SuperOptimizer/fuzzers/testimages"
)

func run(data []byte) *harness.Counters {
	c := new(harness.Counters)
	(&harness.Driver{Probe: c}).Process(Codec{}, data)
	return c
}

func FuzzBMP(f *testing.F) {
	f.Add(testimages.BMP(testimages.Gradient(5, 3)))
	f.Add(testimages.BMP(image.NewGray(image.Rect(0, 0, 3, 3))))
	f.Fuzz(func(t *testing.T, data []byte) {
		Fuzz(data)
	})
}

func TestEncodedImage(t *testing.T) {
	c := run(testimages.BMP(testimages.Gradient(5, 3)))
	for _, call := range c.Calls() {
		if call.Err != "" {
			t.Errorf("%v failed: %v", call.Op, call.Err)
		}
	}
	if !c.Called("encode-transformed/bmp") || !c.Balanced() {
		t.Fatalf("calls = %v, balanced = %v", c.Calls(), c.Balanced())
	}
}

func TestHugeDimensions(t *testing.T) {
	data := testimages.BMP(image.NewGray(image.Rect(0, 0, 4, 4)))
	// BITMAPINFOHEADER width and height.
	binary.LittleEndian.PutUint32(data[18:], 60000)
	binary.LittleEndian.PutUint32(data[22:], 60000)
	c := run(data)
	if c.Called("decode") {
		t.Fatalf("decode attempted for 60000x60000")
	}
	if !c.Balanced() {
		t.Fatalf("handles not balanced")
	}
}

func TestTruncated(t *testing.T) {
	data := testimages.BMP(testimages.Gradient(8, 8))
	for n := 26; n < len(data); n += 9 {
		c := run(testimages.Truncate(data, n))
		if c.Called("convert") {
			t.Fatalf("truncated to %d: decode succeeded", n)
		}
		if !c.Balanced() {
			t.Fatalf("truncated to %d: handles not balanced", n)
		}
	}
}
