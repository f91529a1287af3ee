// Copyright 2025 go-fuzz project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package tiff

import (
	"errors"
	"testing"

	"github.com/SuperOptimizer/fuzzers/harness"
	"github.com/SuperOptimizer/fuzzers/memstream"
	"github.com/SuperOptimizer/fuzzers/testimages"
	"github.com/google/go-cmp/cmp"
)

func run(data []byte) *harness.Counters {
	c := new(harness.Counters)
	(&harness.Driver{Probe: c}).Process(Codec{}, data)
	return c
}

func FuzzTIFF(f *testing.F) {
	f.Add(testimages.TIFF(testimages.Gradient(4, 4)))
	f.Add(testimages.MultiTIFF(2, 3, 3, false))
	f.Add(testimages.MultiTIFF(2, 3, 3, true))
	f.Fuzz(func(t *testing.T, data []byte) {
		Fuzz(data)
	})
}

func TestEncodedImage(t *testing.T) {
	c := run(testimages.TIFF(testimages.Gradient(6, 5)))
	for _, call := range c.Calls() {
		if call.Err != "" {
			t.Errorf("%v failed: %v", call.Op, call.Err)
		}
	}
	if !c.Called("encode/deflate-predictor") || !c.Balanced() {
		t.Fatalf("calls = %v, balanced = %v", c.Calls(), c.Balanced())
	}
	if n := len(c.Entries()); n != 1 {
		t.Fatalf("walked %d directories, want 1", n)
	}
}

func TestDirectories(t *testing.T) {
	c := run(testimages.MultiTIFF(3, 5, 4, false))
	if !c.Balanced() || !c.Called("convert") {
		t.Fatalf("calls = %v, balanced = %v", c.Calls(), c.Balanced())
	}
	var got []harness.Entry
	for _, e := range c.Entries() {
		got = append(got, harness.Entry{Index: e.Index, Kind: e.Kind, Meta: e.Meta, Text: e.Text})
	}
	meta := harness.Metadata{Width: 5, Height: 4, Pixel: "gray", BitDepth: 8}
	want := []harness.Entry{
		{Index: 0, Kind: "ifd", Meta: meta, Text: "compression=1 spp=1 xres=72/1 yres=96/1"},
		{Index: 1, Kind: "ifd", Meta: meta, Text: "compression=1 spp=1 xres=73/1 yres=96/1"},
		{Index: 2, Kind: "ifd", Meta: meta, Text: "compression=1 spp=1 xres=74/1 yres=96/1"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("directories mismatch (-want +got):\n%s", diff)
	}
}

func TestLoop(t *testing.T) {
	var n int
	err := Codec{}.Walk(memstream.New(testimages.MultiTIFF(2, 2, 2, true)), func(harness.Entry) error {
		n++
		return nil
	})
	if !errors.Is(err, errLoop) || n != 2 {
		t.Fatalf("Walk = %v after %d entries, want loop error after 2", err, n)
	}
	c := run(testimages.MultiTIFF(2, 2, 2, true))
	if !c.Balanced() {
		t.Fatalf("handles not balanced")
	}
}

func TestTruncatedDirectory(t *testing.T) {
	data := testimages.MultiTIFF(1, 4, 4, false)
	for n := 8; n < len(data); n += 7 {
		c := run(testimages.Truncate(data, n))
		if !c.Balanced() {
			t.Fatalf("truncated to %d: handles not balanced", n)
		}
	}
}

func TestSignature(t *testing.T) {
	for _, test := range []struct {
		data string
		want bool
	}{
		{"II*\x00\x08\x00\x00\x00", true},
		{"MM\x00*\x00\x00\x00\x08", true},
		{"II\x00*\x08\x00\x00\x00", false},
		{"\x89PNG\r\n\x1a\n", false},
	} {
		if got := (Codec{}).Match([]byte(test.data)); got != test.want {
			t.Errorf("Match(%q) = %v, want %v", test.data, got, test.want)
		}
	}
}
