// Copyright 2025 go-fuzz project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package testimages

import (
	"bytes"
	"image/gif"
	"image/png"
	"math/rand"
	"testing"

	"golang.org/x/image/tiff"
)

func TestRandomRoundTrips(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 50; i++ {
		m := Random(r, 256)
		got, err := png.Decode(bytes.NewReader(PNG(m)))
		if err != nil {
			t.Fatalf("image %d: %v", i, err)
		}
		if got.Bounds() != m.Bounds() {
			t.Fatalf("image %d: bounds %v, want %v", i, got.Bounds(), m.Bounds())
		}
	}
}

func TestPNGHeader(t *testing.T) {
	data := PNGHeader(60000, 60000, 8, 6)
	if len(data) != 33 {
		t.Fatalf("len = %d, want 33", len(data))
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 60000 || cfg.Height != 60000 {
		t.Fatalf("config = %dx%d", cfg.Width, cfg.Height)
	}
}

func TestMultiTIFF(t *testing.T) {
	m, err := tiff.Decode(bytes.NewReader(MultiTIFF(3, 5, 4, false)))
	if err != nil {
		t.Fatal(err)
	}
	if b := m.Bounds(); b.Dx() != 5 || b.Dy() != 4 {
		t.Fatalf("bounds = %v", b)
	}
}

func TestGIF(t *testing.T) {
	g, err := gif.DecodeAll(bytes.NewReader(GIF(3, 4, 4)))
	if err != nil {
		t.Fatal(err)
	}
	if len(g.Image) != 3 {
		t.Fatalf("frames = %d, want 3", len(g.Image))
	}
}

func TestTruncate(t *testing.T) {
	data := []byte("abcdef")
	if got := Truncate(data, 3); string(got) != "abc" {
		t.Fatalf("Truncate = %q", got)
	}
	if got := Truncate(data, 100); string(got) != "abcdef" {
		t.Fatalf("Truncate = %q", got)
	}
}
