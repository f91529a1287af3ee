// Copyright 2025 go-fuzz project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package harness

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"
)

func TestPixelBytes(t *testing.T) {
	tests := []struct {
		w, h, bpp int
		want      int64
		ok        bool
	}{
		{0, 0, 4, 0, true},
		{1, 1, 4, 4, true},
		{256, 256, 4, 256 * 256 * 4, true},
		{65535, 65535, 4, 65535 * 65535 * 4, true},
		{-1, 10, 4, 0, false},
		{10, -1, 4, 0, false},
		{10, 10, -4, 0, false},
		{math.MaxInt, 2, 1, 0, false},
		{math.MaxInt32, math.MaxInt32, 4, 0, false},
		{1 << 32, 1 << 32, 1, 0, false},
	}
	for _, test := range tests {
		got, ok := PixelBytes(test.w, test.h, test.bpp)
		if got != test.want || ok != test.ok {
			t.Errorf("PixelBytes(%d, %d, %d) = %d, %v; want %d, %v", test.w, test.h, test.bpp, got, ok, test.want, test.ok)
		}
	}
}

func TestBound(t *testing.T) {
	l := Limits{MaxPixelBytes: 1 << 20, MaxDimension: 1000, MaxEntries: 1}
	tests := []struct {
		w, h    int
		want    int64
		wantErr error
	}{
		{1, 1, 4, nil},
		{512, 512, 1 << 20, nil},
		{513, 512, 0, ErrTooLarge},
		{1001, 1, 0, ErrTooLarge},
		{0, 1, 0, ErrEmptyImage},
		{1, 0, 0, ErrEmptyImage},
		{-1, -1, 0, ErrEmptyImage},
	}
	for _, test := range tests {
		got, err := l.Bound(test.w, test.h)
		if got != test.want || !errors.Is(err, test.wantErr) {
			t.Errorf("Bound(%d, %d) = %d, %v; want %d, %v", test.w, test.h, got, err, test.want, test.wantErr)
		}
	}
}

func TestValidate(t *testing.T) {
	if err := DefaultLimits.Validate(); err != nil {
		t.Fatalf("DefaultLimits invalid: %v", err)
	}
	for _, l := range []Limits{
		{MaxPixelBytes: 0, MaxDimension: 1, MaxEntries: 1},
		{MaxPixelBytes: 1, MaxDimension: -1, MaxEntries: 1},
		{MaxPixelBytes: 1, MaxDimension: 1, MaxEntries: 0},
	} {
		if err := l.Validate(); !errors.Is(err, ErrLimits) {
			t.Errorf("%+v: Validate = %v, want ErrLimits", l, err)
		}
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		m     color.Model
		pixel string
		depth int
	}{
		{color.GrayModel, "gray", 8},
		{color.Gray16Model, "gray16", 16},
		{color.NRGBA64Model, "nrgba64", 16},
		{color.YCbCrModel, "ycbcr", 8},
		{color.CMYKModel, "cmyk", 8},
		{color.Palette{color.Black, color.White}, "paletted", 8},
		{nil, "unknown", 0},
		{color.ModelFunc(func(c color.Color) color.Color { return c }), "unknown", 0},
	}
	for _, test := range tests {
		pixel, depth := Describe(test.m)
		if pixel != test.pixel || depth != test.depth {
			t.Errorf("Describe(%T) = %q, %d; want %q, %d", test.m, pixel, depth, test.pixel, test.depth)
		}
	}
}

func TestFromConfig(t *testing.T) {
	got := FromConfig(image.Config{ColorModel: color.Gray16Model, Width: 7, Height: 9})
	want := Metadata{Width: 7, Height: 9, Pixel: "gray16", BitDepth: 16}
	if got != want {
		t.Fatalf("FromConfig = %v, want %v", got, want)
	}
}
