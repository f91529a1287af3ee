// Copyright 2025 go-fuzz project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package harness

import (
	"fmt"
	"image"
	"image/color"
)

// Metadata is what a codec reports about an image before decoding it.
type Metadata struct {
	Width    int
	Height   int
	Pixel    string // pixel format tag, see Describe
	BitDepth int    // bits per sample
}

func (m Metadata) String() string {
	return fmt.Sprintf("%dx%d %s/%d", m.Width, m.Height, m.Pixel, m.BitDepth)
}

// FromConfig converts an image.Config into Metadata.
func FromConfig(cfg image.Config) Metadata {
	pixel, depth := Describe(cfg.ColorModel)
	return Metadata{
		Width:    cfg.Width,
		Height:   cfg.Height,
		Pixel:    pixel,
		BitDepth: depth,
	}
}

// Describe names a color model and returns its bits per sample.
func Describe(m color.Model) (pixel string, depth int) {
	if _, ok := m.(color.Palette); ok {
		return "paletted", 8
	}
	switch m {
	case nil:
		return "unknown", 0
	case color.GrayModel:
		return "gray", 8
	case color.Gray16Model:
		return "gray16", 16
	case color.RGBAModel:
		return "rgba", 8
	case color.RGBA64Model:
		return "rgba64", 16
	case color.NRGBAModel:
		return "nrgba", 8
	case color.NRGBA64Model:
		return "nrgba64", 16
	case color.AlphaModel:
		return "alpha", 8
	case color.Alpha16Model:
		return "alpha16", 16
	case color.CMYKModel:
		return "cmyk", 8
	case color.YCbCrModel:
		return "ycbcr", 8
	case color.NYCbCrAModel:
		return "nycbcra", 8
	}
	return "unknown", 0
}

// depthOf reports the bits per sample of a decoded image.
func depthOf(m image.Image) int {
	switch m.(type) {
	case *image.Gray16, *image.RGBA64, *image.NRGBA64, *image.Alpha16:
		return 16
	}
	_, depth := Describe(m.ColorModel())
	return depth
}

func isGray(m image.Image) bool {
	switch m.(type) {
	case *image.Gray, *image.Gray16:
		return true
	}
	return false
}
