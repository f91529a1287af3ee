// Copyright 2025 go-fuzz project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package testimages builds images and encoded files for tests and fuzz
// seed corpora. Encoding failures are programming errors and panic.
package testimages

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"math/rand"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

type settable interface {
	image.Image
	Set(x, y int, c color.Color)
}

// Random returns a small image of a random type, size and fill pattern.
func Random(r *rand.Rand, maxPaletteSize int) image.Image {
	rect := image.Rect(0, 0, r.Intn(32)+1, r.Intn(32)+1)
	var img settable
	switch r.Intn(10) {
	case 0:
		img = image.NewAlpha(rect)
	case 1:
		img = image.NewAlpha16(rect)
	case 2:
		img = image.NewCMYK(rect)
	case 3:
		img = image.NewGray(rect)
	case 4:
		img = image.NewGray16(rect)
	case 5:
		img = image.NewNRGBA(rect)
	case 6:
		img = image.NewNRGBA64(rect)
	case 7:
		img = image.NewPaletted(rect, randPalette(r, maxPaletteSize))
	case 8:
		img = image.NewRGBA(rect)
	default:
		img = image.NewRGBA64(rect)
	}
	fill := r.Intn(19)
	var palette color.Palette
	if fill == 17 {
		palette = randPalette(r, maxPaletteSize)
	}
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			switch {
			case fill <= 15:
				img.Set(x, y, color.RGBA64{
					^uint16(0) * uint16((fill>>0)&1),
					^uint16(0) * uint16((fill>>1)&1),
					^uint16(0) * uint16((fill>>2)&1),
					^uint16(0) * uint16((fill>>3)&1),
				})
			case fill == 16:
				img.Set(x, y, randColor(r))
			case fill == 17:
				img.Set(x, y, palette[r.Intn(len(palette))])
			default:
				if r.Intn(3) != 0 {
					img.Set(x, y, color.RGBA64{})
				} else {
					img.Set(x, y, randColor(r))
				}
			}
		}
	}
	return img
}

func randColor(r *rand.Rand) color.Color {
	return color.RGBA64{
		uint16(r.Intn(1 << 16)),
		uint16(r.Intn(1 << 16)),
		uint16(r.Intn(1 << 16)),
		uint16(r.Intn(1 << 16)),
	}
}

func randPalette(r *rand.Rand, maxPaletteSize int) color.Palette {
	palette := make(color.Palette, r.Intn(maxPaletteSize)+1)
	for i := range palette {
		palette[i] = randColor(r)
	}
	return palette
}

// Gradient returns a w x h NRGBA image with varying colour and alpha.
func Gradient(w, h int) *image.NRGBA {
	m := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			m.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 255 / max(w-1, 1)),
				G: uint8(y * 255 / max(h-1, 1)),
				B: uint8((x + y) & 0xff),
				A: uint8(0x80 + (x*y)&0x7f),
			})
		}
	}
	return m
}

// PNG encodes m with the default compression level.
func PNG(m image.Image) []byte {
	var buf bytes.Buffer
	must(png.Encode(&buf, m))
	return buf.Bytes()
}

// JPEG encodes m at the given quality.
func JPEG(m image.Image, quality int) []byte {
	var buf bytes.Buffer
	must(jpeg.Encode(&buf, m, &jpeg.Options{Quality: quality}))
	return buf.Bytes()
}

// BMP encodes m.
func BMP(m image.Image) []byte {
	var buf bytes.Buffer
	must(bmp.Encode(&buf, m))
	return buf.Bytes()
}

// TIFF encodes m as a single-directory TIFF.
func TIFF(m image.Image) []byte {
	var buf bytes.Buffer
	must(tiff.Encode(&buf, m, &tiff.Options{Compression: tiff.Deflate, Predictor: true}))
	return buf.Bytes()
}

// GIF encodes an animation of n frames of w x h, each a different colour.
func GIF(n, w, h int) []byte {
	palette := color.Palette{color.Black, color.White, color.RGBA{0xff, 0, 0, 0xff}, color.RGBA{0, 0, 0xff, 0xff}}
	anim := &gif.GIF{LoopCount: 0}
	for i := 0; i < n; i++ {
		frame := image.NewPaletted(image.Rect(0, 0, w, h), palette)
		for j := range frame.Pix {
			frame.Pix[j] = uint8((i + j) % len(palette))
		}
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, 10)
	}
	var buf bytes.Buffer
	must(gif.EncodeAll(&buf, anim))
	return buf.Bytes()
}

// lossless1x1 is a complete 1x1 lossless WebP file.
var lossless1x1 = []byte("RIFF\x1a\x00\x00\x00WEBPVP8L\x0d\x00\x00\x00\x2f\x00\x00\x00\x10\x07\x10\x11\x11\x88\x88\xfe\x07\x00")

// WebP returns a minimal lossless WebP file.
func WebP() []byte {
	return append([]byte(nil), lossless1x1...)
}

// Truncate returns a copy of the first n bytes of data.
func Truncate(data []byte, n int) []byte {
	return append([]byte(nil), data[:min(n, len(data))]...)
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
