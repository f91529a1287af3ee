// Copyright 2025 go-fuzz project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package harness

import (
	"image"
	"math"

	"golang.org/x/image/draw"
)

// Transform is one post-decode operation. The pass is a chain: cur is the
// image produced by the previous transform (the decoded image for the first),
// out is the exact-size RGBA buffer of the convert step. A transform may
// overwrite out and returns the image it produced. Transforms never allocate
// more than out.Rect.
type Transform struct {
	Name  string
	Apply func(cur image.Image, out *image.RGBA) image.Image
}

// Gamma values of the gamma transform: screen gamma and file gamma.
const (
	ScreenGamma = 2.2
	FileGamma   = 0.45455
)

var transforms = []Transform{
	{"strip-16", strip16},
	{"gray-to-rgb", grayToRGB},
	{"strip-alpha", stripAlpha},
	{"gamma", applyGamma},
	{"scale", scaleHalf},
}

// Transforms returns the fixed transform pass in the order the driver runs it.
func Transforms() []Transform {
	return append([]Transform(nil), transforms...)
}

// toRGBA converts m into an RGBA image backed by a buffer of exactly n bytes
// describing a width x height image.
func toRGBA(m image.Image, width, height int, n int64) *image.RGBA {
	out := &image.RGBA{
		Pix:    make([]byte, n),
		Stride: width * OutputBytesPerPixel,
		Rect:   image.Rect(0, 0, width, height),
	}
	draw.Draw(out, out.Rect, m, m.Bounds().Min, draw.Src)
	return out
}

// rgba returns out holding cur. The decoded image is never modified in place.
func rgba(cur image.Image, out *image.RGBA) *image.RGBA {
	if cur == image.Image(out) {
		return out
	}
	draw.Draw(out, out.Rect, cur, cur.Bounds().Min, draw.Src)
	return out
}

// stripAlpha composites cur over an opaque white background.
func stripAlpha(cur image.Image, out *image.RGBA) image.Image {
	m := rgba(cur, out)
	pix := m.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		a := pix[i+3]
		if a == 0xff {
			continue
		}
		// Premultiplied colour over white is c + (0xff - a).
		inv := 0xff - a
		pix[i+0] += inv
		pix[i+1] += inv
		pix[i+2] += inv
		pix[i+3] = 0xff
	}
	return m
}

// strip16 reduces 16-bit images to 8 bits per sample.
func strip16(cur image.Image, out *image.RGBA) image.Image {
	if depthOf(cur) != 16 {
		return cur
	}
	n := image.NewNRGBA(out.Rect)
	draw.Draw(n, n.Rect, cur, cur.Bounds().Min, draw.Src)
	return n
}

func grayToRGB(cur image.Image, out *image.RGBA) image.Image {
	if !isGray(cur) {
		return cur
	}
	return rgba(cur, out)
}

var gammaTable = func() (t [256]byte) {
	exp := 1 / (ScreenGamma * FileGamma)
	for i := range t {
		t[i] = byte(math.Round(255 * math.Pow(float64(i)/255, exp)))
	}
	return t
}()

func applyGamma(cur image.Image, out *image.RGBA) image.Image {
	m := rgba(cur, out)
	pix := m.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		pix[i+0] = gammaTable[pix[i+0]]
		pix[i+1] = gammaTable[pix[i+1]]
		pix[i+2] = gammaTable[pix[i+2]]
	}
	return m
}

func scaleHalf(cur image.Image, out *image.RGBA) image.Image {
	w, h := out.Rect.Dx()/2, out.Rect.Dy()/2
	if w == 0 {
		w = 1
	}
	if h == 0 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Rect, cur, cur.Bounds(), draw.Src, nil)
	return dst
}
