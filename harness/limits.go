// Copyright 2025 go-fuzz project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package harness

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
)

// OutputBytesPerPixel is the size of one pixel in the decode output buffer (RGBA).
const OutputBytesPerPixel = 4

var (
	// ErrLimits is returned by Limits.Validate for an unusable configuration.
	ErrLimits = errors.New("harness: invalid limits")
	// ErrEmptyImage means the header declares a zero or negative dimension.
	ErrEmptyImage = errors.New("harness: empty image")
	// ErrTooLarge means the decode buffer would exceed the safety ceiling.
	ErrTooLarge = errors.New("harness: image exceeds safety ceiling")
	// ErrEntryLimit stops a walk that has visited Limits.MaxEntries entries.
	ErrEntryLimit = errors.New("harness: entry limit reached")
)

// Limits bounds the work done for one input, whatever the input claims.
type Limits struct {
	// MaxPixelBytes is the safety ceiling on the decode output buffer.
	MaxPixelBytes int64
	// MaxDimension bounds width and height individually.
	MaxDimension int
	// MaxEntries bounds directory, chunk and frame iteration.
	MaxEntries int
}

// DefaultLimits is used by Process.
var DefaultLimits = Limits{
	MaxPixelBytes: 4 << 20,
	MaxDimension:  65535,
	MaxEntries:    1024,
}

// Validate checks that every limit is positive.
func (l Limits) Validate() error {
	switch {
	case l.MaxPixelBytes <= 0:
		return fmt.Errorf("%w: MaxPixelBytes %d", ErrLimits, l.MaxPixelBytes)
	case l.MaxDimension <= 0:
		return fmt.Errorf("%w: MaxDimension %d", ErrLimits, l.MaxDimension)
	case l.MaxEntries <= 0:
		return fmt.Errorf("%w: MaxEntries %d", ErrLimits, l.MaxEntries)
	}
	return nil
}

// Bound returns the size of the output buffer for a width x height image,
// or an error if the image must not be decoded.
func (l Limits) Bound(width, height int) (int64, error) {
	if width <= 0 || height <= 0 {
		return 0, fmt.Errorf("%w: %dx%d", ErrEmptyImage, width, height)
	}
	if width > l.MaxDimension || height > l.MaxDimension {
		return 0, fmt.Errorf("%w: %dx%d", ErrTooLarge, width, height)
	}
	n, ok := PixelBytes(width, height, OutputBytesPerPixel)
	if !ok || n > l.MaxPixelBytes {
		return 0, fmt.Errorf("%w: %dx%d", ErrTooLarge, width, height)
	}
	return n, nil
}

// PixelBytes returns width*height*bpp. ok is false if any argument is
// negative or the product does not fit in an int64.
func PixelBytes(width, height, bpp int) (n int64, ok bool) {
	if width < 0 || height < 0 || bpp < 0 {
		return 0, false
	}
	hi, lo := bits.Mul64(uint64(width), uint64(height))
	if hi != 0 {
		return 0, false
	}
	hi, lo = bits.Mul64(lo, uint64(bpp))
	if hi != 0 || lo > math.MaxInt64 {
		return 0, false
	}
	return int64(lo), true
}
