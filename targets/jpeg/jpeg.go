// Copyright 2025 go-fuzz project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package jpeg fuzzes image/jpeg.
package jpeg

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/jpeg"
	"io"

	"github.com/SuperOptimizer/fuzzers/harness"
)

// Codec is the JPEG instance of harness.Codec.
type Codec struct{}

func Fuzz(data []byte) int {
	return harness.Process(Codec{}, data)
}

func (Codec) Name() string { return "jpeg" }
func (Codec) MinSize() int { return 4 }

func (Codec) Match(data []byte) bool {
	return bytes.HasPrefix(data, []byte{0xff, 0xd8})
}

func (Codec) Config(r io.Reader) (harness.Metadata, error) {
	cfg, err := jpeg.DecodeConfig(r)
	if err != nil {
		return harness.Metadata{}, err
	}
	return harness.FromConfig(cfg), nil
}

func (Codec) Decode(r io.Reader) (image.Image, error) {
	return jpeg.Decode(r)
}

func (Codec) Encodings() []harness.Encoding {
	return encodings
}

var encodings = []harness.Encoding{
	{Name: "q1", Encode: quality(1)},
	{Name: "q75", Encode: quality(jpeg.DefaultQuality)},
	{Name: "q100", Encode: quality(100)},
}

func quality(q int) func(io.Writer, image.Image) error {
	opt := &jpeg.Options{Quality: q}
	return func(w io.Writer, m image.Image) error {
		return jpeg.Encode(w, m, opt)
	}
}

// Markers.
const (
	mSOI  = 0xd8
	mEOI  = 0xd9
	mSOS  = 0xda
	mDQT  = 0xdb
	mDRI  = 0xdd
	mDHT  = 0xc4
	mJPG  = 0xc8
	mDAC  = 0xcc
	mRST0 = 0xd0
	mRST7 = 0xd7
	mAPP0 = 0xe0
	mAPPF = 0xef
	mCOM  = 0xfe
	mTEM  = 0x01
)

func markerName(m byte) string {
	switch {
	case m == mSOI:
		return "SOI"
	case m == mEOI:
		return "EOI"
	case m == mSOS:
		return "SOS"
	case m == mDQT:
		return "DQT"
	case m == mDRI:
		return "DRI"
	case m == mDHT:
		return "DHT"
	case m == mDAC:
		return "DAC"
	case m == mCOM:
		return "COM"
	case m == mTEM:
		return "TEM"
	case isSOF(m):
		return fmt.Sprintf("SOF%d", m-0xc0)
	case m >= mRST0 && m <= mRST7:
		return fmt.Sprintf("RST%d", m-mRST0)
	case m >= mAPP0 && m <= mAPPF:
		return fmt.Sprintf("APP%d", m-mAPP0)
	}
	return fmt.Sprintf("M%02X", m)
}

func isSOF(m byte) bool {
	return m >= 0xc0 && m <= 0xcf && m != mDHT && m != mJPG && m != mDAC
}

var components = map[byte]string{
	1: "gray",
	3: "ycbcr",
	4: "cmyk",
}

// Walk visits every marker segment up to EOI. It works on the mapped input
// directly and skips entropy-coded data after each SOS.
func (Codec) Walk(src harness.Source, visit func(harness.Entry) error) error {
	data := src.Map()
	if len(data) < 2 || data[0] != 0xff || data[1] != mSOI {
		return fmt.Errorf("jpeg: missing SOI")
	}
	if err := visit(harness.Entry{Index: 0, Kind: "SOI", Offset: 0}); err != nil {
		return err
	}
	pos := 2
	for i := 1; ; i++ {
		if pos >= len(data) {
			return io.ErrUnexpectedEOF
		}
		if data[pos] != 0xff {
			return fmt.Errorf("jpeg: expected marker at %d, found %#02x", pos, data[pos])
		}
		// Any number of fill bytes may precede a marker.
		for pos < len(data) && data[pos] == 0xff {
			pos++
		}
		if pos >= len(data) {
			return io.ErrUnexpectedEOF
		}
		m := data[pos]
		start := pos - 1
		pos++
		e := harness.Entry{Index: i, Kind: markerName(m), Offset: int64(start)}
		if m == mEOI || m == mTEM || m >= mRST0 && m <= mRST7 {
			if err := visit(e); err != nil {
				return err
			}
			if m == mEOI {
				return nil
			}
			continue
		}
		if pos+2 > len(data) {
			return io.ErrUnexpectedEOF
		}
		n := int(binary.BigEndian.Uint16(data[pos:]))
		if n < 2 || pos+n > len(data) {
			return fmt.Errorf("jpeg: %s segment length %d at %d", e.Kind, n, start)
		}
		seg := data[pos+2 : pos+n]
		pos += n
		e.Size = int64(n)
		switch {
		case isSOF(m):
			if len(seg) < 6 {
				return fmt.Errorf("jpeg: short %s", e.Kind)
			}
			pixel, ok := components[seg[5]]
			if !ok {
				pixel = "unknown"
			}
			e.Meta = harness.Metadata{
				Width:    int(binary.BigEndian.Uint16(seg[3:])),
				Height:   int(binary.BigEndian.Uint16(seg[1:])),
				Pixel:    pixel,
				BitDepth: int(seg[0]),
			}
		case m >= mAPP0 && m <= mAPPF:
			if k := bytes.IndexByte(seg, 0); k > 0 {
				e.Text = string(seg[:k])
			}
		case m == mSOS:
			pos = skipScan(data, pos)
			e.Size = int64(pos - start)
		}
		if err := visit(e); err != nil {
			return err
		}
	}
}

// skipScan returns the offset of the first marker after the entropy-coded
// data starting at pos. Stuffed zero bytes and RSTn markers are part of the
// scan.
func skipScan(data []byte, pos int) int {
	for {
		i := bytes.IndexByte(data[pos:], 0xff)
		if i < 0 {
			return len(data)
		}
		pos += i
		if pos+1 >= len(data) {
			return pos
		}
		next := data[pos+1]
		if next == 0 || next >= mRST0 && next <= mRST7 {
			pos += 2
			continue
		}
		if next == 0xff {
			pos++
			continue
		}
		return pos
	}
}
