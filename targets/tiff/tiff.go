// Copyright 2025 go-fuzz project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package tiff fuzzes golang.org/x/image/tiff.
package tiff

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/SuperOptimizer/fuzzers/harness"
	"golang.org/x/image/tiff"
)

// Codec is the TIFF instance of harness.Codec.
type Codec struct{}

func Fuzz(data []byte) int {
	return harness.Process(Codec{}, data)
}

func (Codec) Name() string { return "tiff" }
func (Codec) MinSize() int { return 8 }

func (Codec) Match(data []byte) bool {
	return bytes.HasPrefix(data, []byte("II*\x00")) || bytes.HasPrefix(data, []byte("MM\x00*"))
}

func (Codec) Config(r io.Reader) (harness.Metadata, error) {
	cfg, err := tiff.DecodeConfig(r)
	if err != nil {
		return harness.Metadata{}, err
	}
	return harness.FromConfig(cfg), nil
}

func (Codec) Decode(r io.Reader) (image.Image, error) {
	return tiff.Decode(r)
}

func (Codec) Encodings() []harness.Encoding {
	return encodings
}

var encodings = []harness.Encoding{
	{Name: "none", Encode: encodeWith(&tiff.Options{Compression: tiff.Uncompressed})},
	{Name: "deflate", Encode: encodeWith(&tiff.Options{Compression: tiff.Deflate})},
	{Name: "deflate-predictor", Encode: encodeWith(&tiff.Options{Compression: tiff.Deflate, Predictor: true})},
}

func encodeWith(opt *tiff.Options) func(io.Writer, image.Image) error {
	return func(w io.Writer, m image.Image) error {
		return tiff.Encode(w, m, opt)
	}
}

// Tags read by Walk.
const (
	tImageWidth      = 256
	tImageLength     = 257
	tBitsPerSample   = 258
	tCompression     = 259
	tPhotometric     = 262
	tSamplesPerPixel = 277
	tXResolution     = 282
	tYResolution     = 283
)

// Field types.
const (
	dtShort    = 3
	dtLong     = 4
	dtRational = 5
)

var photometric = map[uint32]string{
	0: "gray",
	1: "gray",
	2: "rgb",
	3: "paletted",
	4: "mask",
	5: "cmyk",
	6: "ycbcr",
}

var errLoop = errors.New("tiff: IFD loop")

// ifd holds the fields Walk reports for one image file directory.
type ifd struct {
	width, height uint32
	bps, spp      uint32
	compression   uint32
	photometric   uint32
	xres, yres    [2]uint32
	hasRes        bool
	next          uint32
	entries       int
}

// Walk follows the IFD chain, reading each directory's geometry, sample
// layout and resolution.
func (Codec) Walk(src harness.Source, visit func(harness.Entry) error) error {
	var hdr [8]byte
	if _, err := src.ReadAt(hdr[:], 0); err != nil {
		return err
	}
	var bo binary.ByteOrder
	switch string(hdr[:2]) {
	case "II":
		bo = binary.LittleEndian
	case "MM":
		bo = binary.BigEndian
	default:
		return fmt.Errorf("tiff: bad byte order %q", hdr[:2])
	}
	if bo.Uint16(hdr[2:]) != 42 {
		return fmt.Errorf("tiff: bad magic")
	}
	seen := make(map[uint32]bool)
	off := bo.Uint32(hdr[4:])
	for i := 0; off != 0; i++ {
		if seen[off] {
			return errLoop
		}
		seen[off] = true
		d, err := readIFD(src, bo, off)
		if err != nil {
			return err
		}
		pixel, ok := photometric[d.photometric]
		if !ok {
			pixel = "unknown"
		}
		e := harness.Entry{
			Index:  i,
			Kind:   "ifd",
			Offset: int64(off),
			Size:   int64(2 + 12*d.entries + 4),
			Meta: harness.Metadata{
				Width:    int(d.width),
				Height:   int(d.height),
				Pixel:    pixel,
				BitDepth: int(d.bps),
			},
		}
		if d.hasRes {
			e.Text = fmt.Sprintf("compression=%d spp=%d xres=%d/%d yres=%d/%d",
				d.compression, d.spp, d.xres[0], d.xres[1], d.yres[0], d.yres[1])
		} else {
			e.Text = fmt.Sprintf("compression=%d spp=%d", d.compression, d.spp)
		}
		if err := visit(e); err != nil {
			return err
		}
		off = d.next
	}
	return nil
}

func readIFD(src harness.Source, bo binary.ByteOrder, off uint32) (*ifd, error) {
	var b [12]byte
	if _, err := src.ReadAt(b[:2], int64(off)); err != nil {
		return nil, err
	}
	n := int(bo.Uint16(b[:2]))
	end := int64(off) + 2 + 12*int64(n) + 4
	if end > src.Size() {
		return nil, fmt.Errorf("tiff: IFD at %d with %d entries exceeds file", off, n)
	}
	buf := make([]byte, 12*n+4)
	if _, err := src.ReadAt(buf, int64(off)+2); err != nil {
		return nil, err
	}
	d := &ifd{bps: 1, spp: 1, entries: n, next: bo.Uint32(buf[12*n:])}
	for i := 0; i < n; i++ {
		ent := buf[12*i : 12*i+12]
		tag := bo.Uint16(ent[0:])
		typ := bo.Uint16(ent[2:])
		val := ent[8:]
		switch tag {
		case tImageWidth:
			d.width = scalar(bo, typ, val)
		case tImageLength:
			d.height = scalar(bo, typ, val)
		case tBitsPerSample:
			d.bps = firstShort(src, bo, typ, bo.Uint32(ent[4:]), val)
		case tSamplesPerPixel:
			d.spp = scalar(bo, typ, val)
		case tCompression:
			d.compression = scalar(bo, typ, val)
		case tPhotometric:
			d.photometric = scalar(bo, typ, val)
		case tXResolution, tYResolution:
			if typ != dtRational {
				continue
			}
			r, err := rational(src, bo, bo.Uint32(val))
			if err != nil {
				return nil, err
			}
			d.hasRes = true
			if tag == tXResolution {
				d.xres = r
			} else {
				d.yres = r
			}
		}
	}
	return d, nil
}

// scalar decodes an inline SHORT or LONG value.
func scalar(bo binary.ByteOrder, typ uint16, val []byte) uint32 {
	switch typ {
	case dtShort:
		return uint32(bo.Uint16(val))
	case dtLong:
		return bo.Uint32(val)
	}
	return 0
}

// firstShort returns the first value of a SHORT array, which is stored out
// of line when it holds more than two values.
func firstShort(src harness.Source, bo binary.ByteOrder, typ uint16, count uint32, val []byte) uint32 {
	if typ != dtShort || count <= 2 {
		return scalar(bo, typ, val)
	}
	var b [2]byte
	if _, err := src.ReadAt(b[:], int64(bo.Uint32(val))); err != nil {
		harness.Abort(err)
	}
	return uint32(bo.Uint16(b[:]))
}

// rational reads a RATIONAL by seeking to its offset.
func rational(src harness.Source, bo binary.ByteOrder, off uint32) ([2]uint32, error) {
	var b [8]byte
	if _, err := src.Seek(int64(off), io.SeekStart); err != nil {
		return [2]uint32{}, err
	}
	if _, err := io.ReadFull(src, b[:]); err != nil {
		return [2]uint32{}, err
	}
	return [2]uint32{bo.Uint32(b[:4]), bo.Uint32(b[4:])}, nil
}
