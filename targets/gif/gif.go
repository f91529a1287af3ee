// Copyright 2025 go-fuzz project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package gif fuzzes image/gif.
package gif

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/gif"
	"io"

	"github.com/SuperOptimizer/fuzzers/harness"
)

// Codec is the GIF instance of harness.Codec.
type Codec struct{}

func Fuzz(data []byte) int {
	return harness.Process(Codec{}, data)
}

func (Codec) Name() string { return "gif" }

// MinSize covers the header and the logical screen descriptor.
func (Codec) MinSize() int { return 13 }

func (Codec) Match(data []byte) bool {
	return bytes.HasPrefix(data, []byte("GIF87a")) || bytes.HasPrefix(data, []byte("GIF89a"))
}

func (Codec) Config(r io.Reader) (harness.Metadata, error) {
	cfg, err := gif.DecodeConfig(r)
	if err != nil {
		return harness.Metadata{}, err
	}
	return harness.FromConfig(cfg), nil
}

func (Codec) Decode(r io.Reader) (image.Image, error) {
	return gif.Decode(r)
}

func (Codec) Encodings() []harness.Encoding {
	return encodings
}

var encodings = []harness.Encoding{
	{Name: "default", Encode: func(w io.Writer, m image.Image) error {
		return gif.Encode(w, m, nil)
	}},
	{Name: "16", Encode: func(w io.Writer, m image.Image) error {
		return gif.Encode(w, m, &gif.Options{NumColors: 16})
	}},
}

// Block introducers and extension labels.
const (
	sExtension       = 0x21
	sImageDescriptor = 0x2c
	sTrailer         = 0x3b

	ePlainText      = 0x01
	eGraphicControl = 0xf9
	eComment        = 0xfe
	eApplication    = 0xff
)

var extensions = map[byte]string{
	ePlainText:      "plain-text",
	eGraphicControl: "graphic-control",
	eComment:        "comment",
	eApplication:    "application",
}

// blockReader reads a GIF block structure, aborting the walk on short input.
type blockReader struct {
	src harness.Source
	buf [256]byte
}

func (r *blockReader) read(n int) []byte {
	_, err := io.ReadFull(r.src, r.buf[:n])
	harness.Check(err)
	return r.buf[:n]
}

// skip discards a colour table or similar fixed-size field.
func (r *blockReader) skip(n int64) {
	_, err := io.CopyN(io.Discard, r.src, n)
	harness.Check(err)
}

func (r *blockReader) offset() int64 {
	return r.src.Pos()
}

// skipSubBlocks skips data sub-blocks up to and including the terminator
// and returns their total payload size.
func (r *blockReader) skipSubBlocks() int64 {
	var total int64
	for {
		n := int(r.read(1)[0])
		if n == 0 {
			return total
		}
		r.read(n)
		total += int64(n)
	}
}

// Walk visits every extension and image descriptor up to the trailer.
func (Codec) Walk(src harness.Source, visit func(harness.Entry) error) error {
	r := &blockReader{src: src}
	hdr := r.read(13)
	if !(Codec{}).Match(hdr) {
		return fmt.Errorf("gif: bad header")
	}
	screen := harness.Metadata{
		Width:    int(binary.LittleEndian.Uint16(hdr[6:])),
		Height:   int(binary.LittleEndian.Uint16(hdr[8:])),
		Pixel:    "paletted",
		BitDepth: int(hdr[10]&7) + 1,
	}
	if hdr[10]&0x80 != 0 {
		r.skip(3 << (hdr[10]&7 + 1))
	}
	if err := visit(harness.Entry{Index: 0, Kind: "screen", Meta: screen, Text: string(hdr[:6])}); err != nil {
		return err
	}
	for i := 1; ; i++ {
		off := r.offset()
		e := harness.Entry{Index: i, Offset: off}
		switch b := r.read(1)[0]; b {
		case sTrailer:
			e.Kind = "trailer"
			return visit(e)
		case sExtension:
			label := r.read(1)[0]
			name, ok := extensions[label]
			if !ok {
				name = fmt.Sprintf("extension-%02x", label)
			}
			e.Kind = name
			if label == eApplication {
				n := int(r.read(1)[0])
				e.Text = string(r.read(n))
			}
			r.skipSubBlocks()
		case sImageDescriptor:
			d := r.read(9)
			e.Kind = "frame"
			e.Meta = harness.Metadata{
				Width:    int(binary.LittleEndian.Uint16(d[4:])),
				Height:   int(binary.LittleEndian.Uint16(d[6:])),
				Pixel:    "paletted",
				BitDepth: screen.BitDepth,
			}
			flags := d[8]
			if flags&0x80 != 0 {
				e.Meta.BitDepth = int(flags&7) + 1
				r.skip(3 << (flags&7 + 1))
			}
			r.read(1) // LZW minimum code size
			r.skipSubBlocks()
		default:
			return fmt.Errorf("gif: unknown block %#02x at %d", b, off)
		}
		e.Size = r.offset() - off
		if err := visit(e); err != nil {
			return err
		}
	}
}
