// Copyright 2025 go-fuzz project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package webp fuzzes golang.org/x/image/webp.
// There is no WebP encoder, so the re-encode pass is skipped.
package webp

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"io"

	"github.com/SuperOptimizer/fuzzers/harness"
	"github.com/SuperOptimizer/fuzzers/memstream"
	"golang.org/x/image/webp"
)

// Codec is the WebP instance of harness.Codec.
type Codec struct{}

func Fuzz(data []byte) int {
	return harness.Process(Codec{}, data)
}

func (Codec) Name() string { return "webp" }

// MinSize covers the RIFF header and one chunk header.
func (Codec) MinSize() int { return 20 }

func (Codec) Match(data []byte) bool {
	return len(data) >= 12 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP"))
}

// Config reports the larger of the VP8X canvas and the first frame. For
// extended files webp.DecodeConfig returns only the canvas, while Decode
// allocates whatever the frame header declares.
func (Codec) Config(r io.Reader) (harness.Metadata, error) {
	src, ok := r.(harness.Source)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return harness.Metadata{}, err
		}
		src = memstream.New(data)
	}
	cfg, err := webp.DecodeConfig(src)
	if err != nil {
		return harness.Metadata{}, err
	}
	md := harness.FromConfig(cfg)
	frame, err := firstFrame(src)
	if err != nil {
		return harness.Metadata{}, err
	}
	md.Width = max(md.Width, frame.Width)
	md.Height = max(md.Height, frame.Height)
	return md, nil
}

// firstFrame returns the dimensions of the first top-level VP8 or VP8L
// chunk, the one webp.Decode decodes. It is zero if there is none.
func firstFrame(src harness.Source) (harness.Metadata, error) {
	var hdr [8]byte
	if _, err := src.ReadAt(hdr[:4], 4); err != nil {
		return harness.Metadata{}, err
	}
	end := min(int64(binary.LittleEndian.Uint32(hdr[:4]))+8, src.Size())
	for off := int64(12); off+8 <= end; {
		if _, err := src.ReadAt(hdr[:], off); err != nil {
			return harness.Metadata{}, err
		}
		e := harness.Entry{Kind: string(hdr[:4]), Offset: off, Size: int64(binary.LittleEndian.Uint32(hdr[4:]))}
		if e.Kind == "VP8 " || e.Kind == "VP8L" {
			if err := describe(src, &e, off+8); err != nil {
				return harness.Metadata{}, err
			}
			return e.Meta, nil
		}
		off += 8 + e.Size + e.Size&1
	}
	return harness.Metadata{}, nil
}

func (Codec) Decode(r io.Reader) (image.Image, error) {
	return webp.Decode(r)
}

// Walk visits every top-level RIFF chunk and every frame inside ANMF chunks.
func (Codec) Walk(src harness.Source, visit func(harness.Entry) error) error {
	var hdr [12]byte
	if _, err := src.ReadAt(hdr[:], 0); err != nil {
		return err
	}
	end := int64(binary.LittleEndian.Uint32(hdr[4:])) + 8
	if end > src.Size() {
		return fmt.Errorf("webp: RIFF size %d exceeds file size %d", end, src.Size())
	}
	_, err := walkChunks(src, 12, end, 0, visit)
	return err
}

// walkChunks visits chunks in [off, end) and returns the next entry index.
func walkChunks(src harness.Source, off, end int64, index int, visit func(harness.Entry) error) (int, error) {
	var hdr [8]byte
	for off+8 <= end {
		if _, err := src.ReadAt(hdr[:], off); err != nil {
			return index, err
		}
		fourcc := string(hdr[:4])
		n := int64(binary.LittleEndian.Uint32(hdr[4:]))
		body := off + 8
		if n > end-body {
			return index, fmt.Errorf("webp: chunk %q size %d exceeds container", fourcc, n)
		}
		e := harness.Entry{Index: index, Kind: fourcc, Offset: off, Size: n}
		if err := describe(src, &e, body); err != nil {
			return index, err
		}
		if err := visit(e); err != nil {
			return index, err
		}
		index++
		if fourcc == "ANMF" && n >= 16 {
			var err error
			if index, err = walkChunks(src, body+16, body+n, index, visit); err != nil {
				return index, err
			}
		}
		off = body + n + n&1
	}
	return index, nil
}

func describe(src harness.Source, e *harness.Entry, body int64) error {
	var b [16]byte
	read := func(n int) ([]byte, error) {
		if int64(n) > e.Size {
			return nil, fmt.Errorf("webp: short %s chunk", e.Kind)
		}
		if _, err := src.ReadAt(b[:n], body); err != nil {
			return nil, err
		}
		return b[:n], nil
	}
	switch e.Kind {
	case "VP8X":
		p, err := read(10)
		if err != nil {
			return err
		}
		e.Meta = harness.Metadata{
			Width:    int(uint24(p[4:])) + 1,
			Height:   int(uint24(p[7:])) + 1,
			Pixel:    "canvas",
			BitDepth: 8,
		}
		e.Text = fmt.Sprintf("flags=%#02x", p[0])
	case "VP8 ":
		p, err := read(10)
		if err != nil {
			return err
		}
		if p[3] != 0x9d || p[4] != 0x01 || p[5] != 0x2a {
			return fmt.Errorf("webp: bad VP8 start code")
		}
		e.Meta = harness.Metadata{
			Width:    int(binary.LittleEndian.Uint16(p[6:]) & 0x3fff),
			Height:   int(binary.LittleEndian.Uint16(p[8:]) & 0x3fff),
			Pixel:    "ycbcr",
			BitDepth: 8,
		}
	case "VP8L":
		p, err := read(5)
		if err != nil {
			return err
		}
		if p[0] != 0x2f {
			return fmt.Errorf("webp: bad VP8L signature %#02x", p[0])
		}
		bits := binary.LittleEndian.Uint32(p[1:])
		e.Meta = harness.Metadata{
			Width:    int(bits&0x3fff) + 1,
			Height:   int(bits>>14&0x3fff) + 1,
			Pixel:    "nrgba",
			BitDepth: 8,
		}
	case "ANMF":
		p, err := read(16)
		if err != nil {
			return err
		}
		e.Meta = harness.Metadata{
			Width:    int(uint24(p[6:])) + 1,
			Height:   int(uint24(p[9:])) + 1,
			Pixel:    "frame",
			BitDepth: 8,
		}
		e.Text = fmt.Sprintf("x=%d y=%d duration=%d", 2*uint24(p[0:]), 2*uint24(p[3:]), uint24(p[12:]))
	}
	return nil
}

func uint24(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16
}
