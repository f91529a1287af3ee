// Copyright 2025 go-fuzz project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package png fuzzes image/png.
package png

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"image"
	"image/png"
	"io"

	"github.com/SuperOptimizer/fuzzers/harness"
)

const signature = "\x89PNG\r\n\x1a\n"

// Codec is the PNG instance of harness.Codec.
type Codec struct{}

func Fuzz(data []byte) int {
	return harness.Process(Codec{}, data)
}

func (Codec) Name() string { return "png" }

// MinSize covers the signature and a complete IHDR chunk.
func (Codec) MinSize() int { return 33 }

func (Codec) Match(data []byte) bool {
	return bytes.HasPrefix(data, []byte(signature))
}

func (Codec) Config(r io.Reader) (harness.Metadata, error) {
	cfg, err := png.DecodeConfig(r)
	if err != nil {
		return harness.Metadata{}, err
	}
	return harness.FromConfig(cfg), nil
}

func (Codec) Decode(r io.Reader) (image.Image, error) {
	return png.Decode(r)
}

func (Codec) Encodings() []harness.Encoding {
	return encodings
}

var encodings = func() []harness.Encoding {
	var encs []harness.Encoding
	for _, c := range []struct {
		name  string
		level png.CompressionLevel
	}{
		{"default", png.DefaultCompression},
		{"none", png.NoCompression},
		{"speed", png.BestSpeed},
		{"best", png.BestCompression},
	} {
		e := &png.Encoder{CompressionLevel: c.level}
		encs = append(encs, harness.Encoding{Name: c.name, Encode: e.Encode})
	}
	return encs
}()

var colorTypes = map[byte]string{
	0: "gray",
	2: "rgb",
	3: "paletted",
	4: "gray-alpha",
	6: "rgba",
}

// Walk visits every chunk up to and including IEND, verifying lengths
// and CRCs.
func (Codec) Walk(src harness.Source, visit func(harness.Entry) error) error {
	var hdr [8]byte
	readFull(src, hdr[:])
	if string(hdr[:]) != signature {
		return fmt.Errorf("png: bad signature")
	}
	off := int64(len(signature))
	for i := 0; ; i++ {
		readFull(src, hdr[:])
		n := int64(binary.BigEndian.Uint32(hdr[:4]))
		typ := string(hdr[4:])
		if n > src.Remaining()-4 {
			return fmt.Errorf("png: chunk %q length %d exceeds file", typ, n)
		}
		e := harness.Entry{Index: i, Kind: typ, Offset: off, Size: n}

		crc := crc32.NewIEEE()
		crc.Write(hdr[4:])
		switch typ {
		case "IHDR", "tEXt", "zTXt", "iTXt", "tRNS":
			data := make([]byte, n)
			readFull(src, data)
			crc.Write(data)
			describe(&e, data)
		default:
			if _, err := io.CopyN(crc, src, n); err != nil {
				harness.Abort(err)
			}
		}
		readFull(src, hdr[:4])
		if got := binary.BigEndian.Uint32(hdr[:4]); got != crc.Sum32() {
			return fmt.Errorf("png: chunk %q CRC %08x, want %08x", typ, got, crc.Sum32())
		}
		if err := visit(e); err != nil {
			return err
		}
		if typ == "IEND" {
			return nil
		}
		off += 12 + n
	}
}

func describe(e *harness.Entry, data []byte) {
	switch e.Kind {
	case "IHDR":
		if len(data) != 13 {
			harness.Abortf("png: IHDR length %d", len(data))
		}
		pixel, ok := colorTypes[data[9]]
		if !ok {
			pixel = "unknown"
		}
		e.Meta = harness.Metadata{
			Width:    int(binary.BigEndian.Uint32(data[0:])),
			Height:   int(binary.BigEndian.Uint32(data[4:])),
			Pixel:    pixel,
			BitDepth: int(data[8]),
		}
	case "tEXt", "zTXt":
		if i := bytes.IndexByte(data, 0); i >= 0 {
			e.Text = string(data[:i])
		}
	case "iTXt":
		// keyword NUL flag method language NUL translated NUL text
		keyword, rest, ok := bytes.Cut(data, []byte{0})
		if !ok {
			return
		}
		e.Text = string(keyword)
		if len(rest) < 2 {
			return
		}
		if lang, _, ok := bytes.Cut(rest[2:], []byte{0}); ok && len(lang) > 0 {
			e.Text += " [" + string(lang) + "]"
		}
	case "tRNS":
		e.Text = fmt.Sprintf("%d entries", len(data))
	}
}

func readFull(r io.Reader, p []byte) {
	_, err := io.ReadFull(r, p)
	harness.Check(err)
}
