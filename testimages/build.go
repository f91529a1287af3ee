// Copyright 2025 go-fuzz project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package testimages

import (
	"encoding/binary"
	"hash/crc32"
)

// PNGSignature starts every PNG file.
const PNGSignature = "\x89PNG\r\n\x1a\n"

// Chunk returns a PNG chunk with a correct CRC.
func Chunk(typ string, data []byte) []byte {
	b := binary.BigEndian.AppendUint32(nil, uint32(len(data)))
	b = append(b, typ...)
	b = append(b, data...)
	return binary.BigEndian.AppendUint32(b, crc32.ChecksumIEEE(b[4:]))
}

// PNGHeader returns the signature followed by an IHDR chunk. Nothing else
// is present, which is enough for DecodeConfig of non-paletted images.
func PNGHeader(width, height uint32, depth, colorType byte) []byte {
	ihdr := binary.BigEndian.AppendUint32(nil, width)
	ihdr = binary.BigEndian.AppendUint32(ihdr, height)
	ihdr = append(ihdr, depth, colorType, 0, 0, 0)
	return append([]byte(PNGSignature), Chunk("IHDR", ihdr)...)
}

// TIFF field types.
const (
	tiffShort    = 3
	tiffLong     = 4
	tiffRational = 5
)

// MultiTIFF returns a little-endian TIFF holding n uncompressed 8-bit gray
// directories of w x h pixels, each with X/Y resolution. If loop is set the
// last directory links back to the first.
func MultiTIFF(n, w, h int, loop bool) []byte {
	const entries = 11
	const ifdSize = 2 + entries*12 + 4
	b := []byte("II*\x00")
	b = binary.LittleEndian.AppendUint32(b, 8)
	for i := 0; i < n; i++ {
		off := uint32(len(b))
		xres := off + ifdSize
		yres := xres + 8
		strip := yres + 8
		next := strip + uint32(w*h)
		if i == n-1 {
			next = 0
			if loop {
				next = 8
			}
		}
		entry := func(tag, typ uint16, val uint32) {
			b = binary.LittleEndian.AppendUint16(b, tag)
			b = binary.LittleEndian.AppendUint16(b, typ)
			b = binary.LittleEndian.AppendUint32(b, 1)
			b = binary.LittleEndian.AppendUint32(b, val)
		}
		b = binary.LittleEndian.AppendUint16(b, entries)
		entry(256, tiffShort, uint32(w))
		entry(257, tiffShort, uint32(h))
		entry(258, tiffShort, 8)
		entry(259, tiffShort, 1)
		entry(262, tiffShort, 1)
		entry(273, tiffLong, strip)
		entry(277, tiffShort, 1)
		entry(278, tiffShort, uint32(h))
		entry(279, tiffLong, uint32(w*h))
		entry(282, tiffRational, xres)
		entry(283, tiffRational, yres)
		b = binary.LittleEndian.AppendUint32(b, next)
		for _, v := range []uint32{72 + uint32(i), 1, 96, 1} {
			b = binary.LittleEndian.AppendUint32(b, v)
		}
		for p := 0; p < w*h; p++ {
			b = append(b, byte(p*7+i))
		}
	}
	return b
}
