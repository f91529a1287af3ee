// Copyright 2025 go-fuzz project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package harness drives image codecs with untrusted input.
//
// A Codec describes one image format. The Driver runs a fixed, bounded
// sequence of codec operations over an input buffer: header parse, a full
// decode when the image is small enough, a transform pass, re-encoding into
// a discarding sink and iteration over embedded directories or frames.
// Every operation runs inside a Session step; errors reported by the codec
// are absorbed, while genuine defects (runtime panics) propagate to the
// fuzzing engine after all handles have been released.
//
// Nothing is cached between invocations: each call to Process builds its
// own Session, Stream and handles and releases them before returning.
package harness

import (
	"image"
	"io"
)

// StatusOK is the only status Process returns. Nonzero values are reserved.
const StatusOK = 0

// Codec is one image format under test.
type Codec interface {
	// Name is a short format name, e.g. "png".
	Name() string
	// MinSize is the shortest input worth handing to the codec.
	MinSize() int
	// Match reports whether data starts with the format's signature.
	// Formats without a signature return true.
	Match(data []byte) bool
	// Config parses the image header.
	Config(r io.Reader) (Metadata, error)
	// Decode decodes the full image.
	Decode(r io.Reader) (image.Image, error)
}

// Encoding is one re-encode variant of a codec.
type Encoding struct {
	Name   string
	Encode func(w io.Writer, m image.Image) error
}

// Encoder is implemented by codecs that can write images back out.
type Encoder interface {
	Encodings() []Encoding
}

// Source is the read side a Walker iterates over.
type Source interface {
	io.Reader
	io.ReaderAt
	io.Seeker
	Size() int64
	// Pos returns the cursor position. It may exceed Size after a Seek.
	Pos() int64
	// Remaining returns the number of bytes a Read could still return.
	Remaining() int64
	// Map returns the whole input without copying. It must not be modified.
	Map() []byte
}

// Entry is one embedded directory, chunk, frame or segment found by a Walker.
type Entry struct {
	Index  int
	Kind   string
	Offset int64
	Size   int64
	// Meta is set for entries that describe an image (IFDs, frames, IHDR, SOFn).
	Meta Metadata
	// Text is optional detail, e.g. a tEXt keyword or a resolution.
	Text string
}

// Walker is implemented by codecs whose files hold more than one directory,
// chunk or frame. Walk calls visit for every entry in file order until there
// are no more entries or visit returns an error, which Walk must return.
type Walker interface {
	Walk(src Source, visit func(Entry) error) error
}

// Logf is a printf-style logging function.
type Logf func(format string, args ...any)
