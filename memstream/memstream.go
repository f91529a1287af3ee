// Copyright 2025 go-fuzz project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package memstream lets file-oriented decoders run over an in-memory buffer.
//
// A Stream borrows the caller's buffer for the duration of one harness
// invocation. It never copies or retains the buffer beyond that, and it is
// never shared between invocations.
package memstream

import (
	"errors"
	"fmt"
	"io"
)

var (
	// ErrNegativePosition is returned by Seek when the resulting position
	// would be before the start of the buffer.
	ErrNegativePosition = errors.New("memstream: negative position")
	// ErrWhence is returned by Seek for an unknown whence value.
	ErrWhence = errors.New("memstream: invalid whence")
)

// Stream is a read-only, seekable cursor over a borrowed byte slice.
//
// Seeking past the end is allowed; reads from such a position return
// io.EOF. The zero value is an empty stream.
type Stream struct {
	data  []byte
	pos   int64
	reads int
}

// New returns a Stream over data positioned at offset 0.
func New(data []byte) *Stream {
	return &Stream{data: data}
}

// Read copies min(len(p), Size()-Pos()) bytes into p and advances the cursor.
func (s *Stream) Read(p []byte) (int, error) {
	s.reads++
	if len(p) == 0 {
		return 0, nil
	}
	if s.pos >= int64(len(s.data)) {
		return 0, io.EOF
	}
	n := copy(p, s.data[s.pos:])
	s.pos += int64(n)
	return n, nil
}

// ReadByte implements io.ByteReader.
func (s *Stream) ReadByte() (byte, error) {
	s.reads++
	if s.pos >= int64(len(s.data)) {
		return 0, io.EOF
	}
	b := s.data[s.pos]
	s.pos++
	return b, nil
}

// ReadAt implements io.ReaderAt. It does not move the cursor.
func (s *Stream) ReadAt(p []byte, off int64) (int, error) {
	s.reads++
	if off < 0 {
		return 0, ErrNegativePosition
	}
	if off >= int64(len(s.data)) {
		return 0, io.EOF
	}
	n := copy(p, s.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Seek implements io.Seeker. Positions past the end are accepted.
func (s *Stream) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = s.pos + offset
	case io.SeekEnd:
		abs = int64(len(s.data)) + offset
	default:
		return s.pos, fmt.Errorf("%w %d", ErrWhence, whence)
	}
	if abs < 0 {
		return s.pos, ErrNegativePosition
	}
	s.pos = abs
	return abs, nil
}

// Rewind moves the cursor back to the start of the buffer.
func (s *Stream) Rewind() {
	s.pos = 0
}

// Size returns the length of the underlying buffer.
func (s *Stream) Size() int64 {
	return int64(len(s.data))
}

// Pos returns the current cursor position. It may exceed Size after a Seek.
func (s *Stream) Pos() int64 {
	return s.pos
}

// Remaining returns the number of bytes a Read could still return.
func (s *Stream) Remaining() int64 {
	if s.pos >= int64(len(s.data)) {
		return 0
	}
	return int64(len(s.data)) - s.pos
}

// Map returns the backing buffer. The returned slice has its capacity capped
// at its length and must not be modified.
func (s *Stream) Map() []byte {
	return s.data[:len(s.data):len(s.data)]
}

// Reads returns how many read callbacks (Read, ReadByte, ReadAt) the stream
// has served.
func (s *Stream) Reads() int {
	return s.reads
}

// Release drops the reference to the borrowed buffer. Subsequent reads
// behave as on an empty stream.
func (s *Stream) Release() {
	s.data = nil
	s.pos = 0
}
