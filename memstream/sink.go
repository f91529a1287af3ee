// Copyright 2025 go-fuzz project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package memstream

// Sink is a write target that accepts and discards all bytes.
type Sink struct {
	n int64
}

// Write pretends to write everything.
func (s *Sink) Write(p []byte) (int, error) {
	s.n += int64(len(p))
	return len(p), nil
}

// Flush is a no-op. The driver calls it after every encoding.
func (s *Sink) Flush() error { return nil }

// Close is a no-op.
func (s *Sink) Close() error { return nil }

// Written returns the total number of bytes discarded.
func (s *Sink) Written() int64 { return s.n }
