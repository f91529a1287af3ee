// Copyright 2025 go-fuzz project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package driver

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"
)

// MaxInputSize bounds a single serve-mode input.
const MaxInputSize = 16 << 20

// Reply is what Serve writes back for every input.
type Reply struct {
	Res uint64
	Ns  uint64
}

// Serve reads inputs from in and runs f on each. An input is a
// little-endian uint64 length followed by that many bytes; every call is
// answered with a Reply. Serve returns nil when in is closed between
// inputs.
func Serve(f func([]byte) int, in io.Reader, out io.Writer) error {
	r := bufio.NewReader(in)
	var buf []byte
	for {
		var n uint64
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read length: %w", err)
		}
		if n > MaxInputSize {
			return fmt.Errorf("invalid input length %d", n)
		}
		if uint64(cap(buf)) < n {
			buf = make([]byte, n)
		}
		data := buf[:n]
		if _, err := io.ReadFull(r, data); err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		t0 := time.Now()
		res := f(data)
		ns := time.Since(t0)
		if err := binary.Write(out, binary.LittleEndian, Reply{uint64(res), uint64(ns)}); err != nil {
			return fmt.Errorf("write reply: %w", err)
		}
	}
}
