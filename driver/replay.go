// Copyright 2025 go-fuzz project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package driver

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// corpusHeader starts files in a testing.F corpus directory.
const corpusHeader = "go test fuzz v1\n"

var errCorpusFile = errors.New("malformed corpus file")

// Replay reads the file at path, passes its contents to f once and returns
// f's status. Files in the testing.F corpus format are decoded first; a file
// that only starts like one is passed through unchanged, as Serve would.
// Read failures are reported on stderr and yield status 1.
func Replay(path string, f func([]byte) int, stderr io.Writer) int {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stderr, "failed to read input: %v\n", err)
		return 1
	}
	if bytes.HasPrefix(data, []byte(corpusHeader)) {
		if v, err := decodeCorpusFile(data); err == nil {
			data = v
		}
	}
	return f(data)
}

// decodeCorpusFile extracts the single []byte or string value of a
// testing.F corpus file.
func decodeCorpusFile(data []byte) ([]byte, error) {
	var vals []string
	for _, line := range strings.Split(string(data[len(corpusHeader):]), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		vals = append(vals, line)
	}
	if len(vals) != 1 {
		return nil, fmt.Errorf("%w: %d values, want 1", errCorpusFile, len(vals))
	}
	val := vals[0]
	for _, typ := range []string{"[]byte(", "string("} {
		if !strings.HasPrefix(val, typ) || !strings.HasSuffix(val, ")") {
			continue
		}
		s, err := strconv.Unquote(val[len(typ) : len(val)-1])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errCorpusFile, err)
		}
		return []byte(s), nil
	}
	return nil, fmt.Errorf("%w: unsupported value %.20q", errCorpusFile, val)
}
