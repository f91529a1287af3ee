// Copyright 2025 go-fuzz project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package bmp fuzzes golang.org/x/image/bmp.
package bmp

import (
	"bytes"
	"image"
	"io"

	"github.com/SuperOptimizer/fuzzers/harness"
	"golang.org/x/image/bmp"
)

// Codec is the BMP instance of harness.Codec.
type Codec struct{}

func Fuzz(data []byte) int {
	return harness.Process(Codec{}, data)
}

func (Codec) Name() string { return "bmp" }

// MinSize covers the file header and the smallest info header.
func (Codec) MinSize() int { return 26 }

func (Codec) Match(data []byte) bool {
	return bytes.HasPrefix(data, []byte("BM"))
}

func (Codec) Config(r io.Reader) (harness.Metadata, error) {
	cfg, err := bmp.DecodeConfig(r)
	if err != nil {
		return harness.Metadata{}, err
	}
	return harness.FromConfig(cfg), nil
}

func (Codec) Decode(r io.Reader) (image.Image, error) {
	return bmp.Decode(r)
}

func (Codec) Encodings() []harness.Encoding {
	return []harness.Encoding{{Name: "bmp", Encode: bmp.Encode}}
}
