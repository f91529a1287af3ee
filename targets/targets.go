// Copyright 2025 go-fuzz project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package targets lists every format the module fuzzes.
package targets

import (
	"sort"

	"github.com/SuperOptimizer/fuzzers/harness"
	"github.com/SuperOptimizer/fuzzers/targets/bmp"
	"github.com/SuperOptimizer/fuzzers/targets/gif"
	"github.com/SuperOptimizer/fuzzers/targets/jpeg"
	"github.com/SuperOptimizer/fuzzers/targets/png"
	"github.com/SuperOptimizer/fuzzers/targets/tiff"
	"github.com/SuperOptimizer/fuzzers/targets/webp"
)

// Target is one fuzzable format.
type Target struct {
	Codec harness.Codec
	Fuzz  func(data []byte) int
}

var all = map[string]Target{
	"bmp":  {bmp.Codec{}, bmp.Fuzz},
	"gif":  {gif.Codec{}, gif.Fuzz},
	"jpeg": {jpeg.Codec{}, jpeg.Fuzz},
	"png":  {png.Codec{}, png.Fuzz},
	"tiff": {tiff.Codec{}, tiff.Fuzz},
	"webp": {webp.Codec{}, webp.Fuzz},
}

// Names returns the registered format names in sorted order.
func Names() []string {
	names := make([]string, 0, len(all))
	for name := range all {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the target registered under name.
func Lookup(name string) (Target, bool) {
	t, ok := all[name]
	return t, ok
}

// Sniff returns the names of the formats whose signature data carries.
func Sniff(data []byte) []string {
	var names []string
	for _, name := range Names() {
		if all[name].Codec.Match(data) {
			names = append(names, name)
		}
	}
	return names
}

// Fuzz runs the format whose signature data carries. Signatures do not
// overlap, so at most one codec runs.
func Fuzz(data []byte) int {
	for _, name := range Sniff(data) {
		t, _ := Lookup(name)
		t.Fuzz(data)
	}
	return harness.StatusOK
}
