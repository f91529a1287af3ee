// Copyright 2025 go-fuzz project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Command replay runs one saved input through every format harness whose
// signature it matches.
package main

import (
	"github.com/SuperOptimizer/fuzzers/driver"
	"github.com/SuperOptimizer/fuzzers/targets"
)

func main() {
	driver.Main(targets.Fuzz)
}
