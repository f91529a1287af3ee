// Copyright 2025 go-fuzz project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Command replay runs one saved input through the jpeg harness.
package main

import (
	"github.com/SuperOptimizer/fuzzers/driver"
	"github.com/SuperOptimizer/fuzzers/targets/jpeg"
)

func main() {
	driver.Main(jpeg.Fuzz)
}
