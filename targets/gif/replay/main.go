// Copyright 2025 go-fuzz project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Command replay runs one saved input through the gif harness.
package main

import (
	"github.com/SuperOptimizer/fuzzers/driver"
	"github.com/SuperOptimizer/fuzzers/targets/gif"
)

func main() {
	driver.Main(gif.Fuzz)
}
