// Copyright 2025 go-fuzz project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package driver turns a Fuzz function into a standalone program.
//
// With one argument the program replays that file through the function
// once and exits with its status. With ServeEnv set it serves inputs from
// a supervising process over file descriptors 3 and 4, one call per input,
// for as long as the supervisor keeps the pipes open.
package driver

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// ServeEnv selects serve mode when set to a non-empty value.
const ServeEnv = "IMGFUZZ_SERVE"

// Descriptors used in serve mode. They are the first two entries of
// exec.Cmd.ExtraFiles in the supervisor.
const (
	inFD  = 3
	outFD = 4
)

// Main runs f according to the process arguments and environment and
// never returns.
func Main(f func([]byte) int) {
	if os.Getenv(ServeEnv) != "" {
		in := os.NewFile(inFD, "serve-in")
		out := os.NewFile(outFD, "serve-out")
		if err := Serve(f, in, out); err != nil {
			log.Fatalf("serve: %v", err)
		}
		os.Exit(0)
	}
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %v <input file>\n", filepath.Base(os.Args[0]))
		os.Exit(1)
	}
	os.Exit(Replay(os.Args[1], f, os.Stderr))
}
