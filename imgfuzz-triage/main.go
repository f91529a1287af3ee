// Copyright 2025 go-fuzz project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Command imgfuzz-triage replays saved inputs through a harness binary and
// keeps one crasher per distinct crash.
//
//	imgfuzz-triage -bin ./png-replay -workdir work corpus/ crashes/
//
// The binary must be built from a targets/*/replay package. It is run in
// serve mode, so one process handles many inputs until it crashes.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/stephens2424/writerset"
)

var (
	flagBin     = flag.String("bin", "", "harness binary built from a targets/*/replay package")
	flagWorkdir = flag.String("workdir", "", "dir with persistent crashers and suppressions")
	flagProcs   = flag.Int("procs", runtime.NumCPU(), "parallelism level")
	flagTimeout = flag.Duration("timeout", 10*time.Second, "time limit for one input")
	flagReport  = flag.String("report", "", "also write the report to this file")
	flagDup     = flag.Bool("dup", false, "collect duplicate crashers")
	flagV       = flag.Int("v", 0, "verbosity level")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: imgfuzz-triage -bin binary -workdir dir [flags] inputdir...\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if *flagBin == "" {
		log.Fatalf("-bin is not set")
	}
	if *flagWorkdir == "" {
		log.Fatalf("-workdir is not set")
	}
	if flag.NArg() == 0 {
		log.Fatalf("no input directories")
	}
	if *flagProcs < 1 {
		*flagProcs = 1
	}

	inputs, err := gatherInputs(flag.Args())
	if err != nil {
		log.Fatalf("failed to gather inputs: %v", err)
	}
	if *flagV >= 1 {
		log.Printf("gathered %v inputs", len(inputs))
	}

	report := writerset.New()
	report.Add(os.Stdout)
	if *flagReport != "" {
		f, err := os.Create(*flagReport)
		if err != nil {
			log.Fatalf("failed to create report file: %v", err)
		}
		defer f.Close()
		errc := report.Add(f)
		go func() {
			if err, ok := <-errc; ok {
				log.Printf("report file: %v", err)
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	t := newTriager(config{
		workdir: *flagWorkdir,
		procs:   *flagProcs,
		dup:     *flagDup,
		verbose: *flagV,
		start: func() (runner, error) {
			return newTestee(*flagBin, *flagTimeout, *flagV)
		},
	}, report)
	sum, err := t.run(ctx, inputs)
	if err != nil {
		log.Fatalf("%v", err)
	}
	fmt.Fprintf(report, "%v\n", sum)
}
