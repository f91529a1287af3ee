// Copyright 2025 go-fuzz project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"
)

type config struct {
	workdir string
	procs   int
	dup     bool
	verbose int
	start   func() (runner, error)
}

type input struct {
	path string
	data []byte
}

// summary is the outcome of one triage run.
type summary struct {
	inputs     int
	bytes      uint64
	crashes    int
	hangs      int
	unique     int
	duplicates int
	restarts   int
	elapsed    time.Duration
}

func (s summary) String() string {
	return fmt.Sprintf("triaged %v inputs (%v) in %v: %v crashes, %v hangs, %v new crashers, %v duplicates, %v restarts",
		humanize.Comma(int64(s.inputs)), humanize.Bytes(s.bytes), s.elapsed.Round(time.Millisecond),
		s.crashes, s.hangs, s.unique, s.duplicates, s.restarts)
}

type triager struct {
	cfg    config
	report io.Writer

	mu           sync.Mutex
	sum          summary
	crashers     *PersistentSet
	suppressions *PersistentSet
}

func newTriager(cfg config, report io.Writer) *triager {
	return &triager{cfg: cfg, report: report}
}

// run feeds inputs to cfg.procs runners and records every crash.
func (t *triager) run(ctx context.Context, inputs []input) (summary, error) {
	var err error
	if t.crashers, err = newPersistentSet(filepath.Join(t.cfg.workdir, "crashers")); err != nil {
		return summary{}, err
	}
	if t.suppressions, err = newPersistentSet(filepath.Join(t.cfg.workdir, "suppressions")); err != nil {
		return summary{}, err
	}
	start := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	work := make(chan input)
	g.Go(func() error {
		defer close(work)
		for _, in := range inputs {
			select {
			case work <- in:
			case <-ctx.Done():
				return nil
			}
		}
		return nil
	})
	for i := 0; i < max(t.cfg.procs, 1); i++ {
		g.Go(func() error {
			return t.worker(ctx, work)
		})
	}
	err = g.Wait()

	t.mu.Lock()
	defer t.mu.Unlock()
	t.sum.elapsed = time.Since(start)
	return t.sum, err
}

func (t *triager) worker(ctx context.Context, work <-chan input) error {
	var r runner
	defer func() {
		if r != nil {
			r.shutdown()
		}
	}()
	for in := range work {
		if ctx.Err() != nil {
			return nil
		}
		for {
			if r == nil {
				var err error
				if r, err = t.cfg.start(); err != nil {
					return err
				}
			}
			_, crashed, hanged, retry := r.test(in.data)
			if retry {
				r.shutdown()
				r = nil
				t.count(func(s *summary) { s.restarts++ })
				continue
			}
			if crashed {
				out := r.shutdown()
				r = nil
				t.crash(in, out, hanged)
			}
			break
		}
		t.count(func(s *summary) {
			s.inputs++
			s.bytes += uint64(len(in.data))
		})
	}
	return nil
}

func (t *triager) count(f func(*summary)) {
	t.mu.Lock()
	f(&t.sum)
	t.mu.Unlock()
}

// crash records a crashing input unless an equivalent crash is already known.
func (t *triager) crash(in input, output []byte, hanged bool) {
	supp := extractSuppression(output)
	if hanged {
		supp = []byte(hangSuppression)
	}
	if len(supp) == 0 {
		// Crashed without a recognizable message, e.g. killed by the OS.
		supp = append([]byte("no output\n"), output...)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if hanged {
		t.sum.hangs++
	} else {
		t.sum.crashes++
	}
	if !t.cfg.dup && !t.suppressions.add(supp) {
		t.sum.duplicates++
		if t.cfg.verbose >= 1 {
			log.Printf("duplicate crash in %v", in.path)
		}
		return
	}
	if !t.crashers.add(in.data) {
		t.sum.duplicates++
		return
	}
	t.sum.unique++
	t.crashers.addDescription(in.data, quote(in.data), "quoted")
	t.crashers.addDescription(in.data, output, "output")
	fmt.Fprintf(t.report, "crasher %v %v %v: %v\n", hash(in.data), humanize.Bytes(uint64(len(in.data))), in.path, firstLine(supp))
}

// gatherInputs reads every input file under dirs. Crasher description
// files are skipped.
func gatherInputs(dirs []string) ([]input, error) {
	var inputs []input
	for _, dir := range dirs {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || strings.HasSuffix(path, ".output") || strings.HasSuffix(path, ".quoted") {
				return nil
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			inputs = append(inputs, input{path, data})
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return inputs, nil
}
