// Copyright 2025 go-fuzz project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package main

import (
	"encoding/binary"
	"fmt"
	"log"
	"os"
	"os/exec"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/SuperOptimizer/fuzzers/driver"
)

// maxExecs is how many inputs one testee process runs before it is
// replaced, so that memory accumulated by the codecs does not build up.
const maxExecs = 10000

// runner executes inputs one at a time.
type runner interface {
	// test runs data. retry means the input was not run and must be
	// given to a fresh runner.
	test(data []byte) (res int, crashed, hanged, retry bool)
	// shutdown stops the runner and returns everything it printed.
	shutdown() []byte
}

// Testee is a wrapper around one harness subprocess in serve mode.
// It manages communication with the testee, timeouts and output collection.
type Testee struct {
	cmd        *exec.Cmd
	inPipe     *os.File // replies from the testee
	outPipe    *os.File // inputs to the testee
	stdoutPipe *os.File
	timeout    time.Duration
	verbose    int
	startTime  atomic.Int64
	execs      int
	outputC    chan []byte
	downC      chan bool
	down       bool
}

func newTestee(bin string, timeout time.Duration, verbose int) (*Testee, error) {
	attempts := 0
retry:
	rIn, wIn, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("failed to pipe: %w", err)
	}
	rOut, wOut, err := os.Pipe()
	if err != nil {
		rIn.Close()
		wIn.Close()
		return nil, fmt.Errorf("failed to pipe: %w", err)
	}
	rStdout, wStdout, err := os.Pipe()
	if err != nil {
		rIn.Close()
		wIn.Close()
		rOut.Close()
		wOut.Close()
		return nil, fmt.Errorf("failed to pipe: %w", err)
	}
	cmd := exec.Command(bin)
	cmd.Env = append(os.Environ(), driver.ServeEnv+"=1")
	cmd.Stdout = wStdout
	cmd.Stderr = wStdout
	// The testee reads inputs from fd 3 and writes replies to fd 4.
	cmd.ExtraFiles = append(cmd.ExtraFiles, rOut)
	cmd.ExtraFiles = append(cmd.ExtraFiles, wIn)
	if err = cmd.Start(); err != nil {
		rIn.Close()
		wIn.Close()
		rOut.Close()
		wOut.Close()
		rStdout.Close()
		wStdout.Close()
		// This can be a transient failure like "cannot allocate memory" or "text file is busy".
		if attempts++; attempts < 3 {
			log.Printf("failed to start harness binary: %v", err)
			time.Sleep(time.Second)
			goto retry
		}
		return nil, fmt.Errorf("failed to start harness binary: %w", err)
	}
	rOut.Close()
	wIn.Close()
	wStdout.Close()
	t := &Testee{
		cmd:        cmd,
		inPipe:     rIn,
		outPipe:    wOut,
		stdoutPipe: rStdout,
		timeout:    timeout,
		verbose:    verbose,
		outputC:    make(chan []byte),
		downC:      make(chan bool),
	}
	// Stdout reader goroutine.
	go func() {
		// The harness prints nothing unless it crashes, but if it does,
		// the pipe must be drained to avoid a deadlock. This goroutine also
		// collects crash output.
		ticker := time.NewTicker(time.Second)
		const N = 1 << 20
		data := make([]byte, N)
		filled := 0
		for {
			select {
			case <-ticker.C:
			case <-t.downC:
			}
			n, err := t.stdoutPipe.Read(data[filled:])
			if err != nil {
				break
			}
			if t.verbose >= 3 {
				log.Printf("testee: %v\n", string(data[filled:filled+n]))
			}
			filled += n
			if filled > N/4*3 {
				copy(data, data[N/2:filled])
				filled -= N / 2
			}
		}
		ticker.Stop()
		trimmed := make([]byte, filled)
		copy(trimmed, data)
		t.outputC <- trimmed
	}()
	// Hang watcher goroutine.
	go func() {
		ticker := time.NewTicker(t.timeout / 2)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				start := t.startTime.Load()
				if start != 0 && time.Now().UnixNano()-start > int64(t.timeout) {
					t.startTime.Store(-1)
					t.cmd.Process.Signal(syscall.SIGABRT)
					time.Sleep(time.Second)
					t.cmd.Process.Signal(syscall.SIGKILL)
					return
				}
			case <-t.downC:
				return
			}
		}
	}()
	return t, nil
}

// test passes data for testing.
func (t *Testee) test(data []byte) (res int, crashed, hanged, retry bool) {
	if t.down {
		log.Fatalf("cannot test: testee is already shutdown")
	}

	t.execs++
	if t.execs > maxExecs {
		t.cmd.Process.Signal(syscall.SIGKILL)
		retry = true
		return
	}

	t.startTime.Store(time.Now().UnixNano())
	frame := binary.LittleEndian.AppendUint64(make([]byte, 0, 8+len(data)), uint64(len(data)))
	frame = append(frame, data...)
	if _, err := t.outPipe.Write(frame); err != nil {
		if t.verbose >= 1 {
			log.Printf("write to testee failed: %v", err)
		}
		// The previous input may have killed it.
		t.startTime.Store(0)
		retry = true
		return
	}
	// Once we do the write, the test is running.
	// Once we read the reply below, the test is done.
	var r driver.Reply
	err := binary.Read(t.inPipe, binary.LittleEndian, &r)
	hanged = t.startTime.Load() == -1
	t.startTime.Store(0)
	if err != nil || hanged {
		crashed = true
		return
	}
	res = int(r.Res)
	return
}

func (t *Testee) shutdown() (output []byte) {
	if t.down {
		log.Fatalf("cannot shutdown: testee is already shutdown")
	}
	t.down = true
	t.cmd.Process.Kill() // it is probably already dead, but kill it again to be sure
	close(t.downC)       // wakeup stdout reader
	out := <-t.outputC
	t.cmd.Wait()
	t.inPipe.Close()
	t.outPipe.Close()
	t.stdoutPipe.Close()
	return out
}
