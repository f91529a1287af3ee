// Copyright 2025 go-fuzz project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package main

import (
	"bufio"
	"bytes"
	"fmt"
	"regexp"
	"strings"
)

// hangSuppression identifies crashes caused by the hang watcher. Their
// stacks are not stable enough to tell hangs apart.
const hangSuppression = "hang\n"

const modulePath = "github.com/SuperOptimizer/fuzzers"

// Frames that every replay binary shares whatever the bug: the runtime, the
// harness recovery boundary that re-raises the panic and the entry point.
var sharedFrames = []string{
	"runtime.",
	"testing.",
	"main.",
	modulePath + "/harness.",
	modulePath + "/driver.",
}

// maxFrames bounds the stack part of a suppression.
const maxFrames = 8

// inputNumbers matches the indices, lengths and addresses that runtime
// errors quote from the crashing input.
var inputNumbers = regexp.MustCompile(`0x[0-9a-f]+|\b\d+\b`)

// extractSuppression returns the crash message and the codec and target
// frames of the crashing goroutine. Two crashes with the same suppression
// are treated as the same bug.
func extractSuppression(out []byte) []byte {
	var supp []byte
	seenPanic := false
	collect := false
	frames := 0
	s := bufio.NewScanner(bytes.NewReader(out))
	s.Buffer(nil, 1<<20)
	for s.Scan() {
		line := s.Text()
		switch {
		case !seenPanic:
			msg, ok := crashMessage(line)
			if !ok {
				continue
			}
			seenPanic = true
			supp = append(supp, msg...)
			supp = append(supp, '\n')
			if line == "SIGABRT: abort" || line == "signal: killed" {
				return supp
			}
		case !collect:
			// The runtime stack of a fatal error comes first and is skipped.
			collect = strings.HasPrefix(line, "goroutine ")
		case line == "":
			return supp
		case frames < maxFrames:
			if name, ok := frameName(line); ok {
				supp = append(supp, name...)
				supp = append(supp, '\n')
				frames++
			}
		}
	}
	return supp
}

// crashMessage reports whether line starts a crash report and returns it
// with input-dependent numbers masked. The re-raise by the harness adds a
// recovered marker that is dropped.
func crashMessage(line string) (string, bool) {
	switch {
	case strings.HasPrefix(line, "panic: "):
		line = strings.TrimSuffix(line, " [recovered]")
		line = strings.TrimSuffix(line, " [recovered, repanicked]")
		if strings.HasPrefix(line, "panic: runtime error: ") {
			line = inputNumbers.ReplaceAllString(line, "N")
		}
		return line, true
	case strings.HasPrefix(line, "fatal error: "),
		strings.HasPrefix(line, "SIG") && strings.Contains(line, ": "),
		line == "signal: killed":
		return line, true
	}
	return "", false
}

// frameName returns the function of a stack frame line unless it belongs to
// a shared frame.
func frameName(line string) (string, bool) {
	if line == "" || line[0] == '\t' || strings.HasPrefix(line, "created by ") {
		return "", false
	}
	idx := strings.LastIndex(line, "(")
	if idx <= 0 {
		return "", false
	}
	name := line[:idx]
	if name == "panic" {
		return "", false
	}
	for _, prefix := range sharedFrames {
		if strings.HasPrefix(name, prefix) {
			return "", false
		}
	}
	return name, true
}

// quote renders data as a Go string expression, 20 bytes per line, so that
// a crasher can be pasted into a test.
func quote(data []byte) []byte {
	var buf bytes.Buffer
	for i := 0; i < len(data); i += 20 {
		e := min(i+20, len(data))
		fmt.Fprintf(&buf, "\t%q", data[i:e])
		if e != len(data) {
			fmt.Fprintf(&buf, " +")
		}
		fmt.Fprintf(&buf, "\n")
	}
	return buf.Bytes()
}

// firstLine returns the first line of a suppression for the report.
func firstLine(supp []byte) string {
	line, _, _ := bytes.Cut(supp, []byte("\n"))
	return string(line)
}
