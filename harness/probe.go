// Copyright 2025 go-fuzz project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package harness

import (
	"sync"
)

// Kind distinguishes decoder handles from encoder handles.
type Kind int

const (
	DecoderHandle Kind = iota
	EncoderHandle
)

func (k Kind) String() string {
	switch k {
	case DecoderHandle:
		return "decoder"
	case EncoderHandle:
		return "encoder"
	default:
		return "unknown"
	}
}

// Probe observes what the driver does with one input.
// Implementations must be safe for concurrent use if the Driver is.
type Probe interface {
	Acquire(k Kind, codec string)
	Release(k Kind, codec string)
	// Call is invoked once per session step with the step's result.
	Call(op string, err error)
	// Reads reports the read callbacks a decoder stream served.
	Reads(n int)
	// Writes reports the bytes an encoder sink discarded.
	Writes(n int64)
	Entry(e Entry)
}

type nopProbe struct{}

func (nopProbe) Acquire(Kind, string) {}
func (nopProbe) Release(Kind, string) {}
func (nopProbe) Call(string, error)   {}
func (nopProbe) Reads(int)            {}
func (nopProbe) Writes(int64)         {}
func (nopProbe) Entry(Entry)          {}

// Call records one session step.
type Call struct {
	Op  string
	Err string // empty on success
}

// Counters is a Probe that records everything it sees.
type Counters struct {
	mu       sync.Mutex
	acquired [2]int
	released [2]int
	reads    int
	written  int64
	calls    []Call
	entries  []Entry
}

func (c *Counters) Acquire(k Kind, codec string) {
	c.mu.Lock()
	c.acquired[k]++
	c.mu.Unlock()
}

func (c *Counters) Release(k Kind, codec string) {
	c.mu.Lock()
	c.released[k]++
	c.mu.Unlock()
}

func (c *Counters) Call(op string, err error) {
	call := Call{Op: op}
	if err != nil {
		call.Err = err.Error()
	}
	c.mu.Lock()
	c.calls = append(c.calls, call)
	c.mu.Unlock()
}

func (c *Counters) Reads(n int) {
	c.mu.Lock()
	c.reads += n
	c.mu.Unlock()
}

func (c *Counters) Writes(n int64) {
	c.mu.Lock()
	c.written += n
	c.mu.Unlock()
}

func (c *Counters) Entry(e Entry) {
	c.mu.Lock()
	c.entries = append(c.entries, e)
	c.mu.Unlock()
}

// Acquired returns the number of handles of kind k acquired so far.
func (c *Counters) Acquired(k Kind) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.acquired[k]
}

// Released returns the number of handles of kind k released so far.
func (c *Counters) Released(k Kind) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.released[k]
}

// Balanced reports whether every acquired handle has been released.
func (c *Counters) Balanced() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.acquired == c.released
}

// ReadCalls returns the total number of stream read callbacks.
func (c *Counters) ReadCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads
}

// Written returns the total bytes discarded by encoder sinks.
func (c *Counters) Written() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.written
}

// Calls returns a copy of the recorded steps in order.
func (c *Counters) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Call(nil), c.calls...)
}

// Called reports whether a step named op was recorded.
func (c *Counters) Called(op string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, call := range c.calls {
		if call.Op == op {
			return true
		}
	}
	return false
}

// Entries returns a copy of the entries reported by walkers.
func (c *Counters) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Entry(nil), c.entries...)
}
