// Copyright 2025 go-fuzz project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package harness

import (
	"fmt"

	"github.com/SuperOptimizer/fuzzers/memstream"
)

// Handle is an open decode or encode session bound to one stream or sink
// for its whole lifetime.
type Handle struct {
	kind     Kind
	codec    string
	stream   *memstream.Stream
	sink     *memstream.Sink
	released bool
}

// Stream returns the decoder's input stream. It is nil for encoder handles.
func (h *Handle) Stream() *memstream.Stream { return h.stream }

// Sink returns the encoder's output sink. It is nil for decoder handles.
func (h *Handle) Sink() *memstream.Sink { return h.sink }

// Session is the recovery boundary for one invocation. It owns every handle
// opened during the invocation and releases them, newest first, in close.
type Session struct {
	codec    string
	probe    Probe
	logf     Logf
	releases []func()
}

func newSession(codec string, probe Probe, logf Logf) *Session {
	if probe == nil {
		probe = nopProbe{}
	}
	return &Session{
		codec: codec,
		probe: probe,
		logf:  logf,
	}
}

// OpenDecoder acquires a decoder handle reading from data.
func (s *Session) OpenDecoder(data []byte) *Handle {
	h := &Handle{
		kind:   DecoderHandle,
		codec:  s.codec,
		stream: memstream.New(data),
	}
	s.acquire(h)
	return h
}

// OpenEncoder acquires an encoder handle writing to a discarding sink.
func (s *Session) OpenEncoder() *Handle {
	h := &Handle{
		kind:  EncoderHandle,
		codec: s.codec,
		sink:  new(memstream.Sink),
	}
	s.acquire(h)
	return h
}

func (s *Session) acquire(h *Handle) {
	s.probe.Acquire(h.kind, h.codec)
	s.releases = append(s.releases, func() { s.release(h) })
}

func (s *Session) release(h *Handle) {
	if h.released {
		return
	}
	h.released = true
	if h.stream != nil {
		s.probe.Reads(h.stream.Reads())
		h.stream.Release()
	}
	if h.sink != nil {
		s.probe.Writes(h.sink.Written())
		h.sink = nil
	}
	s.probe.Release(h.kind, h.codec)
}

// close releases every handle in reverse acquisition order.
// It runs on every exit path, including while a panic unwinds.
func (s *Session) close() {
	for i := len(s.releases) - 1; i >= 0; i-- {
		s.releases[i]()
	}
	s.releases = nil
}

// abort carries an error from Abort/Check to the enclosing Step.
type abort struct {
	err error
}

// Abort unwinds to the enclosing Step, which then returns err.
func Abort(err error) {
	panic(abort{err})
}

// Abortf is Abort with a formatted error.
func Abortf(format string, args ...any) {
	panic(abort{fmt.Errorf(format, args...)})
}

// Check calls Abort if err is not nil.
func Check(err error) {
	if err != nil {
		panic(abort{err})
	}
}

// Step runs fn as the operation op. Errors returned by fn, and errors raised
// with Abort or Check anywhere below fn, are recorded and returned. Any other
// panic is a defect in the code under test and is re-raised unchanged.
func (s *Session) Step(op string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			a, ok := r.(abort)
			if !ok {
				panic(r)
			}
			err = a.err
		}
		s.probe.Call(op, err)
		if err != nil && s.logf != nil {
			s.logf("%v: %v: %v", s.codec, op, err)
		}
	}()
	return fn()
}
