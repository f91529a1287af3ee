// Copyright 2025 go-fuzz project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package harness

import (
	"errors"
	"image"
	"io"
	"sync"

	"github.com/SuperOptimizer/fuzzers/memstream"
)

// Driver runs codecs over inputs. Its fields are configuration only and must
// not change while Process may be running.
type Driver struct {
	// Limits bounds each invocation. The zero value means DefaultLimits.
	// A value that fails Validate is reported once and replaced by
	// DefaultLimits.
	Limits Limits
	// Probe observes each invocation. Nil means no instrumentation.
	Probe Probe
	// Logf receives absorbed step errors. Nil means silent.
	Logf Logf

	invalid sync.Once
}

var defaultDriver = &Driver{Limits: DefaultLimits}

// Process runs c over data with DefaultLimits and no instrumentation.
func Process(c Codec, data []byte) int {
	return defaultDriver.Process(c, data)
}

// Process runs the fixed operation sequence of c over data. Codec errors are
// absorbed; runtime panics inside the codec propagate after cleanup.
// It always returns StatusOK.
func (d *Driver) Process(c Codec, data []byte) int {
	if len(data) < c.MinSize() {
		return StatusOK
	}
	if !c.Match(data) {
		return StatusOK
	}

	limits := d.limits()
	s := newSession(c.Name(), d.Probe, d.Logf)
	defer s.close()
	dec := s.OpenDecoder(data)
	st := dec.Stream()

	var md Metadata
	cfgErr := s.Step("config", func() error {
		st.Rewind()
		var err error
		md, err = c.Config(st)
		return err
	})

	if cfgErr == nil {
		var n int64
		err := s.Step("ceiling", func() error {
			var err error
			n, err = limits.Bound(md.Width, md.Height)
			return err
		})
		if err == nil {
			decode(s, c, st, md, n)
		}
	}

	if w, ok := c.(Walker); ok {
		walk(s, w, st, limits.MaxEntries)
	}
	return StatusOK
}

func (d *Driver) limits() Limits {
	if d.Limits == (Limits{}) {
		return DefaultLimits
	}
	if err := d.Limits.Validate(); err != nil {
		d.invalid.Do(func() {
			if d.Logf != nil {
				d.Logf("%v; using DefaultLimits", err)
			}
		})
		return DefaultLimits
	}
	return d.Limits
}

func decode(s *Session, c Codec, st *memstream.Stream, md Metadata, n int64) {
	var img image.Image
	err := s.Step("decode", func() error {
		st.Rewind()
		var err error
		img, err = c.Decode(st)
		return err
	})
	if err != nil || img == nil {
		return
	}

	var out *image.RGBA
	s.Step("convert", func() error {
		out = toRGBA(img, md.Width, md.Height, n)
		return nil
	})

	last := img
	for _, t := range transforms {
		t := t
		s.Step("transform/"+t.Name, func() error {
			last = t.Apply(last, out)
			return nil
		})
	}

	e, ok := c.(Encoder)
	if !ok {
		return
	}
	encodings := e.Encodings()
	if len(encodings) == 0 {
		return
	}
	enc := s.OpenEncoder()
	for _, en := range encodings {
		en := en
		s.Step("encode/"+en.Name, func() error {
			return encodeTo(enc.Sink(), en, img)
		})
	}
	s.Step("encode-transformed/"+encodings[0].Name, func() error {
		return encodeTo(enc.Sink(), encodings[0], last)
	})
}

func encodeTo(sink *memstream.Sink, en Encoding, m image.Image) error {
	if err := en.Encode(sink, m); err != nil {
		return err
	}
	return sink.Flush()
}

func walk(s *Session, w Walker, src Source, max int) {
	s.Step("walk", func() error {
		if _, err := src.Seek(0, io.SeekStart); err != nil {
			return err
		}
		n := 0
		err := w.Walk(src, func(e Entry) error {
			if n >= max {
				return ErrEntryLimit
			}
			n++
			s.probe.Entry(e)
			return nil
		})
		if errors.Is(err, ErrEntryLimit) {
			return nil
		}
		return err
	})
}
