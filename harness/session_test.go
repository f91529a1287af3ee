// Copyright 2025 go-fuzz project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package harness

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestStep(t *testing.T) {
	errBoom := errors.New("boom")
	c := new(Counters)
	s := newSession("test", c, nil)
	if err := s.Step("ok", func() error { return nil }); err != nil {
		t.Fatalf("ok step = %v", err)
	}
	if err := s.Step("returned", func() error { return errBoom }); err != errBoom {
		t.Fatalf("returned step = %v", err)
	}
	if err := s.Step("aborted", func() error {
		func() { Abort(errBoom) }()
		return nil
	}); err != errBoom {
		t.Fatalf("aborted step = %v", err)
	}
	if err := s.Step("abortf", func() error {
		Abortf("bad %v", 42)
		return nil
	}); err == nil || err.Error() != "bad 42" {
		t.Fatalf("abortf step = %v", err)
	}
	if got := len(c.Calls()); got != 4 {
		t.Fatalf("recorded %d calls, want 4", got)
	}
}

func TestStepRepanics(t *testing.T) {
	s := newSession("test", nil, nil)
	defer func() {
		if r := recover(); r != "defect" {
			t.Fatalf("recovered %v, want defect", r)
		}
	}()
	s.Step("panics", func() error { panic("defect") })
}

func TestReleaseOrderAndIdempotence(t *testing.T) {
	c := new(Counters)
	s := newSession("test", c, nil)
	dec := s.OpenDecoder([]byte("data"))
	enc := s.OpenEncoder()
	if dec.Stream() == nil || dec.Sink() != nil || enc.Sink() == nil || enc.Stream() != nil {
		t.Fatalf("handles bound to the wrong endpoints")
	}
	dec.Stream().Read(make([]byte, 2))
	s.close()
	s.close()
	if c.Released(DecoderHandle) != 1 || c.Released(EncoderHandle) != 1 {
		t.Fatalf("released %d/%d", c.Released(DecoderHandle), c.Released(EncoderHandle))
	}
	if c.ReadCalls() != 1 {
		t.Fatalf("reads = %d, want 1", c.ReadCalls())
	}
	if dec.Stream().Size() != 0 {
		t.Fatalf("stream still holds the input after release")
	}
}

func TestTransforms(t *testing.T) {
	src := image.NewNRGBA64(image.Rect(0, 0, 5, 3))
	for i := range src.Pix {
		src.Pix[i] = byte(i * 13)
	}
	n, err := DefaultLimits.Bound(5, 3)
	if err != nil {
		t.Fatal(err)
	}
	out := toRGBA(src, 5, 3, n)

	var names []string
	cur := image.Image(src)
	for _, tr := range Transforms() {
		names = append(names, tr.Name)
		prev := cur
		cur = tr.Apply(cur, out)
		if cur == nil {
			t.Fatalf("%v returned nil", tr.Name)
		}
		switch tr.Name {
		case "strip-16":
			if _, ok := cur.(*image.NRGBA); !ok {
				t.Fatalf("strip-16 returned %T", cur)
			}
		case "gray-to-rgb":
			if cur != prev {
				t.Fatalf("gray-to-rgb converted a colour image")
			}
		case "strip-alpha":
			if cur != image.Image(out) {
				t.Fatalf("strip-alpha returned %T, want the output buffer", cur)
			}
			for i := 3; i < len(out.Pix); i += 4 {
				if out.Pix[i] != 0xff {
					t.Fatalf("alpha %d after strip-alpha", out.Pix[i])
				}
			}
		case "gamma":
			if cur != image.Image(out) {
				t.Fatalf("gamma returned %T, want the output buffer", cur)
			}
		case "scale":
			if b := cur.Bounds(); b.Dx() != 2 || b.Dy() != 1 {
				t.Fatalf("scaled bounds = %v", b)
			}
		}
	}
	want := []string{"strip-16", "gray-to-rgb", "strip-alpha", "gamma", "scale"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("transforms mismatch (-want +got):\n%s", diff)
	}

	gray := image.NewGray(image.Rect(0, 0, 1, 1))
	gray.SetGray(0, 0, color.Gray{Y: 9})
	grayOut := toRGBA(gray, 1, 1, 4)
	if m := grayToRGB(gray, grayOut); m != image.Image(grayOut) {
		t.Fatalf("gray-to-rgb returned %T", m)
	}
	if gammaTable[0] != 0 || gammaTable[255] != 255 {
		t.Fatalf("gamma table endpoints = %d, %d", gammaTable[0], gammaTable[255])
	}
}

func TestTransformsKeepDecodedImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for i := range src.Pix {
		src.Pix[i] = 0x40
	}
	orig := append([]byte(nil), src.Pix...)
	out := toRGBA(src, 2, 2, 16)
	cur := image.Image(src)
	for _, tr := range Transforms() {
		cur = tr.Apply(cur, out)
	}
	if diff := cmp.Diff(orig, src.Pix); diff != "" {
		t.Fatalf("decoded image modified (-want +got):\n%s", diff)
	}
	if out.Pix[3] != 0xff {
		t.Fatalf("output alpha = %d, want opaque", out.Pix[3])
	}
}
