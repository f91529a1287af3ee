// Copyright 2025 go-fuzz project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package driver

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input")
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func recorder(got *[][]byte, res int) func([]byte) int {
	return func(data []byte) int {
		*got = append(*got, append([]byte(nil), data...))
		return res
	}
}

func TestReplay(t *testing.T) {
	tests := []struct {
		file string
		want string
	}{
		{"\x89PNG\r\n\x1a\n", "\x89PNG\r\n\x1a\n"},
		{"", ""},
		{"go test fuzz v1\n[]byte(\"\\xff\\xd8abc\")\n", "\xff\xd8abc"},
		{"go test fuzz v1\n# comment\nstring(\"GIF89a\")", "GIF89a"},
		{"go test fuzz v1\n[]byte(`raw`)\n", "raw"},
		// Malformed corpus files are raw inputs.
		{"go test fuzz v1\n[]byte(\"a\")\n[]byte(\"b\")\n", "go test fuzz v1\n[]byte(\"a\")\n[]byte(\"b\")\n"},
		{"go test fuzz v1\nint(3)\n", "go test fuzz v1\nint(3)\n"},
		{"go test fuzz v1\n[]byte(\"unterminated)\n", "go test fuzz v1\n[]byte(\"unterminated)\n"},
		{"go test fuzz v1\nGIF89a\x01\x00\x01\x00\x00\x00\x00;", "go test fuzz v1\nGIF89a\x01\x00\x01\x00\x00\x00\x00;"},
	}
	for _, test := range tests {
		var got [][]byte
		var stderr bytes.Buffer
		if res := Replay(writeFile(t, test.file), recorder(&got, 0), &stderr); res != 0 {
			t.Errorf("%q: Replay = %d, stderr %q", test.file, res, stderr.String())
			continue
		}
		if len(got) != 1 || string(got[0]) != test.want {
			t.Errorf("%q: f called with %q, want one call with %q", test.file, got, test.want)
		}
		if stderr.Len() != 0 {
			t.Errorf("%q: stderr %q", test.file, stderr.String())
		}
	}
}

func TestReplayMatchesServe(t *testing.T) {
	const input = "go test fuzz v1\nGIF89a\x01\x00\x01\x00\x00\x00\x00;"
	var replayed, served [][]byte
	if res := Replay(writeFile(t, input), recorder(&replayed, 0), io.Discard); res != 0 {
		t.Fatalf("Replay = %d", res)
	}
	if err := Serve(recorder(&served, 0), bytes.NewReader(frame(input)), io.Discard); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(served, replayed); diff != "" {
		t.Fatalf("replay and serve inputs differ (-serve +replay):\n%s", diff)
	}
}

func TestReplayPropagatesStatus(t *testing.T) {
	var got [][]byte
	if res := Replay(writeFile(t, "x"), recorder(&got, 7), io.Discard); res != 7 {
		t.Fatalf("Replay = %d, want 7", res)
	}
}

func TestReplayErrors(t *testing.T) {
	for _, path := range []string{
		filepath.Join(t.TempDir(), "missing"),
		t.TempDir(),
	} {
		var got [][]byte
		var stderr bytes.Buffer
		if res := Replay(path, recorder(&got, 0), &stderr); res != 1 {
			t.Errorf("%v: Replay = %d, want 1", path, res)
		}
		if len(got) != 0 || stderr.Len() == 0 {
			t.Errorf("%v: %d calls, stderr %q", path, len(got), stderr.String())
		}
	}
}

func TestDecodeCorpusFileError(t *testing.T) {
	_, err := decodeCorpusFile([]byte(corpusHeader))
	if !errors.Is(err, errCorpusFile) {
		t.Fatalf("err = %v, want errCorpusFile", err)
	}
}

func frame(data string) []byte {
	return append(binary.LittleEndian.AppendUint64(nil, uint64(len(data))), data...)
}

func TestServe(t *testing.T) {
	var in bytes.Buffer
	inputs := []string{"first", "", "third input"}
	for _, s := range inputs {
		in.Write(frame(s))
	}
	var got [][]byte
	var out bytes.Buffer
	if err := Serve(recorder(&got, 0), &in, &out); err != nil {
		t.Fatal(err)
	}
	var calls []string
	for _, d := range got {
		calls = append(calls, string(d))
	}
	if diff := cmp.Diff(inputs, calls); diff != "" {
		t.Fatalf("inputs mismatch (-want +got):\n%s", diff)
	}
	if out.Len() != len(inputs)*16 {
		t.Fatalf("wrote %d reply bytes, want %d", out.Len(), len(inputs)*16)
	}
	for i := range inputs {
		var r Reply
		if err := binary.Read(&out, binary.LittleEndian, &r); err != nil {
			t.Fatal(err)
		}
		if r.Res != 0 {
			t.Fatalf("reply %d: res = %d", i, r.Res)
		}
	}
}

func TestServeErrors(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
	}{
		{"short length", []byte{1, 0, 0}},
		{"short input", frame("abcdef")[:10]},
		{"oversized", binary.LittleEndian.AppendUint64(nil, MaxInputSize+1)},
	}
	for _, test := range tests {
		var got [][]byte
		err := Serve(recorder(&got, 0), bytes.NewReader(test.in), io.Discard)
		if err == nil || len(got) != 0 {
			t.Errorf("%v: Serve = %v after %d calls", test.name, err, len(got))
		}
	}
}

// TestHelperProcess is not a real test. It runs Main inside a child process
// started by the tests below.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("DRIVER_HELPER") != "1" {
		return
	}
	args := os.Args
	for i, arg := range args {
		if arg == "--" {
			args = args[i:]
			break
		}
	}
	os.Args = args
	Main(func(data []byte) int {
		fmt.Printf("%d bytes\n", len(data))
		return 0
	})
}

func helper(t *testing.T, env string, args ...string) (string, int) {
	cmd := exec.Command(os.Args[0], append([]string{"-test.run=TestHelperProcess", "--"}, args...)...)
	cmd.Env = append(os.Environ(), "DRIVER_HELPER=1", env)
	out, err := cmd.CombinedOutput()
	var exit *exec.ExitError
	if errors.As(err, &exit) {
		return string(out), exit.ExitCode()
	}
	if err != nil {
		t.Fatal(err)
	}
	return string(out), 0
}

func TestMainModes(t *testing.T) {
	if testing.Short() {
		t.Skip("starts subprocesses")
	}
	out, code := helper(t, ServeEnv+"=", writeFile(t, "12345"))
	if code != 0 || !strings.Contains(out, "5 bytes") {
		t.Errorf("replay: exit %d, output %q", code, out)
	}
	out, code = helper(t, ServeEnv+"=", filepath.Join(t.TempDir(), "missing"))
	if code != 1 || !strings.Contains(out, "failed to read input") {
		t.Errorf("missing file: exit %d, output %q", code, out)
	}
	out, code = helper(t, ServeEnv+"=")
	if code != 1 || !strings.Contains(out, "usage:") {
		t.Errorf("no arguments: exit %d, output %q", code, out)
	}
}
