// SPDX-License-Identifier: MIT

package xmldump

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
)

func TestCreateOutputPlain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")
	w, err := CreateOutput(path, false)
	if err != nil {
		t.Fatalf("CreateOutput: %v", err)
	}
	if _, err := w.Write([]byte("hello\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "hello\n" {
		t.Errorf("content = %q", got)
	}
}

func TestCreateOutputZstdRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl.zst")
	w, err := CreateOutput(path, true)
	if err != nil {
		t.Fatalf("CreateOutput: %v", err)
	}
	want := `{"word":"cat"}` + "\n" + `{"word":"dog"}` + "\n"
	if _, err := w.Write([]byte(want)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		t.Fatal(err)
	}
	defer dec.Close()
	got, err := io.ReadAll(dec)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != want {
		t.Errorf("round trip = %q, want %q", got, want)
	}
}

func TestCreateOutputInvalidPath(t *testing.T) {
	if _, err := CreateOutput(filepath.Join(t.TempDir(), "missing-dir", "out.jsonl"), false); err == nil {
		t.Errorf("expected error creating file in nonexistent directory")
	}
}
