// SPDX-License-Identifier: MIT

package xmldump

import (
	"bytes"
	"io"
	"testing"
)

func TestTextReaderPassesValidUTF8(t *testing.T) {
	src := "héllo wörld 日本語"
	r := NewTextReader(bytes.NewReader([]byte(src)))
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != src {
		t.Errorf("got %q, want %q", got, src)
	}
}

func TestTextReaderReplacesMalformedBytes(t *testing.T) {
	src := []byte{'a', 0xff, 'b', 0xfe, 0xfe, 'c'}
	r := NewTextReader(bytes.NewReader(src))
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	want := "a�b��c"
	if string(got) != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
