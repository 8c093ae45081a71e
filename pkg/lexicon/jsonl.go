// SPDX-License-Identifier: MIT

package lexicon

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
)

// Writer emits one JSON object per line, UTF-8, no trailing whitespace
// (spec §6.1). It is not safe for concurrent use; callers serializing
// entries from parallel extractor workers must funnel through a single
// writer goroutine (spec §5).
type Writer struct {
	w   *bufio.Writer
	enc *json.Encoder
}

// NewWriter wraps w as a JSONL entry writer.
func NewWriter(w io.Writer) *Writer {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	return &Writer{w: bw, enc: enc}
}

// Write encodes one entry as a single JSON line.
func (jw *Writer) Write(e *Entry) error {
	return jw.enc.Encode(e)
}

// Flush flushes any buffered output to the underlying writer.
func (jw *Writer) Flush() error {
	return jw.w.Flush()
}

// WriteAtomic writes entries to a temporary file beside path and renames
// it into place only once every entry has been written successfully —
// spec §7's "no partial output file" rule, following the
// temp-file-then-os.Rename pattern in the teacher's buildStats.
func WriteAtomic(path string, entries func(*Writer) error) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return &IoError{Op: "create " + tmp, Err: err}
	}
	jw := NewWriter(f)
	if err := entries(jw); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := jw.Flush(); err != nil {
		f.Close()
		os.Remove(tmp)
		return &IoError{Op: "flush " + tmp, Err: err}
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return &IoError{Op: "sync " + tmp, Err: err}
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return &IoError{Op: "close " + tmp, Err: err}
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return &IoError{Op: "rename " + tmp, Err: err}
	}
	return nil
}

// Reader reads entries back from a JSONL stream, one object per line
// (spec §6.1, used by tests checking the round-trip law in spec §8).
type Reader struct {
	dec *json.Decoder
}

// NewReader wraps r as a JSONL entry reader.
func NewReader(r io.Reader) *Reader {
	return &Reader{dec: json.NewDecoder(r)}
}

// Read decodes the next entry, returning io.EOF when the stream is
// exhausted.
func (jr *Reader) Read() (*Entry, error) {
	var e Entry
	if err := jr.dec.Decode(&e); err != nil {
		return nil, err
	}
	return &e, nil
}
