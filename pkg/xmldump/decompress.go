// SPDX-License-Identifier: MIT

// Package xmldump implements the Stream Decompressor and Page Scanner
// (spec §4.1, §4.2): presenting a compressed Wikimedia dump as a
// sequential stream of lexicon.Page records in bounded working-set
// memory, without building a DOM.
package xmldump

import (
	"bufio"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"

	"github.com/openword-lexicon/lexicon-core/pkg/lexicon"
)

// rollingBufferSize bounds the scanner's internal read-ahead chunk size;
// together with the decompressor's own internal state this keeps peak
// resident memory within the ≤256 KiB scanner-buffer budget of spec §4.1
// (plus whatever one page's body costs, per spec §5's resource budget).
const rollingBufferSize = 256 * 1024

// Open presents the compressed dump at path as a decompressed byte
// stream. The codec is selected from the file extension: ".bz2" (the
// production Wiktionary/Wikipedia dump format), ".xz" (the format used
// by some Wikimedia mirrors for the same dumps), ".zst", or none (an
// already-decompressed ".xml" file, mainly for tests).
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &lexicon.IoError{Op: "open " + path, Err: err}
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".bz2":
		r, err := bzip2.NewReader(f, &bzip2.ReaderConfig{})
		if err != nil {
			f.Close()
			return nil, &lexicon.DecompressError{Err: err}
		}
		return &closeBoth{r, f}, nil
	case ".xz":
		r, err := xz.NewReader(f)
		if err != nil {
			f.Close()
			return nil, &lexicon.DecompressError{Err: err}
		}
		return &closeBoth{io.NopCloser(r), f}, nil
	case ".zst":
		r, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, &lexicon.DecompressError{Err: err}
		}
		return &zstdReadCloser{r, f}, nil
	case ".gz":
		r, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, &lexicon.DecompressError{Err: err}
		}
		return &closeBoth{r, f}, nil
	default:
		return f, nil
	}
}

// closeBoth closes a decompressor and its underlying file, in that order.
type closeBoth struct {
	io.ReadCloser
	file *os.File
}

func (c *closeBoth) Close() error {
	err1 := c.ReadCloser.Close()
	err2 := c.file.Close()
	if err1 != nil {
		return err1
	}
	return err2
}

// zstdReadCloser adapts *zstd.Decoder (whose Close takes no error) to
// io.ReadCloser.
type zstdReadCloser struct {
	dec  *zstd.Decoder
	file *os.File
}

func (z *zstdReadCloser) Read(p []byte) (int, error) { return z.dec.Read(p) }

func (z *zstdReadCloser) Close() error {
	z.dec.Close()
	return z.file.Close()
}

// BufferedText wraps a decompressed byte stream as a sanitized UTF-8
// text reader with a bounded internal buffer (spec §4.1).
func BufferedText(r io.Reader) io.Reader {
	return NewTextReader(bufio.NewReaderSize(r, rollingBufferSize))
}

// CreateOutput opens path for writing and, when zstdCompress is true,
// wraps it with a zstd encoder at the fastest level — the scanner's
// optional compressed JSONL output sink, mirroring the teacher's own
// `zstd.WithEncoderLevel(zstd.SpeedFastest)` choice for intermediate
// pipeline files.
func CreateOutput(path string, zstdCompress bool) (io.WriteCloser, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, &lexicon.IoError{Op: "create " + path, Err: err}
	}
	if !zstdCompress {
		return f, nil
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		f.Close()
		return nil, &lexicon.IoError{Op: "zstd encoder for " + path, Err: err}
	}
	return &zstdWriteCloser{enc: enc, file: f}, nil
}

// zstdWriteCloser adapts *zstd.Encoder and its underlying file into a
// single io.WriteCloser, closing the encoder (which flushes the final
// frame) before the file.
type zstdWriteCloser struct {
	enc  *zstd.Encoder
	file *os.File
}

func (z *zstdWriteCloser) Write(p []byte) (int, error) { return z.enc.Write(p) }

func (z *zstdWriteCloser) Close() error {
	if err := z.enc.Close(); err != nil {
		z.file.Close()
		return err
	}
	return z.file.Close()
}
