// SPDX-License-Identifier: MIT

package xmldump

import (
	"bytes"
	"io"
	"regexp"
	"strconv"

	"github.com/openword-lexicon/lexicon-core/pkg/lexicon"
	"github.com/openword-lexicon/lexicon-core/pkg/runstats"
)

var (
	// (?s) makes '.' match newlines: the source design relies on
	// dot-matches-all semantics but never look-ahead (spec §9), so every
	// pattern here uses only anchors, explicit delimiters, and slicing.
	titleRe    = regexp.MustCompile(`(?s)<title>(.*?)</title>`)
	nsRe       = regexp.MustCompile(`(?s)<ns>(-?\d+)</ns>`)
	textRe     = regexp.MustCompile(`(?s)<text[^>]*>(.*?)</text>`)
	textOpenRe = regexp.MustCompile(`(?s)<text[^>]*>`)
)

const (
	pageStartTag = "<page>"
	pageEndTag   = "</page>"
)

// chunkReadSize is how much the scanner reads ahead at a time while
// growing its rolling buffer in search of a page boundary.
const chunkReadSize = 64 * 1024

// Scanner locates <page>…</page> boundaries in a text stream and yields
// Page records without building a DOM (spec §4.2). It never raises on
// content-level oddities: only a malformed stream prefix (a <page> whose
// </page> never arrives, and diagnostic mode is off) surfaces a
// ParseError, and a failed read of the underlying stream surfaces an
// IoError; every other oddity becomes a runstats counter.
type Scanner struct {
	r          io.Reader
	diagnostic bool
	counters   *runstats.Counters

	buf    []byte // unconsumed bytes, starting at the next unread position
	offset int64  // stream offset of buf[0]
	eof    bool

	page *lexicon.Page
	err  error
	done bool
}

// NewScanner returns a Scanner reading from r (typically the output of
// BufferedText). diagnostic enables the open-tag fallback of spec §4.2
// step 3. counters receives per-reason skip increments.
func NewScanner(r io.Reader, diagnostic bool, counters *runstats.Counters) *Scanner {
	return &Scanner{r: r, diagnostic: diagnostic, counters: counters, buf: make([]byte, 0, chunkReadSize*2)}
}

// Scan advances to the next page, returning false when the stream is
// exhausted or an unrecoverable error occurred (check Err).
func (s *Scanner) Scan() bool {
	for {
		if s.done {
			return false
		}

		start := bytes.Index(s.buf, []byte(pageStartTag))
		if start < 0 {
			// No <page> start tag buffered yet; drop everything before
			// a possible partial match at the tail and read more.
			s.trimToPossiblePrefix(pageStartTag)
			if !s.grow() {
				s.done = true
				return false
			}
			continue
		}

		// Drop any bytes before the start tag; they are outside any page
		// (whitespace, siteinfo, etc.) and not interesting.
		s.advance(start)

		end := bytes.Index(s.buf, []byte(pageEndTag))
		for end < 0 && !s.eof {
			if !s.grow() {
				break
			}
			end = bytes.Index(s.buf, []byte(pageEndTag))
		}

		var region []byte
		var consumed int
		pageTruncated := false
		if end >= 0 {
			region = s.buf[:end]
			consumed = end + len(pageEndTag)
		} else {
			// Stream ended before </page> arrived.
			if s.err != nil {
				// grow() already recorded a genuine read failure; that's
				// the real cause, not a malformed prefix.
				s.done = true
				return false
			}
			if !s.diagnostic {
				s.err = &lexicon.ParseError{Offset: s.offset, Msg: "truncated <page>: no closing </page> tag"}
				s.done = true
				return false
			}
			region = s.buf
			consumed = len(s.buf)
			pageTruncated = true
		}

		page, ok := s.extractPage(region, pageTruncated)
		s.advance(consumed)
		if !ok {
			continue // skipped, counter already incremented
		}
		s.page = page
		if end < 0 {
			s.done = true // diagnostic fallback consumed the rest of the stream
		}
		return true
	}
}

// extractPage parses one <page>…</page> region (region excludes the
// wrapper tags themselves is not required — it may include leading
// "<page>" since title/ns/text are located by their own tags).
func (s *Scanner) extractPage(region []byte, pageTruncated bool) (*lexicon.Page, bool) {
	titleMatch := titleRe.FindSubmatch(region)
	if titleMatch == nil {
		s.counters.Inc("scanner.skip.no_title", 1)
		return nil, false
	}
	title := string(titleMatch[1])

	ns := 0
	nsPresent := false
	if m := nsRe.FindSubmatch(region); m != nil {
		n, err := strconv.Atoi(string(m[1]))
		if err == nil {
			ns = n
			nsPresent = true
		}
	}

	if m := textRe.FindSubmatchIndex(region); m != nil {
		body := string(region[m[2]:m[3]])
		return &lexicon.Page{Title: title, Ns: ns, NsPresent: nsPresent, Body: body, Truncated: pageTruncated}, true
	}

	// No closing </text>: production path rejects, diagnostic path
	// accepts the remainder (spec §4.2 step 3).
	if !s.diagnostic {
		s.counters.Inc("scanner.skip.no_close_text", 1)
		return nil, false
	}
	openMatch := textOpenRe.FindIndex(region)
	if openMatch == nil {
		s.counters.Inc("scanner.skip.no_text", 1)
		return nil, false
	}
	body := string(region[openMatch[1]:])
	return &lexicon.Page{Title: title, Ns: ns, NsPresent: nsPresent, Body: body, Truncated: true}, true
}

// Page returns the most recently scanned page.
func (s *Scanner) Page() *lexicon.Page { return s.page }

// Err returns the first unrecoverable error encountered, if any.
func (s *Scanner) Err() error { return s.err }

// grow reads one more chunk into the rolling buffer. It returns false
// once the stream is exhausted (or a read error ends it) and no bytes
// remain to process. A non-io.EOF read error is recorded in s.err so
// Scan's caller can distinguish a clean end of stream from a genuine
// I/O failure instead of silently treating both as "done".
func (s *Scanner) grow() bool {
	if s.eof {
		return false
	}
	chunk := make([]byte, chunkReadSize)
	n, err := s.r.Read(chunk)
	if n > 0 {
		s.buf = append(s.buf, chunk[:n]...)
	}
	if err != nil {
		s.eof = true
		if err != io.EOF {
			s.err = &lexicon.IoError{Op: "read dump", Err: err}
		}
	}
	return n > 0 || !s.eof
}

// advance drops n bytes from the front of the rolling buffer.
func (s *Scanner) advance(n int) {
	s.buf = s.buf[n:]
	s.offset += int64(n)
}

// trimToPossiblePrefix drops leading bytes that cannot possibly be the
// start of tag, keeping only a suffix that might still grow into a
// match — this is what bounds the rolling buffer's memory between
// pages.
func (s *Scanner) trimToPossiblePrefix(tag string) {
	if len(s.buf) <= len(tag) {
		return
	}
	keep := len(s.buf) - len(tag) + 1
	s.advance(keep)
}

