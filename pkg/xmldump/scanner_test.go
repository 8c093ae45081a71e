// SPDX-License-Identifier: MIT

package xmldump

import (
	"errors"
	"strings"
	"testing"

	"github.com/openword-lexicon/lexicon-core/pkg/lexicon"
	"github.com/openword-lexicon/lexicon-core/pkg/runstats"
)

// errReader yields a fixed prefix, then a non-EOF read error, simulating
// a decompressor or network reader breaking mid-stream.
type errReader struct {
	prefix string
	served bool
	err    error
}

func (r *errReader) Read(p []byte) (int, error) {
	if !r.served {
		r.served = true
		n := copy(p, r.prefix)
		return n, nil
	}
	return 0, r.err
}

func TestScanBasicPage(t *testing.T) {
	// Scenario 1 from spec §8.
	src := `<page><ns>0</ns><title>dictionary</title><text xml:space="preserve">==English==
===Noun===
{{en-noun}}
{{hyphenation|en|dic|tion|a|ry}}</text></page>`

	counters := runstats.New()
	s := NewScanner(strings.NewReader(src), false, counters)
	if !s.Scan() {
		t.Fatalf("Scan() = false, err=%v", s.Err())
	}
	p := s.Page()
	if p.Title != "dictionary" || p.Ns != 0 {
		t.Errorf("Page() = %+v", p)
	}
	if !strings.Contains(p.Body, "{{hyphenation|en|dic|tion|a|ry}}") {
		t.Errorf("Page().Body missing expected content: %q", p.Body)
	}
	if s.Scan() {
		t.Errorf("expected only one page, got second: %+v", s.Page())
	}
	if s.Err() != nil {
		t.Errorf("Err() = %v", s.Err())
	}
}

func TestScanMultiplePages(t *testing.T) {
	src := `<page><title>a</title><ns>0</ns><text>A</text></page>` +
		`<page><title>b</title><ns>0</ns><text>B</text></page>`
	s := NewScanner(strings.NewReader(src), false, runstats.New())
	var titles []string
	for s.Scan() {
		titles = append(titles, s.Page().Title)
	}
	if s.Err() != nil {
		t.Fatalf("Err() = %v", s.Err())
	}
	if len(titles) != 2 || titles[0] != "a" || titles[1] != "b" {
		t.Errorf("titles = %v", titles)
	}
}

func TestScanMissingTitleSkipped(t *testing.T) {
	src := `<page><ns>0</ns><text>no title here</text></page>` +
		`<page><title>ok</title><ns>0</ns><text>fine</text></page>`
	counters := runstats.New()
	s := NewScanner(strings.NewReader(src), false, counters)
	if !s.Scan() {
		t.Fatalf("Scan() = false, err=%v", s.Err())
	}
	if s.Page().Title != "ok" {
		t.Errorf("expected malformed page skipped, got %+v", s.Page())
	}
	if counters.Get("scanner.skip.no_title") != 1 {
		t.Errorf("scanner.skip.no_title = %d", counters.Get("scanner.skip.no_title"))
	}
}

func TestScanMissingCloseTextProductionRejects(t *testing.T) {
	src := `<page><title>broken</title><ns>0</ns><text>never closes</page>` +
		`<page><title>ok</title><ns>0</ns><text>fine</text></page>`
	counters := runstats.New()
	s := NewScanner(strings.NewReader(src), false, counters)
	if !s.Scan() {
		t.Fatalf("Scan() = false, err=%v", s.Err())
	}
	if s.Page().Title != "ok" {
		t.Errorf("expected broken page skipped in production mode, got %+v", s.Page())
	}
	if counters.Get("scanner.skip.no_close_text") != 1 {
		t.Errorf("scanner.skip.no_close_text = %d", counters.Get("scanner.skip.no_close_text"))
	}
}

func TestScanMissingCloseTextDiagnosticAccepts(t *testing.T) {
	src := `<page><title>broken</title><ns>0</ns><text>never closes</page>`
	s := NewScanner(strings.NewReader(src), true, runstats.New())
	if !s.Scan() {
		t.Fatalf("Scan() = false, err=%v", s.Err())
	}
	p := s.Page()
	if p.Title != "broken" || !p.Truncated {
		t.Errorf("Page() = %+v", p)
	}
	if !strings.Contains(p.Body, "never closes") {
		t.Errorf("Page().Body = %q", p.Body)
	}
}

func TestScanTruncatedStreamParseError(t *testing.T) {
	src := `<page><title>broken</title><ns>0</ns><text>never ends, and no closing page tag`
	s := NewScanner(strings.NewReader(src), false, runstats.New())
	if s.Scan() {
		t.Fatalf("Scan() = true, want false due to ParseError")
	}
	if s.Err() == nil {
		t.Fatalf("Err() = nil, want ParseError")
	}
}

// TestScanReadErrorSurfaces confirms a genuine I/O failure (not a clean
// io.EOF) is reported as an IoError rather than treated as a quiet end
// of stream.
func TestScanReadErrorSurfaces(t *testing.T) {
	readErr := errors.New("disk exploded")
	src := &errReader{prefix: `<page><title>broken</title><ns>0</ns><text>never`, err: readErr}
	s := NewScanner(src, false, runstats.New())
	if s.Scan() {
		t.Fatalf("Scan() = true, want false due to read error")
	}
	ioErr, ok := s.Err().(*lexicon.IoError)
	if !ok {
		t.Fatalf("Err() = %T(%v), want *lexicon.IoError", s.Err(), s.Err())
	}
	if !errors.Is(ioErr.Err, readErr) && ioErr.Err.Error() != readErr.Error() {
		t.Errorf("IoError.Err = %v, want %v", ioErr.Err, readErr)
	}
}

func TestScanNamespace(t *testing.T) {
	src := `<page><title>Wiktionary:Welcome</title><ns>4</ns><text>hi</text></page>`
	s := NewScanner(strings.NewReader(src), false, runstats.New())
	if !s.Scan() {
		t.Fatalf("Scan() = false, err=%v", s.Err())
	}
	if s.Page().Ns != 4 {
		t.Errorf("Ns = %d, want 4", s.Page().Ns)
	}
}
