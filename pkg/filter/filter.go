// SPDX-License-Identifier: MIT

// Package filter implements the Entry Filter (spec §4.3): a
// short-circuiting, counted gate pipeline that rejects pages before the
// expensive feature extractor ever sees them.
package filter

import (
	"regexp"
	"strings"

	"github.com/openword-lexicon/lexicon-core/pkg/lexicon"
	"github.com/openword-lexicon/lexicon-core/pkg/runstats"
)

// nonContentPrefixes is the known non-content namespace-prefix set used
// as a fallback when <ns> is absent from the dump (spec §4.3 item 1).
var nonContentPrefixes = []string{
	"Wiktionary:", "Appendix:", "Help:", "Category:", "Template:",
	"Thesaurus:", "Rhymes:", "Module:", "MediaWiki:", "Citations:",
	"Sign gloss:", "Reconstruction:", "Index:",
}

var redirectRe = regexp.MustCompile(`(?i)^\s*#REDIRECT`)

// headingRe matches only level-2 headings: three or more '=' on either
// side cannot match, because [^=] forbids the extra '=' (spec §4.3).
var headingRe = regexp.MustCompile(`(?m)^==\s*([^=]+?)\s*==$`)

// softRedirectMarkers enumerates the dictionary-only gate's non-entry
// markers (spec §4.3 item 5).
var softRedirectMarkers = []string{
	"{{soft redirect",
	"{{disambiguation",
	"{{only in",
	"{{no entry",
}

// scriptAllowRange is the design's explicit Latin-extended acceptance
// window plus a small punctuation allow-list (spec §4.3 item 4, §9).
// It is a literal table, never a unicode.Is* category lookup, so its
// semantics cannot drift between implementations.
const (
	scriptMin = 0x0000
	scriptMax = 0x024F
)

var scriptPunctuationAllow = map[rune]bool{
	' ': true, '-': true, '\'': true, '.': true, ',': true,
	'·': true, '’': true, '‐': true, '/': true,
}

// Config is the filter's tunable state: the target language. The
// non-content namespace prefixes are the fixed nonContentPrefixes list.
type Config struct {
	TargetLanguage string
}

// Result is the outcome of running the filter over one Page.
type Result struct {
	Accepted bool
	Section  *lexicon.LanguageSection
}

// Run applies the filter gates in order, short-circuiting on the first
// rejection and incrementing a distinct counter per reason (spec §4.3).
// It never modifies page.
func Run(page *lexicon.Page, cfg Config, counters *runstats.Counters) Result {
	if !namespaceGate(page, counters) {
		return Result{}
	}
	if !redirectGate(page, counters) {
		return Result{}
	}
	section, ok := languageGate(page, cfg.TargetLanguage, counters)
	if !ok {
		return Result{}
	}
	if !scriptGate(page.Title, counters) {
		return Result{}
	}
	if !dictionaryOnlyGate(section, counters) {
		return Result{}
	}
	return Result{Accepted: true, Section: section}
}

// namespaceGate accepts only ns == 0. When <ns> was absent from the dump,
// it falls back to rejecting titles with a known non-content prefix
// (spec §4.3 item 1).
func namespaceGate(page *lexicon.Page, counters *runstats.Counters) bool {
	if page.NsPresent {
		if page.Ns == 0 {
			return true
		}
		counters.Inc("filter.reject.namespace", 1)
		return false
	}
	if namespaceFallbackRejects(page.Title) {
		counters.Inc("filter.reject.namespace", 1)
		return false
	}
	return true
}

// namespaceFallbackRejects reports whether title looks like a
// non-content page by its prefix (spec §4.3 item 1's fallback).
func namespaceFallbackRejects(title string) bool {
	for _, prefix := range nonContentPrefixes {
		if strings.HasPrefix(title, prefix) {
			return true
		}
	}
	return false
}

// redirectGate rejects bodies beginning (after optional whitespace) with
// #REDIRECT, case-insensitive (spec §4.3 item 2).
func redirectGate(page *lexicon.Page, counters *runstats.Counters) bool {
	if redirectRe.MatchString(page.Body) {
		counters.Inc("filter.reject.redirect", 1)
		return false
	}
	return true
}

// languageGate accepts only if the body contains a level-2 heading for
// the target language, and slices the section from that heading to the
// next level-2 heading or end-of-body (spec §4.3 item 3).
func languageGate(page *lexicon.Page, targetLanguage string, counters *runstats.Counters) (*lexicon.LanguageSection, bool) {
	locs := headingRe.FindAllStringSubmatchIndex(page.Body, -1)
	for i, loc := range locs {
		heading := page.Body[loc[2]:loc[3]]
		if heading != targetLanguage {
			continue
		}
		start := loc[1]
		end := len(page.Body)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		return &lexicon.LanguageSection{Language: targetLanguage, Text: page.Body[start:end]}, true
	}
	counters.Inc("filter.reject.language", 1)
	return nil, false
}

// scriptGate rejects titles containing characters outside the accepted
// Latin ranges (spec §4.3 item 4).
func scriptGate(title string, counters *runstats.Counters) bool {
	for _, r := range title {
		if r >= scriptMin && r <= scriptMax {
			continue
		}
		if scriptPunctuationAllow[r] {
			continue
		}
		counters.Inc("filter.reject.script", 1)
		return false
	}
	return true
}

// dictionaryOnlyGate rejects sections that contain only non-entry
// markers (spec §4.3 item 5).
func dictionaryOnlyGate(section *lexicon.LanguageSection, counters *runstats.Counters) bool {
	lower := strings.ToLower(section.Text)
	hasMarker := false
	for _, marker := range softRedirectMarkers {
		if strings.Contains(lower, marker) {
			hasMarker = true
			break
		}
	}
	if !hasMarker {
		return true
	}
	// A section that contains only a soft-redirect/disambiguation marker
	// and no heading of its own carries no real entry content.
	if !strings.Contains(section.Text, "===") {
		counters.Inc("filter.reject.dictionary_only", 1)
		return false
	}
	return true
}
