// SPDX-License-Identifier: MIT

package lexicon

// Page is a record extracted from the dump: title, namespace id, and
// body wikitext (spec §3). Ephemeral — discarded after feature
// extraction.
type Page struct {
	Title string
	Ns    int
	Body  string

	// NsPresent is false when the dump had no <ns> tag at all, in which
	// case Ns defaults to 0 but the namespace gate's title-prefix
	// fallback applies instead (spec §4.3 item 1).
	NsPresent bool

	// Truncated is true when the scanner accepted the page body up to
	// end-of-buffer because no closing </text> tag was found (the
	// --diagnostic fallback path, spec §4.2 step 3).
	Truncated bool
}

// LanguageSection is a contiguous slice of a page body delimited by a
// level-2 heading matching the target language and the next level-2
// heading or end-of-body (spec §3).
type LanguageSection struct {
	Language string
	Text     string
}
