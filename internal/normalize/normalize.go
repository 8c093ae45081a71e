// SPDX-License-Identifier: MIT

// Package normalize implements the small set of Unicode normalization
// rules the lexicon core needs: NFKC-normalizing keys and titles, and
// case-folding tags into the lexicon's lowercase tag convention.
package normalize

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// caser is stateless and safe to use concurrently by multiple goroutines.
// https://pkg.go.dev/golang.org/x/text/cases#Fold
var caser = cases.Fold()

// Key NFKC-normalizes a dump title into the canonical entry key (spec §3).
func Key(title string) string {
	return norm.NFKC.String(strings.TrimSpace(title))
}

// Tag case-folds and NFKC-normalizes a label/POS tag into the lexicon's
// lowercase tag convention (spec §4.4, §6.1). Tags from Turkish/Azeri
// sites would need the dotless-I casefold rule, but the lexicon only
// ever folds already-lowercase-ish wikitext tag tokens, so plain Unicode
// case-folding is sufficient here.
func Tag(s string) string {
	return norm.NFKC.String(caser.String(strings.TrimSpace(s)))
}
