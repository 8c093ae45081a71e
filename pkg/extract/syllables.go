// SPDX-License-Identifier: MIT

package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/openword-lexicon/lexicon-core/pkg/runstats"
)

// hyphenationTemplateNames enumerates the current and legacy hyphenation
// templates (spec §4.4 rule 4).
var hyphenationTemplateNames = []string{"hyphenation", "hyph"}

// syllableCount applies spec §4.4 rule 4's three sources in priority
// order: hyphenation template, rhymes template's s= argument, and the
// "N-syllable words" category marker. It returns 0 if none apply.
//
// The hyphenation template's first argument is the language code and is
// consumed before the remaining segments are counted — it is never
// mistaken for a syllable segment, matching spec §9's explicit caveat.
func syllableCount(section, lang string, counters *runstats.Counters) int {
	for _, t := range findTemplatesNamed(section, hyphenationTemplateNames...) {
		if len(t.Args) == 0 {
			continue
		}
		segments := positionalArgs(t.Args[1:])
		if len(segments) == 0 {
			continue
		}
		if len(segments) == 1 && len(segments[0]) > 3 {
			// A single long segment means the word was never actually
			// broken into syllables; the template is incomplete.
			counters.Inc("extract.warning.incomplete_hyphenation", 1)
			continue
		}
		return len(segments)
	}

	for _, t := range findTemplatesNamed(section, "rhymes") {
		if len(t.Args) == 0 {
			continue
		}
		if s, ok := namedArg(t.Args, "s"); ok {
			if n, err := strconv.Atoi(s); err == nil && n > 0 {
				return n
			}
		}
	}

	if n, ok := syllableCategoryCount(section, lang); ok {
		return n
	}
	return 0
}

// syllableCategoryNumRe matches the "N-syllable words]]" tail of a
// "[[Category:<Lang> N-syllable words]]" marker with N captured.
// syllableCategoryCount requires the literal "[[Category:<Lang> " prefix
// right before it, so a bare mention of the category name in running
// text never matches.
var syllableCategoryNumRe = regexp.MustCompile(`(\d+)-syllable words\]\]`)

func syllableCategoryCount(section, lang string) (int, bool) {
	prefix := "[[Category:" + lang + " "
	rest := section
	for {
		pos := strings.Index(rest, prefix)
		if pos < 0 {
			return 0, false
		}
		rest = rest[pos+len(prefix):]
		if m := syllableCategoryNumRe.FindStringSubmatch(rest); m != nil && strings.HasPrefix(rest, m[0]) {
			if n, err := strconv.Atoi(m[1]); err == nil {
				return n, true
			}
		}
	}
}
