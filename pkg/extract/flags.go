// SPDX-License-Identifier: MIT

package extract

import (
	"strings"
	"unicode"

	"github.com/openword-lexicon/lexicon-core/pkg/lexicon"
)

// inflectionTemplateNames are the "X of" template family that marks an
// entry as an inflected form of some lemma (spec §4.4 rule 6). The spec
// names six concrete templates; documented as a discrepancy in
// DESIGN.md against its own "seven template families" prose.
var inflectionTemplateNames = []string{
	"past of", "present participle of", "comparative of",
	"superlative of", "plural of", "inflection of",
}

var inflectionCategorySuffixes = []string{
	"verb forms", "noun forms", "adjective forms", "adverb forms", "plurals",
}

var abbreviationCategorySuffixes = []string{
	"abbreviations", "acronyms", "initialisms",
}

// deriveFlags applies spec §4.4 rule 6: every flag is a pure function of
// the title, the POS tags already collected, and the labels already
// collected, plus two direct template/category scans for is_inflected
// and is_abbreviation.
func deriveFlags(entry *lexicon.Entry, title, section, lang string) {
	entry.IsPhrase = containsWhitespace(title)
	entry.IsProperNoun = entry.HasPOS(lexicon.POSProperNoun)

	entry.IsVulgar = entry.HasLabel(lexicon.LabelRegister, "vulgar") ||
		entry.HasLabel(lexicon.LabelRegister, "offensive") ||
		entry.HasLabel(lexicon.LabelRegister, "derogatory")
	entry.IsArchaic = entry.HasLabel(lexicon.LabelTemporal, "archaic")
	entry.IsRare = entry.HasLabel(lexicon.LabelTemporal, "rare")
	entry.IsDated = entry.HasLabel(lexicon.LabelTemporal, "dated")
	entry.IsInformal = entry.HasLabel(lexicon.LabelRegister, "informal") ||
		entry.HasLabel(lexicon.LabelRegister, "colloquial") ||
		entry.HasLabel(lexicon.LabelRegister, "slang")
	entry.IsRegional = entry.HasAnyLabel(lexicon.LabelRegion)
	entry.IsTechnical = entry.HasAnyLabel(lexicon.LabelDomain)

	entry.IsInflected = hasInflectionTemplate(section) || categoryHasAnySuffix(section, lang, inflectionCategorySuffixes)
	entry.IsAbbreviation = categoryHasAnySuffix(section, lang, abbreviationCategorySuffixes)
}

func containsWhitespace(s string) bool {
	for _, r := range s {
		if unicode.IsSpace(r) {
			return true
		}
	}
	return false
}

func hasInflectionTemplate(section string) bool {
	return len(findTemplatesNamed(section, inflectionTemplateNames...)) > 0
}

// categoryHasAnySuffix reports whether section contains
// "[[Category:<Lang> <suffix>" for any suffix, requiring the literal
// "[[Category:" prefix so that a category mentioned only as a link
// target elsewhere in running text, without its own declaration, is
// never mistaken for membership (spec §4.4 rule 6, §9).
func categoryHasAnySuffix(section, lang string, suffixes []string) bool {
	for _, suffix := range suffixes {
		if strings.Contains(section, "[[Category:"+lang+" "+suffix) {
			return true
		}
	}
	return false
}
