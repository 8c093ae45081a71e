// SPDX-License-Identifier: MIT

package extract

import (
	"regexp"
	"strings"

	"github.com/openword-lexicon/lexicon-core/pkg/lexicon"
)

// posHeadingRe matches level-3-or-deeper headings (spec §4.4 rule 1):
// "===Noun===", "====Noun 1====", etc. It deliberately has no
// back-reference tying the opening and closing '=' counts — a heading
// like "===Noun====" still counts, matching the rule as literally
// described.
var posHeadingRe = regexp.MustCompile(`(?m)^===+\s*([^=].*?)\s*===+\s*$`)

// posVocab maps a lowercased heading or head-template suffix to its
// canonical closed-vocabulary tag (spec §4.4).
var posVocab = map[string]string{
	lexicon.POSNoun:         lexicon.POSNoun,
	lexicon.POSVerb:         lexicon.POSVerb,
	lexicon.POSAdjective:    lexicon.POSAdjective,
	lexicon.POSAdverb:       lexicon.POSAdverb,
	lexicon.POSPronoun:      lexicon.POSPronoun,
	lexicon.POSPreposition:  lexicon.POSPreposition,
	lexicon.POSConjunction:  lexicon.POSConjunction,
	lexicon.POSInterjection: lexicon.POSInterjection,
	lexicon.POSDeterminer:   lexicon.POSDeterminer,
	lexicon.POSNumeral:      lexicon.POSNumeral,
	lexicon.POSParticle:     lexicon.POSParticle,
	lexicon.POSArticle:      lexicon.POSArticle,
	lexicon.POSPostposition: lexicon.POSPostposition,
	lexicon.POSProperNoun:   lexicon.POSProperNoun,
}

// posFromHeadings applies spec §4.4 rule 1: every level-3+ heading whose
// trimmed, case-folded text is in the closed POS vocabulary contributes
// its canonical tag.
func posFromHeadings(section string) []string {
	var tags []string
	for _, m := range posHeadingRe.FindAllStringSubmatch(section, -1) {
		key := strings.ToLower(strings.TrimSpace(m[1]))
		if tag, ok := posVocab[key]; ok {
			tags = append(tags, tag)
		}
	}
	return tags
}

// langPrefixRe recognizes the leading language-code segment of a
// {{<lang>-<pos>}} template name, e.g. "en-" in "en-noun". The code
// itself is opaque here — it is the template family's own language
// argument, pre-consumed the same way the hyphenation template's first
// pipe-argument is (spec §9), and is never compared against the
// section's target-language name: the two use different vocabularies
// (ISO-ish codes vs. full language names).
var langPrefixRe = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9]{0,3}-`)

// posFromHeadTemplates applies spec §4.4 rule 2: {{head|lang|pos}} and
// the {{lang-pos}} template family. Both forms carry a language argument
// ahead of the POS; it is consumed, not validated.
func posFromHeadTemplates(section string) []string {
	var tags []string
	for _, t := range findTemplatesNamed(section, "head") {
		args := positionalArgs(t.Args)
		if len(args) < 2 {
			continue
		}
		if tag, ok := posVocab[strings.ToLower(args[1])]; ok {
			tags = append(tags, tag)
		}
	}

	for _, t := range findTemplates(section) {
		loc := langPrefixRe.FindStringIndex(t.Name)
		if loc == nil {
			continue
		}
		suffix := strings.ToLower(t.Name[loc[1]:])
		suffix = strings.ReplaceAll(suffix, "-", " ")
		if tag, ok := posVocab[suffix]; ok {
			tags = append(tags, tag)
		}
	}
	return tags
}
