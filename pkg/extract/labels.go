// SPDX-License-Identifier: MIT

package extract

import (
	"strings"

	"github.com/openword-lexicon/lexicon-core/pkg/lexicon"
	"github.com/openword-lexicon/lexicon-core/pkg/runstats"
)

// labelTemplateNames enumerates the current and legacy label templates
// recognized by spec §4.4 rule 3.
var labelTemplateNames = []string{"lb", "label", "term-label"}

// labelConnectors are positional arguments that join tags rather than
// naming one (a small closed set borrowed from the real template's
// "and"/"or"/"_" glue words); they never become labels themselves.
var labelConnectors = map[string]bool{
	"_": true, "and": true, "or": true, "also": true,
}

// labelClassification is the static tag-to-category table (spec §4.4
// rule 3). It is intentionally small and closed: an unrecognized tag is
// dropped and counted rather than guessed at.
var labelClassification = map[string]string{
	// register
	"vulgar":      lexicon.LabelRegister,
	"offensive":   lexicon.LabelRegister,
	"derogatory":  lexicon.LabelRegister,
	"slang":       lexicon.LabelRegister,
	"colloquial":  lexicon.LabelRegister,
	"informal":    lexicon.LabelRegister,
	"formal":      lexicon.LabelRegister,
	"euphemistic": lexicon.LabelRegister,
	"humorous":    lexicon.LabelRegister,
	"derogatory term": lexicon.LabelRegister,

	// temporal
	"archaic":  lexicon.LabelTemporal,
	"obsolete": lexicon.LabelTemporal,
	"dated":    lexicon.LabelTemporal,
	"rare":     lexicon.LabelTemporal,
	"historical": lexicon.LabelTemporal,

	// domain
	"medicine":    lexicon.LabelDomain,
	"law":         lexicon.LabelDomain,
	"legal":       lexicon.LabelDomain,
	"computing":   lexicon.LabelDomain,
	"biology":     lexicon.LabelDomain,
	"chemistry":   lexicon.LabelDomain,
	"physics":     lexicon.LabelDomain,
	"linguistics": lexicon.LabelDomain,
	"music":       lexicon.LabelDomain,
	"sports":      lexicon.LabelDomain,
	"military":    lexicon.LabelDomain,
	"nautical":    lexicon.LabelDomain,
	"religion":    lexicon.LabelDomain,
	"mathematics": lexicon.LabelDomain,
	"economics":   lexicon.LabelDomain,
	"politics":    lexicon.LabelDomain,
	"history":     lexicon.LabelDomain,
	"anatomy":     lexicon.LabelDomain,
	"botany":      lexicon.LabelDomain,
	"zoology":     lexicon.LabelDomain,
	"geography":   lexicon.LabelDomain,
	"engineering": lexicon.LabelDomain,
	"grammar":     lexicon.LabelDomain,

	// region
	"UK":            lexicon.LabelRegion,
	"US":            lexicon.LabelRegion,
	"Britain":       lexicon.LabelRegion,
	"British":       lexicon.LabelRegion,
	"Australia":     lexicon.LabelRegion,
	"Australian":    lexicon.LabelRegion,
	"Canada":        lexicon.LabelRegion,
	"Canadian":      lexicon.LabelRegion,
	"Ireland":       lexicon.LabelRegion,
	"Irish":         lexicon.LabelRegion,
	"Scotland":      lexicon.LabelRegion,
	"Scottish":      lexicon.LabelRegion,
	"India":         lexicon.LabelRegion,
	"Indian":        lexicon.LabelRegion,
	"New Zealand":   lexicon.LabelRegion,
	"Southern US":   lexicon.LabelRegion,
	"Northern England": lexicon.LabelRegion,
}

// labelClassificationLower mirrors labelClassification with lowercased
// keys, so the case-insensitive fallback in classifyLabel actually
// matches the table's mixed-case region entries ("British",
// "Australia", ...) against lowercase wikitext tags.
var labelClassificationLower = func() map[string]string {
	m := make(map[string]string, len(labelClassification))
	for k, v := range labelClassification {
		m[strings.ToLower(k)] = v
	}
	return m
}()

// classifyLabel looks a tag up case-sensitively first (the table carries
// a few mixed-case region names such as "UK"), then case-insensitively.
func classifyLabel(tag string) (category string, ok bool) {
	if c, ok := labelClassification[tag]; ok {
		return c, true
	}
	c, ok := labelClassificationLower[strings.ToLower(tag)]
	return c, ok
}

// extractLabels applies spec §4.4 rule 3 against the recognized label
// templates, recording every classified tag on entry and counting
// unrecognized ones. The template's first argument is its own language
// code, consumed but never validated (spec §9).
func extractLabels(entry *lexicon.Entry, section string, counters *runstats.Counters) {
	for _, t := range findTemplatesNamed(section, labelTemplateNames...) {
		args := positionalArgs(t.Args)
		if len(args) < 1 {
			continue
		}
		for _, tag := range args[1:] {
			if labelConnectors[strings.ToLower(tag)] {
				continue
			}
			category, ok := classifyLabel(tag)
			if !ok {
				counters.Inc("extract.warning.unknown_label", 1)
				continue
			}
			entry.AddLabel(category, strings.ToLower(tag))
		}
	}
}
