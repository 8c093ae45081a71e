// SPDX-License-Identifier: MIT

package extract

import (
	"github.com/openword-lexicon/lexicon-core/internal/normalize"
	"github.com/openword-lexicon/lexicon-core/pkg/lexicon"
	"github.com/openword-lexicon/lexicon-core/pkg/runstats"
)

// sourceID is the single source identifier the scanner's own output
// carries (spec §3: "the scanner emits exactly one").
const sourceID = "wikt"

// Config names the target language the rules key their templates and
// categories against (the same language the filter accepted the
// section for).
type Config struct {
	TargetLanguage string
}

// Run converts one accepted title and language section into an Entry by
// composing the independent rule families of spec §4.4. Each rule
// touches only its own slice of the Entry; there is no shared state
// between rules beyond the Entry itself and the counters used for
// warnings.
func Run(title string, section *lexicon.LanguageSection, cfg Config, counters *runstats.Counters) *lexicon.Entry {
	entry := &lexicon.Entry{Word: normalize.Key(title), Sources: []string{sourceID}}
	lang := cfg.TargetLanguage
	text := section.Text

	for _, tag := range posFromHeadings(text) {
		entry.AddPOS(tag)
	}
	for _, tag := range posFromHeadTemplates(text) {
		entry.AddPOS(tag)
	}

	extractLabels(entry, text, counters)

	entry.Syllables = syllableCount(text, lang, counters)

	entry.Morphology = extractMorphology(text)

	deriveFlags(entry, title, text, lang)

	return entry
}
