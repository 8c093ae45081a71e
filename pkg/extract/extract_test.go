// SPDX-License-Identifier: MIT

package extract

import (
	"reflect"
	"testing"

	"github.com/openword-lexicon/lexicon-core/pkg/lexicon"
	"github.com/openword-lexicon/lexicon-core/pkg/runstats"
)

func run(title, text string) (*lexicon.Entry, *runstats.Counters) {
	counters := runstats.New()
	section := &lexicon.LanguageSection{Language: "English", Text: text}
	entry := Run(title, section, Config{TargetLanguage: "English"}, counters)
	return entry, counters
}

func TestScenarioDictionary(t *testing.T) {
	// Scenario 1 from spec §8.
	entry, _ := run("dictionary", "\n===Noun===\n{{en-noun}}\n{{hyphenation|en|dic|tion|a|ry}}")
	if entry.Word != "dictionary" {
		t.Errorf("Word = %q", entry.Word)
	}
	if !reflect.DeepEqual(entry.POS, []string{"noun"}) {
		t.Errorf("POS = %v", entry.POS)
	}
	if entry.Syllables != 4 {
		t.Errorf("Syllables = %d, want 4", entry.Syllables)
	}
	if !reflect.DeepEqual(entry.Sources, []string{"wikt"}) {
		t.Errorf("Sources = %v", entry.Sources)
	}
}

func TestScenarioEncyclopediaLanguageCodeNotFiltered(t *testing.T) {
	// Scenario 2 from spec §8: the first segment "en" happens to equal
	// the language code but is a real syllable, not the pre-consumed
	// lang argument.
	entry, _ := run("encyclopedia", "\n===Noun===\n{{hyphenation|en|en|cy|clo|pe|di|a}}")
	if entry.Syllables != 6 {
		t.Errorf("Syllables = %d, want 6", entry.Syllables)
	}
}

func TestPOSFromHeadingExactWord(t *testing.T) {
	entry, _ := run("run", "\n===Verb===\nfoo")
	if !reflect.DeepEqual(entry.POS, []string{"verb"}) {
		t.Errorf("POS = %v", entry.POS)
	}
}

func TestPOSFromHeadTemplate(t *testing.T) {
	entry, _ := run("cat", "\n===Noun===\n{{head|English|noun}}")
	if !reflect.DeepEqual(entry.POS, []string{"noun"}) {
		t.Errorf("POS = %v", entry.POS)
	}
}

func TestPOSDeduplicatesAcrossRules(t *testing.T) {
	entry, _ := run("cat", "\n===Noun===\n{{en-noun}}\n{{head|English|noun}}")
	if len(entry.POS) != 1 {
		t.Errorf("POS = %v, want single noun", entry.POS)
	}
}

func TestLabelExtractionClassifiesAndDeduplicates(t *testing.T) {
	entry, counters := run("bloke", "\n===Noun===\n{{lb|English|British|informal}}\n{{lb|English|_|informal}}")
	if !entry.HasLabel(lexicon.LabelRegion, "british") {
		t.Errorf("expected region label")
	}
	if !entry.HasLabel(lexicon.LabelRegister, "informal") {
		t.Errorf("expected register label")
	}
	if len(entry.Labels[lexicon.LabelRegister]) != 1 {
		t.Errorf("expected dedup, got %v", entry.Labels[lexicon.LabelRegister])
	}
	if counters.Get("extract.warning.unknown_label") != 0 {
		t.Errorf("unexpected unknown_label count")
	}
}

func TestLabelExtractionCaseInsensitiveFallback(t *testing.T) {
	entry, counters := run("bloke", "\n===Noun===\n{{lb|English|australia|informal}}")
	if !entry.HasLabel(lexicon.LabelRegion, "australia") {
		t.Errorf("expected region label from lowercase tag matching mixed-case table entry")
	}
	if counters.Get("extract.warning.unknown_label") != 0 {
		t.Errorf("unexpected unknown_label count")
	}
}

func TestLabelExtractionCountsUnknownTag(t *testing.T) {
	_, counters := run("foo", "\n===Noun===\n{{lb|English|frobnicated}}")
	if counters.Get("extract.warning.unknown_label") != 1 {
		t.Errorf("extract.warning.unknown_label = %d, want 1", counters.Get("extract.warning.unknown_label"))
	}
}

func TestSyllableFromRhymesTemplate(t *testing.T) {
	entry, _ := run("foo", "\n===Noun===\n{{rhymes|English|uː|s=2}}")
	if entry.Syllables != 2 {
		t.Errorf("Syllables = %d, want 2", entry.Syllables)
	}
}

func TestSyllableFromCategoryMarker(t *testing.T) {
	entry, _ := run("foo", "\n===Noun===\nfoo [[Category:English 3-syllable words]]")
	if entry.Syllables != 3 {
		t.Errorf("Syllables = %d, want 3", entry.Syllables)
	}
}

func TestSyllableIncompleteHyphenationIgnored(t *testing.T) {
	entry, counters := run("foo", "\n===Noun===\n{{hyphenation|English|foobarbaz}}")
	if entry.Syllables != 0 {
		t.Errorf("Syllables = %d, want 0", entry.Syllables)
	}
	if counters.Get("extract.warning.incomplete_hyphenation") != 1 {
		t.Errorf("expected incomplete_hyphenation counter")
	}
}

func TestMorphologySuffixed(t *testing.T) {
	entry, _ := run("happiness", "\n===Noun===\n====Etymology====\n{{suffix|English|happy|ness}}")
	if entry.Morphology == nil || entry.Morphology.Kind != lexicon.MorphSuffixed {
		t.Fatalf("Morphology = %+v", entry.Morphology)
	}
	if entry.Morphology.Base != "happy" {
		t.Errorf("Base = %q", entry.Morphology.Base)
	}
	if !reflect.DeepEqual(entry.Morphology.Suffixes, []string{"-ness"}) {
		t.Errorf("Suffixes = %v", entry.Morphology.Suffixes)
	}
}

func TestMorphologyCompoundWithInterfix(t *testing.T) {
	entry, _ := run("speedometer", "\n===Noun===\n====Etymology====\n{{compound|English|speed|-o-|meter}}")
	if entry.Morphology == nil || entry.Morphology.Kind != lexicon.MorphCompound {
		t.Fatalf("Morphology = %+v", entry.Morphology)
	}
	if !reflect.DeepEqual(entry.Morphology.Interfixes, []string{"-o-"}) {
		t.Errorf("Interfixes = %v", entry.Morphology.Interfixes)
	}
}

func TestMorphologyDoesNotCrossIntoDeeperSubheading(t *testing.T) {
	// A level-4 "Etymology 1" subsection is bounded by the next heading
	// of the same or a shallower level (here "====Pronunciation====");
	// the template inside it is still found.
	text := "\n====Etymology 1====\n{{suffix|English|happy|ness}}\n====Pronunciation====\nignored\n===Noun===\nfoo"
	entry, _ := run("happiness", text)
	if entry.Morphology == nil {
		t.Fatalf("expected morphology to be found within Etymology 1")
	}
}

func TestFlagIsPhrase(t *testing.T) {
	entry, _ := run("bread and butter", "\n===Noun===\nfoo")
	if !entry.IsPhrase {
		t.Errorf("expected IsPhrase")
	}
}

func TestFlagIsProperNoun(t *testing.T) {
	entry, _ := run("Paris", "\n===Proper noun===\nfoo")
	if !entry.IsProperNoun {
		t.Errorf("expected IsProperNoun")
	}
}

func TestFlagIsInflectedFromTemplate(t *testing.T) {
	entry, _ := run("ran", "\n===Verb===\n{{past of|English|run}}")
	if !entry.IsInflected {
		t.Errorf("expected IsInflected")
	}
}

func TestFlagIsInflectedFromCategoryRequiresBracketPrefix(t *testing.T) {
	// "Category:English noun forms" without the leading "[[" must not
	// match (spec §9's substring-vs-prefix caveat, generalized).
	entry, _ := run("cats", "\n===Noun===\nSee Category:English noun forms for details.")
	if entry.IsInflected {
		t.Errorf("expected IsInflected false without literal [[Category: prefix")
	}
}

func TestFlagIsAbbreviation(t *testing.T) {
	entry, _ := run("FAQ", "\n===Noun===\n[[Category:English abbreviations]]")
	if !entry.IsAbbreviation {
		t.Errorf("expected IsAbbreviation")
	}
}
