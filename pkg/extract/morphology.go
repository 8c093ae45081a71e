// SPDX-License-Identifier: MIT

package extract

import (
	"regexp"
	"strings"

	"github.com/openword-lexicon/lexicon-core/pkg/lexicon"
)

// anyHeadingRe matches any heading line and its '=' run length, used to
// bound the Etymology subsection (spec §4.4 rule 5).
var anyHeadingRe = regexp.MustCompile(`(?m)^(=+)\s*([^=\n].*?)\s*=+\s*$`)

// etymologySection returns the body of the first "Etymology" heading
// (level 3 or deeper, possibly "Etymology 1" for multi-etymology
// entries), bounded by the next heading of equal or shallower level.
func etymologySection(section string) (string, bool) {
	locs := anyHeadingRe.FindAllStringSubmatchIndex(section, -1)
	for i, loc := range locs {
		level := loc[3] - loc[2]
		name := section[loc[4]:loc[5]]
		if !strings.HasPrefix(strings.ToLower(name), "etymology") {
			continue
		}
		start := loc[1]
		end := len(section)
		for j := i + 1; j < len(locs); j++ {
			nextLevel := locs[j][3] - locs[j][2]
			if nextLevel <= level {
				end = locs[j][0]
				break
			}
		}
		return section[start:end], true
	}
	return "", false
}

// morphologyTemplateNames are the etymology-construction template
// family recognized by spec §4.4 rule 5.
var morphologyTemplateNames = []string{
	"suffix", "prefix", "affix", "compound", "con", "confix",
	"circumfix", "surface analysis",
}

// extractMorphology applies spec §4.4 rule 5: scan the Etymology
// subsection for the construction-template family and tag the entry
// with the first recognized match.
func extractMorphology(section string) *lexicon.Morphology {
	etym, ok := etymologySection(section)
	if !ok {
		return nil
	}
	for _, t := range findTemplatesNamed(etym, morphologyTemplateNames...) {
		if m := morphologyFromTemplate(t); m != nil {
			return m
		}
	}
	return nil
}

// morphologyFromTemplate converts one recognized construction template
// into a Morphology record, or nil if it has too few parts to mean
// anything. Its first argument is its own language code, consumed like
// the other template families' (spec §9).
func morphologyFromTemplate(t template) *lexicon.Morphology {
	args := positionalArgs(t.Args)
	if len(args) < 1 {
		return nil
	}
	parts := args[1:]
	if len(parts) == 0 {
		return nil
	}

	switch strings.ToLower(t.Name) {
	case "suffix":
		if len(parts) < 2 {
			return nil
		}
		base := parts[0]
		var suffixes []string
		for _, p := range parts[1:] {
			suffixes = append(suffixes, ensureLeadingHyphen(p))
		}
		return &lexicon.Morphology{Kind: lexicon.MorphSuffixed, Base: base, Suffixes: suffixes, Components: parts}

	case "prefix":
		if len(parts) < 2 {
			return nil
		}
		base := parts[len(parts)-1]
		var prefixes []string
		for _, p := range parts[:len(parts)-1] {
			prefixes = append(prefixes, ensureTrailingHyphen(p))
		}
		return &lexicon.Morphology{Kind: lexicon.MorphPrefixed, Base: base, Prefixes: prefixes, Components: parts}

	case "circumfix":
		if len(parts) < 2 {
			return nil
		}
		m := &lexicon.Morphology{Kind: lexicon.MorphCircumfixed, Components: parts}
		if len(parts) >= 3 {
			m.Base = parts[1]
			m.Prefixes = []string{ensureTrailingHyphen(parts[0])}
			m.Suffixes = []string{ensureLeadingHyphen(parts[2])}
		} else {
			m.Prefixes = []string{ensureTrailingHyphen(parts[0])}
			m.Suffixes = []string{ensureLeadingHyphen(parts[1])}
		}
		return m

	case "con", "confix":
		m := &lexicon.Morphology{Kind: lexicon.MorphCircumfixed, Components: parts}
		switch len(parts) {
		case 2:
			m.Prefixes = []string{ensureTrailingHyphen(parts[0])}
			m.Suffixes = []string{ensureLeadingHyphen(parts[1])}
		case 3:
			m.Kind = lexicon.MorphAffixed
			m.Prefixes = []string{ensureTrailingHyphen(parts[0])}
			m.Base = parts[1]
			m.Suffixes = []string{ensureLeadingHyphen(parts[2])}
		default:
			return nil
		}
		return m

	case "compound":
		return &lexicon.Morphology{Kind: lexicon.MorphCompound, Components: parts, Interfixes: interfixesOf(parts)}

	case "affix", "surface analysis":
		m := &lexicon.Morphology{Kind: lexicon.MorphAffixed, Components: parts}
		m.Interfixes = interfixesOf(parts)
		for _, p := range parts {
			switch {
			case strings.HasPrefix(p, "-") && strings.HasSuffix(p, "-") && len(p) > 1:
				// already captured in Interfixes
			case strings.HasSuffix(p, "-"):
				m.Prefixes = append(m.Prefixes, p)
			case strings.HasPrefix(p, "-"):
				m.Suffixes = append(m.Suffixes, p)
			default:
				if m.Base == "" {
					m.Base = p
				}
			}
		}
		return m
	}
	return nil
}

// interfixesOf returns the parts that carry hyphens on both sides, such
// as "-o-" in a compound (spec §4.4 rule 5).
func interfixesOf(parts []string) []string {
	var out []string
	for _, p := range parts {
		if len(p) > 1 && strings.HasPrefix(p, "-") && strings.HasSuffix(p, "-") {
			out = append(out, p)
		}
	}
	return out
}

func ensureLeadingHyphen(s string) string {
	if strings.HasPrefix(s, "-") {
		return s
	}
	return "-" + s
}

func ensureTrailingHyphen(s string) string {
	if strings.HasSuffix(s, "-") {
		return s
	}
	return s + "-"
}
