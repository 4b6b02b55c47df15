package nlp

import (
	"regexp"
	"strings"

	"tickerpulse/internal/symbols"
)

// Detector finds tracked symbol mentions in cleaned text.
// One case-insensitive word-boundary pattern per symbol is compiled at
// construction, combining all of the symbol's aliases; substring hits inside
// longer words (e.g. "AMD" in an unrelated word) never match.
type Detector struct {
	registry *symbols.Registry
	patterns map[string]*regexp.Regexp
}

// NewDetector compiles matching patterns for every symbol in the registry
func NewDetector(registry *symbols.Registry) *Detector {
	patterns := make(map[string]*regexp.Regexp, registry.Len())
	for _, code := range registry.Symbols() {
		inst, _ := registry.Get(code)
		if len(inst.Aliases) == 0 {
			continue
		}
		quoted := make([]string, len(inst.Aliases))
		for i, alias := range inst.Aliases {
			quoted[i] = regexp.QuoteMeta(alias)
		}
		patterns[code] = regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
	}
	return &Detector{registry: registry, patterns: patterns}
}

// Detect returns the symbols mentioned in text as a sorted slice.
// Sorting makes the derived symbols field stable across re-runs, which
// downstream dedupe and display rely on. Empty text yields an empty result;
// a post can match several symbols at once.
func (d *Detector) Detect(text string) []string {
	if text == "" {
		return nil
	}
	var hits []string
	// registry.Symbols() is sorted, so hits come out in canonical order
	for _, code := range d.registry.Symbols() {
		if p, ok := d.patterns[code]; ok && p.MatchString(text) {
			hits = append(hits, code)
		}
	}
	return hits
}
