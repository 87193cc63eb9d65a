package classifier

import (
	"strings"

	ahocorasick "github.com/cloudflare/ahocorasick"
)

// matcher wraps an Aho-Corasick automaton for one keyword category.
// Matching is substring-based over lower-cased text; patterns are stems, so
// a single entry covers inflected forms.
type matcher struct {
	ac       *ahocorasick.Matcher
	patterns []string
}

func newMatcher(patterns []string) *matcher {
	normalized := make([]string, 0, len(patterns))
	for _, p := range patterns {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		normalized = append(normalized, p)
	}

	m := &matcher{patterns: normalized}
	if len(normalized) > 0 {
		m.ac = ahocorasick.NewStringMatcher(normalized)
	}
	return m
}

// hits returns the distinct patterns present in text.
func (m *matcher) hits(text string) []string {
	if m.ac == nil || text == "" {
		return nil
	}

	indices := m.ac.Match([]byte(text))
	if len(indices) == 0 {
		return nil
	}

	found := make([]string, 0, len(indices))
	for _, idx := range indices {
		if idx >= 0 && idx < len(m.patterns) {
			found = append(found, m.patterns[idx])
		}
	}
	return found
}

// count returns the total number of occurrences across all patterns, not
// just the number of distinct patterns. The automaton reports each pattern
// once; occurrences are then counted per hit.
func (m *matcher) count(text string) int {
	total := 0
	for _, p := range m.hits(text) {
		total += strings.Count(text, p)
	}
	return total
}

// matched reports whether any pattern occurs in text.
func (m *matcher) matched(text string) bool {
	if m.ac == nil || text == "" {
		return false
	}
	return len(m.ac.Match([]byte(text))) > 0
}
