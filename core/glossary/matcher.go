// Package glossary builds conflict-aware, ordered glossary entries with
// whole-word matchers from flat term definitions.
package glossary

import (
	"regexp"
	"sort"
	"strings"

	"github.com/openruleset/bindery/core/errors"
)

// Matcher recognizes a term's title or aliases as whole words, case
// insensitively. "Pack" matches "the pack forms" but not "Packaging".
type Matcher struct {
	// Terms holds the title and aliases, longest first so the compiled
	// alternation prefers the longest match at any position.
	Terms []string `json:"terms"`

	// Pattern is the literal textual form of the compiled expression.
	// This is what glossary-entry artifacts serialize.
	Pattern string `json:"pattern"`

	re *regexp.Regexp
}

// NewMatcher builds a matcher for the given terms. Empty terms are
// dropped; at least one non-empty term is required.
func NewMatcher(terms []string) (*Matcher, error) {
	kept := make([]string, 0, len(terms))
	for _, t := range terms {
		if strings.TrimSpace(t) != "" {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		return nil, errors.NewValidation("matcher", "no terms to match")
	}

	// Longest first: Go regexp alternation is leftmost-first, so this
	// makes "Pack Skater" win over "Pack" at the same start position.
	sort.SliceStable(kept, func(i, j int) bool {
		return len(kept[i]) > len(kept[j])
	})

	parts := make([]string, len(kept))
	for i, t := range kept {
		parts[i] = termPattern(t)
	}
	pattern := "(?i)(?:" + strings.Join(parts, "|") + ")"

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, errors.Wrapf(err, "compiling matcher %q", pattern)
	}

	return &Matcher{Terms: kept, Pattern: pattern, re: re}, nil
}

// termPattern escapes a term and anchors it on word boundaries. The
// boundary assertion is only attached to ends that are word characters;
// a term like "30'" ends mid-punctuation and gets no trailing anchor.
func termPattern(term string) string {
	p := regexp.QuoteMeta(term)
	runes := []rune(term)
	if isWordRune(runes[0]) {
		p = `\b` + p
	}
	if isWordRune(runes[len(runes)-1]) {
		p = p + `\b`
	}
	return p
}

func isWordRune(r rune) bool {
	return r == '_' ||
		(r >= '0' && r <= '9') ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z')
}

// Matches reports whether any term occurs as a whole word in s.
func (m *Matcher) Matches(s string) bool {
	return m.re.MatchString(s)
}

// FindAllIndex returns the byte ranges of every non-overlapping match in
// s, scanning left to right.
func (m *Matcher) FindAllIndex(s string) [][]int {
	return m.re.FindAllStringIndex(s, -1)
}
