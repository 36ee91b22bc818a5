package glossary

import (
	"fmt"
	"sort"
	"strings"

	"github.com/openruleset/bindery/core/doctree"
	"github.com/openruleset/bindery/core/errors"
)

// Entry is a defined term: a canonical title, optional aliases, and a
// prose description linkable from any other text field. After Decorate it
// carries its matcher and conflicts; after Order the entry list is in
// application order and entries are not mutated again except for in-place
// description rewriting during link compilation.
type Entry struct {
	// ID is the stable cross-reference key.
	ID string `json:"id"`

	// Title is the canonical term text.
	Title string `json:"title"`

	// Aliases are alternative spellings recognized alongside the title.
	Aliases []string `json:"aliases,omitempty"`

	// Description is the term's prose definition.
	Description string `json:"description,omitempty"`

	// Reference is opaque source metadata passed through to artifacts.
	Reference *doctree.Node `json:"reference,omitempty"`

	// Matcher recognizes this entry's title and aliases in prose.
	Matcher *Matcher `json:"matcher,omitempty"`

	// Conflicts lists ids of other entries whose own title or aliases
	// this entry's matcher would also match.
	Conflicts []string `json:"conflicts,omitempty"`
}

// Terms returns the entry's title and aliases.
func (e *Entry) Terms() []string {
	terms := make([]string, 0, 1+len(e.Aliases))
	if e.Title != "" {
		terms = append(terms, e.Title)
	}
	terms = append(terms, e.Aliases...)
	return terms
}

// Decorate builds each entry's matcher and detects pairwise conflicts.
// Entry E conflicts with entry F when E's matcher fires on F's own title
// or alias text, e.g. a generic "Pack" matching inside "Pack Skater".
func Decorate(entries []*Entry) error {
	for _, e := range entries {
		m, err := NewMatcher(e.Terms())
		if err != nil {
			return errors.Wrapf(err, "glossary entry %q", e.ID)
		}
		e.Matcher = m
	}

	for _, e := range entries {
		for _, f := range entries {
			if e == f {
				continue
			}
			for _, term := range f.Terms() {
				if e.Matcher.Matches(term) {
					e.Conflicts = append(e.Conflicts, f.ID)
					break
				}
			}
		}
		sort.Strings(e.Conflicts)
	}
	return nil
}

// Order returns the entries in application order. The order is an
// explicit partial order resolved by topological sort: whenever E's
// matcher also fires on F's defining text, F must apply before E, so the
// more distinctive term is substituted before the generic one can swallow
// part of it. Ties break by id. A genuine overlap cycle does not fail the
// compile: the cycle's members are appended in id order and a warning is
// returned for each cycle.
func Order(entries []*Entry) ([]*Entry, []string) {
	byID := make(map[string]*Entry, len(entries))
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		byID[e.ID] = e
		ids = append(ids, e.ID)
	}
	sort.Strings(ids)

	// e.Conflicts holds entries that must apply before e.
	indegree := make(map[string]int, len(entries))
	dependents := make(map[string][]string, len(entries))
	for _, e := range entries {
		for _, before := range e.Conflicts {
			if _, known := byID[before]; !known {
				continue
			}
			indegree[e.ID]++
			dependents[before] = append(dependents[before], e.ID)
		}
	}

	ordered := make([]*Entry, 0, len(entries))
	placed := make(map[string]bool, len(entries))

	ready := make([]string, 0, len(ids))
	for _, id := range ids {
		if indegree[id] == 0 {
			ready = append(ready, id)
		}
	}

	for len(ready) > 0 {
		// ready stays sorted: ids were inserted in order and appended
		// dependents are re-sorted below.
		id := ready[0]
		ready = ready[1:]
		ordered = append(ordered, byID[id])
		placed[id] = true

		for _, dep := range dependents[id] {
			indegree[dep]--
			if indegree[dep] == 0 {
				ready = append(ready, dep)
			}
		}
		sort.Strings(ready)
	}

	var warnings []string
	if len(ordered) < len(entries) {
		remaining := make([]string, 0, len(entries)-len(ordered))
		for _, id := range ids {
			if !placed[id] {
				remaining = append(remaining, id)
			}
		}
		warnings = append(warnings, fmt.Sprintf(
			"glossary overlap cycle among entries [%s]; falling back to id order for these",
			strings.Join(remaining, ", ")))
		for _, id := range remaining {
			ordered = append(ordered, byID[id])
		}
	}

	return ordered, warnings
}

// Build decorates and orders entries in one step.
func Build(entries []*Entry) ([]*Entry, []string, error) {
	if err := Decorate(entries); err != nil {
		return nil, nil, err
	}
	ordered, warnings := Order(entries)
	return ordered, warnings, nil
}
