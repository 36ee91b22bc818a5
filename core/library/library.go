// Package library defines the typed model of a compiled rules document:
// one Library holding Documents of nested Sections, an ordered Glossary,
// and an opaque Appendices tree. A Library is created once per
// compilation run, mutated in place by each pipeline stage, and consumed
// once by the exporter.
package library

import (
	"github.com/openruleset/bindery/core/doctree"
	"github.com/openruleset/bindery/core/glossary"
)

// Library is the root node of a compilation run.
type Library struct {
	// Title is the human-readable library title.
	Title string `json:"title,omitempty"`

	// Description is the library's prose description.
	Description string `json:"description,omitempty"`

	// Reference is opaque source metadata passed through to artifacts.
	Reference *doctree.Node `json:"reference,omitempty"`

	// Documents are the top-level documents, in authored order.
	Documents []*Document `json:"documents,omitempty"`

	// Appendices is an opaque pass-through tree, exported as a single
	// leaf node.
	Appendices *doctree.Node `json:"appendices,omitempty"`

	// Glossary holds the term entries after conflict-aware reordering.
	Glossary *Glossary `json:"glossary,omitempty"`
}

// Document is a single top-level document within a Library.
type Document struct {
	// ID is unique within the Library.
	ID string `json:"id"`

	// Title is the human-readable document title.
	Title string `json:"title,omitempty"`

	// Description is the document's prose description.
	Description string `json:"description,omitempty"`

	// Sections are the top-level sections, in authored order.
	Sections []*Section `json:"sections,omitempty"`
}

// Section is a node in a document's section tree. Sections own their
// children exclusively; the tree has no sharing and no cycles.
type Section struct {
	// ID is unique within its parent's sibling set, not globally.
	ID string `json:"id"`

	// Ref is the optional external-reference id carried from the source.
	Ref string `json:"ref,omitempty"`

	// Title is the human-readable section title.
	Title string `json:"title,omitempty"`

	// Description is the section's prose description.
	Description string `json:"description,omitempty"`

	// Sections are the child sections, in authored order.
	Sections []*Section `json:"sections,omitempty"`
}

// Glossary holds the ordered glossary entries.
type Glossary struct {
	// ID is the glossary's artifact id.
	ID string `json:"id"`

	// Title is the human-readable glossary title.
	Title string `json:"title,omitempty"`

	// Entries are the term entries. After the glossary build stage they
	// are in conflict-aware application order.
	Entries []*glossary.Entry `json:"entries,omitempty"`
}

// DescendantCount returns the number of strict descendants of the
// section: the sum over children of one plus the child's own count.
// Leaf sections count zero.
func (s *Section) DescendantCount() int {
	count := 0
	for _, child := range s.Sections {
		count += 1 + child.DescendantCount()
	}
	return count
}

// DescendantCount returns the number of strict descendants of the
// document across its whole section tree.
func (d *Document) DescendantCount() int {
	count := 0
	for _, sec := range d.Sections {
		count += 1 + sec.DescendantCount()
	}
	return count
}

// DescendantCount returns the glossary's entry count; entries are its
// only descendants.
func (g *Glossary) DescendantCount() int {
	if g == nil {
		return 0
	}
	return len(g.Entries)
}

// DocumentCount returns the number of strict descendants beneath the
// documents collection.
func (l *Library) DocumentCount() int {
	count := 0
	for _, doc := range l.Documents {
		count += 1 + doc.DescendantCount()
	}
	return count
}
