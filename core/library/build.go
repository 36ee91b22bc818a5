package library

import (
	"github.com/openruleset/bindery/core/doctree"
	"github.com/openruleset/bindery/core/glossary"
)

// Default identity for a glossary authored without one.
const (
	DefaultGlossaryID    = "glossary"
	DefaultGlossaryTitle = "Glossary"
)

// Build constructs a Library from a fully resolved document tree.
// Absent fields become zero values; shape errors are deferred to
// Validate so a single pass can report them all with paths.
func Build(root *doctree.Node) *Library {
	lib := &Library{
		Title:       root.GetString("title"),
		Description: root.GetString("description"),
		Reference:   root.Get("reference"),
		Appendices:  root.Get("appendices"),
	}

	for _, docNode := range root.Get("documents").Seq() {
		lib.Documents = append(lib.Documents, buildDocument(docNode))
	}

	if glossNode := root.Get("glossary"); glossNode != nil {
		lib.Glossary = buildGlossary(glossNode)
	}

	return lib
}

func buildDocument(node *doctree.Node) *Document {
	doc := &Document{
		ID:          node.GetString("id"),
		Title:       node.GetString("title"),
		Description: node.GetString("description"),
	}
	for _, secNode := range node.Get("sections").Seq() {
		doc.Sections = append(doc.Sections, buildSection(secNode))
	}
	return doc
}

func buildSection(node *doctree.Node) *Section {
	sec := &Section{
		ID:          node.GetString("id"),
		Ref:         node.GetString("ref"),
		Title:       node.GetString("title"),
		Description: node.GetString("description"),
	}
	for _, child := range node.Get("sections").Seq() {
		sec.Sections = append(sec.Sections, buildSection(child))
	}
	return sec
}

func buildGlossary(node *doctree.Node) *Glossary {
	gloss := &Glossary{
		ID:    node.GetString("id"),
		Title: node.GetString("title"),
	}
	if gloss.ID == "" {
		gloss.ID = DefaultGlossaryID
	}
	if gloss.Title == "" {
		gloss.Title = DefaultGlossaryTitle
	}

	for _, entryNode := range node.Get("entries").Seq() {
		entry := &glossary.Entry{
			ID:          entryNode.GetString("id"),
			Title:       entryNode.GetString("title"),
			Description: entryNode.GetString("description"),
			Reference:   entryNode.Get("reference"),
		}
		for _, aliasNode := range entryNode.Get("aliases").Seq() {
			if alias, ok := aliasNode.Str(); ok {
				entry.Aliases = append(entry.Aliases, alias)
			}
		}
		gloss.Entries = append(gloss.Entries, entry)
	}
	return gloss
}
