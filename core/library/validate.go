package library

import (
	"fmt"
	"strings"

	"github.com/openruleset/bindery/core/errors"
)

// reservedIDs are names the exporter itself uses for artifact files and
// top-level nodes. An authored node with one of these ids would collide
// with (or shadow) an index manifest on disk.
var reservedIDs = map[string]bool{
	"index":    true,
	"document": true,
	"section":  true,
	"library":  true,
}

// checkID validates that id can serve as a single path segment of an
// artifact path: non-empty, no separators, no dot traversal, and not one
// of the exporter's reserved names.
func checkID(path, id string) []error {
	if id == "" {
		return []error{errors.NewValidation(path, "id is required")}
	}
	if id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return []error{errors.NewValidation(path,
			fmt.Sprintf("id %q is not a usable path segment", id))}
	}
	if reservedIDs[id] {
		return []error{errors.NewValidation(path,
			fmt.Sprintf("id %q is reserved for artifact files", id))}
	}
	return nil
}

// Validate checks structural invariants of a built Library and returns
// every violation with its node path: ids present, path-safe, and not
// reserved; document ids unique within the library; section ids unique
// within their sibling set; glossary entry ids unique.
func Validate(lib *Library) []error {
	var errs []error

	docIDs := make(map[string]bool)
	for i, doc := range lib.Documents {
		path := fmt.Sprintf("documents[%d]", i)
		errs = append(errs, checkID(path, doc.ID)...)
		if doc.ID != "" && docIDs[doc.ID] {
			errs = append(errs, errors.NewValidation(path,
				fmt.Sprintf("duplicate document id %q", doc.ID)))
		}
		docIDs[doc.ID] = true

		errs = append(errs, validateSections(path, doc.Sections)...)
	}

	if lib.Glossary != nil {
		entryIDs := make(map[string]bool)
		for i, entry := range lib.Glossary.Entries {
			path := fmt.Sprintf("glossary.entries[%d]", i)
			errs = append(errs, checkID(path, entry.ID)...)
			if entry.ID != "" && entryIDs[entry.ID] {
				errs = append(errs, errors.NewValidation(path,
					fmt.Sprintf("duplicate glossary entry id %q", entry.ID)))
			}
			entryIDs[entry.ID] = true

			if entry.Title == "" && len(entry.Aliases) == 0 {
				errs = append(errs, errors.NewValidation(path,
					"entry needs a title or at least one alias"))
			}
		}
	}

	return errs
}

// validateSections checks one sibling set and recurses. Section ids need
// only be unique among siblings, not globally.
func validateSections(parent string, sections []*Section) []error {
	var errs []error
	siblingIDs := make(map[string]bool)
	for i, sec := range sections {
		path := fmt.Sprintf("%s.sections[%d]", parent, i)
		errs = append(errs, checkID(path, sec.ID)...)
		if sec.ID != "" && siblingIDs[sec.ID] {
			errs = append(errs, errors.NewValidation(path,
				fmt.Sprintf("duplicate sibling section id %q", sec.ID)))
		}
		siblingIDs[sec.ID] = true

		errs = append(errs, validateSections(path, sec.Sections)...)
	}
	return errs
}
