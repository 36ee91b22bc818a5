// Package linker rewrites prose fields in place, wrapping recognized
// glossary-term occurrences with cross-reference markers.
//
// A marker has the form ◊(matched text):entry-id◊ where ◊ (U+25CA) is a
// sentinel character reserved out of prose. Markers never nest and never
// overlap: each field is split into marker and plain segments and
// matchers only ever run over the plain segments, so re-linking already
// compiled text is a no-op on marker spans by construction.
package linker

import (
	"strings"

	"github.com/openruleset/bindery/core/glossary"
	"github.com/openruleset/bindery/core/library"
)

// Sentinel bounds a cross-reference marker on both sides.
const Sentinel = "◊"

// Mark formats the cross-reference marker for a matched span of prose.
func Mark(matched, entryID string) string {
	return Sentinel + "(" + matched + "):" + entryID + Sentinel
}

// Compile rewrites every description field reachable from the library
// root: the library itself, every document, every section depth-first in
// pre-order, and finally every glossary entry's own description (so entry
// prose may reference other entries, or itself).
//
// An empty glossary or a library with no documents short-circuits the
// whole pass, leaving all descriptions untouched.
func Compile(lib *library.Library) {
	if lib.Glossary == nil || len(lib.Glossary.Entries) == 0 || len(lib.Documents) == 0 {
		return
	}
	entries := lib.Glossary.Entries

	lib.Description = Rewrite(lib.Description, entries)

	for _, doc := range lib.Documents {
		doc.Description = Rewrite(doc.Description, entries)
		for _, sec := range doc.Sections {
			compileSection(sec, entries)
		}
	}

	for _, entry := range entries {
		entry.Description = Rewrite(entry.Description, entries)
	}
}

func compileSection(sec *library.Section, entries []*glossary.Entry) {
	sec.Description = Rewrite(sec.Description, entries)
	for _, child := range sec.Sections {
		compileSection(child, entries)
	}
}

// Rewrite applies each entry's matcher over text in glossary order as a
// global, non-overlapping, left-to-right find-and-replace. Replacements
// from earlier entries become markers that later entries cannot touch;
// the plain text between markers remains visible to later matchers.
// Boundary characters around a match are preserved untouched.
func Rewrite(text string, entries []*glossary.Entry) string {
	if text == "" || len(entries) == 0 {
		return text
	}

	segs := split(text)
	for _, entry := range entries {
		if entry.Matcher == nil {
			continue
		}
		var next []segment
		for _, seg := range segs {
			if seg.marker {
				next = append(next, seg)
				continue
			}
			next = append(next, apply(seg.text, entry)...)
		}
		segs = next
	}

	var b strings.Builder
	for _, seg := range segs {
		b.WriteString(seg.text)
	}
	return b.String()
}

// segment is a run of text that is either an immutable marker or plain
// prose still open to substitution.
type segment struct {
	text   string
	marker bool
}

// split partitions text at sentinel pairs. A sentinel pair is a marker
// only when its interior parses as "(matched):id"; a stray sentinel in
// prose stays plain and never pairs with a real marker's opening
// sentinel, so the marker behind it remains protected.
func split(text string) []segment {
	var segs []segment
	plainStart, scan := 0, 0
	for {
		start := strings.Index(text[scan:], Sentinel)
		if start < 0 {
			break
		}
		start += scan
		tail := text[start+len(Sentinel):]
		end := strings.Index(tail, Sentinel)
		if end < 0 {
			break
		}
		if !isMarkerBody(tail[:end]) {
			scan = start + len(Sentinel)
			continue
		}
		if start > plainStart {
			segs = append(segs, segment{text: text[plainStart:start]})
		}
		markerEnd := start + len(Sentinel) + end + len(Sentinel)
		segs = append(segs, segment{text: text[start:markerEnd], marker: true})
		plainStart, scan = markerEnd, markerEnd
	}
	if plainStart < len(text) {
		segs = append(segs, segment{text: text[plainStart:]})
	}
	return segs
}

// isMarkerBody reports whether s is the interior of a marker: an
// open paren, the matched text, then "):" and a non-empty entry id.
func isMarkerBody(s string) bool {
	if len(s) == 0 || s[0] != '(' {
		return false
	}
	sep := strings.LastIndex(s, "):")
	return sep > 0 && sep+2 < len(s)
}

// apply runs one entry's matcher over a plain segment, returning the
// alternating plain and marker segments that replace it.
func apply(text string, entry *glossary.Entry) []segment {
	matches := entry.Matcher.FindAllIndex(text)
	if len(matches) == 0 {
		return []segment{{text: text}}
	}

	var segs []segment
	last := 0
	for _, m := range matches {
		if m[0] > last {
			segs = append(segs, segment{text: text[last:m[0]]})
		}
		segs = append(segs, segment{
			text:   Mark(text[m[0]:m[1]], entry.ID),
			marker: true,
		})
		last = m[1]
	}
	if last < len(text) {
		segs = append(segs, segment{text: text[last:]})
	}
	return segs
}
