package export

import (
	"encoding/hex"
	"path"
	"path/filepath"

	json "github.com/goccy/go-json"
	"github.com/zeebo/blake3"

	"github.com/openruleset/bindery/core/doctree"
	"github.com/openruleset/bindery/core/errors"
	"github.com/openruleset/bindery/core/glossary"
	"github.com/openruleset/bindery/core/library"
	"github.com/openruleset/bindery/internal/fileutil"
	"github.com/openruleset/bindery/internal/logging"
)

// Exporter writes artifact trees through a byte-oriented writer.
type Exporter struct {
	w fileutil.Writer
}

// New creates an Exporter writing through w.
func New(w fileutil.Writer) *Exporter {
	return &Exporter{w: w}
}

// Write clears dest, then materializes lib beneath it: one artifact per
// document, section, and glossary entry, plus index artifacts at the
// documents, glossary, appendices, and library levels. Children are
// written before their parent so every index embeds its children's
// content hashes. Returns the write records in order.
func (e *Exporter) Write(dest string, lib *library.Library, build BuildInfo) (*Result, error) {
	if err := fileutil.ClearDir(e.w, dest); err != nil {
		return nil, err
	}

	res := &Result{Build: build}

	docsRef, err := e.writeDocuments(dest, lib, res)
	if err != nil {
		return nil, err
	}

	glossRef, err := e.writeGlossary(dest, lib.Glossary, res)
	if err != nil {
		return nil, err
	}

	appendicesRef, err := e.writeAppendices(dest, lib.Appendices, res)
	if err != nil {
		return nil, err
	}

	root := RootNode{
		Build:       build,
		Title:       lib.Title,
		Description: lib.Description,
		Reference:   lib.Reference,
		Children:    []ChildRef{docsRef, appendicesRef, glossRef},
	}
	if _, err := e.writeArtifact(dest, RootArtifact, "", &root, Record{
		ID:          "library",
		Kind:        "library",
		Title:       lib.Title,
		// Sum over the three child indexes of one plus each child's count.
		Descendants: lib.DocumentCount() + lib.Glossary.DescendantCount() + 3,
	}, res); err != nil {
		return nil, err
	}

	return res, nil
}

func (e *Exporter) writeDocuments(dest string, lib *library.Library, res *Result) (ChildRef, error) {
	indexPath := path.Join(DocumentsDir, IndexArtifact)

	var children []ChildRef
	for _, doc := range lib.Documents {
		ref, err := e.writeDocument(dest, indexPath, doc, res)
		if err != nil {
			return ChildRef{}, err
		}
		children = append(children, ref)
	}

	node := DocumentsNode{
		ID:          DocumentsNodeID,
		Descendants: lib.DocumentCount(),
		Children:    children,
	}
	return e.writeArtifact(dest, indexPath, RootArtifact, &node, Record{
		ID:          DocumentsNodeID,
		Kind:        "documents",
		Descendants: node.Descendants,
	}, res)
}

func (e *Exporter) writeDocument(dest, parent string, doc *library.Document, res *Result) (ChildRef, error) {
	docPath := path.Join(DocumentsDir, doc.ID, DocumentArtifact)

	var children []ChildRef
	for _, sec := range doc.Sections {
		ref, err := e.writeSection(dest, docPath, path.Join(DocumentsDir, doc.ID), sec, res)
		if err != nil {
			return ChildRef{}, err
		}
		children = append(children, ref)
	}

	node := DocumentNode{
		ID:          doc.ID,
		Title:       doc.Title,
		Description: doc.Description,
		Descendants: doc.DescendantCount(),
		Children:    children,
	}
	return e.writeArtifact(dest, docPath, parent, &node, Record{
		ID:          doc.ID,
		Kind:        "document",
		Title:       doc.Title,
		Descendants: node.Descendants,
	}, res)
}

// writeSection writes sec and its subtree, nested under a path keyed by
// ancestor ids. Children are written first, bottom-up, so their counts
// and hashes are final before the parent artifact is composed.
func (e *Exporter) writeSection(dest, parent, dir string, sec *library.Section, res *Result) (ChildRef, error) {
	secDir := path.Join(dir, sec.ID)
	secPath := path.Join(secDir, SectionArtifact)

	var children []ChildRef
	for _, child := range sec.Sections {
		ref, err := e.writeSection(dest, secPath, secDir, child, res)
		if err != nil {
			return ChildRef{}, err
		}
		children = append(children, ref)
	}

	node := SectionNode{
		ID:          sec.ID,
		Ref:         sec.Ref,
		Title:       sec.Title,
		Description: sec.Description,
		Descendants: sec.DescendantCount(),
		Children:    children,
	}
	return e.writeArtifact(dest, secPath, parent, &node, Record{
		ID:          sec.ID,
		Kind:        "section",
		Title:       sec.Title,
		Descendants: node.Descendants,
	}, res)
}

func (e *Exporter) writeGlossary(dest string, gloss *library.Glossary, res *Result) (ChildRef, error) {
	indexPath := path.Join(GlossaryDir, IndexArtifact)

	node := GlossaryNode{
		ID:    library.DefaultGlossaryID,
		Title: library.DefaultGlossaryTitle,
	}
	var entries []*glossary.Entry
	if gloss != nil {
		node.ID = gloss.ID
		node.Title = gloss.Title
		entries = gloss.Entries
	}

	for _, entry := range entries {
		ref, err := e.writeEntry(dest, indexPath, entry, res)
		if err != nil {
			return ChildRef{}, err
		}
		node.Children = append(node.Children, ref)
	}
	node.Descendants = len(entries)

	return e.writeArtifact(dest, indexPath, RootArtifact, &node, Record{
		ID:          node.ID,
		Kind:        "glossary",
		Title:       node.Title,
		Descendants: node.Descendants,
	}, res)
}

func (e *Exporter) writeEntry(dest, parent string, entry *glossary.Entry, res *Result) (ChildRef, error) {
	entryPath := path.Join(GlossaryDir, entry.ID+".json")

	node := EntryNode{
		ID:          entry.ID,
		Title:       entry.Title,
		Aliases:     entry.Aliases,
		Description: entry.Description,
		Reference:   entry.Reference,
		Conflicts:   entry.Conflicts,
	}
	if entry.Matcher != nil {
		node.Pattern = entry.Matcher.Pattern
	}
	return e.writeArtifact(dest, entryPath, parent, &node, Record{
		ID:    entry.ID,
		Kind:  "entry",
		Title: entry.Title,
	}, res)
}

// writeAppendices writes the opaque appendices pass-through as a single
// leaf artifact with a fixed descendant count of zero.
func (e *Exporter) writeAppendices(dest string, appendices *doctree.Node, res *Result) (ChildRef, error) {
	indexPath := path.Join(AppendicesDir, IndexArtifact)

	node := AppendicesNode{ID: AppendicesNodeID, Content: appendices}
	return e.writeArtifact(dest, indexPath, RootArtifact, &node, Record{
		ID:   AppendicesNodeID,
		Kind: "appendices",
	}, res)
}

// writeArtifact marshals node, writes it at relPath under dest, records
// it, and returns the ChildRef a parent index should embed.
func (e *Exporter) writeArtifact(dest, relPath, parent string, node any, rec Record, res *Result) (ChildRef, error) {
	data, err := json.MarshalIndent(node, "", "  ")
	if err != nil {
		return ChildRef{}, errors.Wrapf(err, "marshaling artifact %s", relPath)
	}
	data = append(data, '\n')

	if err := e.w.WriteFile(filepath.Join(dest, filepath.FromSlash(relPath)), data); err != nil {
		return ChildRef{}, err
	}

	sum := blake3.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	rec.Path = relPath
	rec.Parent = parent
	rec.BLAKE3 = hash
	rec.SizeBytes = len(data)
	res.Records = append(res.Records, rec)
	res.Artifacts++

	logging.ArtifactWritten(rec.Kind, relPath, rec.SizeBytes)

	return ChildRef{
		ID:          rec.ID,
		Path:        relPath,
		Title:       rec.Title,
		Descendants: rec.Descendants,
		BLAKE3:      hash,
	}, nil
}
