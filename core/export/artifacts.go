// Package export materializes a compiled Library into a file-per-node
// artifact tree with index manifests, so a consumer can page through the
// hierarchy lazily instead of loading one monolithic document.
package export

import (
	"github.com/openruleset/bindery/core/doctree"
)

// Artifact file names and subtree directories under the destination root.
const (
	RootArtifact     = "library.json"
	DocumentsDir     = "documents"
	GlossaryDir      = "glossary"
	AppendicesDir    = "appendices"
	IndexArtifact    = "index.json"
	DocumentArtifact = "document.json"
	SectionArtifact  = "section.json"
	AppendicesNodeID = "appendices"
	DocumentsNodeID  = "documents"
)

// ChildRef points an index artifact at one immediate child. It carries
// enough for a consumer to render a table of contents without fetching
// the child eagerly.
type ChildRef struct {
	// ID is the child's node id.
	ID string `json:"id"`

	// Path is the child's artifact path relative to the destination root.
	Path string `json:"path"`

	// Title is the child's human-readable title.
	Title string `json:"title,omitempty"`

	// Descendants is the child's recursive descendant count.
	Descendants int `json:"descendants"`

	// BLAKE3 is the hex hash of the child's artifact content.
	BLAKE3 string `json:"blake3,omitempty"`
}

// BuildInfo identifies one compilation run in the root artifact.
type BuildInfo struct {
	// BuildID is the unique id of this run.
	BuildID string `json:"build_id"`

	// CreatedAt is the RFC 3339 creation timestamp.
	CreatedAt string `json:"created_at"`

	// Tool names the compiler that produced the tree.
	Tool string `json:"tool"`

	// Version is the compiler version.
	Version string `json:"version"`
}

// RootNode is the root index artifact (library.json).
type RootNode struct {
	Build       BuildInfo     `json:"build"`
	Title       string        `json:"title,omitempty"`
	Description string        `json:"description,omitempty"`
	Reference   *doctree.Node `json:"reference,omitempty"`
	Children    []ChildRef    `json:"children"`
}

// DocumentsNode is the documents-level index artifact.
type DocumentsNode struct {
	ID          string     `json:"id"`
	Descendants int        `json:"descendants"`
	Children    []ChildRef `json:"children"`
}

// DocumentNode is one document's artifact. Children point at the
// document's top-level sections only; descendants are never embedded.
type DocumentNode struct {
	ID          string     `json:"id"`
	Title       string     `json:"title,omitempty"`
	Description string     `json:"description,omitempty"`
	Descendants int        `json:"descendants"`
	Children    []ChildRef `json:"children"`
}

// SectionNode is one section's artifact. Children point at immediate
// child sections only.
type SectionNode struct {
	ID          string     `json:"id"`
	Ref         string     `json:"ref,omitempty"`
	Title       string     `json:"title,omitempty"`
	Description string     `json:"description,omitempty"`
	Descendants int        `json:"descendants"`
	Children    []ChildRef `json:"children"`
}

// GlossaryNode is the glossary-level index artifact. Its descendant
// count is its entry count.
type GlossaryNode struct {
	ID          string     `json:"id"`
	Title       string     `json:"title,omitempty"`
	Descendants int        `json:"descendants"`
	Children    []ChildRef `json:"children"`
}

// EntryNode is one glossary entry's artifact. The matcher is serialized
// as its literal textual pattern, not an opaque engine object.
type EntryNode struct {
	ID          string        `json:"id"`
	Title       string        `json:"title,omitempty"`
	Aliases     []string      `json:"aliases,omitempty"`
	Description string        `json:"description,omitempty"`
	Reference   *doctree.Node `json:"reference,omitempty"`
	Pattern     string        `json:"pattern,omitempty"`
	Conflicts   []string      `json:"conflicts,omitempty"`
}

// AppendicesNode is the appendices artifact: an opaque pass-through
// treated as a single leaf with descendant count zero.
type AppendicesNode struct {
	ID          string        `json:"id"`
	Descendants int           `json:"descendants"`
	Content     *doctree.Node `json:"content,omitempty"`
}

// Record describes one written artifact, for logging and the optional
// search index.
type Record struct {
	// ID is the node id.
	ID string `json:"id"`

	// Kind is the node kind: library, documents, document, section,
	// glossary, entry, or appendices.
	Kind string `json:"kind"`

	// Title is the node title, if any.
	Title string `json:"title,omitempty"`

	// Path is the artifact path relative to the destination root.
	Path string `json:"path"`

	// Parent is the parent artifact's path, empty for the root.
	Parent string `json:"parent,omitempty"`

	// Descendants is the node's recursive descendant count.
	Descendants int `json:"descendants"`

	// BLAKE3 is the hex hash of the artifact content.
	BLAKE3 string `json:"blake3"`

	// SizeBytes is the artifact size.
	SizeBytes int `json:"size_bytes"`
}

// Result summarizes a completed export.
type Result struct {
	// Build identifies the run that produced the tree.
	Build BuildInfo

	// Artifacts is the number of files written.
	Artifacts int

	// Records describes each written artifact in write order.
	Records []Record
}
