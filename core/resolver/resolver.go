// Package resolver inlines external references into a document tree.
//
// A string scalar of the form "scheme:path" is a reference to externally
// stored content. Structured schemes (yaml, json) load and parse the
// target, then resolve it recursively, so a referenced file may itself
// reference further files. Raw schemes (text, md) substitute the target's
// content verbatim. Paths resolve relative to the directory of the file
// that contained the reference, never the process working directory.
package resolver

import (
	"path/filepath"
	"strings"

	"github.com/openruleset/bindery/core/doctree"
	"github.com/openruleset/bindery/core/errors"
	"github.com/openruleset/bindery/internal/fileutil"
)

// RefKind classifies a reference scheme.
type RefKind int

const (
	// RefStructured targets are parsed and recursively resolved.
	RefStructured RefKind = iota
	// RefRaw targets are substituted verbatim as text.
	RefRaw
)

// schemes maps recognized scheme tokens to their kind.
var schemes = map[string]RefKind{
	"yaml": RefStructured,
	"json": RefStructured,
	"text": RefRaw,
	"md":   RefRaw,
}

// ParseRef splits a scalar string into scheme and path. ok is false when
// the string is not a recognized reference: no colon, a non-alphabetic
// prefix, or an unregistered scheme (so prose like "Note: x" and Windows
// drive paths pass through as literal scalars).
func ParseRef(s string) (scheme, path string, kind RefKind, ok bool) {
	prefix, rest, found := strings.Cut(s, ":")
	if !found || prefix == "" {
		return "", "", 0, false
	}
	for _, r := range prefix {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return "", "", 0, false
		}
	}
	kind, registered := schemes[strings.ToLower(prefix)]
	if !registered {
		return "", "", 0, false
	}
	return strings.ToLower(prefix), rest, kind, true
}

// Resolver inlines references using a byte-oriented reader.
type Resolver struct {
	fs fileutil.Reader
}

// New creates a Resolver reading targets through fs.
func New(fs fileutil.Reader) *Resolver {
	return &Resolver{fs: fs}
}

// Resolve returns a fully inlined copy of root with no remaining reference
// scalars. A nil root resolves to an empty mapping. Revisiting a reference
// path that is still being resolved fails with a CycleError.
func (r *Resolver) Resolve(baseDir string, root *doctree.Node) (*doctree.Node, error) {
	if root == nil {
		return doctree.NewMapping(), nil
	}
	st := &state{inflight: make(map[string]bool)}
	return r.resolve(baseDir, root, st)
}

// state tracks reference paths currently being resolved, so a chain of
// structured references that loops back fails instead of diverging.
type state struct {
	inflight map[string]bool
	chain    []string
}

func (r *Resolver) resolve(dir string, node *doctree.Node, st *state) (*doctree.Node, error) {
	switch node.Kind {
	case doctree.KindScalar:
		s, isString := node.Str()
		if !isString {
			return node, nil
		}
		scheme, path, kind, ok := ParseRef(s)
		if !ok {
			return node, nil
		}
		return r.load(dir, scheme, path, kind, st)

	case doctree.KindSequence:
		out := doctree.NewSequence()
		for _, item := range node.Items {
			resolved, err := r.resolve(dir, item, st)
			if err != nil {
				return nil, err
			}
			out.Items = append(out.Items, resolved)
		}
		return out, nil

	case doctree.KindMapping:
		out := doctree.NewMapping()
		for _, key := range node.Keys {
			resolved, err := r.resolve(dir, node.Fields[key], st)
			if err != nil {
				return nil, err
			}
			out.Set(key, resolved)
		}
		return out, nil

	default:
		return nil, errors.Wrapf(errors.ErrInternal, "unknown node kind %v", node.Kind)
	}
}

func (r *Resolver) load(dir, scheme, path string, kind RefKind, st *state) (*doctree.Node, error) {
	target := filepath.Join(dir, path)

	if kind == RefRaw {
		content, err := r.fs.ReadFile(target)
		if err != nil {
			return nil, err
		}
		return doctree.NewScalar(string(content)), nil
	}

	if st.inflight[target] {
		return nil, errors.NewCycle(target, append([]string(nil), st.chain...))
	}

	content, err := r.fs.ReadFile(target)
	if err != nil {
		return nil, err
	}

	var parsed *doctree.Node
	switch scheme {
	case "json":
		parsed, err = doctree.FromJSON(content)
	default:
		parsed, err = doctree.FromYAML(content)
	}
	if err != nil {
		var pe *errors.ParseError
		if errors.As(err, &pe) && pe.Path == "" {
			pe.Path = target
		}
		return nil, err
	}
	if parsed == nil {
		return doctree.NewMapping(), nil
	}

	st.inflight[target] = true
	st.chain = append(st.chain, target)
	resolved, err := r.resolve(filepath.Dir(target), parsed, st)
	st.chain = st.chain[:len(st.chain)-1]
	delete(st.inflight, target)
	if err != nil {
		return nil, err
	}
	return resolved, nil
}
