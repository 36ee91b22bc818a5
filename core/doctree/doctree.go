// Package doctree provides the generic document tree the compiler pipeline
// operates on. A tree is a closed variant of three node kinds: scalar,
// sequence, and mapping. Mappings remember authored key order so compiled
// artifacts serialize deterministically and in source order.
package doctree

import (
	"bytes"
	"fmt"

	json "github.com/goccy/go-json"
)

// Kind identifies the variant of a Node.
type Kind int

// Node kind constants.
const (
	// KindScalar is a leaf value: string, bool, number, or null.
	KindScalar Kind = iota
	// KindSequence is an ordered list of child nodes.
	KindSequence
	// KindMapping is an ordered string-keyed map of child nodes.
	KindMapping
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Node is a single node in a document tree.
// Exactly one payload is populated, selected by Kind.
type Node struct {
	// Kind selects the variant.
	Kind Kind

	// Value is the scalar payload (string, bool, int64, float64, or nil).
	Value any

	// Items is the sequence payload.
	Items []*Node

	// Keys is the mapping key order.
	Keys []string

	// Fields is the mapping payload, keyed by entries of Keys.
	Fields map[string]*Node
}

// NewScalar creates a scalar node.
func NewScalar(v any) *Node {
	return &Node{Kind: KindScalar, Value: v}
}

// NewSequence creates a sequence node.
func NewSequence(items ...*Node) *Node {
	return &Node{Kind: KindSequence, Items: items}
}

// NewMapping creates an empty mapping node.
func NewMapping() *Node {
	return &Node{Kind: KindMapping, Fields: make(map[string]*Node)}
}

// Set adds or replaces a mapping field, preserving first-set key order.
func (n *Node) Set(key string, child *Node) {
	if n.Fields == nil {
		n.Fields = make(map[string]*Node)
	}
	if _, exists := n.Fields[key]; !exists {
		n.Keys = append(n.Keys, key)
	}
	n.Fields[key] = child
}

// Get returns the mapping field for key, or nil if this node is not a
// mapping or the key is absent.
func (n *Node) Get(key string) *Node {
	if n == nil || n.Kind != KindMapping {
		return nil
	}
	return n.Fields[key]
}

// Str returns the scalar string payload. ok is false for non-scalar nodes
// and for scalars holding a non-string value.
func (n *Node) Str() (string, bool) {
	if n == nil || n.Kind != KindScalar {
		return "", false
	}
	s, ok := n.Value.(string)
	return s, ok
}

// GetString returns the string value of a mapping field, or "" if absent
// or not a string scalar.
func (n *Node) GetString(key string) string {
	s, _ := n.Get(key).Str()
	return s
}

// Seq returns the sequence items, or nil for non-sequence nodes.
func (n *Node) Seq() []*Node {
	if n == nil || n.Kind != KindSequence {
		return nil
	}
	return n.Items
}

// IsEmpty reports whether the node is nil or an empty mapping/sequence/null.
func (n *Node) IsEmpty() bool {
	if n == nil {
		return true
	}
	switch n.Kind {
	case KindScalar:
		return n.Value == nil
	case KindSequence:
		return len(n.Items) == 0
	case KindMapping:
		return len(n.Keys) == 0
	default:
		return true
	}
}

// ToValue converts the tree to plain Go values (map[string]any, []any,
// scalars). Mapping key order is lost; use MarshalJSON to serialize in order.
func (n *Node) ToValue() any {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case KindScalar:
		return n.Value
	case KindSequence:
		items := make([]any, len(n.Items))
		for i, item := range n.Items {
			items[i] = item.ToValue()
		}
		return items
	case KindMapping:
		fields := make(map[string]any, len(n.Keys))
		for _, key := range n.Keys {
			fields[key] = n.Fields[key].ToValue()
		}
		return fields
	default:
		return nil
	}
}

// MarshalJSON serializes the tree, writing mapping keys in authored order.
func (n *Node) MarshalJSON() ([]byte, error) {
	if n == nil {
		return []byte("null"), nil
	}
	switch n.Kind {
	case KindScalar:
		return json.Marshal(n.Value)
	case KindSequence:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, item := range n.Items {
			if i > 0 {
				buf.WriteByte(',')
			}
			data, err := item.MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(data)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	case KindMapping:
		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, key := range n.Keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			keyData, err := json.Marshal(key)
			if err != nil {
				return nil, err
			}
			buf.Write(keyData)
			buf.WriteByte(':')
			data, err := n.Fields[key].MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(data)
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unknown node kind %d", int(n.Kind))
	}
}
