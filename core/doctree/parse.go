package doctree

import (
	"fmt"
	"math"
	"sort"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/openruleset/bindery/core/errors"
)

// FromYAML parses YAML into a document tree. Key order is preserved.
// An empty document yields a nil node.
func FromYAML(data []byte) (*Node, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, &errors.ParseError{Format: "YAML", Message: err.Error(), Err: err}
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return nil, nil
	}
	return fromYAMLNode(root.Content[0])
}

func fromYAMLNode(yn *yaml.Node) (*Node, error) {
	switch yn.Kind {
	case yaml.ScalarNode:
		var v any
		if err := yn.Decode(&v); err != nil {
			return nil, &errors.ParseError{Format: "YAML", Message: err.Error(), Err: err}
		}
		return NewScalar(normalizeScalar(v)), nil

	case yaml.SequenceNode:
		seq := NewSequence()
		for _, item := range yn.Content {
			child, err := fromYAMLNode(item)
			if err != nil {
				return nil, err
			}
			seq.Items = append(seq.Items, child)
		}
		return seq, nil

	case yaml.MappingNode:
		m := NewMapping()
		for i := 0; i+1 < len(yn.Content); i += 2 {
			keyNode, valNode := yn.Content[i], yn.Content[i+1]
			var key string
			if err := keyNode.Decode(&key); err != nil {
				return nil, &errors.ParseError{
					Format:  "YAML",
					Message: fmt.Sprintf("non-string mapping key at line %d", keyNode.Line),
					Err:     err,
				}
			}
			child, err := fromYAMLNode(valNode)
			if err != nil {
				return nil, err
			}
			m.Set(key, child)
		}
		return m, nil

	case yaml.AliasNode:
		return fromYAMLNode(yn.Alias)

	default:
		return nil, &errors.ParseError{
			Format:  "YAML",
			Message: fmt.Sprintf("unsupported node kind %d at line %d", yn.Kind, yn.Line),
		}
	}
}

// FromJSON parses JSON into a document tree. JSON objects carry no order,
// so mapping keys are sorted for determinism.
func FromJSON(data []byte) (*Node, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, &errors.ParseError{Format: "JSON", Message: err.Error(), Err: err}
	}
	return FromValue(v), nil
}

// FromValue converts plain Go values into a document tree. Map keys are
// sorted; unknown leaf types are kept as scalars verbatim.
func FromValue(v any) *Node {
	switch val := v.(type) {
	case nil:
		return NewScalar(nil)
	case []any:
		seq := NewSequence()
		for _, item := range val {
			seq.Items = append(seq.Items, FromValue(item))
		}
		return seq
	case map[string]any:
		keys := make([]string, 0, len(val))
		for key := range val {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		m := NewMapping()
		for _, key := range keys {
			m.Set(key, FromValue(val[key]))
		}
		return m
	default:
		return NewScalar(normalizeScalar(v))
	}
}

// normalizeScalar collapses the integer types yaml and json decoders
// produce so scalar comparison in tests and hashing stays stable.
func normalizeScalar(v any) any {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case uint:
		if uint64(n) <= math.MaxInt64 {
			return int64(n)
		}
		return uint64(n)
	case uint64:
		// Values past MaxInt64 keep their unsigned type; a sign flip
		// would silently corrupt the scalar.
		if n <= math.MaxInt64 {
			return int64(n)
		}
		return n
	case float32:
		return float64(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i
		}
		if f, err := n.Float64(); err == nil {
			return f
		}
		return n.String()
	default:
		return v
	}
}
