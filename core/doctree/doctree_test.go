package doctree

import (
	"testing"
)

func TestFromYAMLScalarKinds(t *testing.T) {
	src := []byte(`
title: Rules of Flat Track
count: 42
ratio: 1.5
active: true
nothing: null
`)
	root, err := FromYAML(src)
	if err != nil {
		t.Fatalf("FromYAML: %v", err)
	}
	if root.Kind != KindMapping {
		t.Fatalf("root kind = %v, want mapping", root.Kind)
	}

	if got := root.GetString("title"); got != "Rules of Flat Track" {
		t.Errorf("title = %q", got)
	}
	if v := root.Get("count").Value; v != int64(42) {
		t.Errorf("count = %v (%T), want int64(42)", v, v)
	}
	if v := root.Get("ratio").Value; v != 1.5 {
		t.Errorf("ratio = %v, want 1.5", v)
	}
	if v := root.Get("active").Value; v != true {
		t.Errorf("active = %v, want true", v)
	}
	if v := root.Get("nothing").Value; v != nil {
		t.Errorf("nothing = %v, want nil", v)
	}
}

func TestFromYAMLLargeUnsignedScalar(t *testing.T) {
	src := []byte("small: 42\nbig: 18446744073709551615\n")
	root, err := FromYAML(src)
	if err != nil {
		t.Fatalf("FromYAML: %v", err)
	}
	if v := root.Get("small").Value; v != int64(42) {
		t.Errorf("small = %v (%T), want int64(42)", v, v)
	}
	// Past MaxInt64 the scalar keeps its unsigned type instead of
	// wrapping to a negative int64.
	if v := root.Get("big").Value; v != uint64(18446744073709551615) {
		t.Errorf("big = %v (%T), want uint64(18446744073709551615)", v, v)
	}
}

func TestFromYAMLPreservesKeyOrder(t *testing.T) {
	src := []byte("zebra: 1\nalpha: 2\nmiddle: 3\n")
	root, err := FromYAML(src)
	if err != nil {
		t.Fatalf("FromYAML: %v", err)
	}
	want := []string{"zebra", "alpha", "middle"}
	if len(root.Keys) != len(want) {
		t.Fatalf("keys = %v", root.Keys)
	}
	for i, key := range want {
		if root.Keys[i] != key {
			t.Errorf("key[%d] = %q, want %q", i, root.Keys[i], key)
		}
	}
}

func TestFromYAMLEmptyDocument(t *testing.T) {
	root, err := FromYAML([]byte(""))
	if err != nil {
		t.Fatalf("FromYAML: %v", err)
	}
	if root != nil {
		t.Errorf("empty document should yield nil root, got %v", root)
	}
}

func TestFromYAMLSequence(t *testing.T) {
	root, err := FromYAML([]byte("- one\n- two\n- three\n"))
	if err != nil {
		t.Fatalf("FromYAML: %v", err)
	}
	items := root.Seq()
	if len(items) != 3 {
		t.Fatalf("len = %d, want 3", len(items))
	}
	if s, _ := items[1].Str(); s != "two" {
		t.Errorf("items[1] = %q", s)
	}
}

func TestFromYAMLAlias(t *testing.T) {
	src := []byte("base: &b\n  id: shared\nother: *b\n")
	root, err := FromYAML(src)
	if err != nil {
		t.Fatalf("FromYAML: %v", err)
	}
	if got := root.Get("other").GetString("id"); got != "shared" {
		t.Errorf("alias not followed, got %q", got)
	}
}

func TestFromYAMLInvalid(t *testing.T) {
	if _, err := FromYAML([]byte("a: [unclosed")); err == nil {
		t.Error("invalid YAML should fail")
	}
}

func TestFromJSON(t *testing.T) {
	root, err := FromJSON([]byte(`{"b": [1, 2], "a": "x"}`))
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	// JSON mapping keys are sorted for determinism.
	if len(root.Keys) != 2 || root.Keys[0] != "a" || root.Keys[1] != "b" {
		t.Errorf("keys = %v, want [a b]", root.Keys)
	}
	if v := root.Get("b").Seq()[0].Value; v != int64(1) {
		t.Errorf("b[0] = %v (%T), want int64(1)", v, v)
	}
}

func TestFromJSONInvalid(t *testing.T) {
	if _, err := FromJSON([]byte(`{"a":`)); err == nil {
		t.Error("invalid JSON should fail")
	}
}

func TestMarshalJSONOrdered(t *testing.T) {
	m := NewMapping()
	m.Set("zebra", NewScalar("z"))
	m.Set("alpha", NewSequence(NewScalar(int64(1)), NewScalar(nil)))

	data, err := m.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	want := `{"zebra":"z","alpha":[1,null]}`
	if string(data) != want {
		t.Errorf("MarshalJSON = %s, want %s", data, want)
	}
}

func TestSetReplacesWithoutDuplicatingKey(t *testing.T) {
	m := NewMapping()
	m.Set("k", NewScalar("first"))
	m.Set("k", NewScalar("second"))
	if len(m.Keys) != 1 {
		t.Errorf("keys = %v, want single key", m.Keys)
	}
	if got := m.GetString("k"); got != "second" {
		t.Errorf("k = %q, want second", got)
	}
}

func TestIsEmpty(t *testing.T) {
	tests := []struct {
		name string
		node *Node
		want bool
	}{
		{"nil", nil, true},
		{"null scalar", NewScalar(nil), true},
		{"string scalar", NewScalar("x"), false},
		{"empty mapping", NewMapping(), true},
		{"empty sequence", NewSequence(), true},
		{"populated sequence", NewSequence(NewScalar("a")), false},
	}
	for _, tt := range tests {
		if got := tt.node.IsEmpty(); got != tt.want {
			t.Errorf("%s: IsEmpty = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestToValue(t *testing.T) {
	m := NewMapping()
	m.Set("a", NewScalar(int64(1)))
	m.Set("b", NewSequence(NewScalar("x")))

	v, ok := m.ToValue().(map[string]any)
	if !ok {
		t.Fatalf("ToValue should produce a map, got %T", m.ToValue())
	}
	if v["a"] != int64(1) {
		t.Errorf("a = %v", v["a"])
	}
	items, ok := v["b"].([]any)
	if !ok || len(items) != 1 || items[0] != "x" {
		t.Errorf("b = %v", v["b"])
	}
}
