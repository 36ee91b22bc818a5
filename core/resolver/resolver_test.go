package resolver

import (
	"testing"

	"github.com/openruleset/bindery/core/doctree"
	"github.com/openruleset/bindery/core/errors"
	"github.com/openruleset/bindery/internal/fileutil"
)

func TestParseRef(t *testing.T) {
	tests := []struct {
		in     string
		scheme string
		path   string
		ok     bool
	}{
		{"yaml:./sections/penalties.yaml", "yaml", "./sections/penalties.yaml", true},
		{"json:appendix-a.json", "json", "appendix-a.json", true},
		{"text:notes.txt", "text", "notes.txt", true},
		{"md:intro.md", "md", "intro.md", true},
		{"YAML:upper.yaml", "yaml", "upper.yaml", true},
		{"Note: the jam ends early", "", "", false},
		{"ftp:somewhere", "", "", false},
		{`C:\rules\root.yaml`, "", "", false},
		{"no reference here", "", "", false},
		{":leading-colon", "", "", false},
		{"", "", "", false},
	}
	for _, tt := range tests {
		scheme, path, _, ok := ParseRef(tt.in)
		if ok != tt.ok {
			t.Errorf("ParseRef(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			continue
		}
		if ok && (scheme != tt.scheme || path != tt.path) {
			t.Errorf("ParseRef(%q) = (%q, %q), want (%q, %q)", tt.in, scheme, path, tt.scheme, tt.path)
		}
	}
}

func TestResolveIdentityWithoutReferences(t *testing.T) {
	root, err := doctree.FromYAML([]byte(`
title: Rules
documents:
  - id: game
    description: Two teams skate counterclockwise.
`))
	if err != nil {
		t.Fatal(err)
	}

	resolved, err := New(fileutil.NewMem()).Resolve("docs", root)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	want, _ := root.MarshalJSON()
	got, _ := resolved.MarshalJSON()
	if string(got) != string(want) {
		t.Errorf("resolution should be identity without references:\ngot  %s\nwant %s", got, want)
	}
}

func TestResolveNilRoot(t *testing.T) {
	resolved, err := New(fileutil.NewMem()).Resolve("docs", nil)
	if err != nil {
		t.Fatalf("Resolve(nil): %v", err)
	}
	if resolved == nil || resolved.Kind != doctree.KindMapping || !resolved.IsEmpty() {
		t.Errorf("nil root should resolve to an empty mapping, got %v", resolved)
	}
}

func TestResolveStructuredRelativeToReferencingFile(t *testing.T) {
	mem := fileutil.NewMem()
	// The reference lives in docs/root.yaml, so appendix-a.json must be
	// looked up in docs/, not the working directory.
	mem.Files["docs/appendix-a.json"] = []byte(`{"id": "appendix-a", "title": "Appendix A"}`)

	root, _ := doctree.FromYAML([]byte("appendix: json:./appendix-a.json\n"))
	resolved, err := New(mem).Resolve("docs", root)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if got := resolved.Get("appendix").GetString("title"); got != "Appendix A" {
		t.Errorf("appendix title = %q, want Appendix A", got)
	}
}

func TestResolveTransitive(t *testing.T) {
	mem := fileutil.NewMem()
	mem.Files["docs/outer.yaml"] = []byte("title: Outer\ninner: yaml:sub/inner.yaml\n")
	// inner.yaml resolves its own references against docs/sub/.
	mem.Files["docs/sub/inner.yaml"] = []byte("note: text:note.txt\n")
	mem.Files["docs/sub/note.txt"] = []byte("verbatim text, even with yaml: inside")

	root, _ := doctree.FromYAML([]byte("body: yaml:./outer.yaml\n"))
	resolved, err := New(mem).Resolve("docs", root)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	note := resolved.Get("body").Get("inner").GetString("note")
	if note != "verbatim text, even with yaml: inside" {
		t.Errorf("note = %q", note)
	}
}

func TestResolveRawText(t *testing.T) {
	mem := fileutil.NewMem()
	mem.Files["docs/blurb.md"] = []byte("# Heading\n\nyaml:not-a-reference.yaml\n")

	root, _ := doctree.FromYAML([]byte("description: md:blurb.md\n"))
	resolved, err := New(mem).Resolve("docs", root)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	// Raw targets are substituted verbatim with no further resolution.
	if got := resolved.GetString("description"); got != "# Heading\n\nyaml:not-a-reference.yaml\n" {
		t.Errorf("description = %q", got)
	}
}

func TestResolveMissingTargetFatal(t *testing.T) {
	root, _ := doctree.FromYAML([]byte("body: yaml:missing.yaml\n"))
	_, err := New(fileutil.NewMem()).Resolve("docs", root)
	if err == nil {
		t.Fatal("missing reference target should abort resolution")
	}
	var ioErr *errors.IOError
	if !errors.As(err, &ioErr) {
		t.Errorf("want IOError, got %T: %v", err, err)
	}
}

func TestResolveMalformedTargetFatal(t *testing.T) {
	mem := fileutil.NewMem()
	mem.Files["docs/bad.json"] = []byte(`{"unclosed":`)

	root, _ := doctree.FromYAML([]byte("body: json:bad.json\n"))
	_, err := New(mem).Resolve("docs", root)
	if err == nil {
		t.Fatal("malformed structured target should abort resolution")
	}
	var pe *errors.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("want ParseError, got %T: %v", err, err)
	}
	if pe.Path != "docs/bad.json" {
		t.Errorf("ParseError path = %q, want docs/bad.json", pe.Path)
	}
}

func TestResolveCycleDetected(t *testing.T) {
	mem := fileutil.NewMem()
	mem.Files["docs/a.yaml"] = []byte("next: yaml:b.yaml\n")
	mem.Files["docs/b.yaml"] = []byte("next: yaml:a.yaml\n")

	root, _ := doctree.FromYAML([]byte("start: yaml:a.yaml\n"))
	_, err := New(mem).Resolve("docs", root)
	if err == nil {
		t.Fatal("reference cycle should fail, not diverge")
	}
	if !errors.Is(err, errors.ErrCycle) {
		t.Errorf("want ErrCycle, got %v", err)
	}
	var ce *errors.CycleError
	if errors.As(err, &ce) {
		if ce.Path != "docs/a.yaml" {
			t.Errorf("cycle path = %q, want docs/a.yaml", ce.Path)
		}
	} else {
		t.Errorf("want CycleError, got %T", err)
	}
}

func TestResolveSelfCycleDetected(t *testing.T) {
	mem := fileutil.NewMem()
	mem.Files["docs/self.yaml"] = []byte("again: yaml:self.yaml\n")

	root, _ := doctree.FromYAML([]byte("start: yaml:self.yaml\n"))
	_, err := New(mem).Resolve("docs", root)
	if !errors.Is(err, errors.ErrCycle) {
		t.Errorf("self-referencing file should produce ErrCycle, got %v", err)
	}
}

func TestResolveRepeatedReferenceIsNotACycle(t *testing.T) {
	mem := fileutil.NewMem()
	mem.Files["docs/shared.yaml"] = []byte("id: shared\n")

	// Same target referenced twice in sibling positions: legal, a cycle
	// is only a revisit while the path is still in flight.
	root, _ := doctree.FromYAML([]byte("a: yaml:shared.yaml\nb: yaml:shared.yaml\n"))
	resolved, err := New(mem).Resolve("docs", root)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved.Get("a").GetString("id") != "shared" || resolved.Get("b").GetString("id") != "shared" {
		t.Error("both sibling references should resolve")
	}
}

func TestResolveInsideSequences(t *testing.T) {
	mem := fileutil.NewMem()
	mem.Files["docs/one.yaml"] = []byte("id: one\n")

	root, _ := doctree.FromYAML([]byte("items:\n  - yaml:one.yaml\n  - plain scalar\n"))
	resolved, err := New(mem).Resolve("docs", root)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	items := resolved.Get("items").Seq()
	if len(items) != 2 {
		t.Fatalf("len(items) = %d", len(items))
	}
	if items[0].GetString("id") != "one" {
		t.Error("sequence reference should resolve in place")
	}
	if s, _ := items[1].Str(); s != "plain scalar" {
		t.Error("non-reference scalar should pass through unchanged")
	}
}
