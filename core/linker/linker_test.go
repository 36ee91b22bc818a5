package linker

import (
	"strings"
	"testing"

	"github.com/openruleset/bindery/core/glossary"
	"github.com/openruleset/bindery/core/library"
)

func mustBuild(t *testing.T, entries ...*glossary.Entry) []*glossary.Entry {
	t.Helper()
	ordered, _, err := glossary.Build(entries)
	if err != nil {
		t.Fatalf("glossary.Build: %v", err)
	}
	return ordered
}

func TestRewriteSingleTerm(t *testing.T) {
	entries := mustBuild(t, &glossary.Entry{ID: "pack", Title: "Pack"})

	got := Rewrite("The pack is formed.", entries)
	want := "The ◊(pack):pack◊ is formed."
	if got != want {
		t.Errorf("Rewrite = %q, want %q", got, want)
	}
}

func TestRewritePreservesBoundaryCharacters(t *testing.T) {
	entries := mustBuild(t, &glossary.Entry{ID: "pack", Title: "Pack"})

	got := Rewrite("(Pack), pack; PACK!", entries)
	want := "(◊(Pack):pack◊), ◊(pack):pack◊; ◊(PACK):pack◊!"
	if got != want {
		t.Errorf("Rewrite = %q, want %q", got, want)
	}
}

func TestRewritePackSkaterScenario(t *testing.T) {
	// End-to-end ordering scenario: "Pack Skater" must be linked whole,
	// and the standalone "Pack" must not be re-split by the pack matcher
	// firing inside the already-linked "Pack Skater".
	entries := mustBuild(t,
		&glossary.Entry{ID: "pack", Title: "Pack"},
		&glossary.Entry{ID: "pack-skater", Title: "Pack Skater"},
	)

	got := Rewrite("The Pack Skater joined the Pack.", entries)
	want := "The ◊(Pack Skater):pack-skater◊ joined the ◊(Pack):pack◊."
	if got != want {
		t.Errorf("Rewrite = %q, want %q", got, want)
	}
}

func TestRewriteIdempotentOnCompiledText(t *testing.T) {
	entries := mustBuild(t,
		&glossary.Entry{ID: "pack", Title: "Pack"},
		&glossary.Entry{ID: "pack-skater", Title: "Pack Skater"},
	)

	once := Rewrite("The Pack Skater joined the Pack.", entries)
	twice := Rewrite(once, entries)
	if once != twice {
		t.Errorf("re-linking compiled text must be a no-op:\nonce  %q\ntwice %q", once, twice)
	}
}

func TestRewriteAdversarialMarkerInterior(t *testing.T) {
	// An entry whose term appears inside another entry's marker text must
	// not fire there: marker spans are immutable.
	entries := mustBuild(t,
		&glossary.Entry{ID: "jam", Title: "Jam"},
		&glossary.Entry{ID: "jammer", Title: "Jammer"},
	)

	got := Rewrite("The Jammer starts the Jam.", entries)
	want := "The ◊(Jammer):jammer◊ starts the ◊(Jam):jam◊."
	if got != want {
		t.Errorf("Rewrite = %q, want %q", got, want)
	}
	if strings.Contains(got, Sentinel+"("+Sentinel) {
		t.Errorf("markers must never nest: %q", got)
	}
}

func TestRewriteNoMatch(t *testing.T) {
	entries := mustBuild(t, &glossary.Entry{ID: "pack", Title: "Pack"})
	text := "Nothing to see in Packaging here."
	if got := Rewrite(text, entries); got != text {
		t.Errorf("Rewrite = %q, want unchanged", got)
	}
}

func TestRewriteEmptyInputs(t *testing.T) {
	entries := mustBuild(t, &glossary.Entry{ID: "pack", Title: "Pack"})
	if got := Rewrite("", entries); got != "" {
		t.Errorf("empty text should stay empty, got %q", got)
	}
	if got := Rewrite("some pack text", nil); got != "some pack text" {
		t.Errorf("no entries should leave text unchanged, got %q", got)
	}
}

func newLib(entries []*glossary.Entry) *library.Library {
	return &library.Library{
		Description: "A game with a pack.",
		Documents: []*library.Document{{
			ID:          "game",
			Description: "The pack forms here.",
			Sections: []*library.Section{{
				ID:          "s1",
				Description: "Watch the pack.",
				Sections: []*library.Section{{
					ID:          "s11",
					Description: "Still the pack.",
				}},
			}},
		}},
		Glossary: &library.Glossary{
			ID:      "glossary",
			Entries: entries,
		},
	}
}

func TestCompileWalksEveryDescription(t *testing.T) {
	entries := []*glossary.Entry{
		{ID: "pack", Title: "Pack", Description: "Group containing the pack leader."},
	}
	if err := glossary.Decorate(entries); err != nil {
		t.Fatal(err)
	}
	lib := newLib(entries)

	Compile(lib)

	for name, text := range map[string]string{
		"library":  lib.Description,
		"document": lib.Documents[0].Description,
		"section":  lib.Documents[0].Sections[0].Description,
		"nested":   lib.Documents[0].Sections[0].Sections[0].Description,
		"entry":    entries[0].Description,
	} {
		if !strings.Contains(text, "◊(pack):pack◊") && !strings.Contains(text, "◊(Pack):pack◊") {
			t.Errorf("%s description not linked: %q", name, text)
		}
	}
}

func TestCompileEmptyGlossaryShortCircuits(t *testing.T) {
	lib := newLib(nil)
	before := lib.Documents[0].Description
	Compile(lib)
	if lib.Documents[0].Description != before {
		t.Error("empty glossary must leave descriptions untouched")
	}
}

func TestCompileNoDocumentsShortCircuits(t *testing.T) {
	entries := []*glossary.Entry{{ID: "pack", Title: "Pack", Description: "The pack."}}
	if err := glossary.Decorate(entries); err != nil {
		t.Fatal(err)
	}
	lib := &library.Library{
		Description: "Mentions the pack.",
		Glossary:    &library.Glossary{Entries: entries},
	}

	Compile(lib)

	if lib.Description != "Mentions the pack." {
		t.Error("library without documents must short-circuit the pass")
	}
	if entries[0].Description != "The pack." {
		t.Error("entry descriptions must be untouched when short-circuited")
	}
}

func TestMark(t *testing.T) {
	if got := Mark("Pack", "pack"); got != "◊(Pack):pack◊" {
		t.Errorf("Mark = %q", got)
	}
}

func TestSplitUnpairedSentinel(t *testing.T) {
	entries := mustBuild(t, &glossary.Entry{ID: "pack", Title: "Pack"})
	// A stray sentinel with no closing pair is plain text; the pack
	// occurrence after it must still be linked.
	got := Rewrite("stray ◊ then pack", entries)
	if !strings.Contains(got, "◊(pack):pack◊") {
		t.Errorf("text after unpaired sentinel should still link: %q", got)
	}
}

func TestRewriteStraySentinelBeforeMarker(t *testing.T) {
	entries := mustBuild(t, &glossary.Entry{ID: "pack", Title: "Pack"})

	// A stray sentinel must not pair with the opening sentinel of a later
	// marker: the pair's interior is not marker-shaped, so the stray stays
	// plain and the real marker stays immutable on a second pass.
	text := "note ◊ " + Mark("Pack", "pack") + "."
	if got := Rewrite(text, entries); got != text {
		t.Errorf("re-linking must be a no-op:\nin  %q\nout %q", text, got)
	}
}

func TestRewriteTwoStraySentinels(t *testing.T) {
	entries := mustBuild(t, &glossary.Entry{ID: "pack", Title: "Pack"})

	got := Rewrite("a ◊ pack ◊ b", entries)
	want := "a ◊ ◊(pack):pack◊ ◊ b"
	if got != want {
		t.Errorf("Rewrite = %q, want %q", got, want)
	}
}
