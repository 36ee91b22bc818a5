// Command bindery compiles a hand-authored rules document into a
// normalized artifact tree: one JSON file per node, ready for lazy
// consumption by readers and search tooling.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/openruleset/bindery/core/compiler"
	"github.com/openruleset/bindery/core/glossary"
	"github.com/openruleset/bindery/core/index"
	"github.com/openruleset/bindery/core/library"
	"github.com/openruleset/bindery/core/resolver"
	"github.com/openruleset/bindery/internal/archive"
	"github.com/openruleset/bindery/internal/fileutil"
	"github.com/openruleset/bindery/internal/logging"
)

const version = "0.1.0"

// CLI defines the command-line interface for bindery.
var CLI struct {
	// Global flags
	LogLevel  string `name:"log-level" default:"info" help:"Log level (debug, info, warn, error)"`
	LogFormat string `name:"log-format" default:"text" help:"Log format (text, json)"`

	Compile  CompileCmd  `cmd:"" help:"Compile a rules document into an artifact tree"`
	Pack     PackCmd     `cmd:"" help:"Pack an artifact tree into a distributable archive"`
	Glossary GlossaryCmd `cmd:"" help:"Show the resolved glossary application order"`
	Version  VersionCmd  `cmd:"" help:"Print version information"`
}

// CompileCmd compiles a rules document into an artifact tree.
type CompileCmd struct {
	In      string `arg:"" help:"Root source document (YAML)" type:"existingfile"`
	Out     string `required:"" help:"Destination directory for the artifact tree" type:"path"`
	IndexDB string `name:"index-db" help:"Also write a SQLite index of the artifacts" type:"path"`
}

func (c *CompileCmd) Run() error {
	res, err := compiler.Run(compiler.Options{
		Input:   c.In,
		Output:  c.Out,
		Tool:    "bindery",
		Version: version,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Compiled: %s\n", c.In)
	fmt.Printf("  Build: %s\n", res.BuildID)
	fmt.Printf("  Documents: %d\n", len(res.Library.Documents))
	fmt.Printf("  Artifacts: %d\n", res.Export.Artifacts)
	fmt.Printf("  Duration: %v\n", res.Duration)
	for _, w := range res.Warnings {
		fmt.Printf("  Warning: %s\n", w)
	}

	if c.IndexDB != "" {
		if err := index.Write(c.IndexDB, res.Export.Build, res.Export.Records); err != nil {
			return fmt.Errorf("writing index: %w", err)
		}
		fmt.Printf("  Index: %s (%d rows)\n", c.IndexDB, len(res.Export.Records))
	}
	return nil
}

// PackCmd packs a compiled artifact tree into a tar.gz or tar.xz bundle.
type PackCmd struct {
	Tree string `arg:"" help:"Compiled artifact tree directory" type:"existingdir"`
	Out  string `required:"" help:"Output archive path (.tar.gz or .tar.xz)" type:"path"`
}

func (c *PackCmd) Run() error {
	if err := archive.CreateFromPath(c.Tree, c.Out); err != nil {
		return err
	}
	fmt.Printf("Packed: %s\n", c.Out)
	fmt.Printf("  Format: %s\n", archive.DetectFormat(c.Out))
	return nil
}

// GlossaryCmd resolves a document's glossary and prints the entries in
// application order, with each entry's match pattern and the entries it
// must yield to.
type GlossaryCmd struct {
	In string `arg:"" help:"Root source document (YAML)" type:"existingfile"`
}

func (c *GlossaryCmd) Run() error {
	fs := fileutil.OS{}
	root, err := compiler.LoadRoot(fs, c.In)
	if err != nil {
		return err
	}
	resolved, err := resolver.New(fs).Resolve(filepath.Dir(c.In), root)
	if err != nil {
		return err
	}

	lib := library.Build(resolved)
	if lib.Glossary == nil || len(lib.Glossary.Entries) == 0 {
		fmt.Println("No glossary entries.")
		return nil
	}

	ordered, warnings, err := glossary.Build(lib.Glossary.Entries)
	if err != nil {
		return err
	}

	fmt.Printf("Glossary application order (%d entries):\n\n", len(ordered))
	for i, e := range ordered {
		fmt.Printf("  %2d. %s\n", i+1, e.ID)
		fmt.Printf("      Terms: %s\n", strings.Join(e.Terms(), ", "))
		fmt.Printf("      Pattern: %s\n", e.Matcher.Pattern)
		if len(e.Conflicts) > 0 {
			fmt.Printf("      After: %s\n", strings.Join(e.Conflicts, ", "))
		}
	}
	for _, w := range warnings {
		fmt.Printf("\nWarning: %s\n", w)
	}
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("bindery %s\n", version)
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("bindery"),
		kong.Description("Rules document compiler"),
		kong.UsageOnError(),
	)

	logging.InitLogger(logging.ParseLevel(CLI.LogLevel), logging.ParseFormat(CLI.LogFormat))

	if err := ctx.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "bindery: %v\n", err)
		os.Exit(1)
	}
}
