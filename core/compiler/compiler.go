// Package compiler chains the pipeline stages of a compilation run:
// resolve external references, build and validate the library, order the
// glossary, compile cross-reference links, and export the artifact tree.
// Each stage is a pure transform; the driver threads values between them
// and owns all I/O boundaries.
package compiler

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/openruleset/bindery/core/doctree"
	"github.com/openruleset/bindery/core/errors"
	"github.com/openruleset/bindery/core/export"
	"github.com/openruleset/bindery/core/glossary"
	"github.com/openruleset/bindery/core/library"
	"github.com/openruleset/bindery/core/linker"
	"github.com/openruleset/bindery/core/resolver"
	"github.com/openruleset/bindery/internal/fileutil"
	"github.com/openruleset/bindery/internal/logging"
)

// Options configures one compilation run.
type Options struct {
	// Input is the path of the root source document (YAML).
	Input string

	// Output is the destination directory for the artifact tree. It is
	// cleared and recreated; concurrent runs against one destination
	// must be serialized by the caller.
	Output string

	// Tool and Version identify the compiler in the root artifact.
	Tool    string
	Version string

	// FS overrides the storage implementation; defaults to the local
	// filesystem.
	FS interface {
		fileutil.Reader
		fileutil.Writer
	}
}

// Result summarizes a completed run.
type Result struct {
	// BuildID is the unique id assigned to this run.
	BuildID string

	// Library is the compiled in-memory tree, as exported.
	Library *library.Library

	// Export describes the written artifacts.
	Export *export.Result

	// Warnings are non-fatal findings, e.g. glossary overlap cycles.
	Warnings []string

	// Duration is the total wall time of the run.
	Duration time.Duration
}

// Run compiles the document at opts.Input into an artifact tree at
// opts.Output. Any fatal condition is returned unrecovered; the caller
// should treat an error as "no usable artifact tree was produced".
func Run(opts Options) (*Result, error) {
	started := time.Now()

	fs := opts.FS
	if fs == nil {
		fs = fileutil.OS{}
	}
	if opts.Tool == "" {
		opts.Tool = "bindery"
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}

	res := &Result{BuildID: uuid.NewString()}

	// Resolve: inline every external reference into one tree.
	stage := time.Now()
	logging.StageStart("resolve", "input", opts.Input)
	root, err := LoadRoot(fs, opts.Input)
	if err != nil {
		return nil, err
	}
	resolved, err := resolver.New(fs).Resolve(filepath.Dir(opts.Input), root)
	if err != nil {
		return nil, err
	}
	logging.StageDone("resolve", time.Since(stage))

	// Build and validate the typed library.
	stage = time.Now()
	logging.StageStart("build")
	lib := library.Build(resolved)
	if errs := library.Validate(lib); len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return nil, errors.NewValidation("library", strings.Join(msgs, "; "))
	}
	logging.StageDone("build", time.Since(stage),
		"documents", len(lib.Documents))

	// Glossary: matchers, conflicts, application order.
	stage = time.Now()
	logging.StageStart("glossary")
	if lib.Glossary != nil {
		ordered, warnings, err := glossary.Build(lib.Glossary.Entries)
		if err != nil {
			return nil, err
		}
		lib.Glossary.Entries = ordered
		for _, w := range warnings {
			logging.CompileWarning("glossary", w)
		}
		res.Warnings = append(res.Warnings, warnings...)
	}
	logging.StageDone("glossary", time.Since(stage),
		"entries", lib.Glossary.DescendantCount())

	// Link: rewrite descriptions with cross-reference markers.
	stage = time.Now()
	logging.StageStart("link")
	linker.Compile(lib)
	logging.StageDone("link", time.Since(stage))

	// Export: materialize the artifact tree.
	stage = time.Now()
	logging.StageStart("export", "output", opts.Output)
	build := export.BuildInfo{
		BuildID:   res.BuildID,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Tool:      opts.Tool,
		Version:   opts.Version,
	}
	exp, err := export.New(fs).Write(opts.Output, lib, build)
	if err != nil {
		return nil, err
	}
	logging.StageDone("export", time.Since(stage),
		"artifacts", exp.Artifacts)

	res.Library = lib
	res.Export = exp
	res.Duration = time.Since(started)
	return res, nil
}

// LoadRoot reads and parses a root document, annotating any parse error
// with the file path. A missing root value inside the file is legitimate
// empty input; an unreadable or malformed file is fatal.
func LoadRoot(fs fileutil.Reader, path string) (*doctree.Node, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, err
	}
	root, err := doctree.FromYAML(data)
	if err != nil {
		var pe *errors.ParseError
		if errors.As(err, &pe) && pe.Path == "" {
			pe.Path = path
		}
		return nil, err
	}
	return root, nil
}
