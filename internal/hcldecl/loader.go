package hcldecl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/specialistvlad/extforge/internal/ctxlog"
	"github.com/specialistvlad/extforge/internal/declare"
	"github.com/specialistvlad/extforge/internal/fsutil"
)

// Extension is the file extension of declaration files.
const Extension = ".hcl"

// Loader turns HCL declaration files into declarations.
type Loader struct{}

// NewLoader creates a new HCL declaration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load finds every declaration file matched by patterns (files, directories
// or doublestar globs) and returns their declarations in file order.
func (l *Loader) Load(ctx context.Context, patterns ...string) ([]*declare.Declaration, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL declaration loader started.", "pattern_count", len(patterns))

	files, err := fsutil.FindFiles(patterns, Extension)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		logger.Warn("No declaration files found.", "patterns", patterns)
		return nil, nil
	}
	logger.Debug("Discovered declaration files.", "count", len(files))

	parser := hclparse.NewParser()
	var decls []*declare.Declaration
	for _, file := range files {
		f, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}
		got, err := l.decode(ctx, f)
		if err != nil {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, err)
		}
		decls = append(decls, got...)
	}

	logger.Debug("HCL declaration loading complete.", "files", len(files), "declarations", len(decls))
	return decls, nil
}

// Parse reads declarations from src. filename is used in diagnostics only.
func (l *Loader) Parse(ctx context.Context, src []byte, filename string) ([]*declare.Declaration, error) {
	f, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, diags
	}
	return l.decode(ctx, f)
}

func (l *Loader) decode(ctx context.Context, f *hcl.File) ([]*declare.Declaration, error) {
	var root fileRoot
	if diags := gohcl.DecodeBody(f.Body, nil, &root); diags.HasErrors() {
		return nil, diags
	}

	var (
		decls []*declare.Declaration
		diags hcl.Diagnostics
	)
	for _, b := range root.Objects {
		d, more := l.translateObject(ctx, b)
		diags = append(diags, more...)
		if d != nil {
			decls = append(decls, d)
		}
	}
	for _, b := range root.Rules {
		d, more := l.translateRule(ctx, b)
		diags = append(diags, more...)
		if d != nil {
			decls = append(decls, d)
		}
	}
	if diags.HasErrors() {
		return nil, diags
	}
	return decls, nil
}
