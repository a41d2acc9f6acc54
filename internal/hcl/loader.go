package hcl

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/weftlabs/weft/internal/config"
	"github.com/weftlabs/weft/internal/ctxlog"
	"github.com/weftlabs/weft/internal/fsutil"
)

const fileExtension = ".hcl"

// Loader is the HCL implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL declaration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads the declaration file at path, or every .hcl file under it
// when path is a directory, and returns the merged document with defaults
// applied.
func (l *Loader) Load(ctx context.Context, path string) (*config.Document, error) {
	logger := ctxlog.FromContext(ctx)

	paths, err := declarationFiles(path)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL declaration files.", "count", len(paths))

	parser := hclparse.NewParser()
	files := make(map[string]*hcl.File, len(paths))
	for _, p := range paths {
		hclFile, diags := parser.ParseHCLFile(p)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %s", p, diags.Error())
		}
		files[p] = hclFile
	}

	evalCtx, err := evaluateLocals(paths, files)
	if err != nil {
		return nil, err
	}

	doc := config.NewDocument()
	for _, p := range paths {
		var root documentFile
		diags := gohcl.DecodeBody(files[p].Body, evalCtx, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %s", p, diags.Error())
		}
		doc.Merge(translateDocument(&root))
	}

	doc.ApplyDefaults()
	logger.Debug("HCL loading complete.", "declarations", doc.Len())
	return doc, nil
}

// declarationFiles resolves path to the list of files to parse. Order is
// stable so locals evaluation and merging do not depend on the walk.
func declarationFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to access %s: %w", path, err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	paths, err := fsutil.FindFilesByExtensions(path, fileExtension)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no %s declaration files found under %s", fileExtension, path)
	}
	return paths, nil
}
