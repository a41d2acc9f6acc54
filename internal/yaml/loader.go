// Package yaml provides the YAML implementation of the config.Loader
// interface. Files decode through an intermediate raw map so the same
// tagged structs serve both decode paths.
package yaml

import (
	"context"
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/weftlabs/weft/internal/config"
	"github.com/weftlabs/weft/internal/ctxlog"
	"github.com/weftlabs/weft/internal/fsutil"
)

// Loader is the YAML implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new YAML declaration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads the declaration file at path, or every .yaml/.yml file under
// it when path is a directory, and returns the merged document with
// defaults applied.
func (l *Loader) Load(ctx context.Context, path string) (*config.Document, error) {
	logger := ctxlog.FromContext(ctx)

	paths, err := declarationFiles(path)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered YAML declaration files.", "count", len(paths))

	doc := config.NewDocument()
	for _, p := range paths {
		fileDoc, err := loadFile(p)
		if err != nil {
			return nil, err
		}
		doc.Merge(fileDoc)
	}

	doc.ApplyDefaults()
	logger.Debug("YAML loading complete.", "declarations", doc.Len())
	return doc, nil
}

func loadFile(path string) (*config.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read declaration file %s: %w", path, err)
	}

	var rawDoc map[string]interface{}
	if err := yaml.Unmarshal(data, &rawDoc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML file %s: %w", path, err)
	}

	var decoded yamlDocument
	if err := mapstructure.Decode(rawDoc, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode YAML file %s: %w", path, err)
	}
	return translateDocument(&decoded), nil
}

func declarationFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to access %s: %w", path, err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	paths, err := fsutil.FindFilesByExtensions(path, ".yaml", ".yml")
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no .yaml declaration files found under %s", path)
	}
	return paths, nil
}
