package config

import "context"

// Loader is the interface for a format-specific declaration loader.
type Loader interface {
	// Load reads declarations from the given path, which may be a single
	// file or a directory searched recursively, and translates them into
	// the format-agnostic Document. Defaults are already applied on the
	// returned Document; validation is not, that belongs to the builders.
	Load(ctx context.Context, path string) (*Document, error)
}
