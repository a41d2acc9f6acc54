// Package config defines the format-agnostic declaration model and the
// Loader interface for reading it from various sources.
//
// The config.Document is the single source of truth for the builder and
// plan packages. Concrete Loader implementations, such as for HCL and
// YAML, are provided in separate packages; nothing downstream of this
// package knows which format the input came from.
package config
