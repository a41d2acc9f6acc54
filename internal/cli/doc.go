// Package cli handles process-level concerns shared by every command:
// exit codes, the mapping from error kinds to exit codes, and logger
// construction from the root flags.
package cli
