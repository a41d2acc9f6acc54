// Package hcl provides the HCL implementation of the config.Loader
// interface. It discovers .hcl declaration files, evaluates their locals
// into a shared evaluation context, and translates the decoded blocks
// into the format-agnostic document the builders consume.
package hcl
