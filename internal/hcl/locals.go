package hcl

import (
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/zclconf/go-cty/cty"
)

// evaluateLocals collects every locals block across the parsed files and
// builds the evaluation context the second decode pass runs under. Local
// values are plain expressions evaluated without any context, so one
// local cannot reference another; a name declared twice anywhere in the
// document is an error.
func evaluateLocals(paths []string, files map[string]*hcl.File) (*hcl.EvalContext, error) {
	values := make(map[string]cty.Value)

	for _, path := range paths {
		var root localsFile
		diags := gohcl.DecodeBody(files[path].Body, nil, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %s", path, diags.Error())
		}

		for _, block := range root.Locals {
			attrs, diags := block.Body.JustAttributes()
			if diags.HasErrors() {
				return nil, fmt.Errorf("failed to read locals in %s: %s", path, diags.Error())
			}

			names := make([]string, 0, len(attrs))
			for name := range attrs {
				names = append(names, name)
			}
			sort.Strings(names)

			for _, name := range names {
				if _, exists := values[name]; exists {
					return nil, fmt.Errorf("duplicate local value %q in %s", name, path)
				}
				val, diags := attrs[name].Expr.Value(nil)
				if diags.HasErrors() {
					return nil, fmt.Errorf("failed to evaluate local %q in %s: %s", name, path, diags.Error())
				}
				values[name] = val
			}
		}
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{"local": cty.ObjectVal(values)},
	}, nil
}
