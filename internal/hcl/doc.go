// Package hcl implements the HCL loader for probe manifests and run files.
// It discovers .hcl files, decodes them into the schema structs, and
// translates them into the format-agnostic config model, parsing type
// expressions into cty types along the way.
package hcl
