// Package hcl implements the config.Loader interface for HCL scenario
// files. It discovers .hcl files across the configured paths, decodes them
// against the schema package and merges every file into a single validated
// config.Model.
package hcl
