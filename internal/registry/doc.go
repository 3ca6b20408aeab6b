// Package registry is the catalog of model kinds known to the application.
//
// A model kind pairs a public port description (the named inputs and outputs
// that links are validated against) with a factory for the kernel that
// computes one node of that kind. Model packages register themselves through
// the Module interface during startup, and the registry is validated once
// before any graph is built, keeping description and implementation
// mismatches out of the run path.
package registry
