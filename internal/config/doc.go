// Package config defines the format-agnostic scenario model for the
// application, along with the Loader interface for producing it from
// configuration sources.
//
// The `config.Model` is the single source of truth for the `builder`
// package: templates, the spatial domain and the run settings all arrive
// through it. Concrete loaders, such as for HCL, are provided in separate
// packages.
package config
