package config

import "context"

// Loader loads scenario configuration from one or more sources and merges it
// into a single model. Implementations decide what a path means (file,
// directory) and which formats they accept.
type Loader interface {
	// Load reads every given path, merges the results and returns the
	// unified model. The returned model has passed Validate.
	Load(ctx context.Context, paths ...string) (*Model, error)
}
