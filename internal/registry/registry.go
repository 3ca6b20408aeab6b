package registry

import (
	"fmt"
	"sort"
)

// Description declares the ports of a model kind: the named inputs it
// consumes and the named outputs it produces on every timestep. Links are
// validated against these names.
type Description struct {
	Inputs  []string
	Outputs []string
}

// Kernel computes one node of a model kind. A kernel owns whatever state it
// carries between timesteps; the engine never inspects it.
type Kernel interface {
	// Step advances the kernel by one timestep. inputs holds a value for
	// every declared input port. The returned map must hold a value for
	// every declared output port.
	Step(inputs map[string]float64) (map[string]float64, error)
}

// Definition is one registered model kind.
type Definition struct {
	Kind        string
	Version     string
	Description Description
	// New produces a fresh kernel with zeroed state. Each node gets its own.
	New func() Kernel
}

// Module is the interface that all model packages implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds all the model kind definitions for a single application
// instance.
type Registry struct {
	defs map[string]Definition
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{defs: make(map[string]Definition)}
}

// Register adds a definition to the registry. Registering the same kind
// twice is a wiring bug, so it panics rather than returning an error.
func (r *Registry) Register(def Definition) {
	if def.Kind == "" {
		panic("registry: definition with empty model kind")
	}
	if _, exists := r.defs[def.Kind]; exists {
		panic(fmt.Sprintf("registry: duplicate registration for model kind %q", def.Kind))
	}
	r.defs[def.Kind] = def
}

// Describe returns the port description for kind.
func (r *Registry) Describe(kind string) (Description, error) {
	def, ok := r.defs[kind]
	if !ok {
		return Description{}, &UnknownModelKindError{Kind: kind}
	}
	return def.Description, nil
}

// Definition returns the full definition for kind.
func (r *Registry) Definition(kind string) (Definition, error) {
	def, ok := r.defs[kind]
	if !ok {
		return Definition{}, &UnknownModelKindError{Kind: kind}
	}
	return def, nil
}

// NewKernel constructs a fresh kernel for kind.
func (r *Registry) NewKernel(kind string) (Kernel, error) {
	def, ok := r.defs[kind]
	if !ok {
		return nil, &UnknownModelKindError{Kind: kind}
	}
	if def.New == nil {
		return nil, fmt.Errorf("model kind %q declares no kernel factory", kind)
	}
	return def.New(), nil
}

// Kinds returns every registered model kind, sorted.
func (r *Registry) Kinds() []string {
	kinds := make([]string, 0, len(r.defs))
	for kind := range r.defs {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

// UnknownModelKindError reports a reference to a model kind that was never
// registered.
type UnknownModelKindError struct {
	Kind string
}

func (e *UnknownModelKindError) Error() string {
	return fmt.Sprintf("unknown model kind %q", e.Kind)
}
