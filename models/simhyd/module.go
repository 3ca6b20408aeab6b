package simhyd

import "github.com/ConnectedSystems/openwater/internal/registry"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register adds the Simhyd model kind to the registry.
func (m *Module) Register(r *registry.Registry) {
	r.Register(registry.Definition{
		Kind:    "Simhyd",
		Version: "1.0.0",
		Description: registry.Description{
			Inputs:  []string{"rainfall", "pet"},
			Outputs: []string{"runoff", "quickflow", "baseflow"},
		},
		New: func() registry.Kernel { return NewKernel(DefaultParams()) },
	})
}
