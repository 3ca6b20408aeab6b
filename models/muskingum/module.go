package muskingum

import "github.com/ConnectedSystems/openwater/internal/registry"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register adds the Muskingum model kind to the registry.
func (m *Module) Register(r *registry.Registry) {
	r.Register(registry.Definition{
		Kind:    "Muskingum",
		Version: "1.0.0",
		Description: registry.Description{
			Inputs:  []string{"lateral", "inflow"},
			Outputs: []string{"outflow"},
		},
		New: func() registry.Kernel { return NewKernel(DefaultParams()) },
	})
}
