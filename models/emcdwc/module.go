package emcdwc

import "github.com/ConnectedSystems/openwater/internal/registry"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register adds the EmcDwc model kind to the registry.
func (m *Module) Register(r *registry.Registry) {
	r.Register(registry.Definition{
		Kind:    "EmcDwc",
		Version: "1.0.0",
		Description: registry.Description{
			Inputs:  []string{"quickflow", "baseflow"},
			Outputs: []string{"totalLoad"},
		},
		New: func() registry.Kernel { return NewKernel(DefaultParams()) },
	})
}
