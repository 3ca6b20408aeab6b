package lumpedrouting

import "github.com/ConnectedSystems/openwater/internal/registry"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register adds the LumpedConstituentRouting model kind to the registry.
func (m *Module) Register(r *registry.Registry) {
	r.Register(registry.Definition{
		Kind:    "LumpedConstituentRouting",
		Version: "1.0.0",
		Description: registry.Description{
			Inputs:  []string{"outflow", "inflow", "lateralLoad", "inflowLoad"},
			Outputs: []string{"outflowLoad"},
		},
		New: func() registry.Kernel { return NewKernel(DefaultParams()) },
	})
}
