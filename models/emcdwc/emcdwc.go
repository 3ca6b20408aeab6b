// Package emcdwc generates constituent loads from runoff using event mean
// and dry weather concentrations: quickflow carries the EMC, baseflow the
// DWC.
package emcdwc

import "github.com/ConnectedSystems/openwater/internal/registry"

// Params holds the two concentrations, in mass per volume of flow.
type Params struct {
	EMC float64
	DWC float64
}

// DefaultParams uses a storm concentration an order of magnitude above the
// dry weather one.
func DefaultParams() Params {
	return Params{EMC: 12, DWC: 1.5}
}

type kernel struct {
	params Params
}

// NewKernel returns a stateless generation kernel.
func NewKernel(p Params) registry.Kernel {
	return &kernel{params: p}
}

func (k *kernel) Step(inputs map[string]float64) (map[string]float64, error) {
	return map[string]float64{
		"totalLoad": inputs["quickflow"]*k.params.EMC + inputs["baseflow"]*k.params.DWC,
	}, nil
}
