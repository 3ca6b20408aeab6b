// Package depthtorate converts an areal depth into a volumetric rate: mm
// over the configured area per timestep becomes m3/s.
package depthtorate

import "github.com/ConnectedSystems/openwater/internal/registry"

// mm over one m2 for one day equals 1/86.4e6 m3/s.
const mmPerDayToCumecs = 86.4e6

// Params holds the conversion inputs.
type Params struct {
	// Area is the contributing area in m2.
	Area float64
}

// DefaultParams covers a one square kilometre unit.
func DefaultParams() Params {
	return Params{Area: 1e6}
}

type kernel struct {
	params Params
}

// NewKernel returns a stateless converter kernel.
func NewKernel(p Params) registry.Kernel {
	return &kernel{params: p}
}

func (k *kernel) Step(inputs map[string]float64) (map[string]float64, error) {
	return map[string]float64{
		"outflow": inputs["input"] * k.params.Area / mmPerDayToCumecs,
	}, nil
}
