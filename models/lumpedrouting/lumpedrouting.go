// Package lumpedrouting moves constituent mass through a reach as a single
// well-mixed store: arriving loads join the store, and the carrying flow
// determines what fraction leaves each timestep.
package lumpedrouting

import "github.com/ConnectedSystems/openwater/internal/registry"

// Params holds the store behaviour.
type Params struct {
	// StorageFlow sets how readily mass is flushed: the release fraction is
	// outflow / (outflow + StorageFlow), in the same units as the carrying
	// flow. Zero releases everything whenever any flow leaves.
	StorageFlow float64
}

// DefaultParams keeps a modest residual store.
func DefaultParams() Params {
	return Params{StorageFlow: 5}
}

type kernel struct {
	params Params
	mass   float64 // constituent mass held in the reach
}

// NewKernel returns a kernel with an empty store.
func NewKernel(p Params) registry.Kernel {
	return &kernel{params: p}
}

func (k *kernel) Step(inputs map[string]float64) (map[string]float64, error) {
	k.mass += inputs["lateralLoad"] + inputs["inflowLoad"]

	carrier := inputs["outflow"] + inputs["inflow"]
	released := 0.0
	if carrier > 0 {
		released = k.mass * carrier / (carrier + k.params.StorageFlow)
		k.mass -= released
	}

	return map[string]float64{"outflowLoad": released}, nil
}
