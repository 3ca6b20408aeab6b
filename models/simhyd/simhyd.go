// Package simhyd implements a simplified SimHyd rainfall-runoff model: an
// interception store, an infiltration split, and a soil moisture store
// draining to baseflow. All depths are mm per timestep.
package simhyd

import (
	"math"

	"github.com/ConnectedSystems/openwater/internal/registry"
)

// Params holds the model coefficients.
type Params struct {
	// InterceptionCapacity is the depth intercepted and evaporated before
	// rainfall reaches the ground, mm.
	InterceptionCapacity float64

	// InfiltrationFraction is the share of throughfall entering the soil
	// store; the rest leaves as quickflow.
	InfiltrationFraction float64

	// SoilMoistureCapacity is the soil store ceiling, mm. Overflow joins
	// quickflow.
	SoilMoistureCapacity float64

	// BaseflowCoefficient is the store fraction released as baseflow each
	// timestep.
	BaseflowCoefficient float64
}

// DefaultParams returns the coefficients used when a scenario does not
// override them.
func DefaultParams() Params {
	return Params{
		InterceptionCapacity: 1.5,
		InfiltrationFraction: 0.75,
		SoilMoistureCapacity: 320,
		BaseflowCoefficient:  0.04,
	}
}

type kernel struct {
	params Params
	soil   float64 // mm held in the soil store
}

// NewKernel returns a kernel with an empty soil store.
func NewKernel(p Params) registry.Kernel {
	return &kernel{params: p}
}

func (k *kernel) Step(inputs map[string]float64) (map[string]float64, error) {
	rainfall := inputs["rainfall"]
	pet := inputs["pet"]

	interception := math.Min(rainfall, math.Min(pet, k.params.InterceptionCapacity))
	throughfall := rainfall - interception

	infiltration := throughfall * k.params.InfiltrationFraction
	quickflow := throughfall - infiltration

	k.soil += infiltration
	if k.soil > k.params.SoilMoistureCapacity {
		quickflow += k.soil - k.params.SoilMoistureCapacity
		k.soil = k.params.SoilMoistureCapacity
	}

	// Remaining evaporative demand draws on the soil store, scaled by how
	// full the store is.
	if k.params.SoilMoistureCapacity > 0 {
		demand := math.Max(pet-interception, 0)
		et := math.Min(k.soil, demand*k.soil/k.params.SoilMoistureCapacity)
		k.soil -= et
	}

	baseflow := k.soil * k.params.BaseflowCoefficient
	k.soil -= baseflow

	return map[string]float64{
		"runoff":    quickflow + baseflow,
		"quickflow": quickflow,
		"baseflow":  baseflow,
	}, nil
}
