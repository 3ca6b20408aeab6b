// Package muskingum implements Muskingum channel routing: storage in a
// reach as a weighted function of inflow and outflow, advanced with the
// classic three-coefficient recurrence.
package muskingum

import (
	"fmt"

	"github.com/ConnectedSystems/openwater/internal/registry"
)

// Params holds the routing coefficients.
type Params struct {
	// TravelTime is the Muskingum K, seconds.
	TravelTime float64

	// Attenuation is the Muskingum X weighting, 0 to 0.5. Zero gives pure
	// reservoir storage, 0.5 pure translation.
	Attenuation float64

	// Timestep is the simulation step, seconds.
	Timestep float64
}

// DefaultParams routes with a one day travel time on a daily step.
func DefaultParams() Params {
	return Params{
		TravelTime:  86400,
		Attenuation: 0.2,
		Timestep:    86400,
	}
}

// check rejects coefficient combinations outside the stable region
// 2KX <= dt <= 2K(1-X).
func (p Params) check() error {
	if p.TravelTime <= 0 || p.Timestep <= 0 {
		return fmt.Errorf("muskingum: travel time and timestep must be positive, got K=%g dt=%g",
			p.TravelTime, p.Timestep)
	}
	if p.Attenuation < 0 || p.Attenuation > 0.5 {
		return fmt.Errorf("muskingum: attenuation must be in [0, 0.5], got %g", p.Attenuation)
	}
	if p.Timestep < 2*p.TravelTime*p.Attenuation || p.Timestep > 2*p.TravelTime*(1-p.Attenuation) {
		return fmt.Errorf("muskingum: timestep %g outside stable range [%g, %g]",
			p.Timestep, 2*p.TravelTime*p.Attenuation, 2*p.TravelTime*(1-p.Attenuation))
	}
	return nil
}

type kernel struct {
	params Params

	prevInflow  float64
	prevOutflow float64
}

// NewKernel returns a kernel for an initially empty reach.
func NewKernel(p Params) registry.Kernel {
	return &kernel{params: p}
}

func (k *kernel) Step(inputs map[string]float64) (map[string]float64, error) {
	if err := k.params.check(); err != nil {
		return nil, err
	}

	kk, x, dt := k.params.TravelTime, k.params.Attenuation, k.params.Timestep
	denom := 2*kk*(1-x) + dt
	c0 := (dt - 2*kk*x) / denom
	c1 := (dt + 2*kk*x) / denom
	c2 := (2*kk*(1-x) - dt) / denom

	inflow := inputs["lateral"] + inputs["inflow"]
	outflow := c0*inflow + c1*k.prevInflow + c2*k.prevOutflow
	if outflow < 0 {
		outflow = 0
	}

	k.prevInflow = inflow
	k.prevOutflow = outflow

	return map[string]float64{"outflow": outflow}, nil
}
