// Package main provides CMA-ES tuning of the fluid solver parameters.
package main

import (
	"github.com/pthm-cable/microflow/config"
)

// ParamSpec defines a single tunable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all tunable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of tunable solver parameters.
// Scenario-defining values (flow_speed, inflow_width, dt) stay locked so
// every evaluation solves the same channel problem.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "viscosity", Path: "fluid.viscosity", Min: 0.1, Max: 8.0, Default: 1.5},
			{Name: "dissipation", Path: "fluid.dissipation", Min: 0.95, Max: 1.0, Default: 0.995},
			{Name: "pressure_iters", Path: "fluid.pressure_iterations", Min: 10, Max: 80, Default: 30},
			{Name: "diffusion_iters", Path: "fluid.diffusion_iterations", Min: 2, Max: 20, Default: 8},
			{Name: "vorticity_strength", Path: "fluid.vorticity_strength", Min: 0.0, Max: 8.0, Default: 2.5},
			{Name: "turbulence", Path: "fluid.turbulence", Min: 0.0, Max: 3.0, Default: 1.0},
			{Name: "obstacle_shrink", Path: "fluid.obstacle_shrink", Min: 0.7, Max: 1.0, Default: 0.9},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		val := v[i]
		if val < spec.Min {
			val = spec.Min
		}
		if val > spec.Max {
			val = spec.Max
		}
		clamped[i] = val
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config struct.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)

	// Order must match Specs order
	i := 0
	cfg.Fluid.Viscosity = clamped[i]
	i++
	cfg.Fluid.Dissipation = clamped[i]
	i++
	cfg.Fluid.PressureIters = int(clamped[i])
	i++
	cfg.Fluid.DiffusionIters = int(clamped[i])
	i++
	cfg.Fluid.VorticityStrength = clamped[i]
	i++
	cfg.Fluid.Turbulence = clamped[i]
	i++
	cfg.Fluid.ObstacleShrink = clamped[i]
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		cfg.Fluid.Viscosity,
		cfg.Fluid.Dissipation,
		float64(cfg.Fluid.PressureIters),
		float64(cfg.Fluid.DiffusionIters),
		cfg.Fluid.VorticityStrength,
		cfg.Fluid.Turbulence,
		cfg.Fluid.ObstacleShrink,
	}
}
