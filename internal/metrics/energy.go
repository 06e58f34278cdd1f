package metrics

import (
	"math"

	"github.com/san-kum/loopsim/internal/dynamo"
)

// EnergyResidual is the largest deviation of v² + 2gR(1−cos θ) from v0²
// over the on-track samples. Clamped samples are included, so a non-zero
// value points at a floored energy term.
type EnergyResidual struct {
	name     string
	v0       float64
	gravity  float64
	residual float64
}

func NewEnergyResidual(p dynamo.Params) *EnergyResidual {
	return &EnergyResidual{
		name:    "energy_residual",
		v0:      p.V0,
		gravity: p.Gravity,
	}
}

func (e *EnergyResidual) Name() string { return e.name }

func (e *EnergyResidual) Observe(s dynamo.Sample) {
	if s.Phase != dynamo.OnTrack {
		return
	}
	// y = R(1−cos θ) on the track.
	r := math.Abs(s.Speed*s.Speed + 2*e.gravity*s.Y - e.v0*e.v0)
	e.residual = math.Max(e.residual, r)
}

func (e *EnergyResidual) Value() float64 { return e.residual }

func (e *EnergyResidual) Reset() { e.residual = 0 }

// EnergyDrift tracks the relative drift of the specific mechanical energy
// ½v² + g·y against the first sample. Landed samples are skipped since
// their height is clamped.
type EnergyDrift struct {
	name          string
	gravity       float64
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift(p dynamo.Params) *EnergyDrift {
	return &EnergyDrift{
		name:    "energy_drift",
		gravity: p.Gravity,
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(s dynamo.Sample) {
	if s.Phase == dynamo.Landed || s.Clamped {
		return
	}
	energy := 0.5*s.Speed*s.Speed + e.gravity*s.Y
	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 { return e.maxDrift }

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
