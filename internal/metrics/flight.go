package metrics

import (
	"math"

	"github.com/san-kum/loopsim/internal/dynamo"
)

type MaxSpeed struct {
	name string
	max  float64
}

func NewMaxSpeed() *MaxSpeed {
	return &MaxSpeed{name: "max_speed"}
}

func (m *MaxSpeed) Name() string { return m.name }

func (m *MaxSpeed) Observe(s dynamo.Sample) { m.max = math.Max(m.max, s.Speed) }

func (m *MaxSpeed) Value() float64 { return m.max }

func (m *MaxSpeed) Reset() { m.max = 0 }

// Airtime is the simulated time from detachment to the latest sample.
type Airtime struct {
	name     string
	launchT  float64
	lastT    float64
	launched bool
}

func NewAirtime() *Airtime {
	return &Airtime{name: "airtime"}
}

func (a *Airtime) Name() string { return a.name }

func (a *Airtime) Observe(s dynamo.Sample) {
	if s.Phase == dynamo.OnTrack {
		return
	}
	if !a.launched {
		a.launchT = s.T
		a.launched = true
	}
	a.lastT = s.T
}

func (a *Airtime) Value() float64 {
	if !a.launched {
		return 0
	}
	return a.lastT - a.launchT
}

func (a *Airtime) Reset() {
	a.launchT = 0
	a.lastT = 0
	a.launched = false
}

// Standard returns the metric set attached to every CLI run.
func Standard(p dynamo.Params) []dynamo.Metric {
	return []dynamo.Metric{
		NewEnergyResidual(p),
		NewEnergyDrift(p),
		NewMaxSpeed(),
		NewMinNormalForce(),
		NewLaunchAngle(),
		NewAirtime(),
		NewRevolutions(),
	}
}

// Attach adds every metric in ms to sim.
func Attach(sim *dynamo.Simulator, ms []dynamo.Metric) {
	for _, m := range ms {
		sim.AddMetric(m)
	}
}
