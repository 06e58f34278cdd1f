package metrics

import (
	"math"

	"github.com/san-kum/loopsim/internal/dynamo"
)

// MinNormalForce is the smallest normal force seen on the track, 0 when no
// sample was on the track.
type MinNormalForce struct {
	name string
	min  float64
	seen bool
}

func NewMinNormalForce() *MinNormalForce {
	return &MinNormalForce{name: "min_normal_force"}
}

func (m *MinNormalForce) Name() string { return m.name }

func (m *MinNormalForce) Observe(s dynamo.Sample) {
	if s.Phase != dynamo.OnTrack {
		return
	}
	if !m.seen || s.NormalForce < m.min {
		m.min = s.NormalForce
		m.seen = true
	}
}

func (m *MinNormalForce) Value() float64 {
	if !m.seen {
		return 0
	}
	return m.min
}

func (m *MinNormalForce) Reset() {
	m.min = 0
	m.seen = false
}

// LaunchAngle records θ at detachment, 0 if the mass never left the track.
type LaunchAngle struct {
	name     string
	theta    float64
	launched bool
}

func NewLaunchAngle() *LaunchAngle {
	return &LaunchAngle{name: "launch_angle"}
}

func (l *LaunchAngle) Name() string { return l.name }

func (l *LaunchAngle) Observe(s dynamo.Sample) {
	if l.launched || s.Phase == dynamo.OnTrack {
		return
	}
	l.theta = s.Theta
	l.launched = true
}

func (l *LaunchAngle) Value() float64 { return l.theta }

func (l *LaunchAngle) Reset() {
	l.theta = 0
	l.launched = false
}

// Revolutions counts completed turns around the loop while on the track.
type Revolutions struct {
	name  string
	theta float64
}

func NewRevolutions() *Revolutions {
	return &Revolutions{name: "revolutions"}
}

func (r *Revolutions) Name() string { return r.name }

func (r *Revolutions) Observe(s dynamo.Sample) {
	if s.Phase == dynamo.OnTrack {
		r.theta = math.Max(r.theta, s.Theta)
	}
}

func (r *Revolutions) Value() float64 { return math.Floor(r.theta / (2 * math.Pi)) }

func (r *Revolutions) Reset() { r.theta = 0 }
