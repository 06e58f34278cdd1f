package dynamo

import (
	"fmt"
	"math"
	"strings"
)

// Phase is the contact regime of the mass.
type Phase int

const (
	OnTrack Phase = iota
	Falling
	Landed
)

func (p Phase) String() string {
	switch p {
	case OnTrack:
		return "on_track"
	case Falling:
		return "falling"
	case Landed:
		return "landed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// ParsePhase is the inverse of Phase.String.
func ParsePhase(s string) (Phase, error) {
	switch s {
	case "on_track":
		return OnTrack, nil
	case "falling":
		return Falling, nil
	case "landed":
		return Landed, nil
	}
	return 0, fmt.Errorf("dynamo: unknown phase %q", s)
}

func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *Phase) UnmarshalText(b []byte) error {
	v, err := ParsePhase(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Termination selects when a run stops besides ground contact.
type Termination int

const (
	// UntilLanded runs until the mass touches the ground.
	UntilLanded Termination = iota
	// FixedDuration also stops once simulated time reaches Params.Duration.
	FixedDuration
)

func (t Termination) String() string {
	switch t {
	case UntilLanded:
		return "until_landed"
	case FixedDuration:
		return "fixed_duration"
	default:
		return fmt.Sprintf("termination(%d)", int(t))
	}
}

func (t Termination) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *Termination) UnmarshalText(b []byte) error {
	v, err := ParseTermination(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// ParseTermination accepts the names produced by Termination.String.
func ParseTermination(s string) (Termination, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "until_landed", "until-landed", "landed":
		return UntilLanded, nil
	case "fixed_duration", "fixed-duration", "duration":
		return FixedDuration, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownTermination, s)
}

// ForceModel selects how gravity enters the normal force per unit mass.
type ForceModel int

const (
	// LegacyForce evaluates F = v²/R − g·cos θ.
	LegacyForce ForceModel = iota
	// NewtonForce evaluates F = v²/R + g·cos θ, the radial balance for an
	// angle measured from the bottom of the loop.
	NewtonForce
)

func (m ForceModel) String() string {
	switch m {
	case LegacyForce:
		return "legacy"
	case NewtonForce:
		return "newton"
	default:
		return fmt.Sprintf("force_model(%d)", int(m))
	}
}

func ParseForceModel(s string) (ForceModel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "legacy":
		return LegacyForce, nil
	case "newton":
		return NewtonForce, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownForceModel, s)
}

func (m ForceModel) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *ForceModel) UnmarshalText(b []byte) error {
	v, err := ParseForceModel(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// NormalForce returns the constraint force per unit mass at speed v and
// angle cos θ.
func (m ForceModel) NormalForce(v, cos, radius, g float64) float64 {
	if m == NewtonForce {
		return v*v/radius + g*cos
	}
	return v*v/radius - g*cos
}

const (
	DefaultRadius   = 5.0
	DefaultGravity  = 9.81
	DefaultV0       = 10.55
	DefaultDt       = 0.01
	DefaultDuration = 4.0
	DefaultMaxSteps = 1_000_000
)

// Params are the inputs of one run. They are never mutated by the simulator.
type Params struct {
	Radius      float64     `json:"radius"`
	Gravity     float64     `json:"gravity"`
	V0          float64     `json:"v0"`
	Dt          float64     `json:"dt"`
	Model       ForceModel  `json:"force_model"`
	Termination Termination `json:"termination"`
	Duration    float64     `json:"duration"`
	// MaxSteps bounds the number of samples; a mass that never leaves the
	// track would otherwise run forever under UntilLanded.
	MaxSteps int `json:"max_steps"`
}

func DefaultParams() Params {
	return Params{
		Radius:      DefaultRadius,
		Gravity:     DefaultGravity,
		V0:          DefaultV0,
		Dt:          DefaultDt,
		Termination: FixedDuration,
		Duration:    DefaultDuration,
		MaxSteps:    DefaultMaxSteps,
	}
}

func (p Params) Validate() error {
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"radius", p.Radius}, {"gravity", p.Gravity}, {"v0", p.V0}, {"dt", p.Dt}, {"duration", p.Duration},
	} {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return boundsError(f.name, f.value, "finite")
		}
	}
	if p.Radius <= 0 {
		return boundsError("radius", p.Radius, "positive")
	}
	if p.Gravity <= 0 {
		return boundsError("gravity", p.Gravity, "positive")
	}
	if p.V0 < 0 {
		return boundsError("v0", p.V0, "non-negative")
	}
	if p.Dt <= 0 {
		return boundsError("dt", p.Dt, "positive")
	}
	if p.Model != LegacyForce && p.Model != NewtonForce {
		return fmt.Errorf("%w: %d", ErrUnknownForceModel, int(p.Model))
	}
	switch p.Termination {
	case UntilLanded:
	case FixedDuration:
		if p.Duration <= 0 {
			return boundsError("duration", p.Duration, "positive for fixed_duration")
		}
	default:
		return fmt.Errorf("%w: %d", ErrUnknownTermination, int(p.Termination))
	}
	if p.MaxSteps <= 0 {
		return boundsError("max_steps", float64(p.MaxSteps), "positive")
	}
	return nil
}

// CriticalSpeed is the smallest v0 that keeps F positive over the top of
// the loop: v0² = 3gR for LegacyForce, 5gR for NewtonForce.
func (p Params) CriticalSpeed() float64 {
	if p.Model == NewtonForce {
		return math.Sqrt(5 * p.Gravity * p.Radius)
	}
	return math.Sqrt(3 * p.Gravity * p.Radius)
}

// Launch records the detachment instant. Velocity points along the track
// tangent, θ+π/2.
type Launch struct {
	T     float64 `json:"t"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	VX    float64 `json:"vx"`
	VY    float64 `json:"vy"`
	Theta float64 `json:"theta"`
}

func (l Launch) Speed() float64 {
	return math.Sqrt(l.VX*l.VX + l.VY*l.VY)
}

// At returns the projectile position and velocity tSince seconds after launch.
func (l Launch) At(tSince, g float64) (x, y, vx, vy float64) {
	x = l.X + l.VX*tSince
	y = l.Y + l.VY*tSince - 0.5*g*tSince*tSince
	return x, y, l.VX, l.VY - g*tSince
}

// State is everything Advance needs to produce the next sample.
type State struct {
	T      float64
	Step   int
	Phase  Phase
	Theta  float64
	Launch Launch
}

// Sample is one emitted record. Theta is the angular position while on the
// track and the launch angle afterwards. Clamped marks samples whose energy
// term went negative and was floored to zero speed.
type Sample struct {
	T           float64 `json:"t"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Speed       float64 `json:"speed"`
	NormalForce float64 `json:"normal_force"`
	Phase       Phase   `json:"phase"`
	Theta       float64 `json:"theta"`
	Clamped     bool    `json:"clamped,omitempty"`
}

// StopReason says why a run ended.
type StopReason int

const (
	Running StopReason = iota
	GroundContact
	DurationElapsed
	StepLimit
	Canceled
)

func (r StopReason) String() string {
	switch r {
	case Running:
		return "running"
	case GroundContact:
		return "ground_contact"
	case DurationElapsed:
		return "duration_elapsed"
	case StepLimit:
		return "step_limit"
	case Canceled:
		return "canceled"
	default:
		return fmt.Sprintf("stop(%d)", int(r))
	}
}

func (r StopReason) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

func (r *StopReason) UnmarshalText(b []byte) error {
	for c := Running; c <= Canceled; c++ {
		if c.String() == string(b) {
			*r = c
			return nil
		}
	}
	return fmt.Errorf("dynamo: unknown stop reason %q", b)
}

// Metric observes every emitted sample.
type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

type Observer interface {
	OnSample(s Sample)
}

type Result struct {
	Params  Params
	Samples []Sample
	Launch  *Launch
	Reason  StopReason
	// Clamped counts samples produced with a floored energy term.
	Clamped int
	Metrics map[string]float64
}

// Last returns the final sample; ok is false for an empty result.
func (r *Result) Last() (Sample, bool) {
	if r == nil || len(r.Samples) == 0 {
		return Sample{}, false
	}
	return r.Samples[len(r.Samples)-1], true
}

// Landed reports whether the run ended with ground contact.
func (r *Result) Landed() bool {
	return r != nil && r.Reason == GroundContact
}
