package dynamo

import (
	"context"
	"math"
	"sync/atomic"
)

// Advance performs one integration step from s. It returns the successor
// state, the sample emitted for this step, and whether the mass touched the
// ground. Advance is pure; the caller owns both states.
func Advance(p Params, s State) (next State, smp Sample, landed bool) {
	next = s
	next.Step++
	next.T = s.T + p.Dt

	if s.Phase == OnTrack {
		sin, cos := math.Sincos(s.Theta)
		v2 := p.V0*p.V0 - 2*p.Gravity*p.Radius*(1-cos)
		clamped := v2 < 0
		v := math.Sqrt(math.Max(v2, 0))
		f := p.Model.NormalForce(v, cos, p.Radius, p.Gravity)

		x, y := p.Radius*sin, p.Radius*(1-cos)
		if f > 0 {
			next.Theta = s.Theta + v/p.Radius*p.Dt
			return next, Sample{
				T:           s.T,
				X:           x,
				Y:           y,
				Speed:       v,
				NormalForce: f,
				Phase:       OnTrack,
				Theta:       s.Theta,
				Clamped:     clamped,
			}, false
		}

		// Contact lost: this same step is evaluated as the first falling
		// step, at zero time since launch.
		s.Phase = Falling
		s.Launch = Launch{
			T:     s.T,
			X:     x,
			Y:     y,
			VX:    v * math.Cos(s.Theta+math.Pi/2),
			VY:    v * math.Sin(s.Theta+math.Pi/2),
			Theta: s.Theta,
		}
		next.Phase = Falling
		next.Launch = s.Launch
		next, smp, landed = fall(p, s, next)
		smp.Clamped = clamped
		return next, smp, landed
	}

	return fall(p, s, next)
}

func fall(p Params, s, next State) (State, Sample, bool) {
	tSince := s.T - s.Launch.T
	x, y, vx, vy := s.Launch.At(tSince, p.Gravity)
	smp := Sample{
		T:     s.T,
		X:     x,
		Y:     y,
		Speed: math.Sqrt(vx*vx + vy*vy),
		Phase: Falling,
		Theta: s.Launch.Theta,
	}
	if y < 0 {
		smp.Y = 0
		smp.Phase = Landed
		next.Phase = Landed
		return next, smp, true
	}
	return next, smp, false
}

// Simulator drives Advance under a termination rule and fans samples out to
// metrics and observers.
type Simulator struct {
	params    Params
	state     State
	reason    atomic.Int32
	produced  int
	clamped   int
	metrics   []Metric
	observers []Observer
}

func New(p Params) (*Simulator, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Simulator{
		params:    p,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}, nil
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Params() Params { return s.params }
func (s *Simulator) State() State   { return s.state }

// Reason and Done may be read while Stream's goroutine is producing.
func (s *Simulator) Reason() StopReason { return StopReason(s.reason.Load()) }
func (s *Simulator) Done() bool         { return s.Reason() != Running }

func (s *Simulator) setReason(r StopReason) { s.reason.Store(int32(r)) }

// Launch returns the detachment record once the mass has left the track.
func (s *Simulator) Launch() (Launch, bool) {
	if s.state.Phase == OnTrack {
		return Launch{}, false
	}
	return s.state.Launch, true
}

// Reset rewinds to the initial state and clears every metric.
func (s *Simulator) Reset() {
	s.state = State{}
	s.setReason(Running)
	s.produced = 0
	s.clamped = 0
	for _, m := range s.metrics {
		m.Reset()
	}
}

// Next produces one sample. ok is false once the run has stopped; Reason
// then tells why.
func (s *Simulator) Next() (smp Sample, ok bool) {
	if s.Done() {
		return Sample{}, false
	}
	if s.params.Termination == FixedDuration && s.state.T >= s.params.Duration {
		s.setReason(DurationElapsed)
		return Sample{}, false
	}
	if s.produced >= s.params.MaxSteps {
		s.setReason(StepLimit)
		return Sample{}, false
	}

	next, smp, landed := Advance(s.params, s.state)
	s.state = next
	s.produced++
	if smp.Clamped {
		s.clamped++
	}

	for _, m := range s.metrics {
		m.Observe(smp)
	}
	for _, o := range s.observers {
		o.OnSample(smp)
	}

	if landed {
		s.setReason(GroundContact)
	}
	return smp, true
}

// RunWithCallback pushes every sample to fn until the run stops, fn returns
// false, or ctx is done. A run that has already stopped keeps its reason.
func (s *Simulator) RunWithCallback(ctx context.Context, fn func(Sample) bool) error {
	if s.Done() {
		return nil
	}
	for {
		select {
		case <-ctx.Done():
			s.setReason(Canceled)
			return &SimulationError{Step: s.state.Step, Time: s.state.T, Wrapped: ctx.Err()}
		default:
		}

		smp, ok := s.Next()
		if !ok {
			return nil
		}
		if !fn(smp) {
			return nil
		}
	}
}

// Run consumes the whole run eagerly. On cancellation the partial result is
// returned together with the error.
func (s *Simulator) Run(ctx context.Context) (*Result, error) {
	// Clamped in float space: Duration/Dt may exceed the int range.
	capacity := math.Min(1024, float64(s.params.MaxSteps))
	if s.params.Termination == FixedDuration {
		capacity = math.Min(s.params.Duration/s.params.Dt+2, float64(s.params.MaxSteps))
	}

	result := &Result{
		Params:  s.params,
		Samples: make([]Sample, 0, int(capacity)),
		Metrics: make(map[string]float64),
	}

	err := s.RunWithCallback(ctx, func(smp Sample) bool {
		result.Samples = append(result.Samples, smp)
		return true
	})

	result.Reason = s.Reason()
	result.Clamped = s.clamped
	if l, ok := s.Launch(); ok {
		result.Launch = &l
	}
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	return result, err
}

// Stream delivers samples on a channel that is closed when the run stops or
// ctx is done. The producing goroutine never outlives either.
func (s *Simulator) Stream(ctx context.Context) <-chan Sample {
	out := make(chan Sample)
	go func() {
		defer close(out)
		_ = s.RunWithCallback(ctx, func(smp Sample) bool {
			select {
			case out <- smp:
				return true
			case <-ctx.Done():
				s.setReason(Canceled)
				return false
			}
		})
	}()
	return out
}

// Simulate is a convenience for a fresh eager run without metrics.
func Simulate(ctx context.Context, p Params) (*Result, error) {
	s, err := New(p)
	if err != nil {
		return nil, err
	}
	return s.Run(ctx)
}
