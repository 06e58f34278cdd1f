package dynamo

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"
)

func params(v0 float64, mutate ...func(*Params)) Params {
	p := DefaultParams()
	p.V0 = v0
	for _, m := range mutate {
		m(&p)
	}
	return p
}

func untilLanded(p *Params) { p.Termination = UntilLanded }
func newton(p *Params)      { p.Model = NewtonForce }

func maxSteps(n int) func(*Params) {
	return func(p *Params) { p.MaxSteps = n }
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Params)
		wantErr error
	}{
		{"defaults", func(*Params) {}, nil},
		{"zero radius", func(p *Params) { p.Radius = 0 }, ErrParameterBounds},
		{"negative gravity", func(p *Params) { p.Gravity = -1 }, ErrParameterBounds},
		{"negative v0", func(p *Params) { p.V0 = -0.1 }, ErrParameterBounds},
		{"zero dt", func(p *Params) { p.Dt = 0 }, ErrParameterBounds},
		{"nan v0", func(p *Params) { p.V0 = math.NaN() }, ErrParameterBounds},
		{"infinite radius", func(p *Params) { p.Radius = math.Inf(1) }, ErrParameterBounds},
		{"zero duration", func(p *Params) { p.Duration = 0 }, ErrParameterBounds},
		{"zero duration until landed", func(p *Params) { p.Duration = 0; p.Termination = UntilLanded }, nil},
		{"zero max steps", func(p *Params) { p.MaxSteps = 0 }, ErrParameterBounds},
		{"unknown termination", func(p *Params) { p.Termination = Termination(9) }, ErrUnknownTermination},
		{"unknown model", func(p *Params) { p.Model = ForceModel(7) }, ErrUnknownForceModel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mutate(&p)
			err := p.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			if _, err := New(p); !errors.Is(err, tt.wantErr) {
				t.Errorf("New: expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCriticalSpeed(t *testing.T) {
	p := DefaultParams()
	if got, want := p.CriticalSpeed(), math.Sqrt(3*9.81*5); math.Abs(got-want) > 1e-12 {
		t.Errorf("legacy: expected %f, got %f", want, got)
	}
	p.Model = NewtonForce
	if got, want := p.CriticalSpeed(), math.Sqrt(5*9.81*5); math.Abs(got-want) > 1e-12 {
		t.Errorf("newton: expected %f, got %f", want, got)
	}
}

func TestZeroSpeedFallsImmediately(t *testing.T) {
	res, err := Simulate(context.Background(), params(0, untilLanded))
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(res.Samples) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(res.Samples))
	}

	first, last := res.Samples[0], res.Samples[1]
	if first.Phase != Falling || first.X != 0 || first.Y != 0 || first.T != 0 {
		t.Errorf("unexpected first sample %+v", first)
	}
	if last.Phase != Landed || last.Y != 0 {
		t.Errorf("unexpected last sample %+v", last)
	}
	if res.Reason != GroundContact {
		t.Errorf("expected ground contact, got %s", res.Reason)
	}
	if res.Launch == nil || res.Launch.Theta != 0 || res.Launch.Speed() != 0 {
		t.Errorf("unexpected launch %+v", res.Launch)
	}
}

func TestFixedDurationSampleCount(t *testing.T) {
	p := params(20, func(p *Params) { p.Duration = 1 })
	res, err := Simulate(context.Background(), p)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(res.Samples) != 100 {
		t.Errorf("expected 100 samples, got %d", len(res.Samples))
	}
	last, _ := res.Last()
	if last.T >= p.Duration || last.T < p.Duration-p.Dt-1e-9 {
		t.Errorf("last sample time %f outside [%f, %f)", last.T, p.Duration-p.Dt, p.Duration)
	}
	if res.Reason != DurationElapsed {
		t.Errorf("expected duration elapsed, got %s", res.Reason)
	}
	if res.Launch != nil {
		t.Errorf("expected no launch, got %+v", res.Launch)
	}
}

func TestEnergyConsistencyOnTrack(t *testing.T) {
	for _, p := range []Params{
		params(10.55),
		params(10.55, newton, untilLanded),
		params(15.55, func(p *Params) { p.Dt = 0.001 }, untilLanded, maxSteps(10000)),
		params(20, newton, untilLanded, maxSteps(2000)),
	} {
		res, err := Simulate(context.Background(), p)
		if err != nil {
			t.Fatalf("run failed: %v", err)
		}
		tol := 1e-9 * p.V0 * p.V0
		for i, s := range res.Samples {
			if s.Phase != OnTrack || s.Clamped {
				continue
			}
			residual := s.Speed*s.Speed - (p.V0*p.V0 - 2*p.Gravity*s.Y)
			if math.Abs(residual) > tol {
				t.Fatalf("v0=%.2f %s: sample %d residual %g", p.V0, p.Model, i, residual)
			}
		}
	}
}

func TestLegacyStallIsClamped(t *testing.T) {
	res, err := Simulate(context.Background(), params(10.55))
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if res.Reason != DurationElapsed {
		t.Errorf("expected duration elapsed, got %s", res.Reason)
	}
	if res.Clamped == 0 {
		t.Error("expected clamped samples")
	}
	for _, s := range res.Samples {
		if s.Phase != OnTrack {
			t.Fatalf("expected the mass to stay on the track, got %+v", s)
		}
		if s.Clamped && s.Speed != 0 {
			t.Fatalf("clamped sample with speed %f", s.Speed)
		}
	}
}

func TestStepLimit(t *testing.T) {
	res, err := Simulate(context.Background(), params(20, untilLanded, maxSteps(50)))
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(res.Samples) != 50 {
		t.Errorf("expected 50 samples, got %d", len(res.Samples))
	}
	if res.Reason != StepLimit {
		t.Errorf("expected step limit, got %s", res.Reason)
	}
}

func TestHugeDurationHitsStepLimit(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
	}{
		{"huge duration", func(p *Params) { p.Duration = 1e20 }},
		{"tiny dt", func(p *Params) { p.Duration = 1e6; p.Dt = 1e-300 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := params(10.55, tt.mutate, maxSteps(10))
			if err := p.Validate(); err != nil {
				t.Fatalf("params rejected: %v", err)
			}
			res, err := Simulate(context.Background(), p)
			if err != nil {
				t.Fatalf("run failed: %v", err)
			}
			if len(res.Samples) != 10 {
				t.Errorf("expected 10 samples, got %d", len(res.Samples))
			}
			if res.Reason != StepLimit {
				t.Errorf("expected step limit, got %s", res.Reason)
			}
		})
	}
}

func TestRunIsDeterministic(t *testing.T) {
	p := params(10.55, newton, untilLanded)
	a, err := Simulate(context.Background(), p)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	b, err := Simulate(context.Background(), p)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("runs differ (-first +second):\n%s", diff)
	}
}

func TestDeliveryStylesAgree(t *testing.T) {
	p := params(10.55, newton, untilLanded)
	want, err := Simulate(context.Background(), p)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	s, _ := New(p)
	var pulled []Sample
	for {
		smp, ok := s.Next()
		if !ok {
			break
		}
		pulled = append(pulled, smp)
	}
	if diff := cmp.Diff(want.Samples, pulled); diff != "" {
		t.Errorf("Next differs (-run +next):\n%s", diff)
	}
	if s.Reason() != want.Reason {
		t.Errorf("expected reason %s, got %s", want.Reason, s.Reason())
	}

	s.Reset()
	var pushed []Sample
	if err := s.RunWithCallback(context.Background(), func(smp Sample) bool {
		pushed = append(pushed, smp)
		return true
	}); err != nil {
		t.Fatalf("callback run failed: %v", err)
	}
	if diff := cmp.Diff(want.Samples, pushed); diff != "" {
		t.Errorf("RunWithCallback differs (-run +callback):\n%s", diff)
	}
}

func TestAdvanceIsPure(t *testing.T) {
	p := params(10.55, newton)
	s := State{T: 0.5, Step: 50, Theta: 1.0}
	a, sa, la := Advance(p, s)
	b, sb, lb := Advance(p, s)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("states differ:\n%s", diff)
	}
	if sa != sb || la != lb {
		t.Errorf("samples differ: %+v vs %+v", sa, sb)
	}
	if s.Theta != 1.0 || s.Step != 50 {
		t.Errorf("input state mutated: %+v", s)
	}
}

type countMetric struct{ n int }

func (c *countMetric) Name() string      { return "count" }
func (c *countMetric) Observe(Sample)    { c.n++ }
func (c *countMetric) Value() float64    { return float64(c.n) }
func (c *countMetric) Reset()            { c.n = 0 }
func (c *countMetric) OnSample(s Sample) { c.Observe(s) }

func TestMetricsAndObservers(t *testing.T) {
	s, err := New(params(0, untilLanded))
	if err != nil {
		t.Fatal(err)
	}
	m, o := &countMetric{}, &countMetric{}
	s.AddMetric(m)
	s.AddObserver(o)

	res, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if res.Metrics["count"] != 2 {
		t.Errorf("expected metric 2, got %f", res.Metrics["count"])
	}
	if o.n != 2 {
		t.Errorf("expected observer to see 2 samples, got %d", o.n)
	}

	s.Reset()
	if m.n != 0 {
		t.Errorf("expected reset metric, got %d", m.n)
	}
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := Simulate(ctx, params(20, untilLanded))
	var simErr *SimulationError
	if !errors.As(err, &simErr) {
		t.Fatalf("expected SimulationError, got %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if res == nil || res.Reason != Canceled {
		t.Errorf("expected canceled partial result, got %+v", res)
	}
}

func TestFinishedRunKeepsReason(t *testing.T) {
	s, _ := New(params(0, untilLanded))
	if _, err := s.Run(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	err := s.RunWithCallback(ctx, func(Sample) bool { calls++; return true })
	if err != nil {
		t.Errorf("expected nil error on a finished run, got %v", err)
	}
	if calls != 0 {
		t.Errorf("expected no samples, got %d", calls)
	}
	if s.Reason() != GroundContact {
		t.Errorf("expected ground contact, got %s", s.Reason())
	}
}

func TestStream(t *testing.T) {
	defer goleak.VerifyNone(t)

	p := params(10.55, newton, untilLanded)
	want, _ := Simulate(context.Background(), p)

	s, _ := New(p)
	var got []Sample
	for smp := range s.Stream(context.Background()) {
		got = append(got, smp)
	}
	if diff := cmp.Diff(want.Samples, got); diff != "" {
		t.Errorf("Stream differs (-run +stream):\n%s", diff)
	}
}

func TestStreamCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	s, _ := New(params(20, untilLanded))
	ch := s.Stream(ctx)

	for i := 0; i < 10; i++ {
		if _, ok := <-ch; !ok {
			t.Fatal("stream closed early")
		}
	}
	cancel()
	for range ch {
	}
	if s.Reason() != Canceled {
		t.Errorf("expected canceled, got %s", s.Reason())
	}
}

func TestReasonWhileStreaming(t *testing.T) {
	defer goleak.VerifyNone(t)

	s, _ := New(params(10.55, newton, untilLanded))
	ch := s.Stream(context.Background())

	n := 0
	for range ch {
		if s.Done() && s.Reason() != GroundContact {
			t.Fatalf("unexpected reason %s mid-stream", s.Reason())
		}
		n++
	}
	if n != 220 {
		t.Errorf("expected 220 samples, got %d", n)
	}
	if s.Reason() != GroundContact {
		t.Errorf("expected ground contact, got %s", s.Reason())
	}
}

func TestTextRoundTrip(t *testing.T) {
	for _, m := range []ForceModel{LegacyForce, NewtonForce} {
		b, _ := m.MarshalText()
		var got ForceModel
		if err := got.UnmarshalText(b); err != nil || got != m {
			t.Errorf("force model %s: got %s, %v", m, got, err)
		}
	}
	if _, err := ParseTermination("sometimes"); !errors.Is(err, ErrUnknownTermination) {
		t.Errorf("expected ErrUnknownTermination, got %v", err)
	}
	if _, err := ParseForceModel("aristotle"); !errors.Is(err, ErrUnknownForceModel) {
		t.Errorf("expected ErrUnknownForceModel, got %v", err)
	}
}
