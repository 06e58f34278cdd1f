package main

import (
	"github.com/spf13/cobra"

	"github.com/san-kum/loopsim/internal/config"
	"github.com/san-kum/loopsim/internal/dynamo"
)

// paramFlags are the physical overrides shared by every command that runs
// a simulation.
type paramFlags struct {
	radius      float64
	gravity     float64
	v0          float64
	dt          float64
	duration    float64
	untilLanded bool
	maxSteps    int
	model       string
	preset      string
}

func (f *paramFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.Float64Var(&f.radius, "radius", dynamo.DefaultRadius, "loop radius (m)")
	fs.Float64Var(&f.gravity, "gravity", dynamo.DefaultGravity, "gravitational acceleration (m/s²)")
	fs.Float64Var(&f.v0, "v0", dynamo.DefaultV0, "initial speed at the bottom of the loop (m/s)")
	fs.Float64Var(&f.dt, "dt", dynamo.DefaultDt, "time step (s)")
	fs.Float64Var(&f.duration, "time", dynamo.DefaultDuration, "simulated duration for fixed_duration runs (s)")
	fs.BoolVar(&f.untilLanded, "until-landed", false, "run until ground contact instead of a fixed duration")
	fs.IntVar(&f.maxSteps, "max-steps", dynamo.DefaultMaxSteps, "upper bound on emitted samples")
	fs.StringVar(&f.model, "model", "", "normal force model: legacy or newton")
	fs.StringVar(&f.preset, "preset", "", "start from a named preset")
}

// resolve layers the preset and then every explicitly set flag over a copy
// of the loaded configuration.
func (f *paramFlags) resolve(cmd *cobra.Command, base *config.Config) (*config.Config, dynamo.Params, error) {
	c := *base
	if f.preset != "" {
		if err := c.ApplyPreset(f.preset); err != nil {
			return nil, dynamo.Params{}, err
		}
	}

	fs := cmd.Flags()
	if fs.Changed("radius") {
		c.Radius = f.radius
	}
	if fs.Changed("gravity") {
		c.Gravity = f.gravity
	}
	if fs.Changed("v0") {
		c.V0 = f.v0
	}
	if fs.Changed("dt") {
		c.Dt = f.dt
	}
	if fs.Changed("time") {
		c.Duration = f.duration
	}
	if fs.Changed("until-landed") {
		c.Termination = dynamo.FixedDuration.String()
		if f.untilLanded {
			c.Termination = dynamo.UntilLanded.String()
		}
	}
	if fs.Changed("max-steps") {
		c.MaxSteps = f.maxSteps
	}
	if fs.Changed("model") {
		c.ForceModel = f.model
	}
	p, err := c.Params()
	return &c, p, err
}
