package automation

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/san-kum/loopsim/internal/config"
	"github.com/san-kum/loopsim/internal/dynamo"
	"github.com/san-kum/loopsim/internal/storage"
)

func newtonBase() dynamo.Params {
	p := dynamo.DefaultParams()
	p.Model = dynamo.NewtonForce
	p.Termination = dynamo.UntilLanded
	p.MaxSteps = 2000
	return p
}

func TestSweepValues(t *testing.T) {
	assert.Equal(t, []float64{8, 10, 12, 14, 16, 18, 20}, Sweep{Min: 8, Max: 20, Steps: 7}.Values())
	assert.Equal(t, []float64{3}, Sweep{Min: 3, Max: 9, Steps: 1}.Values())
}

func TestSweepValidate(t *testing.T) {
	base := dynamo.DefaultParams()
	assert.ErrorIs(t, Sweep{Base: base, Min: 1, Max: 2, Steps: 0}.Validate(), ErrInvalidSweep)
	assert.ErrorIs(t, Sweep{Base: base, Min: 3, Max: 2, Steps: 2}.Validate(), ErrInvalidSweep)
	assert.ErrorIs(t, Sweep{Base: base, Min: -1, Max: 2, Steps: 2}.Validate(), ErrInvalidSweep)

	base.Dt = 0
	assert.ErrorIs(t, Sweep{Base: base, Min: 1, Max: 2, Steps: 2}.Validate(), dynamo.ErrParameterBounds)
}

func TestRunSweepFindsCriticalSpeed(t *testing.T) {
	defer goleak.VerifyNone(t)

	report, err := RunSweep(context.Background(), Sweep{
		Base: newtonBase(), Min: 8, Max: 20, Steps: 7, Concurrency: 3,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.Equal(t, dynamo.NewtonForce, report.Model)
	assert.InDelta(t, math.Sqrt(5*9.81*5), report.CriticalSpeed, 1e-12)
	require.Len(t, report.Results, 7)

	for i, r := range report.Results {
		if i > 0 {
			assert.Less(t, report.Results[i-1].V0, r.V0)
		}
		assert.Equal(t, r.V0 > report.CriticalSpeed, r.Completed, "v0=%.1f", r.V0)
		if r.Completed {
			assert.False(t, r.Launched, "v0=%.1f", r.V0)
			assert.Equal(t, dynamo.StepLimit, r.Reason)
		}
	}

	stalled := report.Results[0]
	assert.False(t, stalled.Launched)
	assert.Equal(t, dynamo.StepLimit, stalled.Reason)

	launched := report.Results[1]
	assert.True(t, launched.Launched)
	assert.Equal(t, dynamo.GroundContact, launched.Reason)
	assert.Greater(t, launched.LaunchAngle, 0.0)
	assert.Greater(t, launched.Airtime, 0.0)
	assert.Equal(t, 2000, report.Results[6].Samples)
}

func TestRunSweepCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := RunSweep(ctx, Sweep{Base: newtonBase(), Min: 8, Max: 20, Steps: 4}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMonteCarlo(t *testing.T) {
	base := newtonBase()
	base.V0 = 10.55

	results, stats, err := RunMonteCarlo(context.Background(), MonteCarloConfig{Base: base, Trials: 8, Seed: 1})
	require.NoError(t, err)
	require.Len(t, results, 8)
	assert.Equal(t, 8, stats.Launched)
	assert.Zero(t, stats.Completed)
	assert.InDelta(t, 1.04, stats.MeanAir, 0.005)

	cfg := MonteCarloConfig{Base: base, Trials: 6, Perturbation: 3, Seed: 42, Concurrency: 2}
	a, _, err := RunMonteCarlo(context.Background(), cfg)
	require.NoError(t, err)
	b, _, err := RunMonteCarlo(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	for _, r := range a {
		assert.InDelta(t, base.V0, r.V0, 3)
	}

	_, _, err = RunMonteCarlo(context.Background(), MonteCarloConfig{Base: base})
	assert.ErrorIs(t, err, ErrInvalidSweep)
}

const scenarioYAML = `
name: demo
description: three reference runs
runs:
  - name: bottom-check
    preset: bottom-launch
  - name: fast
    preset: full-loop
    termination: until_landed
    max_steps: 300
  - preset: newton-launch
    dt: 0.005
`

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestRunScenario(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, scenarioYAML))
	require.NoError(t, err)
	require.Len(t, sc.Runs, 3)

	store, err := storage.New(t.TempDir(), zaptest.NewLogger(t))
	require.NoError(t, err)

	outcomes, err := RunScenario(context.Background(), sc, config.DefaultConfig(), store, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.Len(t, outcomes, 3)

	bottom := outcomes[0]
	assert.Equal(t, "bottom-check", bottom.Name)
	assert.True(t, bottom.Summary.Launched)
	assert.Zero(t, bottom.Summary.LaunchAngle)
	assert.Equal(t, dynamo.GroundContact, bottom.Summary.Reason)

	fast := outcomes[1]
	assert.True(t, fast.Summary.Completed)
	assert.Equal(t, dynamo.StepLimit, fast.Summary.Reason)
	assert.Equal(t, 300, fast.Summary.Samples)

	assert.Equal(t, "demo-3", outcomes[2].Name)
	assert.Equal(t, 0.005, outcomes[2].Result.Params.Dt)
	assert.Equal(t, dynamo.NewtonForce, outcomes[2].Result.Params.Model)

	runs, err := store.List()
	require.NoError(t, err)
	assert.Len(t, runs, 3)
	for _, o := range outcomes {
		assert.NotEmpty(t, o.RunID)
	}
}

func TestRunScenarioStopsAtFirstFailure(t *testing.T) {
	sc := &Scenario{Name: "broken", Runs: []ScenarioRun{{Preset: "bottom-launch"}, {Preset: "moon-shot"}}}

	outcomes, err := RunScenario(context.Background(), sc, config.DefaultConfig(), nil, nil)
	assert.ErrorIs(t, err, config.ErrUnknownPreset)
	require.Len(t, outcomes, 1)
	assert.Empty(t, outcomes[0].RunID)
}

func TestLoadScenarioErrors(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = LoadScenario(writeScenario(t, "name: empty\nruns: []\n"))
	assert.Error(t, err)

	_, err = LoadScenario(writeScenario(t, "runs: [unclosed"))
	assert.Error(t, err)
}
