// Package automation runs batches of simulations: v0 sweeps, randomized
// trials and YAML scenarios.
package automation

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/loopsim/internal/dynamo"
	"github.com/san-kum/loopsim/internal/metrics"
)

var ErrInvalidSweep = errors.New("automation: invalid sweep")

// Summary condenses one run.
type Summary struct {
	V0          float64           `json:"v0" yaml:"v0"`
	Completed   bool              `json:"completed" yaml:"completed"`
	Launched    bool              `json:"launched" yaml:"launched"`
	LaunchAngle float64           `json:"launch_angle" yaml:"launch_angle"`
	LandingX    float64           `json:"landing_x" yaml:"landing_x"`
	Airtime     float64           `json:"airtime" yaml:"airtime"`
	MaxSpeed    float64           `json:"max_speed" yaml:"max_speed"`
	Reason      dynamo.StopReason `json:"reason" yaml:"reason"`
	Samples     int               `json:"samples" yaml:"samples"`
}

// Summarize runs p with the standard metrics attached.
func Summarize(ctx context.Context, p dynamo.Params) (Summary, *dynamo.Result, error) {
	sim, err := dynamo.New(p)
	if err != nil {
		return Summary{}, nil, err
	}
	metrics.Attach(sim, metrics.Standard(p))
	res, err := sim.Run(ctx)
	if err != nil {
		return Summary{}, res, err
	}

	s := Summary{
		V0:          p.V0,
		Completed:   res.Metrics["revolutions"] >= 1,
		Launched:    res.Launch != nil,
		LaunchAngle: res.Metrics["launch_angle"],
		Airtime:     res.Metrics["airtime"],
		MaxSpeed:    res.Metrics["max_speed"],
		Reason:      res.Reason,
		Samples:     len(res.Samples),
	}
	if last, ok := res.Last(); ok && res.Landed() {
		s.LandingX = last.X
	}
	return s, res, nil
}

// runAll summarizes every params set with at most concurrency runs in
// flight. Results keep the input order.
func runAll(ctx context.Context, params []dynamo.Params, concurrency int) ([]Summary, error) {
	out := make([]Summary, len(params))
	g, gctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}
	for i, p := range params {
		i, p := i, p
		g.Go(func() error {
			s, _, err := Summarize(gctx, p)
			if err != nil {
				return fmt.Errorf("v0=%.4f: %w", p.V0, err)
			}
			out[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Sweep varies v0 linearly from Min to Max over Steps runs.
type Sweep struct {
	Base        dynamo.Params
	Min, Max    float64
	Steps       int
	Concurrency int
}

type SweepReport struct {
	Model         dynamo.ForceModel `json:"force_model"`
	CriticalSpeed float64           `json:"critical_speed"`
	Results       []Summary         `json:"results"`
	Elapsed       time.Duration     `json:"elapsed"`
}

func (s Sweep) Values() []float64 {
	if s.Steps == 1 {
		return []float64{s.Min}
	}
	step := (s.Max - s.Min) / float64(s.Steps-1)
	vs := make([]float64, s.Steps)
	for i := range vs {
		vs[i] = s.Min + float64(i)*step
	}
	vs[len(vs)-1] = s.Max
	return vs
}

func (s Sweep) Validate() error {
	if s.Steps < 1 {
		return fmt.Errorf("%w: steps must be at least 1", ErrInvalidSweep)
	}
	if s.Min < 0 || s.Max < s.Min {
		return fmt.Errorf("%w: need 0 <= min <= max, got [%g, %g]", ErrInvalidSweep, s.Min, s.Max)
	}
	return s.Base.Validate()
}

// RunSweep executes the sweep and returns summaries sorted by v0.
func RunSweep(ctx context.Context, sweep Sweep, logger *zap.Logger) (*SweepReport, error) {
	if err := sweep.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	values := sweep.Values()
	params := make([]dynamo.Params, len(values))
	for i, v0 := range values {
		params[i] = sweep.Base
		params[i].V0 = v0
	}

	start := time.Now()
	results, err := runAll(ctx, params, sweep.Concurrency)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].V0 < results[j].V0 })

	report := &SweepReport{
		Model:         sweep.Base.Model,
		CriticalSpeed: sweep.Base.CriticalSpeed(),
		Results:       results,
		Elapsed:       time.Since(start),
	}
	logger.Info("sweep finished",
		zap.Int("runs", len(results)),
		zap.Float64("min_v0", sweep.Min),
		zap.Float64("max_v0", sweep.Max),
		zap.Duration("elapsed", report.Elapsed))
	return report, nil
}

// MonteCarloConfig perturbs v0 uniformly within ±Perturbation.
type MonteCarloConfig struct {
	Base         dynamo.Params
	Perturbation float64
	Trials       int
	Seed         int64
	Concurrency  int
}

type MonteCarloStats struct {
	Trials    int     `json:"trials"`
	Completed int     `json:"completed"`
	Launched  int     `json:"launched"`
	MeanAir   float64 `json:"mean_airtime"`
}

// RunMonteCarlo is deterministic for a non-zero Seed.
func RunMonteCarlo(ctx context.Context, cfg MonteCarloConfig) ([]Summary, MonteCarloStats, error) {
	if cfg.Trials < 1 {
		return nil, MonteCarloStats{}, fmt.Errorf("%w: trials must be at least 1", ErrInvalidSweep)
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	params := make([]dynamo.Params, cfg.Trials)
	for i := range params {
		params[i] = cfg.Base
		params[i].V0 = max(0, cfg.Base.V0+(rng.Float64()-0.5)*2*cfg.Perturbation)
	}

	results, err := runAll(ctx, params, cfg.Concurrency)
	if err != nil {
		return nil, MonteCarloStats{}, err
	}

	stats := MonteCarloStats{Trials: len(results)}
	var air float64
	for _, r := range results {
		if r.Completed {
			stats.Completed++
		}
		if r.Launched {
			stats.Launched++
			air += r.Airtime
		}
	}
	if stats.Launched > 0 {
		stats.MeanAir = air / float64(stats.Launched)
	}
	return results, stats, nil
}
