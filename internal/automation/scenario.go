package automation

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/loopsim/internal/config"
	"github.com/san-kum/loopsim/internal/dynamo"
	"github.com/san-kum/loopsim/internal/storage"
)

// Scenario is a named list of runs executed in order.
type Scenario struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Runs        []ScenarioRun `yaml:"runs"`
}

// ScenarioRun starts from a preset (or the base config) and applies the
// overrides that are set.
type ScenarioRun struct {
	Name        string   `yaml:"name"`
	Preset      string   `yaml:"preset"`
	Radius      *float64 `yaml:"radius"`
	Gravity     *float64 `yaml:"gravity"`
	V0          *float64 `yaml:"v0"`
	Dt          *float64 `yaml:"dt"`
	Duration    *float64 `yaml:"duration"`
	Termination string   `yaml:"termination"`
	ForceModel  string   `yaml:"force_model"`
	MaxSteps    *int     `yaml:"max_steps"`
}

type ScenarioOutcome struct {
	Name    string
	RunID   string
	Summary Summary
	Result  *dynamo.Result
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if len(scenario.Runs) == 0 {
		return nil, fmt.Errorf("scenario %s has no runs", path)
	}
	return &scenario, nil
}

// Params resolves the run against base.
func (r ScenarioRun) Params(base *config.Config) (dynamo.Params, error) {
	cfg := *base
	if r.Preset != "" {
		if err := cfg.ApplyPreset(r.Preset); err != nil {
			return dynamo.Params{}, err
		}
	}
	setFloat := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
		}
	}
	setFloat(&cfg.Radius, r.Radius)
	setFloat(&cfg.Gravity, r.Gravity)
	setFloat(&cfg.V0, r.V0)
	setFloat(&cfg.Dt, r.Dt)
	setFloat(&cfg.Duration, r.Duration)
	if r.Termination != "" {
		cfg.Termination = r.Termination
	}
	if r.ForceModel != "" {
		cfg.ForceModel = r.ForceModel
	}
	if r.MaxSteps != nil {
		cfg.MaxSteps = *r.MaxSteps
	}
	return cfg.Params()
}

// RunScenario executes every run sequentially. Each result is saved when
// store is non-nil. Outcomes gathered before a failure are returned with
// the error.
func RunScenario(ctx context.Context, sc *Scenario, base *config.Config, store *storage.Store, logger *zap.Logger) ([]ScenarioOutcome, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	outcomes := make([]ScenarioOutcome, 0, len(sc.Runs))

	for i, run := range sc.Runs {
		name := run.Name
		if name == "" {
			name = fmt.Sprintf("%s-%d", sc.Name, i+1)
		}
		logger.Info("running scenario step",
			zap.String("scenario", sc.Name),
			zap.String("run", name),
			zap.Int("step", i+1),
			zap.Int("of", len(sc.Runs)))

		p, err := run.Params(base)
		if err != nil {
			return outcomes, fmt.Errorf("run %s: %w", name, err)
		}
		summary, res, err := Summarize(ctx, p)
		if err != nil {
			return outcomes, fmt.Errorf("run %s: %w", name, err)
		}

		out := ScenarioOutcome{Name: name, Summary: summary, Result: res}
		if store != nil {
			id, err := store.Save(name, res)
			if err != nil {
				return outcomes, fmt.Errorf("run %s: save: %w", name, err)
			}
			out.RunID = id
		}
		outcomes = append(outcomes, out)
	}
	return outcomes, nil
}
