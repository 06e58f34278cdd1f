package config

import "sort"

// Preset is a named physical setup.
type Preset struct {
	Description   string  `yaml:"description"`
	Radius        float64 `yaml:"radius"`
	Gravity       float64 `yaml:"gravity"`
	V0            float64 `yaml:"v0"`
	Dt            float64 `yaml:"dt"`
	Duration      float64 `yaml:"duration"`
	Termination   string  `yaml:"termination"`
	ForceModel    string  `yaml:"force_model"`
	MaxSteps      int     `yaml:"max_steps"`
	StepsPerFrame int     `yaml:"steps_per_frame"`
}

var Presets = map[string]*Preset{
	"coaster-2d": {
		Description: "planar reference run, fixed 4 s",
		Radius:      5, Gravity: 9.81, V0: 10.55, Dt: 0.01, Duration: 4,
		Termination: "fixed_duration", ForceModel: "legacy", MaxSteps: 1_000_000,
	},
	"coaster-3d": {
		Description: "1000 Hz reference run until ground contact",
		Radius:      5, Gravity: 9.81, V0: 15.55, Dt: 0.001, Duration: 4,
		Termination: "until_landed", ForceModel: "legacy", MaxSteps: 20_000,
		StepsPerFrame: 16,
	},
	"bottom-launch": {
		Description: "too slow for the loop; leaves the track at the bottom",
		Radius:      5, Gravity: 9.81, V0: 7, Dt: 0.01, Duration: 4,
		Termination: "until_landed", ForceModel: "legacy", MaxSteps: 100_000,
	},
	"full-loop": {
		Description: "comfortably above the critical speed",
		Radius:      5, Gravity: 9.81, V0: 20, Dt: 0.01, Duration: 4,
		Termination: "fixed_duration", ForceModel: "newton", MaxSteps: 1_000_000,
	},
	"newton-launch": {
		Description: "radial balance model; leaves the track in the upper half",
		Radius:      5, Gravity: 9.81, V0: 10.55, Dt: 0.01, Duration: 4,
		Termination: "until_landed", ForceModel: "newton", MaxSteps: 100_000,
	},
}

func GetPreset(name string) *Preset {
	return Presets[name]
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
