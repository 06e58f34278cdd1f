package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/loopsim/internal/dynamo"
)

const (
	DefaultDataDir       = "~/.loopsim/runs"
	DefaultFPS           = 60
	DefaultStepsPerFrame = 0
	DefaultStreamAddr    = "127.0.0.1:8090"
	DefaultStreamRate    = 1000.0
	EnvPrefix            = "LOOPSIM"
)

var ErrUnknownPreset = errors.New("config: unknown preset")

type Config struct {
	Radius      float64 `mapstructure:"radius" yaml:"radius"`
	Gravity     float64 `mapstructure:"gravity" yaml:"gravity"`
	V0          float64 `mapstructure:"v0" yaml:"v0"`
	Dt          float64 `mapstructure:"dt" yaml:"dt"`
	Duration    float64 `mapstructure:"duration" yaml:"duration"`
	Termination string  `mapstructure:"termination" yaml:"termination"`
	ForceModel  string  `mapstructure:"force_model" yaml:"force_model"`
	MaxSteps    int     `mapstructure:"max_steps" yaml:"max_steps"`

	DataDir string       `mapstructure:"data_dir" yaml:"data_dir"`
	Logger  LoggerConfig `mapstructure:"logger" yaml:"logger"`
	Live    LiveConfig   `mapstructure:"live" yaml:"live"`
	Stream  StreamConfig `mapstructure:"stream" yaml:"stream"`
}

// LoggerConfig configures the zap logger and its optional rotating file.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// LiveConfig paces the terminal and window viewers. StepsPerFrame 0 derives
// the step count from dt so the animation runs in real time.
type LiveConfig struct {
	FPS           int `mapstructure:"fps" yaml:"fps"`
	StepsPerFrame int `mapstructure:"steps_per_frame" yaml:"steps_per_frame"`
}

type StreamConfig struct {
	Addr string  `mapstructure:"addr" yaml:"addr"`
	Rate float64 `mapstructure:"rate" yaml:"rate"`
}

// SetDefaults registers every key so environment variables bind even when
// no file sets them.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("radius", dynamo.DefaultRadius)
	v.SetDefault("gravity", dynamo.DefaultGravity)
	v.SetDefault("v0", dynamo.DefaultV0)
	v.SetDefault("dt", dynamo.DefaultDt)
	v.SetDefault("duration", dynamo.DefaultDuration)
	v.SetDefault("termination", dynamo.FixedDuration.String())
	v.SetDefault("force_model", dynamo.LegacyForce.String())
	v.SetDefault("max_steps", dynamo.DefaultMaxSteps)
	v.SetDefault("data_dir", DefaultDataDir)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.service_name", "loopsim")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.compress", true)

	v.SetDefault("live.fps", DefaultFPS)
	v.SetDefault("live.steps_per_frame", DefaultStepsPerFrame)

	v.SetDefault("stream.addr", DefaultStreamAddr)
	v.SetDefault("stream.rate", DefaultStreamRate)
}

// NewViper returns a viper instance with defaults and LOOPSIM_* environment
// binding in place.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func DefaultConfig() *Config {
	cfg, err := NewConfigFromViper(NewViper())
	if err != nil {
		panic(fmt.Sprintf("config: invalid defaults: %v", err))
	}
	return cfg
}

func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Load layers the YAML file at path over the defaults, then the environment.
// An empty path loads defaults and environment only.
func Load(path string) (*Config, error) {
	v := NewViper()
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	return NewConfigFromViper(v)
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Params converts the physical section into simulator parameters.
func (c *Config) Params() (dynamo.Params, error) {
	term, err := dynamo.ParseTermination(c.Termination)
	if err != nil {
		return dynamo.Params{}, err
	}
	model, err := dynamo.ParseForceModel(c.ForceModel)
	if err != nil {
		return dynamo.Params{}, err
	}
	p := dynamo.Params{
		Radius:      c.Radius,
		Gravity:     c.Gravity,
		V0:          c.V0,
		Dt:          c.Dt,
		Model:       model,
		Termination: term,
		Duration:    c.Duration,
		MaxSteps:    c.MaxSteps,
	}
	return p, p.Validate()
}

func (c *Config) Validate() error {
	if _, err := c.Params(); err != nil {
		return err
	}
	if c.Live.FPS <= 0 {
		return fmt.Errorf("live.fps must be a positive integer")
	}
	if c.Live.StepsPerFrame < 0 {
		return fmt.Errorf("live.steps_per_frame must not be negative")
	}
	if c.Stream.Rate < 0 {
		return fmt.Errorf("stream.rate must not be negative")
	}
	return nil
}

// FrameSteps is the number of dt steps that cover one frame at fps, at
// least 1.
func FrameSteps(fps int, dt float64) int {
	return max(1, int(math.Round(1/(float64(fps)*dt))))
}

// Pace returns the viewer frame rate and steps per frame. A positive
// override wins over the configured value.
func (c *Config) Pace(fps, stepsPerFrame int) (int, int) {
	if fps <= 0 {
		fps = c.Live.FPS
	}
	if stepsPerFrame <= 0 {
		stepsPerFrame = c.Live.StepsPerFrame
	}
	if stepsPerFrame <= 0 {
		stepsPerFrame = FrameSteps(fps, c.Dt)
	}
	return fps, stepsPerFrame
}

// ApplyPreset overwrites the physical parameters with the named preset,
// leaving logging, storage and pacing untouched.
func (c *Config) ApplyPreset(name string) error {
	p := GetPreset(name)
	if p == nil {
		return fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	c.Radius = p.Radius
	c.Gravity = p.Gravity
	c.V0 = p.V0
	c.Dt = p.Dt
	c.Duration = p.Duration
	c.Termination = p.Termination
	c.ForceModel = p.ForceModel
	c.MaxSteps = p.MaxSteps
	if p.StepsPerFrame > 0 {
		c.Live.StepsPerFrame = p.StepsPerFrame
	}
	return nil
}
