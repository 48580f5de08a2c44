// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/herd/geom"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Collision policies accepted by physics.collision.
const (
	CollisionFreeze  = "freeze"
	CollisionReflect = "reflect"
)

// Config holds all simulation configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Boids     BoidsConfig     `yaml:"boids"`
	Agents    AgentsConfig    `yaml:"agents"`
	Camera    CameraConfig    `yaml:"camera"`
	Game      GameConfig      `yaml:"game"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Tune      TuneConfig      `yaml:"tune"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// PhysicsConfig holds integration parameters.
type PhysicsConfig struct {
	DT            float64 `yaml:"dt"`
	NormalEpsilon float64 `yaml:"normal_epsilon"` // Central-difference step for edge normals
	Collision     string  `yaml:"collision"`      // freeze | reflect
}

// BoidsConfig holds the steering weights, speed bounds and turn rates shared by
// every agent.
type BoidsConfig struct {
	Separation float64 `yaml:"separation"`
	Cohesion   float64 `yaml:"cohesion"`
	Alignment  float64 `yaml:"alignment"`
	Boundary   float64 `yaml:"boundary"`

	LeftProbeDeg  float64 `yaml:"left_probe_deg"`
	RightProbeDeg float64 `yaml:"right_probe_deg"`
	LeftForceDeg  float64 `yaml:"left_force_deg"`
	RightForceDeg float64 `yaml:"right_force_deg"`

	MinSpeed  float64 `yaml:"min_speed"`
	MaxSpeed  float64 `yaml:"max_speed"`
	WildSpeed float64 `yaml:"wild_speed"`

	MinTurnSpeed  float64 `yaml:"min_turn_speed"`  // Tamed, player not boosting
	MaxTurnSpeed  float64 `yaml:"max_turn_speed"`  // Tamed, player boosting
	WildTurnSpeed float64 `yaml:"wild_turn_speed"` // Untamed agents
	SafeTurnSpeed float64 `yaml:"safe_turn_speed"` // Floor while a boundary probe fires

	PlayerInfluence float64 `yaml:"player_influence"`
	Wander          bool    `yaml:"wander"` // Default; levels may override
}

// AgentsConfig holds per-agent perception radii.
type AgentsConfig struct {
	Vision              float64 `yaml:"vision"`
	PersonalSpace       float64 `yaml:"personal_space"`
	PlayerVision        float64 `yaml:"player_vision"`
	PlayerPersonalSpace float64 `yaml:"player_personal_space"`
	SpawnRadius         float64 `yaml:"spawn_radius"`
}

// CameraConfig holds follow-camera parameters.
type CameraConfig struct {
	SnapDistance float64 `yaml:"snap_distance"`
	FollowRate   float64 `yaml:"follow_rate"`
	Zoom         float64 `yaml:"zoom"`
}

// GameConfig holds game-flow parameters.
type GameConfig struct {
	StartLevel     string  `yaml:"start_level"`
	RetryOnFailure bool    `yaml:"retry_on_failure"`
	TimeScale      float64 `yaml:"time_scale"`
}

// TelemetryConfig holds telemetry settings.
type TelemetryConfig struct {
	StatsWindow float64 `yaml:"stats_window"` // Seconds of sim time per CSV row
	PerfWindow  int     `yaml:"perf_window"`  // Ticks averaged per perf row
}

// TuneConfig holds parameters for the headless weight search.
type TuneConfig struct {
	MaxEvaluations int      `yaml:"max_evaluations"`
	TicksPerEval   int      `yaml:"ticks_per_eval"`
	Levels         []string `yaml:"levels"`
}

// DerivedConfig holds values computed from the loaded parameters.
type DerivedConfig struct {
	LeftProbe  geom.Rotation
	RightProbe geom.Rotation
	LeftForce  geom.Rotation
	RightForce geom.Rotation
	Reflect    bool
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path and sets it as the global config.
// If path is empty, uses embedded defaults only.
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns a fresh copy of the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	return cfg
}

// Load reads configuration from a YAML file, merging with embedded defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// Validate checks the relationships the simulation relies on.
func (c *Config) Validate() error {
	b := c.Boids
	a := c.Agents
	switch {
	case b.MinSpeed <= 0 || b.MaxSpeed < b.MinSpeed:
		return fmt.Errorf("boids: need 0 < min_speed <= max_speed, got %v, %v", b.MinSpeed, b.MaxSpeed)
	case b.WildSpeed < b.MinSpeed || b.WildSpeed > b.MaxSpeed:
		return fmt.Errorf("boids: wild_speed %v outside [%v, %v]", b.WildSpeed, b.MinSpeed, b.MaxSpeed)
	case a.PersonalSpace > a.Vision:
		return fmt.Errorf("agents: personal_space %v exceeds vision %v", a.PersonalSpace, a.Vision)
	case a.PlayerPersonalSpace > a.PlayerVision:
		return fmt.Errorf("agents: player_personal_space %v exceeds player_vision %v", a.PlayerPersonalSpace, a.PlayerVision)
	case c.Physics.DT <= 0:
		return fmt.Errorf("physics: dt must be positive, got %v", c.Physics.DT)
	case c.Physics.NormalEpsilon <= 0:
		return fmt.Errorf("physics: normal_epsilon must be positive, got %v", c.Physics.NormalEpsilon)
	}
	switch c.Physics.Collision {
	case CollisionFreeze, CollisionReflect:
	default:
		return fmt.Errorf("physics: unknown collision policy %q", c.Physics.Collision)
	}
	return nil
}

// Refresh recomputes derived values after a live edit. Speed bounds that a
// slider pushed out of order are pulled back so that
// 1 <= MinSpeed <= WildSpeed <= MaxSpeed still holds.
func (c *Config) Refresh() {
	c.orderSpeeds()
	c.computeDerived()
}

func (c *Config) orderSpeeds() {
	b := &c.Boids
	b.MinSpeed = max(b.MinSpeed, 1)
	b.MaxSpeed = max(b.MaxSpeed, b.MinSpeed)
	b.WildSpeed = min(max(b.WildSpeed, b.MinSpeed), b.MaxSpeed)
}

// Snapshot returns an immutable copy for one tick.
func (c *Config) Snapshot() Config {
	snap := *c
	snap.Tune.Levels = append([]string(nil), c.Tune.Levels...)
	return snap
}

func (c *Config) computeDerived() {
	b := c.Boids
	c.Derived.LeftProbe = geom.RotationDeg(b.LeftProbeDeg)
	c.Derived.RightProbe = geom.RotationDeg(b.RightProbeDeg)
	c.Derived.LeftForce = geom.RotationDeg(b.LeftForceDeg)
	c.Derived.RightForce = geom.RotationDeg(b.RightForceDeg)
	c.Derived.Reflect = c.Physics.Collision == CollisionReflect
}

// WriteYAML writes the config to a file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
