package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// Windowed mode size; full screen uses the monitor size.
	WindowWidth  = 1024
	WindowHeight = 768

	// FaceSize is the edge length faces are scaled to.
	FaceSize = 500

	// Indicator parameters
	IndicatorDots    = 12
	IndicatorRadius  = 18
	IndicatorDotSize = 3.5
	IndicatorInset   = 50
	IndicatorSpeed   = 0.12
	ColorShiftSpeed  = 0.004

	// Output text
	OutputFontSize  = 16
	OutputBottomGap = 50
)

// Config is the complete aurora configuration.
type Config struct {
	Window  WindowConfig  `mapstructure:"window"`
	Motion  MotionConfig  `mapstructure:"motion"`
	Poll    PollConfig    `mapstructure:"poll"`
	Paths   PathsConfig   `mapstructure:"paths"`
	Sound   SoundConfig   `mapstructure:"sound"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// WindowConfig controls the display surface.
type WindowConfig struct {
	// Fullscreen covers the whole monitor (default: true)
	Fullscreen bool `mapstructure:"fullscreen"`
	// Title is the window title (default: "Aurora AI")
	Title string `mapstructure:"title"`
	// DebugOverlay prints TPS, status revision and uptime in a corner
	DebugOverlay bool `mapstructure:"debug_overlay"`
}

// MotionConfig tunes the idle wandering.
type MotionConfig struct {
	// IntervalMs is the motion tick period in milliseconds (default: 16)
	IntervalMs int `mapstructure:"interval_ms"`
	// Radius bounds the displacement from the screen center in pixels (default: 100)
	Radius float64 `mapstructure:"radius"`
	// EdgeMargin is the distance kept from every screen edge (default: 250)
	EdgeMargin   float64 `mapstructure:"edge_margin"`
	Friction     float64 `mapstructure:"friction"`
	Acceleration float64 `mapstructure:"acceleration"`
	MinSpeed     float64 `mapstructure:"min_speed"`
}

// PollConfig controls how often the status source is re-read.
type PollConfig struct {
	// IntervalMs is the poll tick period in milliseconds (default: 100)
	IntervalMs int `mapstructure:"interval_ms"`
}

// PathsConfig locates the status source and assets.
type PathsConfig struct {
	// Status is the status file; .yaml/.yml/.json are decoded as documents,
	// anything else as name = value lines (default: "api.py")
	Status string `mapstructure:"status"`
	// Faces is the directory holding <name>.png images (default: "src/eyes")
	Faces string `mapstructure:"faces"`
	// Sounds is the directory holding <face>.wav/.mp3/.flac cues (default: "src/sounds")
	Sounds string `mapstructure:"sounds"`
}

// SoundConfig controls the optional audio cue on face changes.
type SoundConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	// Level is "debug", "info", "warn" or "error" (default: "info")
	Level string `mapstructure:"level"`
}

// Default returns a Config with the stock values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Fullscreen: true,
			Title:      "Aurora AI",
		},
		Motion: MotionConfig{
			IntervalMs:   16,
			Radius:       100,
			EdgeMargin:   250,
			Friction:     0.98,
			Acceleration: 0.01,
			MinSpeed:     0.1,
		},
		Poll: PollConfig{
			IntervalMs: 100,
		},
		Paths: PathsConfig{
			Status: "api.py",
			Faces:  "src/eyes",
			Sounds: "src/sounds",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Interval returns the motion tick as a time.Duration
func (c *MotionConfig) Interval() time.Duration {
	return time.Duration(c.IntervalMs) * time.Millisecond
}

// Interval returns the poll tick as a time.Duration
func (c *PollConfig) Interval() time.Duration {
	return time.Duration(c.IntervalMs) * time.Millisecond
}

// SetDefaults registers default values with v
func SetDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("window.fullscreen", d.Window.Fullscreen)
	v.SetDefault("window.title", d.Window.Title)
	v.SetDefault("window.debug_overlay", d.Window.DebugOverlay)

	v.SetDefault("motion.interval_ms", d.Motion.IntervalMs)
	v.SetDefault("motion.radius", d.Motion.Radius)
	v.SetDefault("motion.edge_margin", d.Motion.EdgeMargin)
	v.SetDefault("motion.friction", d.Motion.Friction)
	v.SetDefault("motion.acceleration", d.Motion.Acceleration)
	v.SetDefault("motion.min_speed", d.Motion.MinSpeed)

	v.SetDefault("poll.interval_ms", d.Poll.IntervalMs)

	v.SetDefault("paths.status", d.Paths.Status)
	v.SetDefault("paths.faces", d.Paths.Faces)
	v.SetDefault("paths.sounds", d.Paths.Sounds)

	v.SetDefault("sound.enabled", d.Sound.Enabled)

	v.SetDefault("logging.level", d.Logging.Level)
}

// NewViper returns a viper instance with defaults, environment binding
// (AURORA_POLL_INTERVAL_MS for poll.interval_ms) and, when cfgFile is empty,
// the standard config search path.
func NewViper(cfgFile string) *viper.Viper {
	v := viper.New()
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.config/aurora")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("AURORA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file (a missing file in the search path is fine,
// an explicitly named one is not), unmarshals and validates it.
func Load(v *viper.Viper, explicit bool) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the loops cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Motion.IntervalMs <= 0:
		return fmt.Errorf("motion.interval_ms must be positive, got %d", c.Motion.IntervalMs)
	case c.Poll.IntervalMs <= 0:
		return fmt.Errorf("poll.interval_ms must be positive, got %d", c.Poll.IntervalMs)
	case c.Motion.Radius < 0 || c.Motion.EdgeMargin < 0:
		return fmt.Errorf("motion.radius and motion.edge_margin must not be negative")
	case c.Motion.Friction <= 0 || c.Motion.Friction > 1:
		return fmt.Errorf("motion.friction must be in (0, 1], got %v", c.Motion.Friction)
	case c.Motion.MinSpeed < 0 || c.Motion.Acceleration < 0:
		return fmt.Errorf("motion.min_speed and motion.acceleration must not be negative")
	case c.Paths.Status == "":
		return fmt.Errorf("paths.status must be set")
	case c.Paths.Faces == "":
		return fmt.Errorf("paths.faces must be set")
	}
	return nil
}
