package config

import (
	"errors"
	"fmt"
	"strings"
)

// Range задает замкнутый вещественный интервал [Min, Max].
type Range struct {
	Min float64 `mapstructure:"min" yaml:"min"`
	Max float64 `mapstructure:"max" yaml:"max"`
}

// IntRange задает замкнутый целочисленный интервал [Min, Max].
type IntRange struct {
	Min int `mapstructure:"min" yaml:"min"`
	Max int `mapstructure:"max" yaml:"max"`
}

// Config holds the batch parameters. It is read once per process and never
// mutated after Validate.
type Config struct {
	Seed       uint64 `mapstructure:"seed"`
	Runs       int    `mapstructure:"runs"`
	Resolution int    `mapstructure:"resolution"`
	Frames     int    `mapstructure:"frames"`
	FPS        int    `mapstructure:"fps"`
	FileFormat string `mapstructure:"format"`
	DirtLevel  int    `mapstructure:"dirt_level"`

	RotationSpeed    Range    `mapstructure:"rotation_speed"`
	RotationChanges  IntRange `mapstructure:"rotation_changes"`
	FallSpeed        Range    `mapstructure:"fall_speed"`
	DisplaceStrength Range    `mapstructure:"displace_strength"`
	CloudsScale      Range    `mapstructure:"clouds_scale"`

	ScenesDir  string `mapstructure:"scenes_dir"`
	RendersDir string `mapstructure:"renders_dir"`

	Blender BlenderConfig `mapstructure:"blender"`
	Log     LogConfig     `mapstructure:"log"`

	Slate        bool   `mapstructure:"slate"`
	ShowStats    bool   `mapstructure:"stats"`
	BuildVersion string `mapstructure:"-"`
}

// BlenderConfig управляет необязательным воспроизведением сцены в Blender.
type BlenderConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Binary     string `mapstructure:"binary"`
	Render     bool   `mapstructure:"render"`
	DeviceType string `mapstructure:"device_type"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// FrameParams описывает задание утилиты раскадровки.
type FrameParams struct {
	InputPath string
	OutDir    string
	Name      string
	DPI       int
	Width     int
	Height    int
	Quality   int
	Workers   int
}

var (
	supportedFormats = []string{"JPEG", "PNG"}

	ErrInvalidConfig = errors.New("invalid configuration")
)

// Duration returns the animation length in seconds.
func (c *Config) Duration() float64 {
	return float64(c.Frames) / float64(c.FPS)
}

// Validate проверяет параметры пакета до начала генерации.
func (c *Config) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if c.Runs < 0 {
		add("runs must be >= 0, got %d", c.Runs)
	}
	if c.Resolution <= 0 {
		add("resolution must be positive, got %d", c.Resolution)
	}
	// первый и последний ключи прокрутки должны стоять на разных кадрах
	if c.Frames < 2 {
		add("frames must be >= 2, got %d", c.Frames)
	}
	if c.FPS <= 0 {
		add("fps must be positive, got %d", c.FPS)
	}
	if !isSupportedFormat(c.FileFormat) {
		add("format %q is not one of %s", c.FileFormat, strings.Join(supportedFormats, ", "))
	}
	if c.DirtLevel < 0 || c.DirtLevel > 10 {
		add("dirt_level must be in [0, 10], got %d", c.DirtLevel)
	}

	checkRange := func(name string, r Range, positive bool) {
		if r.Min > r.Max {
			add("%s: min %.3f > max %.3f", name, r.Min, r.Max)
		}
		if positive && r.Min <= 0 {
			add("%s: min must be positive, got %.3f", name, r.Min)
		}
	}
	checkRange("rotation_speed", c.RotationSpeed, true)
	checkRange("fall_speed", c.FallSpeed, true)
	checkRange("displace_strength", c.DisplaceStrength, false)
	checkRange("clouds_scale", c.CloudsScale, true)

	if c.RotationChanges.Min < 0 {
		add("rotation_changes: min must be >= 0, got %d", c.RotationChanges.Min)
	}
	if c.RotationChanges.Min > c.RotationChanges.Max {
		add("rotation_changes: min %d > max %d", c.RotationChanges.Min, c.RotationChanges.Max)
	}
	// Ключи должны строго возрастать после округления и не совпадать с кадром 1.
	if c.Frames > 0 && 3*c.RotationChanges.Max > 2*c.Frames {
		add("rotation_changes: max %d is too large for %d frames", c.RotationChanges.Max, c.Frames)
	}

	if c.ScenesDir == "" {
		add("scenes_dir must not be empty")
	}
	if c.RendersDir == "" {
		add("renders_dir must not be empty")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

func isSupportedFormat(f string) bool {
	for _, s := range supportedFormats {
		if s == f {
			return true
		}
	}
	return false
}
