package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides, e.g. DIRTSYNTH_SEED.
const EnvPrefix = "DIRTSYNTH"

// SetDefaults регистрирует значения по умолчанию (константы исходного генератора).
func SetDefaults(v *viper.Viper) {
	v.SetDefault("seed", 0)
	v.SetDefault("runs", 2)
	v.SetDefault("resolution", 512)
	v.SetDefault("frames", 120)
	v.SetDefault("fps", 30)
	v.SetDefault("format", "JPEG")
	v.SetDefault("dirt_level", 9)

	v.SetDefault("rotation_speed.min", 60.0)
	v.SetDefault("rotation_speed.max", 360.0)
	v.SetDefault("rotation_changes.min", 0)
	v.SetDefault("rotation_changes.max", 4)
	v.SetDefault("fall_speed.min", 1.0)
	v.SetDefault("fall_speed.max", 10.0)
	v.SetDefault("displace_strength.min", 0.2)
	v.SetDefault("displace_strength.max", 2.0)
	v.SetDefault("clouds_scale.min", 1.0)
	v.SetDefault("clouds_scale.max", 2.0)

	v.SetDefault("scenes_dir", "generated")
	v.SetDefault("renders_dir", "renders")

	v.SetDefault("blender.enabled", false)
	v.SetDefault("blender.binary", "")
	v.SetDefault("blender.render", false)
	v.SetDefault("blender.device_type", "CUDA")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("slate", false)
	v.SetDefault("stats", false)
}

// NewViper creates a viper instance with defaults, env overrides and an
// optional config file.
func NewViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := ReadConfigFile(v, configFile); err != nil {
		return nil, err
	}
	return v, nil
}

// ReadConfigFile merges a YAML config file into v. An empty path is a no-op.
func ReadConfigFile(v *viper.Viper, configFile string) error {
	if configFile == "" {
		return nil
	}
	v.SetConfigFile(configFile)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return fmt.Errorf("config file %s not found: %w", configFile, err)
		}
		return fmt.Errorf("read config %s: %w", configFile, err)
	}
	return nil
}

// Load decodes and validates the batch configuration.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.FileFormat = strings.ToUpper(strings.TrimSpace(cfg.FileFormat))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
