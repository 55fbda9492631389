// Package config provides centralized management for application settings, defaults, and the Viper-based configuration engine.
package config

import (
	"strings"
	"time"

	"github.com/clipshuffle/clipshuffle/constant"
	"github.com/clipshuffle/clipshuffle/filesystem"
	"github.com/clipshuffle/clipshuffle/key"
	"github.com/clipshuffle/clipshuffle/where"
	"github.com/spf13/viper"
)

// EnvKeyReplacer normalizes configuration keys into environment variable naming conventions.
var EnvKeyReplacer = strings.NewReplacer(".", "_")

// Setup initializes defaults, environment bindings and the optional TOML config file.
func Setup() error {
	viper.SetConfigName(constant.App)
	viper.SetConfigType("toml")
	viper.SetFs(filesystem.API())
	viper.AddConfigPath(where.Config())

	viper.SetEnvPrefix(constant.App)
	viper.SetEnvKeyReplacer(EnvKeyReplacer)
	for _, env := range EnvExposed {
		viper.MustBindEnv(env)
	}

	viper.SetTypeByDefaultValue(true)
	for name, field := range Default {
		viper.SetDefault(name, field.Value)
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return err
	}

	return nil
}

// RotationInterval returns the configured rotation interval, falling back to the default for non-positive values.
func RotationInterval() time.Duration {
	ms := viper.GetInt(key.RotationIntervalMs)
	if ms <= 0 {
		return constant.RotationInterval
	}
	return time.Duration(ms) * time.Millisecond
}

// SafetyMargin returns the configured safety margin in whole seconds.
func SafetyMargin() int {
	margin := viper.GetInt(key.RotationSafetyMargin)
	if margin < 0 {
		return constant.SafetyMargin
	}
	return margin
}

// ProbeTimeout bounds a single metadata discovery call.
func ProbeTimeout() time.Duration {
	secs := viper.GetInt(key.ProbeTimeout)
	if secs <= 0 {
		secs = 10
	}
	return time.Duration(secs) * time.Second
}

// Extensions returns the configured clip extensions, lowercased and dot-prefixed.
func Extensions() []string {
	raw := viper.GetStringSlice(key.LibraryExtensions)
	if len(raw) == 0 {
		return constant.VideoExtensions
	}

	exts := make([]string, 0, len(raw))
	for _, ext := range raw {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts = append(exts, ext)
	}
	return exts
}
