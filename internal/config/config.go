// Package config loads and validates the daemon configuration from
// ~/.config/tachyon/config.yaml.
package config

import (
	"fmt"
	"sort"

	"github.com/tachyon-app/tachyon/internal/geometry"
)

// Config is the effective daemon configuration.
type Config struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// SpawnTimeoutSeconds bounds how long scene activation waits for a
	// spawned app to produce a window.
	SpawnTimeoutSeconds int `yaml:"spawn_timeout_seconds"`

	// Bindings maps snap action names to key sequences, e.g.
	//   left-half: mod4-Left
	Bindings map[string]string `yaml:"bindings"`
}

// ValidationError reports an invalid config value with its YAML path.
type ValidationError struct {
	Path    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel:            "info",
		SpawnTimeoutSeconds: 10,
		Bindings: map[string]string{
			string(geometry.ActionLeftHalf):        "mod4-Left",
			string(geometry.ActionRightHalf):       "mod4-Right",
			string(geometry.ActionTopHalf):         "mod4-Up",
			string(geometry.ActionBottomHalf):      "mod4-Down",
			string(geometry.ActionMaximize):        "mod4-m",
			string(geometry.ActionCenter):          "mod4-c",
			string(geometry.ActionCycleThirds):     "mod4-t",
			string(geometry.ActionNextDisplay):     "mod4-shift-Right",
			string(geometry.ActionPreviousDisplay): "mod4-shift-Left",
		},
	}
}

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true,
}

// Validate checks every field and returns the first problem found as a
// ValidationError.
func (c *Config) Validate() error {
	if !validLogLevels[c.LogLevel] {
		return &ValidationError{
			Path:    "log_level",
			Message: fmt.Sprintf("unknown level %q (want debug, info, warn or error)", c.LogLevel),
		}
	}
	if c.SpawnTimeoutSeconds < 1 || c.SpawnTimeoutSeconds > 120 {
		return &ValidationError{
			Path:    "spawn_timeout_seconds",
			Message: fmt.Sprintf("%d out of range [1, 120]", c.SpawnTimeoutSeconds),
		}
	}

	// Deterministic order so the same bad config reports the same error.
	actions := make([]string, 0, len(c.Bindings))
	for action := range c.Bindings {
		actions = append(actions, action)
	}
	sort.Strings(actions)

	sequences := make(map[string]string)
	for _, action := range actions {
		sequence := c.Bindings[action]
		if _, err := geometry.ParseAction(action); err != nil {
			return &ValidationError{
				Path:    "bindings." + action,
				Message: "unknown action",
			}
		}
		if sequence == "" {
			return &ValidationError{
				Path:    "bindings." + action,
				Message: "empty key sequence",
			}
		}
		if other, ok := sequences[sequence]; ok {
			return &ValidationError{
				Path:    "bindings." + action,
				Message: fmt.Sprintf("key sequence %q is already bound to %q", sequence, other),
			}
		}
		sequences[sequence] = action
	}
	return nil
}
