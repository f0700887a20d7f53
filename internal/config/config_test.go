package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Config)
		wantPath string
	}{
		{
			name:     "bad log level",
			mutate:   func(c *Config) { c.LogLevel = "verbose" },
			wantPath: "log_level",
		},
		{
			name:     "zero spawn timeout",
			mutate:   func(c *Config) { c.SpawnTimeoutSeconds = 0 },
			wantPath: "spawn_timeout_seconds",
		},
		{
			name:     "spawn timeout too large",
			mutate:   func(c *Config) { c.SpawnTimeoutSeconds = 300 },
			wantPath: "spawn_timeout_seconds",
		},
		{
			name:     "unknown action",
			mutate:   func(c *Config) { c.Bindings["diagonal-half"] = "mod4-d" },
			wantPath: "bindings.diagonal-half",
		},
		{
			name:     "empty sequence",
			mutate:   func(c *Config) { c.Bindings["maximize"] = "" },
			wantPath: "bindings.maximize",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			var verr *ValidationError
			if err := cfg.Validate(); !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			} else if verr.Path != tt.wantPath {
				t.Errorf("error path %q, want %q", verr.Path, tt.wantPath)
			}
		})
	}
}

func TestValidate_DuplicateSequenceNamesBothActions(t *testing.T) {
	cfg := Default()
	cfg.Bindings = map[string]string{
		"left-half":  "mod4-Left",
		"right-half": "mod4-Left",
	}

	err := cfg.Validate()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !strings.Contains(verr.Message, "left-half") {
		t.Errorf("conflict should name the first owner: %v", verr)
	}
}

func TestLoadFromPath_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LogLevel != "info" || cfg.SpawnTimeoutSeconds != 10 {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestLoadFromPath_OverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
log_level: debug
bindings:
  left-half: mod4-h
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log level not overlaid: %q", cfg.LogLevel)
	}
	if cfg.SpawnTimeoutSeconds != 10 {
		t.Errorf("unset field lost its default: %d", cfg.SpawnTimeoutSeconds)
	}
	if len(cfg.Bindings) != 1 || cfg.Bindings["left-half"] != "mod4-h" {
		t.Errorf("bindings not replaced: %v", cfg.Bindings)
	}
}

func TestLoadFromPath_RejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("log_levle: debug\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromPath(path); err == nil {
		t.Fatal("expected strict decode to reject the typo")
	}
}

func TestLoadFromPath_RejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("spawn_timeout_seconds: 999\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromPath(path); err == nil {
		t.Fatal("expected validation error")
	}
}
