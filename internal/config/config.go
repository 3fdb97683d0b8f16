// Package config persists cmd/aecdemo's device and tone overrides as JSON:
// a load-defaults-on-any-error idiom, using os.UserConfigDir() for the
// storage location, narrowed to the handful of settings the demo harness
// needs.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Config holds cmd/aecdemo's persisted device-selection overrides.
type Config struct {
	InputDeviceID  int     `json:"input_device_id"`
	OutputDeviceID int     `json:"output_device_id"`
	SampleRate     int     `json:"sample_rate"`
	ToneHz         float64 `json:"tone_hz"`
}

// Default returns a Config that lets PortAudio pick default devices at the
// demo's default sample rate and tone frequency.
func Default() Config {
	return Config{
		InputDeviceID:  -1,
		OutputDeviceID: -1,
		SampleRate:     48000,
		ToneHz:         440.0,
	}
}

// Path returns the absolute path to the demo's config file.
func Path() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "aecdemo", "config.json"), nil
}

// Load reads the config file and returns it. If the file is missing or
// unreadable, the default config is returned — never an error, since the
// file's absence is not part of the demo's contract.
func Load() Config {
	path, err := Path()
	if err != nil {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Default()
	}
	cfg := Default()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Default()
	}
	return cfg
}

// Save writes cfg to disk, creating the directory if needed.
func Save(cfg Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
