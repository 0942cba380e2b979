package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// OutputConfig defines the synth MIDI output
type OutputConfig struct {
	PortName string `json:"portName,omitempty"`
}

// TransportConfig stores transport defaults
type TransportConfig struct {
	BPM int `json:"bpm,omitempty"`
}

// UIConfig stores UI preferences
type UIConfig struct {
	ShowHarmony bool   `json:"showHarmony"`
	PaletteFile string `json:"paletteFile,omitempty"` // GPL palette path, built-in when empty
}

// Config is the main configuration structure
type Config struct {
	Output    OutputConfig    `json:"output,omitempty"`
	Transport TransportConfig `json:"transport,omitempty"`
	UI        UIConfig        `json:"ui,omitempty"`
	Debug     bool            `json:"debug,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Transport: TransportConfig{BPM: 120},
		UI:        UIConfig{ShowHarmony: true},
	}
}

// Dir returns the config directory path
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "orchestron"), nil
}

// Path returns the full path to config.json
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if cfg.Transport.BPM == 0 {
		cfg.Transport.BPM = 120
	}

	return &cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	dir, err := Dir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path, err := Path()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
