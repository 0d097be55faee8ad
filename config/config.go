package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"dialdeck/surface"
)

// SurfaceConfig describes the physical control surface: which MIDI port it
// lives on and how its CC/note numbers map onto dial and button slots.
type SurfaceConfig struct {
	PortName    string  `json:"portName"`
	AutoConnect bool    `json:"autoConnect"`
	DialCC      []uint8 `json:"dialCC,omitempty"`     // CC number per dial slot (1..8)
	RingCC      []uint8 `json:"ringCC,omitempty"`     // CC number per encoder ring
	ButtonNote  []uint8 `json:"buttonNote,omitempty"` // note number per button slot (1..10)
}

// OutputConfig is the default outbound port for module device commands
type OutputConfig struct {
	PortName string `json:"portName,omitempty"`
	Channel  uint8  `json:"channel,omitempty"`
}

// UIConfig stores UI preferences
type UIConfig struct {
	LastModule string `json:"lastModule,omitempty"`
}

// Config is the main configuration structure. Presets carries the static
// persistence declarations for modules that declare nothing themselves.
type Config struct {
	Surface SurfaceConfig                 `json:"surface"`
	Output  OutputConfig                  `json:"output,omitempty"`
	UI      UIConfig                      `json:"ui,omitempty"`
	Presets map[string]surface.PresetDecl `json:"presets,omitempty"`
}

// DefaultConfig returns a config with sensible defaults: a Midi Fighter
// Twister style layout, encoders on CC 16-23 with rings echoed back on the
// same numbers, buttons on notes 36-45.
func DefaultConfig() *Config {
	return &Config{
		Surface: SurfaceConfig{
			PortName:    "Midi Fighter Twister",
			AutoConnect: true,
			DialCC:      []uint8{16, 17, 18, 19, 20, 21, 22, 23},
			RingCC:      []uint8{16, 17, 18, 19, 20, 21, 22, 23},
			ButtonNote:  []uint8{36, 37, 38, 39, 40, 41, 42, 43, 44, 45},
		},
		Output: OutputConfig{
			Channel: 1,
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "dialdeck"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// PresetsDir returns the preset store root
func PresetsDir() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "presets"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
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

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path, err := ConfigPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// DialSlot returns the dial slot (1-based) for a CC number, or 0
func (c *Config) DialSlot(cc uint8) int {
	for i, n := range c.Surface.DialCC {
		if n == cc {
			return i + 1
		}
	}
	return 0
}

// ButtonSlot returns the button slot (1-based) for a note number, or 0
func (c *Config) ButtonSlot(note uint8) int {
	for i, n := range c.Surface.ButtonNote {
		if n == note {
			return i + 1
		}
	}
	return 0
}
