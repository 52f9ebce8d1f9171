package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// AudioConfig controls the built-in synthesizer.
type AudioConfig struct {
	SampleRate   int     `yaml:"sampleRate"`
	MasterVolume float64 `yaml:"masterVolume"`
}

// MIDIConfig names the output used by "msq play --midi".
type MIDIConfig struct {
	Port string `yaml:"port,omitempty"`
}

// ServerConfig is used by "msq serve".
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// EditorConfig stores editor preferences.
type EditorConfig struct {
	DefaultTempo int  `yaml:"defaultTempo"`
	UndoLimit    int  `yaml:"undoLimit,omitempty"`
	Loop         bool `yaml:"loop,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	Audio  AudioConfig  `yaml:"audio"`
	MIDI   MIDIConfig   `yaml:"midi,omitempty"`
	Server ServerConfig `yaml:"server"`
	Editor EditorConfig `yaml:"editor"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Audio: AudioConfig{
			SampleRate:   48000,
			MasterVolume: 1,
		},
		Server: ServerConfig{
			Addr: "localhost:8660",
		},
		Editor: EditorConfig{
			DefaultTempo: 100,
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "msq"), nil
}

// ConfigPath returns the full path to config.yaml
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads path on top of the defaults, so a partial file only
// overrides what it names.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Audio.SampleRate < 8000 || c.Audio.SampleRate > 192000 {
		return fmt.Errorf("sample rate %d out of range", c.Audio.SampleRate)
	}
	if c.Audio.MasterVolume < 0 {
		return fmt.Errorf("master volume %v must not be negative", c.Audio.MasterVolume)
	}
	if c.Editor.DefaultTempo <= 0 {
		return fmt.Errorf("default tempo %d must be positive", c.Editor.DefaultTempo)
	}
	if c.Editor.UndoLimit < 0 {
		return fmt.Errorf("undo limit %d must not be negative", c.Editor.UndoLimit)
	}
	return nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
