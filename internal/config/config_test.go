package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if *cfg != *DefaultConfig() {
		t.Fatalf("got %+v, want defaults", cfg)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "audio:\n  masterVolume: 0.5\neditor:\n  loop: true\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Audio.MasterVolume != 0.5 || !cfg.Editor.Loop {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.Audio.SampleRate != 48000 || cfg.Editor.DefaultTempo != 100 || cfg.Server.Addr == "" {
		t.Fatalf("defaults lost: %+v", cfg)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.MIDI.Port = "IAC Driver Bus 1"
	cfg.Editor.UndoLimit = 50
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if *got != *cfg {
		t.Fatalf("round trip: got %+v, want %+v", got, cfg)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad yaml", "audio: [\n"},
		{"sample rate", "audio:\n  sampleRate: 10\n"},
		{"volume", "audio:\n  masterVolume: -1\n"},
		{"tempo", "editor:\n  defaultTempo: 0\n"},
		{"undo", "editor:\n  undoLimit: -3\n"},
	}
	for _, tt := range tests {
		path := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(path, []byte(tt.data), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadFrom(path); err == nil {
			t.Fatalf("%s: expected error", tt.name)
		}
	}
}
