package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("Could not get home dir: %v", err)
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "tilde expands to home",
			input:    "~/lib/libvlc.so",
			expected: filepath.Join(home, "lib", "libvlc.so"),
		},
		{
			name:     "absolute path unchanged",
			input:    "/usr/lib/libvlc.so.5",
			expected: "/usr/lib/libvlc.so.5",
		},
		{
			name:     "empty string unchanged",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := expandPath(tt.input)
			if result != tt.expected {
				t.Errorf("expandPath(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestGetConfigPaths(t *testing.T) {
	paths := getConfigPaths()

	if len(paths) == 0 {
		t.Fatal("getConfigPaths() returned empty slice")
	}

	// Last path should be local config.toml
	lastPath := paths[len(paths)-1]
	if lastPath != "config.toml" {
		t.Errorf("last config path = %q, want %q", lastPath, "config.toml")
	}
}

func TestEventTimeout(t *testing.T) {
	tests := []struct {
		name      string
		timeoutMs int
		expected  time.Duration
	}{
		{name: "unset uses default", timeoutMs: 0, expected: 500 * time.Millisecond},
		{name: "negative uses default", timeoutMs: -100, expected: 500 * time.Millisecond},
		{name: "custom value", timeoutMs: 1500, expected: 1500 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{Bridge: BridgeConfig{TimeoutMs: tt.timeoutMs}}
			if got := cfg.EventTimeout(); got != tt.expected {
				t.Errorf("EventTimeout() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestDefaultVolume(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		expected float64
	}{
		{name: "in range", value: 0.7, expected: 0.7},
		{name: "below range clamps", value: -0.5, expected: 0},
		{name: "above range clamps", value: 1.5, expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{Volume: VolumeConfig{Default: tt.value}}
			if got := cfg.DefaultVolume(); got != tt.expected {
				t.Errorf("DefaultVolume() = %f, want %f", got, tt.expected)
			}
		})
	}
}

func TestLoad_BasicConfig(t *testing.T) {
	tmpDir := t.TempDir()
	originalWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("could not get working directory: %v", err)
	}

	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("could not change to temp directory: %v", err)
	}
	defer func() {
		_ = os.Chdir(originalWd)
	}()

	configContent := `
[vlc]
library = "/opt/vlc/libvlc.so"

[volume]
default = 0.6
replaygain = false

[bridge]
timeout_ms = 750

[log]
level = "debug"
format = "json"
`
	if err := os.WriteFile("config.toml", []byte(configContent), 0o600); err != nil {
		t.Fatalf("could not write config file: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.VLC.Library != "/opt/vlc/libvlc.so" {
		t.Errorf("VLC.Library = %q, want %q", cfg.VLC.Library, "/opt/vlc/libvlc.so")
	}
	if cfg.Volume.Default != 0.6 {
		t.Errorf("Volume.Default = %f, want 0.6", cfg.Volume.Default)
	}
	if cfg.Volume.ReplayGain {
		t.Error("Volume.ReplayGain = true, want false")
	}
	if cfg.EventTimeout() != 750*time.Millisecond {
		t.Errorf("EventTimeout() = %v, want 750ms", cfg.EventTimeout())
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "debug")
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q, want %q", cfg.Log.Format, "json")
	}
}

func TestLoad_EmptyConfigUsesDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	originalWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("could not get working directory: %v", err)
	}

	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("could not change to temp directory: %v", err)
	}
	defer func() {
		_ = os.Chdir(originalWd)
	}()

	if err := os.WriteFile("config.toml", []byte(""), 0o600); err != nil {
		t.Fatalf("could not write config file: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Note: values may be inherited from the user config if it exists;
	// only check defaults that no other file is likely to override.
	if cfg.EventTimeout() <= 0 {
		t.Errorf("EventTimeout() = %v, want positive", cfg.EventTimeout())
	}
}

func TestLoad_InvalidToml(t *testing.T) {
	tmpDir := t.TempDir()
	originalWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("could not get working directory: %v", err)
	}

	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("could not change to temp directory: %v", err)
	}
	defer func() {
		_ = os.Chdir(originalWd)
	}()

	if err := os.WriteFile("config.toml", []byte("invalid = [[["), 0o600); err != nil {
		t.Fatalf("could not write config file: %v", err)
	}

	if _, err = Load(); err == nil {
		t.Error("Load() expected error for invalid TOML, got nil")
	}
}
