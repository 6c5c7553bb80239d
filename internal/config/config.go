package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const appName = "tactus"

type Config struct {
	VLC    VLCConfig    `koanf:"vlc"`
	Volume VolumeConfig `koanf:"volume"`
	Bridge BridgeConfig `koanf:"bridge"`
	Log    LogConfig    `koanf:"log"`
}

// VLCConfig holds engine settings.
type VLCConfig struct {
	Library string `koanf:"library"` // path to libvlc, empty means default lookup
}

// VolumeConfig holds the initial audio settings.
type VolumeConfig struct {
	Default    float64 `koanf:"default"`    // startup volume, 0.0-1.0
	ReplayGain bool    `koanf:"replaygain"` // apply per-track gain from tags
}

// BridgeConfig tunes the control loop.
type BridgeConfig struct {
	TimeoutMs int `koanf:"timeout_ms"` // engine event hand-off deadline
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `koanf:"level"`  // "debug", "info", "warn", "error"
	Format string `koanf:"format"` // "text" or "json"
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Try config files in order of priority (last wins)
	for _, path := range getConfigPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{
		Volume: VolumeConfig{Default: 1.0, ReplayGain: true},
		Log:    LogConfig{Level: "info", Format: "text"},
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	if cfg.VLC.Library != "" {
		cfg.VLC.Library = expandPath(cfg.VLC.Library)
	}

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{
		filepath.Join(xdg.ConfigHome, appName, "config.toml"),
	}

	// ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// EventTimeout returns the engine event hand-off deadline with defaults
// applied.
func (c *Config) EventTimeout() time.Duration {
	if c.Bridge.TimeoutMs <= 0 {
		return 500 * time.Millisecond
	}
	return time.Duration(c.Bridge.TimeoutMs) * time.Millisecond
}

// DefaultVolume returns the startup volume clamped to 0.0-1.0.
func (c *Config) DefaultVolume() float64 {
	switch {
	case c.Volume.Default < 0:
		return 0
	case c.Volume.Default > 1:
		return 1
	}
	return c.Volume.Default
}
