package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// rawConfig mirrors Config with pointer fields so the loader can tell an
// absent key from an explicit zero when applying defaults.
type rawConfig struct {
	BasePath             *string            `yaml:"base_path"`
	VideoFolders         *map[string]string `yaml:"video_folders"`
	AudioDevices         *map[string]string `yaml:"audio_devices"`
	WatchIntervalSeconds *int               `yaml:"watch_interval_seconds"`
	MetricsListen        *string            `yaml:"metrics_listen"`
	LogLevel             *string            `yaml:"log_level"`
}

// DefaultConfigPath returns ~/.config/kioskd/config.yaml.
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "kioskd", "config.yaml"), nil
}

// Load reads the configuration from the standard location. A missing file
// yields the defaults.
func Load() (*Config, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath reads, defaults and validates configuration from path.
func LoadFromPath(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("%s: failed to read: %w", path, err)
	}

	var raw rawConfig
	if err := decodeStrictYAML(data, &raw); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	applyRaw(cfg, raw)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func applyRaw(cfg *Config, raw rawConfig) {
	if raw.BasePath != nil {
		cfg.BasePath = *raw.BasePath
	}
	if raw.VideoFolders != nil {
		cfg.VideoFolders = *raw.VideoFolders
	}
	if raw.AudioDevices != nil {
		cfg.AudioDevices = *raw.AudioDevices
	}
	if raw.WatchIntervalSeconds != nil {
		cfg.WatchIntervalSeconds = *raw.WatchIntervalSeconds
	}
	if raw.MetricsListen != nil {
		cfg.MetricsListen = *raw.MetricsListen
	}
	if raw.LogLevel != nil {
		cfg.LogLevel = *raw.LogLevel
	}
}

func decodeStrictYAML(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("failed to parse yaml: %w", err)
	}
	return nil
}
