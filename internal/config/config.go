// Package config loads and validates the kioskd configuration: the content
// root, the identity-keyed video folder and audio device tables, and the
// daemon's watcher/metrics settings. The tables are read-only process-wide
// state; they are loaded once at startup and replaced wholesale on reload.
package config

import (
	"fmt"
	"net"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the effective daemon configuration after defaults and
// validation.
type Config struct {
	// BasePath is the content root all asset paths are built under.
	BasePath string `yaml:"base_path"`

	// VideoFolders maps an identity key (stable id, resolution, position
	// or label) to a content folder name.
	VideoFolders map[string]string `yaml:"video_folders"`

	// AudioDevices maps an identity key to an audio output device name.
	AudioDevices map[string]string `yaml:"audio_devices"`

	// WatchIntervalSeconds is the display topology poll interval.
	// 0 disables the watcher.
	WatchIntervalSeconds int `yaml:"watch_interval_seconds"`

	// MetricsListen is the host:port for the Prometheus /metrics
	// endpoint. Empty disables the listener.
	MetricsListen string `yaml:"metrics_listen"`

	// LogLevel controls daemon verbosity: debug, info, warning, error.
	LogLevel string `yaml:"log_level"`
}

// ValidationError reports an invalid config value with its YAML field path.
type ValidationError struct {
	Path string
	Err  error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// DefaultConfig returns the built-in configuration. The tables default to
// empty, which makes every display fall through to the stable-id folder
// fallback and dynamic audio matching.
func DefaultConfig() *Config {
	return &Config{
		BasePath:             "/srv/kiosk/content",
		VideoFolders:         map[string]string{},
		AudioDevices:         map[string]string{},
		WatchIntervalSeconds: 10,
		LogLevel:             "info",
	}
}

// Validate checks the effective configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.BasePath) == "" {
		return &ValidationError{Path: "base_path", Err: fmt.Errorf("base_path is required")}
	}
	if !filepath.IsAbs(c.BasePath) {
		return &ValidationError{Path: "base_path", Err: fmt.Errorf("base_path must be absolute")}
	}
	if c.VideoFolders == nil {
		return &ValidationError{Path: "video_folders", Err: fmt.Errorf("video_folders must not be null")}
	}
	if c.AudioDevices == nil {
		return &ValidationError{Path: "audio_devices", Err: fmt.Errorf("audio_devices must not be null")}
	}
	for key := range c.VideoFolders {
		if strings.TrimSpace(key) == "" {
			return &ValidationError{Path: "video_folders", Err: fmt.Errorf("video_folders contains an empty identity key")}
		}
	}
	for key := range c.AudioDevices {
		if strings.TrimSpace(key) == "" {
			return &ValidationError{Path: "audio_devices", Err: fmt.Errorf("audio_devices contains an empty identity key")}
		}
	}
	if c.WatchIntervalSeconds < 0 {
		return &ValidationError{Path: "watch_interval_seconds", Err: fmt.Errorf("watch_interval_seconds must be >= 0")}
	}
	if c.MetricsListen != "" {
		if _, _, err := net.SplitHostPort(c.MetricsListen); err != nil {
			return &ValidationError{Path: "metrics_listen", Err: fmt.Errorf("metrics_listen must be host:port: %v", err)}
		}
	}
	if c.LogLevel != "debug" && c.LogLevel != "info" && c.LogLevel != "warning" && c.LogLevel != "error" {
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}
	return nil
}

// Marshal renders the config as YAML, used by `kioskd config print`.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
