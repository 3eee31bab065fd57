package cliconfig

import (
	"os"
	"path/filepath"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	Port           int    `toml:"port"`
	SyncInterval   string `toml:"sync_interval"`
	SendTimeout    string `toml:"send_timeout"`
	StartupTimeout string `toml:"startup_timeout"`
	Renderer       string `toml:"renderer"`
	Surface        string `toml:"surface"`
	TPS            int    `toml:"tps"`
	Width          int    `toml:"width"`
	Height         int    `toml:"height"`
	Title          string `toml:"title"`
	LogLevel       string `toml:"log_level"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// LoadSyncInterval reads only sync_interval from the file at path. It
// returns zero when the key is absent.
func LoadSyncInterval(path string) (time.Duration, error) {
	fc, err := LoadFileConfig(path)
	if err != nil {
		return 0, err
	}
	var d time.Duration
	if err := newConfigSetter(nil).setDuration("sync-interval", fc.SyncInterval, &d); err != nil {
		return 0, err
	}
	return d, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.liveplot/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".liveplot", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setInt("port", fc.Port, &cfg.Port)
	s.setString("renderer", fc.Renderer, &cfg.Renderer)
	s.setString("surface", fc.Surface, &cfg.Surface)
	s.setString("title", fc.Title, &cfg.Title)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	if err := s.setDuration("sync-interval", fc.SyncInterval, &cfg.SyncInterval); err != nil {
		return err
	}
	if err := s.setDuration("send-timeout", fc.SendTimeout, &cfg.SendTimeout); err != nil {
		return err
	}
	if err := s.setDuration("startup-timeout", fc.StartupTimeout, &cfg.StartupTimeout); err != nil {
		return err
	}

	s.setInt("tps", fc.TPS, &cfg.TPS)
	s.setInt("width", fc.Width, &cfg.Width)
	s.setInt("height", fc.Height, &cfg.Height)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
