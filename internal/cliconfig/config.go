package cliconfig

import (
	"fmt"
	"strconv"
	"time"

	"github.com/bft-labs/liveplot/pkg/liveplot"
	"github.com/bft-labs/liveplot/pkg/render"
)

// Config holds CLI configuration for both the producer demo and the
// renderer.
type Config struct {
	Port           int
	SyncInterval   time.Duration
	SendTimeout    time.Duration
	StartupTimeout time.Duration

	// Renderer is the renderer command line the producer spawns. Empty
	// means this executable's own render subcommand.
	Renderer string

	Surface string
	TPS     int
	Width   int
	Height  int
	Title   string

	LogLevel string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Port:           liveplot.DefaultPort,
		SyncInterval:   liveplot.DefaultSyncInterval,
		SendTimeout:    liveplot.DefaultSendTimeout,
		StartupTimeout: liveplot.DefaultStartupTimeout,
		Surface:        string(render.SurfaceWindow),
		TPS:            render.DefaultTPS,
		Width:          render.DefaultWidth,
		Height:         render.DefaultHeight,
		Title:          render.DefaultTitle,
		LogLevel:       "info",
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.SyncInterval <= 0 {
		return fmt.Errorf("sync interval must be positive")
	}
	if c.SendTimeout <= 0 {
		return fmt.Errorf("send timeout must be positive")
	}
	if c.StartupTimeout <= 0 {
		return fmt.Errorf("startup timeout must be positive")
	}
	if _, err := render.ParseSurfaceKind(c.Surface); err != nil {
		return err
	}
	if c.TPS <= 0 {
		return fmt.Errorf("tps must be positive")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// PlotterConfig converts to the library configuration. rendererArgs, when
// non-empty, is used in place of the Renderer command line.
func (c *Config) PlotterConfig(rendererArgs []string) liveplot.Config {
	cfg := liveplot.Config{
		Port:            c.Port,
		SyncInterval:    c.SyncInterval,
		SendTimeout:     c.SendTimeout,
		StartupTimeout:  c.StartupTimeout,
		RendererCommand: c.Renderer,
	}
	if c.Renderer == "" {
		cfg.RendererArgs = rendererArgs
	}
	return cfg
}

// RenderConfig converts to the renderer configuration for the given port.
func (c *Config) RenderConfig(port int) render.Config {
	kind, _ := render.ParseSurfaceKind(c.Surface)
	return render.Config{
		Port:    port,
		Surface: kind,
		TPS:     c.TPS,
		Width:   c.Width,
		Height:  c.Height,
		Title:   c.Title,
	}
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}
