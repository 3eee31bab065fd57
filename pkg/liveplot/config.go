package liveplot

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Defaults applied by SetDefaults.
const (
	DefaultPort            = 8000
	DefaultSyncInterval    = 100 * time.Millisecond
	DefaultSendTimeout     = 2 * time.Second
	DefaultStartupTimeout  = 10 * time.Second
	DefaultRendererCommand = "liveplot render"
)

// Config holds plotter settings. It is passed to New explicitly; there is
// no global configuration.
type Config struct {
	// Port is the loopback port the renderer listens on.
	Port int

	// SyncInterval is the period of the sync loop.
	SyncInterval time.Duration

	// SendTimeout bounds one batch delivery.
	SendTimeout time.Duration

	// StartupTimeout bounds the wait for the renderer's readiness signal.
	StartupTimeout time.Duration

	// RendererCommand is the renderer command line, split shell-style.
	// The port is appended as its last argument.
	RendererCommand string

	// RendererArgs, when set, replaces RendererCommand verbatim.
	RendererArgs []string

	// RendererEnv is appended to the renderer's inherited environment.
	RendererEnv []string

	// SessionID identifies this producer to its renderer. A fresh UUID is
	// used when empty.
	SessionID string
}

// DefaultConfig returns a Config with every default applied except the
// session id, which is minted when the plotter is created.
func DefaultConfig() Config {
	return Config{
		Port:            DefaultPort,
		SyncInterval:    DefaultSyncInterval,
		SendTimeout:     DefaultSendTimeout,
		StartupTimeout:  DefaultStartupTimeout,
		RendererCommand: DefaultRendererCommand,
	}
}

// SetDefaults fills zero-valued fields.
func (c *Config) SetDefaults() {
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.SyncInterval == 0 {
		c.SyncInterval = DefaultSyncInterval
	}
	if c.SendTimeout == 0 {
		c.SendTimeout = DefaultSendTimeout
	}
	if c.StartupTimeout == 0 {
		c.StartupTimeout = DefaultStartupTimeout
	}
	if c.RendererCommand == "" && len(c.RendererArgs) == 0 {
		c.RendererCommand = DefaultRendererCommand
	}
	if c.SessionID == "" {
		c.SessionID = uuid.NewString()
	}
}

// Validate checks the configuration. Errors wrap ErrInvalidConfig.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, c.Port)
	}
	if c.SyncInterval <= 0 {
		return fmt.Errorf("%w: sync interval must be positive", ErrInvalidConfig)
	}
	if c.SendTimeout <= 0 {
		return fmt.Errorf("%w: send timeout must be positive", ErrInvalidConfig)
	}
	if c.StartupTimeout <= 0 {
		return fmt.Errorf("%w: startup timeout must be positive", ErrInvalidConfig)
	}
	if c.RendererCommand == "" && len(c.RendererArgs) == 0 {
		return fmt.Errorf("%w: no renderer command", ErrInvalidConfig)
	}
	return nil
}
