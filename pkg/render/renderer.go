package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/bft-labs/liveplot/pkg/handshake"
	"github.com/bft-labs/liveplot/pkg/liveness"
	"github.com/bft-labs/liveplot/pkg/log"
	"github.com/bft-labs/liveplot/pkg/points"
	"github.com/bft-labs/liveplot/pkg/transport"
)

// Renderer defaults.
const (
	DefaultTPS    = 60
	DefaultWidth  = 800
	DefaultHeight = 600
	DefaultTitle  = "liveplot"
)

// Config holds renderer process settings.
type Config struct {
	// Port is the loopback port the transport server binds.
	Port int

	// ParentPID is the producer watched by the liveness check.
	// Zero means os.Getppid().
	ParentPID int

	// Session, when set, refuses batches from other producers.
	Session string

	Surface SurfaceKind
	TPS     int
	Width   int
	Height  int
	Title   string

	// HeadlessTicks stops the headless surface after this many ticks.
	HeadlessTicks uint64

	// Trace receives "x y" lines from the headless surface.
	Trace io.Writer

	// Table overrides the process table used by the liveness check.
	Table liveness.ProcessTable
}

// SetDefaults fills zero fields.
func (c *Config) SetDefaults() {
	if c.ParentPID == 0 {
		c.ParentPID = os.Getppid()
	}
	if c.Surface == "" {
		c.Surface = SurfaceWindow
	}
	if c.TPS <= 0 {
		c.TPS = DefaultTPS
	}
	if c.Width <= 0 {
		c.Width = DefaultWidth
	}
	if c.Height <= 0 {
		c.Height = DefaultHeight
	}
	if c.Title == "" {
		c.Title = DefaultTitle
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.ParentPID <= 0 {
		return fmt.Errorf("parent pid %d is not a process", c.ParentPID)
	}
	if _, err := ParseSurfaceKind(string(c.Surface)); err != nil {
		return err
	}
	return nil
}

func (c *Config) tickInterval() time.Duration {
	return time.Second / time.Duration(c.TPS)
}

// Run is the renderer process: it binds the transport, tells the producer it
// is ready, then hands control to the surface until the producer is gone,
// the surface is closed, or ctx ends. A gone producer and a cancelled ctx are
// clean exits and return nil.
func Run(ctx context.Context, cfg Config, logger log.Logger) error {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid render config: %w", err)
	}
	logger = log.OrNoop(logger).With(log.Component("renderer"))

	surface, err := newSurface(cfg)
	if err != nil {
		return err
	}

	buf := points.NewBuffer()
	srv := transport.NewServer(buf, logger, transport.WithExpectedSession(cfg.Session))
	if err := srv.Start(transport.ListenAddr(cfg.Port)); err != nil {
		return fmt.Errorf("listen on port %d: %w", cfg.Port, err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("transport shutdown", log.Err(err))
		}
	}()

	// The listener is bound, so the producer may send from here on.
	if err := handshake.Signal(); err != nil {
		if !errors.Is(err, handshake.ErrNoChannel) {
			return fmt.Errorf("signal ready: %w", err)
		}
		logger.Warn("started without a readiness channel")
	}

	monitor := liveness.NewMonitor(cfg.ParentPID, cfg.Table, logger)
	loop := NewLoop(buf, monitor, surface, logger)

	logger.Info("renderer running",
		log.String("surface", string(cfg.Surface)),
		log.String("addr", srv.Addr()),
		log.Int("parent_pid", cfg.ParentPID),
	)

	err = surface.Run(ctx, loop.Tick)
	batches, pts := srv.Received()
	fields := []log.Field{
		log.Uint64("batches", batches),
		log.Uint64("points", pts),
		log.Int("drawn", len(loop.History())),
	}

	switch {
	case err == nil:
		logger.Info("surface closed", fields...)
		return nil
	case errors.Is(err, ErrProducerGone):
		logger.Info("producer gone, exiting", fields...)
		return nil
	case errors.Is(err, context.Canceled):
		logger.Info("renderer interrupted", fields...)
		return nil
	default:
		return err
	}
}
