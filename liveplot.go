// Package liveplot streams points to a live plot drawn by a separate
// renderer process, so plotting never blocks the caller.
//
// Example usage:
//
//	liveplot.Plot(0, 1) // points plotted before Start are kept
//	if err := liveplot.Start(liveplot.DefaultConfig()); err != nil {
//	    log.Fatal(err)
//	}
//	for n := 1; n < 1000; n++ {
//	    liveplot.Plot(float64(n), float64(n+1))
//	}
//	liveplot.Stop()
//
// A process gets one default plot: once Start has succeeded, later calls
// fail, even after Stop, because the renderer keeps the plot and its port
// until the process exits. For more than one plot per process, or for events
// and plugins, use github.com/bft-labs/liveplot/pkg/liveplot directly.
package liveplot

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	plotter "github.com/bft-labs/liveplot/pkg/liveplot"
	"github.com/bft-labs/liveplot/pkg/log"
	"github.com/bft-labs/liveplot/pkg/points"
)

// Config holds the plotter configuration.
// Use DefaultConfig() to get a Config with sensible defaults.
type Config = plotter.Config

// Errors returned by Start and Stop.
var (
	ErrAlreadyRunning = plotter.ErrAlreadyRunning
	ErrAlreadyStarted = plotter.ErrAlreadyStarted
	ErrNotRunning     = plotter.ErrNotRunning
)

var (
	mu      sync.Mutex
	pending = points.NewBuffer()
	current *plotter.Plotter
	logger  = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(zerolog.WarnLevel).With().Timestamp().Logger()
)

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return plotter.DefaultConfig()
}

// Plot queues one point for the default plot. It never blocks and may be
// called before Start; queued points are sent on the first tick.
func Plot(x, y float64) {
	pending.Append(points.Point{X: x, Y: y})
}

// Start launches the renderer for the default plot and returns once it is
// ready. It fails with ErrAlreadyRunning while the plot is running and with
// ErrAlreadyStarted after Stop. A failed Start may be retried.
func Start(cfg Config) error {
	mu.Lock()
	defer mu.Unlock()

	if current != nil {
		if current.Status() == plotter.StateRunning {
			return ErrAlreadyRunning
		}
		return ErrAlreadyStarted
	}
	p, err := plotter.New(cfg,
		plotter.WithBuffer(pending),
		plotter.WithLogger(log.NewZerologAdapterWithLogger(logger)))
	if err != nil {
		return err
	}
	if err := p.Start(context.Background()); err != nil {
		return err
	}
	current = p
	return nil
}

// Stop flushes pending points and stops sending. The renderer keeps the
// plot open until this process exits.
func Stop() error {
	mu.Lock()
	defer mu.Unlock()

	if current == nil {
		return ErrNotRunning
	}
	return current.Stop()
}

// SetLogger replaces the logger used by plots started afterwards.
func SetLogger(l zerolog.Logger) {
	mu.Lock()
	defer mu.Unlock()
	logger = l
}

// Logger returns the package-level zerolog logger.
func Logger() zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return logger
}
