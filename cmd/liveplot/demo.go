package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bft-labs/liveplot/pkg/liveplot"
	"github.com/bft-labs/liveplot/pkg/log"
	"github.com/bft-labs/liveplot/plugins/configwatcher"
)

// pattern yields the y value for the n-th point.
type pattern func(n int) float64

func patternByName(name string) (pattern, error) {
	switch name {
	case "linear":
		return func(n int) float64 { return float64(n + 1) }, nil
	case "sine":
		return func(n int) float64 { return math.Sin(float64(n) / 10) }, nil
	default:
		return nil, fmt.Errorf("unknown pattern %q (want linear or sine)", name)
	}
}

// rendererArgs runs this executable's render subcommand with the renderer
// settings the producer was given.
func rendererArgs(exe string, c *cli) []string {
	args := []string{exe, "render",
		"--surface", c.cfg.Surface,
		"--tps", strconv.Itoa(c.cfg.TPS),
		"--width", strconv.Itoa(c.cfg.Width),
		"--height", strconv.Itoa(c.cfg.Height),
		"--title", c.cfg.Title,
		"--log-level", c.cfg.LogLevel,
	}
	if c.cfgPath != "" {
		args = append(args, "--config", c.cfgPath)
	}
	return args
}

func newDemoCmd(c *cli) *cobra.Command {
	var (
		patternName string
		rate        time.Duration
		count       int
		watch       bool
	)

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Plot a generated series through a renderer subprocess",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.load(cmd); err != nil {
				return err
			}
			next, err := patternByName(patternName)
			if err != nil {
				return err
			}
			if rate <= 0 {
				return fmt.Errorf("rate must be positive")
			}

			exe, err := os.Executable()
			if err != nil {
				return fmt.Errorf("locate executable: %w", err)
			}

			logger := log.NewZerologAdapterWithLogger(c.log)
			opts := []liveplot.Option{liveplot.WithLogger(logger)}
			if watch && c.cfgPath != "" {
				opts = append(opts, configwatcher.WithConfigWatcher(configwatcher.Config{Path: c.cfgPath}))
			}

			p, err := liveplot.New(c.cfg.PlotterConfig(rendererArgs(exe, c)), opts...)
			if err != nil {
				return fmt.Errorf("create plotter: %w", err)
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := p.Start(ctx); err != nil {
				return fmt.Errorf("start plotter: %w", err)
			}
			c.log.Info().Int("renderer_pid", p.RendererPID()).Str("pattern", patternName).Msg("plotting")

			ticker := time.NewTicker(rate)
			defer ticker.Stop()
			for n := 0; count <= 0 || n < count; n++ {
				select {
				case <-ctx.Done():
					return p.Stop()
				case <-ticker.C:
					p.Plot(float64(n), next(n))
				}
			}

			if err := p.Stop(); err != nil {
				return fmt.Errorf("stop plotter: %w", err)
			}
			// The plot stays up until this process exits.
			c.log.Info().Int("points", count).Msg("done; press Ctrl-C to close the plot")
			<-ctx.Done()
			return nil
		},
	}

	cmd.Flags().IntVar(&c.cfg.Port, "port", c.cfg.Port, "renderer port on 127.0.0.1")
	cmd.Flags().DurationVar(&c.cfg.SyncInterval, "sync-interval", c.cfg.SyncInterval, "how often pending points are sent")
	cmd.Flags().DurationVar(&c.cfg.SendTimeout, "send-timeout", c.cfg.SendTimeout, "timeout for one batch delivery")
	cmd.Flags().DurationVar(&c.cfg.StartupTimeout, "startup-timeout", c.cfg.StartupTimeout, "how long to wait for the renderer to be ready")
	cmd.Flags().StringVar(&c.cfg.Renderer, "renderer", c.cfg.Renderer, "renderer command line (default: this executable's render command)")
	cmd.Flags().StringVar(&patternName, "pattern", "linear", "series to plot: linear or sine")
	cmd.Flags().DurationVar(&rate, "rate", 10*time.Millisecond, "delay between points")
	cmd.Flags().IntVar(&count, "count", 0, "number of points (0 plots until interrupted)")
	cmd.Flags().BoolVar(&watch, "watch-config", true, "reload sync_interval when the config file changes")
	return cmd
}
