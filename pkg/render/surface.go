package render

import (
	"context"
	"fmt"
	"strings"
)

// Surface is the plotting sink. It owns the timer that drives the loop:
// Run calls tick on every frame until tick fails, the surface is closed by
// the user, or ctx ends. Draw is only ever called from inside tick.
type Surface interface {
	Draw(frame Frame) error
	Run(ctx context.Context, tick func() error) error
}

// SurfaceKind selects a Surface implementation.
type SurfaceKind string

const (
	SurfaceWindow   SurfaceKind = "window"
	SurfaceTerminal SurfaceKind = "terminal"
	SurfaceHeadless SurfaceKind = "headless"
)

// ParseSurfaceKind validates a surface name.
func ParseSurfaceKind(s string) (SurfaceKind, error) {
	switch k := SurfaceKind(strings.ToLower(strings.TrimSpace(s))); k {
	case SurfaceWindow, SurfaceTerminal, SurfaceHeadless:
		return k, nil
	default:
		return "", fmt.Errorf("unknown surface %q (want window, terminal or headless)", s)
	}
}

func newSurface(cfg Config) (Surface, error) {
	switch cfg.Surface {
	case SurfaceWindow:
		return newWindowSurface(cfg)
	case SurfaceTerminal:
		return NewTerminal(nil, TerminalConfig{
			Interval: cfg.tickInterval(),
			Title:    cfg.Title,
		}), nil
	case SurfaceHeadless:
		return NewHeadless(HeadlessConfig{
			Interval: cfg.tickInterval(),
			Ticks:    cfg.HeadlessTicks,
			Trace:    cfg.Trace,
		}), nil
	default:
		return nil, fmt.Errorf("unknown surface %q", cfg.Surface)
	}
}
