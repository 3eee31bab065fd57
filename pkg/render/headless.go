package render

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/bft-labs/liveplot/pkg/points"
)

// HeadlessConfig controls the no-window surface.
type HeadlessConfig struct {
	// Interval between ticks. Zero means 60 per second.
	Interval time.Duration

	// Ticks stops the surface after this many ticks. Zero runs until the
	// loop ends or ctx is cancelled.
	Ticks uint64

	// Trace, when set, receives one "x y" line per newly drawn point.
	Trace io.Writer
}

// Headless is a Surface without a display, driven by a time.Ticker. It is
// used in CI and wherever no window system is available.
type Headless struct {
	cfg HeadlessConfig

	mu     sync.Mutex
	frames uint64
	drawn  points.Batch
	last   Frame
}

// NewHeadless creates a headless surface.
func NewHeadless(cfg HeadlessConfig) *Headless {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second / 60
	}
	return &Headless{cfg: cfg}
}

// Draw records the frame and writes its fresh points to the trace.
func (h *Headless) Draw(frame Frame) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	fresh := frame.Fresh()
	h.frames++
	h.drawn = append(h.drawn, fresh...)
	h.last = frame

	if h.cfg.Trace == nil || len(fresh) == 0 {
		return nil
	}
	var line []byte
	for _, p := range fresh {
		line = strconv.AppendFloat(line[:0], p.X, 'g', -1, 64)
		line = append(line, ' ')
		line = strconv.AppendFloat(line, p.Y, 'g', -1, 64)
		line = append(line, '\n')
		if _, err := h.cfg.Trace.Write(line); err != nil {
			return fmt.Errorf("write trace: %w", err)
		}
	}
	return nil
}

// Run ticks until tick fails, the tick budget is spent, or ctx ends.
func (h *Headless) Run(ctx context.Context, tick func() error) error {
	t := time.NewTicker(h.cfg.Interval)
	defer t.Stop()

	var n uint64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			if err := tick(); err != nil {
				return err
			}
			n++
			if h.cfg.Ticks > 0 && n >= h.cfg.Ticks {
				return nil
			}
		}
	}
}

// Drawn returns every point drawn so far.
func (h *Headless) Drawn() points.Batch {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append(points.Batch(nil), h.drawn...)
}

// LastFrame returns the most recent frame and the number of frames drawn.
func (h *Headless) LastFrame() (Frame, uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.last, h.frames
}
