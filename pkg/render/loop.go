package render

import (
	"errors"
	"sync"

	"github.com/bft-labs/liveplot/pkg/log"
	"github.com/bft-labs/liveplot/pkg/points"
)

// ErrProducerGone ends the render loop once the producer process has
// disappeared. It is a normal terminal condition: the renderer exits 0.
var ErrProducerGone = errors.New("render: producer gone")

// Monitor reports whether the producer is alive.
// *liveness.Monitor satisfies this interface.
type Monitor interface {
	Alive() bool
}

// Frame is what one tick hands to the surface.
type Frame struct {
	// Tick counts from 1.
	Tick uint64

	// Segment is the working set: the previous tick's final point when
	// Seeded, followed by the points drained this tick.
	Segment points.Batch

	// Seeded is true when Segment starts with the carried-over point.
	Seeded bool

	// Total is the length of the drawn history after this tick.
	Total int
}

// Fresh returns the points first drawn in this frame.
func (f Frame) Fresh() points.Batch {
	if f.Seeded && len(f.Segment) > 0 {
		return f.Segment[1:]
	}
	return f.Segment
}

// Loop is the renderer's per-tick state. Tick is driven by a Surface and is
// never called concurrently with itself.
type Loop struct {
	buffer  *points.Buffer
	monitor Monitor
	surface Surface
	logger  log.Logger

	working points.Batch
	ticks   uint64

	mu      sync.RWMutex
	history points.Batch
}

// NewLoop creates a loop draining buf onto surface while monitor reports the
// producer alive.
func NewLoop(buf *points.Buffer, monitor Monitor, surface Surface, logger log.Logger) *Loop {
	return &Loop{
		buffer:  buf,
		monitor: monitor,
		surface: surface,
		logger:  log.OrNoop(logger).With(log.Component("render")),
	}
}

// Tick runs one iteration: liveness check, drain, reseed, extend the
// history, redraw. It returns ErrProducerGone once the producer has exited.
func (l *Loop) Tick() error {
	if !l.monitor.Alive() {
		return ErrProducerGone
	}

	drained := l.buffer.DrainAll()

	seeded := false
	if last, ok := l.working.Last(); ok {
		l.working = append(l.working[:0], last)
		seeded = true
	}
	l.working = append(l.working, drained...)

	l.mu.Lock()
	l.history = append(l.history, drained...)
	total := len(l.history)
	l.mu.Unlock()

	l.ticks++
	if len(drained) > 0 {
		l.logger.Debug("tick",
			log.Uint64("tick", l.ticks),
			log.Int("drained", len(drained)),
			log.Int("total", total),
		)
	}

	frame := Frame{
		Tick:    l.ticks,
		Segment: append(points.Batch(nil), l.working...),
		Seeded:  seeded,
		Total:   total,
	}
	return l.surface.Draw(frame)
}

// History returns a copy of every point drawn so far, in arrival order.
func (l *Loop) History() points.Batch {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append(points.Batch(nil), l.history...)
}

// Ticks returns the number of completed ticks.
func (l *Loop) Ticks() uint64 {
	return l.ticks
}
