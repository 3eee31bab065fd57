package liveplot_test

import (
	"context"
	"fmt"
	"time"

	"github.com/bft-labs/liveplot/pkg/liveplot"
	"github.com/bft-labs/liveplot/pkg/log"
)

// ExampleNew shows points queued before the renderer is started.
func ExampleNew() {
	cfg := liveplot.DefaultConfig()
	cfg.SyncInterval = 50 * time.Millisecond

	p, err := liveplot.New(cfg)
	if err != nil {
		fmt.Printf("failed to create plotter: %v\n", err)
		return
	}

	// Plot never blocks and works before Start.
	p.Plot(1, 1)
	p.Plot(2, 4)

	fmt.Println("status:", p.Status())
	fmt.Println("pending:", p.Pending())

	// Output:
	// status: Stopped
	// pending: 2
}

// Example_lifecycle launches the renderer, plots and stops.
func Example_lifecycle() {
	p, err := liveplot.New(liveplot.Config{
		RendererCommand: "liveplot render --surface terminal",
	}, liveplot.WithLogger(log.NewZerologAdapter()))
	if err != nil {
		fmt.Printf("failed to create plotter: %v\n", err)
		return
	}

	// Start returns once the renderer reported ready.
	if err := p.Start(context.Background()); err != nil {
		fmt.Printf("failed to start: %v\n", err)
		return
	}
	for n := 0; n < 100; n++ {
		p.Plot(float64(n), float64(n+1))
	}

	// Stop flushes pending points. The renderer keeps its window open
	// until this process exits.
	_ = p.Stop()
}

// Example_withEventHandler receives plotter events.
func Example_withEventHandler() {
	p, err := liveplot.New(liveplot.DefaultConfig(),
		liveplot.WithEventHandler(&printingHandler{}))
	if err != nil {
		fmt.Printf("failed to create plotter: %v\n", err)
		return
	}
	_ = p
}

// printingHandler overrides two hooks and inherits no-ops for the rest.
type printingHandler struct {
	liveplot.BaseEventHandler
}

func (h *printingHandler) OnSendError(e liveplot.SendErrorEvent) {
	fmt.Printf("dropped %d points: %v\n", e.Points, e.Error)
}

func (h *printingHandler) OnRendererExit(e liveplot.RendererExitEvent) {
	fmt.Printf("renderer %d exited: %v\n", e.PID, e.Err)
}
