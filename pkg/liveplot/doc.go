// Package liveplot is the producer side of a live plot: points appended
// with Plot are pushed on a fixed interval to a renderer subprocess that
// owns the plotting surface, so the caller never blocks on a "show" call.
//
// # Usage
//
//	p, err := liveplot.New(liveplot.Config{Port: 8000},
//	    liveplot.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	if err := p.Start(ctx); err != nil {
//	    return err // renderer failed to start or timed out
//	}
//	for i := 0; i < 100; i++ {
//	    p.Plot(float64(i), float64(i*i))
//	}
//	defer p.Stop()
//
// Start spawns the renderer, waits for its readiness signal and only then
// starts the sync loop. Every SyncInterval the loop drains the pending
// points and delivers them as one batch. A batch that cannot be delivered
// is dropped and reported through OnSendError; the next tick carries on.
//
// When the renderer exits, OnRendererExit is emitted. When the producer
// exits, the renderer notices on its next frame and closes.
//
// # Events and plugins
//
// WithEventHandler receives state changes, send results and the renderer's
// exit. WithPlugin registers components initialized after the renderer is
// ready; plugins receive a SyncTuner to retune the sync interval.
//
// # Version
//
// Current version: 1.0.0, see Version.
package liveplot
