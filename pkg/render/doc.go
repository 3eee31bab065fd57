// Package render is the renderer process: a transport server feeding a
// receive buffer, and a loop that drains that buffer onto a plotting
// surface once per frame.
//
// The surface owns the timer. Each tick the loop
//
//  1. stops with ErrProducerGone if the producer has exited,
//  2. drains the receive buffer,
//  3. reseeds the working set with the previous tick's final point,
//  4. appends the drained points to the working set and the history,
//  5. hands the working set to the surface.
//
// Three surfaces are available: a desktop window (ebiten), a character plot
// in the terminal (tcell) and a headless ticker that can trace points to a
// writer.
//
//	err := render.Run(ctx, render.Config{
//	    Port:    8000,
//	    Surface: render.SurfaceWindow,
//	}, logger)
package render
