// Package launcher spawns the renderer process and waits for its readiness
// handshake before handing control back to the producer.
//
//	l := launcher.New(launcher.Config{
//	    Command:        "liveplot render --surface window",
//	    Port:           8000,
//	    Session:        sessionID,
//	    StartupTimeout: 10 * time.Second,
//	}, logger)
//	h, err := l.Start(ctx)
//	if errors.Is(err, handshake.ErrStartupTimeout) {
//	    // the renderer never bound its port
//	}
//	<-h.Done() // renderer exited
//
// The renderer receives the port as its last positional argument and finds
// the producer's pid, the session id and the readiness descriptor in
// LIVEPLOT_PARENT_PID, LIVEPLOT_SESSION and LIVEPLOT_READY_FD.
package launcher
