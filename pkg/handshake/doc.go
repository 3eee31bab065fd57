// Package handshake implements the one-shot readiness signal the renderer
// sends its producer once the transport server is listening.
//
// The channel is an anonymous pipe. The producer keeps the read end and
// hands the write end to the child as an extra file, announcing its
// descriptor number in LIVEPLOT_READY_FD:
//
//	w, _ := handshake.NewWaiter()
//	cmd.ExtraFiles = []*os.File{w.ChildFile()}
//	cmd.Env = append(cmd.Env, handshake.Env(handshake.ChildFD))
//	cmd.Start()
//	w.ReleaseChild()
//	err := w.Wait(ctx) // nil, ErrStartupTimeout or ErrRendererExited
//
// The renderer writes the single line "ready" and closes its end:
//
//	if err := handshake.Signal(); err != nil && !errors.Is(err, handshake.ErrNoChannel) {
//	    return err
//	}
//
// A renderer that dies during startup closes the pipe without writing, so
// the producer learns of the failure immediately instead of waiting out
// the timeout.
package handshake
