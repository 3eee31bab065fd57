// Package lifecycle provides the state machine behind a plotter's
// Start/Stop calls.
//
//	m := lifecycle.NewManager(logger, emitter)
//	if err := m.TransitionTo(lifecycle.StateStarting, "start requested"); err != nil {
//	    return err
//	}
//	m.Go(syncLoop)
//	...
//	m.Cancel()
//	err := m.WaitWithTimeout(lifecycle.ShutdownTimeout)
//
// # State Machine
//
// Valid state transitions:
//   - Stopped -> Starting
//   - Starting -> Running, Crashed
//   - Running -> Stopping, Crashed
//   - Stopping -> Stopped, Crashed
//
// Crashed is terminal: a plotter is started at most once.
package lifecycle
