package liveplot

import (
	"time"

	"github.com/bft-labs/liveplot/pkg/lifecycle"
)

// State is the lifecycle state of a Plotter.
type State = lifecycle.State

// Plotter states.
const (
	StateStopped  = lifecycle.StateStopped
	StateStarting = lifecycle.StateStarting
	StateRunning  = lifecycle.StateRunning
	StateStopping = lifecycle.StateStopping
	StateCrashed  = lifecycle.StateCrashed
)

// StateChangeEvent is emitted on every lifecycle transition.
type StateChangeEvent struct {
	Previous State
	Current  State
	Reason   string
}

// SendSuccessEvent is emitted after a batch was accepted by the renderer.
type SendSuccessEvent struct {
	Points   int
	Duration time.Duration
}

// SendErrorEvent is emitted when a batch could not be delivered. The batch
// is dropped; the sync loop keeps ticking.
type SendErrorEvent struct {
	Error  error
	Points int
}

// RendererExitEvent is emitted once the renderer process has exited, for
// whatever reason. Err is nil for a clean exit.
type RendererExitEvent struct {
	PID int
	Err error
}

// EventHandler receives plotter events. Methods are called synchronously
// from the plotter's goroutines and must not block.
type EventHandler interface {
	OnStateChange(event StateChangeEvent)
	OnSendSuccess(event SendSuccessEvent)
	OnSendError(event SendErrorEvent)
	OnRendererExit(event RendererExitEvent)
}

// BaseEventHandler implements EventHandler with no-ops. Embed it to handle
// only the events you need.
type BaseEventHandler struct{}

func (BaseEventHandler) OnStateChange(StateChangeEvent)   {}
func (BaseEventHandler) OnSendSuccess(SendSuccessEvent)   {}
func (BaseEventHandler) OnSendError(SendErrorEvent)       {}
func (BaseEventHandler) OnRendererExit(RendererExitEvent) {}

// eventEmitter forwards to an optional EventHandler.
type eventEmitter struct {
	handler EventHandler
}

func (e *eventEmitter) OnStateChange(previous, current lifecycle.State, reason string) {
	if e == nil || e.handler == nil {
		return
	}
	e.handler.OnStateChange(StateChangeEvent{Previous: previous, Current: current, Reason: reason})
}

func (e *eventEmitter) sendSuccess(n int, d time.Duration) {
	if e == nil || e.handler == nil {
		return
	}
	e.handler.OnSendSuccess(SendSuccessEvent{Points: n, Duration: d})
}

func (e *eventEmitter) sendError(err error, n int) {
	if e == nil || e.handler == nil {
		return
	}
	e.handler.OnSendError(SendErrorEvent{Error: err, Points: n})
}

func (e *eventEmitter) rendererExit(pid int, err error) {
	if e == nil || e.handler == nil {
		return
	}
	e.handler.OnRendererExit(RendererExitEvent{PID: pid, Err: err})
}
