package liveplot

import "errors"

// Plotter errors. Match with errors.Is.
var (
	// ErrAlreadyRunning is returned when Start is called on a running plotter.
	ErrAlreadyRunning = errors.New("plotter already running")

	// ErrNotRunning is returned when Stop is called on a plotter that is not running.
	ErrNotRunning = errors.New("plotter not running")

	// ErrAlreadyStarted is returned by a second Start. A plotter launches
	// one renderer in its lifetime.
	ErrAlreadyStarted = errors.New("plotter already started")

	// ErrInvalidConfig is wrapped by every configuration validation error.
	ErrInvalidConfig = errors.New("invalid config")
)
