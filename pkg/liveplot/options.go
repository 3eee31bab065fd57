package liveplot

import (
	"io"

	"github.com/bft-labs/liveplot/pkg/log"
	"github.com/bft-labs/liveplot/pkg/points"
	"github.com/bft-labs/liveplot/pkg/transport"
)

// Option configures optional behavior of a Plotter.
type Option func(*options)

type options struct {
	logger       log.Logger
	eventHandler EventHandler
	httpClient   transport.HTTPClient
	plugins      []Plugin
	stdout       io.Writer
	stderr       io.Writer
	buffer       *points.Buffer
	spawn        spawnFunc
}

// WithLogger sets the logger. If not provided, nothing is logged.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithEventHandler sets a handler for plotter events.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}

// WithHTTPClient replaces the client used to deliver batches. The default
// client times out after Config.SendTimeout.
func WithHTTPClient(client transport.HTTPClient) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithPlugin registers a plugin.
func WithPlugin(plugin Plugin) Option {
	return func(o *options) {
		o.plugins = append(o.plugins, plugin)
	}
}

// WithRendererOutput redirects the renderer's stdout and stderr. By
// default they are the producer's own.
func WithRendererOutput(stdout, stderr io.Writer) Option {
	return func(o *options) {
		o.stdout = stdout
		o.stderr = stderr
	}
}

// WithBuffer makes the plotter drain buf instead of a private buffer, so
// points appended before Start are delivered on the first tick.
func WithBuffer(buf *points.Buffer) Option {
	return func(o *options) {
		o.buffer = buf
	}
}
