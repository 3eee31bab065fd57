package liveplot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bft-labs/liveplot/pkg/launcher"
	"github.com/bft-labs/liveplot/pkg/lifecycle"
	"github.com/bft-labs/liveplot/pkg/log"
	"github.com/bft-labs/liveplot/pkg/points"
	"github.com/bft-labs/liveplot/pkg/transport"
)

// renderer is the running renderer process. *launcher.Handle satisfies it.
type renderer interface {
	PID() int
	Done() <-chan struct{}
	ExitErr() error
	Kill() error
}

// spawnFunc launches a renderer and returns once it is ready.
type spawnFunc func(ctx context.Context, cfg launcher.Config, logger log.Logger) (renderer, error)

func launchRenderer(ctx context.Context, cfg launcher.Config, logger log.Logger) (renderer, error) {
	h, err := launcher.New(cfg, logger).Start(ctx)
	if err != nil {
		return nil, err
	}
	return h, nil
}

// Plotter streams points to a renderer subprocess. Use New to create one,
// Start to launch the renderer and Plot to add points.
type Plotter struct {
	config    Config
	opts      options
	logger    log.Logger
	emitter   *eventEmitter
	lifecycle *lifecycle.Manager
	buffer    *points.Buffer
	sync      *syncLoop
	plugins   []Plugin

	mu      sync.Mutex
	started bool

	rmu      sync.Mutex
	renderer renderer
}

// New creates a Plotter in StateStopped. Returns an error if the
// configuration is invalid.
func New(cfg Config, opts ...Option) (*Plotter, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.httpClient == nil {
		o.httpClient = transport.NewHTTPClient(cfg.SendTimeout)
	}
	if o.buffer == nil {
		o.buffer = points.NewBuffer()
	}
	if o.spawn == nil {
		o.spawn = launchRenderer
	}

	logger := log.OrNoop(o.logger).With(log.String("session", cfg.SessionID))
	emitter := &eventEmitter{handler: o.eventHandler}

	client := transport.NewClient(transport.Endpoint(cfg.Port), o.httpClient, logger,
		transport.WithSession(cfg.SessionID))

	return &Plotter{
		config:    cfg,
		opts:      o,
		logger:    logger,
		emitter:   emitter,
		lifecycle: lifecycle.NewManager(logger, emitter),
		buffer:    o.buffer,
		sync:      newSyncLoop(o.buffer, client, cfg.SyncInterval, cfg.SendTimeout, logger, emitter),
		plugins:   o.plugins,
	}, nil
}

// Start launches the renderer, waits for it to report ready, then starts
// the sync loop in the background. The first batch is never sent before
// the renderer is ready. Start may be called once; ctx bounds the launch
// and the lifetime of the sync loop.
func (p *Plotter) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		if p.lifecycle.State() == StateRunning {
			return ErrAlreadyRunning
		}
		return ErrAlreadyStarted
	}
	p.started = true

	if err := p.lifecycle.TransitionTo(StateStarting, "Start() called"); err != nil {
		return err
	}

	r, err := p.opts.spawn(ctx, launcher.Config{
		Command:        p.config.RendererCommand,
		Args:           p.config.RendererArgs,
		Port:           p.config.Port,
		Session:        p.config.SessionID,
		StartupTimeout: p.config.StartupTimeout,
		Stdout:         p.opts.stdout,
		Stderr:         p.opts.stderr,
		Env:            p.config.RendererEnv,
	}, p.logger)
	if err != nil {
		_ = p.lifecycle.TransitionTo(StateCrashed, "renderer launch failed")
		return fmt.Errorf("start renderer: %w", err)
	}
	p.rmu.Lock()
	p.renderer = r
	p.rmu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	p.lifecycle.SetCancel(cancel)

	pluginCfg := PluginConfig{
		Port:      p.config.Port,
		SessionID: p.config.SessionID,
		Logger:    p.logger,
		Sync:      p.sync,
	}
	for i, pl := range p.plugins {
		if err := pl.Initialize(runCtx, pluginCfg); err != nil {
			p.logger.Error("plugin initialization failed",
				log.String("plugin", pl.Name()),
				log.Err(err))
			cancel()
			p.shutdownPlugins(p.plugins[:i])
			_ = r.Kill()
			_ = p.lifecycle.TransitionTo(StateCrashed, "plugin init failed: "+pl.Name())
			return fmt.Errorf("plugin %s: %w", pl.Name(), err)
		}
		p.logger.Info("plugin initialized", log.String("plugin", pl.Name()))
	}

	p.lifecycle.Go(func() { p.sync.run(runCtx) })
	p.lifecycle.Go(func() { p.watchRenderer(runCtx, r) })

	return p.lifecycle.TransitionTo(StateRunning, "renderer ready")
}

// watchRenderer reports the renderer's exit. The sync loop is not stopped:
// sends simply fail and their batches are dropped.
func (p *Plotter) watchRenderer(ctx context.Context, r renderer) {
	select {
	case <-ctx.Done():
	case <-r.Done():
		err := r.ExitErr()
		p.logger.Warn("renderer is gone, points will be dropped",
			log.Int("pid", r.PID()),
			log.Err(err))
		p.emitter.rendererExit(r.PID(), err)
	}
}

// Plot appends one point to the pending buffer and returns immediately.
// It is safe for concurrent use and may be called before Start.
func (p *Plotter) Plot(x, y float64) {
	p.buffer.Append(points.Point{X: x, Y: y})
}

// Stop stops the sync loop after one final flush and shuts plugins down.
// The renderer keeps showing the plot until the producer process exits;
// use CloseRenderer to close it earlier.
func (p *Plotter) Stop() error {
	p.mu.Lock()
	if p.lifecycle.State() != StateRunning {
		p.mu.Unlock()
		return ErrNotRunning
	}
	if err := p.lifecycle.TransitionTo(StateStopping, "Stop() called"); err != nil {
		p.mu.Unlock()
		return err
	}
	p.lifecycle.Cancel()
	p.mu.Unlock()

	err := p.lifecycle.WaitWithTimeout(lifecycle.ShutdownTimeout)
	p.shutdownPlugins(p.plugins)

	sent, dropped := p.sync.stats()
	p.logger.Info("plotter stopped",
		log.Uint64("points_sent", sent),
		log.Uint64("points_dropped", dropped))

	if err != nil {
		_ = p.lifecycle.TransitionTo(StateCrashed, "shutdown timeout")
		return err
	}
	return p.lifecycle.TransitionTo(StateStopped, "graceful shutdown")
}

func (p *Plotter) shutdownPlugins(plugins []Plugin) {
	ctx := context.Background()
	for i := len(plugins) - 1; i >= 0; i-- {
		pl := plugins[i]
		if err := pl.Shutdown(ctx); err != nil {
			p.logger.Error("plugin shutdown failed",
				log.String("plugin", pl.Name()),
				log.Err(err))
			continue
		}
		p.logger.Info("plugin shutdown complete", log.String("plugin", pl.Name()))
	}
}

// CloseRenderer kills the renderer process. It is a no-op before Start or
// after the renderer has exited.
func (p *Plotter) CloseRenderer() error {
	p.rmu.Lock()
	r := p.renderer
	p.rmu.Unlock()
	if r == nil {
		return nil
	}
	return r.Kill()
}

// SetSyncInterval retunes the sync loop while running.
func (p *Plotter) SetSyncInterval(d time.Duration) {
	p.sync.SetSyncInterval(d)
}

// Status returns the current lifecycle state.
func (p *Plotter) Status() State {
	return p.lifecycle.State()
}

// RendererPID returns the renderer's process id, or 0 before Start.
func (p *Plotter) RendererPID() int {
	p.rmu.Lock()
	defer p.rmu.Unlock()
	if p.renderer == nil {
		return 0
	}
	return p.renderer.PID()
}

// SessionID returns the id sent with every batch.
func (p *Plotter) SessionID() string {
	return p.config.SessionID
}

// Pending returns the number of points waiting for the next tick.
func (p *Plotter) Pending() int {
	return p.buffer.Len()
}
