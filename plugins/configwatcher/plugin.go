// Package configwatcher reloads the sync interval of a running plotter
// when its TOML config file changes.
package configwatcher

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/liveplot/internal/cliconfig"
	"github.com/bft-labs/liveplot/pkg/liveplot"
	"github.com/bft-labs/liveplot/pkg/log"
)

// Plugin watches one config file and applies its sync_interval to the
// plotter's sync loop.
type Plugin struct {
	mu sync.Mutex

	path          string
	debounceDelay time.Duration

	logger   log.Logger
	tuner    liveplot.SyncTuner
	applied  time.Duration
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	debounce *time.Timer
}

// Config holds configuration options for the config watcher plugin.
type Config struct {
	// Path is the TOML file to watch. Empty disables the plugin.
	Path string

	// DebounceDelay is the delay to wait after a file change before reloading.
	// Default: 100 milliseconds
	DebounceDelay time.Duration
}

// DefaultConfig watches ~/.liveplot/config.toml.
func DefaultConfig() Config {
	return Config{
		Path:          cliconfig.DefaultConfigPath(),
		DebounceDelay: 100 * time.Millisecond,
	}
}

// New creates a new config watcher plugin with the given configuration.
func New(cfg Config) *Plugin {
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = 100 * time.Millisecond
	}
	return &Plugin{
		path:          cfg.Path,
		debounceDelay: cfg.DebounceDelay,
	}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "configwatcher"
}

// Initialize starts watching the config file's directory.
func (p *Plugin) Initialize(ctx context.Context, cfg liveplot.PluginConfig) error {
	p.mu.Lock()
	p.logger = log.OrNoop(cfg.Logger).With(log.Component("configwatcher"))
	p.tuner = cfg.Sync
	p.mu.Unlock()

	if p.path == "" || p.tuner == nil {
		p.logger.Warn("config watcher disabled: no config path or sync tuner")
		return nil
	}

	watchCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.wg.Add(1)
	go p.watchLoop(watchCtx)

	p.logger.Info("config watcher plugin initialized", log.String("path", p.path))
	return nil
}

// Shutdown stops the config watcher.
func (p *Plugin) Shutdown(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()

	p.mu.Lock()
	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.mu.Unlock()
	return nil
}

// watchLoop watches the directory rather than the file so that editors
// which replace the file on save are still seen.
func (p *Plugin) watchLoop(ctx context.Context) {
	defer p.wg.Done()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		p.logger.Error("config watcher: failed to create watcher", log.Err(err))
		return
	}
	defer watcher.Close()

	dir, name := filepath.Split(p.path)
	if dir == "" {
		dir = "."
	}
	if err := watcher.Add(dir); err != nil {
		p.logger.Error("config watcher: failed to watch directory",
			log.String("dir", dir), log.Err(err))
		return
	}

	p.reload()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			p.debounceReload(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			p.logger.Error("config watcher: watcher error", log.Err(err))
		}
	}
}

func (p *Plugin) debounceReload(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.debounce = time.AfterFunc(p.debounceDelay, func() {
		if ctx.Err() != nil {
			return
		}
		p.reload()
	})
}

// reload applies sync_interval when it is set and differs from the last
// applied value. A file that fails to parse leaves the interval unchanged.
func (p *Plugin) reload() {
	d, err := cliconfig.LoadSyncInterval(p.path)
	if err != nil {
		p.logger.Warn("config watcher: reload failed", log.String("path", p.path), log.Err(err))
		return
	}
	if d <= 0 {
		return
	}

	p.mu.Lock()
	if d == p.applied {
		p.mu.Unlock()
		return
	}
	p.applied = d
	tuner := p.tuner
	p.mu.Unlock()

	tuner.SetSyncInterval(d)
	p.logger.Info("sync interval reloaded", log.Duration("sync_interval", d))
}

// Applied returns the last sync interval applied from the file, or zero.
func (p *Plugin) Applied() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.applied
}

var _ liveplot.Plugin = (*Plugin)(nil)
