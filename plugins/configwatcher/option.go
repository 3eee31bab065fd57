package configwatcher

import "github.com/bft-labs/liveplot/pkg/liveplot"

// WithConfigWatcher returns a liveplot Option that reloads the sync
// interval from cfg.Path while the plotter runs.
//
// Usage:
//
//	p, err := liveplot.New(cfg,
//	    configwatcher.WithConfigWatcher(configwatcher.Config{
//	        Path:          "/etc/liveplot/config.toml",
//	        DebounceDelay: 100 * time.Millisecond,
//	    }),
//	)
func WithConfigWatcher(cfg Config) liveplot.Option {
	return liveplot.WithPlugin(New(cfg))
}

// WithDefaultConfigWatcher watches ~/.liveplot/config.toml.
//
// Usage:
//
//	p, err := liveplot.New(cfg, configwatcher.WithDefaultConfigWatcher())
func WithDefaultConfigWatcher() liveplot.Option {
	return WithConfigWatcher(DefaultConfig())
}
