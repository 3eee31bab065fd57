package liveplot

import (
	"context"
	"time"

	"github.com/bft-labs/liveplot/pkg/log"
)

// Plugin extends a Plotter. Plugins are initialized in registration order
// after the renderer is ready and shut down in reverse order by Stop.
type Plugin interface {
	Name() string
	Initialize(ctx context.Context, cfg PluginConfig) error
	Shutdown(ctx context.Context) error
}

// SyncTuner adjusts the sync loop at runtime.
type SyncTuner interface {
	SetSyncInterval(d time.Duration)
}

// PluginConfig is what a plugin receives on Initialize.
type PluginConfig struct {
	Port      int
	SessionID string
	Logger    log.Logger
	Sync      SyncTuner
}
