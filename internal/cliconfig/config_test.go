package cliconfig

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/bft-labs/liveplot/pkg/render"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Port != 8000 {
		t.Errorf("Port = %v, want 8000", cfg.Port)
	}
	if cfg.SyncInterval != 100*time.Millisecond {
		t.Errorf("SyncInterval = %v, want 100ms", cfg.SyncInterval)
	}
	if cfg.Surface != "window" {
		t.Errorf("Surface = %v, want window", cfg.Surface)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"terminal surface", func(c *Config) { c.Surface = "Terminal" }, false},
		{"port zero", func(c *Config) { c.Port = 0 }, true},
		{"port too large", func(c *Config) { c.Port = 65536 }, true},
		{"zero sync interval", func(c *Config) { c.SyncInterval = 0 }, true},
		{"zero send timeout", func(c *Config) { c.SendTimeout = 0 }, true},
		{"zero startup timeout", func(c *Config) { c.StartupTimeout = 0 }, true},
		{"unknown surface", func(c *Config) { c.Surface = "svg" }, true},
		{"zero tps", func(c *Config) { c.TPS = 0 }, true},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_PlotterConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Port = 9001
	cfg.SyncInterval = 50 * time.Millisecond

	self := []string{"/usr/bin/liveplot", "render"}

	pc := cfg.PlotterConfig(self)
	if pc.Port != 9001 || pc.SyncInterval != 50*time.Millisecond {
		t.Errorf("PlotterConfig() = %+v", pc)
	}
	if len(pc.RendererArgs) != 2 || pc.RendererCommand != "" {
		t.Errorf("without a renderer command the executable is used: %+v", pc)
	}

	cfg.Renderer = "python3 plot.py"
	pc = cfg.PlotterConfig(self)
	if pc.RendererCommand != "python3 plot.py" || pc.RendererArgs != nil {
		t.Errorf("renderer command not honoured: %+v", pc)
	}
}

func TestConfig_RenderConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Surface = "HEADLESS"
	cfg.Title = "loss"

	rc := cfg.RenderConfig(8123)
	if rc.Port != 8123 || rc.Surface != render.SurfaceHeadless || rc.Title != "loss" {
		t.Errorf("RenderConfig() = %+v", rc)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zerolog.Level
		wantErr bool
	}{
		{"", zerolog.InfoLevel, false},
		{"debug", zerolog.DebugLevel, false},
		{"WARN", zerolog.WarnLevel, false},
		{"loud", zerolog.NoLevel, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if got := Logger("loud").GetLevel(); got != zerolog.InfoLevel {
		t.Errorf("Logger with a bad level = %v, want info", got)
	}
}
