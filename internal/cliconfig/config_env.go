package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (LIVEPLOT_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("renderer", os.Getenv("LIVEPLOT_RENDERER"), &cfg.Renderer)
	s.setString("surface", os.Getenv("LIVEPLOT_SURFACE"), &cfg.Surface)
	s.setString("title", os.Getenv("LIVEPLOT_TITLE"), &cfg.Title)
	s.setString("log-level", os.Getenv("LIVEPLOT_LOG_LEVEL"), &cfg.LogLevel)

	if err := s.setIntFromString("port", os.Getenv("LIVEPLOT_PORT"), &cfg.Port); err != nil {
		return err
	}
	if err := s.setDuration("sync-interval", os.Getenv("LIVEPLOT_SYNC_INTERVAL"), &cfg.SyncInterval); err != nil {
		return err
	}
	if err := s.setDuration("send-timeout", os.Getenv("LIVEPLOT_SEND_TIMEOUT"), &cfg.SendTimeout); err != nil {
		return err
	}
	if err := s.setDuration("startup-timeout", os.Getenv("LIVEPLOT_STARTUP_TIMEOUT"), &cfg.StartupTimeout); err != nil {
		return err
	}
	if err := s.setIntFromString("tps", os.Getenv("LIVEPLOT_TPS"), &cfg.TPS); err != nil {
		return err
	}
	if err := s.setIntFromString("width", os.Getenv("LIVEPLOT_WIDTH"), &cfg.Width); err != nil {
		return err
	}
	if err := s.setIntFromString("height", os.Getenv("LIVEPLOT_HEIGHT"), &cfg.Height); err != nil {
		return err
	}

	return nil
}
