package main

import (
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/liveplot/internal/cliconfig"
	"github.com/bft-labs/liveplot/pkg/liveplot"
)

const helpDescription = `
Plot a growing series of points without blocking the program producing them.

The producer appends points and ships them to a renderer process at a fixed
interval. The renderer draws in a window, a terminal, or headless, and exits
by itself once the producer is gone.

Configure via file ($HOME/.liveplot/config.toml), LIVEPLOT_* env, or flags.
`

var exampleUsage = strings.TrimSpace(`
  liveplot demo --pattern sine
  liveplot demo --surface terminal --count 500
  liveplot render 8000 --surface headless
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return liveplot.Version
}

// cli carries the configuration shared by every subcommand.
type cli struct {
	cfg     cliconfig.Config
	cfgPath string
	log     zerolog.Logger
}

// load applies file and env config beneath any flag the user passed.
func (c *cli) load(cmd *cobra.Command) error {
	cfgFile := c.cfgPath
	if cfgFile == "" {
		cfgFile = cliconfig.DefaultConfigPath()
	}

	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	if cfgFile != "" && cliconfig.FileExists(cfgFile) {
		fc, err := cliconfig.LoadFileConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(&c.cfg, fc, changed); err != nil {
			return err
		}
		c.cfgPath = cfgFile
	}

	if err := cliconfig.ApplyEnvConfig(&c.cfg, changed); err != nil {
		return err
	}
	if err := c.cfg.Validate(); err != nil {
		return err
	}

	c.log = cliconfig.Logger(c.cfg.LogLevel)
	return nil
}

func newRootCmd() *cobra.Command {
	c := &cli{cfg: cliconfig.DefaultConfig(), log: cliconfig.Logger("info")}

	root := &cobra.Command{
		Use:           "liveplot",
		Short:         "Non-blocking live plotting through a renderer subprocess",
		Long:          strings.TrimSpace(helpDescription),
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&c.cfgPath, "config", "", "path to config file (default: $HOME/.liveplot/config.toml)")
	root.PersistentFlags().StringVar(&c.cfg.LogLevel, "log-level", c.cfg.LogLevel, "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&c.cfg.Surface, "surface", c.cfg.Surface, "plotting surface: window, terminal or headless")
	root.PersistentFlags().IntVar(&c.cfg.TPS, "tps", c.cfg.TPS, "renderer frames per second")
	root.PersistentFlags().IntVar(&c.cfg.Width, "width", c.cfg.Width, "window width in pixels")
	root.PersistentFlags().IntVar(&c.cfg.Height, "height", c.cfg.Height, "window height in pixels")
	root.PersistentFlags().StringVar(&c.cfg.Title, "title", c.cfg.Title, "plot title")

	root.AddCommand(newRenderCmd(c), newDemoCmd(c))
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logger := cliconfig.Logger("error")
		logger.Error().Err(err).Msg("liveplot")
		os.Exit(1)
	}
}
