package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bft-labs/liveplot/pkg/launcher"
	"github.com/bft-labs/liveplot/pkg/log"
	"github.com/bft-labs/liveplot/pkg/render"
)

func newRenderCmd(c *cli) *cobra.Command {
	var parentPID int

	cmd := &cobra.Command{
		Use:   "render <port>",
		Short: "Run the renderer process (spawned by a producer)",
		Long: `Run the renderer: listen for point batches on 127.0.0.1:<port>, report
ready to the producer that spawned it, and draw until that producer exits.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			port, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("port %q: %w", args[0], err)
			}
			if err := c.load(cmd); err != nil {
				return err
			}

			cfg := c.cfg.RenderConfig(port)
			cfg.ParentPID = parentPID
			if cfg.ParentPID == 0 {
				cfg.ParentPID, _ = strconv.Atoi(os.Getenv(launcher.EnvParentPID))
			}
			cfg.Session = os.Getenv(launcher.EnvSession)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			logger := log.NewZerologAdapterWithLogger(c.log)
			return render.Run(ctx, cfg, logger)
		},
	}

	cmd.Flags().IntVar(&parentPID, "parent-pid", 0, "producer pid to watch (default: from the environment, else the parent process)")
	return cmd
}
