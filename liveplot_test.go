package liveplot

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/bft-labs/liveplot/pkg/launcher"
	"github.com/bft-labs/liveplot/pkg/render"
)

// The test binary doubles as the renderer when this is set.
const envRenderer = "LIVEPLOT_FACADE_RENDERER"

func TestMain(m *testing.M) {
	if os.Getenv(envRenderer) != "" {
		os.Exit(runRenderer())
	}
	os.Exit(m.Run())
}

func runRenderer() int {
	port, err := strconv.Atoi(os.Args[len(os.Args)-1])
	if err != nil {
		fmt.Fprintln(os.Stderr, "bad port:", err)
		return 2
	}
	parent, _ := strconv.Atoi(os.Getenv(launcher.EnvParentPID))
	err = render.Run(context.Background(), render.Config{
		Port:      port,
		ParentPID: parent,
		Session:   os.Getenv(launcher.EnvSession),
		Surface:   render.SurfaceHeadless,
		TPS:       100,
	}, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "render:", err)
		return 1
	}
	return 0
}

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}

func TestStopBeforeStart(t *testing.T) {
	if err := Stop(); !errors.Is(err, ErrNotRunning) {
		t.Errorf("Stop() = %v, want ErrNotRunning", err)
	}
}

func TestPlotBeforeStartIsQueued(t *testing.T) {
	before := pending.Len()
	Plot(1, 1)
	Plot(2, 4)
	if got := pending.Len() - before; got != 2 {
		t.Errorf("queued %d points, want 2", got)
	}
	pending.DrainAll()
}

func TestStartRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Port = 70000
	if err := Start(cfg); err == nil {
		t.Fatal("Start accepted an out-of-range port")
	}
	if current != nil {
		t.Error("a failed Start must not install a plot")
	}
}

func TestStartStopCycle(t *testing.T) {
	if testing.Short() {
		t.Skip("spawns a renderer process")
	}
	t.Cleanup(func() {
		mu.Lock()
		defer mu.Unlock()
		if current != nil {
			_ = current.CloseRenderer()
		}
		current = nil
	})

	cfg := DefaultConfig()
	cfg.Port = freePort(t)
	cfg.SyncInterval = 20 * time.Millisecond
	cfg.StartupTimeout = 10 * time.Second
	cfg.RendererArgs = []string{os.Args[0]}
	cfg.RendererEnv = []string{envRenderer + "=1"}

	Plot(0, 0)
	if err := Start(cfg); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := Start(cfg); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("Start while running = %v, want ErrAlreadyRunning", err)
	}

	for n := 1; n <= 10; n++ {
		Plot(float64(n), float64(n*n))
	}
	if err := Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if n := pending.Len(); n != 0 {
		t.Errorf("%d points left pending after Stop", n)
	}

	// The renderer still owns the port, so the plot cannot be restarted.
	if err := Start(cfg); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("Start after Stop = %v, want ErrAlreadyStarted", err)
	}
}
