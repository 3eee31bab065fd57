package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"github.com/google/shlex"

	"github.com/bft-labs/liveplot/pkg/handshake"
	"github.com/bft-labs/liveplot/pkg/log"
)

// Environment passed to the renderer.
const (
	EnvParentPID = "LIVEPLOT_PARENT_PID"
	EnvSession   = "LIVEPLOT_SESSION"
)

// DefaultStartupTimeout bounds the readiness wait when Config leaves it unset.
const DefaultStartupTimeout = 10 * time.Second

var (
	// ErrAlreadyStarted is returned by a second Start on the same Launcher.
	ErrAlreadyStarted = errors.New("launcher: already started")

	// ErrNoCommand is returned when neither Command nor Args names a program.
	ErrNoCommand = errors.New("launcher: no renderer command")
)

// Config describes how to spawn the renderer.
type Config struct {
	// Command is the renderer command line, split shell-style. The port is
	// appended as the final argument.
	Command string

	// Args, when set, is used verbatim instead of splitting Command.
	Args []string

	// Port is the transport port handed to the renderer.
	Port int

	// Session is the producer's session id.
	Session string

	// StartupTimeout bounds the wait for the ready line.
	StartupTimeout time.Duration

	// Stdout and Stderr receive the renderer's output. Nil means the
	// producer's own streams.
	Stdout io.Writer
	Stderr io.Writer

	// Env is appended to the producer's environment.
	Env []string
}

// Launcher owns the renderer process from the producer side.
type Launcher struct {
	cfg    Config
	logger log.Logger

	mu      sync.Mutex
	started bool
}

// New creates a Launcher.
func New(cfg Config, logger log.Logger) *Launcher {
	if cfg.StartupTimeout <= 0 {
		cfg.StartupTimeout = DefaultStartupTimeout
	}
	return &Launcher{
		cfg:    cfg,
		logger: log.OrNoop(logger).With(log.Component("launcher")),
	}
}

// Start spawns the renderer and blocks until it reports ready, its startup
// deadline passes, or ctx ends. It may be called once.
func (l *Launcher) Start(ctx context.Context) (*Handle, error) {
	l.mu.Lock()
	if l.started {
		l.mu.Unlock()
		return nil, ErrAlreadyStarted
	}
	l.started = true
	l.mu.Unlock()

	argv, err := l.argv()
	if err != nil {
		return nil, err
	}

	waiter, err := handshake.NewWaiter()
	if err != nil {
		return nil, err
	}
	defer waiter.Close()

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdout = orDefault(l.cfg.Stdout, os.Stdout)
	cmd.Stderr = orDefault(l.cfg.Stderr, os.Stderr)
	cmd.ExtraFiles = []*os.File{waiter.ChildFile()}
	cmd.Env = append(os.Environ(), l.cfg.Env...)
	cmd.Env = append(cmd.Env,
		handshake.Env(handshake.ChildFD),
		EnvParentPID+"="+strconv.Itoa(os.Getpid()),
		EnvSession+"="+l.cfg.Session,
	)

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("spawn renderer %q: %w", argv[0], err)
	}
	// Only the child holds the write end now, so its death reads as EOF.
	if err := waiter.ReleaseChild(); err != nil {
		l.logger.Warn("release readiness pipe", log.Err(err))
	}

	h := newHandle(cmd, l.logger)
	l.logger.Info("renderer spawned",
		log.Int("pid", h.PID()),
		log.Int("port", l.cfg.Port),
	)

	waitCtx, cancel := context.WithTimeout(ctx, l.cfg.StartupTimeout)
	defer cancel()

	start := time.Now()
	if err := waiter.Wait(waitCtx); err != nil {
		h.Kill()
		<-h.Done()
		return nil, fmt.Errorf("renderer on port %d: %w", l.cfg.Port, err)
	}

	l.logger.Info("renderer ready", log.Duration("startup", time.Since(start)))
	return h, nil
}

func (l *Launcher) argv() ([]string, error) {
	args := l.cfg.Args
	if len(args) == 0 {
		split, err := shlex.Split(l.cfg.Command)
		if err != nil {
			return nil, fmt.Errorf("parse renderer command %q: %w", l.cfg.Command, err)
		}
		args = split
	}
	if len(args) == 0 {
		return nil, ErrNoCommand
	}
	argv := make([]string, 0, len(args)+1)
	argv = append(argv, args...)
	return append(argv, strconv.Itoa(l.cfg.Port)), nil
}

func orDefault(w io.Writer, def io.Writer) io.Writer {
	if w == nil {
		return def
	}
	return w
}

// Handle identifies a running renderer.
type Handle struct {
	cmd    *exec.Cmd
	ppid   int
	logger log.Logger

	done    chan struct{}
	exitErr error
}

func newHandle(cmd *exec.Cmd, logger log.Logger) *Handle {
	h := &Handle{
		cmd:    cmd,
		ppid:   os.Getpid(),
		logger: logger,
		done:   make(chan struct{}),
	}
	go h.reap()
	return h
}

// reap waits on the child so it never lingers as a zombie.
func (h *Handle) reap() {
	err := h.cmd.Wait()
	h.exitErr = err
	close(h.done)
	if err != nil {
		h.logger.Warn("renderer exited", log.Int("pid", h.PID()), log.Err(err))
		return
	}
	h.logger.Info("renderer exited", log.Int("pid", h.PID()))
}

// PID returns the renderer's process id.
func (h *Handle) PID() int {
	return h.cmd.Process.Pid
}

// ParentPID returns the producer's process id, the one the renderer watches.
func (h *Handle) ParentPID() int {
	return h.ppid
}

// Done is closed once the renderer has exited and been reaped.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// ExitErr returns the renderer's exit error. Valid after Done is closed.
func (h *Handle) ExitErr() error {
	select {
	case <-h.done:
		return h.exitErr
	default:
		return nil
	}
}

// Kill terminates the renderer. Killing an exited renderer is a no-op.
func (h *Handle) Kill() error {
	select {
	case <-h.done:
		return nil
	default:
	}
	if err := h.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	return nil
}
