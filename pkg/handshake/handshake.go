package handshake

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
)

const (
	// EnvReadyFD names the environment variable that tells the renderer
	// which inherited descriptor carries the readiness line.
	EnvReadyFD = "LIVEPLOT_READY_FD"

	// ReadyMessage is the only line ever written on the channel.
	ReadyMessage = "ready"

	// ChildFD is the descriptor the write end lands on in the child when it
	// is passed as the first entry of exec.Cmd.ExtraFiles.
	ChildFD = 3
)

// Handshake errors. Match with errors.Is.
var (
	// ErrStartupTimeout means the renderer did not report ready in time.
	ErrStartupTimeout = errors.New("handshake: renderer startup timed out")

	// ErrRendererExited means the channel closed before the ready line,
	// which happens when the renderer dies during startup.
	ErrRendererExited = errors.New("handshake: renderer exited before ready")

	// ErrUnexpectedMessage means something other than the ready line arrived.
	ErrUnexpectedMessage = errors.New("handshake: unexpected message")

	// ErrNoChannel means the process was not started with a readiness channel.
	ErrNoChannel = errors.New("handshake: no readiness channel")
)

// Waiter is the producer side: it owns the read end of the pipe and blocks
// until the renderer reports ready.
type Waiter struct {
	r *os.File
	w *os.File

	releaseOnce sync.Once
	closeOnce   sync.Once
}

// NewWaiter creates the pipe. Pass ChildFile to the child through
// exec.Cmd.ExtraFiles and add Env(ChildFD) to its environment.
func NewWaiter() (*Waiter, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("create readiness pipe: %w", err)
	}
	return &Waiter{r: r, w: w}, nil
}

// ChildFile returns the write end to hand to the child.
func (w *Waiter) ChildFile() *os.File {
	return w.w
}

// Env returns the environment entry announcing fd to the child.
func Env(fd int) string {
	return EnvReadyFD + "=" + strconv.Itoa(fd)
}

// ReleaseChild closes the producer's copy of the write end. Call it after the
// child has been started; until then EOF can never be observed.
func (w *Waiter) ReleaseChild() error {
	var err error
	w.releaseOnce.Do(func() {
		err = w.w.Close()
	})
	return err
}

// Wait blocks until the ready line arrives, the channel closes, or ctx ends.
// A deadline on ctx is reported as ErrStartupTimeout.
func (w *Waiter) Wait(ctx context.Context) error {
	result := make(chan error, 1)
	go func() {
		result <- readReady(w.r)
	}()

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		// Unblock the reader goroutine.
		w.Close()
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ErrStartupTimeout
		}
		return ctx.Err()
	}
}

// Close releases both ends of the pipe.
func (w *Waiter) Close() error {
	w.ReleaseChild()
	var err error
	w.closeOnce.Do(func() {
		err = w.r.Close()
	})
	return err
}

func readReady(r io.Reader) error {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && line == "" {
		if errors.Is(err, io.EOF) {
			return ErrRendererExited
		}
		return fmt.Errorf("%w: %v", ErrRendererExited, err)
	}
	if strings.TrimSpace(line) != ReadyMessage {
		return fmt.Errorf("%w: %q", ErrUnexpectedMessage, line)
	}
	return nil
}

// Notifier is the renderer side of the channel.
type Notifier struct {
	w    io.WriteCloser
	once sync.Once
	err  error
}

// NewNotifier wraps an already open channel.
func NewNotifier(w io.WriteCloser) *Notifier {
	return &Notifier{w: w}
}

// NotifierFromEnv opens the descriptor named by EnvReadyFD.
func NotifierFromEnv() (*Notifier, error) {
	raw, ok := os.LookupEnv(EnvReadyFD)
	if !ok || raw == "" {
		return nil, ErrNoChannel
	}
	fd, err := strconv.Atoi(raw)
	if err != nil || fd < 0 {
		return nil, fmt.Errorf("%w: bad %s %q", ErrNoChannel, EnvReadyFD, raw)
	}
	return NewNotifier(os.NewFile(uintptr(fd), "liveplot-ready")), nil
}

// Ready writes the ready line and closes the channel. Only the first call
// does anything; later calls return the first call's result.
func (n *Notifier) Ready() error {
	n.once.Do(func() {
		_, n.err = io.WriteString(n.w, ReadyMessage+"\n")
		if cerr := n.w.Close(); n.err == nil {
			n.err = cerr
		}
	})
	return n.err
}

// Signal reports readiness on the channel inherited from the parent.
// It returns ErrNoChannel when the process was started without one.
func Signal() error {
	n, err := NotifierFromEnv()
	if err != nil {
		return err
	}
	return n.Ready()
}
