package handshake

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"
)

type recordingWriter struct {
	bytes.Buffer
	closed int
}

func (r *recordingWriter) Close() error {
	r.closed++
	return nil
}

func TestWait_Ready(t *testing.T) {
	w, err := NewWaiter()
	if err != nil {
		t.Fatalf("NewWaiter: %v", err)
	}
	defer w.Close()

	n := NewNotifier(w.ChildFile())
	go func() {
		time.Sleep(10 * time.Millisecond)
		n.Ready()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := w.Wait(ctx); err != nil {
		t.Fatalf("Wait = %v, want nil", err)
	}
}

func TestWait_ChildExitedBeforeReady(t *testing.T) {
	w, err := NewWaiter()
	if err != nil {
		t.Fatalf("NewWaiter: %v", err)
	}
	defer w.Close()

	// The only write end is gone, as if the child died.
	if err := w.ReleaseChild(); err != nil {
		t.Fatalf("ReleaseChild: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := w.Wait(ctx); !errors.Is(err, ErrRendererExited) {
		t.Fatalf("Wait = %v, want ErrRendererExited", err)
	}
}

func TestWait_Timeout(t *testing.T) {
	w, err := NewWaiter()
	if err != nil {
		t.Fatalf("NewWaiter: %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	err = w.Wait(ctx)
	if !errors.Is(err, ErrStartupTimeout) {
		t.Fatalf("Wait = %v, want ErrStartupTimeout", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Wait took %v, expected to stop near the deadline", elapsed)
	}
}

func TestWait_Cancelled(t *testing.T) {
	w, err := NewWaiter()
	if err != nil {
		t.Fatalf("NewWaiter: %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := w.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Wait = %v, want context.Canceled", err)
	}
}

func TestWait_UnexpectedMessage(t *testing.T) {
	w, err := NewWaiter()
	if err != nil {
		t.Fatalf("NewWaiter: %v", err)
	}
	defer w.Close()

	go func() {
		io.WriteString(w.ChildFile(), "listening\n")
		w.ReleaseChild()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := w.Wait(ctx); !errors.Is(err, ErrUnexpectedMessage) {
		t.Fatalf("Wait = %v, want ErrUnexpectedMessage", err)
	}
}

func TestNotifier_ReadyOnce(t *testing.T) {
	rw := &recordingWriter{}
	n := NewNotifier(rw)

	for i := 0; i < 3; i++ {
		if err := n.Ready(); err != nil {
			t.Fatalf("Ready #%d: %v", i, err)
		}
	}

	if got := rw.String(); got != "ready\n" {
		t.Errorf("written = %q, want %q", got, "ready\n")
	}
	if rw.closed != 1 {
		t.Errorf("closed %d times, want 1", rw.closed)
	}
}

func TestNotifierFromEnv(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"empty", ""},
		{"not a number", "three"},
		{"negative", "-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvReadyFD, tt.value)
			if _, err := NotifierFromEnv(); !errors.Is(err, ErrNoChannel) {
				t.Errorf("NotifierFromEnv = %v, want ErrNoChannel", err)
			}
		})
	}
}

func TestSignal_WithoutChannel(t *testing.T) {
	t.Setenv(EnvReadyFD, "")
	if err := Signal(); !errors.Is(err, ErrNoChannel) {
		t.Errorf("Signal = %v, want ErrNoChannel", err)
	}
}

func TestEnv(t *testing.T) {
	if got := Env(ChildFD); got != "LIVEPLOT_READY_FD=3" {
		t.Errorf("Env = %q", got)
	}
}
