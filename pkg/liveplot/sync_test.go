package liveplot

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bft-labs/liveplot/pkg/points"
	"github.com/bft-labs/liveplot/pkg/render"
	"github.com/bft-labs/liveplot/pkg/transport"
)

// recordingSender implements batchSender and records every call.
type recordingSender struct {
	mu      sync.Mutex
	batches []points.Batch
	fail    func(call int) error
	calls   int
}

func (r *recordingSender) Send(ctx context.Context, batch points.Batch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.fail != nil {
		if err := r.fail(r.calls); err != nil {
			return err
		}
	}
	r.batches = append(r.batches, append(points.Batch(nil), batch...))
	return nil
}

func (r *recordingSender) Batches() []points.Batch {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]points.Batch(nil), r.batches...)
}

func (r *recordingSender) Flattened() points.Batch {
	var all points.Batch
	for _, b := range r.Batches() {
		all = append(all, b...)
	}
	return all
}

// mockEventHandler records events for testing.
type mockEventHandler struct {
	BaseEventHandler
	mu        sync.Mutex
	states    []StateChangeEvent
	successes []SendSuccessEvent
	errs      []SendErrorEvent
	exits     []RendererExitEvent
}

func (m *mockEventHandler) OnStateChange(e StateChangeEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states = append(m.states, e)
}

func (m *mockEventHandler) OnSendSuccess(e SendSuccessEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.successes = append(m.successes, e)
}

func (m *mockEventHandler) OnSendError(e SendErrorEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs = append(m.errs, e)
}

func (m *mockEventHandler) OnRendererExit(e RendererExitEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exits = append(m.exits, e)
}

func (m *mockEventHandler) counts() (states, successes, errs, exits int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.states), len(m.successes), len(m.errs), len(m.exits)
}

func eventually(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func sequence(from, n int) points.Batch {
	b := make(points.Batch, n)
	for i := range b {
		v := float64(from + i)
		b[i] = points.Point{X: v, Y: v * v}
	}
	return b
}

func sameBatch(a, b points.Batch) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSyncLoop_DeliversEveryPointOnceInOrder(t *testing.T) {
	buf := points.NewBuffer()
	sender := &recordingSender{}
	loop := newSyncLoop(buf, sender, 2*time.Millisecond, time.Second, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		loop.run(ctx)
		close(done)
	}()

	want := sequence(0, 2000)
	for i, p := range want {
		buf.Append(p)
		if i%100 == 0 {
			time.Sleep(time.Millisecond)
		}
	}

	eventually(t, 2*time.Second, func() bool { return len(sender.Flattened()) == len(want) })
	cancel()
	<-done

	if got := sender.Flattened(); !sameBatch(got, want) {
		t.Fatalf("delivered %d points, want %d in order", len(got), len(want))
	}
	for i, b := range sender.Batches() {
		if b.Empty() {
			t.Errorf("batch %d is empty; empty drains must not be sent", i)
		}
	}
	if sent, dropped := loop.stats(); sent != uint64(len(want)) || dropped != 0 {
		t.Errorf("stats = (%d, %d)", sent, dropped)
	}
}

func TestSyncLoop_FailedSendIsDroppedAndTickingContinues(t *testing.T) {
	buf := points.NewBuffer()
	sender := &recordingSender{fail: func(call int) error {
		if call == 1 {
			return transport.ErrUnavailable
		}
		return nil
	}}
	handler := &mockEventHandler{}
	loop := newSyncLoop(buf, sender, time.Hour, time.Second, nil, &eventEmitter{handler: handler})

	buf.AppendBatch(points.Batch{{X: 1, Y: 1}, {X: 2, Y: 2}})
	loop.tick(context.Background())
	buf.AppendBatch(points.Batch{{X: 3, Y: 3}})
	loop.tick(context.Background())

	if got := sender.Flattened(); !sameBatch(got, points.Batch{{X: 3, Y: 3}}) {
		t.Errorf("delivered = %v, want only the batch after the failure", got)
	}
	if buf.Len() != 0 {
		t.Errorf("failed batch was retained: len = %d", buf.Len())
	}

	_, successes, errs, _ := handler.counts()
	if successes != 1 || errs != 1 {
		t.Errorf("events: successes = %d, errors = %d, want 1 and 1", successes, errs)
	}
	if !errors.Is(handler.errs[0].Error, transport.ErrUnavailable) || handler.errs[0].Points != 2 {
		t.Errorf("error event = %+v", handler.errs[0])
	}
	if sent, dropped := loop.stats(); sent != 1 || dropped != 2 {
		t.Errorf("stats = (%d, %d), want (1, 2)", sent, dropped)
	}
}

func TestSyncLoop_FlushesOnCancel(t *testing.T) {
	buf := points.NewBuffer()
	sender := &recordingSender{}
	loop := newSyncLoop(buf, sender, time.Hour, time.Second, nil, nil)

	buf.AppendBatch(points.Batch{{X: 7, Y: 49}, {X: 8, Y: 64}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	loop.run(ctx)

	if got := sender.Flattened(); !sameBatch(got, points.Batch{{X: 7, Y: 49}, {X: 8, Y: 64}}) {
		t.Errorf("flushed = %v", got)
	}
}

// slowSender takes delay per send and gives up when its ctx ends first.
type slowSender struct {
	recordingSender
	delay   time.Duration
	started chan struct{}
	once    sync.Once
}

func (s *slowSender) Send(ctx context.Context, batch points.Batch) error {
	s.once.Do(func() { close(s.started) })
	select {
	case <-time.After(s.delay):
		return s.recordingSender.Send(ctx, batch)
	case <-ctx.Done():
		return ctx.Err()
	}
}

func TestSyncLoop_CancelDuringSendKeepsBatch(t *testing.T) {
	buf := points.NewBuffer()
	sender := &slowSender{delay: 50 * time.Millisecond, started: make(chan struct{})}
	handler := &mockEventHandler{}
	loop := newSyncLoop(buf, sender, 5*time.Millisecond, time.Second, nil, &eventEmitter{handler: handler})

	buf.Append(points.Point{X: 1, Y: 1})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		loop.run(ctx)
		close(done)
	}()

	select {
	case <-sender.started:
	case <-time.After(2 * time.Second):
		t.Fatal("loop never sent")
	}
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not return after cancel")
	}

	if got := sender.Flattened(); !sameBatch(got, points.Batch{{X: 1, Y: 1}}) {
		t.Errorf("delivered = %v, want the in-flight point", got)
	}
	sent, dropped := loop.stats()
	if sent != 1 || dropped != 0 {
		t.Errorf("stats = sent %d dropped %d, want sent 1 dropped 0", sent, dropped)
	}
	if _, _, errs, _ := handler.counts(); errs != 0 {
		t.Errorf("send errors = %d, want 0", errs)
	}
}

func TestSyncLoop_SetSyncInterval(t *testing.T) {
	buf := points.NewBuffer()
	sender := &recordingSender{}
	loop := newSyncLoop(buf, sender, time.Hour, time.Second, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.run(ctx)

	loop.SetSyncInterval(0) // ignored
	loop.SetSyncInterval(time.Minute)
	loop.SetSyncInterval(5 * time.Millisecond) // latest wins

	buf.Append(points.Point{X: 1, Y: 1})
	if !eventually(t, 2*time.Second, func() bool { return len(sender.Flattened()) == 1 }) {
		t.Fatal("retuned loop never ticked")
	}
}

type alwaysAlive struct{}

func (alwaysAlive) Alive() bool { return true }

// severableClient fails every call while severed.
type severableClient struct {
	next    transport.HTTPClient
	severed atomic.Bool
}

func (s *severableClient) Do(req *http.Request) (*http.Response, error) {
	if s.severed.Load() {
		return nil, errors.New("connection refused")
	}
	return s.next.Do(req)
}

func TestLossWindow_OnlySeveredTickIsLost(t *testing.T) {
	received := points.NewBuffer()
	srv := transport.NewServer(received, nil, transport.WithExpectedSession("s"))
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	hc := &severableClient{next: ts.Client()}
	client := transport.NewClient(ts.URL, hc, nil, transport.WithSession("s"))

	pending := points.NewBuffer()
	loop := newSyncLoop(pending, client, time.Hour, time.Second, nil, nil)
	surface := render.NewHeadless(render.HeadlessConfig{})
	renderLoop := render.NewLoop(received, alwaysAlive{}, surface, nil)

	step := func(batch points.Batch, severed bool) {
		hc.severed.Store(severed)
		pending.AppendBatch(batch)
		loop.tick(context.Background())
		if err := renderLoop.Tick(); err != nil {
			t.Fatalf("render tick: %v", err)
		}
	}

	step(points.Batch{{X: 1, Y: 1}, {X: 2, Y: 4}}, false)
	step(points.Batch{{X: 3, Y: 9}, {X: 4, Y: 16}}, true)
	step(points.Batch{{X: 5, Y: 25}}, false)
	step(points.Batch{{X: 6, Y: 36}, {X: 7, Y: 49}}, false)

	want := points.Batch{{X: 1, Y: 1}, {X: 2, Y: 4}, {X: 5, Y: 25}, {X: 6, Y: 36}, {X: 7, Y: 49}}
	if got := renderLoop.History(); !sameBatch(got, want) {
		t.Errorf("history = %v, want %v", got, want)
	}
}
