package liveplot

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/bft-labs/liveplot/pkg/log"
	"github.com/bft-labs/liveplot/pkg/points"
)

// batchSender delivers one batch. *transport.Client satisfies it.
type batchSender interface {
	Send(ctx context.Context, batch points.Batch) error
}

// syncLoop pushes the pending buffer to the renderer on a fixed interval.
// Every tick is independent: a failed send drops its batch and the next
// tick proceeds as usual.
type syncLoop struct {
	buffer      *points.Buffer
	sender      batchSender
	logger      log.Logger
	emitter     *eventEmitter
	interval    time.Duration
	sendTimeout time.Duration
	intervalCh  chan time.Duration

	sentPoints    atomic.Uint64
	droppedPoints atomic.Uint64
}

func newSyncLoop(buf *points.Buffer, sender batchSender, interval, sendTimeout time.Duration, logger log.Logger, emitter *eventEmitter) *syncLoop {
	return &syncLoop{
		buffer:      buf,
		sender:      sender,
		logger:      log.OrNoop(logger).With(log.Component("sync")),
		emitter:     emitter,
		interval:    interval,
		sendTimeout: sendTimeout,
		intervalCh:  make(chan time.Duration, 1),
	}
}

// SetSyncInterval retunes the loop; the latest value wins.
func (s *syncLoop) SetSyncInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	for {
		select {
		case s.intervalCh <- d:
			return
		default:
			select {
			case <-s.intervalCh:
			default:
			}
		}
	}
}

// run ticks until ctx ends, then flushes whatever is still pending.
func (s *syncLoop) run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.flush()
			return
		case d := <-s.intervalCh:
			ticker.Reset(d)
			s.logger.Info("sync interval changed",
				log.Duration("from", s.interval),
				log.Duration("to", d),
			)
			s.interval = d
		case <-ticker.C:
			if ctx.Err() != nil {
				s.flush()
				return
			}
			s.tick(ctx)
		}
	}
}

// tick drains the buffer and sends it as one batch. A drained batch is
// always sent out in full: cancelling ctx mid-send must not lose it, so the
// send is bounded by sendTimeout only.
func (s *syncLoop) tick(ctx context.Context) {
	batch := s.buffer.DrainAll()
	if batch.Empty() {
		return
	}

	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.sendTimeout)
	defer cancel()

	start := time.Now()
	if err := s.sender.Send(sendCtx, batch); err != nil {
		s.droppedPoints.Add(uint64(len(batch)))
		s.logger.Warn("batch dropped",
			log.Int("points", len(batch)),
			log.Err(err),
		)
		s.emitter.sendError(err, len(batch))
		return
	}
	s.sentPoints.Add(uint64(len(batch)))
	s.emitter.sendSuccess(len(batch), time.Since(start))
}

// flush sends the final pending batch on stop.
func (s *syncLoop) flush() {
	if s.buffer.Len() == 0 {
		return
	}
	s.logger.Debug("flushing pending points", log.Int("points", s.buffer.Len()))
	s.tick(context.Background())
}

// stats returns the number of points delivered and dropped.
func (s *syncLoop) stats() (sent, dropped uint64) {
	return s.sentPoints.Load(), s.droppedPoints.Load()
}
