package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bft-labs/liveplot/pkg/log"
	"github.com/bft-labs/liveplot/pkg/points"
)

// DefaultMaxBodyBytes caps a single batch payload.
const DefaultMaxBodyBytes = 64 << 20

// Server is the renderer half of the transport. It appends every delivered
// batch, in order, to the receive-side buffer.
type Server struct {
	buffer   *points.Buffer
	logger   log.Logger
	session  string
	maxBytes int64

	mu       sync.Mutex
	srv      *http.Server
	listener net.Listener

	batches  atomic.Uint64
	received atomic.Uint64
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithExpectedSession makes the server answer 409 to calls carrying a
// different session id. An empty id accepts every caller.
func WithExpectedSession(id string) ServerOption {
	return func(s *Server) {
		s.session = id
	}
}

// WithMaxBodyBytes caps the size of one payload.
func WithMaxBodyBytes(n int64) ServerOption {
	return func(s *Server) {
		if n > 0 {
			s.maxBytes = n
		}
	}
}

// NewServer creates a server feeding buf.
func NewServer(buf *points.Buffer, logger log.Logger, opts ...ServerOption) *Server {
	s := &Server{
		buffer:   buf,
		logger:   log.OrNoop(logger),
		maxBytes: DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP handler exposing the batch procedure.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(BatchPath, s.handleBatch)
	return mux
}

// Start binds addr and serves on a background goroutine. When Start
// returns nil the listener is bound, so calls made from then on are
// accepted; this is the point at which readiness may be announced.
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.mu.Lock()
	s.srv = srv
	s.listener = ln
	s.mu.Unlock()

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("transport server stopped", log.Err(err))
		}
	}()

	s.logger.Info("transport listening", log.String("addr", ln.Addr().String()))
	return nil
}

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Shutdown stops accepting calls and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.srv
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// Received returns the number of batches and points accepted so far.
func (s *Server) Received() (batches, pts uint64) {
	return s.batches.Load(), s.received.Load()
}

// handleBatch is the onBatchReceived procedure.
func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if s.session != "" && r.Header.Get(SessionHeader) != s.session {
		s.logger.Warn("batch from foreign session refused",
			log.String("session", r.Header.Get(SessionHeader)),
		)
		http.Error(w, "session mismatch", http.StatusConflict)
		return
	}

	batch, err := points.DecodePayload(http.MaxBytesReader(w, r.Body, s.maxBytes))
	if err != nil {
		s.logger.Warn("bad batch payload", log.Err(err))
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.buffer.AppendBatch(batch)
	s.batches.Add(1)
	s.received.Add(uint64(len(batch)))

	w.Header().Set("Content-Type", contentTypeJSON)
	if err := json.NewEncoder(w).Encode(points.Ack{Accepted: len(batch)}); err != nil {
		s.logger.Debug("write ack", log.Err(err))
	}
}
