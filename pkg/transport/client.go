package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/bft-labs/liveplot/pkg/log"
	"github.com/bft-labs/liveplot/pkg/points"
)

const (
	// LoopbackHost is the only interface the renderer listens on.
	LoopbackHost = "127.0.0.1"

	// BatchPath is the single remote procedure: deliver one batch.
	BatchPath = "/v1/batch"

	// SessionHeader carries the producer's session id.
	SessionHeader = "X-Liveplot-Session"

	contentTypeJSON = "application/json"
)

// Transport errors. Match with errors.Is.
var (
	// ErrUnavailable is returned when the renderer cannot be reached:
	// not listening yet, already exited, or the call timed out.
	ErrUnavailable = errors.New("transport: renderer unavailable")

	// ErrRejected is returned when the renderer answered but did not
	// accept the batch.
	ErrRejected = errors.New("transport: batch rejected")
)

// HTTPClient abstracts HTTP request execution for testing.
// The standard *http.Client satisfies this interface.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// NewHTTPClient returns an *http.Client whose every call is bounded by timeout.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// Endpoint returns the base URL of a renderer listening on port.
func Endpoint(port int) string {
	return "http://" + ListenAddr(port)
}

// ListenAddr returns the loopback listen address for port.
func ListenAddr(port int) string {
	return net.JoinHostPort(LoopbackHost, strconv.Itoa(port))
}

// Client is the producer half of the transport.
type Client struct {
	endpoint string
	session  string
	client   HTTPClient
	logger   log.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithSession stamps every call with the producer's session id.
func WithSession(id string) ClientOption {
	return func(c *Client) {
		c.session = id
	}
}

// NewClient creates a client calling the renderer at endpoint
// (see Endpoint).
func NewClient(endpoint string, client HTTPClient, logger log.Logger, opts ...ClientOption) *Client {
	c := &Client{
		endpoint: endpoint,
		client:   client,
		logger:   log.OrNoop(logger),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Send delivers batch in one blocking call. An empty batch is not sent.
// The call is bounded by ctx and by the HTTP client's own timeout.
func (c *Client) Send(ctx context.Context, batch points.Batch) error {
	if batch.Empty() {
		return nil
	}

	body, err := points.EncodePayload(batch)
	if err != nil {
		return fmt.Errorf("encode batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+BatchPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentTypeJSON)
	if c.session != "" {
		req.Header.Set(SessionHeader, c.session)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%w: renderer returned %d: %s", ErrRejected, resp.StatusCode, bytes.TrimSpace(respBody))
	}

	var ack points.Ack
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		return fmt.Errorf("%w: read ack: %v", ErrRejected, err)
	}
	if ack.Accepted != len(batch) {
		return fmt.Errorf("%w: renderer accepted %d of %d points", ErrRejected, ack.Accepted, len(batch))
	}

	c.logger.Debug("batch delivered",
		log.Int("points", len(batch)),
		log.Int("bytes", len(body)),
	)
	return nil
}
