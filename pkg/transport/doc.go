// Package transport carries point batches from the producer to the renderer
// as one synchronous HTTP call per batch on the loopback interface.
//
// The renderer exposes a single procedure:
//
//	POST http://127.0.0.1:<port>/v1/batch
//	{"points":[[1,1],[2,4],[3,9]]}
//
//	200 {"accepted":3}
//
// Payloads are text (see points.EncodePayload) so that no coordinate is
// narrowed by a numeric wire type.
//
// Producer side:
//
//	client := transport.NewClient(transport.Endpoint(8000),
//	    transport.NewHTTPClient(2*time.Second), logger,
//	    transport.WithSession(sessionID))
//	if err := client.Send(ctx, batch); errors.Is(err, transport.ErrUnavailable) {
//	    // renderer not reachable; the batch is gone
//	}
//
// Renderer side:
//
//	srv := transport.NewServer(buf, logger, transport.WithExpectedSession(sessionID))
//	if err := srv.Start(transport.ListenAddr(8000)); err != nil {
//	    return err
//	}
//	defer srv.Shutdown(context.Background())
package transport
