// Package points holds the point model shared by both liveplot processes:
// [Point], [Batch], the concurrency-safe [Buffer], and the text wire codec
// ([EncodePayload], [DecodePayload]).
//
// A Buffer supports exactly two operations that matter: Append (any number
// of goroutines) and DrainAll (atomically takes everything). A point is
// therefore drained at most once and is never lost while its process lives.
package points
