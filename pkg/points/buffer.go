package points

import "sync"

// Buffer is a mutex-guarded ordered queue of points.
//
// The producer holds one (filled by Plot, drained by the sync loop) and the
// renderer holds another (filled by the transport server, drained by the
// render loop). A Buffer is never shared across the process boundary.
//
// There is no upper bound on the number of buffered points.
type Buffer struct {
	mu     sync.Mutex
	points Batch
}

// NewBuffer creates an empty buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Append adds p to the tail. It never fails.
func (b *Buffer) Append(p Point) {
	b.mu.Lock()
	b.points = append(b.points, p)
	b.mu.Unlock()
}

// AppendBatch adds every point of batch to the tail, in order, as one step:
// a concurrent DrainAll sees either none or all of them.
func (b *Buffer) AppendBatch(batch Batch) {
	if len(batch) == 0 {
		return
	}
	b.mu.Lock()
	b.points = append(b.points, batch...)
	b.mu.Unlock()
}

// DrainAll removes and returns every buffered point, leaving the buffer
// empty. Returns nil when nothing is buffered.
func (b *Buffer) DrainAll() Batch {
	b.mu.Lock()
	drained := b.points
	b.points = nil
	b.mu.Unlock()
	return drained
}

// Len returns the number of buffered points.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.points)
}
