package points

import "fmt"

// Point is one (x, y) sample. Points have no identity beyond their position
// in the stream; arrival order is what matters.
type Point struct {
	X float64
	Y float64
}

// String renders the point as "(x, y)".
func (p Point) String() string {
	return fmt.Sprintf("(%s, %s)", formatCoord(p.X), formatCoord(p.Y))
}

// Batch is the ordered run of points produced by a single DrainAll.
// A point belongs to exactly one batch.
type Batch []Point

// Empty returns true if the batch holds no points.
func (b Batch) Empty() bool {
	return len(b) == 0
}

// Last returns the final point of the batch and false when empty.
func (b Batch) Last() (Point, bool) {
	if len(b) == 0 {
		return Point{}, false
	}
	return b[len(b)-1], true
}
