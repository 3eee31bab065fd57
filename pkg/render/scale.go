package render

import (
	"math"
	"strconv"

	"github.com/bft-labs/liveplot/pkg/points"
)

// Bounds is the data-space box covering every finite point seen.
type Bounds struct {
	MinX, MaxX float64
	MinY, MaxY float64
	set        bool
}

// Empty reports whether no finite point has been added.
func (b Bounds) Empty() bool {
	return !b.set
}

// Extend grows the box to include p. Non-finite points are ignored.
func (b *Bounds) Extend(p points.Point) {
	if !finite(p.X) || !finite(p.Y) {
		return
	}
	if !b.set {
		b.MinX, b.MaxX, b.MinY, b.MaxY = p.X, p.X, p.Y, p.Y
		b.set = true
		return
	}
	b.MinX = math.Min(b.MinX, p.X)
	b.MaxX = math.Max(b.MaxX, p.X)
	b.MinY = math.Min(b.MinY, p.Y)
	b.MaxY = math.Max(b.MaxY, p.Y)
}

// Padded returns the box with a margin of frac of its span on every side.
// A zero span is widened to one unit so a single point lands mid-axis.
func (b Bounds) Padded(frac float64) Bounds {
	if !b.set {
		return Bounds{MinX: 0, MaxX: 1, MinY: 0, MaxY: 1, set: true}
	}
	minX, maxX := pad(b.MinX, b.MaxX, frac)
	minY, maxY := pad(b.MinY, b.MaxY, frac)
	return Bounds{MinX: minX, MaxX: maxX, MinY: minY, MaxY: maxY, set: true}
}

// pad works on half spans so hi-lo never overflows, and clamps the result
// to the finite range.
func pad(lo, hi, frac float64) (float64, float64) {
	half := hi/2 - lo/2
	if half == 0 {
		return lo - 0.5, hi + 0.5
	}
	m := half * (2 * frac)
	return math.Max(lo-m, -math.MaxFloat64), math.Min(hi+m, math.MaxFloat64)
}

// Viewport is a screen-space rectangle; Y grows downwards.
type Viewport struct {
	X, Y float64
	W, H float64
}

// Project maps p from data space b into v. ok is false for non-finite points.
func Project(p points.Point, b Bounds, v Viewport) (x, y float64, ok bool) {
	if !finite(p.X) || !finite(p.Y) {
		return 0, 0, false
	}
	x = v.X + fraction(p.X, b.MinX, b.MaxX)*v.W
	y = v.Y + v.H - fraction(p.Y, b.MinY, b.MaxY)*v.H
	return x, y, true
}

// fraction is (v-lo)/(hi-lo) computed on halves, which stays finite for any
// finite lo and hi.
func fraction(v, lo, hi float64) float64 {
	return (v/2 - lo/2) / (hi/2 - lo/2)
}

// axisLabel formats an axis limit compactly.
func axisLabel(v float64) string {
	return strconv.FormatFloat(v, 'g', 4, 64)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
