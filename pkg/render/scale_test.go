package render

import (
	"math"
	"testing"

	"github.com/bft-labs/liveplot/pkg/points"
)

func TestBounds_Extend(t *testing.T) {
	var b Bounds
	if !b.Empty() {
		t.Fatal("zero Bounds should be empty")
	}

	b.Extend(points.Point{X: math.NaN(), Y: 1})
	b.Extend(points.Point{X: 1, Y: math.Inf(1)})
	if !b.Empty() {
		t.Fatal("non-finite points must not set bounds")
	}

	for _, p := range []points.Point{{X: 2, Y: 3}, {X: -1, Y: 5}, {X: 4, Y: -2}} {
		b.Extend(p)
	}
	if b.MinX != -1 || b.MaxX != 4 || b.MinY != -2 || b.MaxY != 5 {
		t.Errorf("bounds = %+v", b)
	}
}

func TestBounds_Padded(t *testing.T) {
	var single Bounds
	single.Extend(points.Point{X: 3, Y: 3})
	p := single.Padded(0.1)
	if p.MinX != 2.5 || p.MaxX != 3.5 || p.MinY != 2.5 || p.MaxY != 3.5 {
		t.Errorf("single point padded = %+v, want a unit box around it", p)
	}

	var span Bounds
	span.Extend(points.Point{X: 0, Y: 0})
	span.Extend(points.Point{X: 10, Y: 20})
	p = span.Padded(0.1)
	if p.MinX != -1 || p.MaxX != 11 || p.MinY != -2 || p.MaxY != 22 {
		t.Errorf("padded = %+v", p)
	}

	if p := (Bounds{}).Padded(0.1); p.MinX != 0 || p.MaxX != 1 {
		t.Errorf("empty padded = %+v, want unit box", p)
	}
}

func TestProject(t *testing.T) {
	var b Bounds
	b.Extend(points.Point{X: 0, Y: 0})
	b.Extend(points.Point{X: 10, Y: 10})
	v := Viewport{X: 10, Y: 20, W: 100, H: 50}

	tests := []struct {
		p      points.Point
		wx, wy float64
	}{
		{points.Point{X: 0, Y: 0}, 10, 70},
		{points.Point{X: 10, Y: 10}, 110, 20},
		{points.Point{X: 5, Y: 5}, 60, 45},
	}
	for _, tt := range tests {
		x, y, ok := Project(tt.p, b, v)
		if !ok || x != tt.wx || y != tt.wy {
			t.Errorf("Project(%v) = (%v, %v, %v), want (%v, %v)", tt.p, x, y, ok, tt.wx, tt.wy)
		}
	}

	if _, _, ok := Project(points.Point{X: math.NaN()}, b, v); ok {
		t.Error("NaN projected")
	}
}

func TestProject_ExtremeFiniteRange(t *testing.T) {
	var b Bounds
	b.Extend(points.Point{X: -1e308, Y: -1e308})
	b.Extend(points.Point{X: 1e308, Y: 1e308})
	padded := b.Padded(0.05)
	for _, lim := range []float64{padded.MinX, padded.MaxX, padded.MinY, padded.MaxY} {
		if !finite(lim) {
			t.Fatalf("padded bounds %+v are not finite", padded)
		}
	}

	v := Viewport{X: 0, Y: 0, W: 200, H: 100}
	lowX, lowY, ok1 := Project(points.Point{X: -1e308, Y: -1e308}, padded, v)
	midX, midY, ok2 := Project(points.Point{X: 0, Y: 0}, padded, v)
	highX, highY, ok3 := Project(points.Point{X: 1e308, Y: 1e308}, padded, v)
	if !ok1 || !ok2 || !ok3 {
		t.Fatal("finite points not projected")
	}

	for _, c := range []float64{lowX, midX, highX} {
		if !finite(c) || c < v.X || c > v.X+v.W {
			t.Errorf("x %v outside viewport", c)
		}
	}
	for _, c := range []float64{lowY, midY, highY} {
		if !finite(c) || c < v.Y || c > v.Y+v.H {
			t.Errorf("y %v outside viewport", c)
		}
	}
	if !(lowX < midX && midX < highX) {
		t.Errorf("x order lost: %v %v %v", lowX, midX, highX)
	}
	if !(lowY > midY && midY > highY) {
		t.Errorf("y order lost: %v %v %v", lowY, midY, highY)
	}
	if math.Abs(midX-100) > 1e-9 || math.Abs(midY-50) > 1e-9 {
		t.Errorf("origin projected to (%v, %v), want the viewport centre", midX, midY)
	}
}
