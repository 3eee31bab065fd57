//go:build cgo

package render

import (
	"context"
	"image/color"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/bft-labs/liveplot/pkg/points"
)

var (
	lineColor  = color.RGBA{R: 0x00, G: 0x00, B: 0xff, A: 0xff}
	axisColor  = color.RGBA{R: 0x40, G: 0x40, B: 0x40, A: 0xff}
	labelColor = color.Black
)

const (
	windowMargin = 48
	strokeWidth  = 1.5
)

// Window draws the history as a polyline in a desktop window. Frames are
// driven by ebiten's Update, so TPS sets the render cadence.
type Window struct {
	cfg  Config
	face font.Face

	ctx  context.Context
	tick func() error

	mu      sync.Mutex
	history points.Batch
	bounds  Bounds
}

func newWindowSurface(cfg Config) (Surface, error) {
	return NewWindow(cfg), nil
}

// NewWindow creates a window surface sized and titled from cfg.
func NewWindow(cfg Config) *Window {
	return &Window{cfg: cfg, face: basicfont.Face7x13}
}

// Draw appends the frame's fresh points to the polyline.
func (w *Window) Draw(frame Frame) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, p := range frame.Fresh() {
		w.history = append(w.history, p)
		w.bounds.Extend(p)
	}
	return nil
}

// Run opens the window and blocks until it is closed, tick fails, or ctx
// ends.
func (w *Window) Run(ctx context.Context, tick func() error) error {
	w.ctx = ctx
	w.tick = tick

	ebiten.SetWindowTitle(w.cfg.Title)
	ebiten.SetWindowSize(w.cfg.Width, w.cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(w.cfg.TPS)
	return ebiten.RunGame(&windowGame{w: w})
}

type windowGame struct {
	w *Window
}

func (g *windowGame) Update() error {
	if g.w.ctx.Err() != nil {
		return ebiten.Termination
	}
	return g.w.tick()
}

func (g *windowGame) Draw(screen *ebiten.Image) {
	w := g.w
	w.mu.Lock()
	defer w.mu.Unlock()

	screen.Fill(color.White)
	size := screen.Bounds().Size()
	view := Viewport{
		X: windowMargin,
		Y: windowMargin / 2,
		W: float64(size.X) - 1.5*windowMargin,
		H: float64(size.Y) - 1.5*windowMargin,
	}
	if view.W <= 0 || view.H <= 0 {
		return
	}

	drawAxes(screen, view)

	b := w.bounds.Padded(axisMargin)
	var prevX, prevY float32
	havePrev := false
	for _, p := range w.history {
		fx, fy, ok := Project(p, b, view)
		if !ok {
			havePrev = false
			continue
		}
		x, y := float32(fx), float32(fy)
		if havePrev {
			vector.StrokeLine(screen, prevX, prevY, x, y, strokeWidth, lineColor, true)
		} else {
			vector.DrawFilledCircle(screen, x, y, strokeWidth, lineColor, true)
		}
		prevX, prevY, havePrev = x, y, true
	}

	if !w.bounds.Empty() {
		w.drawLimits(screen, view, b)
	}
}

func (g *windowGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

func drawAxes(screen *ebiten.Image, v Viewport) {
	x0, y0 := float32(v.X), float32(v.Y)
	x1, y1 := float32(v.X+v.W), float32(v.Y+v.H)
	vector.StrokeLine(screen, x0, y1, x1, y1, 1, axisColor, false)
	vector.StrokeLine(screen, x0, y0, x0, y1, 1, axisColor, false)
}

// drawLimits labels both axes with the padded data range.
func (w *Window) drawLimits(screen *ebiten.Image, v Viewport, b Bounds) {
	bottom := int(v.Y+v.H) + 16
	left := int(v.X)
	right := int(v.X + v.W)

	minX, maxX := axisLabel(b.MinX), axisLabel(b.MaxX)
	text.Draw(screen, minX, w.face, left, bottom, labelColor)
	text.Draw(screen, maxX, w.face, right-font.MeasureString(w.face, maxX).Round(), bottom, labelColor)

	minY, maxY := axisLabel(b.MinY), axisLabel(b.MaxY)
	text.Draw(screen, maxY, w.face, left-font.MeasureString(w.face, maxY).Round()-4, int(v.Y)+10, labelColor)
	text.Draw(screen, minY, w.face, left-font.MeasureString(w.face, minY).Round()-4, int(v.Y+v.H), labelColor)
}
