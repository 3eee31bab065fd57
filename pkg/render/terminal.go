package render

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	runewidth "github.com/mattn/go-runewidth"

	"github.com/bft-labs/liveplot/pkg/points"
)

const (
	plotMark   = '•'
	labelRows  = 1
	axisMargin = 0.05
)

// TerminalConfig controls the terminal surface.
type TerminalConfig struct {
	Interval time.Duration
	Title    string
}

// Terminal draws the history as a character plot with tcell. Esc, Ctrl-C
// or q closes it.
type Terminal struct {
	cfg    TerminalConfig
	screen tcell.Screen

	mu      sync.Mutex
	history points.Batch
	bounds  Bounds
}

// NewTerminal creates a terminal surface. A nil screen means the process's
// own terminal, opened when Run starts.
func NewTerminal(screen tcell.Screen, cfg TerminalConfig) *Terminal {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second / 30
	}
	return &Terminal{cfg: cfg, screen: screen}
}

// Draw appends the frame's fresh points to the plotted line.
func (t *Terminal) Draw(frame Frame) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, p := range frame.Fresh() {
		t.history = append(t.history, p)
		t.bounds.Extend(p)
	}
	if t.screen != nil {
		t.render()
	}
	return nil
}

// Run takes over the terminal and ticks until tick fails, the user quits,
// or ctx ends.
func (t *Terminal) Run(ctx context.Context, tick func() error) error {
	if t.screen == nil {
		tcell.SetEncodingFallback(tcell.EncodingFallbackASCII)
		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("open terminal: %w", err)
		}
		t.mu.Lock()
		t.screen = screen
		t.mu.Unlock()
	}
	if err := t.screen.Init(); err != nil {
		return fmt.Errorf("init terminal: %w", err)
	}
	defer t.screen.Fini()
	t.screen.HideCursor()

	quit := make(chan struct{})
	resized := make(chan struct{}, 1)
	go t.pollLoop(quit, resized)

	ticker := time.NewTicker(t.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-quit:
			return nil
		case <-resized:
			t.mu.Lock()
			t.render()
			t.mu.Unlock()
		case <-ticker.C:
			if err := tick(); err != nil {
				return err
			}
		}
	}
}

// pollLoop forwards tcell's key and resize events. It ends when the screen
// is finalized and PollEvent returns nil.
func (t *Terminal) pollLoop(quit chan<- struct{}, resized chan<- struct{}) {
	var once sync.Once
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return
		}
		switch ev := ev.(type) {
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q' {
				once.Do(func() { close(quit) })
			}
		case *tcell.EventResize:
			t.screen.Sync()
			select {
			case resized <- struct{}{}:
			default:
			}
		}
	}
}

// render redraws the whole screen. Callers hold t.mu.
func (t *Terminal) render() {
	s := t.screen
	s.Clear()
	width, height := s.Size()
	plotH := height - labelRows
	if width < 2 || plotH < 2 {
		s.Show()
		return
	}

	style := tcell.StyleDefault.Foreground(tcell.ColorBlue)
	view := Viewport{W: float64(width - 1), H: float64(plotH - 1)}
	b := t.bounds.Padded(axisMargin)

	prevX, prevY, havePrev := 0, 0, false
	for _, p := range t.history {
		fx, fy, ok := Project(p, b, view)
		if !ok {
			havePrev = false
			continue
		}
		x, y := int(math.Round(fx)), int(math.Round(fy))
		if havePrev {
			drawCellLine(s, prevX, prevY, x, y, style)
		} else {
			s.SetContent(x, y, plotMark, nil, style)
		}
		prevX, prevY, havePrev = x, y, true
	}

	t.drawLabel(width, height-1)
	s.Show()
}

func (t *Terminal) drawLabel(width, row int) {
	style := tcell.StyleDefault.Background(tcell.ColorLightGray).Foreground(tcell.ColorBlack)
	for col := 0; col < width; col++ {
		t.screen.SetContent(col, row, ' ', nil, style)
	}

	label := t.cfg.Title
	if !t.bounds.Empty() {
		label = fmt.Sprintf("%s  x[%s, %s]  y[%s, %s]  n=%d", label,
			axisLabel(t.bounds.MinX), axisLabel(t.bounds.MaxX),
			axisLabel(t.bounds.MinY), axisLabel(t.bounds.MaxY),
			len(t.history))
	}

	col := 0
	for _, r := range label {
		w := runewidth.RuneWidth(r)
		if col+w > width {
			break
		}
		t.screen.SetContent(col, row, r, nil, style)
		col += w
	}
}

// drawCellLine connects two cells with a digital differential analyzer.
func drawCellLine(s tcell.Screen, x0, y0, x1, y1 int, style tcell.Style) {
	dx, dy := x1-x0, y1-y0
	steps := max(abs(dx), abs(dy))
	if steps == 0 {
		s.SetContent(x0, y0, plotMark, nil, style)
		return
	}
	for i := 0; i <= steps; i++ {
		x := x0 + int(math.Round(float64(dx*i)/float64(steps)))
		y := y0 + int(math.Round(float64(dy*i)/float64(steps)))
		s.SetContent(x, y, plotMark, nil, style)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
