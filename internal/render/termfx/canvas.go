// Package termfx renders particle layers into a terminal with tcell.
// One terminal cell is one surface unit.
package termfx

import (
	"image/color"
	"math"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/cineverse/ambientfx/internal/particles"
)

// ramp maps cell brightness to a glyph, dimmest first.
var ramp = []rune(" .·:*o●")

type rgb struct{ r, g, b float32 }

// Canvas accumulates particle light per cell and presents it to a screen.
// Drawing happens on the scheduler goroutine while resizes arrive from the
// event goroutine, so every method takes mu.
type Canvas struct {
	mu     sync.Mutex
	screen tcell.Screen
	w, h   int
	cells  []rgb
}

var (
	_ particles.Surface = (*Canvas)(nil)
	_ particles.Canvas  = (*Canvas)(nil)
)

// NewCanvas sizes a canvas to the screen.
func NewCanvas(screen tcell.Screen) *Canvas {
	c := &Canvas{screen: screen}
	if screen != nil {
		w, h := screen.Size()
		c.Resize(w, h)
	}
	return c
}

// Surface implements particles.Canvas.
func (c *Canvas) Surface() (particles.Surface, error) {
	if c == nil || c.screen == nil {
		return nil, particles.ErrSurfaceUnavailable
	}
	return c, nil
}

// Size returns the grid dimensions in cells.
func (c *Canvas) Size() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.w, c.h
}

// Resize reallocates the cell grid, keeping the overlapping region.
func (c *Canvas) Resize(w, h int) {
	w, h = max(w, 0), max(h, 0)
	c.mu.Lock()
	defer c.mu.Unlock()
	next := make([]rgb, w*h)
	for y := 0; y < min(h, c.h); y++ {
		copy(next[y*w:y*w+min(w, c.w)], c.cells[y*c.w:])
	}
	c.w, c.h, c.cells = w, h, next
}

// FillRect blends c over the covered cells.
func (c *Canvas) FillRect(x, y, w, h float64, col color.NRGBA) {
	c.mu.Lock()
	defer c.mu.Unlock()
	x0, y0 := max(int(math.Floor(x)), 0), max(int(math.Floor(y)), 0)
	x1, y1 := min(int(math.Ceil(x+w)), c.w), min(int(math.Ceil(y+h)), c.h)
	a := float32(col.A) / 255
	for cy := y0; cy < y1; cy++ {
		for cx := x0; cx < x1; cx++ {
			p := &c.cells[cy*c.w+cx]
			p.r = p.r*(1-a) + float32(col.R)*a
			p.g = p.g*(1-a) + float32(col.G)*a
			p.b = p.b*(1-a) + float32(col.B)*a
		}
	}
}

// FillCircle adds light to cells whose centres fall inside r, and a linear
// falloff out to r+glow. The cell holding the centre always receives some
// light so sub-cell particles stay visible.
func (c *Canvas) FillCircle(cx, cy, r, glow float64, col color.NRGBA) {
	c.mu.Lock()
	defer c.mu.Unlock()
	reach := r + math.Max(glow, 0)
	x0, y0 := max(int(math.Floor(cx-reach)), 0), max(int(math.Floor(cy-reach)), 0)
	x1, y1 := min(int(math.Ceil(cx+reach))+1, c.w), min(int(math.Ceil(cy+reach))+1, c.h)
	a := float64(col.A) / 255
	home := [2]int{int(math.Floor(cx)), int(math.Floor(cy))}
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			d := math.Hypot(float64(x)+0.5-cx, float64(y)+0.5-cy)
			var wgt float64
			switch {
			case d <= r:
				wgt = 1
			case glow > 0 && d <= reach:
				wgt = 0.25 * (1 - (d-r)/glow)
			}
			if x == home[0] && y == home[1] {
				wgt = math.Max(wgt, math.Min(1, 2*r))
			}
			if wgt <= 0 {
				continue
			}
			k := float32(wgt * a)
			p := &c.cells[y*c.w+x]
			p.r = min(p.r+float32(col.R)*k, 255)
			p.g = min(p.g+float32(col.G)*k, 255)
			p.b = min(p.b+float32(col.B)*k, 255)
		}
	}
}

// Present writes the grid to the screen and shows it.
func (c *Canvas) Present() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for y := 0; y < c.h; y++ {
		for x := 0; x < c.w; x++ {
			p := c.cells[y*c.w+x]
			r, g, b := int32(p.r), int32(p.g), int32(p.b)
			style := tcell.StyleDefault.
				Foreground(tcell.NewRGBColor(r, g, b)).
				Background(tcell.NewRGBColor(r/4, g/4, b/4))
			c.screen.SetContent(x, y, glyph(p), nil, style)
		}
	}
	c.screen.Show()
}

func glyph(p rgb) rune {
	lum := (0.2126*p.r + 0.7152*p.g + 0.0722*p.b) / 255
	i := int(lum * float32(len(ramp)))
	return ramp[max(0, min(i, len(ramp)-1))]
}

// Cell returns the accumulated colour of one cell, for inspection.
func (c *Canvas) Cell(x, y int) color.RGBA {
	c.mu.Lock()
	defer c.mu.Unlock()
	if x < 0 || y < 0 || x >= c.w || y >= c.h {
		return color.RGBA{}
	}
	p := c.cells[y*c.w+x]
	return color.RGBA{R: uint8(p.r), G: uint8(p.g), B: uint8(p.b), A: 255}
}
