// Package ebitenfx hosts particle layers in an ebiten window.
package ebitenfx

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/cineverse/ambientfx/internal/particles"
)

// glowBands is how many halo rings approximate the blur around a circle.
const glowBands = 3

// Canvas is an offscreen image the fields draw into. It is never cleared, so
// the per-frame trail overlay accumulates into motion trails.
type Canvas struct {
	img *ebiten.Image
}

var (
	_ particles.Surface = (*Canvas)(nil)
	_ particles.Canvas  = (*Canvas)(nil)
)

// NewCanvas allocates a w×h offscreen image. A zero dimension leaves the
// canvas without an image until Resize.
func NewCanvas(w, h int) *Canvas {
	c := &Canvas{}
	c.Resize(w, h)
	return c
}

// Surface implements particles.Canvas.
func (c *Canvas) Surface() (particles.Surface, error) {
	if c == nil || c.img == nil {
		return nil, particles.ErrSurfaceUnavailable
	}
	return c, nil
}

// Image returns the offscreen image, or nil.
func (c *Canvas) Image() *ebiten.Image {
	return c.img
}

// Size returns the image dimensions.
func (c *Canvas) Size() (int, int) {
	if c.img == nil {
		return 0, 0
	}
	b := c.img.Bounds()
	return b.Dx(), b.Dy()
}

// Resize reallocates the offscreen image, carrying the old pixels over.
func (c *Canvas) Resize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	if cw, ch := c.Size(); cw == w && ch == h {
		return
	}
	next := ebiten.NewImage(w, h)
	if c.img != nil {
		next.DrawImage(c.img, nil)
		c.img.Deallocate()
	}
	c.img = next
}

// FillRect paints a rectangle with source-over blending.
func (c *Canvas) FillRect(x, y, w, h float64, col color.NRGBA) {
	if c.img == nil {
		return
	}
	vector.FillRect(c.img, float32(x), float32(y), float32(w), float32(h), col, false)
}

// FillCircle draws a disc and its halo with additive blending.
func (c *Canvas) FillCircle(cx, cy, r, glow float64, col color.NRGBA) {
	if c.img == nil {
		return
	}
	if glow > 0 {
		for band := glowBands; band >= 1; band-- {
			gr := r + glow*float64(band)/glowBands
			c.disc(cx, cy, gr, col, float32(0.25/float64(band)))
		}
	}
	c.disc(cx, cy, r, col, 1)
}

func (c *Canvas) disc(cx, cy, r float64, col color.NRGBA, alphaScale float32) {
	if r <= 0 {
		return
	}
	var path vector.Path
	path.Arc(float32(cx), float32(cy), float32(r), 0, 2*math.Pi, vector.Clockwise)
	path.Close()

	op := &vector.DrawPathOptions{AntiAlias: true, Blend: ebiten.BlendLighter}
	op.ColorScale.ScaleWithColor(col)
	op.ColorScale.ScaleAlpha(alphaScale)
	vector.FillPath(c.img, &path, &vector.FillOptions{}, op)
}
