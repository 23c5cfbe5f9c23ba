// Package rasterfx renders particle fields into an in-memory RGBA image.
// It backs headless runs, PNG snapshots and the simulator tests.
package rasterfx

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/vector"

	"github.com/cineverse/ambientfx/internal/particles"
)

// circleSegments is the polygon resolution used for circles.
const circleSegments = 24

// glowBands is how many halo rings approximate the blur around a circle.
const glowBands = 3

// Surface is a particles.Surface and particles.Canvas backed by *image.RGBA.
type Surface struct {
	img  *image.RGBA
	rast *vector.Rasterizer
	mask *image.Alpha
}

var (
	_ particles.Surface = (*Surface)(nil)
	_ particles.Canvas  = (*Surface)(nil)
)

// New returns a w×h surface filled with opaque black. Negative sizes are
// treated as 0.
func New(w, h int) *Surface {
	s := &Surface{rast: vector.NewRasterizer(0, 0)}
	s.img = image.NewRGBA(image.Rect(0, 0, max(w, 0), max(h, 0)))
	draw.Draw(s.img, s.img.Bounds(), image.Black, image.Point{}, draw.Src)
	return s
}

// Surface implements particles.Canvas.
func (s *Surface) Surface() (particles.Surface, error) {
	if s == nil || s.img == nil {
		return nil, particles.ErrSurfaceUnavailable
	}
	return s, nil
}

// Size returns the image dimensions.
func (s *Surface) Size() (int, int) {
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

// Image returns the backing image.
func (s *Surface) Image() *image.RGBA {
	return s.img
}

// Resize reallocates the image, keeping the overlapping top-left region.
func (s *Surface) Resize(w, h int) {
	next := image.NewRGBA(image.Rect(0, 0, max(w, 0), max(h, 0)))
	draw.Draw(next, next.Bounds(), image.Black, image.Point{}, draw.Src)
	draw.Draw(next, next.Bounds(), s.img, image.Point{}, draw.Src)
	s.img = next
}

// FillRect composites c over the rectangle with source-over blending.
func (s *Surface) FillRect(x, y, w, h float64, c color.NRGBA) {
	r := image.Rect(
		int(math.Floor(x)), int(math.Floor(y)),
		int(math.Ceil(x+w)), int(math.Ceil(y+h)),
	).Intersect(s.img.Bounds())
	if r.Empty() || c.A == 0 {
		return
	}
	a := uint32(c.A)
	inv := 255 - a
	for py := r.Min.Y; py < r.Max.Y; py++ {
		row := s.img.Pix[s.img.PixOffset(r.Min.X, py):]
		for i := 0; i < r.Dx()*4; i += 4 {
			row[i+0] = uint8((uint32(row[i+0])*inv + uint32(c.R)*a + 127) / 255)
			row[i+1] = uint8((uint32(row[i+1])*inv + uint32(c.G)*a + 127) / 255)
			row[i+2] = uint8((uint32(row[i+2])*inv + uint32(c.B)*a + 127) / 255)
			row[i+3] = 255
		}
	}
}

// FillCircle adds c to the pixels under the circle, plus fainter halo rings
// out to r+glow.
func (s *Surface) FillCircle(cx, cy, r, glow float64, c color.NRGBA) {
	if glow > 0 {
		for band := glowBands; band >= 1; band-- {
			gr := r + glow*float64(band)/glowBands
			ga := float64(c.A) * 0.25 / float64(band)
			s.addDisc(cx, cy, gr, c, ga)
		}
	}
	s.addDisc(cx, cy, r, c, float64(c.A))
}

// addDisc rasterises an anti-aliased disc and adds its colour, weighted by
// coverage and alpha, to the destination. Channels saturate at 255.
func (s *Surface) addDisc(cx, cy, r float64, c color.NRGBA, alpha float64) {
	if r <= 0 || alpha <= 0 {
		return
	}
	bb := image.Rect(
		int(math.Floor(cx-r)), int(math.Floor(cy-r)),
		int(math.Ceil(cx+r))+1, int(math.Ceil(cy+r))+1,
	)
	clip := bb.Intersect(s.img.Bounds())
	if clip.Empty() {
		return
	}

	w, h := bb.Dx(), bb.Dy()
	s.rast.Reset(w, h)
	ox, oy := cx-float64(bb.Min.X), cy-float64(bb.Min.Y)
	s.rast.MoveTo(float32(ox+r), float32(oy))
	for i := 1; i < circleSegments; i++ {
		t := 2 * math.Pi * float64(i) / circleSegments
		s.rast.LineTo(float32(ox+r*math.Cos(t)), float32(oy+r*math.Sin(t)))
	}
	s.rast.ClosePath()

	if s.mask == nil || s.mask.Rect.Dx() < w || s.mask.Rect.Dy() < h {
		s.mask = image.NewAlpha(image.Rect(0, 0, max(w, 16), max(h, 16)))
	}
	mask := s.mask.SubImage(image.Rect(0, 0, w, h)).(*image.Alpha)
	for i := range mask.Pix {
		mask.Pix[i] = 0
	}
	s.rast.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})

	k := alpha / 255 / 255
	for py := clip.Min.Y; py < clip.Max.Y; py++ {
		for px := clip.Min.X; px < clip.Max.X; px++ {
			m := mask.AlphaAt(px-bb.Min.X, py-bb.Min.Y).A
			if m == 0 {
				continue
			}
			wgt := k * float64(m)
			i := s.img.PixOffset(px, py)
			s.img.Pix[i+0] = addSat(s.img.Pix[i+0], float64(c.R)*wgt)
			s.img.Pix[i+1] = addSat(s.img.Pix[i+1], float64(c.G)*wgt)
			s.img.Pix[i+2] = addSat(s.img.Pix[i+2], float64(c.B)*wgt)
			s.img.Pix[i+3] = 255
		}
	}
}

func addSat(dst uint8, v float64) uint8 {
	sum := float64(dst) + math.Round(v)
	if sum >= 255 {
		return 255
	}
	return uint8(sum)
}

// WritePNG encodes the current image as PNG.
func (s *Surface) WritePNG(w io.Writer) error {
	if err := png.Encode(w, s.img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}
