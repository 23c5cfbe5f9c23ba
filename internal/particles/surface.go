package particles

import (
	"errors"
	"image/color"
)

// ErrSurfaceUnavailable is returned by a Canvas that cannot hand out a
// drawing surface. Start treats it as a degraded, not fatal, condition.
var ErrSurfaceUnavailable = errors.New("particles: drawing surface unavailable")

// Surface is the 2D drawing target of a field.
type Surface interface {
	// Size returns the current pixel dimensions.
	Size() (width, height int)
	// FillRect paints a rectangle with source-over blending.
	FillRect(x, y, w, h float64, c color.NRGBA)
	// FillCircle paints a filled circle with a soft glow of radius glow
	// around it, blending additively so overlaps brighten.
	FillCircle(cx, cy, r, glow float64, c color.NRGBA)
}

// Canvas hands out the Surface a field draws on.
type Canvas interface {
	Surface() (Surface, error)
}

// CanvasFunc adapts a function to Canvas.
type CanvasFunc func() (Surface, error)

// Surface calls f.
func (f CanvasFunc) Surface() (Surface, error) { return f() }

// Source is the random source used for sampling. *math/rand.Rand satisfies it.
type Source interface {
	Float64() float64
	Intn(n int) int
}
