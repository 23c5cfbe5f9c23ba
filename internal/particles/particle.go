package particles

import (
	"image/color"
	"math"
)

// Particle is one animated dot in the field.
//
// Everything except X, Y and Age is sampled once at spawn and held constant
// until the particle is recycled.
type Particle struct {
	X, Y        float64 // surface position, wrapped into bounds every step
	VX, VY      float64 // per-frame displacement
	Radius      float64
	BaseOpacity float64 // peak opacity, reached at half life
	Color       color.RGBA
	Age         int // frames lived
	Lifespan    int // frames before recycling, always >= 1
}

// LifeRatio returns Age/Lifespan clamped to [0,1].
func (p *Particle) LifeRatio() float64 {
	if p.Lifespan <= 0 {
		return 1
	}
	r := float64(p.Age) / float64(p.Lifespan)
	return math.Max(0, math.Min(1, r))
}

// Opacity returns the rendered opacity for the particle's current age.
func (p *Particle) Opacity() float64 {
	return Envelope(p.BaseOpacity, p.LifeRatio())
}

// Expired reports whether the particle has used up its lifespan.
func (p *Particle) Expired() bool {
	return p.Age >= p.Lifespan
}

// Envelope is the triangular fade-in/fade-out curve: 0 at birth, base at
// half life, 0 at death. ratio is clamped to [0,1].
func Envelope(base, ratio float64) float64 {
	ratio = math.Max(0, math.Min(1, ratio))
	if ratio < 0.5 {
		return base * (2 * ratio)
	}
	return base * (2 * (1 - ratio))
}

// wrap folds v into [0,size). A non-positive size leaves v unchanged.
func wrap(v, size float64) float64 {
	if size <= 0 {
		return v
	}
	v = math.Mod(v, size)
	if v < 0 {
		v += size
	}
	// -tiny + size rounds to size in float64.
	if v >= size {
		v = 0
	}
	return v
}
