package particles

import (
	"fmt"
	"image/color"
	"math"
)

// Range is an inclusive integer range.
type Range struct {
	Min int
	Max int
}

// FloatRange is a half-open float range [Min, Max).
type FloatRange struct {
	Min float64
	Max float64
}

// Config controls how a field samples and renders its particles.
// The zero value of every field means "use the default".
type Config struct {
	Count      int          // pool size
	Speed      float64      // velocity scale, pixels per frame
	Palette    []color.RGBA // particle colours, one chosen per spawn
	Lifespan   Range        // frames
	Radius     FloatRange   // pixels
	Opacity    FloatRange   // peak opacity, inside (0,1)
	Glow       float64      // glow radius as a multiple of the particle radius
	Background color.RGBA   // colour of the per-frame trail overlay
	TrailAlpha float64      // overlay alpha; 1 clears the surface every frame
	Class      string       // host layering hint, ignored by the simulation
}

// Default values for an unconfigured field.
const (
	DefaultCount      = 30
	DefaultSpeed      = 0.5
	DefaultGlow       = 2.0
	DefaultTrailAlpha = 0.05
)

// DefaultPalette is the three-colour brand set.
var DefaultPalette = []color.RGBA{
	{R: 0x8B, G: 0x5C, B: 0xF6, A: 0xFF}, // violet
	{R: 0x3B, G: 0x82, B: 0xF6, A: 0xFF}, // blue
	{R: 0xEC, G: 0x48, B: 0x99, A: 0xFF}, // pink
}

var (
	defaultLifespan   = Range{Min: 200, Max: 500}
	defaultRadius     = FloatRange{Min: 0.5, Max: 2.5}
	defaultOpacity    = FloatRange{Min: 0.1, Max: 0.6}
	defaultBackground = color.RGBA{R: 5, G: 5, B: 12, A: 255}
)

// DefaultConfig returns the ambient-particle defaults.
func DefaultConfig() Config {
	return Config{
		Count:      DefaultCount,
		Speed:      DefaultSpeed,
		Palette:    append([]color.RGBA(nil), DefaultPalette...),
		Lifespan:   defaultLifespan,
		Radius:     defaultRadius,
		Opacity:    defaultOpacity,
		Glow:       DefaultGlow,
		Background: defaultBackground,
		TrailAlpha: DefaultTrailAlpha,
	}
}

// Ambient is the drifting coloured-particle preset used on landing pages.
func Ambient() Config {
	c := DefaultConfig()
	c.Class = "ambient"
	return c
}

// Stars is the star-background preset: many small pale points that drift
// slowly and live long enough to read as twinkling.
func Stars() Config {
	return Config{
		Count: 120,
		Speed: 0.1,
		Palette: []color.RGBA{
			{R: 255, G: 255, B: 255, A: 255},
			{R: 200, G: 220, B: 255, A: 255},
			{R: 255, G: 240, B: 210, A: 255},
		},
		Lifespan:   Range{Min: 300, Max: 900},
		Radius:     FloatRange{Min: 0.3, Max: 1.4},
		Opacity:    FloatRange{Min: 0.3, Max: 0.9},
		Glow:       3,
		Background: defaultBackground,
		TrailAlpha: 0.2,
		Class:      "stars",
	}
}

// Preset returns a named preset. Known names are "ambient" and "stars".
func Preset(name string) (Config, bool) {
	switch name {
	case "ambient", "":
		return Ambient(), true
	case "stars":
		return Stars(), true
	default:
		return Config{}, false
	}
}

// Adjustment records one value Sanitize had to change.
type Adjustment struct {
	Field string
	From  string
	To    string
}

func (a Adjustment) String() string {
	return fmt.Sprintf("%s: %s → %s", a.Field, a.From, a.To)
}

// Sanitize returns a copy of c with every value forced into its valid range,
// plus the list of adjustments made. Unset values take their defaults; out of
// range values are clamped rather than rejected.
func (c Config) Sanitize() (Config, []Adjustment) {
	var adj []Adjustment
	note := func(field string, from, to any) {
		adj = append(adj, Adjustment{Field: field, From: fmt.Sprint(from), To: fmt.Sprint(to)})
	}

	out := c
	if out.Count < 0 {
		note("count", out.Count, 0)
		out.Count = 0
	}
	if math.IsNaN(out.Speed) || math.IsInf(out.Speed, 0) || out.Speed < 0 {
		note("speed", out.Speed, 0)
		out.Speed = 0
	}

	if len(out.Palette) == 0 {
		out.Palette = append([]color.RGBA(nil), DefaultPalette...)
	} else {
		out.Palette = append([]color.RGBA(nil), out.Palette...)
	}

	if out.Lifespan == (Range{}) {
		out.Lifespan = defaultLifespan
	}
	if out.Lifespan.Min > out.Lifespan.Max {
		note("lifespan", out.Lifespan, Range{Min: out.Lifespan.Max, Max: out.Lifespan.Min})
		out.Lifespan.Min, out.Lifespan.Max = out.Lifespan.Max, out.Lifespan.Min
	}
	if out.Lifespan.Min < 1 {
		note("lifespan.min", out.Lifespan.Min, 1)
		out.Lifespan.Min = 1
	}
	if out.Lifespan.Max < out.Lifespan.Min {
		out.Lifespan.Max = out.Lifespan.Min
	}

	out.Radius = sanitizeFloatRange("radius", out.Radius, defaultRadius, 0, math.Inf(1), note)
	out.Opacity = sanitizeFloatRange("opacity", out.Opacity, defaultOpacity, 0, 1, note)

	if out.Glow == 0 {
		out.Glow = DefaultGlow
	}
	if math.IsNaN(out.Glow) || math.IsInf(out.Glow, 0) || out.Glow < 0 {
		note("glow", out.Glow, 0)
		out.Glow = 0
	}

	if out.TrailAlpha == 0 {
		out.TrailAlpha = DefaultTrailAlpha
	}
	if math.IsNaN(out.TrailAlpha) || out.TrailAlpha < 0 || out.TrailAlpha > 1 {
		to := math.Max(0, math.Min(1, out.TrailAlpha))
		if math.IsNaN(out.TrailAlpha) {
			to = DefaultTrailAlpha
		}
		note("trail_alpha", out.TrailAlpha, to)
		out.TrailAlpha = to
	}
	if out.Background == (color.RGBA{}) {
		out.Background = defaultBackground
	}
	return out, adj
}

func sanitizeFloatRange(name string, r, def FloatRange, lo, hi float64, note func(string, any, any)) FloatRange {
	if r == (FloatRange{}) {
		return def
	}
	if !isFinite(r.Min) || !isFinite(r.Max) {
		note(name, r, def)
		return def
	}
	if r.Min > r.Max {
		note(name, r, FloatRange{Min: r.Max, Max: r.Min})
		r.Min, r.Max = r.Max, r.Min
	}
	clamped := FloatRange{Min: math.Max(lo, math.Min(hi, r.Min)), Max: math.Max(lo, math.Min(hi, r.Max))}
	if clamped != r {
		note(name, r, clamped)
	}
	return clamped
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
