// Package fxconfig loads particle layer configuration from YAML files.
package fxconfig

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
	"gopkg.in/yaml.v3"

	"github.com/cineverse/ambientfx/internal/particles"
)

// ErrUnknownPreset is returned for a layer naming a preset that does not exist.
var ErrUnknownPreset = errors.New("unknown preset")

// File is the on-disk layout: a bottom-first list of layers.
type File struct {
	Layers []Layer `yaml:"layers"`
}

// Layer selects a preset and overrides any of its values. Unset fields keep
// the preset's value.
type Layer struct {
	Preset     string      `yaml:"preset"`
	Count      *int        `yaml:"count,omitempty"`
	Speed      *float64    `yaml:"speed,omitempty"`
	Palette    []string    `yaml:"palette,omitempty"`
	Lifespan   *IntRange   `yaml:"lifespan,omitempty"`
	Radius     *FloatRange `yaml:"radius,omitempty"`
	Opacity    *FloatRange `yaml:"opacity,omitempty"`
	Glow       *float64    `yaml:"glow,omitempty"`
	Background string      `yaml:"background,omitempty"`
	TrailAlpha *float64    `yaml:"trail_alpha,omitempty"`
	Class      string      `yaml:"class,omitempty"`
}

// IntRange is an inclusive frame range.
type IntRange struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// FloatRange is a [min,max) range.
type FloatRange struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Default is the landing-page backdrop: stars behind ambient particles.
func Default() File {
	return File{Layers: []Layer{{Preset: "stars"}, {Preset: "ambient"}}}
}

// Load reads a YAML file. A missing file yields Default.
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return File{}, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML. An empty document or one without layers yields Default.
func Parse(data []byte) (File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if len(f.Layers) == 0 {
		return Default(), nil
	}
	return f, nil
}

// Save writes f as YAML.
func (f File) Save(path string) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Configs resolves every layer into a particles.Config. Numeric values are
// passed through unchecked; particles.Config.Sanitize clamps them at Start.
func (f File) Configs() ([]particles.Config, error) {
	out := make([]particles.Config, 0, len(f.Layers))
	for i, l := range f.Layers {
		cfg, err := l.Config()
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		out = append(out, cfg)
	}
	return out, nil
}

// Config resolves a single layer.
func (l Layer) Config() (particles.Config, error) {
	cfg, ok := particles.Preset(l.Preset)
	if !ok {
		return particles.Config{}, fmt.Errorf("%w %q", ErrUnknownPreset, l.Preset)
	}
	if l.Count != nil {
		cfg.Count = *l.Count
	}
	if l.Speed != nil {
		cfg.Speed = *l.Speed
	}
	if len(l.Palette) > 0 {
		cfg.Palette = cfg.Palette[:0:0]
		for _, s := range l.Palette {
			c, err := ParseColor(s)
			if err != nil {
				return particles.Config{}, fmt.Errorf("palette: %w", err)
			}
			cfg.Palette = append(cfg.Palette, c)
		}
	}
	if l.Lifespan != nil {
		cfg.Lifespan = particles.Range{Min: l.Lifespan.Min, Max: l.Lifespan.Max}
	}
	if l.Radius != nil {
		cfg.Radius = particles.FloatRange{Min: l.Radius.Min, Max: l.Radius.Max}
	}
	if l.Opacity != nil {
		cfg.Opacity = particles.FloatRange{Min: l.Opacity.Min, Max: l.Opacity.Max}
	}
	if l.Glow != nil {
		cfg.Glow = *l.Glow
	}
	if l.Background != "" {
		c, err := ParseColor(l.Background)
		if err != nil {
			return particles.Config{}, fmt.Errorf("background: %w", err)
		}
		cfg.Background = c
	}
	if l.TrailAlpha != nil {
		cfg.TrailAlpha = *l.TrailAlpha
	}
	if l.Class != "" {
		cfg.Class = l.Class
	}
	return cfg, nil
}

// ParseColor accepts #rgb, #rrggbb, #rrggbbaa or a CSS colour name.
func ParseColor(s string) (color.RGBA, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if c, ok := colornames.Map[v]; ok {
		return c, nil
	}
	if !strings.HasPrefix(v, "#") {
		return color.RGBA{}, fmt.Errorf("invalid colour %q", s)
	}
	hex := v[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return color.RGBA{}, fmt.Errorf("invalid colour %q", s)
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return color.RGBA{R: uint8(n >> 24), G: uint8(n >> 16), B: uint8(n >> 8), A: uint8(n)}, nil
}
