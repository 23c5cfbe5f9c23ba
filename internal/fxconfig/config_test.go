package fxconfig

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cineverse/ambientfx/internal/particles"
)

func TestLoad_MissingFileYieldsDefault(t *testing.T) {
	f, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), f)

	cfgs, err := f.Configs()
	require.NoError(t, err)
	require.Len(t, cfgs, 2)
	assert.Equal(t, "stars", cfgs[0].Class)
	assert.Equal(t, "ambient", cfgs[1].Class)
}

func TestParse_EmptyYieldsDefault(t *testing.T) {
	f, err := Parse([]byte("# nothing here\n"))
	require.NoError(t, err)
	assert.Equal(t, Default(), f)
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("layers: [oops"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config")
}

func TestLayerConfig_Overrides(t *testing.T) {
	data := []byte(`
layers:
  - preset: ambient
    count: 12
    speed: 1.5
    palette: ["#fff", "tomato", "#11223380"]
    lifespan: {min: 10, max: 20}
    radius: {min: 1, max: 3}
    opacity: {min: 0.2, max: 0.4}
    glow: 4
    background: black
    trail_alpha: 1
    class: hero
`)
	f, err := Parse(data)
	require.NoError(t, err)
	cfgs, err := f.Configs()
	require.NoError(t, err)
	require.Len(t, cfgs, 1)

	c := cfgs[0]
	assert.Equal(t, 12, c.Count)
	assert.Equal(t, 1.5, c.Speed)
	assert.Equal(t, []color.RGBA{
		{R: 255, G: 255, B: 255, A: 255},
		{R: 255, G: 99, B: 71, A: 255},
		{R: 0x11, G: 0x22, B: 0x33, A: 0x80},
	}, c.Palette)
	assert.Equal(t, particles.Range{Min: 10, Max: 20}, c.Lifespan)
	assert.Equal(t, particles.FloatRange{Min: 1, Max: 3}, c.Radius)
	assert.Equal(t, particles.FloatRange{Min: 0.2, Max: 0.4}, c.Opacity)
	assert.Equal(t, 4.0, c.Glow)
	assert.Equal(t, color.RGBA{A: 255}, c.Background)
	assert.Equal(t, 1.0, c.TrailAlpha)
	assert.Equal(t, "hero", c.Class)
}

func TestLayerConfig_UnsetKeepsPreset(t *testing.T) {
	count := 5
	c, err := Layer{Preset: "stars", Count: &count}.Config()
	require.NoError(t, err)

	want := particles.Stars()
	want.Count = 5
	assert.Equal(t, want, c)
}

func TestLayerConfig_PaletteOverrideDoesNotAliasPreset(t *testing.T) {
	_, err := Layer{Preset: "ambient", Palette: []string{"red"}}.Config()
	require.NoError(t, err)
	assert.Len(t, particles.DefaultPalette, 3)
	assert.Equal(t, uint8(0x8B), particles.DefaultPalette[0].R)
}

func TestLayerConfig_UnknownPreset(t *testing.T) {
	f := File{Layers: []Layer{{Preset: "ambient"}, {Preset: "fireworks"}}}
	_, err := f.Configs()
	require.ErrorIs(t, err, ErrUnknownPreset)
	assert.Contains(t, err.Error(), "layer 1")
	assert.Contains(t, err.Error(), `"fireworks"`)
}

func TestLayerConfig_BadColours(t *testing.T) {
	_, err := Layer{Palette: []string{"#12345"}}.Config()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "palette")

	_, err = Layer{Background: "not-a-colour"}.Config()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "background")
}

func TestParseColor(t *testing.T) {
	cases := []struct {
		in   string
		want color.RGBA
		ok   bool
	}{
		{"#abc", color.RGBA{R: 0xaa, G: 0xbb, B: 0xcc, A: 0xff}, true},
		{"#8B5CF6", color.RGBA{R: 0x8b, G: 0x5c, B: 0xf6, A: 0xff}, true},
		{"#00000000", color.RGBA{}, true},
		{" White ", color.RGBA{R: 255, G: 255, B: 255, A: 255}, true},
		{"#ggg", color.RGBA{}, false},
		{"8B5CF6", color.RGBA{}, false},
		{"", color.RGBA{}, false},
	}
	for _, tc := range cases {
		got, err := ParseColor(tc.in)
		if !tc.ok {
			assert.Error(t, err, "ParseColor(%q)", tc.in)
			continue
		}
		if assert.NoError(t, err, "ParseColor(%q)", tc.in) {
			assert.Equal(t, tc.want, got, "ParseColor(%q)", tc.in)
		}
	}
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fx.yaml")
	count, alpha := 7, 0.5
	in := File{Layers: []Layer{
		{Preset: "stars", Count: &count},
		{Preset: "ambient", TrailAlpha: &alpha, Palette: []string{"#ff0000"}},
	}}
	require.NoError(t, in.Save(path))

	out, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestLoad_UnreadablePath(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(dir) // a directory cannot be read as a file
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config")
	_, statErr := os.Stat(dir)
	require.NoError(t, statErr)
}
