package rasterfx

import (
	"bytes"
	"errors"
	"image/color"
	"image/png"
	"testing"

	"github.com/cineverse/ambientfx/internal/particles"
)

func TestNew_OpaqueBlack(t *testing.T) {
	s := New(8, 4)
	if w, h := s.Size(); w != 8 || h != 4 {
		t.Fatalf("size = %dx%d, want 8x4", w, h)
	}
	if got := s.Image().RGBAAt(3, 2); got != (color.RGBA{A: 255}) {
		t.Fatalf("pixel = %v, want opaque black", got)
	}
}

func TestSurface_NilIsUnavailable(t *testing.T) {
	var s *Surface
	if _, err := s.Surface(); !errors.Is(err, particles.ErrSurfaceUnavailable) {
		t.Fatalf("nil surface err = %v, want ErrSurfaceUnavailable", err)
	}
}

func TestFillCircle_LightsCentreNotCorner(t *testing.T) {
	s := New(32, 32)
	s.FillCircle(16, 16, 3, 0, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
	centre := s.Image().RGBAAt(16, 16)
	if centre.R < 150 || centre.G < 70 {
		t.Fatalf("centre pixel too dark: %v", centre)
	}
	if corner := s.Image().RGBAAt(0, 0); corner.R != 0 {
		t.Fatalf("corner pixel lit: %v", corner)
	}
}

func TestFillCircle_OverlapsBrighten(t *testing.T) {
	c := color.NRGBA{R: 60, G: 60, B: 60, A: 255}
	once := New(16, 16)
	once.FillCircle(8, 8, 2, 0, c)
	twice := New(16, 16)
	twice.FillCircle(8, 8, 2, 0, c)
	twice.FillCircle(8, 8, 2, 0, c)

	a, b := once.Image().RGBAAt(8, 8).R, twice.Image().RGBAAt(8, 8).R
	if b <= a {
		t.Fatalf("overlap did not brighten: single=%d double=%d", a, b)
	}
}

func TestFillCircle_Saturates(t *testing.T) {
	s := New(16, 16)
	for i := 0; i < 10; i++ {
		s.FillCircle(8, 8, 3, 0, color.NRGBA{R: 255, A: 255})
	}
	if got := s.Image().RGBAAt(8, 8).R; got != 255 {
		t.Fatalf("saturated red = %d, want 255", got)
	}
}

func TestFillCircle_GlowReachesBeyondRadius(t *testing.T) {
	c := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	plain := New(32, 32)
	plain.FillCircle(16, 16, 2, 0, c)
	glowing := New(32, 32)
	glowing.FillCircle(16, 16, 2, 6, c)

	if got := plain.Image().RGBAAt(21, 16).R; got != 0 {
		t.Fatalf("pixel outside bare circle lit: %d", got)
	}
	if got := glowing.Image().RGBAAt(21, 16).R; got == 0 {
		t.Fatalf("glow did not reach 5px from centre")
	}
}

func TestFillCircle_ClipsAtEdges(t *testing.T) {
	s := New(10, 10)
	s.FillCircle(0, 0, 4, 4, color.NRGBA{G: 255, A: 255})
	s.FillCircle(10, 10, 4, 4, color.NRGBA{G: 255, A: 255})
	s.FillCircle(-50, -50, 4, 4, color.NRGBA{G: 255, A: 255})
	if got := s.Image().RGBAAt(0, 0).G; got == 0 {
		t.Fatalf("edge circle did not draw its visible part")
	}
}

func TestFillRect_TrailOverlayFades(t *testing.T) {
	s := New(4, 4)
	s.FillCircle(2, 2, 3, 0, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	before := s.Image().RGBAAt(2, 2).R
	for i := 0; i < 20; i++ {
		s.FillRect(0, 0, 4, 4, color.NRGBA{A: 32})
	}
	after := s.Image().RGBAAt(2, 2).R
	if after >= before/2 {
		t.Fatalf("overlay did not fade: %d → %d", before, after)
	}
}

func TestFillRect_OpaqueReplaces(t *testing.T) {
	s := New(4, 4)
	s.FillRect(1, 1, 2, 2, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	if got := s.Image().RGBAAt(1, 1); got != (color.RGBA{R: 10, G: 20, B: 30, A: 255}) {
		t.Fatalf("pixel = %v after opaque fill", got)
	}
	if got := s.Image().RGBAAt(0, 0); got != (color.RGBA{A: 255}) {
		t.Fatalf("pixel outside rect changed: %v", got)
	}
}

func TestResize_KeepsOverlap(t *testing.T) {
	s := New(4, 4)
	s.FillRect(0, 0, 1, 1, color.NRGBA{R: 99, A: 255})
	s.Resize(8, 2)
	if w, h := s.Size(); w != 8 || h != 2 {
		t.Fatalf("size = %dx%d after resize", w, h)
	}
	if got := s.Image().RGBAAt(0, 0).R; got != 99 {
		t.Fatalf("overlap lost: r=%d", got)
	}
	if got := s.Image().RGBAAt(7, 1); got != (color.RGBA{A: 255}) {
		t.Fatalf("new area = %v, want opaque black", got)
	}
}

func TestWritePNG_RoundTrip(t *testing.T) {
	s := New(5, 3)
	s.FillRect(0, 0, 5, 3, color.NRGBA{B: 200, A: 255})
	var buf bytes.Buffer
	if err := s.WritePNG(&buf); err != nil {
		t.Fatalf("WritePNG: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 5 || b.Dy() != 3 {
		t.Fatalf("decoded bounds %v", b)
	}
}

func TestField_DrawsOntoSurface(t *testing.T) {
	s := New(64, 64)
	cfg := particles.DefaultConfig()
	cfg.Count = 50
	f := particles.Start(s, nil, cfg, particles.WithSeed(4))
	for i := 0; i < 120; i++ {
		f.Step()
	}
	lit := 0
	img := s.Image()
	for i := 0; i < len(img.Pix); i += 4 {
		if img.Pix[i] > 10 || img.Pix[i+1] > 10 || img.Pix[i+2] > 10 {
			lit++
		}
	}
	if lit == 0 {
		t.Fatalf("no pixels lit after 120 frames")
	}
}
