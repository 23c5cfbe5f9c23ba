package headless

import (
	"testing"

	"github.com/cineverse/ambientfx/internal/particles"
)

func TestSim_DefaultRunKeepsInvariants(t *testing.T) {
	sim := New(WithSeed(42), WithSurfaceSize(320, 180))
	defer sim.Close()

	sim.RunFrames(1200)
	if sim.Frame() != 1200 {
		t.Fatalf("frame = %d, want 1200", sim.Frame())
	}
	stats := sim.Snapshot()
	if len(stats) != 1 {
		t.Fatalf("expected one field, got %d", len(stats))
	}
	st := stats[0]
	if st.Class != "ambient" {
		t.Errorf("class = %q, want ambient", st.Class)
	}
	if st.Count != particles.DefaultCount {
		t.Errorf("count = %d, want %d", st.Count, particles.DefaultCount)
	}
	if st.Frames != 1200 {
		t.Errorf("field frames = %d, want 1200", st.Frames)
	}
	if st.NaN != 0 || st.OutOfBounds != 0 {
		t.Errorf("invariants broken: nan=%d out_of_bounds=%d", st.NaN, st.OutOfBounds)
	}
	// Lifespans top out at 500, so every slot has recycled at least twice.
	if st.Respawns < 2*uint64(particles.DefaultCount) {
		t.Errorf("respawns = %d, want ≥ %d", st.Respawns, 2*particles.DefaultCount)
	}
	if st.MeanOpacity <= 0 || st.MeanOpacity > 0.6 {
		t.Errorf("mean opacity %.3f outside (0, 0.6]", st.MeanOpacity)
	}
}

func TestSim_StackedPresets(t *testing.T) {
	sim := New(
		WithSeed(7),
		WithSurfaceSize(200, 200),
		WithConfig(particles.Stars()),
		WithConfig(particles.Ambient()),
	)
	defer sim.Close()
	sim.RunFrames(300)

	stats := sim.Snapshot()
	if len(stats) != 2 || stats[0].Class != "stars" || stats[1].Class != "ambient" {
		t.Fatalf("unexpected layer stack: %+v", stats)
	}
	if stats[0].Count != 120 {
		t.Errorf("stars count = %d, want 120", stats[0].Count)
	}
	for _, st := range stats {
		if st.Frames != 300 {
			t.Errorf("%s stepped %d frames, want 300", st.Class, st.Frames)
		}
	}
}

func TestSim_SameSeedSameSnapshot(t *testing.T) {
	run := func() []FieldStats {
		sim := New(WithSeed(99), WithSurfaceSize(150, 100))
		defer sim.Close()
		sim.RunFrames(400)
		return sim.Snapshot()
	}
	a, b := run(), run()
	if a[0] != b[0] {
		t.Fatalf("same seed diverged:\n%+v\n%+v", a[0], b[0])
	}
}

func TestSim_ResizeShrinksIntoNewBounds(t *testing.T) {
	sim := New(
		WithSeed(3),
		WithSurfaceSize(800, 600),
		WithResizeAt(50, 100, 60),
	)
	defer sim.Close()

	sim.RunFrames(49)
	if w, h := sim.Layer.Fields()[0].Bounds(); w != 800 || h != 600 {
		t.Fatalf("bounds before resize = %dx%d", w, h)
	}
	sim.RunFrames(1)
	if sim.Width != 100 || sim.Height != 60 {
		t.Fatalf("sim size = %dx%d, want 100x60", sim.Width, sim.Height)
	}
	if w, h := sim.Surface.Size(); w != 100 || h != 60 {
		t.Fatalf("surface size = %dx%d, want 100x60", w, h)
	}
	for _, st := range sim.Snapshot() {
		if st.OutOfBounds != 0 {
			t.Fatalf("%d particles outside 100x60 after the resize frame", st.OutOfBounds)
		}
	}
	if n := sim.Events.Count(particles.CategoryBounds, particles.KeyResize); n != 1 {
		t.Fatalf("resize events = %d, want 1", n)
	}
}

func TestSim_ZeroSizeSurfaceStaysFinite(t *testing.T) {
	sim := New(WithSeed(5), WithSurfaceSize(0, 0))
	defer sim.Close()
	sim.RunFrames(600)
	st := sim.Snapshot()[0]
	if st.NaN != 0 {
		t.Fatalf("%d particles went non-finite on a 0x0 surface", st.NaN)
	}
	if st.Count != particles.DefaultCount {
		t.Fatalf("count = %d, want %d", st.Count, particles.DefaultCount)
	}
}

func TestSim_RunUntilFirstRespawn(t *testing.T) {
	cfg := particles.DefaultConfig()
	cfg.Lifespan = particles.Range{Min: 10, Max: 10}
	sim := New(WithSeed(1), WithConfig(cfg), WithVerbose(true))
	defer sim.Close()

	frame := sim.RunUntil(func(s *Sim) bool {
		return s.Events.Count(particles.CategoryParticle, particles.KeyRespawn) > 0
	}, 100)
	if frame != 10 {
		t.Fatalf("first respawn at frame %d, want 10", frame)
	}
	if n := sim.Events.Count(particles.CategoryParticle, particles.KeyRespawn); n != cfg.Count {
		t.Fatalf("respawns at frame 10 = %d, want whole pool (%d)", n, cfg.Count)
	}
}

func TestSim_RunUntilGivesUp(t *testing.T) {
	sim := New(WithSeed(1))
	defer sim.Close()
	if got := sim.RunUntil(func(*Sim) bool { return false }, 5); got != -1 {
		t.Fatalf("RunUntil = %d, want -1", got)
	}
	if sim.Frame() != 5 {
		t.Fatalf("frame = %d, want 5", sim.Frame())
	}
}

func TestSim_CloseStopsFrames(t *testing.T) {
	sim := New(WithSeed(1))
	sim.RunFrames(3)
	sim.Close()
	sim.RunFrames(3)
	f := sim.Layer.Fields()[0]
	if f.Frames() != 3 {
		t.Fatalf("field frames = %d after Close, want 3", f.Frames())
	}
	if sim.Events.Count(particles.CategoryLifecycle, particles.KeyStop) != 1 {
		t.Fatalf("stop not recorded:\n%s", sim.Events.Format())
	}
}
