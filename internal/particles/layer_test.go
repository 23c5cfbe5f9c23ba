package particles

import (
	"errors"
	"testing"
)

func TestLayer_OnlyBottomFieldPaintsOverlay(t *testing.T) {
	s := &recordingSurface{w: 100, h: 80}
	q := NewFrameQueue()
	bottom, top := Stars(), Ambient()
	l := StartLayer(s, q, []Config{bottom, top}, WithSeed(11))
	if !l.Running() {
		t.Fatalf("layer did not start")
	}
	if q.Pending() != 1 {
		t.Fatalf("layer queued %d frames, want a single shared request", q.Pending())
	}

	q.Flush()
	rects := 0
	for _, c := range s.calls {
		if c == "rect" {
			rects++
		}
	}
	if rects != 1 {
		t.Fatalf("one frame painted %d overlays, want 1", rects)
	}
	if s.calls[0] != "rect" {
		t.Fatalf("overlay not painted first: %v", s.calls[:3])
	}
	for _, f := range l.Fields() {
		if f.Frames() != 1 {
			t.Fatalf("%s field stepped %d times, want 1", f.Config().Class, f.Frames())
		}
	}
	l.Stop()
}

func TestLayer_FieldsDrawBottomFirst(t *testing.T) {
	s := &recordingSurface{w: 100, h: 80}
	bottom := DefaultConfig()
	bottom.Count = 1
	top := DefaultConfig()
	top.Count = 1
	l := StartLayer(s, nil, []Config{bottom, top}, WithSeed(5))
	fs := l.Fields()
	fs[0].pool[0] = Particle{X: 1, Y: 1, Radius: 1, BaseOpacity: 1, Color: DefaultPalette[0], Age: 4, Lifespan: 10}
	fs[1].pool[0] = Particle{X: 2, Y: 2, Radius: 1, BaseOpacity: 1, Color: DefaultPalette[1], Age: 4, Lifespan: 10}

	l.Step()
	if len(s.circles) != 2 {
		t.Fatalf("drew %d circles, want 2", len(s.circles))
	}
	if s.circles[0].x != 1 || s.circles[1].x != 2 {
		t.Fatalf("draw order = %v,%v; want bottom then top", s.circles[0].x, s.circles[1].x)
	}
}

func TestLayer_SharedStreamGivesFieldsDistinctParticles(t *testing.T) {
	s := &recordingSurface{w: 500, h: 500}
	l := StartLayer(s, nil, []Config{DefaultConfig(), DefaultConfig()}, WithSeed(42))
	a, b := l.Fields()[0].Particles(), l.Fields()[1].Particles()
	if a[0] == b[0] {
		t.Fatalf("stacked fields sampled identical particles")
	}
}

func TestLayer_StopStopsEveryField(t *testing.T) {
	s := &recordingSurface{w: 100, h: 80}
	q := NewFrameQueue()
	l := StartLayer(s, q, []Config{Stars(), Ambient()}, WithSeed(1))
	q.Flush()
	l.Stop()
	l.Stop()
	if l.Running() {
		t.Fatalf("layer running after Stop")
	}
	if q.Pending() != 0 {
		t.Fatalf("stop left %d queued frames", q.Pending())
	}
	for _, f := range l.Fields() {
		if f.Running() || f.Len() != 0 {
			t.Fatalf("%s field still running after layer Stop", f.Config().Class)
		}
	}
}

func TestLayer_ResizeReachesEveryField(t *testing.T) {
	s := &recordingSurface{w: 100, h: 80}
	l := StartLayer(s, nil, []Config{Stars(), Ambient()}, WithSeed(1))
	l.Resize(33, 44)
	for _, f := range l.Fields() {
		if w, h := f.Bounds(); w != 33 || h != 44 {
			t.Fatalf("%s field bounds %dx%d, want 33x44", f.Config().Class, w, h)
		}
	}
}

func TestLayer_UnavailableSurfaceIsInert(t *testing.T) {
	q := NewFrameQueue()
	el := NewEventLog(false)
	canvas := CanvasFunc(func() (Surface, error) { return nil, errors.New("no gpu") })
	l := StartLayer(canvas, q, []Config{Stars(), Ambient()}, WithEventLog(el))
	if l.Running() || q.Pending() != 0 {
		t.Fatalf("layer scheduled without a surface")
	}
	if n := el.Count(CategoryLifecycle, KeyDegraded); n != 2 {
		t.Fatalf("degraded events = %d, want one per field", n)
	}
	l.Stop()
}
