// Package headless runs particle layers on an in-memory surface with a
// manually flushed frame queue. It is used by the report command and tests.
package headless

import (
	"math"
	"math/rand"

	"go.uber.org/zap"

	"github.com/cineverse/ambientfx/internal/particles"
	"github.com/cineverse/ambientfx/internal/render/rasterfx"
)

// Sim is a deterministic headless particle run.
type Sim struct {
	Width   int
	Height  int
	Surface *rasterfx.Surface
	Queue   *particles.FrameQueue
	Layer   *particles.Layer
	Events  *particles.EventLog

	configs []particles.Config
	rng     *rand.Rand
	log     *zap.Logger
	verbose bool
	resizes map[int][2]int // frame → new size, applied before that frame
	frame   int
}

// Option is a builder function applied to a Sim during construction.
type Option func(*Sim)

// WithSurfaceSize sets the surface dimensions.
func WithSurfaceSize(w, h int) Option {
	return func(s *Sim) {
		s.Width = w
		s.Height = h
	}
}

// WithSeed sets the RNG seed for deterministic runs.
func WithSeed(seed int64) Option {
	return func(s *Sim) {
		s.rng = rand.New(rand.NewSource(seed)) // #nosec G404 -- headless harness
	}
}

// WithVerbose keeps per-particle events in the event log.
func WithVerbose(v bool) Option {
	return func(s *Sim) { s.verbose = v }
}

// WithConfig adds a field to the layer, stacked above earlier ones.
func WithConfig(cfg particles.Config) Option {
	return func(s *Sim) { s.configs = append(s.configs, cfg) }
}

// WithLogger routes field logging to l.
func WithLogger(l *zap.Logger) Option {
	return func(s *Sim) { s.log = l }
}

// WithResizeAt resizes the surface and layer just before frame n runs.
func WithResizeAt(frame, w, h int) Option {
	return func(s *Sim) { s.resizes[frame] = [2]int{w, h} }
}

// New builds a Sim and starts its layer. Without WithConfig it runs the
// ambient preset alone.
func New(opts ...Option) *Sim {
	s := &Sim{
		Width:   1280,
		Height:  720,
		Queue:   particles.NewFrameQueue(),
		rng:     rand.New(rand.NewSource(1)), // #nosec G404 -- harness default
		log:     zap.NewNop(),
		resizes: map[int][2]int{},
	}
	for _, o := range opts {
		o(s)
	}
	if len(s.configs) == 0 {
		s.configs = []particles.Config{particles.Ambient()}
	}
	s.Events = particles.NewEventLog(s.verbose)
	s.Surface = rasterfx.New(s.Width, s.Height)
	s.Layer = particles.StartLayer(s.Surface, s.Queue, s.configs,
		particles.WithRand(s.rng),
		particles.WithLogger(s.log),
		particles.WithEventLog(s.Events),
	)
	return s
}

// RunFrames flushes the frame queue n times.
func (s *Sim) RunFrames(n int) {
	for i := 0; i < n; i++ {
		s.runOneFrame()
	}
}

// RunUntil flushes frames until predicate holds or maxFrames have run.
// Returns the frame at which predicate held, or -1.
func (s *Sim) RunUntil(predicate func(*Sim) bool, maxFrames int) int {
	for i := 0; i < maxFrames; i++ {
		s.runOneFrame()
		if predicate(s) {
			return s.frame
		}
	}
	return -1
}

func (s *Sim) runOneFrame() {
	s.frame++
	if sz, ok := s.resizes[s.frame]; ok {
		s.Width, s.Height = sz[0], sz[1]
		s.Surface.Resize(sz[0], sz[1])
		s.Layer.Resize(sz[0], sz[1])
	}
	s.Queue.Flush()
}

// Frame returns how many frames have been flushed.
func (s *Sim) Frame() int {
	return s.frame
}

// Close stops the layer.
func (s *Sim) Close() {
	s.Layer.Stop()
}

// FieldStats summarises one field at a point in time.
type FieldStats struct {
	Class       string
	Count       int
	Frames      uint64
	Respawns    uint64
	NaN         int // particles with a non-finite coordinate
	OutOfBounds int // particles outside [0,w)×[0,h)
	MeanOpacity float64
	Visible     int // particles with non-zero rendered opacity
}

// Snapshot summarises every field in the layer, bottom first.
func (s *Sim) Snapshot() []FieldStats {
	var out []FieldStats
	for _, f := range s.Layer.Fields() {
		w, h := f.Bounds()
		ps := f.Particles()
		st := FieldStats{
			Class:    f.Config().Class,
			Count:    len(ps),
			Frames:   f.Frames(),
			Respawns: f.Respawns(),
		}
		var sum float64
		for i := range ps {
			p := &ps[i]
			if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
				st.NaN++
				continue
			}
			if w > 0 && h > 0 && (p.X < 0 || p.X >= float64(w) || p.Y < 0 || p.Y >= float64(h)) {
				st.OutOfBounds++
			}
			o := p.Opacity()
			sum += o
			if o > 0 {
				st.Visible++
			}
		}
		if len(ps) > 0 {
			st.MeanOpacity = sum / float64(len(ps))
		}
		out = append(out, st)
	}
	return out
}
