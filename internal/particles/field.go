package particles

import (
	"fmt"
	"image/color"
	"math"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Field is a fixed-size pool of particles animated on a Surface.
//
// The pool is allocated by Start, touched only by Step, and dropped by Stop.
// Resize may arrive from any goroutine and only updates the stored bounds.
type Field struct {
	mu       sync.Mutex
	cfg      Config
	surface  Surface
	sched    Scheduler
	rng      Source
	log      *zap.Logger
	events   *EventLog
	pool     []Particle
	pending  FrameID // outstanding frame request, 0 if none
	running  bool
	overlay  bool // paint the trail overlay before particles
	respawns uint64

	frames atomic.Uint64
	bounds atomic.Uint64 // width<<32 | height
}

// Option configures a Field at Start.
type Option func(*Field)

// WithRand sets the sampling source. The default is seeded from the clock.
func WithRand(src Source) Option {
	return func(f *Field) { f.rng = src }
}

// WithSeed is WithRand with a fresh math/rand source.
func WithSeed(seed int64) Option {
	return func(f *Field) { f.rng = rand.New(rand.NewSource(seed)) } // #nosec G404 -- cosmetic only
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(f *Field) {
		if l != nil {
			f.log = l
		}
	}
}

// WithEventLog records lifecycle, bounds and config events into el.
func WithEventLog(el *EventLog) Option {
	return func(f *Field) { f.events = el }
}

// withoutOverlay disables the trail overlay; used for every layer but the
// bottom one so a stack fades once per frame.
func withoutOverlay() Option {
	return func(f *Field) { f.overlay = false }
}

// Start acquires a surface from canvas, samples cfg.Count particles and
// requests the first frame from sched.
//
// If the surface cannot be acquired the returned Field is inert: it never
// steps, draws or schedules, and Stop on it is a no-op. A nil sched starts a
// running field that only advances when the caller invokes Step.
func Start(canvas Canvas, sched Scheduler, cfg Config, opts ...Option) *Field {
	f := &Field{
		log:     zap.NewNop(),
		overlay: true,
	}
	for _, o := range opts {
		o(f)
	}
	if f.rng == nil {
		f.rng = rand.New(rand.NewSource(time.Now().UnixNano())) // #nosec G404 -- cosmetic only
	}

	var adj []Adjustment
	f.cfg, adj = cfg.Sanitize()
	for _, a := range adj {
		f.log.Debug("particle config clamped", zap.String("class", f.cfg.Class), zap.Stringer("adjustment", a))
		f.events.Add(0, -1, CategoryConfig, KeyClamp, a.String(), 0)
	}

	s, err := acquire(canvas)
	if err != nil {
		f.log.Warn("particle field disabled", zap.String("class", f.cfg.Class), zap.Error(err))
		f.events.Add(0, -1, CategoryLifecycle, KeyDegraded, err.Error(), 0)
		return f
	}
	f.surface = s
	w, h := s.Size()
	f.storeBounds(w, h)

	fw, fh := float64(max(w, 0)), float64(max(h, 0))
	f.pool = make([]Particle, f.cfg.Count)
	for i := range f.pool {
		f.spawn(&f.pool[i], fw, fh)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.running = true
	f.sched = sched
	if f.sched != nil {
		f.pending = f.sched.RequestFrame(f.onFrame)
	}
	f.log.Debug("particle field started",
		zap.String("class", f.cfg.Class),
		zap.Int("count", f.cfg.Count),
		zap.Float64("speed", f.cfg.Speed),
		zap.Int("width", w),
		zap.Int("height", h))
	f.events.Add(0, -1, CategoryLifecycle, KeyStart, f.cfg.Class, float64(f.cfg.Count))
	return f
}

func acquire(canvas Canvas) (Surface, error) {
	if canvas == nil {
		return nil, ErrSurfaceUnavailable
	}
	s, err := canvas.Surface()
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, ErrSurfaceUnavailable
	}
	return s, nil
}

// onFrame is the scheduled callback: one step, then the next request.
func (f *Field) onFrame() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending = 0
	if !f.running {
		return
	}
	f.stepLocked()
	f.pending = f.sched.RequestFrame(f.onFrame)
}

// Step advances the field by exactly one frame and draws it. It does nothing
// on a stopped or inert field.
func (f *Field) Step() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.running {
		return
	}
	f.stepLocked()
}

func (f *Field) stepLocked() {
	w, h := f.Bounds()
	fw, fh := float64(w), float64(h)
	frame := f.frames.Add(1)

	for i := range f.pool {
		p := &f.pool[i]
		p.X += p.VX
		p.Y += p.VY
		p.Age++
		p.X = wrap(p.X, fw)
		p.Y = wrap(p.Y, fh)
		if p.Expired() {
			f.spawn(p, fw, fh)
			f.respawns++
			f.events.AddVerbose(frame, i, CategoryParticle, KeyRespawn, "", float64(p.Lifespan))
		}
	}

	if w <= 0 || h <= 0 {
		return
	}
	f.draw(fw, fh)
}

func (f *Field) draw(fw, fh float64) {
	if f.overlay {
		bg := f.cfg.Background
		f.surface.FillRect(0, 0, fw, fh, color.NRGBA{R: bg.R, G: bg.G, B: bg.B, A: alpha8(f.cfg.TrailAlpha)})
	}
	for i := range f.pool {
		p := &f.pool[i]
		a := p.Opacity() * float64(p.Color.A) / 255
		if a <= 0 {
			continue
		}
		c := color.NRGBA{R: p.Color.R, G: p.Color.G, B: p.Color.B, A: alpha8(a)}
		f.surface.FillCircle(p.X, p.Y, p.Radius, p.Radius*f.cfg.Glow, c)
	}
}

// spawn resamples every attribute of p. Position is uniform over the
// current bounds; a zero dimension pins that coordinate to 0.
func (f *Field) spawn(p *Particle, fw, fh float64) {
	r := f.rng
	c := &f.cfg
	*p = Particle{
		X:           r.Float64() * fw,
		Y:           r.Float64() * fh,
		VX:          (r.Float64() - 0.5) * c.Speed,
		VY:          (r.Float64() - 0.5) * c.Speed,
		Radius:      c.Radius.Min + r.Float64()*(c.Radius.Max-c.Radius.Min),
		BaseOpacity: c.Opacity.Min + r.Float64()*(c.Opacity.Max-c.Opacity.Min),
		Color:       c.Palette[r.Intn(len(c.Palette))],
		Lifespan:    c.Lifespan.Min + r.Intn(c.Lifespan.Max-c.Lifespan.Min+1),
	}
}

// Stop cancels the pending frame, halts the loop and drops the pool. No Step
// runs after Stop returns. Calling it again is a no-op.
func (f *Field) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.running {
		return
	}
	f.running = false
	if f.pending != 0 {
		f.sched.CancelFrame(f.pending)
		f.pending = 0
	}
	f.pool = nil
	f.log.Debug("particle field stopped", zap.String("class", f.cfg.Class), zap.Uint64("frames", f.frames.Load()))
	f.events.Add(f.frames.Load(), -1, CategoryLifecycle, KeyStop, f.cfg.Class, float64(f.frames.Load()))
}

// Resize records new surface bounds. In-flight particles keep their
// positions; the next wrap and respawn use the new bounds. Negative
// dimensions are treated as 0.
func (f *Field) Resize(width, height int) {
	f.storeBounds(width, height)
	w, h := f.Bounds()
	f.events.Add(f.frames.Load(), -1, CategoryBounds, KeyResize, fmt.Sprintf("%dx%d", w, h), 0)
}

func (f *Field) storeBounds(width, height int) {
	w := uint64(uint32(max(width, 0)))
	h := uint64(uint32(max(height, 0)))
	f.bounds.Store(w<<32 | h)
}

// Bounds returns the stored surface dimensions.
func (f *Field) Bounds() (width, height int) {
	b := f.bounds.Load()
	return int(b >> 32), int(b & 0xffffffff)
}

// Running reports whether the field is started and not yet stopped.
func (f *Field) Running() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.running
}

// Len returns the pool size.
func (f *Field) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pool)
}

// Particles returns a copy of the pool.
func (f *Field) Particles() []Particle {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Particle(nil), f.pool...)
}

// Frames returns how many steps have run.
func (f *Field) Frames() uint64 {
	return f.frames.Load()
}

// Respawns returns how many particles have been recycled.
func (f *Field) Respawns() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.respawns
}

// Config returns the sanitized configuration in effect.
func (f *Field) Config() Config {
	return f.cfg
}

func alpha8(a float64) uint8 {
	if !(a > 0) {
		return 0
	}
	if a >= 1 {
		return 255
	}
	return uint8(math.Round(a * 255))
}
