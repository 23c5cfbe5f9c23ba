package particles

import (
	"sync"

	"go.uber.org/zap"
)

// Layer stacks several fields on one surface and advances them from a single
// frame callback, bottom first. Only the bottom field paints the trail
// overlay, so the stack fades once per frame.
type Layer struct {
	mu      sync.Mutex
	fields  []*Field
	sched   Scheduler
	pending FrameID
	running bool
	log     *zap.Logger
}

// StartLayer acquires the surface once and starts one field per config.
// opts apply to every field. If the surface is unavailable every field is
// inert and the layer never schedules.
func StartLayer(canvas Canvas, sched Scheduler, cfgs []Config, opts ...Option) *Layer {
	l := &Layer{log: zap.NewNop()}
	probe := &Field{}
	for _, o := range opts {
		o(probe)
	}
	if probe.log != nil {
		l.log = probe.log
	}

	s, err := acquire(canvas)
	shared := CanvasFunc(func() (Surface, error) { return s, err })
	for i, cfg := range cfgs {
		fieldOpts := append([]Option(nil), opts...)
		if probe.rng != nil {
			// One stream for the whole stack; WithSeed would otherwise
			// give every field the same sequence.
			fieldOpts = append(fieldOpts, WithRand(probe.rng))
		}
		if i > 0 {
			fieldOpts = append(fieldOpts, withoutOverlay())
		}
		l.fields = append(l.fields, Start(shared, nil, cfg, fieldOpts...))
	}
	if err != nil {
		return l
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.running = true
	l.sched = sched
	if l.sched != nil {
		l.pending = l.sched.RequestFrame(l.onFrame)
	}
	l.log.Debug("particle layer started", zap.Int("fields", len(l.fields)))
	return l
}

func (l *Layer) onFrame() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pending = 0
	if !l.running {
		return
	}
	l.stepLocked()
	l.pending = l.sched.RequestFrame(l.onFrame)
}

// Step advances every field by one frame.
func (l *Layer) Step() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.running {
		return
	}
	l.stepLocked()
}

func (l *Layer) stepLocked() {
	for _, f := range l.fields {
		f.Step()
	}
}

// Stop cancels the pending frame and stops every field. Idempotent.
func (l *Layer) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.running {
		return
	}
	l.running = false
	if l.pending != 0 {
		l.sched.CancelFrame(l.pending)
		l.pending = 0
	}
	for _, f := range l.fields {
		f.Stop()
	}
	l.log.Debug("particle layer stopped")
}

// Resize forwards new bounds to every field.
func (l *Layer) Resize(width, height int) {
	for _, f := range l.fields {
		f.Resize(width, height)
	}
}

// Running reports whether the layer is scheduling frames.
func (l *Layer) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

// Fields returns the stacked fields, bottom first.
func (l *Layer) Fields() []*Field {
	return append([]*Field(nil), l.fields...)
}
