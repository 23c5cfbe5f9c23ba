package termfx

import (
	"context"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cineverse/ambientfx/internal/particles"
)

// Host drives a particle layer on a tcell screen: a ticker scheduler steps
// the layer and presents the canvas, and an event pump handles resize and
// quit keys.
type Host struct {
	screen tcell.Screen
	canvas *Canvas
	sched  *particles.TickerScheduler
	opts   []particles.Option
	log    *zap.Logger

	mu      sync.Mutex
	layer   *particles.Layer
	present particles.FrameID
	closed  bool
}

// NewHost wraps an initialised screen. fps ≤ 0 means 30.
func NewHost(screen tcell.Screen, fps int, log *zap.Logger, opts ...particles.Option) *Host {
	if fps <= 0 {
		fps = 30
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Host{
		screen: screen,
		canvas: NewCanvas(screen),
		sched:  particles.NewTickerScheduler(time.Second / time.Duration(fps)),
		opts:   append([]particles.Option{particles.WithLogger(log)}, opts...),
		log:    log,
	}
}

// Canvas returns the host's canvas.
func (h *Host) Canvas() *Canvas {
	return h.canvas
}

// Layer returns the running layer, or nil before Start.
func (h *Host) Layer() *particles.Layer {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.layer
}

// Start begins animating cfgs.
func (h *Host) Start(cfgs []particles.Config) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.layer = particles.StartLayer(h.canvas, h.sched, cfgs, h.opts...)
	if h.present == 0 {
		h.present = h.sched.RequestFrame(h.onPresent)
	}
}

// Reload replaces the running layer with one built from cfgs.
func (h *Host) Reload(cfgs []particles.Config) {
	h.mu.Lock()
	if h.layer != nil {
		h.layer.Stop()
	}
	h.mu.Unlock()
	h.Start(cfgs)
	h.log.Info("particle layer restarted", zap.Int("fields", len(cfgs)))
}

func (h *Host) onPresent() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.present = 0
	if h.closed {
		return
	}
	h.canvas.Present()
	h.present = h.sched.RequestFrame(h.onPresent)
}

// Run pumps terminal events until a quit key, ctx cancellation or screen
// finalisation, then stops the layer, the scheduler and the screen.
func (h *Host) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	events := make(chan tcell.Event, 16)

	g.Go(func() error {
		for {
			ev := h.screen.PollEvent()
			if ev == nil {
				return nil
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return nil
			}
		}
	})

	g.Go(func() error {
		defer h.Close()
		for {
			select {
			case <-ctx.Done():
				return nil
			case ev := <-events:
				if quit := h.handleEvent(ev); quit {
					return nil
				}
			}
		}
	})

	return g.Wait()
}

// handleEvent returns true when the user asked to quit.
func (h *Host) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		h.screen.Sync()
		w, hh := h.screen.Size()
		h.canvas.Resize(w, hh)
		if l := h.Layer(); l != nil {
			l.Resize(w, hh)
		}
		h.log.Debug("terminal resized", zap.Int("width", w), zap.Int("height", hh))
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape, ev.Key() == tcell.KeyCtrlC:
			return true
		case ev.Key() == tcell.KeyRune && ev.Rune() == 'q':
			return true
		}
	}
	return false
}

// Close stops the layer and scheduler and finalises the screen. Safe to call
// more than once.
func (h *Host) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	if h.layer != nil {
		h.layer.Stop()
	}
	if h.present != 0 {
		h.sched.CancelFrame(h.present)
		h.present = 0
	}
	h.mu.Unlock()

	h.sched.Close()
	h.screen.Fini()
}
