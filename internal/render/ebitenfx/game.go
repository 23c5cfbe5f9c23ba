package ebitenfx

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"go.uber.org/zap"

	"github.com/cineverse/ambientfx/internal/particles"
)

// Game implements ebiten.Game around one particle layer.
//
// ebiten calls Update once per tick; Update flushes the frame queue, which
// is where the layer steps and draws into the offscreen canvas. Draw only
// blits that canvas and the optional HUD.
type Game struct {
	canvas  *Canvas
	queue   *particles.FrameQueue
	layer   *particles.Layer
	configs []particles.Config
	opts    []particles.Option
	log     *zap.Logger

	width, height int
	backdrop      color.RGBA

	showHUD  bool
	prevKeys map[ebiten.Key]bool

	// Replacement configs from the file watcher, applied in Update.
	reload chan []particles.Config
}

// New builds a w×h game and starts a layer from configs.
func New(w, h int, configs []particles.Config, log *zap.Logger, opts ...particles.Option) *Game {
	if log == nil {
		log = zap.NewNop()
	}
	g := &Game{
		canvas:   NewCanvas(w, h),
		queue:    particles.NewFrameQueue(),
		configs:  configs,
		opts:     append([]particles.Option{particles.WithLogger(log)}, opts...),
		log:      log,
		width:    w,
		height:   h,
		backdrop: color.RGBA{R: 5, G: 5, B: 12, A: 255},
		prevKeys: make(map[ebiten.Key]bool),
		reload:   make(chan []particles.Config, 1),
	}
	if len(configs) > 0 {
		bg := configs[0].Background
		if bg != (color.RGBA{}) {
			g.backdrop = bg
		}
	}
	if img := g.canvas.Image(); img != nil {
		img.Fill(g.backdrop)
	}
	g.startLayer()
	return g
}

func (g *Game) startLayer() {
	g.layer = particles.StartLayer(g.canvas, g.queue, g.configs, g.opts...)
}

// Reload swaps in new configs at the next Update. Safe to call from any
// goroutine; only the latest pending set is kept.
func (g *Game) Reload(configs []particles.Config) {
	select {
	case <-g.reload:
	default:
	}
	g.reload <- configs
}

// Update implements ebiten.Game.
func (g *Game) Update() error {
	if quit := g.handleInput(); quit {
		return ebiten.Termination
	}
	select {
	case cfgs := <-g.reload:
		g.layer.Stop()
		g.configs = cfgs
		g.startLayer()
		g.log.Info("particle layer restarted", zap.Int("fields", len(cfgs)))
	default:
	}
	g.queue.Flush()
	return nil
}

// handleInput processes edge-triggered keys. Returns true on quit.
func (g *Game) handleInput() bool {
	currentKeys := map[ebiten.Key]bool{}
	for _, k := range []ebiten.Key{ebiten.KeyH, ebiten.KeyEscape} {
		currentKeys[k] = ebiten.IsKeyPressed(k)
	}
	pressed := func(k ebiten.Key) bool { return currentKeys[k] && !g.prevKeys[k] }

	if pressed(ebiten.KeyH) {
		g.showHUD = !g.showHUD
	}
	quit := pressed(ebiten.KeyEscape)
	g.prevKeys = currentKeys
	return quit
}

// Draw implements ebiten.Game.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(g.backdrop)
	if img := g.canvas.Image(); img != nil {
		screen.DrawImage(img, nil)
	}
	if g.showHUD {
		g.drawHUD(screen)
	}
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	y := 6
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("fps %.0f  tps %.0f  %dx%d", ebiten.ActualFPS(), ebiten.ActualTPS(), g.width, g.height), 6, y)
	for _, f := range g.layer.Fields() {
		y += 14
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%-8s n=%d frames=%d respawns=%d", f.Config().Class, f.Len(), f.Frames(), f.Respawns()), 6, y)
	}
}

// Layout implements ebiten.Game. A changed outside size resizes the canvas
// and forwards the new bounds to the layer.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.width || outsideHeight != g.height {
		g.width, g.height = outsideWidth, outsideHeight
		g.canvas.Resize(outsideWidth, outsideHeight)
		g.layer.Resize(outsideWidth, outsideHeight)
		if !g.layer.Running() && g.canvas.Image() != nil {
			g.startLayer()
		}
	}
	return g.width, g.height
}

// Close stops the layer.
func (g *Game) Close() {
	g.layer.Stop()
}
