// Package game is the ebiten front end: it moves the avatar, polls the
// status source and draws the face, indicator and output text.
package game

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"math"
	"math/rand/v2"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"go.uber.org/zap"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/iburimskiy/aurora/internal/avatar"
	"github.com/iburimskiy/aurora/internal/config"
	"github.com/iburimskiy/aurora/internal/scene"
	"github.com/iburimskiy/aurora/internal/status"
)

// Options wires a Game.
type Options struct {
	Motion         avatar.Params
	MotionInterval time.Duration
	PollInterval   time.Duration
	DebugOverlay   bool

	Poller *status.Poller
	Faces  scene.Faces
	// Cue, when set, is called with the face name after every face swap.
	Cue func(face string)
}

type game struct {
	opts      Options
	log       *zap.Logger
	rng       *rand.Rand
	presenter *scene.Presenter

	// motion
	avatar  *avatar.State
	screenW int
	screenH int

	// polling and timing
	poll    *ticker
	frame   uint64
	started time.Time

	// input edge detection
	prevKey map[ebiten.Key]bool

	// visual elements
	face       *ebiten.Image
	indicator  *indicator
	output     string
	hasOutput  bool
	outputFont *text.GoTextFace
	colorPhase float64
}

type indicator struct {
	shownAt uint64
}

// New builds the game and puts the default face up. A missing default face
// is an error: there would be nothing to show.
func New(opts Options, log *zap.Logger) (ebiten.Game, error) {
	src, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		return nil, fmt.Errorf("load output font: %w", err)
	}

	now := time.Now()
	g := &game{
		opts:       opts,
		log:        log.With(zap.String("component", "game")),
		rng:        rand.New(rand.NewPCG(uint64(now.UnixNano()), uint64(now.Unix()))),
		poll:       newTicker(opts.PollInterval),
		started:    now,
		prevKey:    map[ebiten.Key]bool{},
		outputFont: &text.GoTextFace{Source: src, Size: config.OutputFontSize},
	}

	g.presenter = scene.NewPresenter(g, opts.Faces, log)
	if opts.Cue != nil {
		g.presenter.OnFaceChange(opts.Cue)
	}
	if err := g.presenter.ShowDefault(); err != nil {
		return nil, fmt.Errorf("default face: %w", err)
	}
	return g, nil
}

func (g *game) Update() error {
	justPressed := func(k ebiten.Key) bool {
		pressed := ebiten.IsKeyPressed(k)
		jp := pressed && !g.prevKey[k]
		g.prevKey[k] = pressed
		return jp
	}
	if justPressed(ebiten.KeyEscape) || justPressed(ebiten.KeyQ) {
		g.log.Info("exit requested")
		return ebiten.Termination
	}

	g.tick()
	return nil
}

// tick moves the avatar one step and polls the status source whenever a
// poll interval has passed. The avatar waits for the first Layout.
func (g *game) tick() {
	g.frame++
	g.colorPhase += config.ColorShiftSpeed

	if g.avatar != nil {
		g.avatar.Step(g.rng, g.opts.Motion, float64(g.screenW), float64(g.screenH))
	}

	if g.poll.advance(g.opts.MotionInterval) {
		if st, changed := g.opts.Poller.Poll(); changed {
			g.presenter.Apply(st)
		}
	}
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(color.Black)

	g.drawFace(screen)
	g.drawIndicator(screen)
	g.drawOutput(screen)

	if g.opts.DebugOverlay {
		overlay := fmt.Sprintf("TPS %.0f  face %s  rev %016x  up %s",
			ebiten.ActualTPS(), g.presenter.Face(), g.opts.Poller.Revision(), formatDuration(time.Since(g.started)))
		ebitenutil.DebugPrintAt(screen, overlay, 12, 12)
	}
}

// Layout follows the outside size so the canvas always covers the window.
// The avatar is anchored at the screen center whenever the size changes.
func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.screenW || outsideHeight != g.screenH {
		g.screenW, g.screenH = outsideWidth, outsideHeight
		g.avatar = avatar.New(g.rng, float64(outsideWidth)/2, float64(outsideHeight)/2, g.opts.Motion)
		g.log.Debug("screen resized", zap.Int("width", outsideWidth), zap.Int("height", outsideHeight))
	}
	return outsideWidth, outsideHeight
}

func (g *game) drawFace(screen *ebiten.Image) {
	if g.face == nil || g.avatar == nil {
		return
	}
	b := g.face.Bounds()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(g.avatar.X-float64(b.Dx())/2, g.avatar.Y-float64(b.Dy())/2)
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(g.face, op)
}

// drawIndicator spins a ring of dots in the top-right corner, the head dot
// brightest and the tail fading out.
func (g *game) drawIndicator(screen *ebiten.Image) {
	if g.indicator == nil {
		return
	}

	centerX := float64(g.screenW) - config.IndicatorInset
	centerY := float64(config.IndicatorInset)
	spin := float64(g.frame-g.indicator.shownAt) * config.IndicatorSpeed

	// fade in over the first half second
	fadeIn := clamp01(float64(g.frame-g.indicator.shownAt) / 30)

	for i := 0; i < config.IndicatorDots; i++ {
		angle := spin + float64(i)*(2*math.Pi/config.IndicatorDots)
		x := centerX + math.Cos(angle)*config.IndicatorRadius
		y := centerY + math.Sin(angle)*config.IndicatorRadius

		hue := (g.colorPhase + float64(i)*0.02) * 360
		r, gv, b := hsvToRgb(hue, 0.7, 1.0)
		alpha := clamp01(float64(i+1)/config.IndicatorDots) * fadeIn
		dot := color.RGBA{
			R: uint8(float64(r) * alpha),
			G: uint8(float64(gv) * alpha),
			B: uint8(float64(b) * alpha),
			A: uint8(255 * alpha),
		}
		vector.DrawFilledCircle(screen, float32(x), float32(y), config.IndicatorDotSize, dot, true)
	}
}

func (g *game) drawOutput(screen *ebiten.Image) {
	if !g.hasOutput || g.output == "" {
		return
	}
	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(g.screenW)/2, float64(g.screenH-config.OutputBottomGap))
	op.ColorScale.ScaleWithColor(color.White)
	op.LineSpacing = config.OutputFontSize * 1.4
	op.PrimaryAlign = text.AlignCenter
	op.SecondaryAlign = text.AlignCenter
	text.Draw(screen, g.output, g.outputFont, op)
}

// SetFace implements scene.Surface.
func (g *game) SetFace(name string, img image.Image) {
	if g.face != nil {
		g.face.Deallocate()
	}
	g.face = ebiten.NewImageFromImage(img)
}

// ShowIndicator implements scene.Surface.
func (g *game) ShowIndicator() {
	g.indicator = &indicator{shownAt: g.frame}
}

// HideIndicator implements scene.Surface.
func (g *game) HideIndicator() {
	g.indicator = nil
}

// SetOutput implements scene.Surface.
func (g *game) SetOutput(s string) {
	g.output = s
	g.hasOutput = true
}
