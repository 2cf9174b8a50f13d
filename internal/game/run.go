package game

import (
	"errors"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/iburimskiy/aurora/internal/config"
)

// WindowOptions describes the display surface.
type WindowOptions struct {
	Title          string
	Fullscreen     bool
	MotionInterval time.Duration
}

// Run opens the window and blocks until it is closed or Escape is pressed.
func Run(g ebiten.Game, w WindowOptions) error {
	ebiten.SetWindowSize(config.WindowWidth, config.WindowHeight)
	ebiten.SetWindowTitle(w.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetFullscreen(w.Fullscreen)
	ebiten.SetTPS(TPS(w.MotionInterval))

	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}

// TPS converts the motion tick period into ebiten ticks per second.
func TPS(interval time.Duration) int {
	if interval <= 0 {
		return ebiten.DefaultTPS
	}
	return max(1, int(math.Round(float64(time.Second)/float64(interval))))
}
