// Package avatar holds the idle wandering motion of the floating eyes.
package avatar

import (
	"math"
	"math/rand/v2"
)

// Params tunes the random-walk physics.
type Params struct {
	Friction     float64 // multiplicative velocity decay per tick
	Acceleration float64 // max random velocity change per tick and axis
	MinSpeed     float64 // per-axis speed floor
	EdgeMargin   float64 // distance the avatar keeps from every screen edge
	Radius       float64 // max displacement from the anchor
	InitialSpeed float64 // initial velocity is drawn from [-InitialSpeed, InitialSpeed]
}

// DefaultParams mirrors the feel of the desktop build.
func DefaultParams() Params {
	return Params{
		Friction:     0.98,
		Acceleration: 0.01,
		MinSpeed:     0.1,
		EdgeMargin:   250,
		Radius:       100,
		InitialSpeed: 0.5,
	}
}

// State is the avatar position, velocity and anchor.
type State struct {
	X, Y             float64
	VX, VY           float64
	CenterX, CenterY float64
	Radius           float64
}

// New anchors an avatar at the given point with a random initial velocity.
func New(rng *rand.Rand, centerX, centerY float64, p Params) *State {
	return &State{
		X:       centerX,
		Y:       centerY,
		VX:      uniform(rng, p.InitialSpeed),
		VY:      uniform(rng, p.InitialSpeed),
		CenterX: centerX,
		CenterY: centerY,
		Radius:  p.Radius,
	}
}

// Step advances the avatar by one tick on a screen of the given size.
func (s *State) Step(rng *rand.Rand, p Params, screenW, screenH float64) {
	s.VX += uniform(rng, p.Acceleration)
	s.VY += uniform(rng, p.Acceleration)

	s.VX *= p.Friction
	s.VY *= p.Friction

	s.VX = floorSpeed(s.VX, p.MinSpeed)
	s.VY = floorSpeed(s.VY, p.MinSpeed)

	s.X += s.VX
	s.Y += s.VY

	s.X, s.VX = reflect(s.X, s.VX, s.CenterX, s.Radius, p.EdgeMargin, screenW)
	s.Y, s.VY = reflect(s.Y, s.VY, s.CenterY, s.Radius, p.EdgeMargin, screenH)
}

// Bounds returns the allowed interval on one axis: the anchor band
// intersected with the screen-margin band. An empty intersection collapses
// to the screen midpoint.
func Bounds(center, radius, margin, extent float64) (lo, hi float64) {
	lo = math.Max(center-radius, margin)
	hi = math.Min(center+radius, extent-margin)
	if lo > hi {
		mid := extent / 2
		return mid, mid
	}
	return lo, hi
}

func reflect(pos, vel, center, radius, margin, extent float64) (float64, float64) {
	lo, hi := Bounds(center, radius, margin, extent)
	switch {
	case pos < lo:
		return lo, math.Abs(vel)
	case pos > hi:
		return hi, -math.Abs(vel)
	}
	return pos, vel
}

func floorSpeed(v, floor float64) float64 {
	if math.Abs(v) >= floor {
		return v
	}
	if v > 0 {
		return floor
	}
	return -floor
}

func uniform(rng *rand.Rand, limit float64) float64 {
	return (rng.Float64()*2 - 1) * limit
}
