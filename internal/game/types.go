package game

import (
	"chosenoffset.com/raylight/internal/core/shadows"
	"chosenoffset.com/raylight/internal/physics"
)

// Player is the body the torch is mounted on.
type Player struct {
	Body   *physics.CPBody
	Speed  float64 // world units per second
	Radius float64
	Facing float64 // radians, y up
}

// Camera tracks the lower-left corner of the visible world rectangle.
type Camera struct {
	X, Y  float64
	Speed float64
}

// View returns the world rectangle seen through a w×h world-unit window.
func (c Camera) View(w, h float64) shadows.Bounds {
	return shadows.Bounds{MinX: c.X, MinY: c.Y, MaxX: c.X + w, MaxY: c.Y + h}
}

// Message represents an on-screen message that fades over time.
type Message struct {
	Text     string
	TimeLeft float64 // Seconds remaining
	MaxTime  float64 // Initial duration
}

// Crate is a pushable box; Pillar a fixed round column.
type Crate struct {
	Body    *physics.CPBody
	Fixture physics.Fixture
}

type Pillar struct {
	Fixture physics.Fixture
}
