// Package physics describes the collision queries the light engine needs and
// provides two implementations: a Chipmunk2D space and a static wall-segment world.
package physics

import "chosenoffset.com/raylight/internal/core/shadows"

// ShapeType identifies the collision shape behind a fixture.
type ShapeType int

const (
	ShapePolygon ShapeType = iota
	ShapeCircle
	ShapeEdge
	ShapeChain
)

func (t ShapeType) String() string {
	switch t {
	case ShapePolygon:
		return "polygon"
	case ShapeCircle:
		return "circle"
	case ShapeEdge:
		return "edge"
	case ShapeChain:
		return "chain"
	default:
		return "unknown"
	}
}

// Body is the part of a rigid body a light can follow.
type Body interface {
	Position() shadows.Point
	Angle() float64
	// Destroyed reports whether the body has been removed from its world.
	Destroyed() bool
}

// Fixture is a single collision shape attached to a body.
type Fixture interface {
	Type() ShapeType
	Body() Body
	// Vertices appends the world-space outline to dst. Polygons are
	// counter-clockwise; edges yield two points; chains yield every link point.
	Vertices(dst []shadows.Point) []shadows.Point
	// Circle returns the world-space center and radius of a circle fixture.
	Circle() (shadows.Point, float64)
	// Contains reports whether p lies strictly inside the fixture. Open shapes contain nothing.
	Contains(p shadows.Point) bool
	Sensor() bool
	// Shadow returns the shadow payload, or nil when the fixture casts no dynamic shadow.
	Shadow() *ShadowDescriptor
}

// RayHit is the nearest intersection reported by World.RayCast.
type RayHit struct {
	Point    shadows.Point
	Fraction float64
	Fixture  Fixture
}

// RayFilter returns true for fixtures a ray should pass through.
type RayFilter func(Fixture) bool

// World is the collision capability the light engine consumes.
// Both queries are synchronous; callbacks run before the call returns.
type World interface {
	// RayCast reports the nearest non-sensor hit between origin and target.
	// Fraction is in [0, 1] measured along origin->target.
	RayCast(origin, target shadows.Point, skip RayFilter) (RayHit, bool)
	// QueryAABB calls fn for every fixture whose bounds overlap b, each once.
	// Returning false stops the query.
	QueryAABB(b shadows.Bounds, fn func(Fixture) bool)
}
