package physics

import "chosenoffset.com/raylight/internal/core/shadows"

// SegmentWorld is a World made of static wall segments, for tile maps that
// have no rigid-body simulation. Every segment is an edge fixture.
type SegmentWorld struct {
	edges []*edgeFixture
}

// NewSegmentWorld builds a world from wall segments sharing one shadow payload.
func NewSegmentWorld(segments []shadows.Segment, shadow *ShadowDescriptor) *SegmentWorld {
	w := &SegmentWorld{edges: make([]*edgeFixture, 0, len(segments))}
	for _, seg := range segments {
		w.edges = append(w.edges, &edgeFixture{seg: seg, shadow: shadow})
	}
	return w
}

// RayCast returns the closest segment crossed by origin->target.
func (w *SegmentWorld) RayCast(origin, target shadows.Point, skip RayFilter) (RayHit, bool) {
	best := RayHit{Point: target, Fraction: 1}
	found := false

	dx := target.X - origin.X
	dy := target.Y - origin.Y
	for _, e := range w.edges {
		if skip != nil && skip(e) {
			continue
		}
		hit, frac, p := shadows.RaySegmentIntersection(origin, dx, dy, e.seg)
		if !hit || frac > 1 {
			continue
		}
		if !found || frac < best.Fraction {
			best = RayHit{Point: p, Fraction: frac, Fixture: e}
			found = true
		}
	}
	return best, found
}

// QueryAABB visits every segment whose bounds overlap b.
func (w *SegmentWorld) QueryAABB(b shadows.Bounds, fn func(Fixture) bool) {
	for _, e := range w.edges {
		eb := shadows.EmptyBounds()
		eb.Extend(e.seg.A.X, e.seg.A.Y)
		eb.Extend(e.seg.B.X, e.seg.B.Y)
		if !eb.Overlaps(b) {
			continue
		}
		if !fn(e) {
			return
		}
	}
}

type edgeFixture struct {
	seg    shadows.Segment
	shadow *ShadowDescriptor
}

func (e *edgeFixture) Type() ShapeType { return ShapeEdge }

func (e *edgeFixture) Body() Body { return staticBody{} }

func (e *edgeFixture) Vertices(dst []shadows.Point) []shadows.Point {
	return append(dst, e.seg.A, e.seg.B)
}

func (e *edgeFixture) Circle() (shadows.Point, float64) { return shadows.Point{}, 0 }

func (e *edgeFixture) Contains(shadows.Point) bool { return false }

func (e *edgeFixture) Sensor() bool { return false }

func (e *edgeFixture) Shadow() *ShadowDescriptor { return e.shadow }

// staticBody is the implicit ground body of a SegmentWorld.
type staticBody struct{}

func (staticBody) Position() shadows.Point { return shadows.Point{} }
func (staticBody) Angle() float64          { return 0 }
func (staticBody) Destroyed() bool         { return false }
