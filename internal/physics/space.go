package physics

import (
	"math"

	"github.com/jakecoffman/cp"

	"chosenoffset.com/raylight/internal/core/shadows"
)

// Space adapts a Chipmunk2D space to the World interface.
type Space struct {
	space    *cp.Space
	fixtures map[*cp.Shape]*cpFixture
	stamp    uint64 // incremented per AABB query to report chains once
}

// NewSpace creates an empty space with no gravity.
func NewSpace() *Space {
	return &Space{
		space:    cp.NewSpace(),
		fixtures: make(map[*cp.Shape]*cpFixture),
	}
}

// CP exposes the underlying Chipmunk space for hosts that simulate with it.
func (s *Space) CP() *cp.Space {
	return s.space
}

// Step advances the simulation by dt seconds.
func (s *Space) Step(dt float64) {
	s.space.Step(dt)
}

// CPBody wraps a Chipmunk body so lights can follow it.
type CPBody struct {
	body      *cp.Body
	space     *Space
	shapes    []*cp.Shape
	destroyed bool
}

// NewStaticBody adds an immovable body at (x, y) rotated by angle radians.
func (s *Space) NewStaticBody(x, y, angle float64) *CPBody {
	return s.addBody(cp.NewStaticBody(), x, y, angle)
}

// NewKinematicBody adds a body that is moved by velocity, not by forces.
func (s *Space) NewKinematicBody(x, y, angle float64) *CPBody {
	return s.addBody(cp.NewKinematicBody(), x, y, angle)
}

// NewDynamicBody adds a simulated body with the given mass and moment.
func (s *Space) NewDynamicBody(mass, moment, x, y float64) *CPBody {
	return s.addBody(cp.NewBody(mass, moment), x, y, 0)
}

func (s *Space) addBody(body *cp.Body, x, y, angle float64) *CPBody {
	body.SetPosition(cp.Vector{X: x, Y: y})
	body.SetAngle(angle)
	s.space.AddBody(body)
	return &CPBody{body: body, space: s}
}

// Position returns the body origin in world space.
func (b *CPBody) Position() shadows.Point {
	p := b.body.Position()
	return shadows.Point{X: p.X, Y: p.Y}
}

// Angle returns the body rotation in radians.
func (b *CPBody) Angle() float64 {
	return b.body.Angle()
}

// Destroyed reports whether RemoveBody has been called for this body.
func (b *CPBody) Destroyed() bool {
	return b.destroyed
}

// CP exposes the underlying Chipmunk body.
func (b *CPBody) CP() *cp.Body {
	return b.body
}

// SetTransform teleports the body and refreshes its shapes in the spatial index.
func (b *CPBody) SetTransform(x, y, angle float64) {
	if b.destroyed {
		return
	}
	b.body.SetPosition(cp.Vector{X: x, Y: y})
	b.body.SetAngle(angle)
	// cp only reindexes static shapes on insertion.
	for _, shape := range b.shapes {
		b.space.space.RemoveShape(shape)
		b.space.space.AddShape(shape)
	}
}

// SetVelocity sets linear and angular velocity for kinematic or dynamic bodies.
func (b *CPBody) SetVelocity(vx, vy, w float64) {
	b.body.SetVelocity(vx, vy)
	b.body.SetAngularVelocity(w)
}

func (b *CPBody) toWorld(p shadows.Point) shadows.Point {
	v := b.body.LocalToWorld(cp.Vector{X: p.X, Y: p.Y})
	return shadows.Point{X: v.X, Y: v.Y}
}

// RemoveBody takes a body and all its shapes out of the space. Lights still
// attached to it keep their last position.
func (s *Space) RemoveBody(b *CPBody) {
	if b.destroyed {
		return
	}
	for _, shape := range b.shapes {
		s.space.RemoveShape(shape)
		delete(s.fixtures, shape)
	}
	b.shapes = nil
	s.space.RemoveBody(b.body)
	b.destroyed = true
}

// AddBox attaches a w×h rectangle centered on the body origin.
func (s *Space) AddBox(b *CPBody, w, h float64, shadow *ShadowDescriptor) Fixture {
	hw, hh := w/2, h/2
	local := []shadows.Point{{X: -hw, Y: -hh}, {X: hw, Y: -hh}, {X: hw, Y: hh}, {X: -hw, Y: hh}}
	shape := cp.NewBox(b.body, w, h, 0)
	return s.attach(b, &cpFixture{kind: ShapePolygon, local: local, shadow: shadow}, shape)
}

// AddPolygon attaches a convex polygon given in body-local coordinates.
// Clockwise input is reversed so Vertices always reports counter-clockwise order.
func (s *Space) AddPolygon(b *CPBody, verts []shadows.Point, shadow *ShadowDescriptor) Fixture {
	local := make([]shadows.Point, len(verts))
	copy(local, verts)
	if shadows.SignedArea(local) < 0 {
		for i, j := 0, len(local)-1; i < j; i, j = i+1, j-1 {
			local[i], local[j] = local[j], local[i]
		}
	}

	cverts := make([]cp.Vector, len(local))
	for i, p := range local {
		cverts[i] = cp.Vector{X: p.X, Y: p.Y}
	}
	shape := cp.NewPolyShape(b.body, len(cverts), cverts, cp.NewTransformIdentity(), 0)
	return s.attach(b, &cpFixture{kind: ShapePolygon, local: local, shadow: shadow}, shape)
}

// AddCircle attaches a circle at offset from the body origin.
func (s *Space) AddCircle(b *CPBody, radius float64, offset shadows.Point, shadow *ShadowDescriptor) Fixture {
	shape := cp.NewCircle(b.body, radius, cp.Vector{X: offset.X, Y: offset.Y})
	f := &cpFixture{kind: ShapeCircle, local: []shadows.Point{offset}, radius: radius, shadow: shadow}
	return s.attach(b, f, shape)
}

// AddEdge attaches a single line segment.
func (s *Space) AddEdge(b *CPBody, p1, p2 shadows.Point, shadow *ShadowDescriptor) Fixture {
	shape := cp.NewSegment(b.body, cp.Vector{X: p1.X, Y: p1.Y}, cp.Vector{X: p2.X, Y: p2.Y}, 0)
	return s.attach(b, &cpFixture{kind: ShapeEdge, local: []shadows.Point{p1, p2}, shadow: shadow}, shape)
}

// AddChain attaches a polyline built from one Chipmunk segment per link. All
// links report as a single chain fixture. A looped chain closes back to its
// first point and contains its interior.
func (s *Space) AddChain(b *CPBody, points []shadows.Point, loop bool, shadow *ShadowDescriptor) Fixture {
	local := make([]shadows.Point, len(points))
	copy(local, points)
	f := &cpFixture{kind: ShapeChain, local: local, loop: loop, shadow: shadow}

	links := len(local) - 1
	if loop {
		links = len(local)
	}
	shapes := make([]*cp.Shape, 0, links)
	for i := 0; i < links; i++ {
		p1 := local[i]
		p2 := local[(i+1)%len(local)]
		shapes = append(shapes, cp.NewSegment(b.body, cp.Vector{X: p1.X, Y: p1.Y}, cp.Vector{X: p2.X, Y: p2.Y}, 0))
	}
	return s.attach(b, f, shapes...)
}

// SetSensor toggles whether a fixture blocks light.
func (s *Space) SetSensor(f Fixture, sensor bool) {
	cf, ok := f.(*cpFixture)
	if !ok {
		return
	}
	for _, shape := range cf.shapes {
		shape.SetSensor(sensor)
	}
}

func (s *Space) attach(b *CPBody, f *cpFixture, shapes ...*cp.Shape) Fixture {
	f.body = b
	f.shapes = shapes
	for _, shape := range shapes {
		shape.UserData = f
		s.space.AddShape(shape)
		s.fixtures[shape] = f
	}
	b.shapes = append(b.shapes, shapes...)
	return f
}

// RayCast implements World using a Chipmunk segment query.
func (s *Space) RayCast(origin, target shadows.Point, skip RayFilter) (RayHit, bool) {
	best := RayHit{Point: target, Fraction: 1}
	found := false

	start := cp.Vector{X: origin.X, Y: origin.Y}
	end := cp.Vector{X: target.X, Y: target.Y}
	s.space.SegmentQuery(start, end, 0, cp.SHAPE_FILTER_ALL,
		func(shape *cp.Shape, point, normal cp.Vector, alpha float64, data interface{}) {
			f := s.fixtures[shape]
			if f == nil || shape.Sensor() || math.IsNaN(alpha) {
				return
			}
			if skip != nil && skip(f) {
				return
			}
			if alpha < best.Fraction || !found {
				best = RayHit{Point: shadows.Point{X: point.X, Y: point.Y}, Fraction: alpha, Fixture: f}
				found = true
			}
		}, nil)

	return best, found
}

// QueryAABB implements World using a Chipmunk bounding-box query.
func (s *Space) QueryAABB(b shadows.Bounds, fn func(Fixture) bool) {
	s.stamp++
	stamp := s.stamp
	stopped := false

	bb := cp.BB{L: b.MinX, B: b.MinY, R: b.MaxX, T: b.MaxY}
	s.space.BBQuery(bb, cp.SHAPE_FILTER_ALL, func(shape *cp.Shape, data interface{}) {
		if stopped {
			return
		}
		f := s.fixtures[shape]
		if f == nil || f.stamp == stamp {
			return
		}
		f.stamp = stamp
		if !fn(f) {
			stopped = true
		}
	}, nil)
}

// cpFixture is one logical fixture; chains own several Chipmunk segments.
type cpFixture struct {
	body   *CPBody
	shapes []*cp.Shape
	kind   ShapeType
	local  []shadows.Point
	radius float64
	loop   bool
	shadow *ShadowDescriptor
	stamp  uint64
}

func (f *cpFixture) Type() ShapeType { return f.kind }

func (f *cpFixture) Body() Body { return f.body }

func (f *cpFixture) Vertices(dst []shadows.Point) []shadows.Point {
	if f.kind == ShapeCircle {
		return dst
	}
	for _, p := range f.local {
		dst = append(dst, f.body.toWorld(p))
	}
	return dst
}

func (f *cpFixture) Circle() (shadows.Point, float64) {
	if f.kind != ShapeCircle {
		return shadows.Point{}, 0
	}
	return f.body.toWorld(f.local[0]), f.radius
}

func (f *cpFixture) Contains(p shadows.Point) bool {
	switch f.kind {
	case ShapeCircle:
		c, r := f.Circle()
		return shadows.DistanceSq(c, p) < r*r
	case ShapePolygon:
		var buf [8]shadows.Point
		return shadows.PointInPolygon(p, f.Vertices(buf[:0]))
	case ShapeChain:
		if !f.loop {
			return false
		}
		return shadows.PointInPolygon(p, f.Vertices(nil))
	default:
		return false
	}
}

func (f *cpFixture) Sensor() bool {
	return len(f.shapes) > 0 && f.shapes[0].Sensor()
}

func (f *cpFixture) Shadow() *ShadowDescriptor { return f.shadow }
