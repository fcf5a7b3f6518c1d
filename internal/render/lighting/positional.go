package lighting

import (
	"math"

	"chosenoffset.com/raylight/internal/core/shadows"
	"chosenoffset.com/raylight/internal/physics"
)

// PositionalLight casts rays from one point, either all the way around (point
// light) or across a cone centred on its direction.
type PositionalLight struct {
	lightBase
	cone float64 // half aperture in radians, cone lights only
}

// NewPointLight creates a light that shines in every direction from (x, y).
func NewPointLight(m *Manager, rays int, c Color, distance, x, y float64) (*PositionalLight, error) {
	b, err := newLightBase(m, KindPoint, rays, c, distance, x, y, 0)
	if err != nil {
		return nil, err
	}
	l := &PositionalLight{lightBase: b}
	m.add(l)
	return l, nil
}

// NewConeLight creates a light shining from (x, y) toward direction, spreading
// cone radians to either side.
func NewConeLight(m *Manager, rays int, c Color, distance, x, y, direction, cone float64) (*PositionalLight, error) {
	b, err := newLightBase(m, KindCone, rays, c, distance, x, y, direction)
	if err != nil {
		return nil, err
	}
	l := &PositionalLight{lightBase: b}
	l.SetConeDegree(cone)
	m.add(l)
	return l, nil
}

// ConeDegree returns the half aperture of a cone light in radians.
func (l *PositionalLight) ConeDegree() float64 { return l.cone }

// SetConeDegree sets the half aperture, clamped to [0, π].
func (l *PositionalLight) SetConeDegree(cone float64) {
	l.cone = math.Min(math.Max(cone, 0), math.Pi)
	l.dirty = true
}

// AttachToBody makes the light follow body, offset in body space and rotated
// by angle relative to the body. A nil body detaches the light.
func (l *PositionalLight) AttachToBody(body physics.Body, offsetX, offsetY, angle float64) {
	if body == nil {
		l.body = nil
		return
	}
	l.attach(body, shadows.Point{X: offsetX, Y: offsetY}, angle)
	l.followBody()
}

func (l *PositionalLight) update() bool {
	l.followBody()
	if l.dirty {
		l.setEndPoints()
	}
	if !l.prepare() {
		return false
	}
	l.castRays()
	return true
}

func (l *PositionalLight) setEndPoints() {
	n := l.rayCount
	for i := 0; i < n; i++ {
		var angle float64
		if l.kind == KindCone {
			angle = l.direction + l.cone - 2*l.cone*float64(i)/float64(n-1)
		} else {
			angle = l.direction + 2*math.Pi*float64(i)/float64(n)
		}
		sin, cos := math.Sincos(angle)
		l.sx[i] = l.pos.X
		l.sy[i] = l.pos.Y
		l.ex[i] = l.pos.X + l.distance*cos
		l.ey[i] = l.pos.Y + l.distance*sin
	}
}

func (l *PositionalLight) draw(batch *Batch) {
	l.setBatchParams(batch, l.pos, l.height)
	center := MeshVertex{X: float32(l.pos.X), Y: float32(l.pos.Y), Color: l.packed, S: 1}
	a := l.manager.arena
	a.rim = a.rim[:0]
	for i := 0; i < l.rayCount; i++ {
		a.rim = append(a.rim, MeshVertex{
			X:     float32(l.mx[i]),
			Y:     float32(l.my[i]),
			Color: l.packed,
			S:     float32(1 - l.f[i]),
		})
	}
	closed := l.kind == KindPoint
	batch.Fan(center, a.rim, closed)

	// pseudo-3D replaces the penumbra with the dynamic shadow pass
	if l.softShadowsEnabled() && !l.manager.pseudo3d {
		l.drawSoftShadows(batch, closed)
	}
}

func (l *PositionalLight) drawDynamicShadows(batch *Batch) {
	l.setBatchParams(batch, l.pos, l.height)
	l.manager.castShadows(batch, &l.lightBase, l)
}

// Contains reports whether (x, y) lies in the lit fan.
func (l *PositionalLight) Contains(x, y float64) bool {
	p := shadows.Point{X: x, Y: y}
	if !l.bounds.Contains(x, y) || shadows.DistanceSq(p, l.pos) > l.distance*l.distance {
		return false
	}
	return shadows.PointInPolygon(p, l.hitPolygon(true))
}

func (l *PositionalLight) shadowSource(physics.Fixture) shadows.Point { return l.pos }

func (l *PositionalLight) extrude(src, v shadows.Point, d *physics.ShadowDescriptor) (shadows.Point, float64, float64) {
	return radialExtrude(src, v, d, l.height, l.distance)
}

func (l *PositionalLight) reaches(p shadows.Point) bool {
	if shadows.DistanceSq(p, l.pos) > l.distance*l.distance {
		return false
	}
	if l.kind != KindCone {
		return true
	}
	rel := p.Sub(l.pos)
	if rel.Len() == 0 {
		return true
	}
	diff := math.Remainder(math.Atan2(rel.Y, rel.X)-l.direction, 2*math.Pi)
	return math.Abs(diff) <= l.cone
}

func (l *PositionalLight) roofHeight() float64 { return l.height }

// radialExtrude pushes v away from src by the descriptor's shadow length and
// returns the far point with the light fractions at both ends.
func radialExtrude(src, v shadows.Point, d *physics.ShadowDescriptor, height, distance float64) (shadows.Point, float64, float64) {
	rel := v.Sub(src)
	dist := rel.Len()
	length := d.Limit(dist, height, distance)
	far := v.Add(rel.WithLength(length))
	f1 := 1 - dist/distance
	f2 := 1 - (dist+length)/distance
	return far, f1, f2
}
