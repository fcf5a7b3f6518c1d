package lighting

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"

	"chosenoffset.com/raylight/internal/core/shadows"
	"chosenoffset.com/raylight/internal/physics"
)

// ChainLight emits rays from along a polyline, all leaving the same side of it.
// The chain is stored in local space and placed by the light's position and direction.
type ChainLight struct {
	lightBase
	rayDirection float64 // +1 rays leave the left side of the chain, -1 the right

	chain      []r2.Vec
	world      []r2.Vec
	segAngles  []float64
	segLengths []float64
	segRays    []int
}

// NewChainLight creates a light along points. rayDirection picks the side the
// rays leave from: positive for the left of the walking direction, negative for the right.
func NewChainLight(m *Manager, rays int, c Color, distance float64, rayDirection int, points []shadows.Point) (*ChainLight, error) {
	if len(points) < 2 {
		return nil, ErrInvalidChain
	}
	b, err := newLightBase(m, KindChain, rays, c, distance, 0, 0, 0)
	if err != nil {
		return nil, err
	}
	l := &ChainLight{lightBase: b, rayDirection: 1}
	if rayDirection < 0 {
		l.rayDirection = -1
	}
	if err := l.SetChain(points); err != nil {
		return nil, err
	}
	m.add(l)
	return l, nil
}

// SetChain replaces the polyline.
func (l *ChainLight) SetChain(points []shadows.Point) error {
	if len(points) < 2 {
		return ErrInvalidChain
	}
	l.chain = l.chain[:0]
	for _, p := range points {
		l.chain = append(l.chain, r2.Vec{X: p.X, Y: p.Y})
	}
	k := len(points) - 1
	l.segAngles = make([]float64, k)
	l.segLengths = make([]float64, k)
	l.segRays = make([]int, k)
	l.dirty = true
	return nil
}

// SegmentRays returns how many rays each chain segment received in the last update.
func (l *ChainLight) SegmentRays() []int { return l.segRays }

// AttachToBody places the chain in body space, offset and rotated by angle.
func (l *ChainLight) AttachToBody(body physics.Body, offsetX, offsetY, angle float64) {
	if body == nil {
		l.body = nil
		return
	}
	l.attach(body, shadows.Point{X: offsetX, Y: offsetY}, angle)
	l.followBody()
}

func (l *ChainLight) update() bool {
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

func (l *ChainLight) setEndPoints() {
	origin := r2.Vec{X: l.pos.X, Y: l.pos.Y}
	l.world = l.world[:0]
	for _, p := range l.chain {
		l.world = append(l.world, r2.Add(r2.Rotate(p, l.direction, r2.Vec{}), origin))
	}

	k := len(l.world) - 1
	for i := 0; i < k; i++ {
		seg := r2.Sub(l.world[i+1], l.world[i])
		l.segLengths[i] = r2.Norm(seg)
		normal := r2.Rotate(seg, l.rayDirection*math.Pi/2, r2.Vec{})
		l.segAngles[i] = math.Atan2(normal.Y, normal.X)
	}
	l.fixDegenerateAngles()

	remainingLen := floats.Sum(l.segLengths)
	remaining := l.rayCount
	ray := 0
	for i := 0; i < k; i++ {
		prev := l.segAngles[max(i-1, 0)]
		cur := l.segAngles[i]
		next := l.segAngles[min(i+1, k-1)]
		startAngle := slerpAngle(prev, cur, 0.5)
		endAngle := slerpAngle(cur, next, 0.5)

		var segRays int
		switch {
		case i == k-1:
			segRays = remaining
		case remainingLen > 0:
			segRays = int(math.Round(float64(remaining) * l.segLengths[i] / remainingLen))
		default:
			segRays = int(math.Round(float64(remaining) / float64(k-i)))
		}
		segRays = min(segRays, remaining)
		l.segRays[i] = segRays

		for j := 0; j < segRays; j++ {
			t := segmentPosition(j, segRays, i == k-1)
			p := r2.Add(l.world[i], r2.Scale(t, r2.Sub(l.world[i+1], l.world[i])))
			sin, cos := math.Sincos(slerpAngle(startAngle, endAngle, t))
			l.sx[ray] = p.X
			l.sy[ray] = p.Y
			l.ex[ray] = p.X + l.distance*cos
			l.ey[ray] = p.Y + l.distance*sin
			ray++
		}
		remaining -= segRays
		remainingLen -= l.segLengths[i]
	}
}

// fixDegenerateAngles gives zero-length segments the angle of the nearest
// segment that has a length, or the chain's own normal if none does.
func (l *ChainLight) fixDegenerateAngles() {
	k := len(l.segLengths)
	fallback := l.direction + l.rayDirection*math.Pi/2
	for i := 0; i < k; i++ {
		if l.segLengths[i] > 0 {
			continue
		}
		l.segAngles[i] = fallback
		for d := 1; d < k; d++ {
			if i-d >= 0 && l.segLengths[i-d] > 0 {
				l.segAngles[i] = l.segAngles[i-d]
				break
			}
			if i+d < k && l.segLengths[i+d] > 0 {
				l.segAngles[i] = l.segAngles[i+d]
				break
			}
		}
	}
}

// segmentPosition spaces n rays along a segment. Every segment includes its
// start; only the last one also includes its end.
func segmentPosition(j, n int, last bool) float64 {
	if last {
		if n == 1 {
			return 0.5
		}
		return float64(j) / float64(n-1)
	}
	return float64(j) / float64(n)
}

// slerpAngle interpolates between two angles along the shorter arc.
func slerpAngle(a, b, t float64) float64 {
	return a + math.Remainder(b-a, 2*math.Pi)*t
}

func (l *ChainLight) draw(batch *Batch) {
	l.setBatchParams(batch, l.pos, l.height)
	for i := 0; i < l.rayCount-1; i++ {
		s0 := MeshVertex{X: float32(l.sx[i]), Y: float32(l.sy[i]), Color: l.packed, S: 1}
		s1 := MeshVertex{X: float32(l.sx[i+1]), Y: float32(l.sy[i+1]), Color: l.packed, S: 1}
		m0 := MeshVertex{X: float32(l.mx[i]), Y: float32(l.my[i]), Color: l.packed, S: float32(1 - l.f[i])}
		m1 := MeshVertex{X: float32(l.mx[i+1]), Y: float32(l.my[i+1]), Color: l.packed, S: float32(1 - l.f[i+1])}
		batch.Triangle(s0, m0, s1)
		batch.Triangle(s1, m0, m1)
	}

	// pseudo-3D replaces the penumbra with the dynamic shadow pass
	if l.softShadowsEnabled() && !l.manager.pseudo3d {
		l.drawSoftShadows(batch, false)
	}
}

func (l *ChainLight) drawDynamicShadows(batch *Batch) {
	l.setBatchParams(batch, l.pos, l.height)
	l.manager.castShadows(batch, &l.lightBase, l)
}

// Contains reports whether (x, y) lies between the chain and the ray hits.
func (l *ChainLight) Contains(x, y float64) bool {
	if !l.bounds.Contains(x, y) {
		return false
	}
	return shadows.PointInPolygon(shadows.Point{X: x, Y: y}, l.hitPolygon(false))
}

// shadowSource is the ray origin nearest to the fixture.
func (l *ChainLight) shadowSource(f physics.Fixture) shadows.Point {
	var anchor shadows.Point
	if f.Type() == physics.ShapeCircle {
		anchor, _ = f.Circle()
	} else {
		a := l.manager.arena
		a.verts = f.Vertices(a.verts[:0])
		if len(a.verts) > 0 {
			anchor = a.verts[0]
		}
	}
	best := shadows.Point{X: l.sx[0], Y: l.sy[0]}
	bestDist := shadows.DistanceSq(best, anchor)
	for i := 1; i < l.rayCount; i++ {
		p := shadows.Point{X: l.sx[i], Y: l.sy[i]}
		if d := shadows.DistanceSq(p, anchor); d < bestDist {
			best, bestDist = p, d
		}
	}
	return best
}

func (l *ChainLight) extrude(src, v shadows.Point, d *physics.ShadowDescriptor) (shadows.Point, float64, float64) {
	return radialExtrude(src, v, d, l.height, l.distance)
}

func (l *ChainLight) reaches(p shadows.Point) bool {
	return l.bounds.Contains(p.X, p.Y)
}

func (l *ChainLight) roofHeight() float64 { return l.height }
