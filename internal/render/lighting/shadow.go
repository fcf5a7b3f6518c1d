package lighting

import (
	"math"

	"chosenoffset.com/raylight/internal/core/shadows"
	"chosenoffset.com/raylight/internal/physics"
)

const (
	// CircleSegments is how many pieces approximate a circle's lit arc.
	CircleSegments = 32
	// gapEpsilon is how far past a vertex the gap test probes.
	gapEpsilon = 1e-3
)

// shadowCaster is the per-variant part of the dynamic shadow pass.
type shadowCaster interface {
	// shadowSource is the point shadows of f are cast away from.
	shadowSource(f physics.Fixture) shadows.Point
	// extrude returns the far end of the shadow of silhouette vertex v, and
	// the light fractions at v and at the far end.
	extrude(src, v shadows.Point, d *physics.ShadowDescriptor) (far shadows.Point, f1, f2 float64)
	// reaches is the quick test for whether p can be lit at all.
	reaches(p shadows.Point) bool
	// roofHeight is compared against caster heights to decide on roofs.
	roofHeight() float64
}

// arena holds scratch buffers shared by all lights of one manager.
// Lights are drawn one at a time, so the buffers are never used concurrently.
type arena struct {
	verts []shadows.Point
	sil   []shadows.Point
	gap   []bool
	near  []MeshVertex
	far   []MeshVertex
	rim   []MeshVertex
}

// castShadows draws the dynamic shadow of every fixture overlapping the light.
func (m *Manager) castShadows(batch *Batch, l *lightBase, c shadowCaster) {
	if m.world == nil {
		return
	}
	a := m.arena
	m.world.QueryAABB(l.bounds, func(f physics.Fixture) bool {
		desc := f.Shadow()
		if desc == nil || f.Sensor() {
			return true
		}
		if l.ignoreBody && l.body != nil && f.Body() == l.body {
			return true
		}

		src := c.shadowSource(f)
		sil := silhouette(a, f, src)
		if len(sil) < 2 || !anyReached(sil, c) {
			return true
		}
		m.stats.ShadowFixtures++

		a.near = a.near[:0]
		a.far = a.far[:0]
		for _, v := range sil {
			far, f1, f2 := c.extrude(src, v, desc)
			a.near = append(a.near, m.shadowVertex(v, colorBlack, f1))
			a.far = append(a.far, m.shadowVertex(far, colorWhite, f2))
		}
		for i := 0; i < len(sil)-1; i++ {
			batch.Triangle(a.near[i], a.far[i], a.near[i+1])
			batch.Triangle(a.near[i+1], a.far[i], a.far[i+1])
		}

		if desc.CastsRoof(c.roofHeight()) {
			m.drawRoof(batch, f)
		}
		return true
	})
}

// shadowVertex shades a strip vertex. With interpolation the color blends the
// ambient light toward target by f; otherwise a white sentinel is written and
// the shader reads f from s.
func (m *Manager) shadowVertex(p shadows.Point, target Color, f float64) MeshVertex {
	f = math.Min(math.Max(f, 0), 1)
	c := colorWhite
	if m.interpolateShadowColor {
		c = m.ambient.Lerp(target, float32(f))
	}
	return MeshVertex{X: float32(p.X), Y: float32(p.Y), Color: c.Pack(), S: float32(f)}
}

// drawRoof covers the fixture's top face with a fan from its first vertex.
func (m *Manager) drawRoof(batch *Batch, f physics.Fixture) {
	a := m.arena
	switch f.Type() {
	case physics.ShapePolygon:
		a.verts = f.Vertices(a.verts[:0])
	case physics.ShapeCircle:
		c, r := f.Circle()
		a.verts = a.verts[:0]
		for k := 0; k < CircleSegments; k++ {
			sin, cos := math.Sincos(2 * math.Pi * float64(k) / CircleSegments)
			a.verts = append(a.verts, shadows.Point{X: c.X + r*cos, Y: c.Y + r*sin})
		}
	default:
		return
	}
	if len(a.verts) < 3 {
		return
	}

	c := colorWhite
	if m.interpolateShadowColor {
		c = colorBlack
	}
	packed := c.Pack()
	a.rim = a.rim[:0]
	for _, v := range a.verts[1:] {
		a.rim = append(a.rim, MeshVertex{X: float32(v.X), Y: float32(v.Y), Color: packed, S: 1})
	}
	v0 := a.verts[0]
	batch.Fan(MeshVertex{X: float32(v0.X), Y: float32(v0.Y), Color: packed, S: 1}, a.rim, false)
	m.stats.Roofs++
}

func anyReached(sil []shadows.Point, c shadowCaster) bool {
	for _, v := range sil {
		if c.reaches(v) {
			return true
		}
	}
	return false
}

// silhouette returns the outline of f that faces src, ordered so consecutive
// points form the near edges. Edges and chains are used whole.
func silhouette(a *arena, f physics.Fixture, src shadows.Point) []shadows.Point {
	switch f.Type() {
	case physics.ShapeCircle:
		return circleSilhouette(a, f, src)
	case physics.ShapePolygon:
		return polygonSilhouette(a, f, src)
	default:
		a.sil = f.Vertices(a.sil[:0])
		return a.sil
	}
}

// polygonSilhouette walks the counter-clockwise outline. Vertices whose
// continuation past the vertex enters the polygon form the gap run; the
// silhouette spans the run plus one vertex on each side. Without a gap run
// the walk starts at the closest vertex and follows the edges facing src.
// The result is always in decreasing index order.
func polygonSilhouette(a *arena, f physics.Fixture, src shadows.Point) []shadows.Point {
	a.verts = f.Vertices(a.verts[:0])
	verts := a.verts
	n := len(verts)
	a.sil = a.sil[:0]
	if n < 3 {
		a.sil = append(a.sil, verts...)
		return a.sil
	}
	if f.Contains(src) {
		return a.sil
	}

	a.gap = a.gap[:0]
	for _, v := range verts {
		probe := v.Add(v.Sub(src).WithLength(gapEpsilon))
		a.gap = append(a.gap, f.Contains(probe))
	}

	if minN, maxN, ok := gapRun(a.gap); ok {
		i := (maxN + 1) % n
		stop := (minN - 1 + n) % n
		for k := 0; k < n; k++ {
			a.sil = append(a.sil, verts[i])
			if i == stop {
				break
			}
			i = (i - 1 + n) % n
		}
		return a.sil
	}

	c := 0
	best := shadows.DistanceSq(verts[0], src)
	for i := 1; i < n; i++ {
		if d := shadows.DistanceSq(verts[i], src); d < best {
			c, best = i, d
		}
	}

	a.sil = append(a.sil, verts[c])
	if facing(verts[c], verts[(c+1)%n], src) {
		for j, k := c, 1; k < n; k++ {
			next := (j + 1) % n
			if !facing(verts[j], verts[next], src) {
				break
			}
			a.sil = append(a.sil, verts[next])
			j = next
		}
		reversePoints(a.sil)
		return a.sil
	}
	for j, k := c, 1; k < n; k++ {
		prev := (j - 1 + n) % n
		if !facing(verts[prev], verts[j], src) {
			break
		}
		a.sil = append(a.sil, verts[prev])
		j = prev
	}
	return a.sil
}

// facing reports whether the edge a->b of a counter-clockwise polygon faces p.
func facing(a, b, p shadows.Point) bool {
	return shadows.PointLineSide(a, b, p) < 0
}

// gapRun finds the first circular run of true values. A ring that is all
// true or all false has no run.
func gapRun(gap []bool) (minN, maxN int, ok bool) {
	n := len(gap)
	start := -1
	for i := 0; i < n; i++ {
		if gap[i] && !gap[(i-1+n)%n] {
			start = i
			break
		}
	}
	if start < 0 {
		return 0, 0, false
	}
	end := start
	for gap[(end+1)%n] && (end+1)%n != start {
		end = (end + 1) % n
	}
	return start, end, true
}

// circleSilhouette is the arc between the two tangent points seen from src.
func circleSilhouette(a *arena, f physics.Fixture, src shadows.Point) []shadows.Point {
	a.sil = a.sil[:0]
	c, r := f.Circle()
	d := shadows.Distance(c, src)
	if d <= r || r <= 0 {
		return a.sil
	}
	half := math.Acos(r / d)
	toSrc := math.Atan2(src.Y-c.Y, src.X-c.X)
	for k := 0; k <= CircleSegments; k++ {
		angle := toSrc + half - 2*half*float64(k)/CircleSegments
		sin, cos := math.Sincos(angle)
		a.sil = append(a.sil, shadows.Point{X: c.X + r*cos, Y: c.Y + r*sin})
	}
	return a.sil
}

func reversePoints(p []shadows.Point) {
	for i, j := 0, len(p)-1; i < j; i, j = i+1, j-1 {
		p[i], p[j] = p[j], p[i]
	}
}

// reset empties every buffer while keeping its capacity.
func (a *arena) reset() {
	a.verts = a.verts[:0]
	a.sil = a.sil[:0]
	a.gap = a.gap[:0]
	a.near = a.near[:0]
	a.far = a.far[:0]
	a.rim = a.rim[:0]
}
