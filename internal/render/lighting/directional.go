package lighting

import (
	"math"

	"chosenoffset.com/raylight/internal/core/shadows"
	"chosenoffset.com/raylight/internal/physics"
)

// maxElevation keeps tan finite for a sun straight overhead.
const maxElevation = 1.5

// DirectionalLight is a light at infinity: parallel rays that sweep the whole
// view along its direction. Its height is the sun elevation in radians and
// sets how long pseudo-3D shadows are.
type DirectionalLight struct {
	lightBase
	view       shadows.Bounds
	screenSize float64
}

// NewDirectionalLight creates a light whose rays travel along direction.
func NewDirectionalLight(m *Manager, rays int, c Color, direction float64) (*DirectionalLight, error) {
	b, err := newLightBase(m, KindDirectional, rays, c, 0, 0, 0, direction)
	if err != nil {
		return nil, err
	}
	l := &DirectionalLight{lightBase: b}
	m.add(l)
	return l, nil
}

// SetDistance is a no-op; a directional light always spans the view.
func (l *DirectionalLight) SetDistance(float64) {}

// SetHeight sets the sun elevation in radians, clamped to [0, π/2]. Zero
// makes shadows reach across the whole view.
func (l *DirectionalLight) SetHeight(elevation float64) {
	l.height = math.Min(math.Max(elevation, 0), math.Pi/2)
	l.dirty = true
}

func (l *DirectionalLight) update() bool {
	// the ray set follows the view, so any camera move re-aims it
	if view := l.manager.view; view != l.view || l.dirty {
		l.view = view
		l.screenSize = math.Max(view.Width(), view.Height())
		l.dirty = true
		l.setEndPoints()
	}
	if !l.prepare() {
		return false
	}
	l.castRays()
	return true
}

func (l *DirectionalLight) setEndPoints() {
	size := l.screenSize
	sin, cos := math.Sincos(l.direction)

	axisX, axisY := size*cos, size*sin
	if axisX*axisX < 0.1 && axisY*axisY < 0.1 {
		axisX, axisY = 1, 1
	}
	widthX, widthY := size*-sin, size*cos

	c := l.view.Center()
	x := c.X - widthX
	y := c.Y - widthY
	n := float64(l.rayCount - 1)
	portionX := 2 * widthX / n
	portionY := 2 * widthY / n
	// snap to the ray spacing so moving the view does not make the edges shimmer
	if math.Abs(portionX) > 1e-9 {
		x = math.Floor(x/(portionX*2)) * portionX * 2
	}
	if math.Abs(portionY) > 1e-9 {
		y = math.Ceil(y/(portionY*2)) * portionY * 2
	}

	for i := 0; i < l.rayCount; i++ {
		stepX := float64(i)*portionX + x
		stepY := float64(i)*portionY + y
		l.sx[i] = stepX - axisX
		l.sy[i] = stepY - axisY
		l.ex[i] = stepX + axisX
		l.ey[i] = stepY + axisY
	}
	l.distance = 2 * math.Hypot(axisX, axisY)
}

func (l *DirectionalLight) draw(batch *Batch) {
	l.setBatchParams(batch, l.virtualSource(), l.sourceHeight())
	for i := 0; i < l.rayCount-1; i++ {
		s0 := MeshVertex{X: float32(l.sx[i]), Y: float32(l.sy[i]), Color: l.packed, S: 1}
		s1 := MeshVertex{X: float32(l.sx[i+1]), Y: float32(l.sy[i+1]), Color: l.packed, S: 1}
		m0 := MeshVertex{X: float32(l.mx[i]), Y: float32(l.my[i]), Color: l.packed, S: 1}
		m1 := MeshVertex{X: float32(l.mx[i+1]), Y: float32(l.my[i+1]), Color: l.packed, S: 1}
		batch.Triangle(s0, m0, s1)
		batch.Triangle(s1, m0, m1)
	}

	// unlike positional lights the penumbra is kept in pseudo-3D
	if l.softShadowsEnabled() {
		l.drawSoftShadows(batch, false)
	}
}

// virtualSource is a point far behind the view along the light direction.
func (l *DirectionalLight) virtualSource() shadows.Point {
	sin, cos := math.Sincos(l.direction)
	return l.view.Center().Sub(shadows.Point{X: cos, Y: sin}.Scale(l.screenSize))
}

// sourceHeight lifts the virtual source so it is seen from the view centre
// at the sun elevation.
func (l *DirectionalLight) sourceHeight() float64 {
	return l.screenSize * math.Tan(math.Min(l.height, maxElevation))
}

func (l *DirectionalLight) drawDynamicShadows(batch *Batch) {
	l.setBatchParams(batch, l.virtualSource(), l.sourceHeight())
	l.manager.castShadows(batch, &l.lightBase, l)
}

// Contains reports whether (x, y) is lit: inside the band between the ray
// starts and the points where each ray stopped.
func (l *DirectionalLight) Contains(x, y float64) bool {
	if !l.bounds.Contains(x, y) {
		return false
	}
	return shadows.PointInPolygon(shadows.Point{X: x, Y: y}, l.hitPolygon(false))
}

// shadowLength is how far a caster of the given height throws its shadow.
func (l *DirectionalLight) shadowLength(height float64) float64 {
	if l.height <= 0 {
		return l.screenSize
	}
	return math.Min(math.Max(height, 0)/math.Tan(l.height), l.screenSize)
}

func (l *DirectionalLight) shadowSource(f physics.Fixture) shadows.Point {
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
	sin, cos := math.Sincos(l.direction)
	return anchor.Sub(shadows.Point{X: cos, Y: sin}.Scale(l.screenSize))
}

func (l *DirectionalLight) extrude(_, v shadows.Point, d *physics.ShadowDescriptor) (shadows.Point, float64, float64) {
	sin, cos := math.Sincos(l.direction)
	far := v.Add(shadows.Point{X: cos, Y: sin}.Scale(l.shadowLength(d.Height)))
	return far, 1, 0
}

func (l *DirectionalLight) reaches(p shadows.Point) bool {
	return l.bounds.Contains(p.X, p.Y)
}

// roofHeight is zero so any fixture that asks for a roof gets one under the sun.
func (l *DirectionalLight) roofHeight() float64 { return 0 }
