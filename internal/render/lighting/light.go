package lighting

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"chosenoffset.com/raylight/internal/core/shadows"
	"chosenoffset.com/raylight/internal/physics"
)

var (
	// ErrTooFewRays is returned when a light is given fewer than MinRays rays.
	ErrTooFewRays = errors.New("lighting: ray count below minimum")
	// ErrInvalidDistance is returned for a non-positive light distance.
	ErrInvalidDistance = errors.New("lighting: distance must be positive")
	// ErrInvalidChain is returned for a chain with fewer than two points.
	ErrInvalidChain = errors.New("lighting: chain needs at least two points")
	// ErrNilManager is returned when a light is created without a manager.
	ErrNilManager = errors.New("lighting: nil manager")
	// ErrDisposed is returned when using a disposed manager.
	ErrDisposed = errors.New("lighting: manager disposed")
)

const (
	// MinRays is the smallest ray count that still forms a fan.
	MinRays = 3
	// MinDistance is the shortest distance SetDistance accepts; shorter values are raised to it.
	MinDistance = 0.01
)

// Kind identifies a light variant.
type Kind int

const (
	KindPoint Kind = iota
	KindCone
	KindDirectional
	KindChain
)

func (k Kind) String() string {
	switch k {
	case KindPoint:
		return "point"
	case KindCone:
		return "cone"
	case KindDirectional:
		return "directional"
	case KindChain:
		return "chain"
	default:
		return "unknown"
	}
}

// Light is implemented by PositionalLight, DirectionalLight and ChainLight only.
type Light interface {
	ID() uuid.UUID
	Kind() Kind

	Position() shadows.Point
	SetPosition(x, y float64)
	// Direction is in radians, counter-clockwise from +x.
	Direction() float64
	SetDirection(radians float64)

	RayCount() int
	SetRayCount(n int) error
	Distance() float64
	SetDistance(d float64)
	Color() Color
	SetColor(c Color)
	Intensity() float64
	SetIntensity(i float64)
	Falloff() mgl32.Vec3
	SetFalloff(constant, linear, quadratic float32)
	SoftShadowLength() float64
	SetSoftShadowLength(l float64)
	IsSoft() bool
	SetSoft(soft bool)
	IsXray() bool
	SetXray(xray bool)
	IsStatic() bool
	SetStaticLight(static bool)
	Height() float64
	SetHeight(h float64)

	IsActive() bool
	SetActive(active bool)
	IsCulled() bool
	Bounds() shadows.Bounds

	// Contains reports whether (x, y) is inside the lit area computed by the last update.
	Contains(x, y float64) bool
	// Dispose removes the light from its manager.
	Dispose()

	base() *lightBase
	// update refreshes the ray fan and reports whether rays were cast.
	update() bool
	draw(b *Batch)
	drawDynamicShadows(b *Batch)
}

// lightBase is the state every variant shares. The ray arrays are parallel and
// always rayCount long: sx/sy ray starts, ex/ey unobstructed ends, mx/my the
// ends after ray casting, f the fraction of each ray that was travelled.
type lightBase struct {
	id      uuid.UUID
	kind    Kind
	manager *Manager

	active   bool
	disposed bool

	rayCount  int
	distance  float64
	color     Color
	packed    float32
	intensity float64
	falloff   mgl32.Vec3
	height    float64

	softLength float64
	soft       bool
	xray       bool
	static     bool
	dirty      bool
	culled     bool
	built      bool // rays have been cast at least once since the arrays were allocated

	pos       shadows.Point
	direction float64

	body        physics.Body
	bodyOffset  shadows.Point
	bodyAngle   float64
	ignoreBody  bool
	ignoreCheck physics.RayFilter

	sx, sy []float64
	ex, ey []float64
	mx, my []float64
	f      []float64

	bounds shadows.Bounds
	poly   []shadows.Point
}

func newLightBase(m *Manager, kind Kind, rays int, c Color, distance float64, x, y, direction float64) (lightBase, error) {
	if m == nil {
		return lightBase{}, ErrNilManager
	}
	if m.disposed {
		return lightBase{}, ErrDisposed
	}
	if rays < MinRays {
		return lightBase{}, ErrTooFewRays
	}
	if kind != KindDirectional && !(distance > 0) {
		return lightBase{}, ErrInvalidDistance
	}

	b := lightBase{
		id:         uuid.New(),
		kind:       kind,
		manager:    m,
		active:     true,
		distance:   distance,
		intensity:  1,
		falloff:    mgl32.Vec3{1, 0, 0},
		softLength: 2.5,
		soft:       true,
		dirty:      true,
		pos:        shadows.Point{X: x, Y: y},
		direction:  direction,
		bounds:     shadows.EmptyBounds(),
	}
	b.setColor(c)
	b.setRays(rays)
	return b, nil
}

// setRays reallocates every per-ray array together.
func (b *lightBase) setRays(n int) {
	b.rayCount = n
	b.sx = make([]float64, n)
	b.sy = make([]float64, n)
	b.ex = make([]float64, n)
	b.ey = make([]float64, n)
	b.mx = make([]float64, n)
	b.my = make([]float64, n)
	b.f = make([]float64, n)
	for i := range b.f {
		b.f[i] = 1
	}
	b.dirty = true
	b.built = false
}

func (b *lightBase) base() *lightBase { return b }

func (b *lightBase) ID() uuid.UUID { return b.id }

func (b *lightBase) Kind() Kind { return b.kind }

func (b *lightBase) Position() shadows.Point { return b.pos }

func (b *lightBase) SetPosition(x, y float64) {
	b.pos = shadows.Point{X: x, Y: y}
	b.dirty = true
}

func (b *lightBase) Direction() float64 { return b.direction }

func (b *lightBase) SetDirection(radians float64) {
	b.direction = radians
	b.dirty = true
}

func (b *lightBase) RayCount() int { return b.rayCount }

// SetRayCount rebuilds the ray arrays for n rays.
func (b *lightBase) SetRayCount(n int) error {
	if n < MinRays {
		return ErrTooFewRays
	}
	if n != b.rayCount {
		b.setRays(n)
	}
	return nil
}

func (b *lightBase) Distance() float64 { return b.distance }

func (b *lightBase) SetDistance(d float64) {
	if d < MinDistance || math.IsNaN(d) {
		d = MinDistance
	}
	b.distance = d
	b.dirty = true
}

func (b *lightBase) Color() Color { return b.color }

func (b *lightBase) SetColor(c Color) { b.setColor(c) }

func (b *lightBase) setColor(c Color) {
	b.color = c
	b.packed = c.Pack()
}

func (b *lightBase) Intensity() float64 { return b.intensity }

func (b *lightBase) SetIntensity(i float64) { b.intensity = i }

func (b *lightBase) Falloff() mgl32.Vec3 { return b.falloff }

// SetFalloff sets the attenuation 1/(constant + linear·d + quadratic·d²), where
// d is the normalised distance from the source.
func (b *lightBase) SetFalloff(constant, linear, quadratic float32) {
	b.falloff = mgl32.Vec3{constant, linear, quadratic}
}

func (b *lightBase) SoftShadowLength() float64 { return b.softLength }

func (b *lightBase) SetSoftShadowLength(l float64) {
	b.softLength = math.Max(0, l)
	b.dirty = true
}

func (b *lightBase) IsSoft() bool { return b.soft }

func (b *lightBase) SetSoft(soft bool) {
	b.soft = soft
	b.dirty = true
}

func (b *lightBase) IsXray() bool { return b.xray }

func (b *lightBase) SetXray(xray bool) {
	b.xray = xray
	b.dirty = true
}

func (b *lightBase) IsStatic() bool { return b.static }

func (b *lightBase) SetStaticLight(static bool) {
	b.static = static
	b.dirty = true
}

// Height is the pseudo-3D height of the light source.
func (b *lightBase) Height() float64 { return b.height }

func (b *lightBase) SetHeight(h float64) {
	b.height = math.Max(0, h)
	b.dirty = true
}

func (b *lightBase) IsActive() bool { return b.active }

// SetActive moves the light between the manager's enabled and disabled lists.
func (b *lightBase) SetActive(active bool) {
	if active == b.active || b.disposed {
		return
	}
	b.active = active
	b.manager.setActive(b, active)
	if active {
		b.dirty = true
	}
}

func (b *lightBase) IsCulled() bool { return b.culled }

func (b *lightBase) Bounds() shadows.Bounds { return b.bounds }

// Dispose detaches the light from its manager. A disposed light is never updated or drawn again.
func (b *lightBase) Dispose() {
	if b.disposed {
		return
	}
	b.manager.remove(b)
	b.disposed = true
	b.active = false
	b.body = nil
}

// Body returns the attached body, or nil.
func (b *lightBase) Body() physics.Body { return b.body }

// SetIgnoreAttachedBody makes rays pass through the fixtures of the attached body.
func (b *lightBase) SetIgnoreAttachedBody(ignore bool) {
	b.ignoreBody = ignore
	b.dirty = true
}

func (b *lightBase) attach(body physics.Body, offset shadows.Point, angle float64) {
	b.body = body
	b.bodyOffset = offset
	b.bodyAngle = angle
	b.ignoreCheck = func(f physics.Fixture) bool {
		return f.Body() == b.body
	}
	b.dirty = true
}

// followBody moves the light with its body. A destroyed body leaves the light
// where it last was.
func (b *lightBase) followBody() {
	if b.body == nil || b.body.Destroyed() {
		return
	}
	angle := b.body.Angle()
	p := b.body.Position().Add(b.bodyOffset.Rotate(angle))
	dir := angle + b.bodyAngle
	if p != b.pos || dir != b.direction {
		b.pos = p
		b.direction = dir
		b.dirty = true
	}
}

// prepare runs the shared part of update after the variant has refreshed its
// provisional ray ends. It reports whether the rays must be cast again.
func (b *lightBase) prepare() bool {
	m := b.manager
	b.bounds = shadows.EmptyBounds()
	for i := 0; i < b.rayCount; i++ {
		b.bounds.Extend(b.sx[i], b.sy[i])
		b.bounds.Extend(b.ex[i], b.ey[i])
	}
	b.bounds = b.bounds.Expand(b.softLength)

	b.culled = m.culling && !b.bounds.Overlaps(m.view)
	if b.culled && !b.dirty {
		return false
	}
	if b.static && !b.dirty {
		return false
	}
	b.dirty = false
	return true
}

// castRays shortens every ray to its first hit. NaN results count as misses.
func (b *lightBase) castRays() {
	world := b.manager.world
	var skip physics.RayFilter
	if b.ignoreBody && b.body != nil {
		skip = b.ignoreCheck
	}
	for i := 0; i < b.rayCount; i++ {
		b.mx[i], b.my[i], b.f[i] = b.ex[i], b.ey[i], 1
	}
	b.built = true
	if b.xray || world == nil {
		return
	}
	for i := 0; i < b.rayCount; i++ {
		start := shadows.Point{X: b.sx[i], Y: b.sy[i]}
		end := shadows.Point{X: b.ex[i], Y: b.ey[i]}
		hit, ok := world.RayCast(start, end, skip)
		if !ok || math.IsNaN(hit.Fraction) {
			continue
		}
		frac := math.Min(math.Max(hit.Fraction, 0), 1)
		b.f[i] = frac
		b.mx[i] = start.X + (end.X-start.X)*frac
		b.my[i] = start.Y + (end.Y-start.Y)*frac
	}
	b.manager.stats.RaysCast += b.rayCount
}

// drawSoftShadows extrudes a fading quad past each pair of neighbouring blocked rays.
func (b *lightBase) drawSoftShadows(batch *Batch, wrap bool) {
	n := b.rayCount
	last := n - 1
	if wrap {
		last = n
	}
	l := b.softLength
	for i := 0; i < last; i++ {
		j := (i + 1) % n
		if b.f[i] >= 1 || b.f[j] >= 1 {
			continue
		}
		hi := MeshVertex{X: float32(b.mx[i]), Y: float32(b.my[i]), Color: b.packed, S: float32(1 - b.f[i])}
		hj := MeshVertex{X: float32(b.mx[j]), Y: float32(b.my[j]), Color: b.packed, S: float32(1 - b.f[j])}
		oi := b.softOuter(i, l)
		oj := b.softOuter(j, l)
		batch.Triangle(hi, hj, oi)
		batch.Triangle(hj, oj, oi)
	}
}

func (b *lightBase) softOuter(i int, l float64) MeshVertex {
	dir := shadows.Point{X: b.ex[i] - b.sx[i], Y: b.ey[i] - b.sy[i]}.WithLength(l)
	return MeshVertex{
		X:     float32(b.mx[i] + dir.X),
		Y:     float32(b.my[i] + dir.Y),
		Color: colorClear.Pack(),
	}
}

// setBatchParams loads this light's constants into the batch. z is the height
// of src above the ground in world units.
func (b *lightBase) setBatchParams(batch *Batch, src shadows.Point, z float64) {
	batch.SetLightParams(float32(b.intensity), b.falloff, mgl32.Vec3{float32(src.X), float32(src.Y), float32(z)})
}

// hitPolygon fills b.poly with the ray starts followed by the hits in reverse.
// Positional lights share a start so only the fan rim is needed.
func (b *lightBase) hitPolygon(shared bool) []shadows.Point {
	b.poly = b.poly[:0]
	if shared {
		if b.kind == KindCone {
			b.poly = append(b.poly, b.pos)
		}
		for i := 0; i < b.rayCount; i++ {
			b.poly = append(b.poly, shadows.Point{X: b.mx[i], Y: b.my[i]})
		}
		return b.poly
	}
	for i := 0; i < b.rayCount; i++ {
		b.poly = append(b.poly, shadows.Point{X: b.sx[i], Y: b.sy[i]})
	}
	for i := b.rayCount - 1; i >= 0; i-- {
		b.poly = append(b.poly, shadows.Point{X: b.mx[i], Y: b.my[i]})
	}
	return b.poly
}

// softShadowsEnabled combines the manager toggle with the light's own flags.
func (b *lightBase) softShadowsEnabled() bool {
	return b.manager.softShadows && b.soft && !b.xray && b.softLength > 0
}
