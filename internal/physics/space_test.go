package physics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chosenoffset.com/raylight/internal/core/shadows"
)

func TestSpaceRayCastHitsNearestBox(t *testing.T) {
	space := NewSpace()
	near := space.AddBox(space.NewStaticBody(5, 0, 0), 2, 2, nil)
	space.AddBox(space.NewStaticBody(8, 0, 0), 2, 2, nil)

	hit, ok := space.RayCast(shadows.Point{}, shadows.Point{X: 10}, nil)
	require.True(t, ok)
	assert.InDelta(t, 0.4, hit.Fraction, 1e-6)
	assert.InDelta(t, 4.0, hit.Point.X, 1e-6)
	assert.Same(t, near, hit.Fixture)
}

func TestSpaceRayCastMiss(t *testing.T) {
	space := NewSpace()
	space.AddBox(space.NewStaticBody(5, 0, 0), 2, 2, nil)

	hit, ok := space.RayCast(shadows.Point{}, shadows.Point{Y: 10}, nil)
	assert.False(t, ok)
	assert.Equal(t, 1.0, hit.Fraction)
	assert.Equal(t, shadows.Point{Y: 10}, hit.Point)
}

func TestSpaceRayCastSkipsSensorsAndFiltered(t *testing.T) {
	space := NewSpace()
	sensor := space.AddBox(space.NewStaticBody(3, 0, 0), 1, 1, nil)
	space.SetSensor(sensor, true)
	ignored := space.AddCircle(space.NewStaticBody(5, 0, 0), 0.5, shadows.Point{}, nil)
	wall := space.AddEdge(space.NewStaticBody(0, 0, 0), shadows.Point{X: 8, Y: -1}, shadows.Point{X: 8, Y: 1}, nil)

	hit, ok := space.RayCast(shadows.Point{}, shadows.Point{X: 10}, func(f Fixture) bool { return f == ignored })
	require.True(t, ok)
	assert.Same(t, wall, hit.Fixture)
	assert.InDelta(t, 0.8, hit.Fraction, 1e-6)
	assert.True(t, sensor.Sensor())
}

func TestSpaceQueryAABBReportsChainOnce(t *testing.T) {
	space := NewSpace()
	body := space.NewStaticBody(0, 0, 0)
	chain := space.AddChain(body, []shadows.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}, {X: 3, Y: 0}}, false, nil)
	box := space.AddBox(space.NewStaticBody(1, 1, 0), 0.5, 0.5, nil)

	seen := map[Fixture]int{}
	space.QueryAABB(shadows.Bounds{MinX: -1, MinY: -1, MaxX: 4, MaxY: 2}, func(f Fixture) bool {
		seen[f]++
		return true
	})

	assert.Equal(t, 1, seen[chain])
	assert.Equal(t, 1, seen[box])
	assert.Len(t, chain.Vertices(nil), 4)
	assert.Equal(t, ShapeChain, chain.Type())
}

func TestSpaceQueryAABBStops(t *testing.T) {
	space := NewSpace()
	for i := 0; i < 4; i++ {
		space.AddBox(space.NewStaticBody(float64(i)*3, 0, 0), 1, 1, nil)
	}

	calls := 0
	space.QueryAABB(shadows.Bounds{MinX: -5, MinY: -5, MaxX: 20, MaxY: 5}, func(Fixture) bool {
		calls++
		return false
	})
	assert.Equal(t, 1, calls)
}

func TestFixtureWorldGeometry(t *testing.T) {
	space := NewSpace()
	body := space.NewStaticBody(10, 0, math.Pi/2)
	box := space.AddBox(body, 2, 4, &ShadowDescriptor{Height: 1})

	verts := box.Vertices(nil)
	require.Len(t, verts, 4)
	// rotated a quarter turn: the 2x4 box becomes 4 wide, 2 tall
	b := shadows.EmptyBounds()
	for _, v := range verts {
		b.Extend(v.X, v.Y)
	}
	assert.InDelta(t, 4.0, b.Width(), 1e-9)
	assert.InDelta(t, 2.0, b.Height(), 1e-9)
	assert.Greater(t, shadows.SignedArea(verts), 0.0)

	assert.True(t, box.Contains(shadows.Point{X: 11.5, Y: 0.5}))
	assert.False(t, box.Contains(shadows.Point{X: 10, Y: 1.5}))

	circle := space.AddCircle(space.NewStaticBody(0, 0, 0), 1, shadows.Point{X: 2}, nil)
	c, r := circle.Circle()
	assert.Equal(t, shadows.Point{X: 2}, c)
	assert.Equal(t, 1.0, r)
	assert.True(t, circle.Contains(shadows.Point{X: 2.5}))
}

func TestPolygonWindingNormalised(t *testing.T) {
	space := NewSpace()
	cw := []shadows.Point{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 0}}
	poly := space.AddPolygon(space.NewStaticBody(0, 0, 0), cw, nil)

	assert.Greater(t, shadows.SignedArea(poly.Vertices(nil)), 0.0)
	assert.Equal(t, shadows.Point{X: 0, Y: 1}, cw[1], "caller slice must not be reordered")
}

func TestRemoveBodyMarksDestroyed(t *testing.T) {
	space := NewSpace()
	body := space.NewKinematicBody(5, 0, 0)
	space.AddBox(body, 2, 2, nil)

	space.RemoveBody(body)
	assert.True(t, body.Destroyed())

	_, ok := space.RayCast(shadows.Point{}, shadows.Point{X: 10}, nil)
	assert.False(t, ok, "removed shapes must not block rays")

	space.RemoveBody(body)
}

func TestSegmentWorld(t *testing.T) {
	walls := shadows.SegmentsFromGrid(shadows.StringGrid{"..#"}, 2)
	world := NewSegmentWorld(walls, &ShadowDescriptor{Height: 2})

	hit, ok := world.RayCast(shadows.Point{X: 1, Y: 1}, shadows.Point{X: 11, Y: 1}, nil)
	require.True(t, ok)
	assert.InDelta(t, 0.3, hit.Fraction, 1e-9)
	assert.Equal(t, ShapeEdge, hit.Fixture.Type())
	assert.False(t, hit.Fixture.Body().Destroyed())

	count := 0
	world.QueryAABB(shadows.Bounds{MinX: 0, MinY: 0, MaxX: 4.5, MaxY: 2}, func(f Fixture) bool {
		count++
		assert.NotNil(t, f.Shadow())
		return true
	})
	assert.Equal(t, 3, count, "left wall plus top and bottom edges reach into the box")
}

func TestSegmentWorldSingleWall(t *testing.T) {
	world := NewSegmentWorld([]shadows.Segment{{A: shadows.Point{X: 4, Y: -1}, B: shadows.Point{X: 4, Y: 1}}}, nil)

	hit, ok := world.RayCast(shadows.Point{}, shadows.Point{X: 10}, nil)
	require.True(t, ok)
	assert.InDelta(t, 0.4, hit.Fraction, 1e-9)
	assert.InDelta(t, 4.0, hit.Point.X, 1e-9)

	_, ok = world.RayCast(shadows.Point{}, shadows.Point{X: 3}, nil)
	assert.False(t, ok, "wall beyond the target")
	_, ok = world.RayCast(shadows.Point{}, shadows.Point{X: -10}, nil)
	assert.False(t, ok, "wall behind the origin")
}

func TestSetTransformReindexesShapes(t *testing.T) {
	space := NewSpace()
	body := space.NewStaticBody(5, 0, 0)
	box := space.AddBox(body, 2, 2, nil)

	body.SetTransform(0, 5, math.Pi/4)
	assert.Equal(t, shadows.Point{X: 0, Y: 5}, body.Position())
	assert.InDelta(t, math.Pi/4, body.Angle(), 1e-9)

	_, ok := space.RayCast(shadows.Point{}, shadows.Point{X: 10}, nil)
	assert.False(t, ok, "old location must be empty")

	hit, ok := space.RayCast(shadows.Point{}, shadows.Point{Y: 10}, nil)
	require.True(t, ok)
	assert.Same(t, box, hit.Fixture)
	// the rotated box reaches its corner down to 5-sqrt(2)
	assert.InDelta(t, (5-math.Sqrt2)/10, hit.Fraction, 1e-6)

	seen := 0
	space.QueryAABB(shadows.Bounds{MinX: -1, MinY: 4, MaxX: 1, MaxY: 6}, func(f Fixture) bool {
		seen++
		return true
	})
	assert.Equal(t, 1, seen)
}
