package lighting

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"chosenoffset.com/raylight/internal/core/shadows"
	"chosenoffset.com/raylight/internal/physics"
	"chosenoffset.com/raylight/internal/render/rendertest"
)

func testOptions() Options {
	return Options{
		LightMapScale:          1,
		Ambient:                Color{R: 0.1, G: 0.1, B: 0.1, A: 1},
		Shadows:                true,
		Blur:                   true,
		BlurNum:                1,
		SoftShadows:            true,
		InterpolateShadowColor: true,
		Culling:                true,
	}
}

// newTestManager returns a manager over a 100×100 light map viewing (-50,-50)-(50,50).
func newTestManager(t *testing.T, world physics.World) *Manager {
	t.Helper()
	m, err := NewManager(rendertest.NewRenderer(4096), world, testOptions(), 100, 100)
	require.NoError(t, err)
	m.SetViewBounds(-50, -50, 50, 50)
	return m
}

func lightMapImage(m *Manager) *rendertest.Image {
	return m.lightMap.(*rendertest.Image)
}

// countingWorld counts ray casts issued against the wrapped world.
type countingWorld struct {
	physics.World
	casts int
}

func (w *countingWorld) RayCast(origin, target shadows.Point, skip physics.RayFilter) (physics.RayHit, bool) {
	w.casts++
	return w.World.RayCast(origin, target, skip)
}

// nanWorld reports a NaN hit for every ray.
type nanWorld struct{}

func (nanWorld) RayCast(origin, target shadows.Point, _ physics.RayFilter) (physics.RayHit, bool) {
	return physics.RayHit{Point: shadows.Point{X: math.NaN(), Y: math.NaN()}, Fraction: math.NaN()}, true
}

func (nanWorld) QueryAABB(shadows.Bounds, func(physics.Fixture) bool) {}

// recordedVertices reads back the raw vertices waiting in b.
func recordedVertices(b *Batch) []MeshVertex {
	out := make([]MeshVertex, 0, b.Count())
	for i := 0; i < b.Count(); i++ {
		d := b.vertices[i*VertexSize : (i+1)*VertexSize]
		out = append(out, MeshVertex{X: d[0], Y: d[1], Color: d[2], S: d[3]})
	}
	return out
}

func squareWorld() (*physics.Space, physics.Fixture) {
	space := physics.NewSpace()
	box := space.AddBox(space.NewStaticBody(5, 0, 0), 2, 2, &physics.ShadowDescriptor{Height: 1})
	return space, box
}
