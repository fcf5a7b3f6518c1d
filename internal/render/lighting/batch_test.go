package lighting

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chosenoffset.com/raylight/internal/render"
	"chosenoffset.com/raylight/internal/render/rendertest"
)

func vtx(x, y float32) MeshVertex {
	return MeshVertex{X: x, Y: y, Color: colorWhite.Pack(), S: 1}
}

func TestBatchFlushesWholeTriangles(t *testing.T) {
	img := &rendertest.Image{W: 64, H: 64}
	b := NewBatch()
	b.Begin(img, &rendertest.Shader{}, mgl32.Ident4(), render.BlendAdditive, nil)

	const triangles = 11000
	for i := 0; i < triangles; i++ {
		b.Triangle(vtx(0, 0), vtx(1, 0), vtx(0, 1))
	}
	b.End()

	require.Len(t, img.Triangles, 2)
	assert.Len(t, img.Triangles[0].Vertices, MaxVertices-MaxVertices%3)
	for _, call := range img.Triangles {
		assert.Zero(t, len(call.Vertices)%3, "a flush never splits a triangle")
		assert.Equal(t, len(call.Vertices), len(call.Indices))
		assert.Equal(t, render.BlendAdditive, call.Blend)
	}
	assert.Equal(t, triangles*3, img.VertexCount())

	flushes, vertices := b.Stats()
	assert.Equal(t, 2, flushes)
	assert.Equal(t, triangles*3, vertices)
	assert.False(t, b.Drawing())
}

func TestBatchNormalMapChangeFlushes(t *testing.T) {
	img := &rendertest.Image{W: 64, H: 64}
	normals := &rendertest.Image{W: 128, H: 32}
	b := NewBatch()
	b.Begin(img, &rendertest.Shader{}, mgl32.Ident4(), render.BlendAdditive, nil)

	b.Triangle(vtx(0, 0), vtx(1, 0), vtx(0, 1))
	b.SetNormalMap(normals)
	require.Len(t, img.Triangles, 1)
	assert.Nil(t, img.Triangles[0].Images[0])

	b.SetNormalMap(normals)
	b.Triangle(vtx(0, 0), vtx(1, 0), vtx(0, 1))
	b.End()

	require.Len(t, img.Triangles, 2)
	assert.Same(t, normals, img.Triangles[1].Images[0])
	// the normal map is sampled at pixel × (normal size / target size)
	v := img.Triangles[1].Vertices[1]
	assert.InDelta(t, v.DstX*2, v.SrcX, 1e-4)
	assert.InDelta(t, v.DstY*0.5, v.SrcY, 1e-4)
	assert.Same(t, normals, b.NormalMap())
}

func TestBatchSkipsEmptyFlush(t *testing.T) {
	img := &rendertest.Image{W: 8, H: 8}
	b := NewBatch()
	b.Begin(img, &rendertest.Shader{}, mgl32.Ident4(), render.BlendAdditive, nil)
	b.Flush()
	b.End()
	assert.Empty(t, img.Triangles)
}

func TestBatchProjectsToPixels(t *testing.T) {
	img := &rendertest.Image{W: 100, H: 50}
	b := NewBatch()
	b.Begin(img, &rendertest.Shader{}, mgl32.Ortho2D(0, 10, 0, 10), render.BlendAdditive, nil)
	b.SetLightParams(0.5, mgl32.Vec3{1, 2, 3}, mgl32.Vec3{5, 5, 0})

	b.Triangle(
		MeshVertex{X: 0, Y: 0, Color: colorWhite.Pack(), S: 1},
		MeshVertex{X: 10, Y: 10, Color: Color{R: 1, G: 0.5, B: 0, A: 1}.Pack(), S: 0.25},
		MeshVertex{X: 5, Y: 5, Color: colorClear.Pack(), S: 0},
	)
	b.End()

	require.Len(t, img.Triangles, 1)
	vs := img.Triangles[0].Vertices

	assert.InDelta(t, 0, vs[0].DstX, 1e-4)
	assert.InDelta(t, 50, vs[0].DstY, 1e-4, "world y points up, pixels down")
	assert.InDelta(t, 100, vs[1].DstX, 1e-4)
	assert.InDelta(t, 0, vs[1].DstY, 1e-4)
	assert.InDelta(t, 50, vs[2].DstX, 1e-4)
	assert.InDelta(t, 25, vs[2].DstY, 1e-4)

	assert.InDelta(t, 0.5, vs[1].ColorR, 1e-2, "color is scaled by intensity")
	assert.InDelta(t, 0.25, vs[1].ColorG, 1e-2)
	assert.InDelta(t, 1, vs[1].ColorA, 1e-6)
	assert.Equal(t, float32(0.25), vs[1].Custom0)
	assert.Equal(t, []float32{1, 2, 3}, img.Triangles[0].Uniforms["Falloff"])
}

func TestBatchCarriesLightPosition(t *testing.T) {
	img := &rendertest.Image{W: 100, H: 50}
	b := NewBatch()
	uniforms := map[string]interface{}{"Gamma": float32(1)}
	b.Begin(img, &rendertest.Shader{}, mgl32.Ortho2D(0, 10, 0, 10), render.BlendAdditive, uniforms)
	b.SetLightParams(1, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{7, 3, 5})
	b.Triangle(vtx(0, 0), vtx(1, 0), vtx(0, 1))
	b.End()

	require.Len(t, img.Triangles, 1)
	for _, v := range img.Triangles[0].Vertices {
		assert.InDelta(t, 70, v.Custom1, 1e-4, "light x in pixels")
		assert.InDelta(t, 35, v.Custom2, 1e-4, "light y in pixels, flipped")
		assert.InDelta(t, 50, v.Custom3, 1e-4, "height scaled by 10 px per unit")
	}
	call := img.Triangles[0]
	assert.Equal(t, float32(1), call.Uniforms["Gamma"])
	assert.NotContains(t, uniforms, "Falloff", "pass uniforms are not modified")
}

func TestBatchFalloffChangeFlushes(t *testing.T) {
	img := &rendertest.Image{W: 8, H: 8}
	b := NewBatch()
	b.Begin(img, &rendertest.Shader{}, mgl32.Ident4(), render.BlendAdditive, nil)

	b.SetLightParams(1, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{})
	b.Triangle(vtx(0, 0), vtx(1, 0), vtx(0, 1))
	b.SetLightParams(0.5, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{1, 1, 0})
	b.Triangle(vtx(0, 0), vtx(1, 0), vtx(0, 1))
	assert.Empty(t, img.Triangles, "same falloff shares a draw call")

	b.SetLightParams(1, mgl32.Vec3{0.5, 1, 2}, mgl32.Vec3{})
	require.Len(t, img.Triangles, 1)
	assert.Len(t, img.Triangles[0].Vertices, 6)
	assert.Equal(t, []float32{1, 0, 0}, img.Triangles[0].Uniforms["Falloff"])

	b.Triangle(vtx(0, 0), vtx(1, 0), vtx(0, 1))
	b.End()
	require.Len(t, img.Triangles, 2)
	assert.Equal(t, []float32{0.5, 1, 2}, img.Triangles[1].Uniforms["Falloff"])
}

func TestBatchDropsVerticesOutsidePass(t *testing.T) {
	img := &rendertest.Image{W: 8, H: 8}
	b := NewBatch()
	b.Triangle(vtx(0, 0), vtx(1, 0), vtx(0, 1))
	assert.Zero(t, b.Count())

	b.Begin(img, &rendertest.Shader{}, mgl32.Ident4(), render.BlendAdditive, nil)
	b.Triangle(vtx(0, 0), vtx(1, 0), vtx(0, 1))
	b.End()
	b.Vertex(vtx(2, 2))
	assert.Zero(t, b.Count())

	require.Len(t, img.Triangles, 1)
	assert.Len(t, img.Triangles[0].Vertices, 3)
}

func TestBatchFan(t *testing.T) {
	img := &rendertest.Image{W: 8, H: 8}
	b := NewBatch()
	b.Begin(img, &rendertest.Shader{}, mgl32.Ident4(), render.BlendAdditive, nil)

	rim := []MeshVertex{vtx(1, 0), vtx(0, 1), vtx(-1, 0), vtx(0, -1)}
	b.Fan(vtx(0, 0), rim, false)
	assert.Equal(t, 9, b.Count())
	b.Fan(vtx(0, 0), rim, true)
	assert.Equal(t, 9+12, b.Count())
	b.Fan(vtx(0, 0), rim[:1], true)
	assert.Equal(t, 21, b.Count())
	b.End()
}

func TestBatchBeginEndsPreviousPass(t *testing.T) {
	first := &rendertest.Image{W: 8, H: 8}
	second := &rendertest.Image{W: 8, H: 8}
	b := NewBatch()

	b.Begin(first, &rendertest.Shader{}, mgl32.Ident4(), render.BlendAdditive, nil)
	b.Triangle(vtx(0, 0), vtx(1, 0), vtx(0, 1))
	b.Begin(second, &rendertest.Shader{}, mgl32.Ident4(), render.BlendReverseSubtract, nil)
	b.End()

	assert.Len(t, first.Triangles, 1)
	assert.Empty(t, second.Triangles)
}
