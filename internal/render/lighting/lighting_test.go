package lighting

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chosenoffset.com/raylight/internal/core/shadows"
	"chosenoffset.com/raylight/internal/physics"
	"chosenoffset.com/raylight/internal/render"
	"chosenoffset.com/raylight/internal/render/rendertest"
)

func TestNewManagerFromDefaults(t *testing.T) {
	r := rendertest.NewRenderer(8192)
	m, err := NewManager(r, nil, DefaultOptions(), 960, 640)
	require.NoError(t, err)

	w, h := m.AccumulationTexture().Size()
	assert.Equal(t, 240, w)
	assert.Equal(t, 160, h)
	assert.Len(t, r.Shaders, 4)
	assert.Equal(t, StateIdle, m.State())
	assert.True(t, m.Shadows())
	assert.False(t, m.Pseudo3D())
	assert.Equal(t, Color{R: 0.1, G: 0.1, B: 0.1, A: 1}, m.AmbientLight())
}

func TestNewManagerShaderFailure(t *testing.T) {
	r := rendertest.NewRenderer(4096)
	r.FailCompile = true

	m, err := NewManager(r, nil, testOptions(), 100, 100)

	assert.Nil(t, m)
	assert.True(t, errors.Is(err, rendertest.ErrCompile))
	assert.Contains(t, err.Error(), "light shader")
}

func TestClampToTexture(t *testing.T) {
	tests := []struct {
		name         string
		w, h, limit  int
		wantW, wantH int
	}{
		{"fits", 100, 50, 1000, 100, 50},
		{"no limit", 5000, 4000, 0, 5000, 4000},
		{"wide", 4000, 2000, 1000, 1000, 500},
		{"tall", 300, 3000, 1000, 100, 1000},
		{"sliver", 5000, 1, 1000, 1000, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := clampToTexture(tt.w, tt.h, tt.limit)
			assert.Equal(t, tt.wantW, w)
			assert.Equal(t, tt.wantH, h)
		})
	}
}

func TestResizeAndLightMapScale(t *testing.T) {
	r := rendertest.NewRenderer(1000)
	m, err := NewManager(r, nil, testOptions(), 4000, 2000)
	require.NoError(t, err)

	w, h := m.AccumulationTexture().Size()
	assert.Equal(t, 1000, w)
	assert.Equal(t, 500, h)

	old := lightMapImage(m)
	m.SetLightMapScale(8)
	w, h = m.AccumulationTexture().Size()
	assert.Equal(t, 500, w)
	assert.Equal(t, 250, h)
	assert.True(t, old.Disposed)

	images := len(r.Images)
	m.Resize(4000, 2000)
	assert.Len(t, r.Images, images, "same size keeps the light map")
}

func TestRenderPasses(t *testing.T) {
	space := physics.NewSpace()
	space.AddBox(space.NewStaticBody(5, 0, 0), 2, 2, &physics.ShadowDescriptor{Height: 1, RoofShadow: true})
	m := newTestManager(t, space)
	m.SetPseudo3D(true, true)
	_, err := NewPointLight(m, 8, colorWhite, 10, 0, 0)
	require.NoError(t, err)

	require.NoError(t, m.UpdateAndRender())

	img := lightMapImage(m)
	assert.Equal(t, 1, img.Clears)
	require.Len(t, img.Triangles, 2)

	main := img.Triangles[0]
	assert.Equal(t, render.BlendAdditive, main.Blend)
	assert.Same(t, m.shaders.light, main.Shader)
	assert.Len(t, main.Vertices, 8*3, "a closed fan, no penumbra in pseudo-3D")
	assert.Equal(t, float32(0), main.Uniforms["UseNormals"])

	shadow := img.Triangles[1]
	assert.Equal(t, render.BlendReverseSubtract, shadow.Blend)
	assert.Same(t, m.shaders.shadow, shadow.Shader)
	assert.Len(t, shadow.Vertices, 6+6, "strip plus roof")
	assert.Equal(t, float32(1), shadow.Uniforms["Interpolate"])

	stats := m.Stats()
	assert.Equal(t, 1, stats.LightsDrawn)
	assert.Equal(t, 1, stats.ShadowFixtures)
	assert.Equal(t, 1, stats.Roofs)
	assert.Equal(t, 2, stats.Flushes)
	assert.Equal(t, 36, stats.Vertices)
	assert.True(t, stats.Blurred)
	assert.Equal(t, StateIdle, m.State())
}

func TestRenderWithoutPseudo3DHasNoShadowPass(t *testing.T) {
	space, _ := squareWorld()
	m := newTestManager(t, space)
	_, err := NewPointLight(m, 8, colorWhite, 10, 0, 0)
	require.NoError(t, err)

	require.NoError(t, m.UpdateAndRender())

	img := lightMapImage(m)
	require.Len(t, img.Triangles, 1)
	assert.Equal(t, render.BlendAdditive, img.Triangles[0].Blend)
	assert.Zero(t, m.Stats().ShadowFixtures)
}

func TestBlurPingPong(t *testing.T) {
	m := newTestManager(t, physics.NewSpace())
	m.SetBlurNum(2)
	_, err := NewPointLight(m, 8, colorWhite, 10, 0, 0)
	require.NoError(t, err)

	require.NoError(t, m.UpdateAndRender())

	ping := m.pingMap.(*rendertest.Image)
	img := lightMapImage(m)
	require.Len(t, ping.Rects, 2)
	require.Len(t, img.Rects, 2)
	for i := 0; i < 2; i++ {
		assert.Equal(t, render.BlendCopy, ping.Rects[i].Blend)
		assert.Equal(t, render.Image(img), ping.Rects[i].Images[0])
		assert.Equal(t, []float32{1, 0}, ping.Rects[i].Uniforms["Dir"])
		assert.Equal(t, render.Image(ping), img.Rects[i].Images[0])
		assert.Equal(t, []float32{0, 1}, img.Rects[i].Uniforms["Dir"])
	}
}

func TestBlurSkipped(t *testing.T) {
	m := newTestManager(t, physics.NewSpace())

	require.NoError(t, m.UpdateAndRender())
	assert.False(t, m.Stats().Blurred, "nothing drawn")
	assert.Empty(t, lightMapImage(m).Rects)

	_, err := NewPointLight(m, 8, colorWhite, 10, 0, 0)
	require.NoError(t, err)
	m.SetBlur(false)
	require.NoError(t, m.UpdateAndRender())
	assert.False(t, m.Stats().Blurred)

	m.SetBlur(true)
	m.SetBlurNum(0)
	require.NoError(t, m.UpdateAndRender())
	assert.False(t, m.Stats().Blurred)
}

func TestCulledLightEmitsNothing(t *testing.T) {
	m := newTestManager(t, physics.NewSpace())
	l, err := NewPointLight(m, 8, colorWhite, 10, 1000, 1000)
	require.NoError(t, err)

	require.NoError(t, m.UpdateAndRender())

	assert.True(t, l.IsCulled())
	assert.Equal(t, 1, m.Stats().LightsCulled)
	assert.Zero(t, m.Stats().LightsDrawn)
	assert.Zero(t, lightMapImage(m).VertexCount())

	m.SetCulling(false)
	lightMapImage(m).Reset()
	require.NoError(t, m.UpdateAndRender())
	assert.False(t, l.IsCulled())
	assert.Equal(t, 1, m.Stats().LightsDrawn)
	assert.NotZero(t, lightMapImage(m).VertexCount())
}

func TestUnbuiltLightIsNotDrawn(t *testing.T) {
	m := newTestManager(t, physics.NewSpace())
	_, err := NewPointLight(m, 8, colorWhite, 10, 0, 0)
	require.NoError(t, err)

	require.NoError(t, m.Render())
	assert.Zero(t, m.Stats().LightsDrawn)
}

func TestNormalMapBinding(t *testing.T) {
	m := newTestManager(t, physics.NewSpace())
	normals := &rendertest.Image{W: 200, H: 200}
	m.SetNormalMap(normals)
	_, err := NewPointLight(m, 8, colorWhite, 10, 0, 0)
	require.NoError(t, err)

	require.NoError(t, m.UpdateAndRender())

	call := lightMapImage(m).Triangles[0]
	assert.Same(t, normals, call.Images[0])
	assert.Equal(t, float32(1), call.Uniforms["UseNormals"])
}

func TestComposite(t *testing.T) {
	m := newTestManager(t, physics.NewSpace())
	m.SetAmbientLight(Color{R: 0.1, G: 0.2, B: 0.3, A: 1})
	dst := &rendertest.Image{W: 200, H: 300}

	require.NoError(t, m.Composite(dst))
	require.Len(t, dst.Rects, 1)
	rect := dst.Rects[0]
	assert.Equal(t, render.BlendMultiply, rect.Blend)
	assert.Same(t, m.shaders.composite, rect.Shader)
	assert.Equal(t, render.Image(lightMapImage(m)), rect.Images[0])
	assert.Equal(t, []float32{0.1, 0.2, 0.3, 1}, rect.Uniforms["Ambient"])
	require.NotNil(t, rect.GeoM)
	assert.Equal(t, 2.0, rect.GeoM.SX)
	assert.Equal(t, 3.0, rect.GeoM.SY)

	m.SetShadows(false)
	require.NoError(t, m.Composite(dst))
	require.Len(t, dst.Draws, 1)
	assert.Equal(t, render.BlendAdditive, dst.Draws[0].Blend)
	assert.Len(t, dst.Rects, 1)
}

func TestSetWorldRebuildsStaticLights(t *testing.T) {
	world := &countingWorld{World: physics.NewSpace()}
	m := newTestManager(t, world)
	l, err := NewPointLight(m, 8, colorWhite, 10, 0, 0)
	require.NoError(t, err)
	l.SetStaticLight(true)
	m.Update()

	other := &countingWorld{World: physics.NewSpace()}
	m.SetWorld(other)
	m.Update()

	assert.Same(t, other, m.World())
	assert.Equal(t, 8, other.casts)
}

func TestViewBounds(t *testing.T) {
	m := newTestManager(t, nil)
	m.SetViewBounds(-1, -2, 3, 4)
	assert.Equal(t, shadows.Bounds{MinX: -1, MinY: -2, MaxX: 3, MaxY: 4}, m.View())
}

func TestManagerDispose(t *testing.T) {
	r := rendertest.NewRenderer(4096)
	m, err := NewManager(r, nil, testOptions(), 100, 100)
	require.NoError(t, err)
	l, err := NewPointLight(m, 8, colorWhite, 10, 0, 0)
	require.NoError(t, err)

	m.Dispose()
	m.Dispose()

	assert.False(t, l.IsActive())
	assert.Empty(t, m.Lights())
	for _, img := range r.Images {
		assert.True(t, img.Disposed)
	}
	for _, s := range r.Shaders {
		assert.True(t, s.Disposed)
	}
	assert.ErrorIs(t, m.Render(), ErrDisposed)
	assert.ErrorIs(t, m.Composite(&rendertest.Image{W: 1, H: 1}), ErrDisposed)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "shadow-pass", StateShadowPass.String())
	assert.Equal(t, "unknown", State(42).String())
	assert.Equal(t, "directional", KindDirectional.String())
}

func TestRenderSendsLightPositionToShader(t *testing.T) {
	m := newTestManager(t, physics.NewSpace())
	l, err := NewPointLight(m, 8, colorWhite, 10, 7, 3)
	require.NoError(t, err)
	l.SetHeight(5)
	l.SetFalloff(0.5, 0.25, 0)

	require.NoError(t, m.UpdateAndRender())

	img := lightMapImage(m)
	require.NotEmpty(t, img.Triangles)
	call := img.Triangles[0]
	// 100 px over 100 world units: one pixel per unit, y flipped about the view
	v := call.Vertices[0]
	assert.InDelta(t, 57, v.Custom1, 1e-4)
	assert.InDelta(t, 47, v.Custom2, 1e-4)
	assert.InDelta(t, 5, v.Custom3, 1e-4)
	assert.Equal(t, []float32{0.5, 0.25, 0}, call.Uniforms["Falloff"])
	assert.InDelta(t, 1, call.Uniforms["NormalDepth"], 1e-6)
}

func TestDirectionalSourceHeightFollowsElevation(t *testing.T) {
	m := newTestManager(t, physics.NewSpace())
	l, err := NewDirectionalLight(m, 8, colorWhite, 0)
	require.NoError(t, err)
	l.SetHeight(math.Pi / 4)

	require.NoError(t, m.UpdateAndRender())

	img := lightMapImage(m)
	require.NotEmpty(t, img.Triangles)
	// the source sits one view size away, so a 45° sun is one view size up
	assert.InDelta(t, 100, img.Triangles[0].Vertices[0].Custom3, 1e-3)
}
