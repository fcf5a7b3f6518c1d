package game

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chosenoffset.com/raylight/internal/config"
	"chosenoffset.com/raylight/internal/core/shadows"
	"chosenoffset.com/raylight/internal/render"
	"chosenoffset.com/raylight/internal/render/rendertest"
)

type fakeInput struct {
	held    map[render.Key]bool
	pressed map[render.Key]bool
}

func newFakeInput() *fakeInput {
	return &fakeInput{held: map[render.Key]bool{}, pressed: map[render.Key]bool{}}
}

func (f *fakeInput) IsKeyPressed(key render.Key) bool     { return f.held[key] }
func (f *fakeInput) IsKeyJustPressed(key render.Key) bool { return f.pressed[key] }
func (f *fakeInput) GetCursorPosition() (int, int)        { return 0, 0 }
func (f *fakeInput) IsMouseButtonPressed(render.MouseButton) bool {
	return false
}

// tap presses key for a single update.
func (f *fakeInput) tap(g *Game, key render.Key) error {
	f.pressed[key] = true
	defer delete(f.pressed, key)
	return g.Update()
}

type fakeLoader struct {
	img render.Image
	err error
}

func (l fakeLoader) LoadImage(string) (render.Image, error) { return l.img, l.err }

func newTestGame(t *testing.T, loader render.ResourceLoader) (*Game, *fakeInput) {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	if loader != nil {
		cfg.Demo.NormalMap = "normals.png"
	} else {
		loader = fakeLoader{}
	}

	in := newFakeInput()
	g, err := New(cfg, rendertest.NewRenderer(4096), in, loader)
	require.NoError(t, err)
	t.Cleanup(func() { _ = g.Close() })
	return g, in
}

func TestNewBuildsScene(t *testing.T) {
	g, _ := newTestGame(t, nil)

	assert.NotEmpty(t, g.scene.walls)
	for _, w := range g.scene.walls {
		for _, p := range []shadows.Point{w.A, w.B} {
			assert.True(t, p.Y >= 0 && p.Y <= g.scene.height, "wall point %v inside the map", p)
		}
	}
	assert.Len(t, g.scene.crates, 3)
	assert.Len(t, g.scene.pillars, 2)
	assert.Len(t, g.Lights.Lights(), 3)
	assert.Len(t, g.Lights.DisabledLights(), 1, "the sun starts off")
	assert.Equal(t, 30.0, g.viewW)
	assert.Equal(t, 20.0, g.viewH)
}

func TestNewRejectsEmptyMap(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Demo.Map = nil

	_, err = New(cfg, rendertest.NewRenderer(4096), newFakeInput(), fakeLoader{})
	assert.Error(t, err)
}

func TestToScreenFlipsY(t *testing.T) {
	g, _ := newTestGame(t, nil)

	x, y := g.toScreen(shadows.Point{X: 0, Y: 20})
	assert.Equal(t, float32(0), x)
	assert.Equal(t, float32(0), y)

	x, y = g.toScreen(shadows.Point{X: 1, Y: 19})
	assert.Equal(t, float32(32), x)
	assert.Equal(t, float32(32), y)
}

func TestTogglesReachManager(t *testing.T) {
	g, in := newTestGame(t, nil)

	require.NoError(t, in.tap(g, render.KeyH))
	assert.False(t, g.Lights.Shadows())
	assert.Equal(t, "Shadows: off", g.Messages[len(g.Messages)-1].Text)

	require.NoError(t, in.tap(g, render.KeyP))
	assert.True(t, g.Lights.Pseudo3D())

	require.NoError(t, in.tap(g, render.KeySpace))
	assert.True(t, g.lights.sun.IsActive())
	assert.Len(t, g.Lights.Lights(), 4)

	require.NoError(t, in.tap(g, render.KeyL))
	assert.False(t, g.lights.lamp.IsActive())

	require.NoError(t, in.tap(g, render.KeyX))
	assert.True(t, g.lights.torch.IsXray())

	require.NoError(t, in.tap(g, render.KeyN))
	assert.Equal(t, "No normal map loaded", g.Messages[len(g.Messages)-1].Text)
}

func TestNormalMapToggle(t *testing.T) {
	normals := &rendertest.Image{W: 960, H: 640}
	g, in := newTestGame(t, fakeLoader{img: normals})
	assert.Same(t, normals, g.Lights.NormalMap())

	require.NoError(t, in.tap(g, render.KeyN))
	assert.Nil(t, g.Lights.NormalMap())
	require.NoError(t, in.tap(g, render.KeyN))
	assert.Same(t, normals, g.Lights.NormalMap())
}

func TestMissingNormalMapIsNotFatal(t *testing.T) {
	g, _ := newTestGame(t, fakeLoader{err: errors.New("no such file")})
	assert.Nil(t, g.Lights.NormalMap())
}

func TestEscapeQuits(t *testing.T) {
	g, in := newTestGame(t, nil)
	assert.ErrorIs(t, in.tap(g, render.KeyEscape), ErrQuit)
}

func TestPlayerMovesAndTorchFollows(t *testing.T) {
	g, in := newTestGame(t, nil)
	start := g.scene.player.Body.Position()

	in.held[render.KeyD] = true
	for i := 0; i < 10; i++ {
		require.NoError(t, g.Update())
	}

	pos := g.scene.player.Body.Position()
	assert.Greater(t, pos.X, start.X)
	assert.InDelta(t, start.Y, pos.Y, 1e-6)
	assert.InDelta(t, pos.X, g.lights.torch.Position().X, 1e-9)
	assert.InDelta(t, 0, g.lights.torch.Direction(), 1e-9)

	delete(in.held, render.KeyD)
	in.held[render.KeyW] = true
	require.NoError(t, g.Update())
	assert.InDelta(t, 1.5707963, g.lights.torch.Direction(), 1e-6)
}

func TestCameraStaysInsideMap(t *testing.T) {
	g, in := newTestGame(t, nil)
	in.held[render.KeyLeft] = true
	in.held[render.KeyDown] = true
	require.NoError(t, g.Update())
	assert.Equal(t, 0.0, g.Camera.X)
	assert.Equal(t, 0.0, g.Camera.Y)

	g.Layout(480, 320)
	assert.Equal(t, 15.0, g.viewW)
	in.held[render.KeyLeft] = false
	in.held[render.KeyRight] = true
	for i := 0; i < 300; i++ {
		require.NoError(t, g.Update())
	}
	assert.Equal(t, 15.0, g.Camera.X)
}

func TestDrawLightsTheScene(t *testing.T) {
	g, _ := newTestGame(t, nil)
	screen := &rendertest.Image{W: 960, H: 640}

	require.NoError(t, g.Update())
	g.Draw(screen)

	stats := g.Lights.Stats()
	assert.Positive(t, stats.LightsDrawn)
	assert.Positive(t, stats.Vertices)
	require.Len(t, screen.Rects, 1)
	assert.Equal(t, render.BlendMultiply, screen.Rects[0].Blend)
	assert.Equal(t, 1, g.frame)

	// every crate box is filled as two triangles from the solid source
	require.Len(t, screen.Textured, len(g.scene.crates))
	for _, call := range screen.Textured {
		assert.Len(t, call.Vertices, 4)
		assert.Equal(t, []uint16{0, 1, 2, 0, 2, 3}, call.Indices)
		assert.Same(t, g.solid, call.Images[0])
	}
}

func TestMessagesExpire(t *testing.T) {
	g, _ := newTestGame(t, nil)
	g.ShowMessage("hello")
	g.updateMessages(messageDuration / 2)
	assert.Len(t, g.Messages, 1)
	g.updateMessages(messageDuration)
	assert.Empty(t, g.Messages)
}
