// Package lighting renders ray-cast 2D lights with shadows from a physics world
// into an off-screen light map that is later composited over the scene.
package lighting

import (
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"chosenoffset.com/raylight/internal/core/shadows"
	"chosenoffset.com/raylight/internal/logging"
	"chosenoffset.com/raylight/internal/physics"
	"chosenoffset.com/raylight/internal/render"
)

// State is the phase of the frame the manager is in.
type State int

const (
	StateIdle State = iota
	StateUpdating
	StateMainPass
	StateShadowPass
	StateBlurring
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateUpdating:
		return "updating"
	case StateMainPass:
		return "main-pass"
	case StateShadowPass:
		return "shadow-pass"
	case StateBlurring:
		return "blurring"
	default:
		return "unknown"
	}
}

// FrameStats counts the work done by the last Update and Render.
type FrameStats struct {
	LightsUpdated  int  // enabled lights visited by Update
	LightsRebuilt  int  // lights that cast their rays again
	LightsCulled   int  // lights outside the view
	LightsDrawn    int  // lights that emitted geometry
	RaysCast       int  // world ray casts issued
	ShadowFixtures int  // fixtures that cast a dynamic shadow
	Roofs          int  // roof caps drawn
	Vertices       int  // vertices submitted to the GPU
	Flushes        int  // draw calls issued by the batch
	Blurred        bool // whether the blur pass ran
}

// Manager owns the lights, the light map and the batch they are drawn with.
// It is driven from the render thread once per frame and is not safe for
// concurrent use.
type Manager struct {
	renderer render.Renderer
	world    physics.World
	batch    *Batch
	arena    *arena
	shaders  *shaderSet

	lights   []Light
	disabled []Light

	ambient                Color
	shadows                bool
	blur                   bool
	blurNum                int
	softShadows            bool
	pseudo3d               bool
	interpolateShadowColor bool
	culling                bool
	gamma                  bool
	diffuse                bool
	normalMap              render.Image

	lightMapScale        int
	viewportW, viewportH int
	lightMap, pingMap    render.Image
	view                 shadows.Bounds
	viewProj             mgl32.Mat4

	lightUniforms, shadowUniforms   map[string]interface{}
	blurH, blurV, compositeUniforms map[string]interface{}

	state    State
	stats    FrameStats
	disposed bool
}

// Options is the initial state of a Manager. Every field can be changed
// later through the matching setter.
type Options struct {
	LightMapScale          int // light map = viewport / scale
	Ambient                Color
	Shadows                bool
	Blur                   bool
	BlurNum                int
	SoftShadows            bool
	Pseudo3D               bool
	InterpolateShadowColor bool
	Culling                bool
	Gamma                  bool
	Diffuse                bool
}

// DefaultOptions returns shadows, one blur pass, soft shadows and culling on
// a quarter-size light map under a dim ambient.
func DefaultOptions() Options {
	return Options{
		LightMapScale:          4,
		Ambient:                Color{R: 0.1, G: 0.1, B: 0.1, A: 1},
		Shadows:                true,
		Blur:                   true,
		BlurNum:                1,
		SoftShadows:            true,
		InterpolateShadowColor: true,
		Culling:                true,
	}
}

// NewManager compiles the light shaders and allocates a light map for a
// width×height viewport. The view starts as the rectangle (0, 0)-(width, height).
func NewManager(r render.Renderer, world physics.World, opts Options, width, height int) (*Manager, error) {
	set, err := compileShaders(r)
	if err != nil {
		return nil, err
	}

	m := &Manager{
		renderer: r,
		world:    world,
		batch:    NewBatch(),
		arena:    &arena{},
		shaders:  set,
		ambient:                opts.Ambient,
		shadows:                opts.Shadows,
		blur:                   opts.Blur,
		blurNum:                max(opts.BlurNum, 0),
		softShadows:            opts.SoftShadows,
		pseudo3d:               opts.Pseudo3D,
		interpolateShadowColor: opts.InterpolateShadowColor,
		culling:                opts.Culling,
		gamma:                  opts.Gamma,
		diffuse:                opts.Diffuse,
		lightMapScale:          max(opts.LightMapScale, 1),
		lightUniforms:          map[string]interface{}{},
		shadowUniforms:         map[string]interface{}{},
		blurH:                  map[string]interface{}{"Dir": []float32{1, 0}},
		blurV:                  map[string]interface{}{"Dir": []float32{0, 1}},
		compositeUniforms:      map[string]interface{}{},
	}
	m.Resize(width, height)
	m.SetViewBounds(0, 0, float64(width), float64(height))
	logging.Log.Debug("Light manager created", zap.Int("width", width), zap.Int("height", height))
	return m, nil
}

// World returns the collision world rays are cast against.
func (m *Manager) World() physics.World { return m.world }

// SetWorld swaps the collision world. Every light recomputes its rays.
func (m *Manager) SetWorld(w physics.World) {
	m.world = w
	m.markAllDirty()
}

// Resize sets the viewport size. The light map is the viewport divided by the
// light map scale, shrunk to the renderer's texture limit keeping its aspect.
func (m *Manager) Resize(width, height int) {
	m.viewportW, m.viewportH = max(width, 1), max(height, 1)
	w := max(m.viewportW/m.lightMapScale, 1)
	h := max(m.viewportH/m.lightMapScale, 1)
	cw, ch := clampToTexture(w, h, m.renderer.MaxTextureSize())
	if cw != w || ch != h {
		logging.Log.Warn("Light map clamped to texture limit",
			zap.Int("width", w), zap.Int("height", h),
			zap.Int("clamped_width", cw), zap.Int("clamped_height", ch))
	}

	if m.lightMap != nil {
		if lw, lh := m.lightMap.Size(); lw == cw && lh == ch {
			return
		}
		m.lightMap.Dispose()
		m.pingMap.Dispose()
	}
	m.lightMap = m.renderer.NewImage(cw, ch)
	m.pingMap = m.renderer.NewImage(cw, ch)
	logging.Log.Info("Light map resized", zap.Int("width", cw), zap.Int("height", ch))
}

// clampToTexture shrinks w×h so neither side exceeds limit, preserving the aspect ratio.
func clampToTexture(w, h, limit int) (int, int) {
	if limit <= 0 || (w <= limit && h <= limit) {
		return w, h
	}
	scale := float64(limit) / float64(max(w, h))
	return max(int(float64(w)*scale), 1), max(int(float64(h)*scale), 1)
}

// SetLightMapScale sets how many viewport pixels share one light map pixel.
func (m *Manager) SetLightMapScale(scale int) {
	m.lightMapScale = max(scale, 1)
	m.Resize(m.viewportW, m.viewportH)
}

// SetViewBounds sets the visible world rectangle, y up. It drives culling and
// the projection into the light map.
func (m *Manager) SetViewBounds(minX, minY, maxX, maxY float64) {
	m.view = shadows.Bounds{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY}
	m.viewProj = mgl32.Ortho2D(float32(minX), float32(maxX), float32(minY), float32(maxY))
}

// View returns the visible world rectangle.
func (m *Manager) View() shadows.Bounds { return m.view }

// SetAmbientLight sets the light every pixel receives.
func (m *Manager) SetAmbientLight(c Color) { m.ambient = c }

// AmbientLight returns the ambient light.
func (m *Manager) AmbientLight() Color { return m.ambient }

// SetShadows toggles the light map. Without it lights are added straight onto the scene.
func (m *Manager) SetShadows(enabled bool) { m.shadows = enabled }

// Shadows reports whether the light map is composited with ambient darkness.
func (m *Manager) Shadows() bool { return m.shadows }

// SetBlur toggles the blur pass.
func (m *Manager) SetBlur(enabled bool) { m.blur = enabled }

// SetBlurNum sets how many horizontal+vertical blur passes run.
func (m *Manager) SetBlurNum(n int) { m.blurNum = max(n, 0) }

// SetSoftShadows toggles the ray-based penumbra for every light.
func (m *Manager) SetSoftShadows(enabled bool) { m.softShadows = enabled }

// SetPseudo3D toggles the height-based dynamic shadow pass. interpolate
// selects whether shadow shading is carried by vertex colors or by s.
func (m *Manager) SetPseudo3D(enabled, interpolate bool) {
	m.pseudo3d = enabled
	m.interpolateShadowColor = interpolate
}

// Pseudo3D reports whether the dynamic shadow pass runs.
func (m *Manager) Pseudo3D() bool { return m.pseudo3d }

// SetCulling toggles skipping lights outside the view.
func (m *Manager) SetCulling(enabled bool) {
	m.culling = enabled
	m.markAllDirty()
}

// SetGammaCorrection toggles gamma correction of the light map.
func (m *Manager) SetGammaCorrection(enabled bool) { m.gamma = enabled }

// SetDiffuse toggles diffuse compositing, where lights brighten ambient instead of covering it.
func (m *Manager) SetDiffuse(enabled bool) { m.diffuse = enabled }

// SetNormalMap binds a normal map for the main pass, or removes it with nil.
func (m *Manager) SetNormalMap(img render.Image) {
	m.normalMap = img
	m.batch.SetNormalMap(img)
}

// NormalMap returns the bound normal map, or nil.
func (m *Manager) NormalMap() render.Image { return m.normalMap }

// Lights returns the enabled lights. The slice must not be modified.
func (m *Manager) Lights() []Light { return m.lights }

// DisabledLights returns the lights switched off with SetActive(false).
func (m *Manager) DisabledLights() []Light { return m.disabled }

// State returns the current frame phase.
func (m *Manager) State() State { return m.state }

// Stats returns the counters of the last frame.
func (m *Manager) Stats() FrameStats { return m.stats }

// AccumulationTexture is the light map written by Render.
func (m *Manager) AccumulationTexture() render.Image { return m.lightMap }

// Update recomputes the rays of every enabled light. Disabled lights are skipped.
func (m *Manager) Update() {
	if m.disposed {
		return
	}
	m.state = StateUpdating
	m.stats = FrameStats{}
	for _, l := range m.lights {
		if l.update() {
			m.stats.LightsRebuilt++
		}
		if l.IsCulled() {
			m.stats.LightsCulled++
		}
	}
	m.stats.LightsUpdated = len(m.lights)
	m.state = StateIdle
}

// Render draws every visible light into the light map, subtracts dynamic
// shadows in pseudo-3D mode and blurs the result.
func (m *Manager) Render() error {
	if m.disposed {
		return ErrDisposed
	}
	m.stats.LightsDrawn = 0
	m.stats.ShadowFixtures = 0
	m.stats.Roofs = 0
	m.stats.Blurred = false
	m.batch.ResetStats()
	m.lightMap.Clear()

	m.state = StateMainPass
	m.lightUniforms["UseNormals"] = boolUniform(m.normalMap != nil)
	lw, _ := m.lightMap.Size()
	m.lightUniforms["NormalDepth"] = m.viewProj[0] * 0.5 * float32(lw)
	m.lightUniforms["Gamma"] = boolUniform(m.gamma)
	m.batch.Begin(m.lightMap, m.shaders.light, m.viewProj, render.BlendAdditive, m.lightUniforms)
	for _, l := range m.lights {
		if !drawable(l) {
			continue
		}
		before := m.batch.Count()
		flushes, _ := m.batch.Stats()
		l.draw(m.batch)
		if f, _ := m.batch.Stats(); f != flushes || m.batch.Count() != before {
			m.stats.LightsDrawn++
		}
	}
	m.batch.End()

	if m.pseudo3d && m.shadows {
		m.state = StateShadowPass
		m.shadowUniforms["Interpolate"] = boolUniform(m.interpolateShadowColor)
		m.batch.Begin(m.lightMap, m.shaders.shadow, m.viewProj, render.BlendReverseSubtract, m.shadowUniforms)
		for _, l := range m.lights {
			if !drawable(l) {
				continue
			}
			m.arena.reset()
			l.drawDynamicShadows(m.batch)
		}
		m.batch.End()
	}

	if m.blur && m.blurNum > 0 && m.stats.LightsDrawn > 0 {
		m.state = StateBlurring
		m.applyBlur()
		m.stats.Blurred = true
	}

	m.stats.Flushes, m.stats.Vertices = m.batch.Stats()
	m.state = StateIdle
	return nil
}

// UpdateAndRender runs Update followed by Render.
func (m *Manager) UpdateAndRender() error {
	m.Update()
	return m.Render()
}

// Composite draws the light map over dst, stretched to dst's size. With
// shadows the scene is multiplied by ambient plus light; without, the lights
// are simply added.
func (m *Manager) Composite(dst render.Image) error {
	if m.disposed {
		return ErrDisposed
	}
	dw, dh := dst.Size()
	lw, lh := m.lightMap.Size()
	geo := render.NewGeoM()
	geo.Scale(float64(dw)/float64(lw), float64(dh)/float64(lh))

	if !m.shadows {
		dst.DrawImage(m.lightMap, &render.DrawImageOptions{GeoM: geo, Blend: render.BlendAdditive})
		return nil
	}

	m.compositeUniforms["Ambient"] = []float32{m.ambient.R, m.ambient.G, m.ambient.B, m.ambient.A}
	m.compositeUniforms["Diffuse"] = boolUniform(m.diffuse)
	m.compositeUniforms["Gamma"] = boolUniform(m.gamma)
	dst.DrawRectShader(lw, lh, m.shaders.composite, &render.DrawRectShaderOptions{
		Images:   [4]render.Image{m.lightMap},
		Uniforms: m.compositeUniforms,
		Blend:    render.BlendMultiply,
		GeoM:     geo,
	})
	return nil
}

// Dispose releases the light map, the shaders and every light.
func (m *Manager) Dispose() {
	if m.disposed {
		return
	}
	for _, list := range [][]Light{m.lights, m.disabled} {
		for _, l := range list {
			b := l.base()
			b.disposed = true
			b.active = false
			b.body = nil
		}
	}
	m.lights = nil
	m.disabled = nil
	m.lightMap.Dispose()
	m.pingMap.Dispose()
	m.shaders.dispose()
	m.disposed = true
	logging.Log.Debug("Light manager disposed")
}

func (m *Manager) add(l Light) {
	m.lights = append(m.lights, l)
	logging.Log.Debug("Light added", zap.Stringer("light", l.ID()), zap.Stringer("kind", l.Kind()))
}

func (m *Manager) remove(b *lightBase) {
	m.lights = removeLight(m.lights, b)
	m.disabled = removeLight(m.disabled, b)
	logging.Log.Debug("Light disposed", zap.Stringer("light", b.id), zap.Stringer("kind", b.kind))
}

func (m *Manager) setActive(b *lightBase, active bool) {
	from, to := &m.lights, &m.disabled
	if active {
		from, to = &m.disabled, &m.lights
	}
	for i, l := range *from {
		if l.base() == b {
			*from = append((*from)[:i], (*from)[i+1:]...)
			*to = append(*to, l)
			return
		}
	}
}

func (m *Manager) markAllDirty() {
	for _, list := range [][]Light{m.lights, m.disabled} {
		for _, l := range list {
			l.base().dirty = true
		}
	}
}

// drawable reports whether l has a ray fan and is in view.
func drawable(l Light) bool {
	b := l.base()
	return b.built && !b.culled
}

func removeLight(list []Light, b *lightBase) []Light {
	for i, l := range list {
		if l.base() == b {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

func boolUniform(b bool) float32 {
	if b {
		return 1
	}
	return 0
}
