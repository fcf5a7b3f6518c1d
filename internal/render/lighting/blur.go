package lighting

import "chosenoffset.com/raylight/internal/render"

// applyBlur runs blurNum separable Gaussian passes, bouncing between the light
// map and a scratch image of the same size.
func (m *Manager) applyBlur() {
	w, h := m.lightMap.Size()
	for i := 0; i < m.blurNum; i++ {
		m.pingMap.DrawRectShader(w, h, m.shaders.blur, &render.DrawRectShaderOptions{
			Images:   [4]render.Image{m.lightMap},
			Uniforms: m.blurH,
			Blend:    render.BlendCopy,
		})
		m.lightMap.DrawRectShader(w, h, m.shaders.blur, &render.DrawRectShaderOptions{
			Images:   [4]render.Image{m.pingMap},
			Uniforms: m.blurV,
			Blend:    render.BlendCopy,
		})
	}
}
