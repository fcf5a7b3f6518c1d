package lighting

import (
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"chosenoffset.com/raylight/internal/logging"
	"chosenoffset.com/raylight/internal/render"
)

const (
	// VertexSize is the number of floats in one light vertex:
	// x, y, packed color, s, intensity, falloff xyz, light xyz.
	VertexSize = 11
	// MaxVertices is the batch capacity. Indices for a full batch fit in uint16.
	MaxVertices = 32767
)

// MeshVertex is one light-mesh vertex before the per-light constants are attached.
type MeshVertex struct {
	X, Y  float32
	Color float32 // packed, see Color.Pack
	S     float32 // shading scalar: 1 at the source, 0 at the edge of the light
}

// Batch accumulates light geometry and submits it in as few draw calls as possible.
// It is owned by one Manager and is not safe for concurrent use.
type Batch struct {
	vertices []float32
	idx      int
	drawing  bool

	target    render.Image
	shader    render.Shader
	viewProj  mgl32.Mat4
	blend     render.Blend
	uniforms  map[string]interface{}
	normalMap render.Image

	intensity float32
	falloff   mgl32.Vec3
	light     mgl32.Vec3

	out     []render.Vertex
	indices []uint16

	flushCount  int
	vertexCount int
}

// NewBatch allocates a batch with room for MaxVertices vertices.
func NewBatch() *Batch {
	indices := make([]uint16, MaxVertices)
	for i := range indices {
		indices[i] = uint16(i)
	}
	return &Batch{
		vertices:  make([]float32, MaxVertices*VertexSize),
		out:       make([]render.Vertex, MaxVertices),
		indices:   indices,
		intensity: 1,
		falloff:   mgl32.Vec3{1, 0, 0},
	}
}

// Begin starts a pass into target. Calling Begin while drawing ends the previous pass.
func (b *Batch) Begin(target render.Image, shader render.Shader, viewProj mgl32.Mat4, blend render.Blend, uniforms map[string]interface{}) {
	if b.drawing {
		b.End()
	}
	b.target = target
	b.shader = shader
	b.viewProj = viewProj
	b.blend = blend
	b.uniforms = uniforms
	b.idx = 0
	b.drawing = true
}

// SetLightParams sets the per-light constants written into every following vertex.
// The falloff is a shader uniform, so a different falloff flushes first.
func (b *Batch) SetLightParams(intensity float32, falloff, light mgl32.Vec3) {
	if falloff != b.falloff && b.drawing {
		b.Flush()
	}
	b.intensity = intensity
	b.falloff = falloff
	b.light = light
}

// SetNormalMap binds the image sampled by the light shader. Changing it while
// drawing flushes the geometry that was recorded against the previous binding.
func (b *Batch) SetNormalMap(img render.Image) {
	if img == b.normalMap {
		return
	}
	if b.drawing {
		b.Flush()
	}
	b.normalMap = img
}

// NormalMap returns the bound normal map, if any.
func (b *Batch) NormalMap() render.Image {
	return b.normalMap
}

// Count returns the number of vertices waiting to be flushed.
func (b *Batch) Count() int {
	return b.idx / VertexSize
}

// CheckSpace flushes if n more vertices would not fit. Call it before starting
// a primitive so a flush never splits one.
func (b *Batch) CheckSpace(n int) {
	if b.idx+n*VertexSize > len(b.vertices) {
		b.Flush()
	}
}

// Vertex appends one vertex. Reserve space with CheckSpace first; a Vertex on
// a full batch flushes before writing. Outside Begin/End it is dropped.
func (b *Batch) Vertex(v MeshVertex) {
	if !b.drawing {
		logging.Log.Debug("Light vertex outside a pass dropped", zap.Float32("x", v.X), zap.Float32("y", v.Y))
		return
	}
	if b.idx+VertexSize > len(b.vertices) {
		b.Flush()
	}
	d := b.vertices[b.idx : b.idx+VertexSize]
	d[0] = v.X
	d[1] = v.Y
	d[2] = v.Color
	d[3] = v.S
	d[4] = b.intensity
	d[5] = b.falloff[0]
	d[6] = b.falloff[1]
	d[7] = b.falloff[2]
	d[8] = b.light[0]
	d[9] = b.light[1]
	d[10] = b.light[2]
	b.idx += VertexSize
}

// Triangle appends one triangle, flushing first if it would not fit.
func (b *Batch) Triangle(v1, v2, v3 MeshVertex) {
	b.CheckSpace(3)
	b.Vertex(v1)
	b.Vertex(v2)
	b.Vertex(v3)
}

// Fan appends the triangles (center, rim[i], rim[i+1]). A closed fan also joins
// the last rim vertex back to the first.
func (b *Batch) Fan(center MeshVertex, rim []MeshVertex, closed bool) {
	if len(rim) < 2 {
		return
	}
	for i := 0; i < len(rim)-1; i++ {
		b.Triangle(center, rim[i], rim[i+1])
	}
	if closed && len(rim) > 2 {
		b.Triangle(center, rim[len(rim)-1], rim[0])
	}
}

// Flush submits the recorded vertices in a single draw call.
func (b *Batch) Flush() {
	n := b.Count()
	if n == 0 || !b.drawing {
		b.idx = 0
		return
	}

	w, h := b.target.Size()
	sx, sy := float32(1), float32(1)
	if b.normalMap != nil {
		nw, nh := b.normalMap.Size()
		sx = float32(nw) / float32(w)
		sy = float32(nh) / float32(h)
	}

	// light heights share the horizontal pixel scale
	ppu := b.viewProj[0] * 0.5 * float32(w)
	for i := 0; i < n; i++ {
		d := b.vertices[i*VertexSize : (i+1)*VertexSize]
		px, py := b.project(d[0], d[1], float32(w), float32(h))
		lx, ly := b.project(d[8], d[9], float32(w), float32(h))
		c := UnpackColor(d[2])
		b.out[i] = render.Vertex{
			DstX:    px,
			DstY:    py,
			SrcX:    px * sx,
			SrcY:    py * sy,
			ColorR:  c.R * d[4],
			ColorG:  c.G * d[4],
			ColorB:  c.B * d[4],
			ColorA:  c.A,
			Custom0: d[3],
			Custom1: lx,
			Custom2: ly,
			Custom3: d[10] * ppu,
		}
	}

	uniforms := make(map[string]interface{}, len(b.uniforms)+1)
	for k, v := range b.uniforms {
		uniforms[k] = v
	}
	uniforms["Falloff"] = []float32{b.vertices[5], b.vertices[6], b.vertices[7]}

	opts := &render.DrawTrianglesShaderOptions{Uniforms: uniforms, Blend: b.blend}
	if b.normalMap != nil {
		opts.Images[0] = b.normalMap
	}
	b.target.DrawTrianglesShader(b.out[:n], b.indices[:n], b.shader, opts)

	b.flushCount++
	b.vertexCount += n
	b.idx = 0
}

// project maps a world position through the view-projection to target pixels, y down.
func (b *Batch) project(x, y, w, h float32) (float32, float32) {
	clip := b.viewProj.Mul4x1(mgl32.Vec4{x, y, 0, 1})
	return (clip[0] + 1) * 0.5 * w, (1 - clip[1]) * 0.5 * h
}

// End flushes what is left and closes the pass.
func (b *Batch) End() {
	if !b.drawing {
		return
	}
	b.Flush()
	b.drawing = false
	b.target = nil
	b.uniforms = nil
}

// Drawing reports whether a pass is open.
func (b *Batch) Drawing() bool {
	return b.drawing
}

// Stats returns the draw calls and vertices submitted since the last ResetStats.
func (b *Batch) Stats() (flushes, vertices int) {
	return b.flushCount, b.vertexCount
}

// ResetStats zeroes the draw counters.
func (b *Batch) ResetStats() {
	b.flushCount = 0
	b.vertexCount = 0
}
