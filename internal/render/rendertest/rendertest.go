// Package rendertest provides a recording implementation of the render
// interfaces so GPU-facing code can be tested headless.
package rendertest

import (
	"errors"
	"image"
	"image/color"

	"chosenoffset.com/raylight/internal/render"
)

// ErrCompile is returned by CompileShader when FailCompile is set.
var ErrCompile = errors.New("rendertest: shader compile failed")

// TriangleCall is one recorded DrawTrianglesShader call.
type TriangleCall struct {
	Vertices []render.Vertex
	Indices  []uint16
	Shader   *Shader
	Blend    render.Blend
	Images   [4]render.Image
	Uniforms map[string]interface{}
}

// RectCall is one recorded DrawRectShader call.
type RectCall struct {
	Width, Height int
	Shader        *Shader
	Blend         render.Blend
	Images        [4]render.Image
	Uniforms      map[string]interface{}
	GeoM          *GeoM
}

// ImageCall is one recorded DrawImage call.
type ImageCall struct {
	Src   render.Image
	Blend render.Blend
	GeoM  *GeoM
}

// GeoM records the transforms applied to it.
type GeoM struct {
	SX, SY float64
	TX, TY float64
	Theta  float64
}

func init() {
	if render.NewGeoM == nil {
		render.NewGeoM = func() render.GeoM { return &GeoM{SX: 1, SY: 1} }
	}
}

func (g *GeoM) Translate(tx, ty float64) {
	g.TX += tx
	g.TY += ty
}

func (g *GeoM) Scale(sx, sy float64) {
	g.SX *= sx
	g.SY *= sy
}

func (g *GeoM) Rotate(angle float64) { g.Theta += angle }

func (g *GeoM) Reset() { *g = GeoM{SX: 1, SY: 1} }

// Renderer records every image it creates.
type Renderer struct {
	MaxSize     int
	FailCompile bool
	Images      []*Image
	Shaders     []*Shader
}

// NewRenderer returns a renderer whose images may be at most maxSize pixels on a side.
func NewRenderer(maxSize int) *Renderer {
	return &Renderer{MaxSize: maxSize}
}

func (r *Renderer) NewImage(width, height int) render.Image {
	img := &Image{W: width, H: height}
	r.Images = append(r.Images, img)
	return img
}

func (r *Renderer) MaxTextureSize() int { return r.MaxSize }

func (r *Renderer) FillCircle(render.Image, float32, float32, float32, color.Color) {}

func (r *Renderer) StrokeCircle(render.Image, float32, float32, float32, float32, color.Color) {}

func (r *Renderer) StrokeLine(render.Image, float32, float32, float32, float32, float32, color.Color) {
}

func (r *Renderer) DrawText(render.Image, string, int, int, color.Color, float64) {}

func (r *Renderer) MeasureText(text string, scale float64) (int, int) {
	return int(float64(len(text)) * 6 * scale), int(13 * scale)
}

func (r *Renderer) CompileShader(src []byte) (render.Shader, error) {
	if r.FailCompile {
		return nil, ErrCompile
	}
	s := &Shader{Source: string(src)}
	r.Shaders = append(r.Shaders, s)
	return s, nil
}

// Shader remembers its source and whether it was disposed.
type Shader struct {
	Source   string
	Disposed bool
}

func (s *Shader) Dispose() { s.Disposed = true }

// Image records the draw calls issued against it.
type Image struct {
	W, H      int
	Disposed  bool
	Clears    int
	Fills     []color.Color
	Triangles []TriangleCall
	Textured  []TriangleCall // DrawTriangles, source image in Images[0]
	Rects     []RectCall
	Draws     []ImageCall
}

func (i *Image) Bounds() image.Rectangle { return image.Rect(0, 0, i.W, i.H) }

func (i *Image) Size() (int, int) { return i.W, i.H }

func (i *Image) Fill(clr color.Color) { i.Fills = append(i.Fills, clr) }

func (i *Image) Clear() { i.Clears++ }

func (i *Image) DrawImage(src render.Image, opts *render.DrawImageOptions) {
	call := ImageCall{Src: src}
	if opts != nil {
		call.Blend = opts.Blend
		call.GeoM, _ = opts.GeoM.(*GeoM)
	}
	i.Draws = append(i.Draws, call)
}

func (i *Image) DrawTriangles(vertices []render.Vertex, indices []uint16, src render.Image, _ *render.DrawTrianglesOptions) {
	i.Textured = append(i.Textured, TriangleCall{
		Vertices: append([]render.Vertex(nil), vertices...),
		Indices:  append([]uint16(nil), indices...),
		Images:   [4]render.Image{src},
	})
}

func (i *Image) DrawRectShader(width, height int, shader render.Shader, opts *render.DrawRectShaderOptions) {
	call := RectCall{Width: width, Height: height, Shader: shader.(*Shader)}
	if opts != nil {
		call.Blend = opts.Blend
		call.Images = opts.Images
		call.Uniforms = opts.Uniforms
		call.GeoM, _ = opts.GeoM.(*GeoM)
	}
	i.Rects = append(i.Rects, call)
}

// DrawTrianglesShader copies the vertex and index slices since callers reuse them.
func (i *Image) DrawTrianglesShader(vertices []render.Vertex, indices []uint16, shader render.Shader, opts *render.DrawTrianglesShaderOptions) {
	call := TriangleCall{
		Vertices: append([]render.Vertex(nil), vertices...),
		Indices:  append([]uint16(nil), indices...),
		Shader:   shader.(*Shader),
	}
	if opts != nil {
		call.Blend = opts.Blend
		call.Images = opts.Images
		call.Uniforms = opts.Uniforms
	}
	i.Triangles = append(i.Triangles, call)
}

func (i *Image) Dispose() { i.Disposed = true }

// VertexCount sums the vertices of all recorded triangle calls.
func (i *Image) VertexCount() int {
	n := 0
	for _, c := range i.Triangles {
		n += len(c.Vertices)
	}
	return n
}

// Reset forgets recorded calls.
func (i *Image) Reset() {
	i.Clears = 0
	i.Fills = nil
	i.Triangles = nil
	i.Textured = nil
	i.Rects = nil
	i.Draws = nil
}
