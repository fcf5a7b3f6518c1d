package game

import (
	"fmt"
	"image/color"

	"go.uber.org/zap"

	"chosenoffset.com/raylight/internal/core/shadows"
	"chosenoffset.com/raylight/internal/logging"
	"chosenoffset.com/raylight/internal/physics"
	"chosenoffset.com/raylight/internal/render"
)

var (
	floorColor  = color.RGBA{150, 140, 125, 255}
	wallColor   = color.RGBA{60, 55, 50, 255}
	crateColor  = color.RGBA{170, 110, 50, 255}
	crateFill   = color.RGBA{110, 70, 35, 255}
	pillarColor = color.RGBA{120, 120, 130, 255}
	playerColor = color.RGBA{255, 255, 100, 255}
	textColor   = color.RGBA{255, 255, 255, 255}
)

// Draw renders the scene, lights it and draws the overlay on top.
func (g *Game) Draw(screen render.Image) {
	// Step 1: draw the unlit scene
	screen.Fill(floorColor)
	g.drawWalls(screen)
	g.drawCrates(screen)
	g.drawPillars(screen)
	g.drawPlayer(screen)

	// Step 2: accumulate light and composite it over the scene
	if err := g.Lights.Render(); err != nil {
		logging.Log.Error("Light render failed", zap.Error(err))
		return
	}
	if err := g.Lights.Composite(screen); err != nil {
		logging.Log.Error("Light composite failed", zap.Error(err))
		return
	}

	g.frame++
	if err := g.stats.Record(g.frame, g.Lights.Stats()); err != nil && !g.statsErr {
		g.statsErr = true
		logging.Log.Warn("Frame stats not recorded", zap.Error(err))
	}

	// Step 3: overlay, unaffected by lighting
	g.drawUI(screen)
	g.drawHUD(screen)
}

func (g *Game) view() shadows.Bounds {
	return g.Camera.View(g.viewW, g.viewH)
}

// toScreen maps a y-up world point to y-down screen pixels.
func (g *Game) toScreen(p shadows.Point) (float32, float32) {
	v := g.view()
	return float32((p.X - v.MinX) * g.ppu), float32((v.MaxY - p.Y) * g.ppu)
}

func (g *Game) drawWalls(screen render.Image) {
	for _, seg := range g.scene.walls {
		x0, y0 := g.toScreen(seg.A)
		x1, y1 := g.toScreen(seg.B)
		g.Renderer.StrokeLine(screen, x0, y0, x1, y1, 3, wallColor)
	}
}

func (g *Game) drawCrates(screen render.Image) {
	var buf [4]shadows.Point
	for _, c := range g.scene.crates {
		verts := c.Fixture.Vertices(buf[:0])
		g.fillPolygon(screen, verts, crateFill)
		g.strokePolygon(screen, verts, crateColor)
	}
}

// fillPolygon draws a convex polygon as a triangle fan.
func (g *Game) fillPolygon(screen render.Image, verts []shadows.Point, clr color.RGBA) {
	if len(verts) < 3 {
		return
	}
	r, gr, b, a := float32(clr.R)/255, float32(clr.G)/255, float32(clr.B)/255, float32(clr.A)/255
	g.fillVerts = g.fillVerts[:0]
	g.fillIdx = g.fillIdx[:0]
	for i, p := range verts {
		x, y := g.toScreen(p)
		g.fillVerts = append(g.fillVerts, render.Vertex{
			DstX: x, DstY: y, SrcX: 0.5, SrcY: 0.5,
			ColorR: r, ColorG: gr, ColorB: b, ColorA: a,
		})
		if i >= 2 {
			g.fillIdx = append(g.fillIdx, 0, uint16(i-1), uint16(i))
		}
	}
	screen.DrawTriangles(g.fillVerts, g.fillIdx, g.solid, &render.DrawTrianglesOptions{AntiAlias: true})
}

func (g *Game) strokePolygon(screen render.Image, verts []shadows.Point, clr color.Color) {
	for i := range verts {
		x0, y0 := g.toScreen(verts[i])
		x1, y1 := g.toScreen(verts[(i+1)%len(verts)])
		g.Renderer.StrokeLine(screen, x0, y0, x1, y1, 2, clr)
	}
}

func (g *Game) drawPillars(screen render.Image) {
	for _, p := range g.scene.pillars {
		g.fillCircle(screen, p.Fixture, pillarColor)
	}
}

func (g *Game) fillCircle(screen render.Image, f physics.Fixture, clr color.Color) {
	c, r := f.Circle()
	x, y := g.toScreen(c)
	g.Renderer.FillCircle(screen, x, y, float32(r*g.ppu), clr)
}

func (g *Game) drawPlayer(screen render.Image) {
	p := g.scene.player
	x, y := g.toScreen(p.Body.Position())
	r := float32(p.Radius * g.ppu)
	g.Renderer.FillCircle(screen, x, y, r, playerColor)
	g.Renderer.StrokeCircle(screen, x, y, r, 2, color.RGBA{200, 200, 50, 255})
}

func (g *Game) drawUI(screen render.Image) {
	// Draw on-screen messages
	y := 50.0
	for _, msg := range g.Messages {
		alpha := uint8(255 * (msg.TimeLeft / msg.MaxTime))
		g.Renderer.DrawText(screen, msg.Text, 20, int(y), color.RGBA{255, 255, 255, alpha}, 1.0)
		y += 20
	}
}

func (g *Game) drawHUD(screen render.Image) {
	s := g.Lights.Stats()
	lines := []string{
		fmt.Sprintf("lights %d drawn / %d enabled / %d culled", s.LightsDrawn, s.LightsUpdated, s.LightsCulled),
		fmt.Sprintf("rays %d  vertices %d  draws %d  shadow casters %d", s.RaysCast, s.Vertices, s.Flushes, s.ShadowFixtures),
		"WASD move  arrows camera  B blur  C cull  F soft  G gamma  H shadows",
		"I interpolate  P pseudo-3D  L lamp  SPACE sun  X x-ray  N normals  ESC quit",
	}
	_, lineH := g.Renderer.MeasureText("M", 1.0)
	y := g.height - len(lines)*(lineH+4) - 8
	for _, line := range lines {
		g.Renderer.DrawText(screen, line, 10, y, textColor, 1.0)
		y += lineH + 4
	}
}
