// Package game is the interactive lighting demo: a tile map turned into a
// Chipmunk space, lit by one light of each kind.
package game

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"go.uber.org/zap"

	"chosenoffset.com/raylight/internal/config"
	"chosenoffset.com/raylight/internal/logging"
	"chosenoffset.com/raylight/internal/render"
	"chosenoffset.com/raylight/internal/render/lighting"
	"chosenoffset.com/raylight/internal/telemetry"
)

// ErrQuit is returned from Update when the player asks to leave.
var ErrQuit = errors.New("quit requested")

const messageDuration = 3.0

// Game holds the demo state.
type Game struct {
	Renderer render.Renderer
	InputMgr render.InputManager

	Lights   *lighting.Manager
	Camera   Camera
	Messages []Message

	scene     *scene
	lights    *demoLights
	settings  config.LightingConfig
	normalMap render.Image
	solid     render.Image // 1x1 white source for filled polygons
	fillVerts []render.Vertex
	fillIdx   []uint16
	stats     *telemetry.StatsWriter
	statsErr  bool

	ppu           float64 // pixels per world unit
	width, height int     // screen pixels
	viewW, viewH  float64 // world units
	frame         int
}

// New builds the scene, the light manager and the demo lights from cfg.
func New(cfg *config.Config, r render.Renderer, in render.InputManager, loader render.ResourceLoader) (*Game, error) {
	sc, err := buildScene(cfg.Demo)
	if err != nil {
		return nil, err
	}

	m, err := lighting.NewManager(r, sc.space, cfg.Lighting.Options(), cfg.Screen.Width, cfg.Screen.Height)
	if err != nil {
		return nil, fmt.Errorf("creating light manager: %w", err)
	}

	g := &Game{
		Renderer: r,
		InputMgr: in,
		Lights:   m,
		Camera:   Camera{Speed: 10},
		scene:    sc,
		settings: cfg.Lighting,
		ppu:      cfg.Demo.PixelsPerUnit,
	}
	g.resize(cfg.Screen.Width, cfg.Screen.Height)
	g.solid = r.NewImage(1, 1)
	g.solid.Fill(color.White)

	g.lights, err = buildLights(m, sc, cfg.Demo.Rays)
	if err != nil {
		m.Dispose()
		return nil, fmt.Errorf("creating demo lights: %w", err)
	}

	if path := cfg.Demo.NormalMap; path != "" {
		img, err := loader.LoadImage(path)
		if err != nil {
			logging.Log.Warn("Normal map not loaded", zap.String("path", path), zap.Error(err))
		} else {
			g.normalMap = img
			m.SetNormalMap(img)
		}
	}

	g.stats, err = telemetry.CreateStatsFile(cfg.Telemetry.StatsPath, cfg.Telemetry.Interval)
	if err != nil {
		m.Dispose()
		return nil, err
	}
	return g, nil
}

// Update handles game logic updates.
func (g *Game) Update() error {
	// Delta time for timers (assuming 60 FPS)
	dt := 1.0 / 60.0

	if g.InputMgr.IsKeyJustPressed(render.KeyEscape) {
		return ErrQuit
	}

	g.updateMessages(dt)
	g.handleToggles()
	g.movePlayer()
	g.moveCamera(dt)
	g.scene.space.Step(dt)

	v := g.view()
	g.Lights.SetViewBounds(v.MinX, v.MinY, v.MaxX, v.MaxY)
	g.Lights.Update()
	return nil
}

// Layout follows the window size and resizes the light map with it.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.width || outsideHeight != g.height {
		g.resize(outsideWidth, outsideHeight)
	}
	return outsideWidth, outsideHeight
}

func (g *Game) resize(w, h int) {
	g.width, g.height = w, h
	g.viewW = float64(w) / g.ppu
	g.viewH = float64(h) / g.ppu
	g.Lights.Resize(w, h)
	g.clampCamera()
}

// Close flushes the stats file and releases GPU resources.
func (g *Game) Close() error {
	g.Lights.Dispose()
	g.solid.Dispose()
	return g.stats.Close()
}

func (g *Game) handleToggles() {
	s := &g.settings
	toggles := []struct {
		key  render.Key
		name string
		flag *bool
	}{
		{render.KeyB, "Blur", &s.Blur},
		{render.KeyC, "Culling", &s.Culling},
		{render.KeyF, "Soft shadows", &s.SoftShadows},
		{render.KeyG, "Gamma", &s.Gamma},
		{render.KeyH, "Shadows", &s.Shadows},
		{render.KeyI, "Shadow color interpolation", &s.InterpolateShadowColor},
		{render.KeyP, "Pseudo-3D", &s.Pseudo3D},
	}

	changed := false
	for _, t := range toggles {
		if g.InputMgr.IsKeyJustPressed(t.key) {
			*t.flag = !*t.flag
			changed = true
			g.ShowMessage(fmt.Sprintf("%s: %s", t.name, onOff(*t.flag)))
		}
	}
	if changed {
		g.applySettings()
	}

	if g.InputMgr.IsKeyJustPressed(render.KeyL) {
		lamp := g.lights.lamp
		lamp.SetActive(!lamp.IsActive())
		g.ShowMessage("Lamp: " + onOff(lamp.IsActive()))
	}
	if g.InputMgr.IsKeyJustPressed(render.KeySpace) {
		sun := g.lights.sun
		sun.SetActive(!sun.IsActive())
		g.ShowMessage("Sun: " + onOff(sun.IsActive()))
	}
	if g.InputMgr.IsKeyJustPressed(render.KeyX) {
		torch := g.lights.torch
		torch.SetXray(!torch.IsXray())
		g.ShowMessage("Torch x-ray: " + onOff(torch.IsXray()))
	}
	if g.InputMgr.IsKeyJustPressed(render.KeyN) {
		if g.normalMap == nil {
			g.ShowMessage("No normal map loaded")
		} else if g.Lights.NormalMap() != nil {
			g.Lights.SetNormalMap(nil)
			g.ShowMessage("Normal map: off")
		} else {
			g.Lights.SetNormalMap(g.normalMap)
			g.ShowMessage("Normal map: on")
		}
	}
}

// applySettings pushes the toggled flags into the light manager.
func (g *Game) applySettings() {
	s := g.settings
	m := g.Lights
	m.SetBlur(s.Blur)
	m.SetCulling(s.Culling)
	m.SetSoftShadows(s.SoftShadows)
	m.SetGammaCorrection(s.Gamma)
	m.SetShadows(s.Shadows)
	m.SetPseudo3D(s.Pseudo3D, s.InterpolateShadowColor)
}

func (g *Game) movePlayer() {
	var dx, dy float64
	if g.InputMgr.IsKeyPressed(render.KeyW) {
		dy++
	}
	if g.InputMgr.IsKeyPressed(render.KeyS) {
		dy--
	}
	if g.InputMgr.IsKeyPressed(render.KeyA) {
		dx--
	}
	if g.InputMgr.IsKeyPressed(render.KeyD) {
		dx++
	}

	p := &g.scene.player
	if dx == 0 && dy == 0 {
		p.Body.SetVelocity(0, 0, 0)
		return
	}
	n := math.Hypot(dx, dy)
	p.Body.SetVelocity(dx/n*p.Speed, dy/n*p.Speed, 0)
	if facing := math.Atan2(dy, dx); facing != p.Facing {
		p.Facing = facing
		pos := p.Body.Position()
		p.Body.SetTransform(pos.X, pos.Y, facing)
	}
}

func (g *Game) moveCamera(dt float64) {
	step := g.Camera.Speed * dt
	if g.InputMgr.IsKeyPressed(render.KeyUp) {
		g.Camera.Y += step
	}
	if g.InputMgr.IsKeyPressed(render.KeyDown) {
		g.Camera.Y -= step
	}
	if g.InputMgr.IsKeyPressed(render.KeyLeft) {
		g.Camera.X -= step
	}
	if g.InputMgr.IsKeyPressed(render.KeyRight) {
		g.Camera.X += step
	}
	g.clampCamera()
}

// clampCamera keeps the view inside the map where the map is large enough.
func (g *Game) clampCamera() {
	if g.scene == nil {
		return
	}
	g.Camera.X = math.Max(0, math.Min(g.Camera.X, g.scene.width-g.viewW))
	g.Camera.Y = math.Max(0, math.Min(g.Camera.Y, g.scene.height-g.viewH))
}

func (g *Game) updateMessages(dt float64) {
	var active []Message
	for _, msg := range g.Messages {
		msg.TimeLeft -= dt
		if msg.TimeLeft > 0 {
			active = append(active, msg)
		}
	}
	g.Messages = active
}

// ShowMessage adds a new message to be displayed on screen.
func (g *Game) ShowMessage(text string) {
	g.Messages = append(g.Messages, Message{
		Text:     text,
		TimeLeft: messageDuration,
		MaxTime:  messageDuration,
	})
	logging.Log.Debug("Toggle", zap.String("message", text))
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
