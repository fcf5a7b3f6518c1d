package game

import (
	"fmt"
	"image/color"
	"math"

	"github.com/jakecoffman/cp"
	"go.uber.org/zap"

	"chosenoffset.com/raylight/internal/config"
	"chosenoffset.com/raylight/internal/core/shadows"
	"chosenoffset.com/raylight/internal/logging"
	"chosenoffset.com/raylight/internal/physics"
	"chosenoffset.com/raylight/internal/render/lighting"
)

const (
	crateSize   = 1.2
	crateMass   = 4
	pillarSize  = 0.6
	playerSpeed = 6
)

// scene is everything that lives in the physics space.
type scene struct {
	space   *physics.Space
	walls   []shadows.Segment
	crates  []Crate
	pillars []Pillar
	player  Player
	width   float64 // world units
	height  float64
}

// buildScene turns the demo map into a Chipmunk space. Rows are read top to
// bottom, so tile y is flipped into the y-up world.
func buildScene(demo config.DemoConfig) (*scene, error) {
	if len(demo.Map) == 0 {
		return nil, fmt.Errorf("demo map is empty")
	}
	grid := shadows.StringGrid(demo.Map)
	cols, rows := grid.Size()
	tile := demo.TileSize

	s := &scene{
		space:  physics.NewSpace(),
		width:  float64(cols) * tile,
		height: float64(rows) * tile,
	}
	s.space.CP().SetDamping(0.2)

	wallShadow := &physics.ShadowDescriptor{Height: demo.WallHeight}
	walls := s.space.NewStaticBody(0, 0, 0)
	for _, seg := range shadows.SegmentsFromGrid(grid, tile) {
		seg.A = s.flip(seg.A)
		seg.B = s.flip(seg.B)
		s.walls = append(s.walls, seg)
		s.space.AddEdge(walls, seg.A, seg.B, wallShadow)
	}

	crateShadow := &physics.ShadowDescriptor{Height: crateSize, RoofShadow: true}
	for _, p := range []shadows.Point{{X: 8.5, Y: 7.5}, {X: 19.5, Y: 12.5}, {X: 24.5, Y: 4.5}} {
		moment := cp.MomentForBox(crateMass, crateSize, crateSize)
		body := s.space.NewDynamicBody(crateMass, moment, p.X, p.Y)
		s.crates = append(s.crates, Crate{
			Body:    body,
			Fixture: s.space.AddBox(body, crateSize, crateSize, crateShadow),
		})
	}

	pillarShadow := &physics.ShadowDescriptor{Height: demo.WallHeight * 2}
	for _, p := range []shadows.Point{{X: 15.5, Y: 9.5}, {X: 5.5, Y: 4.5}} {
		body := s.space.NewStaticBody(p.X, p.Y, 0)
		s.pillars = append(s.pillars, Pillar{
			Fixture: s.space.AddCircle(body, pillarSize, shadows.Point{}, pillarShadow),
		})
	}

	// the player is pushed back by walls, never spun by them, and casts no shadow
	s.player = Player{
		Body:   s.space.NewDynamicBody(1, math.Inf(1), 3.5, 3.5),
		Speed:  playerSpeed,
		Radius: 0.35,
	}
	s.space.AddCircle(s.player.Body, s.player.Radius, shadows.Point{}, nil)

	logging.Log.Info("Scene built",
		zap.Int("walls", len(s.walls)),
		zap.Int("crates", len(s.crates)),
		zap.Int("pillars", len(s.pillars)),
		zap.Float64("width", s.width),
		zap.Float64("height", s.height))
	return s, nil
}

func (s *scene) flip(p shadows.Point) shadows.Point {
	return shadows.Point{X: p.X, Y: s.height - p.Y}
}

// demoLights holds one light of each kind.
type demoLights struct {
	torch *lighting.PositionalLight
	lamp  *lighting.PositionalLight
	sun   *lighting.DirectionalLight
	strip *lighting.ChainLight
}

func buildLights(m *lighting.Manager, s *scene, rays config.RaysConfig) (*demoLights, error) {
	torch, err := lighting.NewConeLight(m, rays.Cone, lighting.ColorFrom(color.NRGBA{R: 255, G: 214, B: 150, A: 255}),
		12, 0, 0, 0, math.Pi/5)
	if err != nil {
		return nil, fmt.Errorf("torch: %w", err)
	}
	torch.SetHeight(1)
	torch.AttachToBody(s.player.Body, 0, 0, 0)
	torch.SetIgnoreAttachedBody(true)

	lamp, err := lighting.NewPointLight(m, rays.Point, lighting.ColorFrom(color.NRGBA{R: 120, G: 200, B: 255, A: 255}),
		9, 22.5, 15.5)
	if err != nil {
		return nil, fmt.Errorf("lamp: %w", err)
	}
	lamp.SetHeight(2.5)
	lamp.SetStaticLight(true)
	lamp.SetFalloff(1, 0.5, 1.5)

	sun, err := lighting.NewDirectionalLight(m, rays.Directional, lighting.Color{R: 0.35, G: 0.35, B: 0.5, A: 1}, -math.Pi/3)
	if err != nil {
		return nil, fmt.Errorf("sun: %w", err)
	}
	sun.SetHeight(math.Pi / 4)
	sun.SetActive(false)

	// a light strip hung just under the wall block in the middle room
	chain := []shadows.Point{s.flip(shadows.Point{X: 12, Y: 6.05}), s.flip(shadows.Point{X: 16, Y: 6.05})}
	strip, err := lighting.NewChainLight(m, rays.Chain, lighting.ColorFrom(color.NRGBA{R: 255, G: 90, B: 160, A: 255}),
		5, -1, chain)
	if err != nil {
		return nil, fmt.Errorf("strip: %w", err)
	}
	strip.SetIntensity(0.8)

	return &demoLights{torch: torch, lamp: lamp, sun: sun, strip: strip}, nil
}
