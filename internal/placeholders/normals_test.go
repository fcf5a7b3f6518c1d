package placeholders

import (
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chosenoffset.com/raylight/internal/core/shadows"
)

func TestEncodeNormal(t *testing.T) {
	assert.Equal(t, color.NRGBA{R: 128, G: 128, B: 255, A: 255}, FlatNormal)
	assert.Equal(t, FlatNormal, EncodeNormal(0, 0, 0), "zero falls back to flat")
	assert.Equal(t, color.NRGBA{R: 255, G: 128, B: 128, A: 255}, EncodeNormal(2, 0, 0))
}

func TestBevelTile(t *testing.T) {
	tile := CreateBevelTile(4, 0.5)

	assert.Equal(t, FlatNormal, tile.NRGBAAt(TileSize/2, TileSize/2))
	assert.Less(t, tile.NRGBAAt(0, TileSize/2).R, uint8(128), "left rim leans left")
	assert.Greater(t, tile.NRGBAAt(TileSize-1, TileSize/2).R, uint8(128))
	assert.Greater(t, tile.NRGBAAt(TileSize/2, 0).G, uint8(128), "top rim leans up")
	assert.Less(t, tile.NRGBAAt(TileSize/2, TileSize-1).G, uint8(128))
}

func TestNormalMapFollowsGrid(t *testing.T) {
	grid := shadows.StringGrid{"#.", ".."}
	img := NormalMap(grid)

	require.Equal(t, 2*TileSize, img.Bounds().Dx())
	require.Equal(t, 2*TileSize, img.Bounds().Dy())

	// the wall bevel is wider than the floor bevel
	probe := floorBevel + 1
	assert.NotEqual(t, FlatNormal, img.NRGBAAt(probe, TileSize/2))
	assert.Equal(t, FlatNormal, img.NRGBAAt(TileSize+probe, TileSize/2))
}

func TestSavePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "normals.png")
	require.NoError(t, SavePNG(NormalMap(shadows.StringGrid{"#"}), path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, TileSize, img.Bounds().Dx())

	assert.Error(t, SavePNG(NormalMap(shadows.StringGrid{"#"}), filepath.Join(t.TempDir(), "missing", "x.png")))
}
