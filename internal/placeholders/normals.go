// Package placeholders generates stand-in art for the demo: a tangent-space
// normal map that matches the demo's tile map.
package placeholders

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"

	"chosenoffset.com/raylight/internal/core/shadows"
)

// TileSize is the standard size for placeholder tiles
const TileSize = 32

// Bevel settings per tile kind.
const (
	floorBevel = 3
	floorSlope = 0.35
	wallBevel  = 8
	wallSlope  = 0.8
)

// FlatNormal is a surface facing straight out of the screen.
var FlatNormal = EncodeNormal(0, 0, 1)

// EncodeNormal packs a y-up normal into RGB as n*0.5+0.5.
func EncodeNormal(nx, ny, nz float64) color.NRGBA {
	l := math.Sqrt(nx*nx + ny*ny + nz*nz)
	if l == 0 {
		nx, ny, nz, l = 0, 0, 1, 1
	}
	enc := func(v float64) uint8 {
		return uint8(math.Round((v/l*0.5 + 0.5) * 255))
	}
	return color.NRGBA{R: enc(nx), G: enc(ny), B: enc(nz), A: 255}
}

// CreateBevelTile creates a tile whose outer bevel pixels lean away from the
// center by slope. Image rows grow downward, so the top rim leans +y.
func CreateBevelTile(bevel int, slope float64) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, TileSize, TileSize))
	draw.Draw(img, img.Bounds(), &image.Uniform{FlatNormal}, image.Point{}, draw.Src)

	for y := 0; y < TileSize; y++ {
		for x := 0; x < TileSize; x++ {
			var nx, ny float64
			switch {
			case x < bevel:
				nx = -slope
			case x >= TileSize-bevel:
				nx = slope
			}
			switch {
			case y < bevel:
				ny = slope
			case y >= TileSize-bevel:
				ny = -slope
			}
			if nx != 0 || ny != 0 {
				img.SetNRGBA(x, y, EncodeNormal(nx, ny, 1))
			}
		}
	}

	return img
}

// NormalMap lays out one bevel tile per grid cell, walls deeper than floors.
func NormalMap(grid shadows.Grid) *image.NRGBA {
	cols, rows := grid.Size()
	floor := CreateBevelTile(floorBevel, floorSlope)
	wall := CreateBevelTile(wallBevel, wallSlope)

	img := image.NewNRGBA(image.Rect(0, 0, cols*TileSize, rows*TileSize))
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			tile := floor
			if grid.BlocksSight(col, row) {
				tile = wall
			}
			x := col * TileSize
			y := row * TileSize
			destRect := image.Rect(x, y, x+TileSize, y+TileSize)
			draw.Draw(img, destRect, tile, image.Point{}, draw.Src)
		}
	}

	return img
}

// SavePNG saves an image to a PNG file
func SavePNG(img image.Image, filepath string) error {
	file, err := os.Create(filepath)
	if err != nil {
		return err
	}

	if err := png.Encode(file, img); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
