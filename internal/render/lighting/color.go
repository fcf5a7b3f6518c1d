package lighting

import (
	"image/color"
	"math"
)

// Color is a straight (non-premultiplied) RGBA color with components in [0, 1].
type Color struct {
	R, G, B, A float32
}

var (
	colorBlack = Color{0, 0, 0, 1}
	colorWhite = Color{1, 1, 1, 1}
	colorClear = Color{}
)

// ColorFrom converts any color.Color.
func ColorFrom(c color.Color) Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Color{
		R: float32(n.R) / 255,
		G: float32(n.G) / 255,
		B: float32(n.B) / 255,
		A: float32(n.A) / 255,
	}
}

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	return color.NRGBA{
		R: to8(c.R), G: to8(c.G), B: to8(c.B), A: to8(c.A),
	}.RGBA()
}

// Pack stores the color as ABGR bytes inside a float32 so it fits one vertex
// slot. The lowest alpha bit is cleared so the bits never form a NaN.
func (c Color) Pack() float32 {
	bits := uint32(to8(c.A))<<24 | uint32(to8(c.B))<<16 | uint32(to8(c.G))<<8 | uint32(to8(c.R))
	return math.Float32frombits(bits & 0xfeffffff)
}

// UnpackColor reverses Pack. Alpha 254 reads back as fully opaque.
func UnpackColor(f float32) Color {
	bits := math.Float32bits(f)
	a := bits >> 24
	if a == 0xfe {
		a = 0xff
	}
	return Color{
		R: float32(bits&0xff) / 255,
		G: float32((bits>>8)&0xff) / 255,
		B: float32((bits>>16)&0xff) / 255,
		A: float32(a) / 255,
	}
}

// Lerp interpolates from c toward o by t.
func (c Color) Lerp(o Color, t float32) Color {
	return Color{
		R: c.R + (o.R-c.R)*t,
		G: c.G + (o.G-c.G)*t,
		B: c.B + (o.B-c.B)*t,
		A: c.A + (o.A-c.A)*t,
	}
}

func to8(v float32) uint8 {
	switch {
	case v <= 0 || v != v:
		return 0
	case v >= 1:
		return 255
	default:
		return uint8(v*255 + 0.5)
	}
}
