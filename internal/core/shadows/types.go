package shadows

import "math"

// Point represents a 2D point in space
type Point struct {
	X, Y float64
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns the vector from q to p.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Scale returns p multiplied by s.
func (p Point) Scale(s float64) Point { return Point{p.X * s, p.Y * s} }

// Len returns the length of p treated as a vector.
func (p Point) Len() float64 { return math.Hypot(p.X, p.Y) }

// WithLength returns p rescaled to length l. A zero vector stays zero.
func (p Point) WithLength(l float64) Point {
	n := p.Len()
	if n == 0 {
		return Point{}
	}
	return p.Scale(l / n)
}

// Rotate returns p rotated by angle radians around the origin.
func (p Point) Rotate(angle float64) Point {
	sin, cos := math.Sincos(angle)
	return Point{p.X*cos - p.Y*sin, p.X*sin + p.Y*cos}
}

// IsNaN reports whether either coordinate is NaN.
func (p Point) IsNaN() bool { return math.IsNaN(p.X) || math.IsNaN(p.Y) }

// Coord represents a tile coordinate
type Coord struct {
	X, Y int
}

// EdgeType names the tile side a wall segment was extracted from.
type EdgeType string

const (
	EdgeTop    EdgeType = "top"
	EdgeRight  EdgeType = "right"
	EdgeBottom EdgeType = "bottom"
	EdgeLeft   EdgeType = "left"
)

// Segment represents a wall segment that can cast shadows
type Segment struct {
	A, B         Point
	TileX        int // Grid coordinates of the first tile this segment belongs to
	TileY        int
	TilesCovered []Coord // All tiles this segment covers (for merged segments)
	EdgeType     EdgeType
}

// Bounds is an axis-aligned bounding box.
// The zero value is a degenerate box at the origin; use EmptyBounds to start accumulating.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
}

// EmptyBounds returns an inverted box that any Extend call will replace.
func EmptyBounds() Bounds {
	return Bounds{
		MinX: math.Inf(1), MinY: math.Inf(1),
		MaxX: math.Inf(-1), MaxY: math.Inf(-1),
	}
}

// Empty reports whether nothing has been added to the box.
func (b Bounds) Empty() bool {
	return b.MinX > b.MaxX || b.MinY > b.MaxY
}

// Extend grows the box to include (x, y). NaN coordinates are ignored so a
// single bad sample cannot poison later overlap tests.
func (b *Bounds) Extend(x, y float64) {
	if math.IsNaN(x) || math.IsNaN(y) {
		return
	}
	b.MinX = math.Min(b.MinX, x)
	b.MinY = math.Min(b.MinY, y)
	b.MaxX = math.Max(b.MaxX, x)
	b.MaxY = math.Max(b.MaxY, y)
}

// Expand returns the box grown by d on every side.
func (b Bounds) Expand(d float64) Bounds {
	return Bounds{b.MinX - d, b.MinY - d, b.MaxX + d, b.MaxY + d}
}

// Overlaps reports whether the two boxes intersect. Touching edges count.
func (b Bounds) Overlaps(o Bounds) bool {
	if b.Empty() || o.Empty() {
		return false
	}
	return b.MinX <= o.MaxX && b.MaxX >= o.MinX && b.MinY <= o.MaxY && b.MaxY >= o.MinY
}

// Contains reports whether (x, y) lies inside the box.
func (b Bounds) Contains(x, y float64) bool {
	return x >= b.MinX && x <= b.MaxX && y >= b.MinY && y <= b.MaxY
}

// Width returns the horizontal extent of the box.
func (b Bounds) Width() float64 { return b.MaxX - b.MinX }

// Height returns the vertical extent of the box.
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

// Center returns the middle of the box.
func (b Bounds) Center() Point {
	return Point{(b.MinX + b.MaxX) / 2, (b.MinY + b.MaxY) / 2}
}
