package shadows

import "math"

// PointLineSide returns the cross product of (b-a) and (p-a).
// Positive means p is left of the directed line a->b, negative right, zero on the line.
func PointLineSide(a, b, p Point) float64 {
	return (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
}

// IsFacingPoint checks if a segment is facing towards a given point
// Uses cross product to determine if the point is on the "front" side of the segment
func IsFacingPoint(seg Segment, point Point) bool {
	return PointLineSide(seg.A, seg.B, point) > 0
}

// PointInPolygon tests if a point is inside a polygon using ray casting algorithm
func PointInPolygon(point Point, polygon []Point) bool {
	inside := false
	j := len(polygon) - 1

	for i := 0; i < len(polygon); i++ {
		xi, yi := polygon[i].X, polygon[i].Y
		xj, yj := polygon[j].X, polygon[j].Y

		if ((yi > point.Y) != (yj > point.Y)) &&
			(point.X < (xj-xi)*(point.Y-yi)/(yj-yi)+xi) {
			inside = !inside
		}
		j = i
	}

	return inside
}

// SignedArea returns twice the signed area of the polygon.
// Positive for counter-clockwise winding in a y-up frame.
func SignedArea(polygon []Point) float64 {
	area := 0.0
	j := len(polygon) - 1
	for i := range polygon {
		area += polygon[j].X*polygon[i].Y - polygon[i].X*polygon[j].Y
		j = i
	}
	return area
}

// Distance calculates the Euclidean distance between two points
func Distance(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// DistanceSq returns the squared distance between two points.
func DistanceSq(a, b Point) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	return dx*dx + dy*dy
}

// Lerp interpolates between a and b.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// RaySegmentIntersection checks if a ray intersects a line segment
// Returns: (intersects bool, distance float64, intersection point Point)
// The returned distance is measured in multiples of (dx, dy), so passing an
// unnormalised direction yields the fraction along it.
func RaySegmentIntersection(origin Point, dx, dy float64, seg Segment) (bool, float64, Point) {
	// Ray: P = origin + t * (dx, dy) for t >= 0
	// Segment: Q = seg.A + u * (seg.B - seg.A) for 0 <= u <= 1
	segDX := seg.B.X - seg.A.X
	segDY := seg.B.Y - seg.A.Y

	denominator := dx*segDY - dy*segDX
	if math.Abs(denominator) < 1e-10 {
		// Ray and segment are parallel
		return false, 0, Point{}
	}

	diffX := seg.A.X - origin.X
	diffY := seg.A.Y - origin.Y

	u := (diffX*dy - diffY*dx) / denominator
	t := (diffX*segDY - diffY*segDX) / denominator

	if u >= 0 && u <= 1 && t >= 0 {
		return true, t, Point{X: origin.X + t*dx, Y: origin.Y + t*dy}
	}

	return false, 0, Point{}
}
