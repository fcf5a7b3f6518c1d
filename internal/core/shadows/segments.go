package shadows

// Grid is a tile map that knows which cells block light.
type Grid interface {
	Size() (width, height int)
	BlocksSight(x, y int) bool
}

// StringGrid is a Grid described by rows of text; '#' cells block light.
type StringGrid []string

// Size returns the widest row and the number of rows.
func (g StringGrid) Size() (int, int) {
	w := 0
	for _, row := range g {
		w = max(w, len(row))
	}
	return w, len(g)
}

// BlocksSight reports whether the cell at (x, y) is a wall.
func (g StringGrid) BlocksSight(x, y int) bool {
	if y < 0 || y >= len(g) || x < 0 || x >= len(g[y]) {
		return false
	}
	return g[y][x] == '#'
}

// SegmentsFromGrid generates wall segments from a tile grid using a contour-based approach.
// Instead of creating per-tile segments, this extracts the perimeter of contiguous
// sight-blocking regions and merges colinear segments into longer walls.
// Grid row 0 maps to y = 0 and rows grow along +y.
func SegmentsFromGrid(grid Grid, tileSize float64) []Segment {
	width, height := grid.Size()

	// Step 1: Find all contiguous regions of sight-blocking tiles
	regions := findContiguousRegions(grid, width, height)

	// Step 2: Extract perimeter segments for each region
	var allSegments []Segment
	for _, region := range regions {
		allSegments = append(allSegments, extractPerimeterSegments(region, tileSize)...)
	}

	// Step 3: Merge colinear segments to create longer wall segments
	return mergeColinearSegments(allSegments)
}

// findContiguousRegions identifies all connected regions of sight-blocking tiles
func findContiguousRegions(grid Grid, width, height int) [][]Coord {
	visited := make(map[Coord]bool)
	var regions [][]Coord

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			coord := Coord{X: x, Y: y}
			if visited[coord] || !grid.BlocksSight(x, y) {
				continue
			}

			region := floodFill(grid, coord, width, height, visited)
			if len(region) > 0 {
				regions = append(regions, region)
			}
		}
	}

	return regions
}

// floodFill performs BFS to find all connected sight-blocking tiles
func floodFill(grid Grid, start Coord, width, height int, visited map[Coord]bool) []Coord {
	var region []Coord
	queue := []Coord{start}
	visited[start] = true

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		region = append(region, current)

		// 4-connected neighbours, no diagonals
		neighbors := [4]Coord{
			{X: current.X, Y: current.Y - 1},
			{X: current.X + 1, Y: current.Y},
			{X: current.X, Y: current.Y + 1},
			{X: current.X - 1, Y: current.Y},
		}

		for _, neighbor := range neighbors {
			if neighbor.X < 0 || neighbor.X >= width || neighbor.Y < 0 || neighbor.Y >= height {
				continue
			}
			if visited[neighbor] || !grid.BlocksSight(neighbor.X, neighbor.Y) {
				continue
			}

			visited[neighbor] = true
			queue = append(queue, neighbor)
		}
	}

	return region
}

// extractPerimeterSegments finds all exposed edges of a region
func extractPerimeterSegments(region []Coord, tileSize float64) []Segment {
	var segments []Segment

	regionSet := make(map[Coord]bool, len(region))
	for _, coord := range region {
		regionSet[coord] = true
	}

	for _, coord := range region {
		x, y := coord.X, coord.Y
		left := float64(x) * tileSize
		top := float64(y) * tileSize
		right := left + tileSize
		bottom := top + tileSize
		covered := []Coord{{X: x, Y: y}}

		if !regionSet[Coord{X: x, Y: y - 1}] {
			segments = append(segments, Segment{
				A: Point{left, top}, B: Point{right, top},
				TileX: x, TileY: y, TilesCovered: covered, EdgeType: EdgeTop,
			})
		}
		if !regionSet[Coord{X: x + 1, Y: y}] {
			segments = append(segments, Segment{
				A: Point{right, top}, B: Point{right, bottom},
				TileX: x, TileY: y, TilesCovered: covered, EdgeType: EdgeRight,
			})
		}
		if !regionSet[Coord{X: x, Y: y + 1}] {
			segments = append(segments, Segment{
				A: Point{right, bottom}, B: Point{left, bottom},
				TileX: x, TileY: y, TilesCovered: covered, EdgeType: EdgeBottom,
			})
		}
		if !regionSet[Coord{X: x - 1, Y: y}] {
			segments = append(segments, Segment{
				A: Point{left, bottom}, B: Point{left, top},
				TileX: x, TileY: y, TilesCovered: covered, EdgeType: EdgeLeft,
			})
		}
	}

	return segments
}

// mergeColinearSegments combines adjacent parallel segments into longer segments
func mergeColinearSegments(segments []Segment) []Segment {
	if len(segments) == 0 {
		return segments
	}

	merged := make([]bool, len(segments))
	var result []Segment

	for i := 0; i < len(segments); i++ {
		if merged[i] {
			continue
		}

		current := segments[i]
		merged[i] = true

		// Keep extending until no neighbour can be absorbed
		extended := true
		for extended {
			extended = false

			for j := 0; j < len(segments); j++ {
				if merged[j] || i == j {
					continue
				}
				if canMergeSegments(current, segments[j]) {
					current = mergeSegments(current, segments[j])
					merged[j] = true
					extended = true
					break
				}
			}
		}

		result = append(result, current)
	}

	return result
}

const mergeEpsilon = 0.001

// canMergeSegments checks if two segments are adjacent and colinear
func canMergeSegments(seg1, seg2 Segment) bool {
	if seg1.EdgeType != seg2.EdgeType {
		return false
	}

	switch seg1.EdgeType {
	case EdgeTop, EdgeBottom:
		if abs(seg1.A.Y-seg2.A.Y) > mergeEpsilon {
			return false
		}
		return abs(seg1.B.X-seg2.A.X) < mergeEpsilon || abs(seg1.A.X-seg2.B.X) < mergeEpsilon

	case EdgeLeft, EdgeRight:
		if abs(seg1.A.X-seg2.A.X) > mergeEpsilon {
			return false
		}
		return abs(seg1.B.Y-seg2.A.Y) < mergeEpsilon || abs(seg1.A.Y-seg2.B.Y) < mergeEpsilon
	}

	return false
}

// mergeSegments combines two adjacent colinear segments into one, keeping the winding of seg1
func mergeSegments(seg1, seg2 Segment) Segment {
	result := seg1

	switch seg1.EdgeType {
	case EdgeTop, EdgeBottom:
		lo := min(seg1.A.X, seg1.B.X, seg2.A.X, seg2.B.X)
		hi := max(seg1.A.X, seg1.B.X, seg2.A.X, seg2.B.X)
		if seg1.A.X <= seg1.B.X {
			result.A.X, result.B.X = lo, hi
		} else {
			result.A.X, result.B.X = hi, lo
		}

	case EdgeLeft, EdgeRight:
		lo := min(seg1.A.Y, seg1.B.Y, seg2.A.Y, seg2.B.Y)
		hi := max(seg1.A.Y, seg1.B.Y, seg2.A.Y, seg2.B.Y)
		if seg1.A.Y <= seg1.B.Y {
			result.A.Y, result.B.Y = lo, hi
		} else {
			result.A.Y, result.B.Y = hi, lo
		}
	}

	covered := make([]Coord, 0, len(seg1.TilesCovered)+len(seg2.TilesCovered))
	covered = append(covered, seg1.TilesCovered...)
	result.TilesCovered = append(covered, seg2.TilesCovered...)

	return result
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
