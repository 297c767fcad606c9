package geo

// BBox is an axis-aligned rectangle in whichever coordinate space the
// caller picks (mercator meters, tile pixels, ...).
type BBox struct {
	Left, Bottom, Right, Top float64
}

// outcode bits, per Cohen-Sutherland.
const (
	inside = 0
	left   = 1
	right  = 2
	bottom = 4
	top    = 8
)

func (b BBox) outcode(x, y float64) int {
	code := inside
	switch {
	case x < b.Left:
		code |= left
	case x > b.Right:
		code |= right
	}
	switch {
	case y < b.Bottom:
		code |= bottom
	case y > b.Top:
		code |= top
	}
	return code
}

// Point is a plain 2D float coordinate, used for clipping math.
type Point struct {
	X, Y float64
}

// ClipLine clips the segment (p0,p1) against the bbox using Cohen-Sutherland.
// Returns ok=false if the segment lies entirely outside.
func (b BBox) ClipLine(p0, p1 Point) (Point, Point, bool) {
	code0 := b.outcode(p0.X, p0.Y)
	code1 := b.outcode(p1.X, p1.Y)

	for {
		if code0|code1 == inside {
			return p0, p1, true
		}
		if code0&code1 != 0 {
			return Point{}, Point{}, false
		}

		outside := code0
		if outside == inside {
			outside = code1
		}

		var x, y float64
		switch {
		case outside&top != 0:
			x = p0.X + (p1.X-p0.X)*(b.Top-p0.Y)/(p1.Y-p0.Y)
			y = b.Top
		case outside&bottom != 0:
			x = p0.X + (p1.X-p0.X)*(b.Bottom-p0.Y)/(p1.Y-p0.Y)
			y = b.Bottom
		case outside&right != 0:
			y = p0.Y + (p1.Y-p0.Y)*(b.Right-p0.X)/(p1.X-p0.X)
			x = b.Right
		case outside&left != 0:
			y = p0.Y + (p1.Y-p0.Y)*(b.Left-p0.X)/(p1.X-p0.X)
			x = b.Left
		}

		if outside == code0 {
			p0 = Point{X: x, Y: y}
			code0 = b.outcode(p0.X, p0.Y)
		} else {
			p1 = Point{X: x, Y: y}
			code1 = b.outcode(p1.X, p1.Y)
		}
	}
}

// IntersectsCircle reports whether a circle of the given radius centered at
// (cx,cy) intersects this axis-aligned box (circle-vs-AABB test).
func (b BBox) IntersectsCircle(cx, cy, radius float64) bool {
	nearestX := clampF(cx, b.Left, b.Right)
	nearestY := clampF(cy, b.Bottom, b.Top)
	dx := cx - nearestX
	dy := cy - nearestY
	return dx*dx+dy*dy <= radius*radius
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
