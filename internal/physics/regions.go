package physics

import "math"

// Region is a named, immutable area of the arena used to score a round.
type Region interface {
	Name() string
	Contains(p Vec2) bool
}

// InsideCircle reports whether p lies strictly inside the circle. A point on
// the boundary is outside, and a circle with a non-positive radius contains
// nothing.
func InsideCircle(p, center Vec2, radius float64) bool {
	if radius <= 0 {
		return false
	}
	return p.DistanceTo(center) < radius
}

// InsideHole is InsideCircle under the name the hole checks use.
func InsideHole(p, center Vec2, radius float64) bool {
	return InsideCircle(p, center, radius)
}

// InsideTriangle uses the edge sign test: p is inside, or on an edge, when the
// three edge cross products never take both signs. Zero-area triangles
// contain nothing.
func InsideTriangle(p, v1, v2, v3 Vec2) bool {
	if v2.Minus(v1).Cross(v3.Minus(v1)) == 0 {
		return false
	}

	d1 := edgeSign(p, v1, v2)
	d2 := edgeSign(p, v2, v3)
	d3 := edgeSign(p, v3, v1)

	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}

func edgeSign(p1, p2, p3 Vec2) float64 {
	return (p1.X-p3.X)*(p2.Z-p3.Z) - (p2.X-p3.X)*(p1.Z-p3.Z)
}

// InsideCrossBand reports whether p is within tolerance of either axis line
// through center. The region is plus-shaped: being near one line is enough.
func InsideCrossBand(p, center Vec2, tolerance float64) bool {
	if tolerance <= 0 {
		return false
	}
	return math.Abs(p.X-center.X) < tolerance || math.Abs(p.Z-center.Z) < tolerance
}

// Circle is a round scoring region.
type Circle struct {
	Label  string  `json:"name"`
	Center Vec2    `json:"center"`
	Radius float64 `json:"radius"`
}

func (c Circle) Name() string         { return c.Label }
func (c Circle) Contains(p Vec2) bool { return InsideCircle(p, c.Center, c.Radius) }

// Triangle is a three-sided scoring region.
type Triangle struct {
	Label string `json:"name"`
	V1    Vec2   `json:"v1"`
	V2    Vec2   `json:"v2"`
	V3    Vec2   `json:"v3"`
}

func (t Triangle) Name() string         { return t.Label }
func (t Triangle) Contains(p Vec2) bool { return InsideTriangle(p, t.V1, t.V2, t.V3) }

// CrossBand is the plus-shaped band along both axis lines through Center.
type CrossBand struct {
	Label     string  `json:"name"`
	Center    Vec2    `json:"center"`
	HalfWidth float64 `json:"half_width"`
}

func (c CrossBand) Name() string         { return c.Label }
func (c CrossBand) Contains(p Vec2) bool { return InsideCrossBand(p, c.Center, c.HalfWidth) }

// Hole removes any marble whose centre enters it.
type Hole struct {
	Label  string  `json:"name"`
	Center Vec2    `json:"center"`
	Radius float64 `json:"radius"`
}

func (h Hole) Name() string         { return h.Label }
func (h Hole) Contains(p Vec2) bool { return InsideHole(p, h.Center, h.Radius) }

// ValidateRegion rejects negative radii and widths. Zero is allowed and simply
// never matches.
func ValidateRegion(r Region) error {
	switch v := r.(type) {
	case Circle:
		if v.Radius < 0 || math.IsNaN(v.Radius) {
			return ErrInvalidRadius
		}
	case Hole:
		if v.Radius < 0 || math.IsNaN(v.Radius) {
			return ErrInvalidRadius
		}
	case CrossBand:
		if v.HalfWidth < 0 || math.IsNaN(v.HalfWidth) {
			return ErrInvalidRadius
		}
	}
	return nil
}
