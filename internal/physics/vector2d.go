package physics

import "math"

// Vec2 is a point or direction on the ground plane. The vertical axis is a
// rendering concern, so the second component is Z rather than Y.
type Vec2 struct {
	X float64 `json:"x"`
	Z float64 `json:"z"`
}

func NewVec2(x, z float64) Vec2 {
	return Vec2{X: x, Z: z}
}

func (v Vec2) Plus(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Z: v.Z + o.Z}
}

func (v Vec2) Minus(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Z: v.Z - o.Z}
}

func (v Vec2) Times(s float64) Vec2 {
	return Vec2{X: v.X * s, Z: v.Z * s}
}

func (v Vec2) Dot(o Vec2) float64 {
	return v.X*o.X + v.Z*o.Z
}

// Cross returns the z-component of the 3D cross product, signed.
func (v Vec2) Cross(o Vec2) float64 {
	return v.X*o.Z - v.Z*o.X
}

func (v Vec2) Magnitude() float64 {
	return math.Sqrt(v.X*v.X + v.Z*v.Z)
}

func (v Vec2) MagnitudeSquared() float64 {
	return v.X*v.X + v.Z*v.Z
}

// Normalize returns the unit vector in v's direction, or the zero vector.
func (v Vec2) Normalize() Vec2 {
	m := v.Magnitude()
	if m == 0 {
		return Vec2{}
	}
	return Vec2{X: v.X / m, Z: v.Z / m}
}

func (v Vec2) Invert() Vec2 {
	return Vec2{X: -v.X, Z: -v.Z}
}

// DistanceTo returns the Euclidean distance between two points.
func (v Vec2) DistanceTo(o Vec2) float64 {
	return v.Minus(o).Magnitude()
}

func (v Vec2) IsZero() bool {
	return v.X == 0 && v.Z == 0
}

func (v Vec2) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Z) && !math.IsInf(v.X, 0) && !math.IsInf(v.Z, 0)
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Vec2) float64 {
	return a.DistanceTo(b)
}
