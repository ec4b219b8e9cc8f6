package geo

import "math"

// Vector2D represents a 2D vector in a local flat plane
type Vector2D struct {
	X float64 // East component
	Y float64 // North component
}

// NullVector2D marks an absent vector.
var NullVector2D = Vector2D{X: math.NaN(), Y: math.NaN()}

// IsNull reports whether v is NullVector2D (or contains a NaN component).
func (v Vector2D) IsNull() bool {
	return math.IsNaN(v.X) || math.IsNaN(v.Y)
}

// IsZero reports whether both components are zero.
func (v Vector2D) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

func (v Vector2D) Add(o Vector2D) Vector2D { return Vector2D{X: v.X + o.X, Y: v.Y + o.Y} }
func (v Vector2D) Sub(o Vector2D) Vector2D { return Vector2D{X: v.X - o.X, Y: v.Y - o.Y} }
func (v Vector2D) Neg() Vector2D           { return Vector2D{X: -v.X, Y: -v.Y} }
func (v Vector2D) Scale(f float64) Vector2D {
	return Vector2D{X: v.X * f, Y: v.Y * f}
}

// Abs returns the length of the vector.
func (v Vector2D) Abs() float64 {
	return math.Hypot(v.X, v.Y)
}

// Dot returns the dot product of v and o.
func (v Vector2D) Dot(o Vector2D) float64 {
	return v.X*o.X + v.Y*o.Y
}

// Unit returns v scaled to length 1. A zero vector is returned unchanged.
func (v Vector2D) Unit() Vector2D {
	l := v.Abs()
	if l == 0 {
		return v
	}
	return v.Scale(1 / l)
}

// SetAbs returns a vector pointing the same way as v with length l.
// A zero vector yields a zero vector.
func (v Vector2D) SetAbs(l float64) Vector2D {
	if v.IsZero() {
		return Vector2D{}
	}
	return v.Unit().Scale(l)
}

// Norm returns the vector perpendicular to v, rotated 90 degrees to the
// right (clockwise) or to the left.
func (v Vector2D) Norm(right bool) Vector2D {
	if right {
		return Vector2D{X: v.Y, Y: -v.X}
	}
	return Vector2D{X: -v.Y, Y: v.X}
}

// Intersect returns the intersection of the infinite lines through oa along
// a and through ob along b. The second return is false for parallel lines.
func Intersect(a, oa, b, ob Vector2D) (Vector2D, bool) {
	if oa == ob {
		return oa, true
	}

	p1, p2 := oa, oa.Add(a)
	p3, p4 := ob, ob.Add(b)

	det := (p1.X-p2.X)*(p3.Y-p4.Y) - (p1.Y-p2.Y)*(p3.X-p4.X)
	if det == 0 {
		return NullVector2D, false
	}
	ca := p1.X*p2.Y - p1.Y*p2.X
	cb := p3.X*p4.Y - p3.Y*p4.X

	return Vector2D{
		X: (ca*(p3.X-p4.X) - cb*(p1.X-p2.X)) / det,
		Y: (ca*(p3.Y-p4.Y) - cb*(p1.Y-p2.Y)) / det,
	}, true
}

// Vector3D is a 3D vector, used for ECEF coordinates in meters.
type Vector3D struct {
	X, Y, Z float64
}

func (v Vector3D) Sub(o Vector3D) Vector3D {
	return Vector3D{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// Abs returns the length of the vector.
func (v Vector3D) Abs() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Dist returns the distance between two points.
func Dist(a, b Vector3D) float64 {
	return a.Sub(b).Abs()
}
