package geo

import "math"

// DegToRad converts degrees to radians.
func DegToRad(d float64) float64 { return d * math.Pi / 180 }

// RadToDeg converts radians to degrees.
func RadToDeg(r float64) float64 { return r * 180 / math.Pi }

// IsValidHeading reports whether hdg is within [0, 360].
func IsValidHeading(hdg float64) bool {
	return hdg >= 0 && hdg <= 360
}

// NormalizeHeading wraps hdg into [0, 360).
func NormalizeHeading(hdg float64) float64 {
	for hdg < 0 {
		hdg += 360
	}
	for hdg >= 360 {
		hdg -= 360
	}
	return hdg
}

// HeadingToVector converts a heading (degrees) and magnitude to X/Y components
func HeadingToVector(headingDeg float64, magnitude float64) Vector2D {
	rad := DegToRad(90 - headingDeg) // Convert compass heading to math angle
	return Vector2D{
		X: magnitude * math.Cos(rad),
		Y: magnitude * math.Sin(rad),
	}
}

// VectorToHeading returns the compass heading of a direction vector.
func VectorToHeading(dir Vector2D) float64 {
	l := dir.Abs()
	if l == 0 {
		return 0
	}
	a := RadToDeg(math.Asin(dir.X / l))
	switch {
	case dir.X >= 0 && dir.Y >= 0:
		return NormalizeHeading(a)
	case dir.X < 0 && dir.Y >= 0:
		return NormalizeHeading(360 + a)
	default:
		return NormalizeHeading(180 - a)
	}
}

// RelativeHeading returns how to turn to get from h1 to h2, positive being
// right and negative left, always the shorter way around.
func RelativeHeading(h1, h2 float64) float64 {
	if h1 > h2 {
		if h1 > h2+180 {
			return 360 - h1 + h2
		}
		return -(h1 - h2)
	}
	if h2 > h1+180 {
		return -(360 - h2 + h1)
	}
	return h2 - h1
}

// LonDelta returns the absolute longitude difference between x and y,
// taking the antimeridian into account.
func LonDelta(x, y float64) float64 {
	u, d := math.Max(x, y), math.Min(x, y)
	if u-d <= 180 {
		return math.Abs(u - d)
	}
	return math.Abs(360 - u + d)
}
