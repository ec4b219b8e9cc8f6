package geo

import "math"

// Conversion factors
const (
	FeetToMeters = 0.3048
	NMToMeters   = 1852.0
)

// WGS84 ellipsoid parameters
const (
	WGS84SemiMajor  = 6378137.0
	WGS84Flattening = 1 / 298.257223563
	wgs84Ecc2       = WGS84Flattening * (2 - WGS84Flattening)
)

// FeetToMeter converts feet to meters.
func FeetToMeter(ft float64) float64 { return ft * FeetToMeters }

// MeterToFeet converts meters to feet.
func MeterToFeet(m float64) float64 { return m / FeetToMeters }

// Position is a geographic position. Elevation units depend on the caller
// and are stated wherever a Position is converted.
type Position struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Elev float64 `json:"elev"`
}

// IsNull reports whether the latitude or longitude is unset (NaN).
func (p Position) IsNull() bool {
	return math.IsNaN(p.Lat) || math.IsNaN(p.Lon)
}

// ToECEF converts a geodetic position with elevation in meters to WGS84
// earth-centered, earth-fixed coordinates in meters.
func ToECEF(lat, lon, elevM float64) Vector3D {
	phi := DegToRad(lat)
	lambda := DegToRad(lon)
	sinPhi := math.Sin(phi)
	rc := WGS84SemiMajor / math.Sqrt(1-wgs84Ecc2*sinPhi*sinPhi)

	return Vector3D{
		X: (rc + elevM) * math.Cos(phi) * math.Cos(lambda),
		Y: (rc + elevM) * math.Cos(phi) * math.Sin(lambda),
		Z: (rc*(1-wgs84Ecc2) + elevM) * sinPhi,
	}
}

// ToECEFFeet is ToECEF with the elevation given in feet.
func ToECEFFeet(lat, lon, elevFt float64) Vector3D {
	return ToECEF(lat, lon, FeetToMeter(elevFt))
}

// OrthoProjection is an orthographic flat-plane projection centered on a
// geographic point. Projected coordinates are in meters, X east and Y north.
type OrthoProjection struct {
	center    Position
	sinLambda float64
	cosLambda float64
	sinPhi    float64
	cosPhi    float64
}

// NewOrthoProjection creates a projection centered on lat/lon.
func NewOrthoProjection(lat, lon float64) *OrthoProjection {
	c := ToECEF(lat, lon, 0)
	// geocentric latitude of the center on the ellipsoid surface
	phi := math.Asin(c.Z / c.Abs())
	lambda := DegToRad(lon)

	return &OrthoProjection{
		center:    Position{Lat: lat, Lon: lon},
		sinLambda: math.Sin(lambda),
		cosLambda: math.Cos(lambda),
		sinPhi:    math.Sin(phi),
		cosPhi:    math.Cos(phi),
	}
}

// Center returns the projection center.
func (p *OrthoProjection) Center() Position {
	return p.center
}

// Project maps a geographic position onto the projection plane.
func (p *OrthoProjection) Project(lat, lon float64) Vector2D {
	v := ToECEF(lat, lon, 0)

	// rotate around Z so the center meridian lies in the XZ plane
	x1 := v.X*p.cosLambda + v.Y*p.sinLambda
	y1 := -v.X*p.sinLambda + v.Y*p.cosLambda
	z1 := v.Z

	// rotate around Y so the center lies on the X axis
	z2 := -x1*p.sinPhi + z1*p.cosPhi

	return Vector2D{X: y1, Y: z2}
}
