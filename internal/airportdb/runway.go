package airportdb

import (
	"math"

	"github.com/yegors/airportdb/internal/geo"
)

// Geometry constants
const (
	rwyProximityLatFract = 3      // runway width multiplier
	rwyProximityLonDispl = 609.57 // meters, 2000 ft

	apchProximityLatAngle = 3.3  // degrees
	apchProximityLonDispl = 5500 // meters
)

var apchProximityLatDispl = apchProximityLonDispl * math.Tan(geo.DegToRad(apchProximityLatAngle))

// Surface is the runway surface code.
type Surface int

const (
	SurfaceAsphalt     Surface = 1
	SurfaceConcrete    Surface = 2
	SurfaceGrass       Surface = 3
	SurfaceDirt        Surface = 4
	SurfaceGravel      Surface = 5
	SurfaceDryLakebed  Surface = 12
	SurfaceWater       Surface = 13
	SurfaceSnowIce     Surface = 14
	SurfaceTransparent Surface = 15
)

// IsHard reports whether the surface is paved.
func (s Surface) IsHard() bool {
	return s == SurfaceAsphalt || s == SurfaceConcrete || s == SurfaceTransparent
}

func (s Surface) String() string {
	switch s {
	case SurfaceAsphalt:
		return "asphalt"
	case SurfaceConcrete:
		return "concrete"
	case SurfaceGrass:
		return "grass"
	case SurfaceDirt:
		return "dirt"
	case SurfaceGravel:
		return "gravel"
	case SurfaceDryLakebed:
		return "lakebed"
	case SurfaceWater:
		return "water"
	case SurfaceSnowIce:
		return "snow"
	case SurfaceTransparent:
		return "transparent"
	default:
		return "unknown"
	}
}

// RunwayEnd is one end of a runway.
type RunwayEnd struct {
	ID        string
	Threshold geo.Position // non-displaced threshold, elevation in feet
	Displ     float64      // threshold displacement, meters
	Blast     float64      // blast pad length, meters
	GPA       float64      // glidepath angle, degrees; 0 if unknown
	TCH       float64      // threshold crossing height, feet
}

func (e *RunwayEnd) validate() (string, bool) {
	switch {
	case !IsValidRunwayID(e.ID):
		return "runway ID invalid", false
	case !IsValidLat(e.Threshold.Lat):
		return "latitude invalid", false
	case !IsValidLon(e.Threshold.Lon):
		return "longitude invalid", false
	case !math.IsNaN(e.Threshold.Elev) && !IsValidElev(e.Threshold.Elev):
		return "threshold elevation invalid", false
	case !(e.Displ >= 0):
		return "displacement invalid", false
	case !(e.Blast >= 0):
		return "blast pad invalid", false
	case !(e.GPA >= 0 && e.GPA < runwayGPALimit):
		return "GPA invalid", false
	case !(e.TCH >= 0 && e.TCH < runwayTCHLimit):
		return "TCH invalid", false
	}
	return "", true
}

// RunwayEndGeometry is per-end geometry in the airport's projection.
type RunwayEndGeometry struct {
	Heading       float64        // true
	ThresholdV    geo.Vector2D   // displaced threshold
	RawThresholdV geo.Vector2D   // non-displaced threshold
	LandingLength float64        // meters
	ApproachBox   []geo.Vector2D // approach proximity polygon
}

// RunwayGeometry is computed when the owning airport is loaded.
type RunwayGeometry struct {
	Length       float64 // between displaced thresholds, meters
	Ends         [2]RunwayEndGeometry
	RunwayBox    []geo.Vector2D
	TORABox      []geo.Vector2D
	ASDABox      []geo.Vector2D
	ProximityBox []geo.Vector2D
}

// Runway is a runway with two ends.
type Runway struct {
	Width      float64 // meters
	Surface    Surface
	Ends       [2]RunwayEnd
	JointID    string
	RevJointID string

	geom *RunwayGeometry
}

// Geometry returns the computed geometry; ok is false until the owning
// airport is loaded.
func (r *Runway) Geometry() (*RunwayGeometry, bool) {
	return r.geom, r.geom != nil
}

// Matches reports whether joint names this runway in either end order.
func (r *Runway) Matches(joint string) bool {
	return joint == r.JointID || joint == r.RevJointID
}

// makeRunwayBox builds the a, b, c, d rectangle around a runway starting
// at thr and extending len along dir, pulled back by longDispl.
func makeRunwayBox(thr, dir geo.Vector2D, width, length, longDispl float64) []geo.Vector2D {
	back := dir.Neg().SetAbs(longDispl)
	a := thr.Add(dir.Norm(true).SetAbs(width / 2)).Add(back)
	d := thr.Add(dir.Norm(false).SetAbs(width / 2)).Add(back)
	along := dir.SetAbs(length + longDispl)
	return []geo.Vector2D{a, a.Add(along), d.Add(along), d}
}

func (r *Runway) computeGeometry(a *Airport) {
	proj := a.geom.Projection
	dt1 := proj.Project(r.Ends[0].Threshold.Lat, r.Ends[0].Threshold.Lon)
	dt2 := proj.Project(r.Ends[1].Threshold.Lat, r.Ends[1].Threshold.Lon)
	displ1, displ2 := r.Ends[0].Displ, r.Ends[1].Displ
	blast1, blast2 := r.Ends[0].Blast, r.Ends[1].Blast

	dir := dt2.Sub(dt1)
	dlen := dir.Abs()

	t1 := dt1.Add(dir.SetAbs(displ1))
	t2 := dt2.Add(dir.Neg().SetAbs(displ2))
	length := t2.Sub(t1).Abs()

	bonus1 := math.Max(displ1, rwyProximityLonDispl-displ1)
	bonus2 := math.Max(displ2, rwyProximityLonDispl-displ2)

	g := &RunwayGeometry{
		Length: length,
		Ends: [2]RunwayEndGeometry{
			{
				Heading:       geo.VectorToHeading(dir),
				ThresholdV:    t1,
				RawThresholdV: dt1,
				LandingLength: dt2.Sub(t1).Abs(),
			},
			{
				Heading:       geo.VectorToHeading(dir.Neg()),
				ThresholdV:    t2,
				RawThresholdV: dt2,
				LandingLength: dt1.Sub(t2).Abs(),
			},
		},
		RunwayBox:    makeRunwayBox(t1, dir, r.Width, length, 0),
		TORABox:      makeRunwayBox(dt1, dir, r.Width, dlen, 0),
		ASDABox:      makeRunwayBox(dt1, dir, r.Width, dlen+blast2, blast1),
		ProximityBox: makeRunwayBox(t1, dir, rwyProximityLatFract*r.Width, length+bonus2, bonus1),
	}
	r.geom = g
	g.Ends[0].ApproachBox = r.approachBox(a, 0)
	g.Ends[1].ApproachBox = r.approachBox(a, 1)
}

// approachBox builds the approach proximity polygon for end i:
//
//	d +-_  (c1)
//	  |   -._
//	  |      -_ c
//	  |         +------------------+
//	x +   thr --+ ====  runway ==== |
//	  |         +------------------+
//	  |      _- b
//	  |   _-.
//	a +--    (b1)
//
// x lies apchProximityLonDispl before the threshold. A parallel runway with
// the same number limits each side to half the distance to it, which
// shears the polygon through the extra b1 or c1 vertex.
func (r *Runway) approachBox(a *Airport, i int) []geo.Vector2D {
	end := &r.Ends[i]
	thr := r.geom.Ends[i].ThresholdV
	othr := r.geom.Ends[1-i].ThresholdV
	dir := othr.Sub(thr)
	right, left := dir.Norm(true), dir.Norm(false)

	x := thr.Add(dir.Neg().SetAbs(apchProximityLonDispl))
	pa := x.Add(right.SetAbs(r.Width/2 + apchProximityLatDispl))
	pb := thr.Add(right.SetAbs(r.Width / 2))
	pc := thr.Add(left.SetAbs(r.Width / 2))
	pd := x.Add(left.SetAbs(r.Width/2 + apchProximityLatDispl))

	limitLeft, limitRight := 1e6, 1e6
	if len(end.ID) >= 3 {
		num := runwayNumber(end.ID)
		for _, orwy := range a.runways.Values() {
			if orwy == r {
				continue
			}
			var oend *RunwayEnd
			switch {
			case runwayNumber(orwy.Ends[0].ID) == num:
				oend = &orwy.Ends[0]
			case runwayNumber(orwy.Ends[1].ID) == num:
				oend = &orwy.Ends[1]
			default:
				continue
			}

			v := a.geom.Projection.Project(oend.Threshold.Lat, oend.Threshold.Lon).Sub(thr)
			if v.IsZero() {
				continue
			}
			rel := geo.RelativeHeading(geo.VectorToHeading(dir), geo.VectorToHeading(v))
			dist := math.Abs(math.Sin(geo.DegToRad(rel)) * v.Abs())
			if rel < 0 {
				limitLeft = math.Min(dist/2, limitLeft)
			} else {
				limitRight = math.Min(dist/2, limitRight)
			}
		}
	}

	b1, c1 := geo.NullVector2D, geo.NullVector2D
	if limitLeft < apchProximityLatDispl {
		c1, _ = geo.Intersect(pd.Sub(pc), pc, dir.Neg(), thr.Add(left.SetAbs(limitLeft)))
		pd = x.Add(left.SetAbs(limitLeft))
	}
	if limitRight < apchProximityLatDispl {
		b1, _ = geo.Intersect(pb.Sub(pa), pa, dir.Neg(), thr.Add(right.SetAbs(limitRight)))
		pa = x.Add(right.SetAbs(limitRight))
	}

	box := []geo.Vector2D{pa}
	if !b1.IsNull() {
		box = append(box, b1)
	}
	box = append(box, pb, pc)
	if !c1.IsNull() {
		box = append(box, c1)
	}
	return append(box, pd)
}
