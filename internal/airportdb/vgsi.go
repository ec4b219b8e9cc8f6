package airportdb

import (
	"math"
	"strings"

	"github.com/yegors/airportdb/internal/geo"
)

// VGSIType is the visual glideslope indicator type from lighting rows.
type VGSIType int

const (
	VGSIVASI      VGSIType = 1
	VGSIPAPI4L    VGSIType = 2
	VGSIPAPI4R    VGSIType = 3
	VGSIPAPI20Deg VGSIType = 4
	VGSIPAPI3C    VGSIType = 5
)

const (
	vgsiLatDisplFact  = 2 // runway width multiplier
	vgsiHdgMatchLimit = 5 // degrees
	vgsiNoMatch       = 1e10
)

// vgsiMatch returns the lateral displacement of a light at pos from the
// centerline of rwy as seen from end i, or vgsiNoMatch if the light cannot
// belong to that end.
func vgsiMatch(rwy *Runway, i int, typ VGSIType, pos geo.Vector2D, hdg float64) float64 {
	g := rwy.geom
	thr := g.Ends[i].ThresholdV
	toLight := pos.Sub(thr)
	along := g.Ends[1-i].ThresholdV.Sub(thr).Unit()

	lat := toLight.Dot(along.Norm(true))
	lon := toLight.Dot(along)

	if math.Abs(lat) > vgsiLatDisplFact*rwy.Width ||
		lon < 0 || lon > g.Length ||
		math.Abs(geo.RelativeHeading(g.Ends[i].Heading, hdg)) > vgsiHdgMatchLimit ||
		(lat > 0 && typ == VGSIPAPI4L) ||
		(lat < 0 && typ == VGSIPAPI4R) {
		return vgsiNoMatch
	}
	return lat
}

// nearestRunwayToVGSI finds the runway end whose centerline lies closest to
// the light among those the light can plausibly belong to.
func nearestRunwayToVGSI(a *Airport, typ VGSIType, pos geo.Vector2D, hdg float64) (*Runway, int, bool) {
	var (
		best    *Runway
		bestEnd int
	)
	bestDispl := 100000.0
	for _, rwy := range a.runways.Values() {
		if d := vgsiMatch(rwy, 0, typ, pos, hdg); d != vgsiNoMatch && math.Abs(d) < bestDispl {
			best, bestEnd, bestDispl = rwy, 0, math.Abs(d)
		} else if d := vgsiMatch(rwy, 1, typ, pos, hdg); d != vgsiNoMatch && math.Abs(d) < bestDispl {
			best, bestEnd, bestDispl = rwy, 1, math.Abs(d)
		}
	}
	return best, bestEnd, best != nil
}

// applyVGSI infers the glidepath angle and TCH of a runway end from a
// lighting row: `21 lat lon type hdg gpa rwy_id [description]`.
func applyVGSI(a *Airport, comps []string) {
	if !a.load() || len(comps) < 7 {
		return
	}
	typ := VGSIType(atoi(comps[3]))
	if typ < VGSIVASI || typ > VGSIPAPI3C || typ == VGSIPAPI20Deg {
		return
	}
	lat, lon := parseFloat(comps[1]), parseFloat(comps[2])
	if !IsValidLat(lat) || !IsValidLon(lon) {
		return
	}
	pos := a.geom.Projection.Project(lat, lon)
	hdg := parseFloat(comps[4])
	if !geo.IsValidHeading(hdg) {
		return
	}
	gpa := parseFloat(comps[5])
	if math.IsNaN(gpa) || gpa <= 0 || gpa > runwayGPALimit {
		return
	}
	rwyID := strings.TrimSpace(comps[6])

	rwy, end, ok := a.FindRunway(rwyID)
	if !ok {
		if rwy, end, ok = nearestRunwayToVGSI(a, typ, pos, hdg); !ok {
			return
		}
	}

	displ := longitudinalDispl(rwy, end, pos)
	if displ < 0 || displ > rwy.geom.Length ||
		math.Abs(geo.RelativeHeading(hdg, rwy.geom.Ends[end].Heading)) > vgsiHdgMatchLimit {
		// the named runway does not fit, try any runway
		if rwy, end, ok = nearestRunwayToVGSI(a, typ, pos, hdg); !ok {
			return
		}
		displ = longitudinalDispl(rwy, end, pos)
	}

	tch := geo.MeterToFeet(math.Sin(geo.DegToRad(gpa)) * displ)
	if isValidTCH(tch) {
		rwy.Ends[end].GPA = gpa
		rwy.Ends[end].TCH = tch
	}
}

func longitudinalDispl(rwy *Runway, end int, pos geo.Vector2D) float64 {
	thr := rwy.geom.Ends[end].ThresholdV
	along := rwy.geom.Ends[1-end].ThresholdV.Sub(thr).Unit()
	return pos.Sub(thr).Dot(along)
}
