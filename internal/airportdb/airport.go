package airportdb

import (
	"math"

	"github.com/yegors/airportdb/internal/geo"
)

// LoadState is the lifecycle state of an airport.
type LoadState int

const (
	// Skeletal airports carry identity, position and raw runway data only.
	Skeletal LoadState = iota
	// Loaded airports additionally carry their flat-plane projection and
	// runway geometry.
	Loaded
)

func (s LoadState) String() string {
	if s == Loaded {
		return "loaded"
	}
	return "skeletal"
}

// RampStartType classifies ramp starts.
type RampStartType int

const (
	RampStartGate RampStartType = iota
	RampStartHangar
	RampStartTieDown
	RampStartMisc
)

func (t RampStartType) String() string {
	switch t {
	case RampStartGate:
		return "gate"
	case RampStartHangar:
		return "hangar"
	case RampStartTieDown:
		return "tie-down"
	default:
		return "misc"
	}
}

func parseRampStartType(s string) RampStartType {
	switch s {
	case "gate":
		return RampStartGate
	case "hangar":
		return RampStartHangar
	case "tie-down":
		return RampStartTieDown
	default:
		return RampStartMisc
	}
}

// RampStart is a named parking position.
type RampStart struct {
	Name    string        `json:"name"`
	Pos     geo.Position  `json:"pos"`
	Heading float64       `json:"heading"` // true
	Type    RampStartType `json:"type"`
}

// FrequencyType is the service a frequency belongs to.
type FrequencyType int

const (
	FreqRecorded FrequencyType = iota // ATIS, AWOS, ASOS
	FreqCTAF
	FreqClearance
	FreqGround
	FreqTower
	FreqApproach
	FreqDeparture
)

func (t FrequencyType) String() string {
	switch t {
	case FreqRecorded:
		return "REC"
	case FreqCTAF:
		return "CTAF"
	case FreqClearance:
		return "CLNC"
	case FreqGround:
		return "GND"
	case FreqTower:
		return "TWR"
	case FreqApproach:
		return "APP"
	case FreqDeparture:
		return "DEP"
	default:
		return "UNKNOWN"
	}
}

// Frequency is a radio frequency published for an airport.
type Frequency struct {
	Type FrequencyType `json:"type"`
	Freq uint64        `json:"freq"` // Hz
	Name string        `json:"name"`
}

// AirportGeometry is the data available once an airport is loaded.
type AirportGeometry struct {
	Projection *geo.OrthoProjection
	ECEF       geo.Vector3D
}

// Airport is a single airport record. Fields are read-only for callers;
// the database mutates them only while its lock is held.
type Airport struct {
	Ident    string
	ICAO     string
	IATA     string
	CC       string // region code
	Name     string // display name, upper-case ASCII
	NameOrig string
	Country  string
	City     string

	// RefPt is the airport reference point; elevation in feet.
	RefPt geo.Position
	TA    float64 // transition altitude, feet
	TL    float64 // transition level, feet

	InNavDB  bool
	HaveIAPs bool

	runways    *orderedMap[*Runway]
	rampStarts *orderedMap[*RampStart]
	freqs      []Frequency

	geom      *AirportGeometry
	geoLinked bool
}

func newAirport(ident string, elevFt float64) *Airport {
	return &Airport{
		Ident:      ident,
		ICAO:       ident,
		RefPt:      geo.Position{Lat: math.NaN(), Lon: math.NaN(), Elev: elevFt},
		runways:    newOrderedMap[*Runway](),
		rampStarts: newOrderedMap[*RampStart](),
	}
}

// RefPtMeters returns the reference point with the elevation in meters.
func (a *Airport) RefPtMeters() geo.Position {
	p := a.RefPt
	p.Elev = geo.FeetToMeter(p.Elev)
	return p
}

// TAMeters returns the transition altitude in meters.
func (a *Airport) TAMeters() float64 { return geo.FeetToMeter(a.TA) }

// TLMeters returns the transition level in meters.
func (a *Airport) TLMeters() float64 { return geo.FeetToMeter(a.TL) }

// State returns the airport's lifecycle state.
func (a *Airport) State() LoadState {
	if a.geom != nil {
		return Loaded
	}
	return Skeletal
}

// Geometry returns the projection data of a loaded airport.
func (a *Airport) Geometry() (*AirportGeometry, bool) {
	return a.geom, a.geom != nil
}

// Runways returns the runways ordered by joint ID.
func (a *Airport) Runways() []*Runway {
	return a.runways.Values()
}

// NumRunways returns the number of runways.
func (a *Airport) NumRunways() int {
	return a.runways.Len()
}

// RampStarts returns the ramp starts ordered by name.
func (a *Airport) RampStarts() []*RampStart {
	return a.rampStarts.Values()
}

// Frequencies returns the frequencies in the order they were published.
func (a *Airport) Frequencies() []Frequency {
	return append([]Frequency(nil), a.freqs...)
}

// FindRunway locates the runway with an end named id and returns it along
// with the index of that end.
func (a *Airport) FindRunway(id string) (*Runway, int, bool) {
	var (
		found *Runway
		end   int
	)
	a.runways.Each(func(_ string, rwy *Runway) bool {
		for i := range rwy.Ends {
			if rwy.Ends[i].ID == id {
				found, end = rwy, i
				return false
			}
		}
		return true
	})
	return found, end, found != nil
}

// FindRunwayByJointID returns the runway with the given joint ID, in either
// end order.
func (a *Airport) FindRunwayByJointID(joint string) (*Runway, bool) {
	if rwy, ok := a.runways.Get(joint); ok {
		return rwy, true
	}
	var found *Runway
	a.runways.Each(func(_ string, rwy *Runway) bool {
		if rwy.RevJointID == joint {
			found = rwy
			return false
		}
		return true
	})
	return found, found != nil
}

// addRunway inserts rwy unless a runway with the same joint ID (in either
// order) already exists.
func (a *Airport) addRunway(rwy *Runway) bool {
	if _, dup := a.FindRunwayByJointID(rwy.JointID); dup {
		return false
	}
	if _, dup := a.FindRunwayByJointID(rwy.RevJointID); dup {
		return false
	}
	return a.runways.Insert(rwy.JointID, rwy)
}

// autoRefPt sets the reference point to the midpoint of the first runway.
func (a *Airport) autoRefPt() {
	rwys := a.runways.Values()
	if len(rwys) == 0 {
		return
	}
	p1, p2 := rwys[0].Ends[0].Threshold, rwys[0].Ends[1].Threshold
	a.RefPt.Lat = (p1.Lat + p2.Lat) / 2
	a.RefPt.Lon = (p1.Lon + p2.Lon) / 2
}

// load computes the flat-plane projection and runway geometry. It is a
// no-op for loaded airports and fails without a complete reference point.
func (a *Airport) load() bool {
	if a.geom != nil {
		return true
	}
	if a.RefPt.IsNull() || math.IsNaN(a.RefPt.Elev) {
		return false
	}

	a.geom = &AirportGeometry{
		Projection: geo.NewOrthoProjection(a.RefPt.Lat, a.RefPt.Lon),
		ECEF:       geo.ToECEFFeet(a.RefPt.Lat, a.RefPt.Lon, a.RefPt.Elev),
	}
	for _, rwy := range a.runways.Values() {
		rwy.computeGeometry(a)
	}
	return true
}

// unload drops computed geometry, returning the airport to Skeletal.
func (a *Airport) unload() {
	if a.geom == nil {
		return
	}
	for _, rwy := range a.runways.Values() {
		rwy.geom = nil
	}
	a.geom = nil
}

// maxHardRunwayLengthFt returns the longest landing length over hard
// surface runways, in feet. The airport must be loaded.
func (a *Airport) maxHardRunwayLengthFt() int {
	longest := 0.0
	for _, rwy := range a.runways.Values() {
		if !rwy.Surface.IsHard() || rwy.geom == nil {
			continue
		}
		for _, end := range rwy.geom.Ends {
			longest = math.Max(longest, geo.MeterToFeet(end.LandingLength))
		}
	}
	return int(longest)
}
