package api

import (
	"math"
	"time"

	"github.com/yegors/airportdb/internal/airportdb"
	"github.com/yegors/airportdb/internal/geo"
)

// AirportSummary is the index-level view of an airport
type AirportSummary struct {
	Ident          string  `json:"ident"`
	ICAO           string  `json:"icao,omitempty"`
	IATA           string  `json:"iata,omitempty"`
	Region         string  `json:"region,omitempty"`
	Lat            float64 `json:"lat"`
	Lon            float64 `json:"lon"`
	ElevFt         float64 `json:"elev_ft"`
	MaxRunwayLenFt int     `json:"max_runway_len_ft"`
	TAFt           int     `json:"ta_ft,omitempty"`
	TLFt           int     `json:"tl_ft,omitempty"`
}

func newAirportSummary(e airportdb.IndexEntry) AirportSummary {
	return AirportSummary{
		Ident:          e.Ident,
		ICAO:           e.ICAO,
		IATA:           e.IATA,
		Region:         e.CC,
		Lat:            e.Pos.Lat,
		Lon:            e.Pos.Lon,
		ElevFt:         e.Pos.Elev,
		MaxRunwayLenFt: e.MaxRunwayLenFt,
		TAFt:           e.TA,
		TLFt:           e.TL,
	}
}

// AirportResponse is a fully loaded airport
type AirportResponse struct {
	Ident       string              `json:"ident"`
	ICAO        string              `json:"icao,omitempty"`
	IATA        string              `json:"iata,omitempty"`
	Region      string              `json:"region,omitempty"`
	Name        string              `json:"name"`
	NameOrig    string              `json:"name_orig,omitempty"`
	Country     string              `json:"country,omitempty"`
	City        string              `json:"city,omitempty"`
	Lat         float64             `json:"lat"`
	Lon         float64             `json:"lon"`
	ElevFt      float64             `json:"elev_ft"`
	TAFt        float64             `json:"ta_ft,omitempty"`
	TLFt        float64             `json:"tl_ft,omitempty"`
	MagVar      float64             `json:"mag_var"`
	InNavDB     bool                `json:"in_navdb"`
	HaveIAPs    bool                `json:"have_iaps"`
	State       string              `json:"state"`
	Runways     []RunwayResponse    `json:"runways"`
	Frequencies []FrequencyResponse `json:"frequencies,omitempty"`
	RampStarts  []RampStartResponse `json:"ramp_starts,omitempty"`
	DistanceNM  *float64            `json:"distance_nm,omitempty"`
}

// RunwayResponse is a runway with its computed geometry
type RunwayResponse struct {
	ID      string              `json:"id"`
	WidthM  float64             `json:"width_m"`
	Surface string              `json:"surface"`
	LengthM *float64            `json:"length_m,omitempty"`
	Ends    []RunwayEndResponse `json:"ends"`
}

// RunwayEndResponse is one runway end
type RunwayEndResponse struct {
	ID             string   `json:"id"`
	Lat            float64  `json:"lat"`
	Lon            float64  `json:"lon"`
	ElevFt         *float64 `json:"elev_ft,omitempty"`
	DisplM         float64  `json:"displ_m"`
	BlastM         float64  `json:"blast_m"`
	GPA            float64  `json:"gpa,omitempty"`
	TCHFt          float64  `json:"tch_ft"`
	TrueHeading    *float64 `json:"true_heading,omitempty"`
	MagHeading     *float64 `json:"mag_heading,omitempty"`
	LandingLengthM *float64 `json:"landing_length_m,omitempty"`
}

// FrequencyResponse is a published radio frequency
type FrequencyResponse struct {
	Type string  `json:"type"`
	MHz  float64 `json:"mhz"`
	Name string  `json:"name"`
}

// RampStartResponse is a parking position
type RampStartResponse struct {
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	TrueHeading float64 `json:"true_heading"`
}

// newAirportResponse converts a. Magnetic headings use the variation at
// the reference point on date.
func newAirportResponse(a *airportdb.Airport, date time.Time) AirportResponse {
	ref := a.RefPt
	resp := AirportResponse{
		Ident:    a.Ident,
		ICAO:     a.ICAO,
		IATA:     a.IATA,
		Region:   a.CC,
		Name:     a.Name,
		NameOrig: a.NameOrig,
		Country:  a.Country,
		City:     a.City,
		Lat:      ref.Lat,
		Lon:      ref.Lon,
		ElevFt:   ref.Elev,
		TAFt:     a.TA,
		TLFt:     a.TL,
		InNavDB:  a.InNavDB,
		HaveIAPs: a.HaveIAPs,
		State:    a.State().String(),
		Runways:  make([]RunwayResponse, 0, a.NumRunways()),
	}
	if !ref.IsNull() {
		resp.MagVar = math.Round(geo.MagneticVariation(ref.Lat, ref.Lon, ref.Elev, date)*10) / 10
	}

	for _, rwy := range a.Runways() {
		resp.Runways = append(resp.Runways, newRunwayResponse(a, rwy, date))
	}
	for _, f := range a.Frequencies() {
		resp.Frequencies = append(resp.Frequencies, FrequencyResponse{
			Type: f.Type.String(),
			MHz:  float64(f.Freq) / 1e6,
			Name: f.Name,
		})
	}
	for _, rs := range a.RampStarts() {
		resp.RampStarts = append(resp.RampStarts, RampStartResponse{
			Name:        rs.Name,
			Type:        rs.Type.String(),
			Lat:         rs.Pos.Lat,
			Lon:         rs.Pos.Lon,
			TrueHeading: rs.Heading,
		})
	}
	return resp
}

func newRunwayResponse(a *airportdb.Airport, rwy *airportdb.Runway, date time.Time) RunwayResponse {
	resp := RunwayResponse{
		ID:      rwy.JointID,
		WidthM:  rwy.Width,
		Surface: rwy.Surface.String(),
		Ends:    make([]RunwayEndResponse, 0, len(rwy.Ends)),
	}
	geom, loaded := rwy.Geometry()
	if loaded {
		resp.LengthM = finite(math.Round(geom.Length))
	}
	for i, end := range rwy.Ends {
		e := RunwayEndResponse{
			ID:     end.ID,
			Lat:    end.Threshold.Lat,
			Lon:    end.Threshold.Lon,
			ElevFt: finite(end.Threshold.Elev),
			DisplM: end.Displ,
			BlastM: end.Blast,
			GPA:    end.GPA,
			TCHFt:  end.TCH,
		}
		if loaded {
			hdg := geom.Ends[i].Heading
			e.TrueHeading = finite(round1(hdg))
			e.MagHeading = finite(round1(geo.TrueToMagnetic(hdg, a.RefPt.Lat, a.RefPt.Lon, a.RefPt.Elev, date)))
			e.LandingLengthM = finite(math.Round(geom.Ends[i].LandingLength))
		}
		resp.Ends = append(resp.Ends, e)
	}
	return resp
}

// finite returns nil for values JSON cannot carry
func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// TileResponse is a resident tile
type TileResponse struct {
	Key      string   `json:"key"`
	Lat      int      `json:"lat"`
	Lon      int      `json:"lon"`
	Airports []string `json:"airports"`
}

// PositionRequest carries a position for tile operations
type PositionRequest struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
	All bool     `json:"all,omitempty"`
}

// LoadLimitRequest sets the FindNearest radius
type LoadLimitRequest struct {
	Meters *float64 `json:"meters,omitempty"`
	NM     *float64 `json:"nm,omitempty"`
}

// LoadLimitResponse reports the FindNearest radius
type LoadLimitResponse struct {
	Meters float64 `json:"meters"`
	NM     float64 `json:"nm"`
}

func newLoadLimitResponse(m float64) LoadLimitResponse {
	return LoadLimitResponse{Meters: m, NM: math.Round(m/geo.NMToMeters*100) / 100}
}
