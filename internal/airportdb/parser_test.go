package airportdb

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestParseSingleRunwayAirport(t *testing.T) {
	db := newTestDB(t, nil)
	parseFiles(t, db, kxyzHeader+"1 100 0 0 KXYZ Test Field\n"+kxyzRunway+"\n")

	if got := db.apts.Len(); got != 1 {
		t.Fatalf("airports = %d, want 1", got)
	}
	a := residentAirport(t, db, "KXYZ")
	if a.NumRunways() != 1 {
		t.Fatalf("runways = %d, want 1", a.NumRunways())
	}
	rwy := a.Runways()[0]
	if rwy.JointID != "0927" {
		t.Errorf("joint id = %q, want 0927", rwy.JointID)
	}
	if a.RefPt.Elev != 100 {
		t.Errorf("elevation = %v, want 100", a.RefPt.Elev)
	}

	tx := db.Lock()
	defer tx.Unlock()
	if !a.load() {
		t.Fatal("airport failed to load")
	}
	g, ok := rwy.Geometry()
	if !ok {
		t.Fatal("runway geometry missing after load")
	}
	if math.Abs(g.Length-1000) > 1 {
		t.Errorf("length = %.2f, want ~1000", g.Length)
	}
	if math.Abs(g.Ends[0].Heading-90) > 0.1 {
		t.Errorf("heading 09 = %.2f, want ~90", g.Ends[0].Heading)
	}
}

func TestParseDefaultsAndAutoRefPt(t *testing.T) {
	db := newTestDB(t, nil)
	parseFiles(t, db, kxyzHeader+"1 100 0 0 kxyz Test Field\n"+kxyzRunway+"\n")

	a := residentAirport(t, db, "KXYZ")
	if a.ICAO != "KXYZ" {
		t.Errorf("icao = %q, want ident", a.ICAO)
	}
	if math.Abs(a.RefPt.Lat-40) > 1e-9 || math.Abs(a.RefPt.Lon-(-99.994145)) > 1e-6 {
		t.Errorf("refpt = %v, want runway midpoint", a.RefPt)
	}
	end := a.Runways()[0].Ends[0]
	if end.TCH != defaultTCH || end.GPA != 0 || end.Threshold.Elev != 100 {
		t.Errorf("end defaults = %+v", end)
	}
	if a.Name != "TEST FIELD" || a.NameOrig != "Test Field" {
		t.Errorf("names = %q / %q", a.Name, a.NameOrig)
	}
}

func TestParseSkipsAirportWithoutRunways(t *testing.T) {
	db := newTestDB(t, nil)
	parseFiles(t, db, kxyzHeader+
		"1 100 0 0 KNRW No Runways\n"+
		"1302 icao_code KNRW\n"+
		"\n"+
		"1 100 0 0 KXYZ Test Field\n"+kxyzRunway+"\n")

	if _, ok := db.apts.Get("KNRW"); ok {
		t.Error("airport without runways was inserted")
	}
	residentAirport(t, db, "KXYZ")
}

func TestParseInvalidDatumLatDropsAirport(t *testing.T) {
	db := newTestDB(t, nil)
	parseFiles(t, db, kxyzHeader+
		"1 100 0 0 KXYZ Test Field\n"+
		kxyzRunway+"\n"+
		"1302 datum_lat 95.0\n")

	if db.apts.Len() != 0 {
		t.Errorf("airports = %d, want 0", db.apts.Len())
	}
}

func TestParseRejectsBadRunways(t *testing.T) {
	tests := []struct {
		name string
		row  string
	}{
		{"soft surface", "100 45.00 3 0 0.25 0 0 0 09 40.0 -100.0 0 0 0 0 0 0 27 40.0 -99.98829 0 0 0 0 0 0"},
		{"bad id", "100 45.00 1 0 0.25 0 0 0 40 40.0 -100.0 0 0 0 0 0 0 22 40.0 -99.98829 0 0 0 0 0 0"},
		{"polar", "100 45.00 1 0 0.25 0 0 0 09 85.0 -100.0 0 0 0 0 0 0 27 85.0 -99.9 0 0 0 0 0 0"},
		{"too short", "100 45.00 1 0 0.25 0 0 0 09 40.0 -100.0 0 0 0 0 0 0 27 40.0 -100.00005 0 0 0 0 0 0"},
		{"negative displacement", "100 45.00 1 0 0.25 0 0 0 09 40.0 -100.0 -5 0 0 0 0 0 27 40.0 -99.98829 0 0 0 0 0 0"},
		{"missing fields", "100 45.00 1 0 0.25 0 0 0 09 40.0 -100.0 0 0 0 0 0 0 27 40.0 -99.98829"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := newTestDB(t, nil)
			parseFiles(t, db, kxyzHeader+"1 100 0 0 KXYZ Test Field\n"+tt.row+"\n")
			if db.apts.Len() != 0 {
				t.Errorf("runway accepted, airports = %d", db.apts.Len())
			}
		})
	}
}

func TestParseSoftSurfaceWithoutIFRFilter(t *testing.T) {
	db := newTestDB(t, func(o *Options) { o.IFROnly = false })
	parseFiles(t, db, kxyzHeader+"1 100 0 0 KXYZ Test Field\n"+
		"100 45.00 3 0 0.25 0 0 0 09 40.0 -100.0 0 0 0 0 0 0 27 40.0 -99.98829 0 0 0 0 0 0\n")
	a := residentAirport(t, db, "KXYZ")
	if a.Runways()[0].Surface != SurfaceGrass {
		t.Errorf("surface = %v, want grass", a.Runways()[0].Surface)
	}
}

func TestParseDuplicateRunwayRejected(t *testing.T) {
	db := newTestDB(t, nil)
	parseFiles(t, db, kxyzHeader+"1 100 0 0 KXYZ Test Field\n"+
		kxyzRunway+"\n"+
		"100 45.00 1 0 0.25 0 0 0 27 40.0 -99.98829 0 0 0 0 0 0 09 40.0 -100.0 0 0 0 0 0 0\n")
	if got := residentAirport(t, db, "KXYZ").NumRunways(); got != 1 {
		t.Errorf("runways = %d, want 1", got)
	}
}

func TestParseUniqueIdents(t *testing.T) {
	db := newTestDB(t, nil)
	parseFiles(t, db,
		kxyzHeader+"1 100 0 0 KXYZ First\n"+kxyzRunway+"\n\n1 200 0 0 KXYZ Second\n"+kxyzRunway+"\n",
		kxyzHeader+"1 300 0 0 KXYZ Third\n"+kxyzRunway+"\n")

	if db.apts.Len() != 1 {
		t.Fatalf("airports = %d, want 1", db.apts.Len())
	}
	if a := residentAirport(t, db, "KXYZ"); a.Name != "FIRST" {
		t.Errorf("name = %q, want FIRST", a.Name)
	}
}

func TestParseDuplicateFillsTransitionAltitude(t *testing.T) {
	db := newTestDB(t, nil)
	parseFiles(t, db,
		kxyzHeader+"1 100 0 0 KXYZ First Name\n"+kxyzRunway+"\n",
		kxyzHeader+"1 100 0 0 KXYZ Second Name\n"+
			"1302 transition_alt 18000\n"+
			"1302 transition_level 180\n"+
			"1302 iata_code XYZ\n"+
			"1302 city Springfield\n"+
			"1302 region_code -\n"+
			kxyzRunway+"\n")

	a := residentAirport(t, db, "KXYZ")
	if a.TA != 18000 {
		t.Errorf("TA = %v, want 18000", a.TA)
	}
	if a.TL != 18000 {
		t.Errorf("TL = %v, want 18000", a.TL)
	}
	if a.Name != "FIRST NAME" {
		t.Errorf("name = %q, want FIRST NAME", a.Name)
	}
	if a.IATA != "XYZ" || a.City != "Springfield" || a.CC != "" {
		t.Errorf("fill-in = iata %q city %q cc %q", a.IATA, a.City, a.CC)
	}
}

func TestParseDuplicateKeepsExistingValues(t *testing.T) {
	db := newTestDB(t, nil)
	parseFiles(t, db,
		kxyzHeader+"1 100 0 0 KXYZ First\n"+
			"1302 transition_alt 5000\n"+
			"1302 iata_code ABC\n"+
			"1302 city Customville\n"+
			"1302 country DEU\n"+
			"1302 region_code K1\n"+
			kxyzRunway+"\n",
		kxyzHeader+"1 100 0 0 KXYZ Second\n"+
			"1302 transition_alt 18000\n"+
			"1302 iata_code XYZ\n"+
			"1302 city Defaultburg\n"+
			"1302 country USA\n"+
			"1302 region_code K2\n")

	a := residentAirport(t, db, "KXYZ")
	want := struct {
		TA                      float64
		IATA, City, Country, CC string
	}{5000, "ABC", "Customville", "Germany", "K1"}
	got := want
	got.TA, got.IATA, got.City, got.Country, got.CC = a.TA, a.IATA, a.City, a.Country, a.CC
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("duplicate overwrote populated fields (-want +got):\n%s", diff)
	}
}

func TestParseDuplicateNoFillWhenDisabled(t *testing.T) {
	db := newTestDB(t, nil)
	dir := t.TempDir()
	first := writeTestFile(t, filepath.Join(dir, "a.dat"), kxyzHeader+"1 100 0 0 KXYZ First\n"+kxyzRunway+"\n")
	second := writeTestFile(t, filepath.Join(dir, "b.dat"), kxyzHeader+"1 100 0 0 KXYZ Second\n1302 transition_alt 18000\n")

	tx := db.Lock()
	tx.readAptDat(first, false, nil, false)
	tx.readAptDat(second, false, nil, false)
	tx.Unlock()

	if a := residentAirport(t, db, "KXYZ"); a.TA != 0 {
		t.Errorf("TA = %v, want 0", a.TA)
	}
}

func TestParseMetadata(t *testing.T) {
	db := newTestDB(t, nil)
	parseFiles(t, db, kxyzHeader+
		"1 100 0 0 KXYZ Test Field\n"+
		"1302 icao_code KXYA\n"+
		"1302 iata_code xyz\n"+
		"1302 country USA\n"+
		"1302 city Spring Field\n"+
		"1302 region_code K1\n"+
		"1302 transition_alt 99999\n"+
		"1302 datum_lat 40.001000\n"+
		"1302 datum_lon -99.990000\n"+
		kxyzRunway+"\n")

	a := residentAirport(t, db, "KXYZ")
	want := struct {
		ICAO, IATA, Country, City, CC string
		Lat, Lon, TA                  float64
	}{"KXYA", "", "United States of America", "Spring Field", "K1", 40.001, -99.99, 0}
	got := want
	got.ICAO, got.IATA, got.Country, got.City, got.CC = a.ICAO, a.IATA, a.Country, a.City, a.CC
	got.Lat, got.Lon, got.TA = a.RefPt.Lat, a.RefPt.Lon, a.TA
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("metadata mismatch (-want +got):\n%s", diff)
	}
}

func TestParseOldCountryKeptVerbatim(t *testing.T) {
	db := newTestDB(t, nil)
	parseFiles(t, db, "I\n1100 Old format\n\n1 100 0 0 KXYZ Test Field\n1302 country USA\n"+kxyzRunway+"\n")
	if a := residentAirport(t, db, "KXYZ"); a.Country != "USA" {
		t.Errorf("country = %q, want USA", a.Country)
	}
}

func TestParseFrequencies(t *testing.T) {
	db := newTestDB(t, nil)
	parseFiles(t, db, kxyzHeader+
		"1 100 0 0 KXYZ Test Field\n"+
		kxyzRunway+"\n"+
		"54 11850 KXYZ Tower\n"+
		"1050 118025 ATIS\n"+
		"1053 121900 KXYZ_Ground-Frequency\n"+
		"1056 124000\n")

	want := []Frequency{
		{Type: FreqTower, Freq: 118500000, Name: "TOWER"},
		{Type: FreqRecorded, Freq: 118025000, Name: "ATIS"},
		{Type: FreqGround, Freq: 121900000, Name: "GROUND"},
	}
	if diff := cmp.Diff(want, residentAirport(t, db, "KXYZ").Frequencies()); diff != "" {
		t.Errorf("frequencies mismatch (-want +got):\n%s", diff)
	}
}

func TestParseRampStarts(t *testing.T) {
	rows := kxyzHeader + "1 100 0 0 KXYZ Test Field\n" + kxyzRunway + "\n" +
		"1300 40.001000 -99.995000 90.00 gate jets Gate A1 West\n" +
		"1300 40.001100 -99.995100 180.00 tie_down props Stand 7\n" +
		"1300 40.001000 -99.995000 90.00 gate jets Gate A1 West\n" +
		"1300 40.001200 -99.995200 400.00 hangar props Bad Heading\n" +
		"1300 40.001300 -99.995300 10.00 misc props lower case\n"

	t.Run("verbatim", func(t *testing.T) {
		db := newTestDB(t, nil)
		parseFiles(t, db, rows)
		var names []string
		for _, rs := range residentAirport(t, db, "KXYZ").RampStarts() {
			names = append(names, rs.Name)
		}
		want := []string{"Gate A1 West", "Stand 7", "lower case"}
		if diff := cmp.Diff(want, names); diff != "" {
			t.Errorf("ramp starts mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("normalized", func(t *testing.T) {
		db := newTestDB(t, func(o *Options) { o.NormalizeGateNames = true })
		parseFiles(t, db, rows)
		starts := residentAirport(t, db, "KXYZ").RampStarts()
		var names []string
		for _, rs := range starts {
			names = append(names, rs.Name)
		}
		if diff := cmp.Diff([]string{"7", "A1"}, names); diff != "" {
			t.Errorf("ramp starts mismatch (-want +got):\n%s", diff)
		}
		if starts[1].Type != RampStartGate || starts[0].Type != RampStartMisc {
			t.Errorf("types = %v, %v", starts[0].Type, starts[1].Type)
		}
	})
}

func TestParseMissingFile(t *testing.T) {
	db := newTestDB(t, nil)
	tx := db.Lock()
	defer tx.Unlock()
	if n := tx.readAptDat(filepath.Join(t.TempDir(), "missing.dat"), true, nil, false); n != 0 {
		t.Errorf("count = %d, want 0", n)
	}
}

func TestWriteAptDatRoundTrip(t *testing.T) {
	src := kxyzHeader +
		"1 100 0 0 KXYZ Test Field\n" +
		"1302 iata_code XYZ\n" +
		"1302 country USA\n" +
		"1302 city Springfield\n" +
		"1302 region_code K1\n" +
		"1302 transition_alt 18000\n" +
		"1302 transition_level 180\n" +
		"1302 datum_lat 40.000000\n" +
		"1302 datum_lon -99.994145\n" +
		kxyzRunway + "\n" +
		"1300 40.001000 -99.995000 90.00 gate jets A1\n" +
		"1300 40.001100 -99.995100 180.00 hangar props Hangar 2\n" +
		"54 11850 KXYZ Tower\n" +
		"1050 118025 ATIS\n"

	db := newTestDB(t, nil)
	parseFiles(t, db, src)
	orig := residentAirport(t, db, "KXYZ")
	back := rewriteAirport(t, orig)

	opts := cmp.Options{
		cmpopts.IgnoreUnexported(Airport{}, Runway{}),
		cmpopts.EquateApprox(0, 1e-5),
	}
	if diff := cmp.Diff(orig, back, opts); diff != "" {
		t.Errorf("airport mismatch (-orig +back):\n%s", diff)
	}
	if diff := cmp.Diff(orig.Runways(), back.Runways(), opts); diff != "" {
		t.Errorf("runways mismatch (-orig +back):\n%s", diff)
	}
	if diff := cmp.Diff(orig.RampStarts(), back.RampStarts(), opts); diff != "" {
		t.Errorf("ramp starts mismatch (-orig +back):\n%s", diff)
	}
	if diff := cmp.Diff(orig.Frequencies(), back.Frequencies()); diff != "" {
		t.Errorf("frequencies mismatch (-orig +back):\n%s", diff)
	}
}

// rewriteAirport writes a in the cache grammar and parses it back.
func rewriteAirport(t *testing.T, a *Airport) *Airport {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tile")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	f.WriteString(tileFileHeader)
	writeAptDat(f, a)
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	db := newTestDB(t, nil)
	tx := db.Lock()
	n := tx.readAptDat(path, false, nil, false)
	tx.Unlock()
	if n != 1 {
		t.Fatalf("reparsed airports = %d, want 1", n)
	}
	return residentAirport(t, db, a.Ident)
}

func TestWriteAptDatKeepsTileEdgeDatum(t *testing.T) {
	db := newTestDB(t, nil)
	parseFiles(t, db, kxyzHeader+
		"1 100 0 0 KXYZ Edge Field\n"+
		"1302 datum_lat 40.99999996\n"+
		"1302 datum_lon -99.00000003\n"+
		kxyzRunway+"\n")
	orig := residentAirport(t, db, "KXYZ")
	back := rewriteAirport(t, orig)

	if back.RefPt.Lat != orig.RefPt.Lat || back.RefPt.Lon != orig.RefPt.Lon {
		t.Errorf("datum = %v,%v, want %v,%v", back.RefPt.Lat, back.RefPt.Lon, orig.RefPt.Lat, orig.RefPt.Lon)
	}
	want := TileKey{Lat: 40, Lon: -100}
	if got := TileKeyFor(back.RefPt.Lat, back.RefPt.Lon); got != want {
		t.Errorf("tile = %+v, want %+v", got, want)
	}
}

func TestWriteAptDatKeepsUnnamedFrequency(t *testing.T) {
	db := newTestDB(t, nil)
	parseFiles(t, db, kxyzHeader+"1 100 0 0 KXYZ Test Field\n"+kxyzRunway+"\n1052 121900\n")
	orig := residentAirport(t, db, "KXYZ")
	orig.freqs = append(orig.freqs, Frequency{Type: FreqTower, Freq: 118300000})

	want := []Frequency{
		{Type: FreqClearance, Freq: 121900000},
		{Type: FreqTower, Freq: 118300000},
	}
	if diff := cmp.Diff(want, orig.Frequencies()); diff != "" {
		t.Fatalf("parsed frequencies mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, rewriteAirport(t, orig).Frequencies()); diff != "" {
		t.Errorf("frequencies mismatch after rewrite (-want +got):\n%s", diff)
	}
}
