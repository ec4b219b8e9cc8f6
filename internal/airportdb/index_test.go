package airportdb

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/yegors/airportdb/internal/geo"
)

func TestIndexLineFormat(t *testing.T) {
	e := &IndexEntry{
		Ident:          "KXYZ",
		ICAO:           "KXYZ",
		Pos:            geo.Position{Lat: 40, Lon: -99.994145, Elev: 100},
		MaxRunwayLenFt: 3280,
		TA:             18000,
	}
	var buf bytes.Buffer
	if err := e.writeTo(&buf); err != nil {
		t.Fatal(err)
	}
	want := "KXYZ\tKXYZ\t-\t-\t40.000000\t-99.994145\t100\t3280\t18000\t0\n"
	if buf.String() != want {
		t.Errorf("line = %q, want %q", buf.String(), want)
	}

	back, ok := parseIndexLine(buf.String())
	if !ok {
		t.Fatal("parseIndexLine failed")
	}
	if diff := cmp.Diff(e, back); diff != "" {
		t.Errorf("entry mismatch (-want +got):\n%s", diff)
	}
}

func TestGlobalIndexRead(t *testing.T) {
	data := strings.Join([]string{
		"KXYZ\tKXYZ\tXYZ\t-\t40.0\t-100.0\t100\t3280\t18000\t0",
		"KABC\tKABC\tXYZ\tK1\t41.5\t-100.5\t1200\t7000\t0\t0",
		"KXYZ\tKXYZ\t-\t-\t40.0\t-100.0\t100\t3280\t0\t0",
		"garbage line",
		"KDEF\t-\t-\t-\t42.0\t-101.0\t10\t0\t0\t0",
	}, "\n")

	gi := newGlobalIndex()
	var dups []string
	if err := gi.read(strings.NewReader(data), func(ident string) { dups = append(dups, ident) }); err != nil {
		t.Fatal(err)
	}
	if gi.len() != 3 {
		t.Errorf("entries = %d, want 3", gi.len())
	}
	if diff := cmp.Diff([]string{"KXYZ"}, dups); diff != "" {
		t.Errorf("duplicates mismatch (-want +got):\n%s", diff)
	}
	if got := len(gi.iata["XYZ"]); got != 2 {
		t.Errorf("IATA XYZ entries = %d, want 2", got)
	}
	if _, ok := gi.iata["-"]; ok {
		t.Error("placeholder IATA indexed")
	}
	if _, ok := gi.icao["-"]; ok {
		t.Error("placeholder ICAO indexed")
	}
	if e, _ := gi.entries.Get("KABC"); e.CC != "K1" || e.Pos.Elev != 1200 {
		t.Errorf("KABC = %+v", e)
	}

	gi.reset()
	if gi.len() != 0 || len(gi.icao) != 0 {
		t.Error("reset left entries")
	}
}

func TestTileKeys(t *testing.T) {
	tests := []struct {
		lat, lon float64
		tile     string
		bucket   string
	}{
		{47.5, -122.3, "+47-123", "+40-130"},
		{40.0, -99.99, "+40-100", "+40-100"},
		{-33.9, 151.2, "-34+151", "-40+150"},
		{0.5, 0.5, "+00+000", "+00+000"},
		{10.0, 180.0, "+10-180", "+10-180"},
	}
	for _, tt := range tests {
		k := TileKeyFor(tt.lat, tt.lon)
		if k.String() != tt.tile {
			t.Errorf("tile(%v, %v) = %s, want %s", tt.lat, tt.lon, k, tt.tile)
		}
		if b := k.bucket().String(); b != tt.bucket {
			t.Errorf("bucket(%v, %v) = %s, want %s", tt.lat, tt.lon, b, tt.bucket)
		}
	}

	if k := makeTileKey(5, 180); k.Lon != -180 {
		t.Errorf("wrapped lon = %d, want -180", k.Lon)
	}
	if k := makeTileKey(5, -181); k.Lon != 179 {
		t.Errorf("wrapped lon = %d, want 179", k.Lon)
	}
}
