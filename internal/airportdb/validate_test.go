package airportdb

import (
	"fmt"
	"math"
	"sort"
	"testing"
	"time"
)

func TestIsValidICAO(t *testing.T) {
	tests := map[string]bool{
		"KXYZ": true,
		"EGLL": true,
		"kxyz": false,
		"KXY":  false,
		"IXYZ": false,
		"XKCD": false,
		"K1A2": false,
	}
	for code, want := range tests {
		if got := IsValidICAO(code); got != want {
			t.Errorf("IsValidICAO(%q) = %v, want %v", code, got, want)
		}
	}
}

func TestRunwayIDs(t *testing.T) {
	tests := []struct {
		in    string
		norm  string
		valid bool
	}{
		{"09", "09", true},
		{"9", "09", true},
		{"9L", "09L", true},
		{"27R", "27R", true},
		{"36C", "36C", true},
		{"09T", "09", true},
		{"00", "00", false},
		{"37", "37", false},
		{"09X", "09X", false},
		{"H1", "H1", false},
		{"09LX", "09L", true},
	}
	for _, tt := range tests {
		got := NormalizeRunwayID(tt.in)
		if got != tt.norm {
			t.Errorf("NormalizeRunwayID(%q) = %q, want %q", tt.in, got, tt.norm)
		}
		if IsValidRunwayID(got) != tt.valid {
			t.Errorf("IsValidRunwayID(%q) = %v, want %v", got, !tt.valid, tt.valid)
		}
	}
}

func TestValidationLimits(t *testing.T) {
	if IsValidLat(80) || !IsValidLat(79.99) || IsValidLat(math.NaN()) {
		t.Error("latitude limits wrong")
	}
	if !IsValidLon(180) || IsValidLon(180.1) {
		t.Error("longitude limits wrong")
	}
	if !IsValidElev(-2000) || IsValidElev(30001) || IsValidElev(math.NaN()) {
		t.Error("elevation limits wrong")
	}
	if isValidTCH(0) || !isValidTCH(50) || isValidTCH(200) {
		t.Error("TCH limits wrong")
	}
}

func TestNumberParsing(t *testing.T) {
	if !math.IsNaN(parseFloat("abc")) {
		t.Error("parseFloat should return NaN for garbage")
	}
	if got := atoi(" 18000ft"); got != 18000 {
		t.Errorf("atoi = %d, want 18000", got)
	}
	if got := atoi("FL"); got != 0 {
		t.Errorf("atoi = %d, want 0", got)
	}
	if n, ok := leadingInt("-12,"); !ok || n != -12 {
		t.Errorf("leadingInt = %d, %v", n, ok)
	}
}

func TestNameNormalizer(t *testing.T) {
	nn := newNameNormalizer()
	tests := map[string]string{
		"Zürich":                      "ZURICH",
		"São Paulo/Congonhas":         "SAO PAULO/CONGONHAS",
		"Kraków Balice":               "KRAKOW BALICE",
		"O'Hare \"Intl\"":             "OHARE INTL",
		"Straße":                      "STRASSE",
		"東京":                          "??",
		"A very long airport name indeed": "A VERY LONG AIRPORT NAM",
	}
	for in, want := range tests {
		if got := nn.Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestOrderedMap(t *testing.T) {
	m := newOrderedMap[int]()
	for i, k := range []string{"c", "a", "b"} {
		if !m.Insert(k, i) {
			t.Fatalf("Insert(%q) failed", k)
		}
	}
	if m.Insert("a", 9) {
		t.Error("duplicate insert succeeded")
	}
	if got := m.Keys(); len(got) != 3 || got[0] != "a" || got[2] != "c" {
		t.Errorf("keys = %v", got)
	}
	if v, _ := m.Get("a"); v != 1 {
		t.Errorf("a = %d, want 1", v)
	}
	if !m.Delete("b") || m.Delete("b") || m.Len() != 2 {
		t.Error("delete misbehaved")
	}
	visited := 0
	m.Each(func(string, int) bool { visited++; return false })
	if visited != 1 {
		t.Errorf("Each visited %d after stop, want 1", visited)
	}
	m.Clear()
	if m.Len() != 0 || m.Has("a") {
		t.Error("clear left entries")
	}
}

func TestOrderedMapBulkReverseInsert(t *testing.T) {
	const n = 200000
	m := newOrderedMap[int]()
	start := time.Now()
	for i := n - 1; i >= 0; i-- {
		if !m.Insert(fmt.Sprintf("K%07d", i), i) {
			t.Fatalf("Insert(%d) failed", i)
		}
	}
	if elapsed := time.Since(start); elapsed > 10*time.Second {
		t.Errorf("inserting %d keys took %v", n, elapsed)
	}
	if m.Len() != n {
		t.Fatalf("len = %d, want %d", m.Len(), n)
	}
	keys := m.Keys()
	if !sort.StringsAreSorted(keys) {
		t.Fatal("keys not sorted")
	}
	if keys[0] != "K0000000" || keys[n-1] != fmt.Sprintf("K%07d", n-1) {
		t.Errorf("bounds = %s..%s", keys[0], keys[n-1])
	}
	for i := 0; i < n; i += 2 {
		m.Delete(fmt.Sprintf("K%07d", i))
	}
	if m.Len() != n/2 {
		t.Errorf("len after delete = %d, want %d", m.Len(), n/2)
	}
	if v, ok := m.Get("K0000001"); !ok || v != 1 {
		t.Errorf("K0000001 = %d, %v", v, ok)
	}
	if m.Has("K0000000") {
		t.Error("deleted key still present")
	}
}

func TestCountries(t *testing.T) {
	if name, ok := CountryName("DEU"); !ok || name != "Germany" {
		t.Errorf("DEU = %q, %v", name, ok)
	}
	if _, ok := CountryName("XXX"); ok {
		t.Error("XXX resolved")
	}
	tests := map[string]string{
		"KSEA": "K",
		"EGLL": "EG",
		"CYVR": "C",
		"UUEE": "U",
		"UKBB": "UK",
		"ZBAA": "Z",
		"ZKPY": "ZK",
		"kxyz": "",
	}
	for icao, want := range tests {
		if got := ICAOCountryPrefix(icao); got != want {
			t.Errorf("ICAOCountryPrefix(%q) = %q, want %q", icao, got, want)
		}
	}
}
