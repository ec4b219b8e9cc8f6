package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/yegors/airportdb/internal/airportdb"
	"github.com/yegors/airportdb/internal/geo"
	"github.com/yegors/airportdb/pkg/logger"
)

func newTestStorage(t *testing.T) *IndexStorage {
	t.Helper()
	s, err := NewIndexStorage(filepath.Join(t.TempDir(), "index.db"), logger.NewNop())
	if err != nil {
		t.Fatalf("NewIndexStorage: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

var testEntries = []airportdb.IndexEntry{
	{Ident: "KSEA", ICAO: "KSEA", IATA: "SEA", CC: "K1", Pos: geo.Position{Lat: 47.449, Lon: -122.309, Elev: 433}, MaxRunwayLenFt: 11901, TA: 18000},
	{Ident: "KBFI", ICAO: "KBFI", IATA: "BFI", CC: "K1", Pos: geo.Position{Lat: 47.53, Lon: -122.302, Elev: 21}, MaxRunwayLenFt: 10000, TA: 18000},
	{Ident: "S43", Pos: geo.Position{Lat: 47.9, Lon: -122.1, Elev: 20}, MaxRunwayLenFt: 2600},
	{Ident: "EGLL", ICAO: "EGLL", IATA: "LHR", CC: "EG", Pos: geo.Position{Lat: 51.47, Lon: -0.46, Elev: 83}, MaxRunwayLenFt: 12799, TA: 6000, TL: 7000},
}

func TestReplaceAllAndSearch(t *testing.T) {
	s := newTestStorage(t)
	if _, _, ok, err := s.SyncState(); err != nil || ok {
		t.Fatalf("SyncState before sync = %v, %v", ok, err)
	}
	if err := s.ReplaceAll(testEntries, 2401); err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}

	n, err := s.Count()
	if err != nil || n != 4 {
		t.Fatalf("Count = %d, %v", n, err)
	}
	cycle, entries, ok, err := s.SyncState()
	if err != nil || !ok || cycle != 2401 || entries != 4 {
		t.Errorf("SyncState = %d %d %v %v", cycle, entries, ok, err)
	}

	tests := []struct {
		name string
		q    SearchQuery
		want []string
	}{
		{"all", SearchQuery{}, []string{"EGLL", "KBFI", "KSEA", "S43"}},
		{"region", SearchQuery{Region: "k1"}, []string{"KBFI", "KSEA"}},
		{"runway", SearchQuery{MinRunwayFt: 11000}, []string{"EGLL", "KSEA"}},
		{"prefix", SearchQuery{IdentPrefix: "k"}, []string{"KBFI", "KSEA"}},
		{"combined", SearchQuery{Region: "K1", MinRunwayFt: 11000}, []string{"KSEA"}},
		{"paged", SearchQuery{Limit: 2, Offset: 1}, []string{"KBFI", "KSEA"}},
		{"like wildcard escaped", SearchQuery{IdentPrefix: "%"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Search(tt.q)
			if err != nil {
				t.Fatalf("Search: %v", err)
			}
			var idents []string
			for _, e := range got {
				idents = append(idents, e.Ident)
			}
			if diff := cmp.Diff(tt.want, idents); diff != "" {
				t.Errorf("idents mismatch (-want +got):\n%s", diff)
			}
		})
	}

	got, err := s.Search(SearchQuery{IdentPrefix: "EGLL"})
	if err != nil || len(got) != 1 {
		t.Fatalf("Search EGLL = %v, %v", got, err)
	}
	if diff := cmp.Diff(testEntries[3], got[0]); diff != "" {
		t.Errorf("entry mismatch (-want +got):\n%s", diff)
	}
}

func TestReplaceAllReplaces(t *testing.T) {
	s := newTestStorage(t)
	if err := s.ReplaceAll(testEntries, 2401); err != nil {
		t.Fatal(err)
	}
	if err := s.ReplaceAll(testEntries[:1], 2402); err != nil {
		t.Fatal(err)
	}
	if n, _ := s.Count(); n != 1 {
		t.Errorf("Count = %d, want 1", n)
	}
	if cycle, _, _, _ := s.SyncState(); cycle != 2402 {
		t.Errorf("cycle = %d, want 2402", cycle)
	}
}
