package airportdb

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/yegors/airportdb/pkg/logger"
)

const (
	kxyzHeader = "I\n1200 Generated by WorldEditor\n\n"

	// 09/27 at N40, 1000 m long, 45 m wide
	kxyzRunway = "100 45.00 1 0 0.25 0 0 0 " +
		"09 40.00000000 -100.00000000 0 0 0 0 0 0 " +
		"27 40.00000000 -99.98829000 0 0 0 0 0 0"
)

func writeTestFile(t *testing.T, path, content string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func newTestDB(t *testing.T, mutate func(*Options)) *Database {
	t.Helper()
	dir := t.TempDir()
	opts := DefaultOptions(filepath.Join(dir, "sim"), filepath.Join(dir, "cache"))
	if mutate != nil {
		mutate(&opts)
	}
	db, err := New(opts, logger.NewNop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return db
}

// parseFiles reads each content as a separate source file, with fill-in
// enabled for the last one, the way a rebuild does.
func parseFiles(t *testing.T, db *Database, contents ...string) {
	t.Helper()
	dir := t.TempDir()
	nn := newNameNormalizer()
	tx := db.Lock()
	defer tx.Unlock()
	for i, content := range contents {
		path := writeTestFile(t, filepath.Join(dir, "src"+string(rune('a'+i)), "apt.dat"), content)
		tx.readAptDat(path, false, nn, i == len(contents)-1)
	}
}

func residentAirport(t *testing.T, db *Database, ident string) *Airport {
	t.Helper()
	a, ok := db.apts.Get(ident)
	if !ok {
		t.Fatalf("airport %s not resident", ident)
	}
	return a
}

// cifpApproach builds an APPCH line for runway id with a glidepath in
// negative hundredths of a degree.
func cifpApproach(rwy, gpa string) string {
	fields := make([]string, 30)
	fields[0] = "010"
	fields[1] = "I" + rwy
	fields[4] = "RW" + rwy
	fields[28] = gpa
	return "APPCH:" + strings.Join(fields, ",") + ";"
}

// simFixture is a minimal simulator installation.
type simFixture struct {
	dir string
}

const fixtureAptDat = kxyzHeader +
	"1 100 0 0 KXYZ Test Field\n" +
	"1302 iata_code XYZ\n" +
	"1302 transition_alt 18000\n" +
	kxyzRunway + "\n" +
	"\n" +
	"1 1200 0 0 KABC Other Field\n" +
	"1302 iata_code XYZ\n" +
	"100 30.00 2 0 0.25 0 0 0 " +
	"18 41.51000000 -100.50000000 0 0 0 0 0 0 " +
	"36 41.49000000 -100.50000000 0 0 0 0 0 0\n" +
	"\n" +
	"1 500 0 0 KNOA No Approach\n" +
	"100 30.00 1 0 0.25 0 0 0 " +
	"04 45.00000000 -90.00000000 0 0 0 0 0 0 " +
	"22 45.01000000 -89.99000000 0 0 0 0 0 0\n" +
	"\n" +
	"99\n"

func newSimFixture(t *testing.T) *simFixture {
	t.Helper()
	s := &simFixture{dir: filepath.Join(t.TempDir(), "X-Plane 12")}
	s.write(t, "Resources/default scenery/default apt dat/Earth nav data/apt.dat", fixtureAptDat)
	s.write(t, "Resources/default data/earth_nav.dat",
		"I\n1150 Version - data cycle 2401, build 20240101, metadata NavXP1150.\n\n99\n")
	s.write(t, "Resources/default data/CIFP/KXYZ.dat",
		cifpApproach("09", "-300")+"\n"+
			"RWY:RW09,     ,      ,00105,,,,55;\n")
	s.write(t, "Resources/default data/CIFP/KABC.dat",
		cifpApproach("18", "-320")+"\n")
	return s
}

func (s *simFixture) write(t *testing.T, rel, content string) {
	t.Helper()
	writeTestFile(t, filepath.Join(s.dir, filepath.FromSlash(rel)), content)
}

func (s *simFixture) open(t *testing.T, cacheDir string, appVersion int, mutate func(*Options)) (*Database, error) {
	t.Helper()
	opts := DefaultOptions(s.dir, cacheDir)
	if mutate != nil {
		mutate(&opts)
	}
	db, err := New(opts, logger.NewNop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return db, db.Open(appVersion)
}

type eventRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *eventRecorder) Publish(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *eventRecorder) types() []EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventType, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}
